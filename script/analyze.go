package script

import "math"

// malformedDragMs is the duration assumed for a drag whose payload cannot be read.
const malformedDragMs = 1000

// Summary counts the instructions of a script and estimates its run time.
type Summary struct {
	Taps        int `json:"taps"`
	TimedDrags  int `json:"timedDrags"`
	LegacyDrags int `json:"legacyDrags"`
	Sleeps      int `json:"sleeps"`
	Points      int `json:"points"`
	SleepMs     int `json:"sleepMs"`
	TapMs       int `json:"tapMs"`
	DragMs      int `json:"dragMs"`
	EstimatedMs int `json:"estimatedMs"`
}

// Events is the number of touch instructions.
func (s Summary) Events() int {
	return s.Taps + s.TimedDrags + s.LegacyDrags
}

// Analyze walks the instructions and sums their nominal timing at 1x.
// Legacy drags contribute 2 ms per step.
func Analyze(s *Script) Summary {
	var sum Summary
	for _, ins := range s.Instructions() {
		switch v := ins.(type) {
		case Sleep:
			sum.Sleeps++
			sum.SleepMs += v.Ms
		case Tap:
			sum.Taps++
			sum.Points++
			sum.TapMs += v.Duration()
		case TimedDrag:
			sum.TimedDrags++
			if v.Malformed {
				sum.DragMs += malformedDragMs
				continue
			}
			sum.Points += len(v.Points)
			sum.DragMs += v.LastTimeMs()
		case LegacyDrag:
			sum.LegacyDrags++
			steps := len(v.Coords)/2 - 1
			if steps > 0 {
				sum.Points += len(v.Coords) / 2
				sum.DragMs += 2 * steps
			}
		}
	}
	sum.EstimatedMs = sum.SleepMs + sum.TapMs + sum.DragMs
	return sum
}

// EstimateAt scales an estimate for a given speed factor.
func (s Summary) EstimateAt(speed float64) int {
	if speed <= 0 {
		return 0
	}
	return int(math.Round(float64(s.EstimatedMs) / speed))
}
