package gesture

import (
	"math"
	"time"

	"github.com/touchrec/touchrec/script"
)

// Point is a movement sample relative to touch-down, encoded as [x,y,time_ms].
type Point = script.Waypoint

type Kind string

const (
	KindTap   Kind = "tap"
	KindSwipe Kind = "swipe"
	KindDrag  Kind = "drag"
)

// Gesture is one contact from touch-down to touch-up.
type Gesture struct {
	Kind       Kind      `json:"type"`
	StartTime  time.Time `json:"start_time"`
	DurationMs int       `json:"duration"`
	Points     []Point   `json:"points"`
}

// Instruction renders the gesture as a script instruction.
func (g Gesture) Instruction() script.Instruction {
	if g.Kind == KindTap {
		p := g.Points[0]
		return script.Tap{X: p.X, Y: p.Y, DurationMs: g.DurationMs, HasDuration: true}
	}
	return script.TimedDrag{Points: g.Points}
}

// PathLength is the summed distance between consecutive points.
func (g Gesture) PathLength() float64 {
	total := 0.0
	for i := 1; i < len(g.Points); i++ {
		total += distance(g.Points[i-1], g.Points[i])
	}
	return total
}

func distance(a, b Point) float64 {
	return math.Hypot(float64(b.X-a.X), float64(b.Y-a.Y))
}

func durationMs(d time.Duration) int {
	return int(math.Round(float64(d) / float64(time.Millisecond)))
}

// subsample keeps every stride-th point, stride = ceil(len/limit), plus the
// final point.
func subsample(points []Point, limit int) []Point {
	if limit < 1 || len(points) <= limit {
		return points
	}

	stride := (len(points) + limit - 1) / limit
	out := make([]Point, 0, limit+1)
	for i := 0; i < len(points); i += stride {
		out = append(out, points[i])
	}
	if (len(points)-1)%stride != 0 {
		out = append(out, points[len(points)-1])
	}
	return out
}
