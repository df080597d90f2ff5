package playback

import (
	"fmt"
	"math"
	"math/rand/v2"
)

type SpeedMode string

const (
	SpeedFixed   SpeedMode = "fixed"
	SpeedPerLoop SpeedMode = "per_loop"
	SpeedGradual SpeedMode = "gradual"
	SpeedChaos   SpeedMode = "chaos"
)

const (
	chaosExtremeChance = 0.1
	chaosBandMin       = 0.5
	chaosBandMax       = 2.5
)

var chaosExtremes = []float64{0.1, 0.2, 4.0, 5.0}

func ParseSpeedMode(s string) (SpeedMode, error) {
	switch m := SpeedMode(s); m {
	case SpeedFixed, SpeedPerLoop, SpeedGradual, SpeedChaos:
		return m, nil
	case "":
		return SpeedFixed, nil
	}
	return "", fmt.Errorf("unknown speed mode %q (want fixed, per_loop, gradual or chaos)", s)
}

// Sequencer picks the playback speed for each loop iteration.
type Sequencer struct {
	Mode  SpeedMode
	Fixed float64
	Min   float64
	Max   float64

	rng *rand.Rand
}

// NewSequencer validates the range and binds a random source. A nil rng
// gets a randomly seeded one.
func NewSequencer(mode SpeedMode, fixed, lo, hi float64, rng *rand.Rand) (*Sequencer, error) {
	if mode == SpeedFixed && fixed <= 0 {
		return nil, fmt.Errorf("speed must be positive, got %v", fixed)
	}
	if mode == SpeedPerLoop || mode == SpeedGradual {
		if lo <= 0 || hi <= 0 {
			return nil, fmt.Errorf("speed range must be positive, got %v-%v", lo, hi)
		}
		if lo > hi {
			return nil, fmt.Errorf("min speed %v is above max speed %v", lo, hi)
		}
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	return &Sequencer{Mode: mode, Fixed: fixed, Min: lo, Max: hi, rng: rng}, nil
}

// Next returns the speed for the 0-based loopIndex. totalLoops <= 0 means
// the number of loops is unbounded.
func (s *Sequencer) Next(loopIndex, totalLoops int) float64 {
	switch s.Mode {
	case SpeedPerLoop:
		return round2(s.Uniform(s.Min, s.Max))
	case SpeedGradual:
		var progress float64
		if totalLoops > 0 {
			progress = float64(loopIndex) / float64(totalLoops)
		} else {
			progress = math.Sin(float64(loopIndex)*0.2)*0.5 + 0.5
		}
		return round2(s.Min + (s.Max-s.Min)*progress)
	case SpeedChaos:
		if s.rng.Float64() < chaosExtremeChance {
			return chaosExtremes[s.rng.IntN(len(chaosExtremes))]
		}
		return round2(s.Uniform(chaosBandMin, chaosBandMax))
	}
	return s.Fixed
}

// Randomized reports whether speeds vary between loops.
func (s *Sequencer) Randomized() bool {
	return s.Mode != SpeedFixed
}

// Uniform draws from [lo, hi).
func (s *Sequencer) Uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*s.rng.Float64()
}

// IntRange draws an integer from [lo, hi].
func (s *Sequencer) IntRange(lo, hi int) int {
	return lo + s.rng.IntN(hi-lo+1)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
