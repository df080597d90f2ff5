package gesture

import (
	"time"

	"github.com/touchrec/touchrec/script"
	"github.com/touchrec/touchrec/types"
)

// Options tune gesture reconstruction.
type Options struct {
	// MinMovement is the distance in pixels below which a sample is dropped.
	MinMovement float64
	// TapDistance separates a jittery tap from a swipe for two-point gestures.
	TapDistance float64
	// MaxPoints caps drag size; longer drags are subsampled.
	MaxPoints int
	// IdleThresholdMs is the shortest gap between touches worth a sleep.
	IdleThresholdMs int
	// Start is the reference for the sleep before the first touch. Zero
	// means no sleep is emitted before it.
	Start time.Time
	// OnGesture, when set, sees every gesture as it completes.
	OnGesture func(Gesture)
}

func DefaultOptions() Options {
	return Options{
		MinMovement:     2,
		TapDistance:     20,
		MaxPoints:       500,
		IdleThresholdMs: 10,
	}
}

// TouchState tracks the single in-progress contact.
type TouchState struct {
	Active    bool
	StartTime time.Time
	CurrentX  int
	CurrentY  int
	LastX     int
	LastY     int

	pendingX    int
	hasPendingX bool
}

// Stats accumulates over a whole recording.
type Stats struct {
	Touches       int `json:"touches"`
	TotalPoints   int `json:"totalPoints"`
	MinIntervalMs int `json:"minIntervalMs"`
	MaxIntervalMs int `json:"maxIntervalMs"`
	hasInterval   bool
}

// HasInterval reports whether any point interval was observed.
func (s Stats) HasInterval() bool {
	return s.hasInterval
}

func (s *Stats) observeInterval(ms int) {
	if !s.hasInterval || ms < s.MinIntervalMs {
		s.MinIntervalMs = ms
	}
	if !s.hasInterval || ms > s.MaxIntervalMs {
		s.MaxIntervalMs = ms
	}
	s.hasInterval = true
}

// merge folds the intervals of one finished touch into s.
func (s *Stats) merge(touch Stats) {
	if touch.hasInterval {
		s.observeInterval(touch.MinIntervalMs)
		s.observeInterval(touch.MaxIntervalMs)
	}
}

// Reconstructor turns a stream of capture events into script instructions.
// It is not safe for concurrent use.
type Reconstructor struct {
	opts  Options
	cal   types.Calibration
	state TouchState

	points []Point
	lastUp time.Time
	stats  Stats
	// intervals of the touch in progress, merged into stats on touch-up
	touch Stats
	now   func() time.Time
}

func NewReconstructor(cal types.Calibration, opts Options) *Reconstructor {
	return &Reconstructor{
		opts:   opts,
		cal:    cal,
		lastUp: opts.Start,
		now:    time.Now,
	}
}

func (r *Reconstructor) State() TouchState {
	return r.state
}

func (r *Reconstructor) Stats() Stats {
	return r.stats
}

// FeedLine classifies a capture line and feeds it.
func (r *Reconstructor) FeedLine(line string) []script.Instruction {
	return r.Feed(ClassifyLine(line))
}

// Feed advances the state machine by one event and returns the
// instructions it completes, if any.
func (r *Reconstructor) Feed(ev Event) []script.Instruction {
	if ev.Kind == Unrecognized {
		return nil
	}

	t := ev.Time
	if !ev.HasTime {
		t = r.now()
	}

	switch ev.Kind {
	case Button:
		if ev.Pressed && !r.state.Active {
			return r.touchDown(t)
		}
		if !ev.Pressed && r.state.Active {
			return r.touchUp(t)
		}
	case Axis:
		r.sample(ev, t)
	}

	return nil
}

func (r *Reconstructor) touchDown(t time.Time) []script.Instruction {
	var out []script.Instruction
	if !r.lastUp.IsZero() {
		idle := durationMs(t.Sub(r.lastUp))
		if idle > r.opts.IdleThresholdMs {
			out = append(out, script.Sleep{Ms: idle})
		}
	}

	r.state.Active = true
	r.state.StartTime = t
	r.state.LastX = r.state.CurrentX
	r.state.LastY = r.state.CurrentY
	r.state.hasPendingX = false
	r.points = []Point{{X: r.state.CurrentX, Y: r.state.CurrentY, TimeMs: 0}}
	r.touch = Stats{}

	return out
}

func (r *Reconstructor) sample(ev Event, t time.Time) {
	if !r.state.Active {
		if ev.Axis == AxisX {
			r.state.CurrentX = r.cal.ScaleX(ev.Value)
		} else {
			r.state.CurrentY = r.cal.ScaleY(ev.Value)
		}
		return
	}

	if ev.Axis == AxisX {
		r.state.pendingX = r.cal.ScaleX(ev.Value)
		r.state.hasPendingX = true
		return
	}

	// a Y sample pairs with the buffered X, or the current X if none arrived
	x := r.state.CurrentX
	if r.state.hasPendingX {
		x = r.state.pendingX
		r.state.hasPendingX = false
	}
	candidate := Point{X: x, Y: r.cal.ScaleY(ev.Value), TimeMs: durationMs(t.Sub(r.state.StartTime))}

	if distance(r.lastPoint(), candidate) < r.opts.MinMovement {
		return
	}
	r.record(candidate)
}

func (r *Reconstructor) touchUp(t time.Time) []script.Instruction {
	rel := durationMs(t.Sub(r.state.StartTime))
	if rel < 0 {
		rel = 0
	}

	if r.state.hasPendingX {
		candidate := Point{X: r.state.pendingX, Y: r.state.CurrentY, TimeMs: rel}
		if distance(r.lastPoint(), candidate) >= r.opts.MinMovement {
			r.state.CurrentX = candidate.X
		}
		r.state.hasPendingX = false
	}
	if r.state.CurrentX != r.state.LastX || r.state.CurrentY != r.state.LastY {
		r.record(Point{X: r.state.CurrentX, Y: r.state.CurrentY, TimeMs: rel})
	}

	g := r.classify(rel)
	r.state.Active = false
	r.lastUp = t
	r.points = nil

	r.stats.Touches++
	r.stats.TotalPoints += len(g.Points)
	r.stats.merge(r.touch)
	r.touch = Stats{}
	if r.opts.OnGesture != nil {
		r.opts.OnGesture(g)
	}

	return []script.Instruction{g.Instruction()}
}

func (r *Reconstructor) record(p Point) {
	if n := len(r.points); n > 0 {
		r.touch.observeInterval(p.TimeMs - r.points[n-1].TimeMs)
	}
	r.points = append(r.points, p)
	r.state.CurrentX, r.state.CurrentY = p.X, p.Y
	r.state.LastX, r.state.LastY = p.X, p.Y
}

func (r *Reconstructor) lastPoint() Point {
	return r.points[len(r.points)-1]
}

func (r *Reconstructor) classify(durationMs int) Gesture {
	g := Gesture{StartTime: r.state.StartTime, DurationMs: durationMs, Points: r.points}

	switch {
	case len(r.points) == 1:
		g.Kind = KindTap
	case len(r.points) == 2:
		if distance(r.points[0], r.points[1]) < r.opts.TapDistance {
			g.Kind = KindTap
			g.Points = r.points[:1]
		} else {
			g.Kind = KindSwipe
		}
	default:
		g.Kind = KindDrag
		g.Points = subsample(r.points, r.opts.MaxPoints)
	}

	return g
}
