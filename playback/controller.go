package playback

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/touchrec/touchrec/utils"
)

type LoopMode string

const (
	LoopSingle      LoopMode = "single"
	LoopCount       LoopMode = "count"
	LoopRandomCount LoopMode = "random_count"
	LoopInfinite    LoopMode = "infinite"
	LoopDuration    LoopMode = "duration"
)

const (
	randomCountMin = 3
	randomCountMax = 10
	chaosPauseMin  = 500 * time.Millisecond
)

func ParseLoopMode(s string) (LoopMode, error) {
	switch m := LoopMode(s); m {
	case LoopSingle, LoopCount, LoopRandomCount, LoopInfinite, LoopDuration:
		return m, nil
	case "":
		return LoopSingle, nil
	}
	return "", fmt.Errorf("unknown loop mode %q (want single, count, random_count, infinite or duration)", s)
}

type State int32

const (
	StateIdle State = iota
	StateRunning
	StateStopped
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	case StateCompleted:
		return "completed"
	}
	return "idle"
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// LoopConfig describes how often a script is replayed.
type LoopConfig struct {
	Mode     LoopMode
	Count    int
	Duration time.Duration
	Pause    time.Duration
}

func (c LoopConfig) Validate() error {
	switch c.Mode {
	case LoopCount:
		if c.Count < 1 {
			return fmt.Errorf("loop count must be at least 1, got %d", c.Count)
		}
	case LoopDuration:
		if c.Duration <= 0 {
			return fmt.Errorf("loop duration must be positive, got %s", c.Duration)
		}
	}
	if c.Pause < 0 {
		return fmt.Errorf("pause must not be negative, got %s", c.Pause)
	}
	return nil
}

// Runner executes one replay at the given speed.
type Runner interface {
	Run(ctx context.Context, speed float64) error
}

type RunnerFunc func(ctx context.Context, speed float64) error

func (f RunnerFunc) Run(ctx context.Context, speed float64) error {
	return f(ctx, speed)
}

// Snapshot is a consistent-enough view for a status observer.
type Snapshot struct {
	RunID     string        `json:"runId"`
	State     State         `json:"state"`
	Mode      LoopMode      `json:"mode"`
	Iteration int           `json:"iteration"`
	Total     int           `json:"total,omitempty"`
	Plays     int           `json:"plays"`
	Speed     float64       `json:"speed"`
	Elapsed   time.Duration `json:"elapsed"`
	Remaining time.Duration `json:"remaining,omitempty"`
}

type SpeedBucket struct {
	Speed float64 `json:"speed"`
	Count int     `json:"count"`
}

// SpeedStats summarizes the speeds used across a run.
type SpeedStats struct {
	Count        int           `json:"count"`
	Avg          float64       `json:"avg"`
	Min          float64       `json:"min"`
	Max          float64       `json:"max"`
	Variations   int           `json:"variations"`
	Distribution []SpeedBucket `json:"distribution"`
}

func NewSpeedStats(history []float64) SpeedStats {
	if len(history) == 0 {
		return SpeedStats{}
	}

	stats := SpeedStats{Count: len(history), Min: history[0], Max: history[0]}
	counts := map[float64]int{}
	sum := 0.0
	for _, s := range history {
		sum += s
		stats.Min = math.Min(stats.Min, s)
		stats.Max = math.Max(stats.Max, s)
		counts[s]++
	}
	stats.Avg = sum / float64(len(history))
	stats.Variations = len(counts)

	for speed, count := range counts {
		stats.Distribution = append(stats.Distribution, SpeedBucket{Speed: speed, Count: count})
	}
	sort.Slice(stats.Distribution, func(i, j int) bool {
		return stats.Distribution[i].Speed < stats.Distribution[j].Speed
	})
	return stats
}

// Result is what a finished run reports.
type Result struct {
	RunID   string        `json:"runId"`
	State   State         `json:"state"`
	Plays   int           `json:"plays"`
	Elapsed time.Duration `json:"elapsed"`
	Speeds  SpeedStats    `json:"speeds"`
	Error   string        `json:"error,omitempty"`
}

// Controller drives a Runner through a loop configuration. Run is called
// once; Snapshot may be called from any goroutine.
type Controller struct {
	cfg    LoopConfig
	seq    *Sequencer
	runner Runner

	runID     atomic.Value
	state     atomic.Int32
	iteration atomic.Int64
	plays     atomic.Int64
	total     atomic.Int64
	speedBits atomic.Uint64
	startedAt atomic.Int64

	mu      sync.Mutex
	history []float64

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error

	// OnIteration is called before each replay with the 1-based iteration.
	OnIteration func(iteration int, speed float64)
}

func NewController(cfg LoopConfig, seq *Sequencer, runner Runner) *Controller {
	c := &Controller{
		cfg:    cfg,
		seq:    seq,
		runner: runner,
		now:    time.Now,
		sleep:  sleepContext,
	}
	c.runID.Store("")
	return c
}

var ErrAlreadyStarted = errors.New("playback already started")

// Run loops until the configuration is exhausted, ctx is cancelled or a
// replay fails. Cancellation ends in StateStopped without an error; a failed
// replay ends in StateStopped and returns the failure.
func (c *Controller) Run(ctx context.Context) (Result, error) {
	if err := c.cfg.Validate(); err != nil {
		return Result{}, err
	}
	if !c.state.CompareAndSwap(int32(StateIdle), int32(StateRunning)) {
		return Result{}, ErrAlreadyStarted
	}

	runID := uuid.New().String()
	c.runID.Store(runID)
	start := c.now()
	c.startedAt.Store(start.UnixNano())

	total := c.plannedLoops()
	c.total.Store(int64(total))

	utils.Logger().WithField("run", runID).Infof("starting loop mode %s", c.cfg.Mode)

	final, err := c.loop(ctx, total, start)
	c.state.Store(int32(final))

	c.mu.Lock()
	history := append([]float64(nil), c.history...)
	c.mu.Unlock()

	res := Result{
		RunID:   runID,
		State:   final,
		Plays:   int(c.plays.Load()),
		Elapsed: c.now().Sub(start),
		Speeds:  NewSpeedStats(history),
	}
	if err != nil {
		res.Error = err.Error()
	}

	utils.Info("loop finished: %d plays in %.1fs (%s)", res.Plays, res.Elapsed.Seconds(), final)
	return res, err
}

func (c *Controller) plannedLoops() int {
	switch c.cfg.Mode {
	case LoopSingle:
		return 1
	case LoopCount:
		return c.cfg.Count
	case LoopRandomCount:
		return c.seq.IntRange(randomCountMin, randomCountMax)
	}
	return 0
}

func (c *Controller) loop(ctx context.Context, total int, start time.Time) (State, error) {
	for i := 0; ; i++ {
		if ctx.Err() != nil {
			return StateStopped, nil
		}

		speed := c.seq.Next(i, total)
		c.speedBits.Store(math.Float64bits(speed))
		c.iteration.Store(int64(i + 1))
		c.mu.Lock()
		c.history = append(c.history, speed)
		c.mu.Unlock()

		if c.OnIteration != nil {
			c.OnIteration(i+1, speed)
		}

		if err := c.runner.Run(ctx, speed); err != nil {
			if ctx.Err() != nil {
				return StateStopped, nil
			}
			utils.Error("playback #%d failed: %v", i+1, err)
			return StateStopped, fmt.Errorf("playback #%d failed: %w", i+1, err)
		}
		plays := c.plays.Add(1)
		utils.Verbose("playback #%d done at %vx", plays, speed)

		if c.done(int(plays), total, start) {
			return StateCompleted, nil
		}

		if pause := c.nextPause(); pause > 0 {
			utils.Verbose("pausing %.1fs", pause.Seconds())
			if err := c.sleep(ctx, pause); err != nil {
				return StateStopped, nil
			}
		}
	}
}

func (c *Controller) done(plays, total int, start time.Time) bool {
	switch c.cfg.Mode {
	case LoopSingle, LoopCount, LoopRandomCount:
		return plays >= total
	case LoopDuration:
		return c.now().Sub(start) >= c.cfg.Duration
	}
	return false
}

func (c *Controller) nextPause() time.Duration {
	if c.cfg.Pause <= 0 {
		return 0
	}
	if c.seq.Mode == SpeedChaos {
		lo, hi := float64(chaosPauseMin), float64(2*c.cfg.Pause)
		if hi < lo {
			lo, hi = hi, lo
		}
		return time.Duration(c.seq.Uniform(lo, hi))
	}
	return c.cfg.Pause
}

// Snapshot reads the live counters.
func (c *Controller) Snapshot() Snapshot {
	s := Snapshot{
		RunID:     c.runID.Load().(string),
		State:     State(c.state.Load()),
		Mode:      c.cfg.Mode,
		Iteration: int(c.iteration.Load()),
		Total:     int(c.total.Load()),
		Plays:     int(c.plays.Load()),
		Speed:     math.Float64frombits(c.speedBits.Load()),
	}

	if started := c.startedAt.Load(); started != 0 {
		s.Elapsed = c.now().Sub(time.Unix(0, started))
		if c.cfg.Mode == LoopDuration {
			s.Remaining = max(0, c.cfg.Duration-s.Elapsed)
		}
	}
	return s
}

// SpeedHistory returns a copy of the speeds used so far.
func (c *Controller) SpeedHistory() []float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]float64(nil), c.history...)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
