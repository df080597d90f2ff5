package playback

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	mu     sync.Mutex
	speeds []float64
	failAt int
	hook   func(n int)
}

func (f *fakeRunner) Run(ctx context.Context, speed float64) error {
	f.mu.Lock()
	f.speeds = append(f.speeds, speed)
	n := len(f.speeds)
	f.mu.Unlock()

	if f.hook != nil {
		f.hook(n)
	}
	if f.failAt > 0 && n == f.failAt {
		return &ExitError{Code: 3, Speed: speed}
	}
	return ctx.Err()
}

func (f *fakeRunner) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.speeds)
}

func fixedSeq(t *testing.T) *Sequencer {
	seq, err := NewSequencer(SpeedFixed, 1, 0, 0, seeded())
	require.NoError(t, err)
	return seq
}

func noSleep(ctx context.Context, d time.Duration) error {
	return ctx.Err()
}

func TestControllerSingle(t *testing.T) {
	runner := &fakeRunner{}
	c := NewController(LoopConfig{Mode: LoopSingle}, fixedSeq(t), runner)

	assert.Equal(t, StateIdle, c.Snapshot().State)

	res, err := c.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, res.State)
	assert.Equal(t, 1, res.Plays)
	assert.Equal(t, 1, runner.calls())
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, res.RunID, c.Snapshot().RunID)
	assert.Equal(t, StateCompleted, c.Snapshot().State)
}

func TestControllerCount(t *testing.T) {
	runner := &fakeRunner{}
	c := NewController(LoopConfig{Mode: LoopCount, Count: 4}, fixedSeq(t), runner)

	res, err := c.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, res.Plays)
	assert.Equal(t, 4, res.Speeds.Count)
	assert.Equal(t, []SpeedBucket{{Speed: 1, Count: 4}}, res.Speeds.Distribution)
}

func TestControllerRandomCount(t *testing.T) {
	for i := 0; i < 20; i++ {
		runner := &fakeRunner{}
		c := NewController(LoopConfig{Mode: LoopRandomCount}, fixedSeq(t), runner)

		res, err := c.Run(context.Background())
		require.NoError(t, err)
		assert.GreaterOrEqual(t, res.Plays, 3)
		assert.LessOrEqual(t, res.Plays, 10)
		assert.Equal(t, res.Plays, c.Snapshot().Total)
	}
}

func TestControllerGradualSpeeds(t *testing.T) {
	seq, err := NewSequencer(SpeedGradual, 1, 0.5, 2.0, seeded())
	require.NoError(t, err)

	runner := &fakeRunner{}
	c := NewController(LoopConfig{Mode: LoopCount, Count: 4}, seq, runner)
	_, err = c.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []float64{0.5, 0.88, 1.25, 1.63}, runner.speeds)
	assert.Equal(t, runner.speeds, c.SpeedHistory())
}

func TestControllerInfiniteCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runner := &fakeRunner{hook: func(n int) {
		if n == 5 {
			cancel()
		}
	}}
	c := NewController(LoopConfig{Mode: LoopInfinite}, fixedSeq(t), runner)

	res, err := c.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateStopped, res.State)
	assert.Equal(t, 5, runner.calls())
	assert.Equal(t, 4, res.Plays)
}

func TestControllerFailureStops(t *testing.T) {
	runner := &fakeRunner{failAt: 2}
	c := NewController(LoopConfig{Mode: LoopCount, Count: 5}, fixedSeq(t), runner)

	res, err := c.Run(context.Background())
	require.Error(t, err)

	var exitErr *ExitError
	assert.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 3, exitErr.Code)
	assert.Equal(t, StateStopped, res.State)
	assert.Equal(t, 1, res.Plays)
	assert.Equal(t, 2, runner.calls())
	assert.NotEmpty(t, res.Error)
}

func TestControllerDuration(t *testing.T) {
	clock := time.Unix(1000, 0)
	runner := &fakeRunner{hook: func(int) { clock = clock.Add(4 * time.Second) }}

	c := NewController(LoopConfig{Mode: LoopDuration, Duration: 10 * time.Second}, fixedSeq(t), runner)
	c.now = func() time.Time { return clock }
	c.sleep = noSleep

	res, err := c.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, res.State)
	assert.Equal(t, 3, res.Plays)
}

func TestControllerPause(t *testing.T) {
	var pauses []time.Duration
	runner := &fakeRunner{}
	c := NewController(LoopConfig{Mode: LoopCount, Count: 3, Pause: time.Second}, fixedSeq(t), runner)
	c.sleep = func(ctx context.Context, d time.Duration) error {
		pauses = append(pauses, d)
		return nil
	}

	_, err := c.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{time.Second, time.Second}, pauses)
}

func TestControllerChaosPause(t *testing.T) {
	seq, err := NewSequencer(SpeedChaos, 1, 0, 0, seeded())
	require.NoError(t, err)

	var pauses []time.Duration
	c := NewController(LoopConfig{Mode: LoopCount, Count: 30, Pause: 2 * time.Second}, seq, &fakeRunner{})
	c.sleep = func(ctx context.Context, d time.Duration) error {
		pauses = append(pauses, d)
		return nil
	}

	_, err = c.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, pauses, 29)
	for _, p := range pauses {
		assert.GreaterOrEqual(t, p, 500*time.Millisecond)
		assert.LessOrEqual(t, p, 4*time.Second)
	}
}

func TestControllerCancelDuringPause(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runner := &fakeRunner{hook: func(n int) { cancel() }}
	c := NewController(LoopConfig{Mode: LoopInfinite, Pause: time.Hour}, fixedSeq(t), runner)

	done := make(chan Result, 1)
	go func() {
		res, _ := c.Run(ctx)
		done <- res
	}()

	select {
	case res := <-done:
		assert.Equal(t, StateStopped, res.State)
	case <-time.After(5 * time.Second):
		t.Fatal("controller did not stop")
	}
}

func TestControllerRunOnce(t *testing.T) {
	c := NewController(LoopConfig{Mode: LoopSingle}, fixedSeq(t), &fakeRunner{})
	_, err := c.Run(context.Background())
	require.NoError(t, err)

	_, err = c.Run(context.Background())
	assert.ErrorIs(t, err, ErrAlreadyStarted)
}

func TestControllerSnapshotDuringRun(t *testing.T) {
	var snaps []Snapshot
	var c *Controller
	runner := &fakeRunner{hook: func(int) { snaps = append(snaps, c.Snapshot()) }}
	c = NewController(LoopConfig{Mode: LoopCount, Count: 2}, fixedSeq(t), runner)

	_, err := c.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.Equal(t, StateRunning, snaps[0].State)
	assert.Equal(t, 1, snaps[0].Iteration)
	assert.Equal(t, 2, snaps[1].Iteration)
	assert.Equal(t, 1, snaps[1].Plays)
	assert.Equal(t, 2, snaps[1].Total)
}

func TestLoopConfigValidate(t *testing.T) {
	assert.Error(t, LoopConfig{Mode: LoopCount}.Validate())
	assert.Error(t, LoopConfig{Mode: LoopDuration}.Validate())
	assert.Error(t, LoopConfig{Mode: LoopSingle, Pause: -1}.Validate())
	assert.NoError(t, LoopConfig{Mode: LoopInfinite}.Validate())
}

func TestNewSpeedStats(t *testing.T) {
	stats := NewSpeedStats([]float64{1.5, 0.5, 1.5, 2})
	assert.Equal(t, 4, stats.Count)
	assert.InDelta(t, 1.375, stats.Avg, 1e-9)
	assert.Equal(t, 0.5, stats.Min)
	assert.Equal(t, 2.0, stats.Max)
	assert.Equal(t, 3, stats.Variations)
	assert.Equal(t, []SpeedBucket{{0.5, 1}, {1.5, 2}, {2, 1}}, stats.Distribution)

	assert.Equal(t, SpeedStats{}, NewSpeedStats(nil))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "running", StateRunning.String())
	assert.Equal(t, "stopped", StateStopped.String())
	assert.Equal(t, "completed", StateCompleted.String())
}
