package playback

import (
	"context"
	"time"

	"github.com/touchrec/touchrec/script"
	"github.com/touchrec/touchrec/utils"
)

// Injector is the pointer control native playback needs. Coordinates are
// relative to the recorded monitor.
type Injector interface {
	MoveTo(ctx context.Context, x, y int) error
	ButtonDown(ctx context.Context) error
	ButtonUp(ctx context.Context) error
}

const legacyDragStep = 2 * time.Millisecond

// NativePlayer interprets script instructions in-process instead of
// running the shell preamble.
type NativePlayer struct {
	Script   *script.Script
	Injector Injector

	sleep func(ctx context.Context, d time.Duration) error
}

func NewNativePlayer(s *script.Script, injector Injector) *NativePlayer {
	return &NativePlayer{Script: s, Injector: injector, sleep: sleepContext}
}

func (p *NativePlayer) Run(ctx context.Context, speed float64) error {
	data, err := script.Transform(p.Script.Bytes(), speed)
	if err != nil {
		return err
	}

	for _, ins := range script.Parse(data).Instructions() {
		if err := p.exec(ctx, ins); err != nil {
			return err
		}
	}
	return nil
}

func (p *NativePlayer) exec(ctx context.Context, ins script.Instruction) error {
	switch v := ins.(type) {
	case script.Sleep:
		return p.wait(ctx, v.Ms)
	case script.Tap:
		if err := p.Injector.MoveTo(ctx, v.X, v.Y); err != nil {
			return err
		}
		if err := p.Injector.ButtonDown(ctx); err != nil {
			return err
		}
		if err := p.wait(ctx, v.Duration()); err != nil {
			_ = p.Injector.ButtonUp(context.WithoutCancel(ctx))
			return err
		}
		return p.Injector.ButtonUp(ctx)
	case script.TimedDrag:
		if v.Malformed {
			utils.Warn("skipping drag with unreadable points: %s", v.Raw)
			return nil
		}
		return p.drag(ctx, v.Points)
	case script.LegacyDrag:
		points := make([]script.Waypoint, 0, len(v.Coords)/2)
		for i := 0; i+1 < len(v.Coords); i += 2 {
			t := int(legacyDragStep/time.Millisecond) * len(points)
			points = append(points, script.Waypoint{X: v.Coords[i], Y: v.Coords[i+1], TimeMs: t})
		}
		return p.drag(ctx, points)
	}
	return nil
}

func (p *NativePlayer) drag(ctx context.Context, points []script.Waypoint) error {
	if len(points) < 2 {
		utils.Warn("skipping drag with %d points", len(points))
		return nil
	}

	if err := p.Injector.MoveTo(ctx, points[0].X, points[0].Y); err != nil {
		return err
	}
	if err := p.Injector.ButtonDown(ctx); err != nil {
		return err
	}

	for i := 1; i < len(points); i++ {
		if err := p.wait(ctx, points[i].TimeMs-points[i-1].TimeMs); err != nil {
			_ = p.Injector.ButtonUp(context.WithoutCancel(ctx))
			return err
		}
		if err := p.Injector.MoveTo(ctx, points[i].X, points[i].Y); err != nil {
			_ = p.Injector.ButtonUp(context.WithoutCancel(ctx))
			return err
		}
	}

	return p.Injector.ButtonUp(ctx)
}

func (p *NativePlayer) wait(ctx context.Context, ms int) error {
	if ms <= 0 {
		return ctx.Err()
	}
	return p.sleep(ctx, time.Duration(ms)*time.Millisecond)
}
