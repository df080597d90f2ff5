package devices

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"time"

	"github.com/touchrec/touchrec/types"
)

// Injector synthesizes pointer input. Coordinates are relative to the
// monitor the injector was created for.
type Injector interface {
	MoveTo(ctx context.Context, x, y int) error
	ButtonDown(ctx context.Context) error
	ButtonUp(ctx context.Context) error
}

// XdotoolInjector drives the X pointer through xdotool.
type XdotoolInjector struct {
	OffsetX int
	OffsetY int

	run func(ctx context.Context, args ...string) ([]byte, error)
}

func NewXdotoolInjector(monitor types.Monitor) *XdotoolInjector {
	return &XdotoolInjector{
		OffsetX: monitor.X,
		OffsetY: monitor.Y,
		run:     runXdotoolCommand,
	}
}

func runXdotoolCommand(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "xdotool", args...)
	return cmd.CombinedOutput()
}

func (x *XdotoolInjector) exec(ctx context.Context, args ...string) error {
	output, err := x.run(ctx, args...)
	if err != nil {
		return fmt.Errorf("xdotool %v failed: %w\nOutput: %s", args, err, string(output))
	}
	return nil
}

func (x *XdotoolInjector) MoveTo(ctx context.Context, px, py int) error {
	return x.exec(ctx, "mousemove", strconv.Itoa(px+x.OffsetX), strconv.Itoa(py+x.OffsetY))
}

func (x *XdotoolInjector) ButtonDown(ctx context.Context) error {
	return x.exec(ctx, "mousedown", "1")
}

func (x *XdotoolInjector) ButtonUp(ctx context.Context) error {
	return x.exec(ctx, "mouseup", "1")
}

// Tap presses at (px, py) for the given duration.
func Tap(ctx context.Context, inj Injector, px, py int, duration time.Duration) error {
	if err := inj.MoveTo(ctx, px, py); err != nil {
		return err
	}
	if err := inj.ButtonDown(ctx); err != nil {
		return err
	}

	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}

	// always release, even when cancelled mid-press
	return inj.ButtonUp(context.WithoutCancel(ctx))
}
