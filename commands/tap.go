package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/touchrec/touchrec/devices"
	"github.com/touchrec/touchrec/script"
	"github.com/touchrec/touchrec/types"
)

type TapRequest struct {
	X          int    `json:"x"`
	Y          int    `json:"y"`
	DurationMs int    `json:"durationMs,omitempty"`
	Monitor    string `json:"monitor,omitempty"`
}

type TapResponse struct {
	Monitor string `json:"monitor"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
}

var injectorFor = func(m types.Monitor) devices.Injector {
	return devices.NewXdotoolInjector(m)
}

// TapCommand taps once at monitor-relative coordinates.
func TapCommand(ctx context.Context, req TapRequest) *CommandResponse {
	monitor, err := resolveMonitor(ctx, req.Monitor)
	if err != nil {
		return NewErrorResponse(err)
	}
	if req.X < 0 || req.Y < 0 || req.X >= monitor.Width || req.Y >= monitor.Height {
		return NewErrorResponse(fmt.Errorf("(%d,%d) is outside %s (%s)", req.X, req.Y, monitor.Name, monitor.Resolution()))
	}

	duration := req.DurationMs
	if duration <= 0 {
		duration = script.DefaultTapDurationMs
	}

	inj := injectorFor(monitor)
	if err := devices.Tap(ctx, inj, req.X, req.Y, time.Duration(duration)*time.Millisecond); err != nil {
		return NewErrorResponse(err)
	}
	return NewSuccessResponse(TapResponse{Monitor: monitor.Name, X: req.X, Y: req.Y})
}
