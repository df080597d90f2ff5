package commands

import (
	"context"
	"errors"
	"io"

	"github.com/touchrec/touchrec/devices"
	"github.com/touchrec/touchrec/gesture"
	"github.com/touchrec/touchrec/utils"
)

type CaptureOptions struct {
	Native bool `json:"native,omitempty"`
	NoSudo bool `json:"noSudo,omitempty"`
}

func (o CaptureOptions) useSudo() bool {
	return GetConfig().Recorder.UseSudo && !o.NoSudo && !o.Native
}

// openCapture opens device and registers it for shutdown. sudo credentials
// are expected to be cached already.
func openCapture(device string, opts CaptureOptions) (devices.EventSource, error) {
	src, err := devices.OpenSource(device, opts.Native, opts.useSudo())
	if err != nil {
		return nil, err
	}
	GetShutdownHook().Register("capture "+device, src.Close)
	return src, nil
}

// prepareCapture resolves the device path and refreshes sudo when needed.
func prepareCapture(ctx context.Context, device string, opts CaptureOptions) (string, error) {
	path, err := DevicePath(device)
	if err != nil {
		return "", err
	}
	if opts.useSudo() {
		if err := devices.EnsureSudo(ctx); err != nil {
			return "", err
		}
	}
	return path, nil
}

// streamEvents feeds decoded events from src to fn until the source ends or
// ctx is cancelled.
func streamEvents(ctx context.Context, src devices.EventSource, fn func(gesture.Event)) {
	stop := devices.CloseOnDone(ctx, src)
	defer stop()

	for {
		line, err := src.ReadLine()
		if err != nil {
			if !errors.Is(err, io.EOF) && ctx.Err() == nil {
				utils.Warn("capture ended: %v", err)
			}
			return
		}
		if ev := gesture.ClassifyLine(line); ev.Kind != gesture.Unrecognized {
			fn(ev)
		}
	}
}
