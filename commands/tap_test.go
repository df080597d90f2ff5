package commands

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/touchrec/touchrec/devices"
	"github.com/touchrec/touchrec/types"
)

type recordingInjector struct {
	calls []string
}

func (r *recordingInjector) MoveTo(ctx context.Context, x, y int) error {
	r.calls = append(r.calls, fmt.Sprintf("move %d %d", x, y))
	return nil
}

func (r *recordingInjector) ButtonDown(ctx context.Context) error {
	r.calls = append(r.calls, "down")
	return nil
}

func (r *recordingInjector) ButtonUp(ctx context.Context) error {
	r.calls = append(r.calls, "up")
	return nil
}

func stubInjector(t *testing.T) *recordingInjector {
	t.Helper()
	inj := &recordingInjector{}
	old := injectorFor
	injectorFor = func(types.Monitor) devices.Injector { return inj }
	t.Cleanup(func() { injectorFor = old })
	return inj
}

func TestTapCommand(t *testing.T) {
	stubMonitors(t, hdmi)
	inj := stubInjector(t)

	resp := TapCommand(context.Background(), TapRequest{X: 10, Y: 20, DurationMs: 1})
	require.Equal(t, "ok", resp.Status, resp.Error)
	assert.Equal(t, []string{"move 10 20", "down", "up"}, inj.calls)
	assert.Equal(t, TapResponse{Monitor: "HDMI-1", X: 10, Y: 20}, resp.Data)
}

func TestTapCommandOutsideMonitor(t *testing.T) {
	stubMonitors(t, hdmi)
	inj := stubInjector(t)

	resp := TapCommand(context.Background(), TapRequest{X: 1920, Y: 20})
	assert.Equal(t, "error", resp.Status)
	assert.Empty(t, inj.calls)
}

func TestTapCommandUnknownMonitor(t *testing.T) {
	stubMonitors(t, hdmi)
	stubInjector(t)

	resp := TapCommand(context.Background(), TapRequest{X: 1, Y: 1, Monitor: "DP-9"})
	assert.Equal(t, "error", resp.Status)
	assert.Contains(t, resp.Error, "HDMI-1")
}
