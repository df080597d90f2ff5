package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/touchrec/touchrec/config"
	"github.com/touchrec/touchrec/types"
)

var base = time.Unix(1700000000, 0)

var hdmi = types.Monitor{Name: "HDMI-1", Width: 1920, Height: 1080, Primary: true}

// identity maps raw units 1:1 onto a 1920x1080 screen.
var identity = types.Calibration{TouchMaxX: 1920, TouchMaxY: 1080, ScreenWidth: 1920, ScreenHeight: 1080}

// fakeSource replays canned evtest lines.
type fakeSource struct {
	lines  []string
	next   int
	closed atomic.Bool
}

func (f *fakeSource) ReadLine() (string, error) {
	if f.closed.Load() || f.next >= len(f.lines) {
		return "", io.EOF
	}
	line := f.lines[f.next]
	f.next++
	return line, nil
}

func (f *fakeSource) Close() error {
	f.closed.Store(true)
	return nil
}

func evLine(ms int, typ int, typName string, code int, codeName string, value int) string {
	t := base.Add(time.Duration(ms) * time.Millisecond)
	return fmt.Sprintf("Event: time %d.%06d, type %d (%s), code %d (%s), value %d",
		t.Unix(), t.Nanosecond()/1000, typ, typName, code, codeName, value)
}

func touchLine(ms int, pressed bool) string {
	v := 0
	if pressed {
		v = 1
	}
	return evLine(ms, 1, "EV_KEY", 330, "BTN_TOUCH", v)
}

func xLine(ms, v int) string {
	return evLine(ms, 3, "EV_ABS", 53, "ABS_MT_POSITION_X", v)
}

func yLine(ms, v int) string {
	return evLine(ms, 3, "EV_ABS", 54, "ABS_MT_POSITION_Y", v)
}

func useTestConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.Recordings = t.TempDir()
	cfg.SetPath(filepath.Join(t.TempDir(), "touchrec.ini"))
	cfg.Player.Shell = "sh"
	cfg.Recorder.UseSudo = false
	SetConfig(cfg)
	t.Cleanup(func() { SetConfig(nil) })
	return cfg
}

func stubMonitors(t *testing.T, monitors ...types.Monitor) {
	t.Helper()
	old := listMonitors
	listMonitors = func(ctx context.Context) ([]types.Monitor, error) {
		return monitors, nil
	}
	t.Cleanup(func() { listMonitors = old })
}

const sampleBody = `#!/bin/bash
# Touch Recording (touchrec)
RECORDED_MONITOR="HDMI-1"
sleep_ms 100
do_tap 10 20 50
do_timed_drag '[[0,0,0],[10,10,200]]'
`

func writeRecording(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0755))
	return path
}

func TestResponses(t *testing.T) {
	ok := NewSuccessResponse(42)
	assert.Equal(t, "ok", ok.Status)
	assert.Equal(t, 42, ok.Data)

	bad := NewErrorResponse(errors.New("boom"))
	assert.Equal(t, "error", bad.Status)
	assert.Equal(t, "boom", bad.Error)
}

func TestGetConfigDefaults(t *testing.T) {
	SetConfig(nil)
	cfg := GetConfig()
	assert.Equal(t, 16382, cfg.Calibration.TouchMaxX)

	custom := useTestConfig(t)
	assert.Same(t, custom, GetConfig())
}

func TestGetShutdownHookIsShared(t *testing.T) {
	assert.Same(t, GetShutdownHook(), GetShutdownHook())
}

func TestDevicePath(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"5", "/dev/input/event5", false},
		{"/dev/input/event12", "/dev/input/event12", false},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := DevicePath(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
