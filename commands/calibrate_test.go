package commands

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/touchrec/touchrec/config"
	"github.com/touchrec/touchrec/types"
)

func TestCalibrateManualSavesConfig(t *testing.T) {
	cfg := useTestConfig(t)

	resp := CalibrateCommand(CalibrateRequest{
		Device:  "7",
		Mode:    CalibrateManual,
		Corners: &Corners{MinX: 100, MinY: 200, MaxX: 16100, MaxY: 9200},
	})
	require.Equal(t, "ok", resp.Status, resp.Error)

	out := resp.Data.(CalibrateResponse)
	assert.True(t, out.Saved)
	assert.Equal(t, "/dev/input/event7", out.Device)
	assert.Equal(t, types.Calibration{TouchMaxX: 16000, TouchMaxY: 9000, OffsetX: 100, OffsetY: 200}, out.Calibration)

	loaded, err := config.Load(cfg.Path())
	require.NoError(t, err)
	assert.Equal(t, config.CalibrationConfig{TouchMaxX: 16000, TouchMaxY: 9000, OffsetX: 100, OffsetY: 200}, loaded.Calibration)
}

func TestCalibrateAutoDryRun(t *testing.T) {
	cfg := useTestConfig(t)
	old := readTouchRange
	readTouchRange = func(path string) (types.Calibration, error) {
		assert.Equal(t, "/dev/input/event3", path)
		return types.Calibration{TouchMaxX: 4095, TouchMaxY: 4095}, nil
	}
	t.Cleanup(func() { readTouchRange = old })

	resp := CalibrateCommand(CalibrateRequest{Device: "3", DryRun: true})
	require.Equal(t, "ok", resp.Status, resp.Error)

	out := resp.Data.(CalibrateResponse)
	assert.False(t, out.Saved)
	assert.Equal(t, 4095, out.Calibration.TouchMaxX)
	assert.Equal(t, 16382, cfg.Calibration.TouchMaxX)
}

func TestCalibrateErrors(t *testing.T) {
	useTestConfig(t)
	old := readTouchRange
	readTouchRange = func(string) (types.Calibration, error) {
		return types.Calibration{}, errors.New("permission denied")
	}
	t.Cleanup(func() { readTouchRange = old })

	tests := []struct {
		name string
		req  CalibrateRequest
	}{
		{"auto failure", CalibrateRequest{Device: "3"}},
		{"manual without corners", CalibrateRequest{Device: "3", Mode: CalibrateManual}},
		{"inverted corners", CalibrateRequest{Device: "3", Mode: CalibrateManual, Corners: &Corners{MinX: 10, MinY: 10, MaxX: 5, MaxY: 50}}},
		{"unknown mode", CalibrateRequest{Device: "3", Mode: "guess"}},
		{"no device", CalibrateRequest{Mode: CalibrateAuto}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, "error", CalibrateCommand(tt.req).Status)
		})
	}
}

func TestCollectRawPositions(t *testing.T) {
	src := &fakeSource{lines: []string{
		xLine(0, 120),
		yLine(0, 340),
		"SYN_REPORT",
		xLine(10, 15000),
		yLine(10, 9000),
	}}

	var seen []RawPosition
	last := collectRawPositions(context.Background(), src, func(p RawPosition) {
		seen = append(seen, p)
	})

	assert.Equal(t, []RawPosition{{120, 340}, {15000, 9000}}, seen)
	assert.Equal(t, RawPosition{15000, 9000}, last)
}
