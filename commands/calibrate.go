package commands

import (
	"context"
	"fmt"

	"github.com/touchrec/touchrec/devices"
	"github.com/touchrec/touchrec/gesture"
	"github.com/touchrec/touchrec/types"
	"github.com/touchrec/touchrec/utils"
)

type CalibrationMode string

const (
	CalibrateAuto   CalibrationMode = "auto"
	CalibrateManual CalibrationMode = "manual"
)

// Corners are raw touch values read at the top-left and bottom-right of the
// screen.
type Corners struct {
	MinX int `json:"minX"`
	MinY int `json:"minY"`
	MaxX int `json:"maxX"`
	MaxY int `json:"maxY"`
}

type CalibrateRequest struct {
	Device  string          `json:"device"`
	Mode    CalibrationMode `json:"mode"`
	Corners *Corners        `json:"corners,omitempty"`
	DryRun  bool            `json:"dryRun,omitempty"`
}

type CalibrateResponse struct {
	Device      string            `json:"device"`
	Calibration types.Calibration `json:"calibration"`
	ConfigPath  string            `json:"configPath,omitempty"`
	Saved       bool              `json:"saved"`
}

var readTouchRange = devices.ReadTouchRange

// RawPosition is the latest raw X/Y pair seen on a device.
type RawPosition struct {
	X int
	Y int
}

// StreamRawPositions reports the raw position after every Y sample until
// ctx is cancelled. It returns the last position seen.
func StreamRawPositions(ctx context.Context, device string, opts CaptureOptions, fn func(RawPosition)) (RawPosition, error) {
	path, err := prepareCapture(ctx, device, opts)
	if err != nil {
		return RawPosition{}, err
	}
	src, err := openCapture(path, opts)
	if err != nil {
		return RawPosition{}, err
	}
	defer src.Close()

	return collectRawPositions(ctx, src, fn), nil
}

func collectRawPositions(ctx context.Context, src devices.EventSource, fn func(RawPosition)) RawPosition {
	var pos RawPosition
	streamEvents(ctx, src, func(ev gesture.Event) {
		if ev.Kind != gesture.Axis {
			return
		}
		if ev.Axis == gesture.AxisX {
			pos.X = ev.Value
			return
		}
		pos.Y = ev.Value
		fn(pos)
	})
	return pos
}

// CalibrateCommand determines the touch range of a device and stores it in
// the config. Manual mode needs the corner values.
func CalibrateCommand(req CalibrateRequest) *CommandResponse {
	device, err := DevicePath(req.Device)
	if err != nil {
		return NewErrorResponse(err)
	}

	var cal types.Calibration
	switch req.Mode {
	case CalibrateAuto, "":
		cal, err = readTouchRange(device)
	case CalibrateManual:
		if req.Corners == nil {
			return NewErrorResponse(fmt.Errorf("manual calibration needs top-left and bottom-right values"))
		}
		c := req.Corners
		cal, err = devices.CalibrationFromCorners(c.MinX, c.MinY, c.MaxX, c.MaxY)
	default:
		return NewErrorResponse(fmt.Errorf("unknown calibration mode %q (want auto or manual)", req.Mode))
	}
	if err != nil {
		return NewErrorResponse(err)
	}

	utils.Info("touch range %dx%d, offset (%d,%d)", cal.TouchMaxX, cal.TouchMaxY, cal.OffsetX, cal.OffsetY)

	resp := CalibrateResponse{Device: device, Calibration: cal}
	if req.DryRun {
		return NewSuccessResponse(resp)
	}

	cfg := GetConfig()
	cfg.SetCalibration(cal)
	if err := cfg.Save(); err != nil {
		return NewErrorResponse(err)
	}
	resp.ConfigPath = cfg.Path()
	resp.Saved = true
	return NewSuccessResponse(resp)
}
