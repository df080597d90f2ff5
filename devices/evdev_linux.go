//go:build linux

package devices

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/holoplot/go-evdev"

	"github.com/touchrec/touchrec/types"
)

// EvdevSource reads the input device directly and renders evtest-style lines.
type EvdevSource struct {
	dev *evdev.InputDevice
}

func OpenEvdev(path string) (*EvdevSource, error) {
	dev, err := evdev.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return &EvdevSource{dev: dev}, nil
}

func (s *EvdevSource) ReadLine() (string, error) {
	e, err := s.dev.ReadOne()
	if err != nil {
		if errors.Is(err, os.ErrClosed) {
			return "", io.EOF
		}
		return "", err
	}
	return formatEvent(e), nil
}

func (s *EvdevSource) Close() error {
	return s.dev.Close()
}

func formatEvent(e *evdev.InputEvent) string {
	ts := fmt.Sprintf("Event: time %d.%06d", e.Time.Sec, e.Time.Usec)
	if e.Type == evdev.EV_SYN {
		return fmt.Sprintf("%s, -------------- %s ------------", ts, evdev.CodeName(e.Type, e.Code))
	}
	return fmt.Sprintf("%s, type %d (%s), code %d (%s), value %d",
		ts, e.Type, evdev.TypeName(e.Type), e.Code, evdev.CodeName(e.Type, e.Code), e.Value)
}

// ListInputDevices enumerates /dev/input/event* with their names.
func ListInputDevices() ([]types.InputDevice, error) {
	paths, err := evdev.ListDevicePaths()
	if err != nil {
		return nil, fmt.Errorf("failed to list input devices: %w", err)
	}

	devices := make([]types.InputDevice, 0, len(paths))
	for _, p := range paths {
		devices = append(devices, types.InputDevice{Path: p.Path, Name: p.Name})
	}
	sort.Slice(devices, func(i, j int) bool {
		return devices[i].Path < devices[j].Path
	})
	return devices, nil
}

// IsTouchDevice reports whether the device at path has BTN_TOUCH and an
// absolute X axis.
func IsTouchDevice(path string) bool {
	dev, err := evdev.Open(path)
	if err != nil {
		return false
	}
	defer dev.Close()

	hasTouch := false
	for _, code := range dev.CapableEvents(evdev.EV_KEY) {
		if code == evdev.BTN_TOUCH {
			hasTouch = true
			break
		}
	}
	if !hasTouch {
		return false
	}

	for _, code := range dev.CapableEvents(evdev.EV_ABS) {
		if code == evdev.ABS_X || code == evdev.ABS_MT_POSITION_X {
			return true
		}
	}
	return false
}

// ReadTouchRange reads the axis ranges the driver reports, preferring the
// multitouch axes.
func ReadTouchRange(path string) (types.Calibration, error) {
	dev, err := evdev.Open(path)
	if err != nil {
		return types.Calibration{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer dev.Close()

	infos, err := dev.AbsInfos()
	if err != nil {
		return types.Calibration{}, fmt.Errorf("failed to read axis info from %s: %w", path, err)
	}

	ranges := map[evdev.EvCode]AxisRange{}
	for code, info := range infos {
		ranges[code] = AxisRange{Min: int(info.Minimum), Max: int(info.Maximum)}
	}

	return touchRangeFrom(ranges,
		[2]evdev.EvCode{evdev.ABS_MT_POSITION_X, evdev.ABS_MT_POSITION_Y},
		[2]evdev.EvCode{evdev.ABS_X, evdev.ABS_Y},
	)
}
