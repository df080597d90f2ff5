package commands

import (
	"fmt"

	"github.com/touchrec/touchrec/devices"
)

type InputDeviceInfo struct {
	Path  string `json:"path"`
	Name  string `json:"name"`
	Touch bool   `json:"touch"`
}

type DevicesRequest struct {
	TouchOnly bool `json:"touchOnly,omitempty"`
}

type DevicesResponse struct {
	Devices []InputDeviceInfo `json:"devices"`
}

func DevicesCommand(req DevicesRequest) *CommandResponse {
	inputs, err := devices.ListInputDevices()
	if err != nil {
		return NewErrorResponse(fmt.Errorf("error listing input devices: %w", err))
	}

	result := make([]InputDeviceInfo, 0, len(inputs))
	for _, d := range inputs {
		touch := devices.IsTouchDevice(d.Path)
		if req.TouchOnly && !touch {
			continue
		}
		result = append(result, InputDeviceInfo{Path: d.Path, Name: d.Name, Touch: touch})
	}

	return NewSuccessResponse(DevicesResponse{Devices: result})
}

// DevicePath accepts "/dev/input/event5" or just "5".
func DevicePath(device string) (string, error) {
	if device == "" {
		return "", fmt.Errorf("input device is required (e.g. /dev/input/event5 or 5)")
	}
	for _, c := range device {
		if c < '0' || c > '9' {
			return device, nil
		}
	}
	return "/dev/input/event" + device, nil
}
