//go:build !linux

package devices

import (
	"errors"

	"github.com/touchrec/touchrec/types"
)

var errNoEvdev = errors.New("evdev input is only available on linux")

type EvdevSource struct{}

func OpenEvdev(path string) (*EvdevSource, error) {
	return nil, errNoEvdev
}

func (s *EvdevSource) ReadLine() (string, error) {
	return "", errNoEvdev
}

func (s *EvdevSource) Close() error {
	return nil
}

func ListInputDevices() ([]types.InputDevice, error) {
	return nil, errNoEvdev
}

func IsTouchDevice(path string) bool {
	return false
}

func ReadTouchRange(path string) (types.Calibration, error) {
	return types.Calibration{}, errNoEvdev
}
