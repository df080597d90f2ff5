package types

import "fmt"

// Monitor is a connected output as reported by xrandr.
type Monitor struct {
	Name    string `json:"name"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Primary bool   `json:"primary,omitempty"`
}

// Geometry returns the xrandr-style geometry string, e.g. "1920x1200+0+0".
func (m Monitor) Geometry() string {
	return fmt.Sprintf("%dx%d+%d+%d", m.Width, m.Height, m.X, m.Y)
}

// Resolution returns "WxH".
func (m Monitor) Resolution() string {
	return fmt.Sprintf("%dx%d", m.Width, m.Height)
}

// InputDevice describes an entry under /dev/input.
type InputDevice struct {
	Path string `json:"path"`
	Name string `json:"name"`
}
