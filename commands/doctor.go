package commands

import (
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/touchrec/touchrec/devices"
)

type ToolInfo struct {
	Name     string `json:"name"`
	Path     string `json:"path,omitempty"`
	Required bool   `json:"required"`
}

type DoctorInfo struct {
	TouchrecVersion   string     `json:"touchrec_version"`
	OS                string     `json:"os"`
	OSVersion         string     `json:"os_version"`
	Display           string     `json:"display"`
	Tools             []ToolInfo `json:"tools"`
	InputDevices      int        `json:"input_devices"`
	TouchDevices      []string   `json:"touch_devices,omitempty"`
	ConfigPath        string     `json:"config_path"`
	RecordingsDir     string     `json:"recordings_dir"`
	RecordingsPresent bool       `json:"recordings_present"`
	Problems          []string   `json:"problems,omitempty"`
}

var doctorTools = []ToolInfo{
	{Name: "evtest", Required: true},
	{Name: "xdotool", Required: true},
	{Name: "xrandr", Required: true},
	{Name: "bash", Required: true},
	{Name: "sudo"},
}

var lookPath = exec.LookPath

func findTools() []ToolInfo {
	tools := make([]ToolInfo, len(doctorTools))
	for i, t := range doctorTools {
		tools[i] = t
		if path, err := lookPath(t.Name); err == nil {
			tools[i].Path = path
		}
	}
	return tools
}

func getOSVersion() string {
	if runtime.GOOS != "linux" {
		return ""
	}

	// try reading /etc/os-release
	data, err := os.ReadFile("/etc/os-release")
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(string(data), "\n") {
		if strings.HasPrefix(line, "PRETTY_NAME=") {
			return strings.Trim(strings.TrimPrefix(line, "PRETTY_NAME="), "\"")
		}
	}
	return ""
}

// DoctorCommand checks the environment needed to record and replay.
func DoctorCommand(version string) *CommandResponse {
	cfg := GetConfig()
	info := DoctorInfo{
		TouchrecVersion: version,
		OS:              runtime.GOOS,
		OSVersion:       getOSVersion(),
		Display:         os.Getenv("DISPLAY"),
		Tools:           findTools(),
		ConfigPath:      cfg.Path(),
		RecordingsDir:   cfg.Paths.Recordings,
	}

	if runtime.GOOS != "linux" {
		info.Problems = append(info.Problems, "touch capture needs Linux evdev")
	}
	if info.Display == "" {
		info.Problems = append(info.Problems, "DISPLAY is not set, xdotool and xrandr need an X session")
	}
	for _, t := range info.Tools {
		if t.Required && t.Path == "" {
			info.Problems = append(info.Problems, t.Name+" not found in PATH")
		}
	}

	if st, err := os.Stat(info.RecordingsDir); err == nil && st.IsDir() {
		info.RecordingsPresent = true
	}

	// listing usually needs root or the input group
	if inputs, err := devices.ListInputDevices(); err == nil {
		info.InputDevices = len(inputs)
		for _, in := range inputs {
			if devices.IsTouchDevice(in.Path) {
				info.TouchDevices = append(info.TouchDevices, in.Path)
			}
		}
	}

	return NewSuccessResponse(info)
}
