package devices

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/touchrec/touchrec/types"
)

// matches "HDMI-1 connected primary 1920x1080+0+0 (normal left ...) 527mm x 296mm"
var xrandrOutputRe = regexp.MustCompile(`^(\S+) connected( primary)? (\d+)x(\d+)\+(\d+)\+(\d+)`)

func runXrandrCommand(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "xrandr", args...)
	return cmd.Output()
}

// ParseXrandr extracts connected, active outputs. Connected outputs without
// a mode (switched off) are skipped.
func ParseXrandr(output string) []types.Monitor {
	var monitors []types.Monitor

	for _, line := range strings.Split(output, "\n") {
		m := xrandrOutputRe.FindStringSubmatch(strings.TrimRight(line, "\r"))
		if m == nil {
			continue
		}

		width, _ := strconv.Atoi(m[3])
		height, _ := strconv.Atoi(m[4])
		x, _ := strconv.Atoi(m[5])
		y, _ := strconv.Atoi(m[6])

		monitors = append(monitors, types.Monitor{
			Name:    m[1],
			Width:   width,
			Height:  height,
			X:       x,
			Y:       y,
			Primary: m[2] != "",
		})
	}

	return monitors
}

// ListMonitors queries xrandr for the current monitor layout.
func ListMonitors(ctx context.Context) ([]types.Monitor, error) {
	output, err := runXrandrCommand(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run 'xrandr': %w", err)
	}

	return ParseXrandr(string(output)), nil
}

// FindMonitor returns the monitor called name.
func FindMonitor(monitors []types.Monitor, name string) (types.Monitor, error) {
	for _, m := range monitors {
		if m.Name == name {
			return m, nil
		}
	}

	names := make([]string, len(monitors))
	for i, m := range monitors {
		names[i] = m.Name
	}
	return types.Monitor{}, fmt.Errorf("monitor %q not found (available: %s)", name, strings.Join(names, ", "))
}

// SelectMonitor picks name when given, otherwise the primary monitor, otherwise
// the first one.
func SelectMonitor(monitors []types.Monitor, name string) (types.Monitor, error) {
	if name != "" {
		return FindMonitor(monitors, name)
	}
	if len(monitors) == 0 {
		return types.Monitor{}, fmt.Errorf("no connected monitors found")
	}

	for _, m := range monitors {
		if m.Primary {
			return m, nil
		}
	}
	return monitors[0], nil
}
