package playback

import (
	"fmt"
	"strconv"
	"strings"
)

// Preset is a named playback speed.
type Preset struct {
	Name  string  `json:"name"`
	Speed float64 `json:"speed"`
}

var Presets = []Preset{
	{Name: "very-slow", Speed: 0.25},
	{Name: "slow", Speed: 0.5},
	{Name: "normal", Speed: 1.0},
	{Name: "fast", Speed: 1.5},
	{Name: "very-fast", Speed: 2.0},
	{Name: "turbo", Speed: 3.0},
}

// ParseSpeed accepts a preset name or a factor such as "1.5" or "2x".
func ParseSpeed(s string) (float64, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, p := range Presets {
		if p.Name == s {
			return p.Speed, nil
		}
	}

	speed, err := strconv.ParseFloat(strings.TrimSuffix(s, "x"), 64)
	if err != nil || speed <= 0 {
		return 0, fmt.Errorf("invalid speed %q: use a positive factor or one of %s", s, presetNames())
	}
	return speed, nil
}

func presetNames() string {
	names := make([]string, len(Presets))
	for i, p := range Presets {
		names[i] = p.Name
	}
	return strings.Join(names, ", ")
}
