package script

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DefaultTapDurationMs is what do_tap uses when no duration argument is given.
const DefaultTapDurationMs = 50

// Instruction is one executable line of a replay script body.
type Instruction interface {
	Render() string
}

// Sleep waits for Ms milliseconds.
type Sleep struct {
	Ms int
}

func (s Sleep) Render() string {
	return fmt.Sprintf("sleep_ms %d", s.Ms)
}

// Tap presses at (X, Y) for DurationMs. When HasDuration is false the
// script relies on the do_tap default.
type Tap struct {
	X           int
	Y           int
	DurationMs  int
	HasDuration bool
}

func (t Tap) Render() string {
	if !t.HasDuration {
		return fmt.Sprintf("do_tap %d %d", t.X, t.Y)
	}
	return fmt.Sprintf("do_tap %d %d %d", t.X, t.Y, t.DurationMs)
}

// Duration returns the effective press duration.
func (t Tap) Duration() int {
	if !t.HasDuration {
		return DefaultTapDurationMs
	}
	return t.DurationMs
}

// Waypoint is a drag sample relative to touch-down. It encodes as [x,y,time_ms].
type Waypoint struct {
	X      int
	Y      int
	TimeMs int
}

func (w Waypoint) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("[%d,%d,%d]", w.X, w.Y, w.TimeMs)), nil
}

func (w *Waypoint) UnmarshalJSON(data []byte) error {
	var values []float64
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	if len(values) < 3 {
		return fmt.Errorf("waypoint needs [x,y,time_ms], got %d values", len(values))
	}

	w.X = int(math.Round(values[0]))
	w.Y = int(math.Round(values[1]))
	w.TimeMs = int(math.Round(values[2]))
	return nil
}

// TimedDrag moves through Points with per-point timing. Raw holds the payload
// as it appeared in a script and is rendered in preference to Points, so
// values Points cannot represent survive. A payload that could not be
// decoded is Malformed and only Raw is set.
type TimedDrag struct {
	Points    []Waypoint
	Raw       string
	Malformed bool
}

func (d TimedDrag) Render() string {
	if d.Malformed || d.Raw != "" {
		return fmt.Sprintf("do_timed_drag '%s'", d.Raw)
	}
	return fmt.Sprintf("do_timed_drag '%s'", EncodeWaypoints(d.Points))
}

// LastTimeMs is the relative time of the final waypoint, or 0.
func (d TimedDrag) LastTimeMs() int {
	if len(d.Points) == 0 {
		return 0
	}
	return d.Points[len(d.Points)-1].TimeMs
}

// LegacyDrag is the old uniform-interval drag: x1 y1 x2 y2 ...
type LegacyDrag struct {
	Coords []int
}

func (d LegacyDrag) Render() string {
	parts := make([]string, 0, len(d.Coords)+1)
	parts = append(parts, "do_drag")
	for _, c := range d.Coords {
		parts = append(parts, strconv.Itoa(c))
	}
	return strings.Join(parts, " ")
}

// EncodeWaypoints renders points as a compact JSON array.
func EncodeWaypoints(points []Waypoint) string {
	if points == nil {
		points = []Waypoint{}
	}
	data, err := json.Marshal(points)
	if err != nil {
		// MarshalJSON on Waypoint cannot fail
		return "[]"
	}
	return string(data)
}

// DecodeWaypoints parses a JSON array of [x,y,time_ms] triples.
func DecodeWaypoints(payload string) ([]Waypoint, error) {
	var points []Waypoint
	if err := json.Unmarshal([]byte(payload), &points); err != nil {
		return nil, err
	}
	return points, nil
}

// ParseInstruction recognizes a single script line. Lines must start at
// column 0; anything else (function bodies, comments, shell code) is not an
// instruction and ok is false.
func ParseInstruction(line string) (Instruction, bool) {
	line = strings.TrimRight(line, " \t\r")
	if line == "" || line[0] == ' ' || line[0] == '\t' {
		return nil, false
	}

	switch {
	case strings.HasPrefix(line, "sleep_ms "):
		return parseSleep(line)
	case strings.HasPrefix(line, "do_tap "):
		return parseTap(line)
	case strings.HasPrefix(line, "do_timed_drag "):
		return parseTimedDrag(line)
	case strings.HasPrefix(line, "do_drag "):
		return parseLegacyDrag(line)
	}

	return nil, false
}

func parseSleep(line string) (Instruction, bool) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return nil, false
	}

	ms, err := strconv.Atoi(fields[1])
	if err != nil || ms < 0 {
		return nil, false
	}

	return Sleep{Ms: ms}, true
}

func parseTap(line string) (Instruction, bool) {
	fields := strings.Fields(line)
	if len(fields) != 3 && len(fields) != 4 {
		return nil, false
	}

	values, ok := atoiAll(fields[1:])
	if !ok {
		return nil, false
	}

	tap := Tap{X: values[0], Y: values[1]}
	if len(values) == 3 {
		tap.DurationMs = values[2]
		tap.HasDuration = true
	}

	return tap, true
}

func parseTimedDrag(line string) (Instruction, bool) {
	start := strings.Index(line, "'")
	end := strings.LastIndex(line, "'")
	if start < 0 || end <= start {
		return nil, false
	}

	payload := line[start+1 : end]
	points, err := DecodeWaypoints(payload)
	if err != nil {
		return TimedDrag{Raw: payload, Malformed: true}, true
	}

	return TimedDrag{Points: points, Raw: payload}, true
}

func parseLegacyDrag(line string) (Instruction, bool) {
	fields := strings.Fields(line)
	coords, ok := atoiAll(fields[1:])
	if !ok {
		return nil, false
	}

	return LegacyDrag{Coords: coords}, true
}

func atoiAll(fields []string) ([]int, bool) {
	values := make([]int, len(fields))
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, false
		}
		values[i] = v
	}
	return values, true
}
