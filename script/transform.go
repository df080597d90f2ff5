package script

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Transform rescales every timing value in a replay script by 1/speed.
// Coordinates, legacy do_drag lines and malformed drag payloads are left
// unchanged. Speed 1.0 returns src itself.
func Transform(src []byte, speed float64) ([]byte, error) {
	if err := ValidateSpeed(speed); err != nil {
		return nil, err
	}
	if speed == 1.0 {
		return src, nil
	}

	s := Parse(src)
	s.Scale(speed)
	s.insertComment(speedCommentPrefix + FormatSpeed(speed) + "x")
	return s.Bytes(), nil
}

// ValidateSpeed rejects non-positive and non-finite factors.
func ValidateSpeed(speed float64) error {
	if math.IsNaN(speed) || math.IsInf(speed, 0) || speed <= 0 {
		return fmt.Errorf("invalid speed %v: must be a positive number", speed)
	}
	return nil
}

// FormatSpeed renders a speed factor the shortest way, e.g. 2, 0.5, 1.25.
func FormatSpeed(speed float64) string {
	return strconv.FormatFloat(speed, 'f', -1, 64)
}

// Scale applies the timing transform in place.
func (s *Script) Scale(speed float64) {
	for i, line := range s.Lines {
		switch ins := line.Instruction.(type) {
		case Sleep:
			s.Replace(i, Sleep{Ms: scaleMs(ins.Ms, speed)})
		case Tap:
			ins.DurationMs = scaleMs(ins.Duration(), speed)
			ins.HasDuration = true
			s.Replace(i, ins)
		case TimedDrag:
			if ins.Malformed {
				continue
			}
			raw, ok := scalePayload(ins.Raw, speed)
			if !ok {
				continue
			}
			points, err := DecodeWaypoints(raw)
			if err != nil {
				continue
			}
			s.Replace(i, TimedDrag{Points: points, Raw: raw})
		}
	}
}

// scalePayload rewrites the time element of every waypoint in a drag
// payload and keeps every other element byte for byte. ok is false when the
// payload is not an array of arrays with a numeric third element.
func scalePayload(payload string, speed float64) (string, bool) {
	var points []json.RawMessage
	if err := json.Unmarshal([]byte(payload), &points); err != nil || points == nil {
		return "", false
	}

	var b strings.Builder
	b.WriteByte('[')
	for i, point := range points {
		var elems []json.RawMessage
		if err := json.Unmarshal(point, &elems); err != nil || len(elems) < 3 {
			return "", false
		}
		var ms float64
		if err := json.Unmarshal(elems[2], &ms); err != nil {
			return "", false
		}
		elems[2] = json.RawMessage(strconv.Itoa(int(math.Round(ms / speed))))

		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('[')
		for j, e := range elems {
			if j > 0 {
				b.WriteByte(',')
			}
			b.Write(e)
		}
		b.WriteByte(']')
	}
	b.WriteByte(']')
	return b.String(), true
}

func scaleMs(ms int, speed float64) int {
	return int(math.Round(float64(ms) / speed))
}
