package gesture

import (
	"regexp"
	"strconv"
	"time"
)

type EventKind int

const (
	Unrecognized EventKind = iota
	Button
	Axis
)

type AxisName int

const (
	AxisX AxisName = iota
	AxisY
)

func (a AxisName) String() string {
	if a == AxisY {
		return "Y"
	}
	return "X"
}

// Event is one decoded capture line.
type Event struct {
	Kind    EventKind
	Pressed bool
	Axis    AxisName
	Value   int
	Time    time.Time
	HasTime bool
}

var (
	eventTimeRe = regexp.MustCompile(`Event: time (\d+)\.(\d+)`)
	eventCodeRe = regexp.MustCompile(`code \d+ \((\w+)\), value (-?\d+)`)
)

// ClassifyLine decodes a single line of evtest output. Anything that is not a
// BTN_TOUCH transition or an absolute position sample is Unrecognized.
func ClassifyLine(line string) Event {
	m := eventCodeRe.FindStringSubmatch(line)
	if m == nil {
		return Event{Kind: Unrecognized}
	}

	value, err := strconv.Atoi(m[2])
	if err != nil {
		return Event{Kind: Unrecognized}
	}

	var ev Event
	switch m[1] {
	case "BTN_TOUCH":
		if value != 0 && value != 1 {
			return Event{Kind: Unrecognized}
		}
		ev = Event{Kind: Button, Pressed: value == 1}
	case "ABS_MT_POSITION_X", "ABS_X":
		ev = Event{Kind: Axis, Axis: AxisX, Value: value}
	case "ABS_MT_POSITION_Y", "ABS_Y":
		ev = Event{Kind: Axis, Axis: AxisY, Value: value}
	default:
		return Event{Kind: Unrecognized}
	}

	ev.Time, ev.HasTime = parseEventTime(line)
	return ev
}

func parseEventTime(line string) (time.Time, bool) {
	m := eventTimeRe.FindStringSubmatch(line)
	if m == nil {
		return time.Time{}, false
	}

	sec, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return time.Time{}, false
	}

	// evtest prints microseconds, but accept any fractional width
	frac := m[2]
	if len(frac) > 9 {
		frac = frac[:9]
	}
	nsec, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	for i := len(frac); i < 9; i++ {
		nsec *= 10
	}

	return time.Unix(sec, nsec), true
}
