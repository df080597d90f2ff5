package script

import (
	"os"
	"strings"
)

const (
	// EventsMarker separates the preamble from the recorded body.
	EventsMarker = "# RECORDED EVENTS:"

	speedCommentPrefix = "# PLAYBACK SPEED: "
)

// Line is one line of a script. Instruction is nil for verbatim text. Text
// never carries the line terminator; CRLF records a "\r\n" ending.
type Line struct {
	Text        string
	Instruction Instruction
	CRLF        bool
}

// Script is a parsed replay script. Serializing an unmodified Script returns
// the input bytes unchanged.
type Script struct {
	Lines []Line
}

// Parse splits data into lines and recognizes the instructions among them.
// It never fails: anything unrecognized is kept verbatim.
func Parse(data []byte) *Script {
	texts := strings.Split(string(data), "\n")
	lines := make([]Line, len(texts))
	for i, text := range texts {
		if strings.HasSuffix(text, "\r") {
			text = strings.TrimSuffix(text, "\r")
			lines[i].CRLF = true
		}
		lines[i].Text = text
		if ins, ok := ParseInstruction(text); ok {
			lines[i].Instruction = ins
		}
	}
	return &Script{Lines: lines}
}

// ParseFile reads and parses a script from disk.
func ParseFile(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data), nil
}

// Bytes serializes the script.
func (s *Script) Bytes() []byte {
	texts := make([]string, len(s.Lines))
	for i, line := range s.Lines {
		texts[i] = line.Text
		if line.CRLF {
			texts[i] += "\r"
		}
	}
	return []byte(strings.Join(texts, "\n"))
}

// Instructions returns the recognized instructions in order.
func (s *Script) Instructions() []Instruction {
	var out []Instruction
	for _, line := range s.Lines {
		if line.Instruction != nil {
			out = append(out, line.Instruction)
		}
	}
	return out
}

// Replace swaps the instruction at line index i and re-renders its text.
func (s *Script) Replace(i int, ins Instruction) {
	s.Lines[i].Instruction = ins
	s.Lines[i].Text = ins.Render()
}

// markerIndex returns the line index of EventsMarker, or -1.
func (s *Script) markerIndex() int {
	for i, line := range s.Lines {
		if strings.TrimSpace(line.Text) == EventsMarker {
			return i
		}
	}
	return -1
}

// insertComment inserts a verbatim line in front of EventsMarker. Without a
// marker the line goes after the shebang, or first. The new line takes the
// ending of the line it displaces.
func (s *Script) insertComment(text string) {
	at := s.markerIndex()
	if at < 0 {
		at = 0
		if len(s.Lines) > 0 && strings.HasPrefix(s.Lines[0].Text, "#!") {
			at = 1
		}
	}

	crlf := len(s.Lines) > at && s.Lines[at].CRLF
	s.Lines = append(s.Lines, Line{})
	copy(s.Lines[at+1:], s.Lines[at:])
	s.Lines[at] = Line{Text: text, CRLF: crlf}
}

// Variable looks up a top-level NAME=value assignment in the preamble and
// returns the value with surrounding quotes removed.
func (s *Script) Variable(name string) (string, bool) {
	prefix := name + "="
	for _, line := range s.Lines {
		if !strings.HasPrefix(line.Text, prefix) {
			continue
		}
		value := strings.TrimSpace(strings.TrimPrefix(line.Text, prefix))
		return strings.Trim(value, `"'`), true
	}
	return "", false
}

// PlaybackSpeed returns the speed recorded by a previous transform, if any.
func (s *Script) PlaybackSpeed() (string, bool) {
	for _, line := range s.Lines {
		if strings.HasPrefix(line.Text, speedCommentPrefix) {
			return strings.TrimSuffix(strings.TrimPrefix(line.Text, speedCommentPrefix), "x"), true
		}
	}
	return "", false
}

// IsTouchScript reports whether the head of a file looks like a recording.
func IsTouchScript(head []byte) bool {
	if len(head) > 500 {
		head = head[:500]
	}
	text := string(head)
	return strings.Contains(text, "Touch Recording") || strings.Contains(text, "do_tap")
}
