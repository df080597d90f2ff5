package script

import (
	"bufio"
	"io"
)

// Writer appends instructions to a script body, flushing to the underlying
// writer every flushEvery instructions so an interrupted recording keeps
// everything but the last partial window.
type Writer struct {
	w          *bufio.Writer
	flushEvery int
	pending    int
	written    int
}

func NewWriter(w io.Writer, flushEvery int) *Writer {
	if flushEvery < 1 {
		flushEvery = 1
	}
	return &Writer{w: bufio.NewWriter(w), flushEvery: flushEvery}
}

// Write emits a batch of instructions, one per line.
func (w *Writer) Write(instructions ...Instruction) error {
	for _, ins := range instructions {
		if _, err := w.w.WriteString(ins.Render() + "\n"); err != nil {
			return err
		}
		w.written++
		w.pending++
		if w.pending >= w.flushEvery {
			if err := w.Flush(); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *Writer) Flush() error {
	w.pending = 0
	return w.w.Flush()
}

// Written is the number of instructions accepted so far.
func (w *Writer) Written() int {
	return w.written
}
