package script

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalyze(t *testing.T) {
	s := Parse([]byte(`#!/bin/bash
sleep_ms 100
do_tap 1 1
do_tap 2 2 30
do_timed_drag '[[0,0,0],[5,5,40],[9,9,250]]'
do_timed_drag 'nope'
do_drag 1 1 2 2 3 3
`))

	sum := Analyze(s)
	assert.Equal(t, 2, sum.Taps)
	assert.Equal(t, 2, sum.TimedDrags)
	assert.Equal(t, 1, sum.LegacyDrags)
	assert.Equal(t, 1, sum.Sleeps)
	assert.Equal(t, 5, sum.Events())
	assert.Equal(t, 100, sum.SleepMs)
	assert.Equal(t, 80, sum.TapMs)
	assert.Equal(t, 250+malformedDragMs+4, sum.DragMs)
	assert.Equal(t, 100+80+250+1000+4, sum.EstimatedMs)
	assert.Equal(t, 2+3+3, sum.Points)
	assert.Equal(t, sum.EstimatedMs/2, sum.EstimateAt(2))
	assert.Equal(t, 0, sum.EstimateAt(0))
}

func TestAnalyzeEmpty(t *testing.T) {
	assert.Equal(t, Summary{}, Analyze(Parse(nil)))
}
