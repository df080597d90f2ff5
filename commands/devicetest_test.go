package commands

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunTouchTest(t *testing.T) {
	src := &fakeSource{lines: []string{
		touchLine(0, true),
		xLine(0, 100),
		yLine(0, 200),
		xLine(16, 110),
		yLine(16, 210),
		touchLine(80, false),
		yLine(100, 999),
	}}

	var out bytes.Buffer
	tester := runTouchTest(context.Background(), src, identity, &out)

	assert.Equal(t, 1, tester.touches)
	assert.Equal(t, 2, tester.samples)
	assert.Equal(t, "TOUCH DOWN #1\n  (100,200)\n  (110,210) +16ms\nTOUCH UP (80ms)\n", out.String())
}
