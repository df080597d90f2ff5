package playback

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/touchrec/touchrec/script"
)

type recordingInjector struct {
	actions []string
}

func (r *recordingInjector) MoveTo(ctx context.Context, x, y int) error {
	r.actions = append(r.actions, fmt.Sprintf("move %d %d", x, y))
	return nil
}

func (r *recordingInjector) ButtonDown(ctx context.Context) error {
	r.actions = append(r.actions, "down")
	return nil
}

func (r *recordingInjector) ButtonUp(ctx context.Context) error {
	r.actions = append(r.actions, "up")
	return nil
}

func newNative(body string, injector Injector) (*NativePlayer, *[]time.Duration) {
	var sleeps []time.Duration
	p := NewNativePlayer(script.Parse([]byte(body)), injector)
	p.sleep = func(ctx context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		return ctx.Err()
	}
	return p, &sleeps
}

func TestNativePlayer(t *testing.T) {
	inj := &recordingInjector{}
	p, sleeps := newNative(`#!/bin/bash
# RECORDED EVENTS:
sleep_ms 200
do_tap 10 20
do_timed_drag '[[0,0,0],[5,5,40],[9,9,100]]'
do_timed_drag 'broken'
do_drag 1 1 2 2
`, inj)

	require.NoError(t, p.Run(context.Background(), 2.0))
	assert.Equal(t, []string{
		"move 10 20", "down", "up",
		"move 0 0", "down", "move 5 5", "move 9 9", "up",
		"move 1 1", "down", "move 2 2", "up",
	}, inj.actions)
	assert.Equal(t, []time.Duration{
		100 * time.Millisecond,
		25 * time.Millisecond,
		20 * time.Millisecond,
		30 * time.Millisecond,
		2 * time.Millisecond,
	}, *sleeps)
}

func TestNativePlayerCancelReleasesButton(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	inj := &recordingInjector{}
	p, _ := newNative("do_tap 1 1 50\n", inj)

	assert.ErrorIs(t, p.Run(ctx, 1.0), context.Canceled)
	assert.Equal(t, []string{"move 1 1", "down", "up"}, inj.actions)
}
