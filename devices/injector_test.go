package devices

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/touchrec/touchrec/types"
)

func fakeXdotool(calls *[]string, fail string) func(ctx context.Context, args ...string) ([]byte, error) {
	return func(ctx context.Context, args ...string) ([]byte, error) {
		call := strings.Join(args, " ")
		*calls = append(*calls, call)
		if fail != "" && strings.HasPrefix(call, fail) {
			return []byte("no display"), errors.New("exit status 1")
		}
		return nil, nil
	}
}

func TestXdotoolInjectorAppliesOffset(t *testing.T) {
	var calls []string
	inj := NewXdotoolInjector(types.Monitor{Name: "HDMI-1", X: 1920, Y: 40})
	inj.run = fakeXdotool(&calls, "")

	require.NoError(t, Tap(context.Background(), inj, 10, 20, time.Millisecond))
	assert.Equal(t, []string{"mousemove 1930 60", "mousedown 1", "mouseup 1"}, calls)
}

func TestXdotoolInjectorError(t *testing.T) {
	var calls []string
	inj := NewXdotoolInjector(types.Monitor{})
	inj.run = fakeXdotool(&calls, "mousedown")

	err := Tap(context.Background(), inj, 1, 1, time.Millisecond)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no display")
	assert.Equal(t, []string{"mousemove 1 1", "mousedown 1"}, calls)
}

func TestTapCancelledStillReleases(t *testing.T) {
	var calls []string
	inj := NewXdotoolInjector(types.Monitor{})
	inj.run = fakeXdotool(&calls, "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, Tap(ctx, inj, 0, 0, time.Hour))
	assert.Equal(t, "mouseup 1", calls[len(calls)-1])
}
