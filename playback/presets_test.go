package playback

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSpeed(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"turbo", 3.0},
		{"Slow", 0.5},
		{"1.5", 1.5},
		{"2x", 2.0},
		{" 0.25 ", 0.25},
	}
	for _, tt := range tests {
		got, err := ParseSpeed(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	for _, bad := range []string{"", "0", "-1", "ludicrous"} {
		_, err := ParseSpeed(bad)
		assert.Error(t, err, bad)
	}
}
