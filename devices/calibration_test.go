package devices

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/touchrec/touchrec/types"
)

func TestCalibrationFromCorners(t *testing.T) {
	cal, err := CalibrationFromCorners(120, 80, 16300, 9500)
	require.NoError(t, err)
	assert.Equal(t, types.Calibration{TouchMaxX: 16180, TouchMaxY: 9420, OffsetX: 120, OffsetY: 80}, cal)

	_, err = CalibrationFromCorners(100, 100, 50, 200)
	assert.Error(t, err)
}

func TestTouchRangePrefersFirstPair(t *testing.T) {
	ranges := map[string]AxisRange{
		"mt_x": {Min: 0, Max: 4095},
		"mt_y": {Min: 0, Max: 2047},
		"x":    {Min: 0, Max: 100},
		"y":    {Min: 0, Max: 100},
	}

	cal, err := touchRangeFrom(ranges, [2]string{"mt_x", "mt_y"}, [2]string{"x", "y"})
	require.NoError(t, err)
	assert.Equal(t, 4095, cal.TouchMaxX)
	assert.Equal(t, 2047, cal.TouchMaxY)
}

func TestTouchRangeFallsBack(t *testing.T) {
	ranges := map[string]AxisRange{
		"mt_x": {Min: 0, Max: 0},
		"mt_y": {Min: 0, Max: 0},
		"x":    {Min: 10, Max: 110},
		"y":    {Min: 20, Max: 220},
	}

	cal, err := touchRangeFrom(ranges, [2]string{"mt_x", "mt_y"}, [2]string{"x", "y"})
	require.NoError(t, err)
	assert.Equal(t, types.Calibration{TouchMaxX: 100, TouchMaxY: 200, OffsetX: 10, OffsetY: 20}, cal)

	_, err = touchRangeFrom(map[string]AxisRange{}, [2]string{"x", "y"})
	assert.Error(t, err)
}
