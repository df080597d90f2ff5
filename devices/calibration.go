package devices

import (
	"fmt"

	"github.com/touchrec/touchrec/types"
)

// AxisRange is the raw value span of one absolute axis.
type AxisRange struct {
	Min int
	Max int
}

// touchRangeFrom picks the first axis pair present in ranges.
func touchRangeFrom[K comparable](ranges map[K]AxisRange, pairs ...[2]K) (types.Calibration, error) {
	for _, pair := range pairs {
		x, okX := ranges[pair[0]]
		y, okY := ranges[pair[1]]
		if !okX || !okY {
			continue
		}
		if x.Max <= x.Min || y.Max <= y.Min {
			continue
		}
		return CalibrationFromCorners(x.Min, y.Min, x.Max, y.Max)
	}
	return types.Calibration{}, fmt.Errorf("device reports no usable absolute X/Y axes")
}

// CalibrationFromCorners turns the raw values read at the top-left and
// bottom-right corners into a touch range and offset.
func CalibrationFromCorners(minX, minY, maxX, maxY int) (types.Calibration, error) {
	if maxX <= minX || maxY <= minY {
		return types.Calibration{}, fmt.Errorf("bottom-right (%d,%d) must be beyond top-left (%d,%d)", maxX, maxY, minX, minY)
	}

	return types.Calibration{
		TouchMaxX: maxX - minX,
		TouchMaxY: maxY - minY,
		OffsetX:   minX,
		OffsetY:   minY,
	}, nil
}
