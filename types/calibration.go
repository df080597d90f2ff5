package types

// Calibration maps raw touch controller units onto screen pixels.
// It is fixed for the lifetime of a recording.
type Calibration struct {
	TouchMaxX    int `json:"touchMaxX"`
	TouchMaxY    int `json:"touchMaxY"`
	OffsetX      int `json:"offsetX"`
	OffsetY      int `json:"offsetY"`
	ScreenWidth  int `json:"screenWidth"`
	ScreenHeight int `json:"screenHeight"`
}

// ScaleX converts a raw X value into a screen column in [0, ScreenWidth-1].
func (c Calibration) ScaleX(raw int) int {
	return scale(raw, c.OffsetX, c.TouchMaxX, c.ScreenWidth)
}

// ScaleY converts a raw Y value into a screen row in [0, ScreenHeight-1].
func (c Calibration) ScaleY(raw int) int {
	return scale(raw, c.OffsetY, c.TouchMaxY, c.ScreenHeight)
}

// WithScreen returns a copy of c targeting a screen of the given size.
func (c Calibration) WithScreen(width, height int) Calibration {
	c.ScreenWidth = width
	c.ScreenHeight = height
	return c
}

func scale(raw, offset, touchMax, screen int) int {
	if touchMax <= 0 || screen <= 0 {
		return 0
	}

	v := int(int64(raw-offset) * int64(screen) / int64(touchMax))
	if v < 0 {
		return 0
	}
	if v > screen-1 {
		return screen - 1
	}
	return v
}
