package converter

import (
	"errors"
	"fmt"
)

var (
	ErrMissingDimension  = errors.New("at least one of width or height is required")
	ErrInvalidDimensions = errors.New("invalid dimensions")
	ErrTooManyPixels     = errors.New("image exceeds the pixel limit")
)

// ExceedsPixels reports whether a width x height image has more than
// maxPixels pixels. maxPixels <= 0 disables the limit.
func ExceedsPixels(width, height, maxPixels int) bool {
	if maxPixels <= 0 || width <= 0 || height <= 0 {
		return false
	}
	return width > maxPixels/height
}

// TargetSize resolves the final resize dimensions. A missing side is derived
// from the original aspect ratio and truncated toward zero; when both sides
// are given they are used as is. The result must not exceed maxPixels.
func TargetSize(origWidth, origHeight int, width, height *int, maxPixels int) (int, int, error) {
	if width == nil && height == nil {
		return 0, 0, ErrMissingDimension
	}
	if origWidth < 1 || origHeight < 1 {
		return 0, 0, fmt.Errorf("%w: source is %dx%d", ErrInvalidDimensions, origWidth, origHeight)
	}

	var w, h int
	switch {
	case width != nil && height != nil:
		w, h = *width, *height
	case width != nil:
		w = *width
		h = int(float64(w) / float64(origWidth) * float64(origHeight))
	default:
		h = *height
		w = int(float64(h) / float64(origHeight) * float64(origWidth))
	}

	if w < 1 || h < 1 {
		return w, h, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, w, h)
	}
	if ExceedsPixels(w, h, maxPixels) {
		return w, h, fmt.Errorf("%w: %dx%d is above %d pixels", ErrInvalidDimensions, w, h, maxPixels)
	}

	return w, h, nil
}
