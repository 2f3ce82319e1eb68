package effects

import (
	"errors"
	"fmt"
	"math"

	"github.com/ivlev/note-overlay/internal/analyzer"
	"github.com/ivlev/note-overlay/internal/raster"
)

// ErrDimensionMismatch is returned when inputs disagree in size. Callers are
// expected to resize the annotated image first.
var ErrDimensionMismatch = errors.New("effects: original, annotated and mask sizes differ")

// Composite keeps the original's text pixels and covers everything else with
// the annotated pixel blended towards color:
//
//	out = round(annotated*(1-opacity) + color*opacity)
//
// Alpha is always 255. Inputs are not modified.
func Composite(original, annotated *raster.Buffer, mask analyzer.Mask, color RGB, opacity float64) (*raster.Buffer, error) {
	if err := checkInputs(original, annotated, mask); err != nil {
		return nil, err
	}
	if math.IsNaN(opacity) || opacity < 0 || opacity > 1 {
		return nil, fmt.Errorf("effects: opacity %v outside [0,1]", opacity)
	}

	// One lookup table per channel: every annotated value maps to exactly one result.
	var lut [3][256]uint8
	for ch, c := range [3]uint8{color.R, color.G, color.B} {
		for v := 0; v < 256; v++ {
			lut[ch][v] = uint8(math.Round(float64(v)*(1-opacity) + float64(c)*opacity))
		}
	}

	out := raster.New(original.Width, original.Height)
	src, ann, dst := original.Pix, annotated.Pix, out.Pix
	for i, text := range mask.Bits {
		o := i * 4
		if text {
			dst[o] = src[o]
			dst[o+1] = src[o+1]
			dst[o+2] = src[o+2]
		} else {
			dst[o] = lut[0][ann[o]]
			dst[o+1] = lut[1][ann[o+1]]
			dst[o+2] = lut[2][ann[o+2]]
		}
		dst[o+3] = 255
	}
	return out, nil
}

// MaskOverlay tints text pixels half-way towards red so the mask can be
// inspected on top of the original. Non-text pixels are copied as is.
func MaskOverlay(original *raster.Buffer, mask analyzer.Mask) (*raster.Buffer, error) {
	if err := original.Validate(); err != nil {
		return nil, err
	}
	if mask.Width != original.Width || mask.Height != original.Height || len(mask.Bits) != original.Len() {
		return nil, ErrDimensionMismatch
	}

	out := raster.New(original.Width, original.Height)
	src, dst := original.Pix, out.Pix
	for i, text := range mask.Bits {
		o := i * 4
		if text {
			dst[o] = uint8(math.Round(float64(src[o])*0.5 + 127.5))
			dst[o+1] = uint8(math.Round(float64(src[o+1]) * 0.5))
			dst[o+2] = uint8(math.Round(float64(src[o+2]) * 0.5))
		} else {
			dst[o] = src[o]
			dst[o+1] = src[o+1]
			dst[o+2] = src[o+2]
		}
		dst[o+3] = 255
	}
	return out, nil
}

func checkInputs(original, annotated *raster.Buffer, mask analyzer.Mask) error {
	if err := original.Validate(); err != nil {
		return fmt.Errorf("original: %w", err)
	}
	if err := annotated.Validate(); err != nil {
		return fmt.Errorf("annotated: %w", err)
	}
	if !original.SameSize(annotated) ||
		mask.Width != original.Width || mask.Height != original.Height ||
		len(mask.Bits) != original.Len() {
		return ErrDimensionMismatch
	}
	return nil
}
