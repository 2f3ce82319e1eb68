package analyzer

import (
	"github.com/ivlev/note-overlay/internal/raster"
	"github.com/ivlev/note-overlay/internal/system"
)

// Mask marks the pixels classified as text. Bits is indexed like the
// pixel buffer without the channel stride and is never modified after
// extraction.
type Mask struct {
	Width  int
	Height int
	Bits   []bool
}

// At reports whether (x, y) is text. Out-of-bounds points are not.
func (m Mask) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return false
	}
	return m.Bits[y*m.Width+x]
}

// Count returns the number of text pixels.
func (m Mask) Count() int {
	n := 0
	for _, b := range m.Bits {
		if b {
			n++
		}
	}
	return n
}

// Luminance returns the weighted brightness 0.299R + 0.587G + 0.114B.
func Luminance(r, g, b uint8) float64 {
	return float64(luminance1000(r, g, b)) / 1000
}

// luminance1000 is Luminance scaled by 1000 so thresholds compare exactly.
func luminance1000(r, g, b uint8) int {
	return 299*int(r) + 587*int(g) + 114*int(b)
}

// ExtractMask marks every pixel darker than threshold as text and grows the
// result by a disc of radius expand using the default dilator.
func ExtractMask(buf *raster.Buffer, threshold, expand int) Mask {
	return ExtractMaskWith(buf, threshold, expand, defaultDilator)
}

// ExtractMaskWith is ExtractMask with an explicit dilation strategy.
func ExtractMaskWith(buf *raster.Buffer, threshold, expand int, d Dilator) Mask {
	w, h := buf.Width, buf.Height

	var bits []bool
	if expand > 0 {
		bits = system.GetMask(w * h)
	} else {
		bits = make([]bool, w*h)
	}

	limit := threshold * 1000
	pix := buf.Pix
	for i := range bits {
		o := i * 4
		if luminance1000(pix[o], pix[o+1], pix[o+2]) < limit {
			bits[i] = true
		}
	}

	raw := Mask{Width: w, Height: h, Bits: bits}
	if expand <= 0 {
		return raw
	}

	if d == nil {
		d = defaultDilator
	}
	out := d.Dilate(raw, expand)
	system.PutMask(bits)
	return out
}
