package analyzer

// Dilator grows a mask by a disc-shaped structuring element. Implementations
// must return a new mask and leave the input untouched.
type Dilator interface {
	Dilate(m Mask, radius int) Mask
}

// NaiveDilator stamps the full disc around every set pixel, O(W·H·r²).
type NaiveDilator struct{}

func (NaiveDilator) Dilate(m Mask, radius int) Mask {
	w, h := m.Width, m.Height
	out := make([]bool, w*h)
	r2 := radius * radius

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !m.Bits[y*w+x] {
				continue
			}
			for dy := -radius; dy <= radius; dy++ {
				ny := y + dy
				if ny < 0 || ny >= h {
					continue
				}
				for dx := -radius; dx <= radius; dx++ {
					nx := x + dx
					if nx < 0 || nx >= w {
						continue
					}
					if dx*dx+dy*dy <= r2 {
						out[ny*w+nx] = true
					}
				}
			}
		}
	}

	return Mask{Width: w, Height: h, Bits: out}
}

// SpanDilator decomposes the disc into one horizontal span per row offset
// and answers each span with a row prefix sum, O(W·H·r). Output is
// identical to NaiveDilator.
type SpanDilator struct{}

func (SpanDilator) Dilate(m Mask, radius int) Mask {
	w, h := m.Width, m.Height
	out := make([]bool, w*h)
	if w == 0 || h == 0 {
		return Mask{Width: w, Height: h, Bits: out}
	}

	// prefix[y*(w+1)+x] = number of set pixels in row y left of x
	prefix := make([]int32, (w+1)*h)
	for y := 0; y < h; y++ {
		row := prefix[y*(w+1) : (y+1)*(w+1)]
		for x := 0; x < w; x++ {
			row[x+1] = row[x]
			if m.Bits[y*w+x] {
				row[x+1]++
			}
		}
	}

	spans := halfWidths(radius)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			for dy := -radius; dy <= radius; dy++ {
				ny := y + dy
				if ny < 0 || ny >= h {
					continue
				}
				half := spans[abs(dy)]
				lo, hi := x-half, x+half+1
				if lo < 0 {
					lo = 0
				}
				if hi > w {
					hi = w
				}
				row := prefix[ny*(w+1) : (ny+1)*(w+1)]
				if row[hi]-row[lo] > 0 {
					out[y*w+x] = true
					break
				}
			}
		}
	}

	return Mask{Width: w, Height: h, Bits: out}
}

// halfWidths[d] is the largest k with k² + d² <= r².
func halfWidths(radius int) []int {
	r2 := radius * radius
	spans := make([]int, radius+1)
	k := radius
	for d := 0; d <= radius; d++ {
		for k*k+d*d > r2 {
			k--
		}
		spans[d] = k
	}
	return spans
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
