// Package raster holds the in-memory RGBA pixel buffer shared by every
// processing stage.
package raster

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

// Buffer is a row-major, non-premultiplied RGBA raster, 8 bits per channel.
// len(Pix) is always Width*Height*4. A Buffer belongs to the stage that
// produced it and is handed over, never shared, to the next stage.
type Buffer struct {
	Width  int
	Height int
	Pix    []uint8
}

// New allocates a zeroed (fully transparent black) buffer.
func New(width, height int) *Buffer {
	if width < 0 || height < 0 {
		panic(fmt.Sprintf("raster: negative size %dx%d", width, height))
	}
	return &Buffer{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*4),
	}
}

// FromImage converts any decoded image into a Buffer anchored at (0,0).
// A tightly packed *image.NRGBA at the origin is adopted without copying,
// so the caller must not keep writing to it.
func FromImage(img image.Image) *Buffer {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if nrgba, ok := img.(*image.NRGBA); ok &&
		nrgba.Stride == w*4 && nrgba.Rect.Min.X == 0 && nrgba.Rect.Min.Y == 0 &&
		len(nrgba.Pix) == w*h*4 {
		return &Buffer{Width: w, Height: h, Pix: nrgba.Pix}
	}

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Src)
	return &Buffer{Width: w, Height: h, Pix: dst.Pix}
}

// Image exposes the buffer as an *image.NRGBA sharing the same pixels.
func (b *Buffer) Image() *image.NRGBA {
	return &image.NRGBA{
		Pix:    b.Pix,
		Stride: b.Width * 4,
		Rect:   image.Rect(0, 0, b.Width, b.Height),
	}
}

// Validate checks the length invariant.
func (b *Buffer) Validate() error {
	if b == nil {
		return fmt.Errorf("raster: nil buffer")
	}
	if b.Width < 0 || b.Height < 0 {
		return fmt.Errorf("raster: negative size %dx%d", b.Width, b.Height)
	}
	if len(b.Pix) != b.Width*b.Height*4 {
		return fmt.Errorf("raster: %dx%d buffer holds %d bytes, want %d",
			b.Width, b.Height, len(b.Pix), b.Width*b.Height*4)
	}
	return nil
}

// SameSize reports whether both buffers have identical dimensions.
func (b *Buffer) SameSize(o *Buffer) bool {
	return b.Width == o.Width && b.Height == o.Height
}

// Clone returns a deep copy.
func (b *Buffer) Clone() *Buffer {
	pix := make([]uint8, len(b.Pix))
	copy(pix, b.Pix)
	return &Buffer{Width: b.Width, Height: b.Height, Pix: pix}
}

// Len is the number of pixels.
func (b *Buffer) Len() int {
	return b.Width * b.Height
}
