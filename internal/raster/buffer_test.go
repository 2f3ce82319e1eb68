package raster

import (
	"image"
	"image/color"
	"testing"
)

func TestFromImageAdoptsPackedNRGBA(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	img.SetNRGBA(1, 1, color.NRGBA{R: 10, G: 20, B: 30, A: 40})

	buf := FromImage(img)
	if buf.Width != 3 || buf.Height != 2 {
		t.Fatalf("size = %dx%d, want 3x2", buf.Width, buf.Height)
	}
	if &buf.Pix[0] != &img.Pix[0] {
		t.Error("expected packed NRGBA to be adopted without copying")
	}
	if err := buf.Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestFromImageConvertsOffsetAndGray(t *testing.T) {
	gray := image.NewGray(image.Rect(5, 5, 9, 8))
	gray.SetGray(6, 6, color.Gray{Y: 77})

	buf := FromImage(gray)
	if buf.Width != 4 || buf.Height != 3 {
		t.Fatalf("size = %dx%d, want 4x3", buf.Width, buf.Height)
	}
	i := (1*buf.Width + 1) * 4
	if got := buf.Pix[i : i+4]; got[0] != 77 || got[1] != 77 || got[2] != 77 || got[3] != 255 {
		t.Errorf("pixel (1,1) = %v, want [77 77 77 255]", got)
	}
}

func TestImageSharesPixels(t *testing.T) {
	buf := New(2, 2)
	buf.Image().SetNRGBA(1, 0, color.NRGBA{R: 1, G: 2, B: 3, A: 4})
	if buf.Pix[4] != 1 || buf.Pix[7] != 4 {
		t.Errorf("write through Image() not visible: %v", buf.Pix)
	}
}

func TestValidate(t *testing.T) {
	var nilBuf *Buffer
	if err := nilBuf.Validate(); err == nil {
		t.Error("expected error for nil buffer")
	}
	bad := &Buffer{Width: 2, Height: 2, Pix: make([]uint8, 15)}
	if err := bad.Validate(); err == nil {
		t.Error("expected error for short pixel slice")
	}
}

func TestClone(t *testing.T) {
	buf := New(1, 1)
	c := buf.Clone()
	c.Pix[0] = 9
	if buf.Pix[0] != 0 {
		t.Error("clone must not alias the source")
	}
}
