package renderer

import (
	"testing"

	"github.com/ivlev/note-overlay/internal/raster"
)

func solid(w, h int, r, g, b uint8) *raster.Buffer {
	buf := raster.New(w, h)
	for i := 0; i < len(buf.Pix); i += 4 {
		buf.Pix[i], buf.Pix[i+1], buf.Pix[i+2], buf.Pix[i+3] = r, g, b, 255
	}
	return buf
}

func TestResizeExactDimensions(t *testing.T) {
	src := solid(13, 7, 10, 20, 30)

	for _, k := range []Kernel{Nearest, Bilinear, CatmullRom, Lanczos} {
		for _, size := range [][2]int{{26, 14}, {5, 3}, {1, 1}, {100, 9}} {
			out, err := Resize(src, size[0], size[1], k)
			if err != nil {
				t.Fatalf("%s %v: %v", k, size, err)
			}
			if out.Width != size[0] || out.Height != size[1] {
				t.Errorf("%s: got %dx%d, want %dx%d", k, out.Width, out.Height, size[0], size[1])
			}
			if err := out.Validate(); err != nil {
				t.Errorf("%s: %v", k, err)
			}
		}
	}
}

func TestResizeKeepsSolidColor(t *testing.T) {
	src := solid(8, 8, 200, 100, 50)

	for _, k := range []Kernel{Nearest, Bilinear, CatmullRom, Lanczos} {
		out, err := Resize(src, 16, 12, k)
		if err != nil {
			t.Fatal(err)
		}
		for i := 0; i < len(out.Pix); i += 4 {
			if diff(out.Pix[i], 200) > 1 || diff(out.Pix[i+1], 100) > 1 || diff(out.Pix[i+2], 50) > 1 {
				t.Fatalf("%s: pixel %d = %v, want ~[200 100 50]", k, i/4, out.Pix[i:i+4])
			}
		}
	}
}

func TestResizeDoesNotTouchSource(t *testing.T) {
	src := solid(4, 4, 1, 2, 3)
	before := src.Clone()

	out, err := Resize(src, 4, 4, Bilinear)
	if err != nil {
		t.Fatal(err)
	}
	out.Pix[0] = 99
	for i := range src.Pix {
		if src.Pix[i] != before.Pix[i] {
			t.Fatal("source buffer changed")
		}
	}
}

func TestResizeRejectsBadInput(t *testing.T) {
	if _, err := Resize(solid(2, 2, 0, 0, 0), 0, 5, Bilinear); err == nil {
		t.Error("expected error for zero width")
	}
	if _, err := Resize(raster.New(0, 0), 5, 5, Bilinear); err == nil {
		t.Error("expected error for empty source")
	}
	if _, err := Resize(solid(2, 2, 0, 0, 0), 5, 5, Kernel("box")); err == nil {
		t.Error("expected error for unknown kernel")
	}
}

func TestParseKernel(t *testing.T) {
	tests := []struct {
		in      string
		want    Kernel
		wantErr bool
	}{
		{"", Bilinear, false},
		{"Lanczos", Lanczos, false},
		{" nearest ", Nearest, false},
		{"catmullrom", CatmullRom, false},
		{"bicubic", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKernel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func diff(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}
