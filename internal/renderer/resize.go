package renderer

import (
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"

	"github.com/ivlev/note-overlay/internal/raster"
)

// Kernel selects the resampling filter used when the annotated image has to
// be brought to the original's size.
type Kernel string

const (
	Nearest    Kernel = "nearest"
	Bilinear   Kernel = "bilinear"
	CatmullRom Kernel = "catmullrom"
	Lanczos    Kernel = "lanczos"
)

// DefaultKernel is close to what browsers use for canvas scaling.
const DefaultKernel = Bilinear

// ParseKernel resolves a kernel name; an empty name selects DefaultKernel.
func ParseKernel(name string) (Kernel, error) {
	switch k := Kernel(strings.ToLower(strings.TrimSpace(name))); k {
	case "":
		return DefaultKernel, nil
	case Nearest, Bilinear, CatmullRom, Lanczos:
		return k, nil
	default:
		return "", fmt.Errorf("unknown resize kernel: %s", name)
	}
}

// Resize returns a new buffer of exactly width×height. The source is left
// untouched; a buffer that already has the requested size is cloned.
func Resize(src *raster.Buffer, width, height int, kernel Kernel) (*raster.Buffer, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid target size %dx%d", width, height)
	}
	if src.Width == width && src.Height == height {
		return src.Clone(), nil
	}
	if src.Len() == 0 {
		return nil, fmt.Errorf("cannot resize empty %dx%d image", src.Width, src.Height)
	}

	if kernel == "" {
		kernel = DefaultKernel
	}

	if kernel == Lanczos {
		// imaging works on NRGBA and always returns a packed image at the origin.
		return raster.FromImage(imaging.Resize(src.Image(), width, height, imaging.Lanczos)), nil
	}

	var interp draw.Interpolator
	switch kernel {
	case Nearest:
		interp = draw.NearestNeighbor
	case Bilinear:
		interp = draw.BiLinear
	case CatmullRom:
		interp = draw.CatmullRom
	default:
		return nil, fmt.Errorf("unknown resize kernel: %s", kernel)
	}

	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	interp.Scale(dst, dst.Bounds(), src.Image(), image.Rect(0, 0, src.Width, src.Height), draw.Src, nil)
	return raster.FromImage(dst), nil
}
