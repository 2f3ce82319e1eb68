package source

import (
	"bytes"
	"context"
	"fmt"
	"io"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/go-fitz"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	apperrors "github.com/ivlev/note-overlay/internal/errors"
	"github.com/ivlev/note-overlay/internal/raster"
)

// DefaultDPI is used to rasterize PDF originals when no DPI is configured.
const DefaultDPI = 150

var pdfMagic = []byte("%PDF-")

// DecodeOptions tunes how encoded resources become pixel buffers.
type DecodeOptions struct {
	// DPI for rendering the first page of a PDF resource.
	DPI int
	// AutoOrient applies the EXIF orientation tag of JPEG photos.
	AutoOrient bool
}

// Decode reads and rasterizes a resource. Every failure is an *AppError of
// type decode.
func Decode(ctx context.Context, res Resource, opts DecodeOptions) (*raster.Buffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name := res.Name()
	rc, err := res.Open()
	if err != nil {
		return nil, apperrors.NewDecodeError(name, err)
	}
	data, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return nil, apperrors.NewDecodeError(name, err)
	}

	return DecodeBytes(name, data, opts)
}

// DecodeBytes is Decode for data already in memory.
func DecodeBytes(name string, data []byte, opts DecodeOptions) (*raster.Buffer, error) {
	if len(data) == 0 {
		return nil, apperrors.NewDecodeError(name, fmt.Errorf("empty resource"))
	}

	if bytes.HasPrefix(data, pdfMagic) {
		buf, err := renderPDF(data, opts.DPI)
		if err != nil {
			return nil, apperrors.NewDecodeError(name, err)
		}
		return buf, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(opts.AutoOrient))
	if err != nil {
		return nil, apperrors.NewDecodeError(name, err)
	}
	buf := raster.FromImage(img)
	if buf.Len() == 0 {
		return nil, apperrors.NewDecodeError(name, fmt.Errorf("image has no pixels"))
	}
	return buf, nil
}

// renderPDF rasterizes the first page; scanned notes usually arrive as
// single-page PDFs.
func renderPDF(data []byte, dpi int) (*raster.Buffer, error) {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	if doc.NumPage() == 0 {
		return nil, fmt.Errorf("pdf has no pages")
	}
	img, err := doc.ImageDPI(0, float64(dpi))
	if err != nil {
		return nil, err
	}
	return raster.FromImage(img), nil
}
