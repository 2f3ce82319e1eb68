// Package encoder serializes composited buffers.
package encoder

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"
	"io"

	apperrors "github.com/ivlev/note-overlay/internal/errors"
	"github.com/ivlev/note-overlay/internal/raster"
)

// ImageEncoder writes a buffer in some image format.
type ImageEncoder interface {
	Encode(w io.Writer, buf *raster.Buffer) error
	Extension() string
	MIMEType() string
}

// PNG is a lossless encoder; decoding its output reproduces the buffer
// byte for byte.
type PNG struct {
	Compression png.CompressionLevel
}

func (e PNG) Encode(w io.Writer, buf *raster.Buffer) error {
	if err := buf.Validate(); err != nil {
		return apperrors.NewEncodeError("png", err)
	}
	if buf.Len() == 0 {
		return apperrors.NewEncodeError("png", fmt.Errorf("image has no pixels"))
	}
	enc := png.Encoder{CompressionLevel: e.Compression}
	if err := enc.Encode(w, buf.Image()); err != nil {
		return apperrors.NewEncodeError("png", err)
	}
	return nil
}

func (PNG) Extension() string { return ".png" }

func (PNG) MIMEType() string { return "image/png" }

// Bytes encodes into memory.
func Bytes(e ImageEncoder, buf *raster.Buffer) ([]byte, error) {
	var out bytes.Buffer
	if err := e.Encode(&out, buf); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// DataURL encodes the buffer for direct display in a browser <img>.
func DataURL(e ImageEncoder, buf *raster.Buffer) (string, error) {
	data, err := Bytes(e, buf)
	if err != nil {
		return "", err
	}
	return "data:" + e.MIMEType() + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// MergedName is the file name of a result: "{base}_merged.png".
func MergedName(base string, e ImageEncoder) string {
	return base + "_merged" + e.Extension()
}
