package config

import (
	"fmt"
	"math"

	apperrors "github.com/ivlev/note-overlay/internal/errors"
)

// MaxMaskExpand bounds the dilation radius accepted from callers. The UI
// offers 0-10; larger values are allowed but get slow on big pages.
const MaxMaskExpand = 64

// Options controls one merge. It is a value: every processing call works on
// its own copy.
type Options struct {
	// TextThreshold: pixels with luminance below it are text.
	TextThreshold int `yaml:"textThreshold" json:"textThreshold"`
	// MaskExpand is the dilation radius in pixels.
	MaskExpand int `yaml:"maskExpand" json:"maskExpand"`
	// BlockColor is #RGB or #RRGGBB; anything else means yellow.
	BlockColor string `yaml:"blockColor" json:"blockColor"`
	// BlockOpacity is the weight of BlockColor over the annotated image.
	BlockOpacity float64 `yaml:"blockOpacity" json:"blockOpacity"`
}

// DefaultOptions matches the "highlight-yellow" preset.
func DefaultOptions() Options {
	return Options{
		TextThreshold: 200,
		MaskExpand:    2,
		BlockColor:    "#FFFF00",
		BlockOpacity:  0.3,
	}
}

// Validate rejects values the engine cannot work with. A malformed
// BlockColor is not an error.
func (o Options) Validate() error {
	if o.TextThreshold < 0 || o.TextThreshold > 255 {
		return apperrors.NewValidationError(fmt.Sprintf("textThreshold %d outside [0,255]", o.TextThreshold), nil)
	}
	if o.MaskExpand < 0 || o.MaskExpand > MaxMaskExpand {
		return apperrors.NewValidationError(fmt.Sprintf("maskExpand %d outside [0,%d]", o.MaskExpand, MaxMaskExpand), nil)
	}
	if math.IsNaN(o.BlockOpacity) || o.BlockOpacity < 0 || o.BlockOpacity > 1 {
		return apperrors.NewValidationError(fmt.Sprintf("blockOpacity %v outside [0,1]", o.BlockOpacity), nil)
	}
	return nil
}

// Overrides lists optional per-field replacements, e.g. from CLI flags that
// were set explicitly on top of a preset.
type Overrides struct {
	TextThreshold *int
	MaskExpand    *int
	BlockColor    *string
	BlockOpacity  *float64
}

// WithOverrides returns a copy with the non-nil overrides applied.
func (o Options) WithOverrides(ov Overrides) Options {
	if ov.TextThreshold != nil {
		o.TextThreshold = *ov.TextThreshold
	}
	if ov.MaskExpand != nil {
		o.MaskExpand = *ov.MaskExpand
	}
	if ov.BlockColor != nil {
		o.BlockColor = *ov.BlockColor
	}
	if ov.BlockOpacity != nil {
		o.BlockOpacity = *ov.BlockOpacity
	}
	return o
}
