package engine

import (
	"context"
	"fmt"

	"github.com/ivlev/note-overlay/internal/analyzer"
	"github.com/ivlev/note-overlay/internal/config"
	"github.com/ivlev/note-overlay/internal/effects"
	"github.com/ivlev/note-overlay/internal/encoder"
	apperrors "github.com/ivlev/note-overlay/internal/errors"
	"github.com/ivlev/note-overlay/internal/raster"
	"github.com/ivlev/note-overlay/internal/renderer"
	"github.com/ivlev/note-overlay/internal/source"
)

// Engine wires the processing stages together. It holds only immutable
// settings, so one Engine may serve any number of concurrent calls.
type Engine struct {
	Decode  source.DecodeOptions
	Kernel  renderer.Kernel
	Dilator analyzer.Dilator
	Encoder encoder.ImageEncoder
}

// NewEngine builds an engine from the CLI configuration.
func NewEngine(cfg *config.Config) (*Engine, error) {
	kernel, err := renderer.ParseKernel(cfg.Kernel)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error(), nil)
	}
	dil, err := analyzer.NewDilator(cfg.Dilator)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error(), nil)
	}
	return &Engine{
		Decode:  source.DecodeOptions{DPI: cfg.DPI, AutoOrient: cfg.AutoOrient},
		Kernel:  kernel,
		Dilator: dil,
		Encoder: encoder.PNG{},
	}, nil
}

// DefaultEngine uses bilinear resizing, span dilation and PNG output.
func DefaultEngine() *Engine {
	return &Engine{
		Decode:  source.DecodeOptions{DPI: source.DefaultDPI, AutoOrient: true},
		Kernel:  renderer.DefaultKernel,
		Dilator: analyzer.SpanDilator{},
		Encoder: encoder.PNG{},
	}
}

// Result is one encoded merge.
type Result struct {
	// Name is the suggested file name, "{originalBase}_merged.png".
	Name   string
	Data   []byte
	Width  int
	Height int
}

// stages keeps every intermediate artifact of one merge.
type stages struct {
	original  *raster.Buffer
	annotated *raster.Buffer
	mask      analyzer.Mask
	composite *raster.Buffer
}

// merge runs decode -> resize -> mask -> composite. The original is always
// the size reference.
func (e *Engine) merge(ctx context.Context, original, annotated source.Resource, opts config.Options) (*stages, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if original == nil || annotated == nil {
		return nil, apperrors.NewValidationError("original and annotated images are required", nil)
	}

	orig, err := source.Decode(ctx, original, e.Decode)
	if err != nil {
		return nil, err
	}
	ann, err := source.Decode(ctx, annotated, e.Decode)
	if err != nil {
		return nil, err
	}

	if !orig.SameSize(ann) {
		ann, err = renderer.Resize(ann, orig.Width, orig.Height, e.Kernel)
		if err != nil {
			return nil, apperrors.NewInternalError(fmt.Sprintf("resize %s", annotated.Name()), err)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mask := analyzer.ExtractMaskWith(orig, opts.TextThreshold, opts.MaskExpand, e.Dilator)
	out, err := effects.Composite(orig, ann, mask, effects.ParseColor(opts.BlockColor), opts.BlockOpacity)
	if err != nil {
		return nil, apperrors.NewInternalError("composite", err)
	}

	return &stages{original: orig, annotated: ann, mask: mask, composite: out}, nil
}

// ProcessPair merges one pair and encodes the result. Errors are returned
// as they happen; there is no batch to isolate them in.
func (e *Engine) ProcessPair(ctx context.Context, original, annotated source.Resource, opts config.Options) (*Result, error) {
	st, err := e.merge(ctx, original, annotated, opts)
	if err != nil {
		return nil, err
	}

	data, err := encoder.Bytes(e.Encoder, st.composite)
	if err != nil {
		return nil, err
	}
	return &Result{
		Name:   encoder.MergedName(source.BaseName(original.Name()), e.Encoder),
		Data:   data,
		Width:  st.composite.Width,
		Height: st.composite.Height,
	}, nil
}
