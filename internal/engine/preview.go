package engine

import (
	"context"
	"sync/atomic"

	"github.com/ivlev/note-overlay/internal/config"
	"github.com/ivlev/note-overlay/internal/effects"
	"github.com/ivlev/note-overlay/internal/encoder"
	apperrors "github.com/ivlev/note-overlay/internal/errors"
	"github.com/ivlev/note-overlay/internal/raster"
	"github.com/ivlev/note-overlay/internal/source"
)

// Ticket identifies one preview request. Later requests get larger tickets.
type Ticket uint64

// Tracker hands out tickets for one logical preview target (one pair slot
// in a UI). A result is worth showing only while its ticket is current.
type Tracker struct {
	latest atomic.Uint64
}

// Next supersedes every earlier ticket.
func (t *Tracker) Next() Ticket {
	return Ticket(t.latest.Add(1))
}

// IsCurrent reports whether no newer ticket has been issued.
func (t *Tracker) IsCurrent(tk Ticket) bool {
	return uint64(tk) == t.latest.Load()
}

// PreviewResult holds the four display images of a live preview. The
// engine never publishes it anywhere; the caller checks Ticket first.
type PreviewResult struct {
	Ticket      Ticket
	Original    *raster.Buffer
	Annotated   *raster.Buffer // resized to the original's size if needed
	MaskOverlay *raster.Buffer
	Composite   *raster.Buffer
	TextPixels  int
}

// PreviewURLs is PreviewResult encoded for a browser.
type PreviewURLs struct {
	Ticket      Ticket `json:"ticket"`
	Original    string `json:"original"`
	Annotated   string `json:"annotated"`
	MaskOverlay string `json:"maskOverlay"`
	Composite   string `json:"composite"`
}

// Preview runs the pipeline and keeps every intermediate image.
func (e *Engine) Preview(ctx context.Context, ticket Ticket, original, annotated source.Resource, opts config.Options) (*PreviewResult, error) {
	st, err := e.merge(ctx, original, annotated, opts)
	if err != nil {
		return nil, err
	}
	overlay, err := effects.MaskOverlay(st.original, st.mask)
	if err != nil {
		return nil, apperrors.NewInternalError("mask overlay", err)
	}
	return &PreviewResult{
		Ticket:      ticket,
		Original:    st.original,
		Annotated:   st.annotated,
		MaskOverlay: overlay,
		Composite:   st.composite,
		TextPixels:  st.mask.Count(),
	}, nil
}

// DataURLs encodes the four images.
func (p *PreviewResult) DataURLs(enc encoder.ImageEncoder) (*PreviewURLs, error) {
	out := &PreviewURLs{Ticket: p.Ticket}
	targets := []struct {
		dst *string
		buf *raster.Buffer
	}{
		{&out.Original, p.Original},
		{&out.Annotated, p.Annotated},
		{&out.MaskOverlay, p.MaskOverlay},
		{&out.Composite, p.Composite},
	}
	for _, t := range targets {
		url, err := encoder.DataURL(enc, t.buf)
		if err != nil {
			return nil, err
		}
		*t.dst = url
	}
	return out, nil
}
