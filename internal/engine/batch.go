package engine

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ivlev/note-overlay/internal/archive"
	"github.com/ivlev/note-overlay/internal/config"
	apperrors "github.com/ivlev/note-overlay/internal/errors"
	"github.com/ivlev/note-overlay/internal/logger"
	"github.com/ivlev/note-overlay/internal/pairing"
)

// ProgressEvent is emitted once per pair, in pair order, after the pair's
// attempt has finished. Index is 1-based.
type ProgressEvent struct {
	Index       int
	Total       int
	DisplayName string
	Success     bool
	Error       string
}

// ProgressFunc is called synchronously; the batch waits for it.
type ProgressFunc func(ProgressEvent)

// BatchOutcome is the result of one pair.
type BatchOutcome struct {
	Index       int    `yaml:"index" json:"index"`
	DisplayName string `yaml:"displayName" json:"displayName"`
	Success     bool   `yaml:"success" json:"success"`
	Error       string `yaml:"error,omitempty" json:"error,omitempty"`
	// Entry is the archive entry written for a successful pair.
	Entry string `yaml:"entry,omitempty" json:"entry,omitempty"`
}

// BatchReport summarizes a batch. Outcomes are ordered by pair index.
type BatchReport struct {
	Total     int            `yaml:"total" json:"total"`
	Succeeded int            `yaml:"succeeded" json:"succeeded"`
	Failed    int            `yaml:"failed" json:"failed"`
	Outcomes  []BatchOutcome `yaml:"outcomes" json:"outcomes"`
}

// Runner processes many pairs. With Workers <= 1 pairs run strictly one
// after another, so only one decoded pair is held in memory at a time.
// More workers process pairs concurrently; outcomes, progress and archive
// entries still follow pair order.
type Runner struct {
	Engine  *Engine
	Archive *archive.Writer // optional
	Workers int
}

type pairResult struct {
	name string
	data []byte
	err  error
}

// RunBatch never fails because of a single pair: decode, encode and
// internal failures become failed outcomes. It returns an error only for
// invalid options, a missing engine or a cancelled context; in the last
// case the report covers the pairs finished so far.
func (r *Runner) RunBatch(ctx context.Context, pairs []pairing.ImagePair, opts config.Options, progress ProgressFunc) (*BatchReport, error) {
	if r.Engine == nil {
		return nil, apperrors.NewValidationError("runner has no engine", nil)
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	total := len(pairs)
	report := &BatchReport{Total: total, Outcomes: make([]BatchOutcome, 0, total)}
	if total == 0 {
		return report, nil
	}

	workers := r.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > total {
		workers = total
	}

	var (
		mu      sync.Mutex
		results = make([]*pairResult, total)
		next    int
	)

	// flush hands finished pairs to the archive and the progress callback
	// in index order. Caller holds mu.
	flush := func() {
		for next < total && results[next] != nil {
			res := results[next]
			results[next] = nil
			pair := pairs[next]

			outcome := BatchOutcome{Index: next, DisplayName: pair.DisplayName, Success: res.err == nil}
			if res.err == nil && r.Archive != nil {
				entry, err := r.Archive.Add(res.name, res.data)
				if err != nil {
					res.err = err
					outcome.Success = false
				}
				outcome.Entry = entry
			}
			if res.err != nil {
				outcome.Error = res.err.Error()
				report.Failed++
			} else {
				report.Succeeded++
			}
			report.Outcomes = append(report.Outcomes, outcome)

			if progress != nil {
				progress(ProgressEvent{
					Index:       next + 1,
					Total:       total,
					DisplayName: pair.DisplayName,
					Success:     outcome.Success,
					Error:       outcome.Error,
				})
			}
			next++
		}
	}

	g := new(errgroup.Group)
	g.SetLimit(workers)

	for i := range pairs {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			res := r.processOne(ctx, i, pairs[i], opts)
			mu.Lock()
			results[i] = res
			flush()
			mu.Unlock()
			return nil
		})
	}
	g.Wait()

	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

func (r *Runner) processOne(ctx context.Context, index int, pair pairing.ImagePair, opts config.Options) (res *pairResult) {
	start := time.Now()
	log := logger.WithFields(logrus.Fields{
		"index": index + 1,
		"pair":  pair.DisplayName,
	})

	defer func() {
		if p := recover(); p != nil {
			log.WithField("stack", string(debug.Stack())).Errorf("panic while processing pair: %v", p)
			res = &pairResult{err: apperrors.NewInternalError(fmt.Sprintf("panic: %v", p), nil)}
		}
	}()

	out, err := r.Engine.ProcessPair(ctx, pair.Original, pair.Annotated, opts)
	if err != nil {
		log.WithError(err).Warn("pair failed")
		return &pairResult{err: err}
	}

	log.WithFields(logrus.Fields{
		"size":     fmt.Sprintf("%dx%d", out.Width, out.Height),
		"duration": time.Since(start).Round(time.Millisecond).String(),
	}).Debug("pair merged")
	return &pairResult{name: out.Name, data: out.Data}
}
