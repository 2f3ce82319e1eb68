package engine

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	apperrors "github.com/ivlev/note-overlay/internal/errors"
)

// SaveReport stores a finished batch as YAML next to its archive.
func SaveReport(path string, r *BatchReport) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

// LoadReport reads a report written by SaveReport. Unknown keys and
// counters that disagree with the outcome list are rejected.
func LoadReport(path string) (*BatchReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var r BatchReport
	if err := dec.Decode(&r); err != nil {
		return nil, apperrors.NewValidationError(fmt.Sprintf("malformed report %s", path), err)
	}
	if err := r.check(); err != nil {
		return nil, apperrors.NewValidationError(fmt.Sprintf("inconsistent report %s", path), err)
	}
	return &r, nil
}

// Failures returns the failed outcomes in pair order.
func (r *BatchReport) Failures() []BatchOutcome {
	var out []BatchOutcome
	for _, o := range r.Outcomes {
		if !o.Success {
			out = append(out, o)
		}
	}
	return out
}

func (r *BatchReport) check() error {
	ok := 0
	for _, o := range r.Outcomes {
		if o.Success {
			ok++
		}
	}
	switch {
	case ok != r.Succeeded:
		return fmt.Errorf("succeeded = %d, outcomes show %d", r.Succeeded, ok)
	case len(r.Outcomes)-ok != r.Failed:
		return fmt.Errorf("failed = %d, outcomes show %d", r.Failed, len(r.Outcomes)-ok)
	case len(r.Outcomes) > r.Total:
		return fmt.Errorf("%d outcomes for %d pairs", len(r.Outcomes), r.Total)
	}
	return nil
}
