package pairing

import (
	apperrors "github.com/ivlev/note-overlay/internal/errors"
)

// OrdinalStrategy pairs Originals[i] with Annotated[i]. The surplus of the
// longer list is left unpaired and counted in Result.Mismatch.
type OrdinalStrategy struct{}

func (OrdinalStrategy) Name() string { return "ordinal" }

func (OrdinalStrategy) Match(in Input) (Result, error) {
	if len(in.Files) > 0 {
		return Result{}, apperrors.NewPairingError("ordinal strategy takes separate original and annotated lists", nil)
	}

	n := min(len(in.Originals), len(in.Annotated))
	res := Result{Pairs: make([]ImagePair, 0, n)}
	for i := 0; i < n; i++ {
		res.Pairs = append(res.Pairs, newPair(i, in.Originals[i], in.Annotated[i]))
	}

	res.Unpaired = append(res.Unpaired, in.Originals[n:]...)
	res.Unpaired = append(res.Unpaired, in.Annotated[n:]...)
	res.Mismatch = len(in.Originals) + len(in.Annotated) - 2*n
	return res, nil
}
