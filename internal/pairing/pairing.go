// Package pairing groups input files into original/annotated pairs.
//
// Two policies exist and the caller picks one explicitly:
//
//   - keyword: one flat list, files grouped by name, the annotated member
//     carries "annotated", "marked" or "标注" in its name;
//   - ordinal: two curated lists, matched by position.
package pairing

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/ivlev/note-overlay/internal/source"
)

// ImagePair is one unit of batch work.
type ImagePair struct {
	ID          string
	Original    source.Resource
	Annotated   source.Resource
	DisplayName string
}

// Input carries the files to pair. Keyword reads Files, ordinal reads
// Originals and Annotated.
type Input struct {
	Files     []source.Resource
	Originals []source.Resource
	Annotated []source.Resource
}

// Result is the outcome of matching. Unpaired files and count mismatches are
// information for the caller, not errors.
type Result struct {
	Pairs    []ImagePair
	Unpaired []source.Resource
	// Mismatch is |len(Originals) - len(Annotated)| for the ordinal strategy.
	Mismatch int
}

// Strategy turns input files into pairs. Same input order, same output.
type Strategy interface {
	Name() string
	Match(in Input) (Result, error)
}

// NewStrategy creates a strategy based on the specified variant
func NewStrategy(variant string) (Strategy, error) {
	switch variant {
	case "keyword", "fuzzy":
		return KeywordStrategy{}, nil
	case "ordinal":
		return OrdinalStrategy{}, nil
	default:
		return nil, fmt.Errorf("unknown pairing strategy: %q (want keyword or ordinal)", variant)
	}
}

var pairNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("note-overlay/pair"))

func newPair(index int, original, annotated source.Resource) ImagePair {
	key := fmt.Sprintf("%d\x00%s\x00%s", index, original.Name(), annotated.Name())
	return ImagePair{
		ID:          uuid.NewSHA1(pairNamespace, []byte(key)).String(),
		Original:    original,
		Annotated:   annotated,
		DisplayName: original.Name(),
	}
}
