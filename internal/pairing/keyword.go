package pairing

import (
	"regexp"

	apperrors "github.com/ivlev/note-overlay/internal/errors"
	"github.com/ivlev/note-overlay/internal/source"
)

var (
	// A keyword together with one separator in front of it: "page1_annotated" -> "page1".
	keywordStrip = regexp.MustCompile(`(?i)[_\-. ]?(?:annotated|marked|标注)`)
	keywordMatch = regexp.MustCompile(`(?i)annotated|marked|标注`)
)

// KeywordStrategy pairs files of one flat list by normalized base name.
type KeywordStrategy struct{}

func (KeywordStrategy) Name() string { return "keyword" }

// NormalizeName strips the extension and the annotation keywords.
func NormalizeName(name string) string {
	return keywordStrip.ReplaceAllString(source.BaseName(name), "")
}

// IsAnnotatedName reports whether a file name marks an annotated image.
func IsAnnotatedName(name string) bool {
	return keywordMatch.MatchString(name)
}

// Match emits one pair per group of exactly two files. Groups appear in
// order of their first file; every other file lands in Unpaired.
func (KeywordStrategy) Match(in Input) (Result, error) {
	if len(in.Originals) > 0 || len(in.Annotated) > 0 {
		return Result{}, apperrors.NewPairingError("keyword strategy takes a single file list", nil)
	}

	var order []string
	groups := make(map[string][]int)
	for i, f := range in.Files {
		key := NormalizeName(f.Name())
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], i)
	}

	paired := make(map[int]bool)
	var res Result
	for _, key := range order {
		members := groups[key]
		if len(members) != 2 {
			continue
		}
		// The first marked member is the annotated one; with no marked
		// member the second file is.
		original, annotated := in.Files[members[0]], in.Files[members[1]]
		if IsAnnotatedName(original.Name()) {
			original, annotated = annotated, original
		}
		res.Pairs = append(res.Pairs, newPair(len(res.Pairs), original, annotated))
		paired[members[0]], paired[members[1]] = true, true
	}

	for i, f := range in.Files {
		if !paired[i] {
			res.Unpaired = append(res.Unpaired, f)
		}
	}
	return res, nil
}
