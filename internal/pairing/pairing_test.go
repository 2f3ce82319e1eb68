package pairing

import (
	"fmt"
	"testing"

	apperrors "github.com/ivlev/note-overlay/internal/errors"
	"github.com/ivlev/note-overlay/internal/source"
)

func files(names ...string) []source.Resource {
	out := make([]source.Resource, len(names))
	for i, n := range names {
		out[i] = source.Memory{Filename: n}
	}
	return out
}

func TestKeywordStrategyBasic(t *testing.T) {
	res, err := KeywordStrategy{}.Match(Input{Files: files("page1.png", "page1_annotated.png", "page2.png")})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Pairs) != 1 {
		t.Fatalf("got %d pairs, want 1", len(res.Pairs))
	}
	p := res.Pairs[0]
	if p.Original.Name() != "page1.png" || p.Annotated.Name() != "page1_annotated.png" {
		t.Errorf("pair = %s + %s", p.Original.Name(), p.Annotated.Name())
	}
	if p.DisplayName != "page1.png" {
		t.Errorf("DisplayName = %q", p.DisplayName)
	}
	if len(res.Unpaired) != 1 || res.Unpaired[0].Name() != "page2.png" {
		t.Errorf("Unpaired = %v", res.Unpaired)
	}
}

func TestKeywordStrategyVariants(t *testing.T) {
	in := Input{Files: files(
		"b-MARKED.jpg", // annotated listed before its original
		"b.jpg",
		"c标注.png",
		"c.png",
		"d.png", "d_annotated.png", "d_marked.png", // group of three
		"e_annotated.png", "e_marked.png", // both marked
		"f.png", "f.jpg", // neither marked
	)}

	res, err := KeywordStrategy{}.Match(in)
	if err != nil {
		t.Fatal(err)
	}
	want := [][2]string{
		{"b.jpg", "b-MARKED.jpg"},
		{"c.png", "c标注.png"},
		{"e_marked.png", "e_annotated.png"},
		{"f.png", "f.jpg"},
	}
	if len(res.Pairs) != len(want) {
		t.Fatalf("got %d pairs, want %d", len(res.Pairs), len(want))
	}
	for i, w := range want {
		if res.Pairs[i].Original.Name() != w[0] || res.Pairs[i].Annotated.Name() != w[1] {
			t.Errorf("pair %d = %s + %s, want %s + %s", i,
				res.Pairs[i].Original.Name(), res.Pairs[i].Annotated.Name(), w[0], w[1])
		}
	}
	if len(res.Unpaired) != 3 {
		t.Errorf("got %d unpaired, want 3", len(res.Unpaired))
	}
}

func TestKeywordStrategyAmbiguousGroups(t *testing.T) {
	res, err := KeywordStrategy{}.Match(Input{Files: files("scan.png", "scan.jpg", "x_annotated.png", "x_marked.png")})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Pairs) != 2 || len(res.Unpaired) != 0 {
		t.Fatalf("got %d pairs and %d unpaired, want 2 and 0", len(res.Pairs), len(res.Unpaired))
	}
	tests := []struct{ original, annotated string }{
		{"scan.png", "scan.jpg"},
		{"x_marked.png", "x_annotated.png"},
	}
	for i, tt := range tests {
		p := res.Pairs[i]
		if p.Original.Name() != tt.original || p.Annotated.Name() != tt.annotated {
			t.Errorf("pair %d = %s + %s, want %s + %s", i, p.Original.Name(), p.Annotated.Name(), tt.original, tt.annotated)
		}
	}
}

func TestNormalizeName(t *testing.T) {
	tests := map[string]string{
		"page1.png":           "page1",
		"page1_annotated.png": "page1",
		"Page1-Annotated.PNG": "Page1",
		"scan marked.jpg":     "scan",
		"笔记标注.png":            "笔记",
		"report.v2.png":       "report.v2",
	}
	for in, want := range tests {
		if got := NormalizeName(in); got != want {
			t.Errorf("NormalizeName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestOrdinalStrategyMismatch(t *testing.T) {
	in := Input{
		Originals: files("o1.png", "o2.png", "o3.png"),
		Annotated: files("a1.png", "a2.png", "a3.png", "a4.png", "a5.png"),
	}

	res, err := OrdinalStrategy{}.Match(in)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Pairs) != 3 {
		t.Fatalf("got %d pairs, want 3", len(res.Pairs))
	}
	for i, p := range res.Pairs {
		if p.Original.Name() != fmt.Sprintf("o%d.png", i+1) || p.Annotated.Name() != fmt.Sprintf("a%d.png", i+1) {
			t.Errorf("pair %d = %s + %s", i, p.Original.Name(), p.Annotated.Name())
		}
	}
	if res.Mismatch != 2 {
		t.Errorf("Mismatch = %d, want 2", res.Mismatch)
	}
	if len(res.Unpaired) != 2 || res.Unpaired[0].Name() != "a4.png" {
		t.Errorf("Unpaired = %v", res.Unpaired)
	}
}

func TestOrdinalStrategyEmpty(t *testing.T) {
	res, err := OrdinalStrategy{}.Match(Input{})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Pairs) != 0 || res.Mismatch != 0 {
		t.Errorf("expected empty result, got %+v", res)
	}
}

func TestStrategiesRejectWrongInputShape(t *testing.T) {
	_, err := KeywordStrategy{}.Match(Input{Originals: files("a.png")})
	if !apperrors.IsType(err, apperrors.ErrorTypePairing) {
		t.Errorf("keyword: expected pairing error, got %v", err)
	}
	_, err = OrdinalStrategy{}.Match(Input{Files: files("a.png")})
	if !apperrors.IsType(err, apperrors.ErrorTypePairing) {
		t.Errorf("ordinal: expected pairing error, got %v", err)
	}
}

func TestMatchIsDeterministic(t *testing.T) {
	in := Input{Files: files("x.png", "x_annotated.png", "y.png", "y_marked.png")}
	first, _ := KeywordStrategy{}.Match(in)
	second, _ := KeywordStrategy{}.Match(in)

	if len(first.Pairs) != 2 || len(second.Pairs) != 2 {
		t.Fatalf("expected 2 pairs each, got %d and %d", len(first.Pairs), len(second.Pairs))
	}
	for i := range first.Pairs {
		if first.Pairs[i].ID != second.Pairs[i].ID {
			t.Errorf("pair %d ID changed between runs", i)
		}
	}
	if first.Pairs[0].ID == first.Pairs[1].ID {
		t.Error("distinct pairs share an ID")
	}
}

func TestStrategyRegistry(t *testing.T) {
	tests := []struct {
		variant string
		want    string
		wantErr bool
	}{
		{"keyword", "keyword", false},
		{"fuzzy", "keyword", false},
		{"ordinal", "ordinal", false},
		{"", "", true},
		{"levenshtein", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.variant, func(t *testing.T) {
			s, err := NewStrategy(tt.variant)
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if s.Name() != tt.want {
				t.Errorf("Name() = %q, want %q", s.Name(), tt.want)
			}
		})
	}
}
