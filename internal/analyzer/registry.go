package analyzer

import "fmt"

var defaultDilator Dilator = SpanDilator{}

// NewDilator creates a dilator based on the specified variant
func NewDilator(variant string) (Dilator, error) {
	switch variant {
	case "span", "separable", "":
		return SpanDilator{}, nil
	case "naive":
		return NaiveDilator{}, nil
	default:
		return nil, fmt.Errorf("unknown dilator variant: %s", variant)
	}
}
