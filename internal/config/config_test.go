package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	apperrors "github.com/ivlev/note-overlay/internal/errors"
)

func TestDefaultOptions(t *testing.T) {
	o := DefaultOptions()
	if o.TextThreshold != 200 || o.MaskExpand != 2 || o.BlockColor != "#FFFF00" || o.BlockOpacity != 0.3 {
		t.Errorf("unexpected defaults: %+v", o)
	}
	if err := o.Validate(); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Options)
		wantErr bool
	}{
		{"threshold 0", func(o *Options) { o.TextThreshold = 0 }, false},
		{"threshold 255", func(o *Options) { o.TextThreshold = 255 }, false},
		{"threshold negative", func(o *Options) { o.TextThreshold = -1 }, true},
		{"threshold 256", func(o *Options) { o.TextThreshold = 256 }, true},
		{"expand 0", func(o *Options) { o.MaskExpand = 0 }, false},
		{"expand negative", func(o *Options) { o.MaskExpand = -2 }, true},
		{"expand too large", func(o *Options) { o.MaskExpand = MaxMaskExpand + 1 }, true},
		{"opacity 1", func(o *Options) { o.BlockOpacity = 1 }, false},
		{"opacity above 1", func(o *Options) { o.BlockOpacity = 1.01 }, true},
		{"opacity NaN", func(o *Options) { o.BlockOpacity = math.NaN() }, true},
		{"bad color is fine", func(o *Options) { o.BlockColor = "banana" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := DefaultOptions()
			tt.mutate(&o)
			err := o.Validate()
			if tt.wantErr {
				if !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
					t.Errorf("expected validation error, got %v", err)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestWithOverrides(t *testing.T) {
	threshold, color := 150, "#123"
	base := DefaultOptions()
	got := base.WithOverrides(Overrides{TextThreshold: &threshold, BlockColor: &color})

	if got.TextThreshold != 150 || got.BlockColor != "#123" {
		t.Errorf("overrides not applied: %+v", got)
	}
	if got.MaskExpand != base.MaskExpand || got.BlockOpacity != base.BlockOpacity {
		t.Errorf("untouched fields changed: %+v", got)
	}
	if base.TextThreshold != 200 {
		t.Error("base options were modified")
	}
}

func TestPresetsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presets.yaml")

	presets, err := LoadPresets(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(presets) != 4 {
		t.Fatalf("missing file should yield 4 defaults, got %d", len(presets))
	}

	presets = presets[:2]
	presets = AddPreset(presets, "Scans", Options{TextThreshold: 120, MaskExpand: 4, BlockColor: "#000", BlockOpacity: 0.5})
	if err := SavePresets(path, presets); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadPresets(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded) != 3 {
		t.Fatalf("loaded %d presets, want 3", len(loaded))
	}
	p, ok := FindPreset(loaded, "scans")
	if !ok {
		t.Fatal("preset not found by name")
	}
	if p.Options.TextThreshold != 120 || p.Options.BlockColor != "#000" || p.Options.BlockOpacity != 0.5 {
		t.Errorf("options lost in round trip: %+v", p.Options)
	}
	if _, ok := FindPreset(loaded, "highlight-green"); !ok {
		t.Error("preset not found by ID")
	}
}

func TestAddPresetRespectsLimit(t *testing.T) {
	full := DefaultPresets()
	got := AddPreset(full, "fifth", DefaultOptions())
	if len(got) != MaxUserPresets {
		t.Errorf("list grew beyond limit: %d", len(got))
	}
}

func TestLoadPresetsRejectsInvalidOptions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presets.yaml")
	data := "presets:\n  - id: bad\n    name: Bad\n    options:\n      textThreshold: 300\n      maskExpand: 2\n      blockColor: '#fff'\n      blockOpacity: 0.3\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadPresets(path); err == nil {
		t.Error("expected error for out of range threshold")
	}
}

func TestLoadServerFromEnv(t *testing.T) {
	t.Setenv("HOST", "")
	t.Setenv("MAX_REQUEST_BODY_SIZE", "")
	t.Setenv("PORT", "9090")
	t.Setenv("REQUEST_TIMEOUT", "45s")
	t.Setenv("BATCH_WORKERS", "0")

	cfg, err := LoadServerFromEnv()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ServerAddress() != "0.0.0.0:9090" {
		t.Errorf("ServerAddress() = %q", cfg.ServerAddress())
	}
	if cfg.RequestTimeout != 45*time.Second {
		t.Errorf("RequestTimeout = %s", cfg.RequestTimeout)
	}
	if cfg.BatchWorkers != 1 {
		t.Errorf("BatchWorkers = %d, want 1", cfg.BatchWorkers)
	}

	t.Setenv("PORT", "http")
	if _, err := LoadServerFromEnv(); err == nil {
		t.Error("expected error for non-numeric port")
	}
}

func TestIsBatch(t *testing.T) {
	if (&Config{OriginalPath: "a.png", AnnotatedPath: "b.png"}).IsBatch() {
		t.Error("single pair config reported as batch")
	}
	if !(&Config{FilesDir: "in"}).IsBatch() {
		t.Error("directory config not reported as batch")
	}
}
