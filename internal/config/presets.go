package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// MaxUserPresets is the number of presets a user can keep.
const MaxUserPresets = 4

// Preset is a named set of options.
type Preset struct {
	ID          string  `yaml:"id"`
	Name        string  `yaml:"name"`
	Description string  `yaml:"description,omitempty"`
	Options     Options `yaml:"options"`
}

// PresetFile is the on-disk YAML layout.
type PresetFile struct {
	Presets []Preset `yaml:"presets"`
}

// DefaultPresets are offered until the user saves their own.
func DefaultPresets() []Preset {
	return []Preset{
		{
			ID:          "highlight-yellow",
			Name:        "Yellow highlight",
			Description: "Classic marker look, fits most pages",
			Options:     Options{TextThreshold: 200, MaskExpand: 2, BlockColor: "#FFFF00", BlockOpacity: 0.3},
		},
		{
			ID:          "highlight-green",
			Name:        "Green highlight",
			Description: "Soft marking for long reading",
			Options:     Options{TextThreshold: 200, MaskExpand: 2, BlockColor: "#90EE90", BlockOpacity: 0.35},
		},
		{
			ID:          "highlight-pink",
			Name:        "Pink highlight",
			Description: "Gentle warm marking",
			Options:     Options{TextThreshold: 200, MaskExpand: 2, BlockColor: "#FFB6C1", BlockOpacity: 0.35},
		},
		{
			ID:          "highlight-blue",
			Name:        "Blue highlight",
			Description: "Calm tone for technical documents",
			Options:     Options{TextThreshold: 200, MaskExpand: 2, BlockColor: "#87CEEB", BlockOpacity: 0.3},
		},
	}
}

// LoadPresets reads presets from a YAML file. A missing file yields the
// defaults.
func LoadPresets(path string) ([]Preset, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultPresets(), nil
	}
	if err != nil {
		return nil, err
	}

	var file PresetFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("presets %s: %w", path, err)
	}
	for _, p := range file.Presets {
		if err := p.Options.Validate(); err != nil {
			return nil, fmt.Errorf("preset %q: %w", p.ID, err)
		}
	}
	return file.Presets, nil
}

// SavePresets writes at most MaxUserPresets presets to path.
func SavePresets(path string, presets []Preset) error {
	if len(presets) > MaxUserPresets {
		presets = presets[:MaxUserPresets]
	}
	data, err := yaml.Marshal(PresetFile{Presets: presets})
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// AddPreset appends a new preset unless the list is full, in which case the
// list is returned unchanged.
func AddPreset(existing []Preset, name string, opts Options) []Preset {
	if len(existing) >= MaxUserPresets {
		return existing
	}
	p := Preset{
		ID:          fmt.Sprintf("preset-%d", time.Now().UnixMilli()),
		Name:        name,
		Description: "Custom preset",
		Options:     opts,
	}
	out := make([]Preset, 0, len(existing)+1)
	out = append(out, existing...)
	return append(out, p)
}

// FindPreset looks a preset up by ID, then by case-insensitive name.
func FindPreset(presets []Preset, key string) (Preset, bool) {
	for _, p := range presets {
		if p.ID == key {
			return p, true
		}
	}
	for _, p := range presets {
		if strings.EqualFold(p.Name, key) {
			return p, true
		}
	}
	return Preset{}, false
}
