package render

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed icons.yaml
var iconMappingYAML []byte

// fallbackGlyph is the day-sunny glyph, shown for unknown condition codes.
const fallbackGlyph = "\uf00d"

// IconSet maps provider condition codes to glyphs in the weather-icons font.
type IconSet struct {
	glyphs map[string]string
}

// LoadIcons parses the embedded condition-to-glyph mapping.
func LoadIcons() (*IconSet, error) {
	glyphs := make(map[string]string)
	if err := yaml.Unmarshal(iconMappingYAML, &glyphs); err != nil {
		return nil, fmt.Errorf("parse icon mapping: %w", err)
	}
	return &IconSet{glyphs: glyphs}, nil
}

// Glyph returns the icon-font glyph for a condition code, falling back to
// the sunny glyph for codes the mapping does not know.
func (s *IconSet) Glyph(condition string) string {
	if g, ok := s.glyphs[condition]; ok {
		return g
	}
	return fallbackGlyph
}
