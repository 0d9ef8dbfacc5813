package render

import (
	"fmt"
	"os"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
)

// FontSource produces faces at arbitrary pixel sizes. The renderer walks
// font sizes when fitting text, so it needs a source rather than a single
// face.
type FontSource interface {
	Face(size float64) (font.Face, error)
}

// TTFSource is a FontSource backed by a parsed TrueType font.
type TTFSource struct {
	font *truetype.Font
}

// LoadTTF reads and parses a TrueType font file.
func LoadTTF(path string) (*TTFSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font %s: %w", path, err)
	}
	f, err := truetype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font %s: %w", path, err)
	}
	return &TTFSource{font: f}, nil
}

// Face returns a face of the given pixel size (72 DPI makes points equal
// pixels).
func (s *TTFSource) Face(size float64) (font.Face, error) {
	return truetype.NewFace(s.font, &truetype.Options{
		Size: size,
		DPI:  72,
	}), nil
}
