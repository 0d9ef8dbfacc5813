package render

import (
	"fmt"
	"strings"

	"golang.org/x/image/font"
)

// measureFunc returns the pixel width of a string in some face.
type measureFunc func(s string) float64

func measureWith(face font.Face) measureFunc {
	return func(s string) float64 {
		return float64(font.MeasureString(face, s)) / 64
	}
}

// formatTemperature builds the temperature line: only the current value when
// it already reaches the daily maximum, a compact current/max pair when
// either value has two digits, and a spaced pair otherwise.
func formatTemperature(temp, tempMax int, symbol string) string {
	switch {
	case temp >= tempMax:
		return fmt.Sprintf("%d%s", temp, symbol)
	case temp >= 10 || tempMax >= 10:
		return fmt.Sprintf("%d°/%d%s", temp, tempMax, symbol)
	default:
		return fmt.Sprintf("%d° / %d%s", temp, tempMax, symbol)
	}
}

// wrapText greedily wraps text into lines no wider than maxWidth, up to
// maxLines. Words beyond the line budget are dropped.
func wrapText(text string, measure measureFunc, maxWidth float64, maxLines int) []string {
	words := strings.Fields(text)

	var lines []string
	var current string

	for _, word := range words {
		test := strings.TrimSpace(current + " " + word)
		if measure(test) <= maxWidth {
			current = test
			continue
		}
		if current != "" {
			lines = append(lines, current)
			if len(lines) >= maxLines {
				break
			}
		}
		current = word
	}

	if current != "" && len(lines) < maxLines {
		lines = append(lines, current)
	}
	return lines
}

// fitSummary finds the largest font size between maxSize and minSize at
// which every word of text fits within maxLines wrapped lines. At minSize it
// returns whatever fits, truncated.
func fitSummary(text string, src FontSource, maxWidth float64, maxLines, maxSize, minSize int) (font.Face, []string, error) {
	wordCount := len(strings.Fields(text))

	for size := maxSize; size >= minSize; size-- {
		face, err := src.Face(float64(size))
		if err != nil {
			return nil, nil, err
		}
		lines := wrapText(text, measureWith(face), maxWidth, maxLines)

		fitted := 0
		for _, line := range lines {
			fitted += len(strings.Fields(line))
		}
		if fitted >= wordCount {
			return face, lines, nil
		}
	}

	face, err := src.Face(float64(minSize))
	if err != nil {
		return nil, nil, err
	}
	return face, wrapText(text, measureWith(face), maxWidth, maxLines), nil
}

// lineHeight derives the wrapped-line advance from face metrics plus extra
// spacing pixels.
func lineHeight(face font.Face, spacing int) int {
	m := face.Metrics()
	return m.Ascent.Ceil() + m.Descent.Ceil() + spacing
}
