package render

import (
	"reflect"
	"strings"
	"testing"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// fixedSource returns the same bitmap face at every size; fitting loops then
// behave deterministically without font files on disk.
type fixedSource struct{}

func (fixedSource) Face(size float64) (font.Face, error) {
	return basicfont.Face7x13, nil
}

func TestFormatTemperature(t *testing.T) {
	tests := []struct {
		temp, max int
		symbol    string
		want      string
	}{
		{5, 5, "°C", "5°C"},
		{7, 3, "°C", "7°C"},
		{3, 8, "°C", "3° / 8°C"},
		{9, 12, "°C", "9°/12°C"},
		{12, 15, "°C", "12°/15°C"},
		{21, 25, "°F", "21°/25°F"},
		{-2, 4, "°C", "-2° / 4°C"},
	}
	for _, tt := range tests {
		if got := formatTemperature(tt.temp, tt.max, tt.symbol); got != tt.want {
			t.Errorf("formatTemperature(%d, %d, %q) = %q, want %q",
				tt.temp, tt.max, tt.symbol, got, tt.want)
		}
	}
}

func TestWrapText(t *testing.T) {
	// Ten pixels per rune keeps the expectations easy to read.
	measure := func(s string) float64 { return float64(len([]rune(s))) * 10 }

	tests := []struct {
		name     string
		text     string
		maxWidth float64
		maxLines int
		want     []string
	}{
		{
			name:     "single line fits",
			text:     "mostly cloudy",
			maxWidth: 200,
			maxLines: 2,
			want:     []string{"mostly cloudy"},
		},
		{
			name:     "wraps at width",
			text:     "mostly cloudy all day",
			maxWidth: 140,
			maxLines: 2,
			want:     []string{"mostly cloudy", "all day"},
		},
		{
			name:     "drops words past line budget",
			text:     "rain then snow then fog",
			maxWidth: 90,
			maxLines: 2,
			want:     []string{"rain then", "snow then"},
		},
		{
			name:     "empty text",
			text:     "",
			maxWidth: 100,
			maxLines: 2,
			want:     nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := wrapText(tt.text, measure, tt.maxWidth, tt.maxLines)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("wrapText = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFitSummaryAllWordsFit(t *testing.T) {
	face, lines, err := fitSummary("clear sky", fixedSource{}, 500, 2, 18, 12)
	if err != nil {
		t.Fatalf("fitSummary failed: %v", err)
	}
	if face == nil {
		t.Fatal("fitSummary returned nil face")
	}
	if len(lines) != 1 || lines[0] != "clear sky" {
		t.Errorf("lines = %q, want one line", lines)
	}
}

func TestFitSummaryTruncatesWhenNothingFits(t *testing.T) {
	text := "a very long summary that can never fit in the space given"
	_, lines, err := fitSummary(text, fixedSource{}, 80, 2, 18, 12)
	if err != nil {
		t.Fatalf("fitSummary failed: %v", err)
	}
	if len(lines) == 0 || len(lines) > 2 {
		t.Fatalf("lines = %q, want 1..2 truncated lines", lines)
	}
	got := strings.Join(lines, " ")
	if got == text {
		t.Error("expected truncation, got the full text back")
	}
}

func TestLineHeight(t *testing.T) {
	m := basicfont.Face7x13.Metrics()
	want := m.Ascent.Ceil() + m.Descent.Ceil() + 2
	if got := lineHeight(basicfont.Face7x13, 2); got != want {
		t.Errorf("lineHeight = %d, want %d", got, want)
	}
}
