package render

import "testing"

func TestIconSetKnownConditions(t *testing.T) {
	icons, err := LoadIcons()
	if err != nil {
		t.Fatalf("LoadIcons failed: %v", err)
	}

	conditions := []string{
		"clear-day", "clear-night", "rain", "snow", "sleet", "wind",
		"fog", "cloudy", "partly-cloudy-day", "partly-cloudy-night",
	}
	for _, cond := range conditions {
		g := icons.Glyph(cond)
		if g == "" {
			t.Errorf("Glyph(%q) is empty", cond)
		}
		for _, r := range g {
			// weather-icons glyphs live in the private use area.
			if r < 0xE000 || r > 0xF8FF {
				t.Errorf("Glyph(%q) = %U, outside the private use area", cond, r)
			}
		}
	}
}

func TestIconSetFallback(t *testing.T) {
	icons, err := LoadIcons()
	if err != nil {
		t.Fatalf("LoadIcons failed: %v", err)
	}

	if got := icons.Glyph("volcanic-ash"); got != fallbackGlyph {
		t.Errorf("unknown condition glyph = %q, want fallback %q", got, fallbackGlyph)
	}
	if icons.Glyph("rain") == fallbackGlyph {
		t.Error("known condition resolved to the fallback glyph")
	}
}
