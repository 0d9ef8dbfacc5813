package render

import (
	"image"
	"testing"

	"github.com/b0x42/weatherstation-epaper/internal/display"
	"github.com/b0x42/weatherstation-epaper/internal/weather"
)

func newTestRenderer(t *testing.T, opts Options) *Renderer {
	t.Helper()

	icons, err := LoadIcons()
	if err != nil {
		t.Fatalf("LoadIcons failed: %v", err)
	}
	return New(fixedSource{}, fixedSource{}, icons, opts)
}

func testObservation() weather.Observation {
	return weather.Observation{
		Temperature:    18,
		TemperatureMax: 24,
		Summary:        "Mostly cloudy throughout the day.",
		Icon:           "partly-cloudy-day",
	}
}

func hasInk(img *image.Gray) bool {
	for _, p := range img.Pix {
		if p == 0x00 {
			return true
		}
	}
	return false
}

func TestComposePortraitDimensions(t *testing.T) {
	desc, err := display.Validate("epd2in13bc")
	if err != nil {
		t.Fatal(err)
	}
	r := newTestRenderer(t, Options{})

	frame, err := r.Compose(testObservation(), desc, display.LayoutFor(desc))
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}

	b := frame.Black.Bounds()
	if b.Dx() != 104 || b.Dy() != 212 {
		t.Errorf("black layer = %dx%d, want portrait 104x212", b.Dx(), b.Dy())
	}
	if !hasInk(frame.Black) {
		t.Error("black layer carries no ink")
	}
}

func TestComposeRedRoutingOnBiColor(t *testing.T) {
	desc, err := display.Validate("epd2in13bc")
	if err != nil {
		t.Fatal(err)
	}
	layout := display.LayoutFor(desc)
	r := newTestRenderer(t, Options{})

	t.Run("temperature at maximum goes red", func(t *testing.T) {
		obs := testObservation()
		obs.Temperature = 25
		obs.TemperatureMax = 25

		frame, err := r.Compose(obs, desc, layout)
		if err != nil {
			t.Fatalf("Compose failed: %v", err)
		}
		if frame.Red == nil {
			t.Fatal("bi-color panel produced no red layer")
		}
		if !hasInk(frame.Red) {
			t.Error("red layer empty, temperature should be drawn there")
		}
	})

	t.Run("temperature below maximum stays black", func(t *testing.T) {
		frame, err := r.Compose(testObservation(), desc, layout)
		if err != nil {
			t.Fatalf("Compose failed: %v", err)
		}
		if frame.Red == nil {
			t.Fatal("bi-color panel produced no red layer")
		}
		if hasInk(frame.Red) {
			t.Error("red layer has ink for a below-maximum temperature")
		}
	})
}

func TestComposeMonochromeHasNoRedLayer(t *testing.T) {
	desc, err := display.Validate("epd2in13d")
	if err != nil {
		t.Fatal(err)
	}
	r := newTestRenderer(t, Options{})

	obs := testObservation()
	obs.Temperature = 30
	obs.TemperatureMax = 30

	frame, err := r.Compose(obs, desc, display.LayoutFor(desc))
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}
	if frame.Red != nil {
		t.Error("monochrome panel produced a red layer")
	}
	// With no red layer the hot temperature still has to land somewhere.
	if !hasInk(frame.Black) {
		t.Error("black layer carries no ink")
	}
}

func TestComposeFlipKeepsDimensions(t *testing.T) {
	desc, err := display.Validate("epd2in13_V4")
	if err != nil {
		t.Fatal(err)
	}
	r := newTestRenderer(t, Options{Flip: true})

	frame, err := r.Compose(testObservation(), desc, display.LayoutFor(desc))
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}
	b := frame.Black.Bounds()
	if b.Dx() != 122 || b.Dy() != 250 {
		t.Errorf("flipped layer = %dx%d, want portrait 122x250", b.Dx(), b.Dy())
	}
}

func TestRotateRoundTrip(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 4, 2))
	for i := range src.Pix {
		src.Pix[i] = 0xFF
	}
	src.Pix[src.PixOffset(0, 0)] = 0x00

	ccw := rotateCCW(src)
	if b := ccw.Bounds(); b.Dx() != 2 || b.Dy() != 4 {
		t.Fatalf("rotateCCW bounds = %v", b)
	}
	// (0,0) in a 4x2 source lands at (0, 3) after a CCW quarter turn.
	if ccw.Pix[ccw.PixOffset(0, 3)] != 0x00 {
		t.Error("rotateCCW moved the marker to the wrong place")
	}

	cw := rotateCW(src)
	// ... and at (1, 0) after a CW quarter turn.
	if cw.Pix[cw.PixOffset(1, 0)] != 0x00 {
		t.Error("rotateCW moved the marker to the wrong place")
	}
}
