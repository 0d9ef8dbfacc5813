package emulator

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"
)

func newTestEmulator(t *testing.T, hasRed bool) *Emulator {
	t.Helper()

	e, err := New(Config{
		Addr:    "127.0.0.1:0",
		Width:   104,
		Height:  212,
		HasRed:  hasRed,
		Refresh: time.Second,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { e.Close() })
	return e
}

func fetchFrame(t *testing.T, e *Emulator) image.Image {
	t.Helper()

	resp, err := http.Get(fmt.Sprintf("http://%s/frame.png", e.Addr()))
	if err != nil {
		t.Fatalf("GET /frame.png failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	img, err := png.Decode(resp.Body)
	if err != nil {
		t.Fatalf("decode frame: %v", err)
	}
	return img
}

func whiteLayer(w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xFF
	}
	return img
}

func TestProbe(t *testing.T) {
	t.Run("free address", func(t *testing.T) {
		if err := Probe("127.0.0.1:0"); err != nil {
			t.Errorf("Probe failed on a free address: %v", err)
		}
	})

	t.Run("occupied address", func(t *testing.T) {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatal(err)
		}
		defer ln.Close()

		if err := Probe(ln.Addr().String()); err == nil {
			t.Error("Probe succeeded on an occupied address")
		}
	})
}

func TestDisplayRequiresInit(t *testing.T) {
	e := newTestEmulator(t, false)

	err := e.Display(context.Background(), whiteLayer(104, 212), nil)
	if err == nil || !strings.Contains(err.Error(), "not initialized") {
		t.Errorf("expected not-initialized error, got %v", err)
	}
}

func TestDisplayServesLandscapeFrame(t *testing.T) {
	e := newTestEmulator(t, false)
	ctx := context.Background()

	if err := e.Init(ctx); err != nil {
		t.Fatal(err)
	}

	black := whiteLayer(104, 212)
	black.SetGray(0, 0, color.Gray{Y: 0x00}) // portrait top-left

	if err := e.Display(ctx, black, nil); err != nil {
		t.Fatalf("Display failed: %v", err)
	}

	frame := fetchFrame(t, e)
	b := frame.Bounds()
	if b.Dx() != 212 || b.Dy() != 104 {
		t.Fatalf("frame = %dx%d, want landscape 212x104", b.Dx(), b.Dy())
	}

	// Portrait (0,0) lands at landscape (height-1, 0).
	r, g, bl, _ := frame.At(211, 0).RGBA()
	if r != 0 || g != 0 || bl != 0 {
		t.Errorf("expected black pixel at (211,0), got rgb(%d,%d,%d)", r, g, bl)
	}
}

func TestDisplayCompositesRedLayer(t *testing.T) {
	e := newTestEmulator(t, true)
	ctx := context.Background()

	if err := e.Init(ctx); err != nil {
		t.Fatal(err)
	}

	black := whiteLayer(104, 212)
	red := whiteLayer(104, 212)
	red.SetGray(10, 10, color.Gray{Y: 0x00})

	if err := e.Display(ctx, black, red); err != nil {
		t.Fatalf("Display failed: %v", err)
	}

	frame := fetchFrame(t, e)
	r, g, bl, _ := frame.At(212-1-10, 10).RGBA()
	if r == 0 || g != 0 || bl != 0 {
		t.Errorf("expected red pixel, got rgb(%d,%d,%d)", r, g, bl)
	}
}

func TestDisplayRejectsWrongDimensions(t *testing.T) {
	e := newTestEmulator(t, false)
	ctx := context.Background()

	if err := e.Init(ctx); err != nil {
		t.Fatal(err)
	}
	if err := e.Display(ctx, whiteLayer(212, 104), nil); err == nil {
		t.Error("Display accepted a landscape-oriented layer")
	}
}

func TestClearResetsFrame(t *testing.T) {
	e := newTestEmulator(t, false)
	ctx := context.Background()

	if err := e.Init(ctx); err != nil {
		t.Fatal(err)
	}

	black := whiteLayer(104, 212)
	black.SetGray(5, 5, color.Gray{Y: 0x00})
	if err := e.Display(ctx, black, nil); err != nil {
		t.Fatal(err)
	}
	if err := e.Clear(ctx); err != nil {
		t.Fatal(err)
	}

	frame := fetchFrame(t, e)
	b := frame.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := frame.At(x, y).RGBA()
			if r != 0xFFFF || g != 0xFFFF || bl != 0xFFFF {
				t.Fatalf("pixel (%d,%d) not white after Clear", x, y)
			}
		}
	}
}

func TestIndexPage(t *testing.T) {
	e := newTestEmulator(t, false)

	resp, err := http.Get(fmt.Sprintf("http://%s/", e.Addr()))
	if err != nil {
		t.Fatalf("GET / failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "text/html") {
		t.Errorf("content type = %q, want html", ct)
	}
}
