// Package emulator implements the display driver surface against a local
// HTTP preview instead of panel hardware. The current frame is served as a
// PNG with a small auto-refreshing index page, which stands in for the
// desktop window a developer would otherwise need a Pi for.
//
// Bi-color layers are composited into the preview (red over black over
// white). E-Paper refresh artifacts such as ghosting or partial-update
// banding are not simulated.
package emulator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// DefaultAddr is the preview server's default listen address.
const DefaultAddr = "localhost:8175"

// Config describes the emulated panel and its preview server.
type Config struct {
	Addr   string
	Width  int // portrait datasheet width
	Height int // portrait datasheet height
	HasRed bool
	// Refresh is how often the preview page reloads the frame.
	Refresh time.Duration
	Logger  *zap.Logger
}

// Emulator is a Driver backed by an HTTP preview server.
type Emulator struct {
	cfg    Config
	app    *fiber.App
	ln     net.Listener
	logger *zap.Logger

	mu          sync.RWMutex
	frame       *image.RGBA // landscape-oriented preview frame
	initialized bool
}

// Probe reports whether the preview address can be bound, without keeping
// the listener. The loader calls this before committing to the emulator
// backend.
func Probe(addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("bind emulator preview address %s: %w", addr, err)
	}
	return ln.Close()
}

// New binds the preview address and starts serving. The frame starts out
// all white.
func New(cfg Config) (*Emulator, error) {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.Refresh <= 0 {
		cfg.Refresh = time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("invalid panel dimensions %dx%d", cfg.Width, cfg.Height)
	}

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return nil, fmt.Errorf("bind emulator preview address %s: %w", cfg.Addr, err)
	}

	e := &Emulator{
		cfg:    cfg,
		ln:     ln,
		logger: cfg.Logger,
		frame:  blankFrame(cfg.Height, cfg.Width),
	}

	app := fiber.New(fiber.Config{
		AppName:               "epaper-emulator",
		DisableStartupMessage: true,
	})
	app.Get("/", e.handleIndex)
	app.Get("/frame.png", e.handleFrame)
	e.app = app

	go func() {
		if err := app.Listener(ln); err != nil {
			e.logger.Error("emulator preview server stopped", zap.Error(err))
		}
	}()

	e.logger.Info("e-Paper emulator started",
		zap.String("addr", ln.Addr().String()),
		zap.Int("width", cfg.Width),
		zap.Int("height", cfg.Height),
		zap.Bool("has_red", cfg.HasRed))

	return e, nil
}

// Addr returns the bound preview address.
func (e *Emulator) Addr() string {
	return e.ln.Addr().String()
}

// Init marks the emulated panel ready. There is no hardware to wake.
func (e *Emulator) Init(ctx context.Context) error {
	e.mu.Lock()
	e.initialized = true
	e.mu.Unlock()
	return nil
}

// Clear resets the preview frame to all white.
func (e *Emulator) Clear(ctx context.Context) error {
	e.mu.Lock()
	e.frame = blankFrame(e.cfg.Height, e.cfg.Width)
	e.mu.Unlock()
	return nil
}

// Display composites the portrait layers into the landscape preview frame.
// red is ignored unless the emulated panel is bi-color.
func (e *Emulator) Display(ctx context.Context, black, red *image.Gray) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.initialized {
		return errors.New("display not initialized, call Init first")
	}
	if black == nil {
		return errors.New("nil black layer")
	}
	b := black.Bounds()
	if b.Dx() != e.cfg.Width || b.Dy() != e.cfg.Height {
		return fmt.Errorf("black layer is %dx%d, panel is %dx%d",
			b.Dx(), b.Dy(), e.cfg.Width, e.cfg.Height)
	}

	if !e.cfg.HasRed {
		red = nil
	}

	// Preview is landscape: portrait (x, y) maps to (height-1-y, x).
	frame := blankFrame(e.cfg.Height, e.cfg.Width)
	for y := 0; y < e.cfg.Height; y++ {
		for x := 0; x < e.cfg.Width; x++ {
			var c color.RGBA
			switch {
			case red != nil && red.GrayAt(b.Min.X+x, b.Min.Y+y).Y < 0x80:
				c = color.RGBA{R: 0xC0, A: 0xFF}
			case black.GrayAt(b.Min.X+x, b.Min.Y+y).Y < 0x80:
				c = color.RGBA{A: 0xFF}
			default:
				continue
			}
			frame.SetRGBA(e.cfg.Height-1-y, x, c)
		}
	}
	e.frame = frame
	return nil
}

// Sleep is a no-op; the emulator has no hardware power state.
func (e *Emulator) Sleep() error { return nil }

// Close shuts the preview server down.
func (e *Emulator) Close() error {
	return e.app.Shutdown()
}

// Bounds returns the emulated panel's portrait bounds.
func (e *Emulator) Bounds() image.Rectangle {
	return image.Rect(0, 0, e.cfg.Width, e.cfg.Height)
}

func (e *Emulator) handleIndex(c *fiber.Ctx) error {
	refresh := int(e.cfg.Refresh.Seconds())
	if refresh < 1 {
		refresh = 1
	}
	page := fmt.Sprintf(`<!doctype html>
<html>
<head>
<title>e-Paper emulator</title>
<meta http-equiv="refresh" content="%d">
<style>body{background:#ddd;text-align:center;padding-top:2em}img{border:12px solid #222;image-rendering:pixelated;width:%dpx}</style>
</head>
<body><img src="/frame.png" alt="panel"></body>
</html>`, refresh, e.cfg.Height*3)
	c.Type("html")
	return c.SendString(page)
}

func (e *Emulator) handleFrame(c *fiber.Ctx) error {
	e.mu.RLock()
	frame := e.frame
	e.mu.RUnlock()

	var buf bytes.Buffer
	if err := png.Encode(&buf, frame); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	c.Type("png")
	return c.Send(buf.Bytes())
}

func blankFrame(w, h int) *image.RGBA {
	frame := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(frame.Pix); i += 4 {
		frame.Pix[i] = 0xFF
		frame.Pix[i+1] = 0xFF
		frame.Pix[i+2] = 0xFF
		frame.Pix[i+3] = 0xFF
	}
	return frame
}
