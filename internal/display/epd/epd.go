// Package epd drives Waveshare 2.13inch e-Paper panels over SPI/GPIO using
// periph.io, replacing the vendor's C/Python SDK. It covers the 104x212
// family (UC8151-class controllers) and the 122x250 family (SSD1680-class
// controllers), monochrome and bi-color.
package epd

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"go.uber.org/zap"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// HAT pin assignment (BCM numbering), per the Waveshare e-Paper HAT wiring.
const (
	pinRST  = "GPIO17"
	pinDC   = "GPIO25"
	pinBUSY = "GPIO24"
)

// spiChunkSize bounds a single SPI write; the Pi's spidev rejects larger
// transfers with its default buffer size.
const spiChunkSize = 4096

// defaultBusyTimeout bounds the hardware busy-wait. A full refresh on these
// panels takes up to ~15s in the cold; anything beyond this means the panel
// is wedged.
const defaultBusyTimeout = 30 * time.Second

// Config selects the panel model and its wiring.
type Config struct {
	Model         string
	Width         int // portrait datasheet width
	Height        int // portrait datasheet height
	HasRed        bool
	PartialUpdate bool

	// SPIPort is the periph.io port name; empty selects the first available
	// port (SPI0.0 on a Raspberry Pi).
	SPIPort string
	// BusyTimeout bounds every wait on the panel's BUSY line.
	BusyTimeout time.Duration

	Logger *zap.Logger
}

// EPD is a connected panel. Not safe for concurrent use; the station loop is
// single-threaded by design.
type EPD struct {
	cfg    Config
	ctrl   controller
	port   spi.PortCloser
	conn   spi.Conn
	rst    gpio.PinOut
	dc     gpio.PinOut
	busy   gpio.PinIn
	logger *zap.Logger
}

// controller is one panel family's command sequence set.
type controller interface {
	// busyIdle is the BUSY line level when the panel is ready.
	busyIdle() gpio.Level
	init(ctx context.Context, d *EPD) error
	display(ctx context.Context, d *EPD, black, red []byte) error
	sleep(d *EPD) error
}

// Probe reports whether the SPI/GPIO stack is usable without claiming any
// pins or ports.
func Probe() error {
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("periph host init: %w", err)
	}
	if len(spireg.All()) == 0 {
		return errors.New("no SPI port registered")
	}
	return nil
}

// New opens the SPI port and GPIO pins and binds the controller matching the
// model. It does not touch the panel; Init does that.
func New(cfg Config) (*EPD, error) {
	ctrl, err := controllerFor(cfg.Model)
	if err != nil {
		return nil, err
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.BusyTimeout <= 0 {
		cfg.BusyTimeout = defaultBusyTimeout
	}

	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}

	port, err := spireg.Open(cfg.SPIPort)
	if err != nil {
		return nil, fmt.Errorf("open SPI port %q: %w", cfg.SPIPort, err)
	}

	conn, err := port.Connect(4*physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("configure SPI: %w", err)
	}

	rst := gpioreg.ByName(pinRST)
	dc := gpioreg.ByName(pinDC)
	busy := gpioreg.ByName(pinBUSY)
	if rst == nil || dc == nil || busy == nil {
		port.Close()
		return nil, fmt.Errorf("GPIO pins %s/%s/%s not available", pinRST, pinDC, pinBUSY)
	}
	if err := busy.In(gpio.PullNoChange, gpio.NoEdge); err != nil {
		port.Close()
		return nil, fmt.Errorf("configure BUSY pin: %w", err)
	}

	d := &EPD{
		cfg:    cfg,
		ctrl:   ctrl,
		port:   port,
		conn:   conn,
		rst:    rst,
		dc:     dc,
		busy:   busy,
		logger: cfg.Logger,
	}

	d.logger.Info("e-Paper panel connected",
		zap.String("model", cfg.Model),
		zap.Int("width", cfg.Width),
		zap.Int("height", cfg.Height),
		zap.Bool("has_red", cfg.HasRed))

	return d, nil
}

func controllerFor(model string) (controller, error) {
	switch model {
	case "epd2in13bc", "epd2in13b_V3":
		return &uc8151{biColor: true}, nil
	case "epd2in13d":
		return &uc8151{partial: true}, nil
	case "epd2in13_V2", "epd2in13_V3", "epd2in13_V4":
		return &ssd1680{}, nil
	case "epd2in13b_V4":
		return &ssd1680{biColor: true}, nil
	default:
		return nil, fmt.Errorf("no driver for model %q", model)
	}
}

// Init wakes the panel and runs the controller's initialization sequence.
func (d *EPD) Init(ctx context.Context) error {
	return d.ctrl.init(ctx, d)
}

// Clear refreshes the panel to all white.
func (d *EPD) Clear(ctx context.Context) error {
	white := whiteBuffer(d.cfg.Width, d.cfg.Height)
	if d.cfg.HasRed {
		return d.ctrl.display(ctx, d, white, white)
	}
	return d.ctrl.display(ctx, d, white, nil)
}

// Display packs the portrait layers into the panel's bit format and triggers
// a full refresh. red must be nil exactly when the panel is monochrome.
func (d *EPD) Display(ctx context.Context, black, red *image.Gray) error {
	if err := checkLayer(black, d.cfg.Width, d.cfg.Height); err != nil {
		return fmt.Errorf("black layer: %w", err)
	}

	blackBuf := packBuffer(black)

	var redBuf []byte
	if d.cfg.HasRed {
		if red == nil {
			// Bi-color panel with no red content: an all-white red layer.
			redBuf = whiteBuffer(d.cfg.Width, d.cfg.Height)
		} else {
			if err := checkLayer(red, d.cfg.Width, d.cfg.Height); err != nil {
				return fmt.Errorf("red layer: %w", err)
			}
			redBuf = packBuffer(red)
		}
	} else if red != nil {
		return errors.New("red layer given to a monochrome panel")
	}

	start := time.Now()
	if err := d.ctrl.display(ctx, d, blackBuf, redBuf); err != nil {
		return err
	}
	d.logger.Debug("panel refreshed",
		zap.String("model", d.cfg.Model),
		zap.Duration("took", time.Since(start)))
	return nil
}

// Sleep puts the panel into deep sleep. Init is required before the next
// refresh.
func (d *EPD) Sleep() error {
	return d.ctrl.sleep(d)
}

// Close powers down the reset line and releases the SPI port.
func (d *EPD) Close() error {
	if err := d.rst.Out(gpio.Low); err != nil {
		d.logger.Warn("failed to lower reset pin", zap.Error(err))
	}
	return d.port.Close()
}

// Bounds returns the native portrait bounds.
func (d *EPD) Bounds() image.Rectangle {
	return image.Rect(0, 0, d.cfg.Width, d.cfg.Height)
}

func checkLayer(img *image.Gray, w, h int) error {
	if img == nil {
		return errors.New("nil image")
	}
	b := img.Bounds()
	if b.Dx() != w || b.Dy() != h {
		return fmt.Errorf("got %dx%d, panel is %dx%d", b.Dx(), b.Dy(), w, h)
	}
	return nil
}

// reset pulses the RST line to hardware-reset the controller.
func (d *EPD) reset() error {
	seq := []struct {
		level gpio.Level
		wait  time.Duration
	}{
		{gpio.High, 20 * time.Millisecond},
		{gpio.Low, 2 * time.Millisecond},
		{gpio.High, 20 * time.Millisecond},
	}
	for _, s := range seq {
		if err := d.rst.Out(s.level); err != nil {
			return fmt.Errorf("toggle reset: %w", err)
		}
		time.Sleep(s.wait)
	}
	return nil
}

// sendCommand writes a command byte with DC low.
func (d *EPD) sendCommand(cmd byte) error {
	if err := d.dc.Out(gpio.Low); err != nil {
		return err
	}
	return d.conn.Tx([]byte{cmd}, nil)
}

// sendData writes data bytes with DC high, chunked for spidev.
func (d *EPD) sendData(data ...byte) error {
	if err := d.dc.Out(gpio.High); err != nil {
		return err
	}
	for len(data) > 0 {
		n := len(data)
		if n > spiChunkSize {
			n = spiChunkSize
		}
		if err := d.conn.Tx(data[:n], nil); err != nil {
			return err
		}
		data = data[n:]
	}
	return nil
}

// send writes a command followed by its data bytes.
func (d *EPD) send(cmd byte, data ...byte) error {
	if err := d.sendCommand(cmd); err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	return d.sendData(data...)
}

// waitIdle polls the BUSY line until the panel is ready. The wait is bounded
// by both the context and the configured busy timeout; the vendor SDK can
// hang forever here, which is exactly what this bound prevents.
func (d *EPD) waitIdle(ctx context.Context) error {
	idle := d.ctrl.busyIdle()

	ctx, cancel := context.WithTimeout(ctx, d.cfg.BusyTimeout)
	defer cancel()

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		if d.busy.Read() == idle {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("panel busy-wait: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}
