package epd

import (
	"context"
	"time"

	"periph.io/x/conn/v3/gpio"
)

// SSD1680-class command set, shared by the 122x250 panels (epd2in13_V2..V4,
// epd2in13b_V4).
const (
	ssd1680DriverOutput      = 0x01
	ssd1680DeepSleep         = 0x10
	ssd1680DataEntryMode     = 0x11
	ssd1680SWReset           = 0x12
	ssd1680TempSensorControl = 0x18
	ssd1680MasterActivation  = 0x20
	ssd1680DisplayUpdateCtl2 = 0x22
	ssd1680WriteRAMBlack     = 0x24
	ssd1680WriteRAMRed       = 0x26
	ssd1680BorderWaveform    = 0x3C
	ssd1680SetRAMXRange      = 0x44
	ssd1680SetRAMYRange      = 0x45
	ssd1680SetRAMXCounter    = 0x4E
	ssd1680SetRAMYCounter    = 0x4F
)

type ssd1680 struct {
	biColor bool
}

// BUSY is active-high on this controller: high means busy.
func (c *ssd1680) busyIdle() gpio.Level { return gpio.Low }

func (c *ssd1680) init(ctx context.Context, d *EPD) error {
	if err := d.reset(); err != nil {
		return err
	}
	if err := d.waitIdle(ctx); err != nil {
		return err
	}

	if err := d.send(ssd1680SWReset); err != nil {
		return err
	}
	time.Sleep(10 * time.Millisecond)
	if err := d.waitIdle(ctx); err != nil {
		return err
	}

	rows := d.cfg.Height - 1
	if err := d.send(ssd1680DriverOutput, byte(rows), byte(rows>>8), 0x00); err != nil {
		return err
	}
	// X increment, Y increment.
	if err := d.send(ssd1680DataEntryMode, 0x03); err != nil {
		return err
	}

	// RAM window covers the full panel; X is addressed in bytes.
	xEnd := byte((d.cfg.Width+7)/8 - 1)
	if err := d.send(ssd1680SetRAMXRange, 0x00, xEnd); err != nil {
		return err
	}
	if err := d.send(ssd1680SetRAMYRange, 0x00, 0x00, byte(rows), byte(rows>>8)); err != nil {
		return err
	}

	if err := d.send(ssd1680BorderWaveform, 0x05); err != nil {
		return err
	}
	// Use the built-in temperature sensor for waveform selection.
	if err := d.send(ssd1680TempSensorControl, 0x80); err != nil {
		return err
	}
	return d.waitIdle(ctx)
}

func (c *ssd1680) display(ctx context.Context, d *EPD, black, red []byte) error {
	if err := c.setCursor(d); err != nil {
		return err
	}
	if err := d.send(ssd1680WriteRAMBlack); err != nil {
		return err
	}
	if err := d.sendData(black...); err != nil {
		return err
	}

	if c.biColor && red != nil {
		if err := c.setCursor(d); err != nil {
			return err
		}
		// Red RAM uses set = red, the inverse of the packed layer.
		if err := d.send(ssd1680WriteRAMRed); err != nil {
			return err
		}
		if err := d.sendData(invert(red)...); err != nil {
			return err
		}
	}

	if err := d.send(ssd1680DisplayUpdateCtl2, 0xF7); err != nil {
		return err
	}
	if err := d.send(ssd1680MasterActivation); err != nil {
		return err
	}
	return d.waitIdle(ctx)
}

func (c *ssd1680) setCursor(d *EPD) error {
	if err := d.send(ssd1680SetRAMXCounter, 0x00); err != nil {
		return err
	}
	return d.send(ssd1680SetRAMYCounter, 0x00, 0x00)
}

func (c *ssd1680) sleep(d *EPD) error {
	return d.send(ssd1680DeepSleep, 0x01)
}
