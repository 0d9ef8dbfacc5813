package epd

import (
	"context"

	"periph.io/x/conn/v3/gpio"
)

// UC8151-class command set, shared by the 104x212 panels (epd2in13bc,
// epd2in13b_V3, epd2in13d).
const (
	uc8151PanelSetting      = 0x00
	uc8151PowerOff          = 0x02
	uc8151PowerOn           = 0x04
	uc8151BoosterSoftStart  = 0x06
	uc8151DeepSleep         = 0x07
	uc8151DataStartBW       = 0x10
	uc8151DisplayRefresh    = 0x12
	uc8151DataStartRed      = 0x13
	uc8151VcomDataInterval  = 0x50
	uc8151ResolutionSetting = 0x61
)

// uc8151 drives the 104x212 family. biColor selects the black/red data path,
// partial selects the epd2in13d panel setting (partial update capable; this
// driver still performs full refreshes only).
type uc8151 struct {
	biColor bool
	partial bool
}

// BUSY is active-low on this controller: low means busy.
func (c *uc8151) busyIdle() gpio.Level { return gpio.High }

func (c *uc8151) init(ctx context.Context, d *EPD) error {
	if err := d.reset(); err != nil {
		return err
	}

	if err := d.send(uc8151BoosterSoftStart, 0x17, 0x17, 0x17); err != nil {
		return err
	}
	if err := d.send(uc8151PowerOn); err != nil {
		return err
	}
	if err := d.waitIdle(ctx); err != nil {
		return err
	}

	panelSetting := byte(0x8F)
	if c.partial {
		panelSetting = 0x9F
	}
	if err := d.send(uc8151PanelSetting, panelSetting); err != nil {
		return err
	}
	if err := d.send(uc8151VcomDataInterval, 0xF0); err != nil {
		return err
	}
	return d.send(uc8151ResolutionSetting,
		byte(d.cfg.Width),
		byte(d.cfg.Height>>8),
		byte(d.cfg.Height),
	)
}

func (c *uc8151) display(ctx context.Context, d *EPD, black, red []byte) error {
	if err := d.send(uc8151DataStartBW); err != nil {
		return err
	}
	if err := d.sendData(black...); err != nil {
		return err
	}

	// The monochrome variant writes the new frame to the second data
	// register as well; the bi-color variants carry the red layer there.
	second := red
	if second == nil {
		second = black
	}
	if err := d.send(uc8151DataStartRed); err != nil {
		return err
	}
	if err := d.sendData(second...); err != nil {
		return err
	}

	if err := d.send(uc8151DisplayRefresh); err != nil {
		return err
	}
	return d.waitIdle(ctx)
}

func (c *uc8151) sleep(d *EPD) error {
	if err := d.send(uc8151VcomDataInterval, 0xF7); err != nil {
		return err
	}
	if err := d.send(uc8151PowerOff); err != nil {
		return err
	}
	// Deep sleep requires the 0xA5 check byte.
	return d.send(uc8151DeepSleep, 0xA5)
}
