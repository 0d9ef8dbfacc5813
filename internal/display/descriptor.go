// Package display holds the registry of supported Waveshare e-Paper panels,
// the backend loader that turns a model identifier into a ready-to-use driver,
// and the resolution-aware layout resolver used by the renderer.
package display

import (
	"image"
	"sort"
	"strings"
)

// Descriptor describes the physical characteristics of one supported panel.
// Width and Height are the vendor-datasheet (portrait) values.
type Descriptor struct {
	Model                 string
	WidthPx               int
	HeightPx              int
	HasRedChannel         bool
	SupportsPartialUpdate bool
	Description           string
}

// Bounds returns the panel's native portrait bounds.
func (d Descriptor) Bounds() image.Rectangle {
	return image.Rect(0, 0, d.WidthPx, d.HeightPx)
}

// CanvasSize returns the landscape drawing-surface dimensions: the larger
// panel dimension becomes the canvas width, the smaller the canvas height.
func (d Descriptor) CanvasSize() (w, h int) {
	if d.WidthPx > d.HeightPx {
		return d.WidthPx, d.HeightPx
	}
	return d.HeightPx, d.WidthPx
}

// DefaultModel is used when DISPLAY_MODEL is not set.
const DefaultModel = "epd2in13bc"

// registry maps model identifiers to their specifications. Built once,
// read-only afterwards.
var registry = map[string]Descriptor{
	"epd2in13bc": {
		Model:         "epd2in13bc",
		WidthPx:       104,
		HeightPx:      212,
		HasRedChannel: true,
		Description:   "2.13inch bi-color (black/white/red)",
	},
	"epd2in13d": {
		Model:                 "epd2in13d",
		WidthPx:               104,
		HeightPx:              212,
		SupportsPartialUpdate: true,
		Description:           "2.13inch monochrome with partial update",
	},
	"epd2in13_V2": {
		Model:                 "epd2in13_V2",
		WidthPx:               122,
		HeightPx:              250,
		SupportsPartialUpdate: true,
		Description:           "2.13inch monochrome V2",
	},
	"epd2in13_V3": {
		Model:                 "epd2in13_V3",
		WidthPx:               122,
		HeightPx:              250,
		SupportsPartialUpdate: true,
		Description:           "2.13inch monochrome V3",
	},
	"epd2in13_V4": {
		Model:                 "epd2in13_V4",
		WidthPx:               122,
		HeightPx:              250,
		SupportsPartialUpdate: true,
		Description:           "2.13inch monochrome V4",
	},
	"epd2in13b_V3": {
		Model:         "epd2in13b_V3",
		WidthPx:       104,
		HeightPx:      212,
		HasRedChannel: true,
		Description:   "2.13inch bi-color V3",
	},
	"epd2in13b_V4": {
		Model:         "epd2in13b_V4",
		WidthPx:       122,
		HeightPx:      250,
		HasRedChannel: true,
		Description:   "2.13inch bi-color V4",
	},
}

// Models returns the sorted list of registered model identifiers.
func Models() []string {
	models := make([]string, 0, len(registry))
	for m := range registry {
		models = append(models, m)
	}
	sort.Strings(models)
	return models
}

// Validate looks up a model identifier in the registry. An unknown model
// returns a *ConfigError (kind unknown-model) listing all valid identifiers.
func Validate(model string) (Descriptor, error) {
	desc, ok := registry[model]
	if !ok {
		return Descriptor{}, &ConfigError{
			Kind:   KindUnknownModel,
			Model:  model,
			Valid:  Models(),
			reason: "unknown display model",
		}
	}
	return desc, nil
}

// Backend selects the driver implementation at runtime.
type Backend int

const (
	// BackendHardware drives a physical panel over SPI/GPIO.
	BackendHardware Backend = iota
	// BackendEmulator renders into a local preview served over HTTP.
	BackendEmulator
)

func (b Backend) String() string {
	if b == BackendEmulator {
		return "emulator"
	}
	return "hardware"
}

// ParseBackend interprets the USE_EMULATOR toggle: any case-insensitive
// spelling of "true" selects the emulator, everything else (including the
// empty string) selects hardware.
func ParseBackend(v string) Backend {
	if strings.EqualFold(strings.TrimSpace(v), "true") {
		return BackendEmulator
	}
	return BackendHardware
}
