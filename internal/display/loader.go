package display

import (
	"time"

	"go.uber.org/zap"

	"github.com/b0x42/weatherstation-epaper/internal/display/emulator"
	"github.com/b0x42/weatherstation-epaper/internal/display/epd"
)

const (
	emulatorHint = "set EMULATOR_ADDR to a free local address, or unset USE_EMULATOR to drive real hardware"
	hardwareHint = "enable SPI via raspi-config and check the HAT wiring; see https://www.waveshare.com/wiki/2.13inch_e-Paper_HAT"
)

// Options carries the runtime backend selection for the loader.
type Options struct {
	Backend Backend

	// EmulatorAddr is the listen address for the emulator's preview server.
	EmulatorAddr string
	// EmulatorRefresh is how often the preview page reloads the frame.
	EmulatorRefresh time.Duration

	Logger *zap.Logger
}

// Factory builds a driver for a previously validated descriptor. Invoking it
// either returns a usable driver or an error; it never leaves a panel or
// emulator half-constructed.
type Factory func() (Driver, error)

// Backend constructors and capability probes, substitutable in tests.
var (
	probeEmulator = emulator.Probe
	newEmulator   = func(desc Descriptor, opts Options) (Driver, error) {
		return emulator.New(emulator.Config{
			Addr:    opts.EmulatorAddr,
			Width:   desc.WidthPx,
			Height:  desc.HeightPx,
			HasRed:  desc.HasRedChannel,
			Refresh: opts.EmulatorRefresh,
			Logger:  opts.Logger,
		})
	}

	probeHardware = epd.Probe
	newHardware   = func(desc Descriptor, opts Options) (Driver, error) {
		return epd.New(epd.Config{
			Model:         desc.Model,
			Width:         desc.WidthPx,
			Height:        desc.HeightPx,
			HasRed:        desc.HasRedChannel,
			PartialUpdate: desc.SupportsPartialUpdate,
			Logger:        opts.Logger,
		})
	}
)

// NewFactory validates the model, probes the selected backend and returns a
// driver factory for it. Probing happens here so a missing emulator or an
// absent SPI bus surfaces before any construction is attempted.
func NewFactory(model string, opts Options) (Factory, Descriptor, error) {
	desc, err := Validate(model)
	if err != nil {
		return nil, Descriptor{}, err
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	switch opts.Backend {
	case BackendEmulator:
		if err := probeEmulator(opts.EmulatorAddr); err != nil {
			return nil, Descriptor{}, &IntegrationError{
				Kind:  KindMissingOptionalDependency,
				Model: desc.Model,
				Hint:  emulatorHint,
				Err:   err,
			}
		}
		return func() (Driver, error) {
			drv, err := newEmulator(desc, opts)
			if err != nil {
				return nil, &IntegrationError{
					Kind:  KindMissingOptionalDependency,
					Model: desc.Model,
					Hint:  emulatorHint,
					Err:   err,
				}
			}
			return drv, nil
		}, desc, nil

	default:
		if err := probeHardware(); err != nil {
			return nil, Descriptor{}, &IntegrationError{
				Kind:  KindMissingHardwareDriver,
				Model: desc.Model,
				Hint:  hardwareHint,
				Err:   err,
			}
		}
		return func() (Driver, error) {
			drv, err := newHardware(desc, opts)
			if err != nil {
				return nil, &IntegrationError{
					Kind:  KindMissingHardwareDriver,
					Model: desc.Model,
					Hint:  hardwareHint,
					Err:   err,
				}
			}
			return drv, nil
		}, desc, nil
	}
}

// NewDriver is the one-step form of NewFactory for callers that construct
// immediately.
func NewDriver(model string, opts Options) (Driver, Descriptor, error) {
	factory, desc, err := NewFactory(model, opts)
	if err != nil {
		return nil, Descriptor{}, err
	}
	drv, err := factory()
	if err != nil {
		return nil, Descriptor{}, err
	}
	return drv, desc, nil
}
