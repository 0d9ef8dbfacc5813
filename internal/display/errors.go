package display

import (
	"fmt"
	"strings"
)

// ErrorKind classifies loader failures so callers can react without parsing
// message strings.
type ErrorKind string

const (
	// KindUnknownModel means the configured model is not in the registry.
	KindUnknownModel ErrorKind = "unknown-model"
	// KindMissingOptionalDependency means the emulator backend was requested
	// but is not usable in this environment.
	KindMissingOptionalDependency ErrorKind = "missing-optional-dependency"
	// KindMissingHardwareDriver means the hardware backend was requested but
	// the SPI/GPIO driver could not be brought up.
	KindMissingHardwareDriver ErrorKind = "missing-hardware-driver"
)

// ConfigError reports a bad configuration value, typically an unknown model
// identifier. Valid carries the full set of accepted identifiers.
type ConfigError struct {
	Kind   ErrorKind
	Model  string
	Valid  []string
	reason string
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("%s: %q", e.reason, e.Model)
	if len(e.Valid) > 0 {
		msg += fmt.Sprintf(" (supported models: %s)", strings.Join(e.Valid, ", "))
	}
	return msg
}

// IntegrationError reports an environment or installation problem preventing
// a backend from being constructed. Hint carries an actionable pointer for
// the user (installation URL, raspi-config step, alternative setting).
type IntegrationError struct {
	Kind  ErrorKind
	Model string
	Hint  string
	Err   error
}

func (e *IntegrationError) Error() string {
	msg := fmt.Sprintf("%s backend unavailable for %q", e.backendName(), e.Model)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Hint != "" {
		msg += " (" + e.Hint + ")"
	}
	return msg
}

func (e *IntegrationError) Unwrap() error { return e.Err }

func (e *IntegrationError) backendName() string {
	if e.Kind == KindMissingOptionalDependency {
		return "emulator"
	}
	return "hardware"
}
