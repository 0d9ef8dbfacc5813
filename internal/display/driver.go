package display

import (
	"context"
	"image"
)

// Driver is the call surface shared by the hardware panels and the emulator.
// Display takes portrait-oriented layers; red is nil for monochrome panels.
// Implementations must be safe to Sleep and re-Init across update cycles.
type Driver interface {
	// Init wakes the panel and runs its initialization sequence.
	Init(ctx context.Context) error

	// Clear blanks the panel to white.
	Clear(ctx context.Context) error

	// Display pushes the black layer, and the red layer for bi-color panels,
	// to the panel and triggers a full refresh.
	Display(ctx context.Context, black, red *image.Gray) error

	// Sleep puts the panel into deep sleep. E-Paper panels must not be left
	// powered at high voltage between refreshes.
	Sleep() error

	// Close releases SPI/GPIO or network resources.
	Close() error

	// Bounds returns the panel's native portrait bounds.
	Bounds() image.Rectangle
}
