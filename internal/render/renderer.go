// Package render rasterizes an observation into the 1-bit layer pair the
// display drivers consume. All drawing happens on a landscape canvas; the
// final frame is rotated back to the panel's portrait orientation.
package render

import (
	"fmt"
	"image"

	"github.com/fogleman/gg"
	"go.uber.org/zap"
	"golang.org/x/image/font"

	"github.com/b0x42/weatherstation-epaper/internal/display"
	"github.com/b0x42/weatherstation-epaper/internal/weather"
)

// minTempFontSize is the floor the temperature font shrinks to before the
// string is allowed to collide with the icon area.
const minTempFontSize = 20

// iconGap is the extra space kept between the temperature and the icon.
const iconGap = 8

// Options tune the renderer independently of the panel.
type Options struct {
	// TempSymbol is the unit suffix, "°C" or "°F".
	TempSymbol string
	// Flip rotates the final frame 180° for upside-down mounted panels.
	Flip   bool
	Logger *zap.Logger
}

// Frame is a rendered portrait-oriented layer pair. Red is nil for
// monochrome panels.
type Frame struct {
	Black *image.Gray
	Red   *image.Gray
}

// Renderer composes weather frames with a text font and an icon font.
type Renderer struct {
	textFont FontSource
	iconFont FontSource
	icons    *IconSet
	opts     Options
	logger   *zap.Logger
}

// New creates a renderer.
func New(textFont, iconFont FontSource, icons *IconSet, opts Options) *Renderer {
	if opts.TempSymbol == "" {
		opts.TempSymbol = "°C"
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{
		textFont: textFont,
		iconFont: iconFont,
		icons:    icons,
		opts:     opts,
		logger:   logger,
	}
}

// Compose renders an observation for the given panel. The temperature goes
// on the red layer of bi-color panels when the current value has reached the
// daily maximum; everything else is drawn black.
func (r *Renderer) Compose(obs weather.Observation, desc display.Descriptor, layout display.Layout) (Frame, error) {
	black := newCanvas(layout.CanvasW, layout.CanvasH)
	red := newCanvas(layout.CanvasW, layout.CanvasH)

	padding := float64(layout.Padding)

	// Summary first: its fitted face is independent of the temperature.
	availableWidth := float64(layout.CanvasW - 2*layout.Padding)
	summaryFace, summaryLines, err := fitSummary(
		obs.Summary, r.textFont, availableWidth,
		layout.MaxSummaryLines, layout.SummaryFontMax, layout.SummaryFontMin,
	)
	if err != nil {
		return Frame{}, fmt.Errorf("fit summary: %w", err)
	}

	// Temperature shrinks until it fits beside the reserved icon area.
	tempText := formatTemperature(obs.Temperature, obs.TemperatureMax, r.opts.TempSymbol)
	iconReserved := layout.IconSize + layout.Padding + iconGap
	maxTempWidth := float64(layout.CanvasW - layout.Padding - iconReserved)

	tempSize := layout.TempFontSize
	tempFace, err := r.textFont.Face(float64(tempSize))
	if err != nil {
		return Frame{}, fmt.Errorf("temperature face: %w", err)
	}
	for measureWith(tempFace)(tempText) > maxTempWidth && tempSize > minTempFontSize {
		tempSize--
		if tempFace, err = r.textFont.Face(float64(tempSize)); err != nil {
			return Frame{}, fmt.Errorf("temperature face: %w", err)
		}
	}

	tempCanvas := black
	if desc.HasRedChannel && obs.Temperature >= obs.TemperatureMax {
		tempCanvas = red
	}
	tempCanvas.SetFontFace(tempFace)
	tempAscent := float64(tempFace.Metrics().Ascent.Ceil())
	tempCanvas.DrawString(tempText, padding, padding+tempAscent)

	// Icon matches the fitted temperature size so both share the top
	// padding line. Positioning uses the glyph's real bounds; icon fonts
	// carry a lot of whitespace in the em box.
	iconFace, err := r.iconFont.Face(float64(tempSize))
	if err != nil {
		return Frame{}, fmt.Errorf("icon face: %w", err)
	}
	glyph := r.icons.Glyph(obs.Icon)
	bounds, _ := font.BoundString(iconFace, glyph)

	iconX := float64(layout.CanvasW-layout.Padding) - float64(bounds.Max.X)/64
	iconY := padding - float64(bounds.Min.Y)/64
	black.SetFontFace(iconFace)
	black.DrawString(glyph, iconX, iconY)

	// Summary block below the temperature area.
	black.SetFontFace(summaryFace)
	summaryAscent := float64(summaryFace.Metrics().Ascent.Ceil())
	lh := lineHeight(summaryFace, layout.LineSpacing)
	tempAreaHeight := layout.TempAreaHeight()
	for i, line := range summaryLines {
		y := float64(tempAreaHeight+i*lh) + summaryAscent
		black.DrawString(line, padding, y)
	}

	r.logger.Debug("frame composed",
		zap.String("temperature", tempText),
		zap.Int("temp_font_size", tempSize),
		zap.Int("summary_lines", len(summaryLines)),
		zap.String("icon", obs.Icon))

	frame := Frame{Black: r.orient(toGray(black.Image()))}
	if desc.HasRedChannel {
		frame.Red = r.orient(toGray(red.Image()))
	}
	return frame, nil
}

// orient rotates a landscape layer to the panel's portrait orientation,
// 180° reversed when the panel is mounted upside down.
func (r *Renderer) orient(img *image.Gray) *image.Gray {
	if r.opts.Flip {
		return rotateCW(img)
	}
	return rotateCCW(img)
}

func newCanvas(w, h int) *gg.Context {
	dc := gg.NewContext(w, h)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.SetRGB(0, 0, 0)
	return dc
}

// toGray thresholds a drawn canvas to a grayscale layer.
func toGray(img image.Image) *image.Gray {
	b := img.Bounds()
	gray := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			// Luma threshold: anti-aliased edge pixels darker than mid-gray
			// become ink.
			luma := (299*r + 587*g + 114*bl) / 1000
			if luma < 0x8000 {
				gray.Pix[gray.PixOffset(x, y)] = 0x00
			} else {
				gray.Pix[gray.PixOffset(x, y)] = 0xFF
			}
		}
	}
	return gray
}

// rotateCCW rotates 90° counter-clockwise: a WxH landscape layer becomes an
// HxW portrait layer.
func rotateCCW(src *image.Gray) *image.Gray {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewGray(image.Rect(0, 0, h, w))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dst.Pix[dst.PixOffset(y, w-1-x)] = src.Pix[src.PixOffset(b.Min.X+x, b.Min.Y+y)]
		}
	}
	return dst
}

// rotateCW rotates 90° clockwise.
func rotateCW(src *image.Gray) *image.Gray {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewGray(image.Rect(0, 0, h, w))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dst.Pix[dst.PixOffset(h-1-y, x)] = src.Pix[src.PixOffset(b.Min.X+x, b.Min.Y+y)]
		}
	}
	return dst
}
