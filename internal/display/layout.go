package display

import "math"

// Reference resolution the layout constants were tuned for: the 104x212
// panel family, rendered landscape as 212x104.
const (
	refCanvasW = 212
	refCanvasH = 104
)

// Reference layout constants at 212x104.
const (
	refPadding        = 10
	refTempFontSize   = 32
	refSummaryFontMax = 18
	refSummaryFontMin = 12
	refIconSize       = 48
	refLineSpacing    = 2
)

// Layout carries every pixel offset and font size the renderer needs, scaled
// for one concrete canvas. It is computed fresh per render and never cached.
type Layout struct {
	CanvasW int
	CanvasH int

	Padding        int
	TempFontSize   int
	SummaryFontMax int
	SummaryFontMin int
	IconSize       int
	LineSpacing    int

	MaxSummaryLines int
	// TempHeightRatio is the fraction of the canvas height reserved for the
	// temperature area above the summary block.
	TempHeightRatio float64
}

// TempAreaHeight returns the pixel height of the temperature area.
func (l Layout) TempAreaHeight() int {
	return int(float64(l.CanvasH) * l.TempHeightRatio)
}

// LayoutFor derives the layout for a descriptor's landscape canvas. Widths
// scale with the canvas width, heights and font sizes with the canvas height,
// each rounded to the nearest pixel. A descriptor at the reference resolution
// yields the reference constants unchanged.
func LayoutFor(desc Descriptor) Layout {
	w, h := desc.CanvasSize()

	scaleW := float64(w) / refCanvasW
	scaleH := float64(h) / refCanvasH

	return Layout{
		CanvasW: w,
		CanvasH: h,

		Padding:        scale(refPadding, scaleW),
		TempFontSize:   scale(refTempFontSize, scaleH),
		SummaryFontMax: scale(refSummaryFontMax, scaleH),
		SummaryFontMin: scale(refSummaryFontMin, scaleH),
		IconSize:       scale(refIconSize, scaleH),
		LineSpacing:    scale(refLineSpacing, scaleH),

		MaxSummaryLines: 2,
		TempHeightRatio: 0.55,
	}
}

func scale(v int, ratio float64) int {
	return int(math.Round(float64(v) * ratio))
}
