package browser

// A4 paper size in inches.
const (
	A4WidthInches  = 8.27
	A4HeightInches = 11.69
)

// PDFOptions control printing. Lengths are in inches.
type PDFOptions struct {
	PaperWidth        float64
	PaperHeight       float64
	MarginTop         float64
	MarginBottom      float64
	MarginLeft        float64
	MarginRight       float64
	PrintBackground   bool
	PreferCSSPageSize bool
}

// A4 returns borderless A4 options with backgrounds printed. The document's
// @page rule wins when present.
func A4() PDFOptions {
	return PDFOptions{
		PaperWidth:        A4WidthInches,
		PaperHeight:       A4HeightInches,
		PrintBackground:   true,
		PreferCSSPageSize: true,
	}
}

// floatPtr returns a pointer to a float64 value.
func floatPtr(v float64) *float64 {
	return &v
}
