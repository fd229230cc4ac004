package textbox

import (
	"strings"
	"unicode/utf8"
)

// FontMetrics are the vertical metrics of a face at a given size. Descender
// is a positive distance below the baseline.
type FontMetrics struct {
	Ascender   float64
	Descender  float64
	LineHeight float64
}

// Face measures text in one font, variant and size.
type Face interface {
	// Width returns the advance width of text in layout units.
	Width(text string, kerning bool) float64
	Metrics() FontMetrics
	// UnicodeAware reports whether text is addressed by code point. Faces
	// that return false are split byte by byte.
	UnicodeAware() bool
}

// Provider resolves a font reference to a Face. It must wrap
// ErrUnsupportedStyle when the font has no variant for styles.
type Provider interface {
	Face(font string, styles Styles, size float64) (Face, error)
}

const (
	softHyphen     = "\u00ad"
	zeroWidthSpace = "\u200b"
)

// measure returns the width of text under st, including character spacing.
// Soft hyphens are measured as the hyphen they may become and zero width
// spaces are ignored.
func measure(f Face, st Style, text string, kerning bool) float64 {
	if text == "" {
		return 0
	}
	if strings.Contains(text, zeroWidthSpace) {
		text = strings.ReplaceAll(text, zeroWidthSpace, "")
		if text == "" {
			return 0
		}
	}
	if strings.Contains(text, softHyphen) {
		text = strings.ReplaceAll(text, softHyphen, "-")
	}
	w := f.Width(text, kerning)
	if st.CharSpacing != 0 {
		w += st.CharSpacing * float64(utf8.RuneCountInString(text))
	}
	return w
}
