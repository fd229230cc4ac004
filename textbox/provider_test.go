package textbox

import (
	"fmt"
	"unicode/utf8"
)

// fixedFace gives every character the same advance: half the size for
// regular text and three quarters for bold.
type fixedFace struct {
	size    float64
	bold    bool
	unicode bool
}

func (f fixedFace) advance() float64 {
	if f.bold {
		return 0.75 * f.size
	}
	return 0.5 * f.size
}

func (f fixedFace) Width(text string, kerning bool) float64 {
	n := len(text)
	if f.unicode {
		n = utf8.RuneCountInString(text)
	}
	return f.advance() * float64(n)
}

func (f fixedFace) Metrics() FontMetrics {
	return FontMetrics{Ascender: 0.75 * f.size, Descender: 0.25 * f.size, LineHeight: 1.25 * f.size}
}

func (f fixedFace) UnicodeAware() bool { return f.unicode }

// fixedProvider serves fixedFace for every font except "plain", which has no
// bold variant, and "bytes", which is not Unicode aware.
type fixedProvider struct {
	calls int
}

func (p *fixedProvider) Face(font string, styles Styles, size float64) (Face, error) {
	p.calls++
	if font == "plain" && styles.Has(Bold) {
		return nil, fmt.Errorf("fixed: %q has no %s variant: %w", font, styles, ErrUnsupportedStyle)
	}
	return fixedFace{size: size, bold: styles.Has(Bold), unicode: font != "bytes"}, nil
}

// body is the default style of the tests: ten units per em, five per
// regular character and 7.5 per bold character.
var body = Style{Font: "fixed", Size: 10}

func bold(text string) StyledFragment {
	return StyledFragment{Text: text, Style: Style{Styles: Bold}}
}

func normal(text string) StyledFragment {
	return StyledFragment{Text: text}
}
