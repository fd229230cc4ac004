package textbox

import "strings"

// Fragment is a finalized, measured piece of one line set in a single style.
type Fragment struct {
	Style

	// Text is what gets drawn: zero width spaces are removed, trailing
	// white space is excluded at the end of a line and soft hyphens only
	// survive, as "-", at the very end of a line.
	Text       string
	Width      float64
	Ascender   float64
	Descender  float64
	LineHeight float64
	SpaceCount int

	// FontName and FontSize are the resolved font and the effective size,
	// scaled for sub- and superscript.
	FontName string
	FontSize float64

	// Placement, filled in by Box.
	X           float64
	Baseline    float64
	WordSpacing float64

	// raw is the consumed input, kept so the fragment can be repacked.
	raw string
}

// IsNewline reports whether the fragment is a forced line break.
func (f Fragment) IsNewline() bool { return f.raw == "\n" }

// YOffset is the baseline shift of sub- and superscript text. Positive values
// move the text down.
func (f Fragment) YOffset() float64 {
	switch {
	case f.Styles.Has(Subscript):
		return f.Descender
	case f.Styles.Has(Superscript):
		return -0.85 * f.Ascender
	}
	return 0
}

// Top and Bottom are the vertical extent of the fragment around its baseline.
func (f Fragment) Top() float64    { return f.Baseline + f.YOffset() - f.Ascender }
func (f Fragment) Bottom() float64 { return f.Baseline + f.YOffset() + f.Descender }

// displayText turns a consumed record into drawable text. lastOnLine allows a
// final soft hyphen to show as a hyphen.
func displayText(r record, lastOnLine bool) string {
	if r.text == "\n" {
		return "\n"
	}
	t := r.text[r.lead:]
	t = strings.ReplaceAll(t, zeroWidthSpace, "")
	if r.trimTrailing {
		t = strings.TrimRight(t, asciiSpace)
	}
	if !strings.Contains(t, softHyphen) {
		return t
	}
	if lastOnLine && strings.HasSuffix(t, softHyphen) {
		return strings.ReplaceAll(strings.TrimSuffix(t, softHyphen), softHyphen, "") + "-"
	}
	return strings.ReplaceAll(t, softHyphen, "")
}
