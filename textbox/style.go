// Package textbox wraps runs of styled text into lines and fits those lines
// into rectangular boxes.
//
// The package is pure and synchronous: font measurement is injected through a
// Provider, and every Box or Arranger is owned by a single caller for the
// duration of a layout call.
package textbox

import (
	"image/color"
	"strings"
)

// Styles is a set of typographic flags carried by a fragment.
type Styles uint16

const (
	Bold Styles = 1 << iota
	Italic
	Underline
	Strikethrough
	Subscript
	Superscript
)

// Has reports whether all flags in x are set.
func (s Styles) Has(x Styles) bool { return s&x == x }

// Face returns only the flags that select a font variant.
func (s Styles) Face() Styles { return s & (Bold | Italic) }

func (s Styles) String() string {
	if s == 0 {
		return "normal"
	}
	names := []struct {
		flag Styles
		name string
	}{
		{Bold, "bold"},
		{Italic, "italic"},
		{Underline, "underline"},
		{Strikethrough, "strikethrough"},
		{Subscript, "subscript"},
		{Superscript, "superscript"},
	}
	var parts []string
	for _, n := range names {
		if s.Has(n.flag) {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "+")
}

// Style describes how a run of text is set. Zero Font and Size inherit the
// box defaults and a zero alpha Color means the renderer default.
type Style struct {
	Font        string
	Size        float64
	Styles      Styles
	Color       color.RGBA
	CharSpacing float64
	Link        string
	Anchor      string
}

// StyledFragment is a maximal run of text sharing one Style.
type StyledFragment struct {
	Text string
	Style
}

// Plain wraps text into a single unstyled fragment.
func Plain(text string) []StyledFragment {
	return []StyledFragment{{Text: text}}
}

// JoinText concatenates the text of all fragments.
func JoinText(frags []StyledFragment) string {
	var b strings.Builder
	for _, f := range frags {
		b.WriteString(f.Text)
	}
	return b.String()
}

// subSupScale is the relative size of subscript and superscript text.
const subSupScale = 0.583

// resolve fills in inherited font and size and applies the sub/superscript
// scaling. base supplies the defaults.
func (s Style) resolve(base Style) (font string, size float64) {
	font = s.Font
	if font == "" {
		font = base.Font
	}
	size = s.Size
	if size <= 0 {
		size = base.Size
	}
	if s.Styles.Has(Subscript) || s.Styles.Has(Superscript) {
		size *= subSupScale
	}
	return font, size
}
