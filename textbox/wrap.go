package textbox

// TextLine is the result of wrapping a plain string in a single style.
type TextLine struct {
	// Printed is the line as drawn, without trailing white space.
	Printed string
	// Consumed is the number of bytes of the input used by the line,
	// including stripped white space and a terminating newline.
	Consumed   int
	Width      float64
	SpaceCount int
}

// WrapText wraps the first line of text in style st. It is WrapLine with a
// single implicit style, so both wrappers break lines identically.
func WrapText(text string, width float64, p Provider, st Style, opts WrapOptions) (TextLine, error) {
	a := NewArranger(p, st, opts.Kerning)
	a.Load([]StyledFragment{{Text: text, Style: st}})
	line, err := WrapLine(a, width, opts)
	if err != nil {
		return TextLine{}, err
	}
	return TextLine{
		Printed:    line.Text(),
		Consumed:   len(text) - len(JoinText(a.Unconsumed())),
		Width:      line.Width,
		SpaceCount: line.SpaceCount,
	}, nil
}
