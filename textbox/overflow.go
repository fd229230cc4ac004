package textbox

import (
	"strings"
	"unicode/utf8"
)

// ellipsize replaces the last three characters of the last line with an
// ellipsis. If the ellipsis does not fit, the characters are only dropped.
// Removed characters, and the newline that ended the line, are returned to
// the front of the leftover.
func (lay *layoutPass) ellipsize(width float64) error {
	l := &lay.lines[len(lay.lines)-1]
	frags := l.Fragments
	end := len(frags)
	for i, f := range frags {
		if f.IsNewline() {
			end = i
			break
		}
	}
	visible := append([]Fragment(nil), frags[:end]...)
	if len(visible) == 0 {
		return nil
	}

	// Walk back over the last three characters.
	var removed []StyledFragment
	n := 3
	i := len(visible) - 1
	for ; i >= 0 && n > 0; i-- {
		f := &visible[i]
		cut := len(f.Text)
		for cut > 0 && n > 0 {
			_, size := utf8.DecodeLastRuneInString(f.Text[:cut])
			cut -= size
			n--
		}
		if cut < len(f.Text) {
			removed = append([]StyledFragment{{Text: f.Text[cut:], Style: f.Style}}, removed...)
			f.Text = f.Text[:cut]
		}
		if n > 0 {
			continue
		}
		break
	}
	if i < 0 {
		i = 0
	}
	if len(removed) > 0 {
		removed[len(removed)-1].Text += trailingSpace(frags[:end])
	}
	if end < len(frags) {
		// The line's forced newline was consumed with it.
		removed = append(removed, StyledFragment{Text: "\n", Style: frags[end].Style})
	}

	withEllipsis := append([]Fragment(nil), visible...)
	withEllipsis[i].Text += ellipsis
	w, err := lay.measureLine(withEllipsis)
	if err != nil {
		return err
	}
	if w > width {
		withEllipsis = visible
		if w, err = lay.measureLine(withEllipsis); err != nil {
			return err
		}
	}
	l.Fragments = withEllipsis
	l.Width = w
	l.SpaceCount = 0
	for _, f := range withEllipsis {
		l.SpaceCount += f.SpaceCount
	}
	lay.prefix = removed
	return nil
}

// measureLine re-measures frags in place and returns their total width.
func (lay *layoutPass) measureLine(frags []Fragment) (float64, error) {
	a := lay.arranger
	total := 0.0
	for i := range frags {
		f := &frags[i]
		face, err := a.face(f.Style)
		if err != nil {
			return 0, err
		}
		f.Width = measure(face, f.Style, f.Text, a.kerning)
		f.SpaceCount = strings.Count(f.Text, " ")
		total += f.Width
	}
	return total, nil
}

// trailingSpace returns the white space excluded from the end of a line.
func trailingSpace(frags []Fragment) string {
	tail := ""
	for i := len(frags) - 1; i >= 0; i-- {
		raw := frags[i].raw
		kept := strings.TrimRight(raw, asciiSpace)
		tail = raw[len(kept):] + tail
		if kept != "" {
			break
		}
	}
	return tail
}
