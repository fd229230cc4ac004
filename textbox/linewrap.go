package textbox

import (
	"strings"
	"unicode/utf8"
)

// WrapOptions control how a single line is broken.
type WrapOptions struct {
	Kerning bool
	// DisableWrapByChar makes a word that is wider than the whole line fail
	// with ErrCannotFit instead of being split between characters.
	DisableWrapByChar bool
	ScanMode          ScanMode
}

// Line is one wrapped line as produced by WrapLine.
type Line struct {
	Fragments  []Fragment
	Width      float64
	SpaceCount int
	Ascender   float64
	Descender  float64
	LineHeight float64
	// Newline is set when the line ended at a forced line break.
	Newline bool
	// ParagraphFinished is set when the line is the last of its paragraph:
	// it ended at a newline, a newline follows, or the input is exhausted.
	ParagraphFinished bool
}

// Text returns the drawable text of the line.
func (l Line) Text() string {
	var b strings.Builder
	for _, f := range l.Fragments {
		if !f.IsNewline() {
			b.WriteString(f.Text)
		}
	}
	return b.String()
}

// Empty reports whether nothing visible was placed on the line.
func (l Line) Empty() bool { return l.Text() == "" }

type outcome int

const (
	fit outcome = iota
	overflow
	cannotFit
)

func (o outcome) String() string {
	switch o {
	case overflow:
		return "overflow"
	case cannotFit:
		return "cannot fit"
	default:
		return "fit"
	}
}

// lineWrap is the state of one WrapLine call.
type lineWrap struct {
	a     *Arranger
	width float64
	opts  WrapOptions

	accumulated     float64
	output          string
	moreThanOneWord bool
	lineFull        bool
	newline         bool

	prevOutput          string
	prevEndedWithBreak  bool
	prevWithoutLastWord string
}

// WrapLine moves as many tokens from a onto one line as fit in width and
// finalizes the line. Each token is measured in its own style. It returns
// ErrCannotFit when not a single character of non-blank text fits; the
// arranger must then be reloaded before it is used again.
func WrapLine(a *Arranger, width float64, opts WrapOptions) (Line, error) {
	if err := a.InitializeLine(); err != nil {
		return Line{}, err
	}
	w := &lineWrap{a: a, width: width, opts: opts}
	for {
		tok, ok, err := a.NextToken()
		if err != nil {
			return Line{}, err
		}
		if !ok {
			break
		}
		text := tok.Text
		if w.lineEmpty() && text != "\n" {
			trimmed := trimLeftSpace(text)
			if n := len(text) - len(trimmed); n > 0 {
				if err := a.SkipLeading(n); err != nil {
					return Line{}, err
				}
				text = trimmed
			}
		}
		if w.lineEmpty() && text == "" && w.nextIsNewline() {
			if err := a.PushBack("", ""); err != nil {
				return Line{}, err
			}
			continue
		}
		res, err := w.add(tok.Style, text)
		if err != nil {
			return Line{}, err
		}
		if res == cannotFit {
			return Line{}, ErrCannotFit
		}
		if res == overflow {
			break
		}
	}

	if err := a.FinalizeLine(); err != nil {
		return Line{}, err
	}
	return w.result()
}

func (w *lineWrap) result() (Line, error) {
	var (
		l   Line
		err error
	)
	if l.Fragments, err = w.a.Fragments(); err != nil {
		return Line{}, err
	}
	if l.Width, err = w.a.LineWidth(); err != nil {
		return Line{}, err
	}
	if l.SpaceCount, err = w.a.SpaceCount(); err != nil {
		return Line{}, err
	}
	if l.Ascender, err = w.a.MaxAscender(); err != nil {
		return Line{}, err
	}
	if l.Descender, err = w.a.MaxDescender(); err != nil {
		return Line{}, err
	}
	if l.LineHeight, err = w.a.MaxLineHeight(); err != nil {
		return Line{}, err
	}
	l.Newline = w.newline
	l.ParagraphFinished = w.paragraphFinished()
	return l, nil
}

func (w *lineWrap) lineEmpty() bool { return !w.newline && w.accumulated == 0 }

func (w *lineWrap) nextIsNewline() bool {
	next, ok := w.a.PeekNextToken()
	return ok && strings.Contains(next, "\n")
}

func (w *lineWrap) paragraphFinished() bool {
	return w.newline || w.nextIsNewline() || w.a.Finished()
}

func (w *lineWrap) lineFinished() bool { return w.lineFull || w.paragraphFinished() }

// add places as much of frag on the line as fits.
func (w *lineWrap) add(st Style, frag string) (outcome, error) {
	switch frag {
	case "":
		return fit, nil
	case "\n":
		w.newline = true
		return overflow, nil
	}
	face, err := w.a.face(st)
	if err != nil {
		return cannotFit, err
	}
	w.output = ""
	for _, tok := range Scan(frag, w.opts.ScanMode) {
		seg := tok.Text
		segWidth := measure(face, st, seg, w.opts.Kerning)
		if w.accumulated+segWidth <= w.width {
			w.accumulated += segWidth
			if strings.HasSuffix(seg, softHyphen) {
				w.accumulated -= measure(face, st, softHyphen, w.opts.Kerning)
			}
			w.output += seg
			continue
		}
		if w.accumulated == 0 && w.moreThanOneWord {
			w.moreThanOneWord = false
		}
		w.endOfLine(face, st, seg)
		return w.finish(frag, overflow)
	}
	return w.finish(frag, fit)
}

func (w *lineWrap) endOfLine(face Face, st Style, seg string) {
	w.updateStatus()
	if !w.opts.DisableWrapByChar && !w.moreThanOneWord {
		w.wrapByChar(face, st, seg)
	}
	w.lineFull = true
}

// wrapByChar appends characters of seg while they fit. Faces that are not
// Unicode aware are split byte by byte.
func (w *lineWrap) wrapByChar(face Face, st Style, seg string) {
	unicode := face.UnicodeAware()
	for i := 0; i < len(seg); {
		n := 1
		if unicode {
			_, n = utf8.DecodeRuneInString(seg[i:])
		}
		ch := seg[i : i+n]
		cw := measure(face, st, ch, false)
		if w.accumulated+cw > w.width {
			return
		}
		w.accumulated += cw
		w.output += ch
		i += n
	}
}

// finish hands the printed part of frag back to the arranger.
func (w *lineWrap) finish(frag string, res outcome) (outcome, error) {
	if w.lineFinished() && w.lineEmpty() && w.output == "" && !isBlank(frag) {
		return cannotFit, nil
	}
	if err := w.a.PushBack(w.output, frag[len(w.output):]); err != nil {
		return res, err
	}
	w.updateStatus()
	if err := w.pullPrecedingWord(frag); err != nil {
		return res, err
	}
	w.remember()
	return res, nil
}

func (w *lineWrap) updateStatus() {
	if hasWordDivision(w.output) {
		w.moreThanOneWord = true
	}
}

// pullPrecedingWord keeps a word that straddles a style change together: when
// nothing of frag fits and there is no break between it and the previous
// fragment, the last word of the previous fragment moves to the next line.
func (w *lineWrap) pullPrecedingWord(frag string) error {
	if w.output != "" || frag == "" || !w.moreThanOneWord {
		return nil
	}
	if w.prevEndedWithBreak || w.beginsWithBreak(frag) {
		return nil
	}
	w.output = w.prevWithoutLastWord
	return w.a.PushBack(w.output, w.prevOutput[len(w.output):])
}

func (w *lineWrap) remember() {
	w.prevOutput = w.output
	w.prevEndedWithBreak = w.endsWithBreak(w.output)
	w.prevWithoutLastWord = w.output[:len(w.output)-len(lastWord(w.output))]
}

func (w *lineWrap) endsWithBreak(s string) bool {
	switch w.opts.ScanMode {
	case ScanChars:
		return s != ""
	case ScanAuto:
		if r, _ := utf8.DecodeLastRuneInString(s); s != "" && isWide(r) {
			return true
		}
	}
	return endsWithBreak(s)
}

func (w *lineWrap) beginsWithBreak(s string) bool {
	switch w.opts.ScanMode {
	case ScanChars:
		return s != ""
	case ScanAuto:
		if r, _ := utf8.DecodeRuneInString(s); s != "" && isWide(r) {
			return true
		}
	}
	return beginsWithBreak(s)
}
