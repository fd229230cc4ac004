package textbox

import (
	"fmt"
	"regexp"
	"strings"
)

// State is the position of an Arranger in its line protocol.
type State int

const (
	// Idle: text is loaded but no line has been started.
	Idle State = iota
	// Building: tokens are being moved onto the current line.
	Building
	// Finalized: the current line has been measured and its fragments can
	// be read, drawn or repacked.
	Finalized
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Building:
		return "building"
	case Finalized:
		return "finalized"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// record is one style-tagged run in the consumed or unconsumed queue.
type record struct {
	text  string
	style Style
	// lead is the number of leading bytes stripped from the start of a line.
	// They stay in text so that nothing is lost when the record is repacked.
	lead int
	// trimTrailing marks trailing white space excluded from the line.
	trimTrailing bool
}

type faceKey struct {
	font   string
	styles Styles
	size   float64
}

var linePattern = regexp.MustCompile(`[^\n]+|\n`)

// Arranger holds styled text between the raw input and the finalized
// fragments of one line. The text of Consumed followed by Unconsumed always
// equals the input that has not yet been placed on a finished line.
type Arranger struct {
	provider Provider
	base     Style
	kerning  bool

	state      State
	unconsumed []record
	consumed   []record
	fragments  []Fragment
	current    Style

	maxAscender   float64
	maxDescender  float64
	maxLineHeight float64

	faces map[faceKey]Face
}

// NewArranger returns an empty arranger. base supplies the font and size of
// fragments that do not set their own.
func NewArranger(p Provider, base Style, kerning bool) *Arranger {
	return &Arranger{
		provider: p,
		base:     base,
		kerning:  kerning,
		faces:    map[faceKey]Face{},
	}
}

// SetBase replaces the default style, e.g. when shrinking text to fit.
func (a *Arranger) SetBase(base Style) { a.base = base }

// Base returns the default style.
func (a *Arranger) Base() Style { return a.base }

// State returns the current protocol state.
func (a *Arranger) State() State { return a.state }

// Load replaces the arranger's text. Every newline becomes a record of its
// own so it is never merged with the text around it.
func (a *Arranger) Load(frags []StyledFragment) {
	a.unconsumed = a.unconsumed[:0]
	for _, f := range frags {
		for _, part := range linePattern.FindAllString(f.Text, -1) {
			a.unconsumed = append(a.unconsumed, record{text: part, style: f.Style})
		}
	}
	a.reset()
	a.state = Idle
}

func (a *Arranger) reset() {
	a.consumed = nil
	a.fragments = nil
	a.current = Style{}
	a.maxAscender, a.maxDescender, a.maxLineHeight = 0, 0, 0
}

// InitializeLine starts a new line. Fragments of a previous finalized line
// that were neither taken nor repacked are dropped.
func (a *Arranger) InitializeLine() error {
	if a.state == Building {
		return &UsageError{Op: "InitializeLine", State: a.state}
	}
	a.reset()
	a.state = Building
	return nil
}

// Finished reports whether every token has been consumed.
func (a *Arranger) Finished() bool { return len(a.unconsumed) == 0 }

// NextToken moves the next unconsumed record onto the current line and
// returns it. ok is false when the input is exhausted.
func (a *Arranger) NextToken() (tok StyledFragment, ok bool, err error) {
	if a.state != Building {
		return StyledFragment{}, false, &UsageError{Op: "NextToken", State: a.state}
	}
	if len(a.unconsumed) == 0 {
		return StyledFragment{}, false, nil
	}
	r := a.unconsumed[0]
	a.unconsumed = a.unconsumed[1:]
	a.consumed = append(a.consumed, r)
	a.current = r.style
	return StyledFragment{Text: r.text, Style: r.style}, true, nil
}

// PeekNextToken returns the text of the next unconsumed record without
// consuming it.
func (a *Arranger) PeekNextToken() (string, bool) {
	if len(a.unconsumed) == 0 {
		return "", false
	}
	return a.unconsumed[0].text, true
}

// CurrentStyle is the style of the most recently consumed record.
func (a *Arranger) CurrentStyle() Style { return a.current }

// SkipLeading marks the first n bytes of the last consumed record as left
// stripped. They are not drawn but remain part of the record.
func (a *Arranger) SkipLeading(n int) error {
	if a.state != Building || len(a.consumed) == 0 {
		return &UsageError{Op: "SkipLeading", State: a.state}
	}
	last := &a.consumed[len(a.consumed)-1]
	last.lead += n
	if last.lead > len(last.text) {
		last.lead = len(last.text)
	}
	return nil
}

// PushBack replaces the last consumed record by its printed part and returns
// the unprinted remainder, in the same style, to the front of the unconsumed
// queue. A record with nothing printed is removed from the line; if nothing
// is left unprinted either, its stripped white space is discarded too.
func (a *Arranger) PushBack(printed, unprinted string) error {
	if a.state != Building || len(a.consumed) == 0 {
		return &UsageError{Op: "PushBack", State: a.state}
	}
	i := len(a.consumed) - 1
	last := a.consumed[i]
	lead := last.text[:last.lead]
	if printed == "" {
		a.consumed = a.consumed[:i]
		if unprinted != "" {
			a.unshift(record{text: lead + unprinted, style: a.current})
		}
		a.loadPreviousStyle()
		return nil
	}
	a.consumed[i].text = lead + printed
	if unprinted != "" {
		a.unshift(record{text: unprinted, style: a.current})
	}
	return nil
}

func (a *Arranger) unshift(r record) {
	a.unconsumed = append([]record{r}, a.unconsumed...)
}

func (a *Arranger) loadPreviousStyle() {
	if len(a.consumed) == 0 {
		a.current = Style{}
		return
	}
	a.current = a.consumed[len(a.consumed)-1].style
}

// FinalizeLine measures the consumed records and turns them into fragments.
// Trailing white space is excluded from the line but kept in the records.
func (a *Arranger) FinalizeLine() error {
	if a.state != Building {
		return &UsageError{Op: "FinalizeLine", State: a.state}
	}
	a.markTrailingWhiteSpace()

	last := -1
	for i, r := range a.consumed {
		if r.text != "\n" && displayText(r, false) != "" {
			last = i
		}
	}

	a.fragments = make([]Fragment, 0, len(a.consumed))
	for i, r := range a.consumed {
		f, err := a.measureRecord(r, i == last)
		if err != nil {
			return err
		}
		a.fragments = append(a.fragments, f)
		a.maxLineHeight = max(a.maxLineHeight, f.LineHeight)
		a.maxDescender = max(a.maxDescender, f.Descender)
		a.maxAscender = max(a.maxAscender, f.Ascender)
	}
	a.state = Finalized
	return nil
}

func (a *Arranger) markTrailingWhiteSpace() {
	end := len(a.consumed)
	if end > 0 && a.consumed[end-1].text == "\n" {
		end--
	}
	for i := end - 1; i >= 0; i-- {
		r := &a.consumed[i]
		if r.text == "\n" {
			return
		}
		r.trimTrailing = true
		if !isBlank(r.text[r.lead:]) {
			return
		}
	}
}

func (a *Arranger) measureRecord(r record, lastOnLine bool) (Fragment, error) {
	face, err := a.face(r.style)
	if err != nil {
		return Fragment{}, err
	}
	text := displayText(r, lastOnLine)
	m := face.Metrics()
	font, size := r.style.resolve(a.base)
	f := Fragment{
		Style:      r.style,
		Text:       text,
		FontName:   font,
		FontSize:   size,
		Ascender:   m.Ascender,
		Descender:  m.Descender,
		LineHeight: m.LineHeight,
		raw:        r.text,
	}
	if text != "\n" {
		f.Width = measure(face, r.style, text, a.kerning)
		f.SpaceCount = strings.Count(text, " ")
	}
	return f, nil
}

// face resolves the font, variant and effective size of st.
func (a *Arranger) face(st Style) (Face, error) {
	font, size := st.resolve(a.base)
	key := faceKey{font: font, styles: st.Styles.Face(), size: size}
	if f, ok := a.faces[key]; ok {
		return f, nil
	}
	f, err := a.provider.Face(font, key.styles, size)
	if err != nil {
		return nil, fmt.Errorf("textbox: font %q (%s) at %g: %w", font, key.styles, size, err)
	}
	a.faces[key] = f
	return f, nil
}

// RepackUnretrieved returns the fragments of the finalized line that were not
// taken to the front of the unconsumed queue, restoring any stripped white
// space, so the same text can be laid out again elsewhere.
func (a *Arranger) RepackUnretrieved() error {
	if a.state != Finalized {
		return &UsageError{Op: "RepackUnretrieved", State: a.state}
	}
	packed := make([]record, 0, len(a.fragments)+len(a.unconsumed))
	for _, f := range a.fragments {
		if f.raw == "" {
			continue
		}
		packed = append(packed, record{text: f.raw, style: f.Style})
	}
	a.unconsumed = append(packed, a.unconsumed...)
	a.fragments = nil
	return nil
}

// TakeFragments returns the finalized fragments and clears them, so a later
// RepackUnretrieved does not return them to the input.
func (a *Arranger) TakeFragments() ([]Fragment, error) {
	if a.state != Finalized {
		return nil, &UsageError{Op: "TakeFragments", State: a.state}
	}
	out := a.fragments
	a.fragments = nil
	return out, nil
}

// Fragments returns a copy of the finalized fragments.
func (a *Arranger) Fragments() ([]Fragment, error) {
	if a.state != Finalized {
		return nil, &UsageError{Op: "Fragments", State: a.state}
	}
	return append([]Fragment(nil), a.fragments...), nil
}

// Line returns the drawable text of the finalized line.
func (a *Arranger) Line() (string, error) {
	if a.state != Finalized {
		return "", &UsageError{Op: "Line", State: a.state}
	}
	var b strings.Builder
	for _, f := range a.fragments {
		if f.IsNewline() {
			continue
		}
		b.WriteString(f.Text)
	}
	return b.String(), nil
}

// LineWidth is the width of the finalized line without trailing white space.
func (a *Arranger) LineWidth() (float64, error) {
	if a.state != Finalized {
		return 0, &UsageError{Op: "LineWidth", State: a.state}
	}
	w := 0.0
	for _, f := range a.fragments {
		w += f.Width
	}
	return w, nil
}

// SpaceCount is the number of space characters on the finalized line.
func (a *Arranger) SpaceCount() (int, error) {
	if a.state != Finalized {
		return 0, &UsageError{Op: "SpaceCount", State: a.state}
	}
	n := 0
	for _, f := range a.fragments {
		n += f.SpaceCount
	}
	return n, nil
}

func (a *Arranger) MaxAscender() (float64, error) {
	if a.state != Finalized {
		return 0, &UsageError{Op: "MaxAscender", State: a.state}
	}
	return a.maxAscender, nil
}

func (a *Arranger) MaxDescender() (float64, error) {
	if a.state != Finalized {
		return 0, &UsageError{Op: "MaxDescender", State: a.state}
	}
	return a.maxDescender, nil
}

func (a *Arranger) MaxLineHeight() (float64, error) {
	if a.state != Finalized {
		return 0, &UsageError{Op: "MaxLineHeight", State: a.state}
	}
	return a.maxLineHeight, nil
}

// Consumed returns the records placed on the current line, including any
// stripped white space.
func (a *Arranger) Consumed() []StyledFragment { return snapshot(a.consumed) }

// Unconsumed returns the records not yet placed on any line.
func (a *Arranger) Unconsumed() []StyledFragment { return snapshot(a.unconsumed) }

func snapshot(rs []record) []StyledFragment {
	if len(rs) == 0 {
		return nil
	}
	out := make([]StyledFragment, len(rs))
	for i, r := range rs {
		out[i] = StyledFragment{Text: r.text, Style: r.style}
	}
	return out
}
