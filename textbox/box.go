package textbox

import (
	"errors"
	"fmt"
	"math"
)

type Align int

const (
	// AlignStart is left for left-to-right text and right otherwise.
	AlignStart Align = iota
	Left
	Center
	Right
	Justify
)

func (a Align) String() string {
	switch a {
	case Left:
		return "left"
	case Center:
		return "center"
	case Right:
		return "right"
	case Justify:
		return "justify"
	default:
		return "start"
	}
}

type VerticalAlign int

const (
	Top VerticalAlign = iota
	Middle
	Bottom
)

// Direction is the order in which the fragments of a line are placed. Text
// inside a fragment is never reordered.
type Direction int

const (
	LTR Direction = iota
	RTL
)

// Overflow selects what happens to text that does not fit the box height.
type Overflow int

const (
	// Truncate drops the text from the box and returns it as leftover.
	Truncate Overflow = iota
	// Expand ignores the height and grows the box.
	Expand
	// ShrinkToFit retries at smaller font sizes down to MinFontSize.
	ShrinkToFit
	// Ellipses truncates like Truncate and ends the last line with "...".
	Ellipses
)

func (o Overflow) String() string {
	switch o {
	case Expand:
		return "expand"
	case ShrinkToFit:
		return "shrink-to-fit"
	case Ellipses:
		return "ellipses"
	default:
		return "truncate"
	}
}

// StopReason tells why a box stopped placing lines.
type StopReason int

const (
	StopFinished StopReason = iota
	StopSingleLine
	StopHeight
)

func (s StopReason) String() string {
	switch s {
	case StopSingleLine:
		return "single line"
	case StopHeight:
		return "height exhausted"
	default:
		return "finished"
	}
}

const (
	// heightEpsilon absorbs rounding drift in the height check.
	heightEpsilon = 1e-4

	defaultFontSize    = 12
	defaultMinFontSize = 5
	defaultShrinkStep  = 0.5
	ellipsis           = "..."
)

// Options configure a Box. Coordinates grow downwards: Y is the top edge of
// the box and baselines are below it.
type Options struct {
	X, Y          float64
	Width, Height float64 // Height <= 0 means unbounded

	Font    string
	Size    float64
	Leading float64

	Align         Align
	VerticalAlign VerticalAlign
	Direction     Direction
	Overflow      Overflow
	MinFontSize   float64
	ShrinkStep    float64

	Kerning           bool
	SingleLine        bool
	DisableWrapByChar bool
	ScanMode          ScanMode
}

// Drawer receives every placed fragment of a box.
type Drawer interface {
	DrawFragment(f Fragment) error
}

// DrawerFunc adapts a function to the Drawer interface.
type DrawerFunc func(f Fragment) error

func (fn DrawerFunc) DrawFragment(f Fragment) error { return fn(f) }

// PlacedLine is a line with its final position. The fragments carry absolute
// X and Baseline values.
type PlacedLine struct {
	Line
	X           float64
	Baseline    float64
	WordSpacing float64
}

// Result describes what a box placed and what it left over.
type Result struct {
	Lines []PlacedLine
	// Leftover is the text that did not fit, ready to be laid out in another
	// box. White space at the break is dropped, so it starts at its first
	// printable character or forced newline, as the next line would strip it
	// anyway. Characters removed for an ellipsis are kept in front of it.
	Leftover          []StyledFragment
	Height            float64
	FontSize          float64
	EverythingPrinted bool
	NothingPrinted    bool
	Stop              StopReason
}

// Box fits styled text into a rectangle.
type Box struct {
	provider Provider
	text     []StyledFragment
	opts     Options
}

// New returns a box for text. The fragments are copied.
func New(p Provider, text []StyledFragment, opts Options) *Box {
	if opts.Size <= 0 {
		opts.Size = defaultFontSize
	}
	if opts.MinFontSize <= 0 {
		opts.MinFontSize = defaultMinFontSize
	}
	if opts.ShrinkStep <= 0 {
		opts.ShrinkStep = defaultShrinkStep
	}
	if opts.Align == AlignStart {
		opts.Align = Left
		if opts.Direction == RTL {
			opts.Align = Right
		}
	}
	return &Box{provider: p, text: append([]StyledFragment(nil), text...), opts: opts}
}

// NewPlain returns a box for a single unstyled string.
func NewPlain(p Provider, text string, opts Options) *Box {
	return New(p, Plain(text), opts)
}

// Options returns the effective options of the box.
func (b *Box) Options() Options { return b.opts }

// Render lays out the text and hands each placed fragment to d. A nil d
// performs a dry run that only measures.
func (b *Box) Render(d Drawer) (*Result, error) {
	var (
		lay *layoutPass
		err error
	)
	if b.opts.Overflow == ShrinkToFit {
		lay, err = b.shrink()
	} else {
		lay, err = b.wrap(b.opts.Size)
	}
	if err != nil {
		return nil, err
	}
	if b.opts.Overflow == Ellipses && len(lay.lines) > 0 && !lay.arranger.Finished() {
		if err := lay.ellipsize(b.opts.Width); err != nil {
			return nil, err
		}
	}

	res := &Result{
		FontSize:          lay.size,
		EverythingPrinted: lay.arranger.Finished(),
		NothingPrinted:    len(lay.lines) == 0,
		Stop:              lay.stop,
	}
	if len(lay.prefix) > 0 {
		res.Leftover = append(lay.prefix, lay.arranger.Unconsumed()...)
	} else {
		res.Leftover = trimLeading(lay.arranger.Unconsumed())
	}
	if n := len(lay.lines); n > 0 {
		last := lay.lines[n-1]
		res.Height = last.baseline + last.Descender
	}
	offset := b.verticalOffset(res.Height)
	for _, l := range lay.lines {
		pl := b.place(l, offset)
		if d != nil {
			for _, f := range pl.Fragments {
				if f.Text == "" || f.IsNewline() {
					continue
				}
				if err := d.DrawFragment(f); err != nil {
					return nil, fmt.Errorf("textbox: draw %q: %w", f.Text, err)
				}
			}
		}
		res.Lines = append(res.Lines, pl)
	}
	return res, nil
}

func (b *Box) height() float64 {
	if b.opts.Overflow == Expand || b.opts.Height <= 0 {
		return math.Inf(1)
	}
	return b.opts.Height
}

func (b *Box) verticalOffset(used float64) float64 {
	h := b.height()
	if math.IsInf(h, 1) {
		return 0
	}
	switch b.opts.VerticalAlign {
	case Middle:
		return (h - used) / 2
	case Bottom:
		return h - used
	}
	return 0
}

type wrappedLine struct {
	Line
	baseline float64 // distance from the top of the box
}

// layoutPass is one complete wrap of the box text at one font size.
type layoutPass struct {
	arranger *Arranger
	size     float64
	lines    []wrappedLine
	stop     StopReason
	// prefix is text removed from the last line, placed before the leftover.
	prefix []StyledFragment
}

// wrap places lines until the text is exhausted, the first line is done in
// single line mode, or the next line would not fit the height.
func (b *Box) wrap(size float64) (*layoutPass, error) {
	a := NewArranger(b.provider, Style{Font: b.opts.Font, Size: size}, b.opts.Kerning)
	a.Load(b.text)
	lay := &layoutPass{arranger: a, size: size}
	wopts := WrapOptions{
		Kerning:           b.opts.Kerning,
		DisableWrapByChar: b.opts.DisableWrapByChar,
		ScanMode:          b.opts.ScanMode,
	}
	height := b.height()
	baseline := 0.0
	for !a.Finished() {
		line, err := WrapLine(a, b.opts.Width, wopts)
		if err != nil {
			return nil, err
		}
		first := len(lay.lines) == 0
		need := baseline + line.Descender + line.LineHeight + b.opts.Leading
		if first {
			need = line.Ascender + line.Descender
		}
		if need > height+heightEpsilon {
			if err := a.RepackUnretrieved(); err != nil {
				return nil, err
			}
			lay.stop = StopHeight
			return lay, nil
		}
		if first {
			baseline = line.Ascender
		} else {
			baseline += line.LineHeight + b.opts.Leading
		}
		if line.Fragments, err = a.TakeFragments(); err != nil {
			return nil, err
		}
		lay.lines = append(lay.lines, wrappedLine{Line: line, baseline: baseline})
		if b.opts.SingleLine && !a.Finished() {
			lay.stop = StopSingleLine
			return lay, nil
		}
	}
	lay.stop = StopFinished
	return lay, nil
}

// shrink wraps at decreasing font sizes until everything fits or the minimum
// size is reached.
func (b *Box) shrink() (*layoutPass, error) {
	size := b.opts.Size
	for {
		lay, err := b.wrap(size)
		switch {
		case err == nil:
			if lay.arranger.Finished() || size <= b.opts.MinFontSize {
				return lay, nil
			}
		case errors.Is(err, ErrCannotFit) && b.opts.DisableWrapByChar && size > b.opts.MinFontSize:
		default:
			return nil, err
		}
		size = math.Max(size-b.opts.ShrinkStep, b.opts.MinFontSize)
	}
}

// place positions a line horizontally and fixes the absolute coordinates of
// its fragments.
func (b *Box) place(l wrappedLine, offset float64) PlacedLine {
	o := b.opts
	pl := PlacedLine{Line: l.Line, Baseline: o.Y + offset + l.baseline}
	if o.Align == Justify && !l.ParagraphFinished && l.SpaceCount > 0 {
		pl.WordSpacing = (o.Width - l.Width) / float64(l.SpaceCount)
	}
	switch o.Align {
	case Center:
		pl.X = o.X + o.Width/2 - l.Width/2
	case Right:
		pl.X = o.X + o.Width - l.Width
	case Justify:
		// Spread lines fill the width; only unspread lines follow the direction.
		pl.X = o.X
		if o.Direction == RTL && pl.WordSpacing == 0 {
			pl.X = o.X + o.Width - l.Width
		}
	default:
		pl.X = o.X
	}

	frags := make([]Fragment, 0, len(l.Fragments))
	for _, f := range l.Fragments {
		if f.IsNewline() {
			break
		}
		frags = append(frags, f)
	}
	if o.Direction == RTL {
		for i, j := 0, len(frags)-1; i < j; i, j = i+1, j-1 {
			frags[i], frags[j] = frags[j], frags[i]
		}
	}
	x := pl.X
	for i := range frags {
		f := &frags[i]
		f.X = x
		f.Baseline = pl.Baseline
		f.WordSpacing = pl.WordSpacing
		x += f.Width + pl.WordSpacing*float64(f.SpaceCount)
	}
	pl.Fragments = frags
	return pl
}

// trimLeading drops the white space a following line would strip anyway, so
// leftover text starts at its first printable character or forced break.
func trimLeading(frags []StyledFragment) []StyledFragment {
	for len(frags) > 0 {
		f := frags[0]
		if f.Text == "\n" {
			return frags
		}
		trimmed := trimLeftSpace(f.Text)
		if trimmed != "" {
			f.Text = trimmed
			return append([]StyledFragment{f}, frags[1:]...)
		}
		frags = frags[1:]
	}
	return nil
}
