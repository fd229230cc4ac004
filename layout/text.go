package layout

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"github.com/ByLCY/quire/binding"
	"github.com/ByLCY/quire/inline"
	"github.com/ByLCY/quire/textbox"
)

const (
	defaultFontSizePt = 12
	// unboundedWidth stands in for "no width limit" when measuring nowrap text.
	unboundedWidth = 1e6
)

// Overflow modes of a text command. Paginate is the flow default: text that
// does not fit the rest of the page continues on the next one.
const (
	overflowPaginate = "paginate"
	overflowTruncate = "truncate"
	overflowExpand   = "expand"
	overflowShrink   = "shrink-to-fit"
	overflowEllipses = "ellipses"
)

// textSpec is a text command with its attributes resolved. Position, width
// and height are filled in by the caller.
type textSpec struct {
	font     string
	frags    []textbox.StyledFragment
	size     Length
	color    Color
	opts     textbox.Options
	align    string
	valign   string
	wrap     string
	overflow string
	height   float64 // explicit box height in mm, 0 when absent
	nowrap   bool
	debug    *TextBoxDebug
}

// parseText resolves the attributes of a text command. wrap and align are
// the values inherited from the enclosing flow.
func (e *env) parseText(style string, attrs map[string]string, content string, wrap, align string) (*textSpec, error) {
	attrs = mergeStyleAttributes(style, attrs, e.res.Styles)
	if v := strings.TrimSpace(attrs["align"]); v == "" && align != "" {
		attrs["align"] = align
	}
	if v := strings.TrimSpace(attrs["wrap"]); v != "" {
		wrap = normalizeWrap(v)
	}
	if wrap == "" {
		wrap = "anywhere"
	}

	spec := &textSpec{
		font:     attrs["font"],
		color:    resolveColor(attrs["color"], e.res),
		wrap:     wrap,
		overflow: normalizeOverflow(attrs["overflow"]),
	}
	if spec.font == "" {
		spec.font = style
	}
	if spec.font == "" {
		spec.font = defaultFontName
	}
	size, ok := parseFontSize(attrs["size"])
	if !ok {
		size = Length{Value: defaultFontSizePt, Unit: UnitPT}
	}
	spec.size = size

	markup := parseBool(attrs["markup"], true)
	if e.data != nil {
		if markup {
			content = binding.InterpolateMarkup(content, e.data)
		} else {
			content = binding.Interpolate(content, e.data)
		}
	}
	content = norm.NFC.String(content)
	if markup {
		frags, err := inline.Parse(content)
		if err != nil {
			return nil, err
		}
		for i := range frags {
			frags[i].CharSpacing *= PtToMm
		}
		spec.frags = frags
	} else {
		spec.frags = textbox.Plain(content)
	}
	charSpacing := parseLength(attrs["character-spacing"])
	for i := range spec.frags {
		f := &spec.frags[i]
		if f.Color.A == 0 {
			f.Color = spec.color.rgba()
		}
		if f.CharSpacing == 0 {
			f.CharSpacing = charSpacing
		}
	}

	spec.opts = textbox.Options{
		Font:    spec.font,
		Size:    size.ToPT(),
		Kerning: parseBool(attrs["kerning"], true),
	}
	leading, err := e.leading(spec, attrs)
	if err != nil {
		return nil, err
	}
	spec.opts.Leading = leading

	spec.align, spec.opts.Align = normalizeAlign(attrs["align"])
	if strings.EqualFold(strings.TrimSpace(attrs["direction"]), "rtl") {
		spec.opts.Direction = textbox.RTL
		if spec.align == "" {
			spec.opts.Align = textbox.AlignStart
		}
	}
	spec.valign, spec.opts.VerticalAlign = normalizeVAlign(attrs["valign"])

	switch wrap {
	case "normal":
		spec.opts.DisableWrapByChar = true
		spec.opts.ScanMode = textbox.ScanAuto
	case "break-word":
		spec.opts.ScanMode = textbox.ScanChars
	case "nowrap":
		spec.nowrap = true
		spec.opts.ScanMode = textbox.ScanAuto
	default:
		spec.opts.ScanMode = textbox.ScanAuto
	}
	spec.opts.SingleLine = parseBool(attrs["single-line"], false)

	switch spec.overflow {
	case overflowExpand:
		spec.opts.Overflow = textbox.Expand
	case overflowShrink:
		spec.opts.Overflow = textbox.ShrinkToFit
	case overflowEllipses:
		spec.opts.Overflow = textbox.Ellipses
	default:
		spec.opts.Overflow = textbox.Truncate
	}
	if v := attrs["min-size"]; v != "" {
		if l, ok := parseFontSize(v); ok {
			spec.opts.MinFontSize = l.ToPT()
		}
	}
	if v := attrs["height"]; v != "" {
		spec.height = parseLength(v)
	}

	if e.debug.RawUnits {
		spec.debug = rawUnitsDebug(attrs, size)
	}
	return spec, nil
}

// leading converts line-height into the extra space the engine adds between
// lines. An explicit leading attribute wins.
func (e *env) leading(spec *textSpec, attrs map[string]string) (float64, error) {
	if v := strings.TrimSpace(attrs["leading"]); v != "" {
		return math.Max(parseLength(v), 0), nil
	}
	v := strings.TrimSpace(attrs["line-height"])
	if v == "" {
		return 0, nil
	}
	lh, err := ParseLineHeight(v)
	if err != nil {
		return 0, fmt.Errorf("line-height: %w", err)
	}
	face, err := e.provider.Face(spec.font, 0, spec.size.ToPT())
	if err != nil {
		return 0, err
	}
	want := lh.Resolve(spec.size, UnitMM)
	return math.Max(want-face.Metrics().LineHeight, 0), nil
}

func rawUnitsDebug(attrs map[string]string, size Length) *TextBoxDebug {
	sizeRaw := RawLengthJSON{Value: size.Value, Unit: size.Unit.String()}
	raw := &RawUnits{FontSize: &sizeRaw}
	if v := strings.TrimSpace(attrs["line-height"]); v != "" {
		if lh, err := ParseLineHeight(v); err == nil {
			r := lh.Raw()
			raw.LineHeight = &r
		}
	}
	return &TextBoxDebug{RawUnits: raw}
}

// render runs the box engine at (x, y) with the given width and height.
func (e *env) render(spec *textSpec, frags []textbox.StyledFragment, x, y, width, height float64, overflow textbox.Overflow) (*textbox.Result, textbox.Options, error) {
	opts := spec.opts
	opts.X, opts.Y, opts.Width, opts.Height = x, y, width, height
	opts.Overflow = overflow
	if spec.nowrap {
		natural, err := e.naturalWidth(spec, frags)
		if err != nil {
			return nil, opts, err
		}
		opts.Width = math.Max(width, natural)
	}
	res, err := textbox.New(e.provider, frags, opts).Render(nil)
	if err != nil {
		if errors.Is(err, textbox.ErrCannotFit) {
			return nil, opts, fmt.Errorf("文本在 %.2fmm 宽度内无法排下任何字符: %w", width, err)
		}
		return nil, opts, fmt.Errorf("文本排版失败: %w", err)
	}
	if opts.Overflow == textbox.ShrinkToFit && res.FontSize < opts.Size {
		e.log.Debug("shrink to fit",
			zap.String("font", spec.font),
			zap.Float64("from", opts.Size),
			zap.Float64("to", res.FontSize),
			zap.Bool("fits", res.EverythingPrinted))
	}
	return res, opts, nil
}

// naturalWidth is the widest line of frags when only forced breaks apply.
func (e *env) naturalWidth(spec *textSpec, frags []textbox.StyledFragment) (float64, error) {
	opts := spec.opts
	opts.Width = unboundedWidth
	opts.Height = 0
	opts.Overflow = textbox.Expand
	opts.SingleLine = false
	res, err := textbox.New(e.provider, frags, opts).Render(nil)
	if err != nil {
		return 0, err
	}
	w := 0.0
	for _, ln := range res.Lines {
		w = math.Max(w, ln.Width)
	}
	return w, nil
}

// textBox converts a box result into its layout form.
func (spec *textSpec) textBox(res *textbox.Result, opts textbox.Options) TextBox {
	tb := TextBox{
		X:        opts.X,
		Y:        opts.Y,
		Width:    opts.Width,
		Height:   res.Height,
		Leading:  opts.Leading,
		Font:     spec.font,
		FontSize: res.FontSize,
		Color:    spec.color,
		Align:    spec.align,
		VAlign:   spec.valign,
		Wrap:     spec.wrap,
		Overflow: spec.overflow,
		Lines:    make([]TextLine, 0, len(res.Lines)),
	}
	if spec.debug != nil {
		d := *spec.debug
		d.Stop = res.Stop.String()
		tb.Debug = &d
	}
	content := make([]string, 0, len(res.Lines))
	prevBottom := 0.0
	for i, pl := range res.Lines {
		line := TextLine{
			Content:     pl.Text(),
			X:           pl.X,
			Baseline:    pl.Baseline,
			Width:       pl.Width,
			Height:      pl.Ascender + pl.Descender,
			WordSpacing: pl.WordSpacing,
			Fragments:   make([]TextFragment, 0, len(pl.Fragments)),
		}
		if i > 0 {
			line.GapBefore = pl.Baseline - pl.Ascender - prevBottom
		}
		prevBottom = pl.Baseline + pl.Descender
		for _, f := range pl.Fragments {
			line.Fragments = append(line.Fragments, spec.fragment(f))
		}
		content = append(content, line.Content)
		tb.Lines = append(tb.Lines, line)
	}
	tb.Content = strings.Join(content, "\n")
	return tb
}

func (spec *textSpec) fragment(f textbox.Fragment) TextFragment {
	col := spec.color
	if f.Color.A != 0 {
		col = fromRGBA(f.Color)
	}
	return TextFragment{
		Text:        f.Text,
		X:           f.X,
		Baseline:    f.Baseline + f.YOffset(),
		Width:       f.Width,
		Ascender:    f.Ascender,
		Descender:   f.Descender,
		Font:        f.FontName,
		Size:        f.FontSize,
		Styles:      f.Styles,
		Color:       col,
		CharSpacing: f.CharSpacing,
		WordSpacing: f.WordSpacing,
		NoKerning:   !spec.opts.Kerning,
		Link:        f.Link,
		Anchor:      f.Anchor,
	}
}

func normalizeWrap(v string) string {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "break-word", "word-break:break-word":
		return "break-word"
	case "nowrap", "no-wrap":
		return "nowrap"
	case "normal":
		return "normal"
	}
	return "anywhere"
}

func normalizeOverflow(v string) string {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "truncate", "hidden":
		return overflowTruncate
	case "expand", "visible":
		return overflowExpand
	case "shrink-to-fit", "shrink_to_fit", "shrink":
		return overflowShrink
	case "ellipses", "ellipsis":
		return overflowEllipses
	}
	return overflowPaginate
}

// normalizeAlign maps align values and the start/end aliases. The empty
// string means the attribute was absent or not understood.
func normalizeAlign(v string) (string, textbox.Align) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "left", "start":
		return "left", textbox.Left
	case "center", "middle":
		return "center", textbox.Center
	case "right", "end":
		return "right", textbox.Right
	case "justify":
		return "justify", textbox.Justify
	}
	return "", textbox.AlignStart
}

func normalizeVAlign(v string) (string, textbox.VerticalAlign) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "middle", "center":
		return "middle", textbox.Middle
	case "bottom":
		return "bottom", textbox.Bottom
	case "top":
		return "top", textbox.Top
	}
	return "", textbox.Top
}

func parseBool(v string, def bool) bool {
	v = strings.TrimSpace(v)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
