package textbox

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func render(t *testing.T, b *Box, d Drawer) *Result {
	t.Helper()
	res, err := b.Render(d)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	return res
}

func lineTexts(res *Result) []string {
	out := make([]string, len(res.Lines))
	for i, l := range res.Lines {
		out[i] = l.Text()
	}
	return out
}

func boxOptions(width, height float64) Options {
	return Options{Width: width, Height: height, Font: "fixed", Size: 10}
}

func TestBoxGreedyLeftover(t *testing.T) {
	b := NewPlain(&fixedProvider{}, "Hello Quire World", boxOptions(55, 15))
	res := render(t, b, nil)
	if diff := cmp.Diff([]string{"Hello Quire"}, lineTexts(res)); diff != "" {
		t.Fatalf("lines mismatch (-want +got):\n%s", diff)
	}
	if got := JoinText(res.Leftover); got != "World" {
		t.Fatalf("leftover = %q, want World", got)
	}
	if res.Stop != StopHeight || res.EverythingPrinted || res.NothingPrinted {
		t.Fatalf("unexpected result flags %+v", res)
	}
	if res.Height != 10 {
		t.Fatalf("height = %v, want 10", res.Height)
	}
}

func TestBoxBlankLines(t *testing.T) {
	res := render(t, NewPlain(&fixedProvider{}, "Para one\n\n\nPara two", boxOptions(100, 0)), nil)
	want := []string{"Para one", "", "", "Para two"}
	if diff := cmp.Diff(want, lineTexts(res)); diff != "" {
		t.Fatalf("lines mismatch (-want +got):\n%s", diff)
	}

	res = render(t, NewPlain(&fixedProvider{}, "Para one\n   \nPara two", boxOptions(100, 0)), nil)
	want = []string{"Para one", "", "Para two"}
	if diff := cmp.Diff(want, lineTexts(res)); diff != "" {
		t.Fatalf("blank line with spaces mismatch (-want +got):\n%s", diff)
	}
}

func TestBoxJustify(t *testing.T) {
	opts := boxOptions(65, 0)
	opts.Align = Justify
	res := render(t, NewPlain(&fixedProvider{}, "a b c d e fffff", opts), nil)
	if len(res.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %v", lineTexts(res))
	}
	first := res.Lines[0]
	if first.SpaceCount != 4 || opts.Width-first.Width != 20 {
		t.Fatalf("first line spaces %d width %v", first.SpaceCount, first.Width)
	}
	if first.WordSpacing != 5 {
		t.Fatalf("word spacing = %v, want 5", first.WordSpacing)
	}
	if last := res.Lines[1]; last.WordSpacing != 0 {
		t.Fatalf("last line of paragraph has word spacing %v", last.WordSpacing)
	}
}

func TestBoxJustifySkipsLineBeforeNewline(t *testing.T) {
	opts := boxOptions(65, 0)
	opts.Align = Justify
	res := render(t, NewPlain(&fixedProvider{}, "a b\nc d", opts), nil)
	for _, l := range res.Lines {
		if l.WordSpacing != 0 {
			t.Fatalf("line %q justified with spacing %v", l.Text(), l.WordSpacing)
		}
	}
}

func TestBoxAlignment(t *testing.T) {
	cases := []struct {
		align Align
		want  float64
	}{
		{Left, 10},
		{Center, 35},
		{Right, 60},
	}
	for _, tc := range cases {
		opts := boxOptions(65, 0)
		opts.X = 10
		opts.Align = tc.align
		res := render(t, NewPlain(&fixedProvider{}, "abc", opts), nil)
		if got := res.Lines[0].Fragments[0].X; got != tc.want {
			t.Errorf("%s: x = %v, want %v", tc.align, got, tc.want)
		}
	}
}

func TestBoxRightToLeftDefaultsToRight(t *testing.T) {
	opts := boxOptions(65, 0)
	opts.Direction = RTL
	res := render(t, New(&fixedProvider{}, []StyledFragment{normal("ab "), bold("cd")}, opts), nil)
	frags := res.Lines[0].Fragments
	if len(frags) != 2 || frags[0].Text != "cd" || frags[1].Text != "ab " {
		t.Fatalf("fragments not reversed: %+v", frags)
	}
	if got, want := frags[0].X, 65-res.Lines[0].Width; got != want {
		t.Fatalf("first fragment x = %v, want %v", got, want)
	}
}

func TestBoxJustifiedRightToLeftStaysInside(t *testing.T) {
	opts := boxOptions(65, 0)
	opts.Align = Justify
	opts.Direction = RTL
	res := render(t, NewPlain(&fixedProvider{}, "a b c d e fffff", opts), nil)
	if diff := cmp.Diff([]string{"a b c d e", "fffff"}, lineTexts(res)); diff != "" {
		t.Fatalf("lines mismatch (-want +got):\n%s", diff)
	}
	first := res.Lines[0]
	if first.WordSpacing != 5 {
		t.Fatalf("word spacing = %v, want 5", first.WordSpacing)
	}
	if first.X != 0 {
		t.Fatalf("spread line starts at %v, want 0", first.X)
	}
	if right := first.X + first.Width + first.WordSpacing*float64(first.SpaceCount); right != 65 {
		t.Fatalf("right edge = %v, want 65", right)
	}
	last := res.Lines[1]
	if last.WordSpacing != 0 || last.X != 65-last.Width {
		t.Fatalf("last line x = %v spacing = %v, want right aligned", last.X, last.WordSpacing)
	}
}

func TestBoxBaselinesAndLeading(t *testing.T) {
	opts := boxOptions(20, 0)
	opts.Y = 100
	opts.Leading = 2
	res := render(t, NewPlain(&fixedProvider{}, "one two six", opts), nil)
	var got []float64
	for _, l := range res.Lines {
		got = append(got, l.Baseline)
	}
	want := []float64{107.5, 122, 136.5}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("baselines mismatch (-want +got):\n%s", diff)
	}
	if res.Height != 39 {
		t.Fatalf("height = %v, want 39", res.Height)
	}
}

func TestBoxVerticalAlign(t *testing.T) {
	opts := boxOptions(100, 30)
	opts.VerticalAlign = Middle
	res := render(t, NewPlain(&fixedProvider{}, "mid", opts), nil)
	if got := res.Lines[0].Baseline; got != 17.5 {
		t.Fatalf("middle baseline = %v, want 17.5", got)
	}
	opts.VerticalAlign = Bottom
	res = render(t, NewPlain(&fixedProvider{}, "low", opts), nil)
	if got := res.Lines[0].Baseline; got != 27.5 {
		t.Fatalf("bottom baseline = %v, want 27.5", got)
	}
}

func TestBoxHeightEpsilon(t *testing.T) {
	// Two lines need exactly 22.5 units.
	res := render(t, NewPlain(&fixedProvider{}, "aaaa bbbb", boxOptions(25, 22.5-1e-5)), nil)
	if len(res.Lines) != 2 {
		t.Fatalf("expected the epsilon to admit the second line, got %v", lineTexts(res))
	}
	res = render(t, NewPlain(&fixedProvider{}, "aaaa bbbb", boxOptions(25, 22.4)), nil)
	if len(res.Lines) != 1 {
		t.Fatalf("expected a single line, got %v", lineTexts(res))
	}
}

func TestBoxExpandIgnoresHeight(t *testing.T) {
	opts := boxOptions(20, 5)
	opts.Overflow = Expand
	res := render(t, NewPlain(&fixedProvider{}, "one two six", opts), nil)
	if len(res.Lines) != 3 || !res.EverythingPrinted {
		t.Fatalf("expand placed %v", lineTexts(res))
	}
}

func TestBoxSingleLine(t *testing.T) {
	opts := boxOptions(20, 0)
	opts.SingleLine = true
	res := render(t, NewPlain(&fixedProvider{}, "one two six", opts), nil)
	if len(res.Lines) != 1 || res.Stop != StopSingleLine {
		t.Fatalf("single line placed %v, stop %s", lineTexts(res), res.Stop)
	}
	if got := JoinText(res.Leftover); got != "two six" {
		t.Fatalf("leftover = %q", got)
	}
}

func TestBoxShrinkToFit(t *testing.T) {
	opts := boxOptions(25, 10)
	opts.Overflow = ShrinkToFit
	res := render(t, NewPlain(&fixedProvider{}, "aaaa bbbb", opts), nil)
	if res.FontSize != 5.5 || !res.EverythingPrinted {
		t.Fatalf("font size %v, everything printed %v", res.FontSize, res.EverythingPrinted)
	}
	if diff := cmp.Diff([]string{"aaaa bbbb"}, lineTexts(res)); diff != "" {
		t.Fatalf("lines mismatch (-want +got):\n%s", diff)
	}
}

func TestBoxShrinkToFitStopsAtMinimum(t *testing.T) {
	opts := boxOptions(25, 10)
	opts.Overflow = ShrinkToFit
	opts.MinFontSize = 8
	res := render(t, NewPlain(&fixedProvider{}, "aaaa bbbb", opts), nil)
	if res.FontSize != 8 || res.EverythingPrinted {
		t.Fatalf("font size %v, everything printed %v", res.FontSize, res.EverythingPrinted)
	}
	if got := JoinText(res.Leftover); got != "bbbb" {
		t.Fatalf("leftover = %q", got)
	}
}

func TestBoxShrinkToFitSwallowsCannotFit(t *testing.T) {
	opts := boxOptions(50, 100)
	opts.Overflow = ShrinkToFit
	opts.DisableWrapByChar = true
	res := render(t, NewPlain(&fixedProvider{}, "Supercalifragilistic", opts), nil)
	if res.FontSize != 5 || !res.EverythingPrinted {
		t.Fatalf("font size %v, everything printed %v", res.FontSize, res.EverythingPrinted)
	}

	opts.MinFontSize = 6
	_, err := NewPlain(&fixedProvider{}, "Supercalifragilistic", opts).Render(nil)
	if !errors.Is(err, ErrCannotFit) {
		t.Fatalf("at the minimum size: got %v, want ErrCannotFit", err)
	}
}

func TestBoxEllipses(t *testing.T) {
	opts := boxOptions(50, 10)
	opts.Overflow = Ellipses
	res := render(t, NewPlain(&fixedProvider{}, "one two three four", opts), nil)
	if diff := cmp.Diff([]string{"one ..."}, lineTexts(res)); diff != "" {
		t.Fatalf("lines mismatch (-want +got):\n%s", diff)
	}
	if got := JoinText(res.Leftover); got != "two three four" {
		t.Fatalf("leftover = %q", got)
	}
	if w := res.Lines[0].Width; w != 35 {
		t.Fatalf("width = %v, want 35", w)
	}
}

func TestBoxEllipsesKeepsForcedNewline(t *testing.T) {
	opts := boxOptions(100, 10)
	opts.Overflow = Ellipses
	res := render(t, NewPlain(&fixedProvider{}, "Line one\nLine two", opts), nil)
	if diff := cmp.Diff([]string{"Line ..."}, lineTexts(res)); diff != "" {
		t.Fatalf("lines mismatch (-want +got):\n%s", diff)
	}
	if got := JoinText(res.Leftover); got != "one\nLine two" {
		t.Fatalf("leftover = %q, want %q", got, "one\nLine two")
	}
	next := render(t, New(&fixedProvider{}, res.Leftover, boxOptions(100, 0)), nil)
	if diff := cmp.Diff([]string{"one", "Line two"}, lineTexts(next)); diff != "" {
		t.Fatalf("continued lines mismatch (-want +got):\n%s", diff)
	}
}

func TestBoxEllipsesDropsWhenNoRoom(t *testing.T) {
	opts := boxOptions(12, 10)
	opts.Overflow = Ellipses
	res := render(t, NewPlain(&fixedProvider{}, "ab cd", opts), nil)
	if diff := cmp.Diff([]string{""}, lineTexts(res)); diff != "" {
		t.Fatalf("lines mismatch (-want +got):\n%s", diff)
	}
	if got := JoinText(res.Leftover); got != "ab cd" {
		t.Fatalf("leftover = %q", got)
	}
}

func TestBoxEllipsesUntouchedWhenEverythingFits(t *testing.T) {
	opts := boxOptions(100, 10)
	opts.Overflow = Ellipses
	res := render(t, NewPlain(&fixedProvider{}, "short", opts), nil)
	if diff := cmp.Diff([]string{"short"}, lineTexts(res)); diff != "" {
		t.Fatalf("lines mismatch (-want +got):\n%s", diff)
	}
}

func TestBoxDrawsPlacedFragments(t *testing.T) {
	var drawn []Fragment
	d := DrawerFunc(func(f Fragment) error {
		drawn = append(drawn, f)
		return nil
	})
	opts := boxOptions(70, 0)
	opts.X, opts.Y = 5, 20
	in := []StyledFragment{normal("plain "), bold("bold"), normal("\nnext")}
	res := render(t, New(&fixedProvider{}, in, opts), d)

	var got []string
	for _, f := range drawn {
		got = append(got, f.Text)
	}
	if diff := cmp.Diff([]string{"plain ", "bold", "next"}, got); diff != "" {
		t.Fatalf("drawn mismatch (-want +got):\n%s", diff)
	}
	if drawn[1].X != 5+30 || drawn[1].Baseline != 27.5 {
		t.Fatalf("bold fragment at (%v, %v)", drawn[1].X, drawn[1].Baseline)
	}
	if drawn[2].Baseline != res.Lines[1].Baseline {
		t.Fatalf("second line fragment baseline %v, line %v", drawn[2].Baseline, res.Lines[1].Baseline)
	}
}

func TestBoxDrawerError(t *testing.T) {
	boom := errors.New("boom")
	d := DrawerFunc(func(Fragment) error { return boom })
	_, err := NewPlain(&fixedProvider{}, "x", boxOptions(10, 0)).Render(d)
	if !errors.Is(err, boom) {
		t.Fatalf("got %v, want wrapped boom", err)
	}
}

func TestBoxEmptyText(t *testing.T) {
	res := render(t, NewPlain(&fixedProvider{}, "", boxOptions(0, 0)), nil)
	if !res.NothingPrinted || !res.EverythingPrinted || len(res.Leftover) != 0 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestBoxDefaults(t *testing.T) {
	o := New(&fixedProvider{}, nil, Options{}).Options()
	if o.Size != 12 || o.MinFontSize != 5 || o.ShrinkStep != 0.5 || o.Align != Left {
		t.Fatalf("defaults = %+v", o)
	}
	if !math.IsInf(New(&fixedProvider{}, nil, Options{}).height(), 1) {
		t.Fatalf("zero height should be unbounded")
	}
}

func TestLeftoverStartsAtPrintableOrNewline(t *testing.T) {
	got := trimLeading([]StyledFragment{normal("  "), bold(" \tcd"), normal(" e")})
	if diff := cmp.Diff([]StyledFragment{bold("cd"), normal(" e")}, got); diff != "" {
		t.Fatalf("trimmed leftover mismatch (-want +got):\n%s", diff)
	}
	got = trimLeading([]StyledFragment{normal(" "), normal("\n"), normal(" x")})
	if diff := cmp.Diff([]StyledFragment{normal("\n"), normal(" x")}, got); diff != "" {
		t.Fatalf("newline must survive (-want +got):\n%s", diff)
	}
}
