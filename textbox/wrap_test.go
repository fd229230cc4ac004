package textbox

import (
	"errors"
	"testing"
	"unicode/utf8"
)

func wrapText(t *testing.T, text string, width float64, opts WrapOptions) TextLine {
	t.Helper()
	line, err := WrapText(text, width, &fixedProvider{}, body, opts)
	if err != nil {
		t.Fatalf("WrapText(%q, %v): %v", text, width, err)
	}
	return line
}

func TestWrapTextGreedyWords(t *testing.T) {
	text := "Hello Quire World"
	line := wrapText(t, text, 55, WrapOptions{})
	if line.Printed != "Hello Quire" {
		t.Fatalf("printed = %q, want %q", line.Printed, "Hello Quire")
	}
	if line.Width != 55 || line.SpaceCount != 1 {
		t.Fatalf("width %v spaces %d, want 55 and 1", line.Width, line.SpaceCount)
	}
	if rest := text[line.Consumed:]; trimLeftSpace(rest) != "World" {
		t.Fatalf("leftover = %q, want World", rest)
	}
}

func TestWrapTextStripsConsumedTrailingSpace(t *testing.T) {
	text := "Hello Quire World"
	line := wrapText(t, text, 62, WrapOptions{})
	if line.Printed != "Hello Quire" || line.Width != 55 {
		t.Fatalf("printed %q width %v", line.Printed, line.Width)
	}
	if line.Consumed != len("Hello Quire ") {
		t.Fatalf("consumed = %d, want the pre-strip length %d", line.Consumed, len("Hello Quire "))
	}
}

func TestWrapTextCharacterFallback(t *testing.T) {
	text := "Supercalifragilisticexpialidocious"
	line := wrapText(t, text, 50, WrapOptions{})
	if line.Printed != "Supercalif" || line.Consumed != 10 {
		t.Fatalf("printed %q consumed %d, want first 10 characters", line.Printed, line.Consumed)
	}
	if text[line.Consumed:] != "ragilisticexpialidocious" {
		t.Fatalf("leftover = %q", text[line.Consumed:])
	}
}

func TestWrapTextCannotFitBoundary(t *testing.T) {
	_, err := WrapText("A", 0, &fixedProvider{}, body, WrapOptions{})
	if !errors.Is(err, ErrCannotFit) {
		t.Fatalf(`"A" at width 0: got %v, want ErrCannotFit`, err)
	}
	line := wrapText(t, "", 0, WrapOptions{})
	if line != (TextLine{}) {
		t.Fatalf(`"" at width 0: got %+v, want empty`, line)
	}
	line = wrapText(t, "   ", 0, WrapOptions{})
	if line.Printed != "" || line.Consumed != 3 {
		t.Fatalf(`blank at width 0: got %+v`, line)
	}
}

func TestWrapTextDisableWrapByChar(t *testing.T) {
	opts := WrapOptions{DisableWrapByChar: true}
	_, err := WrapText("Supercalifragilisticexpialidocious", 50, &fixedProvider{}, body, opts)
	if !errors.Is(err, ErrCannotFit) {
		t.Fatalf("got %v, want ErrCannotFit", err)
	}
	line := wrapText(t, "a Supercalifragilisticexpialidocious", 50, opts)
	if line.Printed != "a" {
		t.Fatalf("printed = %q, want %q", line.Printed, "a")
	}
}

func TestWrapTextWidthMonotonic(t *testing.T) {
	text := "The quick brown fox jumps over the lazy dog"
	prev := utf8.RuneCountInString(text)
	for w := 230.0; w >= 5; w -= 2.5 {
		line := wrapText(t, text, w, WrapOptions{})
		n := utf8.RuneCountInString(line.Printed)
		if n > prev {
			t.Fatalf("width %v printed %d characters, more than %d at a larger width", w, n, prev)
		}
		if line.Width > w {
			t.Fatalf("width %v: line %q is %v wide", w, line.Printed, line.Width)
		}
		prev = n
	}
}

func TestWrapLineNeverExceedsWidthAcrossStyles(t *testing.T) {
	input := []StyledFragment{normal("mixed "), bold("bold and"), normal(" plain words, "), bold("again")}
	for w := 10.0; w <= 200; w += 3.5 {
		a := newArranger(input...)
		for !a.Finished() {
			line, err := WrapLine(a, w, WrapOptions{})
			if err != nil {
				t.Fatalf("width %v: %v", w, err)
			}
			if line.Width > w {
				t.Fatalf("width %v: line %q is %v wide", w, line.Text(), line.Width)
			}
		}
	}
}

func TestWrapTextSoftHyphen(t *testing.T) {
	text := "extra\u00adordinary"
	line := wrapText(t, text, 35, WrapOptions{})
	if line.Printed != "extra-" || line.Width != 30 {
		t.Fatalf("printed %q width %v, want extra- 30", line.Printed, line.Width)
	}
	line = wrapText(t, text, 100, WrapOptions{})
	if line.Printed != "extraordinary" || line.Width != 65 {
		t.Fatalf("printed %q width %v, want extraordinary 65", line.Printed, line.Width)
	}
}

func TestWrapTextZeroWidthSpace(t *testing.T) {
	line := wrapText(t, "alpha\u200bbeta", 30, WrapOptions{})
	if line.Printed != "alpha" || line.Width != 25 {
		t.Fatalf("printed %q width %v", line.Printed, line.Width)
	}
}

func TestWrapTextStopsAtNewline(t *testing.T) {
	line := wrapText(t, "one\ntwo", 100, WrapOptions{})
	if line.Printed != "one" || line.Consumed != 4 {
		t.Fatalf("printed %q consumed %d, want one/4", line.Printed, line.Consumed)
	}
}

func TestWrapTextByteFaces(t *testing.T) {
	st := Style{Font: "bytes", Size: 10}
	line, err := WrapText("éé", 10, &fixedProvider{}, st, WrapOptions{})
	if err != nil {
		t.Fatalf("WrapText: %v", err)
	}
	if line.Printed != "é" || line.Consumed != 2 {
		t.Fatalf("printed %q consumed %d, want é/2", line.Printed, line.Consumed)
	}
}

func TestWrapTextCharacterSpacing(t *testing.T) {
	st := body
	st.CharSpacing = 1
	line, err := WrapText("abcd efgh", 30, &fixedProvider{}, st, WrapOptions{})
	if err != nil {
		t.Fatalf("WrapText: %v", err)
	}
	if line.Printed != "abcd" || line.Width != 24 {
		t.Fatalf("printed %q width %v, want abcd 24", line.Printed, line.Width)
	}
}
