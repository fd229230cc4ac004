package textbox

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func tokenTexts(tokens []Token) []string {
	out := make([]string, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Text
	}
	return out
}

func TestScanWords(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"Hello Quire World", []string{"Hello", " ", "Quire", " ", "World"}},
		{"high-speed rail", []string{"high-", "speed", " ", "rail"}},
		{"well--known", []string{"well--", "known"}},
		{"hy\u00adphen", []string{"hy\u00ad", "phen"}},
		{"-dash", []string{"-dash"}},
		{"tab\tsep", []string{"tab", "\t", "sep"}},
		{"zero\u200bwidth", []string{"zero", "\u200b", "width"}},
		{"one\ntwo", []string{"one", "\n", "two"}},
		{"  lead", []string{"  ", "lead"}},
	}
	for _, tc := range cases {
		got := tokenTexts(Scan(tc.in, ScanWords))
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Errorf("Scan(%q) mismatch (-want +got):\n%s", tc.in, diff)
		}
	}
}

func TestScanKinds(t *testing.T) {
	got := Scan("a b\n", ScanWords)
	want := []Token{{"a", Word}, {" ", Space}, {"b", Word}, {"\n", Newline}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("kinds mismatch (-want +got):\n%s", diff)
	}
}

func TestScanChars(t *testing.T) {
	got := tokenTexts(Scan("ab é", ScanChars))
	want := []string{"a", "b", " ", "é"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestScanAutoIsolatesWideRunes(t *testing.T) {
	got := tokenTexts(Scan("ok中文 go", ScanAuto))
	want := []string{"ok", "中", "文", " ", "go"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestScanEmpty(t *testing.T) {
	for _, mode := range []ScanMode{ScanWords, ScanChars, ScanAuto} {
		if got := Scan("", mode); len(got) != 0 {
			t.Fatalf("mode %d: expected no tokens, got %v", mode, got)
		}
	}
}

func TestScanRoundTrip(t *testing.T) {
	inputs := []string{
		"Hello Quire World",
		"  leading and trailing  ",
		"multi\n\nline\ttext",
		"soft\u00adhyphen and hard-hyphen --- dashes",
		"mixed 中文 text, with punctuation!",
		"\u200b\u200b",
		"-",
	}
	for _, in := range inputs {
		for _, mode := range []ScanMode{ScanWords, ScanChars, ScanAuto} {
			var b strings.Builder
			for _, tok := range Scan(in, mode) {
				b.WriteString(tok.Text)
			}
			if b.String() != in {
				t.Errorf("mode %d: round trip of %q gave %q", mode, in, b.String())
			}
		}
	}
}

func TestLastWord(t *testing.T) {
	cases := map[string]string{
		"hello world": "world",
		"hello ":      "",
		"single":      "single",
		"co-op":       "op",
		"":            "",
	}
	for in, want := range cases {
		if got := lastWord(in); got != want {
			t.Errorf("lastWord(%q) = %q, want %q", in, got, want)
		}
	}
}
