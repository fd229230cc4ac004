package textbox

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/width"
)

// ScanMode selects how a line of text is split into tokens.
type ScanMode int

const (
	// ScanWords splits at white space and after hyphens.
	ScanWords ScanMode = iota
	// ScanChars makes every character its own token, for scripts without
	// inter-word spaces.
	ScanChars
	// ScanAuto behaves like ScanWords but isolates East Asian wide and
	// fullwidth characters so a line may break between any two of them.
	ScanAuto
)

// TokenKind classifies a token.
type TokenKind int

const (
	Word TokenKind = iota
	Space
	Newline
)

func (k TokenKind) String() string {
	switch k {
	case Space:
		return "space"
	case Newline:
		return "newline"
	default:
		return "word"
	}
}

// Token is a contiguous run of word or white space characters, or a single
// newline.
type Token struct {
	Text string
	Kind TokenKind
}

const (
	whiteSpaceChars = " \t\u200b"
	breakChars      = whiteSpaceChars + "\u00ad-"
)

// A word ending in a soft hyphen or in hyphens is kept as one block so a
// hyphenated compound breaks after its hyphen, never before it.
var wordPattern = regexp.MustCompile(strings.Join([]string{
	`[^ \t\x{200B}\x{00AD}\-\n]+\x{00AD}`,
	`[^ \t\x{200B}\x{00AD}\-\n]+-+`,
	`[^ \t\x{200B}\x{00AD}\-\n]+`,
	`[ \t\x{200B}]+`,
	`-+[^ \t\x{200B}\x{00AD}\-\n]*`,
	`\x{00AD}`,
	`\n`,
}, "|"))

// Scan splits line into tokens. Concatenating the token texts yields line.
func Scan(line string, mode ScanMode) []Token {
	if line == "" {
		return nil
	}
	if mode == ScanChars {
		return scanChars(line)
	}
	var tokens []Token
	for _, s := range wordPattern.FindAllString(line, -1) {
		tok := Token{Text: s, Kind: kindOf(s)}
		if mode == ScanAuto && tok.Kind == Word {
			tokens = appendSplitWide(tokens, s)
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

func scanChars(line string) []Token {
	tokens := make([]Token, 0, utf8.RuneCountInString(line))
	for i := 0; i < len(line); {
		_, n := utf8.DecodeRuneInString(line[i:])
		s := line[i : i+n]
		tokens = append(tokens, Token{Text: s, Kind: kindOf(s)})
		i += n
	}
	return tokens
}

// appendSplitWide emits every wide rune of word as its own token and keeps
// the narrow runs between them intact.
func appendSplitWide(tokens []Token, word string) []Token {
	start := 0
	for i := 0; i < len(word); {
		r, n := utf8.DecodeRuneInString(word[i:])
		if isWide(r) {
			if start < i {
				tokens = append(tokens, Token{Text: word[start:i], Kind: Word})
			}
			tokens = append(tokens, Token{Text: word[i : i+n], Kind: Word})
			start = i + n
		}
		i += n
	}
	if start < len(word) {
		tokens = append(tokens, Token{Text: word[start:], Kind: Word})
	}
	return tokens
}

func isWide(r rune) bool {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return true
	}
	return false
}

func kindOf(s string) TokenKind {
	if s == "\n" {
		return Newline
	}
	if strings.Trim(s, whiteSpaceChars) == "" {
		return Space
	}
	return Word
}

// asciiSpace is the white space removed by left and right strips; it does
// not include the no-break space.
const asciiSpace = " \t\n\v\f\r\x00"

// isBlank reports whether s holds only white space, as a line left-strip
// would see it.
func isBlank(s string) bool {
	return strings.Trim(s, asciiSpace) == ""
}

// hasWordDivision reports whether s contains a place where a line may break.
func hasWordDivision(s string) bool {
	return strings.ContainsAny(s, " \t\n\v\f\r\u200b\u00ad-")
}

func endsWithBreak(s string) bool {
	r, _ := utf8.DecodeLastRuneInString(s)
	return s != "" && strings.ContainsRune(breakChars, r)
}

func beginsWithBreak(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return s != "" && strings.ContainsRune(breakChars, r)
}

// lastWord returns the trailing run of s that contains no break character.
func lastWord(s string) string {
	i := strings.LastIndexAny(s, breakChars)
	if i < 0 {
		return s
	}
	_, n := utf8.DecodeRuneInString(s[i:])
	return s[i+n:]
}

func trimLeftSpace(s string) string { return strings.TrimLeft(s, asciiSpace) }
