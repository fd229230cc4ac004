// Package inline parses the inline text markup of quire documents into styled
// fragments.
//
// Supported tags are <b>, <strong>, <i>, <em>, <u>, <strikethrough>, <s>,
// <del>, <sub>, <sup>, <font name=".." size=".." character_spacing="..">,
// <color rgb="#rrggbb">, <link href=".." anchor="..">, <a href=".."> and
// <br>. Tags nest. Character references such as &amp; and &#8203; are decoded.
package inline

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"golang.org/x/net/html"

	"github.com/ByLCY/quire/textbox"
)

var (
	markupLexer = lexer.MustStateful(lexer.Rules{
		"Root": {
			{Name: "Entity", Pattern: `&(?:#[0-9]+|#[xX][0-9A-Fa-f]+|[A-Za-z][A-Za-z0-9]*);`},
			{Name: "Amp", Pattern: `&`},
			{Name: "Close", Pattern: `</`, Action: lexer.Push("Tag")},
			{Name: "Open", Pattern: `<`, Action: lexer.Push("Tag")},
			{Name: "Text", Pattern: `[^<&]+`},
		},
		"Tag": {
			{Name: "Whitespace", Pattern: `\s+`},
			{Name: "SelfClose", Pattern: `/>`, Action: lexer.Pop()},
			{Name: "End", Pattern: `>`, Action: lexer.Pop()},
			{Name: "Equals", Pattern: `=`},
			{Name: "String", Pattern: `"[^"]*"|'[^']*'`},
			{Name: "Number", Pattern: `[-+]?(?:\d+\.?\d*|\.\d+)`},
			{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_:-]*`},
		},
	})

	markupParser = participle.MustBuild[markup](
		participle.Lexer(markupLexer),
		participle.Elide("Whitespace"),
	)
)

type markup struct {
	Items []*item `parser:"@@*"`
}

type item struct {
	Pos    lexer.Position
	Close  *closeTag `parser:"  @@"`
	Open   *openTag  `parser:"| @@"`
	Entity *string   `parser:"| @Entity"`
	Text   *string   `parser:"| @(Text | Amp)"`
}

type openTag struct {
	Name      string       `parser:"Open @Ident"`
	Attrs     []*attribute `parser:"@@*"`
	SelfClose bool         `parser:"( @SelfClose | End )"`
}

type closeTag struct {
	Name string `parser:"Close @Ident End"`
}

type attribute struct {
	Key   string    `parser:"@Ident"`
	Value attrValue `parser:"( Equals @(String | Number | Ident) )?"`
}

// attrValue strips the quotes of attribute values on capture.
type attrValue string

func (v *attrValue) Capture(values []string) error {
	s := strings.Join(values, "")
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		s = s[1 : len(s)-1]
	}
	*v = attrValue(html.UnescapeString(s))
	return nil
}

// Parse converts markup into fragments. Fragment styles only carry what the
// tags set; unset fields inherit from the box that lays them out.
func Parse(markup string) ([]textbox.StyledFragment, error) {
	doc, err := markupParser.ParseString("", markup)
	if err != nil {
		return nil, fmt.Errorf("inline: %w", err)
	}
	b := &builder{}
	for _, it := range doc.Items {
		if err := b.item(it); err != nil {
			return nil, err
		}
	}
	if n := len(b.stack); n > 0 {
		top := b.stack[n-1]
		return nil, fmt.Errorf("inline: %s: <%s> is never closed", top.pos, top.name)
	}
	return b.out, nil
}

// Escape makes text safe to embed in markup.
func Escape(text string) string {
	return html.EscapeString(text)
}

// Plain returns the text of markup with all tags removed.
func Plain(markup string) (string, error) {
	frags, err := Parse(markup)
	if err != nil {
		return "", err
	}
	return textbox.JoinText(frags), nil
}

type frame struct {
	name  string
	pos   lexer.Position
	style textbox.Style
}

type builder struct {
	stack []frame
	out   []textbox.StyledFragment
}

func (b *builder) style() textbox.Style {
	if n := len(b.stack); n > 0 {
		return b.stack[n-1].style
	}
	return textbox.Style{}
}

func (b *builder) emit(text string) {
	if text == "" {
		return
	}
	st := b.style()
	if n := len(b.out); n > 0 && b.out[n-1].Style == st {
		b.out[n-1].Text += text
		return
	}
	b.out = append(b.out, textbox.StyledFragment{Text: text, Style: st})
}

func (b *builder) item(it *item) error {
	switch {
	case it.Text != nil:
		b.emit(*it.Text)
	case it.Entity != nil:
		b.emit(html.UnescapeString(*it.Entity))
	case it.Close != nil:
		name := strings.ToLower(it.Close.Name)
		n := len(b.stack)
		if n == 0 {
			return fmt.Errorf("inline: %s: unexpected </%s>", it.Pos, name)
		}
		if top := b.stack[n-1]; top.name != canonical(name) {
			return fmt.Errorf("inline: %s: </%s> closes <%s> opened at %s", it.Pos, name, top.name, top.pos)
		}
		b.stack = b.stack[:n-1]
	case it.Open != nil:
		name := canonical(strings.ToLower(it.Open.Name))
		if name == "br" {
			b.emit("\n")
			return nil
		}
		st, err := apply(b.style(), name, it.Open.Attrs)
		if err != nil {
			return fmt.Errorf("inline: %s: %w", it.Pos, err)
		}
		if it.Open.SelfClose {
			return nil
		}
		b.stack = append(b.stack, frame{name: name, pos: it.Pos, style: st})
	}
	return nil
}

func canonical(name string) string {
	switch name {
	case "strong":
		return "b"
	case "em":
		return "i"
	case "s", "del":
		return "strikethrough"
	case "a":
		return "link"
	}
	return name
}

// apply returns st with the effect of one opening tag.
func apply(st textbox.Style, name string, attrs []*attribute) (textbox.Style, error) {
	switch name {
	case "b":
		st.Styles |= textbox.Bold
	case "i":
		st.Styles |= textbox.Italic
	case "u":
		st.Styles |= textbox.Underline
	case "strikethrough":
		st.Styles |= textbox.Strikethrough
	case "sub":
		st.Styles = st.Styles&^textbox.Superscript | textbox.Subscript
	case "sup":
		st.Styles = st.Styles&^textbox.Subscript | textbox.Superscript
	case "font":
		for _, a := range attrs {
			v := string(a.Value)
			switch strings.ToLower(a.Key) {
			case "name":
				st.Font = v
			case "size":
				size, err := strconv.ParseFloat(strings.TrimSuffix(v, "pt"), 64)
				if err != nil || size <= 0 {
					return st, fmt.Errorf("invalid font size %q", v)
				}
				st.Size = size
			case "character_spacing", "character-spacing":
				cs, err := strconv.ParseFloat(v, 64)
				if err != nil {
					return st, fmt.Errorf("invalid character spacing %q", v)
				}
				st.CharSpacing = cs
			default:
				return st, fmt.Errorf("unknown <font> attribute %q", a.Key)
			}
		}
	case "color":
		for _, a := range attrs {
			if !strings.EqualFold(a.Key, "rgb") {
				return st, fmt.Errorf("unknown <color> attribute %q", a.Key)
			}
			c, err := ParseHexColor(string(a.Value))
			if err != nil {
				return st, err
			}
			st.Color = c
		}
	case "link":
		for _, a := range attrs {
			switch strings.ToLower(a.Key) {
			case "href":
				st.Link = string(a.Value)
			case "anchor":
				st.Anchor = string(a.Value)
			default:
				return st, fmt.Errorf("unknown <link> attribute %q", a.Key)
			}
		}
	default:
		return st, fmt.Errorf("unknown tag <%s>", name)
	}
	return st, nil
}

// ParseHexColor parses "#rgb", "#rrggbb" or the same without the hash.
func ParseHexColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}
