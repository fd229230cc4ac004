package dsl

import "strings"

// Attrs reads command arguments as key/value pairs. With allowStyle a leading
// identifier is returned separately as the style name, as in
// "text Body size 12pt".
func (c *Command) Attrs(allowStyle bool) (style string, attrs map[string]string) {
	attrs = map[string]string{}
	if c == nil || len(c.Args) == 0 {
		return "", attrs
	}
	args := c.Args
	if allowStyle && args[0].Type == "Ident" && len(args)%2 == 1 {
		style = args[0].Value
		args = args[1:]
	}
	for i := 0; i+1 < len(args); i += 2 {
		attrs[args[i].Value] = args[i+1].Value
	}
	return style, attrs
}

// Text concatenates the string literals of a block.
func (b *Block) Text() string {
	if b == nil {
		return ""
	}
	var sb strings.Builder
	for _, stmt := range b.Statements {
		if stmt.Text != nil {
			sb.WriteString(string(stmt.Text.Value))
		}
	}
	return sb.String()
}

// Commands returns the commands of a block in order.
func (b *Block) Commands() []*Command {
	if b == nil {
		return nil
	}
	var out []*Command
	for _, stmt := range b.Statements {
		if stmt.Command != nil {
			out = append(out, stmt.Command)
		}
	}
	return out
}

// Pages returns the page sections of the document in order.
func (d *Document) Pages() []*PageSection {
	var out []*PageSection
	for _, s := range d.Sections {
		if s.Page != nil {
			out = append(out, s.Page)
		}
	}
	return out
}

// Text renders a value as a plain string. Expressions are joined token by
// token without separators.
func (v *Value) Text() string {
	switch {
	case v == nil:
		return ""
	case v.String != nil:
		return string(*v.String)
	case v.Number != nil:
		return *v.Number
	case v.Color != nil:
		return *v.Color
	case v.Expr != nil:
		var sb strings.Builder
		for _, part := range v.Expr.Parts {
			sb.WriteString(part.Value)
		}
		return sb.String()
	}
	return ""
}

// Strings flattens an array value, or wraps a scalar, skipping empty items.
func (v *Value) Strings() []string {
	if v == nil {
		return nil
	}
	if v.Array == nil {
		if s := v.Text(); s != "" {
			return []string{s}
		}
		return nil
	}
	out := make([]string, 0, len(v.Array.Values))
	for _, item := range v.Array.Values {
		if s := item.Text(); s != "" {
			out = append(out, s)
		}
	}
	return out
}
