package layout

import (
	"fmt"
	"image/color"
	"slices"
	"strings"

	"github.com/ByLCY/quire/dsl"
	"github.com/ByLCY/quire/fonts"
	"github.com/ByLCY/quire/inline"
)

const defaultFontName = "Body"

var defaultTextColor = Color{R: 30, G: 30, B: 30}

func collectResources(doc *dsl.Document) (ResourceSet, error) {
	res := ResourceSet{
		Fonts:  map[string]FontResource{},
		Colors: map[string]Color{},
		Styles: map[string]Style{},
	}
	rawStyles := map[string]Style{}

	for _, section := range doc.Sections {
		if section.Resources == nil {
			continue
		}
		for _, cmd := range section.Resources.Block.Commands() {
			switch cmd.Name {
			case "font":
				font := parseFontResource(cmd)
				if font.Name != "" {
					res.Fonts[font.Name] = font
				}
			case "color":
				name, value := parseColorResource(cmd)
				if name == "" || value == "" {
					continue
				}
				c, err := parseColor(value)
				if err != nil {
					return res, fmt.Errorf("颜色资源 %s: %w", name, err)
				}
				res.Colors[name] = c
			case "style":
				style := parseStyleResource(cmd)
				if style.Name != "" {
					rawStyles[style.Name] = style
				}
			case "image":
				return res, fmt.Errorf("%s: 不支持图片资源", cmd.Pos)
			}
		}
	}

	if _, ok := res.Fonts[defaultFontName]; !ok {
		res.Fonts[defaultFontName] = builtinFont(defaultFontName, fonts.Default)
	}

	resolvedStyles, err := resolveStyles(rawStyles)
	if err != nil {
		return res, err
	}
	res.Styles = resolvedStyles
	return res, nil
}

func builtinFont(name, family string) FontResource {
	return FontResource{
		Name:      name,
		Src:       fonts.Prefix + family,
		Family:    family,
		IsBuiltin: true,
	}
}

// Font 按名称查找字体资源。未声明但与内置字体族同名（如 "go-mono"）时返回该内置字体，
// 其余未知名称回退到 Body。
func (rs ResourceSet) Font(name string) (FontResource, error) {
	if font, ok := rs.Fonts[name]; ok {
		return font, nil
	}
	if family, _ := fonts.Split(name); name != "" && slices.Contains(fonts.Families(), family) {
		return builtinFont(name, family), nil
	}
	if font, ok := rs.Fonts[defaultFontName]; ok {
		return font, nil
	}
	for _, font := range rs.Fonts {
		return font, nil
	}
	return FontResource{}, fmt.Errorf("字体 %s 未定义，且没有可用的默认字体", name)
}

func collectMeta(doc *dsl.Document) DocumentMeta {
	meta := DocumentMeta{Creator: "Quire"}
	for _, section := range doc.Sections {
		if section.Meta == nil || section.Meta.Block == nil {
			continue
		}
		for _, stmt := range section.Meta.Block.Statements {
			a := stmt.Assignment
			if a == nil {
				continue
			}
			switch strings.ToLower(a.Key) {
			case "title":
				meta.Title = a.Value.Text()
			case "author":
				meta.Author = a.Value.Text()
			case "subject":
				meta.Subject = a.Value.Text()
			case "creator":
				meta.Creator = a.Value.Text()
			case "keywords":
				meta.Keywords = a.Value.Strings()
			}
		}
	}
	return meta
}

func parseFontResource(cmd *dsl.Command) FontResource {
	if len(cmd.Args) == 0 {
		return FontResource{}
	}
	name := cmd.Args[0].Value
	font := FontResource{Name: name, Family: name}
	if cmd.Block == nil {
		return font
	}
	for _, stmt := range cmd.Block.Statements {
		a := stmt.Assignment
		if a == nil || a.Value.String == nil {
			continue
		}
		v := string(*a.Value.String)
		switch a.Key {
		case "src":
			font.Src = v
			if family, _ := fonts.Split(v); strings.HasPrefix(v, fonts.Prefix) {
				font.IsBuiltin = true
				font.Family = family
			}
		case "bold":
			font.Bold = v
		case "italic":
			font.Italic = v
		case "bold-italic", "boldItalic":
			font.BoldItalic = v
		case "style":
			font.Style = v
		case "fallback":
			font.Fallback = v
		}
	}
	return font
}

func parseStyleResource(cmd *dsl.Command) Style {
	if len(cmd.Args) == 0 {
		return Style{}
	}
	style := Style{Name: cmd.Args[0].Value, Props: map[string]string{}}
	if len(cmd.Args) >= 3 && strings.EqualFold(cmd.Args[1].Value, "extends") {
		style.Extends = cmd.Args[2].Value
	}
	if cmd.Block == nil {
		return style
	}
	for _, stmt := range cmd.Block.Statements {
		if stmt.Assignment == nil {
			continue
		}
		if val := stmt.Assignment.Value.Text(); val != "" {
			style.Props[stmt.Assignment.Key] = val
		}
	}
	return style
}

// resolveStyles flattens extends chains depth first and rejects cycles.
func resolveStyles(styles map[string]Style) (map[string]Style, error) {
	resolved := map[string]Style{}
	visiting := map[string]bool{}

	var visit func(name string) (Style, error)
	visit = func(name string) (Style, error) {
		if style, ok := resolved[name]; ok {
			return style, nil
		}
		style, ok := styles[name]
		if !ok {
			return Style{}, fmt.Errorf("style %s 未定义", name)
		}
		if visiting[name] {
			return Style{}, fmt.Errorf("style 继承存在循环：%s", name)
		}
		visiting[name] = true
		defer delete(visiting, name)

		props := map[string]string{}
		if style.Extends != "" {
			parent, err := visit(style.Extends)
			if err != nil {
				return Style{}, err
			}
			for k, v := range parent.Props {
				props[k] = v
			}
		}
		for k, v := range style.Props {
			props[k] = v
		}
		style.Props = props
		resolved[name] = style
		return style, nil
	}

	for name := range styles {
		if _, err := visit(name); err != nil {
			return nil, err
		}
	}
	return resolved, nil
}

// mergeStyleAttributes layers inline attributes over the named style.
func mergeStyleAttributes(style string, attrs map[string]string, styles map[string]Style) map[string]string {
	out := make(map[string]string, len(attrs))
	if s, ok := styles[style]; ok {
		for k, v := range s.Props {
			out[k] = v
		}
	}
	for k, v := range attrs {
		out[k] = v
	}
	return out
}

func parseColorResource(cmd *dsl.Command) (string, string) {
	if len(cmd.Args) == 0 {
		return "", ""
	}
	name := cmd.Args[0].Value
	if len(cmd.Args) == 1 {
		return name, ""
	}
	return name, cmd.Args[len(cmd.Args)-1].Value
}

func resolveColor(value string, res ResourceSet) Color {
	if value == "" {
		return defaultTextColor
	}
	if c, ok := res.Colors[value]; ok {
		return c
	}
	if c, err := parseColor(value); err == nil {
		return c
	}
	return defaultTextColor
}

func parseColor(value string) (Color, error) {
	hex := strings.TrimPrefix(value, "#")
	if len(hex) == 8 {
		hex = hex[:6]
	}
	c, err := inline.ParseHexColor(hex)
	if err != nil {
		return Color{}, fmt.Errorf("颜色值 %s 无法解析", value)
	}
	return fromRGBA(c), nil
}

func fromRGBA(c color.RGBA) Color {
	return Color{R: int(c.R), G: int(c.G), B: int(c.B)}
}

func (c Color) rgba() color.RGBA {
	return color.RGBA{R: uint8(c.R), G: uint8(c.G), B: uint8(c.B), A: 0xff}
}

var pagePresets = map[string][2]float64{
	"A3":     {297, 420},
	"A4":     {210, 297},
	"A5":     {148, 210},
	"LETTER": {215.9, 279.4},
	"LEGAL":  {215.9, 355.6},
}

func resolvePageSize(spec dsl.PageSpec) (float64, float64, error) {
	base, ok := pagePresets[strings.ToUpper(spec.Size)]
	if !ok {
		return 0, 0, fmt.Errorf("暂不支持的纸张尺寸：%s", spec.Size)
	}
	width, height := base[0], base[1]
	for _, token := range spec.Params {
		if token.Value == "landscape" {
			width, height = height, width
		}
	}
	return width, height, nil
}

// resolveMargin reads "margin v1 [v2 [v3 [v4]]]" with CSS-like semantics,
// except that three values leave the left margin at 0. Values beyond four are
// ignored. The default is 20mm on every side.
func resolveMargin(params []*dsl.Lexeme) Margin {
	margin := Margin{Top: 20, Right: 20, Bottom: 20, Left: 20}
	for i, token := range params {
		if token.Value != "margin" {
			continue
		}
		var vals []float64
		for _, p := range params[i+1:] {
			if len(vals) == 4 || !isLength(p.Value) {
				break
			}
			vals = append(vals, parseLength(p.Value))
		}
		switch len(vals) {
		case 1:
			v := vals[0]
			margin = Margin{Top: v, Right: v, Bottom: v, Left: v}
		case 2:
			margin = Margin{Top: vals[0], Right: vals[1], Bottom: vals[0], Left: vals[1]}
		case 3:
			margin = Margin{Top: vals[0], Right: vals[1], Bottom: vals[2]}
		case 4:
			margin = Margin{Top: vals[0], Right: vals[1], Bottom: vals[2], Left: vals[3]}
		}
	}
	return margin
}
