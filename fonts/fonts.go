// Package fonts exposes the font families compiled into quire.
package fonts

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-fonts/latin-modern/lmroman10bold"
	"github.com/go-fonts/latin-modern/lmroman10bolditalic"
	"github.com/go-fonts/latin-modern/lmroman10italic"
	"github.com/go-fonts/latin-modern/lmroman10regular"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
)

// Variant names used in embed paths and font resources.
const (
	Regular    = "regular"
	Bold       = "bold"
	Italic     = "italic"
	BoldItalic = "bold-italic"
)

// Prefix marks a font source as built in.
const Prefix = "embed:"

// Default is the family used when a document declares no fonts.
const Default = "go"

var families = map[string]map[string][]byte{
	"go": {
		Regular:    goregular.TTF,
		Bold:       gobold.TTF,
		Italic:     goitalic.TTF,
		BoldItalic: gobolditalic.TTF,
	},
	"go-mono": {
		Regular:    gomono.TTF,
		Bold:       gomonobold.TTF,
		Italic:     gomonoitalic.TTF,
		BoldItalic: gomonobolditalic.TTF,
	},
	"latin-modern": {
		Regular:    lmroman10regular.TTF,
		Bold:       lmroman10bold.TTF,
		Italic:     lmroman10italic.TTF,
		BoldItalic: lmroman10bolditalic.TTF,
	},
}

// Load 返回内置字体的字节数据。path 形如 "embed:go/bold" 或 "latin-modern"，
// 省略变体时返回 regular。
func Load(path string) ([]byte, error) {
	family, variant := Split(path)
	vars, ok := families[family]
	if !ok {
		return nil, fmt.Errorf("读取内置字体 %s 失败: 未知字体族 %q", path, family)
	}
	data, ok := vars[variant]
	if !ok {
		return nil, fmt.Errorf("读取内置字体 %s 失败: 字体族 %q 没有变体 %q", path, family, variant)
	}
	return data, nil
}

// Split parses a built-in path into family and variant.
func Split(path string) (family, variant string) {
	path = strings.TrimPrefix(path, Prefix)
	family, variant, _ = strings.Cut(path, "/")
	family = strings.ToLower(strings.TrimSpace(family))
	variant = strings.ToLower(strings.TrimSpace(variant))
	if variant == "" {
		variant = Regular
	}
	return family, variant
}

// Variants lists the variants available for a built-in family.
func Variants(family string) []string {
	family, _ = Split(family)
	vars := families[family]
	out := make([]string, 0, len(vars))
	for v := range vars {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Families lists the built-in family names.
func Families() []string {
	out := make([]string, 0, len(families))
	for name := range families {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
