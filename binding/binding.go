// Package binding substitutes ${path} placeholders with values from
// document data.
package binding

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/ByLCY/quire/inline"
)

var exprPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Interpolate 将文本中的 ${path.to.value} 替换为 data 中的值。
// 若 data 为空或路径不存在，则保留原占位符。
func Interpolate(text string, data any) string {
	return replace(text, data, func(s string) string { return s })
}

// InterpolateMarkup 与 Interpolate 相同，但会转义替换值，使数据中的 "<" 与 "&"
// 不会被当作内联标记解析。
func InterpolateMarkup(text string, data any) string {
	return replace(text, data, inline.Escape)
}

// Lookup resolves a dotted path such as items[0].name against data.
func Lookup(data any, path string) (any, bool) {
	path = strings.TrimSpace(path)
	if data == nil || path == "" {
		return nil, false
	}
	return resolvePath(data, path)
}

func replace(text string, data any, escape func(string) string) string {
	if data == nil || !strings.Contains(text, "${") {
		return text
	}
	return exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := exprPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		val, ok := Lookup(data, groups[1])
		if !ok {
			return match
		}
		return escape(format(val))
	})
}

func format(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}

func resolvePath(data any, path string) (any, bool) {
	current := data
	for _, segment := range strings.Split(path, ".") {
		name, indexes := parseSegment(segment)
		if name != "" {
			var ok bool
			if current, ok = descendField(current, name); !ok {
				return nil, false
			}
		}
		for _, idxStr := range indexes {
			idx, err := strconv.Atoi(idxStr)
			if err != nil {
				return nil, false
			}
			var ok bool
			if current, ok = descendIndex(current, idx); !ok {
				return nil, false
			}
		}
	}
	return current, true
}

// parseSegment splits "items[0][1]" into "items" and ["0", "1"].
func parseSegment(segment string) (string, []string) {
	name, rest, found := strings.Cut(segment, "[")
	if !found {
		return strings.TrimSpace(name), nil
	}
	var indexes []string
	rest = "[" + rest
	for strings.HasPrefix(rest, "[") {
		end := strings.IndexByte(rest, ']')
		if end == -1 {
			break
		}
		indexes = append(indexes, strings.TrimSpace(rest[1:end]))
		rest = rest[end+1:]
	}
	return strings.TrimSpace(name), indexes
}

func descendField(current any, key string) (any, bool) {
	if m, ok := current.(map[string]any); ok {
		val, ok := m[key]
		return val, ok
	}
	v := indirect(reflect.ValueOf(current))
	switch v.Kind() {
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		val := v.MapIndex(reflect.ValueOf(key).Convert(v.Type().Key()))
		if !val.IsValid() {
			return nil, false
		}
		return val.Interface(), true
	case reflect.Struct:
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}
			if f.Name == key || jsonName(f) == key {
				return v.Field(i).Interface(), true
			}
		}
	}
	return nil, false
}

func descendIndex(current any, idx int) (any, bool) {
	if s, ok := current.([]any); ok {
		if idx < 0 || idx >= len(s) {
			return nil, false
		}
		return s[idx], true
	}
	v := indirect(reflect.ValueOf(current))
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		return nil, false
	}
	if idx < 0 || idx >= v.Len() {
		return nil, false
	}
	return v.Index(idx).Interface(), true
}

func indirect(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

func jsonName(f reflect.StructField) string {
	tag := f.Tag.Get("json")
	if tag == "" || tag == "-" {
		return ""
	}
	name, _, _ := strings.Cut(tag, ",")
	return name
}
