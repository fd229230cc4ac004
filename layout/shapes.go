package layout

import (
	"strings"

	"github.com/ByLCY/quire/dsl"
)

var black = Color{}

// addShape appends a line, rect or circle command to the matching slice.
// Shapes use page coordinates and do not move the flow cursor.
func addShape(cmd *dsl.Command, res ResourceSet, lines *[]Line, rects *[]Rect, circles *[]Circle) bool {
	_, attrs := cmd.Attrs(false)
	switch strings.ToLower(cmd.Name) {
	case "line":
		if ln, ok := parseLineShape(attrs, res); ok {
			*lines = append(*lines, ln)
		}
	case "rect":
		if rc, ok := parseRectShape(attrs, res); ok {
			*rects = append(*rects, rc)
		}
	case "circle":
		if c, ok := parseCircleShape(attrs, res); ok {
			*circles = append(*circles, c)
		}
	default:
		return false
	}
	return true
}

// parseLineShape supports the full form (x1 y1 x2 y2) and the short form
//
//	line x <len> y <len> length <len> [dir h|v] [color <..>] [width <len>]
func parseLineShape(attrs map[string]string, res ResourceSet) (Line, bool) {
	ln := Line{Color: black, Width: parseLength(attrs["width"])}
	if v := attrs["color"]; v != "" {
		ln.Color = resolveColor(v, res)
	}
	x1, y1 := parseLength(attrs["x1"]), parseLength(attrs["y1"])
	x2, y2 := parseLength(attrs["x2"]), parseLength(attrs["y2"])
	if x1 != 0 || y1 != 0 || x2 != 0 || y2 != 0 {
		ln.X1, ln.Y1, ln.X2, ln.Y2 = x1, y1, x2, y2
		return ln, true
	}
	x, y := parseLength(attrs["x"]), parseLength(attrs["y"])
	length := parseLength(attrs["length"])
	if (x == 0 && y == 0) || length <= 0 {
		return Line{}, false
	}
	ln.X1, ln.Y1 = x, y
	switch strings.ToLower(strings.TrimSpace(attrs["dir"])) {
	case "", "h", "hor", "horizontal":
		ln.X2, ln.Y2 = x+length, y
	case "v", "ver", "vertical":
		ln.X2, ln.Y2 = x, y+length
	default:
		return Line{}, false
	}
	return ln, true
}

func parseRectShape(attrs map[string]string, res ResourceSet) (Rect, bool) {
	rc := Rect{
		X:           parseLength(attrs["x"]),
		Y:           parseLength(attrs["y"]),
		Width:       parseLength(attrs["width"]),
		Height:      parseLength(attrs["height"]),
		StrokeWidth: parseLength(attrs["stroke-width"]),
	}
	if rc.Width <= 0 || rc.Height <= 0 {
		return Rect{}, false
	}
	if v := attrs["stroke"]; v != "" {
		rc.StrokeColor = resolveColor(v, res)
	}
	if v := attrs["fill"]; v != "" {
		c := resolveColor(v, res)
		rc.FillColor = &c
	}
	return rc, true
}

func parseCircleShape(attrs map[string]string, res ResourceSet) (Circle, bool) {
	c := Circle{
		CX:          parseLength(attrs["cx"]),
		CY:          parseLength(attrs["cy"]),
		R:           parseLength(attrs["r"]),
		StrokeWidth: parseLength(attrs["stroke-width"]),
	}
	if c.R <= 0 {
		return Circle{}, false
	}
	if v := attrs["stroke"]; v != "" {
		c.StrokeColor = resolveColor(v, res)
	}
	if v := attrs["fill"]; v != "" {
		col := resolveColor(v, res)
		c.FillColor = &col
	}
	return c, true
}
