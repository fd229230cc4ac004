package layout

import (
	"fmt"
	"strconv"
	"strings"
)

// Unit is the unit a length was written in.
type Unit int

const (
	UnitNone Unit = iota // unit-less numbers such as factors
	UnitMM
	UnitCM
	UnitIN
	UnitPT
)

// Conversion constants between pt and mm.
const (
	PtToMm = 0.352777
	MmToPt = 1.0 / PtToMm
)

var unitSuffixes = []struct {
	suffix string
	unit   Unit
	mm     float64
}{
	{"mm", UnitMM, 1},
	{"cm", UnitCM, 10},
	{"in", UnitIN, 25.4},
	{"pt", UnitPT, PtToMm},
}

func (u Unit) String() string {
	for _, s := range unitSuffixes {
		if s.unit == u {
			return s.suffix
		}
	}
	return ""
}

func (u Unit) mm() float64 {
	for _, s := range unitSuffixes {
		if s.unit == u {
			return s.mm
		}
	}
	return 1
}

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

func (l Length) IsZero() bool { return l.Value == 0 }

// To converts the length to target. A unit-less length is taken to be in
// the target unit already.
func (l Length) To(target Unit) float64 {
	if l.Unit == UnitNone || target == UnitNone || l.Unit == target {
		return l.Value
	}
	return l.Value * l.Unit.mm() / target.mm()
}

func (l Length) ToMM() float64 { return l.To(UnitMM) }
func (l Length) ToPT() float64 { return l.To(UnitPT) }

// ParseLength parses "12pt", "1.5cm" or a bare number.
func ParseLength(value string) (Length, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return Length{}, fmt.Errorf("长度为空")
	}
	l := Length{Unit: UnitNone}
	for _, s := range unitSuffixes {
		if strings.HasSuffix(v, s.suffix) {
			l.Unit = s.unit
			v = strings.TrimSpace(strings.TrimSuffix(v, s.suffix))
			break
		}
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return Length{}, fmt.Errorf("长度 %q 无法解析: %w", value, err)
	}
	l.Value = f
	return l, nil
}

// LineHeightKind distinguishes factor-based vs absolute line-height specification.
type LineHeightKind int

const (
	LineHeightFactor LineHeightKind = iota
	LineHeightAbsolute
)

// LineHeightSpec keeps what the author wrote: a factor such as 1.2x or an
// absolute length such as 18pt.
type LineHeightSpec struct {
	Kind   LineHeightKind `json:"kind"`
	Factor float64        `json:"factor,omitempty"`
	Len    Length         `json:"len,omitempty"`
}

// ParseLineHeight parses a line-height attribute. Bare numbers are factors.
func ParseLineHeight(value string) (LineHeightSpec, error) {
	v := strings.TrimSpace(value)
	if f, err := strconv.ParseFloat(strings.TrimSuffix(v, "x"), 64); err == nil {
		if f <= 0 {
			return LineHeightSpec{}, fmt.Errorf("行高 %q 必须为正数", value)
		}
		return LineHeightSpec{Kind: LineHeightFactor, Factor: f}, nil
	}
	l, err := ParseLength(v)
	if err != nil {
		return LineHeightSpec{}, err
	}
	if l.Value <= 0 {
		return LineHeightSpec{}, fmt.Errorf("行高 %q 必须为正数", value)
	}
	if l.Unit == UnitNone {
		l.Unit = UnitMM
	}
	return LineHeightSpec{Kind: LineHeightAbsolute, Len: l}, nil
}

// Resolve computes the line height in target units for a font size.
func (s LineHeightSpec) Resolve(fontSize Length, target Unit) float64 {
	if s.Kind == LineHeightAbsolute {
		return s.Len.To(target)
	}
	return fontSize.To(target) * s.Factor
}

// Raw returns the JSON form used by debug output.
func (s LineHeightSpec) Raw() RawLineHeightJSON {
	if s.Kind == LineHeightAbsolute {
		return RawLineHeightJSON{Kind: "absolute", Value: s.Len.Value, Unit: s.Len.Unit.String()}
	}
	return RawLineHeightJSON{Kind: "factor", Factor: s.Factor}
}

// parseLength returns a length in mm; bare numbers are mm. Invalid input is 0.
func parseLength(value string) float64 {
	l, err := ParseLength(value)
	if err != nil {
		return 0
	}
	if l.Unit == UnitNone {
		return l.Value
	}
	return l.ToMM()
}

// parseFontSize returns a font size in pt; bare numbers are pt.
func parseFontSize(value string) (Length, bool) {
	l, err := ParseLength(value)
	if err != nil || l.Value <= 0 {
		return Length{}, false
	}
	if l.Unit == UnitNone {
		l.Unit = UnitPT
	}
	return l, true
}

// parseDimension accepts a length or a percentage of reference.
func parseDimension(value string, reference float64) float64 {
	value = strings.TrimSpace(value)
	if num, ok := strings.CutSuffix(value, "%"); ok {
		if f, err := strconv.ParseFloat(num, 64); err == nil {
			return reference * f / 100
		}
		return 0
	}
	return parseLength(value)
}

// isLength reports whether value parses as a length.
func isLength(value string) bool {
	_, err := ParseLength(value)
	return err == nil
}
