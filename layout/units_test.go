package layout

import (
	"math"
	"testing"
)

// TestPtMmRoundTrip 验证 pt↔mm 换算的往返精度（允许极小的浮点误差）。
func TestPtMmRoundTrip(t *testing.T) {
	for _, v := range []float64{0, 0.001, 1, 12, 14.4, 72, 1000} {
		pt := Length{Value: v, Unit: UnitPT}
		back := Length{Value: pt.ToMM(), Unit: UnitMM}.ToPT()
		if diff := math.Abs(back - v); diff > 1e-9 {
			t.Fatalf("pt→mm→pt 往返误差过大: in=%gpt back=%g diff=%g", v, back, diff)
		}
	}
}

// TestParseLengthUnits 覆盖常见单位的解析与换算。
func TestParseLengthUnits(t *testing.T) {
	cases := []struct {
		in   string
		unit Unit
		mm   float64
	}{
		{"1in", UnitIN, 25.4},
		{"2.54cm", UnitCM, 25.4},
		{"12pt", UnitPT, 12 * PtToMm},
		{" 10MM ", UnitMM, 10},
		{"-3mm", UnitMM, -3},
	}
	for _, c := range cases {
		l, err := ParseLength(c.in)
		if err != nil {
			t.Fatalf("ParseLength(%q): %v", c.in, err)
		}
		if l.Unit != c.unit {
			t.Fatalf("ParseLength(%q) unit = %s, want %s", c.in, l.Unit, c.unit)
		}
		if got := l.ToMM(); math.Abs(got-c.mm) > 1e-9 {
			t.Fatalf("%s 转 mm 期望 %g，实际 %g", c.in, c.mm, got)
		}
	}
	if _, err := ParseLength("portrait"); err == nil {
		t.Fatalf("非数值应解析失败")
	}
	if got := parseLength("7"); got != 7 {
		t.Fatalf("无单位长度按 mm 处理，实际 %g", got)
	}
	if l, ok := parseFontSize("9"); !ok || l.ToPT() != 9 {
		t.Fatalf("无单位字号按 pt 处理，实际 %+v", l)
	}
	if got := parseDimension("50%", 180); got != 90 {
		t.Fatalf("百分比尺寸错误: %g", got)
	}
}

// TestLineHeightResolve 验证行高解析：倍数与绝对值两种语义在 mm 下的解析结果。
func TestLineHeightResolve(t *testing.T) {
	fontSize := Length{Value: 12, Unit: UnitPT}
	cases := []struct {
		in   string
		kind LineHeightKind
		mm   float64
	}{
		{"1.2x", LineHeightFactor, 12 * 1.2 * PtToMm},
		{"1.5", LineHeightFactor, 12 * 1.5 * PtToMm},
		{"18pt", LineHeightAbsolute, 18 * PtToMm},
		{"6mm", LineHeightAbsolute, 6},
	}
	for _, c := range cases {
		spec, err := ParseLineHeight(c.in)
		if err != nil {
			t.Fatalf("ParseLineHeight(%q): %v", c.in, err)
		}
		if spec.Kind != c.kind {
			t.Fatalf("%s 行高类型错误: %v", c.in, spec.Kind)
		}
		if got := spec.Resolve(fontSize, UnitMM); math.Abs(got-c.mm) > 1e-9 {
			t.Fatalf("%s 行高解析为 mm 错误: got=%g want=%g", c.in, got, c.mm)
		}
	}
	for _, bad := range []string{"0x", "-1mm", "tall"} {
		if _, err := ParseLineHeight(bad); err == nil {
			t.Fatalf("ParseLineHeight(%q) 应失败", bad)
		}
	}
}
