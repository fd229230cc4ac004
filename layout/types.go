package layout

import "github.com/ByLCY/quire/textbox"

// 该文件定义布局结果与资源描述，供布局计算、渲染与调试 JSON 共用。
// 所有坐标与长度以毫米为单位，原点位于页面左上角；字号以 pt 为单位。

// Result 保存布局后的页面与资源信息。
type Result struct {
	Pages     []Page       `json:"pages"`
	Resources ResourceSet  `json:"resources"`
	Meta      DocumentMeta `json:"meta"`
}

// ResourceSet 记录解析出的字体、颜色与样式定义。
type ResourceSet struct {
	Fonts  map[string]FontResource `json:"fonts"`
	Colors map[string]Color        `json:"colors"`
	Styles map[string]Style        `json:"styles"`
}

// FontResource 描述字体资源。Src 可以是文件路径或 "embed:<family>" 形式的内置字体族；
// 文件字体可通过 Bold/Italic/BoldItalic 提供其他变体。
type FontResource struct {
	Name       string `json:"name"`
	Src        string `json:"src"`
	Bold       string `json:"bold,omitempty"`
	Italic     string `json:"italic,omitempty"`
	BoldItalic string `json:"boldItalic,omitempty"`
	Style      string `json:"style,omitempty"`
	Family     string `json:"family"`
	IsBuiltin  bool   `json:"isBuiltin"`
	Fallback   string `json:"fallback,omitempty"`
}

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// Page 记录页面尺寸、边距与最终可以直接渲染的元素。
type Page struct {
	Width   float64    `json:"width"`
	Height  float64    `json:"height"`
	Margin  Margin     `json:"margin"`
	Texts   []TextBox  `json:"texts"`
	Tables  []TableBox `json:"tables"`
	Lines   []Line     `json:"lines,omitempty"`
	Rects   []Rect     `json:"rects,omitempty"`
	Circles []Circle   `json:"circles,omitempty"`
	// 页眉与页脚（会在同一 page 段落的每一页重复渲染）
	Header HeaderFooter `json:"header"`
	Footer HeaderFooter `json:"footer"`
}

// HeaderFooter 描述页眉/页脚区域的固定高度与元素集合。
type HeaderFooter struct {
	Height  float64   `json:"height"`
	Texts   []TextBox `json:"texts"`
	Lines   []Line    `json:"lines,omitempty"`
	Rects   []Rect    `json:"rects,omitempty"`
	Circles []Circle  `json:"circles,omitempty"`
}

type Margin struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// TextBox 表示一个已经排好坐标的文本块。一个 text 语句跨页时会产生多个 TextBox，
// 后续部分的 Continued 为 true。
type TextBox struct {
	Content   string        `json:"content"`
	X         float64       `json:"x"`
	Y         float64       `json:"y"`
	Width     float64       `json:"width"`
	Height    float64       `json:"height"`
	Leading   float64       `json:"leading,omitempty"`
	Font      string        `json:"font"`
	FontSize  float64       `json:"fontSize"` // pt，shrink-to-fit 后的实际字号
	Color     Color         `json:"color"`
	Align     string        `json:"align,omitempty"`
	VAlign    string        `json:"valign,omitempty"`
	Wrap      string        `json:"wrap,omitempty"`
	Overflow  string        `json:"overflow,omitempty"`
	Continued bool          `json:"continued,omitempty"`
	Truncated bool          `json:"truncated,omitempty"`
	Lines     []TextLine    `json:"lines"`
	Debug     *TextBoxDebug `json:"debug,omitempty"`
}

// TextLine 是一行排好的文本。Height 为行内最大上升部与下降部之和，GapBefore
// 为与上一行底部的间距，因此 TextBox.Height == Σ(GapBefore + Height)。
type TextLine struct {
	Content     string         `json:"content"`
	X           float64        `json:"x"`
	Baseline    float64        `json:"baseline"`
	Width       float64        `json:"width"`
	Height      float64        `json:"height"`
	GapBefore   float64        `json:"gapBefore,omitempty"`
	WordSpacing float64        `json:"wordSpacing,omitempty"`
	Fragments   []TextFragment `json:"fragments"`
}

// TextFragment 是行内同一样式的一段文本，坐标为绝对页面坐标。
// Baseline 已包含上下标偏移。
type TextFragment struct {
	Text        string         `json:"text"`
	X           float64        `json:"x"`
	Baseline    float64        `json:"baseline"`
	Width       float64        `json:"width"`
	Ascender    float64        `json:"ascender"`
	Descender   float64        `json:"descender"`
	Font        string         `json:"font"`
	Size        float64        `json:"size"` // pt
	Styles      textbox.Styles `json:"styles,omitempty"`
	Color       Color          `json:"color"`
	CharSpacing float64        `json:"charSpacing,omitempty"`
	WordSpacing float64        `json:"wordSpacing,omitempty"`
	NoKerning   bool           `json:"noKerning,omitempty"` // 逐字符排版，不应用字偶距
	Link        string         `json:"link,omitempty"`
	Anchor      string         `json:"anchor,omitempty"`
}

// TextBoxDebug holds optional debug info displayed only when enabled by BuildOptions.
type TextBoxDebug struct {
	RawUnits *RawUnits `json:"rawUnits,omitempty"`
	Stop     string    `json:"stop,omitempty"`
}

// RawUnits describes original author-specified units for key fields.
type RawUnits struct {
	FontSize   *RawLengthJSON     `json:"fontSize,omitempty"`
	LineHeight *RawLineHeightJSON `json:"lineHeight,omitempty"`
}

type RawLengthJSON struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

type RawLineHeightJSON struct {
	Kind   string  `json:"kind"` // "factor" | "absolute"
	Factor float64 `json:"factor,omitempty"`
	Value  float64 `json:"value,omitempty"`
	Unit   string  `json:"unit,omitempty"`
}

// TableBox 保存表格布局信息（平均列宽）。表格跨页时每页一个 TableBox。
type TableBox struct {
	X            float64    `json:"x"`
	Y            float64    `json:"y"`
	Width        float64    `json:"width"`
	Height       float64    `json:"height"`
	RowGap       float64    `json:"rowGap"`
	ColumnWidths []float64  `json:"columnWidths"`
	Rows         []TableRow `json:"rows"`
	BorderColor  Color      `json:"borderColor"`
}

type TableRow struct {
	Y        float64     `json:"y"`
	Height   float64     `json:"height"`
	IsHeader bool        `json:"isHeader"`
	Cells    []TableCell `json:"cells"`
}

// TableCell 复用 TextBox 作为单元格内容。
type TableCell struct {
	Text TextBox `json:"text"`
}

// Line 表示一条线段。
type Line struct {
	X1    float64 `json:"x1"`
	Y1    float64 `json:"y1"`
	X2    float64 `json:"x2"`
	Y2    float64 `json:"y2"`
	Color Color   `json:"color"`
	Width float64 `json:"width"` // <=0 时由渲染器给默认值
}

type Rect struct {
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	StrokeColor Color   `json:"strokeColor"`
	StrokeWidth float64 `json:"strokeWidth"`
	FillColor   *Color  `json:"fillColor,omitempty"` // 为空表示不填充
}

type Circle struct {
	CX          float64 `json:"cx"`
	CY          float64 `json:"cy"`
	R           float64 `json:"r"`
	StrokeColor Color   `json:"strokeColor"`
	StrokeWidth float64 `json:"strokeWidth"`
	FillColor   *Color  `json:"fillColor,omitempty"`
}

// Style 用于描述可继承的文本样式。
type Style struct {
	Name    string            `json:"name"`
	Extends string            `json:"extends,omitempty"`
	Props   map[string]string `json:"props"`
}

// DocumentMeta 保存 PDF 元信息。
type DocumentMeta struct {
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	Subject  string   `json:"subject"`
	Creator  string   `json:"creator"`
	Keywords []string `json:"keywords"`
}

// Translate moves the box and everything in it.
func (tb *TextBox) Translate(dx, dy float64) {
	tb.X += dx
	tb.Y += dy
	for i := range tb.Lines {
		ln := &tb.Lines[i]
		ln.X += dx
		ln.Baseline += dy
		for j := range ln.Fragments {
			ln.Fragments[j].X += dx
			ln.Fragments[j].Baseline += dy
		}
	}
}
