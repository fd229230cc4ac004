package layout

import "go.uber.org/zap"

// pageEpsilon absorbs rounding drift when comparing cursor positions.
const pageEpsilon = 1e-6

// pageContent is everything placed on one physical page of a section.
type pageContent struct {
	texts   []TextBox
	tables  []TableBox
	lines   []Line
	rects   []Rect
	circles []Circle
}

func (p *pageContent) appendText(tb TextBox) { p.texts = append(p.texts, tb) }

func (p *pageContent) appendTable(t TableBox) { p.tables = append(p.tables, t) }

// pageCollector 收集一个 page 段落产生的所有页面；页眉页脚在段落内共享。
type pageCollector struct {
	width, height  float64
	margin         Margin
	header, footer HeaderFooter
	contents       []*pageContent
}

func newPageCollector(width, height float64, margin Margin) *pageCollector {
	return &pageCollector{
		width:    width,
		height:   height,
		margin:   margin,
		contents: []*pageContent{{}},
	}
}

func (pc *pageCollector) newPage() {
	pc.contents = append(pc.contents, &pageContent{})
}

func (pc *pageCollector) curr() *pageContent { return pc.contents[len(pc.contents)-1] }

// pageNumber 为当前页在本段落内的序号（从 1 开始）。
func (pc *pageCollector) pageNumber() int { return len(pc.contents) }

// contentTop 为内容区域顶部：max(上边距, 页眉高度)。
func (pc *pageCollector) contentTop() float64 {
	return max(pc.margin.Top, pc.header.Height)
}

// contentBottom 为内容区域底部：页面高度 - max(下边距, 页脚高度)。
func (pc *pageCollector) contentBottom() float64 {
	return pc.height - max(pc.margin.Bottom, pc.footer.Height)
}

func (pc *pageCollector) pages() []Page {
	out := make([]Page, 0, len(pc.contents))
	for _, c := range pc.contents {
		out = append(out, Page{
			Width:   pc.width,
			Height:  pc.height,
			Margin:  pc.margin,
			Header:  pc.header,
			Footer:  pc.footer,
			Texts:   c.texts,
			Tables:  c.tables,
			Lines:   c.lines,
			Rects:   c.rects,
			Circles: c.circles,
		})
	}
	return out
}

// flowContext tracks the cursor of one flow or absolute block. Nested flows
// share the collector and forward page breaks to the root.
type flowContext struct {
	env       *env
	collector *pageCollector
	parent    *flowContext
	margin    Margin

	baseX, baseY float64
	width        float64
	cursorY      float64

	allowPageBreak bool
	// 子 text 未声明 align / wrap 时继承的值。
	textAlign string
	textWrap  string
}

// remaining 为光标到内容区域底部的可用高度。
func (ctx *flowContext) remaining() float64 {
	return ctx.collector.contentBottom() - ctx.cursorY
}

// needsBreak 报告高度为 height 的元素是否需要移到下一页。已在页面顶部时不再换页，
// 超高元素直接溢出。
func (ctx *flowContext) needsBreak(height float64) bool {
	if !ctx.allowPageBreak || ctx.atPageTop() {
		return false
	}
	return height > ctx.remaining()+pageEpsilon
}

func (ctx *flowContext) atPageTop() bool {
	return ctx.cursorY <= ctx.collector.contentTop()+pageEpsilon
}

// pageBreak starts a new page and moves every enclosing flow to its top.
func (ctx *flowContext) pageBreak() {
	if ctx.parent == nil {
		ctx.collector.newPage()
		ctx.baseX = ctx.margin.Left
		ctx.baseY = ctx.collector.contentTop()
		ctx.env.log.Debug("page break", zap.Int("page", ctx.collector.pageNumber()))
	} else {
		ctx.parent.pageBreak()
		ctx.baseY = ctx.parent.cursorY
	}
	ctx.cursorY = ctx.baseY
}

func (ctx *flowContext) acc() *pageContent { return ctx.collector.curr() }
