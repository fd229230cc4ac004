package layout

import (
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/ByLCY/quire/dsl"
	"github.com/ByLCY/quire/textbox"
)

const blockSpacing = 3.0

// env 保存一次 Build 过程中所有上下文共享的资源。
type env struct {
	res      ResourceSet
	data     any
	provider *fontProvider
	debug    DebugOptions
	log      *zap.Logger
}

// Build 根据 DSL AST 生成页面、文本、表格与图形的布局结果。
func Build(doc *dsl.Document, data any, opts BuildOptions) (*Result, error) {
	if doc == nil {
		return nil, fmt.Errorf("文档为空")
	}
	if opts.Typesetter == nil {
		return nil, fmt.Errorf("layout: 缺少排版后端 Typesetter")
	}

	res, err := collectResources(doc)
	if err != nil {
		return nil, err
	}
	sections := doc.Pages()
	if len(sections) == 0 {
		return nil, fmt.Errorf("文档中缺少 page 段落")
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	e := &env{
		res:      res,
		data:     data,
		provider: &fontProvider{ts: opts.Typesetter, fonts: res},
		debug:    opts.Debug,
		log:      log,
	}

	var pages []Page
	for i, section := range sections {
		out, err := e.buildPages(section)
		if err != nil {
			return nil, fmt.Errorf("第 %d 个 page 段落: %w", i+1, err)
		}
		pages = append(pages, out...)
	}
	return &Result{
		Pages:     pages,
		Resources: res,
		Meta:      collectMeta(doc),
	}, nil
}

// buildPages 排版一个 page 段落。内容溢出时按同样的纸张与页眉页脚续页。
func (e *env) buildPages(section *dsl.PageSection) ([]Page, error) {
	width, height, err := resolvePageSize(section.Spec)
	if err != nil {
		return nil, err
	}
	if section.Block == nil {
		return nil, fmt.Errorf("page 段落缺少内容")
	}
	margin := resolveMargin(section.Spec.Params)
	collector := newPageCollector(width, height, margin)

	// 先布局页眉/页脚，确定内容区域。
	for _, cmd := range section.Block.Commands() {
		switch cmd.Name {
		case "header", "footer":
			hf, err := e.buildHeaderFooter(cmd, width, height, margin, cmd.Name)
			if err != nil {
				return nil, err
			}
			if cmd.Name == "header" {
				collector.header = hf
			} else {
				collector.footer = hf
			}
		}
	}
	if collector.contentBottom() <= collector.contentTop() {
		return nil, fmt.Errorf("页眉页脚占满了页面，没有内容区域")
	}

	root := &flowContext{
		env:            e,
		baseX:          margin.Left,
		baseY:          collector.contentTop(),
		width:          width - margin.Left - margin.Right,
		cursorY:        collector.contentTop(),
		collector:      collector,
		margin:         margin,
		allowPageBreak: true,
		textWrap:       "anywhere",
	}
	if err := root.processBlock(section.Block); err != nil {
		return nil, err
	}
	return collector.pages(), nil
}

// processBlock 依次处理 block 内的命令，支持 flow、absolute、text、table 与形状。
func (ctx *flowContext) processBlock(block *dsl.Block) error {
	for _, cmd := range block.Commands() {
		var err error
		switch cmd.Name {
		case "flow":
			err = ctx.handleFlow(cmd)
		case "absolute":
			err = ctx.handleAbsolute(cmd)
		case "text":
			err = ctx.handleText(cmd)
		case "table":
			err = ctx.handleTable(cmd)
		case "image":
			err = fmt.Errorf("不支持图片：image 命令")
		case "header", "footer":
			// 已在 buildPages 中处理
		default:
			// 形状坐标为页面坐标，可在任意层级声明；其余命令忽略。
			acc := ctx.acc()
			addShape(cmd, ctx.env.res, &acc.lines, &acc.rects, &acc.circles)
		}
		if err != nil {
			return fmt.Errorf("%s (%s): %w", cmd.Name, cmd.Pos, err)
		}
	}
	return nil
}

func (ctx *flowContext) handleFlow(cmd *dsl.Command) error {
	if cmd.Block == nil {
		return fmt.Errorf("flow 语句缺少子内容")
	}
	styleName, attrs := cmd.Attrs(false)
	attrs = mergeStyleAttributes(styleName, attrs, ctx.env.res.Styles)
	flowAlign, _ := normalizeAlign(attrs["align"])

	width := ctx.width
	if v := attrs["width"]; v != "" {
		if w := parseDimension(v, ctx.width); w > 0 && w <= ctx.width {
			width = w
		}
	} else if flowAlign == "center" || flowAlign == "right" {
		if inferred := ctx.inferFlowWidth(cmd.Block, ctx.width); inferred > 0 {
			width = math.Min(inferred, ctx.width)
		}
	}

	flowWrap := ctx.textWrap
	if v := strings.TrimSpace(attrs["wrap"]); v != "" {
		flowWrap = normalizeWrap(v)
	}

	child := &flowContext{
		env:            ctx.env,
		baseX:          ctx.baseX + alignOffset(ctx.width, width, flowAlign),
		baseY:          ctx.cursorY,
		width:          width,
		cursorY:        ctx.cursorY,
		parent:         ctx,
		collector:      ctx.collector,
		margin:         ctx.margin,
		allowPageBreak: ctx.allowPageBreak,
		textAlign:      flowAlign,
		textWrap:       flowWrap,
	}
	if err := child.processBlock(cmd.Block); err != nil {
		return err
	}
	if child.cursorY > ctx.cursorY {
		ctx.cursorY = child.cursorY + blockSpacing
	}
	return nil
}

func (ctx *flowContext) handleAbsolute(cmd *dsl.Command) error {
	if cmd.Block == nil {
		return fmt.Errorf("absolute 语句缺少子内容")
	}
	styleName, attrs := cmd.Attrs(false)
	attrs = mergeStyleAttributes(styleName, attrs, ctx.env.res.Styles)
	width := ctx.width
	if v := attrs["width"]; v != "" {
		if w := parseDimension(v, ctx.width); w > 0 {
			width = w
		}
	}
	offsetX := parseDimension(attrs["x"], ctx.width)
	offsetY := parseDimension(attrs["y"], ctx.width)

	child := &flowContext{
		env:       ctx.env,
		baseX:     ctx.baseX + offsetX,
		baseY:     ctx.baseY + offsetY,
		width:     width,
		cursorY:   ctx.baseY + offsetY,
		parent:    ctx,
		collector: ctx.collector,
		margin:    ctx.margin,
		textWrap:  ctx.textWrap,
	}
	return child.processBlock(cmd.Block)
}

func (ctx *flowContext) handleText(cmd *dsl.Command) error {
	content := cmd.Block.Text()
	if content == "" {
		return fmt.Errorf("text 语句缺少文本内容")
	}
	styleName, attrs := cmd.Attrs(true)
	spec, err := ctx.env.parseText(styleName, attrs, content, ctx.textWrap, ctx.textAlign)
	if err != nil {
		return err
	}
	if spec.overflow == overflowPaginate && ctx.allowPageBreak && spec.height == 0 {
		return ctx.paginateText(spec)
	}
	return ctx.placeText(spec)
}

// paginateText 以当前页剩余高度为文本框高度排版，放不下的部分续排到下一页。
func (ctx *flowContext) paginateText(spec *textSpec) error {
	frags := spec.frags
	continued := false
	for {
		avail := ctx.remaining()
		if avail <= 0 {
			ctx.pageBreak()
			continue
		}
		res, opts, err := ctx.env.render(spec, frags, ctx.baseX, ctx.cursorY, ctx.width, avail, spec.opts.Overflow)
		if err != nil {
			return err
		}
		if res.NothingPrinted && len(res.Leftover) > 0 {
			if !ctx.atPageTop() {
				ctx.pageBreak()
				continue
			}
			// 页面顶部仍放不下一行时强制输出一行，避免死循环。
			forced := *spec
			forced.opts.SingleLine = true
			res, opts, err = ctx.env.render(&forced, frags, ctx.baseX, ctx.cursorY, ctx.width, 0, textbox.Expand)
			if err != nil {
				return err
			}
			ctx.env.log.Debug("line taller than page",
				zap.Float64("available", avail),
				zap.Float64("height", res.Height))
		}

		tb := spec.textBox(res, opts)
		tb.Continued = continued
		ctx.acc().appendText(tb)
		ctx.cursorY += res.Height

		if res.EverythingPrinted || len(res.Leftover) == 0 {
			ctx.cursorY += blockSpacing
			return nil
		}
		frags = res.Leftover
		continued = true
		ctx.env.log.Debug("text continues on next page",
			zap.Int("page", ctx.collector.pageNumber()),
			zap.Int("lines", len(res.Lines)),
			zap.Int("leftoverFragments", len(frags)))
		ctx.pageBreak()
	}
}

// placeText 排版不跨页的文本框。需要时整体移到下一页。
func (ctx *flowContext) placeText(spec *textSpec) error {
	overflow := spec.opts.Overflow
	if spec.overflow == overflowPaginate {
		overflow = textbox.Expand
	}
	res, opts, err := ctx.env.render(spec, spec.frags, ctx.baseX, ctx.cursorY, ctx.width, spec.height, overflow)
	if err != nil {
		return err
	}
	used := math.Max(res.Height, spec.height)
	if ctx.needsBreak(used) {
		ctx.pageBreak()
		if res, opts, err = ctx.env.render(spec, spec.frags, ctx.baseX, ctx.cursorY, ctx.width, spec.height, overflow); err != nil {
			return err
		}
	}
	tb := spec.textBox(res, opts)
	tb.Truncated = !res.EverythingPrinted
	if tb.Truncated {
		ctx.env.log.Debug("text truncated",
			zap.String("overflow", spec.overflow),
			zap.Int("lines", len(res.Lines)),
			zap.String("stop", res.Stop.String()))
	}
	ctx.acc().appendText(tb)
	ctx.cursorY += used + blockSpacing
	return nil
}

func alignOffset(container, width float64, align string) float64 {
	switch align {
	case "center":
		return (container - width) / 2
	case "right":
		return container - width
	}
	return 0
}

// inferFlowWidth 返回 flow 内容的自然宽度，用于居中或右对齐的 flow。
func (ctx *flowContext) inferFlowWidth(block *dsl.Block, maxWidth float64) float64 {
	var width float64
	for _, cmd := range block.Commands() {
		var w float64
		switch cmd.Name {
		case "text":
			w = ctx.inferTextWidth(cmd, maxWidth)
		case "flow":
			if cmd.Block != nil {
				w = ctx.inferFlowWidth(cmd.Block, maxWidth)
			}
		case "table":
			_, attrs := cmd.Attrs(false)
			if v := attrs["width"]; v != "" {
				w = parseDimension(v, maxWidth)
			}
		}
		width = math.Max(width, w)
	}
	return width
}

func (ctx *flowContext) inferTextWidth(cmd *dsl.Command, maxWidth float64) float64 {
	styleName, attrs := cmd.Attrs(true)
	if v := mergeStyleAttributes(styleName, attrs, ctx.env.res.Styles)["width"]; v != "" {
		return parseDimension(v, maxWidth)
	}
	content := cmd.Block.Text()
	if content == "" {
		return 0
	}
	spec, err := ctx.env.parseText(styleName, attrs, content, ctx.textWrap, "")
	if err != nil {
		return 0
	}
	w, err := ctx.env.naturalWidth(spec, spec.frags)
	if err != nil {
		ctx.env.log.Debug("measure flow width", zap.Error(err))
		return 0
	}
	return w
}
