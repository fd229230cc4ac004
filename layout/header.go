package layout

import (
	"fmt"

	"github.com/ByLCY/quire/dsl"
	"github.com/ByLCY/quire/textbox"
)

// buildHeaderFooter 解析并布局页眉/页脚内容（text 与形状）。kind 取值
// "header" 或 "footer"，用于计算纵向基准。页眉文本默认居中。
func (e *env) buildHeaderFooter(cmd *dsl.Command, pageW, pageH float64, margin Margin, kind string) (HeaderFooter, error) {
	var hf HeaderFooter
	if cmd.Block == nil {
		return hf, nil
	}
	_, attrs := cmd.Attrs(false)
	contentWidth := pageW - margin.Left - margin.Right

	// 内部 text 自上而下堆叠；形状不参与高度计算。
	cursorY := 0.0
	for _, c := range cmd.Block.Commands() {
		if c.Name != "text" {
			addShape(c, e.res, &hf.Lines, &hf.Rects, &hf.Circles)
			continue
		}
		content := c.Block.Text()
		if content == "" {
			return hf, fmt.Errorf("%s: text 语句缺少文本内容", kind)
		}
		styleName, tattrs := c.Attrs(true)
		spec, err := e.parseText(styleName, tattrs, content, "", "")
		if err != nil {
			return hf, fmt.Errorf("%s: %w", kind, err)
		}
		if kind == "header" && spec.align == "" {
			spec.align, spec.opts.Align = "center", textbox.Center
		}
		res, opts, err := e.render(spec, spec.frags, margin.Left, cursorY, contentWidth, spec.height, textbox.Expand)
		if err != nil {
			return hf, fmt.Errorf("%s: %w", kind, err)
		}
		hf.Texts = append(hf.Texts, spec.textBox(res, opts))
		cursorY += max(res.Height, spec.height) + blockSpacing
	}
	if cursorY > 0 {
		cursorY -= blockSpacing
	}

	// 区域高度：显式给定则使用之，否则等于内容高度。
	contentHeight := cursorY
	areaHeight := contentHeight
	if v := attrs["height"]; v != "" {
		if h := parseDimension(v, contentWidth); h > 0 {
			areaHeight = h
		}
	}

	// 页眉按底边对齐；页脚从页面底部向上占用 areaHeight。
	baseY := 0.0
	switch kind {
	case "header":
		baseY = max(areaHeight-contentHeight, 0)
	case "footer":
		baseY = pageH - areaHeight
	}
	for i := range hf.Texts {
		hf.Texts[i].Translate(0, baseY)
	}
	hf.Height = areaHeight
	return hf, nil
}
