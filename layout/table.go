package layout

import (
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/ByLCY/quire/dsl"
	"github.com/ByLCY/quire/textbox"
)

const (
	defaultTableRowGap = 0.0
	cellPadding        = 1.2
)

var defaultBorderColor = Color{R: 200, G: 200, B: 200}

// tableSpec 保存表格的列宽等公共参数。行在 y=0 处排版，放置时再平移。
type tableSpec struct {
	x       float64
	width   float64
	rowGap  float64
	columns int
	border  Color
}

func (t *tableSpec) columnWidth() float64 {
	return t.width / float64(t.columns)
}

func (ctx *flowContext) handleTable(cmd *dsl.Command) error {
	if cmd.Block == nil {
		return fmt.Errorf("table 语句缺少内容")
	}
	styleName, attrs := cmd.Attrs(false)
	attrs = mergeStyleAttributes(styleName, attrs, ctx.env.res.Styles)

	spec := &tableSpec{x: ctx.baseX, width: ctx.width, rowGap: defaultTableRowGap, border: defaultBorderColor}
	if v := attrs["width"]; v != "" {
		if w := parseDimension(v, ctx.width); w > 0 {
			spec.width = w
		}
	}
	for _, key := range []string{"row-gap", "rowGap"} {
		if v := attrs[key]; v != "" {
			if g := parseLength(v); g >= 0 {
				spec.rowGap = g
			}
			break
		}
	}
	if v := attrs["border-color"]; v != "" {
		spec.border = resolveColor(v, ctx.env.res)
	}
	if v := attrs["columns"]; v != "" {
		if c, err := strconv.Atoi(v); err == nil && c > 0 {
			spec.columns = c
		}
	}
	if spec.columns == 0 {
		spec.columns = firstRowCells(cmd.Block)
	}
	if spec.columns == 0 {
		return fmt.Errorf("table 需要至少一个单元格")
	}

	var (
		header *TableRow
		rows   []TableRow
	)
	for _, rc := range cmd.Block.Commands() {
		if rc.Name != "header" && rc.Name != "row" {
			continue
		}
		row, err := ctx.env.buildTableRow(rc, spec, rc.Name == "header")
		if err != nil {
			return err
		}
		if row.IsHeader && header == nil {
			h := row
			header = &h
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return fmt.Errorf("table 需要至少一行")
	}

	// 逐行放置；换页时在新页重复表头。
	table := ctx.newTableBox(spec)
	for _, row := range rows {
		if ctx.needsBreak(row.Height) && len(table.Rows) > 0 && !onlyHeader(table) {
			ctx.flushTable(&table)
			ctx.pageBreak()
			table = ctx.newTableBox(spec)
			if header != nil && !row.IsHeader {
				ctx.placeRow(&table, *header)
				ctx.env.log.Debug("table header repeated", zap.Int("page", ctx.collector.pageNumber()))
			}
		}
		ctx.placeRow(&table, row)
	}
	ctx.flushTable(&table)
	ctx.cursorY += blockSpacing
	return nil
}

func (ctx *flowContext) newTableBox(spec *tableSpec) TableBox {
	widths := make([]float64, spec.columns)
	for i := range widths {
		widths[i] = spec.columnWidth()
	}
	return TableBox{
		X:            spec.x,
		Y:            ctx.cursorY,
		Width:        spec.width,
		RowGap:       spec.rowGap,
		ColumnWidths: widths,
		BorderColor:  spec.border,
	}
}

func (ctx *flowContext) placeRow(table *TableBox, row TableRow) {
	if len(table.Rows) > 0 {
		ctx.cursorY += table.RowGap
	}
	table.Rows = append(table.Rows, row.at(ctx.cursorY))
	ctx.cursorY += row.Height
}

func (ctx *flowContext) flushTable(table *TableBox) {
	if len(table.Rows) == 0 {
		return
	}
	table.Height = ctx.cursorY - table.Y
	ctx.acc().appendTable(*table)
}

func onlyHeader(t TableBox) bool {
	for _, r := range t.Rows {
		if !r.IsHeader {
			return false
		}
	}
	return true
}

func firstRowCells(block *dsl.Block) int {
	for _, rc := range block.Commands() {
		if rc.Name != "header" && rc.Name != "row" {
			continue
		}
		n := 0
		for _, c := range rc.Block.Commands() {
			if c.Name == "cell" {
				n++
			}
		}
		return n
	}
	return 0
}

// buildTableRow 以 y=0 排版一行。每个单元格是一个不限高度的文本框。
func (e *env) buildTableRow(cmd *dsl.Command, spec *tableSpec, header bool) (TableRow, error) {
	row := TableRow{IsHeader: header}
	if cmd.Block == nil {
		return row, fmt.Errorf("row/header 缺少 cell 定义")
	}
	colWidth := spec.columnWidth()
	cellWidth := colWidth - 2*cellPadding
	if cellWidth <= 0 {
		cellWidth = colWidth
	}
	maxHeight := 0.0
	col := 0
	for _, cc := range cmd.Block.Commands() {
		if cc.Name != "cell" {
			continue
		}
		if col >= spec.columns {
			return row, fmt.Errorf("单元格数量超过列数 %d", spec.columns)
		}
		content := cc.Block.Text()
		x := spec.x + float64(col)*colWidth + cellPadding
		col++
		if content == "" {
			continue
		}
		styleName, attrs := cc.Attrs(true)
		ts, err := e.parseText(styleName, attrs, content, "", "")
		if err != nil {
			return row, err
		}
		if header && ts.align == "" {
			ts.align, ts.opts.Align = "left", textbox.Left
		}
		res, opts, err := e.render(ts, ts.frags, x, cellPadding, cellWidth, 0, textbox.Expand)
		if err != nil {
			return row, err
		}
		row.Cells = append(row.Cells, TableCell{Text: ts.textBox(res, opts)})
		maxHeight = max(maxHeight, res.Height)
	}
	if col == 0 {
		return row, fmt.Errorf("row/header 中至少需要一个 cell")
	}
	row.Height = maxHeight + 2*cellPadding
	return row, nil
}

// at returns a copy of the row moved to y.
func (r TableRow) at(y float64) TableRow {
	out := r
	out.Y = y
	out.Cells = make([]TableCell, len(r.Cells))
	for i, c := range r.Cells {
		tb := c.Text.clone()
		tb.Translate(0, y)
		out.Cells[i] = TableCell{Text: tb}
	}
	return out
}

func (tb TextBox) clone() TextBox {
	lines := make([]TextLine, len(tb.Lines))
	for i, ln := range tb.Lines {
		ln.Fragments = append([]TextFragment(nil), ln.Fragments...)
		lines[i] = ln
	}
	tb.Lines = lines
	return tb
}
