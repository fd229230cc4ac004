package canvasrenderer

import (
	"bytes"
	"fmt"
	"image/color"
	"os"
	"strings"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"
	"go.uber.org/zap"

	"github.com/ByLCY/quire/layout"
	"github.com/ByLCY/quire/renderer"
	"github.com/ByLCY/quire/textbox"
)

const (
	tableBorderWidth = 0.2
	// 下划线与删除线的粗细及位置，按字号比例计算。
	decorationThickness = 0.06
	underlineOffset     = 0.12
	strikeOffset        = 0.3
)

// Renderer draws layout results via github.com/tdewolff/canvas. It also
// measures text for the layout stage.
type Renderer struct {
	fonts *FontCache
	log   *zap.Logger
}

var (
	_ renderer.Renderer = (*Renderer)(nil)
	_ layout.Typesetter = (*Renderer)(nil)
)

// Options configures the canvas renderer.
type Options struct {
	BaseDir string
	Fonts   map[string]Resource // built-in fonts accessible via built-in:<name>
	Logger  *zap.Logger
}

// Resource can be provided either by Bytes or by Path.
type Resource struct {
	Bytes []byte
	Path  string
}

// NewRenderer creates a canvas-based renderer rooted at baseDir for resolving assets.
func NewRenderer(baseDir string) *Renderer { return NewRendererWithOptions(Options{BaseDir: baseDir}) }

// NewRendererWithOptions creates a renderer with injected resources and optional baseDir.
func NewRendererWithOptions(opts Options) *Renderer {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	blobs := map[string][]byte{}
	for name, res := range opts.Fonts {
		if name == "" {
			continue
		}
		if len(res.Bytes) > 0 {
			blobs[name] = res.Bytes
			continue
		}
		if res.Path != "" {
			data, err := os.ReadFile(res.Path)
			if err != nil {
				// 使用时会报告找不到资源
				log.Warn("read injected font", zap.String("name", name), zap.Error(err))
				continue
			}
			blobs[name] = data
		}
	}
	return &Renderer{fonts: newFontCache(opts.BaseDir, blobs, log), log: log}
}

// Face 实现 layout.Typesetter。size 以 pt 为单位，返回的度量以 mm 为单位。
func (r *Renderer) Face(font layout.FontResource, styles textbox.Styles, size float64) (textbox.Face, error) {
	ff, err := r.fonts.Face(font, styles, size, canvas.Black)
	if err != nil {
		return nil, err
	}
	return face{ff: ff}, nil
}

// Render renders the result into a PDF byte slice.
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	if len(result.Pages) == 0 {
		return nil, fmt.Errorf("缺少可渲染的页面")
	}

	var buf bytes.Buffer
	writer := pdf.New(&buf, result.Pages[0].Width, result.Pages[0].Height, nil)
	applyMeta(writer, result.Meta)
	for i, page := range result.Pages {
		if i > 0 {
			writer.NewPage(page.Width, page.Height)
		}
		c := canvas.New(page.Width, page.Height)
		ctx := canvas.NewContext(c)
		ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与布局保持左上角为原点

		if err := r.drawPage(ctx, page, result.Resources); err != nil {
			return nil, fmt.Errorf("第 %d 页: %w", i+1, err)
		}
		c.RenderTo(writer)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

func applyMeta(writer *pdf.PDF, meta layout.DocumentMeta) {
	keywords := strings.Join(meta.Keywords, ", ")
	writer.SetInfo(meta.Title, meta.Subject, keywords, meta.Author, meta.Creator)
}

func (r *Renderer) drawPage(ctx *canvas.Context, page layout.Page, resources layout.ResourceSet) error {
	// 页眉：先形状作为背景，再文本
	drawShapes(ctx, page.Header.Lines, page.Header.Rects, page.Header.Circles)
	if err := r.drawTextBoxes(ctx, page.Header.Texts, resources); err != nil {
		return err
	}

	drawShapes(ctx, page.Lines, page.Rects, page.Circles)
	if err := r.drawTextBoxes(ctx, page.Texts, resources); err != nil {
		return err
	}
	if err := r.drawTables(ctx, page.Tables, resources); err != nil {
		return err
	}

	drawShapes(ctx, page.Footer.Lines, page.Footer.Rects, page.Footer.Circles)
	return r.drawTextBoxes(ctx, page.Footer.Texts, resources)
}

func (r *Renderer) drawTextBoxes(ctx *canvas.Context, boxes []layout.TextBox, resources layout.ResourceSet) error {
	for _, tb := range boxes {
		if err := r.drawTextBox(ctx, tb, resources); err != nil {
			return err
		}
	}
	return nil
}

// drawTextBox 逐个片段绘制。片段坐标已是页面绝对坐标（mm），字号为 pt。
func (r *Renderer) drawTextBox(ctx *canvas.Context, tb layout.TextBox, resources layout.ResourceSet) error {
	for _, line := range tb.Lines {
		for _, frag := range line.Fragments {
			if frag.Text == "" {
				continue
			}
			font, err := resources.Font(frag.Font)
			if err != nil {
				return err
			}
			ff, err := r.fonts.Face(font, frag.Styles, frag.Size, colorFromLayout(frag.Color))
			if err != nil {
				return err
			}
			drawFragment(ctx, ff, frag)
		}
	}
	return nil
}

// drawFragment 绘制一个片段。存在字距、词距或关闭了字偶距时逐字符定位。
func drawFragment(ctx *canvas.Context, ff *canvas.FontFace, f layout.TextFragment) {
	if !f.NoKerning && f.CharSpacing == 0 && (f.WordSpacing == 0 || !strings.Contains(f.Text, " ")) {
		ctx.DrawText(f.X, f.Baseline, canvas.NewTextLine(ff, f.Text, canvas.Left))
	} else {
		x := f.X
		for _, r := range f.Text {
			s := string(r)
			if r != ' ' {
				ctx.DrawText(x, f.Baseline, canvas.NewTextLine(ff, s, canvas.Left))
			}
			x += ff.TextWidth(s) + f.CharSpacing
			if r == ' ' {
				x += f.WordSpacing
			}
		}
	}

	width := f.Width + f.WordSpacing*float64(strings.Count(f.Text, " "))
	size := f.Size * layout.PtToMm
	if f.Styles.Has(textbox.Underline) {
		drawRule(ctx, f.X, f.Baseline+underlineOffset*size, width, decorationThickness*size, f.Color)
	}
	if f.Styles.Has(textbox.Strikethrough) {
		drawRule(ctx, f.X, f.Baseline-strikeOffset*size, width, decorationThickness*size, f.Color)
	}
}

func drawRule(ctx *canvas.Context, x, y, width, thickness float64, col layout.Color) {
	ctx.SetFillColor(colorFromLayout(col))
	ctx.SetStrokeColor(color.RGBA{})
	ctx.DrawPath(x, y-thickness/2, canvas.Rectangle(width, thickness))
}

func (r *Renderer) drawTables(ctx *canvas.Context, tables []layout.TableBox, resources layout.ResourceSet) error {
	for _, table := range tables {
		if len(table.ColumnWidths) == 0 {
			continue
		}
		for _, row := range table.Rows {
			x := table.X
			fill := canvas.White
			if row.IsHeader {
				fill = canvas.Hex("#f8f8f8")
			}
			for _, colWidth := range table.ColumnWidths {
				ctx.SetFillColor(fill)
				ctx.SetStrokeColor(colorFromLayout(table.BorderColor))
				ctx.SetStrokeWidth(tableBorderWidth)
				ctx.DrawPath(x, row.Y, canvas.Rectangle(colWidth, row.Height))
				x += colWidth
			}
			for _, cell := range row.Cells {
				if err := r.drawTextBox(ctx, cell.Text, resources); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func drawShapes(ctx *canvas.Context, lines []layout.Line, rects []layout.Rect, circles []layout.Circle) {
	for _, ln := range lines {
		ctx.SetStrokeColor(colorFromLayout(ln.Color))
		ctx.SetStrokeWidth(strokeWidth(ln.Width))
		p := &canvas.Path{}
		p.MoveTo(0, 0)
		p.LineTo(ln.X2-ln.X1, ln.Y2-ln.Y1)
		ctx.DrawPath(ln.X1, ln.Y1, p)
	}
	for _, rc := range rects {
		setFill(ctx, rc.FillColor)
		ctx.SetStrokeColor(colorFromLayout(rc.StrokeColor))
		ctx.SetStrokeWidth(strokeWidth(rc.StrokeWidth))
		ctx.DrawPath(rc.X, rc.Y, canvas.Rectangle(rc.Width, rc.Height))
	}
	for _, c := range circles {
		setFill(ctx, c.FillColor)
		ctx.SetStrokeColor(colorFromLayout(c.StrokeColor))
		ctx.SetStrokeWidth(strokeWidth(c.StrokeWidth))
		ctx.DrawPath(c.CX-c.R, c.CY-c.R, canvas.Circle(c.R))
	}
}

func strokeWidth(w float64) float64 {
	if w <= 0 {
		return tableBorderWidth
	}
	return w
}

func setFill(ctx *canvas.Context, c *layout.Color) {
	if c == nil {
		ctx.SetFillColor(color.RGBA{})
		return
	}
	ctx.SetFillColor(colorFromLayout(*c))
}

func colorFromLayout(c layout.Color) color.Color {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, 1.0)
}
