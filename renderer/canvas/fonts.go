package canvasrenderer

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"go.uber.org/zap"

	"github.com/ByLCY/quire/fonts"
	"github.com/ByLCY/quire/layout"
	"github.com/ByLCY/quire/textbox"
)

// FontCache loads font families once and hands out faces for layout and
// drawing. It is safe for concurrent use.
type FontCache struct {
	baseDir string
	blobs   map[string][]byte // injected fonts, addressed as built-in:<name>
	log     *zap.Logger

	mu       sync.Mutex
	families map[string]*fontFamily
}

// fontFamily is a loaded canvas family together with the variants it has.
type fontFamily struct {
	family *canvas.FontFamily
	styles map[canvas.FontStyle]bool
}

func newFontCache(baseDir string, blobs map[string][]byte, log *zap.Logger) *FontCache {
	return &FontCache{
		baseDir:  baseDir,
		blobs:    blobs,
		log:      log,
		families: map[string]*fontFamily{},
	}
}

// Face returns a face of font in the variant selected by styles, at size pt.
// A font without that variant yields an error wrapping
// textbox.ErrUnsupportedStyle.
func (fc *FontCache) Face(font layout.FontResource, styles textbox.Styles, size float64, col color.Color) (*canvas.FontFace, error) {
	fam, err := fc.family(font)
	if err != nil {
		return nil, err
	}
	style := fontStyle(styles)
	if !fam.styles[style] {
		if font.Fallback == "" {
			return nil, fmt.Errorf("字体 %s 缺少 %s 变体: %w", font.Name, styles.Face(), textbox.ErrUnsupportedStyle)
		}
		fb := layout.FontResource{Name: font.Name + "~fallback", Src: font.Fallback}
		if fam, err = fc.family(fb); err != nil {
			return nil, err
		}
		if !fam.styles[style] {
			return nil, fmt.Errorf("字体 %s 及其后备字体缺少 %s 变体: %w", font.Name, styles.Face(), textbox.ErrUnsupportedStyle)
		}
		fc.log.Debug("font variant from fallback",
			zap.String("font", font.Name),
			zap.String("fallback", font.Fallback),
			zap.Stringer("styles", styles.Face()))
	}
	return fam.family.Face(size, col, style, canvas.FontNormal), nil
}

func (fc *FontCache) family(font layout.FontResource) (*fontFamily, error) {
	key := fontCacheKey(font)
	fc.mu.Lock()
	defer fc.mu.Unlock()
	if fam, ok := fc.families[key]; ok {
		return fam, nil
	}
	fam, err := fc.load(font)
	if err != nil {
		if font.Src == fonts.Prefix+fonts.Default {
			return nil, err
		}
		// 加载失败时退回内置字体，保持文档可渲染。
		fc.log.Warn("font fallback",
			zap.String("font", font.Name),
			zap.String("src", font.Src),
			zap.Error(err))
		if fam, err = fc.loadBuiltin(fonts.Default); err != nil {
			return nil, err
		}
	}
	fc.families[key] = fam
	return fam, nil
}

func (fc *FontCache) load(font layout.FontResource) (*fontFamily, error) {
	if font.Src == "" {
		return nil, fmt.Errorf("字体 %s 缺少 src", font.Name)
	}
	if strings.HasPrefix(font.Src, fonts.Prefix) {
		family, variant := fonts.Split(font.Src)
		if !strings.Contains(font.Src, "/") {
			return fc.loadBuiltin(family)
		}
		// 指定了变体的内置字体只提供该变体，作为常规体使用。
		data, err := fonts.Load(family + "/" + variant)
		if err != nil {
			return nil, err
		}
		fam := &fontFamily{family: canvas.NewFontFamily(font.Name), styles: map[canvas.FontStyle]bool{}}
		if err := fam.add(data, canvas.FontRegular); err != nil {
			return nil, err
		}
		return fam, nil
	}

	fam := &fontFamily{family: canvas.NewFontFamily(font.Name), styles: map[canvas.FontStyle]bool{}}
	for _, v := range []struct {
		src   string
		style canvas.FontStyle
	}{
		{font.Src, canvas.FontRegular},
		{font.Bold, canvas.FontBold},
		{font.Italic, canvas.FontItalic},
		{font.BoldItalic, canvas.FontBold | canvas.FontItalic},
	} {
		if v.src == "" {
			continue
		}
		data, err := fc.read(v.src)
		if err != nil {
			return nil, err
		}
		if err := fam.add(data, v.style); err != nil {
			return nil, fmt.Errorf("加载字体 %s 失败: %w", v.src, err)
		}
	}
	return fam, nil
}

func (fc *FontCache) loadBuiltin(family string) (*fontFamily, error) {
	fam := &fontFamily{family: canvas.NewFontFamily(family), styles: map[canvas.FontStyle]bool{}}
	variants := fonts.Variants(family)
	if len(variants) == 0 {
		return nil, fmt.Errorf("读取内置字体 %s 失败: 未知字体族", family)
	}
	for _, v := range variants {
		data, err := fonts.Load(family + "/" + v)
		if err != nil {
			return nil, err
		}
		if err := fam.add(data, variantStyle(v)); err != nil {
			return nil, err
		}
	}
	return fam, nil
}

func (fam *fontFamily) add(data []byte, style canvas.FontStyle) error {
	if err := fam.family.LoadFont(data, 0, style); err != nil {
		return err
	}
	fam.styles[style] = true
	return nil
}

// read loads a font file or an injected built-in:<name> blob.
func (fc *FontCache) read(src string) ([]byte, error) {
	if name, ok := builtinName(src); ok {
		if blob, ok := fc.blobs[name]; ok {
			return blob, nil
		}
		return nil, fmt.Errorf("找不到内置字体资源 built-in:%s", name)
	}
	if strings.HasPrefix(src, fonts.Prefix) {
		return fonts.Load(src)
	}
	path := src
	if fc.baseDir == "" && !filepath.IsAbs(path) {
		return nil, fmt.Errorf("未指定资源目录时不允许直接使用字体路径：%s（请改用 built-in: 或 embed:）", src)
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(fc.baseDir, path)
	}
	return os.ReadFile(path)
}

func builtinName(src string) (string, bool) {
	for _, p := range []string{"built-in:", "builtin:"} {
		if strings.HasPrefix(src, p) {
			return strings.TrimPrefix(src, p), true
		}
	}
	return "", false
}

func variantStyle(v string) canvas.FontStyle {
	switch v {
	case fonts.Bold:
		return canvas.FontBold
	case fonts.Italic:
		return canvas.FontItalic
	case fonts.BoldItalic:
		return canvas.FontBold | canvas.FontItalic
	}
	return canvas.FontRegular
}

func fontStyle(s textbox.Styles) canvas.FontStyle {
	style := canvas.FontRegular
	if s.Has(textbox.Bold) {
		style |= canvas.FontBold
	}
	if s.Has(textbox.Italic) {
		style |= canvas.FontItalic
	}
	return style
}

func fontCacheKey(font layout.FontResource) string {
	return strings.Join([]string{font.Name, font.Src, font.Bold, font.Italic, font.BoldItalic}, "|")
}

// face adapts a canvas face to the text engine. canvas measures in mm.
type face struct {
	ff *canvas.FontFace
}

// Width measures text as canvas shapes it, with the font's kerning. Without
// kerning each rune is measured on its own, matching how such text is drawn.
func (f face) Width(text string, kerning bool) float64 {
	if kerning {
		return f.ff.TextWidth(text)
	}
	return unkernedWidth(f.ff, text)
}

func unkernedWidth(ff *canvas.FontFace, text string) float64 {
	w := 0.0
	for _, r := range text {
		w += ff.TextWidth(string(r))
	}
	return w
}

func (f face) Metrics() textbox.FontMetrics {
	m := f.ff.Metrics()
	return textbox.FontMetrics{
		Ascender:   m.Ascent,
		Descender:  math.Abs(m.Descent),
		LineHeight: m.LineHeight,
	}
}

func (face) UnicodeAware() bool { return true }
