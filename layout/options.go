package layout

import (
	"go.uber.org/zap"

	"github.com/ByLCY/quire/textbox"
)

// BuildOptions 配置布局阶段所需的依赖，例如排版后端与日志。
type BuildOptions struct {
	Typesetter Typesetter
	Debug      DebugOptions
	// Logger 为空时不输出日志。
	Logger *zap.Logger
}

// DebugOptions 控制调试相关输出。
type DebugOptions struct {
	RawUnits bool // 在调试 JSON 中输出 debug.rawUnits 影子字段
}

// Typesetter 为文本引擎提供字体度量。size 以 pt 为单位，Face 返回的宽度与
// 度量以 mm 为单位。缺少所需粗体/斜体变体时返回的错误需包装
// textbox.ErrUnsupportedStyle。
type Typesetter interface {
	Face(font FontResource, styles textbox.Styles, size float64) (textbox.Face, error)
}

// fontProvider adapts a Typesetter to the textbox engine, which refers to
// fonts by resource name.
type fontProvider struct {
	ts    Typesetter
	fonts ResourceSet
}

func (p *fontProvider) Face(name string, styles textbox.Styles, size float64) (textbox.Face, error) {
	font, err := p.fonts.Font(name)
	if err != nil {
		return nil, err
	}
	return p.ts.Face(font, styles, size)
}
