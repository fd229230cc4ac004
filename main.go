package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/ByLCY/quire/dsl"
	"github.com/ByLCY/quire/layout"
	"github.com/ByLCY/quire/renderer"
	canvasrenderer "github.com/ByLCY/quire/renderer/canvas"
)

func main() {
	input := flag.String("in", "examples/demo.quire", "DSL 文件路径")
	output := flag.String("out", "output/demo.pdf", "PDF 输出路径")
	debug := flag.String("debug", "", "布局调试 JSON 输出路径")
	debugRawUnits := flag.Bool("debug-raw-units", false, "在调试 JSON 中输出 debug.rawUnits 影子字段")
	dataJSON := flag.String("data", "", "绑定到 DSL 的 JSON 数据")
	dataFile := flag.String("data-file", "", "绑定到 DSL 的 JSON 数据文件")
	verbose := flag.Bool("v", false, "输出排版调试日志")
	flag.Parse()

	logger, err := newLogger(*verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	inputData, err := loadData(*dataJSON, *dataFile)
	if err != nil {
		logger.Fatal("解析 data JSON 失败", zap.Error(err))
	}

	r := canvasrenderer.NewRendererWithOptions(canvasrenderer.Options{
		BaseDir: filepath.Dir(*input),
		Logger:  logger.Named("render"),
	})
	cfg := config{
		input:         *input,
		output:        *output,
		debug:         *debug,
		debugRawUnits: *debugRawUnits,
		data:          inputData,
		logger:        logger,
	}
	if err := run(cfg, r); err != nil {
		logger.Fatal("生成 PDF 失败", zap.Error(err))
	}
	fmt.Printf("已生成 PDF：%s\n", *output)
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	return cfg.Build()
}

// loadData 读取 -data 或 -data-file 提供的 JSON；两者同时给出时以 -data 为准。
func loadData(inline, path string) (any, error) {
	raw := []byte(inline)
	if inline == "" && path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		raw = b
	}
	if len(raw) == 0 {
		return nil, nil
	}
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	return data, nil
}

type config struct {
	input         string
	output        string
	debug         string
	debugRawUnits bool
	data          any
	logger        *zap.Logger
}

// run 串联解析、布局与渲染。
func run(cfg config, r renderer.Renderer) error {
	if r == nil {
		return fmt.Errorf("renderer 不能为空")
	}
	doc, err := dsl.ParseFile(cfg.input)
	if err != nil {
		return fmt.Errorf("解析 DSL 失败: %w", err)
	}

	ts, ok := r.(layout.Typesetter)
	if !ok {
		return fmt.Errorf("renderer 未实现排版接口")
	}

	result, err := layout.Build(doc, cfg.data, layout.BuildOptions{
		Typesetter: ts,
		Debug:      layout.DebugOptions{RawUnits: cfg.debugRawUnits},
		Logger:     cfg.logger.Named("layout"),
	})
	if err != nil {
		return fmt.Errorf("布局计算失败: %w", err)
	}
	cfg.logger.Debug("layout done", zap.Int("pages", len(result.Pages)))

	if cfg.debug != "" {
		if err := writeDebug(result, cfg.debug); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(cfg.output), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	pdfBytes, err := r.Render(result)
	if err != nil {
		return fmt.Errorf("渲染 PDF 失败: %w", err)
	}
	if err := os.WriteFile(cfg.output, pdfBytes, 0o644); err != nil {
		return fmt.Errorf("写入 PDF 文件失败: %w", err)
	}
	return nil
}

func writeDebug(result *layout.Result, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.WriteDebugJSON(result, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}
