package layout

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// EncodeDebugJSON 将布局结果以缩进 JSON 写入 w。
func EncodeDebugJSON(res *Result, w io.Writer) error {
	if res == nil {
		return nil
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("编码调试 JSON 失败: %w", err)
	}
	return nil
}

// WriteDebugJSON 将布局结果输出为 JSON 文件，便于调试或可视化。
func WriteDebugJSON(res *Result, path string) error {
	if res == nil {
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := EncodeDebugJSON(res, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
