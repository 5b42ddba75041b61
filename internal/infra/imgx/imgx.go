package imgx

import (
	"bytes"
	"errors"
	"image"
	_ "image/gif"  // 注册 GIF 解码器
	_ "image/jpeg" // 注册 JPEG 解码器
	_ "image/png"  // 注册 PNG 解码器（poster/fanart 允许 .png）
)

// Info 是图片头部信息（不解码像素）。
type Info struct {
	Format string `json:"format"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Probe 读取已加载图片的格式与尺寸。
//
// 约束：
// - 只读取头部（image.DecodeConfig），不做完整解码
// - 图片本身按原始字节透传给宿主；这里仅用于报告与日志
func Probe(data []byte) (Info, error) {
	if len(data) == 0 {
		return Info{}, errors.New("图片为空")
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Info{}, err
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return Info{}, errors.New("图片尺寸无效")
	}
	return Info{Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}
