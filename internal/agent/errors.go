package agent

import (
	"errors"
	"fmt"

	"github.com/John-Robertt/xbmcnfo/internal/domain"
)

var (
	// ErrNoNFO 表示所有候选位置都没有 NFO 文件。
	ErrNoNFO = errors.New("agent: nfo file not found")
	// ErrNoTitle 表示 NFO 缺少 <title>（标题是必填项）。
	ErrNoTitle = errors.New("agent: nfo has no title")
)

// Error 是单次 search/update 中止时的结构化错误（带 error_code）。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case domain.ErrCodeNFONotFound:
		return fmt.Sprintf("%s：未找到 %q 对应的 NFO 文件", e.Code, e.Path)
	case domain.ErrCodeTitleMissing:
		return fmt.Sprintf("%s：NFO %q 缺少 <title>", e.Code, e.Path)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s：%s：%v", e.Code, e.Path, e.Err)
		}
		return fmt.Sprintf("%s：%s", e.Code, e.Path)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
