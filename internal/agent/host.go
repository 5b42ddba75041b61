package agent

import (
	"io"
	"os"

	"github.com/hashicorp/go-hclog"

	"github.com/John-Robertt/xbmcnfo/internal/domain"
)

// PrefDebug 是控制 debug 日志的偏好项。
const PrefDebug = "debug"

// FileLoader 由宿主提供：按路径读取 sidecar 的原始字节。
type FileLoader interface {
	Load(path string) ([]byte, error)
}

// OSLoader 直接读本地文件系统。
type OSLoader struct{}

func (OSLoader) Load(path string) ([]byte, error) { return os.ReadFile(path) }

// PreferenceStore 由宿主提供：只读的偏好项。
type PreferenceStore interface {
	Bool(key string) bool
}

// MatchSink 接收 search 的候选结果（*domain.Matches 即可）。
type MatchSink interface {
	Append(domain.Match)
}

type noPrefs struct{}

func (noPrefs) Bool(string) bool { return false }

// NewLogger 按 debug 偏好构建 logger：开启时 Debug 级别，否则 Info。
//
// 级别在构建时确定一次；之后偏好变化不影响已创建的 logger。
func NewLogger(prefs PreferenceStore, w io.Writer) hclog.Logger {
	if prefs == nil {
		prefs = noPrefs{}
	}
	if w == nil {
		w = os.Stderr
	}
	level := hclog.Info
	if prefs.Bool(PrefDebug) {
		level = hclog.Debug
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   "xbmcnfo",
		Level:  level,
		Output: w,
	})
}
