package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/viper"
)

const (
	// ErrCodeNotFound 表示未给 path 运行但 cwd 下没有 xbmcnfo.json。
	ErrCodeNotFound = "config_not_found"
	// ErrCodeInvalid 表示配置文件无法读取/解析，或字段不合法。
	ErrCodeInvalid = "config_invalid"
	// ErrCodeMissingPath 表示未给 path 运行但配置文件缺少 path 字段。
	ErrCodeMissingPath = "config_missing_path"
)

const (
	// FileName 是配置文件名（JSON）。
	FileName = "xbmcnfo.json"
	// EnvPrefix 是环境变量前缀，例如 XBMCNFO_DEBUG=true。
	EnvPrefix = "XBMCNFO"

	// DefaultConcurrency 是并发的内置默认值（当配置未指定时）。
	DefaultConcurrency = 4
	// DefaultLanguage 表示“无语言”（NFO 本身不区分语言）。
	DefaultLanguage = "xx"
)

// fileKeys 是配置文件与环境变量共用的键。
var fileKeys = []string{"path", "apply", "debug", "language", "concurrency", "exclude_dirs"}

// CLIArgs 只包含 CLI 暴露的入口，并保留“是否显式指定”的信息。
// 这能保证覆盖优先级可实现：例如 --apply=false 必须能覆盖 config.apply=true。
type CLIArgs struct {
	Path string

	Apply    bool
	ApplySet bool

	Debug    bool
	DebugSet bool

	Language    string
	LanguageSet bool
}

// FileConfig 对应 xbmcnfo.json（以及 XBMCNFO_* 环境变量）的解析结构。
type FileConfig struct {
	Path        string   `mapstructure:"path"`
	Apply       *bool    `mapstructure:"apply"`
	Debug       *bool    `mapstructure:"debug"`
	Language    string   `mapstructure:"language"`
	Concurrency int      `mapstructure:"concurrency"`
	ExcludeDirs []string `mapstructure:"exclude_dirs"`
}

// EffectiveConfig 是合并并做最小规范化后的最终配置（实现层直接消费，不再做二次默认/优先级判断）。
type EffectiveConfig struct {
	Path string

	Apply    bool
	Debug    bool
	Language string

	Concurrency int
	ExcludeDirs []string
}

// Prefs 把最终配置暴露为只读偏好项（满足 agent.PreferenceStore）。
type Prefs struct {
	values map[string]bool
}

func (c EffectiveConfig) Prefs() Prefs {
	return Prefs{values: map[string]bool{
		"debug": c.Debug,
		"apply": c.Apply,
	}}
}

// Bool 返回布尔偏好；未知键为 false。
func (p Prefs) Bool(key string) bool { return p.values[strings.ToLower(key)] }

// Error 是配置阶段的结构化错误（带 error_code）。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeNotFound:
		return fmt.Sprintf("%s：未找到配置文件 %q", e.Code, e.Path)
	case ErrCodeMissingPath:
		return fmt.Sprintf("%s：配置文件 %q 缺少必填字段 path", e.Code, e.Path)
	case ErrCodeInvalid:
		if e.Err != nil {
			return fmt.Sprintf("%s：配置文件 %q 无效：%v", e.Code, e.Path, e.Err)
		}
		return fmt.Sprintf("%s：配置文件 %q 无效", e.Code, e.Path)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		return e.Code
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

// LoadEffective 发现并读取配置文件，叠加环境变量，然后与 CLI 参数合并为最终配置。
//
// 发现规则（固定）：
// 1) CLI 提供 path：尝试读取 <path>/xbmcnfo.json（可选）
// 2) CLI 未提供 path：必须读取 <cwd>/xbmcnfo.json（必选），且其中必须包含 path
//
// 覆盖优先级（固定）：
// - path：CLI path > config path
// - apply/debug/language：CLI 显式指定 > 环境变量 > config > 默认
// - 其他字段：仅由 config 与环境变量控制（CLI 不暴露）
func LoadEffective(cwd string, cli CLIArgs) (EffectiveConfig, error) {
	cwdAbs, err := filepath.Abs(cwd)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cwd, Err: err}
	}

	if strings.TrimSpace(cli.Path) != "" {
		// CLI 给了 path：配置文件可选，位置固定在 <path>/xbmcnfo.json。
		absPath := absCleanFrom(cwdAbs, cli.Path)
		cfgPath := filepath.Join(absPath, FileName)

		fc, _, err := readFileConfig(cfgPath)
		if err != nil {
			return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
		}
		return merge(absPath, cli, fc, cfgPath)
	}

	// CLI 没给 path：必须读取 <cwd>/xbmcnfo.json，且其中必须包含 path。
	cfgPath := filepath.Join(cwdAbs, FileName)
	fc, exists, err := readFileConfig(cfgPath)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}
	if !exists {
		return EffectiveConfig{}, &Error{Code: ErrCodeNotFound, Path: cfgPath, Err: os.ErrNotExist}
	}
	if strings.TrimSpace(fc.Path) == "" {
		return EffectiveConfig{}, &Error{Code: ErrCodeMissingPath, Path: cfgPath}
	}

	absPath := absCleanFrom(cwdAbs, fc.Path)
	return merge(absPath, cli, fc, cfgPath)
}

var languageRE = regexp.MustCompile(`^[a-z]{2,3}$`)

func merge(absPath string, cli CLIArgs, fc FileConfig, cfgPath string) (EffectiveConfig, error) {
	// apply / debug：CLI > config > 默认 false
	apply := pickBool(cli.ApplySet, cli.Apply, fc.Apply)
	debug := pickBool(cli.DebugSet, cli.Debug, fc.Debug)

	// language：CLI > config > 默认
	language := DefaultLanguage
	if cli.LanguageSet {
		language = cli.Language
	} else if strings.TrimSpace(fc.Language) != "" {
		language = fc.Language
	}
	language = strings.ToLower(strings.TrimSpace(language))
	if !languageRE.MatchString(language) {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: fmt.Errorf("language 必须是 2~3 个字母的语言代码，实际是 %q", language)}
	}

	concurrency := fc.Concurrency
	if concurrency == 0 {
		concurrency = DefaultConcurrency
	}
	// 范围 [1, 32]；超出截断。
	if concurrency < 1 {
		concurrency = 1
	}
	if concurrency > 32 {
		concurrency = 32
	}

	return EffectiveConfig{
		Path:        absPath,
		Apply:       apply,
		Debug:       debug,
		Language:    language,
		Concurrency: concurrency,
		ExcludeDirs: append([]string(nil), fc.ExcludeDirs...),
	}, nil
}

func pickBool(cliSet, cliVal bool, fileVal *bool) bool {
	if cliSet {
		return cliVal
	}
	if fileVal != nil {
		return *fileVal
	}
	return false
}

// absCleanFrom 以 base 为基准，把 p 变为 clean + absolute。
// - p 若已是绝对路径：直接 Clean
// - p 若是相对路径：Join(base, p) 后 Clean
func absCleanFrom(base, p string) string {
	p = filepath.Clean(strings.TrimSpace(p))
	if p == "" {
		return ""
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(base, p))
}

// readFileConfig 用 viper 读取配置文件并叠加 XBMCNFO_* 环境变量。
// 返回值 exists 表示该文件是否存在（不存在不算错误，环境变量依然生效）。
func readFileConfig(path string) (fc FileConfig, exists bool, err error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.SetEnvPrefix(EnvPrefix)
	for _, k := range fileKeys {
		// 显式绑定：Unmarshal 只会看到“已知”的键。
		if err := v.BindEnv(k); err != nil {
			return FileConfig{}, false, err
		}
	}

	fi, err := os.Stat(path)
	switch {
	case err == nil && fi.IsDir():
		return FileConfig{}, true, fmt.Errorf("%s 是目录", path)
	case err == nil:
		exists = true
		if err := v.ReadInConfig(); err != nil {
			return FileConfig{}, true, err
		}
	case !os.IsNotExist(err):
		return FileConfig{}, false, err
	}

	if err := v.Unmarshal(&fc); err != nil {
		return FileConfig{}, exists, err
	}
	return fc, exists, nil
}
