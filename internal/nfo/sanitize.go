package nfo

import (
	"errors"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
)

// ErrNotMovie 表示文本里找不到 <movie ... </movie> 边界，不是电影 NFO。
var ErrNotMovie = errors.New("nfo: not a movie document")

// 合法的实体/字符引用（紧跟在 '&' 之后）。
var entityRefRE = regexp.MustCompile(`^(?:[A-Za-z]+[0-9]*;|#[0-9]+;|#x[0-9a-fA-F]+;)`)

// 整行只有一个自闭合标签（连同其后的换行一起删除）。
var selfClosingLineRE = regexp.MustCompile(`(?m)^\s*<.*/>[\r\n]+`)

const movieClose = "</movie>"

// Sanitize 依次执行：转义裸 '&'、删除自闭合标签行、截断 </movie> 之后的内容。
func Sanitize(raw string) (string, error) {
	s := EscapeAmpersands(raw)
	s = StripSelfClosingLines(s)
	return TruncateAfterMovie(s)
}

// EscapeAmpersands 把不属于实体/字符引用的 '&' 替换为 "&amp;"。
//
// RE2 不支持前瞻断言，这里逐个 '&' 检查其后缀。
func EscapeAmpersands(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 16)
	for {
		i := strings.IndexByte(s, '&')
		if i < 0 {
			b.WriteString(s)
			return b.String()
		}
		b.WriteString(s[:i])
		if entityRefRE.MatchString(s[i+1:]) {
			b.WriteByte('&')
		} else {
			b.WriteString("&amp;")
		}
		s = s[i+1:]
	}
}

// StripSelfClosingLines 删除只包含一个自闭合标签的行（不看标签名）。
func StripSelfClosingLines(s string) string {
	return selfClosingLineRE.ReplaceAllString(s, "")
}

// TruncateAfterMovie 丢弃最后一个 </movie> 之后的内容（URL、广告等尾巴），再补一个 </movie>。
//
// 边界检查不区分大小写；截断位置只认小写的 </movie>，找不到时保留全文再补齐。
func TruncateAfterMovie(s string) (string, error) {
	// cases.Caser 不是并发安全的，每次调用单独创建。
	folded := cases.Fold().String(s)
	if !strings.Contains(folded, "<movie") || !strings.Contains(folded, movieClose) {
		return "", ErrNotMovie
	}
	if i := strings.LastIndex(s, movieClose); i >= 0 {
		s = s[:i]
	}
	return s + movieClose, nil
}
