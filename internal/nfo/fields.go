package nfo

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/araddon/dateparse"
	"golang.org/x/net/html"
)

var (
	// ErrNoTag 表示标签不存在。
	ErrNoTag = errors.New("nfo: tag not found")
	// ErrNoText 表示标签存在但没有文本（例如只有子元素）。
	ErrNoText = errors.New("nfo: tag has no text")
	// ErrShortID 表示外部 id 太短（不超过 2 个字符），按缺失处理。
	ErrShortID = errors.New("nfo: external id too short")
)

// tagMatchers 预编译所有用到的标签名；cascadia 的类型选择器按原样比较元素名（区分大小写）。
var tagMatchers = compileTags(
	"title", "sorttitle", "originaltitle", "studio", "tagline", "plot",
	"year", "tmdbid", "mpaa", "releasedate", "premiered",
	"rating", "ratings", "value",
	"credits", "director", "genre", "country", "set", "name",
	"fileinfo", "streamdetails", "video", "durationinseconds", "runtime",
	"actor", "role", "thumb",
)

func compileTags(tags ...string) map[string]cascadia.Selector {
	m := make(map[string]cascadia.Selector, len(tags))
	for _, t := range tags {
		m[t] = cascadia.MustCompile(t)
	}
	return m
}

// children 返回 s 的直接子元素中名为 tag 的元素（文档顺序）。
func children(s *goquery.Selection, tag string) *goquery.Selection {
	m, ok := tagMatchers[tag]
	if !ok {
		panic("nfo: unknown tag " + tag)
	}
	return s.ChildrenMatcher(m)
}

// leadText 返回第一个元素在首个子元素之前的文本；ok=false 表示没有这样的文本。
func leadText(s *goquery.Selection) (string, bool) {
	if s.Length() == 0 {
		return "", false
	}
	var b strings.Builder
	for c := s.Nodes[0].FirstChild; c != nil && c.Type != html.ElementNode; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return b.String(), b.Len() > 0
}

// rawText 返回根下第一个 tag 元素的原始文本（不去空白）。
func (d *Document) rawText(tag string) (string, error) {
	el := children(d.root, tag).First()
	if el.Length() == 0 {
		return "", fmt.Errorf("<%s>: %w", tag, ErrNoTag)
	}
	t, ok := leadText(el)
	if !ok {
		return "", fmt.Errorf("<%s>: %w", tag, ErrNoText)
	}
	return t, nil
}

func (d *Document) text(tag string) (string, error) {
	t, err := d.rawText(tag)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(t), nil
}

// Has 判断根下是否存在 tag 元素。
func (d *Document) Has(tag string) bool {
	return children(d.root, tag).Length() > 0
}

// Title 返回标题；缺失或去空白后为空都算缺失。
func (d *Document) Title() (string, error) {
	t, err := d.text("title")
	if err != nil {
		return "", err
	}
	if t == "" {
		return "", fmt.Errorf("<title>: %w", ErrNoText)
	}
	return t, nil
}

func (d *Document) SortTitle() (string, error)     { return d.text("sorttitle") }
func (d *Document) OriginalTitle() (string, error) { return d.text("originaltitle") }
func (d *Document) Studio() (string, error)        { return d.text("studio") }
func (d *Document) Tagline() (string, error)       { return d.text("tagline") }
func (d *Document) Plot() (string, error)          { return d.text("plot") }

// Year 解析 <year> 为整数。
func (d *Document) Year() (int, error) {
	t, err := d.text("year")
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(t)
}

// ExternalID 返回 <tmdbid>；去空白后长度必须大于 2（按字符计）。
func (d *Document) ExternalID() (string, error) {
	t, err := d.text("tmdbid")
	if err != nil {
		return "", err
	}
	if len([]rune(t)) <= 2 {
		return "", fmt.Errorf("<tmdbid> %q: %w", t, ErrShortID)
	}
	return t, nil
}

// ReleaseDate 先读 <releasedate>，缺失或无法解析时再读 <premiered>。
//
// 解析器是宽松的（dateparse）；没有时区信息的日期按 UTC 解释。
func (d *Document) ReleaseDate() (time.Time, error) {
	var errs []error
	for _, tag := range []string{"releasedate", "premiered"} {
		t, err := d.text(tag)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		ts, err := dateparse.ParseIn(t, time.UTC)
		if err != nil {
			errs = append(errs, fmt.Errorf("<%s> %q: %w", tag, t, err))
			continue
		}
		return ts, nil
	}
	return time.Time{}, errors.Join(errs...)
}

var (
	ratingAnnotationRE = regexp.MustCompile(`\s*\(.*?\)`)
	ratingCodeRE       = regexp.MustCompile(`^(?:Rated\s)?([A-z0-9+/.\-]+(?:\s[0-9]+[A-z]?)?)?`)
)

// ContentRating 把 <mpaa> 归一化为带国家前缀的分级。
//
//   - "Rated PG-13 (violence)" -> "us/PG-13"
//   - 含 "ES" 的代码取第一个 '-' 之后的部分："ES-13" -> "es/13"；没有 '-' 时报错
//   - 标签存在但没有可识别的代码 -> "NR"
//   - 标签不存在 -> ""，ErrNoTag
func (d *Document) ContentRating() (string, error) {
	el := children(d.root, "mpaa").First()
	if el.Length() == 0 {
		return "", fmt.Errorf("<mpaa>: %w", ErrNoTag)
	}
	raw, _ := leadText(el)
	t := ratingAnnotationRE.ReplaceAllString(strings.TrimSpace(raw), "")

	m := ratingCodeRE.FindStringSubmatch(t)
	if m == nil || m[1] == "" {
		return "NR", nil
	}
	code := m[1]
	if strings.Contains(code, "ES") {
		_, after, ok := strings.Cut(code, "-")
		if !ok {
			return "", fmt.Errorf("<mpaa> %q: spanish rating without '-'", code)
		}
		return "es/" + after, nil
	}
	return "us/" + code, nil
}

// splitSlash 按 '/' 拆分并去掉每段两侧空白（保留空段）。
func splitSlash(s string) []string {
	parts := strings.Split(s, "/")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
