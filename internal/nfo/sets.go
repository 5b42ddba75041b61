package nfo

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// 宿主界面会自己追加 "Collection"，这里去掉名称结尾的 series/collection。
var setSuffixRE = regexp.MustCompile(`(?i)\s?(series|collection)$`)

// Collections 读取所有 <set>：优先嵌套的 <name>，否则用 <set> 自身文本。
//
// 去掉结尾的 series/collection 后为空的名称被跳过；结果是集合语义。
func (d *Document) Collections() ([]string, error) {
	sets := children(d.root, "set")
	if sets.Length() == 0 {
		return nil, fmt.Errorf("<set>: %w", ErrNoTag)
	}
	var names []string
	sets.Each(func(_ int, s *goquery.Selection) {
		el := children(s, "name").First()
		if el.Length() == 0 {
			el = s
		}
		t, ok := leadText(el)
		if !ok {
			return
		}
		if name := setSuffixRE.ReplaceAllString(strings.TrimSpace(t), ""); name != "" {
			names = append(names, name)
		}
	})
	return uniqueNonEmpty(names), nil
}
