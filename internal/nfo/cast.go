package nfo

import (
	"slices"
	"strconv"

	"github.com/PuerkitoBio/goquery"

	"github.com/John-Robertt/xbmcnfo/internal/domain"
)

// Cast 按文档顺序返回所有 <actor>。
//
// 第 n 个演员（从 0 开始）：
//   - 没有 <name> 时记为 "Unknown Name n"
//   - 没有 <role> 时记为 "Unknown Role n"
//   - role 与之前已分配的某个 role 相同时追加 " n"
//
// 只和“之前”的演员比较，结果依赖顺序。
func (d *Document) Cast() []domain.Role {
	actors := children(d.root, "actor")
	if actors.Length() == 0 {
		return nil
	}
	out := make([]domain.Role, 0, actors.Length())
	var used []string
	actors.Each(func(n int, a *goquery.Selection) {
		idx := strconv.Itoa(n)
		r := domain.Role{Name: "Unknown Name " + idx, Role: "Unknown Role " + idx}

		if t, ok := leadText(children(a, "name").First()); ok {
			r.Name = t
		}
		if t, ok := leadText(children(a, "role").First()); ok {
			if slices.Contains(used, t) {
				t += " " + idx
			}
			r.Role = t
			used = append(used, t)
		}
		if t, ok := leadText(children(a, "thumb").First()); ok {
			r.Photo = t
		}
		out = append(out, r)
	})
	return out
}
