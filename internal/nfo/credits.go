package nfo

import "fmt"

// Writers 收集所有 <credits>，每个按 '/' 拆分。
func (d *Document) Writers() ([]string, error) { return d.slashList("credits") }

// Directors 收集所有 <director>，每个按 '/' 拆分。
func (d *Document) Directors() ([]string, error) { return d.slashList("director") }

// Genres 与 Countries 是集合语义：去重、丢弃空串，保持首次出现顺序。
func (d *Document) Genres() ([]string, error)    { return d.slashSet("genre") }
func (d *Document) Countries() ([]string, error) { return d.slashSet("country") }

// slashList 按文档顺序拼接各元素拆分后的片段（允许重复与空串）。
//
// 遇到没有文本的元素时停止，返回已收集的部分与错误。
func (d *Document) slashList(tag string) ([]string, error) {
	els := children(d.root, tag)
	if els.Length() == 0 {
		return nil, fmt.Errorf("<%s>: %w", tag, ErrNoTag)
	}
	var out []string
	for i := range els.Nodes {
		t, ok := leadText(els.Eq(i))
		if !ok {
			return out, fmt.Errorf("<%s>[%d]: %w", tag, i, ErrNoText)
		}
		out = append(out, splitSlash(t)...)
	}
	return out, nil
}

func (d *Document) slashSet(tag string) ([]string, error) {
	items, err := d.slashList(tag)
	return uniqueNonEmpty(items), err
}

func uniqueNonEmpty(items []string) []string {
	var out []string
	seen := make(map[string]struct{}, len(items))
	for _, s := range items {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
