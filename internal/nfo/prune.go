package nfo

import (
	"sort"
	"strings"

	"golang.org/x/net/html"
)

// Prune 删除 movie 根之下所有“没有子元素且没有非空白文本”的元素，返回被删标签名（排序去重）。
//
// 深度优先后序：子元素先被删掉后，父元素若因此变空也会被删除。根元素本身永远保留。
func (d *Document) Prune() []string {
	seen := make(map[string]struct{})
	for _, n := range d.root.Nodes {
		pruneChildren(n, seen)
	}

	out := make([]string, 0, len(seen))
	for tag := range seen {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

func pruneChildren(n *html.Node, seen map[string]struct{}) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.ElementNode {
			pruneChildren(c, seen)
			if isEmptyElement(c) {
				seen[c.Data] = struct{}{}
				n.RemoveChild(c)
			}
		}
		c = next
	}
}

func isEmptyElement(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.ElementNode:
			return false
		case html.TextNode:
			if strings.TrimSpace(c.Data) != "" {
				return false
			}
		}
	}
	return true
}
