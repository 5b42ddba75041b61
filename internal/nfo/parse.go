package nfo

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// ErrParse 表示文本无法解析为元素树，或树中没有 movie 元素。
var ErrParse = errors.New("nfo: parse failed")

// ParseError 携带解析失败的位置与底层原因；errors.Is(err, ErrParse) 为 true。
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("nfo: parse failed at line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("nfo: parse failed: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// Document 是解析后的 NFO，root 指向第一个 movie 元素。
type Document struct {
	doc  *goquery.Document
	root *goquery.Selection
}

var movieSel = cascadia.MustCompile("movie")

// Parse 把（已清洗的）文本解析为 Document。
//
// 约束：
// - 严格模式：标签不配对、未闭合、非法字符都算失败
// - 接受 HTML 命名实体（&nbsp; 等）；XML 声明里的字符集经 x/net/html/charset 解码
// - 元素名区分大小写；注释、处理指令、DOCTYPE 以及根元素之外的文本被忽略
func Parse(text string) (*Document, error) {
	top, err := buildTree(text)
	if err != nil {
		return nil, err
	}

	doc := goquery.NewDocumentFromNode(top)
	root := doc.FindMatcher(movieSel).First()
	if root.Length() == 0 {
		return nil, &ParseError{Err: errors.New("no <movie> element")}
	}
	return &Document{doc: doc, root: root}, nil
}

// buildTree 用 encoding/xml 逐 token 构建 x/net/html 节点树（DocumentNode 为顶层）。
func buildTree(text string) (*html.Node, error) {
	dec := xml.NewDecoder(strings.NewReader(text))
	dec.Strict = true
	dec.Entity = xml.HTMLEntity
	dec.CharsetReader = charset.NewReaderLabel

	top := &html.Node{Type: html.DocumentNode}
	cur := top
	depth := 0
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			line, _ := dec.InputPos()
			return nil, &ParseError{Line: line, Err: err}
		}

		switch t := tok.(type) {
		case xml.StartElement:
			n := &html.Node{Type: html.ElementNode, Data: t.Name.Local}
			for _, a := range t.Attr {
				n.Attr = append(n.Attr, html.Attribute{Key: a.Name.Local, Val: a.Value})
			}
			cur.AppendChild(n)
			cur = n
			depth++
		case xml.EndElement:
			cur = cur.Parent
			depth--
		case xml.CharData:
			if depth == 0 {
				continue
			}
			appendText(cur, string(t))
		}
	}
	if depth != 0 {
		return nil, &ParseError{Err: errors.New("unclosed element")}
	}
	return top, nil
}

// appendText 合并相邻文本节点（注释被跳过后两侧文本会相邻）。
func appendText(parent *html.Node, s string) {
	if last := parent.LastChild; last != nil && last.Type == html.TextNode {
		last.Data += s
		return
	}
	parent.AppendChild(&html.Node{Type: html.TextNode, Data: s})
}
