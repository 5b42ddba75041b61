package nfo

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Rating 返回评分（保留 1 位小数）。
//
// 优先读 <rating>（逗号小数点视同点号）。读不到或为 0 时，逐个检查 <ratings>：
// 每个取 rating/value；任意一个解析失败都记为 0.0，最后一个 <ratings> 决定结果。
// 两处都没有时返回 ErrNoTag（评分保持未设置）。
func (d *Document) Rating() (float64, error) {
	v, err := parseRating(d.rawText("rating"))
	found := err == nil
	if found && v != 0 {
		return v, nil
	}

	children(d.root, "ratings").Each(func(_ int, s *goquery.Selection) {
		found = true
		value := children(children(s, "rating").First(), "value").First()
		t, ok := leadText(value)
		if !ok {
			v = 0
			return
		}
		x, err := parseRating(t, nil)
		if err != nil {
			v = 0
			return
		}
		v = x
	})
	if !found {
		return 0, fmt.Errorf("<rating>: %w", ErrNoTag)
	}
	return v, nil
}

func parseRating(text string, err error) (float64, error) {
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(strings.ReplaceAll(text, ",", ".")), 64)
	if err != nil {
		return 0, err
	}
	return math.Round(f*10) / 10, nil
}
