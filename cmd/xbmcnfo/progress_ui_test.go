package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/John-Robertt/xbmcnfo/internal/domain"
)

func TestProgressUI_ItemLines(t *testing.T) {
	var buf bytes.Buffer
	p := newProgressUI(&buf)

	p.OnItemDone(1, 3, "Heat/Heat-cd1.mkv", domain.ItemResult{
		Status:   domain.StatusProcessed,
		ID:       "949",
		Title:    "Heat",
		Year:     1995,
		Parts:    []string{"Heat/Heat-cd1.mkv", "Heat/Heat-cd2.mkv"},
		Sidecars: domain.Sidecars{NFO: "Heat/Heat.nfo", Poster: "Heat/poster.jpg"},
	}, time.Second)
	p.OnItemDone(2, 3, "Alien/Alien.mkv", domain.ItemResult{Status: domain.StatusSkipped}, 0)
	p.OnItemDone(3, 3, "Broken/Broken.mkv", domain.ItemResult{
		Status:    domain.StatusFailed,
		ErrorCode: domain.ErrCodeNotMovie,
		ErrorMsg:  "不是电影 NFO",
	}, 0)

	out := buf.String()
	for _, want := range []string{
		"[1/3] Heat/Heat-cd1.mkv OK Heat (1995) id=949 parts=2 +poster (1.0s)",
		"[2/3] Alien/Alien.mkv SKIP",
		"[3/3] Broken/Broken.mkv FAIL not_movie: 不是电影 NFO",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("输出缺少 %q：\n%s", want, out)
		}
	}
	if p.ok != 1 || p.skip != 1 || p.fail != 1 {
		t.Fatalf("计数不正确：ok=%d skip=%d fail=%d", p.ok, p.skip, p.fail)
	}
}

func TestFormatTitle_NoYear(t *testing.T) {
	got := formatTitle(domain.ItemResult{Title: "Heat", ID: "7225468052526152935"})
	if got != "Heat id=7225468052526152935" {
		t.Fatalf("formatTitle 不符合预期：%q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("  abcdefgh  ", 5); got != "ab..." {
		t.Fatalf("truncate 不符合预期：%q", got)
	}
	if got := truncate("abc", 10); got != "abc" {
		t.Fatalf("短串不应被截断：%q", got)
	}
}
