package app

import (
	"path/filepath"
	"testing"

	"github.com/John-Robertt/xbmcnfo/internal/domain"
)

func abs(parts ...string) string {
	return filepath.Join(append([]string{string(filepath.Separator), "tmp"}, parts...)...)
}

func TestGroupByBase_MergeParts(t *testing.T) {
	files := []domain.VideoFile{
		{AbsPath: abs("Heat", "Heat-cd2.avi"), RelPath: filepath.Join("Heat", "Heat-cd2.avi"), BaseName: "Heat"},
		{AbsPath: abs("Heat", "Heat-cd1.avi"), RelPath: filepath.Join("Heat", "Heat-cd1.avi"), BaseName: "Heat"},
	}

	items := GroupByBase(files)
	if len(items) != 1 {
		t.Fatalf("期望 1 个 item，实际 %d", len(items))
	}
	if items[0].BaseName != "Heat" || items[0].Dir != abs("Heat") {
		t.Fatalf("分组键不正确：%+v", items[0])
	}
	// item 内必须按 RelPath 排序：cd1 在 cd2 之前。
	if len(items[0].FileIdx) != 2 || items[0].FileIdx[0] != 1 || items[0].FileIdx[1] != 0 {
		t.Fatalf("FileIdx 排序不稳定：%v", items[0].FileIdx)
	}
}

func TestGroupByBase_SameNameDifferentDirs(t *testing.T) {
	files := []domain.VideoFile{
		{AbsPath: abs("b", "movie.mkv"), RelPath: filepath.Join("b", "movie.mkv"), BaseName: "movie"},
		{AbsPath: abs("a", "movie.mkv"), RelPath: filepath.Join("a", "movie.mkv"), BaseName: "movie"},
		{AbsPath: abs("a", "Alien.mkv"), RelPath: filepath.Join("a", "Alien.mkv"), BaseName: "Alien"},
	}

	items := GroupByBase(files)
	if len(items) != 3 {
		t.Fatalf("期望 3 个 item，实际 %d", len(items))
	}
	if items[0].FileIdx[0] != 2 || items[1].FileIdx[0] != 1 || items[2].FileIdx[0] != 0 {
		t.Fatalf("items 排序不稳定：%+v", items)
	}
}
