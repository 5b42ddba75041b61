package app

import (
	"path/filepath"
	"sort"

	"github.com/John-Robertt/xbmcnfo/internal/domain"
)

type groupKey struct {
	dir  string
	base string
}

// GroupByBase 把同目录、同 BaseName 的视频文件（多分段）聚合为一个 WorkItem。
//
// - items 稳定排序：按 Dir，再按 BaseName 字典序
// - item 内 FileIdx 稳定排序：按 RelPath 字典序；FileIdx[0] 是代表分段
func GroupByBase(files []domain.VideoFile) []domain.WorkItem {
	index := make(map[groupKey]int, 128)
	items := make([]domain.WorkItem, 0, 128)

	for i := range files {
		k := groupKey{dir: filepath.Dir(files[i].AbsPath), base: files[i].BaseName}
		if idx, ok := index[k]; ok {
			items[idx].FileIdx = append(items[idx].FileIdx, i)
			continue
		}
		index[k] = len(items)
		items = append(items, domain.WorkItem{
			Dir:      k.dir,
			BaseName: k.base,
			FileIdx:  []int{i},
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Dir != items[j].Dir {
			return items[i].Dir < items[j].Dir
		}
		return items[i].BaseName < items[j].BaseName
	})
	for i := range items {
		sort.Slice(items[i].FileIdx, func(a, b int) bool {
			ia := items[i].FileIdx[a]
			ib := items[i].FileIdx[b]
			return files[ia].RelPath < files[ib].RelPath
		})
	}
	return items
}
