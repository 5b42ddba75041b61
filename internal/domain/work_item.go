package domain

// WorkItem 是按“目录 + BaseName”聚合后的一部电影（可能由多个分段文件组成）。
// 只保存文件下标（指向 []VideoFile）；FileIdx[0] 是代表分段，宿主只会把它交给 agent。
type WorkItem struct {
	Dir      string
	BaseName string
	FileIdx  []int
}
