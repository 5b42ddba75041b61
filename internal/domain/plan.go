package domain

// Sidecars 记录为某部电影解析到的 sidecar 路径（空串表示未找到）。
type Sidecars struct {
	NFO    string `json:"nfo"`
	Poster string `json:"poster"`
	Fanart string `json:"fanart"`
}

// ItemPlan 是对一部电影的最小执行计划：代表分段 + 已解析的 sidecar。
// plan 只用于报告与 dry-run；apply 时 agent 会重新解析路径，不复用这里的结果。
type ItemPlan struct {
	Video    string   // 代表分段（绝对路径）
	Parts    []string // 全部分段（绝对路径，已排序）
	Sidecars Sidecars
}

// NeedUpdate 表示是否值得调用 Update：没有 NFO 的条目只会被跳过。
func (p ItemPlan) NeedUpdate() bool { return p.Sidecars.NFO != "" }
