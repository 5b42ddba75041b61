package domain

// ScoreExact 是 NFO 命中时给出的固定置信度（NFO 即事实来源）。
const ScoreExact = 100

// Match 是 search 阶段交给宿主的候选结果。
type Match struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Year  *int   `json:"year,omitempty"`
	Lang  string `json:"lang"`
	Score int    `json:"score"`
}

// Matches 是最简单的结果收集器（宿主也可以提供自己的实现）。
type Matches []Match

func (m *Matches) Append(x Match) { *m = append(*m, x) }
