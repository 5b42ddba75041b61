package domain

import "time"

// Metadata 是宿主持有的电影元数据记录（由宿主创建，本仓库只负责填充字段）。
//
// 约束：
// - 可选字段用指针表达；nil 表示“未设置”，宿主保留其默认值
// - Genres/Countries/Collections 是集合语义：去重、无空串、保持首次出现顺序
// - Writers/Directors/Roles 保持文档顺序，允许重复
type Metadata struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	SortTitle     string     `json:"sort_title,omitempty"`
	OriginalTitle string     `json:"original_title,omitempty"`
	Year          *int       `json:"year,omitempty"`
	ContentRating string     `json:"content_rating"`
	Studio        string     `json:"studio,omitempty"`
	ReleaseDate   *time.Time `json:"release_date,omitempty"`
	Tagline       string     `json:"tagline,omitempty"`
	Summary       string     `json:"summary"`
	Rating        *float64   `json:"rating,omitempty"`
	DurationMs    *int64     `json:"duration_ms,omitempty"`

	Writers     []string `json:"writers"`
	Directors   []string `json:"directors"`
	Genres      []string `json:"genres"`
	Countries   []string `json:"countries"`
	Collections []string `json:"collections"`
	Roles       []Role   `json:"roles"`

	// Posters/Art 以文件路径为 key，值为原始字节（透传给宿主，不做解码）。
	Posters map[string][]byte `json:"-"`
	Art     map[string][]byte `json:"-"`
}

// Role 是一条演员记录。
type Role struct {
	Name  string `json:"name"`
	Role  string `json:"role"`
	Photo string `json:"photo"`
}

// AddGenre / AddCountry / AddCollection 维护集合语义（空串直接丢弃）。
func (m *Metadata) AddGenre(s string)      { m.Genres = addUnique(m.Genres, s) }
func (m *Metadata) AddCountry(s string)    { m.Countries = addUnique(m.Countries, s) }
func (m *Metadata) AddCollection(s string) { m.Collections = addUnique(m.Collections, s) }

func addUnique(set []string, s string) []string {
	if s == "" {
		return set
	}
	for _, x := range set {
		if x == s {
			return set
		}
	}
	return append(set, s)
}
