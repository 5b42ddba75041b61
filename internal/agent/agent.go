// Package agent 把 sidecar 查找、NFO 解析与字段提取串起来，写入宿主持有的元数据记录。
//
// 每次 Search/Update 都是独立的一次性计算：重新查找路径、重新解析，不共享任何缓存。
// Agent 只持有只读的协作者，可以被多个 goroutine 同时调用。
package agent

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/hashicorp/go-hclog"

	"github.com/John-Robertt/xbmcnfo/internal/domain"
	"github.com/John-Robertt/xbmcnfo/internal/nfo"
	"github.com/John-Robertt/xbmcnfo/internal/sidecar"
)

const (
	Name    = "XBMCnfoMoviesImporter"
	Version = "2.0"
)

// Options 是 Agent 的协作者；零值字段使用默认实现。
type Options struct {
	Loader FileLoader
	Prefs  PreferenceStore
	Logger hclog.Logger
}

type Agent struct {
	loader FileLoader
	prefs  PreferenceStore
	log    hclog.Logger
}

func New(opts Options) *Agent {
	a := &Agent{loader: opts.Loader, prefs: opts.Prefs, log: opts.Logger}
	if a.loader == nil {
		a.loader = OSLoader{}
	}
	if a.prefs == nil {
		a.prefs = noPrefs{}
	}
	if a.log == nil {
		a.log = NewLogger(a.prefs, nil)
	}
	return a
}

// Search 只查找 NFO，读取 title/year/id，并向 sink 追加一个满分候选。
//
// 不删除空标签；id 优先取 <tmdbid>，否则由 (title, year) 派生。
func (a *Agent) Search(videoPath, lang string, sink MatchSink) error {
	a.banner("search")

	doc, nfoPath, err := a.open(videoPath)
	if err != nil {
		return err
	}

	title, err := doc.Title()
	if err != nil {
		a.log.Error("ERROR: No <title> tag in nfo. Aborting!", "nfo", nfoPath)
		return &Error{Code: domain.ErrCodeTitleMissing, Path: nfoPath, Err: ErrNoTitle}
	}

	var year *int
	if y, err := doc.Year(); err == nil {
		year = &y
		a.log.Debug("Reading year tag", "year", y)
	}

	id, err := doc.ExternalID()
	if err == nil {
		a.log.Debug("ID from nfo", "id", id)
	} else {
		id = domain.DeriveID(title, year)
		a.log.Debug("Derived ID from title and year", "id", id, "reason", err)
	}

	a.log.Info(fmt.Sprintf("Found movie information in NFO file: title = %s, year = %s, id = %s",
		title, intText(year), id))
	sink.Append(domain.Match{
		ID:    id,
		Name:  title,
		Year:  year,
		Lang:  lang,
		Score: domain.ScoreExact,
	})
	return nil
}

// Update 把 sidecar 的内容写入 md。
//
// 流程：poster/fanart（找到且可读时整体替换）→ NFO → 删除空标签 → title（必填）→ 其余字段。
// 致命错误（找不到 NFO、不是电影文档、解析失败、缺少标题）返回 *Error；此时 md 只保留已写入的部分。
// 其余字段各自独立，失败只记 debug 日志，字段保持未设置。
func (a *Agent) Update(videoPath string, md *domain.Metadata) error {
	a.banner("update")

	if p, b, ok := a.loadImage(videoPath, sidecar.KindPoster); ok {
		md.Posters = map[string][]byte{p: b}
	}
	if p, b, ok := a.loadImage(videoPath, sidecar.KindFanart); ok {
		md.Art = map[string][]byte{p: b}
	}

	doc, nfoPath, err := a.open(videoPath)
	if err != nil {
		return err
	}

	a.log.Debug("Removing empty XML tags from movies nfo...")
	removed := doc.Prune()
	a.log.Debug("Empty XML tags removed", "count", len(removed), "tags", removed)

	title, err := doc.Title()
	if err != nil {
		a.log.Error("ERROR: No <title> tag in nfo. Aborting!", "nfo", nfoPath)
		return &Error{Code: domain.ErrCodeTitleMissing, Path: nfoPath, Err: ErrNoTitle}
	}
	md.Title = title

	// 这些字段每次都先清空，再由 NFO 重新填充。
	md.ContentRating = ""
	md.Summary = ""
	md.Writers, md.Directors = nil, nil
	md.Genres, md.Countries, md.Collections = nil, nil, nil
	md.Roles = nil

	try := func(field string, fn func() error) {
		if err := fn(); err != nil {
			a.log.Debug("Skipping field", "field", field, "nfo", nfoPath, "error", err)
		}
	}

	try("sorttitle", assign(&md.SortTitle, doc.SortTitle))
	try("year", assignPtr(&md.Year, doc.Year))
	try("originaltitle", assign(&md.OriginalTitle, doc.OriginalTitle))
	try("mpaa", assign(&md.ContentRating, doc.ContentRating))
	try("studio", assign(&md.Studio, doc.Studio))
	try("releasedate", assignPtr(&md.ReleaseDate, doc.ReleaseDate))
	try("tagline", assign(&md.Tagline, doc.Tagline))
	try("plot", assign(&md.Summary, doc.Plot))
	try("rating", assignPtr(&md.Rating, doc.Rating))
	try("credits", func() (err error) {
		md.Writers, err = doc.Writers()
		return err
	})
	try("director", func() (err error) {
		md.Directors, err = doc.Directors()
		return err
	})
	try("genre", addEach(md.AddGenre, doc.Genres))
	try("country", addEach(md.AddCountry, doc.Countries))
	try("set", addEach(md.AddCollection, doc.Collections))
	try("runtime", assignPtr(&md.DurationMs, doc.Duration))
	try("actor", func() error {
		md.Roles = doc.Cast()
		return nil
	})

	LogSummary(a.log, md)
	return nil
}

// open 查找、读取、清洗并解析 NFO；失败时已记录 error 日志。
func (a *Agent) open(videoPath string) (*nfo.Document, string, error) {
	a.log.Debug("media file", "path", videoPath)
	a.log.Debug("folder path", "path", filepath.Dir(videoPath))

	nfoPath, ok := sidecar.Resolve(videoPath, sidecar.KindNFO, a.log)
	if !ok {
		return nil, "", &Error{Code: domain.ErrCodeNFONotFound, Path: videoPath, Err: ErrNoNFO}
	}

	raw, err := a.loader.Load(nfoPath)
	if err != nil {
		a.log.Error("ERROR: Can't read nfo. Aborting!", "nfo", nfoPath, "error", err)
		return nil, nfoPath, &Error{Code: domain.ErrCodeIOFailed, Path: nfoPath, Err: err}
	}

	text, err := nfo.Sanitize(string(raw))
	if err != nil {
		a.log.Error("ERROR: No <movie> tag in nfo. Aborting!", "nfo", nfoPath)
		return nil, nfoPath, &Error{Code: domain.ErrCodeNotMovie, Path: nfoPath, Err: err}
	}

	doc, err := nfo.Parse(text)
	if err != nil {
		a.log.Error("ERROR: Can't parse XML in nfo. Aborting!", "nfo", nfoPath, "error", err)
		return nil, nfoPath, &Error{Code: domain.ErrCodeParseFailed, Path: nfoPath, Err: err}
	}
	return doc, nfoPath, nil
}

func (a *Agent) loadImage(videoPath string, kind sidecar.Kind) (string, []byte, bool) {
	p, ok := sidecar.Resolve(videoPath, kind, a.log)
	if !ok {
		return "", nil, false
	}
	b, err := a.loader.Load(p)
	if err != nil {
		a.log.Warn("Failed to load "+kind.String()+" file", "path", p, "error", err)
		return "", nil, false
	}
	return p, b, true
}

func (a *Agent) banner(entry string) {
	a.log.Debug("Entering " + entry + " function")
	a.log.Info(Name + " Version: " + Version)
	if a.prefs.Bool(PrefDebug) {
		a.log.Info("Agents debug logging is enabled!")
	} else {
		a.log.Info("Agents debug logging is disabled!")
	}
}

func assign[T any](dst *T, get func() (T, error)) func() error {
	return func() error {
		v, err := get()
		if err != nil {
			return err
		}
		*dst = v
		return nil
	}
}

func assignPtr[T any](dst **T, get func() (T, error)) func() error {
	return func() error {
		v, err := get()
		if err != nil {
			return err
		}
		*dst = &v
		return nil
	}
}

// addEach 保留出错前已收集的部分（与列表字段一致）。
func addEach(add func(string), get func() ([]string, error)) func() error {
	return func() error {
		items, err := get()
		for _, s := range items {
			add(s)
		}
		return err
	}
}

func intText(v *int) string {
	if v == nil {
		return "None"
	}
	return strconv.Itoa(*v)
}
