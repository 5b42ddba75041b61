package run

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/John-Robertt/xbmcnfo/internal/agent"
	"github.com/John-Robertt/xbmcnfo/internal/app"
	"github.com/John-Robertt/xbmcnfo/internal/app/planner"
	"github.com/John-Robertt/xbmcnfo/internal/config"
	"github.com/John-Robertt/xbmcnfo/internal/domain"
	"github.com/John-Robertt/xbmcnfo/internal/infra/cache"
	"github.com/John-Robertt/xbmcnfo/internal/scan"
)

// Execute 执行一次 run（dry-run/apply），并返回对外稳定的 RunReport。
// 该函数尽量把错误“降级”为 item 级失败（单条失败不影响其他）。
func Execute(ctx context.Context, eff config.EffectiveConfig, ag *agent.Agent) domain.RunReport {
	return ExecuteWithObserver(ctx, eff, ag, nil)
}

// ExecuteWithObserver 与 Execute 相同，但允许传入 Observer 以输出进度/阶段信息（由上层决定是否启用）。
//
// 每部电影按宿主的方式驱动 agent：先 Search 得到 id，再以该 id 建立空记录调用 Update。
// dry-run 与 apply 的差别只在于 apply 会把结果写入 <path>/cache/metadata/<id>.json。
func ExecuteWithObserver(ctx context.Context, eff config.EffectiveConfig, ag *agent.Agent, obs Observer) domain.RunReport {
	started := time.Now().UTC()

	if obs != nil {
		obs.OnStart(eff)
	}

	rr := domain.RunReport{
		Path:      eff.Path,
		DryRun:    !eff.Apply,
		StartedAt: started,
		Items:     make([]domain.ItemResult, 0, 128),
	}

	store := cache.New(eff.Path, !eff.Apply)

	scanStarted := time.Now()
	files, err := scan.ScanVideos(eff.Path, eff.ExcludeDirs)
	if err != nil {
		rr.Items = append(rr.Items, syntheticFailed(domain.ErrCodeIOFailed, fmt.Sprintf("扫描失败：%v", err)))
		rr.FinishedAt = time.Now().UTC()
		rr.Finalize()
		return rr
	}
	scanDur := time.Since(scanStarted)

	groupStarted := time.Now()
	items := app.GroupByBase(files)
	groupDur := time.Since(groupStarted)

	if obs != nil {
		obs.OnPhaseDone("scan", map[string]any{
			"files": len(files),
		}, scanDur)
		obs.OnPhaseDone("group", map[string]any{
			"movies": len(items),
		}, groupDur)
	}

	planStarted := time.Now()
	plans := make([]domain.ItemPlan, 0, len(items))
	for _, it := range items {
		// 规划阶段只关心结果，探测日志由 agent 在执行阶段输出。
		p, e := planner.PlanItem(files, it, hclog.NewNullLogger())
		if e != nil {
			rr.Items = append(rr.Items, failedPlanItem(eff.Path, it, files, domain.ErrCodeIOFailed, fmt.Sprintf("规划失败：%v", e)))
			continue
		}
		plans = append(plans, p)
	}
	planner.SortPlans(plans)
	planDur := time.Since(planStarted)

	if obs != nil {
		var withNFO, withPoster, withFanart, parts int
		for i := range plans {
			p := plans[i]
			if p.Sidecars.NFO != "" {
				withNFO++
			}
			if p.Sidecars.Poster != "" {
				withPoster++
			}
			if p.Sidecars.Fanart != "" {
				withFanart++
			}
			parts += len(p.Parts)
		}

		obs.OnPhaseDone("plan", map[string]any{
			"items":  len(plans),
			"nfo":    withNFO,
			"poster": withPoster,
			"fanart": withFanart,
			"parts":  parts,
		}, planDur)
	}

	// 执行阶段：按电影并发（worker pool）；agent 本身无状态，可并发调用。
	workers := eff.Concurrency
	if workers < 1 {
		workers = 1
	}

	if obs != nil {
		obs.OnPhaseDone("exec", map[string]any{
			"workers":     workers,
			"total_items": len(plans),
		}, 0)
	}

	type execResult struct {
		video string
		res   domain.ItemResult
		dur   time.Duration
	}

	jobs := make(chan domain.ItemPlan)
	results := make(chan execResult, len(plans))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range jobs {
				oneStarted := time.Now()
				r := execOne(ctx, eff, p, ag, store)
				results <- execResult{
					video: r.Video,
					res:   r,
					dur:   time.Since(oneStarted),
				}
			}
		}()
	}

	go func() {
		for _, p := range plans {
			jobs <- p
		}
		close(jobs)
		wg.Wait()
		close(results)
	}()

	done := 0
	for it := range results {
		done++
		rr.Items = append(rr.Items, it.res)
		if obs != nil {
			obs.OnItemDone(done, len(plans), it.video, it.res, it.dur)
		}
	}

	rr.FinishedAt = time.Now().UTC()
	rr.Finalize()
	return rr
}

func execOne(ctx context.Context, eff config.EffectiveConfig, p domain.ItemPlan, ag *agent.Agent, store cache.Store) domain.ItemResult {
	item := domain.ItemResult{
		Video:    relTo(eff.Path, p.Video),
		Parts:    relAll(eff.Path, p.Parts),
		Sidecars: relSidecars(eff.Path, p.Sidecars),
		Status:   domain.StatusProcessed, // 失败时覆盖
	}

	if !p.NeedUpdate() {
		item.Status = domain.StatusSkipped
		item.ErrorCode = domain.ErrCodeNFONotFound
		item.ErrorMsg = "未找到 NFO 文件"
		return item
	}
	if err := ctx.Err(); err != nil {
		fail(&item, domain.ErrCodeIOFailed, fmt.Sprintf("已取消：%v", err))
		return item
	}

	var matches domain.Matches
	if err := ag.Search(p.Video, eff.Language, &matches); err != nil {
		fail(&item, agentCode(err), err.Error())
		return item
	}
	m := matches[0]
	item.ID = m.ID
	item.Title = m.Name
	if m.Year != nil {
		item.Year = *m.Year
	}

	md := domain.Metadata{ID: m.ID}
	if err := ag.Update(p.Video, &md); err != nil {
		fail(&item, agentCode(err), err.Error())
		return item
	}

	// dry-run：只做解析验证；不落盘。
	if !eff.Apply {
		return item
	}
	if err := store.WriteMetadata(md); err != nil {
		fail(&item, domain.ErrCodeIOFailed, fmt.Sprintf("写入缓存失败：%v", err))
		return item
	}
	return item
}

func fail(item *domain.ItemResult, code, msg string) {
	item.Status = domain.StatusFailed
	item.ErrorCode = code
	item.ErrorMsg = msg
}

func agentCode(err error) string {
	if c := agent.Code(err); c != "" {
		return c
	}
	return domain.ErrCodeIOFailed
}

func failedPlanItem(root string, it domain.WorkItem, files []domain.VideoFile, code, msg string) domain.ItemResult {
	out := domain.ItemResult{
		Status:    domain.StatusFailed,
		ErrorCode: code,
		ErrorMsg:  msg,
		Parts:     make([]string, 0, len(it.FileIdx)),
	}
	for _, idx := range it.FileIdx {
		if idx < 0 || idx >= len(files) {
			continue
		}
		out.Parts = append(out.Parts, files[idx].RelPath)
	}
	if len(out.Parts) > 0 {
		out.Video = out.Parts[0]
	} else {
		out.Video = relTo(root, filepath.Join(it.Dir, it.BaseName))
	}
	return out
}

func syntheticFailed(code, msg string) domain.ItemResult {
	return domain.ItemResult{
		Status:    domain.StatusFailed,
		ErrorCode: code,
		ErrorMsg:  msg,
		Parts:     []string{},
	}
}

// relTo 尽量输出相对路径；失败则输出原始 abs（至少可追溯）。空串保持为空。
func relTo(root, p string) string {
	if p == "" {
		return ""
	}
	if rel, err := filepath.Rel(root, p); err == nil {
		return rel
	}
	return p
}

func relAll(root string, ps []string) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, relTo(root, p))
	}
	return out
}

func relSidecars(root string, s domain.Sidecars) domain.Sidecars {
	return domain.Sidecars{
		NFO:    relTo(root, s.NFO),
		Poster: relTo(root, s.Poster),
		Fanart: relTo(root, s.Fanart),
	}
}
