package planner

import (
	"fmt"
	"sort"

	"github.com/hashicorp/go-hclog"

	"github.com/John-Robertt/xbmcnfo/internal/domain"
	"github.com/John-Robertt/xbmcnfo/internal/sidecar"
)

// PlanItem 基于 WorkItem 生成确定性的执行计划：代表分段 + 已解析的 sidecar（只做 stat，不读内容）。
//
// 代表分段是 FileIdx[0]（GroupByBase 已按 RelPath 排序）；sidecar 查找规则与 agent 完全一致。
func PlanItem(files []domain.VideoFile, item domain.WorkItem, log hclog.Logger) (domain.ItemPlan, error) {
	if len(item.FileIdx) == 0 {
		return domain.ItemPlan{}, fmt.Errorf("空 WorkItem：%s", item.BaseName)
	}

	parts := make([]string, 0, len(item.FileIdx))
	for _, idx := range item.FileIdx {
		if idx < 0 || idx >= len(files) {
			return domain.ItemPlan{}, fmt.Errorf("非法 file index：%d", idx)
		}
		parts = append(parts, files[idx].AbsPath)
	}

	video := parts[0]
	var sc domain.Sidecars
	sc.NFO, _ = sidecar.Resolve(video, sidecar.KindNFO, log)
	sc.Poster, _ = sidecar.Resolve(video, sidecar.KindPoster, log)
	sc.Fanart, _ = sidecar.Resolve(video, sidecar.KindFanart, log)

	return domain.ItemPlan{
		Video:    video,
		Parts:    parts,
		Sidecars: sc,
	}, nil
}

// SortPlans 让上层在需要时可显式保证稳定顺序（而不是依赖 map 遍历顺序）。
func SortPlans(plans []domain.ItemPlan) {
	sort.Slice(plans, func(i, j int) bool { return plans[i].Video < plans[j].Video })
}
