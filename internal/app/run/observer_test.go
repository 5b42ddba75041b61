package run

import (
	"context"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/John-Robertt/xbmcnfo/internal/config"
	"github.com/John-Robertt/xbmcnfo/internal/domain"
)

type recordObserver struct {
	mu sync.Mutex

	startCalls int
	phases     []string
	fields     map[string]map[string]any
	items      []string
}

func (o *recordObserver) OnStart(eff config.EffectiveConfig) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.startCalls++
}

func (o *recordObserver) OnPhaseDone(name string, fields map[string]any, dur time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.phases = append(o.phases, name)
	if o.fields == nil {
		o.fields = map[string]map[string]any{}
	}
	o.fields[name] = fields
}

func (o *recordObserver) OnItemDone(idx, total int, video string, res domain.ItemResult, dur time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.items = append(o.items, video)
}

func (o *recordObserver) OnProgress(done, total, ok, fail, skip, active int, activeVideos []string, elapsed time.Duration) {
	// keepalive 由 CLI 触发；这里无需断言。
}

func TestExecuteWithObserver_EmitsPhaseAndItemEvents(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Heat", "Heat.mkv"), "v")
	writeFile(t, filepath.Join(root, "Heat", "Heat.nfo"), heatNFO)

	obs := &recordObserver{}
	_ = ExecuteWithObserver(context.Background(), config.EffectiveConfig{
		Path:        root,
		Apply:       false,
		Concurrency: 1,
	}, newQuietAgent(), obs)

	if obs.startCalls != 1 {
		t.Fatalf("期望 OnStart 调用 1 次，实际 %d", obs.startCalls)
	}

	wantPhases := []string{"scan", "group", "plan", "exec"}
	if !reflect.DeepEqual(obs.phases, wantPhases) {
		t.Fatalf("阶段事件不符合预期：got=%v want=%v", obs.phases, wantPhases)
	}
	if got := obs.fields["plan"]["nfo"]; got != 1 {
		t.Fatalf("plan 阶段 nfo 统计不符合预期：%v", obs.fields["plan"])
	}
	if len(obs.items) != 1 || obs.items[0] != filepath.Join("Heat", "Heat.mkv") {
		t.Fatalf("条目事件不符合预期：items=%v", obs.items)
	}
}

func TestExecuteWithObserver_NilObserver_SameResultAsExecute(t *testing.T) {
	root := newLibrary(t)

	cfg := config.EffectiveConfig{
		Path:        root,
		Apply:       false,
		Concurrency: 3,
	}

	a := Execute(context.Background(), cfg, newQuietAgent())
	b := ExecuteWithObserver(context.Background(), cfg, newQuietAgent(), nil)

	// 时间字段本身允许有微小差异；对比时归零。
	a.StartedAt, a.FinishedAt = time.Time{}, time.Time{}
	b.StartedAt, b.FinishedAt = time.Time{}, time.Time{}

	if !reflect.DeepEqual(a, b) {
		t.Fatalf("nil observer 不应改变结果：\nExecute=%+v\nWithObs=%+v", a, b)
	}
}
