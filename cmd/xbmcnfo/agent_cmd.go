package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/John-Robertt/xbmcnfo/internal/agent"
	"github.com/John-Robertt/xbmcnfo/internal/config"
	"github.com/John-Robertt/xbmcnfo/internal/domain"
	"github.com/John-Robertt/xbmcnfo/internal/infra/imgx"
)

// search/update 模拟宿主对单个视频的一次调用：配置从视频所在目录读取（可选）。

func newSearchCmd(gf *globalFlags, stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "search <video>",
		Short: "读取视频旁的 NFO，输出候选匹配（JSON）",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			video, ag, eff, err := prepareAgent(cmd, gf, args[0], stderr)
			if err != nil {
				return err
			}
			var ms domain.Matches
			if err := ag.Search(video, eff.Language, &ms); err != nil {
				return agentFailure(err)
			}
			return writeJSON(stdout, ms)
		},
	}
}

// updateOutput 是 update 命令的输出：元数据本身 + 图片的探测信息（不输出字节）。
type updateOutput struct {
	Metadata domain.Metadata `json:"metadata"`
	Posters  []imageOutput   `json:"posters"`
	Art      []imageOutput   `json:"art"`
}

type imageOutput struct {
	Path string `json:"path"`
	Size int    `json:"size"`
	imgx.Info
	ProbeError string `json:"probe_error,omitempty"`
}

func newUpdateCmd(gf *globalFlags, stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "update <video>",
		Short: "读取视频旁的 NFO 与图片，输出填充后的元数据（JSON）",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			video, ag, _, err := prepareAgent(cmd, gf, args[0], stderr)
			if err != nil {
				return err
			}

			// 宿主先 search 得到 id，再以该 id 建立空记录；search 失败不阻止图片导入。
			var ms domain.Matches
			md := domain.Metadata{}
			if err := ag.Search(video, "", &ms); err == nil && len(ms) > 0 {
				md.ID = ms[0].ID
			}

			updateErr := ag.Update(video, &md)
			out := updateOutput{
				Metadata: md,
				Posters:  describeImages(md.Posters),
				Art:      describeImages(md.Art),
			}
			if err := writeJSON(stdout, out); err != nil {
				return err
			}
			if updateErr != nil {
				return agentFailure(updateErr)
			}
			return nil
		},
	}
}

func prepareAgent(cmd *cobra.Command, gf *globalFlags, video string, stderr io.Writer) (string, *agent.Agent, config.EffectiveConfig, error) {
	abs, err := filepath.Abs(video)
	if err != nil {
		return "", nil, config.EffectiveConfig{}, &exitError{code: 2, msg: fmt.Sprintf("非法路径：%v", err)}
	}
	eff, _, err := loadConfig(cliArgs(cmd, gf, filepath.Dir(abs)))
	if err != nil {
		var ee *exitError
		if errors.As(err, &ee) {
			return "", nil, config.EffectiveConfig{}, ee
		}
		return "", nil, config.EffectiveConfig{}, &exitError{code: 1, msg: fmt.Sprintf("%s: %v", config.Code(err), err)}
	}
	ag := agent.New(agent.Options{
		Prefs:  eff.Prefs(),
		Logger: agent.NewLogger(eff.Prefs(), stderr),
	})
	return abs, ag, eff, nil
}

// agentFailure 把 agent 的致命错误转成退出码 1；详细信息已由 agent 日志输出。
func agentFailure(err error) error {
	code := agent.Code(err)
	if code == "" {
		code = domain.ErrCodeIOFailed
	}
	return &exitError{code: 1, msg: fmt.Sprintf("%s: %v", code, err)}
}

func describeImages(m map[string][]byte) []imageOutput {
	out := make([]imageOutput, 0, len(m))
	for p, b := range m {
		img := imageOutput{Path: p, Size: len(b)}
		info, err := imgx.Probe(b)
		if err != nil {
			img.ProbeError = err.Error()
		} else {
			img.Info = info
		}
		out = append(out, img)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return &exitError{code: 1, msg: fmt.Sprintf("输出 JSON 失败：%v", err)}
	}
	return nil
}
