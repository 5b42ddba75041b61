package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/John-Robertt/xbmcnfo/internal/agent"
	"github.com/John-Robertt/xbmcnfo/internal/app/run"
	"github.com/John-Robertt/xbmcnfo/internal/config"
	"github.com/John-Robertt/xbmcnfo/internal/domain"
	"github.com/John-Robertt/xbmcnfo/internal/infra/fsx"
)

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

// exitError 携带进程退出码；msg 为空时表示错误已经输出过。
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }

func execute(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)

	err := root.Execute()
	if err == nil {
		return 0
	}
	var ee *exitError
	if errors.As(err, &ee) {
		if ee.msg != "" {
			fmt.Fprintln(stderr, ee.msg)
		}
		return ee.code
	}
	// 其余都是 cobra 的参数错误。
	fmt.Fprintf(stderr, "参数错误：%v\n\n", err)
	_ = root.Usage()
	return 2
}

// globalFlags 是所有子命令共享的 CLI 入口（对应 config.CLIArgs 的可覆盖字段）。
type globalFlags struct {
	debug bool
	lang  string
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	gf := &globalFlags{}

	root := &cobra.Command{
		Use:           "xbmcnfo",
		Short:         "从 XBMC/Kodi .nfo 旁车文件导入电影元数据",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().BoolVar(&gf.debug, "debug", false, "输出调试日志（覆盖配置中的 debug）")
	root.PersistentFlags().StringVar(&gf.lang, "lang", "", "语言代码（ISO 639-1/639-2，例如 en、zh）")

	root.AddCommand(
		newSearchCmd(gf, stdout, stderr),
		newUpdateCmd(gf, stdout, stderr),
		newScanCmd(gf, stdout, stderr),
	)
	return root
}

// cliArgs 把 cobra 的“显式指定”信息转换为 config.CLIArgs。
func cliArgs(cmd *cobra.Command, gf *globalFlags, path string) config.CLIArgs {
	return config.CLIArgs{
		Path:        path,
		Debug:       gf.debug,
		DebugSet:    cmd.Flags().Changed("debug"),
		Language:    gf.lang,
		LanguageSet: cmd.Flags().Changed("lang"),
	}
}

func loadConfig(cli config.CLIArgs) (config.EffectiveConfig, string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return config.EffectiveConfig{}, "", &exitError{code: 1, msg: fmt.Sprintf("读取当前目录失败：%v", err)}
	}
	cwdAbs, _ := filepath.Abs(cwd)
	eff, err := config.LoadEffective(cwd, cli)
	return eff, cwdAbs, err
}

func newScanCmd(gf *globalFlags, stdout, stderr io.Writer) *cobra.Command {
	var apply bool

	cmd := &cobra.Command{
		Use:   "scan [path]",
		Short: "扫描媒体库并导入所有电影的 NFO（默认 dry-run）",
		Long: `扫描 path 下的视频文件，按目录与文件名聚合分段，解析每部电影的 NFO/poster/fanart。

默认 dry-run：只解析与报告，不写任何文件。
--apply：把元数据快照写入 <path>/cache/metadata/<id>.json，并写出 <path>/cache/report.json。

stdout 非 TTY 时只输出一个 RunReport JSON；进度与日志走 stderr。`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			cli := cliArgs(cmd, gf, path)
			cli.Apply = apply
			cli.ApplySet = cmd.Flags().Changed("apply")
			return scanCmd(cli, stdout, stderr)
		},
	}
	cmd.Flags().BoolVar(&apply, "apply", false, "写入缓存与报告（支持 --apply=false 覆盖配置中的 apply=true）")
	return cmd
}

func scanCmd(cli config.CLIArgs, stdout, stderr io.Writer) error {
	eff, cwdAbs, err := loadConfig(cli)
	if err != nil {
		var ee *exitError
		if errors.As(err, &ee) {
			return ee
		}
		emitReport(stdout, stderr, reportForConfigError(cwdAbs, cli, err))
		return &exitError{code: 1}
	}

	progressW, interactive := pickProgressWriter(stdout, stderr)
	var obs run.Observer
	if interactive {
		obs = newProgressUI(progressW)
	}

	log := agent.NewLogger(eff.Prefs(), stderr)
	if interactive && !eff.Debug {
		// 交互终端下 agent 的逐条摘要会淹没进度输出；只保留警告与错误。
		log.SetLevel(hclog.Warn)
	}
	ag := agent.New(agent.Options{Prefs: eff.Prefs(), Logger: log})

	rr := run.ExecuteWithObserver(context.Background(), eff, ag, obs)

	// apply：必须写入 <path>/cache/report.json；dry-run 禁止落盘。
	if eff.Apply {
		if err := writeReportFile(eff.Path, rr); err != nil {
			fmt.Fprintf(stderr, "写入 report.json 失败：%v\n", err)
			emitReport(stdout, stderr, rr)
			return &exitError{code: 1}
		}
	}

	emitReport(stdout, stderr, rr)
	if interactive {
		emitLocations(progressW, eff)
	}
	if rr.Summary.Failed == 0 {
		return nil
	}
	return &exitError{code: 1}
}

func emitReport(stdout, stderr io.Writer, rr domain.RunReport) {
	if isTTY(stdout) {
		fmt.Fprintf(stdout, "完成：processed=%d skipped=%d failed=%d\n",
			rr.Summary.Processed, rr.Summary.Skipped, rr.Summary.Failed,
		)
		for _, it := range rr.Items {
			if it.Status != domain.StatusFailed {
				continue
			}
			key := it.Video
			if key == "" {
				key = "<config>"
			}
			fmt.Fprintf(stderr, "%s %s: %s\n", key, it.ErrorCode, it.ErrorMsg)
		}
		return
	}

	// stdout 非 TTY：stdout 必须且仅输出一个 RunReport JSON（日志/摘要走 stderr）。
	enc := json.NewEncoder(stdout)
	_ = enc.Encode(rr)
	fmt.Fprintf(stderr, "完成：processed=%d skipped=%d failed=%d\n",
		rr.Summary.Processed, rr.Summary.Skipped, rr.Summary.Failed,
	)
}

func reportForConfigError(cwdAbs string, cli config.CLIArgs, err error) domain.RunReport {
	now := time.Now().UTC()
	rr := domain.RunReport{
		Path:       cwdAbs,
		DryRun:     !(cli.ApplySet && cli.Apply),
		StartedAt:  now,
		FinishedAt: now,
		Items: []domain.ItemResult{{
			Parts:     []string{},
			Status:    domain.StatusFailed,
			ErrorCode: config.Code(err),
			ErrorMsg:  err.Error(),
		}},
	}
	rr.Finalize()
	return rr
}

func writeReportFile(root string, rr domain.RunReport) error {
	b, err := json.MarshalIndent(rr, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	return fsx.WriteFileAtomic(filepath.Join(root, "cache"), "report.json", b)
}

func isTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func pickProgressWriter(stdout, stderr io.Writer) (io.Writer, bool) {
	// 进度输出只在交互终端启用；默认走 stderr（不污染 stdout JSON）。
	if isTTY(stderr) {
		return stderr, true
	}
	// 某些环境（例如仅重定向 stderr）下，stdout 仍是 TTY：退化输出到 stdout。
	if isTTY(stdout) {
		return stdout, true
	}
	return nil, false
}

func emitLocations(w io.Writer, eff config.EffectiveConfig) {
	if w == nil || !eff.Apply {
		return
	}
	fmt.Fprintf(w, "report: %s\n", filepath.Join(eff.Path, "cache", "report.json"))
	fmt.Fprintf(w, "metadata: %s\n", filepath.Join(eff.Path, "cache", "metadata"))
}
