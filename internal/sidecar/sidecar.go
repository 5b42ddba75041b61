// Package sidecar 负责为一个视频文件定位它的 sidecar 文件（.nfo / poster / fanart）。
//
// 查找只依赖文件系统上“是否存在”，不读取内容；找不到是正常结果，不是错误。
package sidecar

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/text/cases"

	"github.com/John-Robertt/xbmcnfo/internal/infra/fsx"
)

// Kind 表示要查找的 sidecar 类型。
type Kind int

const (
	KindNFO Kind = iota
	KindPoster
	KindFanart
)

// String 返回日志里使用的类型名。
func (k Kind) String() string {
	switch k {
	case KindNFO:
		return ".nfo"
	case KindPoster:
		return "poster"
	case KindFanart:
		return "fanart"
	default:
		return "unknown"
	}
}

// suffix 是拼接在基础名之后的后缀；generic 是同目录下的通用文件名。
func (k Kind) suffix() string {
	switch k {
	case KindPoster:
		return "-poster.jpg"
	case KindFanart:
		return "-fanart.jpg"
	default:
		return ".nfo"
	}
}

func (k Kind) generic() string {
	switch k {
	case KindPoster:
		return "poster.jpg"
	case KindFanart:
		return "fanart.jpg"
	default:
		return "movie.nfo"
	}
}

func (k Kind) isImage() bool { return k == KindPoster || k == KindFanart }

// 分段标记：-cd1 / - part 2 / -d3 ...（只认结尾的单个数字）。
var partMarkerRE = regexp.MustCompile(`(?is)\s*-\s*(cd|dvd|disc|disk|part|pt|d)\s*[0-9]$`)

// 去掉文件夹名里的括号部分（例如 " (1999)"）。贪婪匹配：第一个 " (" 到最后一个 ")"。
var folderYearRE = regexp.MustCompile(` \(.*\)`)

// relatedDirs 是基础名的三个目录变体（顺序即优先级）。
var relatedDirs = []string{"", "NFO", "nfo"}

// BaseName 去掉扩展名与结尾的分段标记，保留目录部分。
//
// 分段标记剥离两次，用于处理 "-cd1-cd1" 这类重复标记。
func BaseName(videoPath string) string {
	base := strings.TrimSuffix(videoPath, filepath.Ext(videoPath))
	base = partMarkerRE.ReplaceAllString(base, "")
	base = partMarkerRE.ReplaceAllString(base, "")
	return base
}

// MovieNameFromFolder 用所在文件夹名推导电影名，返回 <有效文件夹>/<名字>。
//
// 文件夹名为 VIDEO_TS（DVD 目录结构，不区分大小写）时，父目录成为有效文件夹。
// stripYear=true 时去掉名字里的括号部分。
func MovieNameFromFolder(dir string, stripYear bool) string {
	folder := filepath.Clean(dir)
	if isVideoTS(filepath.Base(folder)) {
		folder = filepath.Dir(folder)
	}
	name := filepath.Base(folder)
	if stripYear {
		name = folderYearRE.ReplaceAllString(name, "")
	}
	return filepath.Join(folder, name)
}

func isVideoTS(name string) bool {
	// cases.Caser 不是并发安全的，每次调用单独创建。
	fold := cases.Fold()
	return fold.String(name) == fold.String("VIDEO_TS")
}

// Candidates 返回按优先级排列的候选路径（不访问文件系统）。
//
// 顺序：
// 1) 基础名 + 后缀：同目录、NFO/、nfo/
// 2) 文件夹名（去掉年份）+ 后缀
// 3) 文件夹名（原样）+ 后缀
// 4) 同目录通用文件名（movie.nfo / poster.jpg / fanart.jpg）
// 5) 仅图片：以上所有 .jpg 候选的 .png 变体，追加在末尾
func Candidates(videoPath string, kind Kind) []string {
	dir, file := filepath.Split(videoPath)
	suffix := kind.suffix()

	out := make([]string, 0, 12)
	for _, sub := range relatedDirs {
		out = append(out, BaseName(filepath.Join(dir, sub, file))+suffix)
	}
	folder := filepath.Clean(dir)
	out = append(out,
		MovieNameFromFolder(folder, true)+suffix,
		MovieNameFromFolder(folder, false)+suffix,
		filepath.Join(folder, kind.generic()),
	)

	if kind.isImage() {
		n := len(out)
		for _, p := range out[:n] {
			out = append(out, strings.TrimSuffix(p, ".jpg")+".png")
		}
	}
	return out
}

// Resolve 返回第一个存在且不是目录的候选路径。
//
// KindNFO 在所有候选都未命中时，最后尝试目录里第一个 *.nfo 文件（按文件名排序）。
// 每次探测记 debug；命中记 info；未命中记 info 并返回 ok=false。
func Resolve(videoPath string, kind Kind, log hclog.Logger) (string, bool) {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	cands := Candidates(videoPath, kind)
	if kind == KindNFO {
		dir := filepath.Dir(videoPath)
		if p, ok := fsx.FirstWithSuffix(dir, ".nfo"); ok {
			cands = append(cands, p)
		} else {
			log.Debug("No NFO file found in folder", "dir", dir)
		}
	}

	for _, p := range cands {
		log.Debug("Trying", "path", p)
		if fsx.IsFile(p) {
			log.Info("Found "+kind.String()+" file", "path", p)
			return p, true
		}
	}
	log.Info("No "+kind.String()+" file found!", "video", videoPath)
	return "", false
}
