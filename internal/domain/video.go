package domain

// VideoFile 描述一次扫描得到的视频文件（只做 stat，不读内容）。
//
// 不变量：
// - AbsPath 必须是 clean + absolute
// - BaseName 是去掉扩展名与 CD/Part 分段标记后的文件名，同一部电影的多个分段共享它
type VideoFile struct {
	AbsPath  string
	RelPath  string
	BaseName string
	Ext      string // 小写，例如 ".mkv"
	Size     int64
	ModUnix  int64
}
