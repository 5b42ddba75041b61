package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/John-Robertt/xbmcnfo/internal/domain"
	"github.com/John-Robertt/xbmcnfo/internal/infra/fsx"
)

// Store 提供 <path>/cache/metadata/ 下的元数据快照读写。
//
// 约束：
// - dry-run：只允许读（ReadOnly=true）
// - apply：允许写（ReadOnly=false）
// - 快照只是 apply 结果的落盘副本；导入流程本身从不读取它
type Store struct {
	Root     string // <path>（扫描根目录）
	ReadOnly bool
}

var ErrReadOnly = errors.New("cache: read-only")

func New(root string, readOnly bool) Store {
	return Store{
		Root:     filepath.Clean(strings.TrimSpace(root)),
		ReadOnly: readOnly,
	}
}

// Dir 返回缓存根目录（scan 会排除该目录，避免把快照当作媒体内容）。
func (s Store) Dir() string { return filepath.Join(s.Root, "cache") }

// MetadataPath 返回某个 id 的快照绝对路径。
func (s Store) MetadataPath(id string) (string, error) {
	id, err := cleanID(id)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.Dir(), "metadata", id+".json"), nil
}

// ReadMetadata 读取快照；不存在时返回 ok=false 且 err=nil。
func (s Store) ReadMetadata(id string) (domain.Metadata, bool, error) {
	path, err := s.MetadataPath(id)
	if err != nil {
		return domain.Metadata{}, false, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.Metadata{}, false, nil
		}
		return domain.Metadata{}, false, err
	}
	var md domain.Metadata
	if err := json.Unmarshal(b, &md); err != nil {
		return domain.Metadata{}, false, fmt.Errorf("解析缓存失败：%s：%w", path, err)
	}
	return md, true, nil
}

// WriteMetadata 以 md.ID 为 key 原子覆盖写入快照（图片字节不落盘）。
func (s Store) WriteMetadata(md domain.Metadata) error {
	if s.ReadOnly {
		return ErrReadOnly
	}
	id, err := cleanID(md.ID)
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(md, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	return fsx.WriteFileAtomic(filepath.Join(s.Dir(), "metadata"), id+".json", b)
}

var idRE = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

func cleanID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("id 不能为空")
	}
	// 最小约束：避免路径穿越；id 来自 tmdbid 或派生数字串。
	if !idRE.MatchString(id) {
		return "", fmt.Errorf("非法 id：%q", id)
	}
	return id, nil
}
