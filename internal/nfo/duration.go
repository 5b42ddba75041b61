package nfo

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var leadingDigitsRE = regexp.MustCompile(`^[0-9]+`)

// Duration 返回时长（毫秒）。
//
// 优先 fileinfo/streamdetails/video/durationinseconds（秒），否则 <runtime>（分钟）。
// 两者都只取开头的连续数字。
func (d *Document) Duration() (int64, error) {
	if secs, err := d.streamSeconds(); err == nil {
		return secs * 1000, nil
	}
	t, err := d.text("runtime")
	if err != nil {
		return 0, err
	}
	mins, err := leadingInt(t)
	if err != nil {
		return 0, fmt.Errorf("<runtime>: %w", err)
	}
	return mins * 60 * 1000, nil
}

func (d *Document) streamSeconds() (int64, error) {
	s := d.root
	for _, tag := range []string{"fileinfo", "streamdetails", "video", "durationinseconds"} {
		s = children(s, tag).First()
	}
	t, ok := leadText(s)
	if !ok {
		return 0, fmt.Errorf("<durationinseconds>: %w", ErrNoText)
	}
	return leadingInt(strings.TrimSpace(t))
}

func leadingInt(s string) (int64, error) {
	m := leadingDigitsRE.FindString(s)
	if m == "" {
		return 0, fmt.Errorf("no leading digits in %q", s)
	}
	return strconv.ParseInt(m, 10, 64)
}
