package domain

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// DeriveID 在 NFO 没有外部 id 时，由 (title, year) 生成确定性的 id。
//
// 规则（必须与历史数据保持一致，否则已有媒体库的 id 会漂移）：
// - 输入串 = title + 年份的十进制文本；年份缺失时拼接字面量 "None"
// - 每个码点格式化为至少 3 位的十进制（%03d），拼接后视为一个大整数
// - 大整数对 2^64-1 取模，按 int64 解释（-1 记为 -2），最后取绝对值
//
// 这是去重用的键，不保证无碰撞，也不具备任何密码学性质。
func DeriveID(title string, year *int) string {
	var b strings.Builder
	for _, r := range title + yearText(year) {
		fmt.Fprintf(&b, "%03d", r)
	}

	n, ok := new(big.Int).SetString(b.String(), 10)
	if !ok {
		// title+year 至少包含年份部分，正常不会走到这里。
		return "0"
	}

	mod := new(big.Int).SetUint64(^uint64(0))
	u := new(big.Int).Mod(n, mod).Uint64()
	if u == 0 && n.Sign() != 0 {
		// 非零倍数：历史实现的折叠结果是 ULONG_MAX 而不是 0。
		u = ^uint64(0)
	}
	x := int64(u)
	if x == -1 {
		x = -2
	}
	if x < 0 {
		return strconv.FormatUint(uint64(-(x+1))+1, 10)
	}
	return strconv.FormatInt(x, 10)
}

func yearText(year *int) string {
	if year == nil {
		return "None"
	}
	return strconv.Itoa(*year)
}
