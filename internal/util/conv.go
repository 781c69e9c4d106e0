package util

import (
	"fmt"
	"strconv"
	"time"
)

// MustParseUint 将字符串转换为无符号整数，解析失败时返回 0
func MustParseUint(s string) uint {
	id, _ := strconv.ParseUint(s, 10, 32)
	return uint(id)
}

// WeekLabel 返回 ISO 周标签，格式 YYYY-WW
func WeekLabel(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-%02d", year, week)
}

// DateUTC 返回 UTC 自然日字符串
func DateUTC(t time.Time) string {
	return t.UTC().Format(DateFormat)
}
