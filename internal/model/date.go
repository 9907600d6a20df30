package model

import (
	"fmt"
	"time"

	pkgerrors "sargenteacao/backend/pkg/errors"
)

// DateLayout 日期的标准文本格式
const DateLayout = "2006-01-02"

// DateOf 截断为日历日期（UTC 零点），保留 t 自身时区下的年月日
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate 解析 yyyy-mm-dd，格式错误返回 ErrInvalidArgument
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: 日期格式错误 %q，应为 yyyy-mm-dd", pkgerrors.ErrInvalidArgument, s)
	}
	return DateOf(t), nil
}

// FormatDate 格式化为 yyyy-mm-dd
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// DaysBetween 两个日历日期相差的天数（to - from）
func DaysBetween(from, to time.Time) int {
	return int(DateOf(to).Sub(DateOf(from)).Hours() / 24)
}
