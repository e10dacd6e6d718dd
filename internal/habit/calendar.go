package habit

import (
	"math"
	"time"
)

const dateKeyFormat = "2006-01-02"

// StartOfDay 将时间截断到当天零点（本地时区语义，保留原始 Location）。
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// StartOfWeek 返回所在周的周一零点。
func StartOfWeek(t time.Time) time.Time {
	day := StartOfDay(t)
	weekday := int(day.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return day.AddDate(0, 0, -(weekday - 1))
}

// EndOfWeek 返回所在周的周日零点。
func EndOfWeek(t time.Time) time.Time {
	return StartOfWeek(t).AddDate(0, 0, 6)
}

// StartOfMonth 返回所在月份第一天零点。
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// EndOfMonth 返回所在月份最后一天零点。
func EndOfMonth(t time.Time) time.Time {
	return StartOfMonth(t).AddDate(0, 1, -1)
}

// StartOfYear 返回当年 1 月 1 日零点。
func StartOfYear(t time.Time) time.Time {
	return time.Date(t.Year(), 1, 1, 0, 0, 0, 0, t.Location())
}

// EndOfYear 返回当年 12 月 31 日零点。
func EndOfYear(t time.Time) time.Time {
	return time.Date(t.Year(), 12, 31, 0, 0, 0, 0, t.Location())
}

// EachDay 返回 [start, end] 闭区间内每天的零点序列，start 晚于 end 时返回空。
func EachDay(start, end time.Time) []time.Time {
	first := StartOfDay(start)
	last := StartOfDay(end)
	if first.After(last) {
		return nil
	}

	days := make([]time.Time, 0, DiffDays(first, last)+1)
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		days = append(days, day)
	}
	return days
}

// IsSameDay 判断两个时间是否落在同一个自然日。
func IsSameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// DiffDays 返回 from 到 to 的自然日差值，to 在后为正。
// 先截断到零点再取整，避免夏令时偏移造成的小时级误差。
func DiffDays(from, to time.Time) int {
	delta := StartOfDay(to).Sub(StartOfDay(from))
	return int(math.Round(delta.Hours() / 24))
}

// WeekNumber 返回 ISO 周序号（周一为一周起点）。
func WeekNumber(t time.Time) int {
	_, week := t.ISOWeek()
	return week
}

func dateKey(t time.Time) string {
	return t.Format(dateKeyFormat)
}
