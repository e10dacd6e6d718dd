package habit

import (
	"cmp"
	"slices"
	"time"
)

// DefaultTopStreaks 是最佳连击榜单的默认条数。
const DefaultTopStreaks = 6

// CalculateStreak 以简单连续日规则计算当前与最长连击。
// 输入应只包含完成日；乱序输入会先按日期升序排序。
// 最近一次完成落在今天或昨天时连击才算存续，否则当前连击归零。
func CalculateStreak(completedLogs []Log, now time.Time) (current, longest int) {
	if len(completedLogs) == 0 {
		return 0, 0
	}

	sorted := SortLogsByDate(completedLogs)

	run := 1
	longest = 1
	for i := 1; i < len(sorted); i++ {
		if DiffDays(sorted[i-1].Date, sorted[i].Date) == 1 {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 1
		}
	}

	today := StartOfDay(now)
	last := sorted[len(sorted)-1].Date
	if IsSameDay(last, today) || IsSameDay(last, today.AddDate(0, 0, -1)) {
		current = run
	}
	return current, longest
}

// CalculateBestStreaks 扫描整段日志并构造所有可被可选日衔接的完成区间。
// 可选的未完成日不打断进行中的连击，只延长区间日期、不计入 NumberOfDays；
// 可选日也不能开启新连击。相邻日期相差两天以上时连击必然断开。
func CalculateBestStreaks(logs []Log) []Streak {
	sorted := SortLogsByDate(logs)

	var streaks []Streak
	var active *Streak

	closeActive := func() {
		if active != nil && active.NumberOfDays > 0 {
			streaks = append(streaks, *active)
		}
		active = nil
	}

	for _, log := range sorted {
		day := StartOfDay(log.Date)

		if active != nil {
			lastDay := active.EndDate
			if active.LastOptionalLogDate.After(lastDay) {
				lastDay = active.LastOptionalLogDate
			}
			if DiffDays(lastDay, day) > 1 {
				closeActive()
			}
		}

		switch {
		case log.Completed():
			if active == nil {
				active = &Streak{StartDate: day, EndDate: day, NumberOfDays: 1}
			} else {
				active.EndDate = day
				active.NumberOfDays++
			}
		case (log.IsOptional || log.IsManuallyOptional) && active != nil:
			active.LastOptionalLogDate = day
		default:
			closeActive()
		}
	}

	closeActive()
	return streaks
}

// TopStreaks 返回按天数降序的前 limit 个连击区间。
// 天数相同的区间保持发现顺序；limit 不大于零时取默认值。
func TopStreaks(streaks []Streak, limit int) []Streak {
	if limit <= 0 {
		limit = DefaultTopStreaks
	}

	ranked := slices.Clone(streaks)
	slices.SortStableFunc(ranked, func(a, b Streak) int {
		return cmp.Compare(b.NumberOfDays, a.NumberOfDays)
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// Summary 汇总连击相关的展示数据。
type Summary struct {
	CurrentStreak    int
	LongestStreak    int
	OverallCompleted int
}

// StreakInfo 从整段日志与最佳连击列表推导当前连击、最长连击与累计完成次数。
// 当前连击取完成区间覆盖到昨天的那一段；都覆盖不到时，今天已完成记 1，否则记 0。
func StreakInfo(logs []Log, best []Streak, now time.Time) Summary {
	var summary Summary

	today := StartOfDay(now)
	yesterday := today.AddDate(0, 0, -1)

	todayCompleted := false
	for _, log := range logs {
		if !log.Completed() {
			continue
		}
		summary.OverallCompleted++
		if IsSameDay(log.Date, today) {
			todayCompleted = true
		}
	}

	for _, streak := range best {
		if streak.NumberOfDays > summary.LongestStreak {
			summary.LongestStreak = streak.NumberOfDays
		}
		if !streak.StartDate.After(yesterday) && !streak.EndDate.Before(yesterday) {
			summary.CurrentStreak = streak.NumberOfDays
		}
	}

	if summary.CurrentStreak == 0 && todayCompleted {
		summary.CurrentStreak = 1
	}
	return summary
}
