package habit

import (
	"math"
	"slices"
	"time"
)

// CalculateLogsStatus 根据频率目标推导每一天的必做/可选状态。
// 输入日志可以无序且稀疏；只有 Amount 为正的记录视为真实打卡，
// 没有任何真实打卡时返回空结果。now 决定“今天”，相同输入与相同 now
// 必然得到相同输出；随着日期推进，当前周期内历史日期的标记允许变化。
func CalculateLogsStatus(logs []Log, freq Frequency, now time.Time) []Log {
	real := make([]Log, 0, len(logs))
	for _, log := range logs {
		if log.Amount > 0 {
			real = append(real, log)
		}
	}
	if len(real) == 0 {
		return nil
	}

	sorted := SortLogsByDate(real)
	today := StartOfDay(now)
	dense := FillMissingDays(sorted, sorted[0].Date, today)

	// 目标覆盖整个周期即每日习惯，每一天都是必做日，无需再划分
	if freq.IsDaily() {
		return dense
	}

	classified := make([]Log, 0, len(dense))
	for _, bucket := range GroupLogsByPeriod(dense, freq.Period) {
		classified = append(classified, classifyBucket(bucket.Logs, freq, today)...)
	}
	return classified
}

// classifyBucket 对单个周期分组做必做/可选划分。
func classifyBucket(days []Log, freq Frequency, today time.Time) []Log {
	if len(days) == 0 {
		return days
	}

	// 进行中的周期补齐到自然周期末尾，让间隔计算覆盖还没到来的日子；
	// 超出今天的日期只透传，不参与标记
	if IsSameDay(days[len(days)-1].Date, today) {
		days = FillMissingDays(days, days[0].Date, periodEnd(today, freq.Period))
	}

	completed := 0
	for _, day := range days {
		if day.Completed() {
			completed++
		}
	}

	// 没有任何完成记录时不产生可选日：尚无完成量可供宽减
	if completed == 0 {
		return days
	}

	adjusted := adjustedTarget(days[0].Date, freq)

	// 目标已达成，本周期不再欠账，剩余未完成日全部转为可选
	if completed >= adjusted {
		out := slices.Clone(days)
		for i := range out {
			if !out[i].Completed() && !out[i].Date.After(today) {
				out[i].IsOptional = true
			}
		}
		return out
	}

	return spreadNecessaryDays(days, adjusted, completed, today)
}

func periodEnd(t time.Time, period Period) time.Time {
	if period == PeriodMonth {
		return EndOfMonth(t)
	}
	return EndOfWeek(t)
}

// adjustedTarget 针对周期中途才开始的首个分组，按剩余天数比例折算目标次数。
// 完整分组（从周期首日开始）直接沿用配置目标。
func adjustedTarget(firstDay time.Time, freq Frequency) int {
	length := freq.Period.Length()

	var remaining int
	if freq.Period == PeriodMonth {
		remaining = length - (firstDay.Day() - 1)
	} else {
		weekday := int(firstDay.Weekday())
		if weekday == 0 {
			weekday = 7
		}
		remaining = length - (weekday - 1)
	}

	if remaining >= length {
		return freq.Days
	}
	if remaining < 1 {
		remaining = 1
	}
	return int(math.Ceil(float64(freq.Days*remaining) / float64(length)))
}

// spacingState 是摊派必做日时随循环携带的折叠状态。
type spacingState struct {
	remaining          int
	lastCompletedIndex int
}

// spreadNecessaryDays 在未达标的周期里把剩余目标均匀摊到未完成的日子上，
// 其余未完成日标记为可选。锚点跟随最近一次完成日漂移，使必做日大致等距。
// 间隔取模公式沿用线上行为，周期边界附近可能出现不均匀分布，属已知启发式。
func spreadNecessaryDays(days []Log, target, completed int, today time.Time) []Log {
	length := len(days)
	spacing := int(math.Round(float64(length) / float64(target)))
	state := spacingState{remaining: target - completed}

	out := slices.Clone(days)
	for i := range out {
		if out[i].Completed() {
			state.lastCompletedIndex = i
			continue
		}

		divisor := state.lastCompletedIndex + spacing + 1
		if limit := length - 1; divisor > limit {
			divisor = limit
		}

		if state.remaining > 0 && divisor > 0 && (i+1)%divisor == 0 {
			state.remaining--
			state.lastCompletedIndex = i
			continue
		}

		if !out[i].Date.After(today) {
			out[i].IsOptional = true
		}
	}
	return out
}
