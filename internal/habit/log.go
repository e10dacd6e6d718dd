package habit

import (
	"slices"
	"time"
)

// Period 表示频率目标的统计周期。
type Period string

const (
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

const (
	weekLength  = 7
	monthLength = 30
)

// Length 返回周期的标称天数，月按 30 天估算。
func (p Period) Length() int {
	if p == PeriodMonth {
		return monthLength
	}
	return weekLength
}

// Valid 判断周期取值是否受支持。
func (p Period) Valid() bool {
	return p == PeriodWeek || p == PeriodMonth
}

// Frequency 表示“每个周期完成 Days 次”的目标配置。
type Frequency struct {
	Days   int
	Period Period
}

// IsDaily 当目标次数覆盖整个周期时按每日习惯处理，跳过必做/可选划分。
func (f Frequency) IsDaily() bool {
	return f.Days >= f.Period.Length()
}

// Log 表示某个习惯在某一天的打卡观测。
// IsOptional 由分类器推导得到，不由用户直接录入；
// IsArtificial 标记补齐缺失日期时合成的占位记录，统计真实打卡量时必须剔除。
type Log struct {
	Date                time.Time
	PercentageCompleted int
	Amount              float64
	AmountTarget        float64
	IsOptional          bool
	IsManuallyOptional  bool
	IsArtificial        bool
	Note                string
}

// Completed 判断该日是否达成当日目标。
func (l Log) Completed() bool {
	return l.PercentageCompleted >= 100
}

// Streak 表示一段连续（或被可选日衔接）的完成区间。
// LastOptionalLogDate 记录区间末尾由可选日延伸到的日期，可选日不计入 NumberOfDays。
type Streak struct {
	StartDate           time.Time
	EndDate             time.Time
	LastOptionalLogDate time.Time
	NumberOfDays        int
}

// SortLogsByDate 返回按日期升序排列的副本，原切片不被修改。
func SortLogsByDate(logs []Log) []Log {
	sorted := slices.Clone(logs)
	slices.SortStableFunc(sorted, func(a, b Log) int {
		return a.Date.Compare(b.Date)
	})
	return sorted
}
