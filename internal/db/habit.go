package db

import (
	"time"

	"gorm.io/gorm"
)

// Habit 定义了习惯模型
// 频率表示“每 FrequencyPeriod 完成 FrequencyDays 次”，period 仅支持 week/month
// HabitType 区分 check/amount/time 三类习惯，数量/时长类携带 AmountTarget 与 Units
// StreakTarget/OverallTarget 只是展示用的目标，不做强制约束
// OldestLogDate 缓存最早打卡日期，用于完成率从习惯生效日起算
type Habit struct {
	gorm.Model
	UserID          uint `gorm:"index"`
	User            User
	Label           string
	Color           string
	HabitType       string
	FrequencyDays   int
	FrequencyPeriod string
	StreakTarget    int
	OverallTarget   int
	AmountTarget    float64
	Units           string
	OldestLogDate   *time.Time
	Logs            []HabitLog `gorm:"constraint:OnDelete:CASCADE"`
}

// HabitLog 记录习惯单日打卡
// HabitID + LogDate 唯一索引保证每天至多一条，实现幂等打卡
// AmountTarget 冻结打卡当日生效的目标值，习惯目标后续调整不影响历史
// IsManuallyOptional 是用户手动豁免当日，与分类器推导的可选状态相互独立
type HabitLog struct {
	gorm.Model
	HabitID             uint      `gorm:"index;index:idx_habit_log_unique,unique"`
	LogDate             time.Time `gorm:"index:idx_habit_log_unique,unique"`
	PercentageCompleted int
	Amount              float64
	AmountTarget        float64
	IsManuallyOptional  bool
	Note                string
	Source              string
}
