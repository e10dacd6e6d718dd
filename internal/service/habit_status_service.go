package service

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/bulletlog/internal/db"
	"github.com/bulletlog/internal/habit"
	"github.com/maypok86/otter/v2"
	"gorm.io/gorm"
)

const (
	statusCacheSize = 1024
	statusCacheTTL  = time.Hour
)

// HabitStatusService 负责把打卡记录喂给核心计算包并缓存推导结果。
// 缓存键由 (习惯、频率、日志指纹、自然日) 组成，仅是重复请求的优化，
// 永远可以从 (frequency, logs) 重新算出，不作为权威状态持久化。
type HabitStatusService struct {
	db    *gorm.DB
	cache *otter.Cache[string, []habit.Log]
}

// HabitStatusResult 汇总日历渲染所需的推导数据
type HabitStatusResult struct {
	Logs    []habit.Log
	Streaks []habit.Streak
	Summary habit.Summary
}

// HabitChartData 汇总图表所需的聚合序列
type HabitChartData struct {
	Year               int
	MonthlyCompletions [12]int
	MonthlyAverages    [12]float64
	WeeklyAverages     [52]float64
}

// NewHabitStatusService 构造 HabitStatusService
func NewHabitStatusService(gdb *gorm.DB) *HabitStatusService {
	cache := otter.Must(&otter.Options[string, []habit.Log]{
		MaximumSize:      statusCacheSize,
		ExpiryCalculator: otter.ExpiryWriting[string, []habit.Log](statusCacheTTL),
	})

	return &HabitStatusService{db: gdb, cache: cache}
}

// ComputedLogs 返回从最早打卡日到今天的致密日志序列，
// 每天带上分类器推导出的可选标记。结果视为只读。
func (s *HabitStatusService) ComputedLogs(habitID uint, now time.Time) ([]habit.Log, error) {
	h, rows, err := s.loadHabit(habitID)
	if err != nil {
		return nil, err
	}

	key := statusCacheKey(h, rows, now)
	if cached, ok := s.cache.GetIfPresent(key); ok {
		return cached, nil
	}

	computed := habit.CalculateLogsStatus(toEngineLogs(rows), Frequency(*h), now)
	s.cache.Set(key, computed)
	return computed, nil
}

// Status 返回日历与统计卡片所需的完整推导结果
func (s *HabitStatusService) Status(habitID uint, now time.Time) (*HabitStatusResult, error) {
	logs, err := s.ComputedLogs(habitID, now)
	if err != nil {
		return nil, err
	}

	best := habit.CalculateBestStreaks(logs)

	return &HabitStatusResult{
		Logs:    logs,
		Streaks: habit.TopStreaks(best, habit.DefaultTopStreaks),
		Summary: habit.StreakInfo(logs, best, now),
	}, nil
}

// SimpleStreak 只看完成日的朴素连击，用于列表页的轻量展示
func (s *HabitStatusService) SimpleStreak(habitID uint, now time.Time) (current, longest int, err error) {
	_, rows, err := s.loadHabit(habitID)
	if err != nil {
		return 0, 0, err
	}

	completed := make([]habit.Log, 0, len(rows))
	for _, row := range rows {
		if row.PercentageCompleted >= 100 {
			completed = append(completed, habit.Log{Date: row.LogDate, PercentageCompleted: row.PercentageCompleted})
		}
	}

	current, longest = habit.CalculateStreak(completed, now)
	return current, longest, nil
}

// Charts 返回指定年份的月完成数、月平均量与周平均量序列
func (s *HabitStatusService) Charts(habitID uint, year int) (*HabitChartData, error) {
	_, rows, err := s.loadHabit(habitID)
	if err != nil {
		return nil, err
	}

	logs := toEngineLogs(rows)

	return &HabitChartData{
		Year:               year,
		MonthlyCompletions: habit.MonthlyCompletionsPerYear(logs, year),
		MonthlyAverages:    habit.MonthlyAverageAmounts(logs, year),
		WeeklyAverages:     habit.WeeklyAverageAmounts(logs, year),
	}, nil
}

// Invalidate 清空整个推导缓存，打卡或改频率后由调用方触发
func (s *HabitStatusService) Invalidate() {
	s.cache.InvalidateAll()
}

func (s *HabitStatusService) loadHabit(habitID uint) (*db.Habit, []db.HabitLog, error) {
	var h db.Habit
	if err := s.db.First(&h, habitID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrHabitNotFound
		}
		return nil, nil, fmt.Errorf("find habit: %w", err)
	}

	var rows []db.HabitLog
	if err := s.db.Where("habit_id = ?", habitID).
		Order("log_date ASC").
		Find(&rows).Error; err != nil {
		return nil, nil, fmt.Errorf("list habit logs: %w", err)
	}

	return &h, rows, nil
}

func toEngineLogs(rows []db.HabitLog) []habit.Log {
	logs := make([]habit.Log, 0, len(rows))
	for _, row := range rows {
		logs = append(logs, habit.Log{
			Date:                row.LogDate,
			PercentageCompleted: row.PercentageCompleted,
			Amount:              row.Amount,
			AmountTarget:        row.AmountTarget,
			IsManuallyOptional:  row.IsManuallyOptional,
			Note:                row.Note,
		})
	}
	return logs
}

func statusCacheKey(h *db.Habit, rows []db.HabitLog, now time.Time) string {
	hasher := sha256.New()
	fmt.Fprintf(hasher, "%d|%d|%s|%s\n", h.ID, h.FrequencyDays, h.FrequencyPeriod, now.Format("2006-01-02"))
	for _, row := range rows {
		fmt.Fprintf(hasher, "%s|%d|%g|%t|%d\n",
			row.LogDate.Format("2006-01-02"),
			row.PercentageCompleted,
			row.Amount,
			row.IsManuallyOptional,
			row.UpdatedAt.UnixNano(),
		)
	}
	return hex.EncodeToString(hasher.Sum(nil))
}
