package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bulletlog/internal/db"
	"github.com/bulletlog/internal/habit"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrHabitNotFound 在指定习惯不存在时返回
	ErrHabitNotFound = errors.New("habit not found")
	// ErrHabitInvalidFrequency 当频率配置异常时返回
	ErrHabitInvalidFrequency = errors.New("invalid habit frequency configuration")
	// ErrHabitInvalidType 当习惯类型不受支持时返回
	ErrHabitInvalidType = errors.New("invalid habit type")
)

// 受支持的习惯类型：打勾、数量、时长
const (
	HabitTypeCheck  = "check"
	HabitTypeAmount = "amount"
	HabitTypeTime   = "time"
)

// HabitService 负责 Habit 数据的增删改查
// 状态推导与统计由 HabitStatusService 承担，保持与 handler 解耦
type HabitService struct {
	db *gorm.DB
}

// HabitFilter 描述列表过滤条件
type HabitFilter struct {
	HabitType string
	Search    string
}

// HabitInput 定义创建/更新习惯时可配置字段
type HabitInput struct {
	Label           string
	Color           string
	HabitType       string
	FrequencyDays   int
	FrequencyPeriod string
	StreakTarget    int
	OverallTarget   int
	AmountTarget    float64
	Units           string
	UserID          uint
}

// NewHabitService 构造 HabitService
func NewHabitService(gdb *gorm.DB) *HabitService {
	return &HabitService{db: gdb}
}

// List 返回习惯集合，支持基本筛选
func (s *HabitService) List(filter HabitFilter) ([]db.Habit, error) {
	var habits []db.Habit

	query := s.db.Model(&db.Habit{})

	if filter.HabitType != "" {
		query = query.Where("habit_type = ?", filter.HabitType)
	}
	if filter.Search != "" {
		like := fmt.Sprintf("%%%s%%", strings.TrimSpace(filter.Search))
		query = query.Where("label LIKE ?", like)
	}

	if err := query.Order("created_at DESC").Find(&habits).Error; err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}

	return habits, nil
}

// Get 根据 ID 获取习惯
func (s *HabitService) Get(id uint) (*db.Habit, error) {
	var h db.Habit
	if err := s.db.First(&h, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHabitNotFound
		}
		return nil, fmt.Errorf("get habit: %w", err)
	}
	return &h, nil
}

// Create 新建习惯
func (s *HabitService) Create(input HabitInput) (*db.Habit, error) {
	if err := validateHabitInput(input); err != nil {
		return nil, err
	}

	h := db.Habit{
		UserID:          input.UserID,
		Label:           strings.TrimSpace(input.Label),
		Color:           strings.TrimSpace(input.Color),
		HabitType:       normalizeHabitType(input.HabitType),
		FrequencyDays:   input.FrequencyDays,
		FrequencyPeriod: normalizePeriod(input.FrequencyPeriod),
		StreakTarget:    input.StreakTarget,
		OverallTarget:   input.OverallTarget,
		AmountTarget:    input.AmountTarget,
		Units:           strings.TrimSpace(input.Units),
	}

	if err := s.db.Create(&h).Error; err != nil {
		return nil, fmt.Errorf("create habit: %w", err)
	}
	return &h, nil
}

// Update 更新习惯
func (s *HabitService) Update(id uint, input HabitInput) (*db.Habit, error) {
	if err := validateHabitInput(input); err != nil {
		return nil, err
	}

	var existing db.Habit
	if err := s.db.First(&existing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHabitNotFound
		}
		return nil, fmt.Errorf("find habit: %w", err)
	}

	existing.Label = strings.TrimSpace(input.Label)
	existing.Color = strings.TrimSpace(input.Color)
	existing.HabitType = normalizeHabitType(input.HabitType)
	existing.FrequencyDays = input.FrequencyDays
	existing.FrequencyPeriod = normalizePeriod(input.FrequencyPeriod)
	existing.StreakTarget = input.StreakTarget
	existing.OverallTarget = input.OverallTarget
	existing.AmountTarget = input.AmountTarget
	existing.Units = strings.TrimSpace(input.Units)

	if err := s.db.Save(&existing).Error; err != nil {
		return nil, fmt.Errorf("update habit: %w", err)
	}
	return &existing, nil
}

// Delete 删除习惯及其打卡记录
func (s *HabitService) Delete(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("habit_id = ?", id).Delete(&db.HabitLog{}).Error; err != nil {
			return fmt.Errorf("delete habit logs: %w", err)
		}
		if err := tx.Delete(&db.Habit{}, id).Error; err != nil {
			return fmt.Errorf("delete habit: %w", err)
		}
		return nil
	})
}

// Frequency 把持久化字段转换为核心包的频率配置
func Frequency(h db.Habit) habit.Frequency {
	return habit.Frequency{
		Days:   h.FrequencyDays,
		Period: habit.Period(h.FrequencyPeriod),
	}
}

func validateHabitInput(input HabitInput) error {
	habitType := normalizeHabitType(input.HabitType)
	if habitType != HabitTypeCheck && habitType != HabitTypeAmount && habitType != HabitTypeTime {
		return fmt.Errorf("%w: unsupported type %s", ErrHabitInvalidType, input.HabitType)
	}

	period := habit.Period(normalizePeriod(input.FrequencyPeriod))
	if !period.Valid() {
		return fmt.Errorf("%w: unsupported period %s", ErrHabitInvalidFrequency, input.FrequencyPeriod)
	}

	if input.FrequencyDays <= 0 {
		return fmt.Errorf("%w: days must be positive", ErrHabitInvalidFrequency)
	}
	if input.FrequencyDays > period.Length() {
		return fmt.Errorf("%w: days exceeds period length", ErrHabitInvalidFrequency)
	}

	if strings.TrimSpace(input.Label) == "" {
		return errors.New("habit label is required")
	}

	if habitType != HabitTypeCheck && input.AmountTarget <= 0 {
		return fmt.Errorf("%w: amount target must be positive", ErrHabitInvalidFrequency)
	}

	return nil
}

func normalizeHabitType(habitType string) string {
	return strings.TrimSpace(strings.ToLower(habitType))
}

func normalizePeriod(period string) string {
	return strings.TrimSpace(strings.ToLower(period))
}

// HabitLogService 负责打卡记录的读写
type HabitLogService struct {
	db *gorm.DB
}

// HabitLogInput 定义打卡时的输入对象
// 打勾类习惯由调用方固定传 Amount=1、PercentageCompleted=100
type HabitLogInput struct {
	HabitID             uint
	LogDate             time.Time
	PercentageCompleted int
	Amount              float64
	AmountTarget        float64
	IsManuallyOptional  bool
	Note                string
	Source              string
}

// HabitLogFilter 指定查询区间
type HabitLogFilter struct {
	HabitID uint
	Start   time.Time
	End     time.Time
}

// NewHabitLogService 构造 HabitLogService
func NewHabitLogService(gdb *gorm.DB) *HabitLogService {
	return &HabitLogService{db: gdb}
}

// Upsert 处理幂等打卡逻辑：同一天已有记录则更新，否则创建。
// 同时维护习惯的 OldestLogDate 缓存。
func (s *HabitLogService) Upsert(input HabitLogInput) (*db.HabitLog, error) {
	logDate := normalizeToDate(input.LogDate)

	record := db.HabitLog{
		HabitID:             input.HabitID,
		LogDate:             logDate,
		PercentageCompleted: input.PercentageCompleted,
		Amount:              input.Amount,
		AmountTarget:        input.AmountTarget,
		IsManuallyOptional:  input.IsManuallyOptional,
		Note:                strings.TrimSpace(input.Note),
		Source:              strings.TrimSpace(input.Source),
	}

	if err := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "habit_id"}, {Name: "log_date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"percentage_completed", "amount", "amount_target",
			"is_manually_optional", "note", "source", "updated_at",
		}),
	}).Create(&record).Error; err != nil {
		return nil, fmt.Errorf("upsert habit log: %w", err)
	}

	if err := s.db.Where("habit_id = ? AND log_date = ?", input.HabitID, logDate).First(&record).Error; err != nil {
		return nil, fmt.Errorf("reload habit log: %w", err)
	}

	if err := s.refreshOldestLogDate(input.HabitID, logDate); err != nil {
		return nil, err
	}

	return &record, nil
}

// Delete 删除指定打卡记录
func (s *HabitLogService) Delete(id uint) error {
	if err := s.db.Delete(&db.HabitLog{}, id).Error; err != nil {
		return fmt.Errorf("delete habit log: %w", err)
	}
	return nil
}

// ListBetween 返回指定区间内的打卡记录
func (s *HabitLogService) ListBetween(filter HabitLogFilter) ([]db.HabitLog, error) {
	var logs []db.HabitLog

	if filter.HabitID == 0 {
		return nil, fmt.Errorf("habit id is required")
	}

	start := normalizeToDate(filter.Start)
	end := normalizeToDate(filter.End)

	if err := s.db.Where("habit_id = ?", filter.HabitID).
		Where("log_date BETWEEN ? AND ?", start, end).
		Order("log_date ASC").
		Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("list habit logs: %w", err)
	}

	return logs, nil
}

// ListAll 返回习惯的全部打卡记录，按日期升序
func (s *HabitLogService) ListAll(habitID uint) ([]db.HabitLog, error) {
	var logs []db.HabitLog
	if err := s.db.Where("habit_id = ?", habitID).
		Order("log_date ASC").
		Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("list habit logs: %w", err)
	}
	return logs, nil
}

func (s *HabitLogService) refreshOldestLogDate(habitID uint, logDate time.Time) error {
	var h db.Habit
	if err := s.db.First(&h, habitID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrHabitNotFound
		}
		return fmt.Errorf("find habit: %w", err)
	}

	if h.OldestLogDate == nil || logDate.Before(*h.OldestLogDate) {
		if err := s.db.Model(&db.Habit{}).
			Where("id = ?", habitID).
			Update("oldest_log_date", logDate).Error; err != nil {
			return fmt.Errorf("update oldest log date: %w", err)
		}
	}
	return nil
}

func normalizeToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
