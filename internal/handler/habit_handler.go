package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/bulletlog/internal/db"
	"github.com/bulletlog/internal/habit"
	"github.com/bulletlog/internal/service"
	"github.com/gin-gonic/gin"
)

type habitPayload struct {
	Label           string  `json:"label"`
	Color           string  `json:"color"`
	HabitType       string  `json:"habit_type"`
	FrequencyDays   int     `json:"frequency_days"`
	FrequencyPeriod string  `json:"frequency_period"`
	StreakTarget    int     `json:"streak_target"`
	OverallTarget   int     `json:"overall_target"`
	AmountTarget    float64 `json:"amount_target"`
	Units           string  `json:"units"`
}

type habitLogPayload struct {
	LogDate            string  `json:"log_date"` // 2006-01-02
	PercentageComplete int     `json:"percentage_completed"`
	Amount             float64 `json:"amount"`
	AmountTarget       float64 `json:"amount_target"`
	IsManuallyOptional bool    `json:"is_manually_optional"`
	Note               string  `json:"note"`
}

// ListHabits 返回习惯列表，每项附带轻量连击信息
func (a *API) ListHabits(c *gin.Context) {
	filter := service.HabitFilter{
		HabitType: c.Query("type"),
		Search:    c.Query("search"),
	}

	habits, err := a.habits.List(filter)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取习惯列表失败")
		return
	}

	now := time.Now()
	items := make([]gin.H, 0, len(habits))
	for _, h := range habits {
		item := habitToPayload(h)
		if current, longest, err := a.habitStatus.SimpleStreak(h.ID, now); err == nil {
			item["current_streak"] = current
			item["longest_streak"] = longest
		}
		items = append(items, item)
	}

	c.JSON(http.StatusOK, gin.H{"habits": items})
}

// GetHabit 返回单个习惯详情
func (a *API) GetHabit(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的习惯ID")
		return
	}

	h, err := a.habits.Get(id)
	if err != nil {
		handleHabitError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"habit": habitToPayload(*h)})
}

// CreateHabit 创建习惯
func (a *API) CreateHabit(c *gin.Context) {
	var payload habitPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	h, err := a.habits.Create(habitInputFromPayload(payload))
	if err != nil {
		handleHabitError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"habit": habitToPayload(*h)})
}

// UpdateHabit 更新习惯，频率变化会使旧的推导缓存失效
func (a *API) UpdateHabit(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的习惯ID")
		return
	}

	var payload habitPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	h, err := a.habits.Update(id, habitInputFromPayload(payload))
	if err != nil {
		handleHabitError(c, err)
		return
	}

	a.habitStatus.Invalidate()
	c.JSON(http.StatusOK, gin.H{"habit": habitToPayload(*h)})
}

// DeleteHabit 删除习惯及其打卡记录
func (a *API) DeleteHabit(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的习惯ID")
		return
	}

	if err := a.habits.Delete(id); err != nil {
		respondError(c, http.StatusInternalServerError, "删除习惯失败")
		return
	}

	a.habitStatus.Invalidate()
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// GetHabitStatus 返回日历渲染所需的推导结果：
// 致密日志（含必做/可选标记）、最佳连击与汇总卡片
func (a *API) GetHabitStatus(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的习惯ID")
		return
	}

	result, err := a.habitStatus.Status(id, time.Now())
	if err != nil {
		handleHabitError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"logs":    serializeComputedLogs(result.Logs),
		"streaks": serializeStreaks(result.Streaks),
		"summary": gin.H{
			"current_streak":    result.Summary.CurrentStreak,
			"longest_streak":    result.Summary.LongestStreak,
			"overall_completed": result.Summary.OverallCompleted,
		},
	})
}

// GetHabitStreaks 返回最佳连击排行与汇总卡片
func (a *API) GetHabitStreaks(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的习惯ID")
		return
	}

	result, err := a.habitStatus.Status(id, time.Now())
	if err != nil {
		handleHabitError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"streaks": serializeStreaks(result.Streaks),
		"summary": gin.H{
			"current_streak":    result.Summary.CurrentStreak,
			"longest_streak":    result.Summary.LongestStreak,
			"overall_completed": result.Summary.OverallCompleted,
		},
	})
}

// GetHabitCharts 返回指定年份的统计序列，默认当前年份
func (a *API) GetHabitCharts(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的习惯ID")
		return
	}

	year := time.Now().Year()
	if raw := c.Query("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "无效的年份")
			return
		}
		year = parsed
	}

	charts, err := a.habitStatus.Charts(id, year)
	if err != nil {
		handleHabitError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"year":                charts.Year,
		"monthly_completions": charts.MonthlyCompletions,
		"monthly_averages":    charts.MonthlyAverages,
		"weekly_averages":     charts.WeeklyAverages,
	})
}

// ListHabitLogs 返回日期区间内的原始打卡记录
func (a *API) ListHabitLogs(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的习惯ID")
		return
	}

	startPtr, ok := parseOptionalDate(c.Query("start"))
	if !ok {
		respondError(c, http.StatusBadRequest, "无效的开始日期")
		return
	}
	endPtr, ok := parseOptionalDate(c.Query("end"))
	if !ok {
		respondError(c, http.StatusBadRequest, "无效的结束日期")
		return
	}

	var logs []db.HabitLog
	if startPtr != nil && endPtr != nil {
		logs, err = a.habitLogs.ListBetween(service.HabitLogFilter{HabitID: id, Start: *startPtr, End: *endPtr})
	} else {
		logs, err = a.habitLogs.ListAll(id)
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取打卡记录失败")
		return
	}

	items := make([]gin.H, 0, len(logs))
	for _, log := range logs {
		items = append(items, serializeHabitLog(log))
	}

	c.JSON(http.StatusOK, gin.H{"logs": items})
}

// LogHabit 打卡：同一天重复提交执行更新而非新增。
// 打勾类习惯忽略客户端数量，固定按一次完成记账。
func (a *API) LogHabit(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的习惯ID")
		return
	}

	h, err := a.habits.Get(id)
	if err != nil {
		handleHabitError(c, err)
		return
	}

	var payload habitLogPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	if payload.LogDate == "" {
		respondError(c, http.StatusBadRequest, "请选择打卡日期")
		return
	}
	logDate, err := time.ParseInLocation(dateFormat, payload.LogDate, time.Local)
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的打卡日期")
		return
	}

	input := service.HabitLogInput{
		HabitID:             h.ID,
		LogDate:             logDate,
		PercentageCompleted: payload.PercentageComplete,
		Amount:              payload.Amount,
		AmountTarget:        payload.AmountTarget,
		IsManuallyOptional:  payload.IsManuallyOptional,
		Note:                payload.Note,
		Source:              "api",
	}

	if h.HabitType == service.HabitTypeCheck {
		input.Amount = 1
		input.AmountTarget = 1
		input.PercentageCompleted = 100
	} else {
		if input.AmountTarget <= 0 {
			input.AmountTarget = h.AmountTarget
		}
		if input.PercentageCompleted == 0 && input.AmountTarget > 0 {
			input.PercentageCompleted = int(input.Amount / input.AmountTarget * 100)
		}
	}

	logEntry, err := a.habitLogs.Upsert(input)
	if err != nil {
		handleHabitError(c, err)
		return
	}

	a.habitStatus.Invalidate()
	c.JSON(http.StatusOK, gin.H{"log": serializeHabitLog(*logEntry)})
}

// DeleteHabitLog 删除单条打卡
func (a *API) DeleteHabitLog(c *gin.Context) {
	if _, err := parseUintParam(c, "id"); err != nil {
		respondError(c, http.StatusBadRequest, "无效的习惯ID")
		return
	}

	logID, err := parseUintParam(c, "logId")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的打卡记录ID")
		return
	}

	if err := a.habitLogs.Delete(logID); err != nil {
		respondError(c, http.StatusInternalServerError, "删除打卡记录失败")
		return
	}

	a.habitStatus.Invalidate()
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func habitInputFromPayload(payload habitPayload) service.HabitInput {
	return service.HabitInput{
		Label:           payload.Label,
		Color:           payload.Color,
		HabitType:       payload.HabitType,
		FrequencyDays:   payload.FrequencyDays,
		FrequencyPeriod: payload.FrequencyPeriod,
		StreakTarget:    payload.StreakTarget,
		OverallTarget:   payload.OverallTarget,
		AmountTarget:    payload.AmountTarget,
		Units:           payload.Units,
	}
}

func habitToPayload(h db.Habit) gin.H {
	item := gin.H{
		"id":               h.ID,
		"label":            h.Label,
		"color":            h.Color,
		"habit_type":       h.HabitType,
		"frequency_days":   h.FrequencyDays,
		"frequency_period": h.FrequencyPeriod,
		"streak_target":    h.StreakTarget,
		"overall_target":   h.OverallTarget,
		"amount_target":    h.AmountTarget,
		"units":            h.Units,
	}

	if h.OldestLogDate != nil {
		item["oldest_log_date"] = h.OldestLogDate.Format(dateFormat)
	}

	return item
}

func serializeHabitLog(log db.HabitLog) gin.H {
	return gin.H{
		"id":                   log.ID,
		"habit_id":             log.HabitID,
		"log_date":             log.LogDate.Format(dateFormat),
		"percentage_completed": log.PercentageCompleted,
		"amount":               log.Amount,
		"amount_target":        log.AmountTarget,
		"is_manually_optional": log.IsManuallyOptional,
		"note":                 log.Note,
		"source":               log.Source,
	}
}

func serializeComputedLogs(logs []habit.Log) []gin.H {
	items := make([]gin.H, 0, len(logs))
	for _, log := range logs {
		items = append(items, gin.H{
			"date":                 log.Date.Format(dateFormat),
			"percentage_completed": log.PercentageCompleted,
			"amount":               log.Amount,
			"amount_target":        log.AmountTarget,
			"is_optional":          log.IsOptional,
			"is_manually_optional": log.IsManuallyOptional,
			"is_artificial":        log.IsArtificial,
			"note":                 log.Note,
		})
	}
	return items
}

func serializeStreaks(streaks []habit.Streak) []gin.H {
	items := make([]gin.H, 0, len(streaks))
	for _, streak := range streaks {
		item := gin.H{
			"start_date":     streak.StartDate.Format(dateFormat),
			"end_date":       streak.EndDate.Format(dateFormat),
			"number_of_days": streak.NumberOfDays,
		}
		if !streak.LastOptionalLogDate.IsZero() {
			item["last_optional_log_date"] = streak.LastOptionalLogDate.Format(dateFormat)
		}
		items = append(items, item)
	}
	return items
}

func handleHabitError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrHabitNotFound):
		respondError(c, http.StatusNotFound, "习惯不存在")
	case errors.Is(err, service.ErrHabitInvalidFrequency), errors.Is(err, service.ErrHabitInvalidType):
		respondError(c, http.StatusBadRequest, "习惯配置无效")
	default:
		respondError(c, http.StatusInternalServerError, "操作失败")
	}
}
