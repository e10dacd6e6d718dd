package habit

import (
	"testing"
)

func TestCalculateStreakBasic(t *testing.T) {
	logs := []Log{
		completedLog(day(2024, 5, 1)),
		completedLog(day(2024, 5, 2)),
		completedLog(day(2024, 5, 3)),
		completedLog(day(2024, 5, 6)),
	}

	current, longest := CalculateStreak(logs, day(2024, 5, 6))
	if current != 1 || longest != 3 {
		t.Fatalf("expected current=1 longest=3, got current=%d longest=%d", current, longest)
	}
}

func TestCalculateStreakCollapsesWhenStale(t *testing.T) {
	logs := []Log{
		completedLog(day(2024, 5, 1)),
		completedLog(day(2024, 5, 2)),
	}

	// 最近一次完成停在三天前，当前连击归零
	current, longest := CalculateStreak(logs, day(2024, 5, 5))
	if current != 0 || longest != 2 {
		t.Fatalf("expected current=0 longest=2, got current=%d longest=%d", current, longest)
	}

	// 昨天完成则连击存续
	current, longest = CalculateStreak(logs, day(2024, 5, 3))
	if current != 2 || longest != 2 {
		t.Fatalf("expected current=2 longest=2, got current=%d longest=%d", current, longest)
	}
}

func TestCalculateStreakSingleLogToday(t *testing.T) {
	logs := []Log{completedLog(day(2024, 5, 6))}
	current, longest := CalculateStreak(logs, day(2024, 5, 6))
	if current != 1 || longest != 1 {
		t.Fatalf("expected 1/1, got current=%d longest=%d", current, longest)
	}
}

func TestCalculateStreakEmpty(t *testing.T) {
	current, longest := CalculateStreak(nil, day(2024, 5, 6))
	if current != 0 || longest != 0 {
		t.Fatalf("expected 0/0, got current=%d longest=%d", current, longest)
	}
}

// 可选的未完成日衔接连击但不计入天数。
func TestCalculateBestStreaksOptionalGrace(t *testing.T) {
	logs := []Log{
		completedLog(day(2024, 5, 6)),
		{Date: day(2024, 5, 7), IsOptional: true, IsArtificial: true},
		completedLog(day(2024, 5, 8)),
	}

	streaks := CalculateBestStreaks(logs)
	if len(streaks) != 1 {
		t.Fatalf("expected single streak, got %d", len(streaks))
	}
	if streaks[0].NumberOfDays != 2 {
		t.Fatalf("expected 2 counted days, got %d", streaks[0].NumberOfDays)
	}
	if !streaks[0].StartDate.Equal(day(2024, 5, 6)) || !streaks[0].EndDate.Equal(day(2024, 5, 8)) {
		t.Fatalf("unexpected streak range: %v .. %v", streaks[0].StartDate, streaks[0].EndDate)
	}
}

// 两天以上的空档必然断开连击，可选标记救不回来。
func TestCalculateBestStreaksGapAlwaysBreaks(t *testing.T) {
	logs := []Log{
		completedLog(day(2024, 5, 6)),
		{Date: day(2024, 5, 7), IsOptional: true, IsArtificial: true},
		completedLog(day(2024, 5, 10)),
	}

	streaks := CalculateBestStreaks(logs)
	if len(streaks) != 2 {
		t.Fatalf("expected 2 streaks, got %d", len(streaks))
	}
	if streaks[0].NumberOfDays != 1 || streaks[1].NumberOfDays != 1 {
		t.Fatalf("unexpected counts: %d, %d", streaks[0].NumberOfDays, streaks[1].NumberOfDays)
	}
	if !streaks[0].LastOptionalLogDate.Equal(day(2024, 5, 7)) {
		t.Fatalf("expected optional tail recorded, got %v", streaks[0].LastOptionalLogDate)
	}
}

// 可选日不能开启连击。
func TestCalculateBestStreaksOptionalDoesNotStart(t *testing.T) {
	logs := []Log{
		{Date: day(2024, 5, 6), IsOptional: true, IsArtificial: true},
		completedLog(day(2024, 5, 7)),
	}

	streaks := CalculateBestStreaks(logs)
	if len(streaks) != 1 {
		t.Fatalf("expected 1 streak, got %d", len(streaks))
	}
	if !streaks[0].StartDate.Equal(day(2024, 5, 7)) || streaks[0].NumberOfDays != 1 {
		t.Fatalf("unexpected streak: %+v", streaks[0])
	}
}

func TestCalculateBestStreaksManuallyOptional(t *testing.T) {
	logs := []Log{
		completedLog(day(2024, 5, 6)),
		{Date: day(2024, 5, 7), IsManuallyOptional: true},
		completedLog(day(2024, 5, 8)),
	}

	streaks := CalculateBestStreaks(logs)
	if len(streaks) != 1 || streaks[0].NumberOfDays != 2 {
		t.Fatalf("expected manual exemption to bridge the streak, got %+v", streaks)
	}
}

func TestTopStreaksRankingStable(t *testing.T) {
	streaks := []Streak{
		{StartDate: day(2024, 1, 1), NumberOfDays: 2},
		{StartDate: day(2024, 2, 1), NumberOfDays: 5},
		{StartDate: day(2024, 3, 1), NumberOfDays: 2},
		{StartDate: day(2024, 4, 1), NumberOfDays: 7},
	}

	top := TopStreaks(streaks, 3)
	if len(top) != 3 {
		t.Fatalf("expected 3 streaks, got %d", len(top))
	}
	if top[0].NumberOfDays != 7 || top[1].NumberOfDays != 5 {
		t.Fatalf("unexpected ranking: %+v", top)
	}
	// 天数相同保持发现顺序
	if !top[2].StartDate.Equal(day(2024, 1, 1)) {
		t.Fatalf("expected stable tie break, got %v", top[2].StartDate)
	}
}

func TestTopStreaksDefaultLimit(t *testing.T) {
	streaks := make([]Streak, 0, 8)
	for i := 0; i < 8; i++ {
		streaks = append(streaks, Streak{NumberOfDays: i + 1})
	}

	top := TopStreaks(streaks, 0)
	if len(top) != DefaultTopStreaks {
		t.Fatalf("expected default limit %d, got %d", DefaultTopStreaks, len(top))
	}
	if top[0].NumberOfDays != 8 {
		t.Fatalf("expected best streak first, got %d", top[0].NumberOfDays)
	}
}

func TestStreakInfo(t *testing.T) {
	logs := []Log{
		completedLog(day(2024, 5, 6)),
		completedLog(day(2024, 5, 7)),
		completedLog(day(2024, 5, 8)),
	}
	best := CalculateBestStreaks(logs)

	// 连击覆盖到昨天，按区间天数计
	info := StreakInfo(logs, best, day(2024, 5, 9))
	if info.CurrentStreak != 3 || info.LongestStreak != 3 || info.OverallCompleted != 3 {
		t.Fatalf("unexpected summary: %+v", info)
	}

	// 区间够不到昨天且今天无完成，当前连击归零
	info = StreakInfo(logs, best, day(2024, 5, 11))
	if info.CurrentStreak != 0 || info.LongestStreak != 3 {
		t.Fatalf("unexpected summary: %+v", info)
	}
}

func TestStreakInfoTodayOnly(t *testing.T) {
	logs := []Log{completedLog(day(2024, 5, 9))}
	best := CalculateBestStreaks(logs)

	info := StreakInfo(logs, best, day(2024, 5, 9))
	if info.CurrentStreak != 1 || info.LongestStreak != 1 || info.OverallCompleted != 1 {
		t.Fatalf("unexpected summary: %+v", info)
	}
}

// 完整链路：每周 3 次的习惯在第一周周一/三/五完成并宽减其余日子后，
// 次周周一未打卡时当前连击应当归零。
func TestStreakAfterClassifiedWeek(t *testing.T) {
	logs := []Log{
		completedLog(day(2024, 5, 6)),
		completedLog(day(2024, 5, 8)),
		completedLog(day(2024, 5, 10)),
	}
	now := day(2024, 5, 13)

	classified := CalculateLogsStatus(logs, Frequency{Days: 3, Period: PeriodWeek}, now)
	best := CalculateBestStreaks(classified)

	if len(best) != 1 || best[0].NumberOfDays != 3 {
		t.Fatalf("expected one streak of 3 completed days, got %+v", best)
	}
	if !best[0].LastOptionalLogDate.Equal(day(2024, 5, 12)) {
		t.Fatalf("expected optional tail through sunday, got %v", best[0].LastOptionalLogDate)
	}

	info := StreakInfo(classified, best, now)
	if info.CurrentStreak != 0 {
		t.Fatalf("expected current streak 0, got %d", info.CurrentStreak)
	}
	if info.LongestStreak != 3 || info.OverallCompleted != 3 {
		t.Fatalf("unexpected summary: %+v", info)
	}
}
