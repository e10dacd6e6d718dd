package habit

import "time"

// FillMissingDays 把稀疏日志补齐为 [start, end] 闭区间内的逐日致密序列。
// 每天恰好产出一条记录：有真实日志的日期原样透传，其余日期合成零值占位记录。
// start 晚于 end 时返回空序列而不是报错。
func FillMissingDays(logs []Log, start, end time.Time) []Log {
	days := EachDay(start, end)
	if len(days) == 0 {
		return nil
	}

	byDay := make(map[string]Log, len(logs))
	for _, log := range logs {
		byDay[dateKey(log.Date)] = log
	}

	filled := make([]Log, 0, len(days))
	for _, day := range days {
		if log, ok := byDay[dateKey(day)]; ok {
			filled = append(filled, log)
			continue
		}
		filled = append(filled, Log{Date: day, IsArtificial: true})
	}
	return filled
}
