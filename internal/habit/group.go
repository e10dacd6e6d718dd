package habit

import (
	"fmt"
	"time"
)

// Bucket 表示按周期切分后的一组日志。
type Bucket struct {
	Key  string
	Logs []Log
}

// GroupLogsByPeriod 按周或月把日志切分进有序分组。
// 每条日志仅凭日期归属唯一分组，分组顺序沿用日志中的首次出现顺序。
func GroupLogsByPeriod(logs []Log, period Period) []Bucket {
	index := make(map[string]int, 8)
	buckets := make([]Bucket, 0, 8)

	for _, log := range logs {
		key := PeriodKey(log.Date, period)
		i, ok := index[key]
		if !ok {
			i = len(buckets)
			index[key] = i
			buckets = append(buckets, Bucket{Key: key})
		}
		buckets[i].Logs = append(buckets[i].Logs, log)
	}
	return buckets
}

// PeriodKey 生成分组键：周模式为 "2024-W5"（ISO 年+周），月模式为 "2024-5"。
func PeriodKey(t time.Time, period Period) string {
	if period == PeriodMonth {
		return fmt.Sprintf("%d-%d", t.Year(), int(t.Month()))
	}
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%d", year, week)
}
