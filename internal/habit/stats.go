package habit

// MonthlyCompletionsPerYear 统计指定年份每个月的完成天数，返回 12 个月桶。
func MonthlyCompletionsPerYear(logs []Log, year int) [12]int {
	var buckets [12]int
	for _, log := range logs {
		if log.Date.Year() != year || !log.Completed() {
			continue
		}
		buckets[int(log.Date.Month())-1]++
	}
	return buckets
}

// WeeklyAverageAmounts 计算指定年份每个 ISO 周的平均打卡量，返回 52 个周桶。
// 只统计 Amount 为正的真实记录，超出 52 的周并入最后一桶。
func WeeklyAverageAmounts(logs []Log, year int) [52]float64 {
	var sums [52]float64
	var counts [52]int

	for _, log := range logs {
		if log.Date.Year() != year || log.Amount <= 0 {
			continue
		}
		week := WeekNumber(log.Date)
		if week > 52 {
			week = 52
		}
		sums[week-1] += log.Amount
		counts[week-1]++
	}

	var averages [52]float64
	for i := range sums {
		if counts[i] > 0 {
			averages[i] = sums[i] / float64(counts[i])
		}
	}
	return averages
}

// MonthlyAverageAmounts 计算指定年份每个月的平均打卡量，返回 12 个月桶。
func MonthlyAverageAmounts(logs []Log, year int) [12]float64 {
	var sums [12]float64
	var counts [12]int

	for _, log := range logs {
		if log.Date.Year() != year || log.Amount <= 0 {
			continue
		}
		month := int(log.Date.Month()) - 1
		sums[month] += log.Amount
		counts[month]++
	}

	var averages [12]float64
	for i := range sums {
		if counts[i] > 0 {
			averages[i] = sums[i] / float64(counts[i])
		}
	}
	return averages
}
