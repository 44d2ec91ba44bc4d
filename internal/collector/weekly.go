package collector

import (
	"time"

	"NepseAnalyzer/internal/model"
)

// weekStart returns the Sunday that opens t's trading week. NEPSE trades
// Sunday to Thursday, so ISO (Monday) weeks would split its sessions.
func weekStart(t time.Time) time.Time {
	d := model.Day(t)
	return d.AddDate(0, 0, -int(d.Weekday()))
}

// AggregateDailyToWeekly converts ascending daily bars into weekly bars.
// Each weekly bar is dated by its first trading day.
func AggregateDailyToWeekly(daily []model.PriceBar) []model.PriceBar {
	if len(daily) == 0 {
		return nil
	}
	var weekly []model.PriceBar
	week := daily[0]
	key := weekStart(week.Date)

	for _, d := range daily[1:] {
		if k := weekStart(d.Date); !k.Equal(key) {
			weekly = append(weekly, week)
			week = d
			key = k
			continue
		}
		if d.High > week.High {
			week.High = d.High
		}
		if d.Low < week.Low {
			week.Low = d.Low
		}
		week.Close = d.Close
		week.Volume += d.Volume
	}
	return append(weekly, week)
}
