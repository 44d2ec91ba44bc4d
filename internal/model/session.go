package model

import "time"

// Nepal Standard Time, UTC+05:45 with no daylight saving.
var NPT = time.FixedZone("NPT", 5*3600+45*60)

// NEPSE trading session in NPT.
const (
	SessionOpenHour  = 11
	SessionCloseHour = 15
)

// IsTradingDay reports whether NEPSE trades on t's NPT weekday (Sunday
// through Thursday).
func IsTradingDay(t time.Time) bool {
	wd := t.In(NPT).Weekday()
	return wd != time.Friday && wd != time.Saturday
}

// IsMarketOpen reports whether t falls within the NEPSE session.
// Exchange holidays are not modelled.
func IsMarketOpen(t time.Time) bool {
	if !IsTradingDay(t) {
		return false
	}
	local := t.In(NPT)
	minutes := local.Hour()*60 + local.Minute()
	return minutes >= SessionOpenHour*60 && minutes <= SessionCloseHour*60
}
