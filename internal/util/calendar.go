package util

import "time"

const dateLayout = "2006-01-02"

// IsBusinessDay reports whether t falls Monday through Friday. Exchange
// holidays are not tracked; the source publishes nothing on them and empty
// days are handled upstream.
func IsBusinessDay(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// BusinessDays returns every weekday date in [start, end] as YYYY-MM-DD
// strings in ascending order. Returns nil when end precedes start.
func BusinessDays(start, end time.Time) []string {
	start = Midnight(start)
	end = Midnight(end)

	var dates []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if IsBusinessDay(d) {
			dates = append(dates, d.Format(dateLayout))
		}
	}
	return dates
}

// Midnight truncates t to 00:00:00 in its location.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
