package analytics

import (
	"time"

	"smartspend/internal/models"
)

// MonthWindow returns the first and last calendar date of the given month.
func MonthWindow(year int, month time.Month) (start, end time.Time) {
	start = time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end = start.AddDate(0, 1, -1)
	return start, end
}

// PreviousMonth returns the calendar month before now. The end is the first of
// the current month minus one day.
func PreviousMonth(now time.Time) (start, end time.Time) {
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	end = firstOfMonth.AddDate(0, 0, -1)
	start = time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, end
}

// LastDays returns the window from n days before now through now, inclusive.
func LastDays(now time.Time, n int) (start, end time.Time) {
	end = models.DateOnly(now)
	return end.AddDate(0, 0, -n), end
}

// MostRecentMonth returns the window of the latest occurrence of month that
// does not start after now: this year if already begun, otherwise last year.
func MostRecentMonth(now time.Time, month time.Month) (start, end time.Time) {
	year := now.Year()
	if month > now.Month() {
		year--
	}
	return MonthWindow(year, month)
}
