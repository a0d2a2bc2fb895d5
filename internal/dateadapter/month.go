package dateadapter

import "time"

// StartOfMonth returns the first day of t's month.
func (a *Adapter) StartOfMonth(t time.Time) time.Time {
	t = t.In(a.loc)
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, a.loc)
}

// DaysInMonth returns the number of days in t's month.
func (a *Adapter) DaysInMonth(t time.Time) int {
	return a.StartOfMonth(t).AddDate(0, 1, -1).Day()
}

// AddMonths moves t by n months, clamping the day to the target month's
// length (Jan 31 + 1 month is Feb 28/29, not Mar 3).
func (a *Adapter) AddMonths(t time.Time, n int) time.Time {
	t = a.Day(t)
	first := time.Date(t.Year(), t.Month()+time.Month(n), 1, 0, 0, 0, 0, a.loc)
	day := t.Day()
	if last := a.DaysInMonth(first); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, a.loc)
}

// AddDays moves t by n calendar days.
func (a *Adapter) AddDays(t time.Time, n int) time.Time {
	return a.Day(t).AddDate(0, 0, n)
}

// LeadingBlanks is the number of empty cells before day 1 in a grid whose
// first column is the adapter's week start.
func (a *Adapter) LeadingBlanks(t time.Time) int {
	wd := a.StartOfMonth(t).Weekday()
	return (int(wd) - int(a.weekStart) + 7) % 7
}

// WeekdayOrder returns the weekdays in grid column order.
func (a *Adapter) WeekdayOrder() []time.Weekday {
	out := make([]time.Weekday, 7)
	for i := range out {
		out[i] = time.Weekday((int(a.weekStart) + i) % 7)
	}
	return out
}
