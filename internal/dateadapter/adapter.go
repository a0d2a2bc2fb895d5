// Package dateadapter implements the date operations the picker needs on top
// of time.Time, working at day granularity in one location.
package dateadapter

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultLayout is the layout used when none is configured.
const DefaultLayout = "2006-01-02"

// ErrEmpty is returned by Parse for blank input.
var ErrEmpty = errors.New("empty date")

// Adapter compares, formats and parses dates. The zero value is not usable;
// build one with New.
type Adapter struct {
	layout    string
	loc       *time.Location
	now       func() time.Time
	weekStart time.Weekday
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithLayout sets the Go time layout used by Format and Parse.
func WithLayout(layout string) Option {
	return func(a *Adapter) {
		if strings.TrimSpace(layout) != "" {
			a.layout = layout
		}
	}
}

// WithLocation sets the location days are computed in.
func WithLocation(loc *time.Location) Option {
	return func(a *Adapter) {
		if loc != nil {
			a.loc = loc
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(a *Adapter) {
		if now != nil {
			a.now = now
		}
	}
}

// WithWeekStart sets the first column of calendar grids.
func WithWeekStart(d time.Weekday) Option {
	return func(a *Adapter) { a.weekStart = d }
}

func New(opts ...Option) *Adapter {
	a := &Adapter{layout: DefaultLayout, loc: time.Local, now: time.Now, weekStart: time.Monday}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Adapter) Layout() string           { return a.layout }
func (a *Adapter) Location() *time.Location { return a.loc }
func (a *Adapter) WeekStart() time.Weekday  { return a.weekStart }

// Day truncates t to midnight in the adapter's location.
func (a *Adapter) Day(t time.Time) time.Time {
	t = t.In(a.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, a.loc)
}

// Date builds midnight of the given calendar day.
func (a *Adapter) Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, a.loc)
}

// Compare orders a and b by calendar day, ignoring time of day.
func (a *Adapter) Compare(x, y time.Time) int {
	dx, dy := a.Day(x), a.Day(y)
	switch {
	case dx.Before(dy):
		return -1
	case dx.After(dy):
		return 1
	}
	return 0
}

func (a *Adapter) IsSameDay(x, y time.Time) bool { return a.Compare(x, y) == 0 }

func (a *Adapter) Today() time.Time { return a.Day(a.now()) }

// IsValid reports whether t holds a real date.
func (a *Adapter) IsValid(t time.Time) bool { return !t.IsZero() }

func (a *Adapter) Format(t time.Time) string {
	if !a.IsValid(t) {
		return ""
	}
	return t.In(a.loc).Format(a.layout)
}

// Parse reads s with the configured layout in the adapter's location.
func (a *Adapter) Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrEmpty
	}
	t, err := time.ParseInLocation(a.layout, s, a.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return a.Day(t), nil
}
