// Package remates turns the bulletin's remates listings into assembled
// auction records: it owns the date window, the page-level stop policy, the
// crawl loop over both asset-class endpoints, record assembly and the
// keyword filter consumers apply afterwards.
package remates

import (
	"time"

	"sjsage522/remateworker/pkg/errors"
)

// DateFormat is the publication date format of the listing endpoints.
const DateFormat = "2006-01-02"

// MonthFormat addresses a calendar month, e.g. "2025-10".
const MonthFormat = "2006-01"

// Window is the inclusive publication-date range a crawl covers. Either
// bound may be nil, meaning unbounded on that side. Comparisons are at day
// granularity.
type Window struct {
	Start *time.Time
	End   *time.Time
}

// WindowOptions are the raw user inputs a window is resolved from.
type WindowOptions struct {
	StartDate    string // minimum publication date, DateFormat
	EndDate      string // maximum publication date, DateFormat
	Month        string // calendar month, MonthFormat; overrides StartDate/EndDate
	LookbackDays int    // maximum age in days relative to now; 0 disables
}

// MonthOverridesDates reports whether resolving opts will discard explicit
// start/end dates in favor of the month bound.
func (opts WindowOptions) MonthOverridesDates() bool {
	return opts.Month != "" && (opts.StartDate != "" || opts.EndDate != "")
}

// ResolveWindow builds the effective window: an explicit month replaces the
// explicit dates, and the lookback cutoff tightens the start bound (the later
// of explicit start and cutoff wins).
func ResolveWindow(opts WindowOptions, now time.Time) (Window, error) {
	var start, end *time.Time

	if opts.StartDate != "" {
		t, err := time.Parse(DateFormat, opts.StartDate)
		if err != nil {
			return Window{}, errors.NewConfiguration("invalid start date "+opts.StartDate, err)
		}
		start = &t
	}
	if opts.EndDate != "" {
		t, err := time.Parse(DateFormat, opts.EndDate)
		if err != nil {
			return Window{}, errors.NewConfiguration("invalid end date "+opts.EndDate, err)
		}
		end = &t
	}

	if opts.Month != "" {
		first, err := time.Parse(MonthFormat, opts.Month)
		if err != nil {
			return Window{}, errors.NewConfiguration("invalid month "+opts.Month+", expected YYYY-MM", err)
		}
		last := first.AddDate(0, 1, -1)
		start, end = &first, &last
	}

	if opts.LookbackDays > 0 {
		cutoff := dateOnly(now.UTC()).AddDate(0, 0, -opts.LookbackDays)
		if start == nil || start.Before(cutoff) {
			start = &cutoff
		}
	}

	return Window{Start: start, End: end}, nil
}

// Before reports whether t falls before the window's start bound.
func (w Window) Before(t time.Time) bool {
	return w.Start != nil && dateOnly(t).Before(dateOnly(*w.Start))
}

// After reports whether t falls after the window's end bound.
func (w Window) After(t time.Time) bool {
	return w.End != nil && dateOnly(t).After(dateOnly(*w.End))
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !w.Before(t) && !w.After(t)
}

// dateOnly truncates t to midnight UTC.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
