// Package engine implements the progress-analytics and gamification core:
// period boundary resolution, streaks, per-goal period progress, the XP/level
// curve, multiplier stacking, and achievement condition evaluation.
//
// Every function is pure: current time and timezone are explicit parameters,
// nothing reads ambient state, and nothing performs I/O. Derived values are
// always recomputed from the check-event log rather than trusted from caches.
package engine

import (
	"fmt"
	"time"
)

// PeriodKind selects the window size for ResolveWindow.
type PeriodKind string

const (
	PeriodDay   PeriodKind = "day"
	PeriodWeek  PeriodKind = "week"
	PeriodMonth PeriodKind = "month"
)

// DateLayout is the calendar-date wire format used throughout the engine.
const DateLayout = "2006-01-02"

// Window is a half-open [Start, End) interval in absolute UTC, labeled for
// display ("2025-08-28", "2025-W35", "2025-08"). Windows are derived on demand
// and never persisted.
type Window struct {
	Start time.Time
	End   time.Time
	Label string
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// LoadTimezone resolves an IANA timezone identifier. An unknown identifier is
// an ErrInvalidTimezone; the process-local timezone is never used as fallback.
func LoadTimezone(name string) (*time.Location, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty identifier", ErrInvalidTimezone)
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTimezone, name)
	}
	return loc, nil
}

// ResolveWindow converts a calendar date in a timezone into the absolute UTC
// window of the period containing that date. Start is local midnight of the
// period's first day; End is local midnight one period later, so DST shifts
// land inside the window rather than at its edges. Weeks begin on weekStart
// (Monday per default config); months begin on the 1st.
func ResolveWindow(date string, tz string, kind PeriodKind, weekStart time.Weekday) (Window, error) {
	loc, err := LoadTimezone(tz)
	if err != nil {
		return Window{}, err
	}
	d, err := time.ParseInLocation(DateLayout, date, loc)
	if err != nil {
		return Window{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return resolveWindow(d, loc, kind, weekStart)
}

// WindowAt returns the current period window for an instant, resolved in the
// given timezone. Convenience wrapper used by the progress calculator.
func WindowAt(now time.Time, tz string, kind PeriodKind, weekStart time.Weekday) (Window, error) {
	loc, err := LoadTimezone(tz)
	if err != nil {
		return Window{}, err
	}
	return resolveWindow(now.In(loc), loc, kind, weekStart)
}

func resolveWindow(local time.Time, loc *time.Location, kind PeriodKind, weekStart time.Weekday) (Window, error) {
	y, m, d := local.Date()

	switch kind {
	case PeriodDay:
		start := time.Date(y, m, d, 0, 0, 0, 0, loc)
		end := time.Date(y, m, d+1, 0, 0, 0, 0, loc)
		return Window{Start: start.UTC(), End: end.UTC(), Label: start.Format(DateLayout)}, nil

	case PeriodWeek:
		back := (int(local.Weekday()) - int(weekStart) + 7) % 7
		start := time.Date(y, m, d-back, 0, 0, 0, 0, loc)
		end := time.Date(y, m, d-back+7, 0, 0, 0, 0, loc)
		wy, ww := start.ISOWeek()
		return Window{Start: start.UTC(), End: end.UTC(), Label: fmt.Sprintf("%d-W%02d", wy, ww)}, nil

	case PeriodMonth:
		start := time.Date(y, m, 1, 0, 0, 0, 0, loc)
		end := time.Date(y, m+1, 1, 0, 0, 0, 0, loc)
		return Window{Start: start.UTC(), End: end.UTC(), Label: start.Format("2006-01")}, nil
	}

	return Window{}, fmt.Errorf("unknown period kind %q", kind)
}

// LocalDay renders an instant as a calendar date in the given location.
func LocalDay(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateLayout)
}
