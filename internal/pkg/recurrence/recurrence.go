// Package recurrence expands a recurring work-from-home submission into the
// individual business dates it covers.
package recurrence

import (
	"errors"
	"fmt"
	"iter"
	"time"
)

// DateLayout is the wire format for civil dates.
const DateLayout = "2006-01-02"

var ErrInvalidRecurrence = errors.New("Invalid recurrence")

type Unit string

const (
	UnitWeek  Unit = "week"
	UnitMonth Unit = "month"
)

func (u Unit) Valid() bool {
	return u == UnitWeek || u == UnitMonth
}

// Spec describes a recurrence. Exactly one of End or Count is set.
type Spec struct {
	Start    time.Time
	Interval int
	Unit     Unit
	End      *time.Time
	Count    *int
}

// Result holds the accepted business dates and the weekend candidates that
// were skipped, both in ascending order.
type Result struct {
	Dates    []time.Time
	Excluded []time.Time
}

// Date truncates t to midnight UTC of its calendar day.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string into a civil date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return Date(t), nil
}

func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// Horizon is the last date a recurrence starting at start may reach. A
// Feb 29 start ends on Feb 28 of the following year.
func Horizon(start time.Time) time.Time {
	return addMonthsClamped(Date(start), 12)
}

// Largest intervals whose first step can still land inside the horizon.
const (
	maxWeekInterval  = 53
	maxMonthInterval = 12
)

// singleOccurrence reports whether one step already passes the horizon, in
// which case only the start date is a candidate.
func (s Spec) singleOccurrence() bool {
	if s.Unit == UnitWeek {
		return s.Interval > maxWeekInterval
	}
	return s.Interval > maxMonthInterval
}

func (s Spec) Validate() error {
	if s.Start.IsZero() {
		return fmt.Errorf("%w: start date is required", ErrInvalidRecurrence)
	}
	if s.Interval < 1 {
		return fmt.Errorf("%w: interval must be at least 1", ErrInvalidRecurrence)
	}
	if !s.Unit.Valid() {
		return fmt.Errorf("%w: unsupported interval unit %q", ErrInvalidRecurrence, s.Unit)
	}
	if (s.End == nil) == (s.Count == nil) {
		return fmt.Errorf("%w: exactly one of end date or occurrence count is required", ErrInvalidRecurrence)
	}
	if s.Count != nil && *s.Count < 1 {
		return fmt.Errorf("%w: occurrence count must be at least 1", ErrInvalidRecurrence)
	}
	if s.End != nil {
		start, end := Date(s.Start), Date(*s.End)
		if end.Before(start) {
			return fmt.Errorf("%w: end date %s precedes start date %s", ErrInvalidRecurrence, end.Format(DateLayout), start.Format(DateLayout))
		}
		if end.After(Horizon(start)) {
			return fmt.Errorf("%w: end date %s is more than one year after start date", ErrInvalidRecurrence, end.Format(DateLayout))
		}
	}
	return nil
}

// limit is the inclusive upper bound for candidate dates.
func (s Spec) limit() time.Time {
	if s.End != nil {
		return Date(*s.End)
	}
	return Horizon(s.Start)
}

// step returns the k-th candidate. Monthly steps clamp against the start's
// day of month, so Jan 31 yields Feb 29 and then Mar 31.
func (s Spec) step(k int) time.Time {
	start := Date(s.Start)
	if s.Unit == UnitWeek {
		return start.AddDate(0, 0, 7*s.Interval*k)
	}
	return addMonthsClamped(start, s.Interval*k)
}

// Candidates yields every stepped date up to the end date or the one-year
// horizon, weekends included. Each call starts over from the first date.
func (s Spec) Candidates() iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		limit := s.limit()
		for k := 0; ; k++ {
			if k > 0 && s.singleOccurrence() {
				return
			}
			candidate := s.step(k)
			if candidate.After(limit) {
				return
			}
			if !yield(candidate) {
				return
			}
		}
	}
}

// Expand materializes the recurrence. Weekend candidates go to Excluded and
// do not count towards an occurrence count.
func Expand(s Spec) (Result, error) {
	if err := s.Validate(); err != nil {
		return Result{}, err
	}

	var res Result
	for candidate := range s.Candidates() {
		if IsWeekend(candidate) {
			res.Excluded = append(res.Excluded, candidate)
			continue
		}
		res.Dates = append(res.Dates, candidate)
		if s.Count != nil && len(res.Dates) == *s.Count {
			break
		}
	}

	if len(res.Dates) == 0 {
		return Result{}, fmt.Errorf("%w: every occurrence falls on a weekend", ErrInvalidRecurrence)
	}
	if s.Count != nil && len(res.Dates) < *s.Count {
		return Result{}, fmt.Errorf("%w: %d occurrences do not fit within one year of the start date", ErrInvalidRecurrence, *s.Count)
	}

	return res, nil
}

func addMonthsClamped(t time.Time, months int) time.Time {
	total := int(t.Month()) - 1 + months
	year := t.Year() + total/12
	month := time.Month(total%12 + 1)

	day := t.Day()
	if last := daysIn(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
