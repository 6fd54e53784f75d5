package request

import (
	"fmt"
	"time"

	"github.com/kailas-cloud/tardis-search/internal/domain"
)

// TimestampLayout is the accepted timestamp format. Fractional seconds are
// optional on input.
const TimestampLayout = "2006-01-02T15:04:05Z"

// Date is a calendar date without time of day.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// LocalDate converts t into loc and drops the time of day.
func LocalDate(t time.Time, loc *time.Location) Date {
	y, m, d := t.In(loc).Date()
	return Date{Year: y, Month: m, Day: d}
}

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

// Midnight returns the start of d in loc.
func (d Date) Midnight(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// String formats d as YYYY-MM-DD.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// DateRange is an inclusive range of local calendar dates.
type DateRange struct {
	Start Date
	End   Date
}

// IsEmpty reports whether End is before Start. Such a range matches nothing.
func (r DateRange) IsEmpty() bool { return r.End.Before(r.Start) }

// Bounds returns the half-open instant range covering the dates in loc:
// midnight of Start up to midnight of the day after End.
func (r DateRange) Bounds(loc *time.Location) (from, to time.Time) {
	return r.Start.Midnight(loc), r.End.Midnight(loc).AddDate(0, 0, 1)
}

// ParseTimestamp parses a UTC timestamp in TimestampLayout.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(TimestampLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: malformed timestamp %q", domain.ErrInvalidRequest, s)
	}
	return t.UTC(), nil
}

// DateConverter turns API timestamps into local calendar dates.
type DateConverter struct {
	Location *time.Location
}

// ToLocalRange parses both timestamps and converts them to local dates.
// A range is only produced when both bounds are present; a single bound
// yields nil. Malformed timestamps are rejected even when the other bound
// is missing.
func (c DateConverter) ToLocalRange(start, end string) (*DateRange, error) {
	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}

	var startDate, endDate *Date
	if start != "" {
		t, err := ParseTimestamp(start)
		if err != nil {
			return nil, err
		}
		d := LocalDate(t, loc)
		startDate = &d
	}
	if end != "" {
		t, err := ParseTimestamp(end)
		if err != nil {
			return nil, err
		}
		d := LocalDate(t, loc)
		endDate = &d
	}

	if startDate == nil || endDate == nil {
		return nil, nil
	}
	return &DateRange{Start: *startDate, End: *endDate}, nil
}
