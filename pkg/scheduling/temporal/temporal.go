// Package temporal provides the period-boundary and blocked-time expansion
// helpers the rest of the scheduling core builds on.
//
// Week boundaries use the locale-independent convention that weeks start on
// Sunday; this must match the ILP model builder's day enumeration.
package temporal

import (
	"time"

	"github.com/paiban/shiftplan/pkg/scheduling/model"
)

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the instant just before the next day begins.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// StartOfWeek returns midnight on the Sunday on or before t.
func StartOfWeek(t time.Time) time.Time {
	d := StartOfDay(t)
	offset := int(d.Weekday()) // Sunday == 0
	return d.AddDate(0, 0, -offset)
}

// EndOfWeek returns the instant just before the following Sunday.
func EndOfWeek(t time.Time) time.Time {
	return StartOfWeek(t).AddDate(0, 0, 7).Add(-time.Nanosecond)
}

// StartOfMonth returns midnight on the first of t's month.
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// EndOfMonth returns the instant just before the following month begins.
func EndOfMonth(t time.Time) time.Time {
	return StartOfMonth(t).AddDate(0, 1, 0).Add(-time.Nanosecond)
}

// StartOfYear returns midnight on January 1st of t's year.
func StartOfYear(t time.Time) time.Time {
	return time.Date(t.Year(), 1, 1, 0, 0, 0, 0, t.Location())
}

// EndOfYear returns the instant just before the following year begins.
func EndOfYear(t time.Time) time.Time {
	return StartOfYear(t).AddDate(1, 0, 0).Add(-time.Nanosecond)
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return StartOfDay(a).Equal(StartOfDay(b))
}

// DayDifference returns the number of calendar days from a to b (b-a),
// ignoring time-of-day.
func DayDifference(a, b time.Time) int {
	da, db := StartOfDay(a), StartOfDay(b)
	return int(db.Sub(da).Hours() / 24)
}

// Days enumerates every calendar day in [from, to], inclusive, as midnight
// instants in from's location.
func Days(from, to time.Time) []time.Time {
	start := StartOfDay(from)
	end := StartOfDay(to)
	var out []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out
}

// Interval is a concrete [Start, End) sub-interval produced by blocked-time
// expansion.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether two intervals share any instant.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && other.Start.Before(iv.End)
}

// monthlyRecurrenceHorizon is the pragmatic one-year lookahead used when a
// monthly recurrence has no explicit EndDate (SPEC_FULL.md open-question
// decision).
const monthlyRecurrenceHorizon = 365 * 24 * time.Hour

// ExpandBlockedTime yields every concrete interval a BlockedTime occupies
// inside [from, to].
func ExpandBlockedTime(bt model.BlockedTime, from, to time.Time) []Interval {
	query := Interval{Start: from, End: to}
	base := Interval{Start: bt.Start, End: bt.End}

	if bt.Recurrence == nil {
		if base.Overlaps(query) {
			return []Interval{base}
		}
		return nil
	}

	rec := bt.Recurrence
	interval := rec.Interval
	if interval < 1 {
		interval = 1
	}

	endBound := to
	if rec.EndDate != nil && rec.EndDate.Before(endBound) {
		endBound = *rec.EndDate
	} else if rec.EndDate == nil && rec.Type == model.RecurrenceMonthly {
		horizon := bt.Start.Add(monthlyRecurrenceHorizon)
		if horizon.Before(endBound) {
			endBound = horizon
		}
	}

	duration := bt.End.Sub(bt.Start)

	if rec.Type == model.RecurrenceWeekly && len(rec.Weekdays) > 0 {
		return expandWeeklyWithWeekdays(bt, rec, query, endBound, duration)
	}

	return expandStepped(bt, rec, interval, query, endBound, duration)
}

// expandWeeklyWithWeekdays handles weekly recurrence with an explicit
// weekday set: one occurrence per selected weekday, per eligible week.
func expandWeeklyWithWeekdays(bt model.BlockedTime, rec *model.Recurrence, query Interval, endBound time.Time, duration time.Duration) []Interval {
	var out []Interval

	baseWeekStart := StartOfWeek(bt.Start)
	queryWeekStart := StartOfWeek(query.Start)
	if queryWeekStart.Before(baseWeekStart) {
		queryWeekStart = baseWeekStart
	}

	hour, minute, sec := bt.Start.Hour(), bt.Start.Minute(), bt.Start.Second()
	nsec := bt.Start.Nanosecond()

	baseWeekIndex := 0
	for week := queryWeekStart; !week.After(endBound); week = week.AddDate(0, 0, 7) {
		weekIndex := int(week.Sub(baseWeekStart).Hours() / 24 / 7)
		if weekIndex < baseWeekIndex {
			continue
		}
		if mod(weekIndex-baseWeekIndex, rec.Interval) != 0 {
			continue
		}

		for wd := range rec.Weekdays {
			if !rec.Weekdays[wd] {
				continue
			}
			day := week.AddDate(0, 0, int(wd))
			occStart := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, sec, nsec, day.Location())
			if occStart.Before(bt.Start) {
				continue
			}
			if occStart.After(endBound) {
				continue
			}
			occ := Interval{Start: occStart, End: occStart.Add(duration)}
			if occ.Overlaps(query) {
				out = append(out, occ)
			}
		}
	}

	return out
}

// expandStepped handles daily, weekly-without-weekdays, and monthly
// recurrence by stepping the base interval forward by `interval` units.
func expandStepped(bt model.BlockedTime, rec *model.Recurrence, interval int, query Interval, endBound time.Time, duration time.Duration) []Interval {
	var out []Interval

	step := func(t time.Time) time.Time {
		switch rec.Type {
		case model.RecurrenceDaily:
			return t.AddDate(0, 0, interval)
		case model.RecurrenceWeekly:
			return t.AddDate(0, 0, 7*interval)
		case model.RecurrenceMonthly:
			return t.AddDate(0, interval, 0)
		default:
			return t.AddDate(0, 0, interval)
		}
	}

	for occStart := bt.Start; !occStart.After(endBound); occStart = step(occStart) {
		occ := Interval{Start: occStart, End: occStart.Add(duration)}
		if occ.Overlaps(query) {
			out = append(out, occ)
		}
		if occStart.Equal(step(occStart)) {
			break // guard against a zero step
		}
	}

	return out
}

func mod(a, b int) int {
	if b == 0 {
		return 0
	}
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

// PeriodBounds returns the [start, end] instants for the given period kind
// anchored on t.
func PeriodBounds(period model.Period, t time.Time) (start, end time.Time) {
	switch period {
	case model.PeriodDay:
		return StartOfDay(t), EndOfDay(t)
	case model.PeriodWeek:
		return StartOfWeek(t), EndOfWeek(t)
	case model.PeriodMonth:
		return StartOfMonth(t), EndOfMonth(t)
	case model.PeriodYear:
		return StartOfYear(t), EndOfYear(t)
	default:
		return StartOfDay(t), EndOfDay(t)
	}
}
