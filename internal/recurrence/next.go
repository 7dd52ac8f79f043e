package recurrence

import (
	"errors"
	"time"
)

// DateLayout is the calendar-date wire format used for deadlines.
const DateLayout = "2006-01-02"

// ErrNoRecurrence is returned when the calculator is asked for the next
// occurrence of a non-recurring spec. That is a caller bug, not bad data.
var ErrNoRecurrence = errors.New("recurrence: spec does not recur")

// Next computes the deadline of the occurrence after deadline. An empty
// deadline falls back to now; callers pass time.Now() in production and a
// fixed time in tests so a midnight boundary can never tear a calculation.
//
// The spec is assumed validated (see Validate); Next does not re-check field
// invariants.
func Next(deadline string, spec Spec, now time.Time) (string, error) {
	base := dateOnly(now)
	if deadline != "" {
		if d, err := time.ParseInLocation(DateLayout, deadline, time.UTC); err == nil {
			base = d
		}
	}

	switch spec.Kind {
	case KindLegacy:
		return nextLegacy(base, spec.Pattern).Format(DateLayout), nil
	case KindFlexible:
		return nextFlexible(base, spec).Format(DateLayout), nil
	default:
		return "", ErrNoRecurrence
	}
}

// Legacy monthly/yearly intentionally keep raw calendar overflow
// (Jan 31 + 1 month lands in early March), matching what stored tasks have
// always done. The flexible month path clamps instead.
func nextLegacy(base time.Time, p Pattern) time.Time {
	switch p {
	case PatternDaily:
		return base.AddDate(0, 0, 1)
	case PatternWeekly:
		return base.AddDate(0, 0, 7)
	case PatternMonthly:
		return base.AddDate(0, 1, 0)
	default: // PatternYearly
		return base.AddDate(1, 0, 0)
	}
}

func nextFlexible(base time.Time, s Spec) time.Time {
	switch s.Unit {
	case UnitDay:
		return base.AddDate(0, 0, s.Interval)
	case UnitWeek:
		if len(s.WeekDays) > 0 {
			return nextOnWeekDays(base, s.Interval, s.WeekDays)
		}
		return base.AddDate(0, 0, s.Interval*7)
	case UnitMonth:
		return addMonthsClamped(base, s.Interval, s.MonthDay)
	default: // UnitYear
		return base.AddDate(s.Interval, 0, 0)
	}
}

// nextOnWeekDays advances to the next selected weekday. With interval 1 and a
// selected day still ahead in the base week, that day wins; otherwise it jumps
// to the first selected day of the week that starts interval weeks later.
// The result is always strictly after base.
func nextOnWeekDays(base time.Time, interval int, days []int) time.Time {
	cur := int(base.Weekday())
	if interval == 1 {
		for _, d := range days {
			if d > cur {
				return base.AddDate(0, 0, d-cur)
			}
		}
	}
	add := (7 - cur + days[0]) + (interval-1)*7
	return base.AddDate(0, 0, add)
}

// addMonthsClamped steps months months ahead keeping the day-of-month, clamped
// to the length of the target month. monthDay overrides the base day when set.
func addMonthsClamped(base time.Time, months, monthDay int) time.Time {
	day := base.Day()
	if monthDay > 0 {
		day = monthDay
	}
	first := time.Date(base.Year(), base.Month(), 1, 0, 0, 0, 0, base.Location())
	target := first.AddDate(0, months, 0)
	if dim := daysInMonth(target.Year(), target.Month()); day > dim {
		day = dim
	}
	return time.Date(target.Year(), target.Month(), day, 0, 0, 0, 0, base.Location())
}

func daysInMonth(year int, month time.Month) int {
	// Day zero of the following month.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
