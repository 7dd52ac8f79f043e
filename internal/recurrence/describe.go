package recurrence

import (
	"fmt"
	"strings"
)

var dayNames = [7]string{
	"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday",
}

// Describe renders a spec as the short human-readable label shown in task
// lists and in the recurrence form's live preview.
func Describe(spec Spec) string {
	switch spec.Kind {
	case KindLegacy:
		return legacyLabel(spec.Pattern)
	case KindFlexible:
		return describeFlexible(spec)
	default:
		return ""
	}
}

func legacyLabel(p Pattern) string {
	switch p {
	case PatternDaily:
		return "Daily"
	case PatternWeekly:
		return "Weekly"
	case PatternMonthly:
		return "Monthly"
	default:
		return "Yearly"
	}
}

func describeFlexible(s Spec) string {
	if s.Unit == UnitWeek && len(s.WeekDays) > 0 {
		return describeWeekDays(s.Interval, s.WeekDays)
	}
	if s.Unit == UnitMonth && s.MonthDay > 0 {
		if s.Interval == 1 {
			return fmt.Sprintf("%s of each month", ordinal(s.MonthDay))
		}
		return fmt.Sprintf("%s every %d months", ordinal(s.MonthDay), s.Interval)
	}

	switch s.Interval {
	case 1:
		switch s.Unit {
		case UnitDay:
			return "Daily"
		case UnitWeek:
			return "Weekly"
		case UnitMonth:
			return "Monthly"
		default:
			return "Yearly"
		}
	case 2:
		switch s.Unit {
		case UnitDay:
			return "Every other day"
		case UnitWeek:
			return "Biweekly"
		case UnitMonth:
			return "Bimonthly"
		default:
			return "Biannual"
		}
	default:
		switch s.Unit {
		case UnitDay:
			return fmt.Sprintf("Every %d days", s.Interval)
		case UnitWeek:
			return fmt.Sprintf("Every %d weeks", s.Interval)
		case UnitMonth:
			return fmt.Sprintf("Every %d months", s.Interval)
		default:
			return fmt.Sprintf("Every %d years", s.Interval)
		}
	}
}

func describeWeekDays(interval int, days []int) string {
	switch {
	case equalDays(days, []int{1, 2, 3, 4, 5}):
		if interval == 1 {
			return "Weekdays"
		}
		return fmt.Sprintf("Every %d weeks (weekdays)", interval)
	case equalDays(days, []int{0, 6}):
		if interval == 1 {
			return "Weekends"
		}
		return fmt.Sprintf("Every %d weeks (weekends)", interval)
	}

	names := make([]string, len(days))
	for i, d := range days {
		names[i] = dayNames[d]
	}
	joined := strings.Join(names, ", ")
	if interval == 1 {
		return "Every " + joined
	}
	return fmt.Sprintf("Every %d weeks on %s", interval, joined)
}

func equalDays(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ordinal formats n with its English ordinal suffix (1st, 2nd, 3rd, 4th, ...,
// 11th-13th, 21st, ...).
func ordinal(n int) string {
	suffix := "th"
	if n%100 < 11 || n%100 > 13 {
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", n, suffix)
}
