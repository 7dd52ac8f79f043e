package task

import (
	"fmt"
	"strings"
	"time"

	"eisendo/internal/model"
	"eisendo/internal/recurrence"
)

const icsDateLayout = "20060102"

var icsDayNames = [7]string{"SU", "MO", "TU", "WE", "TH", "FR", "SA"}

// BuildTaskCalendarICS builds a simple iCalendar event for a task.
// A due date is required so the exported event has a concrete start date.
func BuildTaskCalendarICS(t model.Task, now time.Time) (string, error) {
	dueRaw := ""
	if t.DueDate != nil {
		dueRaw = strings.TrimSpace(*t.DueDate)
	}
	if dueRaw == "" {
		return "", fmt.Errorf("task due date required for calendar export")
	}

	due, err := time.ParseInLocation(recurrence.DateLayout, dueRaw, time.Local)
	if err != nil {
		return "", fmt.Errorf("task due date must be YYYY-MM-DD")
	}
	end := due.AddDate(0, 0, 1)

	title := strings.TrimSpace(t.Title)
	if title == "" {
		title = "Task"
	}
	desc := strings.TrimSpace(t.Description)

	uid := fmt.Sprintf("task-%s@eisendo", strings.TrimSpace(string(t.ID)))
	if strings.TrimSpace(string(t.ID)) == "" {
		uid = fmt.Sprintf("task-export-%d@eisendo", now.UnixNano())
	}

	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//Eisendo//Task Export//EN",
		"CALSCALE:GREGORIAN",
		"METHOD:PUBLISH",
		"BEGIN:VEVENT",
		"UID:" + escapeICSText(uid),
		"DTSTAMP:" + now.UTC().Format("20060102T150405Z"),
		"SUMMARY:" + escapeICSText(title),
		"DTSTART;VALUE=DATE:" + due.Format(icsDateLayout),
		"DTEND;VALUE=DATE:" + end.Format(icsDateLayout),
	}
	if desc != "" {
		lines = append(lines, "DESCRIPTION:"+escapeICSText(desc))
	}
	if rrule := recurrenceToICSRRULE(t.Recurrence); rrule != "" {
		lines = append(lines, "RRULE:"+rrule)
	}
	lines = append(lines, "END:VEVENT", "END:VCALENDAR", "")

	return strings.Join(lines, "\r\n"), nil
}

// recurrenceToICSRRULE maps a spec onto RFC 5545 RRULE. The weekday-set and
// month-day selections translate to BYDAY/BYMONTHDAY so external calendars
// repeat on the same dates the engine computes.
func recurrenceToICSRRULE(spec recurrence.Spec) string {
	switch spec.Kind {
	case recurrence.KindLegacy:
		return "FREQ=" + icsFreqForUnit(legacyUnit(spec.Pattern)) + ";INTERVAL=1"
	case recurrence.KindFlexible:
		parts := []string{
			"FREQ=" + icsFreqForUnit(spec.Unit),
			fmt.Sprintf("INTERVAL=%d", spec.Interval),
		}
		if len(spec.WeekDays) > 0 {
			names := make([]string, len(spec.WeekDays))
			for i, d := range spec.WeekDays {
				names[i] = icsDayNames[d]
			}
			parts = append(parts, "BYDAY="+strings.Join(names, ","))
		}
		if spec.MonthDay > 0 {
			parts = append(parts, fmt.Sprintf("BYMONTHDAY=%d", spec.MonthDay))
		}
		return strings.Join(parts, ";")
	default:
		return ""
	}
}

func icsFreqForUnit(u recurrence.Unit) string {
	switch u {
	case recurrence.UnitDay:
		return "DAILY"
	case recurrence.UnitWeek:
		return "WEEKLY"
	case recurrence.UnitMonth:
		return "MONTHLY"
	default:
		return "YEARLY"
	}
}

func legacyUnit(p recurrence.Pattern) recurrence.Unit {
	switch p {
	case recurrence.PatternDaily:
		return recurrence.UnitDay
	case recurrence.PatternWeekly:
		return recurrence.UnitWeek
	case recurrence.PatternMonthly:
		return recurrence.UnitMonth
	default:
		return recurrence.UnitYear
	}
}

func escapeICSText(s string) string {
	repl := strings.NewReplacer(
		"\\", "\\\\",
		";", "\\;",
		",", "\\,",
		"\r\n", "\\n",
		"\n", "\\n",
		"\r", "\\n",
	)
	return repl.Replace(s)
}
