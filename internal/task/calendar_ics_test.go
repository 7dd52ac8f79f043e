package task

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eisendo/internal/model"
	"eisendo/internal/recurrence"
)

var icsNow = time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

func TestBuildTaskCalendarICSRequiresDueDate(t *testing.T) {
	_, err := BuildTaskCalendarICS(model.Task{ID: "task_1", Title: "No date"}, icsNow)
	assert.Error(t, err)
}

func TestBuildTaskCalendarICSBasicEvent(t *testing.T) {
	ics, err := BuildTaskCalendarICS(model.Task{
		ID:          "task_1",
		Title:       "Dentist; bring card",
		Description: "Ask about the molar",
		DueDate:     strPtr("2024-06-20"),
	}, icsNow)
	require.NoError(t, err)

	assert.Contains(t, ics, "BEGIN:VCALENDAR")
	assert.Contains(t, ics, "SUMMARY:Dentist\\; bring card")
	assert.Contains(t, ics, "DTSTART;VALUE=DATE:20240620")
	assert.Contains(t, ics, "DTEND;VALUE=DATE:20240621")
	assert.Contains(t, ics, "DESCRIPTION:Ask about the molar")
	assert.NotContains(t, ics, "RRULE")
	assert.True(t, strings.HasSuffix(ics, "END:VCALENDAR\r\n"))
}

func TestRecurrenceToICSRRULE(t *testing.T) {
	cases := []struct {
		name string
		spec recurrence.Spec
		want string
	}{
		{"none", recurrence.Spec{}, ""},
		{"legacy daily", recurrence.Legacy(recurrence.PatternDaily), "FREQ=DAILY;INTERVAL=1"},
		{"legacy monthly", recurrence.Legacy(recurrence.PatternMonthly), "FREQ=MONTHLY;INTERVAL=1"},
		{
			"biweekly on mon/wed",
			recurrence.Spec{Kind: recurrence.KindFlexible, Interval: 2, Unit: recurrence.UnitWeek, WeekDays: []int{1, 3}},
			"FREQ=WEEKLY;INTERVAL=2;BYDAY=MO,WE",
		},
		{
			"15th monthly",
			recurrence.Spec{Kind: recurrence.KindFlexible, Interval: 1, Unit: recurrence.UnitMonth, MonthDay: 15},
			"FREQ=MONTHLY;INTERVAL=1;BYMONTHDAY=15",
		},
		{
			"every 3 years",
			recurrence.Spec{Kind: recurrence.KindFlexible, Interval: 3, Unit: recurrence.UnitYear},
			"FREQ=YEARLY;INTERVAL=3",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, recurrenceToICSRRULE(tc.spec))
		})
	}
}

func TestBuildTaskCalendarICSIncludesRRULE(t *testing.T) {
	ics, err := BuildTaskCalendarICS(model.Task{
		ID:         "task_1",
		Title:      "Gym",
		DueDate:    strPtr("2024-06-17"),
		Recurrence: recurrence.Spec{Kind: recurrence.KindFlexible, Interval: 1, Unit: recurrence.UnitWeek, WeekDays: []int{1, 3, 5}},
	}, icsNow)
	require.NoError(t, err)
	assert.Contains(t, ics, "RRULE:FREQ=WEEKLY;INTERVAL=1;BYDAY=MO,WE,FR")
}
