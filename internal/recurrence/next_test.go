package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC) // a Saturday

func flexible(interval int, unit Unit) Spec {
	return Spec{Kind: KindFlexible, Interval: interval, Unit: unit}
}

func TestNext_NoneSpecFails(t *testing.T) {
	_, err := Next("2024-01-01", Spec{}, testNow)
	assert.ErrorIs(t, err, ErrNoRecurrence)
}

func TestNext_LegacyPatterns(t *testing.T) {
	tests := []struct {
		pattern  Pattern
		deadline string
		want     string
	}{
		{PatternDaily, "2024-03-01", "2024-03-02"},
		{PatternWeekly, "2024-03-01", "2024-03-08"},
		{PatternMonthly, "2024-03-15", "2024-04-15"},
		{PatternYearly, "2024-03-01", "2025-03-01"},
	}
	for _, tc := range tests {
		got, err := Next(tc.deadline, Legacy(tc.pattern), testNow)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "pattern %s", tc.pattern)
	}
}

func TestNext_LegacyMonthlyKeepsCalendarOverflow(t *testing.T) {
	// Jan 31 + 1 month normalizes through Feb 31; stored tasks have always
	// rolled forward like this, so the legacy path keeps it.
	got, err := Next("2024-01-31", Legacy(PatternMonthly), testNow)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-02", got) // 2024 is a leap year

	got, err = Next("2023-01-31", Legacy(PatternMonthly), testNow)
	require.NoError(t, err)
	assert.Equal(t, "2023-03-03", got)
}

func TestNext_FlexibleDaysAndWeeks(t *testing.T) {
	got, err := Next("2024-03-01", flexible(3, UnitDay), testNow)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-04", got)

	// Biweekly with no weekday selection is a plain 14-day jump.
	got, err = Next("2024-03-01", flexible(2, UnitWeek), testNow)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-15", got)
}

func TestNext_FlexibleMonthClampsToMonthEnd(t *testing.T) {
	spec := flexible(1, UnitMonth)
	spec.MonthDay = 31

	got, err := Next("2024-01-31", spec, testNow)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", got, "leap-year February")

	got, err = Next("2025-01-31", spec, testNow)
	require.NoError(t, err)
	assert.Equal(t, "2025-02-28", got)

	// Without an explicit monthDay the base day clamps the same way.
	got, err = Next("2024-01-31", flexible(1, UnitMonth), testNow)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", got)
}

func TestNext_FlexibleMonthDayTargets(t *testing.T) {
	spec := flexible(3, UnitMonth)
	spec.MonthDay = 15

	got, err := Next("2024-01-02", spec, testNow)
	require.NoError(t, err)
	assert.Equal(t, "2024-04-15", got)
}

func TestNext_FlexibleYears(t *testing.T) {
	got, err := Next("2024-05-10", flexible(4, UnitYear), testNow)
	require.NoError(t, err)
	assert.Equal(t, "2028-05-10", got)
}

func TestNext_WeekDaysWithinSameWeek(t *testing.T) {
	// 2024-01-01 is a Monday; Wednesday is still ahead this week.
	spec := flexible(1, UnitWeek)
	spec.WeekDays = []int{3}

	got, err := Next("2024-01-01", spec, testNow)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-03", got)
}

func TestNext_WeekDaysWrapToNextWeek(t *testing.T) {
	// 2024-01-03 is a Wednesday; with Mon+Wed selected, nothing later remains
	// in this week, so the next hit is the following Monday.
	spec := flexible(1, UnitWeek)
	spec.WeekDays = []int{1, 3}

	got, err := Next("2024-01-03", spec, testNow)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-08", got)
}

func TestNext_WeekDaysMultiWeekInterval(t *testing.T) {
	// Every 2nd week on Monday, from a Wednesday: skip to the week after next.
	spec := flexible(2, UnitWeek)
	spec.WeekDays = []int{1}

	got, err := Next("2024-01-03", spec, testNow)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-15", got)
}

func TestNext_SameWeekdaySelectedIsStrictlyAfter(t *testing.T) {
	// Base is a Sunday and only Sunday is selected; the result must be the
	// next Sunday, never the base date itself.
	spec := flexible(1, UnitWeek)
	spec.WeekDays = []int{0}

	got, err := Next("2024-01-07", spec, testNow)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-14", got)
}

func TestNext_MissingDeadlineUsesClock(t *testing.T) {
	got, err := Next("", Legacy(PatternDaily), testNow)
	require.NoError(t, err)
	assert.Equal(t, "2024-06-16", got)
}

func TestNext_MalformedDeadlineFallsBackToClock(t *testing.T) {
	got, err := Next("not-a-date", Legacy(PatternWeekly), testNow)
	require.NoError(t, err)
	assert.Equal(t, "2024-06-22", got)
}

func TestNext_AlwaysStrictlyAfterBase(t *testing.T) {
	base := "2024-06-15"
	units := []Unit{UnitDay, UnitWeek, UnitMonth, UnitYear}
	for _, unit := range units {
		for _, interval := range []int{1, 2, 5, 13, 99} {
			got, err := Next(base, flexible(interval, unit), testNow)
			require.NoError(t, err)
			assert.Greater(t, got, base, "unit=%s interval=%d", unit, interval)
		}
	}
	for _, p := range []Pattern{PatternDaily, PatternWeekly, PatternMonthly, PatternYearly} {
		got, err := Next(base, Legacy(p), testNow)
		require.NoError(t, err)
		assert.Greater(t, got, base, "pattern=%s", p)
	}
}
