package recurrence

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_LegacyStrings(t *testing.T) {
	for _, name := range []string{"daily", "weekly", "monthly", "yearly"} {
		s := Validate(name)
		assert.Equal(t, KindLegacy, s.Kind)
		assert.Equal(t, Pattern(name), s.Pattern)
	}

	// Case-sensitive exact match only.
	assert.True(t, Validate("Daily").IsNone())
	assert.True(t, Validate("DAILY").IsNone())
	assert.True(t, Validate("fortnightly").IsNone())
	assert.True(t, Validate("").IsNone())
}

func TestValidate_NilAndGarbage(t *testing.T) {
	assert.True(t, Validate(nil).IsNone())
	assert.True(t, Validate(42).IsNone())
	assert.True(t, Validate([]string{"daily"}).IsNone())
}

func TestValidate_FlexibleObject(t *testing.T) {
	s := Validate(map[string]any{
		"interval": float64(2),
		"unit":     "week",
		"weekDays": []any{float64(3), float64(1), float64(3), float64(9), float64(-1)},
	})
	require.Equal(t, KindFlexible, s.Kind)
	assert.Equal(t, 2, s.Interval)
	assert.Equal(t, UnitWeek, s.Unit)
	assert.Equal(t, []int{1, 3}, s.WeekDays, "filtered, deduped, sorted")
}

func TestValidate_IntervalRules(t *testing.T) {
	assert.True(t, Validate(map[string]any{"interval": float64(0), "unit": "day"}).IsNone())
	assert.True(t, Validate(map[string]any{"interval": "two", "unit": "day"}).IsNone())
	assert.True(t, Validate(map[string]any{"unit": "day"}).IsNone())

	// Floored, then clamped to 99.
	s := Validate(map[string]any{"interval": 7.9, "unit": "day"})
	assert.Equal(t, 7, s.Interval)
	s = Validate(map[string]any{"interval": float64(500), "unit": "day"})
	assert.Equal(t, 99, s.Interval)
}

func TestValidate_UnknownUnit(t *testing.T) {
	assert.True(t, Validate(map[string]any{"interval": float64(1), "unit": "fortnight"}).IsNone())
}

func TestValidate_FieldsDroppedForWrongUnit(t *testing.T) {
	// weekDays mean nothing outside unit=week; monthDay outside unit=month.
	s := Validate(map[string]any{
		"interval": float64(1),
		"unit":     "day",
		"weekDays": []any{float64(1)},
		"monthDay": float64(15),
	})
	require.Equal(t, KindFlexible, s.Kind)
	assert.Empty(t, s.WeekDays)
	assert.Zero(t, s.MonthDay)
}

func TestValidate_MonthDayRange(t *testing.T) {
	ok := Validate(map[string]any{"interval": float64(1), "unit": "month", "monthDay": float64(31)})
	assert.Equal(t, 31, ok.MonthDay)

	dropped := Validate(map[string]any{"interval": float64(1), "unit": "month", "monthDay": float64(32)})
	require.Equal(t, KindFlexible, dropped.Kind)
	assert.Zero(t, dropped.MonthDay)
}

func TestValidate_EmptyWeekDaysDropped(t *testing.T) {
	s := Validate(map[string]any{
		"interval": float64(1),
		"unit":     "week",
		"weekDays": []any{float64(8), float64(-2)},
	})
	require.Equal(t, KindFlexible, s.Kind)
	assert.Nil(t, s.WeekDays)
}

func TestValidate_Idempotent(t *testing.T) {
	inputs := []any{
		"weekly",
		map[string]any{"interval": 3.7, "unit": "week", "weekDays": []any{float64(5), float64(5), float64(1)}},
		map[string]any{"interval": float64(120), "unit": "month", "monthDay": float64(31)},
		nil,
		"nonsense",
	}
	for _, raw := range inputs {
		once := Validate(raw)

		// Re-serialize and validate again; the result must not change.
		b, err := json.Marshal(once)
		require.NoError(t, err)
		var round Spec
		require.NoError(t, json.Unmarshal(b, &round))
		assert.Equal(t, once, Validate(round))
	}
}

func TestSpecJSON_LegacyIsBareString(t *testing.T) {
	b, err := json.Marshal(Legacy(PatternWeekly))
	require.NoError(t, err)
	assert.Equal(t, `"weekly"`, string(b))

	var s Spec
	require.NoError(t, json.Unmarshal([]byte(`"monthly"`), &s))
	assert.Equal(t, Legacy(PatternMonthly), s)
}

func TestSpecJSON_FlexibleObjectRoundTrip(t *testing.T) {
	in := Spec{Kind: KindFlexible, Interval: 2, Unit: UnitWeek, WeekDays: []int{0, 6}}
	b, err := json.Marshal(in)
	require.NoError(t, err)

	var out Spec
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, in, out)
}

func TestSpecJSON_OldTypeObjectAccepted(t *testing.T) {
	var s Spec
	require.NoError(t, json.Unmarshal([]byte(`{"type":"weekly","interval":1}`), &s))
	assert.Equal(t, Legacy(PatternWeekly), s)
}

func TestSpecJSON_NonIntegralNumbersFloored(t *testing.T) {
	var s Spec
	require.NoError(t, json.Unmarshal([]byte(`{"interval":2.5,"unit":"week"}`), &s))
	assert.Equal(t, KindFlexible, s.Kind)
	assert.Equal(t, 2, s.Interval)

	// Both wire entry points agree on the corner value.
	assert.Equal(t, Validate(map[string]any{"interval": 2.5, "unit": "week"}), s)

	// Non-integral weekday values drop out like any other invalid weekday.
	require.NoError(t, json.Unmarshal([]byte(`{"interval":1,"unit":"week","weekDays":[1.5,3]}`), &s))
	assert.Equal(t, []int{3}, s.WeekDays)
}

func TestSpecJSON_MalformedDegradesToNone(t *testing.T) {
	var s Spec
	require.NoError(t, json.Unmarshal([]byte(`{"interval":"soon","unit":"day"}`), &s))
	assert.True(t, s.IsNone())

	require.NoError(t, json.Unmarshal([]byte(`null`), &s))
	assert.True(t, s.IsNone())
}
