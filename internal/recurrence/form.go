package recurrence

// Preset is the coarse choice offered by the recurrence form: one of the four
// simple patterns, a fully custom spec, or none.
type Preset string

const (
	PresetNone    Preset = "none"
	PresetDaily   Preset = "daily"
	PresetWeekly  Preset = "weekly"
	PresetMonthly Preset = "monthly"
	PresetYearly  Preset = "yearly"
	PresetCustom  Preset = "custom"
)

// FormState is the flat, UI-facing view of a spec. It exists so the edit form
// can hold every control's value at once; it is never persisted. BuildSpec and
// ParseToForm are the only code allowed to couple it to Spec.
type FormState struct {
	Enabled             bool   `json:"enabled"`
	Preset              Preset `json:"preset"`
	Interval            int    `json:"interval"`
	Unit                Unit   `json:"unit"`
	WeekDays            []int  `json:"weekDays,omitempty"`
	MonthDay            int    `json:"monthDay,omitempty"`
	UseSpecificMonthDay bool   `json:"useSpecificMonthDay"`
}

// DefaultForm is the state of the form before recurrence is enabled.
func DefaultForm() FormState {
	return FormState{
		Enabled:  false,
		Preset:   PresetNone,
		Interval: 1,
		Unit:     UnitDay,
	}
}

// BuildSpec converts an edited form into the canonical spec.
func BuildSpec(f FormState) Spec {
	if !f.Enabled || f.Preset == PresetNone {
		return Spec{}
	}
	if f.Preset != PresetCustom {
		return Legacy(Pattern(f.Preset))
	}

	s := Spec{
		Kind:     KindFlexible,
		Interval: f.Interval,
		Unit:     f.Unit,
	}
	if f.Unit == UnitWeek {
		s.WeekDays = f.WeekDays
	}
	if f.Unit == UnitMonth && f.UseSpecificMonthDay {
		s.MonthDay = f.MonthDay
	}
	return normalize(s)
}

// ParseToForm populates the form from a stored spec. A flexible spec that is
// just "every 1 unit" with no weekday or month-day selection collapses to the
// matching named preset; it behaves identically and reads better in the form.
// Monthly is the exception: the flexible month path clamps at month ends while
// the legacy pattern rolls over, so it stays custom to keep behavior intact.
func ParseToForm(s Spec) FormState {
	switch s.Kind {
	case KindLegacy:
		return FormState{
			Enabled:  true,
			Preset:   Preset(s.Pattern),
			Interval: 1,
			Unit:     unitForPattern(s.Pattern),
		}
	case KindFlexible:
		if s.Interval == 1 && len(s.WeekDays) == 0 && s.MonthDay == 0 && s.Unit != UnitMonth {
			p := patternForUnit(s.Unit)
			return FormState{
				Enabled:  true,
				Preset:   Preset(p),
				Interval: 1,
				Unit:     s.Unit,
			}
		}
		return FormState{
			Enabled:             true,
			Preset:              PresetCustom,
			Interval:            s.Interval,
			Unit:                s.Unit,
			WeekDays:            append([]int(nil), s.WeekDays...),
			MonthDay:            s.MonthDay,
			UseSpecificMonthDay: s.MonthDay > 0,
		}
	default:
		return DefaultForm()
	}
}

func unitForPattern(p Pattern) Unit {
	switch p {
	case PatternDaily:
		return UnitDay
	case PatternWeekly:
		return UnitWeek
	case PatternMonthly:
		return UnitMonth
	default:
		return UnitYear
	}
}

func patternForUnit(u Unit) Pattern {
	switch u {
	case UnitDay:
		return PatternDaily
	case UnitWeek:
		return PatternWeekly
	case UnitMonth:
		return PatternMonthly
	default:
		return PatternYearly
	}
}
