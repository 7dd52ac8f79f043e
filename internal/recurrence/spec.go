package recurrence

import (
	"bytes"
	"encoding/json"
	"math"
	"sort"
)

// Pattern is one of the four fixed recurrence patterns kept for
// backward compatibility with previously stored tasks.
type Pattern string

const (
	PatternDaily   Pattern = "daily"
	PatternWeekly  Pattern = "weekly"
	PatternMonthly Pattern = "monthly"
	PatternYearly  Pattern = "yearly"
)

// Unit is the step unit of a flexible spec.
type Unit string

const (
	UnitDay   Unit = "day"
	UnitWeek  Unit = "week"
	UnitMonth Unit = "month"
	UnitYear  Unit = "year"
)

type Kind int

const (
	KindNone Kind = iota
	KindLegacy
	KindFlexible
)

const (
	MinInterval = 1
	MaxInterval = 99
)

// Spec is the canonical recurrence representation: a tagged union over
// "no recurrence", a legacy fixed pattern, and a flexible interval spec.
// Always switch on Kind; the remaining fields are only meaningful for the
// kind they belong to.
//
// The zero value is KindNone.
type Spec struct {
	Kind Kind

	// KindLegacy only.
	Pattern Pattern

	// KindFlexible only. WeekDays is non-empty, deduped and ascending when
	// set, and only set for UnitWeek. MonthDay is 1..31 when set (0 = unset)
	// and only set for UnitMonth.
	Interval int
	Unit     Unit
	WeekDays []int
	MonthDay int
}

// Legacy returns a legacy pattern spec. The pattern is not checked here;
// use Validate for untrusted input.
func Legacy(p Pattern) Spec {
	return Spec{Kind: KindLegacy, Pattern: p}
}

func (s Spec) IsNone() bool { return s.Kind == KindNone }

// IsZero reports whether the spec carries no recurrence. It makes the
// `omitzero` JSON tag work on embedding structs.
func (s Spec) IsZero() bool { return s.IsNone() }

func validPattern(p Pattern) bool {
	switch p {
	case PatternDaily, PatternWeekly, PatternMonthly, PatternYearly:
		return true
	}
	return false
}

func validUnit(u Unit) bool {
	switch u {
	case UnitDay, UnitWeek, UnitMonth, UnitYear:
		return true
	}
	return false
}

// Validate normalizes untrusted input into a Spec. It never fails: anything
// malformed degrades to the zero (no recurrence) spec, since raw values may
// come from stored JSON or from an AI response.
//
// Accepted shapes:
//   - nil            -> none
//   - string         -> exact legacy pattern name, anything else -> none
//   - Spec / *Spec   -> re-normalized
//   - map[string]any -> flexible spec fields (decoded JSON object)
func Validate(raw any) Spec {
	switch v := raw.(type) {
	case nil:
		return Spec{}
	case Spec:
		return normalize(v)
	case *Spec:
		if v == nil {
			return Spec{}
		}
		return normalize(*v)
	case string:
		if validPattern(Pattern(v)) {
			return Legacy(Pattern(v))
		}
		return Spec{}
	case map[string]any:
		return validateObject(v)
	default:
		return Spec{}
	}
}

func validateObject(m map[string]any) Spec {
	interval, ok := asInt(m["interval"])
	if !ok || interval < MinInterval {
		return Spec{}
	}
	unit, _ := m["unit"].(string)
	if !validUnit(Unit(unit)) {
		return Spec{}
	}

	s := Spec{
		Kind:     KindFlexible,
		Interval: min(interval, MaxInterval),
		Unit:     Unit(unit),
	}

	if s.Unit == UnitWeek {
		if days, ok := m["weekDays"].([]any); ok {
			s.WeekDays = normalizeWeekDays(intsOf(days))
		}
	}
	if s.Unit == UnitMonth {
		if day, ok := asInt(m["monthDay"]); ok && day >= 1 && day <= 31 {
			s.MonthDay = day
		}
	}
	return s
}

// normalize re-applies the validation invariants to an already-typed spec.
func normalize(s Spec) Spec {
	switch s.Kind {
	case KindLegacy:
		if !validPattern(s.Pattern) {
			return Spec{}
		}
		return Spec{Kind: KindLegacy, Pattern: s.Pattern}
	case KindFlexible:
		if s.Interval < MinInterval || !validUnit(s.Unit) {
			return Spec{}
		}
		out := Spec{
			Kind:     KindFlexible,
			Interval: min(s.Interval, MaxInterval),
			Unit:     s.Unit,
		}
		if s.Unit == UnitWeek {
			out.WeekDays = normalizeWeekDays(s.WeekDays)
		}
		if s.Unit == UnitMonth && s.MonthDay >= 1 && s.MonthDay <= 31 {
			out.MonthDay = s.MonthDay
		}
		return out
	default:
		return Spec{}
	}
}

// normalizeWeekDays filters to 0..6, dedupes and sorts ascending.
// Returns nil when nothing survives, so the field drops out entirely.
func normalizeWeekDays(days []int) []int {
	seen := map[int]bool{}
	out := make([]int, 0, len(days))
	for _, d := range days {
		if d < 0 || d > 6 || seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	if len(out) == 0 {
		return nil
	}
	sort.Ints(out)
	return out
}

// asInt accepts the numeric shapes JSON decoding produces. Non-integral
// floats are floored, matching the validator's contract for interval.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int(math.Floor(n)), true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return int(math.Floor(f)), true
	default:
		return 0, false
	}
}

func intsOf(vals []any) []int {
	out := make([]int, 0, len(vals))
	for _, v := range vals {
		n, ok := asInt(v)
		if !ok {
			continue
		}
		// Reject non-integral numbers for weekday values.
		if f, isFloat := v.(float64); isFloat && f != math.Floor(f) {
			continue
		}
		if num, isNum := v.(json.Number); isNum {
			if f, err := num.Float64(); err != nil || f != math.Floor(f) {
				continue
			}
		}
		out = append(out, n)
	}
	return out
}

// flexibleJSON is the output wire form of a flexible spec.
type flexibleJSON struct {
	Interval int   `json:"interval"`
	Unit     Unit  `json:"unit"`
	WeekDays []int `json:"weekDays,omitempty"`
	MonthDay int   `json:"monthDay,omitempty"`
}

// MarshalJSON writes a legacy spec as its bare pattern string and a flexible
// spec as an object, matching what clients have historically stored.
func (s Spec) MarshalJSON() ([]byte, error) {
	switch s.Kind {
	case KindLegacy:
		return json.Marshal(string(s.Pattern))
	case KindFlexible:
		return json.Marshal(flexibleJSON{
			Interval: s.Interval,
			Unit:     s.Unit,
			WeekDays: s.WeekDays,
			MonthDay: s.MonthDay,
		})
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts either wire form and degrades malformed input to the
// zero spec rather than failing the surrounding decode. Objects go through
// the same validation as Validate, so both entry points agree on corner
// values like non-integral intervals.
func (s *Spec) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		*s = Spec{}
		return nil
	}

	switch v := raw.(type) {
	case string:
		*s = Validate(v)
	case map[string]any:
		// Oldest stored shape: {"type":"weekly","interval":1}.
		if t, _ := v["type"].(string); validPattern(Pattern(t)) {
			if u, _ := v["unit"].(string); u == "" {
				*s = Legacy(Pattern(t))
				return nil
			}
		}
		*s = validateObject(v)
	default:
		*s = Spec{}
	}
	return nil
}
