package harness

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/roach88/minerush/internal/game"
)

// floatTolerance is the relative tolerance of numeric state comparisons.
// Passive income is accrued in tenth-of-a-second slices, so sums carry
// rounding error.
const floatTolerance = 1e-6

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string        // Assertion type for categorization
	Expected string        // Human-readable expected outcome
	Actual   string        // Human-readable actual outcome
	Effects  []game.Effect // Full effect list for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Effects) > 0 {
		fmt.Fprintf(&buf, "\nEffects:\n")
		for i, ef := range e.Effects {
			fmt.Fprintf(&buf, "  [%d] %s\n", i+1, describeEffect(ef))
		}
	}
	return buf.String()
}

func describeEffect(e game.Effect) string {
	parts := []string{string(e.Kind)}
	if e.ID != "" {
		parts = append(parts, e.ID)
	}
	if e.Amount != 0 {
		parts = append(parts, fmt.Sprintf("%g", e.Amount))
	}
	if e.Message != "" {
		parts = append(parts, fmt.Sprintf("%q", e.Message))
	}
	return strings.Join(parts, " ")
}

// EvaluateAssertions checks every assertion against result and returns the
// failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	effects := result.Effects()
	var errs []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertEffectContains:
			err = assertEffectContains(effects, a)
		case AssertEffectOrder:
			err = assertEffectOrder(effects, a)
		case AssertEffectCount:
			err = assertEffectCount(effects, a)
		case AssertFinalState:
			err = assertState(AssertFinalState, result.Final, a.Expect)
		case AssertStoredState:
			err = assertState(AssertStoredState, result.Stored, a.Expect)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

// assertEffectContains checks that some effect matches the kind and, when
// given, the id and amount.
func assertEffectContains(effects []game.Effect, a Assertion) error {
	for _, e := range effects {
		if string(e.Kind) != a.Kind {
			continue
		}
		if a.ID != "" && e.ID != a.ID {
			continue
		}
		if a.Amount != nil && !approxEqual(*a.Amount, e.Amount) {
			continue
		}
		return nil
	}

	want := a.Kind
	if a.ID != "" {
		want += " " + a.ID
	}
	if a.Amount != nil {
		want += fmt.Sprintf(" amount %g", *a.Amount)
	}
	return &AssertionError{
		Type:     AssertEffectContains,
		Expected: want,
		Actual:   "not found",
		Effects:  effects,
	}
}

// assertEffectOrder checks that the kinds appear in order. Effects need
// not be adjacent; each kind matches the first occurrence after the
// previous match.
func assertEffectOrder(effects []game.Effect, a Assertion) error {
	pos := 0
	for _, kind := range a.Kinds {
		found := false
		for pos < len(effects) {
			pos++
			if string(effects[pos-1].Kind) == kind {
				found = true
				break
			}
		}
		if !found {
			return &AssertionError{
				Type:     AssertEffectOrder,
				Expected: fmt.Sprintf("effects in order: %v", a.Kinds),
				Actual:   fmt.Sprintf("no %s after position %d", kind, pos),
				Effects:  effects,
			}
		}
	}
	return nil
}

// assertEffectCount checks that the kind appears exactly Count times.
func assertEffectCount(effects []game.Effect, a Assertion) error {
	count := 0
	for _, e := range effects {
		if string(e.Kind) == a.Kind {
			count++
		}
	}
	if count != a.Count {
		return &AssertionError{
			Type:     AssertEffectCount,
			Expected: fmt.Sprintf("%d occurrences of %s", a.Count, a.Kind),
			Actual:   fmt.Sprintf("%d occurrences", count),
			Effects:  effects,
		}
	}
	return nil
}

// assertState compares state paths with subset semantics: only the listed
// paths are checked. Paths are visited in sorted order so the first
// reported mismatch is stable.
func assertState(kind string, s *game.GameState, expect map[string]any) error {
	if s == nil {
		return &AssertionError{Type: kind, Expected: "a state", Actual: "none"}
	}

	paths := make([]string, 0, len(expect))
	for p := range expect {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var mismatches []string
	for _, p := range paths {
		got, err := StateValue(s, p)
		if err != nil {
			return err
		}
		if !valuesEqual(expect[p], got) {
			mismatches = append(mismatches, fmt.Sprintf("%s: expected %v, got %v", p, expect[p], got))
		}
	}
	if len(mismatches) > 0 {
		return &AssertionError{
			Type:     kind,
			Expected: fmt.Sprintf("%d matching fields", len(paths)),
			Actual:   strings.Join(mismatches, "; "),
		}
	}
	return nil
}

// valuesEqual compares a YAML-decoded expectation with a state value.
// Numbers compare by value across int and float types.
func valuesEqual(want, got any) bool {
	wf, wok := toFloat(want)
	gf, gok := toFloat(got)
	if wok && gok {
		return approxEqual(wf, gf)
	}
	if wok != gok {
		return false
	}
	return want == got
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func approxEqual(want, got float64) bool {
	if want == got {
		return true
	}
	return math.Abs(want-got) <= floatTolerance*math.Max(1, math.Abs(want))
}

// Kinds returns the kind of every effect, in order.
func Kinds(effects []game.Effect) []string {
	out := make([]string, 0, len(effects))
	for _, e := range effects {
		out = append(out, string(e.Kind))
	}
	return out
}
