package scheduler

import (
	"github.com/hearthd/hearth-core/internal/device"
	"github.com/hearthd/hearth-core/internal/schedule"
)

// evaluate reports whether a condition holds against a state snapshot.
// A missing field never matches.
func evaluate(cond *schedule.Condition, state device.State) bool {
	got, ok := state[cond.Field]
	if !ok {
		return false
	}
	return compare(cond.Op, got, cond.Value)
}

// compare applies the operator to the observed and expected values.
//
// Numeric comparisons coerce both sides to float64 (JSON decoding
// produces float64; Go callers may pass int). Ordering operators on
// non-numeric values never match; eq and ne fall back to Go equality
// for bools and strings.
func compare(op schedule.Op, got, want any) bool {
	gf, gok := toFloat(got)
	wf, wok := toFloat(want)
	numeric := gok && wok

	switch op {
	case schedule.OpEqual:
		if numeric {
			return gf == wf
		}
		return got == want
	case schedule.OpNotEqual:
		if numeric {
			return gf != wf
		}
		return got != want
	case schedule.OpGreater:
		return numeric && gf > wf
	case schedule.OpGreaterEqual:
		return numeric && gf >= wf
	case schedule.OpLess:
		return numeric && gf < wf
	case schedule.OpLessEqual:
		return numeric && gf <= wf
	default:
		return false
	}
}

// toFloat coerces the numeric types JSON decoding and Go literals produce.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
