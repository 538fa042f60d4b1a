package engine

import "math"

// Absent-neighbor sentinels for [ComputeOrderKey].
var (
	NoPrev = math.Inf(-1)
	NoNext = math.Inf(1)
)

// DefaultPrecisionThreshold is the neighbor gap below which a float64
// midpoint is no longer distinguishable from its neighbors.
const DefaultPrecisionThreshold = 1e-9

// thresholdSlack is the relative tolerance applied to the precision
// threshold comparison.
const thresholdSlack = 1e-6

// OrderKey is the outcome of placing a track between two neighbors.
type OrderKey struct {
	Value       float64
	Renormalize bool // neighbor gap collapsed below the precision threshold
	Fallback    bool // computed value was non-finite and was replaced with 1.0
}

// ComputeOrderKey returns a fractional sort key strictly between prev and
// next. Pass [NoPrev] / [NoNext] for absent neighbors.
//
// When both neighbors are present and their gap is below threshold, the
// midpoint is returned but Renormalize is set: the caller must schedule a
// dense rewrite of the whole order rather than trusting the midpoint alone.
// A non-finite result falls back to 1.0 with Fallback set; that indicates an
// upstream invariant violation, not a normal case.
func ComputeOrderKey(prev, next, threshold float64) OrderKey {
	var value float64
	switch {
	case math.IsInf(prev, -1) && math.IsInf(next, 1):
		value = 1.0
	case math.IsInf(prev, -1):
		if next > 0.5 {
			value = next / 2
		} else {
			value = next - 1.0
		}
	case math.IsInf(next, 1):
		value = math.Floor(prev) + 1.0
	default:
		value = (prev + next) / 2
	}

	key := OrderKey{Value: value}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		key.Value = 1.0
		key.Fallback = true
	}

	// The slack covers binary rounding of decimal gaps sitting right at the
	// threshold (e.g. 0.500000002 - 0.500000001 lands a fraction of an ulp
	// above 1e-9).
	bothFinite := !math.IsInf(prev, 0) && !math.IsNaN(prev) && !math.IsInf(next, 0) && !math.IsNaN(next)
	if bothFinite && math.Abs(next-prev) < threshold*(1+thresholdSlack) {
		key.Renormalize = true
	}

	return key
}
