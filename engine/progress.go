/*
progress.go - Next-tier progress projection

PURPOSE:
  Answers "how close is this salesperson to the next tier?" for display:
  a clamped percentage through the current band, and the absolute revenue
  remaining to reach the next threshold.

BASELINE:
  Progress is measured from the start of the band the revenue sits in:
  the current tier's threshold when one is reached, otherwise the rule's
  BaseRevenueThreshold (the zero-point for tier 0).

ZERO-WIDTH BAND:
  When next_tier.threshold == baseline the natural formula divides by
  zero. Well-formed schedules never produce this, but the engine does not
  validate configuration, so a documented fallback applies instead of a
  fault: the band is treated as complete (100% progress) and the
  remainder is computed normally (which is then zero or negative-clamped).

SEE ALSO:
  - tiers.go: Produces the current/next tier assignment consumed here
*/
package engine

import "github.com/shopspring/decimal"

// =============================================================================
// PROGRESS PROJECTOR
// =============================================================================

// Progress is the projection toward the next tier.
type Progress struct {
	// Percent is always within [0, 100].
	Percent decimal.Decimal

	// Remaining is the qualifying revenue still needed to reach the next
	// tier's threshold; never negative.
	Remaining decimal.Decimal
}

// ProjectProgress computes progress for a tier outcome:
//   - next tier set: percentage through [baseline, next.threshold],
//     clamped to [0, 100], with the absolute remainder
//   - next unset but current set: the schedule is complete (100%, 0)
//   - neither set: no schedule applies (0, 0)
func ProjectProgress(rule IncentiveRule, outcome TierOutcome, qualifyingRevenue decimal.Decimal) Progress {
	switch {
	case outcome.NextTier != nil:
		baseline := rule.BaseRevenueThreshold
		if outcome.CurrentTier != nil {
			baseline = outcome.CurrentTier.RevenueThreshold
		}
		return projectBand(baseline, outcome.NextTier.RevenueThreshold, qualifyingRevenue)

	case outcome.CurrentTier != nil:
		return Progress{Percent: hundred, Remaining: decimal.Zero}

	default:
		return Progress{Percent: decimal.Zero, Remaining: decimal.Zero}
	}
}

func projectBand(baseline, nextThreshold, revenue decimal.Decimal) Progress {
	remaining := nextThreshold.Sub(revenue)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}

	width := nextThreshold.Sub(baseline)
	if !width.IsPositive() {
		// Zero-width (or inverted) band: treat as complete.
		return Progress{Percent: hundred, Remaining: remaining}
	}

	percent := revenue.Sub(baseline).Mul(hundred).Div(width)
	return Progress{Percent: clampPercent(percent), Remaining: remaining}
}
