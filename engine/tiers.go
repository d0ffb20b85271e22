/*
tiers.go - Tiered progressive-rate accumulation

PURPOSE:
  Computes the incentive amount from qualifying revenue and a rule's tier
  schedule. Tiers are strictly marginal: each reached tier is paid its own
  rate on the revenue inside its band only, like progressive tax brackets,
  never a single blended rate applied retroactively.

BAND MATH:
  For a reached tier at index i (tiers sorted ascending by threshold):

    band = [tier[i].threshold, min(revenue, tier[i+1].threshold)]
    contribution = (band_upper - tier[i].threshold) * tier[i].rate / 100

  The last tier's band is open-ended: upper = revenue.

WALK SEMANTICS:
  The walk is an explicit ordered traversal producing a tagged status per
  tier (reached / not reached), halting at the first unreached tier. The
  last reached tier becomes the current tier; the first unreached one
  becomes the next tier. This replaces positional break logic with an
  explicit outcome that makes current-vs-next assignment unambiguous.

EDGE CASES:
  - Revenue exactly at a threshold reaches that tier (inclusive bound).
  - Revenue below every threshold: no current tier, first tier is next,
    amount is zero.
  - Revenue at or above every threshold: no next tier.
  - A rule with zero tiers: both unset, amount zero, regardless of revenue.

SEE ALSO:
  - progress.go: Projects progress toward the next tier found here
*/
package engine

import (
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// TIER OUTCOME
// =============================================================================

// TierBand records one reached tier's contribution, for breakdown display.
type TierBand struct {
	Tier         Tier
	BandUpper    decimal.Decimal
	Contribution decimal.Decimal
}

// TierOutcome is the result of accumulating qualifying revenue over a
// rule's tier schedule.
type TierOutcome struct {
	IncentiveAmount decimal.Decimal
	CurrentTier     *Tier
	NextTier        *Tier
	Bands           []TierBand
}

// tierStatus tags one tier of the ordered walk.
type tierStatus struct {
	Tier    Tier
	Reached bool
}

// =============================================================================
// TIER ACCUMULATOR
// =============================================================================

// SortTiers returns a copy of tiers sorted ascending by revenue threshold.
// The input slice is never modified; storage order is irrelevant.
func SortTiers(tiers []Tier) []Tier {
	sorted := make([]Tier, len(tiers))
	copy(sorted, tiers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].RevenueThreshold.LessThan(sorted[j].RevenueThreshold)
	})
	return sorted
}

// AccumulateTiers walks the rule's tiers in ascending threshold order and
// accumulates the marginal contribution of every reached band.
func AccumulateTiers(qualifyingRevenue decimal.Decimal, tiers []Tier) TierOutcome {
	outcome := TierOutcome{IncentiveAmount: decimal.Zero}
	if len(tiers) == 0 {
		return outcome
	}

	sorted := SortTiers(tiers)
	statuses := walkTiers(qualifyingRevenue, sorted)

	for i, st := range statuses {
		if !st.Reached {
			next := st.Tier
			outcome.NextTier = &next
			break // tiers beyond the first unreached one are not inspected
		}

		// Band upper bound: the next tier's threshold, or the revenue
		// itself for the topmost reached tier.
		upper := qualifyingRevenue
		if i+1 < len(sorted) && sorted[i+1].RevenueThreshold.LessThan(upper) {
			upper = sorted[i+1].RevenueThreshold
		}

		contribution := upper.Sub(st.Tier.RevenueThreshold).
			Mul(st.Tier.IncentiveRate).Div(hundred)
		outcome.IncentiveAmount = outcome.IncentiveAmount.Add(contribution)
		outcome.Bands = append(outcome.Bands, TierBand{
			Tier:         st.Tier,
			BandUpper:    upper,
			Contribution: contribution,
		})

		current := st.Tier
		outcome.CurrentTier = &current
	}

	return outcome
}

// walkTiers produces a tagged status per tier, in ascending threshold
// order, stopping after the first unreached tier. A tier is reached when
// revenue >= its threshold (inclusive).
func walkTiers(revenue decimal.Decimal, sorted []Tier) []tierStatus {
	var statuses []tierStatus
	for _, t := range sorted {
		if revenue.GreaterThanOrEqual(t.RevenueThreshold) {
			statuses = append(statuses, tierStatus{Tier: t, Reached: true})
			continue
		}
		statuses = append(statuses, tierStatus{Tier: t, Reached: false})
		break
	}
	return statuses
}
