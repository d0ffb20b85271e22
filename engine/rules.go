/*
rules.go - Rule selection by blended commission rate

PURPOSE:
  Selects which incentive rule applies to a salesperson. A rule carries a
  commission-rate band [CommissionRateMin, CommissionRateMax]; the first
  rule (in the caller's order) whose band contains the blended rate wins.

PRECEDENCE:
  First-match-wins by input ordering is a deliberate policy, not an
  accident. Overlapping bands are never an error: the slice order the
  caller supplies IS the evaluation order, so precedence is explicit and
  reproducible. No ties are broken by specificity or band width.

UNBOUNDED UPPER BAND:
  A CommissionRateMax of exactly 100 means "no upper bound": any rate at
  or above CommissionRateMin matches, even rates above 100 (possible with
  unusual commission data).

SEE ALSO:
  - qualify.go: Uses the matched rule's MinCommissionThreshold
  - calculator.go: Feeds the blended rate into MatchRule
*/
package engine

import "github.com/shopspring/decimal"

// =============================================================================
// RULE MATCHER
// =============================================================================

// MatchRule returns the first rule in rules whose rate band contains rate,
// or nil when no band matches. The order of rules is the precedence order;
// callers control it deliberately. Bounds are inclusive, and a
// CommissionRateMax of exactly 100 is treated as unbounded above.
func MatchRule(rate decimal.Decimal, rules []IncentiveRule) *IncentiveRule {
	for i := range rules {
		if ruleMatches(rate, rules[i]) {
			matched := rules[i]
			return &matched
		}
	}
	return nil
}

func ruleMatches(rate decimal.Decimal, rule IncentiveRule) bool {
	if rate.LessThan(rule.CommissionRateMin) {
		return false
	}
	if rule.CommissionRateMax.Equal(hundred) {
		return true // unbounded above
	}
	return rate.LessThanOrEqual(rule.CommissionRateMax)
}

// ActiveRules filters rules to those flagged active, preserving order.
// The result is a new slice; the input is never modified.
func ActiveRules(rules []IncentiveRule) []IncentiveRule {
	active := make([]IncentiveRule, 0, len(rules))
	for _, r := range rules {
		if r.IsActive {
			active = append(active, r)
		}
	}
	return active
}
