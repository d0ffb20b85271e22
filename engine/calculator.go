/*
calculator.go - Per-user calculation pipeline

PURPOSE:
  Runs the full pipeline for one salesperson: summary totals, blended
  rate, rule selection, account qualification, tier accumulation, and
  next-tier projection. The result is a fresh IncentiveCalculation.

PIPELINE:
  1. No managed accounts -> no result (nil, not an error)
  2. Sum revenue/commission across ALL managed accounts
  3. Derive the blended commission rate
  4. Match the first applicable active rule (first-match-wins)
  5. No matching rule -> zero-valued result with totals filled
  6. Qualify accounts against the rule's commission floor
  7. Accumulate marginal tier contributions over qualifying revenue
  8. Project progress toward the next tier

PURITY:
  ForUser performs no I/O and mutates none of its inputs. Concurrent
  invocations over different (or the same) snapshots are safe.

SEE ALSO:
  - aggregate.go: Fans ForUser out over a population
*/
package engine

import "github.com/shopspring/decimal"

// =============================================================================
// CALCULATOR
// =============================================================================

// Calculator runs incentive calculations. Its only collaborator is the
// name resolver used for output labeling.
type Calculator struct {
	Names NameResolver
}

// NewCalculator creates a calculator with the given name resolver.
// A nil resolver degrades to truncated-id display names.
func NewCalculator(names NameResolver) *Calculator {
	return &Calculator{Names: names}
}

// ForUser computes the incentive calculation for one user.
//
// userAccounts are the accounts this user manages; allSales is the global
// sales collection (records for other accounts are ignored); activeRules
// is the pre-filtered active rule set in evaluation order.
//
// Returns nil when the user manages no accounts. Every other outcome,
// including "no rule matches", is a defined result record.
func (c *Calculator) ForUser(userID UserID, userAccounts []Account, allSales []SalesDatum, activeRules []IncentiveRule) *IncentiveCalculation {
	if len(userAccounts) == 0 {
		return nil
	}

	totalRevenue, totalCommission := Totals(userAccounts, allSales)
	rate := CommissionRate(totalCommission, totalRevenue)

	calc := &IncentiveCalculation{
		UserID:               userID,
		UserName:             c.displayName(userID),
		TotalRevenue:         totalRevenue,
		TotalCommission:      totalCommission,
		CommissionRate:       rate,
		IncentiveAmount:      decimal.Zero,
		QualifyingRevenue:    decimal.Zero,
		ProgressPercent:      decimal.Zero,
		RemainingToNextTier:  decimal.Zero,
		ManagedAccountsCount: len(userAccounts),
	}

	rule := MatchRule(rate, activeRules)
	if rule == nil {
		return calc
	}
	calc.ApplicableRule = rule

	qual := Qualify(userAccounts, allSales, *rule)
	calc.QualifyingRevenue = qual.QualifyingRevenue

	outcome := AccumulateTiers(qual.QualifyingRevenue, rule.Tiers)
	calc.IncentiveAmount = outcome.IncentiveAmount
	calc.CurrentTier = outcome.CurrentTier
	calc.NextTier = outcome.NextTier
	calc.Bands = outcome.Bands

	progress := ProjectProgress(*rule, outcome, qual.QualifyingRevenue)
	calc.ProgressPercent = progress.Percent
	calc.RemainingToNextTier = progress.Remaining

	return calc
}

func (c *Calculator) displayName(id UserID) string {
	if c.Names == nil {
		return truncateID(id)
	}
	return c.Names.DisplayName(id)
}
