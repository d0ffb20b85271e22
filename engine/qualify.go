/*
qualify.go - Account qualification against a rule's commission floor

PURPOSE:
  Partitions a user's accounts into qualifying vs non-qualifying. An
  account qualifies when its OWN summed gross commission (across its sales
  records only) clears the rule's MinCommissionThreshold. Only qualifying
  accounts contribute revenue to the tier calculation.

KEY INSIGHT:
  Qualification is per-account, not per-user. A user with huge revenue on
  one low-commission account gets nothing from that account's revenue in
  the tier walk, even though it still counts toward the summary totals and
  the blended rate used for rule selection.

EDGE CASES:
  - An account with zero sales data has zero commission. It fails
    qualification unless the threshold is <= 0.
  - The comparison is inclusive: commission exactly at the threshold
    qualifies.

SEE ALSO:
  - tiers.go: Consumes the qualifying revenue produced here
*/
package engine

import "github.com/shopspring/decimal"

// =============================================================================
// ACCOUNT QUALIFIER
// =============================================================================

// Qualification is the outcome of filtering one user's accounts.
type Qualification struct {
	// QualifiedAccountIDs preserves the order of the input accounts.
	QualifiedAccountIDs []AccountID

	// QualifyingRevenue is the sum of TotalPurchases over sales records
	// belonging to qualifying accounts only.
	QualifyingRevenue decimal.Decimal
}

// Qualify partitions accounts by comparing each account's summed gross
// commission against rule.MinCommissionThreshold (inclusive). Sales records
// for accounts outside the given slice are ignored.
func Qualify(accounts []Account, sales []SalesDatum, rule IncentiveRule) Qualification {
	commissionByAccount := make(map[AccountID]decimal.Decimal, len(accounts))
	revenueByAccount := make(map[AccountID]decimal.Decimal, len(accounts))
	for _, a := range accounts {
		commissionByAccount[a.ID] = decimal.Zero
		revenueByAccount[a.ID] = decimal.Zero
	}

	for _, s := range sales {
		c, ok := commissionByAccount[s.AccountID]
		if !ok {
			continue // not one of this user's accounts
		}
		commissionByAccount[s.AccountID] = c.Add(s.GrossCommission)
		revenueByAccount[s.AccountID] = revenueByAccount[s.AccountID].Add(s.TotalPurchases)
	}

	q := Qualification{QualifyingRevenue: decimal.Zero}
	for _, a := range accounts {
		if commissionByAccount[a.ID].GreaterThanOrEqual(rule.MinCommissionThreshold) {
			q.QualifiedAccountIDs = append(q.QualifiedAccountIDs, a.ID)
			q.QualifyingRevenue = q.QualifyingRevenue.Add(revenueByAccount[a.ID])
		}
	}
	return q
}

// Totals sums revenue and commission across ALL the given accounts'
// sales records, qualifying or not. These feed the blended commission
// rate and the calculation's summary figures.
func Totals(accounts []Account, sales []SalesDatum) (revenue, commission decimal.Decimal) {
	ids := make(map[AccountID]bool, len(accounts))
	for _, a := range accounts {
		ids[a.ID] = true
	}

	revenue, commission = decimal.Zero, decimal.Zero
	for _, s := range sales {
		if !ids[s.AccountID] {
			continue
		}
		revenue = revenue.Add(s.TotalPurchases)
		commission = commission.Add(s.GrossCommission)
	}
	return revenue, commission
}
