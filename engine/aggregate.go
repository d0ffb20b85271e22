/*
aggregate.go - Population-wide aggregation driver

PURPOSE:
  Invokes the per-user pipeline for every user in scope and orders the
  results into a leaderboard. Administrators see every user who owns at
  least one account; everyone else sees only their own calculation, built
  from the account-id list on their user record.

ORDERING GUARANTEES:
  - Users are enumerated in order of first appearance in the accounts
    slice, so output is deterministic for a given snapshot.
  - Results are sorted by incentive amount descending with a STABLE sort:
    ties keep their enumeration order.

SHORT CIRCUITS:
  - No active rules: returns an empty collection without per-user work.
  - A user with zero managed accounts produces no entry, not an error.

STATE:
  The driver is stateless; every invocation recomputes from the snapshot.
  Triggering recomputation when accounts, sales, rules, or the acting
  user change is the caller's responsibility.
*/
package engine

import "sort"

// =============================================================================
// POPULATION INPUT
// =============================================================================

// PopulationInput carries one snapshot plus the acting user.
// Rules may include inactive entries; the driver filters them. The order
// of Rules (after filtering) is the rule evaluation order.
type PopulationInput struct {
	Accounts    []Account
	Sales       []SalesDatum
	Rules       []IncentiveRule
	CurrentUser User
}

// =============================================================================
// AGGREGATION DRIVER
// =============================================================================

// ForPopulation computes calculations for every user in scope, sorted by
// incentive amount descending (stable on ties). The result is never nil.
func (c *Calculator) ForPopulation(in PopulationInput) []IncentiveCalculation {
	results := []IncentiveCalculation{}

	active := ActiveRules(in.Rules)
	if len(active) == 0 {
		return results
	}

	if in.CurrentUser.IsAdmin {
		owners, byOwner := groupByOwner(in.Accounts)
		for _, owner := range owners {
			if calc := c.ForUser(owner, byOwner[owner], in.Sales, active); calc != nil {
				results = append(results, *calc)
			}
		}
	} else {
		selected := selectAccounts(in.Accounts, in.CurrentUser.ManagedAccountIDs)
		if calc := c.ForUser(in.CurrentUser.ID, selected, in.Sales, active); calc != nil {
			results = append(results, *calc)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].IncentiveAmount.GreaterThan(results[j].IncentiveAmount)
	})
	return results
}

// groupByOwner buckets accounts by owning user, recording owners in order
// of first appearance. That order anchors the stable-sort tie behavior.
func groupByOwner(accounts []Account) ([]UserID, map[UserID][]Account) {
	var owners []UserID
	byOwner := make(map[UserID][]Account)
	for _, a := range accounts {
		if _, seen := byOwner[a.UserID]; !seen {
			owners = append(owners, a.UserID)
		}
		byOwner[a.UserID] = append(byOwner[a.UserID], a)
	}
	return owners, byOwner
}

// selectAccounts picks the accounts named on the user record, preserving
// the order of the accounts slice.
func selectAccounts(accounts []Account, ids []AccountID) []Account {
	wanted := make(map[AccountID]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}

	var selected []Account
	for _, a := range accounts {
		if wanted[a.ID] {
			selected = append(selected, a)
		}
	}
	return selected
}
