/*
Package engine provides the core incentive calculation engine.

PURPOSE:
  This package computes, for each salesperson, a monetary incentive reward
  derived from their managed accounts' sales performance, using a tiered
  progressive-rate schedule selected by the salesperson's blended
  commission rate.

KEY CONCEPTS IN THIS FILE (types.go):
  - Account: An entity owned by exactly one user
  - SalesDatum: One sales record tied to an account (revenue + commission)
  - IncentiveRule / Tier: Configurable tiered-rate schedule
  - IncentiveCalculation: The engine's per-user output record

DESIGN PRINCIPLES:
  1. Purity: The engine performs no I/O, holds no mutable state, and never
     mutates its inputs. Every calculation is a fresh pass over a snapshot.
  2. Precision: Uses decimal.Decimal for all money and percentage math.
  3. Totality: Absence of applicable data (no accounts, no matching rule,
     no reached tier) is a defined empty result, never an error.
  4. Type Safety: Strong typing for IDs prevents mixing user/account/rule
     identifiers.

PIPELINE (leaves first):
  rules.go     Rule Matcher         - select the applicable rule
  qualify.go   Account Qualifier    - filter accounts by commission floor
  tiers.go     Tier Accumulator     - marginal per-band incentive math
  progress.go  Progress Projector   - next-tier progress and remainder
  aggregate.go Aggregation Driver   - per-user fan-out, stable ordering

SEE ALSO:
  - calculator.go: The per-user pipeline entry point
  - store.go: Dataset interface supplying input snapshots
*/
package engine

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type UserID string
type AccountID string
type RuleID string

// =============================================================================
// INPUT COLLECTIONS - Externally supplied, read-only snapshots
// =============================================================================

// User is a salesperson (or administrator) known to the system.
// ManagedAccountIDs is the externally supplied account list used for
// self-service scope; IsAdmin widens population calculations to all owners.
type User struct {
	ID                UserID
	Name              string
	Email             string
	IsAdmin           bool
	ManagedAccountIDs []AccountID
	CreatedAt         time.Time
}

// Account is owned by exactly one user. Immutable from the engine's view.
type Account struct {
	ID        AccountID
	Name      string
	UserID    UserID
	CreatedAt time.Time
}

// SalesDatum is one sales record for an account. Many per account.
type SalesDatum struct {
	ID              string
	AccountID       AccountID
	TotalPurchases  decimal.Decimal
	GrossCommission decimal.Decimal
}

// Tier is one revenue band of a rule's schedule. Tiers are progressive:
// revenue above RevenueThreshold is compensated at IncentiveRate only up
// to the next tier's threshold, never retroactively at a blended rate.
type Tier struct {
	RevenueThreshold decimal.Decimal
	IncentiveRate    decimal.Decimal
}

// IncentiveRule is read-only configuration. Storage order of Tiers is
// irrelevant; the engine re-sorts by ascending threshold before use.
// CommissionRateMax of exactly 100 means unbounded above.
type IncentiveRule struct {
	ID                     RuleID
	Name                   string
	IsActive               bool
	CommissionRateMin      decimal.Decimal
	CommissionRateMax      decimal.Decimal
	MinCommissionThreshold decimal.Decimal
	BaseRevenueThreshold   decimal.Decimal
	Tiers                  []Tier
}

// Snapshot bundles the input collections for one calculation pass.
// The engine makes no assumption about freshness beyond "valid at call time".
type Snapshot struct {
	Users    []User
	Accounts []Account
	Sales    []SalesDatum
	Rules    []IncentiveRule
}

// =============================================================================
// OUTPUT - One IncentiveCalculation per user per invocation
// =============================================================================

// IncentiveCalculation is created fresh on every calculation call and never
// mutated after construction. The engine does not persist it.
type IncentiveCalculation struct {
	UserID   UserID
	UserName string

	// Summary figures across ALL managed accounts (qualifying or not)
	TotalRevenue    decimal.Decimal
	TotalCommission decimal.Decimal
	CommissionRate  decimal.Decimal

	// Rule selection and tier placement (nil when not applicable)
	ApplicableRule *IncentiveRule
	CurrentTier    *Tier
	NextTier       *Tier

	// Incentive computed from QUALIFYING revenue only
	IncentiveAmount   decimal.Decimal
	QualifyingRevenue decimal.Decimal
	Bands             []TierBand

	// Next-tier projection
	ProgressPercent     decimal.Decimal
	RemainingToNextTier decimal.Decimal

	ManagedAccountsCount int
}

// =============================================================================
// DECIMAL HELPERS
// =============================================================================

var hundred = decimal.NewFromInt(100)

// MustParseDecimal parses s, returning zero on malformed input.
func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// CommissionRate derives the blended commission rate percentage:
// 100 * commission / revenue, or zero when revenue is not positive.
func CommissionRate(totalCommission, totalRevenue decimal.Decimal) decimal.Decimal {
	if !totalRevenue.IsPositive() {
		return decimal.Zero
	}
	return totalCommission.Mul(hundred).Div(totalRevenue)
}

// clampPercent bounds p to [0, 100].
func clampPercent(p decimal.Decimal) decimal.Decimal {
	if p.IsNegative() {
		return decimal.Zero
	}
	if p.GreaterThan(hundred) {
		return hundred
	}
	return p
}
