/*
store.go - Persistence interface for the input collections

PURPOSE:
  Defines the interface between the calculation engine and whatever holds
  the data. The engine itself never touches storage; it consumes the
  Snapshot a Dataset produces. Different implementations can use SQLite
  or in-memory storage.

SNAPSHOT CONTRACT:
  LoadSnapshot returns the four input collections in one read pass. The
  engine treats the result as a read-only snapshot valid at call time; it
  makes no freshness assumption beyond that, and recomputation on change
  is the caller's job.

ORDERING CONTRACT:
  ListRules (and the Rules slice of LoadSnapshot) must return rules in
  evaluation order, because slice order is rule precedence. ListAccounts
  must be deterministic so population output ordering is reproducible.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: Production SQLite
  - engine/store/memory.go: In-memory for testing/dev
*/
package engine

import "context"

// =============================================================================
// DATASET - Interface for input-collection persistence
// =============================================================================

// Dataset supplies and persists the engine's input collections.
type Dataset interface {
	// Users
	SaveUser(ctx context.Context, u User) error
	GetUser(ctx context.Context, id UserID) (*User, error)
	ListUsers(ctx context.Context) ([]User, error)

	// Accounts
	SaveAccount(ctx context.Context, a Account) error
	ListAccounts(ctx context.Context) ([]Account, error)

	// Sales records
	SaveSalesDatum(ctx context.Context, s SalesDatum) error
	ListSalesData(ctx context.Context) ([]SalesDatum, error)

	// Rules (with their tiers). ListRules returns evaluation order.
	SaveRule(ctx context.Context, r IncentiveRule) error
	GetRule(ctx context.Context, id RuleID) (*IncentiveRule, error)
	ListRules(ctx context.Context) ([]IncentiveRule, error)

	// LoadSnapshot returns all four collections for one calculation pass.
	LoadSnapshot(ctx context.Context) (*Snapshot, error)

	// Reset removes all records. Used by scenario loading.
	Reset(ctx context.Context) error
}
