/*
Package sqlite provides a SQLite-backed implementation of engine.Dataset.

PURPOSE:
  Persists the engine's input collections (users, accounts, sales records,
  incentive rules with their tiers) and loads them back as calculation
  snapshots. In production the same patterns apply to PostgreSQL - only
  minor SQL dialect differences.

KEY TABLES:
  users:            Salesperson roster (admin flag, managed account ids)
  accounts:         Account ownership
  sales_data:       Revenue and commission records
  incentive_rules:  Rule configuration, with an explicit position column
  incentive_tiers:  Tier schedule per rule

ORDERING:
  Rule evaluation order is load-bearing (first-match-wins precedence), so
  rules carry a position column and ListRules orders by (position, id).
  Accounts and sales are returned in insertion (rowid) order, which keeps
  population output deterministic across runs.

DECIMALS:
  Money and percentage columns are stored as TEXT and parsed with
  shopspring/decimal. Storing floats would reintroduce exactly the
  rounding errors the engine avoids.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency.

USAGE:
  ds, err := sqlite.New("./data/incentives.db")
  if err != nil {
      log.Fatal(err)
  }
  defer ds.Close()

  snap, err := ds.LoadSnapshot(ctx)

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - engine/store.go: Interface definition
  - engine/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/incentive-engine/engine"
)

// Store implements engine.Dataset using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Compile-time check that Store implements engine.Dataset
var _ engine.Dataset = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT,
		is_admin INTEGER NOT NULL DEFAULT 0,
		managed_account_ids TEXT NOT NULL DEFAULT '[]',
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS accounts (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		user_id TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_accounts_user
		ON accounts(user_id);

	CREATE TABLE IF NOT EXISTS sales_data (
		id TEXT PRIMARY KEY,
		account_id TEXT NOT NULL,
		total_purchases TEXT NOT NULL,
		gross_commission TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sales_account
		ON sales_data(account_id);

	-- position is the rule evaluation order (first-match precedence)
	CREATE TABLE IF NOT EXISTS incentive_rules (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		is_active INTEGER NOT NULL DEFAULT 1,
		commission_rate_min TEXT NOT NULL,
		commission_rate_max TEXT NOT NULL,
		min_commission_threshold TEXT NOT NULL,
		base_revenue_threshold TEXT NOT NULL,
		position INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS incentive_tiers (
		rule_id TEXT NOT NULL,
		revenue_threshold TEXT NOT NULL,
		incentive_rate TEXT NOT NULL,
		FOREIGN KEY (rule_id) REFERENCES incentive_rules(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_tiers_rule
		ON incentive_tiers(rule_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// USERS
// =============================================================================

func (s *Store) SaveUser(ctx context.Context, u engine.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := json.Marshal(u.ManagedAccountIDs)
	if err != nil {
		return fmt.Errorf("failed to encode account ids: %w", err)
	}

	createdAt := u.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, is_admin, managed_account_ids, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			is_admin = excluded.is_admin,
			managed_account_ids = excluded.managed_account_ids`,
		string(u.ID), u.Name, u.Email, boolToInt(u.IsAdmin), string(ids),
		createdAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, id engine.UserID) (*engine.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, is_admin, managed_account_ids, created_at
		FROM users WHERE id = ?`, string(id))

	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]engine.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listUsers(ctx)
}

func (s *Store) listUsers(ctx context.Context) ([]engine.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email, is_admin, managed_account_ids, created_at
		FROM users ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []engine.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*engine.User, error) {
	var (
		u         engine.User
		idsJSON   string
		isAdmin   int
		createdAt string
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &isAdmin, &idsJSON, &createdAt); err != nil {
		return nil, err
	}
	u.IsAdmin = isAdmin != 0
	if err := json.Unmarshal([]byte(idsJSON), &u.ManagedAccountIDs); err != nil {
		return nil, fmt.Errorf("failed to decode account ids: %w", err)
	}
	u.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &u, nil
}

// =============================================================================
// ACCOUNTS
// =============================================================================

func (s *Store) SaveAccount(ctx context.Context, a engine.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (id, name, user_id, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			user_id = excluded.user_id`,
		string(a.ID), a.Name, string(a.UserID), createdAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save account: %w", err)
	}
	return nil
}

func (s *Store) ListAccounts(ctx context.Context) ([]engine.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listAccounts(ctx)
}

func (s *Store) listAccounts(ctx context.Context) ([]engine.Account, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, user_id, created_at FROM accounts ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []engine.Account
	for rows.Next() {
		var (
			a         engine.Account
			createdAt string
		)
		if err := rows.Scan(&a.ID, &a.Name, &a.UserID, &createdAt); err != nil {
			return nil, err
		}
		a.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// =============================================================================
// SALES DATA
// =============================================================================

func (s *Store) SaveSalesDatum(ctx context.Context, d engine.SalesDatum) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sales_data (id, account_id, total_purchases, gross_commission)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			account_id = excluded.account_id,
			total_purchases = excluded.total_purchases,
			gross_commission = excluded.gross_commission`,
		d.ID, string(d.AccountID), d.TotalPurchases.String(), d.GrossCommission.String())
	if err != nil {
		return fmt.Errorf("failed to save sales record: %w", err)
	}
	return nil
}

func (s *Store) ListSalesData(ctx context.Context) ([]engine.SalesDatum, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listSalesData(ctx)
}

func (s *Store) listSalesData(ctx context.Context) ([]engine.SalesDatum, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, account_id, total_purchases, gross_commission
		FROM sales_data ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales records: %w", err)
	}
	defer rows.Close()

	var sales []engine.SalesDatum
	for rows.Next() {
		var (
			d                     engine.SalesDatum
			purchases, commission string
		)
		if err := rows.Scan(&d.ID, &d.AccountID, &purchases, &commission); err != nil {
			return nil, err
		}
		if d.TotalPurchases, err = decimal.NewFromString(purchases); err != nil {
			return nil, fmt.Errorf("bad total_purchases for %s: %w", d.ID, err)
		}
		if d.GrossCommission, err = decimal.NewFromString(commission); err != nil {
			return nil, fmt.Errorf("bad gross_commission for %s: %w", d.ID, err)
		}
		sales = append(sales, d)
	}
	return sales, rows.Err()
}

// =============================================================================
// RULES
// =============================================================================

// SaveRule upserts the rule and rewrites its tier schedule atomically.
// New rules are appended at the end of the evaluation order; existing
// rules keep their position.
func (s *Store) SaveRule(ctx context.Context, r engine.IncentiveRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO incentive_rules
			(id, name, is_active, commission_rate_min, commission_rate_max,
			 min_commission_threshold, base_revenue_threshold, position)
		VALUES (?1, ?2, ?3, ?4, ?5, ?6, ?7,
			COALESCE(
				(SELECT position FROM incentive_rules WHERE id = ?1),
				(SELECT COALESCE(MAX(position), 0) + 1 FROM incentive_rules)))
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			is_active = excluded.is_active,
			commission_rate_min = excluded.commission_rate_min,
			commission_rate_max = excluded.commission_rate_max,
			min_commission_threshold = excluded.min_commission_threshold,
			base_revenue_threshold = excluded.base_revenue_threshold`,
		string(r.ID), r.Name, boolToInt(r.IsActive),
		r.CommissionRateMin.String(), r.CommissionRateMax.String(),
		r.MinCommissionThreshold.String(), r.BaseRevenueThreshold.String())
	if err != nil {
		return fmt.Errorf("failed to save rule: %w", err)
	}

	if _, err = tx.ExecContext(ctx,
		`DELETE FROM incentive_tiers WHERE rule_id = ?`, string(r.ID)); err != nil {
		return fmt.Errorf("failed to clear tiers: %w", err)
	}

	for _, t := range r.Tiers {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO incentive_tiers (rule_id, revenue_threshold, incentive_rate)
			VALUES (?, ?, ?)`,
			string(r.ID), t.RevenueThreshold.String(), t.IncentiveRate.String()); err != nil {
			return fmt.Errorf("failed to save tier: %w", err)
		}
	}

	return tx.Commit()
}

func (s *Store) GetRule(ctx context.Context, id engine.RuleID) (*engine.IncentiveRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rules, err := s.queryRules(ctx, `WHERE id = ?`, string(id))
	if err != nil {
		return nil, err
	}
	if len(rules) == 0 {
		return nil, nil
	}
	return &rules[0], nil
}

// ListRules returns all rules in evaluation order (position, id).
func (s *Store) ListRules(ctx context.Context) ([]engine.IncentiveRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryRules(ctx, ``)
}

func (s *Store) queryRules(ctx context.Context, where string, args ...any) ([]engine.IncentiveRule, error) {
	query := `
		SELECT id, name, is_active, commission_rate_min, commission_rate_max,
		       min_commission_threshold, base_revenue_threshold
		FROM incentive_rules ` + where + ` ORDER BY position, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}
	defer rows.Close()

	var rules []engine.IncentiveRule
	for rows.Next() {
		var (
			r                          engine.IncentiveRule
			isActive                   int
			rateMin, rateMax           string
			minCommission, baseRevenue string
		)
		if err := rows.Scan(&r.ID, &r.Name, &isActive, &rateMin, &rateMax,
			&minCommission, &baseRevenue); err != nil {
			return nil, err
		}
		r.IsActive = isActive != 0
		if r.CommissionRateMin, err = decimal.NewFromString(rateMin); err != nil {
			return nil, fmt.Errorf("bad commission_rate_min for %s: %w", r.ID, err)
		}
		if r.CommissionRateMax, err = decimal.NewFromString(rateMax); err != nil {
			return nil, fmt.Errorf("bad commission_rate_max for %s: %w", r.ID, err)
		}
		if r.MinCommissionThreshold, err = decimal.NewFromString(minCommission); err != nil {
			return nil, fmt.Errorf("bad min_commission_threshold for %s: %w", r.ID, err)
		}
		if r.BaseRevenueThreshold, err = decimal.NewFromString(baseRevenue); err != nil {
			return nil, fmt.Errorf("bad base_revenue_threshold for %s: %w", r.ID, err)
		}
		rules = append(rules, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range rules {
		if rules[i].Tiers, err = s.loadTiers(ctx, rules[i].ID); err != nil {
			return nil, err
		}
	}
	return rules, nil
}

func (s *Store) loadTiers(ctx context.Context, ruleID engine.RuleID) ([]engine.Tier, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT revenue_threshold, incentive_rate
		FROM incentive_tiers WHERE rule_id = ? ORDER BY rowid`, string(ruleID))
	if err != nil {
		return nil, fmt.Errorf("failed to load tiers: %w", err)
	}
	defer rows.Close()

	var tiers []engine.Tier
	for rows.Next() {
		var (
			t               engine.Tier
			threshold, rate string
		)
		if err := rows.Scan(&threshold, &rate); err != nil {
			return nil, err
		}
		if t.RevenueThreshold, err = decimal.NewFromString(threshold); err != nil {
			return nil, fmt.Errorf("bad revenue_threshold: %w", err)
		}
		if t.IncentiveRate, err = decimal.NewFromString(rate); err != nil {
			return nil, fmt.Errorf("bad incentive_rate: %w", err)
		}
		tiers = append(tiers, t)
	}
	return tiers, rows.Err()
}

// =============================================================================
// SNAPSHOT / RESET
// =============================================================================

// LoadSnapshot reads all four collections under one read lock.
func (s *Store) LoadSnapshot(ctx context.Context) (*engine.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users, err := s.listUsers(ctx)
	if err != nil {
		return nil, err
	}
	accounts, err := s.listAccounts(ctx)
	if err != nil {
		return nil, err
	}
	sales, err := s.listSalesData(ctx)
	if err != nil {
		return nil, err
	}
	rules, err := s.queryRules(ctx, ``)
	if err != nil {
		return nil, err
	}

	return &engine.Snapshot{
		Users:    users,
		Accounts: accounts,
		Sales:    sales,
		Rules:    rules,
	}, nil
}

// Reset removes all records from all tables.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		DELETE FROM incentive_tiers;
		DELETE FROM incentive_rules;
		DELETE FROM sales_data;
		DELETE FROM accounts;
		DELETE FROM users;`)
	if err != nil {
		return fmt.Errorf("failed to reset database: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
