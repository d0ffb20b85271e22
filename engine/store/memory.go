// Package store provides Dataset implementations.
package store

import (
	"context"
	"sync"

	"github.com/warp/incentive-engine/engine"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory holds the input collections in insertion order. Saves of an
// existing id replace the record in place, matching the SQLite upsert.
type Memory struct {
	mu       sync.RWMutex
	users    []engine.User
	accounts []engine.Account
	sales    []engine.SalesDatum
	rules    []engine.IncentiveRule
}

func NewMemory() *Memory {
	return &Memory{}
}

// Compile-time check that Memory implements engine.Dataset
var _ engine.Dataset = (*Memory)(nil)

func (m *Memory) SaveUser(_ context.Context, u engine.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.users {
		if m.users[i].ID == u.ID {
			m.users[i] = u
			return nil
		}
	}
	m.users = append(m.users, u)
	return nil
}

func (m *Memory) GetUser(_ context.Context, id engine.UserID) (*engine.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i := range m.users {
		if m.users[i].ID == id {
			u := m.users[i]
			return &u, nil
		}
	}
	return nil, nil
}

func (m *Memory) ListUsers(_ context.Context) ([]engine.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]engine.User(nil), m.users...), nil
}

func (m *Memory) SaveAccount(_ context.Context, a engine.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.accounts {
		if m.accounts[i].ID == a.ID {
			m.accounts[i] = a
			return nil
		}
	}
	m.accounts = append(m.accounts, a)
	return nil
}

func (m *Memory) ListAccounts(_ context.Context) ([]engine.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]engine.Account(nil), m.accounts...), nil
}

func (m *Memory) SaveSalesDatum(_ context.Context, s engine.SalesDatum) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.sales {
		if m.sales[i].ID == s.ID {
			m.sales[i] = s
			return nil
		}
	}
	m.sales = append(m.sales, s)
	return nil
}

func (m *Memory) ListSalesData(_ context.Context) ([]engine.SalesDatum, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]engine.SalesDatum(nil), m.sales...), nil
}

func (m *Memory) SaveRule(_ context.Context, r engine.IncentiveRule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rules {
		if m.rules[i].ID == r.ID {
			m.rules[i] = r
			return nil
		}
	}
	m.rules = append(m.rules, r)
	return nil
}

func (m *Memory) GetRule(_ context.Context, id engine.RuleID) (*engine.IncentiveRule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i := range m.rules {
		if m.rules[i].ID == id {
			r := m.rules[i]
			return &r, nil
		}
	}
	return nil, nil
}

func (m *Memory) ListRules(_ context.Context) ([]engine.IncentiveRule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]engine.IncentiveRule(nil), m.rules...), nil
}

// LoadSnapshot copies all four collections under one read lock.
func (m *Memory) LoadSnapshot(_ context.Context) (*engine.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return &engine.Snapshot{
		Users:    append([]engine.User(nil), m.users...),
		Accounts: append([]engine.Account(nil), m.accounts...),
		Sales:    append([]engine.SalesDatum(nil), m.sales...),
		Rules:    append([]engine.IncentiveRule(nil), m.rules...),
	}, nil
}

func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users = nil
	m.accounts = nil
	m.sales = nil
	m.rules = nil
	return nil
}
