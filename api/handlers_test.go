/*
handlers_test.go - Unit tests for API handlers

Tests for:
- Incentive calculation endpoint (viewer scoping, result rendering)
- Rule lifecycle (create, activate/deactivate)
- Scenario loading
*/
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/incentive-engine/engine"
	"github.com/warp/incentive-engine/engine/store"
	"github.com/warp/incentive-engine/factory"
)

func newTestServer(t *testing.T) (*Handler, *httptest.Server) {
	t.Helper()
	h := NewHandler(store.NewMemory())
	srv := httptest.NewServer(NewRouter(h))
	t.Cleanup(srv.Close)
	return h, srv
}

func getJSON(t *testing.T, srv *httptest.Server, path string, out any) *http.Response {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func postJSON(t *testing.T, srv *httptest.Server, path, body string, out any) *http.Response {
	t.Helper()
	resp, err := http.Post(srv.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

// seedWorkedExample loads one seller with a standard schedule: 150000 in
// qualifying revenue at 3% commission yields a 4500 incentive.
func seedWorkedExample(t *testing.T, h *Handler) {
	t.Helper()
	ctx := context.Background()

	rule, err := h.RuleFactory.ParseRule(factory.StandardScheduleJSON("standard", "Standard"))
	require.NoError(t, err)
	require.NoError(t, h.Store.SaveRule(ctx, *rule))

	require.NoError(t, h.Store.SaveUser(ctx, engine.User{
		ID: "alice", Name: "Alice", ManagedAccountIDs: []engine.AccountID{"acct-1"},
	}))
	require.NoError(t, h.Store.SaveAccount(ctx, engine.Account{
		ID: "acct-1", Name: "Acme", UserID: "alice",
	}))
	require.NoError(t, h.Store.SaveSalesDatum(ctx, engine.SalesDatum{
		ID:              "sale-1",
		AccountID:       "acct-1",
		TotalPurchases:  engine.MustParseDecimal("150000"),
		GrossCommission: engine.MustParseDecimal("4500"),
	}))
}

func TestGetIncentives_WorkedExample(t *testing.T) {
	// GIVEN: One seller with 150000 qualifying revenue on the standard schedule
	h, srv := newTestServer(t)
	seedWorkedExample(t, h)

	// WHEN: The seller requests their own incentives
	var results []IncentiveDTO
	resp := getJSON(t, srv, "/api/incentives?as=alice", &results)

	// THEN: 2% of the first 100k plus 5% of the next 50k = 4500.00
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, results, 1)
	assert.Equal(t, "alice", results[0].UserID)
	assert.Equal(t, "Alice", results[0].UserName)
	assert.Equal(t, "4500.00", results[0].IncentiveAmount)
	assert.Equal(t, "150000.00", results[0].QualifyingRevenue)
	assert.Equal(t, "standard", results[0].RuleID)
	assert.Equal(t, "100.00", results[0].ProgressPercent)
	assert.Nil(t, results[0].NextTier)
	require.Len(t, results[0].Bands, 2)
	assert.Equal(t, "2000.00", results[0].Bands[0].Contribution)
	assert.Equal(t, "2500.00", results[0].Bands[1].Contribution)
}

func TestGetUserIncentive(t *testing.T) {
	// GIVEN: The worked-example seller plus a user with no accounts
	h, srv := newTestServer(t)
	seedWorkedExample(t, h)
	require.NoError(t, h.Store.SaveUser(context.Background(), engine.User{
		ID: "newhire", Name: "New Hire",
	}))

	// WHEN/THEN: The seller gets a full calculation
	var result IncentiveDTO
	resp := getJSON(t, srv, "/api/users/alice/incentive", &result)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "4500.00", result.IncentiveAmount)

	// THEN: No accounts is 204, unknown user is 404
	resp = getJSON(t, srv, "/api/users/newhire/incentive", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = getJSON(t, srv, "/api/users/missing/incentive", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetIncentives_RequiresViewer(t *testing.T) {
	_, srv := newTestServer(t)

	var errResp ErrorResponse
	resp := getJSON(t, srv, "/api/incentives", &errResp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = getJSON(t, srv, "/api/incentives?as=nobody", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetIncentives_AdminSeesEveryOwner(t *testing.T) {
	// GIVEN: Two sellers and an admin with no accounts of their own
	h, srv := newTestServer(t)
	seedWorkedExample(t, h)
	ctx := context.Background()

	require.NoError(t, h.Store.SaveUser(ctx, engine.User{
		ID: "bob", Name: "Bob", ManagedAccountIDs: []engine.AccountID{"acct-2"},
	}))
	require.NoError(t, h.Store.SaveAccount(ctx, engine.Account{
		ID: "acct-2", Name: "Globex", UserID: "bob",
	}))
	require.NoError(t, h.Store.SaveSalesDatum(ctx, engine.SalesDatum{
		ID:              "sale-2",
		AccountID:       "acct-2",
		TotalPurchases:  engine.MustParseDecimal("50000"),
		GrossCommission: engine.MustParseDecimal("1500"),
	}))
	require.NoError(t, h.Store.SaveUser(ctx, engine.User{
		ID: "admin", Name: "Admin", IsAdmin: true,
	}))

	// WHEN: The admin requests the population
	var results []IncentiveDTO
	resp := getJSON(t, srv, "/api/incentives?as=admin", &results)

	// THEN: Both owners appear, highest incentive first
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, results, 2)
	assert.Equal(t, "alice", results[0].UserID)
	assert.Equal(t, "bob", results[1].UserID)
	assert.Equal(t, "1000.00", results[1].IncentiveAmount)
}

func TestGetIncentives_NoActiveRules(t *testing.T) {
	// GIVEN: Data exists but the only rule is deactivated
	h, srv := newTestServer(t)
	seedWorkedExample(t, h)

	resp := postJSON(t, srv, "/api/rules/standard/deactivate", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// WHEN/THEN: Population is empty, not an error
	var results []IncentiveDTO
	resp = getJSON(t, srv, "/api/incentives?as=alice", &results)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, results)
}

func TestRuleLifecycle(t *testing.T) {
	_, srv := newTestServer(t)

	// Create from config
	var created RuleDTO
	resp := postJSON(t, srv, "/api/rules", `{"config": {
		"id": "r1", "name": "Rule One",
		"tiers": [{"revenue_threshold": "0", "incentive_rate": "2"}]
	}}`, &created)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.True(t, created.IsActive)

	// Deactivate, fetch, reactivate
	var updated RuleDTO
	resp = postJSON(t, srv, "/api/rules/r1/deactivate", "", &updated)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, updated.IsActive)

	var fetched RuleDTO
	resp = getJSON(t, srv, "/api/rules/r1", &fetched)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, fetched.IsActive)

	resp = postJSON(t, srv, "/api/rules/r1/activate", "", &updated)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, updated.IsActive)
}

func TestCreateRule_InvalidConfig(t *testing.T) {
	_, srv := newTestServer(t)

	resp := postJSON(t, srv, "/api/rules", `{"config": {"name": "No ID", "tiers": []}}`, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateSalesDatum_RejectsBadDecimal(t *testing.T) {
	_, srv := newTestServer(t)

	resp := postJSON(t, srv, "/api/sales", `{
		"id": "s1", "account_id": "a1",
		"total_purchases": "not-a-number", "gross_commission": "10"
	}`, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUserEndpoints(t *testing.T) {
	_, srv := newTestServer(t)

	var created UserDTO
	resp := postJSON(t, srv, "/api/users", `{
		"id": "u1", "name": "User One", "email": "u1@example.com",
		"managed_account_ids": ["a1", "a2"]
	}`, &created)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, []string{"a1", "a2"}, created.ManagedAccountIDs)

	var fetched UserDTO
	resp = getJSON(t, srv, "/api/users/u1", &fetched)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "User One", fetched.Name)

	resp = getJSON(t, srv, "/api/users/missing", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestScenarios(t *testing.T) {
	_, srv := newTestServer(t)

	var list []ScenarioDTO
	resp := getJSON(t, srv, "/api/scenarios", &list)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, list, 3)

	resp = postJSON(t, srv, "/api/scenarios/load", `{"scenario_id": "mixed-performance"}`, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var current map[string]string
	getJSON(t, srv, "/api/scenarios/current", &current)
	assert.Equal(t, "mixed-performance", current["scenario_id"])

	// The scenario's admin sees every owner
	var results []IncentiveDTO
	resp = getJSON(t, srv, "/api/incentives?as=admin", &results)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, results, 3)

	resp = postJSON(t, srv, "/api/scenarios/load", `{"scenario_id": "bogus"}`, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, srv, "/api/scenarios/reset", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var users []UserDTO
	getJSON(t, srv, "/api/users", &users)
	assert.Empty(t, users)
}
