/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with realistic
	data for testing and demos. Each scenario creates users, accounts,
	sales records, and rules that demonstrate specific engine features.

AVAILABLE SCENARIOS:

	quarter-close:     Small team mid-quarter, one standard schedule
	mixed-performance: High/mid/low performers across multiple rules
	premium-sellers:   High-rate sellers with a commission floor in play

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Create rules via factory presets
 3. Create users and their accounts
 4. Add sales records

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "mixed-performance"}

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description
 2. Create loader function: loadXxxScenario(ctx, h)
 3. Add case to LoadScenario handler

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Scenario HTTP handlers live at the bottom of this file
  - factory/rule.go: Rule preset definitions
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/warp/incentive-engine/engine"
	"github.com/warp/incentive-engine/factory"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "quarter-close",
		Name:        "Quarter Close",
		Description: "Small team mid-quarter with one standard progressive schedule",
	},
	{
		ID:          "mixed-performance",
		Name:        "Mixed Performance",
		Description: "High, mid and low performers spread across multiple rate windows",
	},
	{
		ID:          "premium-sellers",
		Name:        "Premium Sellers",
		Description: "High-rate sellers where the per-account commission floor excludes accounts",
	},
}

// =============================================================================
// LOADERS
// =============================================================================

func loadQuarterCloseScenario(ctx context.Context, h *Handler) error {
	if err := seedRules(ctx, h, factory.StandardScheduleJSON("standard", "Standard Schedule")); err != nil {
		return err
	}

	if err := h.Store.SaveUser(ctx, engine.User{
		ID: "admin", Name: "Dana Admin", Email: "dana@example.com", IsAdmin: true,
	}); err != nil {
		return err
	}

	team := []struct {
		user     engine.User
		accounts []string
		sales    []salesSeed
	}{
		{
			user:     engine.User{ID: "alice", Name: "Alice Nguyen", Email: "alice@example.com"},
			accounts: []string{"Acme Corp", "Globex"},
			sales: []salesSeed{
				{"Acme Corp", "120000", "3600"},
				{"Globex", "45000", "1350"},
			},
		},
		{
			// Bob sits exactly on the 100000 tier boundary: the second
			// band is reached with a zero-width contribution.
			user:     engine.User{ID: "bob", Name: "Bob Rivera", Email: "bob@example.com"},
			accounts: []string{"Initech"},
			sales: []salesSeed{
				{"Initech", "100000", "3000"},
			},
		},
	}

	for _, m := range team {
		if err := seedSeller(ctx, h, m.user, m.accounts, m.sales); err != nil {
			return err
		}
	}
	return nil
}

func loadMixedPerformanceScenario(ctx context.Context, h *Handler) error {
	// Evaluation order matters: the standard schedule's window is
	// unbounded, so the narrower windows must come first.
	if err := seedRules(ctx, h,
		factory.HighVolumeScheduleJSON("high-volume", "High Volume"),
		factory.PremiumScheduleJSON("premium", "Premium"),
		factory.StandardScheduleJSON("standard", "Standard Schedule"),
	); err != nil {
		return err
	}

	if err := h.Store.SaveUser(ctx, engine.User{
		ID: "admin", Name: "Dana Admin", Email: "dana@example.com", IsAdmin: true,
	}); err != nil {
		return err
	}

	team := []struct {
		user     engine.User
		accounts []string
		sales    []salesSeed
	}{
		{
			// Blended rate ~2%: matches the high-volume window.
			user:     engine.User{ID: "carla", Name: "Carla Diaz", Email: "carla@example.com"},
			accounts: []string{"MegaMart", "BulkCo"},
			sales: []salesSeed{
				{"MegaMart", "800000", "16000"},
				{"BulkCo", "400000", "8000"},
			},
		},
		{
			// Blended rate ~4%: falls through to the standard schedule.
			user:     engine.User{ID: "dev", Name: "Dev Patel", Email: "dev@example.com"},
			accounts: []string{"Stark Industries"},
			sales: []salesSeed{
				{"Stark Industries", "150000", "6000"},
			},
		},
		{
			// Blended rate ~12%: premium window.
			user:     engine.User{ID: "erin", Name: "Erin Walsh", Email: "erin@example.com"},
			accounts: []string{"Wayne Enterprises"},
			sales: []salesSeed{
				{"Wayne Enterprises", "80000", "9600"},
			},
		},
	}

	for _, m := range team {
		if err := seedSeller(ctx, h, m.user, m.accounts, m.sales); err != nil {
			return err
		}
	}
	return nil
}

func loadPremiumSellersScenario(ctx context.Context, h *Handler) error {
	if err := seedRules(ctx, h, factory.PremiumScheduleJSON("premium", "Premium")); err != nil {
		return err
	}

	if err := h.Store.SaveUser(ctx, engine.User{
		ID: "admin", Name: "Dana Admin", Email: "dana@example.com", IsAdmin: true,
	}); err != nil {
		return err
	}

	// Frank's second account earns only 200 in commission - below the
	// premium schedule's 500 floor - so its revenue never qualifies.
	return seedSeller(ctx, h,
		engine.User{ID: "frank", Name: "Frank Osei", Email: "frank@example.com"},
		[]string{"Umbrella Corp", "Tyrell Corp"},
		[]salesSeed{
			{"Umbrella Corp", "70000", "8400"},
			{"Tyrell Corp", "1800", "200"},
		})
}

// =============================================================================
// SEED HELPERS
// =============================================================================

type salesSeed struct {
	accountName string
	revenue     string
	commission  string
}

func seedRules(ctx context.Context, h *Handler, docs ...string) error {
	for _, doc := range docs {
		rule, err := h.RuleFactory.ParseRule(doc)
		if err != nil {
			return fmt.Errorf("failed to build scenario rule: %w", err)
		}
		if err := h.Store.SaveRule(ctx, *rule); err != nil {
			return err
		}
	}
	return nil
}

// seedSeller creates a user, one account per name, and the given sales
// records. Account ids are derived from the user so scenarios stay
// readable; sales record ids are random.
func seedSeller(ctx context.Context, h *Handler, u engine.User, accountNames []string, sales []salesSeed) error {
	accountIDs := make(map[string]engine.AccountID, len(accountNames))
	for i, name := range accountNames {
		id := engine.AccountID(fmt.Sprintf("%s-acct-%d", u.ID, i+1))
		accountIDs[name] = id
		u.ManagedAccountIDs = append(u.ManagedAccountIDs, id)
	}

	if err := h.Store.SaveUser(ctx, u); err != nil {
		return err
	}
	for _, name := range accountNames {
		if err := h.Store.SaveAccount(ctx, engine.Account{
			ID:     accountIDs[name],
			Name:   name,
			UserID: u.ID,
		}); err != nil {
			return err
		}
	}

	for _, s := range sales {
		id, ok := accountIDs[s.accountName]
		if !ok {
			return fmt.Errorf("scenario sales record references unknown account %q", s.accountName)
		}
		if err := h.Store.SaveSalesDatum(ctx, engine.SalesDatum{
			ID:              uuid.NewString(),
			AccountID:       id,
			TotalPurchases:  engine.MustParseDecimal(s.revenue),
			GrossCommission: engine.MustParseDecimal(s.commission),
		}); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// SCENARIO HANDLERS
// =============================================================================

// ListScenarios returns the available demo scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the most recently loaded scenario id.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"scenario_id": h.currentScenario})
}

// LoadScenario resets the database and loads the named scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()
	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}

	var err error
	switch req.ScenarioID {
	case "quarter-close":
		err = loadQuarterCloseScenario(ctx, h)
	case "mixed-performance":
		err = loadMixedPerformanceScenario(ctx, h)
	case "premium-sellers":
		err = loadPremiumSellersScenario(ctx, h)
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Unknown scenario: %s", req.ScenarioID), nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		return
	}

	h.currentScenario = req.ScenarioID
	writeJSON(w, http.StatusOK, map[string]string{
		"status":      "loaded",
		"scenario_id": req.ScenarioID,
	})
}

// ResetDatabase clears all data.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}
