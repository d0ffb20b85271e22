/*
handlers.go - HTTP API handlers for the incentive calculation system

PURPOSE:
  Exposes the incentive engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Users:
    GET    /api/users                  List all salespeople
    POST   /api/users                  Create salesperson
    GET    /api/users/{id}             Get salesperson details
    GET    /api/users/{id}/incentive   Single-user calculation

  Accounts / Sales:
    GET    /api/accounts               List accounts
    POST   /api/accounts               Create account
    GET    /api/sales                  List sales records
    POST   /api/sales                  Record a sales datum

  Rules:
    GET    /api/rules                  List rules in evaluation order
    POST   /api/rules                  Create rule from config
    GET    /api/rules/{id}             Get one rule
    POST   /api/rules/{id}/activate    Activate a rule
    POST   /api/rules/{id}/deactivate  Deactivate a rule

  Calculations:
    GET    /api/incentives?as={userID} Population results for the viewer

  Scenarios:
    GET    /api/scenarios              List demo scenarios
    POST   /api/scenarios/load         Load a demo scenario

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: Database access (engine.Dataset)
  - RuleFactory: Config to rule conversion

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input
  3. Load snapshot, call engine
  4. Serialize response
  5. Handle errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/warp/incentive-engine/engine"
	"github.com/warp/incentive-engine/factory"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store       engine.Dataset
	RuleFactory *factory.RuleFactory

	// Track currently loaded scenario
	currentScenario string
}

// NewHandler creates a new handler with the given store.
func NewHandler(store engine.Dataset) *Handler {
	return &Handler{
		Store:       store,
		RuleFactory: factory.NewRuleFactory(),
	}
}

// =============================================================================
// USER HANDLERS
// =============================================================================

// ListUsers returns all salespeople.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Store.ListUsers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list users", err)
		return
	}

	dtos := make([]UserDTO, len(users))
	for i, u := range users {
		dtos[i] = userToDTO(u)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetUser returns a single salesperson.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	u, err := h.Store.GetUser(r.Context(), engine.UserID(id))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get user", err)
		return
	}
	if u == nil {
		writeError(w, http.StatusNotFound, "User not found", engine.ErrUserNotFound)
		return
	}
	writeJSON(w, http.StatusOK, userToDTO(*u))
}

// CreateUser creates a new salesperson.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "id and name are required", nil)
		return
	}

	u := engine.User{
		ID:      engine.UserID(req.ID),
		Name:    req.Name,
		Email:   req.Email,
		IsAdmin: req.IsAdmin,
	}
	for _, id := range req.ManagedAccountIDs {
		u.ManagedAccountIDs = append(u.ManagedAccountIDs, engine.AccountID(id))
	}

	if err := h.Store.SaveUser(r.Context(), u); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create user", err)
		return
	}
	writeJSON(w, http.StatusCreated, userToDTO(u))
}

// =============================================================================
// ACCOUNT HANDLERS
// =============================================================================

// ListAccounts returns all accounts.
func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.Store.ListAccounts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list accounts", err)
		return
	}

	dtos := make([]AccountDTO, len(accounts))
	for i, a := range accounts {
		dtos[i] = accountToDTO(a)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateAccount creates a new account.
func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" || req.UserID == "" {
		writeError(w, http.StatusBadRequest, "id and user_id are required", nil)
		return
	}

	// Accounts must reference an existing owner
	owner, err := h.Store.GetUser(r.Context(), engine.UserID(req.UserID))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to look up owner", err)
		return
	}
	if owner == nil {
		writeError(w, http.StatusNotFound, "Owner not found", engine.ErrUserNotFound)
		return
	}

	a := engine.Account{
		ID:     engine.AccountID(req.ID),
		Name:   req.Name,
		UserID: engine.UserID(req.UserID),
	}
	if err := h.Store.SaveAccount(r.Context(), a); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create account", err)
		return
	}
	writeJSON(w, http.StatusCreated, accountToDTO(a))
}

// =============================================================================
// SALES HANDLERS
// =============================================================================

// ListSalesData returns all sales records.
func (h *Handler) ListSalesData(w http.ResponseWriter, r *http.Request) {
	sales, err := h.Store.ListSalesData(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list sales records", err)
		return
	}

	dtos := make([]SalesDatumDTO, len(sales))
	for i, d := range sales {
		dtos[i] = salesDatumToDTO(d)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateSalesDatum records a sales datum for an account.
func (h *Handler) CreateSalesDatum(w http.ResponseWriter, r *http.Request) {
	var req CreateSalesDatumRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" || req.AccountID == "" {
		writeError(w, http.StatusBadRequest, "id and account_id are required", nil)
		return
	}

	purchases, err := decimal.NewFromString(req.TotalPurchases)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid total_purchases (use a decimal string)", err)
		return
	}
	commission, err := decimal.NewFromString(req.GrossCommission)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid gross_commission (use a decimal string)", err)
		return
	}

	// Sales records must reference an existing account
	accounts, err := h.Store.ListAccounts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to look up account", err)
		return
	}
	known := false
	for _, a := range accounts {
		if a.ID == engine.AccountID(req.AccountID) {
			known = true
			break
		}
	}
	if !known {
		writeError(w, http.StatusNotFound, "Account not found", engine.ErrAccountNotFound)
		return
	}

	d := engine.SalesDatum{
		ID:              req.ID,
		AccountID:       engine.AccountID(req.AccountID),
		TotalPurchases:  purchases,
		GrossCommission: commission,
	}
	if err := h.Store.SaveSalesDatum(r.Context(), d); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save sales record", err)
		return
	}
	writeJSON(w, http.StatusCreated, salesDatumToDTO(d))
}

// =============================================================================
// RULE HANDLERS
// =============================================================================

// ListRules returns all rules in evaluation order.
func (h *Handler) ListRules(w http.ResponseWriter, r *http.Request) {
	rules, err := h.Store.ListRules(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list rules", err)
		return
	}

	dtos := make([]RuleDTO, len(rules))
	for i, rule := range rules {
		dtos[i] = ruleToDTO(h.RuleFactory, rule)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetRule returns a single rule.
func (h *Handler) GetRule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rule, err := h.Store.GetRule(r.Context(), engine.RuleID(id))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get rule", err)
		return
	}
	if rule == nil {
		writeError(w, http.StatusNotFound, "Rule not found", engine.ErrRuleNotFound)
		return
	}
	writeJSON(w, http.StatusOK, ruleToDTO(h.RuleFactory, *rule))
}

// CreateRule creates a rule from its config document.
func (h *Handler) CreateRule(w http.ResponseWriter, r *http.Request) {
	var req CreateRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	rule, err := h.RuleFactory.FromConfig(req.Config)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid rule config", err)
		return
	}

	if err := h.Store.SaveRule(r.Context(), *rule); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save rule", err)
		return
	}
	writeJSON(w, http.StatusCreated, ruleToDTO(h.RuleFactory, *rule))
}

// ActivateRule marks a rule active.
func (h *Handler) ActivateRule(w http.ResponseWriter, r *http.Request) {
	h.setRuleActive(w, r, true)
}

// DeactivateRule marks a rule inactive without deleting its config.
func (h *Handler) DeactivateRule(w http.ResponseWriter, r *http.Request) {
	h.setRuleActive(w, r, false)
}

func (h *Handler) setRuleActive(w http.ResponseWriter, r *http.Request, active bool) {
	id := chi.URLParam(r, "id")

	rule, err := h.Store.GetRule(r.Context(), engine.RuleID(id))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get rule", err)
		return
	}
	if rule == nil {
		writeError(w, http.StatusNotFound, "Rule not found", engine.ErrRuleNotFound)
		return
	}

	rule.IsActive = active
	if err := h.Store.SaveRule(r.Context(), *rule); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update rule", err)
		return
	}
	writeJSON(w, http.StatusOK, ruleToDTO(h.RuleFactory, *rule))
}

// =============================================================================
// INCENTIVE HANDLERS
// =============================================================================

// GetIncentives runs the population calculation for the viewer named by
// the ?as= query parameter. Admins see every account owner; everyone else
// sees only themselves, scoped to their managed accounts.
func (h *Handler) GetIncentives(w http.ResponseWriter, r *http.Request) {
	viewerID := r.URL.Query().Get("as")
	if viewerID == "" {
		writeError(w, http.StatusBadRequest, "Missing required query parameter: as", nil)
		return
	}

	snap, err := h.Store.LoadSnapshot(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load data", err)
		return
	}

	var viewer *engine.User
	for i := range snap.Users {
		if snap.Users[i].ID == engine.UserID(viewerID) {
			viewer = &snap.Users[i]
			break
		}
	}
	if viewer == nil {
		writeError(w, http.StatusNotFound, "User not found", engine.ErrUserNotFound)
		return
	}

	calc := engine.NewCalculator(engine.NamesFromUsers(snap.Users))
	results := calc.ForPopulation(engine.PopulationInput{
		Accounts:    snap.Accounts,
		Sales:       snap.Sales,
		Rules:       snap.Rules,
		CurrentUser: *viewer,
	})

	dtos := make([]IncentiveDTO, len(results))
	for i, c := range results {
		dtos[i] = incentiveToDTO(c)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetUserIncentive computes the single-user calculation for the named
// user over their managed accounts. Responds 204 when the user manages
// no accounts (a defined empty outcome, not an error).
func (h *Handler) GetUserIncentive(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	snap, err := h.Store.LoadSnapshot(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load data", err)
		return
	}

	var user *engine.User
	for i := range snap.Users {
		if snap.Users[i].ID == engine.UserID(id) {
			user = &snap.Users[i]
			break
		}
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "User not found", engine.ErrUserNotFound)
		return
	}

	wanted := make(map[engine.AccountID]bool, len(user.ManagedAccountIDs))
	for _, accID := range user.ManagedAccountIDs {
		wanted[accID] = true
	}
	var accounts []engine.Account
	for _, a := range snap.Accounts {
		if wanted[a.ID] {
			accounts = append(accounts, a)
		}
	}

	calc := engine.NewCalculator(engine.NamesFromUsers(snap.Users))
	result := calc.ForUser(user.ID, accounts, snap.Sales, engine.ActiveRules(snap.Rules))
	if result == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, incentiveToDTO(*result))
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
