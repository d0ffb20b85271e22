/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY RENDERING:
  Monetary amounts are rendered as fixed two-decimal strings and
  percentage rates as plain decimal strings. Clients never receive JSON
  floats for money.

TYPES:
  Users:
    UserDTO, CreateUserRequest

  Accounts / Sales:
    AccountDTO, CreateAccountRequest, SalesDatumDTO, CreateSalesDatumRequest

  Rules:
    RuleDTO (wraps factory.RuleJSON)

  Incentives:
    IncentiveDTO, TierDTO, TierBandDTO

  Scenarios:
    ScenarioDTO, LoadScenarioRequest

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/rule.go: RuleJSON type
*/
package api

import (
	"time"

	"github.com/warp/incentive-engine/engine"
	"github.com/warp/incentive-engine/factory"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// UserDTO represents a salesperson in API responses.
type UserDTO struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Email             string   `json:"email"`
	IsAdmin           bool     `json:"is_admin"`
	ManagedAccountIDs []string `json:"managed_account_ids"`
	CreatedAt         string   `json:"created_at,omitempty"`
}

// CreateUserRequest is the request to create a user.
type CreateUserRequest struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Email             string   `json:"email"`
	IsAdmin           bool     `json:"is_admin"`
	ManagedAccountIDs []string `json:"managed_account_ids"`
}

// AccountDTO represents an account in API responses.
type AccountDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	UserID    string `json:"user_id"`
	CreatedAt string `json:"created_at,omitempty"`
}

// CreateAccountRequest is the request to create an account.
type CreateAccountRequest struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	UserID string `json:"user_id"`
}

// SalesDatumDTO represents one sales record in API responses.
type SalesDatumDTO struct {
	ID              string `json:"id"`
	AccountID       string `json:"account_id"`
	TotalPurchases  string `json:"total_purchases"`
	GrossCommission string `json:"gross_commission"`
}

// CreateSalesDatumRequest is the request to record a sales datum.
// Amounts are decimal strings.
type CreateSalesDatumRequest struct {
	ID              string `json:"id"`
	AccountID       string `json:"account_id"`
	TotalPurchases  string `json:"total_purchases"`
	GrossCommission string `json:"gross_commission"`
}

// RuleDTO represents an incentive rule in API responses.
type RuleDTO struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	IsActive bool             `json:"is_active"`
	Config   factory.RuleJSON `json:"config"`
}

// CreateRuleRequest is the request to create a rule.
type CreateRuleRequest struct {
	Config factory.RuleJSON `json:"config"`
}

// TierDTO represents one band of a rule schedule.
type TierDTO struct {
	RevenueThreshold string `json:"revenue_threshold"`
	IncentiveRate    string `json:"incentive_rate"`
}

// TierBandDTO is one row of the per-band incentive breakdown.
type TierBandDTO struct {
	RevenueThreshold string `json:"revenue_threshold"`
	IncentiveRate    string `json:"incentive_rate"`
	BandUpper        string `json:"band_upper"`
	Contribution     string `json:"contribution"`
}

// IncentiveDTO represents one per-user calculation result.
type IncentiveDTO struct {
	UserID               string        `json:"user_id"`
	UserName             string        `json:"user_name"`
	TotalRevenue         string        `json:"total_revenue"`
	TotalCommission      string        `json:"total_commission"`
	CommissionRate       string        `json:"commission_rate"`
	RuleID               string        `json:"rule_id,omitempty"`
	RuleName             string        `json:"rule_name,omitempty"`
	CurrentTier          *TierDTO      `json:"current_tier,omitempty"`
	NextTier             *TierDTO      `json:"next_tier,omitempty"`
	IncentiveAmount      string        `json:"incentive_amount"`
	QualifyingRevenue    string        `json:"qualifying_revenue"`
	Bands                []TierBandDTO `json:"bands,omitempty"`
	ProgressPercent      string        `json:"progress_percent"`
	RemainingToNextTier  string        `json:"remaining_to_next_tier"`
	ManagedAccountsCount int           `json:"managed_accounts_count"`
}

// ScenarioDTO describes an available demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest is the request to load a demo scenario.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// DOMAIN -> DTO CONVERSION
// =============================================================================

func userToDTO(u engine.User) UserDTO {
	ids := make([]string, len(u.ManagedAccountIDs))
	for i, id := range u.ManagedAccountIDs {
		ids[i] = string(id)
	}
	return UserDTO{
		ID:                string(u.ID),
		Name:              u.Name,
		Email:             u.Email,
		IsAdmin:           u.IsAdmin,
		ManagedAccountIDs: ids,
		CreatedAt:         formatTime(u.CreatedAt),
	}
}

func accountToDTO(a engine.Account) AccountDTO {
	return AccountDTO{
		ID:        string(a.ID),
		Name:      a.Name,
		UserID:    string(a.UserID),
		CreatedAt: formatTime(a.CreatedAt),
	}
}

func salesDatumToDTO(d engine.SalesDatum) SalesDatumDTO {
	return SalesDatumDTO{
		ID:              d.ID,
		AccountID:       string(d.AccountID),
		TotalPurchases:  d.TotalPurchases.StringFixed(2),
		GrossCommission: d.GrossCommission.StringFixed(2),
	}
}

func ruleToDTO(f *factory.RuleFactory, r engine.IncentiveRule) RuleDTO {
	return RuleDTO{
		ID:       string(r.ID),
		Name:     r.Name,
		IsActive: r.IsActive,
		Config:   f.ToConfig(&r),
	}
}

func tierToDTO(t *engine.Tier) *TierDTO {
	if t == nil {
		return nil
	}
	return &TierDTO{
		RevenueThreshold: t.RevenueThreshold.StringFixed(2),
		IncentiveRate:    t.IncentiveRate.String(),
	}
}

func incentiveToDTO(c engine.IncentiveCalculation) IncentiveDTO {
	dto := IncentiveDTO{
		UserID:               string(c.UserID),
		UserName:             c.UserName,
		TotalRevenue:         c.TotalRevenue.StringFixed(2),
		TotalCommission:      c.TotalCommission.StringFixed(2),
		CommissionRate:       c.CommissionRate.StringFixed(4),
		CurrentTier:          tierToDTO(c.CurrentTier),
		NextTier:             tierToDTO(c.NextTier),
		IncentiveAmount:      c.IncentiveAmount.StringFixed(2),
		QualifyingRevenue:    c.QualifyingRevenue.StringFixed(2),
		ProgressPercent:      c.ProgressPercent.StringFixed(2),
		RemainingToNextTier:  c.RemainingToNextTier.StringFixed(2),
		ManagedAccountsCount: c.ManagedAccountsCount,
	}
	if c.ApplicableRule != nil {
		dto.RuleID = string(c.ApplicableRule.ID)
		dto.RuleName = c.ApplicableRule.Name
	}
	for _, b := range c.Bands {
		dto.Bands = append(dto.Bands, TierBandDTO{
			RevenueThreshold: b.Tier.RevenueThreshold.StringFixed(2),
			IncentiveRate:    b.Tier.IncentiveRate.String(),
			BandUpper:        b.BandUpper.StringFixed(2),
			Contribution:     b.Contribution.StringFixed(2),
		})
	}
	return dto
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
