/*
Package factory provides JSON/YAML to Go incentive rule conversion.

PURPOSE:
  Converts externally authored rule definitions into engine.IncentiveRule
  objects. This enables rule configuration without code changes - sales
  operations can define schedules in JSON or YAML, and the factory creates
  the proper Go structs.

WHY CONFIG FILES?
  - Non-developers can modify incentive schedules
  - Easy integration with admin UI
  - Version control for rule definitions
  - Database storage of rule configs

JSON SCHEMA:
  {
    "id": "standard-2026",
    "name": "Standard Schedule 2026",
    "is_active": true,
    "commission_rate_min": "0",
    "commission_rate_max": "100",
    "min_commission_threshold": "1000",
    "base_revenue_threshold": "0",
    "tiers": [
      {"revenue_threshold": "0", "incentive_rate": "2"},
      {"revenue_threshold": "100000", "incentive_rate": "5"}
    ]
  }

  All money and percentage fields are strings - never JSON numbers - so
  values survive the round trip without float precision loss.

KEY FEATURES:
  - Validates structure (rate window, tier values)
  - Sets sensible defaults (active, unbounded rate window)
  - Symmetric ToConfig for export
  - Preset builders for common schedules

USAGE:
  factory := NewRuleFactory()

  // From JSON string
  rule, err := factory.ParseRule(jsonString)

  // From YAML (deployment configs)
  rule, err := factory.ParseRuleYAML(yamlBytes)

  // From preset (recommended starting point)
  rule, err := factory.ParseRule(StandardScheduleJSON("standard-2026", "Standard 2026"))

SEE ALSO:
  - engine/types.go: IncentiveRule type definition
  - api/handlers.go: HTTP rule management using this factory
*/
package factory

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/warp/incentive-engine/engine"
)

// =============================================================================
// CONFIG SCHEMA TYPES
// =============================================================================

// RuleJSON is the external representation of an incentive rule. The same
// struct serves JSON and YAML.
type RuleJSON struct {
	ID                     string     `json:"id" yaml:"id"`
	Name                   string     `json:"name" yaml:"name"`
	IsActive               *bool      `json:"is_active,omitempty" yaml:"is_active,omitempty"` // Default true
	CommissionRateMin      string     `json:"commission_rate_min,omitempty" yaml:"commission_rate_min,omitempty"`
	CommissionRateMax      string     `json:"commission_rate_max,omitempty" yaml:"commission_rate_max,omitempty"` // "100" means unbounded
	MinCommissionThreshold string     `json:"min_commission_threshold,omitempty" yaml:"min_commission_threshold,omitempty"`
	BaseRevenueThreshold   string     `json:"base_revenue_threshold,omitempty" yaml:"base_revenue_threshold,omitempty"`
	Tiers                  []TierJSON `json:"tiers" yaml:"tiers"`
}

// TierJSON is one revenue band of a rule's schedule.
type TierJSON struct {
	RevenueThreshold string `json:"revenue_threshold" yaml:"revenue_threshold"`
	IncentiveRate    string `json:"incentive_rate" yaml:"incentive_rate"`
}

// =============================================================================
// RULE FACTORY
// =============================================================================

// RuleFactory converts configuration documents to engine rules.
type RuleFactory struct{}

// NewRuleFactory creates a new rule factory.
func NewRuleFactory() *RuleFactory {
	return &RuleFactory{}
}

// ParseRule parses a JSON string into an IncentiveRule.
func (f *RuleFactory) ParseRule(jsonStr string) (*engine.IncentiveRule, error) {
	var rj RuleJSON
	if err := json.Unmarshal([]byte(jsonStr), &rj); err != nil {
		return nil, fmt.Errorf("failed to parse rule JSON: %w", err)
	}
	return f.FromConfig(rj)
}

// ParseRuleYAML parses a YAML document into an IncentiveRule.
func (f *RuleFactory) ParseRuleYAML(data []byte) (*engine.IncentiveRule, error) {
	var rj RuleJSON
	if err := yaml.Unmarshal(data, &rj); err != nil {
		return nil, fmt.Errorf("failed to parse rule YAML: %w", err)
	}
	return f.FromConfig(rj)
}

// ParseRulesYAML parses a YAML document containing a list of rules. List
// order becomes evaluation order.
func (f *RuleFactory) ParseRulesYAML(data []byte) ([]engine.IncentiveRule, error) {
	var doc struct {
		Rules []RuleJSON `yaml:"rules"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse rules YAML: %w", err)
	}

	rules := make([]engine.IncentiveRule, 0, len(doc.Rules))
	for i, rj := range doc.Rules {
		rule, err := f.FromConfig(rj)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		rules = append(rules, *rule)
	}
	return rules, nil
}

// FromConfig converts RuleJSON to an engine.IncentiveRule, applying
// defaults and validating the result.
func (f *RuleFactory) FromConfig(rj RuleJSON) (*engine.IncentiveRule, error) {
	if rj.ID == "" {
		return nil, fmt.Errorf("rule id is required")
	}
	if rj.Name == "" {
		return nil, fmt.Errorf("rule %s: name is required", rj.ID)
	}

	rule := &engine.IncentiveRule{
		ID:   engine.RuleID(rj.ID),
		Name: rj.Name,
		// Rules default to active; deactivation is an explicit act.
		IsActive: rj.IsActive == nil || *rj.IsActive,
	}

	var err error
	if rule.CommissionRateMin, err = parseDecimalField(rj.CommissionRateMin, "0"); err != nil {
		return nil, fmt.Errorf("rule %s: commission_rate_min: %w", rj.ID, err)
	}
	// Default max of 100 means the window is unbounded above.
	if rule.CommissionRateMax, err = parseDecimalField(rj.CommissionRateMax, "100"); err != nil {
		return nil, fmt.Errorf("rule %s: commission_rate_max: %w", rj.ID, err)
	}
	if rule.MinCommissionThreshold, err = parseDecimalField(rj.MinCommissionThreshold, "0"); err != nil {
		return nil, fmt.Errorf("rule %s: min_commission_threshold: %w", rj.ID, err)
	}
	if rule.BaseRevenueThreshold, err = parseDecimalField(rj.BaseRevenueThreshold, "0"); err != nil {
		return nil, fmt.Errorf("rule %s: base_revenue_threshold: %w", rj.ID, err)
	}

	if rule.CommissionRateMin.IsNegative() {
		return nil, fmt.Errorf("rule %s: commission_rate_min must not be negative", rj.ID)
	}
	if rule.CommissionRateMax.LessThan(rule.CommissionRateMin) {
		return nil, fmt.Errorf("rule %s: commission_rate_max below commission_rate_min", rj.ID)
	}
	if rule.MinCommissionThreshold.IsNegative() {
		return nil, fmt.Errorf("rule %s: min_commission_threshold must not be negative", rj.ID)
	}

	for i, tj := range rj.Tiers {
		tier, err := parseTier(tj)
		if err != nil {
			return nil, fmt.Errorf("rule %s: tier %d: %w", rj.ID, i, err)
		}
		rule.Tiers = append(rule.Tiers, tier)
	}

	return rule, nil
}

// ToConfig converts an IncentiveRule back to its external representation.
func (f *RuleFactory) ToConfig(rule *engine.IncentiveRule) RuleJSON {
	active := rule.IsActive
	rj := RuleJSON{
		ID:                     string(rule.ID),
		Name:                   rule.Name,
		IsActive:               &active,
		CommissionRateMin:      rule.CommissionRateMin.String(),
		CommissionRateMax:      rule.CommissionRateMax.String(),
		MinCommissionThreshold: rule.MinCommissionThreshold.String(),
		BaseRevenueThreshold:   rule.BaseRevenueThreshold.String(),
	}
	for _, t := range rule.Tiers {
		rj.Tiers = append(rj.Tiers, TierJSON{
			RevenueThreshold: t.RevenueThreshold.String(),
			IncentiveRate:    t.IncentiveRate.String(),
		})
	}
	return rj
}

func parseTier(tj TierJSON) (engine.Tier, error) {
	var t engine.Tier
	var err error
	if t.RevenueThreshold, err = parseDecimalField(tj.RevenueThreshold, "0"); err != nil {
		return t, fmt.Errorf("revenue_threshold: %w", err)
	}
	if t.IncentiveRate, err = parseDecimalField(tj.IncentiveRate, ""); err != nil {
		return t, fmt.Errorf("incentive_rate: %w", err)
	}
	if t.RevenueThreshold.IsNegative() {
		return t, fmt.Errorf("revenue_threshold must not be negative")
	}
	if t.IncentiveRate.IsNegative() {
		return t, fmt.Errorf("incentive_rate must not be negative")
	}
	return t, nil
}

// parseDecimalField parses s, substituting def when s is empty. An empty
// default means the field is required.
func parseDecimalField(s, def string) (decimal.Decimal, error) {
	if s == "" {
		if def == "" {
			return decimal.Zero, fmt.Errorf("value is required")
		}
		s = def
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid decimal %q", s)
	}
	return d, nil
}

// =============================================================================
// PRESET BUILDERS
// =============================================================================

// StandardScheduleJSON returns a two-tier progressive schedule: 2% up to
// 100k of qualifying revenue, 5% above, with a 1000 commission floor.
func StandardScheduleJSON(id, name string) string {
	data, _ := json.Marshal(RuleJSON{
		ID:                     id,
		Name:                   name,
		MinCommissionThreshold: "1000",
		Tiers: []TierJSON{
			{RevenueThreshold: "0", IncentiveRate: "2"},
			{RevenueThreshold: "100000", IncentiveRate: "5"},
		},
	})
	return string(data)
}

// HighVolumeScheduleJSON returns a three-tier schedule for low-rate,
// high-volume sellers (blended commission rate under 3%).
func HighVolumeScheduleJSON(id, name string) string {
	data, _ := json.Marshal(RuleJSON{
		ID:                id,
		Name:              name,
		CommissionRateMax: "3",
		Tiers: []TierJSON{
			{RevenueThreshold: "0", IncentiveRate: "1"},
			{RevenueThreshold: "250000", IncentiveRate: "2.5"},
			{RevenueThreshold: "1000000", IncentiveRate: "4"},
		},
	})
	return string(data)
}

// PremiumScheduleJSON returns a schedule for high-rate sellers (blended
// commission rate of 10% or more, unbounded above).
func PremiumScheduleJSON(id, name string) string {
	data, _ := json.Marshal(RuleJSON{
		ID:                     id,
		Name:                   name,
		CommissionRateMin:      "10",
		MinCommissionThreshold: "500",
		Tiers: []TierJSON{
			{RevenueThreshold: "0", IncentiveRate: "3"},
			{RevenueThreshold: "50000", IncentiveRate: "6"},
		},
	})
	return string(data)
}
