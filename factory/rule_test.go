package factory

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/incentive-engine/engine"
)

func TestParseRule_FullDocument(t *testing.T) {
	f := NewRuleFactory()

	rule, err := f.ParseRule(`{
		"id": "standard-2026",
		"name": "Standard Schedule 2026",
		"is_active": false,
		"commission_rate_min": "3",
		"commission_rate_max": "10",
		"min_commission_threshold": "1000",
		"base_revenue_threshold": "25000",
		"tiers": [
			{"revenue_threshold": "0", "incentive_rate": "2"},
			{"revenue_threshold": "100000", "incentive_rate": "5"}
		]
	}`)
	require.NoError(t, err)

	assert.Equal(t, engine.RuleID("standard-2026"), rule.ID)
	assert.Equal(t, "Standard Schedule 2026", rule.Name)
	assert.False(t, rule.IsActive)
	assert.True(t, rule.CommissionRateMin.Equal(decimal.NewFromInt(3)))
	assert.True(t, rule.CommissionRateMax.Equal(decimal.NewFromInt(10)))
	assert.True(t, rule.MinCommissionThreshold.Equal(decimal.NewFromInt(1000)))
	assert.True(t, rule.BaseRevenueThreshold.Equal(decimal.NewFromInt(25000)))
	require.Len(t, rule.Tiers, 2)
	assert.True(t, rule.Tiers[1].IncentiveRate.Equal(decimal.NewFromInt(5)))
}

func TestParseRule_Defaults(t *testing.T) {
	f := NewRuleFactory()

	rule, err := f.ParseRule(`{
		"id": "minimal",
		"name": "Minimal",
		"tiers": [{"revenue_threshold": "0", "incentive_rate": "2"}]
	}`)
	require.NoError(t, err)

	assert.True(t, rule.IsActive, "rules default to active")
	assert.True(t, rule.CommissionRateMin.IsZero())
	assert.True(t, rule.CommissionRateMax.Equal(decimal.NewFromInt(100)), "default window is unbounded")
	assert.True(t, rule.MinCommissionThreshold.IsZero())
	assert.True(t, rule.BaseRevenueThreshold.IsZero())
}

func TestParseRule_Invalid(t *testing.T) {
	f := NewRuleFactory()

	tests := []struct {
		name string
		json string
	}{
		{"missing id", `{"name": "X", "tiers": []}`},
		{"missing name", `{"id": "x", "tiers": []}`},
		{"malformed json", `{"id": "x",`},
		{"inverted rate window", `{"id": "x", "name": "X",
			"commission_rate_min": "10", "commission_rate_max": "5", "tiers": []}`},
		{"negative rate min", `{"id": "x", "name": "X",
			"commission_rate_min": "-1", "tiers": []}`},
		{"negative floor", `{"id": "x", "name": "X",
			"min_commission_threshold": "-5", "tiers": []}`},
		{"tier missing rate", `{"id": "x", "name": "X",
			"tiers": [{"revenue_threshold": "0"}]}`},
		{"tier negative rate", `{"id": "x", "name": "X",
			"tiers": [{"revenue_threshold": "0", "incentive_rate": "-2"}]}`},
		{"bad decimal", `{"id": "x", "name": "X",
			"commission_rate_min": "abc", "tiers": []}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.ParseRule(tt.json)
			assert.Error(t, err)
		})
	}
}

func TestParseRuleYAML(t *testing.T) {
	f := NewRuleFactory()

	rule, err := f.ParseRuleYAML([]byte(`
id: yaml-rule
name: From YAML
commission_rate_max: "8"
min_commission_threshold: "750"
tiers:
  - revenue_threshold: "0"
    incentive_rate: "1.5"
  - revenue_threshold: "50000"
    incentive_rate: "3"
`))
	require.NoError(t, err)

	assert.Equal(t, engine.RuleID("yaml-rule"), rule.ID)
	assert.True(t, rule.IsActive)
	assert.True(t, rule.CommissionRateMax.Equal(decimal.NewFromInt(8)))
	require.Len(t, rule.Tiers, 2)
	assert.True(t, rule.Tiers[0].IncentiveRate.Equal(decimal.RequireFromString("1.5")))
}

func TestParseRulesYAML_OrderPreserved(t *testing.T) {
	f := NewRuleFactory()

	rules, err := f.ParseRulesYAML([]byte(`
rules:
  - id: second-priority
    name: Second
    tiers: []
  - id: first-read-last
    name: Last
    tiers: []
`))
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, engine.RuleID("second-priority"), rules[0].ID)
	assert.Equal(t, engine.RuleID("first-read-last"), rules[1].ID)
}

func TestToConfig_RoundTrip(t *testing.T) {
	f := NewRuleFactory()

	original, err := f.ParseRule(StandardScheduleJSON("standard", "Standard"))
	require.NoError(t, err)

	data, err := json.Marshal(f.ToConfig(original))
	require.NoError(t, err)

	parsed, err := f.ParseRule(string(data))
	require.NoError(t, err)

	assert.Equal(t, original.ID, parsed.ID)
	assert.Equal(t, original.Name, parsed.Name)
	assert.Equal(t, original.IsActive, parsed.IsActive)
	assert.True(t, original.MinCommissionThreshold.Equal(parsed.MinCommissionThreshold))
	require.Len(t, parsed.Tiers, len(original.Tiers))
	for i := range original.Tiers {
		assert.True(t, original.Tiers[i].RevenueThreshold.Equal(parsed.Tiers[i].RevenueThreshold))
		assert.True(t, original.Tiers[i].IncentiveRate.Equal(parsed.Tiers[i].IncentiveRate))
	}
}

func TestPresets_ParseCleanly(t *testing.T) {
	f := NewRuleFactory()

	for _, doc := range []string{
		StandardScheduleJSON("standard", "Standard"),
		HighVolumeScheduleJSON("high-volume", "High Volume"),
		PremiumScheduleJSON("premium", "Premium"),
	} {
		rule, err := f.ParseRule(doc)
		require.NoError(t, err)
		assert.True(t, rule.IsActive)
		assert.NotEmpty(t, rule.Tiers)
	}
}
