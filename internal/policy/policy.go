// Package policy holds the configurable lending rulebook: eligibility
// thresholds, interest-rate tiers and amount caps keyed to risk score.
package policy

import (
	"fmt"
	"sort"
)

// Thresholds are the hard eligibility limits enforced by the decision gate.
type Thresholds struct {
	CreditScoreFloor    int     `mapstructure:"credit_score_floor" yaml:"credit_score_floor"`
	DTICeiling          float64 `mapstructure:"dti_ceiling" yaml:"dti_ceiling"`
	MinEmploymentMonths int     `mapstructure:"min_employment_months" yaml:"min_employment_months"`
	DerogRecencyYears   float64 `mapstructure:"derog_recency_years" yaml:"derog_recency_years"`
}

// RateTier maps a risk-score band to an annual interest rate. Bands are
// inclusive upper bounds sorted ascending.
type RateTier struct {
	MaxRiskScore int     `mapstructure:"max_risk_score" yaml:"max_risk_score"`
	AnnualRate   float64 `mapstructure:"annual_rate" yaml:"annual_rate"`
}

// CapTier maps a risk-score band to the maximum amount the desk will extend.
type CapTier struct {
	MaxRiskScore int     `mapstructure:"max_risk_score" yaml:"max_risk_score"`
	MaxAmount    float64 `mapstructure:"max_amount" yaml:"max_amount"`
}

// Ruleset is an immutable snapshot of the rulebook.
type Ruleset struct {
	Thresholds Thresholds `mapstructure:"thresholds" yaml:"thresholds"`
	RateTiers  []RateTier `mapstructure:"rate_tiers" yaml:"rate_tiers"`
	AmountCaps []CapTier  `mapstructure:"amount_caps" yaml:"amount_caps"`
}

// Defaults mirrors the compiled-in rulebook used when no templates are
// configured. The rate ladder follows base 3.5% plus a risk premium of up to
// 10 points, sampled at each band's upper bound.
func Defaults() Ruleset {
	return Ruleset{
		Thresholds: Thresholds{
			CreditScoreFloor:    580,
			DTICeiling:          0.43,
			MinEmploymentMonths: 6,
			DerogRecencyYears:   7,
		},
		RateTiers: []RateTier{
			{MaxRiskScore: 20, AnnualRate: 5.5},
			{MaxRiskScore: 40, AnnualRate: 7.5},
			{MaxRiskScore: 60, AnnualRate: 9.5},
			{MaxRiskScore: 80, AnnualRate: 11.5},
			{MaxRiskScore: 100, AnnualRate: 13.5},
		},
		AmountCaps: []CapTier{
			{MaxRiskScore: 29, MaxAmount: 1_000_000},
			{MaxRiskScore: 59, MaxAmount: 500_000},
			{MaxRiskScore: 100, MaxAmount: 250_000},
		},
	}
}

// RateFor returns the annual rate for a risk score. Scores past the last
// band use the last band's rate.
func (r Ruleset) RateFor(score int) float64 {
	for _, tier := range r.RateTiers {
		if score <= tier.MaxRiskScore {
			return tier.AnnualRate
		}
	}
	return r.RateTiers[len(r.RateTiers)-1].AnnualRate
}

// CapFor returns the maximum lendable amount for a risk score.
func (r Ruleset) CapFor(score int) float64 {
	for _, tier := range r.AmountCaps {
		if score <= tier.MaxRiskScore {
			return tier.MaxAmount
		}
	}
	return r.AmountCaps[len(r.AmountCaps)-1].MaxAmount
}

// normalize sorts the tiers and verifies the monotonicity the synthesizer
// relies on: rates never fall and caps never rise as risk grows.
func (r *Ruleset) normalize() error {
	if len(r.RateTiers) == 0 || len(r.AmountCaps) == 0 {
		return fmt.Errorf("ruleset requires at least one rate tier and one amount cap")
	}
	sort.Slice(r.RateTiers, func(i, j int) bool {
		return r.RateTiers[i].MaxRiskScore < r.RateTiers[j].MaxRiskScore
	})
	sort.Slice(r.AmountCaps, func(i, j int) bool {
		return r.AmountCaps[i].MaxRiskScore < r.AmountCaps[j].MaxRiskScore
	})
	for i := 1; i < len(r.RateTiers); i++ {
		if r.RateTiers[i].AnnualRate < r.RateTiers[i-1].AnnualRate {
			return fmt.Errorf("rate tiers must be non-decreasing in risk (band %d)", r.RateTiers[i].MaxRiskScore)
		}
	}
	for i := 1; i < len(r.AmountCaps); i++ {
		if r.AmountCaps[i].MaxAmount > r.AmountCaps[i-1].MaxAmount {
			return fmt.Errorf("amount caps must be non-increasing in risk (band %d)", r.AmountCaps[i].MaxRiskScore)
		}
	}
	if r.Thresholds.CreditScoreFloor <= 0 || r.Thresholds.DTICeiling <= 0 {
		return fmt.Errorf("thresholds require a positive credit score floor and dti ceiling")
	}
	return nil
}
