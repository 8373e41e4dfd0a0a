package underwriting

import (
	"fmt"
	"time"
)

// Deterministic scoring weights. These are the normative rules; the assisted
// opinion may replace the score but never blends with it.
const (
	penaltyCreditPoor   = 40 // credit score < 580
	penaltyCreditFair   = 25 // 580-669
	penaltyCreditGood   = 10 // 670-739
	penaltyDTIHigh      = 20 // DTI > 43%
	penaltyDTIElevated  = 10 // DTI 37-43%
	penaltyShortTenure  = 15 // employed < 1 year
	penaltyBankruptcy   = 30 // within recency window
	penaltyForeclosure  = 35 // within recency window
	penaltyLatePerEvent = 10 // per late payment (12m) once there are two or more
	penaltyLateCap      = 20
	derogWindowYears    = 7
	maxScore            = 100
)

// RiskAssessor produces a 0-100 score (higher = riskier). Assisted mode is
// attempted when fragments and a reasoner are available; any failure falls
// back silently to the deterministic result.
type RiskAssessor struct {
	reasoner Reasoner
	timeout  time.Duration
	now      func() time.Time
}

func NewRiskAssessor(reasoner Reasoner, timeout time.Duration) *RiskAssessor {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &RiskAssessor{reasoner: reasoner, timeout: timeout, now: time.Now}
}

// Deterministic computes the rule-based assessment. Always succeeds.
func (r *RiskAssessor) Deterministic(app *Application) RiskAssessment {
	score := 0
	var factors []string

	switch cs := app.Credit.CreditScore; {
	case cs < 580:
		score += penaltyCreditPoor
		factors = append(factors, fmt.Sprintf("credit score %d is subprime", cs))
	case cs < 670:
		score += penaltyCreditFair
		factors = append(factors, fmt.Sprintf("credit score %d is below prime", cs))
	case cs < 740:
		score += penaltyCreditGood
		factors = append(factors, fmt.Sprintf("credit score %d is near prime", cs))
	}

	dti := app.DTI()
	switch {
	case dti > 0.43:
		score += penaltyDTIHigh
		factors = append(factors, fmt.Sprintf("debt-to-income ratio %.0f%% exceeds 43%%", dti*100))
	case dti >= 0.37:
		score += penaltyDTIElevated
		factors = append(factors, fmt.Sprintf("debt-to-income ratio %.0f%% is elevated", dti*100))
	}

	if app.Employment.YearsEmployed < 1 {
		score += penaltyShortTenure
		factors = append(factors, "less than one year of employment history")
	}

	if app.Financial.HasBankruptcy && withinYears(app.Financial.BankruptcyDate, derogWindowYears, r.now()) {
		score += penaltyBankruptcy
		factors = append(factors, fmt.Sprintf("bankruptcy within the last %d years", derogWindowYears))
	}
	if app.Financial.HasForeclosure && withinYears(app.Financial.ForeclosureDate, derogWindowYears, r.now()) {
		score += penaltyForeclosure
		factors = append(factors, fmt.Sprintf("foreclosure within the last %d years", derogWindowYears))
	}

	if late := app.Credit.LatePayments12M; late >= 2 {
		p := late * penaltyLatePerEvent
		if p > penaltyLateCap {
			p = penaltyLateCap
		}
		score += p
		factors = append(factors, fmt.Sprintf("%d late payments in the last 12 months", late))
	}

	// Informational signals from the full credit file. They shape the
	// narrative but never move the score.
	factors = append(factors, r.supplementalFactors(app)...)

	if score > maxScore {
		score = maxScore
	}
	return RiskAssessment{Score: score, Factors: factors, Mode: ModeDeterministic}
}

func (r *RiskAssessor) supplementalFactors(app *Application) []string {
	var out []string
	if u := app.Credit.CreditUtilization; u > 60 {
		out = append(out, fmt.Sprintf("credit utilization %.0f%% is high", u))
	}
	if n := app.Credit.Inquiries6M; n > 3 {
		out = append(out, fmt.Sprintf("%d credit inquiries in the last 6 months", n))
	}
	if app.Credit.LatePayments12M < 2 && app.Credit.LatePayments24M > 3 {
		out = append(out, fmt.Sprintf("%d late payments in the last 24 months", app.Credit.LatePayments24M))
	}
	if pv := app.Loan.PropertyValue; pv.IsPositive() {
		ltv := app.Loan.Amount.InexactFloat64() / pv.InexactFloat64()
		if ltv > 0.9 {
			out = append(out, fmt.Sprintf("loan-to-value ratio %.0f%% is high", ltv*100))
		}
	}
	return out
}
