package underwriting

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"underwriter/internal/policy"
)

// RulesProvider yields the active lending rulebook. Satisfied by
// *policy.Registry; tests plug in static rulesets.
type RulesProvider interface {
	Current() policy.Ruleset
}

// Synthesizer folds risk, compliance and the eligibility gate into the final
// decision and prices approved loans.
type Synthesizer struct {
	rules RulesProvider
	now   func() time.Time
}

func NewSynthesizer(rules RulesProvider) *Synthesizer {
	return &Synthesizer{rules: rules, now: time.Now}
}

// Synthesize returns an error only when the produced decision violates the
// exactly-one-outcome invariant, which indicates a bug, not bad input.
func (s *Synthesizer) Synthesize(app *Application, risk RiskAssessment, compliance ComplianceResult) (Decision, error) {
	rules := s.rules.Current()
	score := risk.Score

	// Hard eligibility gate, fixed priority order so the reported reason is
	// deterministic: derogatory recency, credit score, DTI, tenure.
	if reason := s.gateReason(app, rules.Thresholds); reason != "" {
		d := disapprovedDecision(app.RequestID, &score, reason)
		return d, d.Validate()
	}

	if !compliance.Compliant {
		reason := compliance.Reason
		if reason == "" {
			reason = "policy compliance check failed"
		}
		if compliance.Notes != "" && compliance.Notes != reason {
			reason += ". Details: " + compliance.Notes
		}
		d := disapprovedDecision(app.RequestID, &score, reason)
		return d, d.Validate()
	}

	terms := s.price(app, score, rules)
	d := approvedDecision(app.RequestID, score, terms)
	return d, d.Validate()
}

func (s *Synthesizer) gateReason(app *Application, t policy.Thresholds) string {
	if app.Financial.HasBankruptcy && withinYears(app.Financial.BankruptcyDate, t.DerogRecencyYears, s.now()) {
		return fmt.Sprintf("bankruptcy within the last %.0f years", t.DerogRecencyYears)
	}
	if app.Financial.HasForeclosure && withinYears(app.Financial.ForeclosureDate, t.DerogRecencyYears, s.now()) {
		return fmt.Sprintf("foreclosure within the last %.0f years", t.DerogRecencyYears)
	}
	if app.Credit.CreditScore < t.CreditScoreFloor {
		return fmt.Sprintf("credit score %d is below minimum requirement of %d",
			app.Credit.CreditScore, t.CreditScoreFloor)
	}
	if dti := app.DTI(); dti > t.DTICeiling {
		return fmt.Sprintf("debt-to-income ratio %.1f%% exceeds maximum allowed %.1f%%",
			dti*100, t.DTICeiling*100)
	}
	if months := app.Employment.YearsEmployed * 12; months < float64(t.MinEmploymentMonths) {
		return fmt.Sprintf("employment tenure below the minimum of %d months", t.MinEmploymentMonths)
	}
	return ""
}

func (s *Synthesizer) price(app *Application, score int, rules policy.Ruleset) Terms {
	rate := round2(rules.RateFor(score))
	amount := app.Loan.Amount
	if cap := decimal.NewFromFloat(rules.CapFor(score)); amount.GreaterThan(cap) {
		amount = cap
	}
	amount = amount.Round(2)
	return Terms{
		Amount:         amount,
		TermMonths:     app.Loan.TermMonths,
		InterestRate:   rate,
		MonthlyPayment: monthlyPayment(amount, rate, app.Loan.TermMonths),
	}
}

// monthlyPayment applies the standard amortization formula, rounded to
// cents. A zero rate degenerates to straight division.
func monthlyPayment(amount decimal.Decimal, annualRate float64, termMonths int) decimal.Decimal {
	if termMonths <= 0 {
		return decimal.Zero
	}
	principal := amount.InexactFloat64()
	monthlyRate := annualRate / 100 / 12
	if monthlyRate == 0 {
		return amount.Div(decimal.NewFromInt(int64(termMonths))).Round(2)
	}
	growth := math.Pow(1+monthlyRate, float64(termMonths))
	payment := principal * monthlyRate * growth / (growth - 1)
	return decimal.NewFromFloat(payment).Round(2)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// withinYears reports whether date falls inside the given lookback window.
// An unparseable date on a flagged derogatory counts as recent.
func withinYears(date string, years float64, now time.Time) bool {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return true
	}
	return yearsBetween(t, now) < years
}
