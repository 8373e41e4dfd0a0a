package underwriting

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type DecisionType string

const (
	DecisionApproved             DecisionType = "approved"
	DecisionDisapproved          DecisionType = "disapproved"
	DecisionAdditionalInfoNeeded DecisionType = "additional_info_needed"
)

// Terms are populated all-or-nothing on approval.
type Terms struct {
	Amount         decimal.Decimal `json:"amount"`
	TermMonths     int             `json:"term_months"`
	InterestRate   float64         `json:"interest_rate"`
	MonthlyPayment decimal.Decimal `json:"monthly_payment"`
}

// Decision is the single outcome of a decide() call. Exactly one outcome
// field set is populated; Validate enforces this as a hard invariant.
type Decision struct {
	RequestID         string       `json:"request_id"`
	Outcome           DecisionType `json:"decision"`
	RiskScore         *int         `json:"risk_score,omitempty"`
	DisapprovalReason string       `json:"disapproval_reason,omitempty"`
	AdditionalInfo    string       `json:"additional_info_description,omitempty"`
	Recommended       *Terms       `json:"recommended_terms,omitempty"`
}

func approvedDecision(requestID string, score int, terms Terms) Decision {
	s := score
	return Decision{
		RequestID:   requestID,
		Outcome:     DecisionApproved,
		RiskScore:   &s,
		Recommended: &terms,
	}
}

func disapprovedDecision(requestID string, score *int, reason string) Decision {
	return Decision{
		RequestID:         requestID,
		Outcome:           DecisionDisapproved,
		RiskScore:         score,
		DisapprovalReason: reason,
	}
}

func additionalInfoDecision(requestID, description string) Decision {
	return Decision{
		RequestID:      requestID,
		Outcome:        DecisionAdditionalInfoNeeded,
		AdditionalInfo: description,
	}
}

// Validate checks the exactly-one-outcome invariant. A failure here is a
// synthesizer bug, never recoverable input trouble.
func (d *Decision) Validate() error {
	switch d.Outcome {
	case DecisionApproved:
		if d.Recommended == nil || d.RiskScore == nil {
			return fmt.Errorf("approved decision missing terms or risk score")
		}
		if d.DisapprovalReason != "" || d.AdditionalInfo != "" {
			return fmt.Errorf("approved decision carries foreign outcome fields")
		}
	case DecisionDisapproved:
		if d.DisapprovalReason == "" {
			return fmt.Errorf("disapproved decision missing reason")
		}
		if d.Recommended != nil || d.AdditionalInfo != "" {
			return fmt.Errorf("disapproved decision carries foreign outcome fields")
		}
	case DecisionAdditionalInfoNeeded:
		if d.AdditionalInfo == "" {
			return fmt.Errorf("additional_info decision missing description")
		}
		if d.Recommended != nil || d.DisapprovalReason != "" || d.RiskScore != nil {
			return fmt.Errorf("additional_info decision carries foreign outcome fields")
		}
	default:
		return fmt.Errorf("unknown decision outcome %q", d.Outcome)
	}
	return nil
}
