package decisionlog

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"underwriter/internal/underwriting"
)

// Record is one persisted decision with its audit trail.
type Record struct {
	ID             int64          `gorm:"column:id;primaryKey"`
	RequestID      string         `gorm:"column:request_id;index"`
	Outcome        string         `gorm:"column:outcome;index"`
	RiskScore      *int           `gorm:"column:risk_score"`
	RiskMode       string         `gorm:"column:risk_mode"`
	Compliant      *bool          `gorm:"column:compliant"`
	ComplianceMode string         `gorm:"column:compliance_mode"`
	Reason         string         `gorm:"column:reason"`
	Amount         string         `gorm:"column:amount"`
	TermMonths     int            `gorm:"column:term_months"`
	InterestRate   float64        `gorm:"column:interest_rate"`
	MonthlyPayment string         `gorm:"column:monthly_payment"`
	FragmentCount  int            `gorm:"column:fragment_count"`
	Factors        datatypes.JSON `gorm:"column:factors"`
	Trace          datatypes.JSON `gorm:"column:trace"`
	ElapsedMS      int64          `gorm:"column:elapsed_ms"`
	CreatedAtUnix  int64          `gorm:"column:created_at"`
}

func (Record) TableName() string { return "decisions" }

// FromResult flattens a workflow result into a Record. Fragment content is
// deliberately not persisted; only its count reaches the log.
func FromResult(res underwriting.Result) Record {
	d := res.Decision
	rec := Record{
		RequestID:     d.RequestID,
		Outcome:       string(d.Outcome),
		RiskScore:     d.RiskScore,
		FragmentCount: len(res.State.Fragments),
		ElapsedMS:     res.Elapsed.Milliseconds(),
		CreatedAtUnix: time.Now().Unix(),
	}
	switch d.Outcome {
	case underwriting.DecisionDisapproved:
		rec.Reason = d.DisapprovalReason
	case underwriting.DecisionAdditionalInfoNeeded:
		rec.Reason = d.AdditionalInfo
	}
	if d.Recommended != nil {
		rec.Amount = d.Recommended.Amount.StringFixed(2)
		rec.TermMonths = d.Recommended.TermMonths
		rec.InterestRate = d.Recommended.InterestRate
		rec.MonthlyPayment = d.Recommended.MonthlyPayment.StringFixed(2)
	}
	if risk := res.State.Risk; risk != nil {
		rec.RiskMode = string(risk.Mode)
		if raw, err := json.Marshal(risk.Factors); err == nil {
			rec.Factors = datatypes.JSON(raw)
		}
	}
	if comp := res.State.Compliance; comp != nil {
		c := comp.Compliant
		rec.Compliant = &c
		rec.ComplianceMode = string(comp.Mode)
	}
	if raw, err := json.Marshal(res.State.Trace); err == nil {
		rec.Trace = datatypes.JSON(raw)
	}
	return rec
}
