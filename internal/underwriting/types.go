// Package underwriting implements the loan decision workflow: validation,
// policy retrieval, risk assessment, compliance checking and final synthesis.
package underwriting

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type EmploymentStatus string

const (
	EmploymentEmployed     EmploymentStatus = "employed"
	EmploymentSelfEmployed EmploymentStatus = "self_employed"
	EmploymentUnemployed   EmploymentStatus = "unemployed"
	EmploymentRetired      EmploymentStatus = "retired"
	EmploymentStudent      EmploymentStatus = "student"
)

type LoanPurpose string

const (
	PurposeHomePurchase      LoanPurpose = "home_purchase"
	PurposeHomeRefinance     LoanPurpose = "home_refinance"
	PurposeAuto              LoanPurpose = "auto"
	PurposePersonal          LoanPurpose = "personal"
	PurposeBusiness          LoanPurpose = "business"
	PurposeEducation         LoanPurpose = "education"
	PurposeDebtConsolidation LoanPurpose = "debt_consolidation"
)

// DateLayout is the wire format for all date fields.
const DateLayout = "2006-01-02"

// Applicant carries personal details. Date fields stay as strings so that a
// malformed date surfaces as a validation finding, not a decode error.
type Applicant struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	DateOfBirth string `json:"date_of_birth"`
	SSN         string `json:"ssn"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	City        string `json:"city"`
	State       string `json:"state"`
	ZipCode     string `json:"zip_code"`
}

type Employment struct {
	Status           EmploymentStatus `json:"status"`
	EmployerName     string           `json:"employer_name"`
	JobTitle         string           `json:"job_title"`
	YearsEmployed    float64          `json:"years_employed"`
	MonthlyIncome    decimal.Decimal  `json:"monthly_income"`
	AdditionalIncome decimal.Decimal  `json:"additional_income"`
}

type Financial struct {
	MonthlyDebtPayments decimal.Decimal `json:"monthly_debt_payments"`
	CheckingBalance     decimal.Decimal `json:"checking_balance"`
	SavingsBalance      decimal.Decimal `json:"savings_balance"`
	InvestmentBalance   decimal.Decimal `json:"investment_balance"`
	HasBankruptcy       bool            `json:"has_bankruptcy"`
	BankruptcyDate      string          `json:"bankruptcy_date"`
	HasForeclosure      bool            `json:"has_foreclosure"`
	ForeclosureDate     string          `json:"foreclosure_date"`
}

type CreditHistory struct {
	CreditScore           int             `json:"credit_score"`
	NumberOfCreditCards   int             `json:"number_of_credit_cards"`
	TotalCreditLimit      decimal.Decimal `json:"total_credit_limit"`
	CreditUtilization     float64         `json:"credit_utilization"`
	LatePayments12M       int             `json:"number_of_late_payments_12m"`
	LatePayments24M       int             `json:"number_of_late_payments_24m"`
	Inquiries6M           int             `json:"number_of_inquiries_6m"`
	OldestCreditLineYears float64         `json:"oldest_credit_line_years"`
}

type LoanDetails struct {
	Amount        decimal.Decimal `json:"amount"`
	Purpose       LoanPurpose     `json:"purpose"`
	TermMonths    int             `json:"term_months"`
	PropertyValue decimal.Decimal `json:"property_value"`
	DownPayment   decimal.Decimal `json:"down_payment"`
}

// Application is immutable once handed to the workflow.
type Application struct {
	RequestID  string        `json:"request_id"`
	Applicant  Applicant     `json:"applicant"`
	Employment Employment    `json:"employment"`
	Financial  Financial     `json:"financial"`
	Credit     CreditHistory `json:"credit_history"`
	Loan       LoanDetails   `json:"loan_details"`
}

// DTI is monthly debt over monthly income; income at or below zero counts
// as fully leveraged.
func (a *Application) DTI() float64 {
	income := a.Employment.MonthlyIncome.InexactFloat64()
	if income <= 0 {
		return 1.0
	}
	return a.Financial.MonthlyDebtPayments.InexactFloat64() / income
}

// AccessScope is the caller's resolved data-access scope. It only gates which
// retrieved fragments may be read, never which applications may be processed.
type AccessScope struct {
	CallerID       string   `json:"caller_id"`
	Roles          []string `json:"roles"`
	AllowedDomains []string `json:"allowed_domains"`
}

func (s AccessScope) AllowsDomain(domain string) bool {
	for _, r := range s.Roles {
		if strings.EqualFold(r, "admin") {
			return true
		}
	}
	for _, d := range s.AllowedDomains {
		if strings.EqualFold(d, domain) {
			return true
		}
	}
	return false
}

// Fragment is one unit of retrieved policy text, scoped to a single request.
type Fragment struct {
	Content string `json:"content"`
	Domain  string `json:"domain"`
	Rank    int    `json:"rank"`
}

// FragmentRetriever is the workflow's view of the retrieval layer.
type FragmentRetriever interface {
	Retrieve(ctx context.Context, app *Application, scope AccessScope, k int) ([]Fragment, error)
}

// Reasoner is the workflow's view of the inference layer.
type Reasoner interface {
	Infer(ctx context.Context, purpose, prompt string) (string, error)
}

type AssessmentMode string

const (
	ModeDeterministic AssessmentMode = "deterministic"
	ModeAssisted      AssessmentMode = "assisted"
)

type RiskAssessment struct {
	Score       int            `json:"score"`
	Factors     []string       `json:"factors"`
	PolicyNotes string         `json:"policy_notes,omitempty"`
	Mode        AssessmentMode `json:"mode"`
}

type ComplianceMode string

const (
	ComplianceChecked ComplianceMode = "checked"
	ComplianceDefault ComplianceMode = "default"
)

type ComplianceResult struct {
	Compliant bool           `json:"compliant"`
	Notes     string         `json:"notes"`
	Reason    string         `json:"reason,omitempty"`
	Mode      ComplianceMode `json:"mode"`
}

// StageTrace records one stage of a decide() call for observability.
type StageTrace struct {
	Stage     string        `json:"stage"`
	StartedAt time.Time     `json:"started_at"`
	Elapsed   time.Duration `json:"elapsed"`
	Note      string        `json:"note,omitempty"`
	Fallback  bool          `json:"fallback,omitempty"`
}

// WorkflowState accumulates stage outputs. Stages never mutate what a prior
// stage wrote; they extend a copy (see Workflow.Decide).
type WorkflowState struct {
	App        *Application
	Scope      AccessScope
	Validation *ValidationResult
	Fragments  []Fragment
	Risk       *RiskAssessment
	Compliance *ComplianceResult
	Trace      []StageTrace
}

// clone copies the state header so a stage can append without touching the
// version earlier stages saw.
func (s WorkflowState) clone() WorkflowState {
	out := s
	out.Trace = append([]StageTrace(nil), s.Trace...)
	return out
}
