package underwriting

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ValidationResult lists every finding at once so the caller gets a complete
// punch-list in a single round trip.
type ValidationResult struct {
	OK              bool     `json:"ok"`
	MissingFields   []string `json:"missing_fields,omitempty"`
	Inconsistencies []string `json:"inconsistencies,omitempty"`
}

// Description renders the findings as one human-readable summary for the
// additional_info_needed outcome.
func (r *ValidationResult) Description() string {
	var parts []string
	if len(r.MissingFields) > 0 {
		parts = append(parts, "missing required fields: "+strings.Join(r.MissingFields, ", "))
	}
	if len(r.Inconsistencies) > 0 {
		parts = append(parts, "invalid or inconsistent fields: "+strings.Join(r.Inconsistencies, "; "))
	}
	if len(parts) == 0 {
		return "application incomplete"
	}
	return strings.Join(parts, ". ")
}

var (
	ssnPattern   = regexp.MustCompile(`^\d{3}-\d{2}-\d{4}$`)
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phonePattern = regexp.MustCompile(`^\+?1?\d{10,15}$`)
	zipPattern   = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
)

var validPurposes = map[LoanPurpose]bool{
	PurposeHomePurchase:      true,
	PurposeHomeRefinance:     true,
	PurposeAuto:              true,
	PurposePersonal:          true,
	PurposeBusiness:          true,
	PurposeEducation:         true,
	PurposeDebtConsolidation: true,
}

var validEmployment = map[EmploymentStatus]bool{
	EmploymentEmployed:     true,
	EmploymentSelfEmployed: true,
	EmploymentUnemployed:   true,
	EmploymentRetired:      true,
	EmploymentStudent:      true,
}

// Validator checks presence, format and cross-field consistency of an
// application. It never short-circuits: all findings are collected.
type Validator struct {
	now func() time.Time
}

func NewValidator() *Validator {
	return &Validator{now: time.Now}
}

func (v *Validator) Validate(app *Application) *ValidationResult {
	res := &ValidationResult{}
	v.checkApplicant(app, res)
	v.checkEmployment(app, res)
	v.checkFinancial(app, res)
	v.checkCredit(app, res)
	v.checkLoan(app, res)
	res.OK = len(res.MissingFields) == 0 && len(res.Inconsistencies) == 0
	return res
}

func (v *Validator) checkApplicant(app *Application, res *ValidationResult) {
	a := app.Applicant
	requireString(res, "first_name", a.FirstName)
	requireString(res, "last_name", a.LastName)
	requireString(res, "address", a.Address)
	requireString(res, "city", a.City)

	if strings.TrimSpace(a.DateOfBirth) == "" {
		res.missing("date_of_birth")
	} else if dob, err := time.Parse(DateLayout, a.DateOfBirth); err != nil {
		res.bad("date_of_birth must use YYYY-MM-DD")
	} else {
		age := yearsBetween(dob, v.now())
		if age < 18 {
			res.bad("applicant must be at least 18 years old")
		} else if age > 100 {
			res.bad("date_of_birth is not plausible")
		}
	}

	if strings.TrimSpace(a.SSN) == "" {
		res.missing("ssn")
	} else if !ssnPattern.MatchString(a.SSN) {
		res.bad("ssn must use NNN-NN-NNNN format")
	}
	if strings.TrimSpace(a.Email) == "" {
		res.missing("email")
	} else if !emailPattern.MatchString(a.Email) {
		res.bad("email is not a valid address")
	}
	if strings.TrimSpace(a.Phone) == "" {
		res.missing("phone")
	} else if !phonePattern.MatchString(a.Phone) {
		res.bad("phone must be a 10-15 digit number")
	}
	if strings.TrimSpace(a.State) == "" {
		res.missing("state")
	} else if len(a.State) != 2 {
		res.bad("state must be a 2-letter code")
	}
	if strings.TrimSpace(a.ZipCode) == "" {
		res.missing("zip_code")
	} else if !zipPattern.MatchString(a.ZipCode) {
		res.bad("zip_code must use 12345 or 12345-6789 format")
	}
}

func (v *Validator) checkEmployment(app *Application, res *ValidationResult) {
	e := app.Employment
	if e.Status == "" {
		res.missing("employment.status")
	} else if !validEmployment[e.Status] {
		res.bad(fmt.Sprintf("employment.status %q is not recognized", e.Status))
	}
	if e.Status == EmploymentEmployed || e.Status == EmploymentSelfEmployed {
		if strings.TrimSpace(e.EmployerName) == "" {
			res.missing("employment.employer_name")
		}
		if strings.TrimSpace(e.JobTitle) == "" {
			res.missing("employment.job_title")
		}
	}
	if e.YearsEmployed < 0 {
		res.bad("employment.years_employed must be non-negative")
	}
	if e.MonthlyIncome.LessThanOrEqual(decimal.Zero) {
		if e.MonthlyIncome.IsZero() {
			res.missing("employment.monthly_income")
		} else {
			res.bad("employment.monthly_income must be positive")
		}
	}
	if e.AdditionalIncome.IsNegative() {
		res.bad("employment.additional_income must be non-negative")
	}
}

func (v *Validator) checkFinancial(app *Application, res *ValidationResult) {
	f := app.Financial
	for name, amount := range map[string]decimal.Decimal{
		"financial.monthly_debt_payments": f.MonthlyDebtPayments,
		"financial.checking_balance":      f.CheckingBalance,
		"financial.savings_balance":       f.SavingsBalance,
		"financial.investment_balance":    f.InvestmentBalance,
	} {
		if amount.IsNegative() {
			res.bad(name + " must be non-negative")
		}
	}
	checkDerogDate(res, "bankruptcy", f.HasBankruptcy, f.BankruptcyDate)
	checkDerogDate(res, "foreclosure", f.HasForeclosure, f.ForeclosureDate)
}

func checkDerogDate(res *ValidationResult, kind string, flagged bool, date string) {
	date = strings.TrimSpace(date)
	switch {
	case flagged && date == "":
		res.missing("financial." + kind + "_date")
	case !flagged && date != "":
		res.bad(fmt.Sprintf("financial.%s_date set but has_%s is false", kind, kind))
	case date != "":
		if _, err := time.Parse(DateLayout, date); err != nil {
			res.bad(fmt.Sprintf("financial.%s_date must use YYYY-MM-DD", kind))
		}
	}
}

func (v *Validator) checkCredit(app *Application, res *ValidationResult) {
	c := app.Credit
	if c.CreditScore == 0 {
		res.missing("credit_history.credit_score")
	} else if c.CreditScore < 300 || c.CreditScore > 850 {
		res.bad(fmt.Sprintf("credit_history.credit_score %d outside [300,850]", c.CreditScore))
	}
	if c.CreditUtilization < 0 || c.CreditUtilization > 100 {
		res.bad("credit_history.credit_utilization must be within [0,100]")
	}
	if c.TotalCreditLimit.IsNegative() {
		res.bad("credit_history.total_credit_limit must be non-negative")
	}
	for name, n := range map[string]int{
		"credit_history.number_of_credit_cards":      c.NumberOfCreditCards,
		"credit_history.number_of_late_payments_12m": c.LatePayments12M,
		"credit_history.number_of_late_payments_24m": c.LatePayments24M,
		"credit_history.number_of_inquiries_6m":      c.Inquiries6M,
	} {
		if n < 0 {
			res.bad(name + " must be non-negative")
		}
	}
}

func (v *Validator) checkLoan(app *Application, res *ValidationResult) {
	l := app.Loan
	if l.Amount.IsZero() {
		res.missing("loan_details.amount")
	} else if l.Amount.IsNegative() {
		res.bad("loan_details.amount must be positive")
	}
	if l.Purpose == "" {
		res.missing("loan_details.purpose")
	} else if !validPurposes[l.Purpose] {
		res.bad(fmt.Sprintf("loan_details.purpose %q is not recognized", l.Purpose))
	}
	if l.TermMonths == 0 {
		res.missing("loan_details.term_months")
	} else if l.TermMonths < 0 || l.TermMonths > 360 {
		res.bad("loan_details.term_months must be within (0,360]")
	}
	if l.Purpose == PurposeHomePurchase || l.Purpose == PurposeHomeRefinance {
		if l.PropertyValue.LessThanOrEqual(decimal.Zero) {
			res.missing("loan_details.property_value")
		}
	} else if l.PropertyValue.IsNegative() {
		res.bad("loan_details.property_value must be non-negative")
	}
	if l.DownPayment.IsNegative() {
		res.bad("loan_details.down_payment must be non-negative")
	}
}

func (r *ValidationResult) missing(field string) {
	r.MissingFields = append(r.MissingFields, field)
}

func (r *ValidationResult) bad(finding string) {
	r.Inconsistencies = append(r.Inconsistencies, finding)
}

func requireString(res *ValidationResult, field, value string) {
	if strings.TrimSpace(value) == "" {
		res.missing(field)
	}
}

func yearsBetween(from, to time.Time) float64 {
	return to.Sub(from).Hours() / 24 / 365.25
}
