package underwriting

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strongApplication() *Application {
	return &Application{
		RequestID: "req-test",
		Applicant: Applicant{
			FirstName:   "Ada",
			LastName:    "Example",
			DateOfBirth: "1990-04-12",
			SSN:         "123-45-6789",
			Email:       "ada@example.com",
			Phone:       "5551234567",
			Address:     "1 Main St",
			City:        "Springfield",
			State:       "IL",
			ZipCode:     "62704",
		},
		Employment: Employment{
			Status:        EmploymentEmployed,
			EmployerName:  "Acme Corp",
			JobTitle:      "Engineer",
			YearsEmployed: 5.5,
			MonthlyIncome: decimal.NewFromInt(8000),
		},
		Financial: Financial{
			MonthlyDebtPayments: decimal.NewFromInt(1200),
			CheckingBalance:     decimal.NewFromInt(15000),
			SavingsBalance:      decimal.NewFromInt(40000),
		},
		Credit: CreditHistory{
			CreditScore:           780,
			NumberOfCreditCards:   3,
			TotalCreditLimit:      decimal.NewFromInt(50000),
			CreditUtilization:     20,
			OldestCreditLineYears: 12,
		},
		Loan: LoanDetails{
			Amount:        decimal.NewFromInt(400000),
			Purpose:       PurposeHomePurchase,
			TermMonths:    360,
			PropertyValue: decimal.NewFromInt(500000),
			DownPayment:   decimal.NewFromInt(100000),
		},
	}
}

func TestDeterministicStrongProfileScoresZero(t *testing.T) {
	assessor := NewRiskAssessor(nil, 0)
	got := assessor.Deterministic(strongApplication())

	assert.Equal(t, 0, got.Score)
	assert.Equal(t, ModeDeterministic, got.Mode)
	assert.Empty(t, got.Factors)
}

func TestDeterministicWeakProfile(t *testing.T) {
	app := strongApplication()
	app.Credit.CreditScore = 520
	app.Employment.MonthlyIncome = decimal.NewFromInt(2000)
	app.Financial.MonthlyDebtPayments = decimal.NewFromInt(1000)
	app.Employment.YearsEmployed = 0.5

	got := NewRiskAssessor(nil, 0).Deterministic(app)

	// 40 subprime credit + 20 high DTI + 15 short tenure.
	assert.Equal(t, 75, got.Score)
	assert.Len(t, got.Factors, 3)
}

func TestDeterministicScoreClampedAt100(t *testing.T) {
	app := strongApplication()
	app.Credit.CreditScore = 450
	app.Employment.MonthlyIncome = decimal.NewFromInt(1000)
	app.Financial.MonthlyDebtPayments = decimal.NewFromInt(900)
	app.Employment.YearsEmployed = 0.2
	app.Credit.LatePayments12M = 5
	app.Financial.HasBankruptcy = true
	app.Financial.BankruptcyDate = time.Now().AddDate(-2, 0, 0).Format(DateLayout)
	app.Financial.HasForeclosure = true
	app.Financial.ForeclosureDate = time.Now().AddDate(-3, 0, 0).Format(DateLayout)

	got := NewRiskAssessor(nil, 0).Deterministic(app)
	assert.Equal(t, 100, got.Score)
}

func TestDeterministicLatePaymentCap(t *testing.T) {
	app := strongApplication()
	app.Credit.LatePayments12M = 4

	got := NewRiskAssessor(nil, 0).Deterministic(app)
	assert.Equal(t, 20, got.Score)
}

func TestDeterministicOldDerogatoriesIgnored(t *testing.T) {
	app := strongApplication()
	app.Financial.HasBankruptcy = true
	app.Financial.BankruptcyDate = time.Now().AddDate(-9, 0, 0).Format(DateLayout)

	got := NewRiskAssessor(nil, 0).Deterministic(app)
	assert.Equal(t, 0, got.Score)
}

func TestSupplementalFactorsDoNotMoveScore(t *testing.T) {
	app := strongApplication()
	app.Credit.CreditUtilization = 85
	app.Credit.Inquiries6M = 6
	app.Loan.Amount = decimal.NewFromInt(480000)

	got := NewRiskAssessor(nil, 0).Deterministic(app)
	require.Equal(t, 0, got.Score)
	assert.NotEmpty(t, got.Factors)
}

func TestDTIZeroIncomeFullyLeveraged(t *testing.T) {
	app := strongApplication()
	app.Employment.MonthlyIncome = decimal.Zero
	assert.Equal(t, 1.0, app.DTI())
}
