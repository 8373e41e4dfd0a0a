package underwriting

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCompleteApplication(t *testing.T) {
	res := NewValidator().Validate(strongApplication())

	assert.True(t, res.OK)
	assert.Empty(t, res.MissingFields)
	assert.Empty(t, res.Inconsistencies)
}

func TestValidateCollectsAllFindings(t *testing.T) {
	app := strongApplication()
	app.Applicant.DateOfBirth = ""
	app.Applicant.SSN = ""
	app.Loan.Amount = decimal.Zero

	res := NewValidator().Validate(app)

	require.False(t, res.OK)
	assert.Contains(t, res.MissingFields, "date_of_birth")
	assert.Contains(t, res.MissingFields, "ssn")
	assert.Contains(t, res.MissingFields, "loan_details.amount")
}

func TestValidateFormatFindings(t *testing.T) {
	app := strongApplication()
	app.Applicant.SSN = "123456789"
	app.Applicant.Email = "not-an-email"
	app.Applicant.ZipCode = "1234"

	res := NewValidator().Validate(app)

	require.False(t, res.OK)
	assert.Len(t, res.Inconsistencies, 3)
	assert.Empty(t, res.MissingFields)
}

func TestValidateUnderageApplicant(t *testing.T) {
	app := strongApplication()
	app.Applicant.DateOfBirth = "2012-01-01"

	res := NewValidator().Validate(app)
	require.False(t, res.OK)
	assert.Contains(t, res.Inconsistencies, "applicant must be at least 18 years old")
}

func TestValidateDerogDateCrossChecks(t *testing.T) {
	app := strongApplication()
	app.Financial.HasBankruptcy = true // flag without date

	res := NewValidator().Validate(app)
	require.False(t, res.OK)
	assert.Contains(t, res.MissingFields, "financial.bankruptcy_date")

	app = strongApplication()
	app.Financial.ForeclosureDate = "2020-05-01" // date without flag

	res = NewValidator().Validate(app)
	require.False(t, res.OK)
	assert.Contains(t, res.Inconsistencies, "financial.foreclosure_date set but has_foreclosure is false")
}

func TestValidateEmployerRequiredOnlyWhenEmployed(t *testing.T) {
	app := strongApplication()
	app.Employment.Status = EmploymentRetired
	app.Employment.EmployerName = ""
	app.Employment.JobTitle = ""

	assert.True(t, NewValidator().Validate(app).OK)

	app.Employment.Status = EmploymentSelfEmployed
	res := NewValidator().Validate(app)
	require.False(t, res.OK)
	assert.Contains(t, res.MissingFields, "employment.employer_name")
	assert.Contains(t, res.MissingFields, "employment.job_title")
}

func TestValidatePropertyValueForHomeLoans(t *testing.T) {
	app := strongApplication()
	app.Loan.PropertyValue = decimal.Zero

	res := NewValidator().Validate(app)
	require.False(t, res.OK)
	assert.Contains(t, res.MissingFields, "loan_details.property_value")

	app.Loan.Purpose = PurposePersonal
	app.Loan.TermMonths = 60
	assert.True(t, NewValidator().Validate(app).OK)
}

func TestValidationDescriptionListsFindings(t *testing.T) {
	res := &ValidationResult{
		MissingFields:   []string{"ssn", "email"},
		Inconsistencies: []string{"state must be a 2-letter code"},
	}
	desc := res.Description()
	assert.Contains(t, desc, "missing required fields: ssn, email")
	assert.Contains(t, desc, "state must be a 2-letter code")
}
