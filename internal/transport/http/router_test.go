package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"underwriter/internal/policy"
	"underwriter/internal/service"
	"underwriter/internal/underwriting"
)

func testEngine(t *testing.T) *gin.Engine {
	t.Helper()
	rules, err := policy.NewRegistry("")
	require.NoError(t, err)
	workflow, err := underwriting.NewWorkflow(underwriting.Options{Rules: rules})
	require.NoError(t, err)
	svc := service.NewDecisionService(workflow, nil, nil, 0)

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	NewRouter(svc).Register(engine.Group("/api/underwriting"))
	return engine
}

func completeApplication() underwriting.Application {
	return underwriting.Application{
		RequestID: "req-http",
		Applicant: underwriting.Applicant{
			FirstName: "Ada", LastName: "Example", DateOfBirth: "1990-04-12",
			SSN: "123-45-6789", Email: "ada@example.com", Phone: "5551234567",
			Address: "1 Main St", City: "Springfield", State: "IL", ZipCode: "62704",
		},
		Employment: underwriting.Employment{
			Status: underwriting.EmploymentEmployed, EmployerName: "Acme Corp",
			JobTitle: "Engineer", YearsEmployed: 5.5, MonthlyIncome: decimal.NewFromInt(8000),
		},
		Financial: underwriting.Financial{MonthlyDebtPayments: decimal.NewFromInt(1200)},
		Credit:    underwriting.CreditHistory{CreditScore: 780, CreditUtilization: 20},
		Loan: underwriting.LoanDetails{
			Amount: decimal.NewFromInt(400000), Purpose: underwriting.PurposeHomePurchase,
			TermMonths: 360, PropertyValue: decimal.NewFromInt(500000),
		},
	}
}

func postDecide(t *testing.T, engine *gin.Engine, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/underwriting/decide", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestDecideEndpointApproves(t *testing.T) {
	engine := testEngine(t)

	rec := postDecide(t, engine, map[string]any{
		"application": completeApplication(),
		"scope":       underwriting.AccessScope{CallerID: "svc", AllowedDomains: []string{"underwriting"}},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var decision underwriting.Decision
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decision))
	assert.Equal(t, underwriting.DecisionApproved, decision.Outcome)
	assert.Equal(t, "req-http", decision.RequestID)
	require.NotNil(t, decision.Recommended)
}

func TestDecideEndpointIncompleteApplication(t *testing.T) {
	engine := testEngine(t)

	app := completeApplication()
	app.Applicant.SSN = ""
	rec := postDecide(t, engine, map[string]any{"application": app})

	// Incomplete input is a decision, not an HTTP failure.
	require.Equal(t, http.StatusOK, rec.Code)
	var decision underwriting.Decision
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decision))
	assert.Equal(t, underwriting.DecisionAdditionalInfoNeeded, decision.Outcome)
	assert.Contains(t, decision.AdditionalInfo, "ssn")
}

func TestDecideEndpointMalformedBody(t *testing.T) {
	engine := testEngine(t)

	req := httptest.NewRequest(http.MethodPost, "/api/underwriting/decide", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDecisionsEndpointWithoutStore(t *testing.T) {
	engine := testEngine(t)

	req := httptest.NewRequest(http.MethodGet, "/api/underwriting/decisions", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
