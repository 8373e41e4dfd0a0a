package policy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemplate(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "templates.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewRegistryEmptyPathServesDefaults(t *testing.T) {
	r, err := NewRegistry("")
	require.NoError(t, err)

	rules := r.Current()
	assert.Equal(t, 580, rules.Thresholds.CreditScoreFloor)
	assert.Equal(t, 0.43, rules.Thresholds.DTICeiling)
	assert.Equal(t, int64(1), r.Version())
}

func TestNewRegistryLoadsTemplateFile(t *testing.T) {
	path := writeTemplate(t, `
thresholds:
  credit_score_floor: 620
  dti_ceiling: 0.4
rate_tiers:
  - max_risk_score: 50
    annual_rate: 6.0
  - max_risk_score: 100
    annual_rate: 12.0
amount_caps:
  - max_risk_score: 100
    max_amount: 300000
`)
	r, err := NewRegistry(path)
	require.NoError(t, err)

	rules := r.Current()
	assert.Equal(t, 620, rules.Thresholds.CreditScoreFloor)
	assert.Equal(t, 6.0, rules.RateFor(30))
	assert.Equal(t, 12.0, rules.RateFor(70))
	assert.Equal(t, 300000.0, rules.CapFor(10))
	// Fields absent from the file keep their defaults.
	assert.Equal(t, 6, rules.Thresholds.MinEmploymentMonths)
}

func TestNewRegistryRejectsSchemaViolations(t *testing.T) {
	path := writeTemplate(t, `
thresholds:
  credit_score_floor: 9000
`)
	_, err := NewRegistry(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema validation")
}

func TestNewRegistryRejectsNonMonotoneTiers(t *testing.T) {
	path := writeTemplate(t, `
rate_tiers:
  - max_risk_score: 20
    annual_rate: 9.0
  - max_risk_score: 80
    annual_rate: 5.0
`)
	_, err := NewRegistry(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-decreasing")
}

func TestNewRegistryRejectsUnknownKeys(t *testing.T) {
	path := writeTemplate(t, `
thresolds:
  credit_score_floor: 600
`)
	_, err := NewRegistry(path)
	assert.Error(t, err)
}

func TestNewRegistryMissingFile(t *testing.T) {
	_, err := NewRegistry(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestRateAndCapPastLastBand(t *testing.T) {
	rules := Defaults()
	assert.Equal(t, 13.5, rules.RateFor(250))
	assert.Equal(t, 250000.0, rules.CapFor(250))
}

func TestCurrentReturnsIsolatedCopy(t *testing.T) {
	r, err := NewRegistry("")
	require.NoError(t, err)

	rules := r.Current()
	rules.RateTiers[0].AnnualRate = 99

	assert.Equal(t, 5.5, r.Current().RateTiers[0].AnnualRate)
}
