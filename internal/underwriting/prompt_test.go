package underwriting

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarizeOmitsPII(t *testing.T) {
	app := strongApplication()
	got := summarize(app)

	assert.NotContains(t, got, app.Applicant.SSN)
	assert.NotContains(t, got, app.Applicant.LastName)
	assert.NotContains(t, got, app.Applicant.Email)
	assert.Contains(t, got, "Credit Score: 780")
}

func TestRenderFragmentsCapsCountAndLength(t *testing.T) {
	fragments := []Fragment{
		{Content: strings.Repeat("a", 5000), Domain: "underwriting", Rank: 1},
		{Content: "second", Domain: "underwriting", Rank: 2},
		{Content: "third", Domain: "underwriting", Rank: 3},
		{Content: "fourth never shown", Domain: "underwriting", Rank: 4},
	}

	got := renderFragments(fragments)
	assert.NotContains(t, got, "fourth never shown")
	assert.Contains(t, got, "[Policy fragment 3, domain=underwriting]")
	assert.Less(t, len(got), 3*maxFragmentBytes+500)
}

func TestRiskPromptAsksForJSONContract(t *testing.T) {
	got := riskPrompt(strongApplication(), policyFragments())
	assert.Contains(t, got, `"risk_score"`)
	assert.Contains(t, got, `"risk_factors"`)
	assert.Contains(t, got, `"policy_notes"`)
}
