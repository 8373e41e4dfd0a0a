package underwriting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRiskOpinionFencedJSON(t *testing.T) {
	raw := "Here is my assessment:\n```json\n" +
		`{"risk_score": 42, "risk_factors": ["elevated DTI", "thin file"], "policy_notes": "within desk limits"}` +
		"\n```\nLet me know if you need more."

	got, perr := ParseRiskOpinion(raw)
	require.Nil(t, perr)
	assert.Equal(t, 42, got.Score)
	assert.Equal(t, []string{"elevated DTI", "thin file"}, got.Factors)
	assert.Equal(t, "within desk limits", got.PolicyNotes)
}

func TestParseRiskOpinionBareObjectWithProse(t *testing.T) {
	raw := `Sure. {"Risk_Score": "55", "Risk_Factors": ["late payments"], "Policy_Notes": "borderline"} Hope that helps.`

	got, perr := ParseRiskOpinion(raw)
	require.Nil(t, perr)
	assert.Equal(t, 55, got.Score)
}

func TestParseRiskOpinionRejectsMissingScore(t *testing.T) {
	_, perr := ParseRiskOpinion(`{"risk_factors": ["x"], "policy_notes": "y"}`)
	require.NotNil(t, perr)
	assert.Contains(t, perr.Reason, "risk score")
}

func TestParseRiskOpinionRejectsOutOfRangeScore(t *testing.T) {
	_, perr := ParseRiskOpinion(`{"risk_score": 140, "risk_factors": ["x"], "policy_notes": "y"}`)
	require.NotNil(t, perr)

	_, perr = ParseRiskOpinion(`{"risk_score": -5, "risk_factors": ["x"], "policy_notes": "y"}`)
	require.NotNil(t, perr)
}

func TestParseRiskOpinionRejectsEmptySections(t *testing.T) {
	_, perr := ParseRiskOpinion(`{"risk_score": 10, "risk_factors": [], "policy_notes": "y"}`)
	require.NotNil(t, perr)

	_, perr = ParseRiskOpinion(`{"risk_score": 10, "risk_factors": ["x"], "policy_notes": ""}`)
	require.NotNil(t, perr)
}

func TestParseRiskOpinionNoJSONAtAll(t *testing.T) {
	_, perr := ParseRiskOpinion("I cannot assess this application.")
	require.NotNil(t, perr)
	assert.Contains(t, perr.Reason, "no JSON object")
}

func TestParseComplianceVerdict(t *testing.T) {
	got, perr := parseComplianceVerdict(`{"compliant": false, "notes": "amount exceeds program limit", "reason": "loan amount over cap"}`)
	require.Nil(t, perr)
	assert.False(t, got.Compliant)
	assert.Equal(t, "loan amount over cap", got.Reason)
}

func TestParseComplianceVerdictFlagMandatory(t *testing.T) {
	_, perr := parseComplianceVerdict(`{"notes": "looks fine"}`)
	require.NotNil(t, perr)
	assert.Contains(t, perr.Reason, "compliant")
}

func TestParseComplianceVerdictStringBool(t *testing.T) {
	got, perr := parseComplianceVerdict(`{"compliant": "true"}`)
	require.Nil(t, perr)
	assert.True(t, got.Compliant)
}
