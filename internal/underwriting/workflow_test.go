package underwriting

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"underwriter/internal/policy"
)

type fakeRetriever struct {
	fragments []Fragment
	err       error
	calls     int
}

func (f *fakeRetriever) Retrieve(ctx context.Context, app *Application, scope AccessScope, k int) ([]Fragment, error) {
	f.calls++
	return f.fragments, f.err
}

type fakeReasoner struct {
	reply   string
	err     error
	prompts []string
}

func (f *fakeReasoner) Infer(ctx context.Context, purpose, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func newTestWorkflow(t *testing.T, retriever FragmentRetriever, reasoner Reasoner) *Workflow {
	t.Helper()
	w, err := NewWorkflow(Options{
		Retriever: retriever,
		Reasoner:  reasoner,
		Rules:     staticRules{rules: policy.Defaults()},
	})
	require.NoError(t, err)
	return w
}

func adminScope() AccessScope {
	return AccessScope{CallerID: "tester", Roles: []string{"admin"}}
}

func policyFragments() []Fragment {
	return []Fragment{
		{Content: "Loans above $500,000 require 20% down.", Domain: "underwriting", Rank: 1},
		{Content: "Subprime applicants need manual review.", Domain: "underwriting", Rank: 2},
	}
}

func stageByName(t *testing.T, trace []StageTrace, name string) StageTrace {
	t.Helper()
	for _, s := range trace {
		if s.Stage == name {
			return s
		}
	}
	t.Fatalf("stage %s not in trace", name)
	return StageTrace{}
}

func TestDecideSurvivesAllDependenciesFailing(t *testing.T) {
	retriever := &fakeRetriever{err: fmt.Errorf("index unreachable")}
	reasoner := &fakeReasoner{err: fmt.Errorf("endpoint down")}
	w := newTestWorkflow(t, retriever, reasoner)

	res, err := w.Decide(context.Background(), strongApplication(), adminScope())
	require.NoError(t, err)

	assert.Equal(t, DecisionApproved, res.Decision.Outcome)
	assert.True(t, stageByName(t, res.State.Trace, "retrieve").Fallback)
	// No fragments survived, so assisted mode was never attempted.
	assert.Empty(t, reasoner.prompts)
	require.NotNil(t, res.State.Risk)
	assert.Equal(t, ModeDeterministic, res.State.Risk.Mode)
}

func TestDecideValidationShortCircuits(t *testing.T) {
	retriever := &fakeRetriever{}
	w := newTestWorkflow(t, retriever, &fakeReasoner{})

	app := strongApplication()
	app.Applicant.SSN = ""
	app.Applicant.DateOfBirth = ""

	res, err := w.Decide(context.Background(), app, adminScope())
	require.NoError(t, err)

	assert.Equal(t, DecisionAdditionalInfoNeeded, res.Decision.Outcome)
	assert.Contains(t, res.Decision.AdditionalInfo, "ssn")
	assert.Contains(t, res.Decision.AdditionalInfo, "date_of_birth")
	assert.Zero(t, retriever.calls, "incomplete input must not reach the retriever")
}

func TestDecideAssignsRequestID(t *testing.T) {
	w := newTestWorkflow(t, nil, nil)

	app := strongApplication()
	app.RequestID = ""
	res, err := w.Decide(context.Background(), app, adminScope())
	require.NoError(t, err)
	assert.NotEmpty(t, res.Decision.RequestID)
	assert.Empty(t, app.RequestID, "input application stays untouched")

	app.RequestID = "req-keep"
	res, err = w.Decide(context.Background(), app, adminScope())
	require.NoError(t, err)
	assert.Equal(t, "req-keep", res.Decision.RequestID)
}

func TestDecideAssistedScoreReplacesDeterministic(t *testing.T) {
	reasoner := &fakeReasoner{reply: riskReply(55)}
	w := newTestWorkflow(t, &fakeRetriever{fragments: policyFragments()}, reasoner)

	res, err := w.Decide(context.Background(), strongApplication(), adminScope())
	require.NoError(t, err)

	require.NotNil(t, res.State.Risk)
	assert.Equal(t, ModeAssisted, res.State.Risk.Mode)
	assert.Equal(t, 55, res.State.Risk.Score)
	require.Equal(t, DecisionApproved, res.Decision.Outcome)
	assert.Equal(t, 9.5, res.Decision.Recommended.InterestRate)
}

func TestDecideGarbageReplyFallsBack(t *testing.T) {
	reasoner := &fakeReasoner{reply: "I refuse to answer in the requested format."}
	w := newTestWorkflow(t, &fakeRetriever{fragments: policyFragments()}, reasoner)

	res, err := w.Decide(context.Background(), strongApplication(), adminScope())
	require.NoError(t, err)

	require.NotNil(t, res.State.Risk)
	assert.Equal(t, ModeDeterministic, res.State.Risk.Mode)
	assess := stageByName(t, res.State.Trace, "assess_risk")
	assert.True(t, assess.Fallback)
	assert.NotEmpty(t, assess.Note)
	// Compliance also got garbage and fails open.
	require.NotNil(t, res.State.Compliance)
	assert.True(t, res.State.Compliance.Compliant)
	assert.Equal(t, ComplianceDefault, res.State.Compliance.Mode)
}

func TestDecideNonCompliantVerdictDisapproves(t *testing.T) {
	// One reply satisfies both parsers: compliant=false for the checker,
	// while the risk parser sees no usable score and falls back.
	reasoner := &fakeReasoner{reply: `{"compliant": false, "reason": "amount exceeds program cap", "notes": "flagged"}`}
	w := newTestWorkflow(t, &fakeRetriever{fragments: policyFragments()}, reasoner)

	res, err := w.Decide(context.Background(), strongApplication(), adminScope())
	require.NoError(t, err)

	assert.Equal(t, DecisionDisapproved, res.Decision.Outcome)
	assert.Contains(t, res.Decision.DisapprovalReason, "amount exceeds program cap")
}

func TestDecideNilApplication(t *testing.T) {
	w := newTestWorkflow(t, nil, nil)
	_, err := w.Decide(context.Background(), nil, adminScope())
	assert.Error(t, err)
}

func TestDecideOutcomeAlwaysValid(t *testing.T) {
	w := newTestWorkflow(t, &fakeRetriever{fragments: policyFragments()}, &fakeReasoner{reply: riskReply(88)})

	apps := []*Application{strongApplication()}
	weak := strongApplication()
	weak.Credit.CreditScore = 500
	apps = append(apps, weak)
	incomplete := strongApplication()
	incomplete.Applicant.Email = ""
	apps = append(apps, incomplete)

	for _, app := range apps {
		res, err := w.Decide(context.Background(), app, adminScope())
		require.NoError(t, err)
		assert.NoError(t, res.Decision.Validate())
	}
}

func riskReply(score int) string {
	return fmt.Sprintf(`{"risk_score": %d, "risk_factors": ["model flagged"], "policy_notes": "noted", "compliant": true}`, score)
}
