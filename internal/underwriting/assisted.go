package underwriting

import (
	"context"

	"underwriter/internal/logger"
)

// Assess runs assisted mode when it can and falls back to the deterministic
// result otherwise. The note reports why a fallback happened ("" when
// assisted mode succeeded or was never applicable without an attempt).
// This method never fails; degradation is its only error path.
func (r *RiskAssessor) Assess(ctx context.Context, app *Application, fragments []Fragment) (RiskAssessment, string) {
	det := r.Deterministic(app)
	if r.reasoner == nil || len(fragments) == 0 {
		return det, ""
	}

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	raw, err := r.reasoner.Infer(callCtx, "risk-assessment", riskPrompt(app, fragments))
	if err != nil {
		logger.Warnf("assisted risk assessment unavailable, using deterministic score: %v", err)
		return det, "reasoner call failed: " + err.Error()
	}

	opinion, perr := ParseRiskOpinion(raw)
	if perr != nil {
		logger.Warnf("assisted risk opinion discarded: %v", perr)
		return det, perr.Reason
	}

	// The assisted score replaces the deterministic one outright; there is
	// no blending, so the recorded mode fully determines reproducibility.
	return RiskAssessment{
		Score:       opinion.Score,
		Factors:     opinion.Factors,
		PolicyNotes: opinion.PolicyNotes,
		Mode:        ModeAssisted,
	}, ""
}
