package underwriting

import (
	"context"
	"time"

	"underwriter/internal/logger"
)

const noPolicyContextNotes = "no policy context available"

// ComplianceChecker asks the reasoner for a yes/no policy verdict. With no
// fragments or no usable reply it fails open: the deterministic eligibility
// gate already enforces the hard constraints.
type ComplianceChecker struct {
	reasoner Reasoner
	timeout  time.Duration
}

func NewComplianceChecker(reasoner Reasoner, timeout time.Duration) *ComplianceChecker {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ComplianceChecker{reasoner: reasoner, timeout: timeout}
}

// Check never fails; the note reports why a default verdict was used.
func (c *ComplianceChecker) Check(ctx context.Context, app *Application, fragments []Fragment) (ComplianceResult, string) {
	defaultResult := ComplianceResult{
		Compliant: true,
		Notes:     noPolicyContextNotes,
		Mode:      ComplianceDefault,
	}
	if c.reasoner == nil || len(fragments) == 0 {
		return defaultResult, ""
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	raw, err := c.reasoner.Infer(callCtx, "compliance-check", compliancePrompt(app, fragments))
	if err != nil {
		logger.Warnf("compliance check unavailable, defaulting to compliant: %v", err)
		return defaultResult, "reasoner call failed: " + err.Error()
	}

	verdict, perr := parseComplianceVerdict(raw)
	if perr != nil {
		logger.Warnf("compliance verdict discarded: %v", perr)
		return defaultResult, perr.Reason
	}

	notes := verdict.Notes
	if notes == "" {
		if verdict.Compliant {
			notes = "application complies with stated policies"
		} else {
			notes = "application does not comply with stated policies"
		}
	}
	return ComplianceResult{
		Compliant: verdict.Compliant,
		Notes:     notes,
		Reason:    verdict.Reason,
		Mode:      ComplianceChecked,
	}, ""
}
