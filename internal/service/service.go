package service

import (
	"context"

	"underwriter/internal/logger"
	"underwriter/internal/notifier"
	"underwriter/internal/store/decisionlog"
	"underwriter/internal/underwriting"
)

// DecisionService runs the workflow and handles the side concerns around
// it: persistence and alerting. Neither may ever fail a decision.
type DecisionService struct {
	workflow   *underwriting.Workflow
	logs       *decisionlog.Store
	notify     notifier.TextNotifier
	highRisk   int
	reasonerOK func() bool
}

func NewDecisionService(workflow *underwriting.Workflow, logs *decisionlog.Store, notify notifier.TextNotifier, highRisk int) *DecisionService {
	if highRisk <= 0 {
		highRisk = 70
	}
	return &DecisionService{workflow: workflow, logs: logs, notify: notify, highRisk: highRisk}
}

// SetReasonerHealth installs a probe used by health reporting.
func (s *DecisionService) SetReasonerHealth(probe func() bool) {
	s.reasonerOK = probe
}

func (s *DecisionService) Decide(ctx context.Context, app *underwriting.Application, scope underwriting.AccessScope) (underwriting.Decision, error) {
	res, err := s.workflow.Decide(ctx, app, scope)
	if err != nil {
		return underwriting.Decision{}, err
	}
	if s.logs != nil {
		if err := s.logs.Insert(ctx, decisionlog.FromResult(res)); err != nil {
			logger.Errorf("decision log insert failed request=%s: %v", res.Decision.RequestID, err)
		}
	}
	s.maybeNotify(res)
	return res.Decision, nil
}

func (s *DecisionService) Logs() *decisionlog.Store { return s.logs }

// Health reports component readiness for the health endpoint.
func (s *DecisionService) Health() map[string]any {
	out := map[string]any{
		"workflow_ready":       s.workflow != nil,
		"decision_log_enabled": s.logs != nil,
	}
	if s.reasonerOK != nil {
		out["reasoner_admitting"] = s.reasonerOK()
	}
	return out
}

// maybeNotify alerts on disapprovals and on approvals at or above the
// high-risk threshold, off the request path.
func (s *DecisionService) maybeNotify(res underwriting.Result) {
	if s.notify == nil {
		return
	}
	d := res.Decision
	alert := d.Outcome == underwriting.DecisionDisapproved ||
		(d.Outcome == underwriting.DecisionApproved && d.RiskScore != nil && *d.RiskScore >= s.highRisk)
	if !alert {
		return
	}
	msg := notifier.DecisionMessage(res).Render()
	go func() {
		if err := s.notify.SendText(msg); err != nil {
			logger.Warnf("decision alert failed request=%s: %v", d.RequestID, err)
		}
	}()
}
