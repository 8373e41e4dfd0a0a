package underwriting

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"underwriter/internal/logger"
)

const defaultTopK = 5

// Options wires the workflow's collaborators. Retriever and Reasoner may be
// nil; every stage that needs them degrades per its contract.
type Options struct {
	Retriever       FragmentRetriever
	Reasoner        Reasoner
	Rules           RulesProvider
	TopK            int
	ReasonerTimeout time.Duration
}

// Workflow is the finite pipeline behind decide(): validate, retrieve,
// assess, check compliance, synthesize. It owns the WorkflowState for the
// lifetime of one Decide call and keeps nothing across calls.
type Workflow struct {
	validator   *Validator
	retriever   FragmentRetriever
	assessor    *RiskAssessor
	compliance  *ComplianceChecker
	synthesizer *Synthesizer
	topK        int
}

func NewWorkflow(opts Options) (*Workflow, error) {
	if opts.Rules == nil {
		return nil, fmt.Errorf("workflow requires a rules provider")
	}
	topK := opts.TopK
	if topK <= 0 {
		topK = defaultTopK
	}
	return &Workflow{
		validator:   NewValidator(),
		retriever:   opts.Retriever,
		assessor:    NewRiskAssessor(opts.Reasoner, opts.ReasonerTimeout),
		compliance:  NewComplianceChecker(opts.Reasoner, opts.ReasonerTimeout),
		synthesizer: NewSynthesizer(opts.Rules),
		topK:        topK,
	}, nil
}

// Result carries the decision plus the per-request state for observability.
// The state is discarded by the core after return.
type Result struct {
	Decision Decision
	State    WorkflowState
	Elapsed  time.Duration
}

// Decide always produces a terminal Decision for a non-nil application.
// The returned error is reserved for invariant violations (synthesizer
// bugs), never for dependency failures, which are absorbed into fallbacks.
func (w *Workflow) Decide(ctx context.Context, app *Application, scope AccessScope) (Result, error) {
	started := time.Now()
	if app == nil {
		return Result{}, fmt.Errorf("nil application")
	}
	if app.RequestID == "" {
		cp := *app
		cp.RequestID = uuid.NewString()
		app = &cp
	}

	state := WorkflowState{App: app, Scope: scope}

	state = w.run(state, "validate", func(s *WorkflowState) (string, bool) {
		s.Validation = w.validator.Validate(s.App)
		if !s.Validation.OK {
			return s.Validation.Description(), false
		}
		return "", false
	})

	var decision Decision
	var invariantErr error

	if !state.Validation.OK {
		// Fail closed: incomplete input short-circuits to the punch-list
		// outcome without touching external dependencies.
		state = w.run(state, "synthesize", func(s *WorkflowState) (string, bool) {
			decision = additionalInfoDecision(s.App.RequestID, s.Validation.Description())
			invariantErr = decision.Validate()
			return "", false
		})
	} else {
		state = w.run(state, "retrieve", w.stageRetrieve(ctx))
		state = w.run(state, "assess_risk", func(s *WorkflowState) (string, bool) {
			risk, note := w.assessor.Assess(ctx, s.App, s.Fragments)
			s.Risk = &risk
			return note, note != ""
		})
		state = w.run(state, "check_compliance", func(s *WorkflowState) (string, bool) {
			res, note := w.compliance.Check(ctx, s.App, s.Fragments)
			s.Compliance = &res
			return note, note != ""
		})
		state = w.run(state, "synthesize", func(s *WorkflowState) (string, bool) {
			decision, invariantErr = w.synthesizer.Synthesize(s.App, *s.Risk, *s.Compliance)
			return "", false
		})
	}

	if invariantErr != nil {
		return Result{}, fmt.Errorf("decision invariant violated for request %s: %w", app.RequestID, invariantErr)
	}

	elapsed := time.Since(started)
	logger.Infof("decision request=%s outcome=%s elapsed=%s", app.RequestID, decision.Outcome, elapsed.Round(time.Millisecond))
	return Result{Decision: decision, State: state, Elapsed: elapsed}, nil
}

func (w *Workflow) stageRetrieve(ctx context.Context) func(*WorkflowState) (string, bool) {
	return func(s *WorkflowState) (string, bool) {
		if w.retriever == nil {
			return "retriever not configured", true
		}
		fragments, err := w.retriever.Retrieve(ctx, s.App, s.Scope, w.topK)
		if err != nil {
			// Retrieval is best-effort infrastructure: an outage means an
			// empty context, not a failed decision.
			logger.Warnf("retrieval failed, continuing without fragments: %v", err)
			return "retrieval failed: " + err.Error(), true
		}
		s.Fragments = fragments
		return "", false
	}
}

// run executes one stage against a cloned state and appends its trace entry,
// keeping earlier snapshots intact.
func (w *Workflow) run(state WorkflowState, name string, fn func(*WorkflowState) (string, bool)) WorkflowState {
	next := state.clone()
	started := time.Now()
	note, fallback := fn(&next)
	next.Trace = append(next.Trace, StageTrace{
		Stage:     name,
		StartedAt: started,
		Elapsed:   time.Since(started),
		Note:      note,
		Fallback:  fallback,
	})
	return next
}
