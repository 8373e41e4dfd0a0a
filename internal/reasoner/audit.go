package reasoner

import (
	"context"
	"time"

	"underwriter/internal/logger"
	"underwriter/internal/store/audit"
	"underwriter/internal/underwriting"
)

// Audited records every exchange with the inner reasoner. Recording is
// best-effort; an audit write failure never fails the inference call.
type Audited struct {
	inner underwriting.Reasoner
	store *audit.Store
	model string
}

func NewAudited(inner underwriting.Reasoner, store *audit.Store, model string) *Audited {
	return &Audited{inner: inner, store: store, model: model}
}

func (a *Audited) Infer(ctx context.Context, purpose, prompt string) (string, error) {
	started := time.Now()
	out, err := a.inner.Infer(ctx, purpose, prompt)

	ex := audit.Exchange{
		Purpose:   purpose,
		Model:     a.model,
		Prompt:    prompt,
		Reply:     out,
		ElapsedMS: time.Since(started).Milliseconds(),
	}
	if err != nil {
		ex.Error = err.Error()
	}
	// Use a detached context: the exchange is worth keeping even when the
	// request that produced it was cancelled.
	writeCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if werr := a.store.Insert(writeCtx, ex); werr != nil {
		logger.Warnf("audit log write failed: %v", werr)
	}
	return out, err
}
