package retrieval

import (
	"context"
	"fmt"
	"strings"
	"time"

	"underwriter/internal/logger"
	"underwriter/internal/underwriting"
)

// DocumentRetriever turns an application into a search query and returns the
// top fragments the caller's scope may read, most relevant first.
type DocumentRetriever struct {
	searcher Searcher
	timeout  time.Duration
}

func NewDocumentRetriever(searcher Searcher, timeout time.Duration) *DocumentRetriever {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &DocumentRetriever{searcher: searcher, timeout: timeout}
}

// Retrieve is read-only and best-effort: the caller treats any error as an
// empty fragment list.
func (r *DocumentRetriever) Retrieve(ctx context.Context, app *underwriting.Application, scope underwriting.AccessScope, k int) ([]underwriting.Fragment, error) {
	if r.searcher == nil {
		return nil, fmt.Errorf("no searcher configured")
	}
	if k <= 0 {
		k = 5
	}
	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	hits, err := r.searcher.Search(callCtx, BuildQuery(app), k)
	if err != nil {
		return nil, err
	}

	// Fragments outside the caller's data domains are dropped before anything
	// downstream (prompts, notes, traces) can see them.
	fragments := make([]underwriting.Fragment, 0, len(hits))
	for _, hit := range hits {
		if !scope.AllowsDomain(hit.Domain) {
			logger.Debugf("fragment dropped: domain %s outside caller scope", hit.Domain)
			continue
		}
		fragments = append(fragments, underwriting.Fragment{
			Content: hit.Content,
			Domain:  hit.Domain,
			Rank:    len(fragments) + 1,
		})
		if len(fragments) == k {
			break
		}
	}
	return fragments, nil
}

// BuildQuery summarizes the application for semantic search. It names a
// coarse credit tier instead of the raw bureau score.
func BuildQuery(app *underwriting.Application) string {
	var b strings.Builder
	fmt.Fprintf(&b, "lending policy for a %s loan of $%s over %d months",
		strings.ReplaceAll(string(app.Loan.Purpose), "_", " "),
		app.Loan.Amount.StringFixed(0),
		app.Loan.TermMonths)
	fmt.Fprintf(&b, "; applicant monthly income $%s", app.Employment.MonthlyIncome.StringFixed(0))
	fmt.Fprintf(&b, "; %s credit", creditTier(app.Credit.CreditScore))
	if app.Financial.HasBankruptcy || app.Financial.HasForeclosure {
		b.WriteString("; derogatory credit history")
	}
	return b.String()
}

func creditTier(score int) string {
	switch {
	case score >= 800:
		return "exceptional"
	case score >= 740:
		return "very good"
	case score >= 670:
		return "good"
	case score >= 580:
		return "fair"
	default:
		return "poor"
	}
}
