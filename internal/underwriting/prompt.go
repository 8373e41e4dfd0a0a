package underwriting

import (
	"fmt"
	"strings"

	"underwriter/internal/pkg/text"
)

const (
	maxPromptFragments = 3
	maxFragmentBytes   = 2000
)

// summarize renders the application facts the reasoner is allowed to see.
// No PII beyond what the decision needs: no names, SSN or contact details.
func summarize(app *Application) string {
	var b strings.Builder
	b.WriteString("Loan Application Summary:\n")
	fmt.Fprintf(&b, "- Amount: $%s\n", app.Loan.Amount.StringFixed(2))
	fmt.Fprintf(&b, "- Purpose: %s\n", app.Loan.Purpose)
	fmt.Fprintf(&b, "- Term: %d months\n", app.Loan.TermMonths)
	fmt.Fprintf(&b, "- Credit Score: %d\n", app.Credit.CreditScore)
	fmt.Fprintf(&b, "- Debt-to-Income Ratio: %.1f%%\n", app.DTI()*100)
	fmt.Fprintf(&b, "- Employment Status: %s\n", app.Employment.Status)
	fmt.Fprintf(&b, "- Years Employed: %.1f\n", app.Employment.YearsEmployed)
	fmt.Fprintf(&b, "- Monthly Income: $%s\n", app.Employment.MonthlyIncome.StringFixed(2))
	fmt.Fprintf(&b, "- Has Bankruptcy: %t\n", app.Financial.HasBankruptcy)
	fmt.Fprintf(&b, "- Has Foreclosure: %t\n", app.Financial.HasForeclosure)
	return b.String()
}

// renderFragments lays out the highest-ranked fragments verbatim, capped to
// keep the prompt inside token limits.
func renderFragments(fragments []Fragment) string {
	n := len(fragments)
	if n > maxPromptFragments {
		n = maxPromptFragments
	}
	var b strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "[Policy fragment %d, domain=%s]\n", i+1, fragments[i].Domain)
		b.WriteString(text.Truncate(strings.TrimSpace(fragments[i].Content), maxFragmentBytes))
		b.WriteString("\n\n")
	}
	return strings.TrimSpace(b.String())
}

func riskPrompt(app *Application, fragments []Fragment) string {
	var b strings.Builder
	b.WriteString("You are a loan risk analyst. Using the internal policy fragments below, ")
	b.WriteString("assess the risk of this application.\n\n")
	b.WriteString("POLICY FRAGMENTS:\n")
	b.WriteString(renderFragments(fragments))
	b.WriteString("\n\nAPPLICATION:\n")
	b.WriteString(summarize(app))
	b.WriteString("\nRespond with JSON only:\n")
	b.WriteString(`{"risk_score": <integer 0-100, higher is riskier>, "risk_factors": ["..."], "policy_notes": "..."}`)
	return b.String()
}

func compliancePrompt(app *Application, fragments []Fragment) string {
	var b strings.Builder
	b.WriteString("You are a loan policy compliance expert. Review the application against ")
	b.WriteString("the policy fragments and determine whether it complies with all stated policies.\n\n")
	b.WriteString("POLICY FRAGMENTS:\n")
	b.WriteString(renderFragments(fragments))
	b.WriteString("\n\nAPPLICATION:\n")
	b.WriteString(summarize(app))
	b.WriteString("\nRespond with JSON only:\n")
	b.WriteString(`{"compliant": true/false, "notes": "brief explanation", "reason": "specific reason if not compliant, empty otherwise"}`)
	b.WriteString("\nBe strict in your evaluation and ensure all policy requirements are met.")
	return b.String()
}
