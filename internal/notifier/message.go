package notifier

import (
	"fmt"
	"strings"
	"time"

	"underwriter/internal/underwriting"
)

const maxMessageLen = 3800

// Message is a uniform alert layout: header, fenced detail sections, footer.
type Message struct {
	Icon      string
	Title     string
	Sections  []Section
	Footer    string
	Timestamp time.Time
}

type Section struct {
	Title string
	Lines []string
}

// Render produces Markdown, trimmed to the transport's size limit.
func (m Message) Render() string {
	var b strings.Builder
	if header := strings.TrimSpace(m.Icon + " " + m.Title); header != "" {
		b.WriteString(header + "\n\n")
	}
	if block := renderSections(m.Sections); block != "" {
		b.WriteString(block)
	}
	if footer := strings.TrimSpace(m.Footer); footer != "" {
		b.WriteString(footer + "\n")
	}
	if !m.Timestamp.IsZero() {
		b.WriteString("at " + m.Timestamp.Format("2006-01-02 15:04:05 MST"))
	}
	body := strings.TrimSpace(b.String())
	if len(body) > maxMessageLen {
		body = body[:maxMessageLen] + "..."
	}
	return body
}

func renderSections(secs []Section) string {
	var b strings.Builder
	wrote := false
	for _, sec := range secs {
		if len(sec.Lines) == 0 {
			continue
		}
		if !wrote {
			b.WriteString("```\n")
			wrote = true
		}
		if title := strings.TrimSpace(sec.Title); title != "" {
			b.WriteString(title + "\n")
		}
		for _, line := range sec.Lines {
			b.WriteString(line + "\n")
		}
	}
	if !wrote {
		return ""
	}
	b.WriteString("```\n")
	return b.String()
}

// DecisionMessage builds the alert for a finished decision. Only outcome
// facts appear; retrieved policy text never leaves the service.
func DecisionMessage(res underwriting.Result) Message {
	d := res.Decision
	msg := Message{
		Timestamp: time.Now(),
		Footer:    fmt.Sprintf("request %s decided in %s", d.RequestID, res.Elapsed.Round(time.Millisecond)),
	}
	switch d.Outcome {
	case underwriting.DecisionApproved:
		msg.Icon = "✅"
		msg.Title = "Loan approved"
		sec := Section{Title: "Terms"}
		sec.Lines = append(sec.Lines,
			fmt.Sprintf("amount: $%s", d.Recommended.Amount.StringFixed(2)),
			fmt.Sprintf("term: %d months", d.Recommended.TermMonths),
			fmt.Sprintf("rate: %.2f%%", d.Recommended.InterestRate),
			fmt.Sprintf("payment: $%s/mo", d.Recommended.MonthlyPayment.StringFixed(2)),
		)
		if d.RiskScore != nil {
			sec.Lines = append(sec.Lines, fmt.Sprintf("risk score: %d", *d.RiskScore))
		}
		msg.Sections = append(msg.Sections, sec)
	case underwriting.DecisionDisapproved:
		msg.Icon = "⛔"
		msg.Title = "Loan disapproved"
		lines := []string{"reason: " + d.DisapprovalReason}
		if d.RiskScore != nil {
			lines = append(lines, fmt.Sprintf("risk score: %d", *d.RiskScore))
		}
		msg.Sections = append(msg.Sections, Section{Title: "Outcome", Lines: lines})
	case underwriting.DecisionAdditionalInfoNeeded:
		msg.Icon = "📋"
		msg.Title = "Additional information requested"
		msg.Sections = append(msg.Sections, Section{
			Title: "Needed",
			Lines: []string{d.AdditionalInfo},
		})
	}
	return msg
}
