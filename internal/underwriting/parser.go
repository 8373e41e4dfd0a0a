package underwriting

import (
	"fmt"
	"math"
	"strings"

	"github.com/tidwall/gjson"

	"underwriter/internal/pkg/convert"
	"underwriter/internal/pkg/jsonutil"
)

// ParseError tags any failure to turn reasoner output into a usable result.
// Callers must branch on it explicitly; it is never allowed to escape the
// workflow as a request failure.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string { return "reasoner output unusable: " + e.Reason }

func parseFailure(format string, v ...any) *ParseError {
	return &ParseError{Reason: fmt.Sprintf(format, v...)}
}

// AssistedOpinion is a cleanly parsed risk opinion from the reasoner.
type AssistedOpinion struct {
	Score       int
	Factors     []string
	PolicyNotes string
}

// ParseRiskOpinion extracts {risk_score, risk_factors, policy_notes} from
// free-form reasoner output. Key casing and wrapping prose are tolerated;
// a missing or out-of-range score is not.
func ParseRiskOpinion(raw string) (AssistedOpinion, *ParseError) {
	fields, perr := parseObject(raw)
	if perr != nil {
		return AssistedOpinion{}, perr
	}

	scoreVal, ok := fields.lookup("risk_score", "score")
	if !ok {
		return AssistedOpinion{}, parseFailure("no risk score field")
	}
	score, numeric := convert.ToFloat64(scoreVal.Value())
	if !numeric {
		return AssistedOpinion{}, parseFailure("risk score %q is not numeric", scoreVal.String())
	}
	if score < 0 || score > 100 {
		return AssistedOpinion{}, parseFailure("risk score %.1f outside [0,100]", score)
	}

	opinion := AssistedOpinion{Score: int(math.Round(score))}
	if factors, ok := fields.lookup("risk_factors", "factors"); ok {
		opinion.Factors = stringList(factors)
	}
	if len(opinion.Factors) == 0 {
		return AssistedOpinion{}, parseFailure("no risk factors section")
	}
	if notes, ok := fields.lookup("policy_notes", "notes"); ok {
		opinion.PolicyNotes = strings.TrimSpace(notes.String())
	}
	if opinion.PolicyNotes == "" {
		return AssistedOpinion{}, parseFailure("no policy notes section")
	}
	return opinion, nil
}

// complianceVerdict is a cleanly parsed compliance reply.
type complianceVerdict struct {
	Compliant bool
	Notes     string
	Reason    string
}

// parseComplianceVerdict extracts {compliant, notes, reason}. Only the
// compliant flag is mandatory.
func parseComplianceVerdict(raw string) (complianceVerdict, *ParseError) {
	fields, perr := parseObject(raw)
	if perr != nil {
		return complianceVerdict{}, perr
	}
	flagVal, ok := fields.lookup("compliant", "is_compliant")
	if !ok {
		return complianceVerdict{}, parseFailure("no compliant field")
	}
	flag, usable := convert.ToBool(flagVal.Value())
	if !usable {
		return complianceVerdict{}, parseFailure("compliant flag %q is not boolean", flagVal.String())
	}
	verdict := complianceVerdict{Compliant: flag}
	if notes, ok := fields.lookup("notes"); ok {
		verdict.Notes = strings.TrimSpace(notes.String())
	}
	if reason, ok := fields.lookup("reason"); ok {
		verdict.Reason = strings.TrimSpace(reason.String())
	}
	return verdict, nil
}

// objectFields maps lower-cased top-level keys to their values.
type objectFields map[string]gjson.Result

func parseObject(raw string) (objectFields, *ParseError) {
	block, ok := jsonutil.ExtractObject(raw)
	if !ok {
		return nil, parseFailure("no JSON object found")
	}
	if !gjson.Valid(block) {
		return nil, parseFailure("extracted block is not valid JSON")
	}
	parsed := gjson.Parse(block)
	if !parsed.IsObject() {
		return nil, parseFailure("root is not a JSON object")
	}
	fields := objectFields{}
	parsed.ForEach(func(key, value gjson.Result) bool {
		fields[strings.ToLower(strings.TrimSpace(key.String()))] = value
		return true
	})
	return fields, nil
}

func (f objectFields) lookup(names ...string) (gjson.Result, bool) {
	for _, name := range names {
		if v, ok := f[name]; ok {
			return v, true
		}
	}
	return gjson.Result{}, false
}

func stringList(v gjson.Result) []string {
	var out []string
	if v.IsArray() {
		v.ForEach(func(_, item gjson.Result) bool {
			if s := strings.TrimSpace(item.String()); s != "" {
				out = append(out, s)
			}
			return true
		})
		return out
	}
	if s := strings.TrimSpace(v.String()); s != "" {
		out = append(out, s)
	}
	return out
}
