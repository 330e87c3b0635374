package querylang

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/roach88/hubstream/internal/queryir"
)

// clausePattern matches key:value and -key:value tokens.
var clausePattern = regexp.MustCompile(`(?s)^(-?)([\w-]+):(.*)$`)

// keyKind selects how a recognized key is recorded.
type keyKind int

const (
	kindList keyKind = iota // append to a list field
	kindIs                  // is:<flag>, type:<flag>
	kindNo                  // no:<flag>
	kindHave                // have:<flag>
	kindDraft               // draft:true / draft:false
	kindSort                // sort:<spec>
)

type keyRule struct {
	kind  keyKind
	field queryir.Field
	fold  bool // lower-case the value for case-insensitive matching
}

// keyRules is the fixed key mapping. Keys are matched case-sensitively.
var keyRules = map[string]keyRule{
	"number":           {kind: kindList, field: queryir.FieldNumber},
	"is":               {kind: kindIs},
	"type":             {kind: kindIs},
	"no":               {kind: kindNo},
	"have":             {kind: kindHave},
	"draft":            {kind: kindDraft},
	"sort":             {kind: kindSort},
	"author":           {kind: kindList, field: queryir.FieldAuthor, fold: true},
	"assignee":         {kind: kindList, field: queryir.FieldAssignee, fold: true},
	"involves":         {kind: kindList, field: queryir.FieldInvolves, fold: true},
	"mentions":         {kind: kindList, field: queryir.FieldMentions, fold: true},
	"team":             {kind: kindList, field: queryir.FieldTeam, fold: true},
	"review-requested": {kind: kindList, field: queryir.FieldReviewRequested, fold: true},
	"reviewed-by":      {kind: kindList, field: queryir.FieldReviewedBy, fold: true},
	"project-name":     {kind: kindList, field: queryir.FieldProjectName},
	"project-column":   {kind: kindList, field: queryir.FieldProjectColumn},
	"project-field":    {kind: kindList, field: queryir.FieldProjectField},
	"user":             {kind: kindList, field: queryir.FieldUser, fold: true},
	"org":              {kind: kindList, field: queryir.FieldUser, fold: true},
	"repo":             {kind: kindList, field: queryir.FieldRepo, fold: true},
	"label":            {kind: kindList, field: queryir.FieldLabel, fold: true},
	"milestone":        {kind: kindList, field: queryir.FieldMilestone, fold: true},
}

// ParseQuery tokenizes and classifies a query in one step.
func ParseQuery(query string) *queryir.Query {
	return Parse(Tokenize(query))
}

// Parse classifies tokens into affirmed and negated predicate sets.
//
// Quirks kept for compatibility with existing saved queries:
//   - a bare token with a leading "-" is an affirmed keyword, dash included
//   - an unmapped -key:value lands in the affirmed dynamic values
//   - -sort:spec sets the affirmed sort
//   - an unmapped key with nothing after the colon ("foo:") is a keyword
//
// Each quirk is reported as a diagnostic.
func Parse(tokens []string) *queryir.Query {
	p := &parser{
		q:     queryir.NewQuery(),
		lower: cases.Lower(language.Und),
	}
	for _, tok := range tokens {
		p.parseToken(tok)
	}
	return p.q
}

type parser struct {
	q     *queryir.Query
	lower cases.Caser // not safe for concurrent use; one per Parse call
}

func (p *parser) diag(code queryir.DiagnosticCode, tok string) {
	p.q.Diagnostics = append(p.q.Diagnostics, queryir.Diagnostic{Code: code, Token: tok})
}

func (p *parser) parseToken(raw string) {
	tok := strings.TrimSpace(raw)
	if tok == "" {
		return
	}

	m := clausePattern.FindStringSubmatch(tok)
	if m == nil {
		p.addKeyword(tok)
		return
	}
	negated, key, value := m[1] == "-", m[2], m[3]

	rule, known := keyRules[key]
	if !known {
		if value == "" {
			p.addKeyword(tok)
			return
		}
		p.q.Affirmed.Dynamic = append(p.q.Affirmed.Dynamic, queryir.DynamicValue{Key: key, Value: value})
		p.diag(queryir.DiagUnknownKey, tok)
		return
	}
	if value == "" {
		p.diag(queryir.DiagEmptyValue, tok)
		return
	}

	dst := p.q.Affirmed
	if negated {
		dst = p.q.Negated
	}

	switch rule.kind {
	case kindList:
		if rule.fold {
			value = p.lower.String(value)
		}
		dst.Append(rule.field, value)
	case kindIs:
		dst.Is.Set(value)
	case kindNo:
		dst.No.Set(value)
	case kindHave:
		dst.Have.Set(value)
	case kindDraft:
		switch value {
		case "true":
			dst.Is.Set("draft")
		case "false":
			dst.Is.Set("undraft")
		default:
			p.diag(queryir.DiagUnknownFlag, tok)
		}
	case kindSort:
		if negated {
			p.diag(queryir.DiagNegatedSort, tok)
		}
		p.q.Affirmed.Sort = value
	}
}

func (p *parser) addKeyword(tok string) {
	if strings.HasPrefix(tok, "-") {
		p.diag(queryir.DiagNegatedKeyword, tok)
	}
	p.q.Affirmed.Keywords = append(p.q.Affirmed.Keywords, p.lower.String(tok))
}
