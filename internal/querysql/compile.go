package querysql

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/roach88/hubstream/internal/ir"
	"github.com/roach88/hubstream/internal/queryir"
)

// keywordColumns are searched by bare keywords.
var keywordColumns = []string{
	"title", "body", "user", "repo", "author", "assignees", "labels",
	"milestone", "involves", "mentions", "review_requested", "reviews",
}

// Compiled is the output of compiling one query.
type Compiled struct {
	// Where is the filter, empty when the query places no constraint.
	Where Fragment `json:"where"`

	// OrderBy is the ORDER BY column list, empty for the caller's default.
	OrderBy string `json:"order_by,omitempty"`

	// Diagnostics merges classifier and compiler diagnostics.
	Diagnostics []queryir.Diagnostic `json:"diagnostics,omitempty"`
}

// FilterExpression renders the filter with arguments inlined.
func (c Compiled) FilterExpression() string {
	return c.Where.Interpolate()
}

// OrderByExpression returns the ORDER BY column list.
func (c Compiled) OrderByExpression() string {
	return c.OrderBy
}

// SQLCompiler compiles the query IR to parameterized SQLite fragments.
//
// All values are parameterized (never interpolated). The only state is
// the clock used for date placeholders, so a compiler may be shared
// between goroutines.
type SQLCompiler struct {
	now func() time.Time
}

// Option configures a SQLCompiler.
type Option func(*SQLCompiler)

// WithClock sets the clock used to expand date placeholders.
func WithClock(now func() time.Time) Option {
	return func(c *SQLCompiler) {
		c.now = now
	}
}

// NewSQLCompiler creates a SQLCompiler using the wall clock by default.
func NewSQLCompiler(opts ...Option) *SQLCompiler {
	c := &SQLCompiler{now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile converts a classified query to a filter fragment and an ORDER BY
// list. Every sub-expression is ANDed; OR only appears between values of
// one multi-valued field.
//
// Compile fails only when q fails queryir.Validate. Query text can
// never make it fail.
func (c *SQLCompiler) Compile(q *queryir.Query) (Compiled, error) {
	if err := queryir.Validate(q); err != nil {
		return Compiled{}, fmt.Errorf("compile query: %w", err)
	}

	b := &builder{now: c.now()}
	b.diags = append(b.diags, q.Diagnostics...)

	b.compileSet(q.Affirmed, false)
	b.compileSet(q.Negated, true)

	var orderBy string
	if q.Affirmed.Sort != "" {
		res := CompileSort(q.Affirmed.Sort)
		orderBy = res.OrderBy
		for _, extra := range res.Extra {
			b.add(Fragment{SQL: extra})
		}
		for _, unknown := range res.Unknown {
			b.diag(queryir.DiagUnknownSort, unknown)
		}
	}

	return Compiled{
		Where:       And(b.parts...),
		OrderBy:     orderBy,
		Diagnostics: b.diags,
	}, nil
}

// builder accumulates sub-expressions for one Compile call.
type builder struct {
	now   time.Time
	parts []Fragment
	diags []queryir.Diagnostic
}

func (b *builder) add(f Fragment) {
	if !f.IsEmpty() {
		b.parts = append(b.parts, f)
	}
}

func (b *builder) diag(code queryir.DiagnosticCode, tok string) {
	b.diags = append(b.diags, queryir.Diagnostic{Code: code, Token: tok})
}

func (b *builder) compileSet(s *queryir.PredicateSet, negated bool) {
	b.compileFlags("is", isRules, s.Is, negated)
	b.compileFlags("no", noRules, s.No, negated)
	b.compileFlags("have", haveRules, s.Have, negated)

	b.add(b.numbers(s.Numbers, negated))
	b.compileTitles(s.Titles, negated)
	b.add(inList("author", s.Authors, negated))
	b.add(contains("assignees", s.Assignees, negated))
	b.add(inList("milestone", s.Milestones, negated))
	b.add(inList("user", s.Users, negated))
	b.add(inList("repo", s.Repos, negated))
	b.add(contains("labels", b.expandLabels(s.Labels), negated))
	b.add(contains("involves", s.Involves, negated))
	b.add(contains("mentions", s.Mentions, negated))
	b.add(contains("mentions", s.Teams, negated))
	b.add(contains("review_requested", s.ReviewRequested, negated))
	b.add(contains("reviews", s.ReviewedBy, negated))
	b.add(contains("project_names", s.ProjectNames, negated))

	if !negated {
		for _, kw := range s.Keywords {
			b.add(keyword(kw))
		}
	}
}

// compileFlags emits rules in table order so output does not depend on
// map iteration. Unknown names are reported in sorted order.
func (b *builder) compileFlags(prefix string, rules []flagRule, flags queryir.Flags, negated bool) {
	for _, r := range rules {
		if !flags.Has(r.name) {
			continue
		}
		if negated {
			b.add(Fragment{SQL: r.negated})
		} else {
			b.add(Fragment{SQL: r.affirmed})
		}
	}

	var unknown []string
	for name := range flags {
		if !knownFlag(rules, name) {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	for _, name := range unknown {
		tok := prefix + ":" + name
		if negated {
			tok = "-" + tok
		}
		b.diag(queryir.DiagUnknownFlag, tok)
	}
}

// numbers builds an IN list over the integer number column.
func (b *builder) numbers(values []string, negated bool) Fragment {
	var args []any
	for _, v := range values {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			b.diag(queryir.DiagBadNumber, "number:"+v)
			continue
		}
		args = append(args, n)
	}
	if len(args) == 0 {
		return Fragment{}
	}

	op := "in"
	if negated {
		op = "not in"
	}
	return Fragment{
		SQL:  fmt.Sprintf("(number is not null and number %s (%s))", op, placeholders(len(args))),
		Args: args,
	}
}

func (b *builder) compileTitles(titles []string, negated bool) {
	op := "like"
	if negated {
		op = "not like"
	}
	for _, t := range titles {
		b.add(Fragment{SQL: "title " + op + " ?", Args: []any{t}})
	}
}

func (b *builder) expandLabels(labels []string) []string {
	if len(labels) == 0 {
		return nil
	}
	out := make([]string, len(labels))
	for i, l := range labels {
		out[i] = ExpandDates(l, b.now)
	}
	return out
}

// inList matches a single-valued column case-insensitively.
func inList(column string, values []string, negated bool) Fragment {
	if len(values) == 0 {
		return Fragment{}
	}

	op := "in"
	if negated {
		op = "not in"
	}
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return Fragment{
		SQL:  fmt.Sprintf("(%s is not null and lower(%s) %s (%s))", column, column, op, placeholders(len(values))),
		Args: args,
	}
}

// contains matches delimiter-wrapped entries of a multi-value column.
// Affirmed: any value present. Negated: no value present, and a NULL
// column counts as "no value present".
func contains(column string, values []string, negated bool) Fragment {
	if len(values) == 0 {
		return Fragment{}
	}

	tests := make([]Fragment, len(values))
	for i, v := range values {
		pattern := "%" + ir.WrapValue(v) + "%"
		if negated {
			tests[i] = Fragment{SQL: column + " not like ?", Args: []any{pattern}}
		} else {
			tests[i] = Fragment{SQL: column + " like ?", Args: []any{pattern}}
		}
	}

	if !negated {
		inner := join(" or ", false, tests)
		return Fragment{SQL: "(" + inner.SQL + ")", Args: inner.Args}
	}

	inner := join(" and ", false, tests)
	return Fragment{
		SQL:  fmt.Sprintf("(%s is null or (%s))", column, inner.SQL),
		Args: inner.Args,
	}
}

// keyword searches every keyword column for kw.
func keyword(kw string) Fragment {
	if kw == "" {
		return Fragment{}
	}

	pattern := "%" + kw + "%"
	tests := make([]Fragment, len(keywordColumns))
	for i, col := range keywordColumns {
		tests[i] = Fragment{SQL: col + " like ?", Args: []any{pattern}}
	}
	inner := join(" or ", false, tests)
	return Fragment{SQL: "(" + inner.SQL + ")", Args: inner.Args}
}
