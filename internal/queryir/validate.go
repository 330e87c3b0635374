package queryir

import (
	"fmt"
	"strings"
)

// ValidationError lists the structural invariants a Query violates.
//
// The classifier never produces an invalid Query. Validation guards
// callers that build a Query by hand (stream definitions, tests) before it
// reaches the compiler.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid query: %s", strings.Join(e.Violations, "; "))
}

// Validate checks the invariants the compiler relies on:
//  1. Both predicate sets are present
//  2. Sort is recorded on the affirmed set only
//  3. Keywords and dynamic values are recorded on the affirmed set only
//  4. Flag maps are non-nil
//
// Validate is a pure function with no side effects.
func Validate(q *Query) error {
	v := &validator{}
	v.validateQuery(q)

	if len(v.violations) == 0 {
		return nil
	}
	return &ValidationError{Violations: v.violations}
}

// validator accumulates violations during traversal.
type validator struct {
	violations []string
}

func (v *validator) addViolation(format string, args ...any) {
	v.violations = append(v.violations, fmt.Sprintf(format, args...))
}

func (v *validator) validateQuery(q *Query) {
	if q == nil {
		v.addViolation("nil query")
		return
	}
	if q.Affirmed == nil {
		v.addViolation("affirmed predicate set is nil")
	} else {
		v.validateFlags("affirmed", q.Affirmed)
	}
	if q.Negated == nil {
		v.addViolation("negated predicate set is nil")
		return
	}

	v.validateFlags("negated", q.Negated)
	if q.Negated.Sort != "" {
		v.addViolation("negated set carries sort %q", q.Negated.Sort)
	}
	if len(q.Negated.Keywords) > 0 {
		v.addViolation("negated set carries %d keyword(s)", len(q.Negated.Keywords))
	}
	if len(q.Negated.Dynamic) > 0 {
		v.addViolation("negated set carries %d dynamic value(s)", len(q.Negated.Dynamic))
	}
}

func (v *validator) validateFlags(polarity string, s *PredicateSet) {
	if s.Is == nil {
		v.addViolation("%s is-flags map is nil", polarity)
	}
	if s.No == nil {
		v.addViolation("%s no-flags map is nil", polarity)
	}
	if s.Have == nil {
		v.addViolation("%s have-flags map is nil", polarity)
	}
}
