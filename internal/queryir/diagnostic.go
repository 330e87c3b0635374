package queryir

import "fmt"

// DiagnosticCode categorizes a non-fatal observation about a query.
type DiagnosticCode string

const (
	// DiagUnknownKey marks a key:value pair stored as a dynamic value.
	DiagUnknownKey DiagnosticCode = "unknown-key"

	// DiagNegatedKeyword marks a -word token kept as an affirmed keyword.
	DiagNegatedKeyword DiagnosticCode = "negated-keyword"

	// DiagNegatedSort marks a -sort: clause, which is recorded as affirmed.
	DiagNegatedSort DiagnosticCode = "negated-sort"

	// DiagEmptyValue marks a recognized key: token with nothing after the colon.
	DiagEmptyValue DiagnosticCode = "empty-value"

	// DiagUnknownFlag marks an is:/no:/have: name with no SQL mapping.
	DiagUnknownFlag DiagnosticCode = "unknown-flag"

	// DiagUnknownSort marks a sort column with no SQL mapping.
	DiagUnknownSort DiagnosticCode = "unknown-sort"

	// DiagBadNumber marks a number: value that is not an integer.
	DiagBadNumber DiagnosticCode = "bad-number"
)

// Diagnostic reports a token that did not contribute to the compiled
// result the way its text suggests.
type Diagnostic struct {
	Code  DiagnosticCode `json:"code"`
	Token string         `json:"token"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %q", d.Code, d.Token)
}
