package compiler

import (
	"fmt"
	"strings"

	"github.com/roach88/hubstream/internal/ir"
	"github.com/roach88/hubstream/internal/querylang"
	"github.com/roach88/hubstream/internal/queryir"
	"github.com/roach88/hubstream/internal/querysql"
)

// Validation error codes (E200-E299)
const (
	ErrStreamNameEmpty   = "E201" // stream name is required
	ErrStreamNoQueries   = "E202" // at least one query required
	ErrStreamBlankQuery  = "E203" // query text is blank
	ErrStreamDuplicate   = "E204" // two streams share a name
	ErrQueryUnknownFlag  = "E210" // is:/no:/have: name with no mapping
	ErrQueryUnknownSort  = "E211" // sort column with no mapping
	ErrQueryBadNumber    = "E212" // number: value is not an integer
	ErrQueryEmptyValue   = "E213" // key: with nothing after the colon
	ErrQueryCompileFail  = "E220" // compiler rejected the query
	ErrFilterHasKeywords = "E230" // filter carries free text keywords
)

// diagnosticCodes maps compiler diagnostics to validation errors. Codes
// not listed are accepted quirks and pass validation.
var diagnosticCodes = map[queryir.DiagnosticCode]string{
	queryir.DiagUnknownFlag: ErrQueryUnknownFlag,
	queryir.DiagUnknownSort: ErrQueryUnknownSort,
	queryir.DiagBadNumber:   ErrQueryBadNumber,
	queryir.DiagEmptyValue:  ErrQueryEmptyValue,
}

// ValidationError represents a stream validation error.
type ValidationError struct {
	Stream  string `json:"stream"`
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s.%s: %s", e.Code, e.Stream, e.Field, e.Message)
}

// Validate checks stream definitions for mistakes the CUE schema cannot
// see: every query and filter is compiled, and diagnostics that would
// silently drop a constraint become errors.
// Returns all errors found (does not fail-fast).
func Validate(specs []ir.StreamSpec) []ValidationError {
	var (
		errs  []ValidationError
		names = make(map[string]bool, len(specs))
		c     = querysql.NewSQLCompiler()
	)

	for _, spec := range specs {
		if strings.TrimSpace(spec.Name) == "" {
			errs = append(errs, ValidationError{
				Field:   "name",
				Message: "stream name is required and must be non-empty",
				Code:    ErrStreamNameEmpty,
			})
			continue
		}
		if names[spec.Name] {
			errs = append(errs, ValidationError{
				Stream:  spec.Name,
				Field:   "name",
				Message: fmt.Sprintf("duplicate stream name: %q", spec.Name),
				Code:    ErrStreamDuplicate,
			})
		}
		names[spec.Name] = true

		if len(spec.Queries) == 0 {
			errs = append(errs, ValidationError{
				Stream:  spec.Name,
				Field:   "queries",
				Message: "at least one query is required",
				Code:    ErrStreamNoQueries,
			})
		}

		for i, query := range spec.Queries {
			field := fmt.Sprintf("queries[%d]", i)
			if strings.TrimSpace(query) == "" {
				errs = append(errs, ValidationError{
					Stream:  spec.Name,
					Field:   field,
					Message: "query is blank and would match every issue",
					Code:    ErrStreamBlankQuery,
				})
				continue
			}
			errs = append(errs, validateQuery(c, spec.Name, field, query)...)
		}

		if spec.Filter != "" {
			errs = append(errs, validateQuery(c, spec.Name, "filter", spec.Filter)...)
			if q := querylang.ParseQuery(spec.Filter); len(q.Affirmed.Keywords) > 0 {
				errs = append(errs, ValidationError{
					Stream:  spec.Name,
					Field:   "filter",
					Message: fmt.Sprintf("filter contains free text %q; move it into a query", q.Affirmed.Keywords),
					Code:    ErrFilterHasKeywords,
				})
			}
		}
	}

	return errs
}

func validateQuery(c *querysql.SQLCompiler, stream, field, query string) []ValidationError {
	compiled, err := c.Compile(querylang.ParseQuery(query))
	if err != nil {
		return []ValidationError{{
			Stream:  stream,
			Field:   field,
			Message: err.Error(),
			Code:    ErrQueryCompileFail,
		}}
	}

	var errs []ValidationError
	for _, d := range compiled.Diagnostics {
		code, ok := diagnosticCodes[d.Code]
		if !ok {
			continue
		}
		errs = append(errs, ValidationError{
			Stream:  stream,
			Field:   field,
			Message: fmt.Sprintf("%s in %q", d, query),
			Code:    code,
		})
	}
	return errs
}
