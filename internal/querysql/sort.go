package querysql

import (
	"fmt"
	"strings"
)

// sortRule describes one logical sort key. Selecting a key with Extra
// predicates also constrains the filter: a due-date ordering only makes
// sense for open issues that have a due date.
type sortRule struct {
	Column       string
	DefaultOrder string
	Extra        []string
}

// sortRules maps sort keys accepted by sort: to physical columns.
var sortRules = map[string]sortRule{
	"number":    {Column: "number", DefaultOrder: "desc"},
	"type":      {Column: "type", DefaultOrder: "asc"},
	"read":      {Column: "read_at", DefaultOrder: "desc"},
	"updated":   {Column: "updated_at", DefaultOrder: "desc"},
	"created":   {Column: "created_at", DefaultOrder: "desc"},
	"closed":    {Column: "closed_at", DefaultOrder: "desc"},
	"merged":    {Column: "merged_at", DefaultOrder: "desc"},
	"archived":  {Column: "archived_at", DefaultOrder: "desc"},
	"bookmark":  {Column: "marked_at", DefaultOrder: "desc"},
	"author":    {Column: "author", DefaultOrder: "asc"},
	"user":      {Column: "user", DefaultOrder: "asc"},
	"repo":      {Column: "repo", DefaultOrder: "asc"},
	"milestone": {Column: "milestone", DefaultOrder: "desc"},
	"dueon":     {Column: "due_on", DefaultOrder: "asc", Extra: []string{"closed_at is null", "due_on is not null"}},
	"title":     {Column: "title", DefaultOrder: "asc"},
}

// SortResult is the outcome of compiling a sort clause.
type SortResult struct {
	// OrderBy is the ORDER BY column list, pairs separated by " , ".
	OrderBy string

	// Extra holds predicates contributed by the selected keys, in
	// selection order and without duplicates. Callers AND them into the
	// filter.
	Extra []string

	// Unknown lists sort keys with no mapping. They emit no SQL.
	Unknown []string
}

// CompileSort compiles a comma separated list of "column[ order]" pairs.
// An order other than exactly "asc" or "desc" is discarded in favour of
// the column default.
func CompileSort(spec string) SortResult {
	var (
		res   SortResult
		parts []string
		seen  = map[string]bool{}
	)

	for _, pair := range strings.Split(spec, ",") {
		fields := strings.Fields(pair)
		if len(fields) == 0 {
			continue
		}

		column := fields[0]
		rule, ok := sortRules[column]
		if !ok {
			res.Unknown = append(res.Unknown, column)
			continue
		}

		order := rule.DefaultOrder
		if len(fields) > 1 && (fields[1] == "asc" || fields[1] == "desc") {
			order = fields[1]
		}
		parts = append(parts, fmt.Sprintf("%s %s", rule.Column, order))

		for _, extra := range rule.Extra {
			if !seen[extra] {
				seen[extra] = true
				res.Extra = append(res.Extra, extra)
			}
		}
	}

	res.OrderBy = strings.Join(parts, " , ")
	return res
}
