package compiler

import (
	"fmt"

	"github.com/roach88/hubstream/internal/ir"
	"github.com/roach88/hubstream/internal/querylang"
	"github.com/roach88/hubstream/internal/querysql"
)

// CompileQuery tokenizes, classifies and compiles one query string.
func CompileQuery(c *querysql.SQLCompiler, query string) (querysql.Compiled, error) {
	return c.Compile(querylang.ParseQuery(query))
}

// CompileStreamQuery compiles a stream into one filter: the OR of its
// queries, ANDed with its filter. Ordering comes from the filter's sort,
// else from the first query that has one.
func CompileStreamQuery(c *querysql.SQLCompiler, spec ir.StreamSpec) (querysql.Compiled, error) {
	var (
		out    querysql.Compiled
		wheres []querysql.Fragment
	)

	for i, query := range spec.Queries {
		compiled, err := CompileQuery(c, query)
		if err != nil {
			return querysql.Compiled{}, fmt.Errorf("stream %q: queries[%d]: %w", spec.Name, i, err)
		}
		wheres = append(wheres, compiled.Where)
		out.Diagnostics = append(out.Diagnostics, compiled.Diagnostics...)
		if out.OrderBy == "" {
			out.OrderBy = compiled.OrderBy
		}
	}

	var filter querysql.Compiled
	if spec.Filter != "" {
		var err error
		filter, err = CompileQuery(c, spec.Filter)
		if err != nil {
			return querysql.Compiled{}, fmt.Errorf("stream %q: filter: %w", spec.Name, err)
		}
		out.Diagnostics = append(out.Diagnostics, filter.Diagnostics...)
		if filter.OrderBy != "" {
			out.OrderBy = filter.OrderBy
		}
	}

	out.Where = querysql.And(querysql.Or(wheres...), filter.Where)
	return out, nil
}
