package querysql

import (
	"fmt"
	"strconv"
	"strings"
)

// Fragment is a boolean SQL expression with positional `?` parameters.
// SQL never contains user text; every value lives in Args.
type Fragment struct {
	SQL  string `json:"sql"`
	Args []any  `json:"args,omitempty"`
}

// IsEmpty reports whether the fragment places no constraint.
func (f Fragment) IsEmpty() bool {
	return f.SQL == ""
}

// Interpolate renders the fragment with its arguments inlined as SQL
// literals. Strings are double-quoted with embedded quotes doubled.
// The result is for display and logging; execute SQL with Args instead.
func (f Fragment) Interpolate() string {
	if len(f.Args) == 0 {
		return f.SQL
	}

	var b strings.Builder
	next := 0
	for _, r := range f.SQL {
		if r == '?' && next < len(f.Args) {
			b.WriteString(literal(f.Args[next]))
			next++
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func literal(v any) string {
	switch val := v.(type) {
	case string:
		return `"` + strings.ReplaceAll(val, `"`, `""`) + `"`
	case int64:
		return strconv.FormatInt(val, 10)
	case int:
		return strconv.Itoa(val)
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%v", val)
	}
}

// And joins non-empty fragments with " and ". Arguments keep their order.
func And(frags ...Fragment) Fragment {
	return join(" and ", false, frags)
}

// Or joins non-empty fragments with " or ", wrapping each operand and the
// whole expression in parentheses. An empty operand makes the disjunction
// unconstrained, so the result is empty.
func Or(frags ...Fragment) Fragment {
	for _, f := range frags {
		if f.IsEmpty() {
			return Fragment{}
		}
	}
	return join(" or ", true, frags)
}

func join(sep string, wrap bool, frags []Fragment) Fragment {
	var (
		parts []string
		args  []any
	)
	for _, f := range frags {
		if f.IsEmpty() {
			continue
		}
		sql := f.SQL
		if wrap && len(frags) > 1 {
			sql = "(" + sql + ")"
		}
		parts = append(parts, sql)
		args = append(args, f.Args...)
	}

	switch len(parts) {
	case 0:
		return Fragment{}
	case 1:
		return Fragment{SQL: parts[0], Args: args}
	}

	sql := strings.Join(parts, sep)
	if wrap {
		sql = "(" + sql + ")"
	}
	return Fragment{SQL: sql, Args: args}
}

// placeholders returns n comma-separated `?` markers.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
