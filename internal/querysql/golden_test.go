package querysql

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"

	"github.com/roach88/hubstream/internal/querylang"
	"github.com/roach88/hubstream/internal/testutil"
)

// goldenQueries is a corpus of saved-stream style queries. Changing the
// compiled output of any of them is a visible behaviour change.
var goldenQueries = []string{
	"is:open is:pr author:Octocat",
	`label:"due @current_date" -label:wontfix sort:dueon`,
	"repo:Acme/Widget -user:bot number:12 crash",
	`team:acme/core mentions:alice review-requested:bob reviewed-by:carol -no:label have:milestone sort:"updated desc, author"`,
	"is:unread foo:bar -baz sort:nope",
	"",
}

func TestCompile_Golden(t *testing.T) {
	clock := testutil.NewFixedClock()
	compiler := NewSQLCompiler(WithClock(clock.Now))

	var buf bytes.Buffer
	for _, query := range goldenQueries {
		c, err := compiler.Compile(querylang.ParseQuery(query))
		require.NoError(t, err)

		fmt.Fprintf(&buf, "query: %s\n", orDash(query))
		fmt.Fprintf(&buf, "where: %s\n", orDash(c.FilterExpression()))
		fmt.Fprintf(&buf, "order: %s\n", orDash(c.OrderByExpression()))
		for _, d := range c.Diagnostics {
			fmt.Fprintf(&buf, "diag:  %s\n", d)
		}
		buf.WriteString("\n")
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "corpus", buf.Bytes())
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
