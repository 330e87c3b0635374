package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/roach88/hubstream/internal/store"
	"github.com/roach88/hubstream/internal/testutil"
)

// testOptions returns root options with a fixed clock and a fresh
// database path.
func testOptions(t *testing.T, format string) *RootOptions {
	t.Helper()
	return &RootOptions{
		Format:     format,
		Database:   filepath.Join(t.TempDir(), "issues.db"),
		StreamsDir: "testdata/streams",
		Clock:      testutil.NewFixedClock().Now,
	}
}

// seedStore imports testdata/issues.yaml into the options' database.
func seedStore(t *testing.T, opts *RootOptions) {
	t.Helper()
	issues, err := ReadIssuesFile("testdata/issues.yaml")
	require.NoError(t, err)

	st, err := store.Open(opts.Database)
	require.NoError(t, err)
	defer st.Close()

	_, err = st.UpsertIssues(context.Background(), issues)
	require.NoError(t, err)
}

// execute runs cmd with args and returns stdout and stderr.
func execute(cmd *cobra.Command, args ...string) (string, string, error) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	if args == nil {
		args = []string{} // nil makes cobra fall back to os.Args
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

// writeFile writes content to dir/name.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}
