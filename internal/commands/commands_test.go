package commands_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/icsimport/internal/commands"
	"github.com/cleared-dev/icsimport/internal/statementtest"
)

// runICSImport executes the CLI in-process and returns its stdout.
func runICSImport(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := commands.NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

// writeStatement renders pages into dir/name.
func writeStatement(t *testing.T, dir, name string, pages []statementtest.Page) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, statementtest.MustRender(pages), 0o644))
	return path
}
