package version

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mintworks/releasekit/cmd/releasekit/commands/flags"
	"github.com/mintworks/releasekit/pkg/logger"
)

// newTestRoot wraps the version command group in a minimal root carrying the
// persistent --workdir flag, the way the real CLI mounts it.
func newTestRoot(t *testing.T) (*cobra.Command, string) {
	t.Helper()

	cmd, err := NewCommand(Config{Logger: logger.Test(t)})
	require.NoError(t, err)

	root := &cobra.Command{Use: "releasekit", SilenceUsage: true, SilenceErrors: true}
	flags.Workdir(root)
	root.AddCommand(cmd)

	return root, t.TempDir()
}

func execute(root *cobra.Command, workdir string, args ...string) (string, error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(append(args, "--workdir", workdir))
	err := root.Execute()

	return buf.String(), err
}

func TestNewCommand_Structure(t *testing.T) {
	t.Parallel()

	cmd, err := NewCommand(Config{Logger: logger.Nop()})
	require.NoError(t, err)

	assert.Equal(t, "version", cmd.Use)
	assert.Equal(t, versionShort, cmd.Short)
	assert.NotEmpty(t, cmd.Long)

	uses := make([]string, 0, len(cmd.Commands()))
	for _, sc := range cmd.Commands() {
		uses = append(uses, sc.Name())
	}
	assert.ElementsMatch(t, []string{"show", "bump", "sync", "check"}, uses)
}

func TestNewCommand_MissingLogger(t *testing.T) {
	t.Parallel()

	_, err := NewCommand(Config{})
	require.ErrorContains(t, err, "Logger")
}

func TestShow_Defaults(t *testing.T) {
	t.Parallel()

	root, workdir := newTestRoot(t)

	out, err := execute(root, workdir, "version", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "frontend")
	assert.Contains(t, out, "0.1.0")
}

func TestBump_ThenShow(t *testing.T) {
	t.Parallel()

	root, workdir := newTestRoot(t)

	out, err := execute(root, workdir, "version", "bump", "backend", "patch")
	require.NoError(t, err)
	assert.Contains(t, out, "Bumped backend to 0.1.1")

	out, err = execute(root, workdir, "version", "show", "backend")
	require.NoError(t, err)
	assert.Contains(t, out, "0.1.1")
}

func TestBump_UnknownComponent(t *testing.T) {
	t.Parallel()

	root, workdir := newTestRoot(t)

	_, err := execute(root, workdir, "version", "bump", "database", "patch")
	require.ErrorContains(t, err, "database")
}

func TestSync_ThenCheck(t *testing.T) {
	t.Parallel()

	root, workdir := newTestRoot(t)

	_, err := execute(root, workdir, "version", "bump", "backend", "minor")
	require.NoError(t, err)

	// Diverged major.minor fails the check.
	_, err = execute(root, workdir, "version", "check")
	require.ErrorContains(t, err, "incompatible")

	out, err := execute(root, workdir, "version", "sync", "1.0.0")
	require.NoError(t, err)
	assert.Contains(t, out, "Synced all components to 1.0.0")

	out, err = execute(root, workdir, "version", "check")
	require.NoError(t, err)
	assert.Contains(t, out, "compatible")
}
