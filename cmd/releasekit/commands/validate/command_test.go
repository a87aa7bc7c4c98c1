package validate

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mintworks/releasekit/cmd/releasekit/commands/flags"
	cfgstore "github.com/mintworks/releasekit/config"
	"github.com/mintworks/releasekit/pkg/logger"
	"github.com/mintworks/releasekit/workspace"
)

func newTestRoot(t *testing.T) (*cobra.Command, string) {
	t.Helper()

	workdir := t.TempDir()
	ws := workspace.New(workdir)
	require.NoError(t, ws.Init())

	lggr := logger.Test(t)
	_, _, err := cfgstore.NewStore(ws, lggr).Generate(cfgstore.EnvDev)
	require.NoError(t, err)

	cmd, err := NewCommand(Config{Logger: lggr})
	require.NoError(t, err)

	root := &cobra.Command{Use: "releasekit", SilenceUsage: true, SilenceErrors: true}
	flags.Workdir(root)
	root.AddCommand(cmd)

	return root, workdir
}

func execute(root *cobra.Command, workdir string, args ...string) (string, error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(append(args, "--workdir", workdir))
	err := root.Execute()

	return buf.String(), err
}

func TestValidateRelease_DevPasses(t *testing.T) {
	t.Parallel()

	root, workdir := newTestRoot(t)

	out, err := execute(root, workdir, "validate-release", "--environment", "dev")
	require.NoError(t, err)
	assert.Contains(t, out, "code-quality")
	assert.Contains(t, out, "deployment-readiness")
	assert.Contains(t, out, "✅ Release validation passed for dev")
}

func TestValidateRelease_MissingConfigFails(t *testing.T) {
	t.Parallel()

	root, workdir := newTestRoot(t)

	out, err := execute(root, workdir, "validate-release", "--environment", "prod")
	require.ErrorContains(t, err, "release validation failed")
	assert.Contains(t, out, "no configuration")
}

func TestValidateRelease_TargetVersionMismatch(t *testing.T) {
	t.Parallel()

	root, workdir := newTestRoot(t)

	_, err := execute(root, workdir, "validate-release", "2.0.0", "--environment", "dev")
	require.ErrorContains(t, err, "release validation failed")
}

func TestValidateRelease_SingleCategory(t *testing.T) {
	t.Parallel()

	root, workdir := newTestRoot(t)

	// The raw security check fails on dev credentials; no downgrade applies
	// outside the aggregate.
	out, err := execute(root, workdir, "validate-release", "--environment", "dev", "--category", "security")
	require.ErrorContains(t, err, "1 of 1 checks failed")
	assert.Contains(t, out, "security")
}

func TestValidateRelease_UnknownCategory(t *testing.T) {
	t.Parallel()

	root, workdir := newTestRoot(t)

	_, err := execute(root, workdir, "validate-release", "--environment", "dev", "--category", "vibes")
	require.ErrorContains(t, err, "unknown check category")
}

func TestValidateRelease_LintCommand(t *testing.T) {
	t.Parallel()

	root, workdir := newTestRoot(t)

	_, err := execute(root, workdir, "validate-release", "--environment", "dev",
		"--lint-command", "sh -c false")
	require.ErrorContains(t, err, "release validation failed")
}
