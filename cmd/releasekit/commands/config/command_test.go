package config

import (
	"bytes"
	"os"
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

	cmd, err := NewCommand(Config{Logger: logger.Test(t)})
	require.NoError(t, err)

	root := &cobra.Command{Use: "releasekit", SilenceUsage: true, SilenceErrors: true}
	flags.Workdir(root)
	root.AddCommand(cmd)

	workdir := t.TempDir()
	require.NoError(t, workspace.New(workdir).Init())

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

func TestNewCommand_Structure(t *testing.T) {
	t.Parallel()

	cmd, err := NewCommand(Config{Logger: logger.Nop()})
	require.NoError(t, err)

	assert.Equal(t, "config", cmd.Use)

	uses := make([]string, 0, len(cmd.Commands()))
	for _, sc := range cmd.Commands() {
		uses = append(uses, sc.Name())
	}
	assert.ElementsMatch(t,
		[]string{"generate", "validate", "backup", "restore", "backups",
			"consistency-check", "security-scan", "cleanup"},
		uses)
}

func TestGenerate_ThenValidate(t *testing.T) {
	t.Parallel()

	root, workdir := newTestRoot(t)

	out, err := execute(root, workdir, "config", "generate", "--environment", "dev")
	require.NoError(t, err)
	assert.Contains(t, out, "Generated config for dev")

	ws := workspace.New(workdir)
	_, err = os.Stat(ws.ConfigFilePath("dev"))
	require.NoError(t, err)

	out, err = execute(root, workdir, "config", "validate", "--environment", "dev")
	require.NoError(t, err)
	assert.Contains(t, out, "Config for dev is valid")
}

func TestGenerate_SecondTimeBacksUp(t *testing.T) {
	t.Parallel()

	root, workdir := newTestRoot(t)

	_, err := execute(root, workdir, "config", "generate", "--environment", "staging")
	require.NoError(t, err)

	out, err := execute(root, workdir, "config", "generate", "--environment", "staging")
	require.NoError(t, err)
	assert.Contains(t, out, "previous document saved as")
}

func TestSecurityScan_FlagsDevCredentials(t *testing.T) {
	t.Parallel()

	root, workdir := newTestRoot(t)

	_, err := execute(root, workdir, "config", "generate", "--environment", "dev")
	require.NoError(t, err)

	out, err := execute(root, workdir, "config", "security-scan", "--environment", "dev")
	require.ErrorContains(t, err, "security findings")
	assert.Contains(t, out, "finding:")
}

func TestConsistencyCheck(t *testing.T) {
	t.Parallel()

	root, workdir := newTestRoot(t)

	_, err := execute(root, workdir, "config", "generate", "--environment", "dev")
	require.NoError(t, err)

	out, err := execute(root, workdir, "config", "consistency-check", "--environment", "dev")
	require.NoError(t, err)
	assert.Contains(t, out, "consistent")
}

func TestConsistencyCheck_IssuesWarnByDefault(t *testing.T) {
	t.Parallel()

	root, workdir := newTestRoot(t)

	_, err := execute(root, workdir, "config", "generate", "--environment", "dev")
	require.NoError(t, err)

	s := cfgstore.NewStore(workspace.New(workdir), logger.Test(t))
	_, err = s.Set(cfgstore.EnvDev, func(d *cfgstore.Document) {
		d.Backend.PublicURL = "http://localhost:9999"
	})
	require.NoError(t, err)

	// Issues print but the command still exits cleanly.
	out, err := execute(root, workdir, "config", "consistency-check", "--environment", "dev")
	require.NoError(t, err)
	assert.Contains(t, out, "warning:")
	assert.Contains(t, out, "consistency warnings")

	// --strict turns the same issues into a failing exit.
	out, err = execute(root, workdir, "config", "consistency-check", "--environment", "dev", "--strict")
	require.ErrorContains(t, err, "consistency issues")
	assert.Contains(t, out, "warning:")
}

func TestBackup_RestoreFlow(t *testing.T) {
	t.Parallel()

	root, workdir := newTestRoot(t)

	_, err := execute(root, workdir, "config", "generate", "--environment", "dev")
	require.NoError(t, err)

	out, err := execute(root, workdir, "config", "backup", "--environment", "dev")
	require.NoError(t, err)
	assert.Contains(t, out, "Backed up config for dev as ")

	backups, err := execute(root, workdir, "config", "backups", "--environment", "dev")
	require.NoError(t, err)
	id := string(bytes.Fields([]byte(backups))[0])

	out, err = execute(root, workdir, "config", "restore", id, "--environment", "dev")
	require.NoError(t, err)
	assert.Contains(t, out, "Restored config for dev from backup "+id)
}

func TestCleanup_RequiresRetentionDays(t *testing.T) {
	t.Parallel()

	root, workdir := newTestRoot(t)

	_, err := execute(root, workdir, "config", "cleanup")
	require.ErrorContains(t, err, "required flag")
}

func TestCleanup(t *testing.T) {
	t.Parallel()

	root, workdir := newTestRoot(t)

	_, err := execute(root, workdir, "config", "generate", "--environment", "dev")
	require.NoError(t, err)
	_, err = execute(root, workdir, "config", "backup", "--environment", "dev")
	require.NoError(t, err)

	// A recent backup survives a generous retention window.
	out, err := execute(root, workdir, "config", "cleanup", "--retention-days", "30")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed 0 backups")
}
