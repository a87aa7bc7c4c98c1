package registry

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mintworks/releasekit/cmd/releasekit/commands/flags"
	"github.com/mintworks/releasekit/pkg/logger"
	"github.com/mintworks/releasekit/workspace"
)

const testAddr = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"

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

	assert.Equal(t, "registry", cmd.Use)

	uses := make([]string, 0, len(cmd.Commands()))
	for _, sc := range cmd.Commands() {
		uses = append(uses, sc.Name())
	}
	assert.ElementsMatch(t,
		[]string{"list", "get", "set", "remove", "validate", "merge", "restore", "backups", "export"},
		uses)
}

func TestSet_GetList(t *testing.T) {
	t.Parallel()

	root, workdir := newTestRoot(t)

	out, err := execute(root, workdir, "registry", "set", "asset_token", testAddr, "--network", "test")
	require.NoError(t, err)
	assert.Contains(t, out, "Set asset_token on test (backup ")

	out, err = execute(root, workdir, "registry", "get", "asset_token", "--network", "test")
	require.NoError(t, err)
	assert.Contains(t, out, testAddr)

	out, err = execute(root, workdir, "registry", "list", "--network", "test")
	require.NoError(t, err)
	assert.Contains(t, out, "asset_token="+testAddr)
}

func TestSet_InvalidIdentifier(t *testing.T) {
	t.Parallel()

	root, workdir := newTestRoot(t)

	_, err := execute(root, workdir, "registry", "set", "asset_token", "bogus", "--network", "main")
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	root, workdir := newTestRoot(t)

	_, err := execute(root, workdir, "registry", "set", "router", testAddr, "--network", "test")
	require.NoError(t, err)

	out, err := execute(root, workdir, "registry", "validate", "--network", "test")
	require.NoError(t, err)
	assert.Contains(t, out, "valid")
}

func TestRestore_RoundTrip(t *testing.T) {
	t.Parallel()

	root, workdir := newTestRoot(t)

	_, err := execute(root, workdir, "registry", "set", "router", testAddr, "--network", "dev")
	require.NoError(t, err)
	_, err = execute(root, workdir, "registry", "remove", "router", "--network", "dev")
	require.NoError(t, err)

	// The second backup captured the state after set, before remove.
	backups, err := execute(root, workdir, "registry", "backups", "--network", "dev")
	require.NoError(t, err)
	ids := idColumn(backups)
	require.Len(t, ids, 2)

	out, err := execute(root, workdir, "registry", "restore", ids[1], "--network", "dev")
	require.NoError(t, err)
	assert.Contains(t, out, "Restored dev from backup "+ids[1])

	out, err = execute(root, workdir, "registry", "get", "router", "--network", "dev")
	require.NoError(t, err)
	assert.Contains(t, out, testAddr)
}

func TestExport_ToFile(t *testing.T) {
	t.Parallel()

	root, workdir := newTestRoot(t)

	_, err := execute(root, workdir, "registry", "set", "router", testAddr, "--network", "test")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "registry.env")
	out, err := execute(root, workdir,
		"registry", "export", "--network", "test", "--format", "key-value", "--out", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported test registry to "+path)

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(contents), "router="+testAddr)
}

func TestNetworkFlagRequired(t *testing.T) {
	t.Parallel()

	root, workdir := newTestRoot(t)

	_, err := execute(root, workdir, "registry", "list")
	require.ErrorContains(t, err, "required flag")
}

// idColumn extracts the first column of each output line.
func idColumn(out string) []string {
	var ids []string
	for _, line := range bytes.Split([]byte(out), []byte("\n")) {
		fields := bytes.Fields(line)
		if len(fields) > 0 {
			ids = append(ids, string(fields[0]))
		}
	}

	return ids
}
