package commands

import (
	"bytes"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mintworks/releasekit/pkg/logger"
	"github.com/mintworks/releasekit/workspace"
)

func TestNewRootCommand_Structure(t *testing.T) {
	t.Parallel()

	root, err := NewRootCommand(logger.Nop(), DeployConfig{})
	require.NoError(t, err)

	assert.Equal(t, "releasekit", root.Use)
	require.NotNil(t, root.PersistentFlags().Lookup("workdir"))

	uses := make([]string, 0, len(root.Commands()))
	for _, sc := range root.Commands() {
		uses = append(uses, sc.Name())
	}
	assert.Subset(t, uses,
		[]string{"init", "version", "registry", "config", "deploy", "validate-release"})
}

func TestInit_ScaffoldsWorkspace(t *testing.T) {
	t.Parallel()

	root, err := NewRootCommand(logger.Test(t), DeployConfig{})
	require.NoError(t, err)

	workdir := t.TempDir()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs([]string{"init", "--workdir", workdir})
	require.NoError(t, root.Execute())

	assert.Contains(t, buf.String(), "Initialized workspace at "+workdir)

	ws := workspace.New(workdir)
	for _, dir := range []string{ws.RegistryDirPath(), ws.ConfigDirPath(), ws.ReportsDirPath()} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		give error
		want int
	}{
		{name: "success", give: nil, want: 0},
		{name: "flag error", give: &UsageError{err: errors.New("unknown flag: --frobnicate")}, want: 2},
		{name: "unknown command", give: errors.New(`unknown command "depoy" for "releasekit"`), want: 2},
		{name: "missing required flag", give: errors.New(`required flag(s) "network" not set`), want: 2},
		{name: "arity", give: errors.New("accepts 1 arg(s), received 0"), want: 2},
		{name: "business failure", give: errors.New("release validation failed for prod"), want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, ExitCode(tt.give))
		})
	}
}

func TestExecute_UnknownCommand(t *testing.T) {
	t.Parallel()

	root, err := NewRootCommand(logger.Nop(), DeployConfig{})
	require.NoError(t, err)

	root.SetOut(new(bytes.Buffer))
	root.SetErr(new(bytes.Buffer))
	root.SetArgs([]string{"frobnicate"})

	execErr := root.Execute()
	require.Error(t, execErr)
	assert.Equal(t, 2, ExitCode(execErr))
}

func TestExecute_UnknownFlag(t *testing.T) {
	t.Parallel()

	root, err := NewRootCommand(logger.Nop(), DeployConfig{})
	require.NoError(t, err)

	root.SetOut(new(bytes.Buffer))
	root.SetErr(new(bytes.Buffer))
	root.SetArgs([]string{"version", "show", "--frobnicate"})

	execErr := root.Execute()
	require.Error(t, execErr)

	var usage *UsageError
	assert.ErrorAs(t, execErr, &usage)
	assert.Equal(t, 2, ExitCode(execErr))
}
