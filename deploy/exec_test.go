package deploy

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mintworks/releasekit/config"
	"github.com/mintworks/releasekit/pkg/logger"
)

func Test_ExecToolchain_Build(t *testing.T) {
	t.Parallel()

	artifact := filepath.Join(t.TempDir(), "bundle.tar")
	require.NoError(t, os.WriteFile(artifact, []byte("bundle"), 0o644))

	tc := NewExecToolchain(ExecToolchainConfig{
		Build:        CommandSpec{Argv: []string{"sh", "-c", "echo building {env}"}},
		ArtifactPath: artifact,
	}, logger.Test(t))

	res, err := tc.Build(t.Context(), config.EnvDev)
	require.NoError(t, err)
	assert.Equal(t, artifact, res.ArtifactPath)
	assert.Contains(t, res.Output, "building dev")
}

func Test_ExecToolchain_EnvExtendsParent(t *testing.T) {
	// No t.Parallel: t.Setenv mutates the process environment.
	t.Setenv("RELEASEKIT_DEPLOY_ACCOUNT", "deployer-from-parent")

	tc := NewExecToolchain(ExecToolchainConfig{
		Build: CommandSpec{
			Argv: []string{"sh", "-c", `echo "account=$RELEASEKIT_DEPLOY_ACCOUNT extra=$EXTRA"`},
			Env:  map[string]string{"EXTRA": "1"},
		},
	}, logger.Test(t))

	res, err := tc.Build(t.Context(), config.EnvDev)
	require.NoError(t, err)
	assert.Contains(t, res.Output, "account=deployer-from-parent", "parent environment is inherited")
	assert.Contains(t, res.Output, "extra=1", "configured entries are applied on top")
}

func Test_ExecToolchain_NonZeroExit(t *testing.T) {
	t.Parallel()

	tc := NewExecToolchain(ExecToolchainConfig{
		Test: CommandSpec{Argv: []string{"sh", "-c", "echo boom >&2; exit 3"}},
	}, logger.Test(t))

	_, err := tc.Test(t.Context(), config.EnvDev)
	require.ErrorIs(t, err, ErrToolchainFailure)
	assert.Contains(t, err.Error(), "exited 3")
	assert.Contains(t, err.Error(), "boom", "captured output is surfaced")
}

func Test_ExecToolchain_NoCommand(t *testing.T) {
	t.Parallel()

	tc := NewExecToolchain(ExecToolchainConfig{}, logger.Test(t))

	_, err := tc.Build(t.Context(), config.EnvDev)
	require.ErrorIs(t, err, ErrToolchainFailure)
}

func Test_ExecToolchain_Timeout(t *testing.T) {
	t.Parallel()

	tc := NewExecToolchain(ExecToolchainConfig{
		Deploy: CommandSpec{Argv: []string{"sleep", "10"}},
	}, logger.Test(t))

	ctx, cancel := context.WithTimeout(t.Context(), 100*time.Millisecond)
	defer cancel()

	_, err := tc.Deploy(ctx, DeployRequest{Network: "dev"})
	require.ErrorIs(t, err, ErrTimeoutExceeded)
}

func Test_ExecToolchain_Deploy_ParsesIdentifier(t *testing.T) {
	t.Parallel()

	tc := NewExecToolchain(ExecToolchainConfig{
		Deploy: CommandSpec{Argv: []string{"sh", "-c", "echo deployed {name} to {network}; echo " + testAddr}},
	}, logger.Test(t))

	res, err := tc.Deploy(t.Context(), DeployRequest{
		ArtifactName: "asset_token",
		Network:      "test",
		Account:      "deployer",
	})
	require.NoError(t, err)
	assert.Equal(t, testAddr, res.Identifier)
	assert.Contains(t, res.Output, "deployed asset_token to test")
}
