package deploy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mintworks/releasekit/pkg/logger"
	"github.com/mintworks/releasekit/version"
)

func Test_LoadToolchainsFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "toolchains.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
frontend:
  build:
    argv: ["npm", "run", "build"]
  test:
    argv: ["npm", "test"]
  deploy:
    argv: ["sh", "deploy.sh", "{env}"]
  artifact_path: dist/frontend.tar.gz
contracts:
  build:
    argv: ["forge", "build"]
    env:
      FOUNDRY_PROFILE: release
  deploy:
    argv: ["forge", "create", "{name}", "--network", "{network}"]
  artifact_path: out/contracts.json
`), 0o644))

	tf, err := LoadToolchainsFile(path)
	require.NoError(t, err)
	require.Len(t, tf, 2)

	assert.Equal(t, []string{"npm", "run", "build"}, tf[version.ComponentFrontend].Build.Argv)
	assert.Equal(t, "dist/frontend.tar.gz", tf[version.ComponentFrontend].ArtifactPath)
	assert.Equal(t, "release", tf[version.ComponentContracts].Build.Env["FOUNDRY_PROFILE"])

	toolchains := tf.Toolchains(logger.Test(t))
	require.Len(t, toolchains, 2)
	assert.Contains(t, toolchains, version.ComponentContracts)
}

func Test_LoadToolchainsFile_UnknownComponent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "toolchains.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database:\n  artifact_path: db.dump\n"), 0o644))

	_, err := LoadToolchainsFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database")
}

func Test_LoadToolchainsFile_Missing(t *testing.T) {
	t.Parallel()

	_, err := LoadToolchainsFile(filepath.Join(t.TempDir(), "toolchains.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
