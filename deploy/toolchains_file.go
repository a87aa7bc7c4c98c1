package deploy

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mintworks/releasekit/pkg/logger"
	"github.com/mintworks/releasekit/version"
)

// ToolchainsFile maps each component to the external commands driving its
// build, test and deploy steps. It is the on-disk form of the toolchain
// wiring, kept next to the other workspace documents.
type ToolchainsFile map[version.Component]ExecToolchainConfig

// LoadToolchainsFile reads and validates a toolchains document. Component
// names outside the known set are rejected rather than silently ignored.
func LoadToolchainsFile(path string) (ToolchainsFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read toolchains file: %w", err)
	}

	var tf ToolchainsFile
	if err := yaml.Unmarshal(raw, &tf); err != nil {
		return nil, fmt.Errorf("failed to parse toolchains file %s: %w", path, err)
	}

	for c := range tf {
		if _, err := version.ParseComponent(c.String()); err != nil {
			return nil, fmt.Errorf("toolchains file %s: %w", path, err)
		}
	}

	return tf, nil
}

// Toolchains instantiates an ExecToolchain per configured component.
func (tf ToolchainsFile) Toolchains(lggr logger.Logger) map[version.Component]Toolchain {
	toolchains := make(map[version.Component]Toolchain, len(tf))
	for c, cfg := range tf {
		toolchains[c] = NewExecToolchain(cfg, lggr)
	}

	return toolchains
}
