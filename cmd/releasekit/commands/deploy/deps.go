package deploy

import (
	deployer "github.com/mintworks/releasekit/deploy"
)

// LoadToolchainsFunc loads the per-component toolchain configuration.
type LoadToolchainsFunc func(path string) (deployer.ToolchainsFile, error)

// Deps holds the injectable dependencies for the deploy command.
// All fields are optional; nil values will use production defaults.
type Deps struct {
	// LoadToolchains loads the toolchains document.
	// Default: deploy.LoadToolchainsFile
	LoadToolchains LoadToolchainsFunc

	// Prober overrides the reachability prober used for preflight and
	// post-deploy health checks. Default: the network prober.
	Prober deployer.Prober
}

// applyDefaults fills in nil dependencies with production defaults.
func (d *Deps) applyDefaults() {
	if d.LoadToolchains == nil {
		d.LoadToolchains = deployer.LoadToolchainsFile
	}
}
