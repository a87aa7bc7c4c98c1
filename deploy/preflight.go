package deploy

import (
	"context"
	"fmt"
	"net/url"
	"os"

	"github.com/mintworks/releasekit/config"
	"github.com/mintworks/releasekit/version"
)

// preflight runs every pre-deploy check. All checks must pass before any
// deploy stage begins; a failure here guarantees zero external side effects.
func (o *Orchestrator) preflight(
	ctx context.Context,
	run *Run,
	doc config.Document,
	artifacts map[version.Component]string,
	force bool,
) error {
	// Build artifacts exist and are non-empty.
	for c, path := range artifacts {
		if run.DryRun && path == "" {
			continue
		}
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("artifact for %s at %q: %v: %w", c, path, err, ErrPreflightFailed)
		}
		if info.Size() == 0 {
			return fmt.Errorf("artifact for %s at %q is empty: %w", c, path, ErrPreflightFailed)
		}
	}

	// A dry run issues no deploy calls, so reachability and the confirmation
	// gate do not apply.
	if run.DryRun {
		return nil
	}

	// Non-local targets must be reachable before anything is deployed.
	if run.Environment != config.EnvDev {
		target := dialTarget(doc.Backend.PublicURL)
		if target != "" {
			if err := o.prober.Probe(ctx, target); err != nil {
				return fmt.Errorf("deploy target %s unreachable: %v: %w", target, err, ErrPreflightFailed)
			}
		}
	}

	// Irreversible-operation guard: production deploys refuse to proceed
	// non-interactively unless forced.
	if run.Environment.IsProductionClass() && !force {
		if o.confirm == nil {
			return fmt.Errorf("refusing non-interactive prod deploy without --force: %w",
				ErrIrreversibleOperationBlocked)
		}
		prompt := fmt.Sprintf("Deploy to %s? This cannot be undone automatically.", run.Environment)
		if !o.confirm(prompt) {
			return fmt.Errorf("prod deploy not confirmed: %w", ErrIrreversibleOperationBlocked)
		}
	}

	return nil
}

// dialTarget converts a public URL to a host:port dial target.
func dialTarget(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}
	if u.Port() != "" {
		return u.Host
	}
	switch u.Scheme {
	case "https":
		return u.Host + ":443"
	case "http":
		return u.Host + ":80"
	}

	return u.Host
}
