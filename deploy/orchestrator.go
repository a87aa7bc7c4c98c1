// Package deploy implements the deployment orchestrator: it sequences
// build, test, preflight, deploy and post-deploy validation across the
// product's components, honoring the fixed dependency order among on-chain
// artifacts and recording every run as a report artifact.
package deploy

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mintworks/releasekit/config"
	"github.com/mintworks/releasekit/pkg/logger"
	"github.com/mintworks/releasekit/registry"
	"github.com/mintworks/releasekit/version"
	"github.com/mintworks/releasekit/workspace"
)

// defaultStepTimeout bounds each blocking toolchain call. A timeout is a
// failed transition, never an indefinite hang.
const defaultStepTimeout = 10 * time.Minute

// deployOrder is the serialized deploy order across components: on-chain
// foundations first, then the backend that references them, then the frontend.
var deployOrder = []version.Component{
	version.ComponentContracts,
	version.ComponentBackend,
	version.ComponentFrontend,
}

// Orchestrator drives deployment runs. Builds and tests of independent
// components run concurrently; deploy calls are serialized. Registry and
// config mutations assume a single orchestrating process per environment.
type Orchestrator struct {
	ws         workspace.Workspace
	lggr       logger.Logger
	configs    *config.Store
	registry   *registry.Store
	versions   *version.Manager
	toolchains map[version.Component]Toolchain

	prober      Prober
	confirm     func(prompt string) bool
	stepTimeout time.Duration
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithProber overrides the health/reachability prober.
func WithProber(p Prober) Option {
	return func(o *Orchestrator) { o.prober = p }
}

// WithConfirm installs an interactive confirmation gate used for
// production-class deploys.
func WithConfirm(fn func(prompt string) bool) Option {
	return func(o *Orchestrator) { o.confirm = fn }
}

// WithStepTimeout overrides the per-step toolchain timeout.
func WithStepTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.stepTimeout = d }
}

// New creates an Orchestrator. Components without a toolchain entry are
// treated as unused and skipped.
func New(
	ws workspace.Workspace,
	lggr logger.Logger,
	configs *config.Store,
	reg *registry.Store,
	versions *version.Manager,
	toolchains map[version.Component]Toolchain,
	opts ...Option,
) *Orchestrator {
	o := &Orchestrator{
		ws:          ws,
		lggr:        logger.Named(lggr, "deploy"),
		configs:     configs,
		registry:    reg,
		versions:    versions,
		toolchains:  toolchains,
		prober:      NewProber(),
		stepTimeout: defaultStepTimeout,
	}
	for _, opt := range opts {
		opt(o)
	}

	return o
}

// DeployOptions controls one deployment run.
type DeployOptions struct {
	// Components restricts the run to the named components; empty deploys
	// every component with a configured toolchain.
	Components []version.Component

	// Artifacts restricts the contracts deploy to the named on-chain
	// artifacts; empty deploys all of them in dependency order.
	Artifacts []string

	// DryRun builds and tests but issues no deploy calls and mutates nothing.
	DryRun bool

	// Force bypasses the interactive production confirmation gate.
	Force bool
}

// Deploy executes a full deployment run against the environment. The returned
// Run is always non-nil once orchestration started; on failure it carries the
// per-component failure reasons and the last-known-good backup id.
func (o *Orchestrator) Deploy(ctx context.Context, env config.Environment, opts DeployOptions) (*Run, error) {
	// The version manifest and config document are consulted before anything
	// is built or deployed.
	doc, err := o.configs.Load(env)
	if err != nil {
		return nil, err
	}
	if res, err := o.configs.Validate(env); err != nil {
		return nil, err
	} else if !res.Valid() {
		return nil, fmt.Errorf("config for %s invalid: %v: %w", env, res.Errors, config.ErrInvalidConfig)
	}

	compat, err := o.versions.CheckCompatibility()
	if err != nil {
		return nil, err
	}
	if !compat.Compatible {
		return nil, fmt.Errorf("per-component versions %v: %w", compat.PerComponent, ErrIncompatibleVersions)
	}

	network, err := registry.ParseNetwork(doc.Contracts.Network)
	if err != nil {
		return nil, err
	}

	components, err := o.selectComponents(opts.Components)
	if err != nil {
		return nil, err
	}

	run := NewRun(env, components, opts.DryRun)
	run.LastBackupID = o.registry.LastBackupID(network)
	o.lggr.Infow("Deployment run started",
		"run", run.ID, "environment", env, "components", components, "dry_run", opts.DryRun)

	artifacts, err := o.buildAndTest(ctx, run)
	if err != nil {
		return o.finish(run, err)
	}

	if err := o.checkCancelled(ctx, run, "before preflight"); err != nil {
		return o.finish(run, err)
	}

	if err := o.preflight(ctx, run, doc, artifacts, opts.Force); err != nil {
		o.failRemaining(run, err)

		return o.finish(run, err)
	}

	if err := o.deployAll(ctx, run, doc, network, artifacts, opts.Artifacts); err != nil {
		return o.finish(run, err)
	}

	o.postDeployValidate(ctx, run, doc, network)

	return o.finish(run, nil)
}

// selectComponents resolves the requested component set. Explicitly requested
// components must have a toolchain; with no request, components without a
// toolchain are simply unused.
func (o *Orchestrator) selectComponents(requested []version.Component) ([]version.Component, error) {
	if len(requested) == 0 {
		var components []version.Component
		for _, c := range deployOrder {
			if _, ok := o.toolchains[c]; ok {
				components = append(components, c)
			}
		}
		if len(components) == 0 {
			return nil, errors.New("no toolchains configured")
		}

		return components, nil
	}

	// Repeating a component on the command line is harmless; deploy it once.
	unique := make([]version.Component, 0, len(requested))
	seen := make(map[version.Component]struct{}, len(requested))
	for _, r := range requested {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		unique = append(unique, r)
	}

	components := make([]version.Component, 0, len(unique))
	for _, c := range deployOrder {
		for _, r := range unique {
			if c != r {
				continue
			}
			if _, ok := o.toolchains[c]; !ok {
				return nil, fmt.Errorf("no toolchain configured for component %s", c)
			}
			components = append(components, c)
		}
	}
	if len(components) != len(unique) {
		return nil, fmt.Errorf("unknown component in %v", requested)
	}

	return components, nil
}

// buildAndTest builds and tests every component concurrently and returns the
// produced artifact paths. The first failure cancels the remaining work.
func (o *Orchestrator) buildAndTest(ctx context.Context, run *Run) (map[version.Component]string, error) {
	var (
		mu        sync.Mutex
		artifacts = make(map[version.Component]string, len(run.Components))
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, c := range run.Components {
		g.Go(func() error {
			tc := o.toolchains[c]

			buildRes, err := o.timedBuild(gctx, tc, run.Environment)
			if err != nil {
				err = fmt.Errorf("build %s: %w", c, err)
				mu.Lock()
				run.fail(c, err)
				mu.Unlock()

				return err
			}
			mu.Lock()
			run.transition(c, StatusBuilt)
			artifacts[c] = buildRes.ArtifactPath
			mu.Unlock()

			if _, err := o.timedTest(gctx, tc, run.Environment); err != nil {
				err = fmt.Errorf("test %s: %w", c, err)
				mu.Lock()
				run.fail(c, err)
				mu.Unlock()

				return err
			}
			mu.Lock()
			run.transition(c, StatusTested)
			mu.Unlock()

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		o.failRemaining(run, fmt.Errorf("aborted: %w", err))

		return nil, err
	}

	return artifacts, nil
}

// deployAll issues the deploy calls serially in dependency order.
func (o *Orchestrator) deployAll(
	ctx context.Context,
	run *Run,
	doc config.Document,
	network registry.Network,
	artifacts map[version.Component]string,
	requestedArtifacts []string,
) error {
	for _, c := range run.Components {
		if err := o.checkCancelled(ctx, run, "between deploys"); err != nil {
			return err
		}

		var err error
		if c == version.ComponentContracts {
			err = o.deployContracts(ctx, run, doc, network, artifacts[c], requestedArtifacts)
		} else {
			err = o.deployComponent(ctx, run, doc, c, artifacts[c])
		}
		if err != nil {
			run.fail(c, err)
			o.failRemaining(run, fmt.Errorf("aborted: deploy %s failed", c))

			return err
		}
		run.transition(c, StatusDeployed)
	}

	return nil
}

// deployContracts deploys the on-chain artifacts in dependency order,
// recording each deployed identifier in the artifact registry. The dependency
// check runs before any toolchain call, so a violation has no side effects.
func (o *Orchestrator) deployContracts(
	ctx context.Context,
	run *Run,
	doc config.Document,
	network registry.Network,
	artifactPath string,
	requested []string,
) error {
	sequence, err := normalizeArtifactSequence(requested)
	if err != nil {
		return err
	}

	existing, err := o.registry.List(network)
	if err != nil {
		return err
	}
	deployed := make(map[string]struct{}, len(existing))
	for name := range existing {
		deployed[name] = struct{}{}
	}

	if err := ValidateArtifactOrder(sequence, deployed); err != nil {
		return err
	}

	tc := o.toolchains[version.ComponentContracts]
	for _, name := range sequence {
		if err := o.checkCancelled(ctx, run, "between contract deploys"); err != nil {
			return err
		}

		if run.DryRun {
			o.lggr.Infow("Dry run: skipping contract deploy", "artifact", name, "network", network)
			continue
		}

		res, err := o.timedDeploy(ctx, tc, DeployRequest{
			ArtifactPath: artifactPath,
			ArtifactName: name,
			Network:      network.String(),
			Account:      doc.Contracts.DeployAccount,
		})
		if err != nil {
			return fmt.Errorf("deploy %s: %w", name, err)
		}

		backupID, err := o.registry.Set(network, name, res.Identifier)
		if err != nil {
			return fmt.Errorf("register %s: %w", name, err)
		}
		run.LastBackupID = backupID
		run.Identifiers[name] = res.Identifier

		o.lggr.Infow("Contract deployed",
			"artifact", name, "network", network, "identifier", res.Identifier, "backup", backupID)
	}

	return nil
}

// deployComponent deploys a single off-chain component. Its identifier is
// recorded on the run report; only on-chain artifacts live in the registry.
func (o *Orchestrator) deployComponent(
	ctx context.Context,
	run *Run,
	doc config.Document,
	c version.Component,
	artifactPath string,
) error {
	if run.DryRun {
		o.lggr.Infow("Dry run: skipping deploy", "component", c)

		return nil
	}

	res, err := o.timedDeploy(ctx, o.toolchains[c], DeployRequest{
		ArtifactPath: artifactPath,
		Network:      doc.Contracts.Network,
		Account:      doc.Contracts.DeployAccount,
	})
	if err != nil {
		return err
	}
	run.Identifiers[c.String()] = res.Identifier

	return nil
}

// postDeployValidate health-checks every deployed component. Failures are
// warnings on the run, not errors: a control-plane hiccup should not undo an
// otherwise successful deploy. They are surfaced prominently in the report.
func (o *Orchestrator) postDeployValidate(
	ctx context.Context,
	run *Run,
	doc config.Document,
	network registry.Network,
) {
	for _, c := range run.Components {
		if run.Statuses[c] != StatusDeployed {
			continue
		}

		if !run.DryRun {
			switch c {
			case version.ComponentFrontend:
				if err := o.prober.Probe(ctx, doc.Frontend.PublicURL); err != nil {
					run.warn("frontend health check failed: %v", err)
				}
			case version.ComponentBackend:
				if err := o.prober.Probe(ctx, doc.Backend.PublicURL); err != nil {
					run.warn("backend health check failed: %v", err)
				}
			case version.ComponentContracts:
				res, err := o.registry.Validate(network)
				if err != nil {
					run.warn("registry validation failed: %v", err)
				} else if !res.Valid {
					run.warn("registry invalid after deploy: %v", res.Errors)
				}
			}
		}

		run.transition(c, StatusValidated)
	}
}

// checkCancelled honors cancellation between stages only; a cancel mid-deploy
// is never observed because deploy calls are not interrupted once issued.
func (o *Orchestrator) checkCancelled(ctx context.Context, run *Run, stage string) error {
	if err := ctx.Err(); err != nil {
		err = fmt.Errorf("run cancelled %s: %w", stage, err)
		o.failRemaining(run, err)

		return err
	}

	return nil
}

// failRemaining marks every non-terminal component failed.
func (o *Orchestrator) failRemaining(run *Run, err error) {
	for _, c := range run.Components {
		if !run.Statuses[c].Terminal() {
			run.fail(c, err)
		}
	}
}

// finish completes and persists the run, attaching the last-known-good backup
// id to any failure so a human can restore without re-deriving it.
func (o *Orchestrator) finish(run *Run, cause error) (*Run, error) {
	run.complete()
	if err := run.persist(o.ws); err != nil {
		o.lggr.Errorw("Failed to persist run report", "run", run.ID, "error", err)
	}

	if cause != nil {
		o.lggr.Errorw("Deployment run failed",
			"run", run.ID, "error", cause, "last_backup", run.LastBackupID)
		if run.LastBackupID != "" {
			return run, fmt.Errorf("%w (last-known-good backup: %s)", cause, run.LastBackupID)
		}

		return run, cause
	}

	o.lggr.Infow("Deployment run complete", "run", run.ID, "warnings", len(run.Warnings))

	return run, nil
}

// timedBuild, timedTest and timedDeploy apply the per-step timeout and map a
// deadline to ErrTimeoutExceeded.

func (o *Orchestrator) timedBuild(ctx context.Context, tc Toolchain, env config.Environment) (BuildResult, error) {
	stepCtx, cancel := context.WithTimeout(ctx, o.stepTimeout)
	defer cancel()

	res, err := tc.Build(stepCtx, env)

	return res, o.mapTimeout(stepCtx, err)
}

func (o *Orchestrator) timedTest(ctx context.Context, tc Toolchain, env config.Environment) (TestResult, error) {
	stepCtx, cancel := context.WithTimeout(ctx, o.stepTimeout)
	defer cancel()

	res, err := tc.Test(stepCtx, env)

	return res, o.mapTimeout(stepCtx, err)
}

func (o *Orchestrator) timedDeploy(ctx context.Context, tc Toolchain, req DeployRequest) (DeployResult, error) {
	stepCtx, cancel := context.WithTimeout(ctx, o.stepTimeout)
	defer cancel()

	res, err := tc.Deploy(stepCtx, req)

	return res, o.mapTimeout(stepCtx, err)
}

func (o *Orchestrator) mapTimeout(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrTimeoutExceeded) {
		return err
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%v: %w", err, ErrTimeoutExceeded)
	}

	return err
}
