package deploy

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/mintworks/releasekit/config"
	"github.com/mintworks/releasekit/pkg/logger"
)

// CommandSpec describes one toolchain step as an argv. The placeholders
// {env}, {network}, {account}, {artifact} and {name} are substituted per
// invocation.
type CommandSpec struct {
	Argv []string          `mapstructure:"argv" yaml:"argv"`
	Env  map[string]string `mapstructure:"env" yaml:"env,omitempty"`
}

// ExecToolchainConfig wires the build, test and deploy commands for one
// component.
type ExecToolchainConfig struct {
	Build  CommandSpec `mapstructure:"build" yaml:"build"`
	Test   CommandSpec `mapstructure:"test" yaml:"test"`
	Deploy CommandSpec `mapstructure:"deploy" yaml:"deploy"`

	// ArtifactPath is where the build step leaves its artifact.
	ArtifactPath string `mapstructure:"artifact_path" yaml:"artifact_path"`
}

// ExecToolchain invokes a component's build tooling as subprocesses. It maps
// exit codes to the error taxonomy at this boundary: non-zero exit becomes
// ErrToolchainFailure with the captured output attached, and a context
// deadline becomes ErrTimeoutExceeded. Raw exit codes never propagate past
// this type.
type ExecToolchain struct {
	cfg  ExecToolchainConfig
	lggr logger.Logger
}

// NewExecToolchain creates an ExecToolchain from its command configuration.
func NewExecToolchain(cfg ExecToolchainConfig, lggr logger.Logger) *ExecToolchain {
	return &ExecToolchain{cfg: cfg, lggr: logger.Named(lggr, "toolchain")}
}

func (t *ExecToolchain) Build(ctx context.Context, env config.Environment) (BuildResult, error) {
	out, err := t.run(ctx, t.cfg.Build, map[string]string{"{env}": env.String()})
	if err != nil {
		return BuildResult{}, err
	}

	return BuildResult{ArtifactPath: t.cfg.ArtifactPath, Output: out}, nil
}

func (t *ExecToolchain) Test(ctx context.Context, env config.Environment) (TestResult, error) {
	out, err := t.run(ctx, t.cfg.Test, map[string]string{"{env}": env.String()})
	if err != nil {
		return TestResult{}, err
	}

	return TestResult{Report: out}, nil
}

func (t *ExecToolchain) Deploy(ctx context.Context, req DeployRequest) (DeployResult, error) {
	out, err := t.run(ctx, t.cfg.Deploy, map[string]string{
		"{env}":      req.Network,
		"{network}":  req.Network,
		"{account}":  req.Account,
		"{artifact}": req.ArtifactPath,
		"{name}":     req.ArtifactName,
	})
	if err != nil {
		return DeployResult{}, err
	}

	// The deploy command's last output line is the deployed identifier.
	lines := strings.Fields(strings.TrimSpace(out))
	identifier := ""
	if len(lines) > 0 {
		identifier = lines[len(lines)-1]
	}

	return DeployResult{Identifier: identifier, Output: out}, nil
}

// run executes one command spec, substituting placeholders, and returns the
// combined output.
func (t *ExecToolchain) run(ctx context.Context, spec CommandSpec, subst map[string]string) (string, error) {
	if len(spec.Argv) == 0 {
		return "", fmt.Errorf("no command configured: %w", ErrToolchainFailure)
	}

	argv := make([]string, len(spec.Argv))
	for i, arg := range spec.Argv {
		for k, v := range subst {
			arg = strings.ReplaceAll(arg, k, v)
		}
		argv[i] = arg
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	if len(spec.Env) > 0 {
		// Configured entries extend the parent environment rather than
		// replacing it; toolchains still need PATH and the ambient deploy
		// credentials.
		cmd.Env = os.Environ()
		for k, v := range spec.Env {
			cmd.Env = append(cmd.Env, k+"="+v)
		}
	}

	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	t.lggr.Debugw("Running toolchain command", "argv", argv)
	err := cmd.Run()

	// Distinguish a timeout from an ordinary failure before looking at the
	// exit code; CommandContext kills the process on deadline, which also
	// yields a non-zero exit.
	if ctxErr := ctx.Err(); errors.Is(ctxErr, context.DeadlineExceeded) {
		return buf.String(), fmt.Errorf("%s: %w", argv[0], ErrTimeoutExceeded)
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return buf.String(), fmt.Errorf("%s exited %d: %s: %w",
				argv[0], exitErr.ExitCode(), strings.TrimSpace(buf.String()), ErrToolchainFailure)
		}

		return buf.String(), fmt.Errorf("%s: %v: %w", argv[0], err, ErrToolchainFailure)
	}

	return buf.String(), nil
}
