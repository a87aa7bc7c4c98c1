// Package release gates a release behind a set of category checks. Each
// category is independently invocable and produces a pass/warn/fail result;
// the aggregate judgment blocks only on code-quality and
// deployment-readiness failures, while security and performance findings are
// downgraded to warnings.
package release

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mintworks/releasekit/config"
	"github.com/mintworks/releasekit/internal/jsonutils"
	"github.com/mintworks/releasekit/pkg/logger"
	"github.com/mintworks/releasekit/registry"
	"github.com/mintworks/releasekit/version"
	"github.com/mintworks/releasekit/workspace"
)

// ErrUnknownCategory is returned when a category name does not parse.
var ErrUnknownCategory = errors.New("unknown check category")

// Category identifies one release check.
type Category string

const (
	CategoryCodeQuality Category = "code-quality"
	CategoryTest        Category = "test"
	CategorySecurity    Category = "security"
	CategoryPerformance Category = "performance"
	CategoryReadiness   Category = "deployment-readiness"
)

// Categories returns all check categories in report order.
func Categories() []Category {
	return []Category{
		CategoryCodeQuality, CategoryTest, CategorySecurity,
		CategoryPerformance, CategoryReadiness,
	}
}

func (c Category) String() string { return string(c) }

// Blocking reports whether a failure in this category blocks the release.
// Security and performance findings never block; they surface as warnings.
func (c Category) Blocking() bool {
	return c == CategoryCodeQuality || c == CategoryReadiness
}

// ParseCategory parses a category name.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories() {
		if string(c) == s {
			return c, nil
		}
	}

	return "", fmt.Errorf("%q: %w", s, ErrUnknownCategory)
}

// Outcome is the per-category verdict.
type Outcome string

const (
	OutcomePass Outcome = "pass"
	OutcomeWarn Outcome = "warn"
	OutcomeFail Outcome = "fail"
)

// CheckResult is the verdict for one category together with its findings.
type CheckResult struct {
	Category Category `json:"category"`
	Outcome  Outcome  `json:"outcome"`
	Findings []string `json:"findings,omitempty"`
}

// Report aggregates all category results into one release judgment.
type Report struct {
	ID            string        `json:"id"`
	Environment   string        `json:"environment"`
	TargetVersion string        `json:"target_version,omitempty"`
	GeneratedAt   time.Time     `json:"generated_at"`
	Results       []CheckResult `json:"results"`
	Warnings      []string      `json:"warnings,omitempty"`
	Passed        bool          `json:"passed"`
}

// Commands configures the external tooling the validator shells out to. An
// empty argv leaves the corresponding check to its built-in rules.
type Commands struct {
	Lint  []string `mapstructure:"lint" yaml:"lint,omitempty"`
	Test  []string `mapstructure:"test" yaml:"test,omitempty"`
	Bench []string `mapstructure:"bench" yaml:"bench,omitempty"`
}

// Validator runs the release checks against one workspace.
type Validator struct {
	ws       workspace.Workspace
	lggr     logger.Logger
	versions *version.Manager
	configs  *config.Store
	registry *registry.Store
	commands Commands
	now      func() time.Time
}

// ValidatorOption customizes a Validator.
type ValidatorOption func(*Validator)

// WithCommands wires external lint, test and benchmark commands into the
// code-quality, test and performance checks.
func WithCommands(cmds Commands) ValidatorOption {
	return func(v *Validator) { v.commands = cmds }
}

// NewValidator creates a Validator over the given subsystems.
func NewValidator(
	ws workspace.Workspace,
	lggr logger.Logger,
	versions *version.Manager,
	configs *config.Store,
	reg *registry.Store,
	opts ...ValidatorOption,
) *Validator {
	v := &Validator{
		ws:       ws,
		lggr:     logger.Named(lggr, "release"),
		versions: versions,
		configs:  configs,
		registry: reg,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}

	return v
}

// Check runs a single category and returns its raw result. The downgrade
// policy for non-blocking categories applies only during aggregation.
func (v *Validator) Check(ctx context.Context, category Category, env config.Environment, targetVersion string) (CheckResult, error) {
	switch category {
	case CategoryCodeQuality:
		return v.checkCodeQuality(ctx)
	case CategoryTest:
		return v.checkTest(ctx)
	case CategorySecurity:
		return v.checkSecurity(env)
	case CategoryPerformance:
		return v.checkPerformance(ctx)
	case CategoryReadiness:
		return v.checkReadiness(env, targetVersion)
	default:
		return CheckResult{}, fmt.Errorf("%q: %w", category, ErrUnknownCategory)
	}
}

// Validate runs every category, applies the blocking policy and persists the
// aggregate report under the workspace reports directory.
func (v *Validator) Validate(ctx context.Context, env config.Environment, targetVersion string) (Report, error) {
	report := Report{
		ID:            uuid.New().String(),
		Environment:   env.String(),
		TargetVersion: targetVersion,
		GeneratedAt:   v.now().UTC(),
		Passed:        true,
	}

	for _, category := range Categories() {
		res, err := v.Check(ctx, category, env, targetVersion)
		if err != nil {
			return Report{}, fmt.Errorf("%s check: %w", category, err)
		}

		if res.Outcome == OutcomeFail {
			if category.Blocking() {
				report.Passed = false
			} else {
				// Non-critical findings are surfaced but never block.
				res.Outcome = OutcomeWarn
				for _, f := range res.Findings {
					report.Warnings = append(report.Warnings, fmt.Sprintf("%s: %s", category, f))
				}
			}
		}

		report.Results = append(report.Results, res)
	}

	path := v.ws.ReportFilePath("release-" + report.ID)
	if err := jsonutils.WriteFile(path, report); err != nil {
		return Report{}, fmt.Errorf("failed to persist release report: %w", err)
	}

	v.lggr.Infow("Release validation finished",
		"environment", env, "passed", report.Passed, "warnings", len(report.Warnings), "report", path)

	return report, nil
}

// checkCodeQuality verifies the version manifest is well formed and, when a
// lint command is configured, that it exits cleanly.
func (v *Validator) checkCodeQuality(ctx context.Context) (CheckResult, error) {
	res := CheckResult{Category: CategoryCodeQuality, Outcome: OutcomePass}

	for _, component := range version.Components() {
		if _, err := v.versions.Version(component); err != nil {
			res.Outcome = OutcomeFail
			res.Findings = append(res.Findings, fmt.Sprintf("version manifest: %v", err))
		}
	}

	if finding := v.runCommand(ctx, v.commands.Lint); finding != "" {
		res.Outcome = OutcomeFail
		res.Findings = append(res.Findings, finding)
	}

	return res, nil
}

// checkTest runs the configured test command. A missing command is a warning,
// not a pass: an untested release is worth flagging.
func (v *Validator) checkTest(ctx context.Context) (CheckResult, error) {
	res := CheckResult{Category: CategoryTest, Outcome: OutcomePass}

	if len(v.commands.Test) == 0 {
		res.Outcome = OutcomeWarn
		res.Findings = append(res.Findings, "no test command configured")

		return res, nil
	}

	if finding := v.runCommand(ctx, v.commands.Test); finding != "" {
		res.Outcome = OutcomeFail
		res.Findings = append(res.Findings, finding)
	}

	return res, nil
}

// checkSecurity reuses the configuration security scan for the environment.
func (v *Validator) checkSecurity(env config.Environment) (CheckResult, error) {
	res := CheckResult{Category: CategorySecurity, Outcome: OutcomePass}

	findings, err := v.configs.SecurityScan(env)
	if err != nil {
		if errors.Is(err, config.ErrNotFound) {
			res.Outcome = OutcomeFail
			res.Findings = append(res.Findings, fmt.Sprintf("no configuration for %s", env))

			return res, nil
		}

		return CheckResult{}, err
	}

	if len(findings) > 0 {
		res.Outcome = OutcomeFail
		res.Findings = findings
	}

	return res, nil
}

// checkPerformance runs the configured benchmark command when present.
func (v *Validator) checkPerformance(ctx context.Context) (CheckResult, error) {
	res := CheckResult{Category: CategoryPerformance, Outcome: OutcomePass}

	if len(v.commands.Bench) == 0 {
		res.Outcome = OutcomeWarn
		res.Findings = append(res.Findings, "no benchmark command configured")

		return res, nil
	}

	if finding := v.runCommand(ctx, v.commands.Bench); finding != "" {
		res.Outcome = OutcomeFail
		res.Findings = append(res.Findings, finding)
	}

	return res, nil
}

// checkReadiness runs the hard gate: configuration must exist and validate,
// component versions must be mutually compatible (and match the target
// version when one is requested), and the target network's registry must hold
// only well-formed entries.
func (v *Validator) checkReadiness(env config.Environment, targetVersion string) (CheckResult, error) {
	res := CheckResult{Category: CategoryReadiness, Outcome: OutcomePass}
	fail := func(format string, args ...any) {
		res.Outcome = OutcomeFail
		res.Findings = append(res.Findings, fmt.Sprintf(format, args...))
	}

	cfgRes, err := v.configs.Validate(env)
	if err != nil {
		if errors.Is(err, config.ErrNotFound) {
			fail("no configuration for %s", env)

			return res, nil
		}

		return CheckResult{}, err
	}
	for _, e := range cfgRes.Errors {
		fail("config: %s", e)
	}

	compat, err := v.versions.CheckCompatibility()
	if err != nil {
		return CheckResult{}, err
	}
	if !compat.Compatible {
		fail("component versions are not aligned: %v", compat.PerComponent)
	}

	if targetVersion != "" {
		for _, component := range version.Components() {
			current, err := v.versions.Version(component)
			if err != nil {
				fail("%s: %v", component, err)

				continue
			}
			if current.String() != targetVersion {
				fail("%s is %s, expected %s", component, current, targetVersion)
			}
		}
	}

	doc, err := v.configs.Load(env)
	if err == nil {
		if network, perr := registry.ParseNetwork(doc.Contracts.Network); perr == nil {
			regRes, rerr := v.registry.Validate(network)
			if rerr != nil {
				return CheckResult{}, rerr
			}
			for _, e := range regRes.Errors {
				fail("registry %s: %s", network, e)
			}
		}
	}

	return res, nil
}

// runCommand executes an external check command and returns a non-empty
// finding when the command fails. Command output is captured into the finding
// so the report is self-contained.
func (v *Validator) runCommand(ctx context.Context, argv []string) string {
	if len(argv) == 0 {
		return ""
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)

	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	v.lggr.Debugw("Running check command", "argv", argv)
	if err := cmd.Run(); err != nil {
		return fmt.Sprintf("%s failed: %v: %s", argv[0], err, strings.TrimSpace(buf.String()))
	}

	return ""
}
