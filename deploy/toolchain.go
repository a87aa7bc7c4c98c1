package deploy

import (
	"context"

	"github.com/mintworks/releasekit/config"
)

// BuildResult is the structured outcome of a toolchain build step.
type BuildResult struct {
	ArtifactPath string `json:"artifact_path"`
	Output       string `json:"output,omitempty"`
}

// TestResult is the structured outcome of a toolchain test step.
type TestResult struct {
	Report string `json:"report,omitempty"`
}

// DeployRequest describes one deploy call issued to a toolchain.
type DeployRequest struct {
	ArtifactPath string
	ArtifactName string // logical name; empty for single-artifact components
	Network      string
	Account      string
}

// DeployResult is the structured outcome of a toolchain deploy step.
type DeployResult struct {
	Identifier string `json:"identifier"`
	Output     string `json:"output,omitempty"`
}

// Toolchain is the external collaborator that builds, tests and deploys one
// component. Implementations invoke the component's opaque build tooling; the
// orchestrator only consumes exit codes, artifact paths and structured stdout.
// All methods must honor ctx cancellation and deadlines.
type Toolchain interface {
	Build(ctx context.Context, env config.Environment) (BuildResult, error)
	Test(ctx context.Context, env config.Environment) (TestResult, error)
	Deploy(ctx context.Context, req DeployRequest) (DeployResult, error)
}
