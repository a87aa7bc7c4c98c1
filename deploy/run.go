package deploy

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mintworks/releasekit/config"
	"github.com/mintworks/releasekit/internal/jsonutils"
	"github.com/mintworks/releasekit/version"
	"github.com/mintworks/releasekit/workspace"
)

// Status is the per-component stage within a deployment run.
type Status string

const (
	StatusPending   Status = "pending"
	StatusBuilt     Status = "built"
	StatusTested    Status = "tested"
	StatusDeployed  Status = "deployed"
	StatusValidated Status = "validated"
	StatusFailed    Status = "failed"
)

// Terminal reports whether the status is terminal.
func (s Status) Terminal() bool { return s == StatusValidated || s == StatusFailed }

// statusRank orders the happy path so transitions can be checked.
var statusRank = map[Status]int{
	StatusPending:   0,
	StatusBuilt:     1,
	StatusTested:    2,
	StatusDeployed:  3,
	StatusValidated: 4,
}

// Run records one deployment orchestration: the components attempted in order,
// the stage each one reached, warnings collected along the way and the
// last-known-good backup id for manual recovery. Once every component reaches
// a terminal state the run is immutable and persisted as a report artifact.
type Run struct {
	ID           string                          `json:"id"`
	Environment  config.Environment              `json:"environment"`
	Components   []version.Component             `json:"components_attempted"`
	Statuses     map[version.Component]Status    `json:"statuses"`
	Failures     map[version.Component]string    `json:"failures,omitempty"`
	Identifiers  map[string]string               `json:"identifiers,omitempty"`
	Warnings     []string                        `json:"warnings,omitempty"`
	LastBackupID string                          `json:"last_backup_id,omitempty"`
	DryRun       bool                            `json:"dry_run,omitempty"`
	StartedAt    time.Time                       `json:"started_at"`
	CompletedAt  *time.Time                      `json:"completed_at,omitempty"`
}

// NewRun creates a Run with every requested component pending.
func NewRun(env config.Environment, components []version.Component, dryRun bool) *Run {
	statuses := make(map[version.Component]Status, len(components))
	for _, c := range components {
		statuses[c] = StatusPending
	}

	return &Run{
		ID:          uuid.New().String(),
		Environment: env,
		Components:  components,
		Statuses:    statuses,
		Identifiers: map[string]string{},
		Failures:    map[version.Component]string{},
		DryRun:      dryRun,
		StartedAt:   time.Now().UTC(),
	}
}

// transition advances a component to next. A component already failed stays
// failed; moving backwards on the happy path is a programmer error.
func (r *Run) transition(c version.Component, next Status) {
	current := r.Statuses[c]
	if current == StatusFailed {
		return
	}
	if next != StatusFailed && statusRank[next] < statusRank[current] {
		panic(fmt.Sprintf("deploy: invalid transition for %s: %s -> %s", c, current, next))
	}
	r.Statuses[c] = next
}

// fail marks the component failed with a reason. Failed is terminal.
func (r *Run) fail(c version.Component, err error) {
	r.transition(c, StatusFailed)
	r.Failures[c] = err.Error()
}

// warn records a non-fatal finding surfaced prominently in the report.
func (r *Run) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Failed reports whether any component reached the failed state.
func (r *Run) Failed() bool {
	for _, s := range r.Statuses {
		if s == StatusFailed {
			return true
		}
	}

	return false
}

// complete stamps the completion time. The run must not be mutated afterward.
func (r *Run) complete() {
	now := time.Now().UTC()
	r.CompletedAt = &now
}

// persist writes the terminal run as a report artifact under the workspace
// reports directory.
func (r *Run) persist(ws workspace.Workspace) error {
	return jsonutils.WriteFile(ws.ReportFilePath(r.ID), r)
}
