package stores

import (
	"time"
)

// RunCommand identifies which engine entry point produced a run record.
type RunCommand string

const (
	RunCommandPlan  RunCommand = "plan"
	RunCommandApply RunCommand = "apply"
	RunCommandAudit RunCommand = "audit"
)

// RunStatus represents the outcome of a recorded run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// DriftKind classifies one drift item found by an audit run.
type DriftKind string

const (
	DriftMissingDirectory DriftKind = "missing_directory"
	DriftMissingFile      DriftKind = "missing_file"
	DriftExtraDirectory   DriftKind = "extra_directory"
	DriftExtraFile        DriftKind = "extra_file"
)

// Run is one recorded plan, apply, or audit invocation.
type Run struct {
	ID           string     `json:"id"`
	Command      RunCommand `json:"command"`
	DocumentPath string     `json:"document_path"`
	BasePath     string     `json:"base_path,omitempty"`
	Status       RunStatus  `json:"status"`
	StartedAt    time.Time  `json:"started_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	Error        *string    `json:"error,omitempty"`

	// Summary is a JSON blob: the plan summary, apply result, or drift
	// counts, depending on Command.
	Summary string `json:"summary"`

	CreatedAt time.Time `json:"created_at"`
}

// DriftItem is one missing or extra entry recorded by an audit run.
type DriftItem struct {
	RunID     string    `json:"run_id"`
	Kind      DriftKind `json:"kind"`
	Directory string    `json:"directory"`
	Name      string    `json:"name,omitempty"`
}

// OperationRecord is one planned or applied filesystem operation.
type OperationRecord struct {
	RunID  string  `json:"run_id"`
	Seq    int     `json:"seq"`
	Kind   string  `json:"kind"`
	Path   string  `json:"path"`
	Status string  `json:"status"` // planned, created, skipped, failed
	Error  *string `json:"error,omitempty"`
}
