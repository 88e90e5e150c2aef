package job

import (
	"errors"
	"time"
)

// ErrNotFound is returned by stores for unknown job IDs.
var ErrNotFound = errors.New("job not found")

// State describes where a job is in its lifecycle. Completed and failed
// are terminal.
type State string

const (
	StatePending    State = "pending"
	StateProcessing State = "processing"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

// Terminal reports whether the state can no longer change.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// Job tracks one background split run. Only the pipeline runner mutates
// a job after creation; readers get copies.
type Job struct {
	ID          string
	Status      State
	Progress    int
	Message     string
	OutputFiles []string
	Error       string
	CreatedAt   time.Time
	CompletedAt *time.Time
}
