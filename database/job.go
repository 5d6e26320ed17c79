package database

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// JobStatus represents the status of an export job
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// IsFinished reports whether status is terminal
func (s JobStatus) IsFinished() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// ExportRequest describes the document an export job was started for
type ExportRequest struct {
	SessionID   string
	DisplayName string
	PageCount   int
}

// ExportOutcome is what a successful export produced
type ExportOutcome struct {
	OutputName   string
	RotatedPages int
	Bytes        int64
}

// Job is one export attempt
type Job struct {
	ID           ulid.ULID  `json:"id"`
	SessionID    string     `json:"sessionId"`
	Status       JobStatus  `json:"status"`
	DisplayName  string     `json:"displayName"`
	OutputName   string     `json:"outputName,omitempty"`
	PageCount    int        `json:"pageCount"`
	RotatedPages int        `json:"rotatedPages"`
	Bytes        int64      `json:"bytes"`
	Message      string     `json:"message"`
	Error        string     `json:"error,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	StartedAt    *time.Time `json:"startedAt,omitempty"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
}

// Duration is how long the job ran, zero until it has started and finished
func (j Job) Duration() time.Duration {
	if j.StartedAt == nil || j.CompletedAt == nil {
		return 0
	}
	return j.CompletedAt.Sub(*j.StartedAt)
}
