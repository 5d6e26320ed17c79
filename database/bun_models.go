package database

import (
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/uptrace/bun"
)

// BunJob represents the export_jobs table for Bun ORM
type BunJob struct {
	bun.BaseModel `bun:"table:export_jobs,alias:ej"`

	ID           string     `bun:"id,pk"` // ULID as string
	SessionID    string     `bun:"session_id,notnull"`
	Status       string     `bun:"status,default:'pending'"`
	DisplayName  string     `bun:"display_name,default:''"`
	OutputName   string     `bun:"output_name,nullzero"`
	PageCount    int        `bun:"page_count,default:0"`
	RotatedPages int        `bun:"rotated_pages,default:0"`
	Bytes        int64      `bun:"bytes,default:0"`
	Message      string     `bun:"message,default:''"`
	Error        string     `bun:"error,nullzero"`
	CreatedAt    time.Time  `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt    time.Time  `bun:"updated_at,notnull,default:current_timestamp"`
	StartedAt    *time.Time `bun:"started_at,nullzero"`
	CompletedAt  *time.Time `bun:"completed_at,nullzero"`
}

// ToJob converts BunJob to Job
func (bj *BunJob) ToJob() (*Job, error) {
	parsedULID, err := ulid.Parse(bj.ID)
	if err != nil {
		return nil, err
	}

	return &Job{
		ID:           parsedULID,
		SessionID:    bj.SessionID,
		Status:       JobStatus(bj.Status),
		DisplayName:  bj.DisplayName,
		OutputName:   bj.OutputName,
		PageCount:    bj.PageCount,
		RotatedPages: bj.RotatedPages,
		Bytes:        bj.Bytes,
		Message:      bj.Message,
		Error:        bj.Error,
		CreatedAt:    bj.CreatedAt,
		UpdatedAt:    bj.UpdatedAt,
		StartedAt:    bj.StartedAt,
		CompletedAt:  bj.CompletedAt,
	}, nil
}

// FromJob converts Job to BunJob
func FromJob(job *Job) *BunJob {
	return &BunJob{
		ID:           job.ID.String(),
		SessionID:    job.SessionID,
		Status:       string(job.Status),
		DisplayName:  job.DisplayName,
		OutputName:   job.OutputName,
		PageCount:    job.PageCount,
		RotatedPages: job.RotatedPages,
		Bytes:        job.Bytes,
		Message:      job.Message,
		Error:        job.Error,
		CreatedAt:    job.CreatedAt,
		UpdatedAt:    job.UpdatedAt,
		StartedAt:    job.StartedAt,
		CompletedAt:  job.CompletedAt,
	}
}
