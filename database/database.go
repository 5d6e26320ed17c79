// Package database keeps the export job ledger: one row per download produced by the
// rotation service. The ledger is informational; sessions and their documents never
// touch it and live only in memory.
package database

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// Logger is global since we will need it everywhere
var Logger = slog.Default()

// ErrUnknownDatabaseType is returned by NewRepository for an unsupported DATABASE_TYPE
var ErrUnknownDatabaseType = errors.New("unknown database type")

// Repository defines database operations
type Repository interface {
	Close() error
	CreateJob(ctx context.Context, req ExportRequest) (*Job, error)
	UpdateJobStatus(ctx context.Context, jobID ulid.ULID, status JobStatus, message string) error
	UpdateJobError(ctx context.Context, jobID ulid.ULID, errorMsg string) error
	CompleteJob(ctx context.Context, jobID ulid.ULID, outcome ExportOutcome) error
	GetJob(ctx context.Context, jobID ulid.ULID) (*Job, error)
	GetRecentJobs(ctx context.Context, limit, offset int) ([]Job, error)
	GetActiveJobs(ctx context.Context) ([]Job, error)
	GetSessionJobs(ctx context.Context, sessionID string) ([]Job, error)
	DeleteOldJobs(ctx context.Context, olderThan time.Duration) (int, error)
}

// CalculateUUID generates a time ordered id
func CalculateUUID(time time.Time) (ulid.ULID, error) {
	entropy := ulid.Monotonic(rand.New(rand.NewSource(time.UnixNano())), 0)
	newULID, err := ulid.New(ulid.Timestamp(time), entropy)
	if err != nil {
		return newULID, err
	}
	return newULID, nil
}
