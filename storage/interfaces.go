package storage

import (
	"context"

	"phone-scrubber/models"
)

// Uploader is the capability any output destination must satisfy.
// It returns where the data ended up (a path, an object key, a file ID).
type Uploader interface {
	Upload(ctx context.Context, folder, name string, data []byte) (string, error)
}

// RunRecorder is the interface for persisting the audit trail of a run.
type RunRecorder interface {
	RecordRun(ctx context.Context, listName string, r *models.RunResult) error
	Close() error
}
