package pipeline

import (
	"context"
	"time"

	"github.com/Hafiizherdian/dashboard2y2/internal/service"
)

// Uploader commits one file through the ingestion pipeline.
// *service.SalesService implements it.
type Uploader interface {
	Upload(ctx context.Context, in service.UploadInput) (*service.UploadResult, error)
}

// ImportConfig holds configuration for a bulk import run
type ImportConfig struct {
	WorkerCount int    // Number of files processed concurrently
	Area        string // Area assigned to every imported record, optional
	Source      string // Metrics label for the run
}

// DefaultImportConfig returns sensible defaults
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		WorkerCount: 4,
		Source:      "import",
	}
}

// FileJobStatus represents the state of a single file import
type FileJobStatus string

const (
	FileStatusQueued    FileJobStatus = "queued"
	FileStatusCompleted FileJobStatus = "completed"
	FileStatusSkipped   FileJobStatus = "skipped"
	FileStatusFailed    FileJobStatus = "failed"
)

// FileJob tracks the import of a single file
type FileJob struct {
	Path         string
	Status       FileJobStatus
	FileID       int64
	Records      int
	Rejected     int
	ErrorMessage string
	Duration     time.Duration
}

// ImportSummary is the outcome of one bulk import.
type ImportSummary struct {
	Jobs      []*FileJob
	StartedAt time.Time
	Duration  time.Duration
}

// Count returns the number of jobs with the given status.
func (s *ImportSummary) Count(status FileJobStatus) int {
	n := 0
	for _, job := range s.Jobs {
		if job.Status == status {
			n++
		}
	}
	return n
}

// TotalRecords sums the records committed by completed jobs.
func (s *ImportSummary) TotalRecords() int {
	total := 0
	for _, job := range s.Jobs {
		if job.Status == FileStatusCompleted {
			total += job.Records
		}
	}
	return total
}
