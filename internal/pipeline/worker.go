package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/Hafiizherdian/dashboard2y2/internal/pipeline/sales"
	"github.com/Hafiizherdian/dashboard2y2/internal/service"
)

// Worker imports files through an Uploader with bounded concurrency.
type Worker struct {
	uploader Uploader
	config   ImportConfig
}

// NewWorker creates a new import worker
func NewWorker(uploader Uploader, config ImportConfig) *Worker {
	if config.WorkerCount < 1 {
		config.WorkerCount = 1
	}
	if config.Source == "" {
		config.Source = "import"
	}
	return &Worker{uploader: uploader, config: config}
}

// ProcessFiles imports every file as its own batch. A file that fails does
// not stop the others; an unknown area or cancellation of ctx aborts the run.
func (w *Worker) ProcessFiles(ctx context.Context, files []string) (*ImportSummary, error) {
	summary := &ImportSummary{
		Jobs:      make([]*FileJob, len(files)),
		StartedAt: time.Now(),
	}
	for i, file := range files {
		summary.Jobs[i] = &FileJob{Path: file, Status: FileStatusQueued}
	}

	log.Info().Int("files", len(files)).Int("workers", w.config.WorkerCount).Msg("Starting sales import")

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.config.WorkerCount)

	for _, job := range summary.Jobs {
		if gctx.Err() != nil {
			break
		}
		job := job
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return w.processFile(gctx, job)
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	summary.Duration = time.Since(summary.StartedAt)

	log.Info().
		Int("completed", summary.Count(FileStatusCompleted)).
		Int("skipped", summary.Count(FileStatusSkipped)).
		Int("failed", summary.Count(FileStatusFailed)).
		Int("records", summary.TotalRecords()).
		Dur("duration", summary.Duration).
		Msg("Sales import finished")

	return summary, err
}

// processFile imports a single file and records the outcome on job. It only
// returns an error that should stop the whole run.
func (w *Worker) processFile(ctx context.Context, job *FileJob) error {
	start := time.Now()
	defer func() { job.Duration = time.Since(start) }()

	data, err := os.ReadFile(job.Path)
	if err != nil {
		w.markJobFailed(job, err)
		return nil
	}

	result, err := w.uploader.Upload(ctx, service.UploadInput{
		Filename:    filepath.Base(job.Path),
		ContentType: sales.MimeTypeForExtension(job.Path),
		Data:        data,
		Area:        w.config.Area,
		Source:      w.config.Source,
	})
	switch {
	case errors.Is(err, sales.ErrNoValidRows):
		job.Status = FileStatusSkipped
		job.ErrorMessage = err.Error()
		log.Warn().Str("file", job.Path).Msg("Skipping file without valid rows")
		return nil
	case errors.Is(err, service.ErrUnknownArea):
		w.markJobFailed(job, err)
		return err
	case err != nil:
		w.markJobFailed(job, err)
		return nil
	}

	job.Status = FileStatusCompleted
	job.FileID = result.FileID
	job.Records = result.RecordCount
	job.Rejected = result.RejectedCount

	log.Info().
		Str("file", job.Path).
		Int64("file_id", result.FileID).
		Int("records", result.RecordCount).
		Int("rejected", result.RejectedCount).
		Dur("duration", time.Since(start)).
		Msg("Imported file")
	return nil
}

func (w *Worker) markJobFailed(job *FileJob, err error) {
	job.Status = FileStatusFailed
	job.ErrorMessage = err.Error()
	log.Error().Err(err).Str("file", job.Path).Msg("Failed to import file")
}
