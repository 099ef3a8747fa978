package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hafiizherdian/dashboard2y2/internal/pipeline/sales"
	"github.com/Hafiizherdian/dashboard2y2/internal/service"
)

type fakeUploader struct {
	mu     sync.Mutex
	inputs []service.UploadInput
	areas  map[string]bool
}

func (f *fakeUploader) Upload(ctx context.Context, in service.UploadInput) (*service.UploadResult, error) {
	f.mu.Lock()
	f.inputs = append(f.inputs, in)
	id := int64(len(f.inputs))
	f.mu.Unlock()

	if f.areas != nil && !f.areas[in.Area] {
		return nil, fmt.Errorf("%w: %s", service.ErrUnknownArea, in.Area)
	}

	switch in.Filename {
	case "empty.csv":
		return nil, sales.ErrNoValidRows
	case "broken.xlsx":
		return nil, &sales.DecodeError{File: in.Filename, Err: errors.New("zip: not a valid zip file")}
	}
	return &service.UploadResult{FileID: id, Filename: in.Filename, RecordCount: 3, RejectedCount: 1}, nil
}

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("data"), 0o644))
	}
}

func TestCollectFiles(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "b.xlsx", "a.csv", "legacy.XLS", "notes.txt", "~$b.xlsx", ".hidden.csv",
		"2024/week1.csv", ".git/objects.csv")

	files, err := CollectFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "2024/week1.csv"),
		filepath.Join(dir, "a.csv"),
		filepath.Join(dir, "b.xlsx"),
		filepath.Join(dir, "legacy.XLS"),
	}, files)

	_, err = CollectFiles(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestOrchestratorRun(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.csv", "empty.csv", "broken.xlsx", "c.xlsx")

	uploader := &fakeUploader{}
	summary, err := NewOrchestrator(uploader, ImportConfig{WorkerCount: 2, Area: "jember"}).Run(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Count(FileStatusCompleted))
	assert.Equal(t, 1, summary.Count(FileStatusSkipped))
	assert.Equal(t, 1, summary.Count(FileStatusFailed))
	assert.Equal(t, 6, summary.TotalRecords())

	require.Len(t, uploader.inputs, 4)
	for _, in := range uploader.inputs {
		assert.Equal(t, "jember", in.Area)
		assert.Equal(t, "import", in.Source)
		assert.Equal(t, sales.MimeTypeForExtension(in.Filename), in.ContentType)
	}

	for _, job := range summary.Jobs {
		if filepath.Base(job.Path) == "broken.xlsx" {
			assert.Contains(t, job.ErrorMessage, "not a valid zip file")
		}
	}
}

func TestOrchestratorEmptyDir(t *testing.T) {
	summary, err := NewOrchestrator(&fakeUploader{}, DefaultImportConfig()).Run(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, summary.Jobs)
}

func TestWorkerCanceled(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.csv", "b.csv")
	files, err := CollectFiles(dir)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	uploader := &fakeUploader{}
	summary, err := NewWorker(uploader, ImportConfig{WorkerCount: 1}).ProcessFiles(ctx, files)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, uploader.inputs)
	assert.Equal(t, 2, summary.Count(FileStatusQueued))
}

func TestOrchestratorUnknownAreaAbortsRun(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.csv", "b.csv", "c.xlsx")

	uploader := &fakeUploader{areas: map[string]bool{"jember": true}}
	summary, err := NewOrchestrator(uploader, ImportConfig{WorkerCount: 1, Area: "atlantis"}).Run(context.Background(), dir)
	require.ErrorIs(t, err, service.ErrUnknownArea)
	require.NotNil(t, summary)

	assert.Len(t, uploader.inputs, 1)
	assert.Equal(t, 1, summary.Count(FileStatusFailed))
	assert.Equal(t, 2, summary.Count(FileStatusQueued))
	assert.Zero(t, summary.Count(FileStatusCompleted))
}
