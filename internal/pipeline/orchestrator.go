package pipeline

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// Orchestrator runs a bulk import over the spreadsheets found under a directory.
type Orchestrator struct {
	uploader Uploader
	cfg      ImportConfig
	makeW    func(u Uploader, cfg ImportConfig) *Worker
}

// NewOrchestrator creates a new Orchestrator.
func NewOrchestrator(uploader Uploader, cfg ImportConfig) *Orchestrator {
	return &Orchestrator{
		uploader: uploader,
		cfg:      cfg,
		makeW:    NewWorker,
	}
}

// Run collects the importable files under dir and imports each one.
func (o *Orchestrator) Run(ctx context.Context, dir string) (*ImportSummary, error) {
	files, err := CollectFiles(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return &ImportSummary{}, nil
	}

	return o.makeW(o.uploader, o.cfg).ProcessFiles(ctx, files)
}

// CollectFiles walks dir and returns the .csv, .xlsx and .xls files in
// lexical order. Hidden files and Office lock files are ignored.
func CollectFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != dir && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~$") {
			return nil
		}
		switch strings.ToLower(filepath.Ext(name)) {
		case ".csv", ".xlsx", ".xls":
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}

	sort.Strings(files)
	return files, nil
}
