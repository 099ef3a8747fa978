package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/Hafiizherdian/dashboard2y2/internal/domain"
)

// FileAreaStore keeps areas in a JSON file. Until the first write the
// default areas are served.
type FileAreaStore struct {
	path string
	mu   sync.RWMutex
}

func NewFileAreaStore(path string) *FileAreaStore {
	return &FileAreaStore{path: path}
}

func (s *FileAreaStore) List(ctx context.Context) ([]domain.Area, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.load()
}

func (s *FileAreaStore) Get(ctx context.Context, id string) (*domain.Area, error) {
	areas, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range areas {
		if areas[i].ID == id {
			return &areas[i], nil
		}
	}
	return nil, ErrNotFound
}

func (s *FileAreaStore) Add(ctx context.Context, area domain.Area) error {
	return s.mutate(func(areas []domain.Area) ([]domain.Area, error) {
		for _, a := range areas {
			if a.ID == area.ID {
				return nil, fmt.Errorf("%w: %s", ErrAreaExists, area.ID)
			}
		}
		return append(areas, area), nil
	})
}

func (s *FileAreaStore) Update(ctx context.Context, area domain.Area) error {
	return s.mutate(func(areas []domain.Area) ([]domain.Area, error) {
		for i := range areas {
			if areas[i].ID == area.ID {
				areas[i] = area
				return areas, nil
			}
		}
		return nil, ErrNotFound
	})
}

func (s *FileAreaStore) Delete(ctx context.Context, id string) error {
	return s.mutate(func(areas []domain.Area) ([]domain.Area, error) {
		for i := range areas {
			if areas[i].ID == id {
				return append(areas[:i], areas[i+1:]...), nil
			}
		}
		return nil, ErrNotFound
	})
}

func (s *FileAreaStore) mutate(fn func([]domain.Area) ([]domain.Area, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	areas, err := s.load()
	if err != nil {
		return err
	}
	areas, err = fn(areas)
	if err != nil {
		return err
	}
	return s.save(areas)
}

func (s *FileAreaStore) load() ([]domain.Area, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.DefaultAreas(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read areas file: %w", err)
	}

	var areas []domain.Area
	if err := json.Unmarshal(data, &areas); err != nil {
		return nil, fmt.Errorf("failed to parse areas file %s: %w", s.path, err)
	}
	return areas, nil
}

// save writes to a temporary file first so readers never see a partial file.
func (s *FileAreaStore) save(areas []domain.Area) error {
	data, err := json.MarshalIndent(areas, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode areas: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create areas directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".areas-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp areas file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write areas: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write areas: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace areas file: %w", err)
	}

	log.Info().Str("path", s.path).Int("areas", len(areas)).Msg("Areas saved")
	return nil
}
