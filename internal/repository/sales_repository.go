// internal/repository/sales_repository.go
package repository

import (
	"context"
	"errors"

	"github.com/Hafiizherdian/dashboard2y2/internal/domain"
)

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAreaExists is returned when adding an area whose id is taken.
	ErrAreaExists = errors.New("area already exists")
)

// SalesRepository stores upload batches and their sales records.
type SalesRepository interface {
	// CommitBatch writes the batch summary and all its records in one
	// transaction and returns the new batch id. Either everything is stored
	// or nothing is.
	CommitBatch(ctx context.Context, batch *domain.UploadBatch, records []domain.SalesRecord) (int64, error)
	// InsertRecords stores records that do not belong to an upload batch.
	InsertRecords(ctx context.Context, records []domain.SalesRecord) ([]int64, error)

	ListFiles(ctx context.Context, limit, offset int) ([]domain.UploadBatch, error)
	DeleteFile(ctx context.Context, id int64) (*domain.UploadBatch, error)

	ListSales(ctx context.Context, filter domain.SalesFilter) ([]domain.SalesRecord, error)
	GetStats(ctx context.Context) (*domain.Stats, error)
	GetCities(ctx context.Context, year1, year2 int) ([]string, error)
}

// AreaRepository stores the configured areas.
type AreaRepository interface {
	List(ctx context.Context) ([]domain.Area, error)
	Get(ctx context.Context, id string) (*domain.Area, error)
	Add(ctx context.Context, area domain.Area) error
	Update(ctx context.Context, area domain.Area) error
	Delete(ctx context.Context, id string) error
}
