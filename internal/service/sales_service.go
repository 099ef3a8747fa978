package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Hafiizherdian/dashboard2y2/internal/analytics"
	"github.com/Hafiizherdian/dashboard2y2/internal/cache"
	"github.com/Hafiizherdian/dashboard2y2/internal/domain"
	"github.com/Hafiizherdian/dashboard2y2/internal/metrics"
	"github.com/Hafiizherdian/dashboard2y2/internal/pipeline/sales"
	"github.com/Hafiizherdian/dashboard2y2/internal/repository"
	"github.com/Hafiizherdian/dashboard2y2/internal/storage"
)

const (
	previewSize        = 5
	maxRejectionsShown = 20
	// dashboardRowLimit bounds the rows aggregated for one dashboard.
	dashboardRowLimit = 1000000
)

var (
	// ErrUnknownArea is returned when an upload names an area that is not configured.
	ErrUnknownArea = errors.New("unknown area")
	// ErrInvalidRecord is returned when a manually entered record fails validation.
	ErrInvalidRecord = errors.New("invalid sales record")
)

// UploadInput is one file received by the upload endpoint or an importer.
type UploadInput struct {
	Filename    string
	ContentType string
	Data        []byte
	Area        string
	// Source labels the ingest path in metrics: upload, import or drive.
	Source string
}

// UploadResult is reported back after a batch is committed.
type UploadResult struct {
	FileID        int64                `json:"fileId"`
	Filename      string               `json:"filename"`
	RecordCount   int                  `json:"recordCount"`
	TotalOmzet    float64              `json:"totalOmzet"`
	RejectedCount int                  `json:"rejectedCount"`
	Rejections    []sales.Diagnostic   `json:"rejections,omitempty"`
	Preview       []domain.SalesRecord `json:"preview"`
}

type SalesService struct {
	repo       repository.SalesRepository
	areas      repository.AreaRepository
	cache      cache.SalesCache
	storage    storage.ObjectStorage
	pipeline   *sales.Pipeline
	uploadedBy string
}

func NewSalesService(
	repo repository.SalesRepository,
	areas repository.AreaRepository,
	cacheImpl cache.SalesCache,
	store storage.ObjectStorage,
	uploadedBy string,
) *SalesService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopSalesCache()
	}
	if store == nil {
		store = storage.NewNoopStorage()
	}
	if uploadedBy == "" {
		uploadedBy = "admin"
	}
	return &SalesService{
		repo:       repo,
		areas:      areas,
		cache:      cacheImpl,
		storage:    store,
		pipeline:   sales.NewPipeline(),
		uploadedBy: uploadedBy,
	}
}

// Upload runs the ingestion pipeline over one file and commits the accepted
// records as a single batch. Nothing is stored when the file has no valid row.
func (s *SalesService) Upload(ctx context.Context, in UploadInput) (*UploadResult, error) {
	source := in.Source
	if source == "" {
		source = "upload"
	}

	area, err := s.resolveArea(ctx, in.Area)
	if err != nil {
		return nil, err
	}

	src, err := sales.NewSource(in.Filename, in.ContentType, in.Data)
	if err != nil {
		return nil, err
	}

	result, err := s.pipeline.Ingest(ctx, src, area)
	if err != nil {
		if result != nil {
			metrics.ObserveIngest(source, 0, result.RejectedCount(), err)
		} else {
			metrics.ObserveIngest(source, 0, 0, err)
		}
		return nil, err
	}

	storedName := storedFilename(in.Filename)
	if err := s.storage.PutObject(ctx, storedName, in.Data, in.ContentType); err != nil {
		log.Error().Err(err).Str("file", in.Filename).Msg("Failed to archive upload")
		metrics.ObserveIngest(source, 0, result.RejectedCount(), err)
		return nil, fmt.Errorf("failed to archive upload: %w", err)
	}

	batch := &domain.UploadBatch{
		Filename:     storedName,
		OriginalName: in.Filename,
		FileSize:     int64(len(in.Data)),
		RecordCount:  len(result.Records),
		TotalOmzet:   result.TotalOmzet,
		UploadedBy:   s.uploadedBy,
	}

	fileID, err := s.repo.CommitBatch(ctx, batch, result.Records)
	if err != nil {
		if rmErr := s.storage.RemoveObject(ctx, storedName); rmErr != nil {
			log.Warn().Err(rmErr).Str("object", storedName).Msg("Failed to remove archived upload after commit failure")
		}
		metrics.ObserveIngest(source, 0, result.RejectedCount(), err)
		return nil, fmt.Errorf("failed to store sales data: %w", err)
	}
	metrics.ObserveIngest(source, len(result.Records), result.RejectedCount(), nil)

	s.invalidate(ctx)

	log.Info().
		Int64("file_id", fileID).
		Str("file", in.Filename).
		Int("records", len(result.Records)).
		Int("rejected", result.RejectedCount()).
		Msg("Sales upload committed")

	rejections := result.Rejections
	if len(rejections) > maxRejectionsShown {
		rejections = rejections[:maxRejectionsShown]
	}

	return &UploadResult{
		FileID:        fileID,
		Filename:      in.Filename,
		RecordCount:   len(result.Records),
		TotalOmzet:    result.TotalOmzet.InexactFloat64(),
		RejectedCount: result.RejectedCount(),
		Rejections:    rejections,
		Preview:       result.Preview(previewSize),
	}, nil
}

func (s *SalesService) ListFiles(ctx context.Context, limit, offset int) ([]domain.UploadBatch, error) {
	return s.repo.ListFiles(ctx, limit, offset)
}

// DeleteFile removes a batch with all its records and its archived bytes.
func (s *SalesService) DeleteFile(ctx context.Context, id int64) (*domain.UploadBatch, error) {
	deleted, err := s.repo.DeleteFile(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.storage.RemoveObject(ctx, deleted.Filename); err != nil {
		log.Warn().Err(err).Str("object", deleted.Filename).Msg("Failed to remove archived upload")
	}
	s.invalidate(ctx)

	return deleted, nil
}

func (s *SalesService) ListSales(ctx context.Context, filter domain.SalesFilter) ([]domain.SalesRecord, error) {
	return s.repo.ListSales(ctx, filter)
}

// CreateSales stores manually entered records. Every record must pass the
// same validity rule as uploaded rows; one invalid record rejects them all.
func (s *SalesService) CreateSales(ctx context.Context, records []domain.SalesRecord) ([]int64, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no records provided", ErrInvalidRecord)
	}

	for i := range records {
		records[i].ID = 0
		records[i].FileID = nil
		if records[i].Week <= 0 {
			records[i].Week = 1
		}
		if reason := sales.Validate(records[i]); reason != "" {
			return nil, fmt.Errorf("%w: record %d: %s", ErrInvalidRecord, i, reason)
		}
		if records[i].Area != nil {
			area, err := s.resolveArea(ctx, *records[i].Area)
			if err != nil {
				return nil, err
			}
			records[i].Area = area
		}
	}

	ids, err := s.repo.InsertRecords(ctx, records)
	if err != nil {
		return nil, fmt.Errorf("failed to store sales records: %w", err)
	}
	s.invalidate(ctx)

	return ids, nil
}

func (s *SalesService) Stats(ctx context.Context) (*domain.Stats, error) {
	if stats, ok, err := s.cache.GetStats(ctx); err == nil && ok {
		metrics.ObserveCache("stats", true)
		return stats, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("sales: cache get stats failed")
	}
	metrics.ObserveCache("stats", false)

	stats, err := s.repo.GetStats(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetStats(ctx, stats); err != nil {
		log.Warn().Err(err).Msg("sales: cache set stats failed")
	}
	return stats, nil
}

func (s *SalesService) Cities(ctx context.Context, year1, year2 int) ([]string, error) {
	cities, err := s.repo.GetCities(ctx, year1, year2)
	if err != nil {
		return nil, err
	}
	if cities == nil {
		cities = make([]string, 0)
	}
	return cities, nil
}

// Dashboard aggregates the filtered records into the comparison dashboard.
// Quarter targets come from the selected area when it has any.
func (s *SalesService) Dashboard(ctx context.Context, filter domain.SalesFilter) (*domain.SalesDashboard, error) {
	if dashboard, ok, err := s.cache.GetDashboard(ctx, filter); err == nil && ok {
		metrics.ObserveCache("dashboard", true)
		return dashboard, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("sales: cache get dashboard failed")
	}
	metrics.ObserveCache("dashboard", false)

	query := filter
	query.Limit = dashboardRowLimit
	records, err := s.repo.ListSales(ctx, query)
	if err != nil {
		return nil, err
	}

	opts := analytics.Options{Year1: filter.Year1, Year2: filter.Year2}
	if filter.Area != "" && s.areas != nil {
		area, err := s.areas.Get(ctx, filter.Area)
		switch {
		case err == nil:
			opts.Targets = area.QuarterlyTargets
		case !errors.Is(err, repository.ErrNotFound):
			return nil, err
		}
	}

	dashboard := analytics.BuildDashboard(records, opts)

	if err := s.cache.SetDashboard(ctx, filter, &dashboard); err != nil {
		log.Warn().Err(err).Msg("sales: cache set dashboard failed")
	}
	return &dashboard, nil
}

// resolveArea validates an area id against the configured areas. An empty id
// means no area.
func (s *SalesService) resolveArea(ctx context.Context, id string) (*string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, nil
	}
	if s.areas == nil {
		return &id, nil
	}

	if _, err := s.areas.Get(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownArea, id)
		}
		return nil, err
	}
	return &id, nil
}

func (s *SalesService) invalidate(ctx context.Context) {
	if err := s.cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("sales: cache invalidation failed")
	}
}

func storedFilename(original string) string {
	return "upload_" + uuid.NewString() + strings.ToLower(filepath.Ext(original))
}
