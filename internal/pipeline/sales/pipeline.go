package sales

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/Hafiizherdian/dashboard2y2/internal/domain"
)

// Result is the outcome of ingesting one file.
type Result struct {
	Records       []domain.SalesRecord
	TotalRowsSeen int
	TotalOmzet    decimal.Decimal
	Rejections    []Diagnostic
}

// RejectedCount is the number of rows that did not make it into Records.
func (r *Result) RejectedCount() int {
	return len(r.Rejections)
}

// Preview returns up to n accepted records.
func (r *Result) Preview(n int) []domain.SalesRecord {
	if len(r.Records) < n {
		n = len(r.Records)
	}
	return r.Records[:n]
}

// Pipeline runs extraction and normalization over one uploaded file. A
// Pipeline keeps no per-upload state and can be shared between requests.
type Pipeline struct {
	normalizer *Normalizer
	logger     zerolog.Logger
}

// NewPipeline creates a pipeline using the default column aliases.
func NewPipeline() *Pipeline {
	return &Pipeline{
		normalizer: NewNormalizer(),
		logger:     log.With().Str("component", "sales_pipeline").Logger(),
	}
}

// WithNormalizer swaps the normalizer, for callers with their own alias
// table.
func (p *Pipeline) WithNormalizer(n *Normalizer) *Pipeline {
	cp := *p
	cp.normalizer = n
	return &cp
}

// Ingest extracts and normalizes every row of src, assigning area to each
// accepted record. When no row is valid it returns the populated Result
// together with ErrNoValidRows so callers can still report the rejections.
func (p *Pipeline) Ingest(ctx context.Context, src Source, area *string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows, err := Extract(src)
	if err != nil {
		p.logger.Error().Err(err).Str("file", nameOf(src)).Msg("Failed to extract rows")
		return nil, err
	}

	result := &Result{
		Records:       make([]domain.SalesRecord, 0, len(rows)),
		TotalRowsSeen: len(rows),
		TotalOmzet:    decimal.Zero,
	}

	for i, row := range rows {
		if i%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		record, diag := p.normalizer.Normalize(row, area)
		if diag != nil {
			p.logger.Debug().
				Str("file", src.Name()).
				Int("row", diag.RowIndex).
				Str("reason", diag.Reason).
				Msg("Row rejected")
			result.Rejections = append(result.Rejections, *diag)
			continue
		}

		result.Records = append(result.Records, record)
		result.TotalOmzet = result.TotalOmzet.Add(decimal.NewFromFloat(record.Omzet))
	}

	if len(result.Records) == 0 {
		p.logger.Warn().
			Str("file", src.Name()).
			Int("rows_seen", result.TotalRowsSeen).
			Int("rejected", result.RejectedCount()).
			Msg("No valid rows in upload")
		return result, ErrNoValidRows
	}

	p.logger.Info().
		Str("file", src.Name()).
		Int("rows_seen", result.TotalRowsSeen).
		Int("accepted", len(result.Records)).
		Int("rejected", result.RejectedCount()).
		Str("total_omzet", result.TotalOmzet.String()).
		Msg("Upload normalized")

	return result, nil
}

func nameOf(src Source) string {
	if src == nil {
		return ""
	}
	return src.Name()
}
