// internal/repository/postgres/sales_repository.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/Hafiizherdian/dashboard2y2/internal/domain"
	"github.com/Hafiizherdian/dashboard2y2/internal/repository"
)

const (
	defaultSalesLimit = 1000
	defaultFilesLimit = 50
)

const salesRecordColumns = `id, file_id, grand_total, week, date, product, category, customer_no,
	customer, customer_type, salesman, village, district, city, area,
	units_bks, units_slop, units_bal, units_dos, omzet, created_at`

const uploadBatchColumns = `id, filename, original_name, file_size, record_count, total_omzet,
	status, error_message, uploaded_by, created_at, updated_at`

const insertSalesRecordQuery = `
	INSERT INTO sales_records (
		file_id, grand_total, week, date, product, category, customer_no, customer,
		customer_type, salesman, village, district, city, area,
		units_bks, units_slop, units_bal, units_dos, omzet
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	RETURNING id
`

type salesRepository struct {
	db *DB
}

func NewSalesRepository(db *DB) repository.SalesRepository {
	return &salesRepository{db: db}
}

func (r *salesRepository) CommitBatch(ctx context.Context, batch *domain.UploadBatch, records []domain.SalesRecord) (int64, error) {
	var batchID int64

	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		// 1. Summary row, marked processing until every record is in
		query := `
			INSERT INTO uploaded_files (
				filename, original_name, file_size, record_count, total_omzet, status, uploaded_by
			) VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id
		`
		err := tx.QueryRowxContext(ctx, query,
			batch.Filename,
			batch.OriginalName,
			batch.FileSize,
			batch.RecordCount,
			batch.TotalOmzet,
			domain.UploadStatusProcessing,
			batch.UploadedBy,
		).Scan(&batchID)
		if err != nil {
			return fmt.Errorf("failed to insert upload batch: %w", err)
		}

		// 2. Detail rows
		if err := insertRecords(ctx, tx, &batchID, records, nil); err != nil {
			return err
		}

		// 3. Completed
		_, err = tx.ExecContext(ctx,
			`UPDATE uploaded_files SET status = $1, updated_at = NOW() WHERE id = $2`,
			domain.UploadStatusCompleted, batchID,
		)
		if err != nil {
			return fmt.Errorf("failed to complete upload batch: %w", err)
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	batch.ID = batchID
	batch.Status = domain.UploadStatusCompleted
	return batchID, nil
}

func (r *salesRepository) InsertRecords(ctx context.Context, records []domain.SalesRecord) ([]int64, error) {
	ids := make([]int64, 0, len(records))
	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		return insertRecords(ctx, tx, nil, records, &ids)
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func insertRecords(ctx context.Context, tx *sqlx.Tx, fileID *int64, records []domain.SalesRecord, ids *[]int64) error {
	stmt, err := tx.PreparexContext(ctx, insertSalesRecordQuery)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, rec := range records {
		var id int64
		err := stmt.QueryRowxContext(ctx,
			fileID,
			rec.GrandTotal,
			rec.Week,
			rec.Date,
			rec.Product,
			rec.Category,
			rec.CustomerNo,
			rec.Customer,
			rec.CustomerType,
			rec.Salesman,
			rec.Village,
			rec.District,
			rec.City,
			rec.Area,
			rec.UnitsBks,
			rec.UnitsSlop,
			rec.UnitsBal,
			rec.UnitsDos,
			rec.Omzet,
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("failed to insert sales record %d: %w", i, err)
		}
		if ids != nil {
			*ids = append(*ids, id)
		}
	}

	return nil
}

func (r *salesRepository) ListFiles(ctx context.Context, limit, offset int) ([]domain.UploadBatch, error) {
	if limit <= 0 {
		limit = defaultFilesLimit
	}
	if offset < 0 {
		offset = 0
	}

	query := `SELECT ` + uploadBatchColumns + `
		FROM uploaded_files
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	files := make([]domain.UploadBatch, 0)
	if err := sqlx.SelectContext(ctx, r.db, &files, query, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list uploaded files: %w", err)
	}

	return files, nil
}

func (r *salesRepository) DeleteFile(ctx context.Context, id int64) (*domain.UploadBatch, error) {
	var deleted domain.UploadBatch

	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM sales_records WHERE file_id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete sales records: %w", err)
		}

		query := `DELETE FROM uploaded_files WHERE id = $1 RETURNING ` + uploadBatchColumns
		if err := tx.QueryRowxContext(ctx, query, id).StructScan(&deleted); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return repository.ErrNotFound
			}
			return fmt.Errorf("failed to delete uploaded file: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &deleted, nil
}

func (r *salesRepository) ListSales(ctx context.Context, filter domain.SalesFilter) ([]domain.SalesRecord, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultSalesLimit
	}

	filterClause, args := buildSalesFilterClause(filter, "", 1)
	query := fmt.Sprintf(`SELECT %s
		FROM sales_records
		WHERE 1=1%s
		ORDER BY date DESC, week DESC
		LIMIT $%d`, salesRecordColumns, filterClause, len(args)+1)
	args = append(args, limit)

	records := make([]domain.SalesRecord, 0)
	if err := sqlx.SelectContext(ctx, r.db, &records, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list sales records: %w", err)
	}

	return records, nil
}

func (r *salesRepository) GetStats(ctx context.Context) (*domain.Stats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM sales_records) AS total_records,
			(SELECT COALESCE(SUM(omzet), 0) FROM sales_records) AS total_omzet,
			(SELECT COUNT(*) FROM uploaded_files) AS total_files,
			(SELECT MAX(created_at) FROM uploaded_files WHERE status = 'completed') AS latest_upload
	`

	var stats domain.Stats
	if err := sqlx.GetContext(ctx, r.db, &stats, query); err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}

	return &stats, nil
}

func (r *salesRepository) GetCities(ctx context.Context, year1, year2 int) ([]string, error) {
	filterClause, args := buildSalesFilterClause(domain.SalesFilter{Year1: year1, Year2: year2}, "", 1)
	query := `SELECT DISTINCT city
		FROM sales_records
		WHERE city IS NOT NULL AND city <> ''` + filterClause + `
		ORDER BY city`

	cities := make([]string, 0)
	if err := sqlx.SelectContext(ctx, r.db, &cities, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list cities: %w", err)
	}

	return cities, nil
}
