package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hafiizherdian/dashboard2y2/internal/domain"
	"github.com/Hafiizherdian/dashboard2y2/internal/repository"
)

func newMockRepo(t *testing.T) (repository.SalesRepository, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	return NewSalesRepository(Wrap(sqlx.NewDb(sqlDB, "postgres"), 1)), mock
}

func sampleRecords() []domain.SalesRecord {
	area := "jember"
	return []domain.SalesRecord{
		{Week: 1, Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Product: "Rokok A", Customer: "Toko X", Area: &area, Omzet: 1500000},
		{Week: 52, Date: time.Date(2023, 12, 28, 0, 0, 0, 0, time.UTC), Product: "Rokok B", Customer: "Toko Y", Area: &area, Omzet: 2000000},
	}
}

func TestCommitBatch(t *testing.T) {
	repo, mock := newMockRepo(t)
	records := sampleRecords()
	batch := &domain.UploadBatch{
		Filename:     "upload_abc.csv",
		OriginalName: "weekly.csv",
		FileSize:     128,
		RecordCount:  len(records),
		TotalOmzet:   decimal.NewFromInt(3500000),
		UploadedBy:   "admin",
	}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO uploaded_files")).
		WithArgs("upload_abc.csv", "weekly.csv", 128, 2, "3500000", "processing", "admin").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	prep := mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO sales_records"))
	for i, rec := range records {
		prep.ExpectQuery().
			WithArgs(int64(7), 0.0, rec.Week, rec.Date, rec.Product, "", "", rec.Customer,
				"", "", "", "", "", "jember", 0.0, 0.0, 0.0, 0.0, rec.Omzet).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(100 + i))
	}
	mock.ExpectExec(regexp.QuoteMeta("UPDATE uploaded_files SET status = $1")).
		WithArgs("completed", int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	id, err := repo.CommitBatch(context.Background(), batch, records)
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
	assert.Equal(t, int64(7), batch.ID)
	assert.Equal(t, domain.UploadStatusCompleted, batch.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommitBatchRollsBackOnRecordFailure(t *testing.T) {
	repo, mock := newMockRepo(t)
	records := sampleRecords()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO uploaded_files")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(8))
	prep := mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO sales_records"))
	prep.ExpectQuery().WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	prep.ExpectQuery().WillReturnError(errors.New("numeric field overflow"))
	mock.ExpectRollback()

	batch := &domain.UploadBatch{Filename: "f", OriginalName: "o", RecordCount: 2, TotalOmzet: decimal.Zero}
	_, err := repo.CommitBatch(context.Background(), batch, records)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "numeric field overflow")
	assert.Zero(t, batch.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertRecords(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO sales_records"))
	prep.ExpectQuery().WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
	prep.ExpectQuery().WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(12))
	mock.ExpectCommit()

	ids, err := repo.InsertRecords(context.Background(), sampleRecords())
	require.NoError(t, err)
	assert.Equal(t, []int64{11, 12}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteFile(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM sales_records WHERE file_id = $1")).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 12))
	mock.ExpectQuery(regexp.QuoteMeta("DELETE FROM uploaded_files WHERE id = $1 RETURNING")).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "filename", "original_name", "file_size", "record_count",
			"total_omzet", "status", "error_message", "uploaded_by", "created_at", "updated_at"}).
			AddRow(3, "upload_x.xlsx", "x.xlsx", 2048, 12, "1250.50", "completed", nil, "admin", now, now))
	mock.ExpectCommit()

	deleted, err := repo.DeleteFile(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "x.xlsx", deleted.OriginalName)
	assert.Equal(t, domain.UploadStatusCompleted, deleted.Status)
	assert.True(t, deleted.TotalOmzet.Equal(decimal.RequireFromString("1250.50")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteFileNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM sales_records")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("DELETE FROM uploaded_files")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err := repo.DeleteFile(context.Background(), 99)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListSalesAppliesFilters(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE 1=1 AND EXTRACT(YEAR FROM date) IN ($1,$2) AND product ILIKE $3 AND area = $4")).
		WithArgs(2023, 2024, "%rokok%", "jember", 500).
		WillReturnRows(sqlmock.NewRows([]string{"id", "week", "date", "product", "customer", "area", "omzet"}).
			AddRow(1, 5, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), "Rokok A", "Toko X", "jember", 1000.0))

	records, err := repo.ListSales(context.Background(), domain.SalesFilter{
		Year1: 2024, Year2: 2023, Product: "rokok", Area: "jember", Limit: 500,
	})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Rokok A", records[0].Product)
	require.NotNil(t, records[0].Area)
	assert.Equal(t, "jember", *records[0].Area)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListSalesDefaultLimit(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE 1=1 ORDER BY date DESC, week DESC LIMIT $1")).
		WithArgs(defaultSalesLimit).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	records, err := repo.ListSales(context.Background(), domain.SalesFilter{})
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetStats(t *testing.T) {
	repo, mock := newMockRepo(t)
	latest := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM sales_records")).
		WillReturnRows(sqlmock.NewRows([]string{"total_records", "total_omzet", "total_files", "latest_upload"}).
			AddRow(42, 3500000.0, 3, latest))

	stats, err := repo.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(42), stats.TotalRecords)
	assert.Equal(t, 3500000.0, stats.TotalOmzet)
	assert.Equal(t, int64(3), stats.TotalFiles)
	require.NotNil(t, stats.LatestUpload)
	assert.True(t, latest.Equal(*stats.LatestUpload))
}

func TestGetCities(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("EXTRACT(YEAR FROM date) IN ($1)")).
		WithArgs(2024).
		WillReturnRows(sqlmock.NewRows([]string{"city"}).AddRow("Jember").AddRow("Malang"))

	cities, err := repo.GetCities(context.Background(), 0, 2024)
	require.NoError(t, err)
	assert.Equal(t, []string{"Jember", "Malang"}, cities)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListFiles(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM uploaded_files")).
		WithArgs(defaultFilesLimit, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "filename", "status"}).
			AddRow(2, "upload_b.csv", "completed").
			AddRow(1, "upload_a.csv", "processing"))

	files, err := repo.ListFiles(context.Background(), 0, -5)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, domain.UploadStatusProcessing, files[1].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}
