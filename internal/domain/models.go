// internal/domain/models.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SalesRecord is one normalized sales line. ID is zero until the record is
// stored; FileID is nil for records entered without an upload.
type SalesRecord struct {
	ID           int64     `json:"id,omitempty" db:"id"`
	FileID       *int64    `json:"file_id,omitempty" db:"file_id"`
	GrandTotal   float64   `json:"grand_total" db:"grand_total"`
	Week         int       `json:"week" db:"week"`
	Date         time.Time `json:"date" db:"date"`
	Product      string    `json:"product" db:"product"`
	Category     string    `json:"category" db:"category"`
	CustomerNo   string    `json:"customer_no" db:"customer_no"`
	Customer     string    `json:"customer" db:"customer"`
	CustomerType string    `json:"customer_type" db:"customer_type"`
	Salesman     string    `json:"salesman" db:"salesman"`
	Village      string    `json:"village" db:"village"`
	District     string    `json:"district" db:"district"`
	City         string    `json:"city" db:"city"`
	Area         *string   `json:"area" db:"area"`
	UnitsBks     float64   `json:"units_bks" db:"units_bks"`
	UnitsSlop    float64   `json:"units_slop" db:"units_slop"`
	UnitsBal     float64   `json:"units_bal" db:"units_bal"`
	UnitsDos     float64   `json:"units_dos" db:"units_dos"`
	Omzet        float64   `json:"omzet" db:"omzet"`
	CreatedAt    time.Time `json:"created_at,omitempty" db:"created_at"`
}

// UploadBatch is the summary row written once per upload.
type UploadBatch struct {
	ID           int64           `json:"id" db:"id"`
	Filename     string          `json:"filename" db:"filename"`
	OriginalName string          `json:"original_name" db:"original_name"`
	FileSize     int64           `json:"file_size" db:"file_size"`
	RecordCount  int             `json:"record_count" db:"record_count"`
	TotalOmzet   decimal.Decimal `json:"total_omzet" db:"total_omzet"`
	Status       UploadStatus    `json:"status" db:"status"`
	ErrorMessage *string         `json:"error_message,omitempty" db:"error_message"`
	UploadedBy   string          `json:"uploaded_by" db:"uploaded_by"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" db:"updated_at"`
}

// SalesFilter narrows sales queries. Zero values mean "no filter".
type SalesFilter struct {
	Year1   int
	Year2   int
	Product string
	Area    string
	City    string
	Limit   int
}

// Years returns the distinct years the filter selects, in ascending order.
func (f SalesFilter) Years() []int {
	switch {
	case f.Year1 > 0 && f.Year2 > 0 && f.Year1 != f.Year2:
		if f.Year1 > f.Year2 {
			return []int{f.Year2, f.Year1}
		}
		return []int{f.Year1, f.Year2}
	case f.Year1 > 0:
		return []int{f.Year1}
	case f.Year2 > 0:
		return []int{f.Year2}
	}
	return nil
}

// Stats summarizes the whole store.
type Stats struct {
	TotalRecords int64      `json:"total_records" db:"total_records"`
	TotalOmzet   float64    `json:"total_omzet" db:"total_omzet"`
	TotalFiles   int64      `json:"total_files" db:"total_files"`
	LatestUpload *time.Time `json:"latest_upload" db:"latest_upload"`
}
