package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Hafiizherdian/dashboard2y2/internal/domain"
	"github.com/Hafiizherdian/dashboard2y2/internal/pipeline/sales"
	"github.com/Hafiizherdian/dashboard2y2/internal/service"
)

// SalesService is the part of service.SalesService the handlers use.
type SalesService interface {
	Upload(ctx context.Context, in service.UploadInput) (*service.UploadResult, error)
	ListFiles(ctx context.Context, limit, offset int) ([]domain.UploadBatch, error)
	DeleteFile(ctx context.Context, id int64) (*domain.UploadBatch, error)
	ListSales(ctx context.Context, filter domain.SalesFilter) ([]domain.SalesRecord, error)
	CreateSales(ctx context.Context, records []domain.SalesRecord) ([]int64, error)
	Stats(ctx context.Context) (*domain.Stats, error)
	Cities(ctx context.Context, year1, year2 int) ([]string, error)
	Dashboard(ctx context.Context, filter domain.SalesFilter) (*domain.SalesDashboard, error)
}

type SalesHandler struct {
	service        SalesService
	maxUploadBytes int64
}

func NewSalesHandler(svc SalesService, maxUploadBytes int64) *SalesHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 20 << 20
	}
	return &SalesHandler{service: svc, maxUploadBytes: maxUploadBytes}
}

// Upload ingests one spreadsheet from the "file" form field. The optional
// "area" field assigns every accepted record to that area.
func (h *SalesHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondError(c, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		respondError(c, http.StatusBadRequest, "No file uploaded")
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if !isAllowedUpload(contentType, fileHeader.Filename) {
		respondError(c, http.StatusBadRequest, "Invalid file type. Only CSV and Excel files are allowed.")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, "Failed to read uploaded file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Failed to read uploaded file")
		return
	}

	result, err := h.service.Upload(c.Request.Context(), service.UploadInput{
		Filename:    fileHeader.Filename,
		ContentType: contentType,
		Data:        data,
		Area:        c.PostForm("area"),
		Source:      "upload",
	})
	if err != nil {
		respondServiceError(c, err, "Failed to process file")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "File uploaded and processed successfully",
		"data":    result,
	})
}

func (h *SalesHandler) ListFiles(c *gin.Context) {
	limit := parsePositiveIntWithDefault(c.Query("limit"), 50)
	offset := parseNonNegativeInt(c.Query("offset"))

	files, err := h.service.ListFiles(c.Request.Context(), limit, offset)
	if err != nil {
		respondServiceError(c, err, "Failed to fetch files")
		return
	}
	if files == nil {
		files = make([]domain.UploadBatch, 0)
	}

	respondOK(c, files)
}

func (h *SalesHandler) DeleteFile(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, "File ID is required")
		return
	}

	deleted, err := h.service.DeleteFile(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "Failed to delete file")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "File deleted successfully",
		"data":    deleted,
	})
}

func (h *SalesHandler) ListSales(c *gin.Context) {
	filter := parseSalesFilter(c)
	filter.Limit = parsePositiveIntWithDefault(c.Query("limit"), 1000)

	records, err := h.service.ListSales(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err, "Failed to fetch sales data")
		return
	}
	if records == nil {
		records = make([]domain.SalesRecord, 0)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": records, "count": len(records)})
}

type salesRecordInput struct {
	GrandTotal   float64 `json:"grand_total"`
	Week         int     `json:"week"`
	Date         string  `json:"date"`
	Product      string  `json:"product"`
	Category     string  `json:"category"`
	CustomerNo   string  `json:"customer_no"`
	Customer     string  `json:"customer"`
	CustomerType string  `json:"customer_type"`
	Salesman     string  `json:"salesman"`
	Village      string  `json:"village"`
	District     string  `json:"district"`
	City         string  `json:"city"`
	Area         *string `json:"area"`
	UnitsBks     float64 `json:"units_bks"`
	UnitsSlop    float64 `json:"units_slop"`
	UnitsBal     float64 `json:"units_bal"`
	UnitsDos     float64 `json:"units_dos"`
	Omzet        float64 `json:"omzet"`
}

// CreateSales inserts manually entered records in one transaction.
func (h *SalesHandler) CreateSales(c *gin.Context) {
	var body struct {
		Records []salesRecordInput `json:"records"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Records == nil {
		respondError(c, http.StatusBadRequest, "Invalid records data")
		return
	}

	records := make([]domain.SalesRecord, 0, len(body.Records))
	for _, in := range body.Records {
		// An unparseable date stays zero and is rejected by validation.
		date, _ := sales.ParseDate(in.Date)
		records = append(records, domain.SalesRecord{
			GrandTotal:   in.GrandTotal,
			Week:         in.Week,
			Date:         date,
			Product:      strings.TrimSpace(in.Product),
			Category:     in.Category,
			CustomerNo:   in.CustomerNo,
			Customer:     strings.TrimSpace(in.Customer),
			CustomerType: in.CustomerType,
			Salesman:     in.Salesman,
			Village:      in.Village,
			District:     in.District,
			City:         in.City,
			Area:         in.Area,
			UnitsBks:     in.UnitsBks,
			UnitsSlop:    in.UnitsSlop,
			UnitsBal:     in.UnitsBal,
			UnitsDos:     in.UnitsDos,
			Omzet:        in.Omzet,
		})
	}

	ids, err := h.service.CreateSales(c.Request.Context(), records)
	if err != nil {
		respondServiceError(c, err, "Failed to insert sales data")
		return
	}

	inserted := make([]gin.H, 0, len(ids))
	for _, id := range ids {
		inserted = append(inserted, gin.H{"id": id})
	}
	respondOK(c, gin.H{"inserted_count": len(ids), "records": inserted})
}

func (h *SalesHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "Failed to fetch statistics")
		return
	}
	respondOK(c, stats)
}

func (h *SalesHandler) Cities(c *gin.Context) {
	year1 := parseNonNegativeInt(c.Query("year1"))
	year2 := parseNonNegativeInt(c.Query("year2"))

	cities, err := h.service.Cities(c.Request.Context(), year1, year2)
	if err != nil {
		respondServiceError(c, err, "Failed to fetch cities")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": cities, "count": len(cities)})
}

func (h *SalesHandler) Dashboard(c *gin.Context) {
	dashboard, err := h.service.Dashboard(c.Request.Context(), parseSalesFilter(c))
	if err != nil {
		respondServiceError(c, err, "Failed to fetch dashboard data")
		return
	}
	respondOK(c, dashboard)
}

func parseSalesFilter(c *gin.Context) domain.SalesFilter {
	return domain.SalesFilter{
		Year1:   parseNonNegativeInt(c.Query("year1")),
		Year2:   parseNonNegativeInt(c.Query("year2")),
		Product: strings.TrimSpace(c.Query("product")),
		Area:    strings.TrimSpace(c.Query("area")),
		City:    strings.TrimSpace(c.Query("city")),
	}
}

// isAllowedUpload checks the declared content type against the allow-list,
// falling back to the extension for generic types.
func isAllowedUpload(contentType, filename string) bool {
	mediaType := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	for _, allowed := range sales.AllowedMimeTypes {
		if mediaType == allowed {
			return true
		}
	}
	if mediaType == "" || mediaType == "application/octet-stream" {
		return sales.MimeTypeForExtension(filename) != ""
	}
	return false
}
