package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hafiizherdian/dashboard2y2/internal/domain"
	"github.com/Hafiizherdian/dashboard2y2/internal/pipeline/sales"
	"github.com/Hafiizherdian/dashboard2y2/internal/repository"
	"github.com/Hafiizherdian/dashboard2y2/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeSalesService struct {
	uploadErr   error
	lastUpload  service.UploadInput
	lastFilter  domain.SalesFilter
	lastCreated []domain.SalesRecord
	deleteErr   error
}

func (f *fakeSalesService) Upload(ctx context.Context, in service.UploadInput) (*service.UploadResult, error) {
	f.lastUpload = in
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	return &service.UploadResult{FileID: 9, Filename: in.Filename, RecordCount: 2, TotalOmzet: 3500000}, nil
}

func (f *fakeSalesService) ListFiles(ctx context.Context, limit, offset int) ([]domain.UploadBatch, error) {
	return nil, nil
}

func (f *fakeSalesService) DeleteFile(ctx context.Context, id int64) (*domain.UploadBatch, error) {
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	return &domain.UploadBatch{ID: id}, nil
}

func (f *fakeSalesService) ListSales(ctx context.Context, filter domain.SalesFilter) ([]domain.SalesRecord, error) {
	f.lastFilter = filter
	return []domain.SalesRecord{{ID: 1, Product: "Rokok A"}}, nil
}

func (f *fakeSalesService) CreateSales(ctx context.Context, records []domain.SalesRecord) ([]int64, error) {
	f.lastCreated = records
	ids := make([]int64, len(records))
	for i := range ids {
		ids[i] = int64(i + 1)
	}
	return ids, nil
}

func (f *fakeSalesService) Stats(ctx context.Context) (*domain.Stats, error) {
	return nil, errors.New("connection refused")
}

func (f *fakeSalesService) Cities(ctx context.Context, year1, year2 int) ([]string, error) {
	return []string{"Jember"}, nil
}

func (f *fakeSalesService) Dashboard(ctx context.Context, filter domain.SalesFilter) (*domain.SalesDashboard, error) {
	f.lastFilter = filter
	return &domain.SalesDashboard{}, nil
}

type fakeAreaService struct{}

func (fakeAreaService) List(ctx context.Context) ([]domain.Area, error) {
	return domain.DefaultAreas(), nil
}

func (fakeAreaService) Apply(ctx context.Context, action domain.AreaAction, area domain.Area) ([]domain.Area, error) {
	if action == domain.AreaActionAdd && area.ID == "jember" {
		return nil, repository.ErrAreaExists
	}
	return []domain.Area{area}, nil
}

func newTestRouter(svc *fakeSalesService) *gin.Engine {
	return NewRouter(&Services{SalesService: svc, AreaService: fakeAreaService{}}, Options{
		AllowedOrigins: []string{"*"},
		MaxUploadBytes: 1 << 20,
	})
}

func multipartUpload(t *testing.T, filename, contentType string, data []byte, area string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	if area != "" {
		require.NoError(t, writer.WriteField("area", area))
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	return payload
}

func TestUploadSuccess(t *testing.T) {
	svc := &fakeSalesService{}
	rec := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(rec, multipartUpload(t, "weekly.csv", "text/csv", []byte("a,b\n1,2\n"), "jember"))

	require.Equal(t, http.StatusOK, rec.Code)
	payload := decode(t, rec)
	assert.Equal(t, true, payload["success"])
	data := payload["data"].(map[string]interface{})
	assert.Equal(t, 2.0, data["recordCount"])
	assert.Equal(t, 3500000.0, data["totalOmzet"])
	assert.Equal(t, "jember", svc.lastUpload.Area)
	assert.Equal(t, "text/csv", svc.lastUpload.ContentType)
	assert.Equal(t, []byte("a,b\n1,2\n"), svc.lastUpload.Data)
}

func TestUploadErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"no valid rows", sales.ErrNoValidRows, http.StatusBadRequest},
		{"unknown area", service.ErrUnknownArea, http.StatusBadRequest},
		{"decode", &sales.DecodeError{File: "a.xlsx", Err: errors.New("zip: not a valid zip file")}, http.StatusInternalServerError},
		{"unexpected", errors.New("db down"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			newTestRouter(&fakeSalesService{uploadErr: tt.err}).
				ServeHTTP(rec, multipartUpload(t, "a.xlsx", sales.MimeXLSX, []byte("PK"), ""))

			assert.Equal(t, tt.wantStatus, rec.Code)
			payload := decode(t, rec)
			assert.Equal(t, false, payload["success"])
			assert.NotEmpty(t, payload["error"])
		})
	}
}

func TestUploadRejectsWrongType(t *testing.T) {
	svc := &fakeSalesService{}
	rec := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(rec, multipartUpload(t, "notes.pdf", "application/pdf", []byte("%PDF"), ""))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, svc.lastUpload.Filename, "service must not be called")
}

func TestUploadWithoutFile(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", nil)
	newTestRouter(&fakeSalesService{}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "No file uploaded", decode(t, rec)["error"])
}

func TestUploadTooLarge(t *testing.T) {
	router := NewRouter(&Services{SalesService: &fakeSalesService{}}, Options{MaxUploadBytes: 64})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, multipartUpload(t, "a.csv", "text/csv", bytes.Repeat([]byte("x"), 1024), ""))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestListSalesFilter(t *testing.T) {
	svc := &fakeSalesService{}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/sales?year1=2023&year2=2024&product=rokok&area=jember&limit=abc", nil)
	newTestRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.SalesFilter{Year1: 2023, Year2: 2024, Product: "rokok", Area: "jember", Limit: 1000}, svc.lastFilter)
	assert.Equal(t, 1.0, decode(t, rec)["count"])
}

func TestCreateSales(t *testing.T) {
	svc := &fakeSalesService{}
	body := `{"records":[{"date":"2024-03-04","week":10,"product":"Rokok A","customer":"Toko X","omzet":1500}]}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sales", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	newTestRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, svc.lastCreated, 1)
	assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), svc.lastCreated[0].Date)
	data := decode(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, 1.0, data["inserted_count"])

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/sales", bytes.NewBufferString(`{"rows":[]}`))
	req.Header.Set("Content-Type", "application/json")
	newTestRouter(svc).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteFile(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(&fakeSalesService{}).ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/files/3", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	newTestRouter(&fakeSalesService{deleteErr: repository.ErrNotFound}).
		ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/files/3", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	newTestRouter(&fakeSalesService{}).ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/files/abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListFilesNeverNull(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(&fakeSalesService{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/files", nil))
	assert.JSONEq(t, `{"success":true,"data":[]}`, rec.Body.String())
}

func TestStatsHidesInternalError(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(&fakeSalesService{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"Failed to fetch statistics"}`, rec.Body.String())
}

func TestAreas(t *testing.T) {
	router := newTestRouter(&fakeSalesService{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/areas", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(len(domain.DefaultAreas())), decode(t, rec)["count"])

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/areas", bytes.NewBufferString(`{"action":"add","area":{"id":"jember","name":"x"}}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDashboardAndHealth(t *testing.T) {
	svc := &fakeSalesService{}
	router := newTestRouter(svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/dashboard?year1=2023&year2=2024&city=Jember", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Jember", svc.lastFilter.City)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "sales_http_request_duration_seconds")
}

func TestNormalizeAllowedOrigins(t *testing.T) {
	origins, allowAll := normalizeAllowedOrigins([]string{"http://a.test, http://b.test", " "})
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, origins)
	assert.False(t, allowAll)

	_, allowAll = normalizeAllowedOrigins([]string{"*"})
	assert.True(t, allowAll)
}
