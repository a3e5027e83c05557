package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vnfin/refdata/internal/models"
	"github.com/vnfin/refdata/internal/services"
)

type stubStockStore struct{}

func (stubStockStore) Upsert(ctx context.Context, stock *models.Stock) (bool, error) {
	return true, nil
}
func (stubStockStore) EnsureExists(ctx context.Context, symbol string) (int64, error) {
	return 1, nil
}
func (stubStockStore) Exists(ctx context.Context, id int64) (bool, error) { return true, nil }

type stubEpsStore struct {
	mu   sync.Mutex
	seen map[string]bool
}

func (s *stubEpsStore) Upsert(ctx context.Context, rec *models.EpsRecord) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seen == nil {
		s.seen = make(map[string]bool)
	}
	key := rec.Symbol + rec.ReportDate.Format("2006-01-02")
	created := !s.seen[key]
	s.seen[key] = true
	return created, nil
}

func (s *stubEpsStore) UpsertBatch(ctx context.Context, recs []*models.EpsRecord) ([]bool, []error) {
	created := make([]bool, len(recs))
	errs := make([]error, len(recs))
	for i, rec := range recs {
		created[i], errs[i] = s.Upsert(ctx, rec)
	}
	return created, errs
}

func newTestRouter(maxBytes int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := services.NewImportService(100, stubStockStore{}, &stubEpsStore{}, nil, nil, nil, nil, nil)
	h := NewImportHandler(svc, maxBytes, 5*time.Second)
	r := gin.New()
	r.POST("/import/eps", h.ImportEps)
	return r
}

func buildMultipartRequest(t *testing.T, url, filename string, content []byte) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("creating form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("writing form file: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("closing multipart writer: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, url, body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestImportEps_Success(t *testing.T) {
	r := newTestRouter(1 << 20)
	content := []byte("Symbol,ReportDate,EPS\nVNM,15/01/2024,3.45\nFPT,15/01/2024,2.10\n")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, buildMultipartRequest(t, "/import/eps", "eps.csv", content))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var res models.ImportResult
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if res.Total != 2 || res.Created != 2 || res.Failed != 0 {
		t.Errorf("got total=%d created=%d failed=%d, want 2/2/0", res.Total, res.Created, res.Failed)
	}
	if res.BatchID == "" {
		t.Error("expected a batch id")
	}
}

func TestImportEps_MissingFile(t *testing.T) {
	r := newTestRouter(1 << 20)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/import/eps", nil)
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var res models.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if res.Error != "invalid_request" {
		t.Errorf("error = %q, want invalid_request", res.Error)
	}
}

func TestImportEps_UnsupportedFormat(t *testing.T) {
	r := newTestRouter(1 << 20)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, buildMultipartRequest(t, "/import/eps", "eps.pdf", []byte("%PDF-1.4")))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400, body = %s", rec.Code, rec.Body.String())
	}
}

func TestImportEps_EmptyFile(t *testing.T) {
	r := newTestRouter(1 << 20)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, buildMultipartRequest(t, "/import/eps", "eps.csv", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400, body = %s", rec.Code, rec.Body.String())
	}
}

func TestImportEps_MalformedCSV(t *testing.T) {
	r := newTestRouter(1 << 20)
	content := []byte("Symbol,ReportDate,EPS\nAAPL,\"broken,3.45\nX")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, buildMultipartRequest(t, "/import/eps", "eps.csv", content))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400, body = %s", rec.Code, rec.Body.String())
	}
	var res models.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if res.Error != "invalid_request" {
		t.Errorf("error = %q, want invalid_request", res.Error)
	}
}

func TestImportEps_CorruptExcel(t *testing.T) {
	r := newTestRouter(1 << 20)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, buildMultipartRequest(t, "/import/eps", "eps.xlsx", []byte("this is not a zip archive")))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400, body = %s", rec.Code, rec.Body.String())
	}
}

func TestImportEps_FileTooLarge(t *testing.T) {
	r := newTestRouter(16)
	content := []byte("Symbol,ReportDate,EPS\nVNM,15/01/2024,3.45\n")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, buildMultipartRequest(t, "/import/eps", "eps.csv", content))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400, body = %s", rec.Code, rec.Body.String())
	}
}
