package handler

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"leadflow_backend/internal/events"
	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/internal/leads/management"
	"leadflow_backend/internal/leads/ports"
	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/internal/leads/scoring"
	"leadflow_backend/internal/leads/transport"
	"leadflow_backend/platform/httpkit"
	"leadflow_backend/platform/logger"
	"leadflow_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.Discard()
	bus := events.NewInMemoryBus(log)
	t.Cleanup(bus.Wait)
	val := validator.New()
	svc := management.New(
		repository.NewMemory(scoring.Default()),
		repository.NewActivityStore(),
		ports.StaticStages(domain.DefaultStages),
		bus, log,
		management.WithValidator(val),
	)

	h := New(svc, nil, val, 1<<20)
	r := gin.New()
	h.RegisterRoutes(r.Group("/leads"))
	h.RegisterScoringRoutes(r.Group("/scoring"))
	return r
}

func doJSON(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateAndGetLead(t *testing.T) {
	r := newRouter(t)

	w := doJSON(r, http.MethodPost, "/leads", map[string]string{
		"name": "Ada", "email": "ada@example.com", "industry": "Technology",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created transport.LeadResponse
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Score != 30 {
		t.Fatalf("expected score 30, got %d", created.Score)
	}

	w = doJSON(r, http.MethodGet, "/leads/"+created.ID.String(), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestCreateValidationAndConflict(t *testing.T) {
	r := newRouter(t)

	w := doJSON(r, http.MethodPost, "/leads", map[string]string{"name": "No Email"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}

	doJSON(r, http.MethodPost, "/leads", map[string]string{"email": "a@x.com"})
	w = doJSON(r, http.MethodPost, "/leads", map[string]string{"email": "A@x.com"})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
}

func TestUnknownLeadIs404(t *testing.T) {
	r := newRouter(t)

	w := doJSON(r, http.MethodPatch, "/leads/2b1c6f1e-7a42-4a7e-9df8-1c3f5b0e9a11", map[string]string{"name": "x"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	w = doJSON(r, http.MethodGet, "/leads/not-a-uuid", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed id, got %d", w.Code)
	}
}

func TestUpdateScoringConfigReportsTotalWeight(t *testing.T) {
	r := newRouter(t)

	body := map[string]any{"fields": []map[string]any{
		{"fieldName": "industry", "isActive": true, "weight": 60, "rules": []map[string]any{
			{"condition": "equals", "value": "Finance", "points": 100},
		}},
		{"fieldName": "source", "isActive": true, "weight": 30, "rules": []map[string]any{}},
	}}
	w := doJSON(r, http.MethodPut, "/scoring/config", body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}

	var resp httpkit.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	details, _ := resp.Details.(map[string]any)
	if details["totalWeight"] != float64(90) {
		t.Fatalf("expected totalWeight 90, got %v", resp.Details)
	}
}

func TestImportJSONRows(t *testing.T) {
	r := newRouter(t)

	w := doJSON(r, http.MethodPost, "/leads/import", map[string]any{
		"source": "crm-export",
		"leads": []map[string]string{
			{"email": "a@x.com"},
			{"email": "A@X.com"},
			{"email": ""},
		},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp transport.ImportResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ImportedCount != 1 || resp.SkippedCount != 1 || resp.InvalidCount != 1 {
		t.Fatalf("unexpected counts %+v", resp)
	}
}

func TestListLeadsReturnsItemsAndTotal(t *testing.T) {
	r := newRouter(t)
	doJSON(r, http.MethodPost, "/leads", map[string]string{"name": "Amy", "email": "amy@x.com", "status": "Qualified"})
	doJSON(r, http.MethodPost, "/leads", map[string]string{"name": "Bob", "email": "bob@x.com"})

	w := doJSON(r, http.MethodGet, "/leads?status=qualified", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var list transport.LeadListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if list.Total != 1 || len(list.Items) != 1 || list.Items[0].Email != "amy@x.com" {
		t.Fatalf("expected one qualified lead with total 1, got %s", w.Body.String())
	}
}

func TestImportCSVUpload(t *testing.T) {
	r := newRouter(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "leads.csv")
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	_, _ = fw.Write([]byte("Email,Company\nb@x.com,Acme\nc@x.com,\n"))
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/leads/import/csv", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"importedCount":2`) {
		t.Fatalf("expected two imported rows, got %s", w.Body.String())
	}
}

func TestAsyncImportRoutesDisabledWithoutQueue(t *testing.T) {
	r := newRouter(t)
	w := doJSON(r, http.MethodGet, "/leads/import/jobs/abc", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 when async import is off, got %d", w.Code)
	}
}

func TestExportCSV(t *testing.T) {
	r := newRouter(t)
	doJSON(r, http.MethodPost, "/leads", map[string]string{"name": "Zed", "email": "zed@x.com"})
	doJSON(r, http.MethodPost, "/leads", map[string]string{"name": "Ada", "email": "ada@x.com", "industry": "Technology"})

	w := doJSON(r, http.MethodGet, "/leads/export?sortBy=name", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/csv" {
		t.Fatalf("unexpected content type %q", ct)
	}

	records, err := csv.NewReader(w.Body).ReadAll()
	if err != nil {
		t.Fatalf("parse export: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(records))
	}
	if records[0][1] != "name" || records[1][1] != "Ada" || records[2][1] != "Zed" {
		t.Fatalf("unexpected export %v", records)
	}
	if records[1][13] != "30" {
		t.Fatalf("expected score column 30, got %q", records[1][13])
	}
}
