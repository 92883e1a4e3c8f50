package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"leadflow_backend/internal/events"
	"leadflow_backend/internal/pipeline/repository"
	"leadflow_backend/internal/pipeline/service"
	"leadflow_backend/internal/pipeline/transport"
	"leadflow_backend/platform/logger"
	"leadflow_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func newRouter(t *testing.T) (*gin.Engine, *service.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.Discard()
	bus := events.NewInMemoryBus(log)
	t.Cleanup(bus.Wait)
	svc, err := service.New(context.Background(), repository.NewMemory(), bus, log)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	r := gin.New()
	New(svc, validator.New()).RegisterRoutes(r.Group("/stages"))
	return r, svc
}

func do(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
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

func TestCreateAndReorderStages(t *testing.T) {
	r, svc := newRouter(t)

	w := do(r, http.MethodPost, "/stages", map[string]any{"name": "Demo", "position": 0})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created transport.StageResponse
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Order != 0 {
		t.Fatalf("expected order 0, got %d", created.Order)
	}

	list := svc.List(context.Background())
	ids := make([]uuid.UUID, 0, list.Total)
	for i := len(list.Items) - 1; i >= 0; i-- {
		ids = append(ids, list.Items[i].ID)
	}
	w = do(r, http.MethodPut, "/stages/reorder", map[string]any{"ids": ids})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var reordered transport.StageListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &reordered)
	if reordered.Items[len(reordered.Items)-1].Name != "Demo" {
		t.Fatalf("expected Demo last, got %+v", reordered.Items)
	}
}

func TestStageErrors(t *testing.T) {
	r, _ := newRouter(t)

	if w := do(r, http.MethodPost, "/stages", map[string]any{"name": "  "}); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank name, got %d", w.Code)
	}
	if w := do(r, http.MethodPost, "/stages", map[string]any{"name": "won"}); w.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate name, got %d", w.Code)
	}
	if w := do(r, http.MethodGet, "/stages/"+uuid.NewString(), nil); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if w := do(r, http.MethodDelete, "/stages/nope", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed id, got %d", w.Code)
	}
	if w := do(r, http.MethodPut, "/stages/reorder", map[string]any{"ids": []string{uuid.NewString()}}); w.Code != http.StatusBadRequest {
		t.Fatalf("expected incomplete reorder to be rejected, got %d", w.Code)
	}
}
