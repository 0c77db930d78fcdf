package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/JaligamRishitha/renewmart-sub003/internal/db/models"
	"github.com/JaligamRishitha/renewmart-sub003/internal/notify"
	"github.com/JaligamRishitha/renewmart-sub003/internal/services"
	"github.com/JaligamRishitha/renewmart-sub003/pkg/metrics"
)

func newTestRouter(t *testing.T) *Router {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"))
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("unwrap sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.AutoMigrate(
		&models.DocumentVersion{},
		&models.Assignment{},
		&models.AuditEntry{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	logger := zap.NewNop()
	collector := metrics.NewMetricsCollector()
	audit := services.NewAuditService(database, logger, notify.NopPublisher{}, "test.events")
	versionService := services.NewVersionService(database, audit, logger, collector)
	reviewService := services.NewReviewService(database, audit, logger, collector)
	assignmentService := services.NewAssignmentService(database, audit, logger, collector)

	router := NewRouter(logger, collector, versionService, reviewService, assignmentService, audit, []string{"*"})
	router.SetupRoutes()
	return router
}

func doJSON(t *testing.T, router *Router, method, path string, body any, actor string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if actor != "" {
		req.Header.Set("X-Actor-Id", actor)
	}
	w := httptest.NewRecorder()
	router.GetEngine().ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)
	w := doJSON(t, router, http.MethodGet, "/health", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestMissingActorHeaderRejected(t *testing.T) {
	router := newTestRouter(t)
	w := doJSON(t, router, http.MethodGet, "/api/v1/lands/land-1/documents", nil, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without actor header, got %d", w.Code)
	}
}

func TestAppendAndLockOverHTTP(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/lands/land-1/documents", map[string]any{
		"document_type": "soil_report",
		"file":          map[string]any{"name": "survey.pdf", "size": 4096, "mime_type": "application/pdf"},
	}, "uploader-1")
	if w.Code != http.StatusCreated {
		t.Fatalf("append: expected 201, got %d (%s)", w.Code, w.Body.String())
	}

	var created struct {
		Data models.DocumentVersion `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Data.VersionNumber != 1 || !created.Data.IsLatest {
		t.Fatalf("unexpected version: %+v", created.Data)
	}

	w = doJSON(t, router, http.MethodPost, "/api/v1/documents/"+created.Data.ID+"/lock",
		map[string]any{"reason": "compliance check"}, "admin-1")
	if w.Code != http.StatusOK {
		t.Fatalf("lock: expected 200, got %d (%s)", w.Code, w.Body.String())
	}

	// second lock on the same slot conflicts
	w = doJSON(t, router, http.MethodPost, "/api/v1/documents/"+created.Data.ID+"/lock",
		map[string]any{"reason": "again"}, "admin-2")
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
	var errBody struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &errBody); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if errBody.Kind != "AlreadyLocked" {
		t.Fatalf("expected AlreadyLocked kind, got %q", errBody.Kind)
	}
}

func TestInvalidSlotOverHTTP(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/lands/land-1/documents", map[string]any{
		"document_type": "ownership_documents",
		"slot":          "D9",
		"file":          map[string]any{"name": "deed.pdf", "size": 1024, "mime_type": "application/pdf"},
	}, "uploader-1")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d (%s)", w.Code, w.Body.String())
	}
}

func TestAuditTrailOverHTTP(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/lands/land-9/documents", map[string]any{
		"document_type": "soil_report",
		"file":          map[string]any{"name": "soil.pdf", "size": 100, "mime_type": "application/pdf"},
	}, "uploader-1")
	if w.Code != http.StatusCreated {
		t.Fatalf("append: got %d", w.Code)
	}
	var created struct {
		Data models.DocumentVersion `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	w = doJSON(t, router, http.MethodGet, "/api/v1/documents/"+created.Data.ID+"/audit", nil, "admin-1")
	if w.Code != http.StatusOK {
		t.Fatalf("audit: got %d", w.Code)
	}
	var trail struct {
		Data []models.AuditEntry `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &trail); err != nil {
		t.Fatalf("decode trail: %v", err)
	}
	if len(trail.Data) != 1 || trail.Data[0].ActionType != models.ActionUpload {
		t.Fatalf("expected single upload entry, got %+v", trail.Data)
	}
}
