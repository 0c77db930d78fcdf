package services

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/JaligamRishitha/renewmart-sub003/internal/db/models"
	"github.com/JaligamRishitha/renewmart-sub003/pkg/metrics"
)

type testEnv struct {
	db          *gorm.DB
	audit       *AuditService
	versions    *VersionService
	reviews     *ReviewService
	assignments *AssignmentService
	publisher   *capturePublisher
}

// capturePublisher records what would be fanned out to the notification
// collaborator.
type capturePublisher struct {
	events chan []byte
}

func (p *capturePublisher) Publish(ctx context.Context, channel string, payload []byte) error {
	select {
	case p.events <- payload:
	default:
	}
	return nil
}

func (p *capturePublisher) Close() error { return nil }

func newTestEnv(t *testing.T) *testEnv {
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
	publisher := &capturePublisher{events: make(chan []byte, 16)}
	audit := NewAuditService(database, logger, publisher, "test.events")

	return &testEnv{
		db:          database,
		audit:       audit,
		versions:    NewVersionService(database, audit, logger, collector),
		reviews:     NewReviewService(database, audit, logger, collector),
		assignments: NewAssignmentService(database, audit, logger, collector),
		publisher:   publisher,
	}
}

func mustAppend(t *testing.T, env *testEnv, landID, docType, slot string) *models.DocumentVersion {
	t.Helper()
	doc, err := env.versions.Append(context.Background(), landID, docType, slot, FileRef{
		Name:     "deed.pdf",
		Size:     2048,
		MimeType: "application/pdf",
	}, "uploader-1")
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	return doc
}

func reload(t *testing.T, env *testEnv, id string) *models.DocumentVersion {
	t.Helper()
	var doc models.DocumentVersion
	if err := env.db.First(&doc, "id = ?", id).Error; err != nil {
		t.Fatalf("reload document %s: %v", id, err)
	}
	return &doc
}

func auditActions(t *testing.T, env *testEnv, documentID string) []models.AuditAction {
	t.Helper()
	entries, err := env.audit.History(context.Background(), documentID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	actions := make([]models.AuditAction, len(entries))
	for i, e := range entries {
		actions[i] = e.ActionType
	}
	return actions
}
