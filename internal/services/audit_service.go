package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/JaligamRishitha/renewmart-sub003/internal/db/models"
	"github.com/JaligamRishitha/renewmart-sub003/internal/notify"
)

// Audit actions fanned out to the notification collaborator.
var announcedActions = map[models.AuditAction]bool{
	models.ActionAssign:   true,
	models.ActionComplete: true,
}

type AuditService struct {
	db        *gorm.DB
	logger    *zap.Logger
	publisher notify.Publisher
	channel   string
}

func NewAuditService(db *gorm.DB, logger *zap.Logger, publisher notify.Publisher, channel string) *AuditService {
	return &AuditService{
		db:        db,
		logger:    logger.With(zap.String("service", "audit_service")),
		publisher: publisher,
		channel:   channel,
	}
}

// record appends one entry inside the caller's transaction. Insert
// failures propagate; the audit trail is never silently incomplete.
func (as *AuditService) record(tx *gorm.DB, documentID, landID string, action models.AuditAction, actorID, reason string, snapshot map[string]any) (*models.AuditEntry, error) {
	entry := &models.AuditEntry{
		ID:         uuid.New().String(),
		DocumentID: documentID,
		LandID:     landID,
		ActionType: action,
		ActorID:    actorID,
		Reason:     reason,
		CreatedAt:  time.Now().UTC(),
	}
	if snapshot != nil {
		raw, err := json.Marshal(snapshot)
		if err != nil {
			return nil, storageErr(err)
		}
		entry.Snapshot = datatypes.JSON(raw)
	}
	if err := tx.Create(entry).Error; err != nil {
		return nil, storageErr(err)
	}
	return entry, nil
}

// announce fans an entry out to the notification channel after its
// transaction committed. Failures are logged, never surfaced.
func (as *AuditService) announce(entry *models.AuditEntry) {
	if entry == nil || !announcedActions[entry.ActionType] {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		payload, err := json.Marshal(entry)
		if err != nil {
			as.logger.Error("marshal audit event failed", zap.Error(err))
			return
		}
		if err := as.publisher.Publish(ctx, as.channel, payload); err != nil {
			as.logger.Warn("audit event publish failed",
				zap.String("action", string(entry.ActionType)),
				zap.String("document_id", entry.DocumentID),
				zap.Error(err))
		}
	}()
}

// History returns the full audit trail for one document, oldest first.
func (as *AuditService) History(ctx context.Context, documentID string) ([]models.AuditEntry, error) {
	var entries []models.AuditEntry
	if err := as.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Order("created_at ASC").
		Find(&entries).Error; err != nil {
		return nil, storageErr(err)
	}
	return entries, nil
}

// LandHistory is the project-level activity feed across all documents of
// a land.
func (as *AuditService) LandHistory(ctx context.Context, landID string) ([]models.AuditEntry, error) {
	var entries []models.AuditEntry
	if err := as.db.WithContext(ctx).
		Where("land_id = ?", landID).
		Order("created_at ASC").
		Find(&entries).Error; err != nil {
		return nil, storageErr(err)
	}
	return entries, nil
}
