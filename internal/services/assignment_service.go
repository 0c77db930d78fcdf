package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/JaligamRishitha/renewmart-sub003/internal/db/models"
	"github.com/JaligamRishitha/renewmart-sub003/pkg/metrics"
)

type AssignmentService struct {
	db      *gorm.DB
	audit   *AuditService
	logger  *zap.Logger
	metrics *metrics.MetricsCollector
}

type CreateAssignmentInput struct {
	DocumentID   string
	AssignedTo   string
	AssignedBy   string
	ReviewerRole string
	TaskID       string
	Notes        string
	DueDate      *time.Time
	Priority     string
}

func NewAssignmentService(db *gorm.DB, audit *AuditService, logger *zap.Logger, collector *metrics.MetricsCollector) *AssignmentService {
	return &AssignmentService{
		db:      db,
		audit:   audit,
		logger:  logger.With(zap.String("service", "assignment_service")),
		metrics: collector,
	}
}

// Create binds a reviewer to a version and takes the review lock in the
// same transaction; if either side fails, neither persists. The lock is
// recorded through the assign audit entry, not a separate lock entry.
func (s *AssignmentService) Create(ctx context.Context, in CreateAssignmentInput) (*models.Assignment, error) {
	start := time.Now()

	var created *models.Assignment
	var auditEntry *models.AuditEntry
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var open []models.Assignment
		if err := forUpdate(tx).
			Where("document_id = ? AND status IN ?", in.DocumentID,
				[]models.AssignmentStatus{models.AssignmentAssigned, models.AssignmentInProgress}).
			Find(&open).Error; err != nil {
			return storageErr(err)
		}
		if len(open) > 0 {
			return newError(KindAlreadyAssigned, "document %s already has an open assignment", in.DocumentID)
		}

		doc, err := lockVersionTx(tx, in.DocumentID, in.AssignedTo, "Assigned for review")
		if err != nil {
			return err
		}

		priority := in.Priority
		if priority == "" {
			priority = "normal"
		}
		assignment := &models.Assignment{
			ID:           uuid.New().String(),
			DocumentID:   doc.ID,
			LandID:       doc.LandID,
			AssignedTo:   in.AssignedTo,
			AssignedBy:   in.AssignedBy,
			ReviewerRole: in.ReviewerRole,
			TaskID:       in.TaskID,
			Notes:        in.Notes,
			DueDate:      in.DueDate,
			Priority:     priority,
			Status:       models.AssignmentAssigned,
			IsLocked:     true,
			LockReason:   "Assigned for review",
			AssignedAt:   time.Now().UTC(),
		}
		if err := tx.Create(assignment).Error; err != nil {
			return storageErr(err)
		}

		entry, err := s.audit.record(tx, doc.ID, doc.LandID, models.ActionAssign, in.AssignedBy, in.Notes, map[string]any{
			"assignment_id": assignment.ID,
			"assigned_to":   in.AssignedTo,
			"reviewer_role": in.ReviewerRole,
			"priority":      priority,
			"locked_by":     in.AssignedTo,
		})
		if err != nil {
			return err
		}

		created = assignment
		auditEntry = entry
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.announce(auditEntry)
	s.metrics.IncrementCounter("assignments_created", map[string]string{"role": in.ReviewerRole})
	s.metrics.ObserveLatency("assignment_create", time.Since(start))
	s.logger.Info("Assignment created",
		zap.String("assignment_id", created.ID),
		zap.String("document_id", created.DocumentID),
		zap.String("assigned_to", created.AssignedTo))
	return created, nil
}

// legal assignment transitions; everything else is InvalidTransition
var assignmentTransitions = map[models.AssignmentStatus][]models.AssignmentStatus{
	models.AssignmentAssigned:   {models.AssignmentInProgress, models.AssignmentCancelled},
	models.AssignmentInProgress: {models.AssignmentCompleted, models.AssignmentCancelled},
}

func transitionAllowed(from, to models.AssignmentStatus) bool {
	for _, s := range assignmentTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Transition advances an assignment through its lifecycle. Reaching a
// terminal state releases the document's review lock in the same
// transaction and emits the matching complete/cancel audit entry.
func (s *AssignmentService) Transition(ctx context.Context, assignmentID string, newStatus models.AssignmentStatus, actorID string) (*models.Assignment, error) {
	var updated *models.Assignment
	var auditEntry *models.AuditEntry
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var assignment models.Assignment
		if err := forUpdate(tx).First(&assignment, "id = ?", assignmentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return newError(KindNotFound, "assignment %s not found", assignmentID)
			}
			return storageErr(err)
		}
		if !transitionAllowed(assignment.Status, newStatus) {
			return newError(KindInvalidTransition, "assignment %s cannot move from %s to %s",
				assignmentID, assignment.Status, newStatus)
		}

		now := time.Now().UTC()
		updates := map[string]any{"status": newStatus}
		switch newStatus {
		case models.AssignmentInProgress:
			updates["started_at"] = &now
			assignment.StartedAt = &now
		case models.AssignmentCompleted, models.AssignmentCancelled:
			updates["completed_at"] = &now
			updates["is_locked"] = false
			assignment.CompletedAt = &now
			assignment.IsLocked = false
		}
		if err := tx.Model(&models.Assignment{}).Where("id = ?", assignment.ID).Updates(updates).Error; err != nil {
			return storageErr(err)
		}
		assignment.Status = newStatus

		if newStatus == models.AssignmentCompleted || newStatus == models.AssignmentCancelled {
			doc, err := unlockVersionTx(tx, assignment.DocumentID, string(newStatus)+" by reviewer")
			if err != nil {
				return err
			}

			action := models.ActionComplete
			if newStatus == models.AssignmentCancelled {
				action = models.ActionCancel
			}
			entry, err := s.audit.record(tx, assignment.DocumentID, assignment.LandID, action, actorID, "", map[string]any{
				"assignment_id": assignment.ID,
				"assigned_to":   assignment.AssignedTo,
				"review_status": doc.ReviewStatus,
			})
			if err != nil {
				return err
			}
			auditEntry = entry
		}

		updated = &assignment
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.announce(auditEntry)
	s.metrics.IncrementCounter("assignment_transitions", map[string]string{"to": string(updated.Status)})
	s.logger.Info("Assignment transitioned",
		zap.String("assignment_id", updated.ID),
		zap.String("status", string(updated.Status)))
	return updated, nil
}

// ListForReviewer returns a reviewer's assignments, optionally narrowed
// to one status, most recent first.
func (s *AssignmentService) ListForReviewer(ctx context.Context, reviewerID string, status models.AssignmentStatus) ([]models.Assignment, error) {
	q := s.db.WithContext(ctx).Where("assigned_to = ?", reviewerID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var assignments []models.Assignment
	if err := q.Order("assigned_at DESC").Find(&assignments).Error; err != nil {
		return nil, storageErr(err)
	}
	return assignments, nil
}

// ListForLand returns every assignment across a land's documents.
func (s *AssignmentService) ListForLand(ctx context.Context, landID string) ([]models.Assignment, error) {
	var assignments []models.Assignment
	if err := s.db.WithContext(ctx).
		Where("land_id = ?", landID).
		Order("assigned_at DESC").
		Find(&assignments).Error; err != nil {
		return nil, storageErr(err)
	}
	return assignments, nil
}
