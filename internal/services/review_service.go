package services

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/JaligamRishitha/renewmart-sub003/internal/db/models"
	"github.com/JaligamRishitha/renewmart-sub003/pkg/metrics"
)

// ReviewService runs the per-version review state machine
// (active → under_review → active|archived) and enforces that at most one
// version per (land, type, slot) is under review at a time.
type ReviewService struct {
	db      *gorm.DB
	audit   *AuditService
	logger  *zap.Logger
	metrics *metrics.MetricsCollector
}

func NewReviewService(db *gorm.DB, audit *AuditService, logger *zap.Logger, collector *metrics.MetricsCollector) *ReviewService {
	return &ReviewService{
		db:      db,
		audit:   audit,
		logger:  logger.With(zap.String("service", "review_service")),
		metrics: collector,
	}
}

// lockVersionTx takes the review lock inside an open transaction. The
// one-under-review invariant is slot-wide: every sibling row is locked
// FOR UPDATE and checked, not just the target, so two concurrent lock
// calls on different versions of one slot cannot both succeed.
func lockVersionTx(tx *gorm.DB, documentID, lockedBy, reason string) (*models.DocumentVersion, error) {
	var doc models.DocumentVersion
	if err := forUpdate(tx).First(&doc, "id = ?", documentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(KindNotFound, "document %s not found", documentID)
		}
		return nil, storageErr(err)
	}

	var siblings []models.DocumentVersion
	if err := forUpdate(tx).
		Where("land_id = ? AND document_type = ? AND slot = ?", doc.LandID, doc.DocumentType, doc.Slot).
		Find(&siblings).Error; err != nil {
		return nil, storageErr(err)
	}
	for _, s := range siblings {
		if s.ReviewStatus == models.StatusUnderReview {
			return nil, newError(KindAlreadyLocked, "slot %s of %s already has version %d under review",
				doc.Slot, doc.DocumentType, s.VersionNumber)
		}
	}
	if doc.ReviewStatus == models.StatusArchived {
		return nil, newError(KindInvalidTransition, "document %s is archived and cannot be locked", documentID)
	}

	now := time.Now().UTC()
	doc.ReviewStatus = models.StatusUnderReview
	doc.LockedAt = &now
	doc.LockedBy = lockedBy
	doc.ChangeReason = reason
	if err := tx.Model(&models.DocumentVersion{}).Where("id = ?", doc.ID).Updates(map[string]any{
		"review_status": doc.ReviewStatus,
		"locked_at":     doc.LockedAt,
		"locked_by":     doc.LockedBy,
		"change_reason": doc.ChangeReason,
	}).Error; err != nil {
		return nil, storageErr(err)
	}
	return &doc, nil
}

// unlockVersionTx releases the review lock inside an open transaction.
// The version returns to active even when a newer upload superseded it
// during the review; archival of a superseded version happens at append
// time or through an explicit archive call, never implicitly on unlock.
func unlockVersionTx(tx *gorm.DB, documentID, reason string) (*models.DocumentVersion, error) {
	var doc models.DocumentVersion
	if err := forUpdate(tx).First(&doc, "id = ?", documentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(KindNotFound, "document %s not found", documentID)
		}
		return nil, storageErr(err)
	}
	if doc.ReviewStatus != models.StatusUnderReview {
		return nil, newError(KindNotLocked, "document %s is not under review", documentID)
	}

	doc.ReviewStatus = models.StatusActive
	doc.LockedAt = nil
	doc.LockedBy = ""
	doc.ChangeReason = reason
	if err := tx.Model(&models.DocumentVersion{}).Where("id = ?", doc.ID).Updates(map[string]any{
		"review_status": doc.ReviewStatus,
		"locked_at":     nil,
		"locked_by":     "",
		"change_reason": doc.ChangeReason,
	}).Error; err != nil {
		return nil, storageErr(err)
	}
	return &doc, nil
}

// Lock moves a version to under_review on behalf of an admin action.
func (rs *ReviewService) Lock(ctx context.Context, documentID, lockedBy, reason string) (*models.DocumentVersion, error) {
	var doc *models.DocumentVersion
	err := rs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		locked, err := lockVersionTx(tx, documentID, lockedBy, reason)
		if err != nil {
			return err
		}
		if _, err := rs.audit.record(tx, locked.ID, locked.LandID, models.ActionLock, lockedBy, reason, map[string]any{
			"slot":           locked.Slot,
			"version_number": locked.VersionNumber,
			"locked_by":      lockedBy,
		}); err != nil {
			return err
		}
		doc = locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	rs.metrics.IncrementCounter("review_locks_acquired", nil)
	rs.logger.Info("Review lock acquired",
		zap.String("document_id", doc.ID),
		zap.String("locked_by", lockedBy))
	return doc, nil
}

// Unlock releases a review lock without going through an assignment.
func (rs *ReviewService) Unlock(ctx context.Context, documentID, actorID, reason string) (*models.DocumentVersion, error) {
	var doc *models.DocumentVersion
	err := rs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		unlocked, err := unlockVersionTx(tx, documentID, reason)
		if err != nil {
			return err
		}
		if _, err := rs.audit.record(tx, unlocked.ID, unlocked.LandID, models.ActionUnlock, actorID, reason, map[string]any{
			"slot":           unlocked.Slot,
			"version_number": unlocked.VersionNumber,
			"review_status":  unlocked.ReviewStatus,
		}); err != nil {
			return err
		}
		doc = unlocked
		return nil
	})
	if err != nil {
		return nil, err
	}

	rs.metrics.IncrementCounter("review_locks_released", nil)
	rs.logger.Info("Review lock released", zap.String("document_id", doc.ID))
	return doc, nil
}

// Archive retires a version from active or under_review. Archiving a
// locked version also cancels its open assignment in the same
// transaction. Archived is terminal.
func (rs *ReviewService) Archive(ctx context.Context, documentID, actorID, reason string) (*models.DocumentVersion, error) {
	var doc *models.DocumentVersion
	err := rs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var target models.DocumentVersion
		if err := forUpdate(tx).First(&target, "id = ?", documentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return newError(KindNotFound, "document %s not found", documentID)
			}
			return storageErr(err)
		}
		if target.ReviewStatus == models.StatusArchived {
			return newError(KindInvalidTransition, "document %s is already archived", documentID)
		}

		if target.ReviewStatus == models.StatusUnderReview {
			var open models.Assignment
			err := forUpdate(tx).
				Where("document_id = ? AND status IN ?", documentID,
					[]models.AssignmentStatus{models.AssignmentAssigned, models.AssignmentInProgress}).
				First(&open).Error
			switch {
			case err == nil:
				now := time.Now().UTC()
				if err := tx.Model(&models.Assignment{}).Where("id = ?", open.ID).Updates(map[string]any{
					"status":       models.AssignmentCancelled,
					"is_locked":    false,
					"completed_at": &now,
				}).Error; err != nil {
					return storageErr(err)
				}
				if _, err := rs.audit.record(tx, documentID, target.LandID, models.ActionCancel, actorID,
					"cancelled by archive", map[string]any{
						"assignment_id": open.ID,
						"assigned_to":   open.AssignedTo,
					}); err != nil {
					return err
				}
			case errors.Is(err, gorm.ErrRecordNotFound):
				// locked directly, no assignment to cancel
			default:
				return storageErr(err)
			}
		}

		target.ReviewStatus = models.StatusArchived
		target.LockedAt = nil
		target.LockedBy = ""
		target.ChangeReason = reason
		if err := tx.Model(&models.DocumentVersion{}).Where("id = ?", target.ID).Updates(map[string]any{
			"review_status": models.StatusArchived,
			"locked_at":     nil,
			"locked_by":     "",
			"change_reason": reason,
		}).Error; err != nil {
			return storageErr(err)
		}

		if _, err := rs.audit.record(tx, target.ID, target.LandID, models.ActionArchive, actorID, reason, map[string]any{
			"slot":           target.Slot,
			"version_number": target.VersionNumber,
		}); err != nil {
			return err
		}
		doc = &target
		return nil
	})
	if err != nil {
		return nil, err
	}

	rs.metrics.IncrementCounter("documents_archived", nil)
	rs.logger.Info("Document archived",
		zap.String("document_id", doc.ID),
		zap.String("actor", actorID))
	return doc, nil
}
