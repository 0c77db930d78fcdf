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

type VersionService struct {
	db      *gorm.DB
	audit   *AuditService
	logger  *zap.Logger
	metrics *metrics.MetricsCollector
}

// FileRef is the opaque reference handed over by the upload collaborator
// after it has stored the bytes elsewhere.
type FileRef struct {
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	MimeType string `json:"mime_type"`
}

type SlotGroup struct {
	DocumentType string                   `json:"document_type"`
	Slot         string                   `json:"slot"`
	Versions     []models.DocumentVersion `json:"versions"`
}

type TypeSummary struct {
	DocumentType string `json:"document_type"`
	Total        int    `json:"total"`
	Active       int    `json:"active"`
	UnderReview  int    `json:"under_review"`
	Archived     int    `json:"archived"`
	MaxVersion   int    `json:"max_version"`
}

func NewVersionService(db *gorm.DB, audit *AuditService, logger *zap.Logger, collector *metrics.MetricsCollector) *VersionService {
	return &VersionService{
		db:      db,
		audit:   audit,
		logger:  logger.With(zap.String("service", "version_service")),
		metrics: collector,
	}
}

// Append records a new uploaded version in its slot. The previous latest
// version is superseded in the same transaction: it loses isLatest and is
// archived unless it is currently under review, in which case it keeps
// its status so the review can finish against the old draft.
func (vs *VersionService) Append(ctx context.Context, landID, documentType, requestedSlot string, file FileRef, uploadedBy string) (*models.DocumentVersion, error) {
	start := time.Now()

	if IsMultiSlot(documentType) && requestedSlot != "" && !slotAllowed(documentType, requestedSlot) {
		return nil, newError(KindInvalidSlot, "slot %q is not permitted for document type %q", requestedSlot, documentType)
	}

	var created *models.DocumentVersion
	var auditEntry *models.AuditEntry
	err := vs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var siblings []models.DocumentVersion
		if err := forUpdate(tx).
			Where("land_id = ? AND document_type = ?", landID, documentType).
			Order("version_number DESC").
			Find(&siblings).Error; err != nil {
			return storageErr(err)
		}

		occupancy := make(map[string]int)
		for _, v := range siblings {
			occupancy[v.Slot]++
		}
		slot := AssignSlot(documentType, requestedSlot, occupancy)

		next := 1
		for _, v := range siblings {
			if v.Slot != slot {
				continue
			}
			if v.VersionNumber >= next {
				next = v.VersionNumber + 1
			}
			if !v.IsLatest {
				continue
			}
			updates := map[string]any{"is_latest": false}
			if v.ReviewStatus != models.StatusUnderReview {
				updates["review_status"] = models.StatusArchived
			}
			if err := tx.Model(&models.DocumentVersion{}).
				Where("id = ?", v.ID).
				Updates(updates).Error; err != nil {
				return storageErr(err)
			}
		}

		doc := &models.DocumentVersion{
			ID:            uuid.New().String(),
			LandID:        landID,
			DocumentType:  documentType,
			Slot:          slot,
			VersionNumber: next,
			IsLatest:      true,
			FileName:      file.Name,
			FileSize:      file.Size,
			MimeType:      file.MimeType,
			UploadedBy:    uploadedBy,
			ReviewStatus:  models.StatusActive,
			CreatedAt:     time.Now().UTC(),
		}
		if err := tx.Create(doc).Error; err != nil {
			return storageErr(err)
		}

		entry, err := vs.audit.record(tx, doc.ID, landID, models.ActionUpload, uploadedBy, "", map[string]any{
			"document_type":  documentType,
			"slot":           slot,
			"version_number": next,
			"file_name":      file.Name,
		})
		if err != nil {
			return err
		}

		created = doc
		auditEntry = entry
		return nil
	})
	if err != nil {
		return nil, err
	}

	vs.audit.announce(auditEntry)
	vs.metrics.IncrementCounter("documents_uploaded", map[string]string{"type": documentType})
	vs.metrics.ObserveSize("document_size", float64(file.Size))
	vs.metrics.ObserveLatency("version_append", time.Since(start))
	vs.logger.Info("Version appended",
		zap.String("land_id", landID),
		zap.String("document_type", documentType),
		zap.String("slot", created.Slot),
		zap.Int("version", created.VersionNumber))
	return created, nil
}

// List returns the land's versions grouped by (type, slot), newest
// version first within each group. documentType narrows the result when
// non-empty. Read-only.
func (vs *VersionService) List(ctx context.Context, landID, documentType string) ([]SlotGroup, error) {
	q := vs.db.WithContext(ctx).Where("land_id = ?", landID)
	if documentType != "" {
		q = q.Where("document_type = ?", documentType)
	}

	var docs []models.DocumentVersion
	if err := q.Order("document_type ASC, slot ASC, version_number DESC").Find(&docs).Error; err != nil {
		return nil, storageErr(err)
	}

	groups := make([]SlotGroup, 0)
	for _, d := range docs {
		n := len(groups)
		if n == 0 || groups[n-1].DocumentType != d.DocumentType || groups[n-1].Slot != d.Slot {
			groups = append(groups, SlotGroup{DocumentType: d.DocumentType, Slot: d.Slot})
			n++
		}
		groups[n-1].Versions = append(groups[n-1].Versions, d)
	}
	return groups, nil
}

// StatusSummary is a pure projection over List: per-type counts by review
// status plus the highest version number seen.
func (vs *VersionService) StatusSummary(ctx context.Context, landID string) ([]TypeSummary, error) {
	groups, err := vs.List(ctx, landID, "")
	if err != nil {
		return nil, err
	}

	byType := make(map[string]*TypeSummary)
	order := make([]string, 0)
	for _, g := range groups {
		s, ok := byType[g.DocumentType]
		if !ok {
			s = &TypeSummary{DocumentType: g.DocumentType}
			byType[g.DocumentType] = s
			order = append(order, g.DocumentType)
		}
		for _, v := range g.Versions {
			s.Total++
			switch v.ReviewStatus {
			case models.StatusActive:
				s.Active++
			case models.StatusUnderReview:
				s.UnderReview++
			case models.StatusArchived:
				s.Archived++
			}
			if v.VersionNumber > s.MaxVersion {
				s.MaxVersion = v.VersionNumber
			}
		}
	}

	summaries := make([]TypeSummary, 0, len(order))
	for _, t := range order {
		summaries = append(summaries, *byType[t])
	}
	return summaries, nil
}

// Get loads one version by id.
func (vs *VersionService) Get(ctx context.Context, documentID string) (*models.DocumentVersion, error) {
	var doc models.DocumentVersion
	if err := vs.db.WithContext(ctx).First(&doc, "id = ?", documentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(KindNotFound, "document %s not found", documentID)
		}
		return nil, storageErr(err)
	}
	return &doc, nil
}

// Purge is the administrative escape hatch: it removes a version together
// with its assignments and audit rows in one transaction. Nothing else
// ever deletes a version.
func (vs *VersionService) Purge(ctx context.Context, documentID string) error {
	err := vs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var doc models.DocumentVersion
		if err := forUpdate(tx).First(&doc, "id = ?", documentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return newError(KindNotFound, "document %s not found", documentID)
			}
			return storageErr(err)
		}
		if err := tx.Where("document_id = ?", documentID).Delete(&models.Assignment{}).Error; err != nil {
			return storageErr(err)
		}
		if err := tx.Where("document_id = ?", documentID).Delete(&models.AuditEntry{}).Error; err != nil {
			return storageErr(err)
		}
		if err := tx.Delete(&doc).Error; err != nil {
			return storageErr(err)
		}

		// removing the latest version must not leave a non-empty slot
		// without a latest: the highest surviving version takes over
		if doc.IsLatest {
			var heir models.DocumentVersion
			err := forUpdate(tx).
				Where("land_id = ? AND document_type = ? AND slot = ?", doc.LandID, doc.DocumentType, doc.Slot).
				Order("version_number DESC").
				First(&heir).Error
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				// slot is empty now
			case err != nil:
				return storageErr(err)
			default:
				if err := tx.Model(&models.DocumentVersion{}).
					Where("id = ?", heir.ID).
					Update("is_latest", true).Error; err != nil {
					return storageErr(err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	vs.metrics.IncrementCounter("documents_purged", nil)
	vs.logger.Warn("Document purged", zap.String("document_id", documentID))
	return nil
}
