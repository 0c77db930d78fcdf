package models

import (
	"time"
)

type ReviewStatus string

const (
	StatusActive      ReviewStatus = "active"
	StatusUnderReview ReviewStatus = "under_review"
	StatusArchived    ReviewStatus = "archived"
)

// DocumentVersion is one uploaded artifact within a (land, type, slot)
// group. Everything except the review fields is immutable after creation.
type DocumentVersion struct {
	ID            string       `gorm:"primaryKey" json:"id"`
	LandID        string       `gorm:"index:idx_land_type_slot;uniqueIndex:uniq_slot_version;not null" json:"land_id"`
	DocumentType  string       `gorm:"index:idx_land_type_slot;uniqueIndex:uniq_slot_version;not null" json:"document_type"`
	Slot          string       `gorm:"index:idx_land_type_slot;uniqueIndex:uniq_slot_version;not null;default:'D1'" json:"slot"`
	VersionNumber int          `gorm:"uniqueIndex:uniq_slot_version;not null" json:"version_number"`
	IsLatest      bool         `gorm:"not null;default:false" json:"is_latest"`
	FileName      string       `gorm:"not null" json:"file_name"`
	FileSize      int64        `json:"file_size"`
	MimeType      string       `json:"mime_type"`
	UploadedBy    string       `gorm:"index" json:"uploaded_by"`
	ReviewStatus  ReviewStatus `gorm:"not null;default:'active';index" json:"review_status"`
	LockedAt      *time.Time   `json:"locked_at,omitempty"`
	LockedBy      string       `json:"locked_by,omitempty"`
	ChangeReason  string       `json:"change_reason,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
}

func (DocumentVersion) TableName() string {
	return "documents"
}
