package models

import (
	"time"

	"gorm.io/datatypes"
)

type AuditAction string

const (
	ActionUpload   AuditAction = "upload"
	ActionLock     AuditAction = "lock"
	ActionUnlock   AuditAction = "unlock"
	ActionArchive  AuditAction = "archive"
	ActionAssign   AuditAction = "assign"
	ActionComplete AuditAction = "complete"
	ActionCancel   AuditAction = "cancel"
)

// AuditEntry is an immutable fact describing one transition. Rows are
// never updated; they are only removed by a cascading document purge.
type AuditEntry struct {
	ID         string         `gorm:"primaryKey" json:"id"`
	DocumentID string         `gorm:"index;not null" json:"document_id"`
	LandID     string         `gorm:"index;not null" json:"land_id"`
	ActionType AuditAction    `gorm:"not null;index" json:"action_type"`
	ActorID    string         `gorm:"not null" json:"actor_id"`
	Reason     string         `json:"reason,omitempty"`
	Snapshot   datatypes.JSON `json:"snapshot,omitempty"`
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`
}

func (AuditEntry) TableName() string {
	return "document_audit_trail"
}
