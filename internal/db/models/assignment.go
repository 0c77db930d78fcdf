package models

import (
	"time"
)

type AssignmentStatus string

const (
	AssignmentAssigned   AssignmentStatus = "assigned"
	AssignmentInProgress AssignmentStatus = "in_progress"
	AssignmentCompleted  AssignmentStatus = "completed"
	AssignmentCancelled  AssignmentStatus = "cancelled"
)

// Open reports whether the assignment still holds its document's review
// lock. At most one open assignment may exist per document.
func (s AssignmentStatus) Open() bool {
	return s == AssignmentAssigned || s == AssignmentInProgress
}

type Assignment struct {
	ID           string           `gorm:"primaryKey" json:"id"`
	DocumentID   string           `gorm:"index;not null" json:"document_id"`
	LandID       string           `gorm:"index;not null" json:"land_id"`
	AssignedTo   string           `gorm:"index;not null" json:"assigned_to"`
	AssignedBy   string           `gorm:"not null" json:"assigned_by"`
	ReviewerRole string           `json:"reviewer_role"`
	TaskID       string           `json:"task_id,omitempty"`
	Notes        string           `json:"notes,omitempty"`
	DueDate      *time.Time       `json:"due_date,omitempty"`
	Priority     string           `gorm:"default:'normal'" json:"priority"`
	Status       AssignmentStatus `gorm:"not null;default:'assigned';index" json:"status"`
	IsLocked     bool             `gorm:"not null;default:false" json:"is_locked"`
	LockReason   string           `json:"lock_reason,omitempty"`
	AssignedAt   time.Time        `json:"assigned_at"`
	StartedAt    *time.Time       `json:"started_at,omitempty"`
	CompletedAt  *time.Time       `json:"completed_at,omitempty"`
}

func (Assignment) TableName() string {
	return "document_assignments"
}
