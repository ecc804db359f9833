package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ComplaintStatus is the lifecycle state of a complaint.
type ComplaintStatus string

const (
	StatusSubmitted  ComplaintStatus = "submitted"
	StatusInReview   ComplaintStatus = "in_review"
	StatusInProgress ComplaintStatus = "in_progress"
	StatusResolved   ComplaintStatus = "resolved"
	StatusClosed     ComplaintStatus = "closed"
)

// Statuses lists every status in lifecycle order.
var Statuses = []ComplaintStatus{StatusSubmitted, StatusInReview, StatusInProgress, StatusResolved, StatusClosed}

// Valid reports whether s is one of the known statuses.
func (s ComplaintStatus) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Finished reports whether the complaint no longer accepts comments.
func (s ComplaintStatus) Finished() bool {
	return s == StatusResolved || s == StatusClosed
}

// Priority is the urgency of a complaint.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// Complaint is a student-submitted issue tracked by administrators.
type Complaint struct {
	ID                string          `gorm:"type:uuid;primaryKey" json:"id"`
	Title             string          `gorm:"type:text;not null" json:"title"`
	Description       string          `gorm:"type:text;not null" json:"description"`
	Status            ComplaintStatus `gorm:"type:text;not null;default:'submitted';index" json:"status"`
	Priority          Priority        `gorm:"type:text;not null;default:'medium'" json:"priority"`
	StudentID         string          `gorm:"type:uuid;not null;index" json:"student_id"`
	CategoryID        *string         `gorm:"type:uuid" json:"category_id"`
	AssignedTo        *string         `gorm:"type:uuid" json:"assigned_to"`
	ResolutionSummary *string         `gorm:"type:text" json:"resolution_summary"`
	CreatedAt         time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	ResolvedAt        *time.Time      `json:"resolved_at"`

	Student  *Profile  `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"-"`
	Category *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL" json:"-"`
}

// BeforeCreate assigns a UUID unless the caller already chose one.
func (c *Complaint) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return
}

func (c Complaint) GetTitle() string           { return c.Title }
func (c Complaint) GetStatus() ComplaintStatus { return c.Status }
func (c Complaint) GetPriority() Priority      { return c.Priority }
