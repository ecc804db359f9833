package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment is a note attached to a complaint. Comments are immutable once stored.
type Comment struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	ComplaintID string    `gorm:"type:uuid;not null;index:idx_comment_thread" json:"complaint_id"`
	UserID      string    `gorm:"type:uuid;not null" json:"user_id"`
	Comment     string    `gorm:"type:text;not null" json:"comment"`
	IsInternal  bool      `gorm:"not null;default:false" json:"is_internal"`
	CreatedAt   time.Time `gorm:"index:idx_comment_thread" json:"created_at"`

	Complaint *Complaint `gorm:"foreignKey:ComplaintID;constraint:OnDelete:CASCADE" json:"-"`
	Author    *Profile   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return
}

func (c Comment) GetID() string           { return c.ID }
func (c Comment) GetParentID() string     { return c.ComplaintID }
func (c Comment) GetAuthorID() string     { return c.UserID }
func (c Comment) GetCreatedAt() time.Time { return c.CreatedAt }

func (Comment) TableName() string { return "complaint_comments" }
