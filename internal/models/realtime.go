package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChatMessage is one line of the live chat attached to a complaint.
type ChatMessage struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	ComplaintID string    `gorm:"type:uuid;not null;index:idx_chat_thread" json:"complaint_id"`
	UserID      string    `gorm:"type:uuid;not null" json:"user_id"`
	Message     string    `gorm:"type:text;not null" json:"message"`
	CreatedAt   time.Time `gorm:"index:idx_chat_thread" json:"created_at"`

	Complaint *Complaint `gorm:"foreignKey:ComplaintID;constraint:OnDelete:CASCADE" json:"-"`
	Author    *Profile   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (m *ChatMessage) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return
}

func (m ChatMessage) GetID() string           { return m.ID }
func (m ChatMessage) GetParentID() string     { return m.ComplaintID }
func (m ChatMessage) GetAuthorID() string     { return m.UserID }
func (m ChatMessage) GetCreatedAt() time.Time { return m.CreatedAt }

// ServerEvent is a websocket frame sent to clients.
type ServerEvent struct {
	Type        string          `json:"type"` // "insert", "joined", "left", "error"
	Table       string          `json:"table,omitempty"`
	ComplaintID string          `json:"complaint_id,omitempty"`
	Record      json.RawMessage `json:"record,omitempty"`
	Error       string          `json:"error,omitempty"`
}

// ClientCommand is an inbound websocket frame.
type ClientCommand struct {
	Type        string `json:"type"` // "join", "leave"
	ComplaintID string `json:"complaint_id"`
}
