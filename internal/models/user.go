package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role is the application role of an authenticated user.
type Role string

const (
	RoleStudent    Role = "student"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleAdmin || r == RoleSuperAdmin
}

// Rank orders roles by privilege.
func (r Role) Rank() int {
	switch r {
	case RoleSuperAdmin:
		return 2
	case RoleAdmin:
		return 1
	default:
		return 0
	}
}

// Profile shares its ID with the authentication identity.
type Profile struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	FullName  string    `gorm:"type:text;not null" json:"full_name"`
	Email     string    `gorm:"type:text;not null;uniqueIndex" json:"email"`
	Batch     *string   `gorm:"type:text" json:"batch"`
	Phone     *string   `gorm:"type:text" json:"phone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Profile) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return
}

// UserRole binds a role to a user. The application expects one row per user.
type UserRole struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string    `gorm:"type:uuid;not null;index" json:"user_id"`
	Role      Role      `gorm:"type:text;not null;default:'student'" json:"role"`
	CreatedAt time.Time `json:"created_at"`

	User *Profile `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (r *UserRole) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return
}

// Actor is the authenticated caller, passed explicitly to every operation
// that needs to know who is acting.
type Actor struct {
	UserID string
	Role   Role
}

// IsAdmin is true for admins and super admins.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin || a.Role == RoleSuperAdmin
}

// UserWithRole is the super-admin listing row.
type UserWithRole struct {
	ID        string    `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}
