package storage

import (
	"complaintdesk/backend/internal/apperr"
	"complaintdesk/backend/internal/models"
	"context"
	"errors"
	"log"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Storage is the set of domain lookups the services need beyond the generic
// collections.
type Storage interface {
	ProfileNames(ctx context.Context, ids []string) (map[string]string, error)
	CategoryNames(ctx context.Context, ids []string) (map[string]string, error)
	ActiveCategories(ctx context.Context) ([]models.Category, error)
	IsCategoryActive(ctx context.Context, id string) (bool, error)

	RoleOf(ctx context.Context, userID string) (models.Role, error)
	ListProfiles(ctx context.Context) ([]models.Profile, error)
	RolesFor(ctx context.Context, userIDs []string) ([]models.UserRole, error)
	SetRole(ctx context.Context, userID string, role models.Role) error
	CreateUser(ctx context.Context, profile *models.Profile, role models.Role) error
	DeleteProfile(ctx context.Context, id string) error
}

type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Feed  Feed
}

// NewStorageService Constructor
func NewStorageService(db *gorm.DB, rdb *redis.Client, feed Feed) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
		Feed:  feed,
	}
}

// Migrate creates or updates every table the application uses.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Profile{},
		&models.UserRole{},
		&models.Category{},
		&models.Complaint{},
		&models.Comment{},
		&models.ChatMessage{},
	)
}

// Complaints returns the complaints table. Complaint inserts are not announced.
func Complaints(s *Service) *Collection[models.Complaint] {
	return NewCollection[models.Complaint](s, "complaints", nil,
		"id", "title", "status", "priority", "student_id", "category_id", "assigned_to",
		"resolution_summary", "created_at", "updated_at", "resolved_at")
}

// Comments returns complaint_comments, announced per complaint.
func Comments(s *Service) *Collection[models.Comment] {
	return NewCollection[models.Comment](s, "complaint_comments",
		func(c *models.Comment) string { return c.ComplaintID },
		"id", "complaint_id", "user_id", "is_internal", "created_at")
}

// ChatMessages returns chat_messages, announced per complaint.
func ChatMessages(s *Service) *Collection[models.ChatMessage] {
	return NewCollection[models.ChatMessage](s, "chat_messages",
		func(m *models.ChatMessage) string { return m.ComplaintID },
		"id", "complaint_id", "user_id", "created_at")
}

// ProfileNames resolves user IDs to display names with a single query.
// IDs without a profile are absent from the result.
func (s *Service) ProfileNames(ctx context.Context, ids []string) (map[string]string, error) {
	names := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	var rows []models.Profile
	if err := s.DB.WithContext(ctx).Select("id", "full_name").Where("id IN ?", ids).Find(&rows).Error; err != nil {
		log.Printf("ERROR: Failed to resolve %d profile names: %v", len(ids), err)
		return nil, apperr.NewTransientError("resolve profile names", err)
	}
	for _, p := range rows {
		names[p.ID] = p.FullName
	}
	return names, nil
}

// CategoryNames resolves category IDs to names with a single query.
func (s *Service) CategoryNames(ctx context.Context, ids []string) (map[string]string, error) {
	names := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	var rows []models.Category
	if err := s.DB.WithContext(ctx).Select("id", "name").Where("id IN ?", ids).Find(&rows).Error; err != nil {
		log.Printf("ERROR: Failed to resolve category names: %v", err)
		return nil, apperr.NewTransientError("resolve category names", err)
	}
	for _, c := range rows {
		names[c.ID] = c.Name
	}
	return names, nil
}

// ActiveCategories lists the selectable categories by name.
func (s *Service) ActiveCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := s.DB.WithContext(ctx).Where("is_active = ?", true).Order("name").Find(&categories).Error; err != nil {
		log.Printf("ERROR: Failed to load categories: %v", err)
		return nil, apperr.NewTransientError("load categories", err)
	}
	return categories, nil
}

func (s *Service) IsCategoryActive(ctx context.Context, id string) (bool, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.Category{}).
		Where("id = ? AND is_active = ?", id, true).
		Count(&count).Error
	if err != nil {
		return false, apperr.NewTransientError("check category", err)
	}
	return count > 0, nil
}

// RoleOf returns the user's role. A user without a role row is a student; if
// several rows exist the most privileged one wins.
func (s *Service) RoleOf(ctx context.Context, userID string) (models.Role, error) {
	roles, err := s.RolesFor(ctx, []string{userID})
	if err != nil {
		return "", err
	}
	return HighestRole(roles, userID), nil
}

// ListProfiles returns every profile, newest first.
func (s *Service) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	var profiles []models.Profile
	if err := s.DB.WithContext(ctx).Order("created_at desc").Find(&profiles).Error; err != nil {
		log.Printf("ERROR: Failed to list profiles: %v", err)
		return nil, apperr.NewTransientError("list profiles", err)
	}
	return profiles, nil
}

// RolesFor loads the role rows of several users with a single query.
func (s *Service) RolesFor(ctx context.Context, userIDs []string) ([]models.UserRole, error) {
	var roles []models.UserRole
	if len(userIDs) == 0 {
		return roles, nil
	}
	if err := s.DB.WithContext(ctx).Where("user_id IN ?", userIDs).Find(&roles).Error; err != nil {
		log.Printf("ERROR: Failed to load roles: %v", err)
		return nil, apperr.NewTransientError("load roles", err)
	}
	return roles, nil
}

// SetRole replaces every role row of the user with a single row.
func (s *Service) SetRole(ctx context.Context, userID string, role models.Role) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Profile{}).Where("id = ?", userID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return apperr.ErrNotFound
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.UserRole{}).Error; err != nil {
			return err
		}
		return tx.Create(&models.UserRole{UserID: userID, Role: role}).Error
	})
	if errors.Is(err, apperr.ErrNotFound) {
		return err
	}
	if err != nil {
		log.Printf("ERROR: Failed to set role of %s to %s: %v", userID, role, err)
		return apperr.NewTransientError("set role", err)
	}
	return nil
}

// CreateUser stores a profile together with its role row.
func (s *Service) CreateUser(ctx context.Context, profile *models.Profile, role models.Role) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(profile).Error; err != nil {
			return err
		}
		return tx.Create(&models.UserRole{UserID: profile.ID, Role: role}).Error
	})
	if err != nil {
		log.Printf("ERROR: Failed to create user %s: %v", profile.Email, err)
		return apperr.NewTransientError("create user", err)
	}
	log.Printf("INFO: New user %s saved (role %s).", profile.ID, role)
	return nil
}

// DeleteProfile removes a profile; complaints, comments, messages and roles
// go with it through ON DELETE CASCADE.
func (s *Service) DeleteProfile(ctx context.Context, id string) error {
	result := s.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Profile{})
	if result.Error != nil {
		log.Printf("ERROR: Failed to delete profile %s: %v", id, result.Error)
		return apperr.NewTransientError("delete profile", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// HighestRole picks the most privileged role of userID among rows, defaulting
// to student.
func HighestRole(rows []models.UserRole, userID string) models.Role {
	best := models.RoleStudent
	for _, r := range rows {
		if r.UserID == userID && r.Role.Rank() > best.Rank() {
			best = r.Role
		}
	}
	return best
}
