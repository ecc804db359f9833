package users_test

import (
	"complaintdesk/backend/internal/models"
	"context"

	"github.com/stretchr/testify/mock"
)

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) ProfileNames(ctx context.Context, ids []string) (map[string]string, error) {
	args := m.Called(ctx, ids)
	names, _ := args.Get(0).(map[string]string)
	return names, args.Error(1)
}

func (m *MockStorage) CategoryNames(ctx context.Context, ids []string) (map[string]string, error) {
	args := m.Called(ctx, ids)
	names, _ := args.Get(0).(map[string]string)
	return names, args.Error(1)
}

func (m *MockStorage) ActiveCategories(ctx context.Context) ([]models.Category, error) {
	args := m.Called(ctx)
	categories, _ := args.Get(0).([]models.Category)
	return categories, args.Error(1)
}

func (m *MockStorage) IsCategoryActive(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) RoleOf(ctx context.Context, userID string) (models.Role, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(models.Role), args.Error(1)
}

func (m *MockStorage) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	args := m.Called(ctx)
	profiles, _ := args.Get(0).([]models.Profile)
	return profiles, args.Error(1)
}

func (m *MockStorage) RolesFor(ctx context.Context, userIDs []string) ([]models.UserRole, error) {
	args := m.Called(ctx, userIDs)
	roles, _ := args.Get(0).([]models.UserRole)
	return roles, args.Error(1)
}

func (m *MockStorage) SetRole(ctx context.Context, userID string, role models.Role) error {
	return m.Called(ctx, userID, role).Error(0)
}

func (m *MockStorage) CreateUser(ctx context.Context, profile *models.Profile, role models.Role) error {
	return m.Called(ctx, profile, role).Error(0)
}

func (m *MockStorage) DeleteProfile(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}
