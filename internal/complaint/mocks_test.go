package complaint_test

import (
	"complaintdesk/backend/internal/models"
	"complaintdesk/backend/internal/remote"
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

type MockCollection[T any] struct {
	mock.Mock
}

func (m *MockCollection[T]) Query(ctx context.Context, q remote.Query) ([]T, error) {
	args := m.Called(ctx, q)
	rows, _ := args.Get(0).([]T)
	return rows, args.Error(1)
}

func (m *MockCollection[T]) Insert(ctx context.Context, rec *T) error {
	return m.Called(ctx, rec).Error(0)
}

func (m *MockCollection[T]) Update(ctx context.Context, key string, fields map[string]any) error {
	return m.Called(ctx, key, fields).Error(0)
}

func (m *MockCollection[T]) Subscribe(ctx context.Context, parentKey string) (remote.Subscription[T], error) {
	args := m.Called(ctx, parentKey)
	sub, _ := args.Get(0).(remote.Subscription[T])
	return sub, args.Error(1)
}
