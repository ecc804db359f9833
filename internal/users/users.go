// Package users is the super-admin console: listing users with their roles,
// changing roles and removing users.
package users

import (
	"complaintdesk/backend/internal/apperr"
	"complaintdesk/backend/internal/models"
	"complaintdesk/backend/internal/storage"
	"complaintdesk/backend/internal/validation"
	"context"
	"log"
)

type Service struct {
	Storage storage.Storage
}

func NewService(s storage.Storage) *Service {
	return &Service{Storage: s}
}

func requireSuperAdmin(actor models.Actor, action string) error {
	if actor.Role != models.RoleSuperAdmin {
		return apperr.NewAuthorizationError(action, "super administrators only")
	}
	return nil
}

// List returns every user, newest first, with roles loaded in one query.
func (s *Service) List(ctx context.Context, actor models.Actor) ([]models.UserWithRole, error) {
	if err := requireSuperAdmin(actor, "list users"); err != nil {
		return nil, err
	}

	profiles, err := s.Storage.ListProfiles(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(profiles))
	for i, p := range profiles {
		ids[i] = p.ID
	}
	roles, err := s.Storage.RolesFor(ctx, ids)
	if err != nil {
		return nil, err
	}

	byUser := make(map[string][]models.UserRole, len(roles))
	for _, r := range roles {
		byUser[r.UserID] = append(byUser[r.UserID], r)
	}

	out := make([]models.UserWithRole, len(profiles))
	for i, p := range profiles {
		out[i] = models.UserWithRole{
			ID:        p.ID,
			FullName:  p.FullName,
			Email:     p.Email,
			Role:      storage.HighestRole(byUser[p.ID], p.ID),
			CreatedAt: p.CreatedAt,
		}
	}
	return out, nil
}

// SetRole gives a user exactly one role.
func (s *Service) SetRole(ctx context.Context, actor models.Actor, userID string, role string) error {
	if err := requireSuperAdmin(actor, "change role"); err != nil {
		return err
	}
	if err := validation.Struct(validation.RoleInput{Role: role}); err != nil {
		return err
	}
	if userID == actor.UserID && models.Role(role) != models.RoleSuperAdmin {
		return apperr.NewAuthorizationError("change role", "you cannot demote yourself")
	}

	if err := s.Storage.SetRole(ctx, userID, models.Role(role)); err != nil {
		return err
	}
	log.Printf("INFO: Role of %s set to %s by %s.", userID, role, actor.UserID)
	return nil
}

// Delete removes a user together with everything they wrote.
func (s *Service) Delete(ctx context.Context, actor models.Actor, userID string) error {
	if err := requireSuperAdmin(actor, "delete user"); err != nil {
		return err
	}
	if userID == actor.UserID {
		return apperr.NewAuthorizationError("delete user", "you cannot delete yourself")
	}

	if err := s.Storage.DeleteProfile(ctx, userID); err != nil {
		return err
	}
	log.Printf("INFO: User %s deleted by %s.", userID, actor.UserID)
	return nil
}
