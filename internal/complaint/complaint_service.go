// Package complaint holds the complaint rules: who may create, see and change
// a complaint, and who may talk on it.
package complaint

import (
	"complaintdesk/backend/internal/apperr"
	"complaintdesk/backend/internal/models"
	"complaintdesk/backend/internal/profile"
	"complaintdesk/backend/internal/remote"
	"complaintdesk/backend/internal/storage"
	"complaintdesk/backend/internal/validation"
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
)

// View is a complaint as listed, with its category name joined in.
type View struct {
	models.Complaint
	CategoryName string `json:"category_name,omitempty"`
}

// Service handles the business logic for complaints.
type Service struct {
	Storage    storage.Storage
	Complaints remote.Collection[models.Complaint]
	Comments   remote.Collection[models.Comment]
	Messages   remote.Collection[models.ChatMessage]
	Joiner     *profile.Joiner
	Clock      func() time.Time
}

// NewService creates a new complaint service.
func NewService(
	s storage.Storage,
	complaints remote.Collection[models.Complaint],
	comments remote.Collection[models.Comment],
	messages remote.Collection[models.ChatMessage],
	joiner *profile.Joiner,
) *Service {
	return &Service{
		Storage:    s,
		Complaints: complaints,
		Comments:   comments,
		Messages:   messages,
		Joiner:     joiner,
		Clock:      time.Now,
	}
}

func requireAdmin(actor models.Actor, action string) error {
	if !actor.IsAdmin() {
		return apperr.NewAuthorizationError(action, "administrators only")
	}
	return nil
}

// Create files a new complaint owned by the acting student.
func (s *Service) Create(ctx context.Context, actor models.Actor, in validation.ComplaintInput) (*models.Complaint, error) {
	if actor.Role != models.RoleStudent {
		return nil, apperr.NewAuthorizationError("create complaint", "only students file complaints")
	}
	if err := validation.Complaint(&in); err != nil {
		return nil, err
	}

	active, err := s.Storage.IsCategoryActive(ctx, in.CategoryID)
	if err != nil {
		return nil, err
	}
	if !active {
		return nil, apperr.NewValidationError("category_id", "complaint.category", "Please select a category")
	}

	c := &models.Complaint{
		Title:       in.Title,
		Description: in.Description,
		Status:      models.StatusSubmitted,
		Priority:    models.Priority(in.Priority),
		StudentID:   actor.UserID,
		CategoryID:  &in.CategoryID,
	}
	if err := s.Complaints.Insert(ctx, c); err != nil {
		return nil, err
	}
	log.Printf("INFO: Complaint %s filed by %s.", c.ID, actor.UserID)
	return c, nil
}

// ListForActor returns the complaints the actor can see, newest first.
// Students see their own; administrators see all.
func (s *Service) ListForActor(ctx context.Context, actor models.Actor) ([]View, error) {
	q := remote.Query{}
	if !actor.IsAdmin() {
		q = remote.Where("student_id", actor.UserID)
	}
	rows, err := s.Complaints.Query(ctx, q.OrderBy("created_at", true))
	if err != nil {
		return nil, err
	}
	return s.withCategories(ctx, rows), nil
}

// withCategories joins category names with one lookup. A failed lookup
// leaves the names empty.
func (s *Service) withCategories(ctx context.Context, rows []models.Complaint) []View {
	var ids []string
	seen := make(map[string]bool)
	for _, c := range rows {
		if c.CategoryID != nil && !seen[*c.CategoryID] {
			seen[*c.CategoryID] = true
			ids = append(ids, *c.CategoryID)
		}
	}

	names := map[string]string{}
	if len(ids) > 0 {
		found, err := s.Storage.CategoryNames(ctx, ids)
		if err != nil {
			log.Printf("WARNING: Listing complaints without category names: %v", err)
		} else {
			names = found
		}
	}

	views := make([]View, len(rows))
	for i, c := range rows {
		views[i] = View{Complaint: c}
		if c.CategoryID != nil {
			views[i].CategoryName = names[*c.CategoryID]
		}
	}
	return views
}

// checkID rejects keys that cannot name a complaint; Postgres refuses them
// on the uuid column.
func checkID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperr.ErrNotFound
	}
	return nil
}

// visible loads a complaint the actor may see. Complaints of other students
// are reported as not found.
func (s *Service) visible(ctx context.Context, actor models.Actor, id string) (*models.Complaint, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	rows, err := s.Complaints.Query(ctx, remote.Where("id", id))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperr.ErrNotFound
	}
	c := rows[0]
	if !actor.IsAdmin() && c.StudentID != actor.UserID {
		return nil, apperr.ErrNotFound
	}
	return &c, nil
}

// Get returns the complaint, or nil without error when there is nothing the
// actor may see.
func (s *Service) Get(ctx context.Context, actor models.Actor, id string) (*View, error) {
	c, err := s.visible(ctx, actor, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s.withCategories(ctx, []models.Complaint{*c})[0], nil
}

// CanView reports whether the actor may follow the complaint's threads.
func (s *Service) CanView(ctx context.Context, actor models.Actor, id string) (bool, error) {
	_, err := s.visible(ctx, actor, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// statusFields is the update for moving c to status. resolved_at tracks
// the resolved state: set when a complaint becomes resolved, cleared when it
// is reopened, kept when it is closed.
func (s *Service) statusFields(c *models.Complaint, status models.ComplaintStatus) map[string]any {
	fields := map[string]any{"status": status}
	switch {
	case status == models.StatusResolved && c.Status != models.StatusResolved:
		fields["resolved_at"] = s.Clock()
	case !status.Finished():
		fields["resolved_at"] = nil
	}
	return fields
}

// UpdateStatus moves a complaint through its lifecycle. Administrators only.
func (s *Service) UpdateStatus(ctx context.Context, actor models.Actor, id string, status string) error {
	if err := requireAdmin(actor, "update status"); err != nil {
		return err
	}
	if err := validation.Struct(validation.StatusInput{Status: status}); err != nil {
		return err
	}

	c, err := s.visible(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.Complaints.Update(ctx, id, s.statusFields(c, models.ComplaintStatus(status))); err != nil {
		return err
	}
	log.Printf("INFO: Complaint %s moved from %s to %s by %s.", id, c.Status, status, actor.UserID)
	return nil
}

// Assign hands a complaint to an administrator.
func (s *Service) Assign(ctx context.Context, actor models.Actor, id string, assigneeID string) error {
	if err := requireAdmin(actor, "assign complaint"); err != nil {
		return err
	}
	if err := validation.Struct(validation.AssignInput{AssigneeID: assigneeID}); err != nil {
		return err
	}
	if err := checkID(id); err != nil {
		return err
	}

	role, err := s.Storage.RoleOf(ctx, assigneeID)
	if err != nil {
		return err
	}
	if !(models.Actor{UserID: assigneeID, Role: role}).IsAdmin() {
		return apperr.NewValidationError("assignee_id", "assignee.invalid", "Please select an assignee")
	}
	return s.Complaints.Update(ctx, id, map[string]any{"assigned_to": assigneeID})
}

// Resolve closes out a complaint with a summary for the student.
func (s *Service) Resolve(ctx context.Context, actor models.Actor, id string, summary string) error {
	if err := requireAdmin(actor, "resolve complaint"); err != nil {
		return err
	}
	in := validation.ResolveInput{Summary: summary}
	if err := validation.Struct(in); err != nil {
		return err
	}

	c, err := s.visible(ctx, actor, id)
	if err != nil {
		return err
	}
	fields := s.statusFields(c, models.StatusResolved)
	fields["resolution_summary"] = in.Summary
	return s.Complaints.Update(ctx, id, fields)
}

// AddComment stores a comment written by actor. The complaint must still be
// open, and only administrators may write internal comments.
func (s *Service) AddComment(ctx context.Context, actor models.Actor, rec *models.Comment) error {
	if rec.IsInternal {
		if err := requireAdmin(actor, "add internal comment"); err != nil {
			return err
		}
	}
	c, err := s.visible(ctx, actor, rec.ComplaintID)
	if err != nil {
		return err
	}
	if c.Status.Finished() {
		return apperr.NewAuthorizationError("comment", "the complaint is "+string(c.Status))
	}

	rec.UserID = actor.UserID
	return s.Comments.Insert(ctx, rec)
}

// SendComment validates and stores a comment.
func (s *Service) SendComment(ctx context.Context, actor models.Actor, complaintID string, in validation.CommentInput) (*models.Comment, error) {
	in.Comment = strings.TrimSpace(in.Comment)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	rec := &models.Comment{ID: in.ID, ComplaintID: complaintID, Comment: in.Comment, IsInternal: in.IsInternal}
	if err := s.AddComment(ctx, actor, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// ListComments returns a complaint's comments oldest first with author names.
// Internal comments are left out for students.
func (s *Service) ListComments(ctx context.Context, actor models.Actor, complaintID string) ([]profile.Named[models.Comment], error) {
	if _, err := s.visible(ctx, actor, complaintID); err != nil {
		return nil, err
	}
	q := remote.Where("complaint_id", complaintID)
	if !actor.IsAdmin() {
		q.Filter.Eq["is_internal"] = false
	}
	rows, err := s.Comments.Query(ctx, q.OrderBy("created_at", false))
	if err != nil {
		return nil, err
	}
	return profile.Join(ctx, s.Joiner, rows, func(c models.Comment) string { return c.UserID }), nil
}

// PostMessage stores a chat line. The owning student and administrators may
// chat on a complaint.
func (s *Service) PostMessage(ctx context.Context, actor models.Actor, rec *models.ChatMessage) error {
	if _, err := s.visible(ctx, actor, rec.ComplaintID); err != nil {
		return err
	}
	rec.UserID = actor.UserID
	return s.Messages.Insert(ctx, rec)
}

// SendMessage validates and stores a chat line.
func (s *Service) SendMessage(ctx context.Context, actor models.Actor, complaintID string, in validation.MessageInput) (*models.ChatMessage, error) {
	in.Message = strings.TrimSpace(in.Message)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	rec := &models.ChatMessage{ID: in.ID, ComplaintID: complaintID, Message: in.Message}
	if err := s.PostMessage(ctx, actor, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// ListMessages returns a complaint's chat oldest first with author names.
func (s *Service) ListMessages(ctx context.Context, actor models.Actor, complaintID string) ([]profile.Named[models.ChatMessage], error) {
	if _, err := s.visible(ctx, actor, complaintID); err != nil {
		return nil, err
	}
	rows, err := s.Messages.Query(ctx, remote.Where("complaint_id", complaintID).OrderBy("created_at", false))
	if err != nil {
		return nil, err
	}
	return profile.Join(ctx, s.Joiner, rows, func(m models.ChatMessage) string { return m.UserID }), nil
}

// Categories lists the categories a new complaint may use.
func (s *Service) Categories(ctx context.Context) ([]models.Category, error) {
	return s.Storage.ActiveCategories(ctx)
}
