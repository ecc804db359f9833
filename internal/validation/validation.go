// Package validation checks user input before anything is sent to the store.
// Failures come back as *apperr.ValidationError carrying the offending field,
// a localization key and an English message.
package validation

import (
	"complaintdesk/backend/internal/apperr"
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// MessageInput is a chat line. ID is optional; clients that render the
// message before the store confirms it send their own.
type MessageInput struct {
	ID      string `json:"id" validate:"omitempty,uuid"`
	Message string `json:"message" validate:"required,max=1000"`
}

// CommentInput is a comment on a complaint.
type CommentInput struct {
	ID         string `json:"id" validate:"omitempty,uuid"`
	Comment    string `json:"comment" validate:"required,max=2000"`
	IsInternal bool   `json:"is_internal"`
}

// ComplaintInput is the new-complaint form.
type ComplaintInput struct {
	Title       string `json:"title" validate:"min=5,max=200"`
	Description string `json:"description" validate:"min=20,max=2000"`
	CategoryID  string `json:"category_id" validate:"required,uuid"`
	Priority    string `json:"priority" validate:"required,oneof=low medium high"`
}

type StatusInput struct {
	Status string `json:"status" validate:"required,oneof=submitted in_review in_progress resolved closed"`
}

type AssignInput struct {
	AssigneeID string `json:"assignee_id" validate:"required,uuid"`
}

type ResolveInput struct {
	Summary string `json:"resolution_summary" validate:"required,max=2000"`
}

type RoleInput struct {
	Role string `json:"role" validate:"required,oneof=student admin super_admin"`
}

type rule struct {
	key     string
	message string
}

// rules maps "<json field>.<tag>" to the user-facing message.
var rules = map[string]rule{
	"message.required":            {"message.empty", "Message cannot be empty"},
	"message.max":                 {"message.too_long", "Message must be less than 1000 characters"},
	"comment.required":            {"comment.empty", "Comment cannot be empty"},
	"comment.max":                 {"comment.too_long", "Comment must be less than 2000 characters"},
	"title.min":                   {"complaint.title_short", "Title must be at least 5 characters"},
	"title.max":                   {"complaint.title_long", "Title too long"},
	"description.min":             {"complaint.description_short", "Description must be at least 20 characters"},
	"description.max":             {"complaint.description_long", "Description too long"},
	"category_id.required":        {"complaint.category", "Please select a category"},
	"category_id.uuid":            {"complaint.category", "Please select a category"},
	"priority.required":           {"complaint.priority", "Please select a priority"},
	"priority.oneof":              {"complaint.priority", "Please select a priority"},
	"status.required":             {"status.invalid", "Invalid status"},
	"status.oneof":                {"status.invalid", "Invalid status"},
	"assignee_id.required":        {"assignee.invalid", "Please select an assignee"},
	"assignee_id.uuid":            {"assignee.invalid", "Please select an assignee"},
	"resolution_summary.required": {"resolution.empty", "Resolution summary cannot be empty"},
	"resolution_summary.max":      {"resolution.too_long", "Resolution summary too long"},
	"role.required":               {"role.invalid", "Invalid role"},
	"role.oneof":                  {"role.invalid", "Invalid role"},
	"id.uuid":                     {"id.invalid", "Invalid identifier"},
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Struct validates any of the input types above and returns the first failure.
func Struct(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	fe := verrs[0]
	if r, ok := rules[fe.Field()+"."+fe.Tag()]; ok {
		return apperr.NewValidationError(fe.Field(), r.key, r.message)
	}
	return apperr.NewValidationError(fe.Field(), "invalid", fe.Field()+" is invalid")
}

// Message trims a chat line and validates it.
func Message(text string) (string, error) {
	in := MessageInput{Message: strings.TrimSpace(text)}
	if err := Struct(in); err != nil {
		return "", err
	}
	return in.Message, nil
}

// Comment trims a comment body and validates it.
func Comment(text string) (string, error) {
	in := CommentInput{Comment: strings.TrimSpace(text)}
	if err := Struct(in); err != nil {
		return "", err
	}
	return in.Comment, nil
}

// Complaint trims the free-text fields and validates the form.
func Complaint(in *ComplaintInput) error {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	return Struct(in)
}
