package thread

import (
	"complaintdesk/backend/internal/apperr"
	"complaintdesk/backend/internal/models"
	"complaintdesk/backend/internal/validation"
	"context"

	"github.com/google/uuid"
)

// Inserter stores rec on behalf of actor and fills in the server-assigned
// fields (timestamps).
type Inserter[T Record] func(ctx context.Context, actor models.Actor, rec *T) error

// Appender shows a new record in a SyncedList before the store confirms it.
//
// The record gets a client-generated ID, so the store's copy and the feed's
// echo both land on the same entry.
type Appender[T Record] struct {
	list     *SyncedList[T]
	validate func(text string) (string, error)
	build    func(id, parent string, actor models.Actor, text string) T
	insert   Inserter[T]
}

func NewAppender[T Record](
	list *SyncedList[T],
	validate func(text string) (string, error),
	build func(id, parent string, actor models.Actor, text string) T,
	insert Inserter[T],
) *Appender[T] {
	return &Appender[T]{list: list, validate: validate, build: build, insert: insert}
}

// NewMessageAppender appends chat lines of 1 to 1000 characters.
func NewMessageAppender(list *SyncedList[models.ChatMessage], insert Inserter[models.ChatMessage]) *Appender[models.ChatMessage] {
	return NewAppender(list, validation.Message,
		func(id, parent string, actor models.Actor, text string) models.ChatMessage {
			return models.ChatMessage{ID: id, ComplaintID: parent, UserID: actor.UserID, Message: text}
		}, insert)
}

// NewCommentAppender appends comments; internal marks them admin-only.
func NewCommentAppender(list *SyncedList[models.Comment], internal bool, insert Inserter[models.Comment]) *Appender[models.Comment] {
	return NewAppender(list, validation.Comment,
		func(id, parent string, actor models.Actor, text string) models.Comment {
			return models.Comment{ID: id, ComplaintID: parent, UserID: actor.UserID, Comment: text, IsInternal: internal}
		}, insert)
}

// Send validates text, shows it at once as a pending entry, and stores it.
// Invalid input is rejected before any remote call. On failure the pending
// entry is removed, leaving the view as it was.
func (a *Appender[T]) Send(ctx context.Context, actor models.Actor, text string) (Entry[T], error) {
	clean, err := a.validate(text)
	if err != nil {
		return Entry[T]{}, err
	}

	gen, parent := a.list.current()
	if parent == "" {
		return Entry[T]{}, apperr.NewValidationError("complaint_id", "thread.unbound", "No conversation selected")
	}

	rec := a.build(uuid.NewString(), parent, actor, clean)
	name := a.list.joiner.Name(ctx, actor.UserID)
	a.list.apply(gen, Entry[T]{Record: rec, AuthorName: name, Pending: true})

	if err := a.insert(ctx, actor, &rec); err != nil {
		a.list.remove(gen, rec.GetID())
		return Entry[T]{}, err
	}

	entry := Entry[T]{Record: rec, AuthorName: name}
	a.list.apply(gen, entry)
	return entry, nil
}
