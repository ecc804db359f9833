package thread

import (
	"complaintdesk/backend/internal/models"
	"complaintdesk/backend/internal/remote"
	"context"
	"sync"
	"time"
)

// Record is a child record of a complaint thread.
type Record interface {
	GetID() string
	GetParentID() string
	GetAuthorID() string
	GetCreatedAt() time.Time
}

// Source loads and follows the records of one parent.
type Source[T Record] interface {
	// List returns the parent's records oldest first.
	List(ctx context.Context, parent string) ([]T, error)
	Subscribe(ctx context.Context, parent string) (remote.Subscription[T], error)
}

// CollectionSource reads a thread out of a remote collection.
type CollectionSource[T Record] struct {
	Collection   remote.Collection[T]
	ParentColumn string
}

func NewCollectionSource[T Record](c remote.Collection[T], parentColumn string) *CollectionSource[T] {
	return &CollectionSource[T]{Collection: c, ParentColumn: parentColumn}
}

func (s *CollectionSource[T]) List(ctx context.Context, parent string) ([]T, error) {
	return s.Collection.Query(ctx, remote.Where(s.ParentColumn, parent).OrderBy("created_at", false))
}

func (s *CollectionSource[T]) Subscribe(ctx context.Context, parent string) (remote.Subscription[T], error) {
	return s.Collection.Subscribe(ctx, parent)
}

// CommentSource follows a complaint's comments as actor may see them.
// Internal comments are left out of both the fetch and the feed unless actor
// is an administrator.
type CommentSource struct {
	Collection remote.Collection[models.Comment]
	Actor      models.Actor
}

func NewCommentSource(c remote.Collection[models.Comment], actor models.Actor) *CommentSource {
	return &CommentSource{Collection: c, Actor: actor}
}

func (s *CommentSource) List(ctx context.Context, parent string) ([]models.Comment, error) {
	q := remote.Where("complaint_id", parent)
	if !s.Actor.IsAdmin() {
		q.Filter.Eq["is_internal"] = false
	}
	return s.Collection.Query(ctx, q.OrderBy("created_at", false))
}

func (s *CommentSource) Subscribe(ctx context.Context, parent string) (remote.Subscription[models.Comment], error) {
	sub, err := s.Collection.Subscribe(ctx, parent)
	if err != nil || s.Actor.IsAdmin() {
		return sub, err
	}
	return filterSubscription(sub, func(c models.Comment) bool { return !c.IsInternal }), nil
}

// filteredSubscription forwards the records of inner that keep accepts.
type filteredSubscription[T any] struct {
	inner   remote.Subscription[T]
	out     chan T
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

func filterSubscription[T any](inner remote.Subscription[T], keep func(T) bool) *filteredSubscription[T] {
	f := &filteredSubscription[T]{
		inner:   inner,
		out:     make(chan T),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go f.run(keep)
	return f
}

func (f *filteredSubscription[T]) run(keep func(T) bool) {
	defer close(f.stopped)
	defer close(f.out)
	in := f.inner.Records()
	for {
		select {
		case <-f.done:
			return
		case rec, ok := <-in:
			if !ok {
				return
			}
			if !keep(rec) {
				continue
			}
			select {
			case f.out <- rec:
			case <-f.done:
				return
			}
		}
	}
}

func (f *filteredSubscription[T]) Records() <-chan T { return f.out }

func (f *filteredSubscription[T]) Close() error {
	f.once.Do(func() { close(f.done) })
	err := f.inner.Close()
	<-f.stopped
	return err
}
