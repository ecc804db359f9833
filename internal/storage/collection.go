package storage

import (
	"complaintdesk/backend/internal/apperr"
	"complaintdesk/backend/internal/config"
	"complaintdesk/backend/internal/remote"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"gorm.io/gorm/clause"
)

// Collection is a gorm-backed remote.Collection. Filters and ordering are
// restricted to an allow-list of columns; inserts are announced on the feed
// channel "<table>:<feed key>" when a feed key function is set.
type Collection[T any] struct {
	svc     *Service
	table   string
	feedKey func(*T) string
	columns map[string]bool
}

var _ remote.Collection[struct{}] = (*Collection[struct{}])(nil)

// NewCollection creates a collection over table. columns lists the names that
// may appear in filters, orderings and updates.
func NewCollection[T any](s *Service, table string, feedKey func(*T) string, columns ...string) *Collection[T] {
	allowed := make(map[string]bool, len(columns))
	for _, c := range columns {
		allowed[c] = true
	}
	return &Collection[T]{svc: s, table: table, feedKey: feedKey, columns: allowed}
}

func (c *Collection[T]) Table() string { return c.table }

func (c *Collection[T]) checkColumn(column string) error {
	if !c.columns[column] {
		return apperr.NewValidationError(column, "query.column",
			fmt.Sprintf("column %q cannot be used on %s", column, c.table))
	}
	return nil
}

// validate rejects columns outside the allow-list before any SQL is built.
func (c *Collection[T]) validate(q remote.Query) error {
	for column := range q.Filter.Eq {
		if err := c.checkColumn(column); err != nil {
			return err
		}
	}
	for column := range q.Filter.In {
		if err := c.checkColumn(column); err != nil {
			return err
		}
	}
	if q.Order.Column != "" {
		return c.checkColumn(q.Order.Column)
	}
	return nil
}

func (c *Collection[T]) Query(ctx context.Context, q remote.Query) ([]T, error) {
	if err := c.validate(q); err != nil {
		return nil, err
	}
	for _, values := range q.Filter.In {
		if len(values) == 0 {
			return []T{}, nil
		}
	}

	tx := c.svc.DB.WithContext(ctx).Model(new(T))
	for column, value := range q.Filter.Eq {
		tx = tx.Where(clause.Eq{Column: clause.Column{Name: column}, Value: value})
	}
	for column, values := range q.Filter.In {
		in := make([]any, len(values))
		for i, v := range values {
			in[i] = v
		}
		tx = tx.Where(clause.IN{Column: clause.Column{Name: column}, Values: in})
	}
	if q.Order.Column != "" {
		tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: q.Order.Column}, Desc: q.Order.Desc})
	}
	if q.Range.Offset > 0 {
		tx = tx.Offset(q.Range.Offset)
	}
	if q.Range.Limit > 0 {
		tx = tx.Limit(q.Range.Limit)
	}

	var out []T
	if err := tx.Find(&out).Error; err != nil {
		log.Printf("ERROR: Query on %s failed: %v", c.table, err)
		return nil, apperr.NewTransientError("query "+c.table, err)
	}
	return out, nil
}

// Insert creates rec and announces it. A feed failure is logged but does not
// fail the insert, which has already committed.
func (c *Collection[T]) Insert(ctx context.Context, rec *T) error {
	if err := c.svc.DB.WithContext(ctx).Create(rec).Error; err != nil {
		log.Printf("ERROR: Insert into %s failed: %v", c.table, err)
		return apperr.NewTransientError("insert into "+c.table, err)
	}

	if c.feedKey == nil || c.svc.Feed == nil {
		return nil
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		log.Printf("ERROR: Failed to encode %s record for the feed: %v", c.table, err)
		return nil
	}
	if err := c.svc.Feed.Publish(ctx, FeedChannel(c.table, c.feedKey(rec)), payload); err != nil {
		log.Printf("WARNING: Failed to announce insert into %s: %v", c.table, err)
	}
	return nil
}

func (c *Collection[T]) Update(ctx context.Context, key string, fields map[string]any) error {
	for column := range fields {
		if err := c.checkColumn(column); err != nil {
			return err
		}
	}

	result := c.svc.DB.WithContext(ctx).Model(new(T)).Where("id = ?", key).Updates(fields)
	if result.Error != nil {
		log.Printf("ERROR: Update of %s %s failed: %v", c.table, key, result.Error)
		return apperr.NewTransientError("update "+c.table, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// Subscribe decodes the feed channel of parentKey into records. The feed
// subscription is confirmed before Subscribe returns.
func (c *Collection[T]) Subscribe(ctx context.Context, parentKey string) (remote.Subscription[T], error) {
	if c.svc.Feed == nil {
		return nil, apperr.NewTransientError("subscribe "+c.table, fmt.Errorf("no realtime feed configured"))
	}
	fs, err := c.svc.Feed.Subscribe(ctx, FeedChannel(c.table, parentKey))
	if err != nil {
		log.Printf("ERROR: Subscribe to %s:%s failed: %v", c.table, parentKey, err)
		return nil, apperr.NewTransientError("subscribe "+c.table, err)
	}
	return newDecodedSubscription[T](fs, c.table), nil
}

type decodedSubscription[T any] struct {
	feed    FeedSubscription
	table   string
	records chan T
	done    chan struct{}
	once    sync.Once
}

func newDecodedSubscription[T any](fs FeedSubscription, table string) *decodedSubscription[T] {
	s := &decodedSubscription[T]{
		feed:    fs,
		table:   table,
		records: make(chan T, config.SubscriptionBuffer),
		done:    make(chan struct{}),
	}
	go s.decode()
	return s
}

func (s *decodedSubscription[T]) decode() {
	defer close(s.records)
	for ev := range s.feed.Events() {
		var rec T
		if err := json.Unmarshal(ev.Payload, &rec); err != nil {
			log.Printf("WARNING: Dropping undecodable %s event on %s: %v", s.table, ev.Channel, err)
			continue
		}
		select {
		case s.records <- rec:
		case <-s.done:
			return
		}
	}
}

func (s *decodedSubscription[T]) Records() <-chan T { return s.records }

func (s *decodedSubscription[T]) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = s.feed.Close()
	})
	return err
}
