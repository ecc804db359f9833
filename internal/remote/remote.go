// Package remote describes the capabilities the application needs from its
// data store: ordered range queries, point inserts and updates, and a live
// feed of inserts scoped to one parent record.
//
// internal/storage implements these over Postgres and Redis; the thread and
// complaint packages only ever see the interfaces.
package remote

import "context"

// Filter restricts a query. Eq entries are column = value; In entries are
// column IN (values). An empty In list matches nothing.
type Filter struct {
	Eq map[string]any
	In map[string][]string
}

// Order sorts by a single column.
type Order struct {
	Column string
	Desc   bool
}

// Range limits the window of rows. A zero Limit means no limit.
type Range struct {
	Offset int
	Limit  int
}

type Query struct {
	Filter Filter
	Order  Order
	Range  Range
}

// Where is shorthand for an equality-only query.
func Where(column string, value any) Query {
	return Query{Filter: Filter{Eq: map[string]any{column: value}}}
}

// OrderBy returns a copy of q sorted by column.
func (q Query) OrderBy(column string, desc bool) Query {
	q.Order = Order{Column: column, Desc: desc}
	return q
}

// Subscription is a live feed of inserted records. Records is closed after
// Close returns or when the subscription's context is cancelled.
type Subscription[T any] interface {
	Records() <-chan T
	Close() error
}

// Collection is one remote table of T.
type Collection[T any] interface {
	Query(ctx context.Context, q Query) ([]T, error)
	// Insert stores rec and fills in the server-assigned fields.
	Insert(ctx context.Context, rec *T) error
	// Update applies a partial update to the row with the given key.
	Update(ctx context.Context, key string, fields map[string]any) error
	// Subscribe announces inserts whose feed column equals parentKey.
	Subscribe(ctx context.Context, parentKey string) (Subscription[T], error)
}
