// Package profile attaches author display names to records.
package profile

import (
	"complaintdesk/backend/internal/config"
	"context"
	"log"
	"sync"
	"time"
)

// Lookup resolves user IDs to display names. IDs without a profile are
// absent from the result.
type Lookup interface {
	ProfileNames(ctx context.Context, ids []string) (map[string]string, error)
}

// Named pairs a record with the display name of its author.
type Named[T any] struct {
	Record     T      `json:"record"`
	AuthorName string `json:"author_name"`
}

// Joiner resolves author names with at most one lookup per call and caches
// every name it has seen. A cached name is trusted for TTL; after that the
// next call looks it up again, so a renamed profile shows its new name
// within TTL. A zero TTL keeps names for the life of the Joiner.
type Joiner struct {
	lookup Lookup
	TTL    time.Duration
	Now    func() time.Time

	mu    sync.RWMutex
	cache map[string]cachedName
}

type cachedName struct {
	name string
	at   time.Time
}

func NewJoiner(lookup Lookup) *Joiner {
	return &Joiner{
		lookup: lookup,
		TTL:    config.NameCacheTTL,
		Now:    time.Now,
		cache:  make(map[string]cachedName),
	}
}

func (j *Joiner) fresh(c cachedName, now time.Time) bool {
	return j.TTL <= 0 || now.Sub(c.at) < j.TTL
}

// Names returns a name for every id. Unresolved ids, including those of a
// failed lookup, map to config.UnknownAuthor and are not cached.
func (j *Joiner) Names(ctx context.Context, ids []string) map[string]string {
	out := make(map[string]string, len(ids))
	var missing []string
	now := j.Now()

	j.mu.RLock()
	for _, id := range ids {
		if _, seen := out[id]; seen {
			continue
		}
		if c, ok := j.cache[id]; ok && j.fresh(c, now) {
			out[id] = c.name
			continue
		}
		out[id] = config.UnknownAuthor
		missing = append(missing, id)
	}
	j.mu.RUnlock()

	if len(missing) == 0 {
		return out
	}

	found, err := j.lookup.ProfileNames(ctx, missing)
	if err != nil {
		log.Printf("WARNING: Profile lookup for %d authors failed: %v", len(missing), err)
		return out
	}

	j.mu.Lock()
	for _, id := range missing {
		if name, ok := found[id]; ok {
			j.cache[id] = cachedName{name: name, at: now}
			out[id] = name
		}
	}
	j.mu.Unlock()
	return out
}

// Name resolves a single author.
func (j *Joiner) Name(ctx context.Context, id string) string {
	return j.Names(ctx, []string{id})[id]
}

// Join attaches author names to records, preserving order.
func Join[T any](ctx context.Context, j *Joiner, records []T, authorOf func(T) string) []Named[T] {
	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = authorOf(r)
	}
	names := j.Names(ctx, ids)

	out := make([]Named[T], len(records))
	for i, r := range records {
		out[i] = Named[T]{Record: r, AuthorName: names[ids[i]]}
	}
	return out
}
