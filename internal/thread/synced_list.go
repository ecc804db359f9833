// Package thread keeps a local, ordered view of a complaint's comments or
// chat messages in step with the store.
//
// A SyncedList is bound to one parent at a time. Binding subscribes to the
// parent's insert feed first, then fetches the existing records, then drains
// whatever the feed buffered in the meantime. Every record, whether fetched,
// pushed or appended optimistically, is keyed by ID, so a record delivered
// twice is shown once.
package thread

import (
	"complaintdesk/backend/internal/profile"
	"complaintdesk/backend/internal/remote"
	"context"
	"errors"
	"log"
	"sync"
)

var (
	// ErrScopeChanged is returned by Bind when another Bind or Close
	// superseded it before its fetch completed. The fetched rows are dropped.
	ErrScopeChanged = errors.New("thread: scope changed while loading")
	ErrClosed       = errors.New("thread: list closed")
)

// Entry is one row of the view.
type Entry[T Record] struct {
	Record     T      `json:"record"`
	AuthorName string `json:"author_name"`
	// Pending is set while an optimistic insert awaits the store.
	Pending bool `json:"pending"`
}

type SyncedList[T Record] struct {
	source Source[T]
	joiner *profile.Joiner

	mu      sync.Mutex
	gen     uint64
	scope   string
	entries []Entry[T]
	index   map[string]int
	sub     remote.Subscription[T]
	cancel  context.CancelFunc
	closed  bool
	updates chan struct{}
}

func NewSyncedList[T Record](source Source[T], joiner *profile.Joiner) *SyncedList[T] {
	return &SyncedList[T]{
		source:  source,
		joiner:  joiner,
		index:   make(map[string]int),
		updates: make(chan struct{}, 1),
	}
}

// Bind points the list at parent. The previous subscription is released and
// the view cleared before anything else happens. The subscription outlives
// ctx and ends with the next Bind or Close.
func (l *SyncedList[T]) Bind(ctx context.Context, parent string) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	l.gen++
	gen := l.gen
	l.scope = parent
	l.reset()
	l.release()
	l.notify()
	l.mu.Unlock()

	subCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	sub, err := l.source.Subscribe(subCtx, parent)
	if err != nil {
		cancel()
		return err
	}

	l.mu.Lock()
	if l.gen != gen {
		l.mu.Unlock()
		cancel()
		_ = sub.Close()
		return ErrScopeChanged
	}
	l.sub, l.cancel = sub, cancel
	l.mu.Unlock()

	records, err := l.source.List(ctx, parent)
	if err != nil {
		l.mu.Lock()
		if l.gen == gen {
			l.release()
		}
		l.mu.Unlock()
		return err
	}
	joined := profile.Join(ctx, l.joiner, records, func(r T) string { return r.GetAuthorID() })

	l.mu.Lock()
	if l.gen != gen {
		l.mu.Unlock()
		return ErrScopeChanged
	}
	pending := l.entries
	l.reset()
	for _, n := range joined {
		l.put(Entry[T]{Record: n.Record, AuthorName: n.AuthorName})
	}
	// Optimistic entries made during the fetch survive unless fetched.
	for _, e := range pending {
		l.put(e)
	}
	l.notify()
	l.mu.Unlock()

	go l.drain(subCtx, gen, parent, sub)
	return nil
}

func (l *SyncedList[T]) drain(ctx context.Context, gen uint64, parent string, sub remote.Subscription[T]) {
	for rec := range sub.Records() {
		if rec.GetParentID() != parent {
			log.Printf("WARNING: Dropping record %s of %s pushed to the %s thread", rec.GetID(), rec.GetParentID(), parent)
			continue
		}
		if l.known(gen, rec.GetID()) {
			continue
		}
		name := l.joiner.Name(ctx, rec.GetAuthorID())
		if !l.apply(gen, Entry[T]{Record: rec, AuthorName: name}) && l.stale(gen) {
			return
		}
	}
}

// reset and release expect l.mu to be held.
func (l *SyncedList[T]) reset() {
	l.entries = nil
	l.index = make(map[string]int)
}

func (l *SyncedList[T]) release() {
	if l.cancel != nil {
		l.cancel()
	}
	if l.sub != nil {
		if err := l.sub.Close(); err != nil {
			log.Printf("WARNING: Failed to close subscription of thread %s: %v", l.scope, err)
		}
	}
	l.sub, l.cancel = nil, nil
}

func (l *SyncedList[T]) notify() {
	if l.closed {
		return
	}
	select {
	case l.updates <- struct{}{}:
	default:
	}
}

// put inserts or, for a pending entry with the same ID, replaces. It reports
// whether the view changed.
func (l *SyncedList[T]) put(e Entry[T]) bool {
	id := e.Record.GetID()
	if i, ok := l.index[id]; ok {
		if !l.entries[i].Pending || e.Pending {
			return false
		}
		l.entries[i] = e
		return true
	}
	l.index[id] = len(l.entries)
	l.entries = append(l.entries, e)
	return true
}

// apply adds e if the list is still at generation gen.
func (l *SyncedList[T]) apply(gen uint64, e Entry[T]) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.gen != gen || l.closed {
		return false
	}
	if !l.put(e) {
		return false
	}
	l.notify()
	return true
}

// remove drops the pending entry id, leaving confirmed entries alone.
func (l *SyncedList[T]) remove(gen uint64, id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	i, ok := l.index[id]
	if l.gen != gen || !ok || !l.entries[i].Pending {
		return
	}
	l.entries = append(l.entries[:i], l.entries[i+1:]...)
	delete(l.index, id)
	for j := i; j < len(l.entries); j++ {
		l.index[l.entries[j].Record.GetID()] = j
	}
	l.notify()
}

func (l *SyncedList[T]) known(gen uint64, id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	i, ok := l.index[id]
	return l.gen == gen && ok && !l.entries[i].Pending
}

func (l *SyncedList[T]) stale(gen uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.gen != gen || l.closed
}

// current returns the generation and parent the list is bound to.
func (l *SyncedList[T]) current() (uint64, string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.gen, l.scope
}

// Scope is the parent the list is bound to, or "" before the first Bind.
func (l *SyncedList[T]) Scope() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.scope
}

// Snapshot copies the current view.
func (l *SyncedList[T]) Snapshot() []Entry[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry[T], len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *SyncedList[T]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Updates receives a value whenever the view changes. Signals coalesce; read
// Snapshot after each one. The channel is closed by Close.
func (l *SyncedList[T]) Updates() <-chan struct{} {
	return l.updates
}

// Close releases the subscription. Further Binds fail with ErrClosed.
func (l *SyncedList[T]) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.gen++
	l.release()
	l.closed = true
	close(l.updates)
	return nil
}
