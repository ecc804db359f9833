package thread_test

import (
	"complaintdesk/backend/internal/models"
	"complaintdesk/backend/internal/remote"
	"context"
	"sync"

	"github.com/stretchr/testify/mock"
)

type MockLookup struct {
	mock.Mock
}

func (m *MockLookup) ProfileNames(ctx context.Context, ids []string) (map[string]string, error) {
	args := m.Called(ctx, ids)
	names, _ := args.Get(0).(map[string]string)
	return names, args.Error(1)
}

// namesLookup answers every lookup from a fixed table.
func namesLookup(names map[string]string) *MockLookup {
	l := new(MockLookup)
	l.On("ProfileNames", mock.Anything, mock.Anything).Return(names, nil)
	return l
}

type fakeSub struct {
	records chan models.ChatMessage
	closed  bool
}

func (s *fakeSub) Records() <-chan models.ChatMessage { return s.records }

// fakeSource serves chat messages from memory. Subscriptions are plain
// buffered channels the test pushes into.
type fakeSource struct {
	mu    sync.Mutex
	rows  map[string][]models.ChatMessage
	subs  map[string][]*fakeSub
	gates map[string]chan struct{}
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		rows:  make(map[string][]models.ChatMessage),
		subs:  make(map[string][]*fakeSub),
		gates: make(map[string]chan struct{}),
	}
}

// gate makes List(parent) block until the returned channel is closed.
func (s *fakeSource) gate(parent string) chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := make(chan struct{})
	s.gates[parent] = g
	return g
}

func (s *fakeSource) List(ctx context.Context, parent string) ([]models.ChatMessage, error) {
	s.mu.Lock()
	g := s.gates[parent]
	s.mu.Unlock()
	if g != nil {
		<-g
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ChatMessage, len(s.rows[parent]))
	copy(out, s.rows[parent])
	return out, nil
}

func (s *fakeSource) Subscribe(ctx context.Context, parent string) (remote.Subscription[models.ChatMessage], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub := &fakeSub{records: make(chan models.ChatMessage, 32)}
	s.subs[parent] = append(s.subs[parent], sub)
	return &subHandle{src: s, sub: sub}, nil
}

// subHandle closes its subscription under the source lock so pushes never
// hit a closed channel.
type subHandle struct {
	src *fakeSource
	sub *fakeSub
}

func (h *subHandle) Records() <-chan models.ChatMessage { return h.sub.records }

func (h *subHandle) Close() error {
	h.src.mu.Lock()
	defer h.src.mu.Unlock()
	if !h.sub.closed {
		h.sub.closed = true
		close(h.sub.records)
	}
	return nil
}

// insert stores rec and announces it to every open subscription of its
// parent, as the store does.
func (s *fakeSource) insert(rec models.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[rec.ComplaintID] = append(s.rows[rec.ComplaintID], rec)
	for _, sub := range s.subs[rec.ComplaintID] {
		if !sub.closed {
			sub.records <- rec
		}
	}
}

// pushTo delivers rec on the open subscriptions of channel regardless of
// the record's own parent.
func (s *fakeSource) pushTo(channel string, rec models.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range s.subs[channel] {
		if !sub.closed {
			sub.records <- rec
		}
	}
}

func (s *fakeSource) openSubs(parent string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, sub := range s.subs[parent] {
		if !sub.closed {
			n++
		}
	}
	return n
}
