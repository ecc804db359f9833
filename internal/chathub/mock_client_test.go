package chathub_test

import (
	"complaintdesk/backend/internal/models"
	"complaintdesk/backend/internal/storage"
	"context"
	"sync"

	"github.com/stretchr/testify/mock"
)

type MockClient struct {
	id          string
	actor       models.Actor
	scope       string
	RecvChannel chan models.ServerEvent
	closed      chan struct{}
	closeOnce   sync.Once
}

func newMockClient(id string, actor models.Actor) *MockClient {
	return &MockClient{
		id:          id,
		actor:       actor,
		RecvChannel: make(chan models.ServerEvent, 10),
		closed:      make(chan struct{}),
	}
}

func (c *MockClient) GetID() string                             { return c.id }
func (c *MockClient) GetActor() models.Actor                    { return c.actor }
func (c *MockClient) GetScope() string                          { return c.scope }
func (c *MockClient) SetScope(id string)                        { c.scope = id }
func (c *MockClient) GetSendChannel() chan<- models.ServerEvent { return c.RecvChannel }

func (c *MockClient) Run() {
	// Not needed for testing
}

func (c *MockClient) Close() {
	c.closeOnce.Do(func() { close(c.closed) })
}

type MockViewer struct {
	mock.Mock
}

func (m *MockViewer) CanView(ctx context.Context, actor models.Actor, complaintID string) (bool, error) {
	args := m.Called(ctx, actor, complaintID)
	return args.Bool(0), args.Error(1)
}

// fakeFeed records subscriptions; the test publishes into them directly.
type fakeFeed struct {
	mu   sync.Mutex
	subs map[string]chan storage.Event
}

type fakeFeedSub struct {
	events chan storage.Event
}

func (s *fakeFeedSub) Events() <-chan storage.Event { return s.events }
func (s *fakeFeedSub) Close() error                 { return nil }

func (f *fakeFeed) Publish(ctx context.Context, channel string, payload []byte) error {
	return nil
}

func (f *fakeFeed) Subscribe(ctx context.Context, pattern string) (storage.FeedSubscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subs == nil {
		f.subs = make(map[string]chan storage.Event)
	}
	ch := make(chan storage.Event, 10)
	f.subs[pattern] = ch
	return &fakeFeedSub{events: ch}, nil
}

func (f *fakeFeed) patternCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

func (f *fakeFeed) emit(pattern string, ev storage.Event) {
	f.mu.Lock()
	ch := f.subs[pattern]
	f.mu.Unlock()
	ch <- ev
}
