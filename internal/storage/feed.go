package storage

import (
	"complaintdesk/backend/internal/config"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Event is one message received from a feed channel.
type Event struct {
	Channel string
	Payload []byte
}

// FeedSubscription delivers events until closed. Events is closed once the
// subscription ends.
type FeedSubscription interface {
	Events() <-chan Event
	Close() error
}

// Feed is the realtime backbone. Subscribe accepts a glob pattern; once it
// returns, every later Publish to a matching channel is delivered.
type Feed interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, pattern string) (FeedSubscription, error)
}

// FeedChannel names the channel that announces inserts into table for one
// parent record.
func FeedChannel(table, key string) string {
	return table + ":" + key
}

// ParseFeedChannel splits a channel produced by FeedChannel.
func ParseFeedChannel(channel string) (table, key string, ok bool) {
	return strings.Cut(channel, ":")
}

func isPattern(s string) bool {
	return strings.ContainsAny(s, "*?[")
}

// matchChannel reports whether channel matches the glob pattern.
func matchChannel(pattern, channel string) bool {
	if !isPattern(pattern) {
		return pattern == channel
	}
	ok, err := path.Match(pattern, channel)
	return err == nil && ok
}

// feedSubscription is shared by both backends: a producer goroutine pushes
// into events until done is closed.
type feedSubscription struct {
	events  chan Event
	done    chan struct{}
	once    sync.Once
	closeFn func() error
}

func newFeedSubscription(closeFn func() error) *feedSubscription {
	return &feedSubscription{
		events:  make(chan Event, config.SubscriptionBuffer),
		done:    make(chan struct{}),
		closeFn: closeFn,
	}
}

func (s *feedSubscription) Events() <-chan Event { return s.events }

func (s *feedSubscription) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = s.closeFn()
	})
	return err
}

// deliver returns false once the subscription is closed or ctx is done.
func (s *feedSubscription) deliver(ctx context.Context, ev Event) bool {
	select {
	case s.events <- ev:
		return true
	case <-s.done:
		return false
	case <-ctx.Done():
		return false
	}
}

// RedisFeed carries events over Redis Pub/Sub.
type RedisFeed struct {
	Client *redis.Client
}

func NewRedisFeed(client *redis.Client) *RedisFeed {
	return &RedisFeed{Client: client}
}

func (f *RedisFeed) Publish(ctx context.Context, channel string, payload []byte) error {
	return f.Client.Publish(ctx, channel, payload).Err()
}

func (f *RedisFeed) Subscribe(ctx context.Context, pattern string) (FeedSubscription, error) {
	var pubsub *redis.PubSub
	if isPattern(pattern) {
		pubsub = f.Client.PSubscribe(ctx, pattern)
	} else {
		pubsub = f.Client.Subscribe(ctx, pattern)
	}

	// Wait for the subscribe confirmation so no publish after return is missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("redis subscribe %s: %w", pattern, err)
	}

	sub := newFeedSubscription(pubsub.Close)
	go func() {
		defer close(sub.events)
		defer sub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case msg, ok := <-ch:
				if !ok {
					return
				}
				if !sub.deliver(ctx, Event{Channel: msg.Channel, Payload: []byte(msg.Payload)}) {
					return
				}
			case <-sub.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
	return sub, nil
}

// pgNotifyChannel is the single Postgres channel that carries every feed
// channel inside an envelope.
const pgNotifyChannel = "complaintdesk_feed"

type pgEnvelope struct {
	Channel string          `json:"channel"`
	Payload json.RawMessage `json:"payload"`
}

func encodeEnvelope(channel string, payload []byte) (string, error) {
	b, err := json.Marshal(pgEnvelope{Channel: channel, Payload: payload})
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeEnvelope(raw string) (Event, error) {
	var env pgEnvelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return Event{}, err
	}
	return Event{Channel: env.Channel, Payload: env.Payload}, nil
}

// PGFeed carries events over Postgres LISTEN/NOTIFY, for deployments
// without Redis. Payloads must be JSON.
type PGFeed struct {
	DB  *gorm.DB
	DSN string
}

func NewPGFeed(db *gorm.DB, dsn string) *PGFeed {
	return &PGFeed{DB: db, DSN: dsn}
}

func (f *PGFeed) Publish(ctx context.Context, channel string, payload []byte) error {
	msg, err := encodeEnvelope(channel, payload)
	if err != nil {
		return err
	}
	return f.DB.WithContext(ctx).Exec("SELECT pg_notify(?, ?)", pgNotifyChannel, msg).Error
}

func (f *PGFeed) Subscribe(ctx context.Context, pattern string) (FeedSubscription, error) {
	listener := pq.NewListener(f.DSN, 2*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			log.Printf("WARNING: Postgres listener event %d: %v", ev, err)
		}
	})
	if err := listener.Listen(pgNotifyChannel); err != nil {
		_ = listener.Close()
		return nil, fmt.Errorf("postgres listen: %w", err)
	}

	sub := newFeedSubscription(listener.Close)
	go func() {
		defer close(sub.events)
		defer sub.Close()

		for {
			select {
			case n, ok := <-listener.Notify:
				if !ok {
					return
				}
				if n == nil {
					// Reconnected; notifications sent meanwhile are lost.
					continue
				}
				ev, err := decodeEnvelope(n.Extra)
				if err != nil {
					log.Printf("WARNING: Dropping malformed notification: %v", err)
					continue
				}
				if !matchChannel(pattern, ev.Channel) {
					continue
				}
				if !sub.deliver(ctx, ev) {
					return
				}
			case <-sub.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
	return sub, nil
}
