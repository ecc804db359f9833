package chathub

import (
	"complaintdesk/backend/internal/storage"
	"context"
	"log"
)

const (
	messagesTable = "chat_messages"
	commentsTable = "complaint_comments"
)

// StartPubSubListener підписується на фід вставок і передає події в Run.
func (m *ManagerService) StartPubSubListener(ctx context.Context) {
	if m.Feed == nil {
		log.Println("WARNING: No realtime feed configured; websocket clients will not receive inserts.")
		return
	}

	for _, table := range []string{messagesTable, commentsTable} {
		sub, err := m.Feed.Subscribe(ctx, storage.FeedChannel(table, "*"))
		if err != nil {
			log.Printf("ERROR: Failed to subscribe to %s inserts: %v", table, err)
			continue
		}

		go func() {
			defer sub.Close()
			for ev := range sub.Events() {
				select {
				case m.PubSubCh <- ev:
				case <-ctx.Done():
					return
				}
			}
		}()
	}
}
