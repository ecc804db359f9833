package chathub

import (
	"complaintdesk/backend/internal/models"
	"complaintdesk/backend/internal/storage"
	"context"
	"encoding/json"
	"errors"
	"log"
)

// ErrHubStopped is returned to clients talking to a hub whose Run has ended.
var ErrHubStopped = errors.New("chathub: hub stopped")

// Viewer decides whether an actor may follow a complaint.
type Viewer interface {
	CanView(ctx context.Context, actor models.Actor, complaintID string) (bool, error)
}

// JoinRequest moves a client to ComplaintID ("" leaves). A non-empty Err
// means the join was refused and is reported to the client instead.
type JoinRequest struct {
	Client      Client
	ComplaintID string
	Err         string
}

// ManagerService routes store inserts to the websocket clients that follow
// the complaint they belong to. All client state is owned by Run.
type ManagerService struct {
	Clients map[string]Client

	// Channels
	RegisterCh   chan Client
	UnregisterCh chan Client
	JoinCh       chan JoinRequest
	PubSubCh     chan storage.Event

	Feed   storage.Feed
	Viewer Viewer

	done chan struct{}
}

// NewManagerService (ініціалізація каналів)
func NewManagerService(feed storage.Feed, viewer Viewer) *ManagerService {
	return &ManagerService{
		Clients:      make(map[string]Client),
		RegisterCh:   make(chan Client),
		UnregisterCh: make(chan Client),
		JoinCh:       make(chan JoinRequest),
		PubSubCh:     make(chan storage.Event),
		Feed:         feed,
		Viewer:       viewer,
		done:         make(chan struct{}),
	}
}

// Register hands a new client to the hub.
func (m *ManagerService) Register(c Client) error {
	select {
	case m.RegisterCh <- c:
		return nil
	case <-m.done:
		return ErrHubStopped
	}
}

// Unregister removes a client; the hub closes it.
func (m *ManagerService) Unregister(c Client) {
	select {
	case m.UnregisterCh <- c:
	case <-m.done:
	}
}

// RequestJoin checks that the client may follow complaintID and queues the
// scope switch. The check runs on the caller's goroutine so a slow lookup
// never stalls the hub.
func (m *ManagerService) RequestJoin(ctx context.Context, c Client, complaintID string) {
	req := JoinRequest{Client: c, ComplaintID: complaintID}
	if complaintID != "" {
		ok, err := m.Viewer.CanView(ctx, c.GetActor(), complaintID)
		switch {
		case err != nil:
			log.Printf("ERROR: Join check for %s on %s failed: %v", c.GetActor().UserID, complaintID, err)
			req.Err = "unavailable"
		case !ok:
			req.Err = "not_found"
		}
	}

	select {
	case m.JoinCh <- req:
	case <-m.done:
	case <-ctx.Done():
	}
}

// Run обробляє реєстрацію, перемикання скарг та події з фіду до зупинки ctx.
func (m *ManagerService) Run(ctx context.Context) {
	defer close(m.done)
	m.StartPubSubListener(ctx)

	for {
		select {
		case client := <-m.RegisterCh:
			m.Clients[client.GetID()] = client
			log.Printf("INFO: Client %s of %s connected.", client.GetID(), client.GetActor().UserID)

		case client := <-m.UnregisterCh:
			m.drop(client)

		case req := <-m.JoinCh:
			m.handleJoin(req)

		case ev := <-m.PubSubCh:
			m.handleFeedEvent(ev)

		case <-ctx.Done():
			for _, client := range m.Clients {
				m.drop(client)
			}
			return
		}
	}
}

func (m *ManagerService) drop(client Client) {
	if _, ok := m.Clients[client.GetID()]; !ok {
		return
	}
	delete(m.Clients, client.GetID())
	client.Close()
}

// deliver sends without blocking; a client that cannot keep up is dropped.
func (m *ManagerService) deliver(client Client, ev models.ServerEvent) {
	select {
	case client.GetSendChannel() <- ev:
	default:
		log.Printf("WARNING: Client %s is too slow, disconnecting.", client.GetID())
		m.drop(client)
	}
}

func (m *ManagerService) handleJoin(req JoinRequest) {
	client, ok := m.Clients[req.Client.GetID()]
	if !ok {
		return
	}
	if req.Err != "" {
		m.deliver(client, models.ServerEvent{Type: "error", ComplaintID: req.ComplaintID, Error: req.Err})
		return
	}

	// Перемикання скарги звільняє попередню: клієнт слухає лише одну.
	client.SetScope(req.ComplaintID)
	if req.ComplaintID == "" {
		m.deliver(client, models.ServerEvent{Type: "left"})
		return
	}
	m.deliver(client, models.ServerEvent{Type: "joined", ComplaintID: req.ComplaintID})
}

func (m *ManagerService) handleFeedEvent(ev storage.Event) {
	table, complaintID, ok := storage.ParseFeedChannel(ev.Channel)
	if !ok {
		log.Printf("WARNING: Ignoring event on unexpected channel %q", ev.Channel)
		return
	}

	adminOnly := table == commentsTable && isInternal(ev.Payload)
	out := models.ServerEvent{Type: "insert", Table: table, ComplaintID: complaintID, Record: ev.Payload}

	for _, client := range m.Clients {
		if client.GetScope() != complaintID {
			continue
		}
		if adminOnly && !client.GetActor().IsAdmin() {
			continue
		}
		m.deliver(client, out)
	}
}

func isInternal(payload []byte) bool {
	var c struct {
		IsInternal bool `json:"is_internal"`
	}
	if err := json.Unmarshal(payload, &c); err != nil {
		// Treat unreadable comments as internal.
		return true
	}
	return c.IsInternal
}
