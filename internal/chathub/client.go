package chathub

import "complaintdesk/backend/internal/models"

// Client is one live connection following at most one complaint.
type Client interface {
	// GetID identifies the connection; a user may hold several.
	GetID() string
	GetActor() models.Actor

	// GetScope returns the complaint the client follows, or "".
	// Scope is only read and written by the hub's Run loop.
	GetScope() string
	SetScope(string)

	// GetSendChannel returns the channel the hub writes events to.
	GetSendChannel() chan<- models.ServerEvent

	// Run starts the client's read and write pumps.
	Run()
	// Close shuts the connection down. It is safe to call more than once.
	Close()
}
