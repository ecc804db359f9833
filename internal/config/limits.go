package config

import "time"

const (
	// Chat
	MessageMaxLength = 1000

	// Comments
	CommentMaxLength = 2000

	// Complaint form
	TitleMinLength       = 5
	TitleMaxLength       = 200
	DescriptionMinLength = 20
	DescriptionMaxLength = 2000

	// Display name used when an author's profile cannot be resolved.
	UnknownAuthor = "Unknown"

	// FilterAll disables a status or priority predicate.
	FilterAll = "all"

	// Buffered realtime records per subscription before the store side blocks.
	SubscriptionBuffer = 64
)

// How long a resolved author name is reused before it is looked up again.
const NameCacheTTL = 5 * time.Minute
