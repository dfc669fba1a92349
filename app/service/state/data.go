package state

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message exchange unit in a conversation.
type Turn struct {
	Role      Role
	Text      string
	Timestamp time.Time
}

// Outcome of an admission attempt for an inbound message.
type Outcome int

const (
	Admitted Outcome = iota
	RateLimited
)

type ImageEvent int

const (
	ImageAnalyzed ImageEvent = iota
	ImageGenerated
)

// Snapshot is an immutable point-in-time copy of the coordinator state,
// safe to hand out to readers.
type Snapshot struct {
	StartedAt         time.Time
	UptimeSeconds     int64
	MessagesProcessed uint64
	ImagesAnalyzed    uint64
	ImagesGenerated   uint64
	Errors            uint64
	ActiveUsers       int
	ContextSizeTotal  int
}
