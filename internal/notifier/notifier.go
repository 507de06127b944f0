package notifier

import "context"

// Change types for permission events.
const (
	ChangeCreated = "CREATED"
	ChangeUpdated = "UPDATED"
	ChangeDeleted = "DELETED"
)

// Event describes a write that can alter permission resolution. Downstream
// consumers (cache invalidators, moderation tooling) key on Type.
type Event struct {
	Type      string `json:"type"`
	Change    string `json:"change"`
	ServerID  int64  `json:"server_id,string,omitempty"`
	ChannelID int64  `json:"channel_id,string,omitempty"`
	RoleID    int64  `json:"role_id,string,omitempty"`
	UserID    int64  `json:"user_id,string,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// Event types.
const (
	TypeRole           = "role"
	TypeRoleAssignment = "role_assignment"
	TypeRoleOverride   = "channel_role_override"
	TypeUserOverride   = "user_channel_override"
	TypeChannel        = "channel"
)

// Notifier publishes permission change events. Publishing is best effort;
// a failed publish never fails the write that triggered it.
type Notifier interface {
	Notify(ctx context.Context, event Event)
	Close() error
}

// Noop discards all events. Used by the CLI and in tests.
type Noop struct{}

func (Noop) Notify(context.Context, Event) {}
func (Noop) Close() error                  { return nil }
