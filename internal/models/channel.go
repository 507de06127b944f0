package models

type ChannelType string

const (
	ChannelTypeText  ChannelType = "text"
	ChannelTypeVoice ChannelType = "voice"
)

type Channel struct {
	ID       int64       `json:"id,string"`
	ServerID int64       `json:"server_id,string"`
	Name     string      `json:"name"`
	Type     ChannelType `json:"type"`
	Topic    *string     `json:"topic,omitempty"`

	// DefaultPermissions is the channel-level baseline mask, applied before
	// any role is considered.
	DefaultPermissions int64 `json:"default_permissions,string"`
}
