package gateway

import "encoding/json"

// Op codes for gateway payloads.
const (
	OpDispatch       = 0
	OpHeartbeat      = 1
	OpIdentify       = 2
	OpPresenceUpdate = 3
	OpChatMessage    = 4
	OpVoiceState     = 5
	OpReconnect      = 7
	OpHello          = 10
	OpHeartbeatAck   = 11
)

// Event names for DISPATCH payloads.
const (
	EventReady          = "READY"
	EventServerCreate   = "SERVER_CREATE"
	EventServerUpdate   = "SERVER_UPDATE"
	EventServerDelete   = "SERVER_DELETE"
	EventChannelCreate  = "CHANNEL_CREATE"
	EventChannelUpdate  = "CHANNEL_UPDATE"
	EventChannelDelete  = "CHANNEL_DELETE"
	EventMemberAdd      = "MEMBER_ADD"
	EventMemberRemove   = "MEMBER_REMOVE"
	EventMemberUpdate   = "MEMBER_UPDATE"
	EventRoleCreate     = "ROLE_CREATE"
	EventRoleUpdate     = "ROLE_UPDATE"
	EventRoleDelete     = "ROLE_DELETE"
	EventOverrideUpdate = "OVERRIDE_UPDATE"
	EventBanAdd         = "BAN_ADD"
	EventBanRemove      = "BAN_REMOVE"
	EventChatMessage    = "CHAT_MESSAGE"
	EventVoiceState     = "VOICE_STATE_UPDATE"
	EventPresenceUpdate = "PRESENCE_UPDATE"
)

// GatewayPayload is the envelope for all gateway messages.
type GatewayPayload struct {
	Op       int             `json:"op"`
	Data     json.RawMessage `json:"d,omitempty"`
	Sequence *int64          `json:"s,omitempty"`
	Event    *string         `json:"t,omitempty"`
}

// IdentifyData is sent by the client in an Op 2 IDENTIFY.
type IdentifyData struct {
	Token string `json:"token"`
}

// HelloData is sent by the server after WebSocket connect.
type HelloData struct {
	HeartbeatInterval int `json:"heartbeat_interval"`
}

// ReadyData is sent by the server after successful IDENTIFY.
type ReadyData struct {
	SessionID string  `json:"session_id"`
	UserID    int64   `json:"user_id,string"`
	Servers   []int64 `json:"servers"`
}

// ClientChatMessage is sent by the client in an Op 4 CHAT_MESSAGE.
type ClientChatMessage struct {
	ChannelID int64  `json:"channel_id,string"`
	Content   string `json:"content"`
}

// ChatMessageData is the payload of a dispatched CHAT_MESSAGE event.
// Messages are relayed to connected clients only and never persisted.
type ChatMessageData struct {
	ChannelID int64  `json:"channel_id,string"`
	ServerID  int64  `json:"server_id,string"`
	AuthorID  int64  `json:"author_id,string"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
}

// ClientVoiceState is sent by the client in an Op 5 VOICE_STATE.
// ChannelID 0 means leave the current voice channel.
type ClientVoiceState struct {
	ChannelID int64 `json:"channel_id,string"`
}

// VoiceStateData is the payload of a dispatched VOICE_STATE_UPDATE event.
// ChannelID is nil when the user left voice.
type VoiceStateData struct {
	UserID    int64  `json:"user_id,string"`
	ServerID  int64  `json:"server_id,string"`
	ChannelID *int64 `json:"channel_id,string,omitempty"`
}

// PresenceUpdateData is the payload for PRESENCE_UPDATE events.
type PresenceUpdateData struct {
	UserID int64  `json:"user_id,string"`
	Status string `json:"status"`
}

// ClientPresenceUpdate is sent by the client in an Op 3 PRESENCE_UPDATE.
type ClientPresenceUpdate struct {
	Status string `json:"status"`
}

// Event is a dispatch event ready to broadcast.
type Event struct {
	Name string
	Data any
}
