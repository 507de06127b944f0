package gateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zachbakerdev/open-natter-server/internal/auth"
	"github.com/zachbakerdev/open-natter-server/internal/database"
	"github.com/zachbakerdev/open-natter-server/internal/models"
	"github.com/zachbakerdev/open-natter-server/internal/permissions"
	"github.com/zachbakerdev/open-natter-server/internal/redis"
)

const maxChatContentLength = 2000

// PermissionGate authorizes gateway operations. The service layer's
// permission checker satisfies it; the gateway never combines masks itself.
type PermissionGate interface {
	RequireChannelPermission(ctx context.Context, channelID, userID int64, required permissions.Permission, mode permissions.CheckMode) error
}

// Manager manages all active WebSocket connections and event routing.
type Manager struct {
	mu            sync.RWMutex
	connections   map[int64]*Connection    // userID → connection
	subscriptions map[int64]map[int64]bool // serverID → set of userIDs
	sessions      map[string]*Connection   // sessionID → connection

	tokens   *auth.TokenService
	servers  database.ServerRepository
	channels database.ChannelRepository
	gate     PermissionGate
	redis    *redis.Client
}

// NewManager creates a new gateway Manager.
func NewManager(
	tokens *auth.TokenService,
	servers database.ServerRepository,
	channels database.ChannelRepository,
	gate PermissionGate,
	redisClient *redis.Client,
) *Manager {
	return &Manager{
		connections:   make(map[int64]*Connection),
		subscriptions: make(map[int64]map[int64]bool),
		sessions:      make(map[string]*Connection),
		tokens:        tokens,
		servers:       servers,
		channels:      channels,
		gate:          gate,
		redis:         redisClient,
	}
}

// register adds a connection to the manager.
func (m *Manager) register(c *Connection) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Disconnect existing connection for this user.
	if old, ok := m.connections[c.UserID]; ok {
		old.SendPayload(GatewayPayload{Op: OpReconnect})
		old.Close()
		delete(m.sessions, old.SessionID)
	}

	m.connections[c.UserID] = c
	m.sessions[c.SessionID] = c
}

// unregister removes a connection from the manager and cleans up subscriptions.
func (m *Manager) unregister(c *Connection) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.connections[c.UserID]; ok && existing == c {
		delete(m.connections, c.UserID)

		for serverID, members := range m.subscriptions {
			delete(members, c.UserID)
			if len(members) == 0 {
				delete(m.subscriptions, serverID)
			}
		}

		// Clear presence with grace period.
		go m.clearPresenceWithGrace(c.UserID)
	}

	delete(m.sessions, c.SessionID)
}

// clearPresenceWithGrace waits before setting offline, allowing reconnection.
func (m *Manager) clearPresenceWithGrace(userID int64) {
	time.Sleep(10 * time.Second)

	m.mu.RLock()
	_, stillConnected := m.connections[userID]
	m.mu.RUnlock()

	if stillConnected {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := m.redis.SetPresence(ctx, userID, "offline"); err != nil {
		slog.Error("failed to clear presence", "userID", userID, "error", err)
	}

	m.broadcastPresence(userID, "offline")
}

// subscribe adds a user to a server's event subscription.
func (m *Manager) subscribe(userID, serverID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.subscriptions[serverID] == nil {
		m.subscriptions[serverID] = make(map[int64]bool)
	}
	m.subscriptions[serverID][userID] = true
}

// SubscribeToServer adds a user to a server's event subscription.
func (m *Manager) SubscribeToServer(userID, serverID int64) {
	m.subscribe(userID, serverID)
}

// UnsubscribeFromServer removes a user from a server's event subscription.
func (m *Manager) UnsubscribeFromServer(userID, serverID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if members, ok := m.subscriptions[serverID]; ok {
		delete(members, userID)
		if len(members) == 0 {
			delete(m.subscriptions, serverID)
		}
	}
}

// DispatchToUser sends a dispatch event to a specific connected user.
func (m *Manager) DispatchToUser(userID int64, event string, data interface{}) {
	m.mu.RLock()
	c, ok := m.connections[userID]
	m.mu.RUnlock()

	if ok {
		c.SendEvent(event, data)
	}
}

// DispatchToServer sends a dispatch event to all users subscribed to a server.
func (m *Manager) DispatchToServer(serverID int64, event string, data interface{}) {
	m.mu.RLock()
	members := m.subscriptions[serverID]
	conns := make([]*Connection, 0, len(members))
	for userID := range members {
		if c, ok := m.connections[userID]; ok {
			conns = append(conns, c)
		}
	}
	m.mu.RUnlock()

	for _, c := range conns {
		c.SendEvent(event, data)
	}
}

// DispatchToServerExcept sends a dispatch event to all server subscribers except one user.
func (m *Manager) DispatchToServerExcept(serverID int64, exceptUserID int64, event string, data interface{}) {
	m.mu.RLock()
	members := m.subscriptions[serverID]
	conns := make([]*Connection, 0, len(members))
	for userID := range members {
		if userID == exceptUserID {
			continue
		}
		if c, ok := m.connections[userID]; ok {
			conns = append(conns, c)
		}
	}
	m.mu.RUnlock()

	for _, c := range conns {
		c.SendEvent(event, data)
	}
}

// handleIdentify processes an IDENTIFY payload from a client.
func (m *Manager) handleIdentify(c *Connection, data json.RawMessage) {
	var identify IdentifyData
	if err := json.Unmarshal(data, &identify); err != nil {
		slog.Error("invalid identify data", "error", err)
		c.Close()
		return
	}

	claims, err := m.tokens.ValidateAccessToken(identify.Token)
	if err != nil {
		slog.Warn("invalid token in identify", "error", err)
		c.Close()
		return
	}

	c.UserID = claims.UserID
	c.SessionID = uuid.NewString()

	// Get user's servers and subscribe.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	servers, err := m.servers.GetByUserID(ctx, c.UserID)
	if err != nil {
		slog.Error("failed to get servers for user", "userID", c.UserID, "error", err)
		c.Close()
		return
	}

	m.register(c)

	serverIDs := make([]int64, len(servers))
	for i, s := range servers {
		serverIDs[i] = s.ID
		m.subscribe(c.UserID, s.ID)
	}

	// Set presence to online.
	if err := m.redis.SetPresence(ctx, c.UserID, "online"); err != nil {
		slog.Error("failed to set presence", "userID", c.UserID, "error", err)
	}

	// Send READY.
	c.SendEvent(EventReady, ReadyData{
		SessionID: c.SessionID,
		UserID:    c.UserID,
		Servers:   serverIDs,
	})

	m.broadcastPresence(c.UserID, "online")
}

// handleChatMessage relays an ephemeral chat message to the channel's server.
// The sender must hold CHAT in the channel; the message is never stored.
func (m *Manager) handleChatMessage(c *Connection, data json.RawMessage) {
	if c.UserID == 0 {
		c.Close()
		return
	}

	var msg ClientChatMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		slog.Warn("invalid chat message payload", "userID", c.UserID, "error", err)
		return
	}
	if msg.Content == "" || len(msg.Content) > maxChatContentLength {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := m.gate.RequireChannelPermission(ctx, msg.ChannelID, c.UserID, permissions.PermChat, permissions.CheckAll); err != nil {
		slog.Debug("chat message denied", "userID", c.UserID, "channelID", msg.ChannelID)
		return
	}

	channel, err := m.channels.GetByID(ctx, msg.ChannelID)
	if err != nil || channel == nil {
		return
	}

	m.DispatchToServer(channel.ServerID, EventChatMessage, ChatMessageData{
		ChannelID: msg.ChannelID,
		ServerID:  channel.ServerID,
		AuthorID:  c.UserID,
		Content:   msg.Content,
		Timestamp: time.Now().UnixMilli(),
	})
}

// handleVoiceState processes a voice channel join or leave. Joining
// requires CONNECT in the target channel; a channel id of 0 leaves the
// current voice channel.
func (m *Manager) handleVoiceState(c *Connection, data json.RawMessage) {
	if c.UserID == 0 {
		c.Close()
		return
	}

	var state ClientVoiceState
	if err := json.Unmarshal(data, &state); err != nil {
		slog.Warn("invalid voice state payload", "userID", c.UserID, "error", err)
		return
	}

	if state.ChannelID == 0 {
		m.leaveVoice(c)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	channel, err := m.channels.GetByID(ctx, state.ChannelID)
	if err != nil || channel == nil || channel.Type != models.ChannelTypeVoice {
		return
	}

	if err := m.gate.RequireChannelPermission(ctx, state.ChannelID, c.UserID, permissions.PermConnect, permissions.CheckAll); err != nil {
		slog.Debug("voice join denied", "userID", c.UserID, "channelID", state.ChannelID)
		return
	}

	// Moving between channels implies leaving the old one first.
	if c.voiceChannelID != 0 && c.voiceChannelID != state.ChannelID {
		m.leaveVoice(c)
	}

	c.voiceChannelID = state.ChannelID
	c.voiceServerID = channel.ServerID

	channelID := state.ChannelID
	m.DispatchToServer(channel.ServerID, EventVoiceState, VoiceStateData{
		UserID:    c.UserID,
		ServerID:  channel.ServerID,
		ChannelID: &channelID,
	})
}

// leaveVoice broadcasts that the connection left its voice channel, if any.
func (m *Manager) leaveVoice(c *Connection) {
	if c.voiceChannelID == 0 {
		return
	}
	serverID := c.voiceServerID
	c.voiceChannelID = 0
	c.voiceServerID = 0

	m.DispatchToServer(serverID, EventVoiceState, VoiceStateData{
		UserID:   c.UserID,
		ServerID: serverID,
	})
}

// handlePresenceUpdate processes a client presence update.
func (m *Manager) handlePresenceUpdate(c *Connection, data json.RawMessage) {
	if c.UserID == 0 {
		c.Close()
		return
	}

	var update ClientPresenceUpdate
	if err := json.Unmarshal(data, &update); err != nil {
		return
	}

	switch update.Status {
	case "online", "idle", "dnd", "invisible":
		// valid
	default:
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	status := update.Status
	if status == "invisible" {
		status = "offline"
	}
	if err := m.redis.SetPresence(ctx, c.UserID, status); err != nil {
		slog.Error("failed to update presence", "userID", c.UserID, "error", err)
		return
	}

	m.broadcastPresence(c.UserID, status)
}

// broadcastPresence sends a PRESENCE_UPDATE event to all servers the user is in.
func (m *Manager) broadcastPresence(userID int64, status string) {
	data := PresenceUpdateData{UserID: userID, Status: status}

	m.mu.RLock()
	var serverIDs []int64
	for serverID, members := range m.subscriptions {
		if members[userID] {
			serverIDs = append(serverIDs, serverID)
		}
	}
	m.mu.RUnlock()

	for _, serverID := range serverIDs {
		m.DispatchToServer(serverID, EventPresenceUpdate, data)
	}
}
