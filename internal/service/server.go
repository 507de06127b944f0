package service

import (
	"context"
	"time"

	"github.com/zachbakerdev/open-natter-server/internal/database"
	"github.com/zachbakerdev/open-natter-server/internal/gateway"
	"github.com/zachbakerdev/open-natter-server/internal/models"
	"github.com/zachbakerdev/open-natter-server/internal/permissions"
	"github.com/zachbakerdev/open-natter-server/internal/snowflake"
)

// ServerService handles server business logic.
type ServerService struct {
	servers   database.ServerRepository
	channels  database.ChannelRepository
	members   database.MemberRepository
	snowflake *snowflake.Generator
	gateway   gateway.Dispatcher
	perms     *PermissionChecker
}

// NewServerService creates a ServerService.
func NewServerService(
	servers database.ServerRepository,
	channels database.ChannelRepository,
	members database.MemberRepository,
	sf *snowflake.Generator,
	gw gateway.Dispatcher,
	perms *PermissionChecker,
) *ServerService {
	return &ServerService{
		servers:   servers,
		channels:  channels,
		members:   members,
		snowflake: sf,
		gateway:   gw,
		perms:     perms,
	}
}

// CreateServer creates a server with starter channels. The creator becomes
// the owner and a member. New members get capabilities from the channel
// baselines until roles are set up, so no default role is created.
func (s *ServerService) CreateServer(ctx context.Context, userID int64, name string) (*models.Server, error) {
	if len(name) < 2 || len(name) > 100 {
		return nil, BadRequest("INVALID_NAME", "server name must be 2-100 characters")
	}

	now := time.Now()

	server := &models.Server{
		ID:        s.snowflake.Generate().Int64(),
		Name:      name,
		OwnerID:   userID,
		CreatedAt: now,
	}
	if err := s.servers.Create(ctx, server); err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}

	member := &models.Member{
		ServerID: server.ID,
		UserID:   userID,
		JoinedAt: now,
	}
	if err := s.members.Create(ctx, member); err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}

	generalText := &models.Channel{
		ID:                 s.snowflake.Generate().Int64(),
		ServerID:           server.ID,
		Name:               "general",
		Type:               models.ChannelTypeText,
		DefaultPermissions: int64(permissions.DefaultChannelPerms),
	}
	if err := s.channels.Create(ctx, generalText); err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}

	generalVoice := &models.Channel{
		ID:                 s.snowflake.Generate().Int64(),
		ServerID:           server.ID,
		Name:               "Voice Lounge",
		Type:               models.ChannelTypeVoice,
		DefaultPermissions: int64(permissions.DefaultChannelPerms | permissions.PermVoice),
	}
	if err := s.channels.Create(ctx, generalVoice); err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}

	s.gateway.SubscribeToServer(userID, server.ID)
	s.gateway.DispatchToUser(userID, gateway.EventServerCreate, server)
	return server, nil
}

// GetServer returns a server if the user is a member.
func (s *ServerService) GetServer(ctx context.Context, serverID, userID int64) (*models.Server, error) {
	member, err := s.members.GetByServerAndUser(ctx, serverID, userID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if member == nil {
		return nil, NotFound("NOT_FOUND", "server not found")
	}

	server, err := s.servers.GetByID(ctx, serverID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if server == nil {
		return nil, NotFound("NOT_FOUND", "server not found")
	}

	return server, nil
}

// UpdateServer updates server name and/or icon.
func (s *ServerService) UpdateServer(ctx context.Context, serverID, userID int64, name *string, icon *string) (*models.Server, error) {
	if err := s.perms.RequireServerPermission(ctx, serverID, userID, permissions.PermManageServer); err != nil {
		return nil, err
	}

	server, err := s.servers.GetByID(ctx, serverID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if server == nil {
		return nil, NotFound("NOT_FOUND", "server not found")
	}

	if name != nil {
		if len(*name) < 2 || len(*name) > 100 {
			return nil, BadRequest("INVALID_NAME", "server name must be 2-100 characters")
		}
		server.Name = *name
	}
	if icon != nil {
		server.IconHash = icon
	}

	if err := s.servers.Update(ctx, server); err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}

	s.gateway.DispatchToServer(serverID, gateway.EventServerUpdate, server)
	return server, nil
}

// DeleteServer deletes a server. Only the owner can delete.
func (s *ServerService) DeleteServer(ctx context.Context, serverID, userID int64) error {
	server, err := s.servers.GetByID(ctx, serverID)
	if err != nil {
		return Internal("INTERNAL", "internal server error")
	}
	if server == nil {
		return NotFound("NOT_FOUND", "server not found")
	}
	if server.OwnerID != userID {
		return Forbidden("FORBIDDEN", "only the server owner can delete the server")
	}

	if err := s.servers.Delete(ctx, serverID); err != nil {
		return Internal("INTERNAL", "internal server error")
	}

	s.gateway.DispatchToServer(serverID, gateway.EventServerDelete, map[string]any{"id": serverID})
	return nil
}

// ListMyServers returns all servers the user is a member of.
func (s *ServerService) ListMyServers(ctx context.Context, userID int64) ([]models.Server, error) {
	servers, err := s.servers.GetByUserID(ctx, userID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if servers == nil {
		servers = []models.Server{}
	}
	return servers, nil
}
