package service

import (
	"context"
	"regexp"

	"github.com/zachbakerdev/open-natter-server/internal/database"
	"github.com/zachbakerdev/open-natter-server/internal/gateway"
	"github.com/zachbakerdev/open-natter-server/internal/models"
	"github.com/zachbakerdev/open-natter-server/internal/notifier"
	"github.com/zachbakerdev/open-natter-server/internal/permissions"
	"github.com/zachbakerdev/open-natter-server/internal/snowflake"
)

// Channel names start with a letter, end with a letter or digit, and may
// contain spaces, hyphens, and underscores in between. 3 to 30 characters.
var channelNameRegexp = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9 _-]{1,28}[A-Za-z0-9]$`)

// ChannelService handles channel business logic.
type ChannelService struct {
	channels  database.ChannelRepository
	members   database.MemberRepository
	snowflake *snowflake.Generator
	gateway   gateway.Dispatcher
	notifier  notifier.Notifier
	perms     *PermissionChecker
}

// NewChannelService creates a ChannelService.
func NewChannelService(
	channels database.ChannelRepository,
	members database.MemberRepository,
	sf *snowflake.Generator,
	gw gateway.Dispatcher,
	nf notifier.Notifier,
	perms *PermissionChecker,
) *ChannelService {
	return &ChannelService{
		channels:  channels,
		members:   members,
		snowflake: sf,
		gateway:   gw,
		notifier:  nf,
		perms:     perms,
	}
}

// CreateChannel creates a channel in the given server. A nil defaultPerms
// applies the standard baseline.
func (s *ChannelService) CreateChannel(ctx context.Context, serverID, userID int64, name string, chType models.ChannelType, topic *string, defaultPerms *int64) (*models.Channel, error) {
	if err := s.perms.RequireServerPermission(ctx, serverID, userID, permissions.PermManageChannel); err != nil {
		return nil, err
	}

	if !channelNameRegexp.MatchString(name) {
		return nil, BadRequest("INVALID_NAME", "channel name must be 3-30 characters, start with a letter, and end with a letter or digit")
	}

	switch chType {
	case models.ChannelTypeText, models.ChannelTypeVoice:
	default:
		return nil, BadRequest("INVALID_TYPE", "channel type must be \"text\" or \"voice\"")
	}

	baseline := int64(permissions.DefaultChannelPerms)
	if chType == models.ChannelTypeVoice {
		baseline = int64(permissions.DefaultChannelPerms | permissions.PermVoice)
	}
	if defaultPerms != nil {
		if !permissions.Valid(permissions.Permission(*defaultPerms)) {
			return nil, BadRequest("UNKNOWN_PERMISSION", "default permissions contain undefined bits")
		}
		baseline = *defaultPerms
	}

	ch := &models.Channel{
		ID:                 s.snowflake.Generate().Int64(),
		ServerID:           serverID,
		Name:               name,
		Type:               chType,
		Topic:              topic,
		DefaultPermissions: baseline,
	}

	if err := s.channels.Create(ctx, ch); err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}

	s.gateway.DispatchToServer(serverID, gateway.EventChannelCreate, ch)
	s.notifier.Notify(ctx, notifier.Event{
		Type:      notifier.TypeChannel,
		Change:    notifier.ChangeCreated,
		ServerID:  serverID,
		ChannelID: ch.ID,
	})
	return ch, nil
}

// ListChannels returns all channels in a server if the user is a member.
func (s *ChannelService) ListChannels(ctx context.Context, serverID, userID int64) ([]models.Channel, error) {
	member, err := s.members.GetByServerAndUser(ctx, serverID, userID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if member == nil {
		return nil, NotFound("NOT_FOUND", "server not found")
	}

	channels, err := s.channels.GetByServerID(ctx, serverID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if channels == nil {
		channels = []models.Channel{}
	}

	return channels, nil
}

// GetChannel returns a channel if the user is a member of its server.
func (s *ChannelService) GetChannel(ctx context.Context, channelID, userID int64) (*models.Channel, error) {
	ch, err := s.channels.GetByID(ctx, channelID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if ch == nil {
		return nil, NotFound("NOT_FOUND", "channel not found")
	}

	member, err := s.members.GetByServerAndUser(ctx, ch.ServerID, userID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if member == nil {
		return nil, NotFound("NOT_FOUND", "channel not found")
	}

	return ch, nil
}

// UpdateChannel updates channel name, topic, and/or default permissions.
func (s *ChannelService) UpdateChannel(ctx context.Context, channelID, userID int64, name *string, topic *string, defaultPerms *int64) (*models.Channel, error) {
	ch, err := s.channels.GetByID(ctx, channelID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if ch == nil {
		return nil, NotFound("NOT_FOUND", "channel not found")
	}

	if err := s.perms.RequireChannelPermission(ctx, channelID, userID, permissions.PermManageChannel, permissions.CheckAll); err != nil {
		return nil, err
	}

	if name != nil {
		if !channelNameRegexp.MatchString(*name) {
			return nil, BadRequest("INVALID_NAME", "channel name must be 3-30 characters, start with a letter, and end with a letter or digit")
		}
		ch.Name = *name
	}
	if topic != nil {
		ch.Topic = topic
	}
	if defaultPerms != nil {
		if !permissions.Valid(permissions.Permission(*defaultPerms)) {
			return nil, BadRequest("UNKNOWN_PERMISSION", "default permissions contain undefined bits")
		}
		ch.DefaultPermissions = *defaultPerms
	}

	if err := s.channels.Update(ctx, ch); err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}

	s.gateway.DispatchToServer(ch.ServerID, gateway.EventChannelUpdate, ch)
	s.notifier.Notify(ctx, notifier.Event{
		Type:      notifier.TypeChannel,
		Change:    notifier.ChangeUpdated,
		ServerID:  ch.ServerID,
		ChannelID: ch.ID,
	})
	return ch, nil
}

// DeleteChannel deletes a channel.
func (s *ChannelService) DeleteChannel(ctx context.Context, channelID, userID int64) error {
	ch, err := s.channels.GetByID(ctx, channelID)
	if err != nil {
		return Internal("INTERNAL", "internal server error")
	}
	if ch == nil {
		return NotFound("NOT_FOUND", "channel not found")
	}

	if err := s.perms.RequireChannelPermission(ctx, channelID, userID, permissions.PermManageChannel, permissions.CheckAll); err != nil {
		return err
	}

	if err := s.channels.Delete(ctx, channelID); err != nil {
		return Internal("INTERNAL", "internal server error")
	}

	s.gateway.DispatchToServer(ch.ServerID, gateway.EventChannelDelete, map[string]any{"id": channelID, "server_id": ch.ServerID})
	s.notifier.Notify(ctx, notifier.Event{
		Type:      notifier.TypeChannel,
		Change:    notifier.ChangeDeleted,
		ServerID:  ch.ServerID,
		ChannelID: channelID,
	})
	return nil
}
