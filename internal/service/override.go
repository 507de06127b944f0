package service

import (
	"context"
	"errors"

	"github.com/zachbakerdev/open-natter-server/internal/database"
	"github.com/zachbakerdev/open-natter-server/internal/gateway"
	"github.com/zachbakerdev/open-natter-server/internal/models"
	"github.com/zachbakerdev/open-natter-server/internal/notifier"
	"github.com/zachbakerdev/open-natter-server/internal/permissions"
)

// OverrideService handles channel permission overrides, for roles and for
// individual members. Overrides are validated before they touch storage: an
// override carrying undefined bits or granting and denying the same bit is
// rejected, never normalized.
type OverrideService struct {
	channels      database.ChannelRepository
	roles         database.RoleRepository
	members       database.MemberRepository
	roleOverrides database.ChannelRoleOverrideRepository
	userOverrides database.UserChannelOverrideRepository
	gateway       gateway.Dispatcher
	notifier      notifier.Notifier
	perms         *PermissionChecker
}

// NewOverrideService creates an OverrideService.
func NewOverrideService(
	channels database.ChannelRepository,
	roles database.RoleRepository,
	members database.MemberRepository,
	roleOverrides database.ChannelRoleOverrideRepository,
	userOverrides database.UserChannelOverrideRepository,
	gw gateway.Dispatcher,
	nf notifier.Notifier,
	perms *PermissionChecker,
) *OverrideService {
	return &OverrideService{
		channels:      channels,
		roles:         roles,
		members:       members,
		roleOverrides: roleOverrides,
		userOverrides: userOverrides,
		gateway:       gw,
		notifier:      nf,
		perms:         perms,
	}
}

// validateOverride maps the permissions package invariants to service errors.
func validateOverride(allow, deny int64) error {
	o := permissions.Override{Allow: permissions.Permission(allow), Deny: permissions.Permission(deny)}
	switch err := o.Validate(); {
	case errors.Is(err, permissions.ErrUnknownPermission):
		return BadRequest("UNKNOWN_PERMISSION", "override contains undefined permission bits")
	case errors.Is(err, permissions.ErrConflictingOverride):
		return Configuration("CONFLICTING_OVERRIDE", "override allows and denies the same permission")
	case err != nil:
		return Internal("INTERNAL", "internal server error")
	}
	return nil
}

// SetRoleOverride creates or replaces a role's override on a channel.
func (s *OverrideService) SetRoleOverride(ctx context.Context, channelID, roleID, actorID, allow, deny int64) (*models.ChannelRoleOverride, error) {
	if err := s.perms.RequireChannelPermission(ctx, channelID, actorID, permissions.PermManageChannel, permissions.CheckAll); err != nil {
		return nil, err
	}
	if err := validateOverride(allow, deny); err != nil {
		return nil, err
	}

	ch, err := s.channels.GetByID(ctx, channelID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if ch == nil {
		return nil, NotFound("NOT_FOUND", "channel not found")
	}

	role, err := s.roles.GetByID(ctx, roleID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if role == nil || role.ServerID != ch.ServerID {
		return nil, NotFound("NOT_FOUND", "role not found")
	}

	override := &models.ChannelRoleOverride{
		ChannelID: channelID,
		RoleID:    roleID,
		Allow:     allow,
		Deny:      deny,
	}
	if err := s.roleOverrides.Set(ctx, override); err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}

	s.gateway.DispatchToServer(ch.ServerID, gateway.EventOverrideUpdate, override)
	s.notifier.Notify(ctx, notifier.Event{
		Type:      notifier.TypeRoleOverride,
		Change:    notifier.ChangeUpdated,
		ServerID:  ch.ServerID,
		ChannelID: channelID,
		RoleID:    roleID,
	})
	return override, nil
}

// DeleteRoleOverride removes a role's override from a channel. The affected
// role falls back to its server-wide defaults on this channel.
func (s *OverrideService) DeleteRoleOverride(ctx context.Context, channelID, roleID, actorID int64) error {
	if err := s.perms.RequireChannelPermission(ctx, channelID, actorID, permissions.PermManageChannel, permissions.CheckAll); err != nil {
		return err
	}

	ch, err := s.channels.GetByID(ctx, channelID)
	if err != nil {
		return Internal("INTERNAL", "internal server error")
	}
	if ch == nil {
		return NotFound("NOT_FOUND", "channel not found")
	}

	if err := s.roleOverrides.Delete(ctx, channelID, roleID); err != nil {
		return Internal("INTERNAL", "internal server error")
	}

	s.gateway.DispatchToServer(ch.ServerID, gateway.EventOverrideUpdate, map[string]any{
		"channel_id": channelID, "role_id": roleID, "deleted": true,
	})
	s.notifier.Notify(ctx, notifier.Event{
		Type:      notifier.TypeRoleOverride,
		Change:    notifier.ChangeDeleted,
		ServerID:  ch.ServerID,
		ChannelID: channelID,
		RoleID:    roleID,
	})
	return nil
}

// ListRoleOverrides returns every role override on a channel.
func (s *OverrideService) ListRoleOverrides(ctx context.Context, channelID, actorID int64) ([]models.ChannelRoleOverride, error) {
	if err := s.perms.RequireChannelPermission(ctx, channelID, actorID, permissions.PermManageChannel, permissions.CheckAll); err != nil {
		return nil, err
	}

	overrides, err := s.roleOverrides.GetByChannel(ctx, channelID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if overrides == nil {
		overrides = []models.ChannelRoleOverride{}
	}
	return overrides, nil
}

// SetUserOverride creates or replaces a member's personal override on a
// channel. It outranks every role layer at resolution time.
func (s *OverrideService) SetUserOverride(ctx context.Context, channelID, userID, actorID, allow, deny int64) (*models.UserChannelOverride, error) {
	if err := s.perms.RequireChannelPermission(ctx, channelID, actorID, permissions.PermManageChannel, permissions.CheckAll); err != nil {
		return nil, err
	}
	if err := validateOverride(allow, deny); err != nil {
		return nil, err
	}

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
		return nil, NotFound("NOT_FOUND", "member not found")
	}

	override := &models.UserChannelOverride{
		ChannelID: channelID,
		UserID:    userID,
		Allow:     allow,
		Deny:      deny,
	}
	if err := s.userOverrides.Set(ctx, override); err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}

	s.gateway.DispatchToServer(ch.ServerID, gateway.EventOverrideUpdate, override)
	s.notifier.Notify(ctx, notifier.Event{
		Type:      notifier.TypeUserOverride,
		Change:    notifier.ChangeUpdated,
		ServerID:  ch.ServerID,
		ChannelID: channelID,
		UserID:    userID,
	})
	return override, nil
}

// DeleteUserOverride removes a member's personal override from a channel.
func (s *OverrideService) DeleteUserOverride(ctx context.Context, channelID, userID, actorID int64) error {
	if err := s.perms.RequireChannelPermission(ctx, channelID, actorID, permissions.PermManageChannel, permissions.CheckAll); err != nil {
		return err
	}

	ch, err := s.channels.GetByID(ctx, channelID)
	if err != nil {
		return Internal("INTERNAL", "internal server error")
	}
	if ch == nil {
		return NotFound("NOT_FOUND", "channel not found")
	}

	if err := s.userOverrides.Delete(ctx, channelID, userID); err != nil {
		return Internal("INTERNAL", "internal server error")
	}

	s.gateway.DispatchToServer(ch.ServerID, gateway.EventOverrideUpdate, map[string]any{
		"channel_id": channelID, "user_id": userID, "deleted": true,
	})
	s.notifier.Notify(ctx, notifier.Event{
		Type:      notifier.TypeUserOverride,
		Change:    notifier.ChangeDeleted,
		ServerID:  ch.ServerID,
		ChannelID: channelID,
		UserID:    userID,
	})
	return nil
}

// ListUserOverrides returns every member override on a channel.
func (s *OverrideService) ListUserOverrides(ctx context.Context, channelID, actorID int64) ([]models.UserChannelOverride, error) {
	if err := s.perms.RequireChannelPermission(ctx, channelID, actorID, permissions.PermManageChannel, permissions.CheckAll); err != nil {
		return nil, err
	}

	overrides, err := s.userOverrides.GetByChannel(ctx, channelID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if overrides == nil {
		overrides = []models.UserChannelOverride{}
	}
	return overrides, nil
}
