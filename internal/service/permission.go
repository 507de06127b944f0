package service

import (
	"context"
	"log/slog"

	"github.com/zachbakerdev/open-natter-server/internal/database"
	"github.com/zachbakerdev/open-natter-server/internal/models"
	"github.com/zachbakerdev/open-natter-server/internal/permissions"
)

// PermissionChecker answers server-level and channel-level permission
// questions. It is the single authorization gate; handlers and the gateway
// never combine masks themselves.
//
// Any entity missing at resolution time denies the request. A miss is logged
// at debug so a misconfigured channel is diagnosable without leaking the
// reason to the caller.
type PermissionChecker struct {
	servers       database.ServerRepository
	channels      database.ChannelRepository
	members       database.MemberRepository
	roles         database.RoleRepository
	roleOverrides database.ChannelRoleOverrideRepository
	userOverrides database.UserChannelOverrideRepository
	logger        *slog.Logger
}

// NewPermissionChecker creates a PermissionChecker.
func NewPermissionChecker(
	servers database.ServerRepository,
	channels database.ChannelRepository,
	members database.MemberRepository,
	roles database.RoleRepository,
	roleOverrides database.ChannelRoleOverrideRepository,
	userOverrides database.UserChannelOverrideRepository,
	logger *slog.Logger,
) *PermissionChecker {
	return &PermissionChecker{
		servers:       servers,
		channels:      channels,
		members:       members,
		roles:         roles,
		roleOverrides: roleOverrides,
		userOverrides: userOverrides,
		logger:        logger,
	}
}

// ResolveChannelPermissions computes the effective mask for a user in a
// channel. Server owners get every bit without consulting roles or
// overrides. For everyone else the mask is built from the channel default,
// the member's role defaults, the role channel overrides, and finally the
// member's own channel override.
func (p *PermissionChecker) ResolveChannelPermissions(ctx context.Context, channelID, userID int64) (permissions.Permission, error) {
	channel, err := p.channels.GetByID(ctx, channelID)
	if err != nil {
		return 0, Internal("INTERNAL", "internal server error")
	}
	if channel == nil {
		p.logger.Debug("permission resolution miss",
			"entity", "channel", "channel_id", channelID, "user_id", userID)
		return 0, Forbidden("FORBIDDEN", "you do not have access to this channel")
	}

	server, err := p.servers.GetByID(ctx, channel.ServerID)
	if err != nil {
		return 0, Internal("INTERNAL", "internal server error")
	}
	if server == nil {
		p.logger.Debug("permission resolution miss",
			"entity", "server", "server_id", channel.ServerID, "channel_id", channelID, "user_id", userID)
		return 0, Forbidden("FORBIDDEN", "you do not have access to this channel")
	}
	if server.OwnerID == userID {
		return permissions.PermAllBits, nil
	}

	member, err := p.members.GetByServerAndUser(ctx, server.ID, userID)
	if err != nil {
		return 0, Internal("INTERNAL", "internal server error")
	}
	if member == nil {
		p.logger.Debug("permission resolution miss",
			"entity", "member", "server_id", server.ID, "user_id", userID)
		return 0, Forbidden("FORBIDDEN", "you are not a member of this server")
	}

	memberRoles, err := p.roles.GetByMember(ctx, server.ID, userID)
	if err != nil {
		return 0, Internal("INTERNAL", "internal server error")
	}

	channelOverrides, err := p.roleOverrides.GetByChannel(ctx, channelID)
	if err != nil {
		return 0, Internal("INTERNAL", "internal server error")
	}

	held := make(map[int64]bool, len(memberRoles))
	for _, r := range memberRoles {
		held[r.ID] = true
	}
	var roleOverrides []models.ChannelRoleOverride
	for _, o := range channelOverrides {
		if held[o.RoleID] {
			roleOverrides = append(roleOverrides, o)
		}
	}

	userOverride, err := p.userOverrides.GetByUserAndChannel(ctx, userID, channelID)
	if err != nil {
		return 0, Internal("INTERNAL", "internal server error")
	}

	return permissions.Resolve(
		permissions.Permission(channel.DefaultPermissions),
		memberRoles,
		roleOverrides,
		userOverride,
	), nil
}

// RequireChannelPermission resolves the user's mask in the channel and checks
// the required bits under the given mode. Resolution failures of any kind
// deny the request.
func (p *PermissionChecker) RequireChannelPermission(ctx context.Context, channelID, userID int64, required permissions.Permission, mode permissions.CheckMode) error {
	computed, err := p.ResolveChannelPermissions(ctx, channelID, userID)
	if err != nil {
		return err
	}
	if !computed.Check(required, mode) {
		return Forbidden("MISSING_PERMISSIONS", "you do not have the required permissions")
	}
	return nil
}

// RequireServerPermission checks that the user has the given permission at
// server scope, where no channel is in play. The mask is the OR of the
// member's role defaults; the owner and ADMIN carriers pass everything.
func (p *PermissionChecker) RequireServerPermission(ctx context.Context, serverID, userID int64, required permissions.Permission) error {
	server, err := p.servers.GetByID(ctx, serverID)
	if err != nil {
		return Internal("INTERNAL", "internal server error")
	}
	if server == nil {
		p.logger.Debug("permission resolution miss",
			"entity", "server", "server_id", serverID, "user_id", userID)
		return Forbidden("FORBIDDEN", "you do not have access to this server")
	}
	if server.OwnerID == userID {
		return nil
	}

	member, err := p.members.GetByServerAndUser(ctx, serverID, userID)
	if err != nil {
		return Internal("INTERNAL", "internal server error")
	}
	if member == nil {
		return Forbidden("FORBIDDEN", "you are not a member of this server")
	}

	memberRoles, err := p.roles.GetByMember(ctx, serverID, userID)
	if err != nil {
		return Internal("INTERNAL", "internal server error")
	}

	var mask permissions.Permission
	for _, r := range memberRoles {
		mask = mask.Add(permissions.Permission(r.DefaultPermissions))
	}
	if !mask.Check(required, permissions.CheckAll) {
		return Forbidden("MISSING_PERMISSIONS", "you do not have permission to perform this action")
	}
	return nil
}

// IsServerOwner returns true if the user owns the server.
func (p *PermissionChecker) IsServerOwner(ctx context.Context, serverID, userID int64) (bool, error) {
	server, err := p.servers.GetByID(ctx, serverID)
	if err != nil {
		return false, Internal("INTERNAL", "internal server error")
	}
	if server == nil {
		return false, nil
	}
	return server.OwnerID == userID, nil
}
