package service

import (
	"context"
	"time"

	"github.com/zachbakerdev/open-natter-server/internal/database"
	"github.com/zachbakerdev/open-natter-server/internal/gateway"
	"github.com/zachbakerdev/open-natter-server/internal/models"
	"github.com/zachbakerdev/open-natter-server/internal/permissions"
)

// BanService handles ban/unban business logic.
type BanService struct {
	servers database.ServerRepository
	members database.MemberRepository
	bans    database.BanRepository
	gateway gateway.Dispatcher
	perms   *PermissionChecker
}

// NewBanService creates a BanService.
func NewBanService(
	servers database.ServerRepository,
	members database.MemberRepository,
	bans database.BanRepository,
	gw gateway.Dispatcher,
	perms *PermissionChecker,
) *BanService {
	return &BanService{
		servers: servers,
		members: members,
		bans:    bans,
		gateway: gw,
		perms:   perms,
	}
}

// BanMember bans a user from a server and removes their membership.
func (s *BanService) BanMember(ctx context.Context, serverID, callerID, targetUserID int64, reason *string) error {
	if callerID == targetUserID {
		return BadRequest("CANNOT_BAN_SELF", "you cannot ban yourself")
	}

	if err := s.perms.RequireServerPermission(ctx, serverID, callerID, permissions.PermBanMember); err != nil {
		return err
	}

	server, err := s.servers.GetByID(ctx, serverID)
	if err != nil {
		return Internal("INTERNAL", "internal server error")
	}
	if server == nil {
		return NotFound("NOT_FOUND", "server not found")
	}
	if server.OwnerID == targetUserID {
		return Forbidden("FORBIDDEN", "cannot ban the server owner")
	}

	ban := &models.Ban{
		ServerID:  serverID,
		UserID:    targetUserID,
		Reason:    reason,
		CreatedAt: time.Now(),
	}

	if err := s.bans.Create(ctx, ban); err != nil {
		return Internal("INTERNAL", "internal server error")
	}

	_ = s.members.Delete(ctx, serverID, targetUserID)

	s.gateway.UnsubscribeFromServer(targetUserID, serverID)
	s.gateway.DispatchToServer(serverID, gateway.EventBanAdd, ban)
	s.gateway.DispatchToServer(serverID, gateway.EventMemberRemove, map[string]any{"server_id": serverID, "user_id": targetUserID})
	s.gateway.DispatchToUser(targetUserID, gateway.EventServerDelete, map[string]any{"id": serverID})

	return nil
}

// UnbanMember removes a ban from a server.
func (s *BanService) UnbanMember(ctx context.Context, serverID, callerID, targetUserID int64) error {
	if err := s.perms.RequireServerPermission(ctx, serverID, callerID, permissions.PermBanMember); err != nil {
		return err
	}

	if err := s.bans.Delete(ctx, serverID, targetUserID); err != nil {
		return Internal("INTERNAL", "internal server error")
	}

	s.gateway.DispatchToServer(serverID, gateway.EventBanRemove, map[string]any{"server_id": serverID, "user_id": targetUserID})

	return nil
}

// ListBans returns all bans for a server.
func (s *BanService) ListBans(ctx context.Context, serverID, callerID int64) ([]models.Ban, error) {
	if err := s.perms.RequireServerPermission(ctx, serverID, callerID, permissions.PermBanMember); err != nil {
		return nil, err
	}

	bans, err := s.bans.GetByServerID(ctx, serverID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if bans == nil {
		bans = []models.Ban{}
	}
	return bans, nil
}
