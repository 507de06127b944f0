package service

import (
	"context"

	"github.com/zachbakerdev/open-natter-server/internal/database"
	"github.com/zachbakerdev/open-natter-server/internal/gateway"
	"github.com/zachbakerdev/open-natter-server/internal/models"
	"github.com/zachbakerdev/open-natter-server/internal/permissions"
)

// MemberService handles member management business logic.
type MemberService struct {
	members database.MemberRepository
	servers database.ServerRepository
	gateway gateway.Dispatcher
	perms   *PermissionChecker
}

// NewMemberService creates a MemberService.
func NewMemberService(
	members database.MemberRepository,
	servers database.ServerRepository,
	gw gateway.Dispatcher,
	perms *PermissionChecker,
) *MemberService {
	return &MemberService{
		members: members,
		servers: servers,
		gateway: gw,
		perms:   perms,
	}
}

// ListMembers returns members of a server. Caller must be a member.
func (s *MemberService) ListMembers(ctx context.Context, serverID, userID int64, limit, offset int) ([]models.Member, error) {
	member, err := s.members.GetByServerAndUser(ctx, serverID, userID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if member == nil {
		return nil, NotFound("NOT_FOUND", "server not found")
	}

	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	members, err := s.members.GetByServerID(ctx, serverID, limit, offset)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if members == nil {
		members = []models.Member{}
	}
	return members, nil
}

// GetMember returns a specific member. Caller must be a member.
func (s *MemberService) GetMember(ctx context.Context, serverID, callerID, targetUserID int64) (*models.Member, error) {
	callerMember, err := s.members.GetByServerAndUser(ctx, serverID, callerID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if callerMember == nil {
		return nil, NotFound("NOT_FOUND", "server not found")
	}

	member, err := s.members.GetByServerAndUser(ctx, serverID, targetUserID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if member == nil {
		return nil, NotFound("NOT_FOUND", "member not found")
	}

	return member, nil
}

// UpdateNickname changes a member's nickname. Changing your own requires
// CHANGE_NICKNAME; changing someone else's requires MANAGE_NICKNAMES.
func (s *MemberService) UpdateNickname(ctx context.Context, serverID, callerID, targetUserID int64, nickname *string) (*models.Member, error) {
	required := permissions.PermChangeNickname
	if callerID != targetUserID {
		required = permissions.PermManageNicknames
	}
	if err := s.perms.RequireServerPermission(ctx, serverID, callerID, required); err != nil {
		return nil, err
	}

	member, err := s.members.GetByServerAndUser(ctx, serverID, targetUserID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if member == nil {
		return nil, NotFound("NOT_FOUND", "member not found")
	}

	if nickname != nil {
		if len(*nickname) > 32 {
			return nil, BadRequest("INVALID_NICKNAME", "nickname must be 32 characters or fewer")
		}
		if *nickname == "" {
			member.Nickname = nil
		} else {
			member.Nickname = nickname
		}
	}

	if err := s.members.Update(ctx, member); err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}

	s.gateway.DispatchToServer(serverID, gateway.EventMemberUpdate, member)
	return member, nil
}

// KickMember removes a member from the server.
func (s *MemberService) KickMember(ctx context.Context, serverID, callerID, targetUserID int64) error {
	if callerID == targetUserID {
		return BadRequest("CANNOT_KICK_SELF", "use leave instead of kicking yourself")
	}
	if err := s.perms.RequireServerPermission(ctx, serverID, callerID, permissions.PermKickMember); err != nil {
		return err
	}

	server, err := s.servers.GetByID(ctx, serverID)
	if err != nil {
		return Internal("INTERNAL", "internal server error")
	}
	if server != nil && server.OwnerID == targetUserID {
		return Forbidden("FORBIDDEN", "cannot kick the server owner")
	}

	member, err := s.members.GetByServerAndUser(ctx, serverID, targetUserID)
	if err != nil {
		return Internal("INTERNAL", "internal server error")
	}
	if member == nil {
		return NotFound("NOT_FOUND", "member not found")
	}

	if err := s.members.Delete(ctx, serverID, targetUserID); err != nil {
		return Internal("INTERNAL", "internal server error")
	}

	s.gateway.UnsubscribeFromServer(targetUserID, serverID)
	s.gateway.DispatchToServer(serverID, gateway.EventMemberRemove, map[string]any{"server_id": serverID, "user_id": targetUserID})
	s.gateway.DispatchToUser(targetUserID, gateway.EventServerDelete, map[string]any{"id": serverID})
	return nil
}

// LeaveServer allows a member to leave a server. The owner cannot leave.
func (s *MemberService) LeaveServer(ctx context.Context, serverID, userID int64) error {
	server, err := s.servers.GetByID(ctx, serverID)
	if err != nil {
		return Internal("INTERNAL", "internal server error")
	}
	if server != nil && server.OwnerID == userID {
		return Forbidden("FORBIDDEN", "server owner cannot leave; delete the server instead")
	}

	member, err := s.members.GetByServerAndUser(ctx, serverID, userID)
	if err != nil {
		return Internal("INTERNAL", "internal server error")
	}
	if member == nil {
		return NotFound("NOT_FOUND", "you are not a member of this server")
	}

	if err := s.members.Delete(ctx, serverID, userID); err != nil {
		return Internal("INTERNAL", "internal server error")
	}

	s.gateway.UnsubscribeFromServer(userID, serverID)
	s.gateway.DispatchToServer(serverID, gateway.EventMemberRemove, map[string]any{"server_id": serverID, "user_id": userID})
	return nil
}
