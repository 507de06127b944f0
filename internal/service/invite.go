package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/zachbakerdev/open-natter-server/internal/database"
	"github.com/zachbakerdev/open-natter-server/internal/gateway"
	"github.com/zachbakerdev/open-natter-server/internal/models"
	"github.com/zachbakerdev/open-natter-server/internal/permissions"
)

// InviteInfo is the public-facing invite information (no auth required).
type InviteInfo struct {
	Code        string `json:"code"`
	ServerName  string `json:"server_name"`
	MemberCount int    `json:"member_count"`
	InviterID   int64  `json:"inviter_id,string"`
}

// InviteService handles invite business logic.
type InviteService struct {
	invites database.InviteRepository
	servers database.ServerRepository
	members database.MemberRepository
	bans    database.BanRepository
	gateway gateway.Dispatcher
	perms   *PermissionChecker
}

// NewInviteService creates an InviteService.
func NewInviteService(
	invites database.InviteRepository,
	servers database.ServerRepository,
	members database.MemberRepository,
	bans database.BanRepository,
	gw gateway.Dispatcher,
	perms *PermissionChecker,
) *InviteService {
	return &InviteService{
		invites: invites,
		servers: servers,
		members: members,
		bans:    bans,
		gateway: gw,
		perms:   perms,
	}
}

// CreateInvite creates an invite for a server. maxUses of 0 means unlimited.
func (s *InviteService) CreateInvite(ctx context.Context, serverID, userID int64, maxUses int) (*models.Invite, error) {
	if err := s.perms.RequireServerPermission(ctx, serverID, userID, permissions.PermCreateInvite); err != nil {
		return nil, err
	}
	if maxUses < 0 {
		return nil, BadRequest("INVALID_MAX_USES", "max_uses must not be negative")
	}

	code, err := generateInviteCode()
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}

	invite := &models.Invite{
		Code:      code,
		ServerID:  serverID,
		InviterID: userID,
		MaxUses:   maxUses,
		Uses:      0,
		CreatedAt: time.Now(),
	}

	if err := s.invites.Create(ctx, invite); err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}

	return invite, nil
}

// ListInvites returns all invites for a server.
func (s *InviteService) ListInvites(ctx context.Context, serverID, userID int64) ([]models.Invite, error) {
	if err := s.perms.RequireServerPermission(ctx, serverID, userID, permissions.PermManageServer); err != nil {
		return nil, err
	}

	invites, err := s.invites.GetByServerID(ctx, serverID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if invites == nil {
		invites = []models.Invite{}
	}
	return invites, nil
}

// GetInvite returns public invite information (no auth).
func (s *InviteService) GetInvite(ctx context.Context, code string) (*InviteInfo, error) {
	invite, err := s.invites.GetByCode(ctx, code)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if invite == nil {
		return nil, NotFound("NOT_FOUND", "invite not found")
	}

	server, err := s.servers.GetByID(ctx, invite.ServerID)
	if err != nil || server == nil {
		return nil, Internal("INTERNAL", "internal server error")
	}

	members, err := s.members.GetByServerID(ctx, invite.ServerID, 10000, 0)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}

	return &InviteInfo{
		Code:        invite.Code,
		ServerName:  server.Name,
		MemberCount: len(members),
		InviterID:   invite.InviterID,
	}, nil
}

// AcceptInvite joins the user to the server via invite.
func (s *InviteService) AcceptInvite(ctx context.Context, code string, userID int64) (*models.Server, error) {
	invite, err := s.invites.GetByCode(ctx, code)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if invite == nil {
		return nil, NotFound("NOT_FOUND", "invite not found")
	}

	if invite.MaxUses > 0 && invite.Uses >= invite.MaxUses {
		return nil, Gone("MAX_USES", "invite has reached maximum uses")
	}

	existing, err := s.members.GetByServerAndUser(ctx, invite.ServerID, userID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if existing != nil {
		return nil, Conflict("ALREADY_MEMBER", "you are already a member of this server")
	}

	ban, err := s.bans.GetByServerAndUser(ctx, invite.ServerID, userID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if ban != nil {
		return nil, Forbidden("BANNED", "you are banned from this server")
	}

	member := &models.Member{
		ServerID: invite.ServerID,
		UserID:   userID,
		JoinedAt: time.Now(),
	}

	if err := s.members.Create(ctx, member); err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}

	if err := s.invites.IncrementUses(ctx, code); err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}

	server, err := s.servers.GetByID(ctx, invite.ServerID)
	if err != nil || server == nil {
		return nil, Internal("INTERNAL", "internal server error")
	}

	s.gateway.SubscribeToServer(userID, invite.ServerID)
	s.gateway.DispatchToServer(invite.ServerID, gateway.EventMemberAdd, member)

	return server, nil
}

// RevokeInvite deletes an invite. The inviter can always revoke; otherwise
// MANAGE_SERVER is required.
func (s *InviteService) RevokeInvite(ctx context.Context, code string, userID int64) error {
	invite, err := s.invites.GetByCode(ctx, code)
	if err != nil {
		return Internal("INTERNAL", "internal server error")
	}
	if invite == nil {
		return NotFound("NOT_FOUND", "invite not found")
	}

	if invite.InviterID != userID {
		if err := s.perms.RequireServerPermission(ctx, invite.ServerID, userID, permissions.PermManageServer); err != nil {
			return err
		}
	}

	if err := s.invites.Delete(ctx, code); err != nil {
		return Internal("INTERNAL", "internal server error")
	}

	return nil
}

func generateInviteCode() (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
