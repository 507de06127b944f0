package service

import (
	"context"

	"github.com/zachbakerdev/open-natter-server/internal/database"
	"github.com/zachbakerdev/open-natter-server/internal/gateway"
	"github.com/zachbakerdev/open-natter-server/internal/models"
	"github.com/zachbakerdev/open-natter-server/internal/notifier"
	"github.com/zachbakerdev/open-natter-server/internal/permissions"
	"github.com/zachbakerdev/open-natter-server/internal/snowflake"
)

// RoleService handles role business logic. Masks are validated at every
// write so resolution never sees an undefined bit.
type RoleService struct {
	roles     database.RoleRepository
	members   database.MemberRepository
	snowflake *snowflake.Generator
	gateway   gateway.Dispatcher
	notifier  notifier.Notifier
	perms     *PermissionChecker
}

// NewRoleService creates a RoleService.
func NewRoleService(
	roles database.RoleRepository,
	members database.MemberRepository,
	sf *snowflake.Generator,
	gw gateway.Dispatcher,
	nf notifier.Notifier,
	perms *PermissionChecker,
) *RoleService {
	return &RoleService{
		roles:     roles,
		members:   members,
		snowflake: sf,
		gateway:   gw,
		notifier:  nf,
		perms:     perms,
	}
}

// CreateRole creates a new role in a server.
func (s *RoleService) CreateRole(ctx context.Context, serverID, actorID int64, name string, defaultPerms int64) (*models.Role, error) {
	if err := s.perms.RequireServerPermission(ctx, serverID, actorID, permissions.PermManageServer); err != nil {
		return nil, err
	}

	if name == "" || len(name) > 100 {
		return nil, BadRequest("INVALID_NAME", "name must be 1-100 characters")
	}
	if !permissions.Valid(permissions.Permission(defaultPerms)) {
		return nil, BadRequest("UNKNOWN_PERMISSION", "default permissions contain undefined bits")
	}

	role := &models.Role{
		ID:                 s.snowflake.Generate().Int64(),
		ServerID:           serverID,
		Name:               name,
		DefaultPermissions: defaultPerms,
	}

	if err := s.roles.Create(ctx, role); err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}

	s.gateway.DispatchToServer(serverID, gateway.EventRoleCreate, role)
	s.notifier.Notify(ctx, notifier.Event{
		Type:     notifier.TypeRole,
		Change:   notifier.ChangeCreated,
		ServerID: serverID,
		RoleID:   role.ID,
	})
	return role, nil
}

// ListRoles returns all roles for a server if the user is a member.
func (s *RoleService) ListRoles(ctx context.Context, serverID, userID int64) ([]models.Role, error) {
	member, err := s.members.GetByServerAndUser(ctx, serverID, userID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if member == nil {
		return nil, NotFound("NOT_FOUND", "server not found")
	}

	roles, err := s.roles.GetByServerID(ctx, serverID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if roles == nil {
		roles = []models.Role{}
	}
	return roles, nil
}

// UpdateRole updates a role's name and/or default permissions.
func (s *RoleService) UpdateRole(ctx context.Context, serverID, actorID, roleID int64, name *string, defaultPerms *int64) (*models.Role, error) {
	if err := s.perms.RequireServerPermission(ctx, serverID, actorID, permissions.PermManageServer); err != nil {
		return nil, err
	}

	role, err := s.roles.GetByID(ctx, roleID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if role == nil || role.ServerID != serverID {
		return nil, NotFound("NOT_FOUND", "role not found")
	}

	if name != nil {
		if *name == "" || len(*name) > 100 {
			return nil, BadRequest("INVALID_NAME", "name must be 1-100 characters")
		}
		role.Name = *name
	}
	if defaultPerms != nil {
		if !permissions.Valid(permissions.Permission(*defaultPerms)) {
			return nil, BadRequest("UNKNOWN_PERMISSION", "default permissions contain undefined bits")
		}
		role.DefaultPermissions = *defaultPerms
	}

	if err := s.roles.Update(ctx, role); err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}

	s.gateway.DispatchToServer(serverID, gateway.EventRoleUpdate, role)
	s.notifier.Notify(ctx, notifier.Event{
		Type:     notifier.TypeRole,
		Change:   notifier.ChangeUpdated,
		ServerID: serverID,
		RoleID:   role.ID,
	})
	return role, nil
}

// DeleteRole deletes a role. Assignments and channel overrides referencing
// the role go with it.
func (s *RoleService) DeleteRole(ctx context.Context, serverID, actorID, roleID int64) error {
	if err := s.perms.RequireServerPermission(ctx, serverID, actorID, permissions.PermManageServer); err != nil {
		return err
	}

	role, err := s.roles.GetByID(ctx, roleID)
	if err != nil {
		return Internal("INTERNAL", "internal server error")
	}
	if role == nil || role.ServerID != serverID {
		return NotFound("NOT_FOUND", "role not found")
	}

	if err := s.roles.Delete(ctx, roleID); err != nil {
		return Internal("INTERNAL", "internal server error")
	}

	s.gateway.DispatchToServer(serverID, gateway.EventRoleDelete, map[string]any{"server_id": serverID, "role_id": roleID})
	s.notifier.Notify(ctx, notifier.Event{
		Type:     notifier.TypeRole,
		Change:   notifier.ChangeDeleted,
		ServerID: serverID,
		RoleID:   roleID,
	})
	return nil
}

// AssignRole assigns a role to a member.
func (s *RoleService) AssignRole(ctx context.Context, serverID, actorID, userID, roleID int64) error {
	if err := s.perms.RequireServerPermission(ctx, serverID, actorID, permissions.PermManageServer); err != nil {
		return err
	}

	member, err := s.members.GetByServerAndUser(ctx, serverID, userID)
	if err != nil {
		return Internal("INTERNAL", "internal server error")
	}
	if member == nil {
		return NotFound("NOT_FOUND", "member not found")
	}

	role, err := s.roles.GetByID(ctx, roleID)
	if err != nil {
		return Internal("INTERNAL", "internal server error")
	}
	if role == nil || role.ServerID != serverID {
		return NotFound("NOT_FOUND", "role not found")
	}

	if err := s.roles.Assign(ctx, serverID, userID, roleID); err != nil {
		return Internal("INTERNAL", "internal server error")
	}

	s.gateway.DispatchToServer(serverID, gateway.EventMemberUpdate, map[string]any{"server_id": serverID, "user_id": userID})
	s.notifier.Notify(ctx, notifier.Event{
		Type:     notifier.TypeRoleAssignment,
		Change:   notifier.ChangeCreated,
		ServerID: serverID,
		RoleID:   roleID,
		UserID:   userID,
	})
	return nil
}

// UnassignRole removes a role from a member.
func (s *RoleService) UnassignRole(ctx context.Context, serverID, actorID, userID, roleID int64) error {
	if err := s.perms.RequireServerPermission(ctx, serverID, actorID, permissions.PermManageServer); err != nil {
		return err
	}

	if err := s.roles.Unassign(ctx, serverID, userID, roleID); err != nil {
		return Internal("INTERNAL", "internal server error")
	}

	s.gateway.DispatchToServer(serverID, gateway.EventMemberUpdate, map[string]any{"server_id": serverID, "user_id": userID})
	s.notifier.Notify(ctx, notifier.Event{
		Type:     notifier.TypeRoleAssignment,
		Change:   notifier.ChangeDeleted,
		ServerID: serverID,
		RoleID:   roleID,
		UserID:   userID,
	})
	return nil
}
