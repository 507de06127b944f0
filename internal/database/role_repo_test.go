package database

import (
	"context"
	"testing"
	"time"

	"github.com/zachbakerdev/open-natter-server/internal/models"
)

func TestRoleRepo_CreateAndGet(t *testing.T) {
	pool := testPool(t)
	userRepo := NewUserRepository(pool)
	serverRepo := NewServerRepository(pool)
	roleRepo := NewRoleRepository(pool)
	ctx := context.Background()

	owner := createTestUser(t, userRepo)
	server := createTestServer(t, serverRepo, owner.ID)
	role := createTestRole(t, roleRepo, server.ID, 0x24)

	got, err := roleRepo.GetByID(ctx, role.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got == nil {
		t.Fatal("GetByID returned nil for existing role")
	}
	if got.DefaultPermissions != 0x24 {
		t.Errorf("DefaultPermissions = %d, want %d", got.DefaultPermissions, 0x24)
	}
}

func TestRoleRepo_Update(t *testing.T) {
	pool := testPool(t)
	userRepo := NewUserRepository(pool)
	serverRepo := NewServerRepository(pool)
	roleRepo := NewRoleRepository(pool)
	ctx := context.Background()

	owner := createTestUser(t, userRepo)
	server := createTestServer(t, serverRepo, owner.ID)
	role := createTestRole(t, roleRepo, server.ID, 0x24)

	role.Name = "Moderators"
	role.DefaultPermissions = 0x1024
	if err := roleRepo.Update(ctx, role); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := roleRepo.GetByID(ctx, role.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Name != "Moderators" {
		t.Errorf("Name = %q, want %q", got.Name, "Moderators")
	}
	if got.DefaultPermissions != 0x1024 {
		t.Errorf("DefaultPermissions = %d, want %d", got.DefaultPermissions, 0x1024)
	}
}

func TestRoleRepo_AssignUnassign(t *testing.T) {
	pool := testPool(t)
	userRepo := NewUserRepository(pool)
	serverRepo := NewServerRepository(pool)
	memberRepo := NewMemberRepository(pool)
	roleRepo := NewRoleRepository(pool)
	ctx := context.Background()

	owner := createTestUser(t, userRepo)
	server := createTestServer(t, serverRepo, owner.ID)
	user := createTestUser(t, userRepo)
	createTestMember(t, memberRepo, server.ID, user.ID)
	role := createTestRole(t, roleRepo, server.ID, 0x20)

	if err := roleRepo.Assign(ctx, server.ID, user.ID, role.ID); err != nil {
		t.Fatalf("Assign: %v", err)
	}
	// Assigning twice must not fail.
	if err := roleRepo.Assign(ctx, server.ID, user.ID, role.ID); err != nil {
		t.Fatalf("Assign (repeat): %v", err)
	}

	roles, err := roleRepo.GetByMember(ctx, server.ID, user.ID)
	if err != nil {
		t.Fatalf("GetByMember: %v", err)
	}
	if len(roles) != 1 || roles[0].ID != role.ID {
		t.Fatalf("GetByMember = %+v, want single role %d", roles, role.ID)
	}

	if err := roleRepo.Unassign(ctx, server.ID, user.ID, role.ID); err != nil {
		t.Fatalf("Unassign: %v", err)
	}
	roles, err = roleRepo.GetByMember(ctx, server.ID, user.ID)
	if err != nil {
		t.Fatalf("GetByMember after Unassign: %v", err)
	}
	if len(roles) != 0 {
		t.Errorf("expected no roles after Unassign, got %d", len(roles))
	}
}

func TestRoleRepo_GetByMember_Ordering(t *testing.T) {
	pool := testPool(t)
	userRepo := NewUserRepository(pool)
	serverRepo := NewServerRepository(pool)
	memberRepo := NewMemberRepository(pool)
	roleRepo := NewRoleRepository(pool)
	ctx := context.Background()

	owner := createTestUser(t, userRepo)
	server := createTestServer(t, serverRepo, owner.ID)
	user := createTestUser(t, userRepo)
	createTestMember(t, memberRepo, server.ID, user.ID)

	first := createTestRole(t, roleRepo, server.ID, 0x04)
	second := createTestRole(t, roleRepo, server.ID, 0x20)

	// Assign newest first; GetByMember must still return creation order.
	if err := roleRepo.Assign(ctx, server.ID, user.ID, second.ID); err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if err := roleRepo.Assign(ctx, server.ID, user.ID, first.ID); err != nil {
		t.Fatalf("Assign: %v", err)
	}

	roles, err := roleRepo.GetByMember(ctx, server.ID, user.ID)
	if err != nil {
		t.Fatalf("GetByMember: %v", err)
	}
	if len(roles) != 2 {
		t.Fatalf("expected 2 roles, got %d", len(roles))
	}
	if roles[0].ID != first.ID || roles[1].ID != second.ID {
		t.Errorf("roles out of order: got [%d %d], want [%d %d]",
			roles[0].ID, roles[1].ID, first.ID, second.ID)
	}
}

func TestRoleRepo_Delete_RemovesAssignments(t *testing.T) {
	pool := testPool(t)
	userRepo := NewUserRepository(pool)
	serverRepo := NewServerRepository(pool)
	memberRepo := NewMemberRepository(pool)
	roleRepo := NewRoleRepository(pool)
	ctx := context.Background()

	owner := createTestUser(t, userRepo)
	server := createTestServer(t, serverRepo, owner.ID)
	user := createTestUser(t, userRepo)
	createTestMember(t, memberRepo, server.ID, user.ID)
	role := createTestRole(t, roleRepo, server.ID, 0x20)

	if err := roleRepo.Assign(ctx, server.ID, user.ID, role.ID); err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if err := roleRepo.Delete(ctx, role.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	roles, err := roleRepo.GetByMember(ctx, server.ID, user.ID)
	if err != nil {
		t.Fatalf("GetByMember: %v", err)
	}
	for _, r := range roles {
		if r.ID == role.ID {
			t.Error("assignment survived role deletion")
		}
	}
}

// createTestRole inserts a role and registers cleanup.
func createTestRole(t *testing.T, repo RoleRepository, serverID, defaultPerms int64) *models.Role {
	t.Helper()
	ctx := context.Background()
	role := &models.Role{
		ID:                 nextID(),
		ServerID:           serverID,
		Name:               "TestRole",
		DefaultPermissions: defaultPerms,
	}
	if err := repo.Create(ctx, role); err != nil {
		t.Fatalf("createTestRole: %v", err)
	}
	t.Cleanup(func() { _ = repo.Delete(ctx, role.ID) })
	return role
}

// createTestMember inserts a member and registers cleanup.
func createTestMember(t *testing.T, repo MemberRepository, serverID, userID int64) *models.Member {
	t.Helper()
	ctx := context.Background()
	member := &models.Member{
		ServerID: serverID,
		UserID:   userID,
		JoinedAt: time.Now().Truncate(time.Microsecond),
	}
	if err := repo.Create(ctx, member); err != nil {
		t.Fatalf("createTestMember: %v", err)
	}
	t.Cleanup(func() { _ = repo.Delete(ctx, serverID, userID) })
	return member
}
