package database

import (
	"context"
	"testing"

	"github.com/zachbakerdev/open-natter-server/internal/models"
)

func TestUserChannelOverrideRepo_SetAndGet(t *testing.T) {
	pool := testPool(t)
	userRepo := NewUserRepository(pool)
	serverRepo := NewServerRepository(pool)
	channelRepo := NewChannelRepository(pool)
	repo := NewUserChannelOverrideRepository(pool)
	ctx := context.Background()

	owner := createTestUser(t, userRepo)
	server := createTestServer(t, serverRepo, owner.ID)
	ch := createTestChannel(t, channelRepo, server.ID)
	user := createTestUser(t, userRepo)

	override := &models.UserChannelOverride{
		ChannelID: ch.ID,
		UserID:    user.ID,
		Allow:     0x08,
		Deny:      0x20,
	}
	if err := repo.Set(ctx, override); err != nil {
		t.Fatalf("Set: %v", err)
	}
	t.Cleanup(func() { _ = repo.Delete(ctx, ch.ID, user.ID) })

	got, err := repo.GetByUserAndChannel(ctx, user.ID, ch.ID)
	if err != nil {
		t.Fatalf("GetByUserAndChannel: %v", err)
	}
	if got == nil {
		t.Fatal("GetByUserAndChannel returned nil after Set")
	}
	if got.Allow != 0x08 {
		t.Errorf("Allow = %d, want %d", got.Allow, 0x08)
	}
	if got.Deny != 0x20 {
		t.Errorf("Deny = %d, want %d", got.Deny, 0x20)
	}
}

func TestUserChannelOverrideRepo_Get_NotFound(t *testing.T) {
	pool := testPool(t)
	repo := NewUserChannelOverrideRepository(pool)
	ctx := context.Background()

	got, err := repo.GetByUserAndChannel(ctx, 999999999, 999999998)
	if err != nil {
		t.Fatalf("GetByUserAndChannel: %v", err)
	}
	if got != nil {
		t.Error("expected nil for missing override")
	}
}

func TestUserChannelOverrideRepo_Set_Upsert(t *testing.T) {
	pool := testPool(t)
	userRepo := NewUserRepository(pool)
	serverRepo := NewServerRepository(pool)
	channelRepo := NewChannelRepository(pool)
	repo := NewUserChannelOverrideRepository(pool)
	ctx := context.Background()

	owner := createTestUser(t, userRepo)
	server := createTestServer(t, serverRepo, owner.ID)
	ch := createTestChannel(t, channelRepo, server.ID)
	user := createTestUser(t, userRepo)

	override := &models.UserChannelOverride{
		ChannelID: ch.ID,
		UserID:    user.ID,
		Allow:     0x08,
	}
	if err := repo.Set(ctx, override); err != nil {
		t.Fatalf("Set initial: %v", err)
	}
	t.Cleanup(func() { _ = repo.Delete(ctx, ch.ID, user.ID) })

	override.Allow = 0
	override.Deny = 0x08
	if err := repo.Set(ctx, override); err != nil {
		t.Fatalf("Set upsert: %v", err)
	}

	got, err := repo.GetByUserAndChannel(ctx, user.ID, ch.ID)
	if err != nil {
		t.Fatalf("GetByUserAndChannel: %v", err)
	}
	if got.Allow != 0 {
		t.Errorf("Allow = %d, want 0", got.Allow)
	}
	if got.Deny != 0x08 {
		t.Errorf("Deny = %d, want %d", got.Deny, 0x08)
	}
}

func TestUserChannelOverrideRepo_Delete(t *testing.T) {
	pool := testPool(t)
	userRepo := NewUserRepository(pool)
	serverRepo := NewServerRepository(pool)
	channelRepo := NewChannelRepository(pool)
	repo := NewUserChannelOverrideRepository(pool)
	ctx := context.Background()

	owner := createTestUser(t, userRepo)
	server := createTestServer(t, serverRepo, owner.ID)
	ch := createTestChannel(t, channelRepo, server.ID)
	user := createTestUser(t, userRepo)

	override := &models.UserChannelOverride{
		ChannelID: ch.ID,
		UserID:    user.ID,
		Allow:     0x08,
	}
	if err := repo.Set(ctx, override); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := repo.Delete(ctx, ch.ID, user.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	got, err := repo.GetByUserAndChannel(ctx, user.ID, ch.ID)
	if err != nil {
		t.Fatalf("GetByUserAndChannel: %v", err)
	}
	if got != nil {
		t.Error("override still present after Delete")
	}
}
