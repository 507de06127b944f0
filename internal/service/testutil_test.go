package service

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/zachbakerdev/open-natter-server/internal/models"
	"github.com/zachbakerdev/open-natter-server/internal/snowflake"
)

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

func testSnowflake() *snowflake.Generator {
	sf, _ := snowflake.NewGenerator(1, 1)
	return sf
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ---------------------------------------------------------------------------
// Mock gateway dispatcher
// ---------------------------------------------------------------------------

type dispatchedEvent struct {
	ServerID     int64
	UserID       int64
	ExceptUserID int64
	Event        string
	Data         any
}

type mockGateway struct {
	mu     sync.Mutex
	events []dispatchedEvent
}

func (m *mockGateway) DispatchToServer(serverID int64, event string, data interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, dispatchedEvent{ServerID: serverID, Event: event, Data: data})
}

func (m *mockGateway) DispatchToUser(userID int64, event string, data interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, dispatchedEvent{UserID: userID, Event: event, Data: data})
}

func (m *mockGateway) DispatchToServerExcept(serverID int64, exceptUserID int64, event string, data interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, dispatchedEvent{ServerID: serverID, ExceptUserID: exceptUserID, Event: event, Data: data})
}

func (m *mockGateway) SubscribeToServer(userID, serverID int64) {}

func (m *mockGateway) UnsubscribeFromServer(userID, serverID int64) {}

// ---------------------------------------------------------------------------
// Mock repositories
// ---------------------------------------------------------------------------

// mockServerRepo implements database.ServerRepository.
type mockServerRepo struct {
	CreateFn      func(ctx context.Context, server *models.Server) error
	GetByIDFn     func(ctx context.Context, id int64) (*models.Server, error)
	UpdateFn      func(ctx context.Context, server *models.Server) error
	DeleteFn      func(ctx context.Context, id int64) error
	GetByUserIDFn func(ctx context.Context, userID int64) ([]models.Server, error)
}

func (m *mockServerRepo) Create(ctx context.Context, server *models.Server) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, server)
	}
	return nil
}

func (m *mockServerRepo) GetByID(ctx context.Context, id int64) (*models.Server, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockServerRepo) Update(ctx context.Context, server *models.Server) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, server)
	}
	return nil
}

func (m *mockServerRepo) Delete(ctx context.Context, id int64) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return nil
}

func (m *mockServerRepo) GetByUserID(ctx context.Context, userID int64) ([]models.Server, error) {
	if m.GetByUserIDFn != nil {
		return m.GetByUserIDFn(ctx, userID)
	}
	return nil, nil
}

// mockChannelRepo implements database.ChannelRepository.
type mockChannelRepo struct {
	CreateFn        func(ctx context.Context, channel *models.Channel) error
	GetByIDFn       func(ctx context.Context, id int64) (*models.Channel, error)
	GetByServerIDFn func(ctx context.Context, serverID int64) ([]models.Channel, error)
	UpdateFn        func(ctx context.Context, channel *models.Channel) error
	DeleteFn        func(ctx context.Context, id int64) error
}

func (m *mockChannelRepo) Create(ctx context.Context, channel *models.Channel) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, channel)
	}
	return nil
}

func (m *mockChannelRepo) GetByID(ctx context.Context, id int64) (*models.Channel, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockChannelRepo) GetByServerID(ctx context.Context, serverID int64) ([]models.Channel, error) {
	if m.GetByServerIDFn != nil {
		return m.GetByServerIDFn(ctx, serverID)
	}
	return nil, nil
}

func (m *mockChannelRepo) Update(ctx context.Context, channel *models.Channel) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, channel)
	}
	return nil
}

func (m *mockChannelRepo) Delete(ctx context.Context, id int64) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return nil
}

// mockRoleRepo implements database.RoleRepository.
type mockRoleRepo struct {
	CreateFn        func(ctx context.Context, role *models.Role) error
	GetByIDFn       func(ctx context.Context, id int64) (*models.Role, error)
	GetByServerIDFn func(ctx context.Context, serverID int64) ([]models.Role, error)
	UpdateFn        func(ctx context.Context, role *models.Role) error
	DeleteFn        func(ctx context.Context, id int64) error
	GetByMemberFn   func(ctx context.Context, serverID, userID int64) ([]models.Role, error)
	AssignFn        func(ctx context.Context, serverID, userID, roleID int64) error
	UnassignFn      func(ctx context.Context, serverID, userID, roleID int64) error
}

func (m *mockRoleRepo) Create(ctx context.Context, role *models.Role) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, role)
	}
	return nil
}

func (m *mockRoleRepo) GetByID(ctx context.Context, id int64) (*models.Role, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockRoleRepo) GetByServerID(ctx context.Context, serverID int64) ([]models.Role, error) {
	if m.GetByServerIDFn != nil {
		return m.GetByServerIDFn(ctx, serverID)
	}
	return nil, nil
}

func (m *mockRoleRepo) Update(ctx context.Context, role *models.Role) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, role)
	}
	return nil
}

func (m *mockRoleRepo) Delete(ctx context.Context, id int64) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return nil
}

func (m *mockRoleRepo) GetByMember(ctx context.Context, serverID, userID int64) ([]models.Role, error) {
	if m.GetByMemberFn != nil {
		return m.GetByMemberFn(ctx, serverID, userID)
	}
	return nil, nil
}

func (m *mockRoleRepo) Assign(ctx context.Context, serverID, userID, roleID int64) error {
	if m.AssignFn != nil {
		return m.AssignFn(ctx, serverID, userID, roleID)
	}
	return nil
}

func (m *mockRoleRepo) Unassign(ctx context.Context, serverID, userID, roleID int64) error {
	if m.UnassignFn != nil {
		return m.UnassignFn(ctx, serverID, userID, roleID)
	}
	return nil
}

// mockMemberRepo implements database.MemberRepository.
type mockMemberRepo struct {
	CreateFn             func(ctx context.Context, member *models.Member) error
	GetByServerAndUserFn func(ctx context.Context, serverID, userID int64) (*models.Member, error)
	GetByServerIDFn      func(ctx context.Context, serverID int64, limit, offset int) ([]models.Member, error)
	UpdateFn             func(ctx context.Context, member *models.Member) error
	DeleteFn             func(ctx context.Context, serverID, userID int64) error
}

func (m *mockMemberRepo) Create(ctx context.Context, member *models.Member) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, member)
	}
	return nil
}

func (m *mockMemberRepo) GetByServerAndUser(ctx context.Context, serverID, userID int64) (*models.Member, error) {
	if m.GetByServerAndUserFn != nil {
		return m.GetByServerAndUserFn(ctx, serverID, userID)
	}
	return nil, nil
}

func (m *mockMemberRepo) GetByServerID(ctx context.Context, serverID int64, limit, offset int) ([]models.Member, error) {
	if m.GetByServerIDFn != nil {
		return m.GetByServerIDFn(ctx, serverID, limit, offset)
	}
	return nil, nil
}

func (m *mockMemberRepo) Update(ctx context.Context, member *models.Member) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, member)
	}
	return nil
}

func (m *mockMemberRepo) Delete(ctx context.Context, serverID, userID int64) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, serverID, userID)
	}
	return nil
}

// mockRoleOverrideRepo implements database.ChannelRoleOverrideRepository.
type mockRoleOverrideRepo struct {
	SetFn          func(ctx context.Context, override *models.ChannelRoleOverride) error
	GetByChannelFn func(ctx context.Context, channelID int64) ([]models.ChannelRoleOverride, error)
	DeleteFn       func(ctx context.Context, channelID, roleID int64) error
}

func (m *mockRoleOverrideRepo) Set(ctx context.Context, override *models.ChannelRoleOverride) error {
	if m.SetFn != nil {
		return m.SetFn(ctx, override)
	}
	return nil
}

func (m *mockRoleOverrideRepo) GetByChannel(ctx context.Context, channelID int64) ([]models.ChannelRoleOverride, error) {
	if m.GetByChannelFn != nil {
		return m.GetByChannelFn(ctx, channelID)
	}
	return nil, nil
}

func (m *mockRoleOverrideRepo) Delete(ctx context.Context, channelID, roleID int64) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, channelID, roleID)
	}
	return nil
}

// mockUserOverrideRepo implements database.UserChannelOverrideRepository.
type mockUserOverrideRepo struct {
	SetFn                 func(ctx context.Context, override *models.UserChannelOverride) error
	GetByUserAndChannelFn func(ctx context.Context, userID, channelID int64) (*models.UserChannelOverride, error)
	GetByChannelFn        func(ctx context.Context, channelID int64) ([]models.UserChannelOverride, error)
	DeleteFn              func(ctx context.Context, channelID, userID int64) error
}

func (m *mockUserOverrideRepo) Set(ctx context.Context, override *models.UserChannelOverride) error {
	if m.SetFn != nil {
		return m.SetFn(ctx, override)
	}
	return nil
}

func (m *mockUserOverrideRepo) GetByUserAndChannel(ctx context.Context, userID, channelID int64) (*models.UserChannelOverride, error) {
	if m.GetByUserAndChannelFn != nil {
		return m.GetByUserAndChannelFn(ctx, userID, channelID)
	}
	return nil, nil
}

func (m *mockUserOverrideRepo) GetByChannel(ctx context.Context, channelID int64) ([]models.UserChannelOverride, error) {
	if m.GetByChannelFn != nil {
		return m.GetByChannelFn(ctx, channelID)
	}
	return nil, nil
}

func (m *mockUserOverrideRepo) Delete(ctx context.Context, channelID, userID int64) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, channelID, userID)
	}
	return nil
}
