package database

import (
	"context"

	"github.com/zachbakerdev/open-natter-server/internal/models"
)

// Repositories return (nil, nil) when an entity does not exist; callers
// decide whether that is a 404 or a fail-closed denial.

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id int64) error
}

type ServerRepository interface {
	Create(ctx context.Context, server *models.Server) error
	GetByID(ctx context.Context, id int64) (*models.Server, error)
	Update(ctx context.Context, server *models.Server) error
	Delete(ctx context.Context, id int64) error
	GetByUserID(ctx context.Context, userID int64) ([]models.Server, error)
}

type ChannelRepository interface {
	Create(ctx context.Context, channel *models.Channel) error
	GetByID(ctx context.Context, id int64) (*models.Channel, error)
	GetByServerID(ctx context.Context, serverID int64) ([]models.Channel, error)
	Update(ctx context.Context, channel *models.Channel) error
	Delete(ctx context.Context, id int64) error
}

type RoleRepository interface {
	Create(ctx context.Context, role *models.Role) error
	GetByID(ctx context.Context, id int64) (*models.Role, error)
	GetByServerID(ctx context.Context, serverID int64) ([]models.Role, error)
	// Update replaces the role row in a single statement; concurrent edits
	// of the same role serialize on the row lock.
	Update(ctx context.Context, role *models.Role) error
	// Delete cascades to role assignments and channel overrides.
	Delete(ctx context.Context, id int64) error
	// GetByMember returns the roles a user holds in a server, ordered by
	// role id ascending (creation order).
	GetByMember(ctx context.Context, serverID, userID int64) ([]models.Role, error)
	Assign(ctx context.Context, serverID, userID, roleID int64) error
	Unassign(ctx context.Context, serverID, userID, roleID int64) error
}

type MemberRepository interface {
	Create(ctx context.Context, member *models.Member) error
	GetByServerAndUser(ctx context.Context, serverID, userID int64) (*models.Member, error)
	GetByServerID(ctx context.Context, serverID int64, limit, offset int) ([]models.Member, error)
	Update(ctx context.Context, member *models.Member) error
	Delete(ctx context.Context, serverID, userID int64) error
}

type ChannelRoleOverrideRepository interface {
	Set(ctx context.Context, override *models.ChannelRoleOverride) error
	GetByChannel(ctx context.Context, channelID int64) ([]models.ChannelRoleOverride, error)
	Delete(ctx context.Context, channelID, roleID int64) error
}

type UserChannelOverrideRepository interface {
	Set(ctx context.Context, override *models.UserChannelOverride) error
	GetByUserAndChannel(ctx context.Context, userID, channelID int64) (*models.UserChannelOverride, error)
	GetByChannel(ctx context.Context, channelID int64) ([]models.UserChannelOverride, error)
	Delete(ctx context.Context, channelID, userID int64) error
}

type InviteRepository interface {
	Create(ctx context.Context, invite *models.Invite) error
	GetByCode(ctx context.Context, code string) (*models.Invite, error)
	GetByServerID(ctx context.Context, serverID int64) ([]models.Invite, error)
	IncrementUses(ctx context.Context, code string) error
	Delete(ctx context.Context, code string) error
}

type BanRepository interface {
	Create(ctx context.Context, ban *models.Ban) error
	GetByServerAndUser(ctx context.Context, serverID, userID int64) (*models.Ban, error)
	GetByServerID(ctx context.Context, serverID int64) ([]models.Ban, error)
	Delete(ctx context.Context, serverID, userID int64) error
}

type AttachmentRepository interface {
	Create(ctx context.Context, attachment *models.Attachment) error
	GetByChannelID(ctx context.Context, channelID int64, limit int) ([]models.Attachment, error)
	Delete(ctx context.Context, id int64) error
}
