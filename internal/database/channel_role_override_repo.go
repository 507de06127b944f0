package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/zachbakerdev/open-natter-server/internal/models"
)

type channelRoleOverrideRepo struct {
	pool *pgxpool.Pool
}

func NewChannelRoleOverrideRepository(pool *pgxpool.Pool) ChannelRoleOverrideRepository {
	return &channelRoleOverrideRepo{pool: pool}
}

// Set upserts in a single statement, so concurrent edits of the same
// override cannot interleave.
func (r *channelRoleOverrideRepo) Set(ctx context.Context, override *models.ChannelRoleOverride) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO channel_role_overrides (channel_id, role_id, allow_perms, deny_perms)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (channel_id, role_id)
		 DO UPDATE SET allow_perms = EXCLUDED.allow_perms, deny_perms = EXCLUDED.deny_perms`,
		override.ChannelID, override.RoleID, override.Allow, override.Deny,
	)
	return err
}

func (r *channelRoleOverrideRepo) GetByChannel(ctx context.Context, channelID int64) ([]models.ChannelRoleOverride, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT channel_id, role_id, allow_perms, deny_perms
		 FROM channel_role_overrides WHERE channel_id = $1
		 ORDER BY role_id`, channelID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var overrides []models.ChannelRoleOverride
	for rows.Next() {
		var o models.ChannelRoleOverride
		if err := rows.Scan(&o.ChannelID, &o.RoleID, &o.Allow, &o.Deny); err != nil {
			return nil, err
		}
		overrides = append(overrides, o)
	}
	return overrides, rows.Err()
}

func (r *channelRoleOverrideRepo) Delete(ctx context.Context, channelID, roleID int64) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM channel_role_overrides WHERE channel_id = $1 AND role_id = $2`,
		channelID, roleID,
	)
	return err
}
