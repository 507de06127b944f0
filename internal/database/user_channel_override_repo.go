package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/zachbakerdev/open-natter-server/internal/models"
)

type userChannelOverrideRepo struct {
	pool *pgxpool.Pool
}

func NewUserChannelOverrideRepository(pool *pgxpool.Pool) UserChannelOverrideRepository {
	return &userChannelOverrideRepo{pool: pool}
}

func (r *userChannelOverrideRepo) Set(ctx context.Context, override *models.UserChannelOverride) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO user_channel_overrides (channel_id, user_id, allow_perms, deny_perms)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (channel_id, user_id)
		 DO UPDATE SET allow_perms = EXCLUDED.allow_perms, deny_perms = EXCLUDED.deny_perms`,
		override.ChannelID, override.UserID, override.Allow, override.Deny,
	)
	return err
}

func (r *userChannelOverrideRepo) GetByUserAndChannel(ctx context.Context, userID, channelID int64) (*models.UserChannelOverride, error) {
	o := &models.UserChannelOverride{}
	err := r.pool.QueryRow(ctx,
		`SELECT channel_id, user_id, allow_perms, deny_perms
		 FROM user_channel_overrides WHERE channel_id = $1 AND user_id = $2`,
		channelID, userID,
	).Scan(&o.ChannelID, &o.UserID, &o.Allow, &o.Deny)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return o, err
}

func (r *userChannelOverrideRepo) GetByChannel(ctx context.Context, channelID int64) ([]models.UserChannelOverride, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT channel_id, user_id, allow_perms, deny_perms
		 FROM user_channel_overrides WHERE channel_id = $1
		 ORDER BY user_id`, channelID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var overrides []models.UserChannelOverride
	for rows.Next() {
		var o models.UserChannelOverride
		if err := rows.Scan(&o.ChannelID, &o.UserID, &o.Allow, &o.Deny); err != nil {
			return nil, err
		}
		overrides = append(overrides, o)
	}
	return overrides, rows.Err()
}

func (r *userChannelOverrideRepo) Delete(ctx context.Context, channelID, userID int64) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM user_channel_overrides WHERE channel_id = $1 AND user_id = $2`,
		channelID, userID,
	)
	return err
}
