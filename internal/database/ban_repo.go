package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/zachbakerdev/open-natter-server/internal/models"
)

type banRepo struct {
	pool *pgxpool.Pool
}

func NewBanRepository(pool *pgxpool.Pool) BanRepository {
	return &banRepo{pool: pool}
}

func (r *banRepo) Create(ctx context.Context, ban *models.Ban) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO bans (server_id, user_id, reason, created_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (server_id, user_id) DO UPDATE SET reason = EXCLUDED.reason`,
		ban.ServerID, ban.UserID, ban.Reason, ban.CreatedAt,
	)
	return err
}

func (r *banRepo) GetByServerAndUser(ctx context.Context, serverID, userID int64) (*models.Ban, error) {
	ban := &models.Ban{}
	err := r.pool.QueryRow(ctx,
		`SELECT server_id, user_id, reason, created_at
		 FROM bans WHERE server_id = $1 AND user_id = $2`, serverID, userID,
	).Scan(&ban.ServerID, &ban.UserID, &ban.Reason, &ban.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return ban, err
}

func (r *banRepo) GetByServerID(ctx context.Context, serverID int64) ([]models.Ban, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT server_id, user_id, reason, created_at
		 FROM bans WHERE server_id = $1
		 ORDER BY created_at`, serverID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bans []models.Ban
	for rows.Next() {
		var b models.Ban
		if err := rows.Scan(&b.ServerID, &b.UserID, &b.Reason, &b.CreatedAt); err != nil {
			return nil, err
		}
		bans = append(bans, b)
	}
	return bans, rows.Err()
}

func (r *banRepo) Delete(ctx context.Context, serverID, userID int64) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM bans WHERE server_id = $1 AND user_id = $2`,
		serverID, userID,
	)
	return err
}
