package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/zachbakerdev/open-natter-server/internal/models"
)

type inviteRepo struct {
	pool *pgxpool.Pool
}

func NewInviteRepository(pool *pgxpool.Pool) InviteRepository {
	return &inviteRepo{pool: pool}
}

func (r *inviteRepo) Create(ctx context.Context, invite *models.Invite) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO invites (code, server_id, inviter_id, uses, max_uses, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		invite.Code, invite.ServerID, invite.InviterID, invite.Uses, invite.MaxUses, invite.CreatedAt,
	)
	return err
}

func (r *inviteRepo) GetByCode(ctx context.Context, code string) (*models.Invite, error) {
	invite := &models.Invite{}
	err := r.pool.QueryRow(ctx,
		`SELECT code, server_id, inviter_id, uses, max_uses, created_at
		 FROM invites WHERE code = $1`, code,
	).Scan(&invite.Code, &invite.ServerID, &invite.InviterID, &invite.Uses, &invite.MaxUses, &invite.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return invite, err
}

func (r *inviteRepo) GetByServerID(ctx context.Context, serverID int64) ([]models.Invite, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT code, server_id, inviter_id, uses, max_uses, created_at
		 FROM invites WHERE server_id = $1
		 ORDER BY created_at`, serverID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invites []models.Invite
	for rows.Next() {
		var inv models.Invite
		if err := rows.Scan(&inv.Code, &inv.ServerID, &inv.InviterID, &inv.Uses, &inv.MaxUses, &inv.CreatedAt); err != nil {
			return nil, err
		}
		invites = append(invites, inv)
	}
	return invites, rows.Err()
}

func (r *inviteRepo) IncrementUses(ctx context.Context, code string) error {
	_, err := r.pool.Exec(ctx, `UPDATE invites SET uses = uses + 1 WHERE code = $1`, code)
	return err
}

func (r *inviteRepo) Delete(ctx context.Context, code string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM invites WHERE code = $1`, code)
	return err
}
