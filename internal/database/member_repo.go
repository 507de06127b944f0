package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/zachbakerdev/open-natter-server/internal/models"
)

type memberRepo struct {
	pool *pgxpool.Pool
}

func NewMemberRepository(pool *pgxpool.Pool) MemberRepository {
	return &memberRepo{pool: pool}
}

func (r *memberRepo) Create(ctx context.Context, member *models.Member) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO members (server_id, user_id, nickname, joined_at)
		 VALUES ($1, $2, $3, $4)`,
		member.ServerID, member.UserID, member.Nickname, member.JoinedAt,
	)
	return err
}

func (r *memberRepo) GetByServerAndUser(ctx context.Context, serverID, userID int64) (*models.Member, error) {
	member := &models.Member{}
	err := r.pool.QueryRow(ctx,
		`SELECT server_id, user_id, nickname, joined_at
		 FROM members WHERE server_id = $1 AND user_id = $2`, serverID, userID,
	).Scan(&member.ServerID, &member.UserID, &member.Nickname, &member.JoinedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	roleIDs, err := r.memberRoleIDs(ctx, serverID, userID)
	if err != nil {
		return nil, err
	}
	member.Roles = roleIDs
	return member, nil
}

func (r *memberRepo) GetByServerID(ctx context.Context, serverID int64, limit, offset int) ([]models.Member, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT server_id, user_id, nickname, joined_at
		 FROM members WHERE server_id = $1
		 ORDER BY joined_at
		 LIMIT $2 OFFSET $3`, serverID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []models.Member
	for rows.Next() {
		var m models.Member
		if err := rows.Scan(&m.ServerID, &m.UserID, &m.Nickname, &m.JoinedAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range members {
		roleIDs, err := r.memberRoleIDs(ctx, serverID, members[i].UserID)
		if err != nil {
			return nil, err
		}
		members[i].Roles = roleIDs
	}
	return members, nil
}

func (r *memberRepo) Update(ctx context.Context, member *models.Member) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE members SET nickname = $3 WHERE server_id = $1 AND user_id = $2`,
		member.ServerID, member.UserID, member.Nickname,
	)
	return err
}

func (r *memberRepo) Delete(ctx context.Context, serverID, userID int64) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM members WHERE server_id = $1 AND user_id = $2`,
		serverID, userID,
	)
	return err
}

func (r *memberRepo) memberRoleIDs(ctx context.Context, serverID, userID int64) ([]int64, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT role_id FROM role_assignments
		 WHERE server_id = $1 AND user_id = $2
		 ORDER BY role_id`, serverID, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
