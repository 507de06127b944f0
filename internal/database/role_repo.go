package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/zachbakerdev/open-natter-server/internal/models"
)

type roleRepo struct {
	pool *pgxpool.Pool
}

func NewRoleRepository(pool *pgxpool.Pool) RoleRepository {
	return &roleRepo{pool: pool}
}

func (r *roleRepo) Create(ctx context.Context, role *models.Role) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO roles (id, server_id, name, default_permissions)
		 VALUES ($1, $2, $3, $4)`,
		role.ID, role.ServerID, role.Name, role.DefaultPermissions,
	)
	return err
}

func (r *roleRepo) GetByID(ctx context.Context, id int64) (*models.Role, error) {
	role := &models.Role{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, server_id, name, default_permissions
		 FROM roles WHERE id = $1`, id,
	).Scan(&role.ID, &role.ServerID, &role.Name, &role.DefaultPermissions)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return role, err
}

func (r *roleRepo) GetByServerID(ctx context.Context, serverID int64) ([]models.Role, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, server_id, name, default_permissions
		 FROM roles WHERE server_id = $1
		 ORDER BY id`, serverID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRoles(rows)
}

func (r *roleRepo) Update(ctx context.Context, role *models.Role) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE roles SET name = $2, default_permissions = $3 WHERE id = $1`,
		role.ID, role.Name, role.DefaultPermissions,
	)
	return err
}

// Delete removes the role. role_assignments and channel_role_overrides rows
// go with it via ON DELETE CASCADE; dangling references would otherwise let
// deleted roles keep granting permissions.
func (r *roleRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM roles WHERE id = $1`, id)
	return err
}

func (r *roleRepo) GetByMember(ctx context.Context, serverID, userID int64) ([]models.Role, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT r.id, r.server_id, r.name, r.default_permissions
		 FROM roles r
		 INNER JOIN role_assignments ra ON ra.role_id = r.id
		 WHERE r.server_id = $1 AND ra.user_id = $2
		 ORDER BY r.id`, serverID, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRoles(rows)
}

func (r *roleRepo) Assign(ctx context.Context, serverID, userID, roleID int64) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO role_assignments (server_id, user_id, role_id)
		 VALUES ($1, $2, $3)
		 ON CONFLICT DO NOTHING`,
		serverID, userID, roleID,
	)
	return err
}

func (r *roleRepo) Unassign(ctx context.Context, serverID, userID, roleID int64) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM role_assignments WHERE server_id = $1 AND user_id = $2 AND role_id = $3`,
		serverID, userID, roleID,
	)
	return err
}

func scanRoles(rows pgx.Rows) ([]models.Role, error) {
	var roles []models.Role
	for rows.Next() {
		var role models.Role
		if err := rows.Scan(&role.ID, &role.ServerID, &role.Name, &role.DefaultPermissions); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}
