package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/kdacanay/wrc-leads/internal/entity"
)

type UserRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	query := `SELECT id, full_name, email, role FROM users WHERE id = $1`

	var u entity.User
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&u.ID, &u.FullName, &u.Email, &u.Role)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) ListAgents(ctx context.Context) ([]*entity.User, error) {
	query := `
		SELECT id, full_name, email, role
		FROM users
		WHERE role = $1
		ORDER BY COALESCE(NULLIF(full_name, ''), NULLIF(email, ''), id)
	`
	rows, err := r.DB.QueryContext(ctx, query, entity.RoleAgent)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var agents []*entity.User
	for rows.Next() {
		var u entity.User
		if err := rows.Scan(&u.ID, &u.FullName, &u.Email, &u.Role); err != nil {
			return nil, err
		}
		agents = append(agents, &u)
	}
	return agents, rows.Err()
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return entity.ErrUserNotFound
	}
	return nil
}

// IdentityRepository owns sign-in identities, kept apart from profiles so a
// user can be locked out even when the profile row is already gone.
type IdentityRepository struct {
	DB *sql.DB
}

func NewIdentityRepository(db *sql.DB) *IdentityRepository {
	return &IdentityRepository{DB: db}
}

func (r *IdentityRepository) DeleteIdentity(ctx context.Context, uid string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM auth_identities WHERE uid = $1`, uid)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return entity.ErrUserNotFound
	}
	return nil
}
