package database

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/kdacanay/wrc-leads/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepositoryFindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewUserRepository(db)

	mock.ExpectQuery(`SELECT id, full_name, email, role FROM users WHERE id = \$1`).WithArgs("agent-ann").
		WillReturnRows(sqlmock.NewRows([]string{"id", "full_name", "email", "role"}).
			AddRow("agent-ann", "Ann Agent", "ann@example.com", "agent"))
	mock.ExpectQuery(`FROM users WHERE id = \$1`).WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id", "full_name", "email", "role"}))

	u, err := repo.FindByID(context.Background(), "agent-ann")
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAgent, u.Role)
	assert.Equal(t, "Ann Agent", u.DisplayName())

	_, err = repo.FindByID(context.Background(), "ghost")
	assert.ErrorIs(t, err, entity.ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryListAgents(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM users\s+WHERE role = \$1`).WithArgs("agent").
		WillReturnRows(sqlmock.NewRows([]string{"id", "full_name", "email", "role"}).
			AddRow("agent-ann", "Ann Agent", "ann@example.com", "agent").
			AddRow("agent-bob", "", "bob@example.com", "agent"))

	agents, err := NewUserRepository(db).ListAgents(context.Background())
	require.NoError(t, err)
	require.Len(t, agents, 2)
	assert.Equal(t, "bob@example.com", agents[1].DisplayName())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserAndIdentityDelete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM auth_identities WHERE uid = \$1`).WithArgs("u1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM users WHERE id = \$1`).WithArgs("u1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM auth_identities`).WithArgs("u2").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, NewIdentityRepository(db).DeleteIdentity(context.Background(), "u1"))
	assert.ErrorIs(t, NewUserRepository(db).Delete(context.Background(), "u1"), entity.ErrUserNotFound)
	assert.ErrorIs(t, NewIdentityRepository(db).DeleteIdentity(context.Background(), "u2"), entity.ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
