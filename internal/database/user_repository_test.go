package database

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func userRows(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "username", "email", "password_hash", "google_id", "first_name",
		"last_name", "phone", "profile_image", "reset_token", "reset_expiry",
		"created_at", "updated_at",
	}).AddRow(
		int64(7), "maria", "maria@example.com", "$2a$12$hash", nil, "Maria",
		"Santos", "", nil, nil, nil,
		now, now,
	)
}

func TestCreateUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mockDB := &mockDatabase{db: db}
	repo := NewUserRepository(mockDB)

	t.Run("Success", func(t *testing.T) {
		now := time.Now()

		mock.ExpectQuery(`INSERT INTO users`).
			WithArgs("maria", "maria@example.com", "$2a$12$hash").
			WillReturnRows(userRows(now))

		user, err := repo.Create("maria", "maria@example.com", "$2a$12$hash")
		require.NoError(t, err)
		assert.Equal(t, int64(7), user.ID)
		assert.Equal(t, "maria", user.Username)
		require.NotNil(t, user.PasswordHash)
		assert.Nil(t, user.GoogleID)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Duplicate Username", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO users`).
			WithArgs("maria", "maria@example.com", "$2a$12$hash").
			WillReturnError(&pq.Error{Code: "23505"})

		user, err := repo.Create("maria", "maria@example.com", "$2a$12$hash")
		assert.Error(t, err)
		assert.True(t, IsUniqueViolation(err))
		assert.Nil(t, user)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Database Error", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO users`).
			WillReturnError(fmt.Errorf("database error"))

		user, err := repo.Create("maria", "maria@example.com", "$2a$12$hash")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create user")
		assert.Nil(t, user)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetUserByIdentifier(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mockDB := &mockDatabase{db: db}
	repo := NewUserRepository(mockDB)

	t.Run("Found By Username Or Email", func(t *testing.T) {
		now := time.Now()

		mock.ExpectQuery(`SELECT (.+) FROM users WHERE username = \$1 OR email = \$1`).
			WithArgs("maria").
			WillReturnRows(userRows(now))

		user, err := repo.GetByIdentifier("maria")
		require.NoError(t, err)
		assert.Equal(t, "maria@example.com", user.Email)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not Found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM users WHERE username = \$1 OR email = \$1`).
			WithArgs("nobody").
			WillReturnError(sql.ErrNoRows)

		user, err := repo.GetByIdentifier("nobody")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Nil(t, user)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestResetPassword(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mockDB := &mockDatabase{db: db}
	repo := NewUserRepository(mockDB)

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec(`UPDATE users`).
			WithArgs("$2a$12$newhash", int64(7)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.ResetPassword(7, "$2a$12$newhash")
		assert.NoError(t, err)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("User Not Found", func(t *testing.T) {
		mock.ExpectExec(`UPDATE users`).
			WithArgs("$2a$12$newhash", int64(99)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.ResetPassword(99, "$2a$12$newhash")
		assert.ErrorIs(t, err, ErrNotFound)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetByValidResetToken(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mockDB := &mockDatabase{db: db}
	repo := NewUserRepository(mockDB)

	t.Run("Expired Or Unknown Token", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM users WHERE reset_token`).
			WithArgs("stale-token").
			WillReturnError(sql.ErrNoRows)

		user, err := repo.GetByValidResetToken("stale-token")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Nil(t, user)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDeleteCascade(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mockDB := &mockDatabase{db: db}
	repo := NewUserRepository(mockDB)

	t.Run("Success", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM deals WHERE user_id`).
			WithArgs(int64(7)).WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec(`DELETE FROM products WHERE user_id`).
			WithArgs(int64(7)).WillReturnResult(sqlmock.NewResult(0, 3))
		mock.ExpectExec(`DELETE FROM businesses WHERE user_id`).
			WithArgs(int64(7)).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`DELETE FROM business_applications WHERE user_id`).
			WithArgs(int64(7)).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`DELETE FROM users WHERE id`).
			WithArgs(int64(7)).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.DeleteCascade(7)
		assert.NoError(t, err)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("User Not Found Rolls Back", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM deals WHERE user_id`).
			WithArgs(int64(99)).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`DELETE FROM products WHERE user_id`).
			WithArgs(int64(99)).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`DELETE FROM businesses WHERE user_id`).
			WithArgs(int64(99)).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`DELETE FROM business_applications WHERE user_id`).
			WithArgs(int64(99)).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`DELETE FROM users WHERE id`).
			WithArgs(int64(99)).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.DeleteCascade(99)
		assert.ErrorIs(t, err, ErrNotFound)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
