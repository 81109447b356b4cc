package services

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crstnalianza/rabas-backend/internal/database"
)

func TestDeriveUsername(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := database.NewUserRepository(&mockDatabase{db: db})
	svc := NewUsernameService(repo)

	t.Run("Normalizes Display Name", func(t *testing.T) {
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users WHERE username`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		username, err := svc.Derive("Maria Santos")
		require.NoError(t, err)
		assert.Regexp(t, `^mariasantos\d{4}$`, username)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Retries On Collision", func(t *testing.T) {
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users WHERE username`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users WHERE username`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		username, err := svc.Derive("Maria Santos")
		require.NoError(t, err)
		assert.Regexp(t, `^mariasantos\d{4}$`, username)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Empty Name Falls Back", func(t *testing.T) {
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users WHERE username`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		username, err := svc.Derive("  !! ")
		require.NoError(t, err)
		assert.Regexp(t, `^user\d{4}$`, username)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
