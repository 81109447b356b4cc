package services

import (
	"database/sql"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crstnalianza/rabas-backend/internal/database"
	"github.com/crstnalianza/rabas-backend/internal/models"
)

// mockDatabase wraps a sqlmock *sql.DB behind the database.DB interface
type mockDatabase struct {
	db *sql.DB
}

func (m *mockDatabase) Get(dest interface{}, query string, args ...interface{}) error {
	return fmt.Errorf("Get not implemented in mock")
}

func (m *mockDatabase) Select(dest interface{}, query string, args ...interface{}) error {
	return fmt.Errorf("Select not implemented in mock")
}

func (m *mockDatabase) Query(query string, args ...interface{}) (*sql.Rows, error) {
	return m.db.Query(query, args...)
}

func (m *mockDatabase) QueryRow(query string, args ...interface{}) *sql.Row {
	return m.db.QueryRow(query, args...)
}

func (m *mockDatabase) Exec(query string, args ...interface{}) (sql.Result, error) {
	return m.db.Exec(query, args...)
}

func (m *mockDatabase) Beginx() (*sqlx.Tx, error) {
	return sqlx.NewDb(m.db, "sqlmock").Beginx()
}

func (m *mockDatabase) Close() error { return m.db.Close() }
func (m *mockDatabase) Ping() error  { return m.db.Ping() }

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestSubmitApplication(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := database.NewApplicationRepository(&mockDatabase{db: db})
	svc := NewApplicationService(repo, quietLogger())

	newApp := func() *models.BusinessApplication {
		return &models.BusinessApplication{
			UserID:       7,
			FirstName:    "Maria",
			LastName:     "Santos",
			BusinessName: "Bayside Resort",
			Territory:    "Barangay 5",
			Certificate:  "CERT-1234",
			Scope:        "municipal",
			BusinessType: "accommodation",
			Category:     models.StringList{"Hotel"},
			Location:     "Poblacion",
		}
	}

	t.Run("Success First Draw", func(t *testing.T) {
		now := time.Now()

		mock.ExpectQuery(`INSERT INTO business_applications`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
				AddRow(int64(1), now, now))

		app := newApp()
		err := svc.Submit(app)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, app.ApplicationID, 100000)
		assert.LessOrEqual(t, app.ApplicationID, 999999)
		assert.Equal(t, models.ApplicationPending, app.Status)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Redraws On Collision", func(t *testing.T) {
		now := time.Now()

		// First draw loses the unique-constraint race, second succeeds
		mock.ExpectQuery(`INSERT INTO business_applications`).
			WillReturnError(&pq.Error{Code: "23505"})
		mock.ExpectQuery(`INSERT INTO business_applications`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
				AddRow(int64(2), now, now))

		app := newApp()
		err := svc.Submit(app)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, app.ApplicationID, 100000)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Gives Up After Budget", func(t *testing.T) {
		for i := 0; i < maxAllocateAttempts; i++ {
			mock.ExpectQuery(`INSERT INTO business_applications`).
				WillReturnError(&pq.Error{Code: "23505"})
		}

		err := svc.Submit(newApp())
		assert.ErrorIs(t, err, ErrApplicationIDExhausted)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Other Errors Do Not Retry", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO business_applications`).
			WillReturnError(fmt.Errorf("database error"))

		err := svc.Submit(newApp())
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrApplicationIDExhausted)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
