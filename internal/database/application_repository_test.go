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

	"github.com/crstnalianza/rabas-backend/internal/models"
)

func applicationRows(applicationID int, status models.ApplicationStatus, now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "application_id", "user_id", "first_name", "last_name", "business_name",
		"territory", "certificate", "scope", "business_type", "category", "location",
		"pin_location", "status", "created_at", "updated_at",
	}).AddRow(
		int64(1), applicationID, int64(7), "Maria", "Santos", "Bayside Resort",
		"Barangay 5", "CERT-1234", "municipal", "accommodation",
		[]byte(`["Hotel"]`), "Poblacion",
		[]byte(`{"lat":13.58,"lng":124.23}`), int(status), now, now,
	)
}

func TestCreateApplication(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mockDB := &mockDatabase{db: db}
	repo := NewApplicationRepository(mockDB)

	app := &models.BusinessApplication{
		ApplicationID: 123456,
		UserID:        7,
		FirstName:     "Maria",
		LastName:      "Santos",
		BusinessName:  "Bayside Resort",
		Territory:     "Barangay 5",
		Certificate:   "CERT-1234",
		Scope:         "municipal",
		BusinessType:  "accommodation",
		Category:      models.StringList{"Hotel"},
		Location:      "Poblacion",
	}

	t.Run("Success", func(t *testing.T) {
		now := time.Now()

		mock.ExpectQuery(`INSERT INTO business_applications`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
				AddRow(int64(1), now, now))

		err := repo.Create(app)
		require.NoError(t, err)
		assert.Equal(t, int64(1), app.ID)
		assert.Equal(t, models.ApplicationPending, app.Status)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Duplicate Application ID", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO business_applications`).
			WillReturnError(&pq.Error{Code: "23505"})

		err := repo.Create(app)
		assert.ErrorIs(t, err, ErrDuplicateApplicationID)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Database Error", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO business_applications`).
			WillReturnError(fmt.Errorf("database error"))

		err := repo.Create(app)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrDuplicateApplicationID)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestReviewApplication(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mockDB := &mockDatabase{db: db}
	repo := NewApplicationRepository(mockDB)

	t.Run("Approve Creates Business", func(t *testing.T) {
		now := time.Now()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT (.+) FROM business_applications WHERE application_id (.+) FOR UPDATE`).
			WithArgs(123456).
			WillReturnRows(applicationRows(123456, models.ApplicationPending, now))
		mock.ExpectExec(`UPDATE business_applications SET status`).
			WithArgs(int(models.ApplicationApproved), 123456).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`INSERT INTO businesses`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
				AddRow(int64(9), now, now))
		mock.ExpectCommit()

		business, err := repo.Review(123456, models.ApplicationApproved)
		require.NoError(t, err)
		require.NotNil(t, business)
		assert.Equal(t, int64(9), business.ID)
		assert.Equal(t, "Bayside Resort", business.Name)
		assert.Equal(t, int64(7), business.UserID)
		// Card scaffold mirrors the application
		assert.Equal(t, "Hotel", business.Card.Category)
		assert.Equal(t, "Poblacion", business.Card.Location)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Deny Creates No Business", func(t *testing.T) {
		now := time.Now()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT (.+) FROM business_applications WHERE application_id (.+) FOR UPDATE`).
			WithArgs(123456).
			WillReturnRows(applicationRows(123456, models.ApplicationPending, now))
		mock.ExpectExec(`UPDATE business_applications SET status`).
			WithArgs(int(models.ApplicationDenied), 123456).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		business, err := repo.Review(123456, models.ApplicationDenied)
		require.NoError(t, err)
		assert.Nil(t, business)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Already Reviewed", func(t *testing.T) {
		now := time.Now()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT (.+) FROM business_applications WHERE application_id (.+) FOR UPDATE`).
			WithArgs(123456).
			WillReturnRows(applicationRows(123456, models.ApplicationApproved, now))
		mock.ExpectRollback()

		business, err := repo.Review(123456, models.ApplicationDenied)
		assert.ErrorIs(t, err, models.ErrApplicationNotPending)
		assert.Nil(t, business)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not Found", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT (.+) FROM business_applications WHERE application_id (.+) FOR UPDATE`).
			WithArgs(999999).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		business, err := repo.Review(999999, models.ApplicationApproved)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Nil(t, business)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
