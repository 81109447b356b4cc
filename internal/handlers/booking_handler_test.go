package handlers

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crstnalianza/rabas-backend/internal/database"
	"github.com/crstnalianza/rabas-backend/internal/middleware"
	"github.com/crstnalianza/rabas-backend/internal/models"
)

// setupTestDB creates a mock database for testing
func setupTestDB(t *testing.T) (database.DB, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	return &database.PostgresDB{DB: sqlx.NewDb(mockDB, "sqlmock")}, mock
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// setupOwnerContext creates a Gin context carrying an owner's session
func setupOwnerContext(userID int64) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Set(middleware.SessionContextKey, middleware.SessionContext{
		SessionID:   "test-session",
		SubjectType: models.SubjectUser,
		SubjectID:   userID,
	})

	return c, w
}

func bookingRow(bookingID, userID, businessID int64, status models.BookingStatus) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "user_id", "business_id", "product_id", "customer_name", "product_name",
		"guest_count", "email", "phone", "booking_type", "date_in", "date_out",
		"special_requests", "original_price", "discount", "discounted_price",
		"status", "created_at", "updated_at",
	}).AddRow(
		bookingID, userID, businessID, int64(11), "Juan Dela Cruz", "Deluxe Room",
		2, "juan@example.com", "09171234567", "accommodation", now, nil,
		"", 2500.0, 0.0, 2500.0,
		int64(status), now, now,
	)
}

func TestUpdateBookingStatus(t *testing.T) {
	const (
		bookingID  = int64(42)
		businessID = int64(3)
		callerID   = int64(99)
	)

	newRequest := func(c *gin.Context, body string) {
		c.Params = gin.Params{{Key: "id", Value: "42"}}
		c.Request = httptest.NewRequest(http.MethodPut, "/update-booking-status/42",
			bytes.NewBufferString(body))
		c.Request.Header.Set("Content-Type", "application/json")
	}

	t.Run("Foreign Business Hidden", func(t *testing.T) {
		db, mock := setupTestDB(t)
		handler := NewBookingHandler(database.NewBookingRepository(db), database.NewBusinessRepository(db), quietLogger())

		mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE id`).
			WithArgs(bookingID).
			WillReturnRows(bookingRow(bookingID, 7, businessID, models.BookingPending))
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM businesses WHERE id = \$1 AND user_id = \$2`).
			WithArgs(businessID, callerID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		c, w := setupOwnerContext(callerID)
		newRequest(c, `{"status": 1}`)
		handler.UpdateStatus(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "not_found")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Owner Activates Pending Booking", func(t *testing.T) {
		db, mock := setupTestDB(t)
		handler := NewBookingHandler(database.NewBookingRepository(db), database.NewBusinessRepository(db), quietLogger())

		mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE id`).
			WithArgs(bookingID).
			WillReturnRows(bookingRow(bookingID, 7, businessID, models.BookingPending))
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM businesses WHERE id = \$1 AND user_id = \$2`).
			WithArgs(businessID, callerID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectExec(`UPDATE bookings SET status`).
			WithArgs(models.BookingActive, bookingID, businessID, models.BookingPending).
			WillReturnResult(sqlmock.NewResult(0, 1))

		c, w := setupOwnerContext(callerID)
		newRequest(c, `{"status": 1}`)
		handler.UpdateStatus(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Active")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Illegal Transition Rejected", func(t *testing.T) {
		db, mock := setupTestDB(t)
		handler := NewBookingHandler(database.NewBookingRepository(db), database.NewBusinessRepository(db), quietLogger())

		mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE id`).
			WithArgs(bookingID).
			WillReturnRows(bookingRow(bookingID, 7, businessID, models.BookingCompleted))
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM businesses WHERE id = \$1 AND user_id = \$2`).
			WithArgs(businessID, callerID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		c, w := setupOwnerContext(callerID)
		newRequest(c, `{"status": 3}`)
		handler.UpdateStatus(c)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "illegal_transition")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
