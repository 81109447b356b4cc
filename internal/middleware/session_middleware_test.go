package middleware

import (
	"database/sql"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crstnalianza/rabas-backend/internal/database"
	"github.com/crstnalianza/rabas-backend/internal/models"
)

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

const testCookieName = "connect.sid"

func sessionRouter(repo *database.SessionRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected", SessionMiddleware(repo, testCookieName, 24*time.Hour), func(c *gin.Context) {
		sessionCtx := MustGetSessionContext(c)
		c.JSON(http.StatusOK, gin.H{"subject_id": sessionCtx.SubjectID})
	})
	router.GET("/admin-only",
		SessionMiddleware(repo, testCookieName, 24*time.Hour),
		RequireAdmin(),
		func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"ok": true})
		})
	return router
}

func sessionRow(id string, subjectType models.SubjectType, subjectID int64) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "subject_type", "subject_id", "device_type", "os", "browser",
		"ip_address", "expires_at", "created_at", "updated_at",
	}).AddRow(
		id, string(subjectType), subjectID, "desktop", "Linux", "Firefox",
		"127.0.0.1", now.Add(time.Hour), now, now,
	)
}

func TestSessionMiddleware(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := database.NewSessionRepository(&mockDatabase{db: db})
	router := sessionRouter(repo)

	t.Run("Missing Cookie", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "MISSING_SESSION")
	})

	t.Run("Unknown Or Expired Session", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM sessions WHERE id`).
			WithArgs("stale").
			WillReturnError(sql.ErrNoRows)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.AddCookie(&http.Cookie{Name: testCookieName, Value: "stale"})
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "INVALID_SESSION")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Valid Session Slides Expiry", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM sessions WHERE id`).
			WithArgs("live").
			WillReturnRows(sessionRow("live", models.SubjectUser, 7))
		mock.ExpectExec(`UPDATE sessions SET expires_at`).
			WithArgs(sqlmock.AnyArg(), "live").
			WillReturnResult(sqlmock.NewResult(0, 1))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.AddCookie(&http.Cookie{Name: testCookieName, Value: "live"})
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"subject_id":7`)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("User Session Cannot Reach Admin Route", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM sessions WHERE id`).
			WithArgs("live").
			WillReturnRows(sessionRow("live", models.SubjectUser, 7))
		mock.ExpectExec(`UPDATE sessions SET expires_at`).
			WithArgs(sqlmock.AnyArg(), "live").
			WillReturnResult(sqlmock.NewResult(0, 1))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/admin-only", nil)
		req.AddCookie(&http.Cookie{Name: testCookieName, Value: "live"})
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Admin Session Allowed", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM sessions WHERE id`).
			WithArgs("admin").
			WillReturnRows(sessionRow("admin", models.SubjectAdmin, 1))
		mock.ExpectExec(`UPDATE sessions SET expires_at`).
			WithArgs(sqlmock.AnyArg(), "admin").
			WillReturnResult(sqlmock.NewResult(0, 1))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/admin-only", nil)
		req.AddCookie(&http.Cookie{Name: testCookieName, Value: "admin"})
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
