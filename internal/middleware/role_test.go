package middleware

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"agency-portal/internal/model"
	"agency-portal/pkg/database"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupMockDB(t *testing.T) (sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 db,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	database.DB = gormDB
	return mock, db
}

func newContext(t *testing.T, userID uint) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", userID)
	return c, rec
}

func profileRow(userID uint, role string, clientID *uint) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "user_id", "role", "client_id"})
	if clientID != nil {
		rows.AddRow(1, userID, role, *clientID)
	} else {
		rows.AddRow(1, userID, role, nil)
	}
	return rows
}

func uintPtr(v uint) *uint { return &v }

func okHandler(c echo.Context) error { return c.NoContent(http.StatusOK) }

func TestRequireRole_Allowed(t *testing.T) {
	mock, db := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT \* FROM "profiles" WHERE user_id = \$1`).
		WillReturnRows(profileRow(7, "employee", nil))

	c, rec := newContext(t, 7)
	err := RequireRole(model.RoleEmployee, model.RoleAdmin)(okHandler)(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	profile, ok := c.Get("profile").(*model.Profile)
	require.True(t, ok, "profile should be stored in context")
	assert.Equal(t, model.RoleEmployee, profile.Role)
}

func TestRequireRole_Denied(t *testing.T) {
	mock, db := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT \* FROM "profiles" WHERE user_id = \$1`).
		WillReturnRows(profileRow(7, "client", uintPtr(10)))

	c, rec := newContext(t, 7)
	err := RequireRole(model.RoleEmployee, model.RoleAdmin)(okHandler)(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "insufficient permissions")
}

func TestRequireRole_ProfileNotFound(t *testing.T) {
	mock, db := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT \* FROM "profiles" WHERE user_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "role", "client_id"}))

	c, rec := newContext(t, 7)
	err := RequireRole(model.RoleAdmin)(okHandler)(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "profile not found")
}

func TestRequireRole_ClientWithoutClientAssociation(t *testing.T) {
	mock, db := setupMockDB(t)
	defer db.Close()

	// A client-role profile with no client id never passes, even when the
	// client role itself is allowed.
	mock.ExpectQuery(`SELECT \* FROM "profiles" WHERE user_id = \$1`).
		WillReturnRows(profileRow(7, "client", nil))

	c, rec := newContext(t, 7)
	err := RequireRole(model.RoleClient, model.RoleEmployee, model.RoleAdmin)(okHandler)(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "client association missing")
}

func TestRequireRole_UnknownStoredRole(t *testing.T) {
	mock, db := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT \* FROM "profiles" WHERE user_id = \$1`).
		WillReturnRows(profileRow(7, "superuser", nil))

	c, rec := newContext(t, 7)
	err := RequireRole(model.RoleClient, model.RoleEmployee, model.RoleAdmin)(okHandler)(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRole_MissingPrincipal(t *testing.T) {
	_, db := setupMockDB(t)
	defer db.Close()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := RequireRole(model.RoleAdmin)(okHandler)(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
