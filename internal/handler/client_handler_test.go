package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"agency-portal/internal/middleware"
	"agency-portal/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uintPtr(v uint) *uint { return &v }

func gatedContext(t *testing.T, method, target string, userID uint) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", userID)
	return c, rec
}

func TestDeleteClient_EmployeeBlockedByGate(t *testing.T) {
	mock, db := setupMockDB(t)
	defer db.Close()

	// Only the profile lookup runs; the delete never reaches the database.
	mock.ExpectQuery(`SELECT \* FROM "profiles" WHERE user_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "role", "client_id"}).
			AddRow(1, 7, "employee", nil))

	c, rec := gatedContext(t, http.MethodDelete, "/api/clients/3", 7)
	c.SetParamNames("id")
	c.SetParamValues("3")

	gated := middleware.RequireRole(model.RoleAdmin)(DeleteClient)
	err := gated(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteClient_AdminHardDeletes(t *testing.T) {
	mock, db := setupMockDB(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "user_clients" WHERE client_id = \$1`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`DELETE FROM "clients"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	c, rec := gatedContext(t, http.MethodDelete, "/api/clients/3", 9)
	c.SetParamNames("id")
	c.SetParamValues("3")

	err := DeleteClient(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListClients_ClientRoleSeesOnlyOwnOrganization(t *testing.T) {
	mock, db := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT \* FROM "clients" WHERE id = \$1`).
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "company_name", "active"}).
			AddRow(10, "Acme Corp", true))

	c, rec := gatedContext(t, http.MethodGet, "/api/clients", 1)
	c.Set("profile", &model.Profile{UserID: 1, Role: model.RoleClient, ClientID: uintPtr(10)})

	err := ListClients(c)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, rec.Code)

	var clients []model.Client
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &clients))
	require.Len(t, clients, 1)
	assert.Equal(t, uint(10), clients[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetClient_EmployeeOutsideAssociationSet(t *testing.T) {
	mock, db := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "user_clients" WHERE user_id = $1 AND client_id = $2`)).
		WithArgs(2, 55).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	c, rec := gatedContext(t, http.MethodGet, "/api/clients/55", 2)
	c.SetParamNames("id")
	c.SetParamValues("55")
	c.Set("profile", &model.Profile{UserID: 2, Role: model.RoleEmployee})

	err := GetClient(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetClient_ClientRoleForeignClient(t *testing.T) {
	mock, db := setupMockDB(t)
	defer db.Close()

	c, rec := gatedContext(t, http.MethodGet, "/api/clients/20", 1)
	c.SetParamNames("id")
	c.SetParamValues("20")
	c.Set("profile", &model.Profile{UserID: 1, Role: model.RoleClient, ClientID: uintPtr(10)})

	err := GetClient(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
