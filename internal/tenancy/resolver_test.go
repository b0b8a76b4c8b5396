package tenancy

import (
	"database/sql"
	"regexp"
	"testing"

	"agency-portal/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
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

	return gormDB, mock, db
}

func uintPtr(v uint) *uint { return &v }

func TestResolveActiveClient_ClientRoleIgnoresOverride(t *testing.T) {
	gormDB, mock, db := newMockDB(t)
	defer db.Close()

	profile := &model.Profile{
		UserID:   1,
		Role:     model.RoleClient,
		ClientID: uintPtr(10),
	}

	// Override naming another tenant must not win.
	resolved, err := ResolveActiveClient(gormDB, profile, uintPtr(20))
	require.NoError(t, err)
	assert.Equal(t, uint(10), resolved)

	// No database access for client-role resolution.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveActiveClient_ClientRoleWithoutClientID(t *testing.T) {
	gormDB, _, db := newMockDB(t)
	defer db.Close()

	profile := &model.Profile{UserID: 1, Role: model.RoleClient}

	_, err := ResolveActiveClient(gormDB, profile, nil)
	assert.ErrorIs(t, err, ErrClientAssociationMissing)
}

func TestResolveActiveClient_EmployeeWithoutOverride(t *testing.T) {
	gormDB, _, db := newMockDB(t)
	defer db.Close()

	profile := &model.Profile{UserID: 2, Role: model.RoleEmployee}

	_, err := ResolveActiveClient(gormDB, profile, nil)
	assert.ErrorIs(t, err, ErrActiveClientRequired)
}

func TestResolveActiveClient_EmployeeMember(t *testing.T) {
	gormDB, mock, db := newMockDB(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "user_clients" WHERE user_id = $1 AND client_id = $2`)).
		WithArgs(2, 30).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	profile := &model.Profile{UserID: 2, Role: model.RoleEmployee}

	resolved, err := ResolveActiveClient(gormDB, profile, uintPtr(30))
	require.NoError(t, err)
	assert.Equal(t, uint(30), resolved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveActiveClient_EmployeeNotMember(t *testing.T) {
	gormDB, mock, db := newMockDB(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "user_clients" WHERE user_id = $1 AND client_id = $2`)).
		WithArgs(2, 99).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	profile := &model.Profile{UserID: 2, Role: model.RoleEmployee}

	_, err := ResolveActiveClient(gormDB, profile, uintPtr(99))
	assert.ErrorIs(t, err, ErrNotAssociated)
}

func TestResolveActiveClient_AdminMembershipStillEnforced(t *testing.T) {
	gormDB, mock, db := newMockDB(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "user_clients" WHERE user_id = $1 AND client_id = $2`)).
		WithArgs(3, 55).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	profile := &model.Profile{UserID: 3, Role: model.RoleAdmin}

	_, err := ResolveActiveClient(gormDB, profile, uintPtr(55))
	assert.ErrorIs(t, err, ErrNotAssociated)
}
