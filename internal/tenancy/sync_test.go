package tenancy

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func associationRows(userID uint, clients map[uint]bool) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "user_id", "client_id", "is_primary"})
	id := uint(100)
	for clientID, primary := range clients {
		rows.AddRow(id, userID, clientID, primary)
		id++
	}
	return rows
}

func TestSyncClientAssociations_Reconciles(t *testing.T) {
	gormDB, mock, db := newMockDB(t)
	defer db.Close()

	// Currently associated with {2, 3}; desired {1, 2} with 1 primary.
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "user_clients" WHERE user_id = \$1`).
		WithArgs(7).
		WillReturnRows(associationRows(7, map[uint]bool{2: true, 3: false}))
	mock.ExpectExec(`DELETE FROM "user_clients" WHERE user_id = \$1 AND client_id IN`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO "user_clients"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(200))
	mock.ExpectExec(`UPDATE "user_clients" SET`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`UPDATE "user_clients" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := SyncClientAssociations(gormDB, 7, []uint{1, 2}, uintPtr(1))
	require.NoError(t, err)
	assert.Equal(t, []uint{1}, result.Added)
	assert.Equal(t, []uint{3}, result.Removed)
	require.NotNil(t, result.Primary)
	assert.Equal(t, uint(1), *result.Primary)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSyncClientAssociations_Idempotent(t *testing.T) {
	gormDB, mock, db := newMockDB(t)
	defer db.Close()

	// Already at the desired state: no deletes, no inserts, only the
	// primary-flag reset.
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "user_clients" WHERE user_id = \$1`).
		WithArgs(7).
		WillReturnRows(associationRows(7, map[uint]bool{1: true, 2: false}))
	mock.ExpectExec(`UPDATE "user_clients" SET`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`UPDATE "user_clients" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := SyncClientAssociations(gormDB, 7, []uint{1, 2}, uintPtr(1))
	require.NoError(t, err)
	assert.Empty(t, result.Added)
	assert.Empty(t, result.Removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSyncClientAssociations_DuplicateDesiredIDs(t *testing.T) {
	gormDB, mock, db := newMockDB(t)
	defer db.Close()

	// Duplicates in the desired set collapse to a single insert.
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "user_clients" WHERE user_id = \$1`).
		WithArgs(7).
		WillReturnRows(associationRows(7, nil))
	mock.ExpectQuery(`INSERT INTO "user_clients"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(201))
	mock.ExpectExec(`UPDATE "user_clients" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := SyncClientAssociations(gormDB, 7, []uint{5, 5, 5}, nil)
	require.NoError(t, err)
	assert.Equal(t, []uint{5}, result.Added)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSyncClientAssociations_PrimaryNotMember(t *testing.T) {
	gormDB, mock, db := newMockDB(t)
	defer db.Close()

	// Rejected before any database work.
	_, err := SyncClientAssociations(gormDB, 7, []uint{1, 2}, uintPtr(9))
	assert.ErrorIs(t, err, ErrPrimaryNotMember)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSyncClientAssociations_RollsBackOnFailure(t *testing.T) {
	gormDB, mock, db := newMockDB(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "user_clients" WHERE user_id = \$1`).
		WithArgs(7).
		WillReturnRows(associationRows(7, nil))
	mock.ExpectQuery(`INSERT INTO "user_clients"`).
		WillReturnError(errors.New("unique constraint violation"))
	mock.ExpectRollback()

	_, err := SyncClientAssociations(gormDB, 7, []uint{1}, nil)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
