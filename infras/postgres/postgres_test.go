package postgres_test

import (
	"context"
	"errors"
	"testing"

	"consultation/infras/postgres"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	t.Cleanup(func() { _ = db.Close() })

	return sqlx.NewDb(db, "postgres"), mock
}

func TestWithTransaction_Commit(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE appointments").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := postgres.WithTransaction(context.Background(), db, func(tx *sqlx.Tx) error {
		_, err := tx.Exec("UPDATE appointments SET status = 'ACCEPTED'")

		return err
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTransaction_Rollback(t *testing.T) {
	db, mock := newMockDB(t)
	failure := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := postgres.WithTransaction(context.Background(), db, func(_ *sqlx.Tx) error {
		return failure
	})

	assert.ErrorIs(t, err, failure)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsUniqueViolation(t *testing.T) {
	slotErr := &pq.Error{Code: "23505", Constraint: "appointments_active_slot_uidx"}

	assert.True(t, postgres.IsUniqueViolation(slotErr, ""))
	assert.True(t, postgres.IsUniqueViolation(slotErr, "appointments_active_slot_uidx"))
	assert.False(t, postgres.IsUniqueViolation(slotErr, "other_uidx"))
	assert.False(t, postgres.IsUniqueViolation(&pq.Error{Code: "23503"}, ""))
	assert.False(t, postgres.IsUniqueViolation(errors.New("plain"), ""))
}
