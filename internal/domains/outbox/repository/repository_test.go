package repository_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"consultation/infras/otel/mocks"
	"consultation/infras/postgres"
	"consultation/internal/domains/outbox/model"
	"consultation/internal/domains/outbox/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepository(t *testing.T) (repository.Outbox, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	t.Cleanup(func() { _ = db.Close() })

	conn := sqlx.NewDb(db, "postgres")

	return repository.New(&postgres.Connection{Read: conn, Write: conn}, mocks.NewOtel()), mock
}

func TestOutboxRepository_ClaimDue(t *testing.T) {
	repo, mock := newRepository(t)

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	lease := now.Add(time.Minute)

	rows := sqlmock.NewRows([]string{
		"id", "kind", "organisation", "aggregate_id", "exchange", "routing_key", "payload",
		"status", "attempts", "next_attempt_at", "last_error", "created_at", "modified_at",
	}).AddRow(
		"msg-1", model.KindEvent, "acme", "apt-1", "EMAIL_SERVICE_EXCHANGE", "APPOINTMENT_CREATE", []byte(`{"type":"EMAIL"}`),
		model.StatusPending, 2, lease, nil, now, now,
	)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE outbox_messages SET next_attempt_at = $1")).
		WithArgs(lease, now, model.StatusPending, 25).
		WillReturnRows(rows)

	msgs, err := repo.ClaimDue(context.Background(), 25, now, lease)
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	assert.Equal(t, "msg-1", msgs[0].ID)
	assert.Equal(t, 2, msgs[0].Attempts)
	assert.JSONEq(t, `{"type":"EMAIL"}`, string(msgs[0].Payload))
	assert.Nil(t, msgs[0].LastError)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_ClaimDueUsesSkipLocked(t *testing.T) {
	repo, mock := newRepository(t)

	mock.ExpectQuery("FOR UPDATE SKIP LOCKED").WillReturnRows(sqlmock.NewRows([]string{"id"}))

	msgs, err := repo.ClaimDue(context.Background(), 10, time.Now(), time.Now())
	require.NoError(t, err)
	assert.Empty(t, msgs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_MarkDelivered(t *testing.T) {
	repo, mock := newRepository(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE outbox_messages SET last_error = $1, modified_at = $2, status = $3")).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), model.StatusDelivered, "msg-1", model.StatusPending).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.MarkDelivered(context.Background(), "msg-1", time.Now()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_Requeue(t *testing.T) {
	t.Run("dead message", func(t *testing.T) {
		repo, mock := newRepository(t)

		mock.ExpectExec("UPDATE outbox_messages SET attempts").
			WillReturnResult(sqlmock.NewResult(0, 1))

		ok, err := repo.Requeue(context.Background(), "acme", "msg-1", time.Now())
		require.NoError(t, err)
		assert.True(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not dead or other organisation", func(t *testing.T) {
		repo, mock := newRepository(t)

		mock.ExpectExec("UPDATE outbox_messages SET attempts").
			WillReturnResult(sqlmock.NewResult(0, 0))

		ok, err := repo.Requeue(context.Background(), "acme", "msg-1", time.Now())
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestOutboxRepository_InsertBatch(t *testing.T) {
	t.Run("empty batch is a no-op", func(t *testing.T) {
		repo, mock := newRepository(t)

		require.NoError(t, repo.InsertBatch(context.Background(), nil))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("writes in one transaction", func(t *testing.T) {
		repo, mock := newRepository(t)

		first, err := model.NewEvent("acme", "apt-1", "EMAIL_SERVICE_EXCHANGE", "APPOINTMENT_CREATE", map[string]string{"type": "EMAIL"}, time.Now())
		require.NoError(t, err)

		second, err := model.NewEvent("acme", "apt-1", "LEAD", "APPOINTMENT_CREATE", map[string]string{"source_type": "APPOINTMENT"}, time.Now())
		require.NoError(t, err)

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO outbox_messages").WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectCommit()

		require.NoError(t, repo.InsertBatch(context.Background(), []model.Message{first, second}))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
