package postgres

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-api/internal/model"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
)

func TestOutboxRepository_Create(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewOutboxRepository(db)

	event := &model.OutboxEvent{EventType: "BILLING_PAID", Payload: json.RawMessage(`{"resource":"billing"}`)}

	mock.ExpectExec(`INSERT INTO outbox_events`).
		WithArgs(sqlmock.AnyArg(), "BILLING_PAID", `{"resource":"billing"}`, model.OutboxStatusPending, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), event))
	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, model.OutboxStatusPending, event.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_CreateRejectsEmptyPayload(t *testing.T) {
	db, _ := setupMockDB(t)
	repo := NewOutboxRepository(db)

	assert.Error(t, repo.Create(context.Background(), &model.OutboxEvent{EventType: "X"}))
}

func TestOutboxRepository_GetPendingEventsWithLock(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewOutboxRepository(db)

	id := uuid.New()
	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "event_type", "payload", "status", "error_message", "retry_count",
		"retry_at", "created_at", "processed_at", "updated_at",
	}).AddRow(id.String(), "PATIENT_CREATE", []byte(`{}`), "processing", nil, 1, nil, now, nil, now)

	mock.ExpectQuery(`UPDATE outbox_events\s+SET status = 'processing'`).
		WithArgs(25).
		WillReturnRows(rows)

	events, err := repo.GetPendingEventsWithLock(context.Background(), 25)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, id, events[0].ID)
	assert.Equal(t, 1, events[0].RetryCount)
	assert.Equal(t, model.OutboxStatusProcessing, events[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_UpdateStatusNotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewOutboxRepository(db)

	id := uuid.New()
	mock.ExpectExec(`UPDATE outbox_events`).
		WithArgs(model.OutboxStatusProcessed, nil, nil, id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), id, model.OutboxStatusProcessed, nil, nil)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestOutboxRepository_DeleteProcessedBefore(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewOutboxRepository(db)

	cutoff := time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(`DELETE FROM outbox_events`).
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 7))

	n, err := repo.DeleteProcessedBefore(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
}
