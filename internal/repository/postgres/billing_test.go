package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/pkg/billing"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
)

func setupMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func TestBillingRepository_ChangeStatus_PaidCompletesAppointments(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewBillingRepository(db)

	now := time.Now()
	readAt := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	txn := &model.BillingTransaction{
		Base:           model.Base{ID: uuid.New(), UpdatedAt: readAt},
		PaymentMethod:  billing.PaymentCash,
		Status:         model.TransactionPaid,
		AmountPaid:     600,
		ChangeAmount:   75,
		PaidAt:         &now,
		AppointmentIDs: model.UUIDs{uuid.New(), uuid.New()},
	}
	audit := &model.AuditLog{
		ID:         uuid.New(),
		Action:     model.AuditActionPay,
		EntityType: model.AuditEntityTransaction,
		EntityID:   txn.ID,
		CreatedAt:  now,
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT status, updated_at FROM billing_transactions WHERE id = \$1 FOR UPDATE`).
		WithArgs(txn.ID).
		WillReturnRows(sqlmock.NewRows([]string{"status", "updated_at"}).AddRow("pending", readAt))
	mock.ExpectExec(`UPDATE billing_transactions`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE appointments SET billing_status = \$1`).
		WithArgs(model.BillingStatusCompleted, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`INSERT INTO audit_logs`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.ChangeStatus(context.Background(), txn,
		[]model.TransactionStatus{model.TransactionDraft, model.TransactionPending}, audit)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBillingRepository_ChangeStatus_AlreadyPaid(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewBillingRepository(db)

	txn := &model.BillingTransaction{Base: model.Base{ID: uuid.New()}, Status: model.TransactionPaid}

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT status, updated_at FROM billing_transactions`).
		WillReturnRows(sqlmock.NewRows([]string{"status", "updated_at"}).AddRow("paid", time.Now()))
	mock.ExpectRollback()

	err := repo.ChangeStatus(context.Background(), txn,
		[]model.TransactionStatus{model.TransactionDraft, model.TransactionPending}, nil)
	require.Error(t, err)

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrConflict, appErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBillingRepository_ChangeStatus_RowChangedSinceRead(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewBillingRepository(db)

	readAt := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	now := readAt.Add(time.Hour)
	txn := &model.BillingTransaction{
		Base:        model.Base{ID: uuid.New(), UpdatedAt: readAt},
		Status:      model.TransactionPaid,
		TotalAmount: 350,
		AmountPaid:  350,
		PaidAt:      &now,
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT status, updated_at FROM billing_transactions WHERE id = \$1 FOR UPDATE`).
		WithArgs(txn.ID).
		WillReturnRows(sqlmock.NewRows([]string{"status", "updated_at"}).
			AddRow("pending", readAt.Add(2*time.Second)))
	mock.ExpectRollback()

	err := repo.ChangeStatus(context.Background(), txn,
		[]model.TransactionStatus{model.TransactionDraft, model.TransactionPending}, nil)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrConflict, appErr.Code)
	assert.Contains(t, appErr.Message, "modified by another request")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBillingRepository_Create_AppointmentAlreadyBilled(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewBillingRepository(db)

	txn := &model.BillingTransaction{
		TransactionCode: "TXN-20240301-ABC123",
		PatientID:       uuid.New(),
		Status:          model.TransactionPending,
		AppointmentIDs:  model.UUIDs{uuid.New()},
	}

	mock.ExpectBegin()
	mock.ExpectExec(`SELECT id FROM appointments WHERE id = ANY\(\$1\) FOR UPDATE`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT EXISTS`).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), txn)
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, 409, appErr.StatusCode())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBillingRepository_Create_WritesItems(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewBillingRepository(db)

	txn := &model.BillingTransaction{
		TransactionCode: "TXN-20240301-ABC123",
		PatientID:       uuid.New(),
		PaymentMethod:   billing.PaymentCash,
		Status:          model.TransactionDraft,
		Items: []model.BillingItem{
			{ItemType: billing.ItemConsultation, ItemName: "Consultation", Quantity: 1, UnitPrice: 350, TotalPrice: 350},
			{ItemType: billing.ItemLaboratory, ItemName: "CBC", Quantity: 1, UnitPrice: 245, TotalPrice: 245},
		},
	}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO billing_transactions`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO billing_items`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO billing_items`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Create(context.Background(), txn))
	assert.NotEqual(t, uuid.Nil, txn.ID)
	assert.Equal(t, txn.ID, txn.Items[1].TransactionID)
	assert.Equal(t, 1, txn.Items[1].Position)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBillingRepository_Delete_PaidIsRejected(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewBillingRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT status FROM billing_transactions`).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("paid"))
	mock.ExpectRollback()

	err := repo.Delete(context.Background(), uuid.New())
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrConflict, appErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPatientRepository_GetNotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPatientRepository(db)

	mock.ExpectQuery(`FROM patients WHERE id = \$1`).WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), uuid.New())
	assert.True(t, apperrors.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepository_ListFilters(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewAppointmentRepository(db)

	patientID := uuid.New()
	filters := &model.AppointmentFilters{
		Pagination:    model.Pagination{Page: 2, PageSize: 10},
		PatientID:     &patientID,
		BillingStatus: model.BillingStatusPending,
	}

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM appointments WHERE patient_id = \$1 AND billing_status = \$2`).
		WithArgs(patientID, "pending").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))
	mock.ExpectQuery(`FROM appointments WHERE patient_id = \$1 AND billing_status = \$2 ORDER BY .* LIMIT \$3 OFFSET \$4`).
		WithArgs(patientID, "pending", 10, 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "patient_id", "appointment_type", "appointment_date",
			"appointment_time", "price", "billing_status", "source", "lab_tests", "created_at", "updated_at"}).
			AddRow(uuid.New().String(), patientID.String(), "follow_up", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
				"09:30", 350.0, "pending", "walk_in", []byte(`[{"name":"CBC","price":245}]`), time.Now(), time.Now()))

	appointments, total, err := repo.List(context.Background(), filters)
	require.NoError(t, err)
	assert.Equal(t, 11, total)
	require.Len(t, appointments, 1)
	assert.Equal(t, "2024-03-01", appointments[0].AppointmentDate.String())
	assert.Equal(t, 245.0, appointments[0].LabTotal())
	assert.NoError(t, mock.ExpectationsWereMet())
}
