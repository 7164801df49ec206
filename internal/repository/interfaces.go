package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/model"
)

// All repository interfaces in one file
type (
	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
		Update(ctx context.Context, patient *model.Patient) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, int, error)
	}

	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		GetMany(ctx context.Context, ids []uuid.UUID) ([]*model.Appointment, error)
		Update(ctx context.Context, appointment *model.Appointment) error
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.BillingStatus) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, int, error)
	}

	VisitRepository interface {
		Create(ctx context.Context, visit *model.Visit) error
		Get(ctx context.Context, id uuid.UUID) (*model.Visit, error)
		Update(ctx context.Context, visit *model.Visit) error
		List(ctx context.Context, filters *model.VisitFilters) ([]*model.Visit, int, error)
	}

	DoctorRepository interface {
		Create(ctx context.Context, doctor *model.Doctor) error
		Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
		Update(ctx context.Context, doctor *model.Doctor) error
		UpdateSchedule(ctx context.Context, id uuid.UUID, schedule model.Schedule) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.StaffFilters) ([]*model.Doctor, int, error)
	}

	NurseRepository interface {
		Create(ctx context.Context, nurse *model.Nurse) error
		Get(ctx context.Context, id uuid.UUID) (*model.Nurse, error)
		Update(ctx context.Context, nurse *model.Nurse) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.StaffFilters) ([]*model.Nurse, int, error)
	}

	BillingRepository interface {
		// Create inserts the transaction and its items. Appointments already
		// held by an active transaction make it fail with a conflict.
		Create(ctx context.Context, txn *model.BillingTransaction) error
		Get(ctx context.Context, id uuid.UUID) (*model.BillingTransaction, error)
		List(ctx context.Context, filters *model.TransactionFilters) ([]*model.BillingTransaction, int, error)
		// Update replaces amounts and items while the row is still editable.
		Update(ctx context.Context, txn *model.BillingTransaction) error
		Delete(ctx context.Context, id uuid.UUID) error
		// ChangeStatus moves txn to txn.Status only if the stored status is one
		// of from. Paying also completes the linked appointments.
		ChangeStatus(ctx context.Context, txn *model.BillingTransaction, from []model.TransactionStatus, audit *model.AuditLog) error
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingEventsWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errorMessage *string, retryAt *time.Time) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}

	AuditRepository interface {
		Create(ctx context.Context, log *model.AuditLog) error
		List(ctx context.Context, filters *model.AuditFilters) ([]*model.AuditLog, int, error)
		DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
	}
)
