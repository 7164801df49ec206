package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/jwalitptl/clinic-api/internal/model"
)

const appointmentColumns = `id, patient_id, specialist_id, appointment_type, appointment_date,
		appointment_time, price, billing_status, source, notes, lab_tests,
		created_at, updated_at`

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			id, patient_id, specialist_id, appointment_type, appointment_date,
			appointment_time, price, billing_status, source, notes, lab_tests,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	appointment.ID = uuid.New()
	appointment.CreatedAt = time.Now()
	appointment.UpdatedAt = appointment.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		appointment.ID,
		appointment.PatientID,
		appointment.SpecialistID,
		appointment.AppointmentType,
		appointment.AppointmentDate,
		appointment.AppointmentTime,
		appointment.Price,
		appointment.BillingStatus,
		appointment.Source,
		appointment.Notes,
		appointment.LabTests,
		appointment.CreatedAt,
		appointment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`

	var appointment model.Appointment
	if err := getOne(ctx, r.db, "appointment", &appointment, query, id); err != nil {
		return nil, err
	}
	return &appointment, nil
}

func (r *appointmentRepository) GetMany(ctx context.Context, ids []uuid.UUID) ([]*model.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE id = ANY($1)
		ORDER BY appointment_date, appointment_time
	`
	appointments := []*model.Appointment{}
	if err := r.db.SelectContext(ctx, &appointments, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("failed to get appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *model.Appointment) error {
	query := `
		UPDATE appointments
		SET patient_id = $1, specialist_id = $2, appointment_type = $3, appointment_date = $4,
			appointment_time = $5, price = $6, billing_status = $7, source = $8, notes = $9,
			lab_tests = $10, updated_at = $11
		WHERE id = $12
	`
	appointment.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		appointment.PatientID,
		appointment.SpecialistID,
		appointment.AppointmentType,
		appointment.AppointmentDate,
		appointment.AppointmentTime,
		appointment.Price,
		appointment.BillingStatus,
		appointment.Source,
		appointment.Notes,
		appointment.LabTests,
		appointment.UpdatedAt,
		appointment.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}
	return expectRows(result, "appointment")
}

func (r *appointmentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.BillingStatus) error {
	query := `UPDATE appointments SET billing_status = $1, updated_at = NOW() WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update appointment status: %w", err)
	}
	return expectRows(result, "appointment")
}

func (r *appointmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}
	return expectRows(result, "appointment")
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, int, error) {
	var c conditions
	if filters.PatientID != nil {
		c.add("patient_id = $%d", *filters.PatientID)
	}
	if filters.SpecialistID != nil {
		c.add("specialist_id = $%d", *filters.SpecialistID)
	}
	if filters.BillingStatus != "" {
		c.add("billing_status = $%d", filters.BillingStatus)
	}
	if filters.Source != "" {
		c.add("source = $%d", filters.Source)
	}
	if filters.DateFrom != nil {
		c.add("appointment_date >= $%d", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		c.add("appointment_date <= $%d", *filters.DateTo)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM appointments`+c.where(), c.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count appointments: %w", err)
	}

	limit, args := c.page(filters.Pagination)
	query := `SELECT ` + appointmentColumns + ` FROM appointments` + c.where() +
		` ORDER BY appointment_date DESC, appointment_time DESC` + limit

	appointments := []*model.Appointment{}
	if err := r.db.SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, total, nil
}
