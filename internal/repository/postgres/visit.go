package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/model"
)

const visitColumns = `id, patient_id, appointment_id, doctor_id, nurse_id, visit_date,
		weight_kg, height_cm, temperature_c, blood_pressure, heart_rate,
		respiratory_rate, oxygen_saturation, chief_complaint, diagnosis, notes,
		status, created_at, updated_at`

func (r *visitRepository) Create(ctx context.Context, visit *model.Visit) error {
	query := `
		INSERT INTO visits (` + visitColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`
	visit.ID = uuid.New()
	visit.CreatedAt = time.Now()
	visit.UpdatedAt = visit.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		visit.ID,
		visit.PatientID,
		visit.AppointmentID,
		visit.DoctorID,
		visit.NurseID,
		visit.VisitDate,
		visit.WeightKg,
		visit.HeightCm,
		visit.TemperatureC,
		visit.BloodPressure,
		visit.HeartRate,
		visit.RespiratoryRate,
		visit.OxygenSaturation,
		visit.ChiefComplaint,
		visit.Diagnosis,
		visit.Notes,
		visit.Status,
		visit.CreatedAt,
		visit.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create visit: %w", err)
	}
	return nil
}

func (r *visitRepository) Get(ctx context.Context, id uuid.UUID) (*model.Visit, error) {
	var visit model.Visit
	if err := getOne(ctx, r.db, "visit", &visit, `SELECT `+visitColumns+` FROM visits WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &visit, nil
}

func (r *visitRepository) Update(ctx context.Context, visit *model.Visit) error {
	query := `
		UPDATE visits
		SET appointment_id = $1, doctor_id = $2, nurse_id = $3, visit_date = $4,
			weight_kg = $5, height_cm = $6, temperature_c = $7, blood_pressure = $8,
			heart_rate = $9, respiratory_rate = $10, oxygen_saturation = $11,
			chief_complaint = $12, diagnosis = $13, notes = $14, status = $15, updated_at = $16
		WHERE id = $17
	`
	visit.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		visit.AppointmentID,
		visit.DoctorID,
		visit.NurseID,
		visit.VisitDate,
		visit.WeightKg,
		visit.HeightCm,
		visit.TemperatureC,
		visit.BloodPressure,
		visit.HeartRate,
		visit.RespiratoryRate,
		visit.OxygenSaturation,
		visit.ChiefComplaint,
		visit.Diagnosis,
		visit.Notes,
		visit.Status,
		visit.UpdatedAt,
		visit.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update visit: %w", err)
	}
	return expectRows(result, "visit")
}

func (r *visitRepository) List(ctx context.Context, filters *model.VisitFilters) ([]*model.Visit, int, error) {
	var c conditions
	if filters.PatientID != nil {
		c.add("patient_id = $%d", *filters.PatientID)
	}
	if filters.AppointmentID != nil {
		c.add("appointment_id = $%d", *filters.AppointmentID)
	}
	if filters.Status != "" {
		c.add("status = $%d", filters.Status)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM visits`+c.where(), c.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count visits: %w", err)
	}

	limit, args := c.page(filters.Pagination)
	query := `SELECT ` + visitColumns + ` FROM visits` + c.where() + ` ORDER BY visit_date DESC, created_at DESC` + limit

	visits := []*model.Visit{}
	if err := r.db.SelectContext(ctx, &visits, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list visits: %w", err)
	}
	return visits, total, nil
}
