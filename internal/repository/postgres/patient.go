package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/model"
)

const patientColumns = `id, patient_no, first_name, middle_name, last_name, birthdate, sex,
		phone, email, address, is_senior_citizen, senior_citizen_id,
		hmo_provider, hmo_member_id, created_at, updated_at`

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	query := `
		INSERT INTO patients (
			id, patient_no, first_name, middle_name, last_name, birthdate, sex,
			phone, email, address, is_senior_citizen, senior_citizen_id,
			hmo_provider, hmo_member_id, created_at, updated_at
		) VALUES (
			$1, 'PT-' || to_char(NOW(), 'YYYY') || '-' || lpad(nextval('patient_no_seq')::text, 6, '0'),
			$2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15
		)
		RETURNING patient_no
	`
	patient.ID = uuid.New()
	patient.CreatedAt = time.Now()
	patient.UpdatedAt = patient.CreatedAt

	err := r.db.GetContext(ctx, &patient.PatientNo, query,
		patient.ID,
		patient.FirstName,
		patient.MiddleName,
		patient.LastName,
		patient.Birthdate,
		patient.Sex,
		patient.Phone,
		patient.Email,
		patient.Address,
		patient.IsSeniorCitizen,
		patient.SeniorCitizenID,
		patient.HMOProvider,
		patient.HMOMemberID,
		patient.CreatedAt,
		patient.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create patient: %w", err)
	}
	return nil
}

func (r *patientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients WHERE id = $1`

	var patient model.Patient
	if err := getOne(ctx, r.db, "patient", &patient, query, id); err != nil {
		return nil, err
	}
	return &patient, nil
}

func (r *patientRepository) Update(ctx context.Context, patient *model.Patient) error {
	query := `
		UPDATE patients
		SET first_name = $1, middle_name = $2, last_name = $3, birthdate = $4, sex = $5,
			phone = $6, email = $7, address = $8, is_senior_citizen = $9,
			senior_citizen_id = $10, hmo_provider = $11, hmo_member_id = $12, updated_at = $13
		WHERE id = $14
	`
	patient.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		patient.FirstName,
		patient.MiddleName,
		patient.LastName,
		patient.Birthdate,
		patient.Sex,
		patient.Phone,
		patient.Email,
		patient.Address,
		patient.IsSeniorCitizen,
		patient.SeniorCitizenID,
		patient.HMOProvider,
		patient.HMOMemberID,
		patient.UpdatedAt,
		patient.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update patient: %w", err)
	}
	return expectRows(result, "patient")
}

func (r *patientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
	}
	return expectRows(result, "patient")
}

func (r *patientRepository) List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, int, error) {
	var c conditions
	if filters.Search != "" {
		c.add(`(first_name ILIKE $%[1]d OR last_name ILIKE $%[1]d OR patient_no ILIKE $%[1]d)`, "%"+filters.Search+"%")
	}
	if filters.SeniorCitizen != nil {
		c.add("is_senior_citizen = $%d", *filters.SeniorCitizen)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM patients`+c.where(), c.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count patients: %w", err)
	}

	limit, args := c.page(filters.Pagination)
	query := `SELECT ` + patientColumns + ` FROM patients` + c.where() + ` ORDER BY last_name, first_name` + limit

	patients := []*model.Patient{}
	if err := r.db.SelectContext(ctx, &patients, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, total, nil
}
