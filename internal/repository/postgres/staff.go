package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/model"
)

const doctorColumns = `id, first_name, last_name, specialization, license_number, email, phone,
		consultation_fee, is_active, schedule_data, created_at, updated_at`

const nurseColumns = `id, first_name, last_name, license_number, email, phone, department,
		is_active, created_at, updated_at`

func staffConditions(filters *model.StaffFilters, extra ...string) *conditions {
	c := &conditions{}
	if filters.Active != nil {
		c.add("is_active = $%d", *filters.Active)
	}
	if filters.Search != "" {
		clause := `(first_name ILIKE $%[1]d OR last_name ILIKE $%[1]d OR license_number ILIKE $%[1]d`
		for _, col := range extra {
			clause += ` OR ` + col + ` ILIKE $%[1]d`
		}
		c.add(clause+`)`, "%"+filters.Search+"%")
	}
	return c
}

func (r *doctorRepository) Create(ctx context.Context, doctor *model.Doctor) error {
	query := `
		INSERT INTO doctors (` + doctorColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	doctor.ID = uuid.New()
	doctor.CreatedAt = time.Now()
	doctor.UpdatedAt = doctor.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		doctor.ID,
		doctor.FirstName,
		doctor.LastName,
		doctor.Specialization,
		doctor.LicenseNumber,
		doctor.Email,
		doctor.Phone,
		doctor.ConsultationFee,
		doctor.IsActive,
		doctor.ScheduleData,
		doctor.CreatedAt,
		doctor.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create doctor: %w", err)
	}
	return nil
}

func (r *doctorRepository) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	var doctor model.Doctor
	if err := getOne(ctx, r.db, "doctor", &doctor, `SELECT `+doctorColumns+` FROM doctors WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &doctor, nil
}

func (r *doctorRepository) Update(ctx context.Context, doctor *model.Doctor) error {
	query := `
		UPDATE doctors
		SET first_name = $1, last_name = $2, specialization = $3, license_number = $4,
			email = $5, phone = $6, consultation_fee = $7, is_active = $8, updated_at = $9
		WHERE id = $10
	`
	doctor.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		doctor.FirstName,
		doctor.LastName,
		doctor.Specialization,
		doctor.LicenseNumber,
		doctor.Email,
		doctor.Phone,
		doctor.ConsultationFee,
		doctor.IsActive,
		doctor.UpdatedAt,
		doctor.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update doctor: %w", err)
	}
	return expectRows(result, "doctor")
}

func (r *doctorRepository) UpdateSchedule(ctx context.Context, id uuid.UUID, schedule model.Schedule) error {
	query := `UPDATE doctors SET schedule_data = $1, updated_at = NOW() WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, schedule, id)
	if err != nil {
		return fmt.Errorf("failed to update doctor schedule: %w", err)
	}
	return expectRows(result, "doctor")
}

func (r *doctorRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM doctors WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete doctor: %w", err)
	}
	return expectRows(result, "doctor")
}

func (r *doctorRepository) List(ctx context.Context, filters *model.StaffFilters) ([]*model.Doctor, int, error) {
	c := staffConditions(filters, "specialization")

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM doctors`+c.where(), c.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count doctors: %w", err)
	}

	limit, args := c.page(filters.Pagination)
	query := `SELECT ` + doctorColumns + ` FROM doctors` + c.where() + ` ORDER BY last_name, first_name` + limit

	doctors := []*model.Doctor{}
	if err := r.db.SelectContext(ctx, &doctors, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list doctors: %w", err)
	}
	return doctors, total, nil
}

func (r *nurseRepository) Create(ctx context.Context, nurse *model.Nurse) error {
	query := `
		INSERT INTO nurses (` + nurseColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	nurse.ID = uuid.New()
	nurse.CreatedAt = time.Now()
	nurse.UpdatedAt = nurse.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		nurse.ID,
		nurse.FirstName,
		nurse.LastName,
		nurse.LicenseNumber,
		nurse.Email,
		nurse.Phone,
		nurse.Department,
		nurse.IsActive,
		nurse.CreatedAt,
		nurse.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create nurse: %w", err)
	}
	return nil
}

func (r *nurseRepository) Get(ctx context.Context, id uuid.UUID) (*model.Nurse, error) {
	var nurse model.Nurse
	if err := getOne(ctx, r.db, "nurse", &nurse, `SELECT `+nurseColumns+` FROM nurses WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &nurse, nil
}

func (r *nurseRepository) Update(ctx context.Context, nurse *model.Nurse) error {
	query := `
		UPDATE nurses
		SET first_name = $1, last_name = $2, license_number = $3, email = $4,
			phone = $5, department = $6, is_active = $7, updated_at = $8
		WHERE id = $9
	`
	nurse.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		nurse.FirstName,
		nurse.LastName,
		nurse.LicenseNumber,
		nurse.Email,
		nurse.Phone,
		nurse.Department,
		nurse.IsActive,
		nurse.UpdatedAt,
		nurse.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update nurse: %w", err)
	}
	return expectRows(result, "nurse")
}

func (r *nurseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM nurses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete nurse: %w", err)
	}
	return expectRows(result, "nurse")
}

func (r *nurseRepository) List(ctx context.Context, filters *model.StaffFilters) ([]*model.Nurse, int, error) {
	c := staffConditions(filters, "department")

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM nurses`+c.where(), c.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count nurses: %w", err)
	}

	limit, args := c.page(filters.Pagination)
	query := `SELECT ` + nurseColumns + ` FROM nurses` + c.where() + ` ORDER BY last_name, first_name` + limit

	nurses := []*model.Nurse{}
	if err := r.db.SelectContext(ctx, &nurses, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list nurses: %w", err)
	}
	return nurses, total, nil
}
