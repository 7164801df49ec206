package visit

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
)

// Service records visits. Field ranges are enforced by the binding tags on
// model.VisitRequest before a request reaches it.
type Service struct {
	repo     repository.VisitRepository
	patients repository.PatientRepository
}

func NewService(repo repository.VisitRepository, patients repository.PatientRepository) *Service {
	return &Service{repo: repo, patients: patients}
}

func (s *Service) CreateVisit(ctx context.Context, req *model.VisitRequest) (*model.Visit, error) {
	visit := &model.Visit{}
	if err := s.apply(ctx, visit, req); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, visit); err != nil {
		return nil, err
	}
	return visit, nil
}

func (s *Service) GetVisit(ctx context.Context, id uuid.UUID) (*model.Visit, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) UpdateVisit(ctx context.Context, id uuid.UUID, req *model.VisitRequest) (*model.Visit, error) {
	visit, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, visit, req); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, visit); err != nil {
		return nil, err
	}
	return visit, nil
}

func (s *Service) ListVisits(ctx context.Context, filters *model.VisitFilters) ([]*model.Visit, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) apply(ctx context.Context, v *model.Visit, req *model.VisitRequest) error {
	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		return apperrors.FieldError("patient_id", "The patient id must be a valid identifier.")
	}
	if _, err := s.patients.Get(ctx, patientID); err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.FieldError("patient_id", "The selected patient id is invalid.")
		}
		return err
	}

	date, err := model.ParseDate(req.VisitDate)
	if err != nil {
		return apperrors.FieldError("visit_date", "The visit date must be a date in YYYY-MM-DD format.")
	}

	v.PatientID = patientID
	v.AppointmentID = optionalID(req.AppointmentID)
	v.DoctorID = optionalID(req.DoctorID)
	v.NurseID = optionalID(req.NurseID)
	v.VisitDate = date
	v.WeightKg = req.WeightKg
	v.HeightCm = req.HeightCm
	v.TemperatureC = req.TemperatureC
	v.BloodPressure = trimmed(req.BloodPressure)
	v.HeartRate = req.HeartRate
	v.RespiratoryRate = req.RespiratoryRate
	v.OxygenSaturation = req.OxygenSaturation
	v.ChiefComplaint = trimmed(req.ChiefComplaint)
	v.Diagnosis = trimmed(req.Diagnosis)
	v.Notes = trimmed(req.Notes)
	v.Status = model.VisitStatus(req.Status)
	return nil
}

// optionalID expects a value already checked by the uuid binding rule.
func optionalID(raw *string) *uuid.UUID {
	if raw == nil || *raw == "" {
		return nil
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		return nil
	}
	return &id
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
