package patient

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/internal/service/audit"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/logger"
)

type Service struct {
	repo    repository.PatientRepository
	auditor *audit.Service
	logger  *logger.Logger
}

func NewService(repo repository.PatientRepository, auditor *audit.Service, logger *logger.Logger) *Service {
	return &Service{
		repo:    repo,
		auditor: auditor,
		logger:  logger,
	}
}

func (s *Service) CreatePatient(ctx context.Context, req *model.PatientRequest) (*model.Patient, error) {
	patient := &model.Patient{}
	if err := apply(patient, req); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, patient); err != nil {
		return nil, err
	}

	s.audit(ctx, model.AuditActionCreate, patient.ID, patient)
	return patient, nil
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) UpdatePatient(ctx context.Context, id uuid.UUID, req *model.PatientRequest) (*model.Patient, error) {
	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(patient, req); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, patient); err != nil {
		return nil, err
	}

	s.audit(ctx, model.AuditActionUpdate, patient.ID, patient)
	return patient, nil
}

func (s *Service) DeletePatient(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.audit(ctx, model.AuditActionDelete, id, nil)
	return nil
}

func (s *Service) ListPatients(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, int, error) {
	return s.repo.List(ctx, filters)
}

// audit failures are logged, they never fail the request.
func (s *Service) audit(ctx context.Context, action string, id uuid.UUID, changes interface{}) {
	var opts *audit.LogOptions
	if changes != nil {
		opts = &audit.LogOptions{Changes: changes}
	}
	if err := s.auditor.Log(ctx, action, model.AuditEntityPatient, id, opts); err != nil {
		s.logger.Error(err, "Failed to write patient audit log", "patient_id", id.String(), "action", action)
	}
}

func apply(p *model.Patient, req *model.PatientRequest) error {
	fields := map[string][]string{}

	seniorID := trimmed(req.SeniorCitizenID)
	if req.IsSeniorCitizen && seniorID == nil {
		fields["senior_citizen_id"] = []string{"The senior citizen id field is required when the patient is a senior citizen."}
	}

	var birthdate *model.Date
	if req.Birthdate != nil && *req.Birthdate != "" {
		d, err := model.ParseDate(*req.Birthdate)
		if err != nil {
			fields["birthdate"] = []string{"The birthdate must be a date in YYYY-MM-DD format."}
		} else {
			birthdate = &d
		}
	}
	if len(fields) > 0 {
		return apperrors.Validation(fields)
	}

	p.FirstName = strings.TrimSpace(req.FirstName)
	p.MiddleName = trimmed(req.MiddleName)
	p.LastName = strings.TrimSpace(req.LastName)
	p.Birthdate = birthdate
	p.Sex = req.Sex
	p.Phone = trimmed(req.Phone)
	p.Email = trimmed(req.Email)
	p.Address = trimmed(req.Address)
	p.IsSeniorCitizen = req.IsSeniorCitizen
	p.SeniorCitizenID = seniorID
	if !req.IsSeniorCitizen {
		p.SeniorCitizenID = nil
	}
	p.HMOProvider = trimmed(req.HMOProvider)
	p.HMOMemberID = trimmed(req.HMOMemberID)
	return nil
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
