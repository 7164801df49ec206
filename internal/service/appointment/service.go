package appointment

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/config"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/internal/service/audit"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/logger"
)

type Service struct {
	repo     repository.AppointmentRepository
	patients repository.PatientRepository
	doctors  repository.DoctorRepository
	fees     config.BillingConfig
	auditor  *audit.Service
	logger   *logger.Logger
}

func NewService(
	repo repository.AppointmentRepository,
	patients repository.PatientRepository,
	doctors repository.DoctorRepository,
	fees config.BillingConfig,
	auditor *audit.Service,
	logger *logger.Logger,
) *Service {
	return &Service{
		repo:     repo,
		patients: patients,
		doctors:  doctors,
		fees:     fees,
		auditor:  auditor,
		logger:   logger,
	}
}

func (s *Service) CreateAppointment(ctx context.Context, req *model.AppointmentRequest) (*model.Appointment, error) {
	apt := &model.Appointment{
		BillingStatus: model.BillingStatusPending,
		Source:        model.SourceWalkIn,
	}
	if err := s.apply(ctx, apt, req); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, apt); err != nil {
		return nil, err
	}
	s.audit(ctx, model.AuditActionCreate, apt.ID, apt)
	return apt, nil
}

func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) ListAppointments(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) UpdateAppointment(ctx context.Context, id uuid.UUID, req *model.AppointmentRequest) (*model.Appointment, error) {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, apt, req); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, apt); err != nil {
		return nil, err
	}
	s.audit(ctx, model.AuditActionUpdate, apt.ID, apt)
	return apt, nil
}

// UpdateStatus overwrites the billing status with any enum member.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status model.BillingStatus) (*model.Appointment, error) {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := apt.BillingStatus

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	apt.BillingStatus = status
	s.audit(ctx, model.AuditActionUpdate, id, map[string]interface{}{
		"billing_status": map[string]model.BillingStatus{"from": previous, "to": status},
	})
	return apt, nil
}

func (s *Service) DeleteAppointment(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.audit(ctx, model.AuditActionDelete, id, nil)
	return nil
}

func (s *Service) audit(ctx context.Context, action string, id uuid.UUID, changes interface{}) {
	var opts *audit.LogOptions
	if changes != nil {
		opts = &audit.LogOptions{Changes: changes}
	}
	if err := s.auditor.Log(ctx, action, model.AuditEntityAppointment, id, opts); err != nil {
		s.logger.Error(err, "Failed to write appointment audit log", "appointment_id", id.String(), "action", action)
	}
}

func (s *Service) apply(ctx context.Context, apt *model.Appointment, req *model.AppointmentRequest) error {
	fields := map[string][]string{}

	patientID, ok, err := lookup(ctx, req.PatientID, func(ctx context.Context, id uuid.UUID) error {
		_, err := s.patients.Get(ctx, id)
		return err
	})
	if err != nil {
		return err
	}
	if !ok {
		fields["patient_id"] = []string{"The selected patient id is invalid."}
	}

	var specialistID *uuid.UUID
	if req.SpecialistID != nil && *req.SpecialistID != "" {
		id, ok, err := lookup(ctx, *req.SpecialistID, func(ctx context.Context, id uuid.UUID) error {
			_, err := s.doctors.Get(ctx, id)
			return err
		})
		if err != nil {
			return err
		}
		if ok {
			specialistID = &id
		} else {
			fields["specialist_id"] = []string{"The selected specialist id is invalid."}
		}
	}

	date, err := model.ParseDate(req.AppointmentDate)
	if err != nil {
		fields["appointment_date"] = []string{"The appointment date must be a date in YYYY-MM-DD format."}
	}
	if len(fields) > 0 {
		return apperrors.Validation(fields)
	}

	apt.PatientID = patientID
	apt.SpecialistID = specialistID
	apt.AppointmentType = model.AppointmentType(req.AppointmentType)
	apt.AppointmentDate = date
	apt.AppointmentTime = req.AppointmentTime
	if req.Price != nil {
		apt.Price = *req.Price
	} else {
		apt.Price = s.fees.FeeFor(req.AppointmentType)
	}
	if req.BillingStatus != "" {
		apt.BillingStatus = model.BillingStatus(req.BillingStatus)
	}
	if req.Source != "" {
		apt.Source = model.AppointmentSource(req.Source)
	}
	apt.Notes = req.Notes
	apt.LabTests = make(model.LabTests, 0, len(req.LabTests))
	for _, lab := range req.LabTests {
		apt.LabTests = append(apt.LabTests, model.LabTest{Name: strings.TrimSpace(lab.Name), Price: lab.Price})
	}
	return nil
}

// lookup parses raw and checks the referenced row exists. Only unexpected
// repository errors are returned as err.
func lookup(ctx context.Context, raw string, get func(context.Context, uuid.UUID) error) (uuid.UUID, bool, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false, nil
	}
	if err := get(ctx, id); err != nil {
		if apperrors.IsNotFound(err) {
			return id, false, nil
		}
		return id, false, err
	}
	return id, true, nil
}
