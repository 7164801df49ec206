package staff

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
)

// Service manages doctors and nurses. Single doctor reads are served from an
// in-process cache that every doctor write invalidates.
type Service struct {
	doctors repository.DoctorRepository
	nurses  repository.NurseRepository
	cache   *cache.Cache
}

type CacheConfig struct {
	TTL             time.Duration
	CleanupInterval time.Duration
}

func NewService(doctors repository.DoctorRepository, nurses repository.NurseRepository, cfg CacheConfig) *Service {
	if cfg.TTL <= 0 {
		cfg.TTL = 5 * time.Minute
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = 10 * time.Minute
	}
	return &Service{
		doctors: doctors,
		nurses:  nurses,
		cache:   cache.New(cfg.TTL, cfg.CleanupInterval),
	}
}

func doctorKey(id uuid.UUID) string {
	return "doctor:" + id.String()
}

func (s *Service) CreateDoctor(ctx context.Context, req *model.DoctorRequest) (*model.Doctor, error) {
	doctor := &model.Doctor{IsActive: true, ScheduleData: model.Schedule{}}
	applyDoctor(doctor, req)
	if err := s.doctors.Create(ctx, doctor); err != nil {
		return nil, err
	}
	return doctor, nil
}

func (s *Service) GetDoctor(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	if cached, ok := s.cache.Get(doctorKey(id)); ok {
		doctor := *cached.(*model.Doctor)
		return &doctor, nil
	}

	doctor, err := s.doctors.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	copied := *doctor
	s.cache.SetDefault(doctorKey(id), &copied)
	return doctor, nil
}

func (s *Service) UpdateDoctor(ctx context.Context, id uuid.UUID, req *model.DoctorRequest) (*model.Doctor, error) {
	doctor, err := s.doctors.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	applyDoctor(doctor, req)
	if err := s.doctors.Update(ctx, doctor); err != nil {
		return nil, err
	}
	s.cache.Delete(doctorKey(id))
	return doctor, nil
}

// UpdateSchedule stores an already normalized schedule.
func (s *Service) UpdateSchedule(ctx context.Context, id uuid.UUID, schedule model.Schedule) error {
	if err := s.doctors.UpdateSchedule(ctx, id, schedule); err != nil {
		return err
	}
	s.cache.Delete(doctorKey(id))
	return nil
}

func (s *Service) DeleteDoctor(ctx context.Context, id uuid.UUID) error {
	if err := s.doctors.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Delete(doctorKey(id))
	return nil
}

func (s *Service) ListDoctors(ctx context.Context, filters *model.StaffFilters) ([]*model.Doctor, int, error) {
	return s.doctors.List(ctx, filters)
}

func (s *Service) CreateNurse(ctx context.Context, req *model.NurseRequest) (*model.Nurse, error) {
	nurse := &model.Nurse{IsActive: true}
	applyNurse(nurse, req)
	if err := s.nurses.Create(ctx, nurse); err != nil {
		return nil, err
	}
	return nurse, nil
}

func (s *Service) GetNurse(ctx context.Context, id uuid.UUID) (*model.Nurse, error) {
	return s.nurses.Get(ctx, id)
}

func (s *Service) UpdateNurse(ctx context.Context, id uuid.UUID, req *model.NurseRequest) (*model.Nurse, error) {
	nurse, err := s.nurses.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	applyNurse(nurse, req)
	if err := s.nurses.Update(ctx, nurse); err != nil {
		return nil, err
	}
	return nurse, nil
}

func (s *Service) DeleteNurse(ctx context.Context, id uuid.UUID) error {
	return s.nurses.Delete(ctx, id)
}

func (s *Service) ListNurses(ctx context.Context, filters *model.StaffFilters) ([]*model.Nurse, int, error) {
	return s.nurses.List(ctx, filters)
}

func applyDoctor(d *model.Doctor, req *model.DoctorRequest) {
	d.FirstName = strings.TrimSpace(req.FirstName)
	d.LastName = strings.TrimSpace(req.LastName)
	d.Specialization = strings.TrimSpace(req.Specialization)
	d.LicenseNumber = strings.TrimSpace(req.LicenseNumber)
	d.Email = req.Email
	d.Phone = req.Phone
	if req.ConsultationFee != nil {
		d.ConsultationFee = *req.ConsultationFee
	}
	if req.IsActive != nil {
		d.IsActive = *req.IsActive
	}
}

func applyNurse(n *model.Nurse, req *model.NurseRequest) {
	n.FirstName = strings.TrimSpace(req.FirstName)
	n.LastName = strings.TrimSpace(req.LastName)
	n.LicenseNumber = strings.TrimSpace(req.LicenseNumber)
	n.Email = req.Email
	n.Phone = req.Phone
	n.Department = req.Department
	if req.IsActive != nil {
		n.IsActive = *req.IsActive
	}
}
