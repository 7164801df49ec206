package appointment

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-api/internal/config"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/service/audit"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/logger"
)

type mockAppointmentRepo struct {
	mock.Mock
}

func (m *mockAppointmentRepo) Create(ctx context.Context, apt *model.Appointment) error {
	return m.Called(ctx, apt).Error(0)
}

func (m *mockAppointmentRepo) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	args := m.Called(ctx, id)
	if apt, ok := args.Get(0).(*model.Appointment); ok {
		return apt, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAppointmentRepo) GetMany(ctx context.Context, ids []uuid.UUID) ([]*model.Appointment, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]*model.Appointment), args.Error(1)
}

func (m *mockAppointmentRepo) Update(ctx context.Context, apt *model.Appointment) error {
	return m.Called(ctx, apt).Error(0)
}

func (m *mockAppointmentRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status model.BillingStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *mockAppointmentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockAppointmentRepo) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, int, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).([]*model.Appointment), args.Int(1), args.Error(2)
}

type mockPatientRepo struct {
	mock.Mock
}

func (m *mockPatientRepo) Create(ctx context.Context, p *model.Patient) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockPatientRepo) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	args := m.Called(ctx, id)
	if p, ok := args.Get(0).(*model.Patient); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockPatientRepo) Update(ctx context.Context, p *model.Patient) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockPatientRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockPatientRepo) List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, int, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).([]*model.Patient), args.Int(1), args.Error(2)
}

type mockDoctorRepo struct {
	mock.Mock
}

func (m *mockDoctorRepo) Create(ctx context.Context, d *model.Doctor) error {
	return m.Called(ctx, d).Error(0)
}

func (m *mockDoctorRepo) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	args := m.Called(ctx, id)
	if d, ok := args.Get(0).(*model.Doctor); ok {
		return d, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDoctorRepo) Update(ctx context.Context, d *model.Doctor) error {
	return m.Called(ctx, d).Error(0)
}

func (m *mockDoctorRepo) UpdateSchedule(ctx context.Context, id uuid.UUID, schedule model.Schedule) error {
	return m.Called(ctx, id, schedule).Error(0)
}

func (m *mockDoctorRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockDoctorRepo) List(ctx context.Context, filters *model.StaffFilters) ([]*model.Doctor, int, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).([]*model.Doctor), args.Int(1), args.Error(2)
}

type mockAuditRepo struct {
	mock.Mock
}

func (m *mockAuditRepo) Create(ctx context.Context, log *model.AuditLog) error {
	return m.Called(ctx, log).Error(0)
}

func (m *mockAuditRepo) List(ctx context.Context, filters *model.AuditFilters) ([]*model.AuditLog, int, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).([]*model.AuditLog), args.Int(1), args.Error(2)
}

func (m *mockAuditRepo) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

type fixture struct {
	svc      *Service
	repo     *mockAppointmentRepo
	patients *mockPatientRepo
	doctors  *mockDoctorRepo
	audits   *mockAuditRepo
}

func newFixture() *fixture {
	f := &fixture{
		repo:     &mockAppointmentRepo{},
		patients: &mockPatientRepo{},
		doctors:  &mockDoctorRepo{},
		audits:   &mockAuditRepo{},
	}
	fees := config.BillingConfig{
		Fees:       map[string]float64{"general_consultation": 500, "emergency": 1500},
		DefaultFee: 400,
	}
	f.svc = NewService(f.repo, f.patients, f.doctors, fees, audit.NewService(f.audits), logger.Nop())
	f.audits.On("Create", mock.Anything, mock.Anything).Return(nil).Maybe()
	return f
}

func TestCreateAppointment_DefaultsFee(t *testing.T) {
	f := newFixture()
	patientID := uuid.New()
	f.patients.On("Get", mock.Anything, patientID).Return(&model.Patient{Base: model.Base{ID: patientID}}, nil)
	f.repo.On("Create", mock.Anything, mock.AnythingOfType("*model.Appointment")).Return(nil)

	apt, err := f.svc.CreateAppointment(context.Background(), &model.AppointmentRequest{
		PatientID:       patientID.String(),
		AppointmentType: "emergency",
		AppointmentDate: "2024-03-20",
		AppointmentTime: "08:15",
		LabTests:        []model.LabTest{{Name: " CBC ", Price: 250}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1500.0, apt.Price)
	assert.Equal(t, model.BillingStatusPending, apt.BillingStatus)
	assert.Equal(t, model.SourceWalkIn, apt.Source)
	assert.Equal(t, "CBC", apt.LabTests[0].Name)
	assert.Equal(t, 250.0, apt.LabTotal())
}

func TestCreateAppointment_ExplicitPriceAndUnknownTypeFee(t *testing.T) {
	f := newFixture()
	patientID := uuid.New()
	f.patients.On("Get", mock.Anything, patientID).Return(&model.Patient{}, nil)
	f.repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	zero := 0.0
	apt, err := f.svc.CreateAppointment(context.Background(), &model.AppointmentRequest{
		PatientID:       patientID.String(),
		AppointmentType: "follow_up",
		AppointmentDate: "2024-03-20",
		AppointmentTime: "08:15",
		Price:           &zero,
	})
	require.NoError(t, err)
	assert.Zero(t, apt.Price)

	apt, err = f.svc.CreateAppointment(context.Background(), &model.AppointmentRequest{
		PatientID:       patientID.String(),
		AppointmentType: "follow_up",
		AppointmentDate: "2024-03-20",
		AppointmentTime: "08:15",
	})
	require.NoError(t, err)
	assert.Equal(t, 400.0, apt.Price)
}

func TestCreateAppointment_UnknownReferences(t *testing.T) {
	f := newFixture()
	patientID, doctorID := uuid.New(), uuid.New()
	f.patients.On("Get", mock.Anything, patientID).Return(nil, apperrors.NotFound("patient", nil))
	f.doctors.On("Get", mock.Anything, doctorID).Return(nil, apperrors.NotFound("doctor", nil))

	specialist := doctorID.String()
	_, err := f.svc.CreateAppointment(context.Background(), &model.AppointmentRequest{
		PatientID:       patientID.String(),
		SpecialistID:    &specialist,
		AppointmentType: "check_up",
		AppointmentDate: "2024-03-20",
		AppointmentTime: "08:15",
	})
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Contains(t, appErr.Fields, "patient_id")
	assert.Contains(t, appErr.Fields, "specialist_id")
	f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUpdateStatus_AnyTransition(t *testing.T) {
	f := newFixture()
	apt := &model.Appointment{Base: model.Base{ID: uuid.New()}, BillingStatus: model.BillingStatusCompleted}
	f.repo.On("Get", mock.Anything, apt.ID).Return(apt, nil)
	f.repo.On("UpdateStatus", mock.Anything, apt.ID, model.BillingStatusPending).Return(nil)

	updated, err := f.svc.UpdateStatus(context.Background(), apt.ID, model.BillingStatusPending)
	require.NoError(t, err)
	assert.Equal(t, model.BillingStatusPending, updated.BillingStatus)
	f.repo.AssertExpectations(t)
}
