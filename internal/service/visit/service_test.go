package visit

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-api/internal/model"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
)

type mockVisitRepo struct {
	mock.Mock
}

func (m *mockVisitRepo) Create(ctx context.Context, v *model.Visit) error {
	return m.Called(ctx, v).Error(0)
}

func (m *mockVisitRepo) Get(ctx context.Context, id uuid.UUID) (*model.Visit, error) {
	args := m.Called(ctx, id)
	if v, ok := args.Get(0).(*model.Visit); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockVisitRepo) Update(ctx context.Context, v *model.Visit) error {
	return m.Called(ctx, v).Error(0)
}

func (m *mockVisitRepo) List(ctx context.Context, filters *model.VisitFilters) ([]*model.Visit, int, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).([]*model.Visit), args.Int(1), args.Error(2)
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

func TestCreateVisit(t *testing.T) {
	visits, patients := &mockVisitRepo{}, &mockPatientRepo{}
	svc := NewService(visits, patients)

	patientID := uuid.New()
	appointmentID := uuid.NewString()
	patients.On("Get", mock.Anything, patientID).Return(&model.Patient{}, nil)
	visits.On("Create", mock.Anything, mock.AnythingOfType("*model.Visit")).Return(nil)

	temp := 36.8
	bp := " 120/80 "
	visit, err := svc.CreateVisit(context.Background(), &model.VisitRequest{
		PatientID:     patientID.String(),
		AppointmentID: &appointmentID,
		VisitDate:     "2024-03-20",
		TemperatureC:  &temp,
		BloodPressure: &bp,
		Status:        "active",
	})
	require.NoError(t, err)
	assert.Equal(t, model.VisitStatusActive, visit.Status)
	assert.Equal(t, "120/80", *visit.BloodPressure)
	assert.Equal(t, appointmentID, visit.AppointmentID.String())
	assert.Nil(t, visit.WeightKg)
}

func TestCreateVisit_UnknownPatient(t *testing.T) {
	visits, patients := &mockVisitRepo{}, &mockPatientRepo{}
	svc := NewService(visits, patients)

	patientID := uuid.New()
	patients.On("Get", mock.Anything, patientID).Return(nil, apperrors.NotFound("patient", nil))

	_, err := svc.CreateVisit(context.Background(), &model.VisitRequest{
		PatientID: patientID.String(),
		VisitDate: "2024-03-20",
		Status:    "active",
	})
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Contains(t, appErr.Fields, "patient_id")
}
