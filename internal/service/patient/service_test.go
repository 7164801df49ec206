package patient

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/service/audit"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/logger"
)

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

func strPtr(s string) *string { return &s }

func newService() (*Service, *mockPatientRepo, *mockAuditRepo) {
	repo := &mockPatientRepo{}
	audits := &mockAuditRepo{}
	return NewService(repo, audit.NewService(audits), logger.Nop()), repo, audits
}

func TestCreatePatient(t *testing.T) {
	svc, repo, audits := newService()
	repo.On("Create", mock.Anything, mock.AnythingOfType("*model.Patient")).Return(nil)
	audits.On("Create", mock.Anything, mock.MatchedBy(func(l *model.AuditLog) bool {
		return l.Action == model.AuditActionCreate && l.EntityType == model.AuditEntityPatient
	})).Return(nil)

	p, err := svc.CreatePatient(context.Background(), &model.PatientRequest{
		FirstName:       " Lola ",
		LastName:        "Reyes",
		Birthdate:       strPtr("1950-06-01"),
		Email:           strPtr(""),
		IsSeniorCitizen: true,
		SeniorCitizenID: strPtr("SC-0001"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Lola", p.FirstName)
	assert.Nil(t, p.Email)
	require.NotNil(t, p.Birthdate)
	assert.Equal(t, "1950-06-01", p.Birthdate.String())
	assert.Equal(t, "SC-0001", *p.SeniorCitizenID)
	repo.AssertExpectations(t)
	audits.AssertExpectations(t)
}

func TestCreatePatient_AuditFailureIgnored(t *testing.T) {
	svc, repo, audits := newService()
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	audits.On("Create", mock.Anything, mock.Anything).Return(errors.New("db down"))

	_, err := svc.CreatePatient(context.Background(), &model.PatientRequest{FirstName: "Juan", LastName: "Cruz"})
	assert.NoError(t, err)
}

func TestUpdatePatient_ClearsSeniorIDWhenNotSenior(t *testing.T) {
	svc, repo, audits := newService()
	existing := &model.Patient{
		Base:            model.Base{ID: uuid.New()},
		FirstName:       "Juan",
		LastName:        "Cruz",
		IsSeniorCitizen: true,
		SeniorCitizenID: strPtr("SC-1"),
	}
	repo.On("Get", mock.Anything, existing.ID).Return(existing, nil)
	repo.On("Update", mock.Anything, existing).Return(nil)
	audits.On("Create", mock.Anything, mock.Anything).Return(nil)

	p, err := svc.UpdatePatient(context.Background(), existing.ID, &model.PatientRequest{
		FirstName:       "Juan",
		LastName:        "Cruz",
		SeniorCitizenID: strPtr("SC-1"),
	})
	require.NoError(t, err)
	assert.False(t, p.IsSeniorCitizen)
	assert.Nil(t, p.SeniorCitizenID)
}

func TestCreatePatient_SeniorRequiresID(t *testing.T) {
	svc, repo, _ := newService()

	_, err := svc.CreatePatient(context.Background(), &model.PatientRequest{
		FirstName:       "Lola",
		LastName:        "Reyes",
		IsSeniorCitizen: true,
		SeniorCitizenID: strPtr("   "),
	})
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Contains(t, appErr.Fields, "senior_citizen_id")
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
