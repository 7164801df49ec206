package visit

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/service/visit"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/event"
	"github.com/jwalitptl/clinic-api/pkg/validator"
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

type fakeRecorder struct {
	events []event.EventType
}

func (r *fakeRecorder) Record(_ context.Context, eventType event.EventType, _ []byte) error {
	r.events = append(r.events, eventType)
	return nil
}

type response struct {
	Status  string              `json:"status"`
	Message string              `json:"message"`
	Data    json.RawMessage     `json:"data"`
	Errors  map[string][]string `json:"errors"`
}

type testEnv struct {
	router   *gin.Engine
	repo     *mockVisitRepo
	patients *mockPatientRepo
	recorder *fakeRecorder
}

func setup() *testEnv {
	gin.SetMode(gin.TestMode)
	validator.RegisterGin()

	env := &testEnv{
		repo:     &mockVisitRepo{},
		patients: &mockPatientRepo{},
		recorder: &fakeRecorder{},
	}
	env.router = gin.New()
	NewHandler(visit.NewService(env.repo, env.patients)).
		RegisterRoutesWithEvents(env.router.Group("/api/v1"), event.NewEventTrackerMiddleware(env.recorder))
	return env
}

func do(t *testing.T, r *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, response) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func TestCreateVisit(t *testing.T) {
	env := setup()
	patientID := uuid.New()
	env.patients.On("Get", mock.Anything, patientID).Return(&model.Patient{Base: model.Base{ID: patientID}}, nil)
	env.repo.On("Create", mock.Anything, mock.AnythingOfType("*model.Visit")).Return(nil)

	w, resp := do(t, env.router, http.MethodPost, "/api/v1/visits", gin.H{
		"patient_id":     patientID.String(),
		"visit_date":     "2024-03-15",
		"weight_kg":      500,
		"height_cm":      0,
		"blood_pressure": "120/80",
		"diagnosis":      "  ",
		"status":         "active",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var v model.Visit
	require.NoError(t, json.Unmarshal(resp.Data, &v))
	require.NotNil(t, v.WeightKg)
	assert.Equal(t, 500.0, *v.WeightKg)
	require.NotNil(t, v.HeightCm)
	assert.Equal(t, 0.0, *v.HeightCm)
	assert.Nil(t, v.Diagnosis)
	assert.Equal(t, model.VisitStatusActive, v.Status)
	assert.Equal(t, []event.EventType{event.VisitCreate}, env.recorder.events)
}

func TestCreateVisit_MeasurementsOutOfRange(t *testing.T) {
	env := setup()

	w, resp := do(t, env.router, http.MethodPost, "/api/v1/visits", gin.H{
		"patient_id":        uuid.NewString(),
		"visit_date":        "2024-03-15",
		"weight_kg":         500.5,
		"height_cm":         301,
		"temperature_c":     29.9,
		"oxygen_saturation": 101,
		"blood_pressure":    "high",
		"status":            "active",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, []string{"The weight kg must not be greater than 500."}, resp.Errors["weight_kg"])
	assert.Equal(t, []string{"The height cm must not be greater than 300."}, resp.Errors["height_cm"])
	assert.Contains(t, resp.Errors, "temperature_c")
	assert.Contains(t, resp.Errors, "oxygen_saturation")
	assert.Contains(t, resp.Errors, "blood_pressure")
	assert.NotContains(t, resp.Errors, "patient_id")
	assert.Empty(t, env.recorder.events)
	env.patients.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	env.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateVisit_NegativeWeight(t *testing.T) {
	env := setup()

	w, resp := do(t, env.router, http.MethodPost, "/api/v1/visits", gin.H{
		"patient_id": uuid.NewString(),
		"visit_date": "2024-03-15",
		"weight_kg":  -1,
		"status":     "completed",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, resp.Errors, "weight_kg")
	assert.NotContains(t, resp.Errors, "height_cm")
}

func TestCreateVisit_UnknownPatient(t *testing.T) {
	env := setup()
	patientID := uuid.New()
	env.patients.On("Get", mock.Anything, patientID).Return(nil, apperrors.NotFound("patient", nil))

	w, resp := do(t, env.router, http.MethodPost, "/api/v1/visits", gin.H{
		"patient_id": patientID.String(),
		"visit_date": "2024-03-15",
		"status":     "active",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, []string{"The selected patient id is invalid."}, resp.Errors["patient_id"])
	env.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUpdateVisit(t *testing.T) {
	env := setup()
	id := uuid.New()
	patientID := uuid.New()
	existing := &model.Visit{Base: model.Base{ID: id}, PatientID: patientID, Status: model.VisitStatusActive}
	env.repo.On("Get", mock.Anything, id).Return(existing, nil)
	env.patients.On("Get", mock.Anything, patientID).Return(&model.Patient{Base: model.Base{ID: patientID}}, nil)
	env.repo.On("Update", mock.Anything, existing).Return(nil)

	w, _ := do(t, env.router, http.MethodPut, "/api/v1/visits/"+id.String(), gin.H{
		"patient_id": patientID.String(),
		"visit_date": "2024-03-16",
		"status":     "discharged",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, model.VisitStatusDischarged, existing.Status)
	assert.Equal(t, "2024-03-16", existing.VisitDate.String())
	assert.Equal(t, []event.EventType{event.VisitUpdate}, env.recorder.events)
}

func TestGetVisit_NotFound(t *testing.T) {
	env := setup()
	id := uuid.New()
	env.repo.On("Get", mock.Anything, id).Return(nil, apperrors.NotFound("visit", nil))

	w, resp := do(t, env.router, http.MethodGet, "/api/v1/visits/"+id.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "visit not found", resp.Message)
}

func TestListVisits_Filters(t *testing.T) {
	env := setup()
	patientID := uuid.New()
	env.repo.On("List", mock.Anything, mock.MatchedBy(func(f *model.VisitFilters) bool {
		return f.PatientID != nil && *f.PatientID == patientID && f.Status == model.VisitStatusActive
	})).Return([]*model.Visit{}, 0, nil)

	w, _ := do(t, env.router, http.MethodGet, "/api/v1/visits?status=active&patient_id="+patientID.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	env.repo.AssertExpectations(t)

	w, resp := do(t, env.router, http.MethodGet, "/api/v1/visits?appointment_id=123", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, resp.Errors, "appointment_id")
}
