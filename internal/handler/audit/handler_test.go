package audit

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/service/audit"
)

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

type response struct {
	Status     string              `json:"status"`
	Message    string              `json:"message"`
	Data       []model.AuditLog    `json:"data"`
	Errors     map[string][]string `json:"errors"`
	Pagination struct {
		Page       int `json:"page"`
		PageSize   int `json:"page_size"`
		Total      int `json:"total"`
		TotalPages int `json:"total_pages"`
	} `json:"pagination"`
}

func setupRouter(repo *mockAuditRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(audit.NewService(repo)).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func get(t *testing.T, r *gin.Engine, path string) (*httptest.ResponseRecorder, response) {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

	var resp response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func TestListLogs_Filters(t *testing.T) {
	repo := &mockAuditRepo{}
	r := setupRouter(repo)
	entityID := uuid.New()
	logs := []*model.AuditLog{
		{ID: uuid.New(), Action: model.AuditActionUpdate, EntityType: model.AuditEntityPatient, EntityID: entityID, CreatedAt: time.Now()},
	}
	repo.On("List", mock.Anything, mock.MatchedBy(func(f *model.AuditFilters) bool {
		return f.EntityType == model.AuditEntityPatient && f.Action == model.AuditActionUpdate &&
			f.EntityID != nil && *f.EntityID == entityID && f.Page == 1 && f.PageSize == 10
	})).Return(logs, 21, nil)

	w, resp := get(t, r, "/api/v1/audit/logs?entity_type=patient&action=update&page_size=10&entity_id="+entityID.String())
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, entityID, resp.Data[0].EntityID)
	assert.Equal(t, 21, resp.Pagination.Total)
	assert.Equal(t, 3, resp.Pagination.TotalPages)
	repo.AssertExpectations(t)
}

func TestListLogs_BadEntityID(t *testing.T) {
	repo := &mockAuditRepo{}
	r := setupRouter(repo)

	w, resp := get(t, r, "/api/v1/audit/logs?entity_id=patient-1")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, resp.Errors, "entity_id")
	repo.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestGetEntityLogs(t *testing.T) {
	repo := &mockAuditRepo{}
	r := setupRouter(repo)
	id := uuid.New()
	repo.On("List", mock.Anything, mock.MatchedBy(func(f *model.AuditFilters) bool {
		return f.EntityType == model.AuditEntityTransaction && f.EntityID != nil && *f.EntityID == id && f.Action == ""
	})).Return([]*model.AuditLog{}, 0, nil)

	w, resp := get(t, r, "/api/v1/audit/logs/entity/billing_transaction/"+id.String())
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "success", resp.Status)
	assert.Empty(t, resp.Data)
	repo.AssertExpectations(t)
}

func TestGetEntityLogs_BadID(t *testing.T) {
	r := setupRouter(&mockAuditRepo{})

	w, resp := get(t, r, "/api/v1/audit/logs/entity/patient/xyz")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid entity ID", resp.Message)
}

func TestListLogs_RepositoryErrorIsHidden(t *testing.T) {
	repo := &mockAuditRepo{}
	r := setupRouter(repo)
	repo.On("List", mock.Anything, mock.Anything).Return([]*model.AuditLog(nil), 0, errors.New("pq: connection refused"))

	w, resp := get(t, r, "/api/v1/audit/logs")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Something went wrong. Please try again.", resp.Message)
}
