package patient

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/service/patient"
	"github.com/jwalitptl/clinic-api/pkg/event"
	"github.com/jwalitptl/clinic-api/pkg/httputil"
)

type Handler struct {
	service *patient.Service
}

func NewHandler(service *patient.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/patients")
	{
		patients.POST("", h.CreatePatient)
		patients.GET("", h.ListPatients)
		patients.GET("/:id", h.GetPatient)
		patients.PUT("/:id", h.UpdatePatient)
		patients.DELETE("/:id", h.DeletePatient)
	}
}

func (h *Handler) RegisterRoutesWithEvents(r *gin.RouterGroup, eventTracker *event.EventTrackerMiddleware) {
	patients := r.Group("/patients")
	{
		patients.POST("", eventTracker.TrackEvent("patient", "create"), h.CreatePatient)
		patients.PUT("/:id", eventTracker.TrackEvent("patient", "update"), h.UpdatePatient)
		patients.DELETE("/:id", eventTracker.TrackEvent("patient", "delete"), h.DeletePatient)
		patients.GET("", h.ListPatients)
		patients.GET("/:id", h.GetPatient)
	}
}

func (h *Handler) CreatePatient(c *gin.Context) {
	var req model.PatientRequest
	if err := httputil.BindJSON(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	p, err := h.service.CreatePatient(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	event.SetNewData(c, p, nil)
	httputil.RespondWithSuccess(c, http.StatusCreated, p)
}

func (h *Handler) GetPatient(c *gin.Context) {
	id, err := httputil.ParamID(c, "id", "patient")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	p, err := h.service.GetPatient(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, p)
}

// ListPatients supports ?search= over name, patient number and phone.
func (h *Handler) ListPatients(c *gin.Context) {
	page, pageSize := httputil.PageParams(c)
	filters := &model.PatientFilters{
		Pagination: model.Pagination{Page: page, PageSize: pageSize},
		Search:     strings.TrimSpace(c.Query("search")),
	}

	var err error
	if filters.SeniorCitizen, err = httputil.QueryBool(c, "senior_citizen"); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	patients, total, err := h.service.ListPatients(c.Request.Context(), filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithPagination(c, patients, page, pageSize, total)
}

func (h *Handler) UpdatePatient(c *gin.Context) {
	id, err := httputil.ParamID(c, "id", "patient")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var req model.PatientRequest
	if err := httputil.BindJSON(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	p, err := h.service.UpdatePatient(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	event.SetNewData(c, p, nil)
	httputil.RespondWithSuccess(c, http.StatusOK, p)
}

func (h *Handler) DeletePatient(c *gin.Context) {
	id, err := httputil.ParamID(c, "id", "patient")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	if err := h.service.DeletePatient(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	event.SetNewData(c, gin.H{"id": id}, nil)
	httputil.RespondWithMessage(c, "Patient deleted")
}
