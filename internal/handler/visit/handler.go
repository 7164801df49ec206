package visit

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/service/visit"
	"github.com/jwalitptl/clinic-api/pkg/event"
	"github.com/jwalitptl/clinic-api/pkg/httputil"
)

type Handler struct {
	service *visit.Service
}

func NewHandler(service *visit.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	visits := r.Group("/visits")
	{
		visits.POST("", h.CreateVisit)
		visits.GET("", h.ListVisits)
		visits.GET("/:id", h.GetVisit)
		visits.PUT("/:id", h.UpdateVisit)
	}
}

func (h *Handler) RegisterRoutesWithEvents(r *gin.RouterGroup, eventTracker *event.EventTrackerMiddleware) {
	visits := r.Group("/visits")
	{
		visits.POST("", eventTracker.TrackEvent("visit", "create"), h.CreateVisit)
		visits.PUT("/:id", eventTracker.TrackEvent("visit", "update"), h.UpdateVisit)
		visits.GET("", h.ListVisits)
		visits.GET("/:id", h.GetVisit)
	}
}

func (h *Handler) CreateVisit(c *gin.Context) {
	var req model.VisitRequest
	if err := httputil.BindJSON(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	v, err := h.service.CreateVisit(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	event.SetNewData(c, v, map[string]interface{}{"patient_id": v.PatientID})
	httputil.RespondWithSuccess(c, http.StatusCreated, v)
}

func (h *Handler) GetVisit(c *gin.Context) {
	id, err := httputil.ParamID(c, "id", "visit")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	v, err := h.service.GetVisit(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, v)
}

func (h *Handler) ListVisits(c *gin.Context) {
	page, pageSize := httputil.PageParams(c)
	filters := &model.VisitFilters{
		Pagination: model.Pagination{Page: page, PageSize: pageSize},
		Status:     model.VisitStatus(c.Query("status")),
	}

	var err error
	if filters.PatientID, err = httputil.QueryID(c, "patient_id"); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	if filters.AppointmentID, err = httputil.QueryID(c, "appointment_id"); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	visits, total, err := h.service.ListVisits(c.Request.Context(), filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithPagination(c, visits, page, pageSize, total)
}

func (h *Handler) UpdateVisit(c *gin.Context) {
	id, err := httputil.ParamID(c, "id", "visit")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var req model.VisitRequest
	if err := httputil.BindJSON(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	v, err := h.service.UpdateVisit(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	event.SetNewData(c, v, map[string]interface{}{"patient_id": v.PatientID})
	httputil.RespondWithSuccess(c, http.StatusOK, v)
}
