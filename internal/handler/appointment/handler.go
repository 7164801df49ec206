package appointment

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/service/appointment"
	"github.com/jwalitptl/clinic-api/pkg/event"
	"github.com/jwalitptl/clinic-api/pkg/httputil"
)

type Handler struct {
	service *appointment.Service
}

func NewHandler(service *appointment.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) CreateAppointment(c *gin.Context) {
	var req model.AppointmentRequest
	if err := httputil.BindJSON(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	apt, err := h.service.CreateAppointment(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	event.SetNewData(c, apt, map[string]interface{}{
		"patient_id":    apt.PatientID,
		"specialist_id": apt.SpecialistID,
	})
	httputil.RespondWithSuccess(c, http.StatusCreated, apt)
}

func (h *Handler) GetAppointment(c *gin.Context) {
	id, err := httputil.ParamID(c, "id", "appointment")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	apt, err := h.service.GetAppointment(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, apt)
}

func (h *Handler) ListAppointments(c *gin.Context) {
	page, pageSize := httputil.PageParams(c)
	filters := &model.AppointmentFilters{
		Pagination:    model.Pagination{Page: page, PageSize: pageSize},
		BillingStatus: model.BillingStatus(c.Query("billing_status")),
		Source:        model.AppointmentSource(c.Query("source")),
	}

	var err error
	if filters.PatientID, err = httputil.QueryID(c, "patient_id"); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	if filters.SpecialistID, err = httputil.QueryID(c, "specialist_id"); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	if filters.DateFrom, err = httputil.QueryDate(c, "date_from"); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	if filters.DateTo, err = httputil.QueryDate(c, "date_to"); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	appointments, total, err := h.service.ListAppointments(c.Request.Context(), filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithPagination(c, appointments, page, pageSize, total)
}

func (h *Handler) UpdateAppointment(c *gin.Context) {
	id, err := httputil.ParamID(c, "id", "appointment")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var req model.AppointmentRequest
	if err := httputil.BindJSON(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	apt, err := h.service.UpdateAppointment(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	event.SetNewData(c, apt, map[string]interface{}{"appointment_id": id})
	httputil.RespondWithSuccess(c, http.StatusOK, apt)
}

// UpdateStatus sets billing_status to any allowed value.
func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := httputil.ParamID(c, "id", "appointment")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var req model.AppointmentStatusRequest
	if err := httputil.BindJSON(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	apt, err := h.service.UpdateStatus(c.Request.Context(), id, model.BillingStatus(req.BillingStatus))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	event.SetNewData(c, apt, map[string]interface{}{"billing_status": apt.BillingStatus})
	httputil.RespondWithSuccess(c, http.StatusOK, apt)
}

func (h *Handler) DeleteAppointment(c *gin.Context) {
	id, err := httputil.ParamID(c, "id", "appointment")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	apt, err := h.service.GetAppointment(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	if err := h.service.DeleteAppointment(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	event.SetOldData(c, apt)
	event.SetNewData(c, gin.H{"id": id}, map[string]interface{}{"patient_id": apt.PatientID})
	httputil.RespondWithMessage(c, "Appointment deleted")
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	appointments := r.Group("/appointments")
	{
		appointments.POST("", h.CreateAppointment)
		appointments.GET("", h.ListAppointments)
		appointments.GET("/:id", h.GetAppointment)
		appointments.PUT("/:id", h.UpdateAppointment)
		appointments.PATCH("/:id/status", h.UpdateStatus)
		appointments.DELETE("/:id", h.DeleteAppointment)
	}
}

func (h *Handler) RegisterRoutesWithEvents(r *gin.RouterGroup, eventTracker *event.EventTrackerMiddleware) {
	appointments := r.Group("/appointments")
	{
		appointments.POST("", eventTracker.TrackEvent("appointment", "create"), h.CreateAppointment)
		appointments.PUT("/:id", eventTracker.TrackEvent("appointment", "update"), h.UpdateAppointment)
		appointments.PATCH("/:id/status", eventTracker.TrackEvent("appointment", "status"), h.UpdateStatus)
		appointments.DELETE("/:id", eventTracker.TrackEvent("appointment", "delete"), h.DeleteAppointment)
		appointments.GET("", h.ListAppointments)
		appointments.GET("/:id", h.GetAppointment)
	}
}
