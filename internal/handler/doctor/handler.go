package doctor

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/service/schedule"
	"github.com/jwalitptl/clinic-api/internal/service/staff"
	"github.com/jwalitptl/clinic-api/pkg/event"
	"github.com/jwalitptl/clinic-api/pkg/httputil"
)

type Handler struct {
	staff    *staff.Service
	schedule *schedule.Service
}

func NewHandler(staff *staff.Service, schedule *schedule.Service) *Handler {
	return &Handler{staff: staff, schedule: schedule}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	doctors := r.Group("/doctors")
	{
		doctors.POST("", h.CreateDoctor)
		doctors.GET("", h.ListDoctors)
		doctors.GET("/:id", h.GetDoctor)
		doctors.PUT("/:id", h.UpdateDoctor)
		doctors.DELETE("/:id", h.DeleteDoctor)
		doctors.GET("/:id/schedule", h.GetSchedule)
		doctors.PUT("/:id/schedule", h.UpdateSchedule)
	}
}

func (h *Handler) RegisterRoutesWithEvents(r *gin.RouterGroup, eventTracker *event.EventTrackerMiddleware) {
	doctors := r.Group("/doctors")
	{
		doctors.POST("", h.CreateDoctor)
		doctors.GET("", h.ListDoctors)
		doctors.GET("/:id", h.GetDoctor)
		doctors.PUT("/:id", h.UpdateDoctor)
		doctors.DELETE("/:id", h.DeleteDoctor)
		doctors.GET("/:id/schedule", h.GetSchedule)
		doctors.PUT("/:id/schedule", eventTracker.TrackEvent("doctor", "schedule"), h.UpdateSchedule)
	}
}

func (h *Handler) CreateDoctor(c *gin.Context) {
	var req model.DoctorRequest
	if err := httputil.BindJSON(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	doctor, err := h.staff.CreateDoctor(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, doctor)
}

func (h *Handler) GetDoctor(c *gin.Context) {
	id, err := httputil.ParamID(c, "id", "doctor")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	doctor, err := h.staff.GetDoctor(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, doctor)
}

func (h *Handler) ListDoctors(c *gin.Context) {
	page, pageSize := httputil.PageParams(c)
	filters := &model.StaffFilters{
		Pagination: model.Pagination{Page: page, PageSize: pageSize},
		Search:     strings.TrimSpace(c.Query("search")),
	}

	var err error
	if filters.Active, err = httputil.QueryBool(c, "active"); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	doctors, total, err := h.staff.ListDoctors(c.Request.Context(), filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithPagination(c, doctors, page, pageSize, total)
}

func (h *Handler) UpdateDoctor(c *gin.Context) {
	id, err := httputil.ParamID(c, "id", "doctor")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var req model.DoctorRequest
	if err := httputil.BindJSON(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	doctor, err := h.staff.UpdateDoctor(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, doctor)
}

func (h *Handler) DeleteDoctor(c *gin.Context) {
	id, err := httputil.ParamID(c, "id", "doctor")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	if err := h.staff.DeleteDoctor(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, "Doctor deleted")
}

// GetSchedule lists the weekly schedule in calendar order.
func (h *Handler) GetSchedule(c *gin.Context) {
	id, err := httputil.ParamID(c, "id", "doctor")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	days, err := h.schedule.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, days)
}

func (h *Handler) UpdateSchedule(c *gin.Context) {
	id, err := httputil.ParamID(c, "id", "doctor")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var req model.ScheduleRequest
	if err := httputil.BindJSON(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	days, err := h.schedule.Update(c.Request.Context(), id, req.ScheduleData)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	event.SetNewData(c, days, map[string]interface{}{"doctor_id": id})
	httputil.RespondWithSuccess(c, http.StatusOK, days)
}
