package nurse

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/service/staff"
	"github.com/jwalitptl/clinic-api/pkg/httputil"
)

type Handler struct {
	service *staff.Service
}

func NewHandler(service *staff.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	nurses := r.Group("/nurses")
	{
		nurses.POST("", h.CreateNurse)
		nurses.GET("", h.ListNurses)
		nurses.GET("/:id", h.GetNurse)
		nurses.PUT("/:id", h.UpdateNurse)
		nurses.DELETE("/:id", h.DeleteNurse)
	}
}

func (h *Handler) CreateNurse(c *gin.Context) {
	var req model.NurseRequest
	if err := httputil.BindJSON(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	nurse, err := h.service.CreateNurse(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, nurse)
}

func (h *Handler) GetNurse(c *gin.Context) {
	id, err := httputil.ParamID(c, "id", "nurse")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	nurse, err := h.service.GetNurse(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, nurse)
}

func (h *Handler) ListNurses(c *gin.Context) {
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

	nurses, total, err := h.service.ListNurses(c.Request.Context(), filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithPagination(c, nurses, page, pageSize, total)
}

func (h *Handler) UpdateNurse(c *gin.Context) {
	id, err := httputil.ParamID(c, "id", "nurse")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var req model.NurseRequest
	if err := httputil.BindJSON(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	nurse, err := h.service.UpdateNurse(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, nurse)
}

func (h *Handler) DeleteNurse(c *gin.Context) {
	id, err := httputil.ParamID(c, "id", "nurse")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	if err := h.service.DeleteNurse(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, "Nurse deleted")
}
