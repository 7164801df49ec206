package audit

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/service/audit"
	"github.com/jwalitptl/clinic-api/pkg/httputil"
)

type Handler struct {
	service *audit.Service
}

func NewHandler(service *audit.Service) *Handler {
	return &Handler{
		service: service,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	audit := r.Group("/audit")
	{
		audit.GET("/logs", h.ListLogs)
		audit.GET("/logs/entity/:type/:id", h.GetEntityLogs)
	}
}

// ListLogs filters by entity_type, entity_id and action.
func (h *Handler) ListLogs(c *gin.Context) {
	page, pageSize := httputil.PageParams(c)
	filters := &model.AuditFilters{
		Pagination: model.Pagination{Page: page, PageSize: pageSize},
		EntityType: c.Query("entity_type"),
		Action:     c.Query("action"),
	}

	var err error
	if filters.EntityID, err = httputil.QueryID(c, "entity_id"); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	h.list(c, filters)
}

func (h *Handler) GetEntityLogs(c *gin.Context) {
	entityID, err := httputil.ParamID(c, "id", "entity")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	page, pageSize := httputil.PageParams(c)
	h.list(c, &model.AuditFilters{
		Pagination: model.Pagination{Page: page, PageSize: pageSize},
		EntityType: c.Param("type"),
		EntityID:   &entityID,
	})
}

func (h *Handler) list(c *gin.Context, filters *model.AuditFilters) {
	logs, total, err := h.service.List(c.Request.Context(), filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithPagination(c, logs, filters.Page, filters.PageSize, total)
}
