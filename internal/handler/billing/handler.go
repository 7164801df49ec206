package billing

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/model"
	billingsvc "github.com/jwalitptl/clinic-api/internal/service/billing"
	"github.com/jwalitptl/clinic-api/pkg/billing"
	"github.com/jwalitptl/clinic-api/pkg/event"
	"github.com/jwalitptl/clinic-api/pkg/httputil"
)

type Handler struct {
	service *billingsvc.Service
}

func NewHandler(service *billingsvc.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	h.register(r, nil)
}

func (h *Handler) RegisterRoutesWithEvents(r *gin.RouterGroup, eventTracker *event.EventTrackerMiddleware) {
	h.register(r, eventTracker)
}

func (h *Handler) register(r *gin.RouterGroup, eventTracker *event.EventTrackerMiddleware) {
	track := func(op string) []gin.HandlerFunc {
		if eventTracker == nil {
			return nil
		}
		return []gin.HandlerFunc{eventTracker.TrackEvent("billing", op)}
	}
	with := func(op string, fn gin.HandlerFunc) []gin.HandlerFunc {
		return append(track(op), fn)
	}

	b := r.Group("/billing")
	{
		b.POST("/calculate", h.Calculate)

		txns := b.Group("/transactions")
		txns.GET("", h.ListTransactions)
		txns.POST("", with("create", h.CreateTransaction)...)
		txns.POST("/from-appointments", with("create", h.CreateFromAppointments)...)
		txns.GET("/:id", h.GetTransaction)
		txns.PUT("/:id", with("update", h.UpdateTransaction)...)
		txns.DELETE("/:id", with("delete", h.DeleteTransaction)...)
		txns.POST("/:id/mark-paid", with("paid", h.MarkPaid)...)
		txns.POST("/:id/cancel", with("cancel", h.Cancel)...)
		txns.POST("/:id/refund", with("refund", h.Refund)...)
	}
}

// Calculate previews totals for the payment modal.
func (h *Handler) Calculate(c *gin.Context) {
	var req billing.Input
	if err := httputil.BindJSON(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	totals, err := h.service.Calculate(c.Request.Context(), req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, totals)
}

func (h *Handler) CreateTransaction(c *gin.Context) {
	var req model.TransactionRequest
	if err := httputil.BindJSON(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	txn, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	event.SetNewData(c, txn, map[string]interface{}{
		"patient_id": txn.PatientID,
		"origin":     "manual",
	})
	httputil.RespondWithSuccess(c, http.StatusCreated, txn)
}

func (h *Handler) CreateFromAppointments(c *gin.Context) {
	var req model.FromAppointmentsRequest
	if err := httputil.BindJSON(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	txn, err := h.service.CreateFromAppointments(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	event.SetNewData(c, txn, map[string]interface{}{
		"patient_id":      txn.PatientID,
		"appointment_ids": txn.AppointmentIDs,
		"origin":          "appointments",
	})
	httputil.RespondWithSuccess(c, http.StatusCreated, txn)
}

func (h *Handler) GetTransaction(c *gin.Context) {
	id, err := httputil.ParamID(c, "id", "transaction")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	txn, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, txn)
}

func (h *Handler) ListTransactions(c *gin.Context) {
	page, pageSize := httputil.PageParams(c)
	filters := &model.TransactionFilters{
		Pagination:    model.Pagination{Page: page, PageSize: pageSize},
		Status:        model.TransactionStatus(c.Query("status")),
		PaymentMethod: billing.PaymentMethod(c.Query("payment_method")),
	}

	var err error
	if filters.PatientID, err = httputil.QueryID(c, "patient_id"); err != nil {
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

	txns, total, err := h.service.List(c.Request.Context(), filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithPagination(c, txns, page, pageSize, total)
}

func (h *Handler) UpdateTransaction(c *gin.Context) {
	id, err := httputil.ParamID(c, "id", "transaction")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var req model.TransactionRequest
	if err := httputil.BindJSON(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	txn, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	event.SetNewData(c, txn, map[string]interface{}{"transaction_id": id})
	httputil.RespondWithSuccess(c, http.StatusOK, txn)
}

func (h *Handler) DeleteTransaction(c *gin.Context) {
	id, err := httputil.ParamID(c, "id", "transaction")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	event.SetNewData(c, gin.H{"id": id}, nil)
	httputil.RespondWithMessage(c, "Transaction deleted")
}

func (h *Handler) MarkPaid(c *gin.Context) {
	id, err := httputil.ParamID(c, "id", "transaction")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var req model.MarkPaidRequest
	if err := httputil.BindJSON(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	txn, err := h.service.MarkPaid(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	event.SetNewData(c, txn, map[string]interface{}{
		"patient_id":      txn.PatientID,
		"appointment_ids": txn.AppointmentIDs,
	})
	httputil.RespondWithSuccess(c, http.StatusOK, txn)
}

func (h *Handler) Cancel(c *gin.Context) {
	h.changeStatus(c, h.service.Cancel)
}

func (h *Handler) Refund(c *gin.Context) {
	h.changeStatus(c, h.service.Refund)
}

type statusFunc func(ctx context.Context, id uuid.UUID, reason *string) (*model.BillingTransaction, error)

func (h *Handler) changeStatus(c *gin.Context, fn statusFunc) {
	id, err := httputil.ParamID(c, "id", "transaction")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var req model.StatusReasonRequest
	if c.Request.ContentLength != 0 {
		if err := httputil.BindJSON(c, &req); err != nil {
			httputil.RespondWithError(c, err)
			return
		}
	}

	txn, err := fn(c.Request.Context(), id, req.Reason)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	event.SetNewData(c, txn, map[string]interface{}{"reason": req.Reason})
	httputil.RespondWithSuccess(c, http.StatusOK, txn)
}
