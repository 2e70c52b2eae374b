package lab

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/orcadental/practice-api/internal/middleware"
	"github.com/orcadental/practice-api/internal/model"
	"github.com/orcadental/practice-api/internal/service/lab"
	apperrors "github.com/orcadental/practice-api/pkg/errors"
	"github.com/orcadental/practice-api/pkg/httputil"
	"github.com/orcadental/practice-api/pkg/validator"
)

type Handler struct {
	service   *lab.Service
	validator *validator.Validator
}

func NewHandler(service *lab.Service, v *validator.Validator) *Handler {
	return &Handler{service: service, validator: v}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	orders := r.Group("/lab/orders")
	{
		orders.POST("", h.CreateOrder)
		orders.GET("", h.ListOrders)
		orders.GET("/:id", h.GetOrder)
		orders.GET("/:id/log", h.ListStatusLog)
		orders.POST("/:id/transition", h.TransitionOrder)
		orders.POST("/batch/status", h.BatchUpdateStatus)
		orders.POST("/batch/submit", h.BatchSubmit)
		orders.POST("/batch/cancel", h.BatchCancel)

		orders.GET("/:id/remakes", h.ListRemakes)
	}

	remakes := r.Group("/lab/remakes")
	{
		remakes.POST("", h.CreateRemake)
		remakes.GET("/:id", h.GetRemake)
		remakes.POST("/:id/transition", h.TransitionRemake)
		remakes.POST("/:id/review", h.ReviewRemake)
		remakes.POST("/:id/recovery", h.RecordRecovery)
	}
}

func (h *Handler) CreateOrder(c *gin.Context) {
	var req model.CreateLabOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid request body", err.Error()))
		return
	}
	if errs := h.validator.Validate(&req); errs != nil {
		httputil.RespondWithError(c, apperrors.Validation("validation failed", errs))
		return
	}

	order, err := h.service.CreateOrder(c.Request.Context(), middleware.ClinicID(c), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondCreated(c, order)
}

func (h *Handler) GetOrder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid order ID", nil))
		return
	}

	order, err := h.service.GetOrder(c.Request.Context(), middleware.ClinicID(c), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, order)
}

func (h *Handler) ListOrders(c *gin.Context) {
	filters := &model.LabOrderFilters{ClinicID: middleware.ClinicID(c)}

	if v := c.Query("patient_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			httputil.RespondWithError(c, apperrors.Validation("invalid patient_id", nil))
			return
		}
		filters.PatientID = id
	}
	if v := c.Query("vendor_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			httputil.RespondWithError(c, apperrors.Validation("invalid vendor_id", nil))
			return
		}
		filters.VendorID = id
	}
	if v := c.Query("status"); v != "" {
		filters.Status = model.LabOrderStatus(v)
	}
	if v := c.Query("start_date"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			httputil.RespondWithError(c, apperrors.Validation("invalid start_date", nil))
			return
		}
		filters.StartDate = t
	}
	if v := c.Query("end_date"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			httputil.RespondWithError(c, apperrors.Validation("invalid end_date", nil))
			return
		}
		filters.EndDate = t
	}

	orders, err := h.service.ListOrders(c.Request.Context(), filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, orders)
}

func (h *Handler) ListStatusLog(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid order ID", nil))
		return
	}

	entries, err := h.service.ListStatusLog(c.Request.Context(), middleware.ClinicID(c), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, entries)
}

func (h *Handler) TransitionOrder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid order ID", nil))
		return
	}

	var req model.TransitionLabOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid request body", err.Error()))
		return
	}
	if errs := h.validator.Validate(&req); errs != nil {
		httputil.RespondWithError(c, apperrors.Validation("validation failed", errs))
		return
	}

	order, err := h.service.TransitionOrder(c.Request.Context(), middleware.ClinicID(c), id, &req, middleware.StaffID(c))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, order)
}

func (h *Handler) BatchUpdateStatus(c *gin.Context) {
	var req model.BatchStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid request body", err.Error()))
		return
	}
	if errs := h.validator.Validate(&req); errs != nil {
		httputil.RespondWithError(c, apperrors.Validation("validation failed", errs))
		return
	}

	result, err := h.service.BatchUpdateStatus(c.Request.Context(), middleware.ClinicID(c), &req, middleware.StaffID(c))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, result)
}

func (h *Handler) BatchSubmit(c *gin.Context) {
	var req model.BatchOrderIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid request body", err.Error()))
		return
	}
	if errs := h.validator.Validate(&req); errs != nil {
		httputil.RespondWithError(c, apperrors.Validation("validation failed", errs))
		return
	}

	result, err := h.service.BatchSubmit(c.Request.Context(), middleware.ClinicID(c), &req, middleware.StaffID(c))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, result)
}

func (h *Handler) BatchCancel(c *gin.Context) {
	var req model.BatchOrderIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid request body", err.Error()))
		return
	}
	if errs := h.validator.Validate(&req); errs != nil {
		httputil.RespondWithError(c, apperrors.Validation("validation failed", errs))
		return
	}

	result, err := h.service.BatchCancel(c.Request.Context(), middleware.ClinicID(c), &req, middleware.StaffID(c))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, result)
}

func (h *Handler) CreateRemake(c *gin.Context) {
	var req model.CreateRemakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid request body", err.Error()))
		return
	}
	if errs := h.validator.Validate(&req); errs != nil {
		httputil.RespondWithError(c, apperrors.Validation("validation failed", errs))
		return
	}

	remake, err := h.service.CreateRemake(c.Request.Context(), middleware.ClinicID(c), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondCreated(c, remake)
}

func (h *Handler) GetRemake(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid remake ID", nil))
		return
	}

	remake, err := h.service.GetRemake(c.Request.Context(), middleware.ClinicID(c), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, remake)
}

func (h *Handler) ListRemakes(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid order ID", nil))
		return
	}

	remakes, err := h.service.ListRemakesForOrder(c.Request.Context(), middleware.ClinicID(c), orderID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, remakes)
}

func (h *Handler) TransitionRemake(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid remake ID", nil))
		return
	}

	var req model.TransitionRemakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid request body", err.Error()))
		return
	}
	if errs := h.validator.Validate(&req); errs != nil {
		httputil.RespondWithError(c, apperrors.Validation("validation failed", errs))
		return
	}

	remake, err := h.service.TransitionRemake(c.Request.Context(), middleware.ClinicID(c), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, remake)
}

func (h *Handler) ReviewRemake(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid remake ID", nil))
		return
	}

	var req model.ReviewRemakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid request body", err.Error()))
		return
	}
	if errs := h.validator.Validate(&req); errs != nil {
		httputil.RespondWithError(c, apperrors.Validation("validation failed", errs))
		return
	}

	remake, err := h.service.ReviewRemake(c.Request.Context(), middleware.ClinicID(c), id, &req, middleware.StaffID(c))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, remake)
}

func (h *Handler) RecordRecovery(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid remake ID", nil))
		return
	}

	var req model.RecordRecoveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid request body", err.Error()))
		return
	}
	if errs := h.validator.Validate(&req); errs != nil {
		httputil.RespondWithError(c, apperrors.Validation("validation failed", errs))
		return
	}

	remake, err := h.service.RecordRecovery(c.Request.Context(), middleware.ClinicID(c), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, remake)
}
