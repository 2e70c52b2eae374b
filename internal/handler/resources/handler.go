package resources

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/orcadental/practice-api/internal/middleware"
	"github.com/orcadental/practice-api/internal/model"
	"github.com/orcadental/practice-api/internal/service/resources"
	apperrors "github.com/orcadental/practice-api/pkg/errors"
	"github.com/orcadental/practice-api/pkg/httputil"
	"github.com/orcadental/practice-api/pkg/validator"
)

type Handler struct {
	service   *resources.Service
	validator *validator.Validator
}

func NewHandler(service *resources.Service, v *validator.Validator) *Handler {
	return &Handler{service: service, validator: v}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	chairs := r.Group("/resources/chairs")
	{
		chairs.POST("", h.CreateChair)
		chairs.GET("", h.ListChairs)
		chairs.GET("/:id", h.GetChair)
		chairs.PATCH("/:id", h.UpdateChair)
		chairs.DELETE("/:id", h.DeleteChair)
	}

	cycles := r.Group("/resources/sterilization/cycles")
	{
		cycles.POST("", h.CreateCycle)
		cycles.GET("", h.ListCycles)
		cycles.GET("/:id", h.GetCycle)
		cycles.GET("/:id/label", h.CycleLabel)
	}
	r.POST("/resources/sterilization/scan", h.ScanLabel)
}

func (h *Handler) CreateChair(c *gin.Context) {
	var req model.CreateChairRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid request body", err.Error()))
		return
	}
	if errs := h.validator.Validate(&req); errs != nil {
		httputil.RespondWithError(c, apperrors.Validation("validation failed", errs))
		return
	}

	chair, err := h.service.CreateChair(c.Request.Context(), middleware.ClinicID(c), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondCreated(c, chair)
}

func (h *Handler) GetChair(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid chair ID", nil))
		return
	}

	chair, err := h.service.GetChair(c.Request.Context(), middleware.ClinicID(c), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, chair)
}

func (h *Handler) ListChairs(c *gin.Context) {
	chairs, err := h.service.ListChairs(c.Request.Context(), middleware.ClinicID(c))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, chairs)
}

func (h *Handler) UpdateChair(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid chair ID", nil))
		return
	}

	var req model.UpdateChairRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid request body", err.Error()))
		return
	}
	if errs := h.validator.Validate(&req); errs != nil {
		httputil.RespondWithError(c, apperrors.Validation("validation failed", errs))
		return
	}

	chair, err := h.service.UpdateChair(c.Request.Context(), middleware.ClinicID(c), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, chair)
}

func (h *Handler) DeleteChair(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid chair ID", nil))
		return
	}

	if err := h.service.DeleteChair(c.Request.Context(), middleware.ClinicID(c), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"deleted": true})
}

func (h *Handler) CreateCycle(c *gin.Context) {
	var req model.CreateSterilizationCycleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid request body", err.Error()))
		return
	}
	if errs := h.validator.Validate(&req); errs != nil {
		httputil.RespondWithError(c, apperrors.Validation("validation failed", errs))
		return
	}

	cycle, err := h.service.CreateCycle(c.Request.Context(), middleware.ClinicID(c), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondCreated(c, cycle)
}

func (h *Handler) GetCycle(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid cycle ID", nil))
		return
	}

	cycle, err := h.service.GetCycle(c.Request.Context(), middleware.ClinicID(c), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, cycle)
}

func (h *Handler) ListCycles(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	cycles, err := h.service.ListCycles(c.Request.Context(), middleware.ClinicID(c), limit)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, cycles)
}

func (h *Handler) CycleLabel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid cycle ID", nil))
		return
	}

	label, err := h.service.CycleLabel(c.Request.Context(), middleware.ClinicID(c), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"label": label})
}

type scanRequest struct {
	Content string `json:"content" validate:"required"`
}

func (h *Handler) ScanLabel(c *gin.Context) {
	var req scanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid request body", err.Error()))
		return
	}
	if errs := h.validator.Validate(&req); errs != nil {
		httputil.RespondWithError(c, apperrors.Validation("validation failed", errs))
		return
	}

	result, err := h.service.ScanLabel(c.Request.Context(), middleware.ClinicID(c), req.Content)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, result)
}
