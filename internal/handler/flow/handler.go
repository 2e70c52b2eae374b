package flow

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/orcadental/practice-api/internal/middleware"
	"github.com/orcadental/practice-api/internal/model"
	"github.com/orcadental/practice-api/internal/service/flow"
	apperrors "github.com/orcadental/practice-api/pkg/errors"
	"github.com/orcadental/practice-api/pkg/httputil"
	"github.com/orcadental/practice-api/pkg/validator"
)

type Handler struct {
	service   *flow.Service
	validator *validator.Validator
}

func NewHandler(service *flow.Service, v *validator.Validator) *Handler {
	return &Handler{service: service, validator: v}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	fl := r.Group("/booking/flow")
	{
		fl.GET("/active", h.ListActive)
		fl.GET("/appointments/:id", h.Get)
		fl.POST("/appointments/:id/transition", h.Transition)
	}
}

// ListActive returns today's in-progress visits, the waiting room view.
func (h *Handler) ListActive(c *gin.Context) {
	states, err := h.service.ListActive(c.Request.Context(), middleware.ClinicID(c))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, states)
}

func (h *Handler) Get(c *gin.Context) {
	appointmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid appointment ID", nil))
		return
	}

	state, err := h.service.Get(c.Request.Context(), middleware.ClinicID(c), appointmentID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, state)
}

func (h *Handler) Transition(c *gin.Context) {
	appointmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid appointment ID", nil))
		return
	}

	var req model.TransitionFlowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid request body", err.Error()))
		return
	}
	if errs := h.validator.Validate(&req); errs != nil {
		httputil.RespondWithError(c, apperrors.Validation("validation failed", errs))
		return
	}

	state, err := h.service.Transition(c.Request.Context(), middleware.ClinicID(c), appointmentID, &req, middleware.StaffID(c))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, state)
}
