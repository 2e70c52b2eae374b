package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/orcadental/practice-api/internal/model"
	"github.com/orcadental/practice-api/internal/service/auth"
	apperrors "github.com/orcadental/practice-api/pkg/errors"
	"github.com/orcadental/practice-api/pkg/httputil"
	"github.com/orcadental/practice-api/pkg/validator"
)

type Handler struct {
	service   *auth.Service
	validator *validator.Validator
}

func NewHandler(service *auth.Service, v *validator.Validator) *Handler {
	return &Handler{service: service, validator: v}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/auth/login", h.Login)
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid request body", err.Error()))
		return
	}
	if errs := h.validator.Validate(&req); errs != nil {
		httputil.RespondWithError(c, apperrors.Validation("validation failed", errs))
		return
	}

	resp, err := h.service.Login(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, resp)
}
