package imaging

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/orcadental/practice-api/internal/middleware"
	"github.com/orcadental/practice-api/internal/model"
	"github.com/orcadental/practice-api/internal/service/imaging"
	apperrors "github.com/orcadental/practice-api/pkg/errors"
	"github.com/orcadental/practice-api/pkg/httputil"
	"github.com/orcadental/practice-api/pkg/validator"
)

type Handler struct {
	service   *imaging.Service
	validator *validator.Validator
}

func NewHandler(service *imaging.Service, v *validator.Validator) *Handler {
	return &Handler{service: service, validator: v}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	docs := r.Group("/imaging")
	{
		docs.POST("", h.Create)
		docs.GET("/:id", h.Get)
		docs.GET("/patients/:patientId", h.ListByPatient)
		docs.POST("/:id/replace", h.Replace)
		docs.DELETE("/:id", h.Delete)
	}
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreateImagingDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid request body", err.Error()))
		return
	}
	if errs := h.validator.Validate(&req); errs != nil {
		httputil.RespondWithError(c, apperrors.Validation("validation failed", errs))
		return
	}

	doc, err := h.service.CreateDocument(c.Request.Context(), middleware.ClinicID(c), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondCreated(c, doc)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid document ID", nil))
		return
	}

	doc, err := h.service.GetDocument(c.Request.Context(), middleware.ClinicID(c), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, doc)
}

func (h *Handler) ListByPatient(c *gin.Context) {
	patientID, err := uuid.Parse(c.Param("patientId"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid patient ID", nil))
		return
	}

	docs, err := h.service.ListByPatient(c.Request.Context(), middleware.ClinicID(c), patientID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, docs)
}

func (h *Handler) Replace(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid document ID", nil))
		return
	}

	var req model.ReplaceImagingDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid request body", err.Error()))
		return
	}
	if errs := h.validator.Validate(&req); errs != nil {
		httputil.RespondWithError(c, apperrors.Validation("validation failed", errs))
		return
	}

	doc, err := h.service.ReplaceDocument(c.Request.Context(), middleware.ClinicID(c), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondCreated(c, doc)
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid document ID", nil))
		return
	}

	if err := h.service.DeleteDocument(c.Request.Context(), middleware.ClinicID(c), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"deleted": true})
}
