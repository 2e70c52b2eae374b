package booking

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/orcadental/practice-api/internal/middleware"
	"github.com/orcadental/practice-api/internal/model"
	"github.com/orcadental/practice-api/internal/service/booking"
	apperrors "github.com/orcadental/practice-api/pkg/errors"
	"github.com/orcadental/practice-api/pkg/httputil"
	"github.com/orcadental/practice-api/pkg/validator"
)

type Handler struct {
	service   *booking.Service
	validator *validator.Validator
}

func NewHandler(service *booking.Service, v *validator.Validator) *Handler {
	return &Handler{service: service, validator: v}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	appointments := r.Group("/booking/appointments")
	{
		appointments.POST("", h.Create)
		appointments.GET("", h.List)
		appointments.GET("/:id", h.Get)
		appointments.PATCH("/:id", h.Update)
		appointments.POST("/:id/transition", h.Transition)
		appointments.DELETE("/:id", h.Delete)
	}
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid request body", err.Error()))
		return
	}
	if errs := h.validator.Validate(&req); errs != nil {
		httputil.RespondWithError(c, apperrors.Validation("validation failed", errs))
		return
	}

	apt, err := h.service.CreateAppointment(c.Request.Context(), middleware.ClinicID(c), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondCreated(c, apt)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid appointment ID", nil))
		return
	}

	apt, err := h.service.GetAppointment(c.Request.Context(), middleware.ClinicID(c), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, apt)
}

func (h *Handler) List(c *gin.Context) {
	filters := &model.AppointmentFilters{ClinicID: middleware.ClinicID(c)}

	if v := c.Query("provider_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			httputil.RespondWithError(c, apperrors.Validation("invalid provider_id", nil))
			return
		}
		filters.ProviderID = id
	}
	if v := c.Query("patient_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			httputil.RespondWithError(c, apperrors.Validation("invalid patient_id", nil))
			return
		}
		filters.PatientID = id
	}
	if v := c.Query("status"); v != "" {
		filters.Status = model.AppointmentStatus(v)
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

	appointments, err := h.service.ListAppointments(c.Request.Context(), filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, appointments)
}

func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid appointment ID", nil))
		return
	}

	var req model.UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid request body", err.Error()))
		return
	}
	if errs := h.validator.Validate(&req); errs != nil {
		httputil.RespondWithError(c, apperrors.Validation("validation failed", errs))
		return
	}

	apt, err := h.service.UpdateAppointment(c.Request.Context(), middleware.ClinicID(c), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, apt)
}

func (h *Handler) Transition(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid appointment ID", nil))
		return
	}

	var req model.TransitionAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid request body", err.Error()))
		return
	}
	if errs := h.validator.Validate(&req); errs != nil {
		httputil.RespondWithError(c, apperrors.Validation("validation failed", errs))
		return
	}

	apt, err := h.service.Transition(c.Request.Context(), middleware.ClinicID(c), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, apt)
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid appointment ID", nil))
		return
	}

	if err := h.service.DeleteAppointment(c.Request.Context(), middleware.ClinicID(c), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"deleted": true})
}
