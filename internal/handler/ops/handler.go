package ops

import (
	"github.com/gin-gonic/gin"

	"github.com/orcadental/practice-api/internal/middleware"
	"github.com/orcadental/practice-api/internal/service/ops"
	"github.com/orcadental/practice-api/pkg/httputil"
)

type Handler struct {
	service *ops.Service
}

func NewHandler(service *ops.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	dash := r.Group("/ops/dashboard")
	{
		dash.GET("/today", h.Today)
		dash.GET("/week", h.Week)
		dash.GET("/month", h.Month)
		dash.GET("/utilization", h.Utilization)
	}
}

func (h *Handler) Today(c *gin.Context) {
	metrics, err := h.service.TodayMetrics(c.Request.Context(), middleware.ClinicID(c))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, metrics)
}

func (h *Handler) Week(c *gin.Context) {
	metrics, err := h.service.WeekMetrics(c.Request.Context(), middleware.ClinicID(c))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, metrics)
}

func (h *Handler) Month(c *gin.Context) {
	metrics, err := h.service.MonthMetrics(c.Request.Context(), middleware.ClinicID(c))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, metrics)
}

func (h *Handler) Utilization(c *gin.Context) {
	util, err := h.service.Utilization(c.Request.Context(), middleware.ClinicID(c))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, util)
}
