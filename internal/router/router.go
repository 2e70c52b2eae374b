package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/orcadental/practice-api/internal/middleware"
)

// Handler is anything that can attach its routes to a group.
type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Config struct {
	RateLimit  rate.Limit
	RateBurst  int
	CORSConfig middleware.CORSConfig
	Timeout    time.Duration
}

type Router struct {
	engine  *gin.Engine
	auth    *middleware.AuthMiddleware
	tenant  *middleware.TenantSettings
	public  []Handler
	private []Handler
	metrics *routerMetrics
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
}

func New(auth *middleware.AuthMiddleware, tenant *middleware.TenantSettings, config Config) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	r := &Router{
		engine: engine,
		auth:   auth,
		tenant: tenant,
		metrics: &routerMetrics{
			requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			}, []string{"method", "path", "status"}),
			requestTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "HTTP request count",
			}, []string{"method", "path", "status"}),
		},
	}

	engine.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		r.metricsMiddleware(),
		middleware.Timeout(middleware.TimeoutConfig{Duration: config.Timeout}),
		middleware.CORS(config.CORSConfig),
	)

	if config.RateLimit > 0 {
		limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  config.RateLimit,
			Burst: config.RateBurst,
		})
		engine.Use(limiter.RateLimit())
	}

	return r
}

// Public registers handlers that skip authentication (login, health).
func (r *Router) Public(handlers ...Handler) {
	r.public = append(r.public, handlers...)
}

// Private registers handlers behind the auth and tenant middleware.
func (r *Router) Private(handlers ...Handler) {
	r.private = append(r.private, handlers...)
}

// Setup wires all registered handlers onto /api/v1.
func (r *Router) Setup() {
	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.engine.Group("/api/v1")
	for _, h := range r.public {
		h.RegisterRoutes(api)
	}

	authed := api.Group("")
	authed.Use(r.auth.Authenticate(), r.tenant.Resolve())
	for _, h := range r.private {
		h.RegisterRoutes(authed)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := statusLabel(c.Writer.Status())
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()
	}
}

func statusLabel(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
