package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/orcadental/practice-api/internal/config"
	authHandler "github.com/orcadental/practice-api/internal/handler/auth"
	bookingHandler "github.com/orcadental/practice-api/internal/handler/booking"
	flowHandler "github.com/orcadental/practice-api/internal/handler/flow"
	healthHandler "github.com/orcadental/practice-api/internal/handler/health"
	imagingHandler "github.com/orcadental/practice-api/internal/handler/imaging"
	labHandler "github.com/orcadental/practice-api/internal/handler/lab"
	opsHandler "github.com/orcadental/practice-api/internal/handler/ops"
	patientHandler "github.com/orcadental/practice-api/internal/handler/patient"
	resourcesHandler "github.com/orcadental/practice-api/internal/handler/resources"
	staffHandler "github.com/orcadental/practice-api/internal/handler/staff"
	"github.com/orcadental/practice-api/internal/middleware"
	"github.com/orcadental/practice-api/internal/repository/postgres"
	"github.com/orcadental/practice-api/internal/router"
	authService "github.com/orcadental/practice-api/internal/service/auth"
	bookingService "github.com/orcadental/practice-api/internal/service/booking"
	eventService "github.com/orcadental/practice-api/internal/service/event"
	flowService "github.com/orcadental/practice-api/internal/service/flow"
	imagingService "github.com/orcadental/practice-api/internal/service/imaging"
	labService "github.com/orcadental/practice-api/internal/service/lab"
	opsService "github.com/orcadental/practice-api/internal/service/ops"
	patientService "github.com/orcadental/practice-api/internal/service/patient"
	resourcesService "github.com/orcadental/practice-api/internal/service/resources"
	staffService "github.com/orcadental/practice-api/internal/service/staff"
	"github.com/orcadental/practice-api/pkg/metrics"
	"github.com/orcadental/practice-api/pkg/validator"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	m := metrics.NewMetrics("practice_api")
	v := validator.New()

	// Repositories
	clinicRepo := postgres.NewClinicRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	flowRepo := postgres.NewFlowRepository(db)
	chairRepo := postgres.NewChairRepository(db)
	labOrderRepo := postgres.NewLabOrderRepository(db)
	remakeRepo := postgres.NewRemakeRepository(db)
	staffRepo := postgres.NewStaffRepository(db)
	imagingRepo := postgres.NewImagingRepository(db)
	sterRepo := postgres.NewSterilizationRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)

	// Services
	events := eventService.NewService(outboxRepo)
	flowSvc := flowService.NewService(flowRepo, appointmentRepo, chairRepo, events, m)
	bookingSvc := bookingService.NewService(appointmentRepo, flowSvc, events)
	opsSvc := opsService.NewService(appointmentRepo, flowRepo, chairRepo)
	labSvc := labService.NewService(labOrderRepo, remakeRepo, events, m)
	staffSvc := staffService.NewService(staffRepo)
	patientSvc := patientService.NewService(patientRepo)
	imagingSvc := imagingService.NewService(imagingRepo, patientRepo)
	resourcesSvc := resourcesService.NewService(chairRepo, sterRepo)
	authSvc := authService.NewService(staffRepo, authService.Config{
		JWTSecret: cfg.JWT.Secret,
		TokenTTL:  time.Duration(cfg.JWT.ExpiryHours) * time.Hour,
	})

	// Router
	authMW := middleware.NewAuthMiddleware(authSvc)
	tenantMW := middleware.NewTenantSettings(clinicRepo)
	r := router.New(authMW, tenantMW, router.Config{
		RateLimit:  rate.Limit(cfg.Server.RateLimitRPS),
		RateBurst:  cfg.Server.RateLimitBurst,
		CORSConfig: middleware.DefaultCORSConfig(),
		Timeout:    time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
	})

	r.Public(
		healthHandler.NewHandler(db),
		authHandler.NewHandler(authSvc, v),
	)
	r.Private(
		bookingHandler.NewHandler(bookingSvc, v),
		flowHandler.NewHandler(flowSvc, v),
		opsHandler.NewHandler(opsSvc),
		labHandler.NewHandler(labSvc, v),
		staffHandler.NewHandler(staffSvc, v),
		patientHandler.NewHandler(patientSvc, v),
		imagingHandler.NewHandler(imagingSvc, v),
		resourcesHandler.NewHandler(resourcesSvc, v),
	)
	r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
}
