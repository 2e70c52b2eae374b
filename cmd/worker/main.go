package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/orcadental/practice-api/internal/config"
	"github.com/orcadental/practice-api/internal/repository/postgres"
	contentService "github.com/orcadental/practice-api/internal/service/content"
	"github.com/orcadental/practice-api/internal/service/notification"
	"github.com/orcadental/practice-api/pkg/logger"
	"github.com/orcadental/practice-api/pkg/messaging/redis"
	"github.com/orcadental/practice-api/pkg/metrics"
	"github.com/orcadental/practice-api/pkg/worker"
)

// workerConfig tunes the background loops; everything else comes from the
// shared config file.
type workerConfig struct {
	OutboxBatchSize    int           `envconfig:"OUTBOX_BATCH_SIZE" default:"100"`
	OutboxPollInterval time.Duration `envconfig:"OUTBOX_POLL_INTERVAL" default:"5s"`
	OutboxRetries      int           `envconfig:"OUTBOX_RETRIES" default:"3"`
	OutboxRetryDelay   time.Duration `envconfig:"OUTBOX_RETRY_DELAY" default:"1s"`
	ContentInterval    time.Duration `envconfig:"CONTENT_INTERVAL" default:"15m"`
}

func main() {
	l := logger.NewLogger(nil)

	var wcfg workerConfig
	if err := envconfig.Process("worker", &wcfg); err != nil {
		l.Fatal(err, "failed to load worker configuration")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		l.Fatal(err, "failed to load configuration")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		l.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	broker, err := redis.NewRedisBroker(redis.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		RetryBackoff: cfg.Redis.RetryBackoff,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}, &l.ZL)
	if err != nil {
		l.Fatal(err, "failed to connect to redis")
	}
	defer broker.Close()

	m := metrics.NewMetrics("practice_worker")

	outboxRepo := postgres.NewOutboxRepository(db)
	clinicRepo := postgres.NewClinicRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	contentRepo := postgres.NewContentRepository(db)

	processor := worker.NewOutboxProcessor(outboxRepo, broker, worker.OutboxProcessorConfig{
		BatchSize:     wcfg.OutboxBatchSize,
		PollInterval:  wcfg.OutboxPollInterval,
		RetryAttempts: wcfg.OutboxRetries,
		RetryDelay:    wcfg.OutboxRetryDelay,
	}, l, m)

	sender := notification.NewSMTPSender(notification.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	}, l.ZL)
	contentSvc := contentService.NewService(clinicRepo, patientRepo, contentRepo, sender, m, l.ZL)
	runner := worker.NewContentRunner(contentSvc, wcfg.ContentInterval, l)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go processor.Start(ctx)
	go runner.Start(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	l.Info("shutting down worker")
	cancel()
	time.Sleep(time.Second)
}
