package worker

import (
	"context"
	"time"

	"github.com/orcadental/practice-api/internal/service/content"
	"github.com/orcadental/practice-api/pkg/logger"
)

// ContentRunner periodically executes the content delivery pass.
type ContentRunner struct {
	service  *content.Service
	interval time.Duration
	logger   *logger.Logger
}

func NewContentRunner(service *content.Service, interval time.Duration, logger *logger.Logger) *ContentRunner {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &ContentRunner{service: service, interval: interval, logger: logger}
}

func (r *ContentRunner) Start(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("starting content delivery runner")

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("shutting down content delivery runner")
			return
		case <-ticker.C:
			if err := r.service.Run(ctx); err != nil {
				r.logger.Error(err, "content delivery pass failed")
			}
		}
	}
}
