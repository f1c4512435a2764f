// Package scheduler runs periodic background jobs.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"tokopos/internal/domain/reports"
	"tokopos/pkg/logger"
)

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron       *cron.Cron
	reportsSvc *reports.Service

	// closeSpec is the cron expression for the daily close job
	closeSpec string
}

// New creates a scheduler. closeSpec defaults to 23:55 daily.
func New(reportsSvc *reports.Service, closeSpec string) *Scheduler {
	if closeSpec == "" {
		closeSpec = "55 23 * * *"
	}
	return &Scheduler{
		cron:       cron.New(),
		reportsSvc: reportsSvc,
		closeSpec:  closeSpec,
	}
}

// Start registers jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.closeSpec, s.logDailyClose); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// logDailyClose computes and logs the day's figures. The log line is the
// store's end-of-day record; it also warms the report cache for the day.
func (s *Scheduler) logDailyClose() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	summary, err := s.reportsSvc.GetDailySummary(ctx, time.Now().UTC())
	if err != nil {
		logger.Error(ctx, "daily close failed", "error", err)
		return
	}

	logger.Info(ctx, "daily close",
		"date", summary.FromDate.Format("2006-01-02"),
		"sales_total", summary.SalesTotal,
		"sales_count", summary.SalesCount,
		"profit", summary.Profit,
		"purchase_total", summary.PurchaseTotal,
		"debt_created", summary.DebtCreated,
	)
}
