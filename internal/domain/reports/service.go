package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"tokopos/internal/core/apperror"
	"tokopos/pkg/logger"
)

// Cache is an optional read-through cache for report results. The redis
// implementation lives in infrastructure/cache; a nil Cache disables
// caching entirely.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// InvalidateAll drops every cached report. Called when any transaction
	// record changes.
	InvalidateAll(ctx context.Context) error
}

// Service provides report generation operations.
type Service struct {
	repo  Repository
	cache Cache
	ttl   time.Duration
}

// NewService creates a new reports service. cache may be nil.
func NewService(repo Repository, cache Cache, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Service{repo: repo, cache: cache, ttl: ttl}
}

// GetProfitReport returns the profit report for a year, optionally narrowed
// to one month.
func (s *Service) GetProfitReport(ctx context.Context, filter ProfitReportFilter) (*ProfitReport, error) {
	if filter.Year < 2000 || filter.Year > 2200 {
		return nil, apperror.NewValidation("year is out of range").
			WithDetail("year", filter.Year)
	}
	if filter.Month < 0 || filter.Month > 12 {
		return nil, apperror.NewValidation("month must be 1-12").
			WithDetail("month", filter.Month)
	}

	key := fmt.Sprintf("reports:profit:%d:%d", filter.Year, filter.Month)
	if report, ok := cacheGet[ProfitReport](ctx, s.cache, key); ok {
		return report, nil
	}

	report, err := s.repo.GetProfitReport(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("get profit report: %w", err)
	}

	s.cachePut(ctx, key, report)
	return report, nil
}

// GetDebtReport returns outstanding debts grouped by customer.
func (s *Service) GetDebtReport(ctx context.Context, filter DebtReportFilter) (*DebtReport, error) {
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	if filter.Limit > 1000 {
		filter.Limit = 1000
	}

	// Debt positions change with every settlement; not worth caching.
	report, err := s.repo.GetDebtReport(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("get debt report: %w", err)
	}
	return report, nil
}

// GetSummary returns headline figures for a period.
func (s *Service) GetSummary(ctx context.Context, filter SummaryFilter) (*Summary, error) {
	if filter.FromDate.IsZero() || filter.ToDate.IsZero() {
		return nil, apperror.NewValidation("fromDate and toDate are required")
	}
	if filter.FromDate.After(filter.ToDate) {
		return nil, apperror.NewValidation("fromDate must be before toDate")
	}

	key := fmt.Sprintf("reports:summary:%d:%d", filter.FromDate.Unix(), filter.ToDate.Unix())
	if summary, ok := cacheGet[Summary](ctx, s.cache, key); ok {
		return summary, nil
	}

	summary, err := s.repo.GetSummary(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("get summary: %w", err)
	}

	s.cachePut(ctx, key, summary)
	return summary, nil
}

// GetDailySummary returns today's figures; the scheduler logs it nightly.
func (s *Service) GetDailySummary(ctx context.Context, day time.Time) (*Summary, error) {
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	return s.GetSummary(ctx, SummaryFilter{
		FromDate: from,
		ToDate:   from.AddDate(0, 0, 1),
	})
}

// Invalidate drops all cached reports. Wired to the change feed so any
// committed transaction clears stale figures.
func (s *Service) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateAll(ctx); err != nil {
		logger.Warn(ctx, "report cache invalidation failed", "error", err)
	}
}

func cacheGet[T any](ctx context.Context, cache Cache, key string) (*T, bool) {
	if cache == nil {
		return nil, false
	}
	raw, ok, err := cache.Get(ctx, key)
	if err != nil {
		logger.Warn(ctx, "report cache read failed", "key", key, "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		logger.Warn(ctx, "report cache entry corrupt", "key", key, "error", err)
		return nil, false
	}
	return &out, true
}

func (s *Service) cachePut(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.ttl); err != nil {
		logger.Warn(ctx, "report cache write failed", "key", key, "error", err)
	}
}
