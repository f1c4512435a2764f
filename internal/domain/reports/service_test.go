package reports

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokopos/internal/core/apperror"
	"tokopos/internal/core/types"
)

type mockRepo struct {
	profitCalls  int
	summaryCalls int
	debtCalls    int
}

func (m *mockRepo) GetProfitReport(ctx context.Context, filter ProfitReportFilter) (*ProfitReport, error) {
	m.profitCalls++
	return &ProfitReport{
		Year:        filter.Year,
		Month:       filter.Month,
		TotalSales:  types.NewMoneyFromInt(1000),
		TotalCost:   types.NewMoneyFromInt(600),
		TotalProfit: types.NewMoneyFromInt(400),
	}, nil
}

func (m *mockRepo) GetDebtReport(ctx context.Context, filter DebtReportFilter) (*DebtReport, error) {
	m.debtCalls++
	return &DebtReport{
		Items: []DebtSummaryItem{
			{CustomerName: "Siti", RecordCount: 2, Total: types.NewMoneyFromInt(300)},
		},
		TotalCount:       1,
		TotalOutstanding: types.NewMoneyFromInt(300),
	}, nil
}

func (m *mockRepo) GetSummary(ctx context.Context, filter SummaryFilter) (*Summary, error) {
	m.summaryCalls++
	return &Summary{FromDate: filter.FromDate, ToDate: filter.ToDate}, nil
}

type memCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string][]byte)}
}

func (c *memCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.entries[key]
	return raw, ok, nil
}

func (c *memCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}

func (c *memCache) InvalidateAll(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string][]byte)
	return nil
}

func TestGetProfitReport_Validation(t *testing.T) {
	svc := NewService(&mockRepo{}, nil, 0)
	ctx := context.Background()

	_, err := svc.GetProfitReport(ctx, ProfitReportFilter{Year: 1815})
	require.Error(t, err)
	assert.True(t, apperror.IsAppError(err))

	_, err = svc.GetProfitReport(ctx, ProfitReportFilter{Year: 2026, Month: 13})
	require.Error(t, err)
}

func TestGetProfitReport_CachesResult(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo, newMemCache(), time.Minute)
	ctx := context.Background()
	filter := ProfitReportFilter{Year: 2026, Month: 8}

	first, err := svc.GetProfitReport(ctx, filter)
	require.NoError(t, err)
	second, err := svc.GetProfitReport(ctx, filter)
	require.NoError(t, err)

	assert.Equal(t, 1, repo.profitCalls)
	assert.True(t, first.TotalProfit.Equal(second.TotalProfit))

	// A different period misses the cache.
	_, err = svc.GetProfitReport(ctx, ProfitReportFilter{Year: 2026, Month: 7})
	require.NoError(t, err)
	assert.Equal(t, 2, repo.profitCalls)
}

func TestInvalidate_DropsCachedReports(t *testing.T) {
	repo := &mockRepo{}
	cache := newMemCache()
	svc := NewService(repo, cache, time.Minute)
	ctx := context.Background()
	filter := ProfitReportFilter{Year: 2026}

	_, err := svc.GetProfitReport(ctx, filter)
	require.NoError(t, err)

	svc.Invalidate(ctx)

	_, err = svc.GetProfitReport(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.profitCalls)
}

func TestGetDebtReport_NeverCached(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo, newMemCache(), time.Minute)
	ctx := context.Background()

	_, err := svc.GetDebtReport(ctx, DebtReportFilter{})
	require.NoError(t, err)
	_, err = svc.GetDebtReport(ctx, DebtReportFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, repo.debtCalls)
}

func TestGetSummary_Validation(t *testing.T) {
	svc := NewService(&mockRepo{}, nil, 0)
	ctx := context.Background()

	_, err := svc.GetSummary(ctx, SummaryFilter{})
	require.Error(t, err)

	from := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)
	_, err = svc.GetSummary(ctx, SummaryFilter{FromDate: from, ToDate: from.AddDate(0, 0, -1)})
	require.Error(t, err)
}

func TestGetDailySummary_CoversOneDay(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo, nil, 0)
	day := time.Date(2026, 8, 15, 17, 30, 0, 0, time.UTC)

	summary, err := svc.GetDailySummary(context.Background(), day)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC), summary.FromDate)
	assert.Equal(t, time.Date(2026, 8, 16, 0, 0, 0, 0, time.UTC), summary.ToDate)
}
