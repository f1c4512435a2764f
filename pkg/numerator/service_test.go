package numerator

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
)

type mockRow struct {
	val int64
	err error
}

func (m *mockRow) Scan(dest ...any) error {
	if m.err != nil {
		return m.err
	}
	if len(dest) > 0 {
		if ptr, ok := dest[0].(*int64); ok {
			*ptr = m.val
		}
	}
	return nil
}

// mockQuerier simulates the sys_sequences UPSERT. Increment statements
// bump the counter by their argument (1 for strict, RangeSize for cached);
// the migration statement sets it outright.
type mockQuerier struct {
	mu           sync.Mutex
	currentValue int64
	calls        int
}

func (m *mockQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	if !strings.Contains(sql, "sys_sequences.current_val +") {
		if val, ok := args[1].(int64); ok {
			m.currentValue = val
		}
		return &mockRow{val: m.currentValue}
	}

	var increment int64 = 1
	if len(args) == 2 {
		if val, ok := args[1].(int64); ok {
			increment = val
		}
	}

	m.currentValue += increment
	return &mockRow{val: m.currentValue}
}

var testPeriod = time.Date(2026, time.August, 15, 12, 0, 0, 0, time.UTC)

func TestGetNextNumber_Strict(t *testing.T) {
	q := &mockQuerier{}
	svc := New(q)
	ctx := context.Background()
	cfg := DefaultConfig("INV")

	num, err := svc.GetNextNumber(ctx, cfg, nil, testPeriod)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "INV-2026-08-00001" {
		t.Errorf("expected INV-2026-08-00001, got %s", num)
	}

	num, err = svc.GetNextNumber(ctx, cfg, nil, testPeriod)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "INV-2026-08-00002" {
		t.Errorf("expected INV-2026-08-00002, got %s", num)
	}
	if q.calls != 2 {
		t.Errorf("strict strategy must hit the DB per number, got %d calls", q.calls)
	}
}

func TestGetNextNumber_YearReset(t *testing.T) {
	q := &mockQuerier{}
	svc := New(q)
	ctx := context.Background()
	cfg := Config{Prefix: "PUR", PadWidth: 5, ResetPeriod: "year"}

	num, err := svc.GetNextNumber(ctx, cfg, nil, testPeriod)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "PUR-2026-00001" {
		t.Errorf("expected PUR-2026-00001, got %s", num)
	}
}

func TestGetNextNumber_Cached(t *testing.T) {
	q := &mockQuerier{}
	svc := New(q)
	ctx := context.Background()
	cfg := DefaultConfig("ORD")
	opts := &Options{Strategy: StrategyCached, RangeSize: 10}

	// First call reserves the range 1..10 in one DB round trip.
	num, err := svc.GetNextNumber(ctx, cfg, opts, testPeriod)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "ORD-2026-08-00001" {
		t.Errorf("expected ORD-2026-08-00001, got %s", num)
	}
	if q.currentValue != 10 {
		t.Errorf("expected DB value to be 10, got %d", q.currentValue)
	}

	// Second call is served from memory.
	num, err = svc.GetNextNumber(ctx, cfg, opts, testPeriod)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "ORD-2026-08-00002" {
		t.Errorf("expected ORD-2026-08-00002, got %s", num)
	}
	if q.currentValue != 10 {
		t.Errorf("expected DB value to stay 10, got %d", q.currentValue)
	}

	// Exhaust the range; the next call reserves 11..20.
	for i := 0; i < 8; i++ {
		_, _ = svc.GetNextNumber(ctx, cfg, opts, testPeriod)
	}
	num, err = svc.GetNextNumber(ctx, cfg, opts, testPeriod)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "ORD-2026-08-00011" {
		t.Errorf("expected ORD-2026-08-00011, got %s", num)
	}
	if q.currentValue != 20 {
		t.Errorf("expected DB value to be 20, got %d", q.currentValue)
	}
}

func TestGetNextNumber_MonthScopesKey(t *testing.T) {
	q := &mockQuerier{}
	svc := New(q)
	ctx := context.Background()

	august := buildKey(DefaultConfig("INV"), testPeriod)
	september := buildKey(DefaultConfig("INV"), testPeriod.AddDate(0, 1, 0))
	if august == september {
		t.Errorf("expected distinct keys per month, got %s twice", august)
	}

	// Cached ranges must not leak across months.
	opts := &Options{Strategy: StrategyCached, RangeSize: 10}
	if _, err := svc.GetNextNumber(ctx, DefaultConfig("INV"), opts, testPeriod); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.GetNextNumber(ctx, DefaultConfig("INV"), opts, testPeriod.AddDate(0, 1, 0)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.calls != 2 {
		t.Errorf("expected a range reservation per month, got %d calls", q.calls)
	}
}

func TestSetNextNumber_MovesCounterAndDropsCache(t *testing.T) {
	q := &mockQuerier{}
	svc := New(q)
	ctx := context.Background()
	cfg := DefaultConfig("INV")

	num, err := svc.GetNextNumber(ctx, cfg, nil, testPeriod)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "INV-2026-08-00001" {
		t.Errorf("expected INV-2026-08-00001, got %s", num)
	}

	// Imported data already used numbers up to 41.
	if err := svc.SetNextNumber(ctx, cfg, testPeriod, 41); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	num, err = svc.GetNextNumber(ctx, cfg, nil, testPeriod)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "INV-2026-08-00042" {
		t.Errorf("expected INV-2026-08-00042, got %s", num)
	}

	// A cached range reserved before the override must not survive it.
	opts := &Options{Strategy: StrategyCached, RangeSize: 10}
	if _, err := svc.GetNextNumber(ctx, cfg, opts, testPeriod); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.SetNextNumber(ctx, cfg, testPeriod, 100); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	num, err = svc.GetNextNumber(ctx, cfg, opts, testPeriod)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "INV-2026-08-00101" {
		t.Errorf("expected a fresh range after the override, got %s", num)
	}
}

func TestParseNumber(t *testing.T) {
	cases := map[string]int64{
		"INV-2026-08-00042": 42,
		"PUR-2026-00007":    7,
		"ORD-00003":         3,
		"garbage":           -1,
	}
	for formatted, want := range cases {
		if got := ParseNumber(formatted); got != want {
			t.Errorf("ParseNumber(%q) = %d, want %d", formatted, got, want)
		}
	}
}
