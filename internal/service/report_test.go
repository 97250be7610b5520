package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"eatery/internal/metrics"
	"eatery/internal/model"
)

type mockReportStore struct {
	turnover   float64
	orderCount int64
	validCount int64
	totalUsers int64
	newUsers   int64
	top        []model.GoodsSale

	sumCalls       int
	countCalls     int
	totalUserCalls int
	newUserCalls   int
	topCalls       int

	lastTopStart time.Time
	lastTopEnd   time.Time
}

func (m *mockReportStore) SumTurnover(ctx context.Context, start, end time.Time, status model.OrderStatus) (float64, error) {
	m.sumCalls++
	return m.turnover, nil
}

func (m *mockReportStore) CountOrders(ctx context.Context, start, end time.Time, status *model.OrderStatus) (int64, error) {
	m.countCalls++
	if status != nil {
		return m.validCount, nil
	}
	return m.orderCount, nil
}

func (m *mockReportStore) CountTotalUsers(ctx context.Context, end time.Time) (int64, error) {
	m.totalUserCalls++
	return m.totalUsers, nil
}

func (m *mockReportStore) CountNewUsers(ctx context.Context, start, end time.Time) (int64, error) {
	m.newUserCalls++
	return m.newUsers, nil
}

func (m *mockReportStore) TopProductsByQuantity(ctx context.Context, start, end time.Time, status model.OrderStatus, limit int) ([]model.GoodsSale, error) {
	m.topCalls++
	m.lastTopStart = start
	m.lastTopEnd = end
	return m.top, nil
}

type mockMetricCache struct {
	floats map[string]float64
	ints   map[string]int64
	tops   map[string][]model.GoodsSale

	getCalls int
	setCalls int
	getErr   error
	setErr   error
}

func newMockMetricCache() *mockMetricCache {
	return &mockMetricCache{
		floats: make(map[string]float64),
		ints:   make(map[string]int64),
		tops:   make(map[string][]model.GoodsSale),
	}
}

func (m *mockMetricCache) GetFloat64(ctx context.Context, key string) (float64, bool, error) {
	m.getCalls++
	if m.getErr != nil {
		return 0, false, m.getErr
	}
	v, ok := m.floats[key]
	return v, ok, nil
}

func (m *mockMetricCache) SetFloat64(ctx context.Context, key string, value float64, ttl time.Duration) error {
	m.setCalls++
	if m.setErr != nil {
		return m.setErr
	}
	m.floats[key] = value
	return nil
}

func (m *mockMetricCache) GetInt64(ctx context.Context, key string) (int64, bool, error) {
	m.getCalls++
	if m.getErr != nil {
		return 0, false, m.getErr
	}
	v, ok := m.ints[key]
	return v, ok, nil
}

func (m *mockMetricCache) SetInt64(ctx context.Context, key string, value int64, ttl time.Duration) error {
	m.setCalls++
	if m.setErr != nil {
		return m.setErr
	}
	m.ints[key] = value
	return nil
}

func (m *mockMetricCache) GetTopSales(ctx context.Context, key string) ([]model.GoodsSale, bool, error) {
	m.getCalls++
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	v, ok := m.tops[key]
	return v, ok, nil
}

func (m *mockMetricCache) SetTopSales(ctx context.Context, key string, sales []model.GoodsSale, ttl time.Duration) error {
	m.setCalls++
	if m.setErr != nil {
		return m.setErr
	}
	m.tops[key] = sales
	return nil
}

var reportNow = time.Date(2025, 3, 10, 15, 30, 0, 0, time.UTC)

func newReportFixture() (*ReportService, *mockReportStore, *mockMetricCache) {
	st := &mockReportStore{}
	c := newMockMetricCache()
	svc := NewReportService(st, c, metrics.NewRegistry())
	svc.now = func() time.Time { return reportNow }
	return svc, st, c
}

func TestDailyMetricFutureDay(t *testing.T) {
	svc, st, c := newReportFixture()
	st.turnover = 999

	v, err := svc.DailyMetric(context.Background(), MetricTurnover, reportNow.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 0 {
		t.Errorf("future day must be zero, got %v", v)
	}
	if st.sumCalls != 0 {
		t.Errorf("store must not be called for a future day, got %d calls", st.sumCalls)
	}
	if c.getCalls != 0 || c.setCalls != 0 {
		t.Errorf("cache must not be touched for a future day, got %d gets %d sets", c.getCalls, c.setCalls)
	}
}

func TestDailyMetricTodayBypassesCache(t *testing.T) {
	svc, st, c := newReportFixture()
	st.turnover = 150
	// A stale cached value for today must be ignored.
	c.floats[MetricTurnover.key(reportNow)] = 42

	v, err := svc.DailyMetric(context.Background(), MetricTurnover, reportNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 150 {
		t.Errorf("today must come from the store, got %v", v)
	}
	if st.sumCalls != 1 {
		t.Errorf("expected one store call, got %d", st.sumCalls)
	}
	if c.getCalls != 0 || c.setCalls != 0 {
		t.Errorf("today must never read or write the cache, got %d gets %d sets", c.getCalls, c.setCalls)
	}
}

func TestDailyMetricPastDayCacheAside(t *testing.T) {
	svc, st, c := newReportFixture()
	st.turnover = 88.5
	past := reportNow.AddDate(0, 0, -3)

	first, err := svc.DailyMetric(context.Background(), MetricTurnover, past)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	if first != 88.5 {
		t.Errorf("expected 88.5, got %v", first)
	}
	if st.sumCalls != 1 || c.setCalls != 1 {
		t.Fatalf("first call must compute and populate once, got %d store calls %d sets", st.sumCalls, c.setCalls)
	}
	if _, ok := c.floats["turnover_2025-03-07"]; !ok {
		t.Errorf("expected cache key turnover_2025-03-07, have %v", c.floats)
	}

	st.turnover = 777 // must not be observed: second call is a cache hit

	second, err := svc.DailyMetric(context.Background(), MetricTurnover, past)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if second != first {
		t.Errorf("cache hit must return the identical value, got %v then %v", first, second)
	}
	if st.sumCalls != 1 {
		t.Errorf("second call must not hit the store, got %d calls", st.sumCalls)
	}
}

func TestDailyMetricCountsUseIntCache(t *testing.T) {
	svc, st, c := newReportFixture()
	st.orderCount = 12
	past := reportNow.AddDate(0, 0, -1)

	v, err := svc.DailyMetric(context.Background(), MetricOrderCount, past)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 12 {
		t.Errorf("expected 12, got %v", v)
	}
	if got, ok := c.ints["orderCount_2025-03-09"]; !ok || got != 12 {
		t.Errorf("expected int cache entry orderCount_2025-03-09=12, have %v", c.ints)
	}
}

func TestDailyMetricCacheFailureDegrades(t *testing.T) {
	svc, st, c := newReportFixture()
	st.turnover = 31
	c.getErr = errors.New("redis down")
	c.setErr = errors.New("redis down")

	v, err := svc.DailyMetric(context.Background(), MetricTurnover, reportNow.AddDate(0, 0, -2))
	if err != nil {
		t.Fatalf("cache failure must never propagate, got %v", err)
	}
	if v != 31 {
		t.Errorf("expected store value 31, got %v", v)
	}
	if st.sumCalls != 1 {
		t.Errorf("expected one store call, got %d", st.sumCalls)
	}
}

func TestOrderReportCompletionRateZeroDay(t *testing.T) {
	svc, _, _ := newReportFixture()
	day := reportNow.AddDate(0, 0, -1)

	report, err := svc.OrderReport(context.Background(), day, day)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.TotalOrderCount != 0 {
		t.Fatalf("expected no orders, got %d", report.TotalOrderCount)
	}
	if report.OrderCompletionRate != 1.0 {
		t.Errorf("a day with no traffic must report completion rate 1.0, got %v", report.OrderCompletionRate)
	}
}

func TestTurnoverReportSeries(t *testing.T) {
	svc, st, _ := newReportFixture()
	st.turnover = 10

	begin := reportNow.AddDate(0, 0, -2)
	report, err := svc.TurnoverReport(context.Background(), begin, reportNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.DateList != "2025-03-08,2025-03-09,2025-03-10" {
		t.Errorf("unexpected date list %q", report.DateList)
	}
	if report.TurnoverList != "10,10,10" {
		t.Errorf("unexpected turnover list %q", report.TurnoverList)
	}
}

func TestTopSalesClampsFutureEnd(t *testing.T) {
	svc, st, c := newReportFixture()
	st.top = []model.GoodsSale{{Name: "dish A", Number: 30}, {Name: "meal B", Number: 12}}

	begin := reportNow.AddDate(0, 0, -7)
	report, err := svc.TopSales(context.Background(), begin, reportNow.AddDate(0, 0, 5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.NameList != "dish A,meal B" || report.NumberList != "30,12" {
		t.Errorf("unexpected report %+v", report)
	}

	key := "salesTop10_2025-03-03_2025-03-10"
	if _, ok := c.tops[key]; !ok {
		t.Errorf("expected clamped cache key %q, have %v", key, c.tops)
	}
	// The window queried ends the day after the clamped end.
	wantEnd := time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)
	if !st.lastTopEnd.Equal(wantEnd) {
		t.Errorf("expected query end %v, got %v", wantEnd, st.lastTopEnd)
	}
}

func TestTopSalesCacheHit(t *testing.T) {
	svc, st, c := newReportFixture()
	begin := reportNow.AddDate(0, 0, -1)
	c.tops["salesTop10_2025-03-09_2025-03-10"] = []model.GoodsSale{{Name: "dish A", Number: 5}}

	report, err := svc.TopSales(context.Background(), begin, reportNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.NameList != "dish A" {
		t.Errorf("expected cached list, got %+v", report)
	}
	if st.topCalls != 0 {
		t.Errorf("cache hit must not query the store, got %d calls", st.topCalls)
	}
}

func TestOperationalSnapshot(t *testing.T) {
	svc, st, _ := newReportFixture()
	st.turnover = 100
	st.orderCount = 10
	st.validCount = 8
	st.newUsers = 2

	snapshot, err := svc.OperationalSnapshot(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snapshot.Begin != "2025-02-08" || snapshot.End != "2025-03-10" {
		t.Errorf("unexpected window %s..%s", snapshot.Begin, snapshot.End)
	}
	if len(snapshot.Days) != 31 {
		t.Errorf("expected 31 daily blocks, got %d", len(snapshot.Days))
	}
	if snapshot.Summary.OrderCompletionRate != 0.8 {
		t.Errorf("expected completion rate 0.8, got %v", snapshot.Summary.OrderCompletionRate)
	}
}
