package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"eatery/internal/cache"
	"eatery/internal/metrics"
	"eatery/internal/model"
)

const dateLayout = "2006-01-02"

// A fully elapsed day never changes, so its value is effectively immutable
// and can live in the cache for a long time. Range leaderboards are keyed by
// a caller-chosen window, so reuse is only likely within a dashboard refresh
// loop.
const (
	dailyTTL    = 24 * time.Hour
	topSalesTTL = time.Minute
)

type MetricKind string

const (
	MetricTurnover        MetricKind = "turnover"
	MetricTotalUsers      MetricKind = "totalUser"
	MetricNewUsers        MetricKind = "newUser"
	MetricOrderCount      MetricKind = "orderCount"
	MetricValidOrderCount MetricKind = "validOrderCount"
)

func (k MetricKind) key(day time.Time) string {
	return fmt.Sprintf("%s_%s", k, day.Format(dateLayout))
}

type ReportStore interface {
	SumTurnover(ctx context.Context, start, end time.Time, status model.OrderStatus) (float64, error)
	CountOrders(ctx context.Context, start, end time.Time, status *model.OrderStatus) (int64, error)
	CountTotalUsers(ctx context.Context, end time.Time) (int64, error)
	CountNewUsers(ctx context.Context, start, end time.Time) (int64, error)
	TopProductsByQuantity(ctx context.Context, start, end time.Time, status model.OrderStatus, limit int) ([]model.GoodsSale, error)
}

type ReportService struct {
	store ReportStore
	cache cache.Metrics
	met   *metrics.Registry
	now   func() time.Time
	group singleflight.Group
}

func NewReportService(store ReportStore, c cache.Metrics, met *metrics.Registry) *ReportService {
	return &ReportService{store: store, cache: c, met: met, now: time.Now}
}

// DailyMetric returns one metric for one calendar day. A future day is zero
// without touching store or cache; today is always recomputed from the store
// because it is still accumulating; a past day is cache-aside with a long
// TTL. Concurrent fills of the same past day collapse to one store query.
func (s *ReportService) DailyMetric(ctx context.Context, kind MetricKind, day time.Time) (float64, error) {
	ds := day.Format(dateLayout)
	ts := s.now().Format(dateLayout)

	if ds > ts {
		return 0, nil
	}
	if ds == ts {
		return s.computeDay(ctx, kind, day)
	}

	key := kind.key(day)
	if v, ok := s.cacheGet(ctx, kind, key); ok {
		s.met.ReportCacheHits.WithLabelValues(string(kind)).Inc()
		return v, nil
	}
	s.met.ReportCacheMiss.WithLabelValues(string(kind)).Inc()

	v, err, _ := s.group.Do(key, func() (any, error) {
		v, err := s.computeDay(ctx, kind, day)
		if err != nil {
			return 0.0, err
		}
		s.cacheSet(ctx, kind, key, v)
		return v, nil
	})
	if err != nil {
		return 0, err
	}
	return v.(float64), nil
}

func (s *ReportService) computeDay(ctx context.Context, kind MetricKind, day time.Time) (float64, error) {
	start := midnight(day)
	end := start.AddDate(0, 0, 1)

	switch kind {
	case MetricTurnover:
		return s.store.SumTurnover(ctx, start, end, model.StatusCompleted)
	case MetricTotalUsers:
		n, err := s.store.CountTotalUsers(ctx, end)
		return float64(n), err
	case MetricNewUsers:
		n, err := s.store.CountNewUsers(ctx, start, end)
		return float64(n), err
	case MetricOrderCount:
		n, err := s.store.CountOrders(ctx, start, end, nil)
		return float64(n), err
	case MetricValidOrderCount:
		completed := model.StatusCompleted
		n, err := s.store.CountOrders(ctx, start, end, &completed)
		return float64(n), err
	}
	return 0, fmt.Errorf("unknown metric kind %q", kind)
}

// cacheGet treats any cache failure as a miss. The cache is advisory; the
// store answers regardless.
func (s *ReportService) cacheGet(ctx context.Context, kind MetricKind, key string) (float64, bool) {
	if kind == MetricTurnover {
		v, ok, err := s.cache.GetFloat64(ctx, key)
		if err != nil {
			s.met.ReportCacheError.Inc()
			slog.Error("report cache read failed", "key", key, "error", err)
			return 0, false
		}
		return v, ok
	}
	n, ok, err := s.cache.GetInt64(ctx, key)
	if err != nil {
		s.met.ReportCacheError.Inc()
		slog.Error("report cache read failed", "key", key, "error", err)
		return 0, false
	}
	return float64(n), ok
}

func (s *ReportService) cacheSet(ctx context.Context, kind MetricKind, key string, v float64) {
	var err error
	if kind == MetricTurnover {
		err = s.cache.SetFloat64(ctx, key, v, dailyTTL)
	} else {
		err = s.cache.SetInt64(ctx, key, int64(v), dailyTTL)
	}
	if err != nil {
		s.met.ReportCacheError.Inc()
		slog.Error("report cache write failed", "key", key, "error", err)
	}
}

func (s *ReportService) TurnoverReport(ctx context.Context, begin, end time.Time) (*model.TurnoverReport, error) {
	days := dateRange(begin, end)
	dates := make([]string, 0, len(days))
	turnovers := make([]string, 0, len(days))

	for _, day := range days {
		v, err := s.DailyMetric(ctx, MetricTurnover, day)
		if err != nil {
			return nil, err
		}
		dates = append(dates, day.Format(dateLayout))
		turnovers = append(turnovers, formatFloat(v))
	}

	return &model.TurnoverReport{
		DateList:     strings.Join(dates, ","),
		TurnoverList: strings.Join(turnovers, ","),
	}, nil
}

func (s *ReportService) UserReport(ctx context.Context, begin, end time.Time) (*model.UserReport, error) {
	days := dateRange(begin, end)
	dates := make([]string, 0, len(days))
	totals := make([]string, 0, len(days))
	news := make([]string, 0, len(days))

	for _, day := range days {
		total, err := s.DailyMetric(ctx, MetricTotalUsers, day)
		if err != nil {
			return nil, err
		}
		fresh, err := s.DailyMetric(ctx, MetricNewUsers, day)
		if err != nil {
			return nil, err
		}
		dates = append(dates, day.Format(dateLayout))
		totals = append(totals, formatCount(total))
		news = append(news, formatCount(fresh))
	}

	return &model.UserReport{
		DateList:      strings.Join(dates, ","),
		TotalUserList: strings.Join(totals, ","),
		NewUserList:   strings.Join(news, ","),
	}, nil
}

func (s *ReportService) OrderReport(ctx context.Context, begin, end time.Time) (*model.OrderReport, error) {
	days := dateRange(begin, end)
	dates := make([]string, 0, len(days))
	counts := make([]string, 0, len(days))
	valids := make([]string, 0, len(days))
	var totalCount, totalValid int64

	for _, day := range days {
		count, err := s.DailyMetric(ctx, MetricOrderCount, day)
		if err != nil {
			return nil, err
		}
		valid, err := s.DailyMetric(ctx, MetricValidOrderCount, day)
		if err != nil {
			return nil, err
		}
		dates = append(dates, day.Format(dateLayout))
		counts = append(counts, formatCount(count))
		valids = append(valids, formatCount(valid))
		totalCount += int64(count)
		totalValid += int64(valid)
	}

	return &model.OrderReport{
		DateList:            strings.Join(dates, ","),
		OrderCountList:      strings.Join(counts, ","),
		ValidOrderCountList: strings.Join(valids, ","),
		TotalOrderCount:     totalCount,
		ValidOrderCount:     totalValid,
		OrderCompletionRate: completionRate(totalValid, totalCount),
	}, nil
}

// TopSales ranks the ten best-selling products over the window. The window
// itself is the cache key; a future end is clamped to today since later days
// cannot hold orders yet.
func (s *ReportService) TopSales(ctx context.Context, begin, end time.Time) (*model.SalesTopReport, error) {
	today := s.now()
	if end.Format(dateLayout) > today.Format(dateLayout) {
		end = today
	}

	key := fmt.Sprintf("salesTop10_%s_%s", begin.Format(dateLayout), end.Format(dateLayout))

	cached, ok, err := s.cache.GetTopSales(ctx, key)
	if err != nil {
		s.met.ReportCacheError.Inc()
		slog.Error("report cache read failed", "key", key, "error", err)
	} else if ok {
		s.met.ReportCacheHits.WithLabelValues("salesTop10").Inc()
		return salesReport(cached), nil
	}
	s.met.ReportCacheMiss.WithLabelValues("salesTop10").Inc()

	v, err, _ := s.group.Do(key, func() (any, error) {
		sales, err := s.store.TopProductsByQuantity(ctx, midnight(begin), midnight(end).AddDate(0, 0, 1), model.StatusCompleted, 10)
		if err != nil {
			return nil, err
		}
		if err := s.cache.SetTopSales(ctx, key, sales, topSalesTTL); err != nil {
			s.met.ReportCacheError.Inc()
			slog.Error("report cache write failed", "key", key, "error", err)
		}
		return sales, nil
	})
	if err != nil {
		return nil, err
	}

	return salesReport(v.([]model.GoodsSale)), nil
}

// OperationalSnapshot composes the trailing-30-day report document: one
// business-data block per day plus one for the whole window. Rendering it
// into a spreadsheet or dashboard is the caller's concern.
func (s *ReportService) OperationalSnapshot(ctx context.Context) (*model.OperationalSnapshot, error) {
	today := midnight(s.now())
	begin := today.AddDate(0, 0, -30)

	summary, err := s.businessData(ctx, begin, today.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	days := dateRange(begin, today)
	daily := make([]model.DailyBusinessData, 0, len(days))
	for _, day := range days {
		start := midnight(day)
		bd, err := s.businessData(ctx, start, start.AddDate(0, 0, 1))
		if err != nil {
			return nil, err
		}
		daily = append(daily, model.DailyBusinessData{
			Date:         day.Format(dateLayout),
			BusinessData: bd,
		})
	}

	return &model.OperationalSnapshot{
		Begin:   begin.Format(dateLayout),
		End:     today.Format(dateLayout),
		Summary: summary,
		Days:    daily,
	}, nil
}

func (s *ReportService) businessData(ctx context.Context, start, end time.Time) (model.BusinessData, error) {
	turnover, err := s.store.SumTurnover(ctx, start, end, model.StatusCompleted)
	if err != nil {
		return model.BusinessData{}, err
	}
	orderCount, err := s.store.CountOrders(ctx, start, end, nil)
	if err != nil {
		return model.BusinessData{}, err
	}
	completed := model.StatusCompleted
	validCount, err := s.store.CountOrders(ctx, start, end, &completed)
	if err != nil {
		return model.BusinessData{}, err
	}
	newUsers, err := s.store.CountNewUsers(ctx, start, end)
	if err != nil {
		return model.BusinessData{}, err
	}

	return model.BusinessData{
		Turnover:            turnover,
		OrderCount:          orderCount,
		ValidOrderCount:     validCount,
		OrderCompletionRate: completionRate(validCount, orderCount),
		NewUsers:            newUsers,
	}, nil
}

// completionRate treats a day with no traffic as fully completed rather than
// letting a zero denominator distort the series.
func completionRate(valid, total int64) float64 {
	if total == 0 {
		return 1.0
	}
	return float64(valid) / float64(total)
}

func salesReport(sales []model.GoodsSale) *model.SalesTopReport {
	names := make([]string, 0, len(sales))
	numbers := make([]string, 0, len(sales))
	for _, s := range sales {
		names = append(names, s.Name)
		numbers = append(numbers, strconv.FormatInt(s.Number, 10))
	}
	return &model.SalesTopReport{
		NameList:   strings.Join(names, ","),
		NumberList: strings.Join(numbers, ","),
	}
}

// dateRange is the inclusive day sequence from begin to end.
func dateRange(begin, end time.Time) []time.Time {
	var days []time.Time
	for day := midnight(begin); !day.After(midnight(end)); day = day.AddDate(0, 0, 1) {
		days = append(days, day)
	}
	return days
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatCount(v float64) string {
	return strconv.FormatInt(int64(v), 10)
}
