package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"eatery/internal/service"
)

const dateLayout = "2006-01-02"

func TurnoverReportHandler(reportSvc *service.ReportService) http.HandlerFunc {
	return rangeReport(func(ctx context.Context, begin, end time.Time) (any, error) {
		return reportSvc.TurnoverReport(ctx, begin, end)
	})
}

func UserReportHandler(reportSvc *service.ReportService) http.HandlerFunc {
	return rangeReport(func(ctx context.Context, begin, end time.Time) (any, error) {
		return reportSvc.UserReport(ctx, begin, end)
	})
}

func OrderReportHandler(reportSvc *service.ReportService) http.HandlerFunc {
	return rangeReport(func(ctx context.Context, begin, end time.Time) (any, error) {
		return reportSvc.OrderReport(ctx, begin, end)
	})
}

func TopSalesHandler(reportSvc *service.ReportService) http.HandlerFunc {
	return rangeReport(func(ctx context.Context, begin, end time.Time) (any, error) {
		return reportSvc.TopSales(ctx, begin, end)
	})
}

func rangeReport(query func(ctx context.Context, begin, end time.Time) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		begin, err := time.ParseInLocation(dateLayout, r.URL.Query().Get("begin"), time.Local)
		if err != nil {
			http.Error(w, "invalid begin date", http.StatusBadRequest)
			return
		}
		end, err := time.ParseInLocation(dateLayout, r.URL.Query().Get("end"), time.Local)
		if err != nil {
			http.Error(w, "invalid end date", http.StatusBadRequest)
			return
		}
		if end.Before(begin) {
			http.Error(w, "end date before begin date", http.StatusBadRequest)
			return
		}

		report, err := query(r.Context(), begin, end)
		if err != nil {
			slog.Error("report query failed", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, report)
	}
}

// ExportSnapshotHandler hands out the trailing-30-day operational document.
// Spreadsheet rendering lives with the consumer, not here.
func ExportSnapshotHandler(reportSvc *service.ReportService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshot, err := reportSvc.OperationalSnapshot(r.Context())
		if err != nil {
			slog.Error("snapshot export failed", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, snapshot)
	}
}
