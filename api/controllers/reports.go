package controllers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/smartstockhq/smartstock-backend/api/responses"
	"github.com/smartstockhq/smartstock-backend/api/validators"
	"github.com/smartstockhq/smartstock-backend/internal/reports"
	"github.com/smartstockhq/smartstock-backend/pkg/logger"
)

// reportPeriod pulls year/month query parameters, defaulting to the current
// month.
func reportPeriod(r *http.Request, now time.Time) (int, time.Month, error) {
	year, err := validators.ParseQueryInt(r, "year", now.Year(), 1, 9999)
	if err != nil {
		return 0, 0, err
	}
	month, err := validators.ParseQueryInt(r, "month", int(now.Month()), 1, 12)
	if err != nil {
		return 0, 0, err
	}
	return year, time.Month(month), nil
}

// AccountingSummary returns the accounting page aggregates.
func AccountingSummary(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		year, month, err := reportPeriod(r, time.Now().UTC())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		summary, err := svc.AccountingSummary(r.Context(), year, month)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

// AccountingTransactions returns the full merged transaction history.
func AccountingTransactions(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.TransactionHistory(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"transactions": rows})
	}
}

// BookingStatement returns one lease's ledger lines with the stored totals
// reconciled against a replay of the immutable rows.
func BookingStatement(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bookingID, err := bookingIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		statement, err := svc.LeaseStatement(r.Context(), bookingID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, statement)
	}
}

// PaymentTrackerSummary returns the worklist and collection health cards.
func PaymentTrackerSummary(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := svc.PaymentTrackerSummary(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

// DashboardSummary returns the landing page aggregates.
func DashboardSummary(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dashboard, err := svc.Dashboard(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dashboard)
	}
}

type exportFunc func(r *http.Request, buf *bytes.Buffer) (string, error)

// serveExport buffers the export so failures surface as JSON errors instead
// of a truncated download.
func serveExport(logg *logger.Logger, contentType string, export exportFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		filename, err := export(r, &buf)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		_, _ = w.Write(buf.Bytes())
	}
}

// AccountingReportCSV downloads the accounting report.
func AccountingReportCSV(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return serveExport(logg, "text/csv", func(r *http.Request, buf *bytes.Buffer) (string, error) {
		return svc.AccountingCSV(r.Context(), buf)
	})
}

// PaymentTrackerCSV downloads the payment tracker report.
func PaymentTrackerCSV(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return serveExport(logg, "text/csv", func(r *http.Request, buf *bytes.Buffer) (string, error) {
		return svc.PaymentTrackerCSV(r.Context(), buf)
	})
}

// StockActivityCSV downloads the month's stock activity report.
func StockActivityCSV(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return serveExport(logg, "text/csv", func(r *http.Request, buf *bytes.Buffer) (string, error) {
		year, month, err := reportPeriod(r, time.Now().UTC())
		if err != nil {
			return "", err
		}
		return svc.StockActivityCSV(r.Context(), buf, year, month)
	})
}

// StockActivityXLSX downloads the month's stock activity workbook.
func StockActivityXLSX(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return serveExport(logg, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", func(r *http.Request, buf *bytes.Buffer) (string, error) {
		year, month, err := reportPeriod(r, time.Now().UTC())
		if err != nil {
			return "", err
		}
		return svc.StockActivityXLSX(r.Context(), buf, year, month)
	})
}
