package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/example/timeclock/internal/application"
	"github.com/example/timeclock/internal/export"
)

// ReportService builds the rows behind the timesheet export.
type ReportService interface {
	BuildTimesheet(ctx context.Context, query application.TimesheetQuery) ([]application.TimesheetRow, error)
}

// ReportHandler serves timesheet downloads for administrators.
type ReportHandler struct {
	service   ReportService
	responder responder
	logger    *slog.Logger
}

func NewReportHandler(service ReportService, logger *slog.Logger) *ReportHandler {
	logger = defaultLogger(logger)
	return &ReportHandler{
		service:   service,
		responder: newResponder(logger),
		logger:    logger,
	}
}

func (h *ReportHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "report", operation, attrs...)
}

// Timesheet streams the report as CSV (default) or XLSX, selected by the
// format query parameter.
func (h *ReportHandler) Timesheet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h == nil || h.service == nil {
		h.responder.writeError(ctx, w, http.StatusInternalServerError, nil)
		return
	}

	params := r.URL.Query()
	format := params.Get("format")
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "xlsx" {
		h.responder.writeError(ctx, w, http.StatusBadRequest,
			fmt.Errorf("unsupported format %q, expected csv or xlsx", format))
		return
	}

	rows, err := h.service.BuildTimesheet(ctx, application.TimesheetQuery{
		EmployeeID: params.Get("employee_id"),
		FromDate:   params.Get("from"),
		ToDate:     params.Get("to"),
	})
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	h.log(ctx, "timesheet").InfoContext(ctx, "timesheet exported", "format", format, "rows", len(rows))

	switch format {
	case "xlsx":
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="timesheet.xlsx"`)
		err = export.WriteTimesheetXLSX(w, rows)
	default:
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="timesheet.csv"`)
		err = export.WriteTimesheetCSV(w, rows)
	}
	if err != nil {
		// Headers are out the door; log rather than attempt a JSON error.
		h.log(ctx, "timesheet").ErrorContext(ctx, "timesheet rendering failed", "error", err)
	}
}
