// Package export renders timesheet reports into downloadable documents.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/example/timeclock/internal/application"
)

// timesheetHeader is the column order shared by both formats.
var timesheetHeader = []string{
	"employee_name",
	"employee_code",
	"date",
	"kind",
	"department",
	"task",
	"shift",
	"start",
	"end",
	"duration_minutes",
}

const timesheetSheet = "Timesheet"

// WriteTimesheetCSV streams rows as RFC 4180 CSV with a header line.
func WriteTimesheetCSV(w io.Writer, rows []application.TimesheetRow) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(timesheetHeader); err != nil {
		return fmt.Errorf("export: write csv header: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(timesheetRecord(row)); err != nil {
			return fmt.Errorf("export: write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("export: flush csv: %w", err)
	}
	return nil
}

// WriteTimesheetXLSX renders rows as a single-sheet workbook.
func WriteTimesheetXLSX(w io.Writer, rows []application.TimesheetRow) error {
	book := excelize.NewFile()
	defer book.Close()

	index, err := book.NewSheet(timesheetSheet)
	if err != nil {
		return fmt.Errorf("export: create sheet: %w", err)
	}
	book.SetActiveSheet(index)
	if err := book.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("export: drop default sheet: %w", err)
	}

	header := make([]any, len(timesheetHeader))
	for i, column := range timesheetHeader {
		header[i] = column
	}
	if err := book.SetSheetRow(timesheetSheet, "A1", &header); err != nil {
		return fmt.Errorf("export: write header row: %w", err)
	}

	for i, row := range rows {
		record := timesheetRecord(row)
		cells := make([]any, len(record))
		for j, value := range record {
			cells[j] = value
		}
		// Durations stay numeric so spreadsheet sums work out of the box.
		cells[len(cells)-1] = row.DurationMinutes

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("export: cell name: %w", err)
		}
		if err := book.SetSheetRow(timesheetSheet, cell, &cells); err != nil {
			return fmt.Errorf("export: write row %d: %w", i+2, err)
		}
	}

	if _, err := book.WriteTo(w); err != nil {
		return fmt.Errorf("export: write workbook: %w", err)
	}
	return nil
}

func timesheetRecord(row application.TimesheetRow) []string {
	end := ""
	if row.End != nil {
		end = row.End.UTC().Format(time.RFC3339)
	}
	return []string{
		row.EmployeeName,
		row.EmployeeCode,
		row.Date,
		row.Kind,
		row.Department,
		row.Task,
		row.Shift,
		row.Start.UTC().Format(time.RFC3339),
		end,
		strconv.Itoa(row.DurationMinutes),
	}
}
