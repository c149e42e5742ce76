// Package importer parses roster uploads into employee records.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/example/timeclock/internal/application"
)

// ErrUnknownFormat is returned for upload formats the importer cannot read.
var ErrUnknownFormat = errors.New("importer: unknown roster format")

// RosterRow is one parsed employee line before it hits the roster service.
type RosterRow struct {
	Line  int
	Input application.EmployeeInput
}

// rosterColumns maps recognised header names to field setters. Unknown
// columns are ignored so exports from other tools import cleanly.
var rosterColumns = map[string]func(*application.EmployeeInput, string){
	"name":      func(input *application.EmployeeInput, value string) { input.Name = value },
	"position":  func(input *application.EmployeeInput, value string) { input.Position = value },
	"email":     func(input *application.EmployeeInput, value string) { input.Email = value },
	"temporary": func(input *application.EmployeeInput, value string) { input.IsTemp = parseFlag(value) },
}

// ParseRoster dispatches on format ("csv" or "xlsx").
func ParseRoster(r io.Reader, format string) ([]RosterRow, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "csv":
		return ParseRosterCSV(r)
	case "xlsx":
		return ParseRosterXLSX(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// ParseRosterCSV reads a headered CSV roster. The header must contain a
// "name" column; rows with a blank name are rejected with their line number.
func ParseRosterCSV(r io.Reader) ([]RosterRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("importer: roster is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("importer: read csv: %w", err)
	}

	var records []rosterRecord
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("importer: read csv: %w", err)
		}
		// The reader skips blank lines; FieldPos reports the physical
		// line so reported numbers stay aligned with the file.
		line, _ := reader.FieldPos(0)
		records = append(records, rosterRecord{line: line, fields: fields})
	}
	return buildRoster(header, records)
}

// ParseRosterXLSX reads the first sheet of a workbook roster.
func ParseRosterXLSX(r io.Reader) ([]RosterRow, error) {
	book, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("importer: open workbook: %w", err)
	}
	defer book.Close()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("importer: workbook has no sheets")
	}
	sheetRows, err := book.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("importer: read sheet %q: %w", sheets[0], err)
	}
	if len(sheetRows) == 0 {
		return nil, errors.New("importer: roster is empty")
	}

	records := make([]rosterRecord, 0, len(sheetRows)-1)
	for i, fields := range sheetRows[1:] {
		records = append(records, rosterRecord{line: i + 2, fields: fields})
	}
	return buildRoster(sheetRows[0], records)
}

// rosterRecord pairs a data row with the physical line it came from.
type rosterRecord struct {
	line   int
	fields []string
}

func buildRoster(header []string, records []rosterRecord) ([]RosterRow, error) {
	setters, err := headerSetters(header)
	if err != nil {
		return nil, err
	}

	rows := make([]RosterRow, 0, len(records))
	for _, record := range records {
		if isBlankRecord(record.fields) {
			continue
		}
		var input application.EmployeeInput
		for column, setter := range setters {
			if column < len(record.fields) {
				setter(&input, strings.TrimSpace(record.fields[column]))
			}
		}
		if input.Name == "" {
			return nil, fmt.Errorf("importer: line %d: name is required", record.line)
		}
		rows = append(rows, RosterRow{Line: record.line, Input: input})
	}
	return rows, nil
}

func headerSetters(header []string) (map[int]func(*application.EmployeeInput, string), error) {
	setters := make(map[int]func(*application.EmployeeInput, string))
	hasName := false
	for i, column := range header {
		normalized := strings.ToLower(strings.TrimSpace(column))
		if setter, ok := rosterColumns[normalized]; ok {
			setters[i] = setter
			if normalized == "name" {
				hasName = true
			}
		}
	}
	if !hasName {
		return nil, errors.New(`importer: header must contain a "name" column`)
	}
	return setters, nil
}

func isBlankRecord(record []string) bool {
	for _, value := range record {
		if strings.TrimSpace(value) != "" {
			return false
		}
	}
	return true
}

func parseFlag(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "y":
		return true
	default:
		return false
	}
}
