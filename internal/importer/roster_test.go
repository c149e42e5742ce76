package importer

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestParseRosterCSV(t *testing.T) {
	input := strings.NewReader(strings.Join([]string{
		"name,position,email,temporary",
		"Jane Smith,Line Lead,jane@example.com,no",
		"",
		"Ken Adams,Packer,,yes",
	}, "\n"))

	rows, err := ParseRosterCSV(input)
	if err != nil {
		t.Fatalf("ParseRosterCSV failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len = %d, want 2", len(rows))
	}
	if rows[0].Input.Name != "Jane Smith" || rows[0].Input.Email != "jane@example.com" || rows[0].Input.IsTemp {
		t.Errorf("first row = %+v", rows[0].Input)
	}
	if rows[1].Line != 4 {
		t.Errorf("line = %d, want 4 with the blank line skipped", rows[1].Line)
	}
	if !rows[1].Input.IsTemp {
		t.Error("temporary=yes must parse as true")
	}
}

func TestParseRosterCSVIgnoresUnknownColumns(t *testing.T) {
	input := strings.NewReader(strings.Join([]string{
		"badge,name,shoe_size",
		"B-17,Jane Smith,38",
	}, "\n"))

	rows, err := ParseRosterCSV(input)
	if err != nil {
		t.Fatalf("ParseRosterCSV failed: %v", err)
	}
	if len(rows) != 1 || rows[0].Input.Name != "Jane Smith" {
		t.Errorf("rows = %+v", rows)
	}
}

func TestParseRosterCSVRejectsMissingName(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "no name column",
			input: "position,email\nLead,jane@example.com",
			want:  `"name" column`,
		},
		{
			name:  "blank name cell",
			input: "name,position\nJane Smith,Lead\n,Packer",
			want:  "line 3",
		},
		{
			name:  "blank name cell after blank lines",
			input: "name,position\nJane Smith,Lead\n\n\n,Packer",
			want:  "line 5",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseRosterCSV(strings.NewReader(tc.input))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("err = %v, want mention of %q", err, tc.want)
			}
		})
	}
}

func TestParseRosterXLSX(t *testing.T) {
	book := excelize.NewFile()
	sheet := book.GetSheetList()[0]
	cells := [][]any{
		{"name", "position", "temporary"},
		{"Jane Smith", "Line Lead", "no"},
		{"Ken Adams", "Packer", "yes"},
	}
	for i, row := range cells {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := book.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("write row: %v", err)
		}
	}
	var buf bytes.Buffer
	if _, err := book.WriteTo(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}

	rows, err := ParseRosterXLSX(&buf)
	if err != nil {
		t.Fatalf("ParseRosterXLSX failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len = %d, want 2", len(rows))
	}
	if rows[1].Input.Name != "Ken Adams" || !rows[1].Input.IsTemp {
		t.Errorf("second row = %+v", rows[1].Input)
	}
}

func TestParseRosterRejectsUnknownFormat(t *testing.T) {
	_, err := ParseRoster(strings.NewReader(""), "pdf")
	if !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("err = %v, want ErrUnknownFormat", err)
	}
}
