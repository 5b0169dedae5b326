// internal/app/export.go
package app

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"attendance_exception_bot/internal/domain/attendance"

	"github.com/xuri/excelize/v2"
)

// ExportHeader is the first row of every export.
var ExportHeader = []string{"date", "studentName", "studentClass", "attendanceType", "reason", "memo", "submittedAt"}

const (
	memoColumn  = 5
	xlsxSheet   = "records"
	defaultXLSX = "Sheet1"
)

// ToCSVRows renders records as export rows, header first, in the given order.
func ToCSVRows(records []attendance.Record) [][]string {
	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, append([]string(nil), ExportHeader...))
	for _, r := range records {
		rows = append(rows, []string{
			r.Date,
			r.StudentName,
			r.StudentClass,
			string(r.AttendanceType),
			r.Reason,
			r.Memo,
			r.SubmittedAt,
		})
	}
	return rows
}

// WriteCSV writes the export rows as CSV. The memo column is always quoted since free text
// routinely carries commas; other columns are quoted only when they need it.
// encoding/csv has no per-column quoting switch, so fields are escaped by csvField instead;
// the output still parses with csv.Reader.
func WriteCSV(w io.Writer, records []attendance.Record) error {
	bw := bufio.NewWriter(w)
	for i, row := range ToCSVRows(records) {
		for col, field := range row {
			if col > 0 {
				if err := bw.WriteByte(','); err != nil {
					return err
				}
			}
			forceQuote := i > 0 && col == memoColumn
			if _, err := bw.WriteString(csvField(field, forceQuote)); err != nil {
				return err
			}
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func csvField(s string, force bool) string {
	if !force && !strings.ContainsAny(s, ",\"\r\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// WriteXLSX writes the export rows into a single-sheet workbook.
func WriteXLSX(w io.Writer, records []attendance.Record) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	idx, err := f.NewSheet(xlsxSheet)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet(defaultXLSX); err != nil {
		return fmt.Errorf("drop default sheet: %w", err)
	}

	for i, row := range ToCSVRows(records) {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(xlsxSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// ExportFilename returns the download name for an export made on the given ISO date.
func ExportFilename(date, ext string) string {
	return fmt.Sprintf("attendance_%s.%s", date, ext)
}
