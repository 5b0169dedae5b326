package app

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"attendance_exception_bot/internal/domain/attendance"

	"github.com/xuri/excelize/v2"
)

func exportRecords() []attendance.Record {
	return []attendance.Record{
		{ID: 2, Date: "2024-05-01", StudentName: "Kim", StudentClass: "3-1", AttendanceType: attendance.TypeLate, Reason: "bus", Memo: "", SubmittedAt: "2024. 5. 1. 오전 8:55:00"},
		{ID: 1, Date: "2024-05-01", StudentName: "Lee", StudentClass: "3-2", AttendanceType: attendance.TypeOuting, Reason: "clinic, dentist", Memo: `said "back by 3", ok`, SubmittedAt: "2024. 5. 1. 오후 1:00:00"},
	}
}

func TestToCSVRows(t *testing.T) {
	rows := ToCSVRows(exportRecords())
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if strings.Join(rows[0], ",") != "date,studentName,studentClass,attendanceType,reason,memo,submittedAt" {
		t.Fatalf("unexpected header %v", rows[0])
	}
	// insertion order, not display order
	if rows[1][1] != "Kim" || rows[2][1] != "Lee" {
		t.Fatalf("rows not in input order: %v", rows)
	}
	if rows[2][3] != "외출" {
		t.Fatalf("expected literal category label, got %s", rows[2][3])
	}
}

func TestWriteCSVQuotesMemo(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, exportRecords()); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %q", buf.String())
	}
	if lines[1] != `2024-05-01,Kim,3-1,지각,bus,"",2024. 5. 1. 오전 8:55:00` {
		t.Fatalf("unexpected first row %q", lines[1])
	}
	if lines[2] != `2024-05-01,Lee,3-2,외출,"clinic, dentist","said ""back by 3"", ok",2024. 5. 1. 오후 1:00:00` {
		t.Fatalf("unexpected second row %q", lines[2])
	}
}

func TestWriteCSVMemoWithQuoteAndNewline(t *testing.T) {
	memo := "line one\nshe said \"later\""
	records := []attendance.Record{
		{ID: 1, Date: "2024-05-01", StudentName: "Kim", StudentClass: "3-1", AttendanceType: attendance.TypeAbsent, Reason: "flu", Memo: memo, SubmittedAt: "2024. 5. 1. 오전 9:00:00"},
	}
	var buf bytes.Buffer
	if err := WriteCSV(&buf, records); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	if !strings.Contains(buf.String(), `,"line one`+"\n"+`she said ""later""",`) {
		t.Fatalf("memo not escaped as expected: %q", buf.String())
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output does not parse as CSV: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header + 1 row, got %d rows", len(rows))
	}
	if rows[1][memoColumn] != memo {
		t.Fatalf("memo round trip = %q, want %q", rows[1][memoColumn], memo)
	}
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	if buf.String() != strings.Join(ExportHeader, ",")+"\n" {
		t.Fatalf("expected header only, got %q", buf.String())
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, exportRecords()); err != nil {
		t.Fatalf("write xlsx: %v", err)
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer func() { _ = f.Close() }()
	rows, err := f.GetRows(xlsxSheet)
	if err != nil {
		t.Fatalf("get rows: %v", err)
	}
	if len(rows) != 3 || rows[2][5] != `said "back by 3", ok` {
		t.Fatalf("unexpected sheet contents %v", rows)
	}
}

func TestExportFilename(t *testing.T) {
	if got := ExportFilename("2024-05-01", "csv"); got != "attendance_2024-05-01.csv" {
		t.Fatalf("unexpected filename %s", got)
	}
}
