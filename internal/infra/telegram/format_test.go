package telegram

import (
	"strings"
	"testing"
	"time"

	"attendance_exception_bot/internal/app"
	"attendance_exception_bot/internal/domain/attendance"
)

func TestParseSubmission(t *testing.T) {
	c := parseSubmission(" 김민수 | 3-1 | late | 늦잠 | 버스 | 지연 ")
	want := attendance.Candidate{StudentName: "김민수", StudentClass: "3-1", AttendanceType: "late", Reason: "늦잠", Memo: "버스 | 지연"}
	if c != want {
		t.Fatalf("parseSubmission = %+v, want %+v", c, want)
	}

	partial := parseSubmission("김민수 | 3-1")
	err := partial.Normalize().Validate()
	verr, ok := err.(*attendance.ValidationError)
	if !ok {
		t.Fatalf("expected validation error, got %v", err)
	}
	if names := verr.FieldNames(); len(names) != 2 || names[0] != "attendanceType" || names[1] != "reason" {
		t.Fatalf("unexpected missing fields %v", names)
	}
}

func TestParseCriteria(t *testing.T) {
	today := "2024-05-01"
	cases := []struct {
		args []string
		want attendance.Criteria
	}{
		{nil, attendance.Criteria{Date: today}},
		{[]string{"2024-04-30"}, attendance.Criteria{Date: "2024-04-30"}},
		{[]string{"all"}, attendance.Criteria{}},
		{[]string{"3-1"}, attendance.Criteria{Date: today, Class: "3-1"}},
		{[]string{"전체", "3-2"}, attendance.Criteria{Class: "3-2"}},
		{[]string{"2024-04-30", "3-2"}, attendance.Criteria{Date: "2024-04-30", Class: "3-2"}},
	}
	for _, tc := range cases {
		if got := parseCriteria(tc.args, today); got != tc.want {
			t.Fatalf("parseCriteria(%v) = %+v, want %+v", tc.args, got, tc.want)
		}
	}
}

func TestFormatValidationError(t *testing.T) {
	msg := formatValidationError(&attendance.ValidationError{Fields: []attendance.FieldProblem{
		{Field: "studentName", Rule: "required"},
		{Field: "attendanceType", Rule: "attendance_type"},
	}})
	if !strings.Contains(msg, "이름 누락") || !strings.Contains(msg, "지각, 결석, 조퇴, 외출") {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestFormatViewEmptyAndTruncated(t *testing.T) {
	empty := formatView(app.View{Counts: app.Counts{EstimatedNormal: 30}}, attendance.Criteria{Date: "2024-05-01"})
	if !strings.Contains(empty, "해당 조건에 맞는 출결 사유가 없습니다.") || !strings.Contains(empty, "정상(추정) 30") {
		t.Fatalf("unexpected empty view %q", empty)
	}

	var records []attendance.Record
	for i := 0; i < maxListedRecords+3; i++ {
		records = append(records, attendance.Record{ID: int64(i), StudentName: "s", StudentClass: "3-1", AttendanceType: attendance.TypeLate, Reason: "r", Memo: "m"})
	}
	full := formatView(app.View{Records: records}, attendance.Criteria{Class: "3-1"})
	if !strings.HasPrefix(full, "전체 기간 · 3-1 출결 현황") {
		t.Fatalf("unexpected title in %q", full[:40])
	}
	if !strings.Contains(full, "외 3건") {
		t.Fatalf("expected truncation notice")
	}
	if !strings.Contains(full, "메모: m") {
		t.Fatalf("expected memo line")
	}
}

func TestFormatWeeklyDigest(t *testing.T) {
	asOf := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	msg := FormatWeeklyDigest(app.WeeklyRollup{Total: 3, Late: 1, Absent: 1, EarlyOrOut: 1}, asOf)
	if !strings.Contains(msg, "2024-05-03 ~ 2024-05-10") || !strings.Contains(msg, "전체 3건") {
		t.Fatalf("unexpected digest %q", msg)
	}
	if !strings.Contains(FormatWeeklyDigest(app.WeeklyRollup{}, asOf), "없습니다") {
		t.Fatalf("expected empty-week notice")
	}
}
