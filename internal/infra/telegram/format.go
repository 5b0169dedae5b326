package telegram

import (
	"fmt"
	"strings"
	"time"

	"attendance_exception_bot/internal/app"
	"attendance_exception_bot/internal/domain/attendance"
)

// maxListedRecords keeps /records replies under Telegram's 4096 character limit.
const maxListedRecords = 20

var fieldLabels = map[string]string{
	"studentName":    "이름",
	"studentClass":   "반",
	"attendanceType": "출결 유형",
	"reason":         "사유",
}

// parseSubmission splits "/submit 이름 | 반 | 유형 | 사유 [| 메모]". Missing parts stay empty
// so validation can name them; anything past the fifth separator belongs to the memo.
func parseSubmission(payload string) attendance.Candidate {
	parts := strings.SplitN(payload, "|", 5)
	get := func(i int) string {
		if i < len(parts) {
			return strings.TrimSpace(parts[i])
		}
		return ""
	}
	return attendance.Candidate{
		StudentName:    get(0),
		StudentClass:   get(1),
		AttendanceType: attendance.Type(get(2)),
		Reason:         get(3),
		Memo:           get(4),
	}
}

// parseCriteria reads "/records [YYYY-MM-DD|all] [반]". The date defaults to today.
func parseCriteria(args []string, today string) attendance.Criteria {
	c := attendance.Criteria{Date: today}
	for _, arg := range args {
		arg = strings.TrimSpace(arg)
		switch {
		case arg == "":
		case strings.EqualFold(arg, "all") || arg == "전체":
			c.Date = ""
		case isISODate(arg):
			c.Date = arg
		default:
			c.Class = arg
		}
	}
	return c
}

func isISODate(s string) bool {
	_, err := time.Parse(attendance.DateLayout, s)
	return err == nil
}

func formatValidationError(verr *attendance.ValidationError) string {
	var b strings.Builder
	b.WriteString("모든 필수 항목을 입력해주세요.\n")
	for _, f := range verr.Fields {
		label := fieldLabels[f.Field]
		if label == "" {
			label = f.Field
		}
		if f.Rule == "attendance_type" {
			fmt.Fprintf(&b, "- %s: %s 중 하나여야 합니다\n", label, joinTypes())
			continue
		}
		fmt.Fprintf(&b, "- %s 누락\n", label)
	}
	b.WriteString("\n형식: /submit 이름 | 반 | 유형 | 사유 [| 메모]")
	return b.String()
}

func joinTypes() string {
	names := make([]string, 0, len(attendance.Types))
	for _, t := range attendance.Types {
		names = append(names, string(t))
	}
	return strings.Join(names, ", ")
}

func formatSubmitted(rec attendance.Record) string {
	return fmt.Sprintf("출결 사유가 성공적으로 제출되었습니다.\n%s (%s) %s\n사유: %s\n제출 시간: %s",
		rec.StudentName, rec.StudentClass, rec.AttendanceType, rec.Reason, rec.SubmittedAt)
}

func formatCounts(c app.Counts) string {
	return fmt.Sprintf("지각 %d · 결석 %d · 조퇴/외출 %d · 정상(추정) %d", c.Late, c.Absent, c.EarlyOrOut, c.EstimatedNormal)
}

func formatRecord(r attendance.Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%d] %s (%s) %s\n", r.ID, r.StudentName, r.StudentClass, r.AttendanceType)
	fmt.Fprintf(&b, "사유: %s\n제출 시간: %s", r.Reason, r.SubmittedAt)
	if r.Memo != "" {
		fmt.Fprintf(&b, "\n메모: %s", r.Memo)
	}
	return b.String()
}

func formatView(v app.View, c attendance.Criteria) string {
	var b strings.Builder
	title := "전체 기간"
	if c.Date != "" {
		title = c.Date
	}
	if c.Class != "" {
		title += " · " + c.Class
	}
	fmt.Fprintf(&b, "%s 출결 현황\n%s\n", title, formatCounts(v.Counts))

	if len(v.Records) == 0 {
		b.WriteString("\n해당 조건에 맞는 출결 사유가 없습니다.")
		return b.String()
	}
	for i, r := range v.Records {
		if i == maxListedRecords {
			fmt.Fprintf(&b, "\n… 외 %d건 (/export 로 전체 확인)", len(v.Records)-maxListedRecords)
			break
		}
		b.WriteString("\n")
		b.WriteString(formatRecord(r))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatWeekly(w app.WeeklyRollup, asOf time.Time) string {
	from := asOf.AddDate(0, 0, -7)
	return fmt.Sprintf("주간 통계 (%s ~ %s)\n전체 %d건\n지각 %d · 결석 %d · 조퇴/외출 %d",
		from.Format(attendance.DateLayout), asOf.Format(attendance.DateLayout),
		w.Total, w.Late, w.Absent, w.EarlyOrOut)
}

// FormatWeeklyDigest is the scheduled weekly message sent to the teacher chat.
func FormatWeeklyDigest(w app.WeeklyRollup, asOf time.Time) string {
	if w.Total == 0 {
		return formatWeekly(w, asOf) + "\n\n이번 주에 제출된 출결 사유가 없습니다."
	}
	return formatWeekly(w, asOf)
}
