package attendance_test

import (
	"encoding/json"
	"errors"
	"testing"

	"attendance_exception_bot/internal/domain/attendance"
)

func TestParseType(t *testing.T) {
	cases := []struct {
		in   string
		want attendance.Type
	}{
		{"지각", attendance.TypeLate},
		{" 결석 ", attendance.TypeAbsent},
		{"Late", attendance.TypeLate},
		{"EARLY", attendance.TypeEarlyLeave},
		{"early_leave", attendance.TypeEarlyLeave},
		{"outing", attendance.TypeOuting},
		{"holiday", attendance.Type("holiday")},
	}
	for _, tc := range cases {
		if got := attendance.ParseType(tc.in); got != tc.want {
			t.Fatalf("ParseType(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestBucketMapping(t *testing.T) {
	cases := []struct {
		typ  attendance.Type
		want attendance.Bucket
	}{
		{attendance.TypeLate, attendance.BucketLate},
		{attendance.TypeAbsent, attendance.BucketAbsent},
		{attendance.TypeEarlyLeave, attendance.BucketEarlyOrOut},
		{attendance.TypeOuting, attendance.BucketEarlyOrOut},
		{"기타", attendance.BucketNone},
	}
	for _, tc := range cases {
		if got := attendance.BucketOf(tc.typ); got != tc.want {
			t.Fatalf("BucketOf(%q) = %q, want %q", tc.typ, got, tc.want)
		}
	}
	for _, typ := range attendance.Types {
		if !typ.Valid() {
			t.Fatalf("listed type %q is not valid", typ)
		}
	}
}

func TestCriteriaMatches(t *testing.T) {
	r := attendance.Record{Date: "2024-05-01", StudentClass: "3-1"}
	cases := []struct {
		c    attendance.Criteria
		want bool
	}{
		{attendance.Criteria{}, true},
		{attendance.Criteria{Date: "2024-05-01"}, true},
		{attendance.Criteria{Date: "2024-05-02"}, false},
		{attendance.Criteria{Class: "3-1"}, true},
		{attendance.Criteria{Class: "3-2"}, false},
		{attendance.Criteria{Date: "2024-05-01", Class: "3-2"}, false},
	}
	for _, tc := range cases {
		if got := tc.c.Matches(r); got != tc.want {
			t.Fatalf("%+v.Matches = %v, want %v", tc.c, got, tc.want)
		}
	}
}

func TestCandidateValidateListsEveryMissingField(t *testing.T) {
	err := attendance.Candidate{Memo: "only memo"}.Normalize().Validate()
	var verr *attendance.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	got := verr.FieldNames()
	want := []string{"studentName", "studentClass", "attendanceType", "reason"}
	if len(got) != len(want) {
		t.Fatalf("fields = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("fields = %v, want %v", got, want)
		}
	}
	if !errors.Is(err, attendance.ErrValidation) {
		t.Fatalf("expected errors.Is ErrValidation")
	}
}

func TestCandidateValidateMemoOptional(t *testing.T) {
	c := attendance.Candidate{StudentName: "Kim", StudentClass: "3-1", AttendanceType: "absent", Reason: "fever"}.Normalize()
	if err := c.Validate(); err != nil {
		t.Fatalf("expected valid candidate, got %v", err)
	}
	if c.AttendanceType != attendance.TypeAbsent {
		t.Fatalf("alias not normalised: %q", c.AttendanceType)
	}
}

func TestRecordJSONFieldNames(t *testing.T) {
	r := attendance.Record{ID: 7, StudentName: "Kim", StudentClass: "3-1", AttendanceType: attendance.TypeLate, Reason: "bus", Date: "2024-05-01", SubmittedAt: "x"}
	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, k := range []string{"id", "studentName", "studentClass", "attendanceType", "reason", "memo", "date", "submittedAt"} {
		if _, ok := m[k]; !ok {
			t.Fatalf("missing key %s in %s", k, data)
		}
	}
	if m["attendanceType"] != "지각" {
		t.Fatalf("category must be stored as its literal label, got %v", m["attendanceType"])
	}
}

func TestPersistenceErrorUnwraps(t *testing.T) {
	cause := errors.New("disk full")
	err := error(&attendance.PersistenceError{Op: "save", Key: "k", Err: cause})
	if !errors.Is(err, attendance.ErrPersistence) || !errors.Is(err, cause) {
		t.Fatalf("persistence error should match both sentinel and cause")
	}
}
