// internal/domain/attendance/record.go
package attendance

import (
	"encoding/json"
	"time"
)

// DateLayout is the ISO 8601 calendar date layout used for Record.Date.
const DateLayout = "2006-01-02"

// Record is one submitted attendance exception.
// Records are immutable once created; the store never edits them in place.
type Record struct {
	ID             int64  `json:"id"`
	StudentName    string `json:"studentName"`
	StudentClass   string `json:"studentClass"`
	AttendanceType Type   `json:"attendanceType"`
	Reason         string `json:"reason"`
	Memo           string `json:"memo"`
	Date           string `json:"date"`        // YYYY-MM-DD, the submission day
	SubmittedAt    string `json:"submittedAt"` // display-only, localized
}

// UnmarshalJSON accepts the older "timestamp" key in place of "submittedAt".
func (r *Record) UnmarshalJSON(data []byte) error {
	type plain Record
	aux := struct {
		*plain
		Timestamp string `json:"timestamp"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if r.SubmittedAt == "" && aux.Timestamp != "" {
		r.SubmittedAt = aux.Timestamp
	}
	return nil
}

// Day parses Date in loc.
func (r Record) Day(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout, r.Date, loc)
}

// Criteria narrows a record set. Empty fields mean "no constraint".
type Criteria struct {
	Date  string
	Class string
}

// Matches reports whether r satisfies every set field of c.
func (c Criteria) Matches(r Record) bool {
	if c.Date != "" && r.Date != c.Date {
		return false
	}
	if c.Class != "" && r.StudentClass != c.Class {
		return false
	}
	return true
}
