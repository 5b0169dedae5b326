// internal/app/query_engine.go
package app

import (
	"sort"
	"time"

	"attendance_exception_bot/internal/domain/attendance"
)

// DefaultRosterSize is the class size assumed by the normal-attendance estimate.
const DefaultRosterSize = 30

// weeklyWindowDays is the look-back of WeeklyRollup; the window includes both ends.
const weeklyWindowDays = 7

// Counts is the per-bucket tally of a record set.
//
// EstimatedNormal is a heuristic: RosterSize minus the exceptions, floored at zero.
// No roster backs it, so it is only meaningful for a single class on a single day.
type Counts struct {
	Late            int `json:"late"`
	Absent          int `json:"absent"`
	EarlyOrOut      int `json:"earlyOrOut"`
	EstimatedNormal int `json:"estimatedNormal"`
}

// WeeklyRollup is the tally of the records inside the weekly window.
type WeeklyRollup struct {
	Total      int `json:"total"`
	Late       int `json:"late"`
	Absent     int `json:"absent"`
	EarlyOrOut int `json:"earlyOrOut"`
}

// View is everything a surface renders for the teacher role.
type View struct {
	Counts  Counts              `json:"counts"`
	Records []attendance.Record `json:"records"`
	Weekly  WeeklyRollup        `json:"weekly"`
}

// QueryEngine derives views from a record collection. It never mutates its input.
type QueryEngine struct {
	RosterSize int
	Location   *time.Location
}

func NewQueryEngine(rosterSize int, loc *time.Location) *QueryEngine {
	if rosterSize <= 0 {
		rosterSize = DefaultRosterSize
	}
	if loc == nil {
		loc = time.Local
	}
	return &QueryEngine{RosterSize: rosterSize, Location: loc}
}

// Filter returns the records matching every set field of c, in input order.
func (q *QueryEngine) Filter(records []attendance.Record, c attendance.Criteria) []attendance.Record {
	out := make([]attendance.Record, 0, len(records))
	for _, r := range records {
		if c.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}

type tally struct {
	late, absent, earlyOrOut int
}

func tallyBuckets(records []attendance.Record) tally {
	var t tally
	for _, r := range records {
		switch attendance.BucketOf(r.AttendanceType) {
		case attendance.BucketLate:
			t.late++
		case attendance.BucketAbsent:
			t.absent++
		case attendance.BucketEarlyOrOut:
			t.earlyOrOut++
		}
	}
	return t
}

// AggregateCounts tallies records by bucket and estimates normal attendance.
func (q *QueryEngine) AggregateCounts(records []attendance.Record) Counts {
	t := tallyBuckets(records)
	normal := q.RosterSize - t.late - t.absent - t.earlyOrOut
	if normal < 0 {
		normal = 0
	}
	return Counts{
		Late:            t.late,
		Absent:          t.absent,
		EarlyOrOut:      t.earlyOrOut,
		EstimatedNormal: normal,
	}
}

// WeeklyRecords returns the records dated within [asOf-7d, asOf], in input order.
// Records with an unparsable date are ignored.
func (q *QueryEngine) WeeklyRecords(records []attendance.Record, asOf time.Time) []attendance.Record {
	asOf = asOf.In(q.Location)
	end := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, q.Location)
	start := end.AddDate(0, 0, -weeklyWindowDays)

	inWindow := make([]attendance.Record, 0, len(records))
	for _, r := range records {
		day, err := r.Day(q.Location)
		if err != nil {
			continue
		}
		if day.Before(start) || day.After(end) {
			continue
		}
		inWindow = append(inWindow, r)
	}
	return inWindow
}

// WeeklyRollup tallies the records WeeklyRecords selects.
func (q *QueryEngine) WeeklyRollup(records []attendance.Record, asOf time.Time) WeeklyRollup {
	inWindow := q.WeeklyRecords(records, asOf)
	t := tallyBuckets(inWindow)
	return WeeklyRollup{
		Total:      len(inWindow),
		Late:       t.late,
		Absent:     t.absent,
		EarlyOrOut: t.earlyOrOut,
	}
}

// SortForDisplay returns a copy ordered newest first (id descending).
func (q *QueryEngine) SortForDisplay(records []attendance.Record) []attendance.Record {
	out := make([]attendance.Record, len(records))
	copy(out, records)
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

// BuildView filters the collection, counts the filtered set, sorts it for display and
// attaches the weekly rollup of the whole collection as of asOf.
func (q *QueryEngine) BuildView(records []attendance.Record, c attendance.Criteria, asOf time.Time) View {
	filtered := q.Filter(records, c)
	return View{
		Counts:  q.AggregateCounts(filtered),
		Records: q.SortForDisplay(filtered),
		Weekly:  q.WeeklyRollup(records, asOf),
	}
}
