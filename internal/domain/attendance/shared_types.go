// internal/domain/attendance/shared_types.go
package attendance

import "strings"

// Type is the literal category label a student picks when submitting.
type Type string

const (
	TypeLate       Type = "지각"
	TypeAbsent     Type = "결석"
	TypeEarlyLeave Type = "조퇴"
	TypeOuting     Type = "외출"
)

// Types lists the known categories in form order.
var Types = []Type{TypeLate, TypeAbsent, TypeEarlyLeave, TypeOuting}

// Bucket is the statistic a category is counted under.
type Bucket string

const (
	BucketNone       Bucket = ""
	BucketLate       Bucket = "late"
	BucketAbsent     Bucket = "absent"
	BucketEarlyOrOut Bucket = "earlyOrOut"
)

// buckets maps each category to its statistic. Early leave and outing share one bucket.
var buckets = map[Type]Bucket{
	TypeLate:       BucketLate,
	TypeAbsent:     BucketAbsent,
	TypeEarlyLeave: BucketEarlyOrOut,
	TypeOuting:     BucketEarlyOrOut,
}

// BucketOf returns the statistic bucket for t, or BucketNone for unknown categories.
func BucketOf(t Type) Bucket {
	return buckets[t]
}

// Valid reports whether t is a known category.
func (t Type) Valid() bool {
	_, ok := buckets[t]
	return ok
}

var typeAliases = map[string]Type{
	"late":        TypeLate,
	"absent":      TypeAbsent,
	"early":       TypeEarlyLeave,
	"earlyleave":  TypeEarlyLeave,
	"early_leave": TypeEarlyLeave,
	"out":         TypeOuting,
	"outing":      TypeOuting,
}

// ParseType normalises a user-supplied category: the stored label itself or an English alias.
// Unknown input is returned trimmed and unchanged so validation can reject it.
func ParseType(s string) Type {
	s = strings.TrimSpace(s)
	if t := Type(s); t.Valid() {
		return t
	}
	if t, ok := typeAliases[strings.ToLower(s)]; ok {
		return t
	}
	return Type(s)
}
