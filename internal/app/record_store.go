// internal/app/record_store.go
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"attendance_exception_bot/internal/domain/attendance"
)

// DefaultStorageKey is the backend key the whole collection is stored under.
const DefaultStorageKey = "attendanceRecords"

// StoreObserver is notified after committed store operations. Metrics hook in here.
type StoreObserver interface {
	RecordAdded(rec attendance.Record)
	RecordRemoved(id int64)
	Cleared(removed int)
	ValidationFailed()
	PersistenceFailed(op string)
	SizeChanged(size int)
}

type noopObserver struct{}

func (noopObserver) RecordAdded(attendance.Record) {}
func (noopObserver) RecordRemoved(int64)           {}
func (noopObserver) Cleared(int)                   {}
func (noopObserver) ValidationFailed()             {}
func (noopObserver) PersistenceFailed(string)      {}
func (noopObserver) SizeChanged(int)               {}

// StoreOption customises a RecordStore.
type StoreOption func(*RecordStore)

// WithStorageKey overrides DefaultStorageKey.
func WithStorageKey(key string) StoreOption {
	return func(s *RecordStore) {
		if key != "" {
			s.key = key
		}
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) StoreOption {
	return func(s *RecordStore) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLocation sets the location used for the record date and submission timestamp.
func WithLocation(loc *time.Location) StoreOption {
	return func(s *RecordStore) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithObserver installs a StoreObserver.
func WithObserver(o StoreObserver) StoreOption {
	return func(s *RecordStore) {
		if o != nil {
			s.observer = o
		}
	}
}

// RecordStore owns the attendance record collection. Every mutation goes through it and is
// persisted to the backend before the call returns. Mutations are serialized; readers get a
// snapshot of the last committed collection.
//
// Call Load once at startup before serving any surface.
type RecordStore struct {
	backend  attendance.Backend
	key      string
	now      func() time.Time
	loc      *time.Location
	observer StoreObserver

	mu      sync.RWMutex
	records []attendance.Record
	lastID  int64
}

func NewRecordStore(backend attendance.Backend, opts ...StoreOption) *RecordStore {
	s := &RecordStore{
		backend:  backend,
		key:      DefaultStorageKey,
		now:      time.Now,
		loc:      time.Local,
		observer: noopObserver{},
		records:  []attendance.Record{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the in-memory collection with the backend contents.
// A key that was never written yields an empty collection.
func (s *RecordStore) Load(ctx context.Context) error {
	text, ok, err := s.backend.Read(ctx, s.key)
	if err != nil {
		s.observer.PersistenceFailed("load")
		return &attendance.PersistenceError{Op: "load", Key: s.key, Err: err}
	}
	records := []attendance.Record{}
	if ok && strings.TrimSpace(text) != "" {
		if err := json.Unmarshal([]byte(text), &records); err != nil {
			s.observer.PersistenceFailed("load")
			return &attendance.PersistenceError{Op: "load", Key: s.key, Err: fmt.Errorf("decode records: %w", err)}
		}
		if records == nil { // stored "null"
			records = []attendance.Record{}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = records
	s.lastID = 0
	for _, r := range records {
		if r.ID > s.lastID {
			s.lastID = r.ID
		}
	}
	s.observer.SizeChanged(len(s.records))
	return nil
}

// Save writes the full collection to the backend.
func (s *RecordStore) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(ctx)
}

func (s *RecordStore) saveLocked(ctx context.Context) error {
	data, err := json.Marshal(s.records)
	if err != nil {
		return &attendance.PersistenceError{Op: "save", Key: s.key, Err: fmt.Errorf("encode records: %w", err)}
	}
	if err := s.backend.Write(ctx, s.key, string(data)); err != nil {
		s.observer.PersistenceFailed("save")
		return &attendance.PersistenceError{Op: "save", Key: s.key, Err: err}
	}
	return nil
}

// Add validates c, stamps id/date/submittedAt and appends the record.
// It returns a *attendance.ValidationError without touching the collection when a required
// field is empty, and a *attendance.PersistenceError (with the append undone) when the write fails.
func (s *RecordStore) Add(ctx context.Context, c attendance.Candidate) (attendance.Record, error) {
	c = c.Normalize()
	if err := c.Validate(); err != nil {
		s.observer.ValidationFailed()
		return attendance.Record{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().In(s.loc)
	id := now.UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	rec := attendance.Record{
		ID:             id,
		StudentName:    c.StudentName,
		StudentClass:   c.StudentClass,
		AttendanceType: c.AttendanceType,
		Reason:         c.Reason,
		Memo:           c.Memo,
		Date:           now.Format(attendance.DateLayout),
		SubmittedAt:    formatSubmittedAt(now),
	}

	prevLastID := s.lastID
	s.records = append(s.records, rec)
	s.lastID = id
	if err := s.saveLocked(ctx); err != nil {
		s.records = s.records[:len(s.records)-1]
		s.lastID = prevLastID
		return attendance.Record{}, err
	}
	s.observer.RecordAdded(rec)
	s.observer.SizeChanged(len(s.records))
	return rec, nil
}

// RemoveByID deletes the record with the given id. An unknown id is a no-op returning false.
// Callers must have confirmed the deletion; it cannot be undone.
func (s *RecordStore) RemoveByID(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, r := range s.records {
		if r.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false, nil
	}

	prev := s.records
	next := make([]attendance.Record, 0, len(prev)-1)
	next = append(next, prev[:idx]...)
	next = append(next, prev[idx+1:]...)
	s.records = next
	if err := s.saveLocked(ctx); err != nil {
		s.records = prev
		return false, err
	}
	s.observer.RecordRemoved(id)
	s.observer.SizeChanged(len(s.records))
	return true, nil
}

// Clear removes every record. Callers must have confirmed; no backup is kept.
func (s *RecordStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.records
	s.records = []attendance.Record{}
	if err := s.saveLocked(ctx); err != nil {
		s.records = prev
		return err
	}
	s.observer.Cleared(len(prev))
	s.observer.SizeChanged(0)
	return nil
}

// All returns a copy of the collection in insertion order.
func (s *RecordStore) All() []attendance.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]attendance.Record, len(s.records))
	copy(out, s.records)
	return out
}

// Len returns the number of stored records.
func (s *RecordStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Today returns the current calendar date in the store's location.
func (s *RecordStore) Today() time.Time {
	now := s.now().In(s.loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
}

// formatSubmittedAt renders t the way ko-KR locale formatting does, e.g. "2024. 5. 1. 오후 3:04:05".
func formatSubmittedAt(t time.Time) string {
	meridiem := "오전"
	if t.Hour() >= 12 {
		meridiem = "오후"
	}
	hour := t.Hour() % 12
	if hour == 0 {
		hour = 12
	}
	return fmt.Sprintf("%s %s %d%s", t.Format("2006. 1. 2."), meridiem, hour, t.Format(":04:05"))
}
