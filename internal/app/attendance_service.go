package app

import (
	"context"
	"fmt"
	"time"

	"attendance_exception_bot/internal/domain/attendance"
)

// AttendanceService is the entry point the surfaces (bot, HTTP API, scheduler) share.
// It pairs the store with the query engine and enforces the confirm-before-destroy contract.
type AttendanceService struct {
	store *RecordStore
	query *QueryEngine
}

func NewAttendanceService(store *RecordStore, query *QueryEngine) *AttendanceService {
	return &AttendanceService{store: store, query: query}
}

// Submit admits a student's submission.
func (s *AttendanceService) Submit(ctx context.Context, c attendance.Candidate) (attendance.Record, error) {
	return s.store.Add(ctx, c)
}

// View builds the teacher view for the given criteria as of today.
func (s *AttendanceService) View(c attendance.Criteria) View {
	return s.query.BuildView(s.store.All(), c, s.store.Today())
}

// Weekly returns the weekly rollup as of asOf; a zero asOf means today.
func (s *AttendanceService) Weekly(asOf time.Time) WeeklyRollup {
	if asOf.IsZero() {
		asOf = s.store.Today()
	}
	return s.query.WeeklyRollup(s.store.All(), asOf)
}

// WeeklyRecords returns the records inside the weekly window ending asOf; a zero asOf means today.
func (s *AttendanceService) WeeklyRecords(asOf time.Time) []attendance.Record {
	if asOf.IsZero() {
		asOf = s.store.Today()
	}
	return s.query.WeeklyRecords(s.store.All(), asOf)
}

// Remove deletes one record after the caller has confirmed.
func (s *AttendanceService) Remove(ctx context.Context, id int64, confirmed bool) (bool, error) {
	if !confirmed {
		return false, attendance.ErrConfirmationRequired
	}
	removed, err := s.store.RemoveByID(ctx, id)
	if err != nil {
		return false, fmt.Errorf("failed to remove record %d: %w", id, err)
	}
	return removed, nil
}

// Clear deletes every record after the caller has confirmed.
func (s *AttendanceService) Clear(ctx context.Context, confirmed bool) error {
	if !confirmed {
		return attendance.ErrConfirmationRequired
	}
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear records: %w", err)
	}
	return nil
}

// Records returns the collection in insertion order, as exports expect.
func (s *AttendanceService) Records() []attendance.Record {
	return s.store.All()
}

// Today is the current calendar day in the store's location.
func (s *AttendanceService) Today() time.Time {
	return s.store.Today()
}

// Location is the location dates are interpreted in.
func (s *AttendanceService) Location() *time.Location {
	return s.query.Location
}
