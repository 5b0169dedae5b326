package metrics

import (
	"context"
	"errors"
	"testing"

	"attendance_exception_bot/internal/app"
	"attendance_exception_bot/internal/domain/attendance"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type flakyBackend struct {
	fail bool
	data string
}

func (b *flakyBackend) Read(context.Context, string) (string, bool, error) {
	return b.data, b.data != "", nil
}

func (b *flakyBackend) Write(_ context.Context, _ string, text string) error {
	if b.fail {
		return errors.New("write refused")
	}
	b.data = text
	return nil
}

func TestStoreMetricsObserveStore(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewStoreMetrics(reg)
	backend := &flakyBackend{}
	store := app.NewRecordStore(backend, app.WithObserver(m))
	ctx := context.Background()

	rec, err := store.Add(ctx, attendance.Candidate{StudentName: "Kim", StudentClass: "3-1", AttendanceType: attendance.TypeLate, Reason: "bus"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := store.Add(ctx, attendance.Candidate{StudentName: "Kim"}); err == nil {
		t.Fatalf("expected validation error")
	}
	if got := testutil.ToFloat64(m.added.WithLabelValues(string(attendance.TypeLate))); got != 1 {
		t.Fatalf("added = %v", got)
	}
	if got := testutil.ToFloat64(m.validationFailures); got != 1 {
		t.Fatalf("validation failures = %v", got)
	}
	if got := testutil.ToFloat64(m.size); got != 1 {
		t.Fatalf("size = %v", got)
	}

	backend.fail = true
	if _, err := store.RemoveByID(ctx, rec.ID); err == nil {
		t.Fatalf("expected persistence failure")
	}
	if got := testutil.ToFloat64(m.persistenceErrors.WithLabelValues("save")); got != 1 {
		t.Fatalf("persistence failures = %v", got)
	}

	backend.fail = false
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if testutil.ToFloat64(m.clears) != 1 || testutil.ToFloat64(m.size) != 0 {
		t.Fatalf("clear not observed")
	}
}

func TestStoreMetricsCountUnreadablePayload(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewStoreMetrics(reg)
	store := app.NewRecordStore(&flakyBackend{data: "{not json"}, app.WithObserver(m))

	if err := store.Load(context.Background()); err == nil {
		t.Fatalf("expected load error")
	}
	if got := testutil.ToFloat64(m.persistenceErrors.WithLabelValues("load")); got != 1 {
		t.Fatalf("load failures = %v", got)
	}
}
