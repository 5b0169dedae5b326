package metrics

import (
	"attendance_exception_bot/internal/domain/attendance"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// StoreMetrics exports record store activity. It satisfies app.StoreObserver.
type StoreMetrics struct {
	added              *prometheus.CounterVec
	removed            prometheus.Counter
	clears             prometheus.Counter
	validationFailures prometheus.Counter
	persistenceErrors  *prometheus.CounterVec
	size               prometheus.Gauge
}

// NewStoreMetrics registers the collectors with reg.
func NewStoreMetrics(reg prometheus.Registerer) *StoreMetrics {
	f := promauto.With(reg)
	return &StoreMetrics{
		added: f.NewCounterVec(prometheus.CounterOpts{
			Name: "attendance_records_added_total",
			Help: "Attendance exception records admitted, by category.",
		}, []string{"type"}),
		removed: f.NewCounter(prometheus.CounterOpts{
			Name: "attendance_records_removed_total",
			Help: "Attendance exception records deleted individually.",
		}),
		clears: f.NewCounter(prometheus.CounterOpts{
			Name: "attendance_clears_total",
			Help: "Clear-all operations committed.",
		}),
		validationFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "attendance_validation_failures_total",
			Help: "Submissions rejected for missing or invalid fields.",
		}),
		persistenceErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "attendance_persistence_failures_total",
			Help: "Backend reads or writes that failed.",
		}, []string{"op"}),
		size: f.NewGauge(prometheus.GaugeOpts{
			Name: "attendance_records",
			Help: "Records currently held by the store.",
		}),
	}
}

func (m *StoreMetrics) RecordAdded(rec attendance.Record) {
	m.added.WithLabelValues(string(rec.AttendanceType)).Inc()
}

func (m *StoreMetrics) RecordRemoved(int64) { m.removed.Inc() }

func (m *StoreMetrics) Cleared(int) { m.clears.Inc() }

func (m *StoreMetrics) ValidationFailed() { m.validationFailures.Inc() }

func (m *StoreMetrics) PersistenceFailed(op string) { m.persistenceErrors.WithLabelValues(op).Inc() }

func (m *StoreMetrics) SizeChanged(n int) { m.size.Set(float64(n)) }
