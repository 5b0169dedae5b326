package scheduler

import (
	"bytes"
	"fmt"
	"time"

	"attendance_exception_bot/internal/app"
	"attendance_exception_bot/internal/domain/attendance"
	"attendance_exception_bot/internal/domain/telegram"
	tg "attendance_exception_bot/internal/infra/telegram"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// WeeklyDigestScheduler pushes the weekly rollup to the teacher chat on a cron schedule.
type WeeklyDigestScheduler struct {
	cronEngine     *cron.Cron
	svc            *app.AttendanceService
	client         telegram.Client
	logger         *logrus.Entry
	teacherChatID  int64
	cronSpecDigest string
}

func NewWeeklyDigestScheduler(
	svc *app.AttendanceService,
	client telegram.Client,
	teacherChatID int64,
	baseLogger *logrus.Entry,
	cronSpecDigest string, // e.g., "0 17 * * 5" (5 PM on Fridays)
) *WeeklyDigestScheduler {
	return &WeeklyDigestScheduler{
		cronEngine:     cron.New(cron.WithLocation(svc.Location())), // Fire on the school's wall clock
		svc:            svc,
		client:         client,
		logger:         baseLogger.WithField("component", "weekly_digest_scheduler"),
		teacherChatID:  teacherChatID,
		cronSpecDigest: cronSpecDigest,
	}
}

// Start registers the digest job and starts the cron engine.
func (s *WeeklyDigestScheduler) Start() error {
	s.logger.Info("Starting weekly digest scheduler...")

	_, err := s.cronEngine.AddFunc(s.cronSpecDigest, func() {
		s.logger.Info("Cron job triggered for weekly digest.")
		if err := s.SendDigest(time.Time{}); err != nil {
			s.logger.WithError(err).Error("Weekly digest failed")
		}
	})
	if err != nil {
		return fmt.Errorf("could not add weekly digest cron job %q: %w", s.cronSpecDigest, err)
	}

	s.cronEngine.Start()
	s.logger.WithField("spec", s.cronSpecDigest).Info("Weekly digest scheduler started.")
	return nil
}

// SendDigest sends the rollup for the week ending asOf; a zero asOf means today.
// When the week has records, their CSV export follows the summary.
func (s *WeeklyDigestScheduler) SendDigest(asOf time.Time) error {
	if asOf.IsZero() {
		asOf = s.svc.Today()
	}
	rollup := s.svc.Weekly(asOf)
	if err := s.client.SendMessage(s.teacherChatID, tg.FormatWeeklyDigest(rollup, asOf), nil); err != nil {
		return fmt.Errorf("failed to send weekly digest to %d: %w", s.teacherChatID, err)
	}

	records := s.svc.WeeklyRecords(asOf)
	if len(records) > 0 {
		var buf bytes.Buffer
		if err := app.WriteCSV(&buf, records); err != nil {
			return fmt.Errorf("failed to export weekly records: %w", err)
		}
		name := app.ExportFilename(asOf.Format(attendance.DateLayout), "csv")
		caption := fmt.Sprintf("주간 출결 기록 %d건", len(records))
		if err := s.client.SendDocument(s.teacherChatID, name, buf.Bytes(), caption); err != nil {
			return fmt.Errorf("failed to send weekly export to %d: %w", s.teacherChatID, err)
		}
	}

	s.logger.WithFields(logrus.Fields{
		"as_of":    asOf.Format(attendance.DateLayout),
		"total":    rollup.Total,
		"attached": len(records) > 0,
	}).Info("Weekly digest sent")
	return nil
}

func (s *WeeklyDigestScheduler) Stop() {
	s.logger.Info("Stopping weekly digest scheduler...")
	ctx := s.cronEngine.Stop() // Stops the scheduler from adding new jobs, waits for running jobs.
	<-ctx.Done()
	s.logger.Info("Weekly digest scheduler gracefully stopped.")
}
