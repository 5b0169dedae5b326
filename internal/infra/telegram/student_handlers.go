package telegram

import (
	"context"
	"errors"

	"attendance_exception_bot/internal/app"
	"attendance_exception_bot/internal/domain/attendance"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// RegisterStudentHandlers registers the submission command. Anyone may submit.
func RegisterStudentHandlers(ctx context.Context, b *telebot.Bot, svc *app.AttendanceService, baseLogger *logrus.Entry) {
	b.Handle("/submit", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/submit",
			"sender_id": senderID(c),
		})
		handlerLogger.Info("Command received")

		rec, err := svc.Submit(ctx, parseSubmission(c.Message().Payload))
		if err != nil {
			var verr *attendance.ValidationError
			switch {
			case errors.As(err, &verr):
				handlerLogger.WithField("fields", verr.FieldNames()).Warn("Submission rejected")
				return c.Send(formatValidationError(verr))
			case errors.Is(err, attendance.ErrPersistence):
				handlerLogger.WithError(err).Error("Submission not persisted")
				return c.Send("기록을 저장하지 못했습니다. 제출이 반영되지 않았으니 잠시 후 다시 시도해주세요.")
			default:
				handlerLogger.WithError(err).Error("Failed to submit record")
				return c.Send("제출 중 오류가 발생했습니다. 잠시 후 다시 시도해주세요.")
			}
		}

		handlerLogger.WithFields(logrus.Fields{
			"record_id":       rec.ID,
			"student_class":   rec.StudentClass,
			"attendance_type": rec.AttendanceType,
		}).Info("Record submitted")
		return c.Send(formatSubmitted(rec))
	})
}
