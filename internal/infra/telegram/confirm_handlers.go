// internal/infra/telegram/confirm_handlers.go
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"attendance_exception_bot/internal/app"
	"attendance_exception_bot/internal/domain/attendance"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// Inline button endpoints. The callback payload of the delete buttons is the record id.
var (
	btnDeleteConfirm = telebot.Btn{Unique: "del_yes"}
	btnDeleteCancel  = telebot.Btn{Unique: "del_no"}
	btnClearConfirm  = telebot.Btn{Unique: "clear_yes"}
	btnClearCancel   = telebot.Btn{Unique: "clear_no"}
)

// RegisterConfirmationHandlers performs deletions once the teacher pressed a confirm button.
func RegisterConfirmationHandlers(ctx context.Context, b *telebot.Bot, svc *app.AttendanceService, teacherTelegramID int64, baseLogger *logrus.Entry) {
	logger := baseLogger.WithField("handler_group", "confirmations")

	b.Handle(&btnDeleteConfirm, teacherOnly(teacherTelegramID, logger, func(c telebot.Context) error {
		id, err := strconv.ParseInt(c.Data(), 10, 64)
		if err != nil {
			c.Bot().OnError(fmt.Errorf("invalid record id '%s' in delete callback: %w", c.Data(), err), c)
			return c.Respond(&telebot.CallbackResponse{Text: "잘못된 기록 ID입니다."})
		}
		logCtx := logger.WithField("record_id", id)

		removed, err := svc.Remove(ctx, id, true)
		if err != nil {
			logCtx.WithError(err).Error("Failed to delete record")
			_ = c.Respond(&telebot.CallbackResponse{Text: "오류가 발생했습니다."})
			return c.Edit(persistenceMessage(err, "삭제"))
		}
		if !removed {
			logCtx.Info("Record already gone")
			_ = c.Respond()
			return c.Edit(fmt.Sprintf("기록 %d 을(를) 찾을 수 없습니다. 이미 삭제되었을 수 있습니다.", id))
		}
		logCtx.Info("Record deleted")
		_ = c.Respond(&telebot.CallbackResponse{Text: "삭제되었습니다."})
		return c.Edit(fmt.Sprintf("기록 %d 이(가) 삭제되었습니다.", id))
	}))

	b.Handle(&btnDeleteCancel, teacherOnly(teacherTelegramID, logger, func(c telebot.Context) error {
		_ = c.Respond()
		return c.Edit("삭제를 취소했습니다.")
	}))

	b.Handle(&btnClearConfirm, teacherOnly(teacherTelegramID, logger, func(c telebot.Context) error {
		n := len(svc.Records())
		if err := svc.Clear(ctx, true); err != nil {
			logger.WithError(err).Error("Failed to clear records")
			_ = c.Respond(&telebot.CallbackResponse{Text: "오류가 발생했습니다."})
			return c.Edit(persistenceMessage(err, "전체 삭제"))
		}
		logger.WithField("removed", n).Warn("All records cleared")
		_ = c.Respond(&telebot.CallbackResponse{Text: "모든 기록이 삭제되었습니다."})
		return c.Edit(fmt.Sprintf("모든 기록(%d건)이 삭제되었습니다.", n))
	}))

	b.Handle(&btnClearCancel, teacherOnly(teacherTelegramID, logger, func(c telebot.Context) error {
		_ = c.Respond()
		return c.Edit("전체 삭제를 취소했습니다.")
	}))
}

func persistenceMessage(err error, action string) string {
	if errors.Is(err, attendance.ErrPersistence) {
		return fmt.Sprintf("%s 내용을 저장하지 못해 기록을 그대로 두었습니다. 잠시 후 다시 시도해주세요.", action)
	}
	return fmt.Sprintf("%s 중 오류가 발생했습니다: %v", action, err)
}
