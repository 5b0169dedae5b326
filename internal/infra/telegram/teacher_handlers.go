package telegram

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"attendance_exception_bot/internal/app"
	"attendance_exception_bot/internal/domain/attendance"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const notTeacherMsg = "오류: 이 명령은 교사만 사용할 수 있습니다."

// senderID is 0 for updates without a sender, such as channel posts.
func senderID(c telebot.Context) int64 {
	if c.Sender() == nil {
		return 0
	}
	return c.Sender().ID
}

func isTeacher(c telebot.Context, teacherTelegramID int64) bool {
	return c.Sender() != nil && c.Sender().ID == teacherTelegramID
}

// teacherOnly wraps a handler so that only the configured teacher chat may run it.
func teacherOnly(teacherTelegramID int64, logger *logrus.Entry, next telebot.HandlerFunc) telebot.HandlerFunc {
	return func(c telebot.Context) error {
		if !isTeacher(c, teacherTelegramID) {
			logger.WithField("sender_id", senderID(c)).Warn("Unauthorized access attempt")
			if c.Callback() != nil {
				return c.Respond(&telebot.CallbackResponse{Text: notTeacherMsg})
			}
			return c.Send(notTeacherMsg)
		}
		return next(c)
	}
}

// RegisterTeacherHandlers registers the view, delete, clear and export commands.
// Deletion and clearing only ask for confirmation here; the callbacks in
// RegisterConfirmationHandlers perform them.
func RegisterTeacherHandlers(ctx context.Context, b *telebot.Bot, svc *app.AttendanceService, teacherTelegramID int64, baseLogger *logrus.Entry) {
	gate := func(handler string, next telebot.HandlerFunc) telebot.HandlerFunc {
		return teacherOnly(teacherTelegramID, baseLogger.WithField("handler", handler), next)
	}

	b.Handle("/records", gate("/records", func(c telebot.Context) error {
		today := svc.Today().Format(attendance.DateLayout)
		criteria := parseCriteria(c.Args(), today)
		view := svc.View(criteria)
		baseLogger.WithFields(logrus.Fields{
			"handler": "/records",
			"date":    criteria.Date,
			"class":   criteria.Class,
			"matched": len(view.Records),
		}).Info("View requested")
		return c.Send(formatView(view, criteria))
	}))

	b.Handle("/weekly", gate("/weekly", func(c telebot.Context) error {
		today := svc.Today()
		return c.Send(formatWeekly(svc.Weekly(today), today))
	}))

	b.Handle("/delete", gate("/delete", func(c telebot.Context) error {
		args := c.Args()
		if len(args) != 1 {
			return c.Send("잘못된 형식입니다. 사용법: /delete <ID>")
		}
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return c.Send("오류: ID는 숫자여야 합니다.")
		}
		markup := &telebot.ReplyMarkup{}
		idStr := strconv.FormatInt(id, 10)
		markup.Inline(markup.Row(
			markup.Data("삭제", btnDeleteConfirm.Unique, idStr),
			markup.Data("취소", btnDeleteCancel.Unique, idStr),
		))
		return c.Send(fmt.Sprintf("기록 %d 을(를) 삭제하시겠습니까?", id), markup)
	}))

	b.Handle("/clear", gate("/clear", func(c telebot.Context) error {
		n := len(svc.Records())
		if n == 0 {
			return c.Send("삭제할 기록이 없습니다.")
		}
		markup := &telebot.ReplyMarkup{}
		markup.Inline(markup.Row(
			markup.Data("모두 삭제", btnClearConfirm.Unique),
			markup.Data("취소", btnClearCancel.Unique),
		))
		return c.Send(fmt.Sprintf("모든 출결 기록(%d건)을 삭제하시겠습니까? 이 작업은 되돌릴 수 없습니다.", n), markup)
	}))

	b.Handle("/export", gate("/export", func(c telebot.Context) error {
		format := "csv"
		if args := c.Args(); len(args) > 0 {
			format = strings.ToLower(args[0])
		}
		records := svc.Records()
		if len(records) == 0 {
			return c.Send("내보낼 데이터가 없습니다.")
		}

		var buf bytes.Buffer
		var err error
		switch format {
		case "csv":
			err = app.WriteCSV(&buf, records)
		case "xlsx":
			err = app.WriteXLSX(&buf, records)
		default:
			return c.Send("지원하지 않는 형식입니다. csv 또는 xlsx 를 사용하세요.")
		}
		logCtx := baseLogger.WithFields(logrus.Fields{"handler": "/export", "format": format, "records": len(records)})
		if err != nil {
			logCtx.WithError(err).Error("Export failed")
			return c.Send("내보내기 중 오류가 발생했습니다.")
		}
		logCtx.Info("Export sent")
		name := app.ExportFilename(svc.Today().Format(attendance.DateLayout), format)
		return c.Send(&telebot.Document{
			File:     telebot.FromReader(&buf),
			FileName: name,
			Caption:  fmt.Sprintf("출결 기록 %d건", len(records)),
		})
	}))
}
