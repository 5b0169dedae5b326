// internal/infra/telegram/bot_commands_handler.go
package telegram

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

func studentHelp() string {
	var helpText strings.Builder
	helpText.WriteString("출결 사유 제출 방법:\n\n")
	helpText.WriteString("/submit 이름 | 반 | 유형 | 사유 [| 메모]\n")
	helpText.WriteString(fmt.Sprintf(" - 유형: %s\n", joinTypes()))
	helpText.WriteString(" - 예: /submit 김민수 | 3-1 | 지각 | 늦잠 | 버스 지연\n\n")
	helpText.WriteString("/help - 이 도움말 보기")
	return helpText.String()
}

func teacherHelp() string {
	var helpText strings.Builder
	helpText.WriteString("교사용 명령어:\n\n")
	helpText.WriteString("/records [YYYY-MM-DD|all] [반]\n - 날짜/반별 출결 현황 (기본: 오늘)\n\n")
	helpText.WriteString("/weekly\n - 최근 7일 주간 통계\n\n")
	helpText.WriteString("/delete <ID>\n - 기록 삭제 (확인 후 실행)\n\n")
	helpText.WriteString("/clear\n - 모든 기록 삭제 (확인 후 실행, 되돌릴 수 없음)\n\n")
	helpText.WriteString("/export [csv|xlsx]\n - 전체 기록 내보내기\n\n")
	helpText.WriteString("학생 제출 방법은 /submit 형식을 안내해주세요.")
	return helpText.String()
}

// RegisterBotCommands registers /start and /help, answering per role.
func RegisterBotCommands(b *telebot.Bot, teacherTelegramID int64, baseLogger *logrus.Entry) {
	startHelpLogger := baseLogger.WithField("handler_group", "start_help")

	b.Handle("/start", func(c telebot.Context) error {
		logCtx := startHelpLogger.WithField("command", "/start").WithField("sender_id", senderID(c))
		logCtx.Info("Processing /start command")

		if isTeacher(c, teacherTelegramID) {
			logCtx.Info("User identified as teacher")
			return c.Send(fmt.Sprintf("안녕하세요, %s 선생님! 출결 사유 기록을 조회할 수 있습니다.\n\n%s", c.Sender().FirstName, teacherHelp()))
		}
		return c.Send(fmt.Sprintf("안녕하세요! 지각·결석·조퇴·외출 사유를 제출하는 봇입니다.\n\n%s", studentHelp()))
	})

	b.Handle("/help", func(c telebot.Context) error {
		logCtx := startHelpLogger.WithField("command", "/help").WithField("sender_id", senderID(c))
		logCtx.Info("Processing /help command")

		if isTeacher(c, teacherTelegramID) {
			return c.Send(teacherHelp())
		}
		return c.Send(studentHelp())
	})
}
