package telegram

import "gopkg.in/telebot.v3"

// Client sends outbound messages via a Telegram bot.
// Scheduled jobs use it; command handlers reply through telebot.Context instead.
type Client interface {
	SendMessage(recipientChatID int64, text string, options *telebot.SendOptions) error
	SendDocument(recipientChatID int64, fileName string, data []byte, caption string) error
}
