// internal/infra/telegram/client.go
package telegram

import (
	"bytes"

	"gopkg.in/telebot.v3"
)

// TelebotAdapter implements the domain Client interface using gopkg.in/telebot.v3.
type TelebotAdapter struct {
	bot *telebot.Bot
}

func NewTelebotAdapter(b *telebot.Bot) *TelebotAdapter {
	return &TelebotAdapter{bot: b}
}

// SendMessage sends a text message to the specified chat.
func (tba *TelebotAdapter) SendMessage(recipientChatID int64, text string, options *telebot.SendOptions) error {
	if options == nil {
		options = &telebot.SendOptions{}
	}
	_, err := tba.bot.Send(&telebot.Chat{ID: recipientChatID}, text, options)
	return err
}

// SendDocument uploads data as a file attachment.
func (tba *TelebotAdapter) SendDocument(recipientChatID int64, fileName string, data []byte, caption string) error {
	doc := &telebot.Document{
		File:     telebot.FromReader(bytes.NewReader(data)),
		FileName: fileName,
		Caption:  caption,
	}
	_, err := tba.bot.Send(&telebot.Chat{ID: recipientChatID}, doc)
	return err
}
