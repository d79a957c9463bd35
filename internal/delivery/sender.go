package delivery

import (
	"context"
	"errors"

	"github.com/cclank/dailynews/internal/telegram"
)

// telegramSender adapts the Bot API client to the Sender interface,
// converting every failure mode into a failed Outcome at the boundary.
type telegramSender struct {
	client *telegram.Client
	chatID string
}

// NewTelegramSender creates a Sender that posts to one Telegram chat with
// link previews disabled.
func NewTelegramSender(client *telegram.Client, chatID string) Sender {
	return &telegramSender{client: client, chatID: chatID}
}

// Send implements Sender.
func (s *telegramSender) Send(ctx context.Context, text, parseMode string) Outcome {
	msg, err := s.client.SendMessage(ctx, telegram.SendMessageRequest{
		ChatID:                s.chatID,
		Text:                  text,
		ParseMode:             parseMode,
		DisableWebPagePreview: true,
	})
	if err != nil {
		var apiErr *telegram.APIError
		if errors.As(err, &apiErr) {
			return Outcome{Err: apiErr.Description}
		}
		return Outcome{Err: err.Error()}
	}
	return Outcome{OK: true, MessageID: msg.MessageID}
}
