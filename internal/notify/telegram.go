// Package notify sends operational notices (startup status, dispatch
// failures) to the operator over Telegram. It is send-only and optional:
// a nil *Notifier is safe to call.
package notify

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	maxMsgLen      = 4000
	maxSendRetries = 3
)

type Notifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger *slog.Logger
}

// New connects the bot API. Returns an error when the token is rejected.
func New(token string, chatID int64, logger *slog.Logger) (*Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}
	logger.Info("ops notifier connected", "username", bot.Self.UserName)
	return &Notifier{bot: bot, chatID: chatID, logger: logger}, nil
}

// Send delivers one notice. Long texts are split on newline boundaries to
// stay under Telegram's message length limit.
func (n *Notifier) Send(text string) {
	if n == nil {
		return
	}
	for len(text) > 0 {
		chunk := text
		if len(chunk) > maxMsgLen {
			cutAt := strings.LastIndex(chunk[:maxMsgLen], "\n")
			if cutAt < maxMsgLen/2 {
				cutAt = maxMsgLen
			}
			chunk = text[:cutAt]
			text = text[cutAt:]
		} else {
			text = ""
		}
		n.sendChunk(chunk)
	}
}

// Sendf formats and delivers one notice.
func (n *Notifier) Sendf(format string, args ...any) {
	if n == nil {
		return
	}
	n.Send(fmt.Sprintf(format, args...))
}

func (n *Notifier) sendChunk(text string) {
	for attempt := 0; attempt <= maxSendRetries; attempt++ {
		msg := tgbotapi.NewMessage(n.chatID, text)
		if _, err := n.bot.Send(msg); err == nil {
			return
		} else if attempt == maxSendRetries {
			n.logger.Error("ops notice dropped", "err", err)
			return
		}
		time.Sleep(time.Duration(attempt+1) * time.Second)
	}
}
