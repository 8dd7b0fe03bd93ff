package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"tweet-digest-bot/internal/domain"
	"tweet-digest-bot/internal/infra/metrics"
)

// Sender отправляет сообщения через Bot API.
type Sender struct {
	api    *tgbotapi.BotAPI
	logger zerolog.Logger
}

var _ domain.Messenger = (*Sender)(nil)

// NewSender создаёт отправителя.
func NewSender(api *tgbotapi.BotAPI, logger zerolog.Logger) *Sender {
	return &Sender{api: api, logger: logger.With().Str("component", "telegram_sender").Logger()}
}

// SendMarkdown отправляет сообщение в режиме MarkdownV2; текст должен быть
// уже экранирован.
func (s *Sender) SendMarkdown(ctx context.Context, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	msg.DisableWebPagePreview = true
	return s.send(ctx, msg)
}

// SendPlain отправляет сообщение без разметки.
func (s *Sender) SendPlain(ctx context.Context, chatID int64, text string) error {
	return s.send(ctx, tgbotapi.NewMessage(chatID, text))
}

func (s *Sender) send(ctx context.Context, msg tgbotapi.MessageConfig) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()
	_, err := s.api.Send(msg)
	metrics.ObserveNetworkRequest("telegram", "send_message", "sendMessage", start, err)
	if err != nil {
		metrics.BotSendErrors.Inc()
		var apiErr *tgbotapi.Error
		if errors.As(err, &apiErr) {
			// Текст вида "Telegram API error (403 Forbidden): ..." —
			// по нему классификатор распознаёт необратимые отказы.
			return fmt.Errorf("Telegram API error (%d %s): %s", apiErr.Code, http.StatusText(apiErr.Code), apiErr.Message)
		}
		return err
	}
	return nil
}
