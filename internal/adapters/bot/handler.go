// Package bot обрабатывает команды подписчиков из вебхука Telegram.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"tweet-digest-bot/internal/domain"
	"tweet-digest-bot/internal/i18n"
	"tweet-digest-bot/internal/infra/metrics"
	"tweet-digest-bot/internal/usecase/pipeline"
)

// welcomeDeliverer отправляет новому подписчику последний выпуск.
type welcomeDeliverer interface {
	DeliverLatestTo(ctx context.Context, chatID int64, lang string) error
}

// Handler — диспетчер команд бота.
type Handler struct {
	subs        domain.SubscriberRepo
	messenger   domain.Messenger
	welcome     welcomeDeliverer
	adminChatID int64
	logger      zerolog.Logger
	sendPause   time.Duration
}

// NewHandler создаёт диспетчер. adminChatID равный нулю отключает /broadcast.
func NewHandler(subs domain.SubscriberRepo, messenger domain.Messenger, welcome welcomeDeliverer, adminChatID int64, logger zerolog.Logger) *Handler {
	return &Handler{
		subs:        subs,
		messenger:   messenger,
		welcome:     welcome,
		adminChatID: adminChatID,
		logger:      logger.With().Str("component", "bot").Logger(),
		sendPause:   100 * time.Millisecond,
	}
}

// HandleUpdate разбирает апдейт и выполняет команду. Сообщения без команды
// игнорируются.
func (h *Handler) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	msg := upd.Message
	if msg == nil || msg.Chat == nil {
		return
	}
	text := strings.TrimSpace(msg.Text)
	if !strings.HasPrefix(text, "/") {
		return
	}
	cmd, arg := parseCommand(text)
	chatID := msg.Chat.ID

	username := ""
	if msg.From != nil {
		username = msg.From.UserName
	}

	h.logger.Debug().Int64("chat_id", chatID).Str("command", cmd).Msg("bot: команда получена")

	switch cmd {
	case "/start":
		h.handleStart(ctx, chatID, username)
	case "/subscribe":
		h.handleSubscribe(ctx, chatID, username)
	case "/unsubscribe":
		h.handleUnsubscribe(ctx, chatID)
	case "/status":
		h.handleStatus(ctx, chatID)
	case "/language":
		h.handleLanguage(ctx, chatID, arg)
	case "/broadcast":
		h.handleBroadcast(ctx, chatID, arg)
	default:
		h.reply(ctx, chatID, h.messagesFor(ctx, chatID).UnknownCommand)
	}
}

// parseCommand отделяет аргумент по первому пробелу и срезает упоминание
// бота из команды (/start@digest_bot).
func parseCommand(text string) (cmd, arg string) {
	cmd = text
	if i := strings.IndexByte(text, ' '); i >= 0 {
		cmd, arg = text[:i], strings.TrimSpace(text[i+1:])
	}
	cmd = strings.ToLower(cmd)
	if i := strings.IndexByte(cmd, '@'); i > 0 {
		cmd = cmd[:i]
	}
	return cmd, arg
}

func (h *Handler) handleStart(ctx context.Context, chatID int64, username string) {
	res, err := h.subs.Add(ctx, chatID, username)
	if err != nil {
		h.logger.Error().Err(err).Int64("chat_id", chatID).Msg("bot: подписка не удалась")
		return
	}
	msgs := h.messagesFor(ctx, chatID)
	if !res.NeedsWelcome {
		h.reply(ctx, chatID, msgs.AlreadySubscribed)
		return
	}
	h.reply(ctx, chatID, msgs.Welcome)
	h.deliverWelcome(ctx, chatID)
}

func (h *Handler) handleSubscribe(ctx context.Context, chatID int64, username string) {
	res, err := h.subs.Add(ctx, chatID, username)
	if err != nil {
		h.logger.Error().Err(err).Int64("chat_id", chatID).Msg("bot: подписка не удалась")
		return
	}
	msgs := h.messagesFor(ctx, chatID)
	if res.IsNew {
		h.reply(ctx, chatID, msgs.Subscribed)
	} else {
		h.reply(ctx, chatID, msgs.AlreadySubscribed)
	}
	if res.NeedsWelcome {
		h.deliverWelcome(ctx, chatID)
	}
}

func (h *Handler) handleUnsubscribe(ctx context.Context, chatID int64) {
	msgs := h.messagesFor(ctx, chatID)
	removed, err := h.subs.Remove(ctx, chatID)
	if err != nil {
		h.logger.Error().Err(err).Int64("chat_id", chatID).Msg("bot: отписка не удалась")
		return
	}
	if removed {
		h.reply(ctx, chatID, msgs.Unsubscribed)
	} else {
		h.reply(ctx, chatID, msgs.NotSubscribed)
	}
}

func (h *Handler) handleStatus(ctx context.Context, chatID int64) {
	lang, subscribed, err := h.subs.GetLanguage(ctx, chatID)
	if err != nil {
		h.logger.Error().Err(err).Int64("chat_id", chatID).Msg("bot: чтение статуса")
		return
	}
	if !subscribed {
		h.reply(ctx, chatID, i18n.MessagesFor(i18n.Canonical).NotSubscribed)
		return
	}
	if !i18n.IsEnabled(lang) {
		lang = i18n.Canonical
	}
	h.reply(ctx, chatID, fmt.Sprintf(i18n.MessagesFor(lang).StatusSubscribed, lang))
}

func (h *Handler) handleLanguage(ctx context.Context, chatID int64, arg string) {
	msgs := h.messagesFor(ctx, chatID)
	codes := strings.Join(i18n.Enabled(), ", ")

	if arg == "" {
		h.reply(ctx, chatID, fmt.Sprintf(msgs.LanguageUsage, codes))
		return
	}
	code, ok := i18n.Normalize(arg)
	if !ok {
		h.reply(ctx, chatID, fmt.Sprintf(msgs.LanguageUnknown, codes))
		return
	}

	_, subscribed, err := h.subs.GetLanguage(ctx, chatID)
	if err != nil {
		h.logger.Error().Err(err).Int64("chat_id", chatID).Msg("bot: чтение языка")
		return
	}
	if !subscribed {
		h.reply(ctx, chatID, msgs.NotSubscribed)
		return
	}
	if err := h.subs.SetLanguage(ctx, chatID, code); err != nil {
		h.logger.Error().Err(err).Int64("chat_id", chatID).Msg("bot: смена языка")
		return
	}
	// Подтверждение уже на новом языке.
	h.reply(ctx, chatID, fmt.Sprintf(i18n.MessagesFor(code).LanguageChanged, code))
}

func (h *Handler) handleBroadcast(ctx context.Context, chatID int64, arg string) {
	msgs := h.messagesFor(ctx, chatID)
	if h.adminChatID == 0 || chatID != h.adminChatID {
		h.reply(ctx, chatID, msgs.AdminOnly)
		return
	}
	if arg == "" {
		h.reply(ctx, chatID, msgs.BroadcastUsage)
		return
	}

	subscribers, err := h.subs.List(ctx)
	if err != nil {
		h.logger.Error().Err(err).Msg("bot: список подписчиков для рассылки")
		return
	}
	delivered := 0
	for i, sub := range subscribers {
		if i > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(h.sendPause):
			}
		}
		if err := h.messenger.SendPlain(ctx, sub.ChatID, arg); err != nil {
			h.logger.Error().Err(err).Int64("chat_id", sub.ChatID).Msg("bot: рассылка не дошла")
			if pipeline.IsPermanentSendError(err.Error()) {
				if _, rmErr := h.subs.Remove(ctx, sub.ChatID); rmErr == nil {
					metrics.SubscribersRemoved.Inc()
				}
			}
			continue
		}
		delivered++
	}
	h.reply(ctx, chatID, fmt.Sprintf(msgs.BroadcastDone, delivered))
}

func (h *Handler) deliverWelcome(ctx context.Context, chatID int64) {
	lang, _, err := h.subs.GetLanguage(ctx, chatID)
	if err != nil || !i18n.IsEnabled(lang) {
		lang = i18n.Canonical
	}
	err = h.welcome.DeliverLatestTo(ctx, chatID, lang)
	if errors.Is(err, pipeline.ErrNoDigest) {
		// Сводок ещё не было: приветствие остаётся в ожидании и уйдёт
		// вместе с первым выпуском.
		h.logger.Info().Int64("chat_id", chatID).Msg("bot: приветственный выпуск отложен, сводок ещё нет")
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Int64("chat_id", chatID).Msg("bot: приветственный выпуск не доставлен")
		return
	}
	if err := h.subs.MarkWelcomeSent(ctx, chatID); err != nil {
		h.logger.Error().Err(err).Int64("chat_id", chatID).Msg("bot: отметка приветствия")
	}
}

// messagesFor выбирает набор строк по сохранённому языку подписчика.
func (h *Handler) messagesFor(ctx context.Context, chatID int64) i18n.Messages {
	lang, ok, err := h.subs.GetLanguage(ctx, chatID)
	if err != nil || !ok || !i18n.IsEnabled(lang) {
		return i18n.MessagesFor(i18n.Canonical)
	}
	return i18n.MessagesFor(lang)
}

func (h *Handler) reply(ctx context.Context, chatID int64, text string) {
	if err := h.messenger.SendMarkdown(ctx, chatID, text); err != nil {
		h.logger.Error().Err(err).Int64("chat_id", chatID).Msg("bot: ответ не отправлен")
	}
}
