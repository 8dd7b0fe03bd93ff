// Package pipeline управляет полным циклом выпуска: сбор постов, сводка,
// переводы и поимённая доставка подписчикам.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"tweet-digest-bot/internal/adapters/telegram"
	"tweet-digest-bot/internal/domain"
	"tweet-digest-bot/internal/i18n"
	"tweet-digest-bot/internal/infra/metrics"
	"tweet-digest-bot/internal/usecase/translate"
)

// ErrNoDigest — сводок ещё не было, приветственный выпуск отправлять нечего.
var ErrNoDigest = errors.New("pipeline: сводок ещё нет")

const timestampLayout = "January 2, 2006 at 15:04 UTC"

// Service — оркестратор выпуска.
type Service struct {
	subs        domain.SubscriberRepo
	store       domain.DigestRepo
	feed        domain.FeedSource
	summarizer  domain.Summarizer
	translator  domain.Translator
	messenger   domain.Messenger
	adminChatID int64
	logger      zerolog.Logger
	sendPause   time.Duration
	now         func() time.Time
}

// NewService создаёт пайплайн. adminChatID равный нулю отключает сводку
// оператору.
func NewService(
	subs domain.SubscriberRepo,
	store domain.DigestRepo,
	feed domain.FeedSource,
	summarizer domain.Summarizer,
	translator domain.Translator,
	messenger domain.Messenger,
	adminChatID int64,
	logger zerolog.Logger,
) *Service {
	return &Service{
		subs:        subs,
		store:       store,
		feed:        feed,
		summarizer:  summarizer,
		translator:  translator,
		messenger:   messenger,
		adminChatID: adminChatID,
		logger:      logger.With().Str("component", "pipeline").Logger(),
		sendPause:   100 * time.Millisecond,
		now:         time.Now,
	}
}

// Run выполняет полный цикл выпуска. Пустая выборка постов пропускает
// выпуск без ошибки.
func (s *Service) Run(ctx context.Context) error {
	runID := uuid.NewString()
	logger := s.logger.With().Str("run_id", runID).Logger()
	start := time.Now()
	defer func() { metrics.PipelineDuration.Observe(time.Since(start).Seconds()) }()

	logger.Info().Msg("pipeline: запуск выпуска")

	if err := s.feed.HealthCheck(ctx); err != nil {
		metrics.PipelineRuns.WithLabelValues("health_failed").Inc()
		return fmt.Errorf("pipeline: источник недоступен: %w", err)
	}

	posts, err := s.feed.CollectRecent(ctx)
	if err != nil {
		metrics.PipelineRuns.WithLabelValues("collect_failed").Inc()
		return fmt.Errorf("pipeline: сбор постов: %w", err)
	}
	if len(posts) == 0 {
		metrics.PipelineRuns.WithLabelValues("no_posts").Inc()
		logger.Info().Msg("pipeline: свежих постов нет, выпуск пропущен")
		return nil
	}
	logger.Info().Int("posts", len(posts)).Msg("pipeline: посты собраны")

	content, err := s.summarizer.Summarize(ctx, posts)
	if err != nil {
		metrics.PipelineRuns.WithLabelValues("summary_failed").Inc()
		return fmt.Errorf("pipeline: генерация сводки: %w", err)
	}

	id, err := s.store.SaveDigest(ctx, content)
	if err != nil {
		metrics.PipelineRuns.WithLabelValues("save_failed").Inc()
		return fmt.Errorf("pipeline: сохранение сводки: %w", err)
	}

	digest := domain.Digest{ID: id, Content: content, CreatedAt: s.now().UTC()}
	if err := s.deliver(ctx, logger, digest); err != nil {
		metrics.PipelineRuns.WithLabelValues("deliver_failed").Inc()
		return err
	}
	metrics.PipelineRuns.WithLabelValues("success").Inc()
	return nil
}

// deliver рассылает сводку всем подписчикам. Ошибка одной отправки не
// останавливает остальных.
func (s *Service) deliver(ctx context.Context, logger zerolog.Logger, d domain.Digest) error {
	subscribers, err := s.subs.List(ctx)
	if err != nil {
		return fmt.Errorf("pipeline: список подписчиков: %w", err)
	}
	if len(subscribers) == 0 {
		logger.Info().Msg("pipeline: подписчиков нет, доставка пропущена")
		return nil
	}

	cache := translate.NewRunCache()
	cache.Set(i18n.Canonical, d.Content)
	ts := telegram.EscapeMarkdownV2(s.now().UTC().Format(timestampLayout))

	var failed, removed int
	for i, sub := range subscribers {
		if i > 0 {
			if err := sleepCtx(ctx, s.sendPause); err != nil {
				return err
			}
		}
		if err := s.deliverOne(ctx, cache, d, sub, ts); err != nil {
			failed++
			logger.Error().Err(err).Int64("chat_id", sub.ChatID).Msg("pipeline: отправка не удалась")
			if logErr := s.store.LogDeliveryFailure(ctx, sub.ChatID, err.Error()); logErr != nil {
				logger.Error().Err(logErr).Int64("chat_id", sub.ChatID).Msg("pipeline: запись в журнал отказов")
			}
			if IsPermanentSendError(err.Error()) {
				if _, rmErr := s.subs.Remove(ctx, sub.ChatID); rmErr != nil {
					logger.Error().Err(rmErr).Int64("chat_id", sub.ChatID).Msg("pipeline: удаление подписчика")
				} else {
					removed++
					metrics.SubscribersRemoved.Inc()
					logger.Info().Int64("chat_id", sub.ChatID).Msg("pipeline: подписчик удалён после необратимого отказа")
				}
			}
		}
	}

	logger.Info().
		Int("subscribers", len(subscribers)).
		Int("failed", failed).
		Int("removed", removed).
		Msg("pipeline: доставка завершена")

	if failed > 0 && s.adminChatID != 0 {
		summary := fmt.Sprintf("Digest delivery finished: %d of %d sends failed, %d subscribers removed", failed, len(subscribers), removed)
		if err := s.messenger.SendPlain(ctx, s.adminChatID, summary); err != nil {
			logger.Error().Err(err).Msg("pipeline: сводка оператору не отправлена")
		}
	}
	return nil
}

// DeliverLatestTo отправляет последнюю сохранённую сводку одному чату;
// используется для приветственного выпуска и ручной проверки.
func (s *Service) DeliverLatestTo(ctx context.Context, chatID int64, lang string) error {
	d, ok, err := s.store.GetLatestDigest(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNoDigest
	}
	cache := translate.NewRunCache()
	cache.Set(i18n.Canonical, d.Content)
	ts := telegram.EscapeMarkdownV2(d.CreatedAt.UTC().Format(timestampLayout))
	return s.deliverOne(ctx, cache, d, domain.Subscriber{ChatID: chatID, LanguageCode: lang}, ts)
}

func (s *Service) deliverOne(ctx context.Context, cache domain.TranslationCache, d domain.Digest, sub domain.Subscriber, ts string) error {
	lang := sub.LanguageCode
	if !i18n.IsEnabled(lang) {
		lang = i18n.Canonical
	}
	base, _ := cache.Get(i18n.Canonical)

	var text string
	if i18n.IsCanonical(lang) {
		text = base
	} else {
		text = s.translator.Translate(ctx, cache, d.ID, base, lang)
	}

	msgs := i18n.MessagesFor(lang)
	notice := ""
	hadSentinel := strings.HasPrefix(text, domain.TranslationFailedSentinel)
	if hadSentinel {
		text = strings.TrimPrefix(text, domain.TranslationFailedSentinel)
		notice = msgs.TranslationUnavailable + "\n\n"
	}

	render := func(body string) string {
		return fmt.Sprintf("📰 *%s*\n_%s_\n\n%s%s", msgs.Header, ts, notice, body)
	}
	message := s.fitToLimit(ctx, cache, lang, text, hadSentinel, render)
	return s.messenger.SendMarkdown(ctx, sub.ChatID, message)
}

// IsPermanentSendError распознаёт отказы, после которых подписчик никогда
// не получит сообщение: бот заблокирован или аккаунт удалён.
func IsPermanentSendError(msg string) bool {
	if !strings.Contains(msg, "403") {
		return false
	}
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "blocked by the user") || strings.Contains(lower, "user is deactivated")
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
