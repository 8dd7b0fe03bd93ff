// Package translate переводит сводку на языки подписчиков с кэшем на время
// запуска и постоянным хранением переводов.
package translate

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"tweet-digest-bot/internal/domain"
	"tweet-digest-bot/internal/i18n"
	"tweet-digest-bot/internal/infra/metrics"
	"tweet-digest-bot/internal/infra/openai"
	"tweet-digest-bot/internal/infra/retry"
)

const reasoningTokenBudget = 16000

type chatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Service переводит сводки. Порядок поиска: кэш запуска, затем таблица
// переводов, затем модель. Перевод никогда не падает наружу: после
// исчерпания повторов возвращается канонический текст с маркером.
type Service struct {
	client    chatClient
	store     domain.DigestRepo
	model     string
	maxTokens int
	logger    zerolog.Logger
}

var _ domain.Translator = (*Service)(nil)

// NewService создаёт переводчика.
func NewService(client chatClient, store domain.DigestRepo, model string, maxTokens int, logger zerolog.Logger) *Service {
	return &Service{
		client:    client,
		store:     store,
		model:     model,
		maxTokens: maxTokens,
		logger:    logger.With().Str("component", "translate").Logger(),
	}
}

// Translate возвращает сводку на языке подписчика. Канонический язык
// отдаётся без изменений и без обращений к кэшу.
func (s *Service) Translate(ctx context.Context, cache domain.TranslationCache, summaryID int64, content, code string) string {
	if i18n.IsCanonical(code) {
		return content
	}

	if cached, ok := cache.Get(code); ok {
		metrics.TranslationCacheHits.Inc()
		return cached
	}
	metrics.TranslationCacheMisses.Inc()

	if stored, ok, err := s.store.GetTranslation(ctx, summaryID, code); err != nil {
		s.logger.Error().Err(err).Str("language", code).Msg("translate: чтение сохранённого перевода")
	} else if ok {
		cache.Set(code, stored.Content)
		return stored.Content
	}

	translated, err := s.callModel(ctx, content, code)
	if err != nil {
		metrics.TranslationAPIFailures.Inc()
		s.logger.Error().Err(err).Str("language", code).Msg("translate: перевод не удался, отдаём оригинал")
		// Откат тоже кэшируется: остальные подписчики этого языка в том же
		// запуске не должны заново дёргать модель.
		fallback := domain.TranslationFailedSentinel + content
		cache.Set(code, fallback)
		return fallback
	}

	s.validate(content, translated, code)

	if err := s.store.SaveTranslation(ctx, summaryID, code, translated); err != nil {
		s.logger.Error().Err(err).Str("language", code).Msg("translate: сохранение перевода")
	}
	cache.Set(code, translated)
	return translated
}

func (s *Service) callModel(ctx context.Context, content, code string) (string, error) {
	system := fmt.Sprintf(
		"You are a professional translator. Translate the digest into %s. Preserve the Markdown structure and translate the section headers too. Keep links, @handles, #hashtags, $cashtags, proper names and short technical acronyms exactly as they are. Reply with the translation only.",
		i18n.Name(code))
	req := openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatMessage{
			{Role: openai.RoleSystem, Content: system},
			{Role: openai.RoleUser, Content: content},
		},
	}
	if openai.IsReasoningModel(s.model) {
		req.ReasoningEffort = "low"
		req.MaxCompletionTokens = reasoningTokenBudget
	} else {
		req.Temperature = 0.3
		req.MaxCompletionTokens = s.maxTokens
	}

	return retry.DoValueIf(ctx, s.logger, retry.APICall, "translate_"+code, retry.HTTPRetryable, func(ctx context.Context) (string, error) {
		resp, err := s.client.CreateChatCompletion(ctx, req)
		if err != nil {
			return "", err
		}
		if len(resp.Choices) == 0 {
			return "", fmt.Errorf("translate: пустой ответ модели")
		}
		translated := strings.TrimSpace(resp.Choices[0].Message.Content)
		if translated == "" {
			return "", fmt.Errorf("translate: пустой ответ модели")
		}
		return translated, nil
	})
}

// validate пишет в лог расхождения перевода; доставке они не мешают.
func (s *Service) validate(original, translated, code string) {
	for _, issue := range validateTokens(original, translated) {
		s.logger.Warn().Str("language", code).Str("issue", issue).Msg("translate: перевод потерял защищённые токены")
	}
	if leaked := leakedCanonicalHeaders(translated); len(leaked) > 0 {
		s.logger.Error().Str("language", code).Strs("headers", leaked).Msg("translate: в переводе остались канонические заголовки")
	}
}
