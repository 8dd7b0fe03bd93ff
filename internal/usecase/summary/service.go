// Package summary строит сводку собранных постов на каноническом языке.
package summary

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"tweet-digest-bot/internal/domain"
	"tweet-digest-bot/internal/i18n"
	"tweet-digest-bot/internal/infra/openai"
)

// noSummaryFallback отправляется подписчикам, когда модель вернула пустой
// ответ: пустой выпуск хуже честной заглушки.
const noSummaryFallback = "No summary generated"

const reasoningTokenBudget = 16000

type chatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Service генерирует сводку одним обращением к модели.
type Service struct {
	client      chatClient
	model       string
	temperature float64
	maxTokens   int
	maxWords    int
	logger      zerolog.Logger
	now         func() time.Time
}

var _ domain.Summarizer = (*Service)(nil)

// NewService создаёт генератор сводок.
func NewService(client chatClient, model string, temperature float64, maxTokens, maxWords int, logger zerolog.Logger) *Service {
	return &Service{
		client:      client,
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
		maxWords:    maxWords,
		logger:      logger.With().Str("component", "summary").Logger(),
		now:         time.Now,
	}
}

// Summarize строит сводку по постам.
func (s *Service) Summarize(ctx context.Context, posts []domain.Post) (string, error) {
	if len(posts) == 0 {
		return "", fmt.Errorf("summary: нет постов для сводки")
	}

	req := openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatMessage{
			{Role: openai.RoleSystem, Content: s.systemPrompt()},
			{Role: openai.RoleUser, Content: s.userPrompt(posts)},
		},
	}
	s.applyModelKnobs(&req, s.temperature)

	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("summary: запрос к модели: %w", err)
	}
	content := choiceContent(resp)
	if content == "" {
		s.logger.Warn().Msg("summary: модель вернула пустой ответ")
		return noSummaryFallback, nil
	}
	return content, nil
}

// Condense просит модель ужать готовую сводку под байтовый бюджет.
func (s *Service) Condense(ctx context.Context, content string, budgetBytes int) (string, error) {
	system := fmt.Sprintf(
		"You are an editor. Shorten the digest below so its UTF-8 length stays under %d bytes. Preserve the section headers, the most important items and every link. Reply with the shortened digest only.",
		budgetBytes)
	req := openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatMessage{
			{Role: openai.RoleSystem, Content: system},
			{Role: openai.RoleUser, Content: content},
		},
	}
	s.applyModelKnobs(&req, 0.3)

	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("summary: сжатие сводки: %w", err)
	}
	condensed := choiceContent(resp)
	if condensed == "" {
		return "", fmt.Errorf("summary: пустой ответ модели при сжатии")
	}
	return condensed, nil
}

func (s *Service) applyModelKnobs(req *openai.ChatCompletionRequest, temperature float64) {
	if openai.IsReasoningModel(s.model) {
		req.ReasoningEffort = "low"
		req.MaxCompletionTokens = reasoningTokenBudget
		return
	}
	req.Temperature = temperature
	req.MaxTokens = s.maxTokens
}

func (s *Service) systemPrompt() string {
	var b strings.Builder
	b.WriteString("You are a news curator. Summarize the provided posts into a single digest in English.\n")
	b.WriteString("Group the content under these section headers, keeping the exact header text and emoji, and omit sections with nothing to report:\n")
	for _, h := range i18n.CanonicalSectionHeaders {
		b.WriteString(h)
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "Use short bullet points. Where a post link is given, reference it as a Markdown link [source](url). Keep the digest under %d words.", s.maxWords)
	return b.String()
}

func (s *Service) userPrompt(posts []domain.Post) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Please summarize these %d recent posts:\n\n", len(posts))
	for i, p := range posts {
		fmt.Fprintf(&b, "%d. %s (%s)\n   %s\n", i+1, p.Text, s.timeLabel(p.CreatedAt), postURL(p))
	}
	return b.String()
}

// timeLabel подписывает давность поста: минуты в пределах часа, часы в
// пределах суток, дальше абсолютная дата UTC.
func (s *Service) timeLabel(created *time.Time) string {
	if created == nil {
		return "date unknown"
	}
	age := s.now().Sub(*created)
	switch {
	case age < time.Hour:
		return fmt.Sprintf("%dm ago", int(age.Minutes()))
	case age < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(age.Hours()))
	default:
		return created.UTC().Format("Jan 2, 2006")
	}
}

func postURL(p domain.Post) string {
	if p.Author == "" || p.ID == "" || p.ID == "unknown" {
		return "Link unavailable"
	}
	return fmt.Sprintf("https://x.com/%s/status/%s", p.Author, p.ID)
}

func choiceContent(resp openai.ChatCompletionResponse) string {
	if len(resp.Choices) == 0 {
		return ""
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content)
}
