package summary

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"tweet-digest-bot/internal/domain"
	"tweet-digest-bot/internal/infra/openai"
)

type stubChat struct {
	req   openai.ChatCompletionRequest
	resp  openai.ChatCompletionResponse
	err   error
	calls int
}

func (s *stubChat) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	s.calls++
	s.req = req
	return s.resp, s.err
}

func chatResponse(content string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{Choices: []openai.ChatCompletionChoice{{Message: openai.ChatMessage{Content: content}}}}
}

func fixedService(client chatClient, model string) *Service {
	s := NewService(client, model, 0.7, 1500, 600, zerolog.Nop())
	base := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }
	return s
}

func ptrTime(t time.Time) *time.Time { return &t }

func TestSummarizePromptShape(t *testing.T) {
	client := &stubChat{resp: chatResponse("  готовая сводка  ")}
	s := fixedService(client, "gpt-4o-mini")

	base := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	posts := []domain.Post{
		{ID: "111", Author: "alice", Text: "@alice: свежая новость", CreatedAt: ptrTime(base.Add(-30 * time.Minute))},
		{ID: "222", Author: "bob", Text: "@bob: новость постарше", CreatedAt: ptrTime(base.Add(-5 * time.Hour))},
		{ID: "unknown", Author: "carol", Text: "@carol: без ссылки", CreatedAt: nil},
	}

	got, err := s.Summarize(context.Background(), posts)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if got != "готовая сводка" {
		t.Errorf("ответ должен быть обрезан по пробелам: %q", got)
	}

	user := client.req.Messages[1].Content
	if !strings.Contains(user, "these 3 recent posts") {
		t.Errorf("в запросе нет числа постов: %q", user)
	}
	if !strings.Contains(user, "1. @alice: свежая новость (30m ago)") {
		t.Errorf("нет метки в минутах: %q", user)
	}
	if !strings.Contains(user, "(5h ago)") {
		t.Errorf("нет метки в часах: %q", user)
	}
	if !strings.Contains(user, "https://x.com/alice/status/111") {
		t.Errorf("нет канонической ссылки: %q", user)
	}
	if !strings.Contains(user, "Link unavailable") {
		t.Errorf("пост без идентификатора должен получать заглушку ссылки: %q", user)
	}
	if !strings.Contains(user, "(date unknown)") {
		t.Errorf("пост без даты должен получать заглушку давности: %q", user)
	}

	system := client.req.Messages[0].Content
	if !strings.Contains(system, "📢 Major Announcements") {
		t.Errorf("в системном промпте нет заголовков разделов: %q", system)
	}
	if !strings.Contains(system, "under 600 words") {
		t.Errorf("в системном промпте нет лимита слов: %q", system)
	}

	if client.req.Temperature != 0.7 {
		t.Errorf("Temperature = %v, ожидалось 0.7", client.req.Temperature)
	}
	if client.req.MaxTokens != 1500 {
		t.Errorf("MaxTokens = %d, ожидалось 1500", client.req.MaxTokens)
	}
	if client.req.ReasoningEffort != "" {
		t.Errorf("обычной модели reasoning_effort не передаётся")
	}
}

func TestSummarizeAbsoluteDateLabel(t *testing.T) {
	client := &stubChat{resp: chatResponse("сводка")}
	s := fixedService(client, "gpt-4o-mini")
	old := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	if _, err := s.Summarize(context.Background(), []domain.Post{{ID: "1", Author: "a", Text: "@a: x", CreatedAt: &old}}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(client.req.Messages[1].Content, "(Aug 20, 2026)") {
		t.Errorf("посты старше суток подписываются абсолютной датой: %q", client.req.Messages[1].Content)
	}
}

func TestSummarizeReasoningModelKnobs(t *testing.T) {
	client := &stubChat{resp: chatResponse("сводка")}
	s := fixedService(client, "o3-mini")
	now := time.Now().UTC()
	if _, err := s.Summarize(context.Background(), []domain.Post{{ID: "1", Author: "a", Text: "@a: x", CreatedAt: &now}}); err != nil {
		t.Fatal(err)
	}
	if client.req.Temperature != 0 {
		t.Error("рассуждающей модели temperature не передаётся")
	}
	if client.req.ReasoningEffort != "low" {
		t.Errorf("ReasoningEffort = %q, ожидалось low", client.req.ReasoningEffort)
	}
	if client.req.MaxCompletionTokens != reasoningTokenBudget {
		t.Errorf("MaxCompletionTokens = %d, ожидалось %d", client.req.MaxCompletionTokens, reasoningTokenBudget)
	}
	if client.req.MaxTokens != 0 {
		t.Error("рассуждающей модели max_tokens не передаётся")
	}
}

func TestSummarizeEmptyChoicesFallback(t *testing.T) {
	client := &stubChat{}
	s := fixedService(client, "gpt-4o-mini")
	now := time.Now().UTC()
	got, err := s.Summarize(context.Background(), []domain.Post{{ID: "1", Author: "a", Text: "@a: x", CreatedAt: &now}})
	if err != nil {
		t.Fatalf("пустой ответ модели не ошибка: %v", err)
	}
	if got != noSummaryFallback {
		t.Errorf("получено %q, ожидалась заглушка", got)
	}
}

func TestSummarizeNoPosts(t *testing.T) {
	client := &stubChat{}
	s := fixedService(client, "gpt-4o-mini")
	if _, err := s.Summarize(context.Background(), nil); err == nil {
		t.Fatal("без постов должна быть ошибка")
	}
	if client.calls != 0 {
		t.Error("без постов модель не вызывается")
	}
}

func TestSummarizeClientError(t *testing.T) {
	client := &stubChat{err: errors.New("api down")}
	s := fixedService(client, "gpt-4o-mini")
	now := time.Now().UTC()
	if _, err := s.Summarize(context.Background(), []domain.Post{{ID: "1", Author: "a", Text: "@a: x", CreatedAt: &now}}); err == nil {
		t.Fatal("ошибка клиента должна пробрасываться")
	}
}

func TestCondense(t *testing.T) {
	client := &stubChat{resp: chatResponse("короткая сводка")}
	s := fixedService(client, "gpt-4o-mini")
	got, err := s.Condense(context.Background(), "длинная сводка", 3796)
	if err != nil {
		t.Fatalf("Condense: %v", err)
	}
	if got != "короткая сводка" {
		t.Errorf("получено %q", got)
	}
	if !strings.Contains(client.req.Messages[0].Content, "3796 bytes") {
		t.Errorf("в промпте нет байтового бюджета: %q", client.req.Messages[0].Content)
	}
	if client.req.Temperature != 0.3 {
		t.Errorf("Temperature = %v, при сжатии ожидалось 0.3", client.req.Temperature)
	}
}

func TestCondenseEmptyAnswerIsError(t *testing.T) {
	client := &stubChat{}
	s := fixedService(client, "gpt-4o-mini")
	if _, err := s.Condense(context.Background(), "сводка", 1000); err == nil {
		t.Fatal("пустой ответ при сжатии должен быть ошибкой")
	}
}
