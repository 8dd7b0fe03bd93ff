package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"tweet-digest-bot/internal/domain"
)

type stubSubs struct {
	list []domain.Subscriber
	err  error
}

func (s *stubSubs) Add(ctx context.Context, chatID int64, username string) (domain.AddResult, error) {
	return domain.AddResult{}, nil
}
func (s *stubSubs) Remove(ctx context.Context, chatID int64) (bool, error)        { return false, nil }
func (s *stubSubs) IsSubscribed(ctx context.Context, chatID int64) (bool, error)  { return false, nil }
func (s *stubSubs) GetLanguage(ctx context.Context, chatID int64) (string, bool, error) {
	return "", false, nil
}
func (s *stubSubs) SetLanguage(ctx context.Context, chatID int64, code string) error { return nil }
func (s *stubSubs) List(ctx context.Context) ([]domain.Subscriber, error)            { return s.list, s.err }
func (s *stubSubs) Count(ctx context.Context) (int, error)                           { return len(s.list), nil }
func (s *stubSubs) MarkWelcomeSent(ctx context.Context, chatID int64) error          { return nil }

type stubUpdates struct {
	got []tgbotapi.Update
}

func (s *stubUpdates) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	s.got = append(s.got, upd)
}

func newTestServer(subs *stubSubs, updates *stubUpdates, trigger func(ctx context.Context) error) *Server {
	if trigger == nil {
		trigger = func(ctx context.Context) error { return nil }
	}
	return NewServer(zerolog.Nop(), subs, updates, trigger, "hook-secret", "op-key")
}

func TestHealth(t *testing.T) {
	srv := newTestServer(&stubSubs{}, &stubUpdates{}, nil)
	rec := httptest.NewRecorder()
	srv.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "OK" {
		t.Fatalf("health: %d %q", rec.Code, rec.Body.String())
	}
}

func TestWebhookSecretRequired(t *testing.T) {
	updates := &stubUpdates{}
	srv := newTestServer(&stubSubs{}, updates, nil)

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(`{"update_id":1}`))
	rec := httptest.NewRecorder()
	srv.Router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("без секрета ожидался 401, получено %d", rec.Code)
	}
	if len(updates.got) != 0 {
		t.Error("апдейт не должен обрабатываться без секрета")
	}
}

func TestWebhookDispatchesUpdate(t *testing.T) {
	updates := &stubUpdates{}
	srv := newTestServer(&stubSubs{}, updates, nil)

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(`{"update_id":42}`))
	req.Header.Set("X-Telegram-Bot-Api-Secret-Token", "hook-secret")
	rec := httptest.NewRecorder()
	srv.Router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("ожидался 200, получено %d", rec.Code)
	}
	if len(updates.got) != 1 || updates.got[0].UpdateID != 42 {
		t.Fatalf("апдейт не дошёл до обработчика: %+v", updates.got)
	}
}

func TestWebhookBadBody(t *testing.T) {
	srv := newTestServer(&stubSubs{}, &stubUpdates{}, nil)
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader("не json"))
	req.Header.Set("X-Telegram-Bot-Api-Secret-Token", "hook-secret")
	rec := httptest.NewRecorder()
	srv.Router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("ожидался 400, получено %d", rec.Code)
	}
}

func TestTriggerAuth(t *testing.T) {
	calls := 0
	srv := newTestServer(&stubSubs{}, &stubUpdates{}, func(ctx context.Context) error {
		calls++
		return nil
	})

	rec := httptest.NewRecorder()
	srv.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/trigger", nil))
	if rec.Code != http.StatusUnauthorized || calls != 0 {
		t.Fatalf("без ключа ожидался 401, получено %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/trigger", nil)
	req.Header.Set("X-API-Key", "op-key")
	rec = httptest.NewRecorder()
	srv.Router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "Summary sent" {
		t.Fatalf("с ключом: %d %q", rec.Code, rec.Body.String())
	}
	if calls != 1 {
		t.Errorf("пайплайн должен запускаться один раз, запусков %d", calls)
	}
}

func TestTriggerFailure(t *testing.T) {
	srv := newTestServer(&stubSubs{}, &stubUpdates{}, func(ctx context.Context) error {
		return errors.New("источник лежит")
	})
	req := httptest.NewRequest(http.MethodPost, "/trigger", nil)
	req.Header.Set("X-API-Key", "op-key")
	rec := httptest.NewRecorder()
	srv.Router.ServeHTTP(rec, req)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("ожидался 500, получено %d", rec.Code)
	}
}

func TestSubscribersJSON(t *testing.T) {
	subs := &stubSubs{list: []domain.Subscriber{
		{ChatID: 1, Username: "alice", LanguageCode: "en", SubscribedAt: time.Now()},
		{ChatID: 2, LanguageCode: "es", SubscribedAt: time.Now()},
	}}
	srv := newTestServer(subs, &stubUpdates{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/subscribers", nil)
	req.Header.Set("X-API-Key", "op-key")
	rec := httptest.NewRecorder()
	srv.Router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("ожидался 200, получено %d", rec.Code)
	}

	var resp struct {
		Subscribers []int64 `json:"subscribers"`
		Count       int     `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("разбор ответа: %v", err)
	}
	if resp.Count != 2 || len(resp.Subscribers) != 2 {
		t.Fatalf("count = %d, записей %d", resp.Count, len(resp.Subscribers))
	}
	if resp.Subscribers[0] != 1 || resp.Subscribers[1] != 2 {
		t.Errorf("ответ должен содержать только chat_id: %v", resp.Subscribers)
	}
}

func TestOpenAccessWithoutConfiguredKey(t *testing.T) {
	srv := NewServer(zerolog.Nop(), &stubSubs{}, &stubUpdates{}, func(ctx context.Context) error { return nil }, "", "")
	rec := httptest.NewRecorder()
	srv.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/subscribers", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("без настроенного ключа эндпоинт открыт: %d", rec.Code)
	}
}
