// Package http — операторская поверхность сервиса: здоровье, вебхук бота,
// ручной запуск выпуска, список подписчиков и метрики.
package http

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"time"

	chi "github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"tweet-digest-bot/internal/domain"
)

// UpdateHandler обрабатывает входящий апдейт Telegram.
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, upd tgbotapi.Update)
}

// Server оборачивает chi.Router с базовыми middlewares.
type Server struct {
	Router chi.Router
	log    zerolog.Logger

	subs          domain.SubscriberRepo
	updates       UpdateHandler
	trigger       func(ctx context.Context) error
	webhookSecret string
	apiKey        string
}

// NewServer создаёт HTTP сервер.
func NewServer(
	logger zerolog.Logger,
	subs domain.SubscriberRepo,
	updates UpdateHandler,
	trigger func(ctx context.Context) error,
	webhookSecret, apiKey string,
) *Server {
	s := &Server{
		log:           logger.With().Str("component", "http").Logger(),
		subs:          subs,
		updates:       updates,
		trigger:       trigger,
		webhookSecret: webhookSecret,
		apiKey:        apiKey,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))
		r.Get("/health", s.handleHealth)
		r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			promhttp.Handler().ServeHTTP(w, r)
		})
		r.Post("/webhook", s.handleWebhook)
		r.Get("/subscribers", s.handleSubscribers)
	})

	// Ручной выпуск идёт через весь пайплайн и может занимать минуты.
	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(15 * time.Minute))
		r.Post("/trigger", s.handleTrigger)
	})

	s.Router = r
	return s
}

// Start запускает http.Server.
func (s *Server) Start(addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 16 * time.Minute,
	}
	s.log.Info().Str("addr", addr).Msg("HTTP сервер запущен")
	return srv.ListenAndServe()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if s.webhookSecret != "" {
		got := r.Header.Get("X-Telegram-Bot-Api-Secret-Token")
		if subtle.ConstantTimeCompare([]byte(got), []byte(s.webhookSecret)) != 1 {
			s.log.Warn().Msg("webhook: неверный секрет")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
	}

	var upd tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		s.log.Error().Err(err).Msg("webhook: не удалось разобрать апдейт")
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	s.updates.HandleUpdate(r.Context(), upd)
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleTrigger(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if err := s.trigger(r.Context()); err != nil {
		s.log.Error().Err(err).Msg("trigger: выпуск не удался")
		http.Error(w, "pipeline failed", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Summary sent"))
}

func (s *Server) handleSubscribers(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	subs, err := s.subs.List(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("subscribers: выборка не удалась")
		http.Error(w, "storage failed", http.StatusInternalServerError)
		return
	}

	resp := struct {
		Subscribers []int64 `json:"subscribers"`
		Count       int     `json:"count"`
	}{Subscribers: make([]int64, 0, len(subs)), Count: len(subs)}
	for _, sub := range subs {
		resp.Subscribers = append(resp.Subscribers, sub.ChatID)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.log.Error().Err(err).Msg("subscribers: кодирование ответа")
	}
}

// authorized проверяет операторский ключ; пустой ключ в конфиге оставляет
// эндпоинты открытыми.
func (s *Server) authorized(r *http.Request) bool {
	if s.apiKey == "" {
		return true
	}
	got := r.Header.Get("X-API-Key")
	return subtle.ConstantTimeCompare([]byte(got), []byte(s.apiKey)) == 1
}
