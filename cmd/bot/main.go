// Бот-демон: вебхук команд, операторские эндпоинты и выпуск по расписанию
// в одном процессе.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"

	"tweet-digest-bot/internal/adapters/bot"
	"tweet-digest-bot/internal/adapters/feed"
	"tweet-digest-bot/internal/adapters/repo"
	"tweet-digest-bot/internal/adapters/telegram"
	"tweet-digest-bot/internal/infra/config"
	"tweet-digest-bot/internal/infra/db"
	infrahttp "tweet-digest-bot/internal/infra/http"
	"tweet-digest-bot/internal/infra/log"
	"tweet-digest-bot/internal/infra/metrics"
	"tweet-digest-bot/internal/infra/openai"
	"tweet-digest-bot/internal/usecase/pipeline"
	"tweet-digest-bot/internal/usecase/schedule"
	"tweet-digest-bot/internal/usecase/summary"
	"tweet-digest-bot/internal/usecase/translate"
)

func main() {
	cfg := config.Load()
	logger := log.NewLogger(cfg.AppEnv)

	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	pool, err := db.Connect(cfg.DSN())
	if err != nil {
		logger.Fatal().Err(err).Msg("не удалось подключиться к Postgres")
	}
	defer pool.Close()

	store := repo.NewPostgres(pool)
	if err := store.Migrate(ctx); err != nil {
		logger.Fatal().Err(err).Msg("не удалось применить схему БД")
	}

	usernames, err := config.ReadUsernames(cfg.UsernamesFile)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.UsernamesFile).Msg("не удалось прочитать список аккаунтов")
	}
	if len(usernames) == 0 {
		logger.Fatal().Str("path", cfg.UsernamesFile).Msg("список аккаунтов пуст")
	}

	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		logger.Fatal().Err(err).Msg("не удалось инициализировать Telegram API")
	}
	sender := telegram.NewSender(api, logger)

	var adminChatID int64
	if raw := cfg.Telegram.AdminChatID; raw != "" {
		adminChatID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			logger.Warn().Str("value", raw).Msg("TELEGRAM_CHAT_ID не число, сводка оператору отключена")
			adminChatID = 0
		}
	}

	llm := openai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.APIURL)
	source := feed.NewSource(cfg.Nitter.Instance, cfg.Nitter.APIKey, usernames, cfg.MaxTweets(), cfg.HoursLookback(), logger)
	summarizer := summary.NewService(llm, cfg.OpenAI.Model, cfg.SummaryTemperature(), cfg.SummaryMaxTokens(), cfg.SummaryMaxWords(), logger)
	translator := translate.NewService(llm, store, cfg.OpenAI.Model, cfg.SummaryMaxTokens(), logger)
	pipe := pipeline.NewService(store, store, source, summarizer, translator, sender, adminChatID, logger)
	handler := bot.NewHandler(store, sender, pipe, adminChatID, logger)

	moments, err := schedule.ParseScheduleTimes(cfg.ScheduleTimes, cfg.ScheduleUTCOffset())
	if err != nil {
		logger.Fatal().Err(err).Str("schedule_times", cfg.ScheduleTimes).Msg("не удалось разобрать расписание")
	}
	sched := schedule.NewService(moments, pipe.Run, logger)
	go sched.Start(ctx)

	srv := infrahttp.NewServer(logger, store, handler, pipe.Run, cfg.Telegram.WebhookSecret, cfg.APIKey)
	go func() {
		if err := srv.Start(fmt.Sprintf(":%d", cfg.Port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("HTTP сервер упал")
		}
	}()

	logger.Info().
		Int("accounts", len(usernames)).
		Str("model", cfg.OpenAI.Model).
		Msg("tweet-digest-bot запущен")

	<-ctx.Done()
	logger.Info().Msg("остановка по сигналу")
}
