// Выгрузка подписчиков в JSON для бэкапа или миграции.
package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"tweet-digest-bot/internal/adapters/repo"
	"tweet-digest-bot/internal/infra/config"
	"tweet-digest-bot/internal/infra/db"
	"tweet-digest-bot/internal/infra/log"
)

type subscriberExport struct {
	ChatID       int64     `json:"chat_id"`
	Username     string    `json:"username,omitempty"`
	LanguageCode string    `json:"language_code"`
	SubscribedAt time.Time `json:"subscribed_at"`
}

func main() {
	cfg := config.Load()
	logger := log.NewLogger(cfg.AppEnv)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := db.Connect(cfg.DSN())
	if err != nil {
		logger.Fatal().Err(err).Msg("не удалось подключиться к Postgres")
	}
	defer pool.Close()

	store := repo.NewPostgres(pool)
	subscribers, err := store.List(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("выборка подписчиков не удалась")
	}

	out := make([]subscriberExport, 0, len(subscribers))
	for _, sub := range subscribers {
		out = append(out, subscriberExport{
			ChatID:       sub.ChatID,
			Username:     sub.Username,
			LanguageCode: sub.LanguageCode,
			SubscribedAt: sub.SubscribedAt,
		})
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		logger.Fatal().Err(err).Msg("кодирование JSON")
	}
	logger.Info().Int("count", len(out)).Msg("подписчики выгружены")
}
