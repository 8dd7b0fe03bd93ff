// Снимок ленты: собирает свежие посты и кладёт их в JSON-файл.
// Полезно для отладки промптов без повторных походов к источнику.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tweet-digest-bot/internal/adapters/feed"
	"tweet-digest-bot/internal/domain"
	"tweet-digest-bot/internal/infra/config"
	"tweet-digest-bot/internal/infra/log"
)

type snapshot struct {
	CollectedAt time.Time     `json:"collected_at"`
	Accounts    []string      `json:"accounts"`
	Posts       []domain.Post `json:"posts"`
}

func main() {
	outPath := flag.String("out", "posts.json", "куда писать снимок ленты")
	flag.Parse()

	cfg := config.Load()
	logger := log.NewLogger(cfg.AppEnv)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	usernames, err := config.ReadUsernames(cfg.UsernamesFile)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.UsernamesFile).Msg("не удалось прочитать список аккаунтов")
	}

	source := feed.NewSource(cfg.Nitter.Instance, cfg.Nitter.APIKey, usernames, cfg.MaxTweets(), cfg.HoursLookback(), logger)
	posts, err := source.CollectRecent(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("сбор постов не удался")
	}

	data, err := json.MarshalIndent(snapshot{
		CollectedAt: time.Now().UTC(),
		Accounts:    usernames,
		Posts:       posts,
	}, "", "  ")
	if err != nil {
		logger.Fatal().Err(err).Msg("кодирование снимка")
	}
	if err := os.WriteFile(*outPath, data, 0o644); err != nil {
		logger.Fatal().Err(err).Str("path", *outPath).Msg("запись снимка")
	}
	logger.Info().Int("posts", len(posts)).Str("path", *outPath).Msg("снимок ленты сохранён")
}
