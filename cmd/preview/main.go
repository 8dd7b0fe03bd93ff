// Утилита предпросмотра: собирает посты и печатает сводку в stdout,
// не трогая ни БД, ни Telegram.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"tweet-digest-bot/internal/adapters/feed"
	"tweet-digest-bot/internal/infra/config"
	"tweet-digest-bot/internal/infra/log"
	"tweet-digest-bot/internal/infra/openai"
	"tweet-digest-bot/internal/usecase/summary"
)

func main() {
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
	logger.Info().Int("posts", len(posts)).Msg("посты собраны")

	llm := openai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.APIURL)
	summarizer := summary.NewService(llm, cfg.OpenAI.Model, cfg.SummaryTemperature(), cfg.SummaryMaxTokens(), cfg.SummaryMaxWords(), logger)
	digest, err := summarizer.Summarize(ctx, posts)
	if err != nil {
		logger.Fatal().Err(err).Msg("генерация сводки не удалась")
	}

	fmt.Println(digest)
}
