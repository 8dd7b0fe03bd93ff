// Package feed собирает посты аккаунтов через RSS-прокси Nitter.
package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog"

	"tweet-digest-bot/internal/domain"
	"tweet-digest-bot/internal/infra/metrics"
	"tweet-digest-bot/internal/infra/retry"
)

const browserUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// errHTMLBody — источник отдал HTML-страницу вместо ленты: повторы не помогут.
var errHTMLBody = errors.New("feed: источник вернул HTML вместо RSS")

// Source опрашивает инстанс Nitter по списку аккаунтов: последовательно, с
// паузой между аккаунтами, отказ одного аккаунта не срывает сбор остальных.
type Source struct {
	client   *http.Client
	instance string
	apiKey   string
	accounts []string
	maxPosts int
	lookback time.Duration
	pause    time.Duration
	parser   *gofeed.Parser
	logger   zerolog.Logger
	now      func() time.Time
}

var _ domain.FeedSource = (*Source)(nil)

// NewSource создаёт источник лент.
func NewSource(instance, apiKey string, accounts []string, maxPosts, lookbackHours int, logger zerolog.Logger) *Source {
	return &Source{
		client:   &http.Client{Timeout: 30 * time.Second},
		instance: strings.TrimRight(instance, "/"),
		apiKey:   apiKey,
		accounts: accounts,
		maxPosts: maxPosts,
		lookback: time.Duration(lookbackHours) * time.Hour,
		pause:    3 * time.Second,
		parser:   gofeed.NewParser(),
		logger:   logger.With().Str("component", "feed").Logger(),
		now:      time.Now,
	}
}

// HealthCheck проверяет, что инстанс отдаёт ленту первого аккаунта.
func (s *Source) HealthCheck(ctx context.Context) error {
	if len(s.accounts) == 0 {
		return fmt.Errorf("feed: список аккаунтов пуст")
	}
	return retry.Do(ctx, s.logger, retry.HealthCheck, "nitter_health", func(ctx context.Context) error {
		body, err := s.fetch(ctx, s.accounts[0])
		if err != nil {
			return err
		}
		trimmed := strings.TrimSpace(body)
		if !strings.HasPrefix(trimmed, "<?xml") && !strings.HasPrefix(trimmed, "<rss") {
			return fmt.Errorf("feed: ответ инстанса не похож на RSS")
		}
		return nil
	})
}

// CollectRecent собирает посты всех аккаунтов, сортирует по убыванию даты
// (посты без даты в конце), отсекает окно давности и режет по потолку.
func (s *Source) CollectRecent(ctx context.Context) ([]domain.Post, error) {
	var posts []domain.Post
	for i, account := range s.accounts {
		if i > 0 {
			if err := sleepCtx(ctx, s.pause); err != nil {
				return nil, err
			}
		}
		items, err := s.collectAccount(ctx, account)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			metrics.FeedErrors.Inc()
			s.logger.Error().Err(err).Str("account", account).Msg("feed: не удалось получить ленту аккаунта")
			continue
		}
		posts = append(posts, items...)
	}
	posts = s.selectRecent(posts)
	metrics.PostsCollected.Observe(float64(len(posts)))
	return posts, nil
}

func (s *Source) collectAccount(ctx context.Context, account string) ([]domain.Post, error) {
	retryable := func(err error) bool { return !errors.Is(err, errHTMLBody) }
	body, err := retry.DoValueIf(ctx, s.logger, retry.Feed, "nitter_fetch", retryable, func(ctx context.Context) (string, error) {
		body, err := s.fetch(ctx, account)
		if err != nil {
			return "", err
		}
		trimmed := strings.TrimSpace(body)
		if strings.HasPrefix(trimmed, "<!DOCTYPE") || strings.HasPrefix(trimmed, "<html") {
			return "", errHTMLBody
		}
		return body, nil
	})
	if err != nil {
		return nil, err
	}

	parsed, err := s.parser.ParseString(body)
	if err != nil {
		return nil, fmt.Errorf("feed: разбор ленты %s: %w", account, err)
	}
	posts := make([]domain.Post, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		posts = append(posts, normalizeItem(account, item))
	}
	return posts, nil
}

func (s *Source) fetch(ctx context.Context, account string) (string, error) {
	endpoint := s.instance + "/" + account + "/rss"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("feed: построение запроса: %w", err)
	}
	req.Header.Set("User-Agent", browserUserAgent)
	if s.apiKey != "" {
		req.Header.Set("X-API-Key", s.apiKey)
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		metrics.ObserveNetworkRequest("nitter", "fetch_feed", account, start, err)
		return "", fmt.Errorf("feed: запрос ленты: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err == nil && (resp.StatusCode < 200 || resp.StatusCode > 299) {
		err = fmt.Errorf("feed: неожиданный статус %d", resp.StatusCode)
	}
	metrics.ObserveNetworkRequest("nitter", "fetch_feed", account, start, err)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// normalizeItem приводит элемент ленты к домену: идентификатор — последний
// сегмент пути ссылки, текст — заголовок с префиксом автора.
func normalizeItem(account string, item *gofeed.Item) domain.Post {
	id := "unknown"
	if u, err := url.Parse(item.Link); err == nil {
		if base := path.Base(u.Path); base != "" && base != "." && base != "/" {
			id = base
		}
	}
	return domain.Post{
		ID:        id,
		Author:    account,
		Text:      "@" + account + ": " + strings.TrimSpace(item.Title),
		CreatedAt: item.PublishedParsed,
	}
}

func (s *Source) selectRecent(posts []domain.Post) []domain.Post {
	sort.SliceStable(posts, func(i, j int) bool {
		a, b := posts[i].CreatedAt, posts[j].CreatedAt
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
	cutoff := s.now().Add(-s.lookback)
	kept := make([]domain.Post, 0, len(posts))
	for _, p := range posts {
		if p.CreatedAt == nil || p.CreatedAt.After(cutoff) {
			kept = append(kept, p)
		}
	}
	if len(kept) > s.maxPosts {
		kept = kept[:s.maxPosts]
	}
	return kept
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
