package repo

import (
	"context"
	_ "embed"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tweet-digest-bot/internal/domain"
	"tweet-digest-bot/internal/infra/metrics"
)

//go:embed schema.sql
var schemaSQL string

// Postgres реализует репозитории на основе pgxpool.
type Postgres struct {
	pool *pgxpool.Pool
}

var (
	_ domain.SubscriberRepo = (*Postgres)(nil)
	_ domain.DigestRepo     = (*Postgres)(nil)
)

// NewPostgres создаёт адаптер БД.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Migrate применяет встроенную схему. Все выражения идемпотентны.
func (p *Postgres) Migrate(ctx context.Context) error {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	_, err := p.pool.Exec(ctx, schemaSQL)
	metrics.ObserveNetworkRequest("postgres", "migrate", "schema", start, err)
	return err
}

func (p *Postgres) connCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}

func (p *Postgres) connCtxWithParent(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		return p.connCtx()
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, 5*time.Second)
}

// Add подписывает чат. NeedsWelcome истинно, пока подписчику не доставлен
// приветственный выпуск: повторная подписка после сбоя приветствия снова
// его запросит.
func (p *Postgres) Add(ctx context.Context, chatID int64, username string) (domain.AddResult, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	username = strings.TrimSpace(username)

	var (
		welcomeSent bool
		inserted    bool
	)
	start := time.Now()
	err := p.pool.QueryRow(ctx, `
INSERT INTO subscribers (chat_id, username)
VALUES ($1, $2)
ON CONFLICT (chat_id) DO UPDATE SET username = COALESCE(NULLIF(EXCLUDED.username, ''), subscribers.username)
RETURNING welcome_sent, (xmax = 0) AS inserted
`, chatID, username).Scan(&welcomeSent, &inserted)
	metrics.ObserveNetworkRequest("postgres", "subscribers_upsert", "subscribers", start, err)
	if err != nil {
		return domain.AddResult{}, err
	}
	return domain.AddResult{IsNew: inserted, NeedsWelcome: !welcomeSent}, nil
}

// Remove удаляет подписчика; true, если запись существовала.
func (p *Postgres) Remove(ctx context.Context, chatID int64) (bool, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	tag, err := p.pool.Exec(ctx, `DELETE FROM subscribers WHERE chat_id=$1`, chatID)
	metrics.ObserveNetworkRequest("postgres", "subscribers_delete", "subscribers", start, err)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// IsSubscribed проверяет подписку.
func (p *Postgres) IsSubscribed(ctx context.Context, chatID int64) (bool, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	var exists bool
	start := time.Now()
	err := p.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM subscribers WHERE chat_id=$1)`, chatID).Scan(&exists)
	metrics.ObserveNetworkRequest("postgres", "subscribers_exists", "subscribers", start, err)
	return exists, err
}

// GetLanguage возвращает язык подписчика; false, если подписки нет.
func (p *Postgres) GetLanguage(ctx context.Context, chatID int64) (string, bool, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	var code string
	start := time.Now()
	err := p.pool.QueryRow(ctx, `SELECT language_code FROM subscribers WHERE chat_id=$1`, chatID).Scan(&code)
	metrics.ObserveNetworkRequest("postgres", "subscribers_get_language", "subscribers", start, err)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return code, true, nil
}

// SetLanguage сохраняет язык подписчика.
func (p *Postgres) SetLanguage(ctx context.Context, chatID int64, code string) error {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	_, err := p.pool.Exec(ctx, `UPDATE subscribers SET language_code=$2 WHERE chat_id=$1`, chatID, code)
	metrics.ObserveNetworkRequest("postgres", "subscribers_set_language", "subscribers", start, err)
	return err
}

// List возвращает всех подписчиков, новые первыми.
func (p *Postgres) List(ctx context.Context) ([]domain.Subscriber, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	rows, err := p.pool.Query(ctx, `
SELECT chat_id, username, language_code, welcome_sent, subscribed_at
FROM subscribers
ORDER BY subscribed_at DESC
`)
	metrics.ObserveNetworkRequest("postgres", "subscribers_list", "subscribers", start, err)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var subs []domain.Subscriber
	for rows.Next() {
		var s domain.Subscriber
		if err := rows.Scan(&s.ChatID, &s.Username, &s.LanguageCode, &s.WelcomeSent, &s.SubscribedAt); err != nil {
			return nil, err
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

// Count считает подписчиков.
func (p *Postgres) Count(ctx context.Context) (int, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	var count int
	start := time.Now()
	err := p.pool.QueryRow(ctx, `SELECT COUNT(*) FROM subscribers`).Scan(&count)
	metrics.ObserveNetworkRequest("postgres", "subscribers_count", "subscribers", start, err)
	return count, err
}

// MarkWelcomeSent помечает приветственный выпуск доставленным.
func (p *Postgres) MarkWelcomeSent(ctx context.Context, chatID int64) error {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	_, err := p.pool.Exec(ctx, `UPDATE subscribers SET welcome_sent=TRUE WHERE chat_id=$1`, chatID)
	metrics.ObserveNetworkRequest("postgres", "subscribers_mark_welcome", "subscribers", start, err)
	return err
}

// SaveDigest сохраняет сводку и возвращает её идентификатор.
func (p *Postgres) SaveDigest(ctx context.Context, content string) (int64, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	var id int64
	start := time.Now()
	err := p.pool.QueryRow(ctx, `INSERT INTO summaries (content) VALUES ($1) RETURNING id`, content).Scan(&id)
	metrics.ObserveNetworkRequest("postgres", "summaries_insert", "summaries", start, err)
	return id, err
}

// GetLatestDigest возвращает последнюю сводку; false, если сводок ещё нет.
func (p *Postgres) GetLatestDigest(ctx context.Context) (domain.Digest, bool, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	var d domain.Digest
	start := time.Now()
	err := p.pool.QueryRow(ctx, `
SELECT id, content, created_at
FROM summaries
ORDER BY created_at DESC, id DESC
LIMIT 1
`).Scan(&d.ID, &d.Content, &d.CreatedAt)
	metrics.ObserveNetworkRequest("postgres", "summaries_get_latest", "summaries", start, err)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Digest{}, false, nil
	}
	if err != nil {
		return domain.Digest{}, false, err
	}
	return d, true, nil
}

// GetTranslation возвращает сохранённый перевод сводки.
func (p *Postgres) GetTranslation(ctx context.Context, summaryID int64, code string) (domain.Translation, bool, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	t := domain.Translation{SummaryID: summaryID, LanguageCode: code}
	start := time.Now()
	err := p.pool.QueryRow(ctx, `
SELECT content FROM translations WHERE summary_id=$1 AND language_code=$2
`, summaryID, code).Scan(&t.Content)
	metrics.ObserveNetworkRequest("postgres", "translations_get", "translations", start, err)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Translation{}, false, nil
	}
	if err != nil {
		return domain.Translation{}, false, err
	}
	return t, true, nil
}

// SaveTranslation сохраняет перевод; повторное сохранение перезаписывает текст.
func (p *Postgres) SaveTranslation(ctx context.Context, summaryID int64, code, content string) error {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	_, err := p.pool.Exec(ctx, `
INSERT INTO translations (summary_id, language_code, content)
VALUES ($1, $2, $3)
ON CONFLICT (summary_id, language_code) DO UPDATE SET content = EXCLUDED.content
`, summaryID, code, content)
	metrics.ObserveNetworkRequest("postgres", "translations_upsert", "translations", start, err)
	return err
}

// LogDeliveryFailure дописывает запись в журнал неудачных отправок.
func (p *Postgres) LogDeliveryFailure(ctx context.Context, chatID int64, sendErr string) error {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	_, err := p.pool.Exec(ctx, `
INSERT INTO delivery_failures (chat_id, error) VALUES ($1, $2)
`, chatID, sendErr)
	metrics.ObserveNetworkRequest("postgres", "delivery_failures_insert", "delivery_failures", start, err)
	return err
}
