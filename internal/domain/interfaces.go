package domain

import "context"

// SubscriberRepo управляет подписчиками.
type SubscriberRepo interface {
	Add(ctx context.Context, chatID int64, username string) (AddResult, error)
	Remove(ctx context.Context, chatID int64) (bool, error)
	IsSubscribed(ctx context.Context, chatID int64) (bool, error)
	GetLanguage(ctx context.Context, chatID int64) (string, bool, error)
	SetLanguage(ctx context.Context, chatID int64, code string) error
	List(ctx context.Context) ([]Subscriber, error)
	Count(ctx context.Context) (int, error)
	MarkWelcomeSent(ctx context.Context, chatID int64) error
}

// DigestRepo хранит сводки, переводы и журнал неудачных отправок.
type DigestRepo interface {
	SaveDigest(ctx context.Context, content string) (int64, error)
	GetLatestDigest(ctx context.Context) (Digest, bool, error)
	GetTranslation(ctx context.Context, summaryID int64, code string) (Translation, bool, error)
	SaveTranslation(ctx context.Context, summaryID int64, code, content string) error
	LogDeliveryFailure(ctx context.Context, chatID int64, sendErr string) error
}

// FeedSource собирает свежие посты настроенных аккаунтов.
type FeedSource interface {
	HealthCheck(ctx context.Context) error
	CollectRecent(ctx context.Context) ([]Post, error)
}

// Summarizer строит сводку на каноническом языке и умеет её ужимать
// под байтовый бюджет.
type Summarizer interface {
	Summarize(ctx context.Context, posts []Post) (string, error)
	Condense(ctx context.Context, content string, budgetBytes int) (string, error)
}

// TranslationCache — кэш переводов на время одного запуска пайплайна.
type TranslationCache interface {
	Get(code string) (string, bool)
	Set(code, content string)
}

// Translator переводит сводку на язык подписчика. При неудаче возвращает
// канонический текст с префиксом TranslationFailedSentinel, поэтому сам
// никогда не возвращает ошибку.
type Translator interface {
	Translate(ctx context.Context, cache TranslationCache, summaryID int64, content, code string) string
}

// Messenger отправляет сообщения в чат.
type Messenger interface {
	SendMarkdown(ctx context.Context, chatID int64, text string) error
	SendPlain(ctx context.Context, chatID int64, text string) error
}
