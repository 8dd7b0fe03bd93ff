package domain

import "time"

// Post — нормализованный пост из ленты одного аккаунта.
// CreatedAt равен nil, если дату публикации не удалось распознать;
// такие посты не отбрасываются фильтром по окну и сортируются последними.
type Post struct {
	ID        string
	Text      string
	Author    string
	CreatedAt *time.Time
}

// Digest — итоговая сводка одного запуска пайплайна на каноническом языке.
type Digest struct {
	ID        int64
	Content   string
	CreatedAt time.Time
}

// Translation — перевод сводки, уникальный по паре (SummaryID, LanguageCode).
type Translation struct {
	SummaryID    int64
	LanguageCode string
	Content      string
}

// Subscriber описывает подписчика рассылки.
type Subscriber struct {
	ChatID       int64
	Username     string
	LanguageCode string
	WelcomeSent  bool
	SubscribedAt time.Time
}

// DeliveryFailure — запись журнала неудачных отправок. Журнал только
// пополняется и никогда не участвует в управлении доставкой.
type DeliveryFailure struct {
	ChatID    int64
	Error     string
	CreatedAt time.Time
}

// AddResult — результат подписки.
type AddResult struct {
	IsNew        bool
	NeedsWelcome bool
}

// TranslationFailedSentinel — внутренний маркер, которым переводчик помечает
// фолбэк на канонический текст. Пайплайн срезает маркер до экранирования и
// подставляет локализованное уведомление; в отправленном сообщении маркер
// появляться не должен.
const TranslationFailedSentinel = "\x00TRANSLATION_FAILED\x00"
