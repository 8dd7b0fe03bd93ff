package translate

import (
	"sync"

	"tweet-digest-bot/internal/domain"
)

// RunCache — кэш переводов на время одного запуска пайплайна: подписчики с
// одинаковым языком получают один и тот же перевод без повторных обращений
// к модели.
type RunCache struct {
	mu      sync.Mutex
	entries map[string]string
}

var _ domain.TranslationCache = (*RunCache)(nil)

// NewRunCache создаёт пустой кэш.
func NewRunCache() *RunCache {
	return &RunCache{entries: make(map[string]string)}
}

// Get возвращает перевод для кода языка.
func (c *RunCache) Get(code string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[code]
	return v, ok
}

// Set сохраняет перевод для кода языка.
func (c *RunCache) Set(code, content string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[code] = content
}
