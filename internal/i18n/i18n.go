// Package i18n содержит закрытый реестр поддерживаемых языков и
// локализованные строки интерфейса. Все строки в Messages заранее
// экранированы под MarkdownV2 и подставляются в сообщения без повторного
// прохода через слой экранирования.
package i18n

import "strings"

// Canonical — канонический язык: на нём генерируется сводка.
const Canonical = "en"

// Language описывает поддерживаемый язык рассылки.
type Language struct {
	Code string
	Name string
}

var registry = []Language{
	{Code: "en", Name: "English"},
	{Code: "es", Name: "Español"},
	{Code: "pt", Name: "Português"},
	{Code: "fr", Name: "Français"},
	{Code: "de", Name: "Deutsch"},
	{Code: "ru", Name: "Русский"},
}

// Enabled возвращает коды всех включённых языков.
func Enabled() []string {
	codes := make([]string, 0, len(registry))
	for _, l := range registry {
		codes = append(codes, l.Code)
	}
	return codes
}

// IsEnabled сообщает, включён ли код в реестр.
func IsEnabled(code string) bool {
	for _, l := range registry {
		if l.Code == code {
			return true
		}
	}
	return false
}

// Name возвращает самоназвание языка по коду; пустая строка для
// незнакомого кода.
func Name(code string) string {
	for _, l := range registry {
		if l.Code == code {
			return l.Name
		}
	}
	return ""
}

// IsCanonical сообщает, является ли код каноническим языком.
func IsCanonical(code string) bool {
	return code == Canonical
}

// Normalize приводит код к нижнему регистру и проверяет его по реестру.
func Normalize(raw string) (string, bool) {
	code := strings.ToLower(strings.TrimSpace(raw))
	if code == "" {
		return "", false
	}
	if idx := strings.IndexAny(code, "-_"); idx > 0 {
		code = code[:idx]
	}
	if !IsEnabled(code) {
		return "", false
	}
	return code, true
}

// CanonicalSectionHeaders — заголовки разделов, которые модель использует в
// канонической сводке. Валидатор перевода считает появление любого из них в
// неканоническом тексте ошибкой перевода.
var CanonicalSectionHeaders = []string{
	"📢 Major Announcements",
	"📈 Market & Business",
	"🚀 Product & Launches",
	"🔬 Research & Tech",
	"💬 Community & Opinions",
	"⚡ Breaking News",
	"🧵 Worth Reading",
}
