package translate

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"tweet-digest-bot/internal/i18n"
)

// Шаблоны токенов, которые перевод обязан сохранить дословно.
var (
	handleRe     = regexp.MustCompile(`@\w+`)
	hashtagRe    = regexp.MustCompile(`#\w+`)
	cashtagRe    = regexp.MustCompile(`\$[A-Za-z]\w*`)
	urlRe        = regexp.MustCompile(`https?://[^\s)]+`)
	inlineLinkRe = regexp.MustCompile(`\[[^\]\n]*\]\([^)\n]*\)`)
)

// validateTokens сравнивает наборы защищённых токенов оригинала и перевода
// и возвращает список расхождений.
func validateTokens(original, translated string) []string {
	var issues []string
	checks := []struct {
		name string
		re   *regexp.Regexp
	}{
		{"handles", handleRe},
		{"hashtags", hashtagRe},
		{"cashtags", cashtagRe},
		{"urls", urlRe},
		{"inline_links", inlineLinkRe},
	}
	for _, c := range checks {
		want := tokenSet(c.re, original)
		got := tokenSet(c.re, translated)
		if missing := diff(want, got); len(missing) > 0 {
			issues = append(issues, fmt.Sprintf("%s потеряны: %s", c.name, strings.Join(missing, ", ")))
		}
	}
	return issues
}

// leakedCanonicalHeaders возвращает канонические заголовки разделов,
// оставшиеся в переводе: их присутствие означает, что раздел не переведён.
func leakedCanonicalHeaders(translated string) []string {
	var leaked []string
	for _, h := range i18n.CanonicalSectionHeaders {
		if strings.Contains(translated, h) {
			leaked = append(leaked, h)
		}
	}
	return leaked
}

func tokenSet(re *regexp.Regexp, s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range re.FindAllString(s, -1) {
		set[strings.TrimRight(tok, ".,;:!?")] = struct{}{}
	}
	return set
}

func diff(want, got map[string]struct{}) []string {
	var missing []string
	for tok := range want {
		if _, ok := got[tok]; !ok {
			missing = append(missing, tok)
		}
	}
	sort.Strings(missing)
	return missing
}
