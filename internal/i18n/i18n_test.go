package i18n

import (
	"strings"
	"testing"
)

const reservedMarkdownV2 = "_*[]()~`>#+-=|{}.!"

func TestTemplatesPreEscaped(t *testing.T) {
	for _, code := range Enabled() {
		msgs := MessagesFor(code)
		for i, tpl := range msgs.all() {
			if tpl == "" {
				t.Errorf("язык %s: шаблон #%d пуст", code, i)
				continue
			}
			if strings.Contains(tpl, `\\`) {
				t.Errorf("язык %s: шаблон #%d содержит двойной слэш: %q", code, i, tpl)
			}
			runes := []rune(tpl)
			for j, r := range runes {
				if !strings.ContainsRune(reservedMarkdownV2, r) {
					continue
				}
				if j == 0 || runes[j-1] != '\\' {
					t.Errorf("язык %s: шаблон #%d: символ %q не экранирован: %q", code, i, r, tpl)
				}
			}
		}
	}
}

func TestNormalize(t *testing.T) {
	cases := []struct {
		raw  string
		want string
		ok   bool
	}{
		{"en", "en", true},
		{"ES", "es", true},
		{"  Ru ", "ru", true},
		{"pt-BR", "pt", true},
		{"de_DE", "de", true},
		{"jp", "", false},
		{"", "", false},
	}
	for _, c := range cases {
		got, ok := Normalize(c.raw)
		if ok != c.ok || got != c.want {
			t.Errorf("Normalize(%q) = (%q, %v), ожидалось (%q, %v)", c.raw, got, ok, c.want, c.ok)
		}
	}
}

func TestCanonicalEnabled(t *testing.T) {
	if !IsEnabled(Canonical) {
		t.Fatal("канонический язык должен входить в реестр")
	}
	if MessagesFor("unknown").Header != MessagesFor(Canonical).Header {
		t.Fatal("незнакомый код должен давать канонический набор строк")
	}
}
