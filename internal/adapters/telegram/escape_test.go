package telegram

import (
	"strings"
	"testing"
)

func TestEscapePlainText(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Hello. World!", `Hello\. World\!`},
		{"a_b *c* [d]", `a\_b \*c\* \[d\]`},
		{"price +5% (up)", `price \+5% \(up\)`},
		{"x > y, a = b | c", `x \> y, a \= b \| c`},
		{"#tag ~strike~ {x}", `\#tag \~strike\~ \{x\}`},
		{"", ""},
		{"без спецсимволов", "без спецсимволов"},
	}
	for _, c := range cases {
		if got := EscapeMarkdownV2(c.in); got != c.want {
			t.Errorf("EscapeMarkdownV2(%q) = %q, ожидалось %q", c.in, got, c.want)
		}
	}
}

func TestEscapeEveryReservedChar(t *testing.T) {
	for _, r := range reservedMarkdownV2 {
		got := EscapeMarkdownV2(string(r))
		want := `\` + string(r)
		// Одиночные скобки не образуют ссылку и экранируются как текст.
		if got != want {
			t.Errorf("символ %q: получено %q, ожидалось %q", r, got, want)
		}
	}
}

func TestEscapeKeepsInlineLinks(t *testing.T) {
	in := "Read [the post!](https://x.com/a/status/1) now."
	want := `Read [the post\!](https://x.com/a/status/1) now\.`
	if got := EscapeMarkdownV2(in); got != want {
		t.Errorf("получено %q, ожидалось %q", got, want)
	}
}

func TestEscapeLinkURLOnlyClosingParen(t *testing.T) {
	// Подчёркивания и точки внутри URL остаются как есть.
	in := "[label](https://example.com/a_b.c?x=1)"
	want := `[label](https://example.com/a_b.c?x=1)`
	if got := EscapeMarkdownV2(in); got != want {
		t.Errorf("получено %q, ожидалось %q", got, want)
	}
}

func TestEscapeMultipleLinks(t *testing.T) {
	in := "See [one](https://a.io) and [two](https://b.io)."
	want := `See [one](https://a.io) and [two](https://b.io)\.`
	if got := EscapeMarkdownV2(in); got != want {
		t.Errorf("получено %q, ожидалось %q", got, want)
	}
}

func TestEscapeURLHelper(t *testing.T) {
	if got := escapeURL(`https://a.io/p\q`); got != `https://a.io/p\\q` {
		t.Errorf("обратный слэш в URL: %q", got)
	}
	if got := escapeURL("https://a.io/x)y"); got != `https://a.io/x\)y` {
		t.Errorf("закрывающая скобка в URL: %q", got)
	}
}

func TestEscapeIdempotentForCleanText(t *testing.T) {
	in := "plain words only"
	if got := EscapeMarkdownV2(in); got != in {
		t.Errorf("чистый текст изменился: %q", got)
	}
	if strings.Contains(EscapeMarkdownV2("dot."), `\\`) {
		t.Error("одиночное экранирование не должно давать двойной слэш")
	}
}
