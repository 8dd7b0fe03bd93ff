package telegram

import (
	"regexp"
	"strings"
)

// reservedMarkdownV2 — символы, которые MarkdownV2 требует экранировать в
// обычном тексте.
const reservedMarkdownV2 = "_*[]()~`>#+-=|{}.!"

// inlineLinkRe находит ссылки вида [текст](url); метки без переводов строк
// и закрывающих скобок соответствующего вида.
var inlineLinkRe = regexp.MustCompile(`\[([^\]\n]*)\]\(([^)\n]*)\)`)

// EscapeMarkdownV2 экранирует произвольный текст под MarkdownV2, сохраняя
// работоспособность встроенных ссылок: служебные скобки ссылки не трогаются,
// метка экранируется как текст, внутри URL экранируются только ')' и '\'.
func EscapeMarkdownV2(s string) string {
	var b strings.Builder
	b.Grow(len(s) + len(s)/4)
	last := 0
	for _, loc := range inlineLinkRe.FindAllStringSubmatchIndex(s, -1) {
		b.WriteString(escapeSegment(s[last:loc[0]], reservedMarkdownV2))
		label := s[loc[2]:loc[3]]
		url := s[loc[4]:loc[5]]
		b.WriteByte('[')
		b.WriteString(escapeSegment(label, labelReserved))
		b.WriteString("](")
		b.WriteString(escapeURL(url))
		b.WriteByte(')')
		last = loc[1]
	}
	b.WriteString(escapeSegment(s[last:], reservedMarkdownV2))
	return b.String()
}

// labelReserved — набор для метки ссылки: круглые скобки внутри метки
// Telegram принимает без экранирования.
var labelReserved = strings.Map(func(r rune) rune {
	if r == '(' || r == ')' {
		return -1
	}
	return r
}, reservedMarkdownV2)

func escapeSegment(s, reserved string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if strings.ContainsRune(reserved, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func escapeURL(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `)`, `\)`)
}
