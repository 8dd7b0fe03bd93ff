package pipeline

import (
	"context"
	"unicode/utf8"

	"tweet-digest-bot/internal/adapters/telegram"
	"tweet-digest-bot/internal/domain"
)

const (
	// messageByteLimit — потолок Telegram на длину текста сообщения.
	messageByteLimit = 4096
	// condenseMargin — запас под шапку и уведомления при сжатии моделью.
	condenseMargin = 300
	// truncateSlack — запас сверх измеренного перебора при усечении.
	truncateSlack = 50
	// truncateFloor — ниже этого бюджета усечение прекращается.
	truncateFloor = 100
)

// fitToLimit подгоняет сообщение под лимит: сначала сжатие моделью, затем
// механическое усечение, в самом конце жёсткий срез по границе руны.
// Сжатый текст замещает запись в кэше, чтобы остальные подписчики этого
// языка сразу получили помещающийся вариант.
func (s *Service) fitToLimit(ctx context.Context, cache domain.TranslationCache, code, raw string, hadSentinel bool, render func(body string) string) string {
	msg := render(telegram.EscapeMarkdownV2(raw))
	if len(msg) <= messageByteLimit {
		return msg
	}

	condensed, err := s.summarizer.Condense(ctx, raw, messageByteLimit-condenseMargin)
	if err != nil {
		s.logger.Warn().Err(err).Str("language", code).Msg("pipeline: сжатие сводки не удалось, переходим к усечению")
	} else if condensed != "" {
		cached := condensed
		if hadSentinel {
			cached = domain.TranslationFailedSentinel + condensed
		}
		cache.Set(code, cached)
		raw = condensed
		msg = render(telegram.EscapeMarkdownV2(raw))
		if len(msg) <= messageByteLimit {
			return msg
		}
	}

	// Бюджет урезается на измеренный перебор плюс запас: крупный перебор
	// снимается за одну-две итерации вместо десятков мелких шагов.
	budget := len(raw)
	for {
		overflow := len(msg) - messageByteLimit
		if overflow <= 0 {
			return msg
		}
		budget -= overflow + truncateSlack
		if budget < truncateFloor {
			break
		}
		msg = render(telegram.EscapeMarkdownV2(clipRunes(raw, budget) + "…"))
	}

	msg = clipRunes(msg, messageByteLimit)
	// Срез не должен оставлять висячий обратный слэш перед концом текста.
	if n := len(msg); n > 0 && msg[n-1] == '\\' {
		msg = msg[:n-1]
	}
	return msg
}

// clipRunes срезает строку до limit байт по границе руны.
func clipRunes(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}
