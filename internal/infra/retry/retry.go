// Package retry — повторы внешних вызовов по именованным политикам.
// Расписание пауз считает cenkalti/backoff, политика задаёт только число
// попыток и границы экспоненты.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"tweet-digest-bot/internal/infra/openai"
)

// Policy описывает схему повторов: MaxAttempts включает первую попытку.
type Policy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// Пресеты политик.
var (
	// HealthCheck — проверка доступности источника перед запуском.
	HealthCheck = Policy{MaxAttempts: 4, InitialDelay: time.Second, MaxDelay: 4 * time.Second, Multiplier: 2}
	// APICall — обращения к LLM.
	APICall = Policy{MaxAttempts: 3, InitialDelay: time.Second, MaxDelay: 5 * time.Second, Multiplier: 2}
	// Feed — выборка ленты одного аккаунта.
	Feed = Policy{MaxAttempts: 3, InitialDelay: 500 * time.Millisecond, MaxDelay: 2 * time.Second, Multiplier: 2}
)

func (p Policy) validate() {
	if p.MaxAttempts < 1 {
		panic("retry: политика требует хотя бы одну попытку")
	}
}

// Delay возвращает паузу перед попыткой с номером attempt (нумерация с нуля,
// перед первой попыткой паузы нет).
func (p Policy) Delay(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	d := p.InitialDelay
	for i := 1; i < attempt; i++ {
		d = time.Duration(float64(d) * p.Multiplier)
		if d >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}

func (p Policy) backOff(ctx context.Context) backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = p.InitialDelay
	bo.MaxInterval = p.MaxDelay
	bo.Multiplier = p.Multiplier
	bo.RandomizationFactor = 0
	bo.MaxElapsedTime = 0
	bo.Reset()
	return backoff.WithContext(backoff.WithMaxRetries(bo, uint64(p.MaxAttempts-1)), ctx)
}

// Do выполняет op с повторами по политике; любая ошибка считается временной.
func Do(ctx context.Context, logger zerolog.Logger, p Policy, label string, op func(ctx context.Context) error) error {
	return DoIf(ctx, logger, p, label, nil, op)
}

// DoIf выполняет op с повторами; retryable отделяет временные ошибки от
// терминальных, терминальная прекращает повторы сразу.
func DoIf(ctx context.Context, logger zerolog.Logger, p Policy, label string, retryable func(error) bool, op func(ctx context.Context) error) error {
	_, err := DoValueIf(ctx, logger, p, label, retryable, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

// DoValue выполняет op, возвращающий значение, с повторами по политике.
func DoValue[T any](ctx context.Context, logger zerolog.Logger, p Policy, label string, op func(ctx context.Context) (T, error)) (T, error) {
	return DoValueIf(ctx, logger, p, label, nil, op)
}

// DoValueIf — DoValue с классификатором временных ошибок.
func DoValueIf[T any](ctx context.Context, logger zerolog.Logger, p Policy, label string, retryable func(error) bool, op func(ctx context.Context) (T, error)) (T, error) {
	p.validate()
	attempt := 0
	wrapped := func() (T, error) {
		attempt++
		v, err := op(ctx)
		if err != nil && retryable != nil && !retryable(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}
	notify := func(err error, delay time.Duration) {
		logger.Warn().
			Err(err).
			Str("operation", label).
			Int("attempt", attempt).
			Int("remaining", p.MaxAttempts-attempt).
			Dur("delay", delay).
			Msg("retry: повтор после ошибки")
	}
	return backoff.RetryNotifyWithData(wrapped, p.backOff(ctx), notify)
}

// HTTPRetryable классифицирует ошибки LLM API: лимиты и пятисотые — временные,
// остальные четырёхсотые — терминальные, сетевые ошибки — временные.
func HTTPRetryable(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == 429 || apiErr.StatusCode >= 500 {
			return true
		}
		return false
	}
	return true
}
