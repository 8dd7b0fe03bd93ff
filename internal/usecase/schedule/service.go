// Package schedule запускает пайплайн по настенным часам UTC.
package schedule

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Moment — минута запуска в UTC.
type Moment struct {
	Hour   int
	Minute int
}

func (m Moment) String() string {
	return fmt.Sprintf("%02d:%02d", m.Hour, m.Minute)
}

// ParseScheduleTimes разбирает SCHEDULE_TIMES: список HH:MM через запятую в
// часовом поясе со смещением utcOffset от UTC. Непригодные записи
// пропускаются; полностью пустое расписание — ошибка.
func ParseScheduleTimes(raw string, utcOffset int) ([]Moment, error) {
	var moments []Moment
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		t, err := time.Parse("15:04", entry)
		if err != nil {
			continue
		}
		utcHour := ((t.Hour()-utcOffset)%24 + 24) % 24
		moments = append(moments, Moment{Hour: utcHour, Minute: t.Minute()})
	}
	if len(moments) == 0 {
		return nil, fmt.Errorf("schedule: в %q нет ни одной пригодной записи", raw)
	}
	return moments, nil
}

// Service дёргает run в настроенные минуты. Повторный тик внутри той же
// минуты подавляется.
type Service struct {
	moments   []Moment
	run       func(ctx context.Context) error
	logger    zerolog.Logger
	tick      time.Duration
	lastFired string
	now       func() time.Time
}

// NewService создаёт планировщик.
func NewService(moments []Moment, run func(ctx context.Context) error, logger zerolog.Logger) *Service {
	return &Service{
		moments: moments,
		run:     run,
		logger:  logger.With().Str("component", "schedule").Logger(),
		tick:    30 * time.Second,
		now:     time.Now,
	}
}

// Start блокируется до отмены контекста.
func (s *Service) Start(ctx context.Context) {
	labels := make([]string, 0, len(s.moments))
	for _, m := range s.moments {
		labels = append(labels, m.String())
	}
	s.logger.Info().Strs("times_utc", labels).Msg("schedule: планировщик запущен")

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("schedule: планировщик остановлен")
			return
		case <-ticker.C:
			s.maybeRun(ctx)
		}
	}
}

func (s *Service) maybeRun(ctx context.Context) {
	now := s.now().UTC()
	key := now.Format("2006-01-02 15:04")
	if key == s.lastFired {
		return
	}
	for _, m := range s.moments {
		if m.Hour == now.Hour() && m.Minute == now.Minute() {
			s.lastFired = key
			s.logger.Info().Str("moment", m.String()).Msg("schedule: запуск выпуска по расписанию")
			if err := s.run(ctx); err != nil {
				s.logger.Error().Err(err).Msg("schedule: выпуск завершился ошибкой")
			}
			return
		}
	}
}
