package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestParseScheduleTimes(t *testing.T) {
	moments, err := ParseScheduleTimes("08:00, 20:30", -5)
	if err != nil {
		t.Fatalf("ParseScheduleTimes: %v", err)
	}
	if len(moments) != 2 {
		t.Fatalf("получено %d моментов, ожидалось 2", len(moments))
	}
	if moments[0] != (Moment{Hour: 13, Minute: 0}) {
		t.Errorf("08:00 при смещении -5 должно давать 13:00 UTC, получено %v", moments[0])
	}
	if moments[1] != (Moment{Hour: 1, Minute: 30}) {
		t.Errorf("20:30 при смещении -5 должно давать 01:30 UTC, получено %v", moments[1])
	}
}

func TestParseScheduleTimesSkipsGarbage(t *testing.T) {
	moments, err := ParseScheduleTimes("oops, 12:00, 25:99,", 0)
	if err != nil {
		t.Fatalf("ParseScheduleTimes: %v", err)
	}
	if len(moments) != 1 || moments[0] != (Moment{Hour: 12, Minute: 0}) {
		t.Errorf("мусорные записи должны пропускаться: %v", moments)
	}
}

func TestParseScheduleTimesAllGarbage(t *testing.T) {
	if _, err := ParseScheduleTimes("nope", 0); err == nil {
		t.Fatal("расписание без пригодных записей должно быть ошибкой")
	}
}

func TestParseScheduleTimesPositiveOffset(t *testing.T) {
	moments, err := ParseScheduleTimes("01:00", 3)
	if err != nil {
		t.Fatal(err)
	}
	if moments[0] != (Moment{Hour: 22, Minute: 0}) {
		t.Errorf("01:00 при смещении +3 должно давать 22:00 UTC, получено %v", moments[0])
	}
}

func TestMaybeRunFiresOncePerMinute(t *testing.T) {
	runs := 0
	s := NewService([]Moment{{Hour: 13, Minute: 0}}, func(ctx context.Context) error {
		runs++
		return nil
	}, zerolog.Nop())

	now := time.Date(2026, 8, 24, 13, 0, 10, 0, time.UTC)
	s.now = func() time.Time { return now }

	s.maybeRun(context.Background())
	now = now.Add(30 * time.Second)
	s.maybeRun(context.Background())
	if runs != 1 {
		t.Errorf("запусков %d, повторный тик в той же минуте должен подавляться", runs)
	}

	now = time.Date(2026, 8, 25, 13, 0, 5, 0, time.UTC)
	s.maybeRun(context.Background())
	if runs != 2 {
		t.Errorf("на следующий день момент должен сработать снова, запусков %d", runs)
	}
}

func TestMaybeRunIgnoresOtherMinutes(t *testing.T) {
	runs := 0
	s := NewService([]Moment{{Hour: 13, Minute: 0}}, func(ctx context.Context) error {
		runs++
		return nil
	}, zerolog.Nop())
	s.now = func() time.Time { return time.Date(2026, 8, 24, 13, 1, 0, 0, time.UTC) }
	s.maybeRun(context.Background())
	if runs != 0 {
		t.Error("вне настроенной минуты запусков быть не должно")
	}
}
