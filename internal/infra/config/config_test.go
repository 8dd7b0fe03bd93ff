package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLenientNumericParsing(t *testing.T) {
	var cfg AppConfig

	if got := cfg.MaxTweets(); got != 50 {
		t.Errorf("пустое значение: MaxTweets = %d, ожидалось 50", got)
	}

	cfg.Raw.MaxTweets = "abc"
	if got := cfg.MaxTweets(); got != 50 {
		t.Errorf("мусор в значении: MaxTweets = %d, ожидалось 50", got)
	}

	cfg.Raw.MaxTweets = "25"
	if got := cfg.MaxTweets(); got != 25 {
		t.Errorf("MaxTweets = %d, ожидалось 25", got)
	}

	cfg.Raw.SummaryTemp = "not-a-number"
	if got := cfg.SummaryTemperature(); got != 0.7 {
		t.Errorf("мусор в значении: SummaryTemperature = %v, ожидалось 0.7", got)
	}

	cfg.Raw.ScheduleUTCOffset = ""
	if got := cfg.ScheduleUTCOffset(); got != -5 {
		t.Errorf("ScheduleUTCOffset = %d, ожидалось -5", got)
	}
}

func TestDSNFallback(t *testing.T) {
	var cfg AppConfig
	cfg.DatabasePath = "postgres://old"
	if got := cfg.DSN(); got != "postgres://old" {
		t.Errorf("DSN = %q, ожидался псевдоним DATABASE_PATH", got)
	}
	cfg.DatabaseURL = "postgres://new"
	if got := cfg.DSN(); got != "postgres://new" {
		t.Errorf("DSN = %q, DATABASE_URL должен иметь приоритет", got)
	}
}

func TestReadUsernames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "usernames.txt")
	content := "@alice\n\n# комментарий\nbob\n  @carol  \n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	names, err := ReadUsernames(path)
	if err != nil {
		t.Fatalf("ReadUsernames: %v", err)
	}
	want := []string{"alice", "bob", "carol"}
	if len(names) != len(want) {
		t.Fatalf("получено %d имён, ожидалось %d: %v", len(names), len(want), names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, ожидалось %q", i, names[i], want[i])
		}
	}
}
