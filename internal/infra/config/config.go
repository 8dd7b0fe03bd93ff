package config

import (
	"bufio"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// AppConfig описывает конфигурацию сервиса.
//
// Числовые параметры, для которых допускается некорректное значение в
// окружении, читаются строками и разбираются ленивыми аксессорами: при
// мусоре в переменной действует значение по умолчанию, без падения.
type AppConfig struct {
	AppEnv string `envconfig:"APP_ENV" default:"dev"`
	Port   int    `envconfig:"PORT" default:"8080"`

	OpenAI struct {
		APIKey string `envconfig:"OPENAI_API_KEY"`
		APIURL string `envconfig:"OPENAI_API_URL" default:"https://api.openai.com/v1/chat/completions"`
		Model  string `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
	} `envconfig:""`

	Telegram struct {
		Token         string `envconfig:"TELEGRAM_BOT_TOKEN"`
		AdminChatID   string `envconfig:"TELEGRAM_CHAT_ID"`
		WebhookSecret string `envconfig:"TELEGRAM_WEBHOOK_SECRET"`
	} `envconfig:""`

	Nitter struct {
		Instance string `envconfig:"NITTER_INSTANCE"`
		APIKey   string `envconfig:"NITTER_API_KEY"`
	} `envconfig:""`

	UsernamesFile string `envconfig:"USERNAMES_FILE" default:"usernames.txt"`

	// APIKey защищает операторские эндпоинты /trigger и /subscribers.
	APIKey string `envconfig:"API_KEY"`

	DatabaseURL string `envconfig:"DATABASE_URL"`
	// DatabasePath — псевдоним DATABASE_URL, оставлен ради старых деплоев.
	DatabasePath string `envconfig:"DATABASE_PATH"`

	ScheduleTimes string `envconfig:"SCHEDULE_TIMES" default:"08:00,20:00"`

	Raw struct {
		MaxTweets         string `envconfig:"MAX_TWEETS"`
		HoursLookback     string `envconfig:"HOURS_LOOKBACK"`
		SummaryMaxTokens  string `envconfig:"SUMMARY_MAX_TOKENS"`
		SummaryMaxWords   string `envconfig:"SUMMARY_MAX_WORDS"`
		SummaryTemp       string `envconfig:"SUMMARY_TEMPERATURE"`
		ScheduleUTCOffset string `envconfig:"SCHEDULE_UTC_OFFSET"`
	} `envconfig:""`
}

// Load загружает конфиг из окружения.
func Load() AppConfig {
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("не удалось загрузить конфиг: %v", err)
	}
	return cfg
}

// DSN возвращает строку подключения к Postgres: DATABASE_URL, а при её
// отсутствии — DATABASE_PATH.
func (c AppConfig) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DatabasePath
}

// MaxTweets — потолок числа постов в выпуске.
func (c AppConfig) MaxTweets() int {
	return intOr(c.Raw.MaxTweets, 50)
}

// HoursLookback — ширина окна отбора постов в часах.
func (c AppConfig) HoursLookback() int {
	return intOr(c.Raw.HoursLookback, 24)
}

// SummaryMaxTokens — бюджет ответа модели при генерации сводки.
func (c AppConfig) SummaryMaxTokens() int {
	return intOr(c.Raw.SummaryMaxTokens, 1500)
}

// SummaryMaxWords — целевой объём сводки в словах.
func (c AppConfig) SummaryMaxWords() int {
	return intOr(c.Raw.SummaryMaxWords, 600)
}

// SummaryTemperature — температура генерации сводки.
func (c AppConfig) SummaryTemperature() float64 {
	return floatOr(c.Raw.SummaryTemp, 0.7)
}

// ScheduleUTCOffset — смещение часового пояса записей SCHEDULE_TIMES
// относительно UTC.
func (c AppConfig) ScheduleUTCOffset() int {
	return intOr(c.Raw.ScheduleUTCOffset, -5)
}

func intOr(raw string, def int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

func floatOr(raw string, def float64) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def
	}
	return v
}

// ReadUsernames читает список аккаунтов из файла: по одному на строку,
// пустые строки и строки-комментарии пропускаются, ведущая @ срезается.
func ReadUsernames(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var names []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, strings.TrimPrefix(line, "@"))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return names, nil
}
