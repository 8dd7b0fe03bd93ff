package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	PipelineRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pipeline_runs_total",
		Help: "Количество запусков пайплайна рассылки",
	}, []string{"status"})

	PipelineDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "pipeline_duration_seconds",
		Help:    "Время полного запуска пайплайна",
		Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
	})

	FeedErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "feed_errors_total",
		Help: "Ошибки при сборе лент аккаунтов",
	})

	PostsCollected = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "posts_collected",
		Help:    "Число постов, собранных за запуск",
		Buckets: []float64{0, 5, 10, 20, 30, 50},
	})

	BotSendErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bot_send_errors_total",
		Help: "Ошибки отправки сообщений ботом",
	})

	SubscribersRemoved = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "subscribers_removed_total",
		Help: "Подписчики, удалённые после необратимой ошибки отправки",
	})

	TranslationCacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "translation_cache_hits_total",
		Help: "Попадания в кэш переводов за запуск",
	})

	TranslationCacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "translation_cache_misses_total",
		Help: "Промахи кэша переводов",
	})

	TranslationAPIFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "translation_api_failures_total",
		Help: "Неудачные переводы после всех повторов",
	})

	NetworkRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "network_request_duration_seconds",
		Help:    "Длительность сетевых запросов",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 15, 20, 25, 30, 35, 40, 45, 50, 55, 60, 65, 70, 75, 80, 85, 90, 95, 100, 105, 110, 115, 120, 150, 180, 240, 300},
	}, []string{"component", "operation", "target", "status"})

	NetworkRequestTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "network_request_total",
		Help: "Количество сетевых запросов",
	}, []string{"component", "operation", "target", "status"})

	LLMGenerationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "llm_generation_duration_seconds",
		Help:    "Длительность генерации ответа LLM",
		Buckets: prometheus.DefBuckets,
	}, []string{"model"})

	LLMTokensTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "llm_tokens_total",
		Help: "Количество токенов, использованных LLM",
	}, []string{"model", "type"})
)

// MustRegister регистрирует метрики.
func MustRegister(registerer prometheus.Registerer) {
	registerer.MustRegister(
		PipelineRuns,
		PipelineDuration,
		FeedErrors,
		PostsCollected,
		BotSendErrors,
		SubscribersRemoved,
		TranslationCacheHits,
		TranslationCacheMisses,
		TranslationAPIFailures,
		NetworkRequestDuration,
		NetworkRequestTotal,
		LLMGenerationDuration,
		LLMTokensTotal,
	)
}

// ObserveNetworkRequest записывает длительность и статус сетевого запроса.
func ObserveNetworkRequest(component, operation, target string, start time.Time, err error) {
	if component == "" {
		component = "unknown"
	}
	if operation == "" {
		operation = "unknown"
	}
	if target == "" {
		target = "unknown"
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	duration := time.Since(start).Seconds()
	NetworkRequestDuration.WithLabelValues(component, operation, target, status).Observe(duration)
	NetworkRequestTotal.WithLabelValues(component, operation, target, status).Inc()
}

// ObserveLLMGeneration записывает длительность и токены генерации LLM.
func ObserveLLMGeneration(model string, duration time.Duration, promptTokens, completionTokens, totalTokens int) {
	if model == "" {
		model = "unknown"
	}
	LLMGenerationDuration.WithLabelValues(model).Observe(duration.Seconds())
	if promptTokens > 0 {
		LLMTokensTotal.WithLabelValues(model, "prompt").Add(float64(promptTokens))
	}
	if completionTokens > 0 {
		LLMTokensTotal.WithLabelValues(model, "completion").Add(float64(completionTokens))
	}
	if totalTokens <= 0 {
		totalTokens = promptTokens + completionTokens
	}
	if totalTokens > 0 {
		LLMTokensTotal.WithLabelValues(model, "total").Add(float64(totalTokens))
	}
}
