package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	QueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hr_agent_query_duration_seconds",
			Help:    "Chat query processing duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 20},
		},
		[]string{"response_kind"},
	)

	QueryTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hr_agent_query_total",
			Help: "Total chat queries processed",
		},
		[]string{"status"},
	)

	IntentResolved = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hr_agent_intent_resolved_total",
			Help: "Resolved query intents by metric",
		},
		[]string{"metric"},
	)

	DatasetLoads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hr_agent_dataset_loads_total",
			Help: "Dataset loads by outcome",
		},
		[]string{"outcome"},
	)

	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hr_agent_cache_hits_total",
			Help: "Total cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hr_agent_cache_misses_total",
			Help: "Total cache misses",
		},
		[]string{"cache_type"},
	)

	LLMCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hr_agent_llm_calls_total",
			Help: "Text-generation calls by purpose and outcome",
		},
		[]string{"purpose", "status"},
	)

	PredictionBatches = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "hr_agent_prediction_batches_total",
			Help: "Attrition prediction batches scored",
		},
	)

	PredictionRisk = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hr_agent_prediction_risk",
			Help:    "Distribution of predicted attrition risk",
			Buckets: []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
		},
	)
)

func Init() {
	prometheus.MustRegister(QueryDuration)
	prometheus.MustRegister(QueryTotal)
	prometheus.MustRegister(IntentResolved)
	prometheus.MustRegister(DatasetLoads)
	prometheus.MustRegister(CacheHits)
	prometheus.MustRegister(CacheMisses)
	prometheus.MustRegister(LLMCalls)
	prometheus.MustRegister(PredictionBatches)
	prometheus.MustRegister(PredictionRisk)
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
