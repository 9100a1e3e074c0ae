package router

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hr-agent/backend/internal/analytics"
	"github.com/hr-agent/backend/internal/dataset"
	"github.com/hr-agent/backend/internal/intent"
	"github.com/hr-agent/backend/internal/metrics"
	"github.com/hr-agent/backend/internal/predict"
	"github.com/hr-agent/backend/internal/render"
	"github.com/hr-agent/backend/internal/session"
	"github.com/hr-agent/backend/internal/storage/models"
	"github.com/hr-agent/backend/pkg/logger"
	"github.com/hr-agent/backend/pkg/utils"
)

// processingLanguage is the language extraction operates in; other request
// languages are translated to it first.
const processingLanguage = "en"

// TextService is the external text-generation collaborator.
type TextService interface {
	Translate(ctx context.Context, text, targetLanguage string) (string, error)
	Define(ctx context.Context, concept string) (string, error)
	Fallback(ctx context.Context, query string) (string, error)
}

// Classifier is the optional higher-accuracy intent path.
type Classifier interface {
	Classify(ctx context.Context, query string) intent.QueryIntent
}

// HistoryStore persists processed turns for audit and history.
type HistoryStore interface {
	InsertQueryRecord(record *models.QueryRecord) error
}

// ResponseCache short-circuits repeated identical questions.
type ResponseCache interface {
	GetResponse(ctx context.Context, queryHash string, response any) (bool, error)
	SetResponse(ctx context.Context, queryHash string, response any) error
}

// Router composes extraction, aggregation, rendering and prediction into
// the single entry point the chat surface consumes. One request is one
// synchronous pass; the only state crossing requests is the conversation
// log owned by the session.
type Router struct {
	loader     *dataset.Loader
	extractor  *intent.Extractor
	classifier Classifier
	text       TextService
	predictor  *predict.Adapter
	history    HistoryStore
	cache      ResponseCache
}

type Options struct {
	Loader     *dataset.Loader
	Extractor  *intent.Extractor
	Classifier Classifier
	Text       TextService
	Predictor  *predict.Adapter
	History    HistoryStore
	Cache      ResponseCache
}

func New(opts Options) *Router {
	extractor := opts.Extractor
	if extractor == nil {
		extractor = intent.NewExtractor()
	}
	return &Router{
		loader:     opts.Loader,
		extractor:  extractor,
		classifier: opts.Classifier,
		text:       opts.Text,
		predictor:  opts.Predictor,
		history:    opts.History,
		cache:      opts.Cache,
	}
}

// ProcessQuery runs one request through the routing sequence. It always
// returns a terminal response; taxonomy errors become fixed user-readable
// messages and never propagate.
func (r *Router) ProcessQuery(ctx context.Context, conv *session.Conversation, query, language string) *Response {
	start := time.Now()
	original := strings.TrimSpace(query)

	if conv != nil {
		conv.Append(session.RoleUser, original)
	}

	resp, qi, cacheable := r.route(ctx, original, language)

	resp.ID = uuid.New().String()
	resp.LatencyMS = int(time.Since(start).Milliseconds())

	if conv != nil {
		conv.Append(session.RoleAssistant, resp.logContent())
	}

	metrics.QueryDuration.WithLabelValues(string(resp.Kind)).Observe(time.Since(start).Seconds())
	metrics.QueryTotal.WithLabelValues("ok").Inc()

	if cacheable && r.cache != nil {
		if err := r.cache.SetResponse(ctx, cacheKey(original, language), resp); err != nil {
			logger.Warn("Failed to cache response", zap.Error(err))
		}
	}

	r.persist(conv, original, language, qi, resp)

	return resp
}

// route is the state machine proper. The final return value reports
// whether the response was derived from data and is safe to cache.
func (r *Router) route(ctx context.Context, original, language string) (*Response, intent.QueryIntent, bool) {
	var qi intent.QueryIntent

	// 1. Empty-check.
	if original == "" {
		return textResponse(msgEmptyInput), qi, false
	}

	// Repeated identical questions are served from the shared cache.
	if r.cache != nil {
		var cached Response
		hit, err := r.cache.GetResponse(ctx, cacheKey(original, language), &cached)
		if err != nil {
			logger.Warn("Response cache lookup failed", zap.Error(err))
		}
		if hit {
			metrics.CacheHits.WithLabelValues("response").Inc()
			return &cached, qi, false
		}
		metrics.CacheMisses.WithLabelValues("response").Inc()
	}

	// 2. Translation into the processing language.
	q := strings.ToLower(original)
	if language != "" && language != processingLanguage {
		if r.text == nil {
			return textResponse(msgTranslationFailed), qi, false
		}
		translated, err := r.text.Translate(ctx, original, processingLanguage)
		if err != nil {
			logger.Warn("Translation failed", zap.Error(err))
			metrics.LLMCalls.WithLabelValues("translate", "error").Inc()
			return textResponse(msgTranslationFailed), qi, false
		}
		metrics.LLMCalls.WithLabelValues("translate", "ok").Inc()
		q = strings.ToLower(strings.TrimSpace(translated))
	}

	// 3. Greeting match.
	if r.extractor.IsGreeting(q) {
		return textResponse(msgGreeting), qi, false
	}

	qi = r.extractor.Extract(q)

	// 4. Definition intent.
	if qi.WantsDefinition {
		return r.define(ctx, q, language), qi, false
	}

	// 5. Dataset load.
	table, err := r.loader.Load(ctx)
	if err != nil {
		metrics.DatasetLoads.WithLabelValues("error").Inc()
		return textResponse(msgDataUnavailable), qi, false
	}
	metrics.DatasetLoads.WithLabelValues("ok").Inc()

	// 6. Optional classifier refinement; falls back to the lexical result
	// on failure or low confidence internally.
	if r.classifier != nil {
		qi = r.classifier.Classify(ctx, q)
	}

	// 8a. Stored model evaluation metrics.
	if qi.WantsModelMetrics {
		return r.modelMetrics(), qi, false
	}

	// 8b. Attrition risk prediction.
	if qi.WantsPrediction {
		return r.predict(table, qi), qi, true
	}

	// 7. Domain guard.
	if qi.Metric == intent.MetricNone {
		return textResponse(msgOutOfDomain), qi, false
	}

	metrics.IntentResolved.WithLabelValues(string(qi.Metric)).Inc()

	// 8c. Deterministic aggregation, or 8d. free-text fallback for metrics
	// outside the registry.
	if !analytics.Supported(qi.Metric) {
		return r.fallback(ctx, original, language), qi, false
	}

	return r.aggregate(table, qi), qi, true
}

func (r *Router) define(ctx context.Context, concept, language string) *Response {
	if r.text == nil {
		return textResponse(msgServiceUnavailable)
	}

	explanation, err := r.text.Define(ctx, concept)
	if err != nil {
		logger.Warn("Definition call failed", zap.Error(err))
		metrics.LLMCalls.WithLabelValues("define", "error").Inc()
		return textResponse(msgServiceUnavailable)
	}
	metrics.LLMCalls.WithLabelValues("define", "ok").Inc()

	if language != "" && language != processingLanguage {
		translated, err := r.text.Translate(ctx, explanation, language)
		if err != nil {
			logger.Warn("Back-translation failed, returning untranslated answer", zap.Error(err))
		} else {
			explanation = translated
		}
	}

	return textResponse(explanation)
}

func (r *Router) fallback(ctx context.Context, query, language string) *Response {
	if r.text == nil {
		return textResponse(msgOutOfDomain)
	}

	answer, err := r.text.Fallback(ctx, query)
	if err != nil {
		logger.Warn("Fallback call failed", zap.Error(err))
		metrics.LLMCalls.WithLabelValues("fallback", "error").Inc()
		return textResponse(msgServiceUnavailable)
	}
	metrics.LLMCalls.WithLabelValues("fallback", "ok").Inc()

	if language != "" && language != processingLanguage {
		if translated, err := r.text.Translate(ctx, answer, language); err == nil {
			answer = translated
		}
	}

	return textResponse(answer)
}

func (r *Router) modelMetrics() *Response {
	if r.predictor == nil {
		return textResponse(msgServiceUnavailable)
	}

	stored := r.predictor.StoredMetrics()
	rows := make([][]string, 0, len(stored))
	for _, m := range stored {
		rows = append(rows, []string{m.Name, fmt.Sprintf("%.3f", m.Value)})
	}

	return tableResponse(&render.TableView{
		Title:   "Attrition Model Metrics",
		Columns: []string{"Metric", "Value"},
		Rows:    rows,
	})
}

func (r *Router) predict(table *dataset.Table, qi intent.QueryIntent) *Response {
	if r.predictor == nil {
		return textResponse(msgServiceUnavailable)
	}

	predictions, err := r.predictor.Predict(table)
	if err != nil {
		var missing *predict.MissingFeaturesError
		if errors.As(err, &missing) {
			return textResponse(fmt.Sprintf(
				"Prediction unavailable: dataset is missing required columns: %s.",
				strings.Join(missing.Columns, ", "),
			))
		}
		logger.Error("Prediction failed", zap.Error(err))
		return textResponse(msgServiceUnavailable)
	}

	metrics.PredictionBatches.Inc()
	for _, p := range predictions {
		metrics.PredictionRisk.Observe(p.Risk)
	}

	if qi.WantsChart {
		labels, values := predict.BucketCounts(predictions)
		chartType := qi.Chart
		if chartType == intent.ChartNone {
			chartType = intent.ChartBar
		}
		return chartResponse(&render.ChartSpec{
			Type:   chartType,
			Title:  "Attrition Risk Buckets",
			Labels: labels,
			Values: values,
		})
	}

	return predictionsResponse(predictions)
}

func (r *Router) aggregate(table *dataset.Table, qi intent.QueryIntent) *Response {
	label := analytics.Registry[qi.Metric].Label

	result, err := analytics.Aggregate(table, qi.Metric, qi.Dimension)
	if err != nil {
		if errors.Is(err, analytics.ErrUnsupportedBreakdown) {
			return textResponse(fmt.Sprintf("%s data not available.", label))
		}
		logger.Error("Aggregation failed", zap.Error(err))
		return textResponse(msgServiceUnavailable)
	}

	if result.Empty() {
		return textResponse(fmt.Sprintf("%s data not available.", result.Label))
	}

	if qi.WantsChart {
		if chart := render.Chart(result, qi.Chart); chart != nil {
			return chartResponse(chart)
		}
	}

	return tableResponse(render.Table(result))
}

func (r *Router) persist(conv *session.Conversation, query, language string, qi intent.QueryIntent, resp *Response) {
	if r.history == nil {
		return
	}

	sessionID := ""
	if conv != nil {
		sessionID = conv.ID
	}

	record := &models.QueryRecord{
		ID:           resp.ID,
		SessionID:    sessionID,
		QueryText:    query,
		Language:     language,
		Metric:       string(qi.Metric),
		Dimension:    string(qi.Dimension),
		ResponseKind: string(resp.Kind),
		ResponseText: resp.logContent(),
		LatencyMS:    resp.LatencyMS,
		CreatedAt:    time.Now(),
	}

	if err := r.history.InsertQueryRecord(record); err != nil {
		logger.Warn("Failed to persist query record", zap.Error(err))
	}
}

func cacheKey(query, language string) string {
	return utils.HashString(language + "|" + query)
}
