package intent

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/hr-agent/backend/pkg/logger"
)

// TextGenerator is the external text-generation call the classifier
// delegates to.
type TextGenerator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Classifier is the optional higher-accuracy classification path. Its output
// is untrusted freeform text and is validated strictly before it may drive
// control flow; any parse or shape failure, or a reported confidence below
// the threshold, falls back to the lexical extractor.
type Classifier struct {
	generator TextGenerator
	extractor *Extractor
	threshold float64
}

func NewClassifier(generator TextGenerator, extractor *Extractor, threshold float64) *Classifier {
	if threshold <= 0 {
		threshold = 0.6
	}
	return &Classifier{
		generator: generator,
		extractor: extractor,
		threshold: threshold,
	}
}

const classifierSystemPrompt = `You are a strict intent classifier for an HR analytics assistant.

Metrics: headcount, attrition, salary, engagement, gender, performance, promotion, tenure, forecast
Dimensions: YEAR, DEPARTMENT, LOCATION, GENDER
Charts: BAR, LINE, PIE

Respond ONLY in valid JSON:
{"metric": "<metric or empty>", "dimension": "<dimension or empty>", "chart": "<chart or empty>", "confidence": 0.0 to 1.0}`

type classifierResponse struct {
	Metric     string  `json:"metric"`
	Dimension  string  `json:"dimension"`
	Chart      string  `json:"chart"`
	Confidence float64 `json:"confidence"`
}

var jsonObjectRe = regexp.MustCompile(`(?s)\{.*\}`)

func (c *Classifier) Classify(ctx context.Context, query string) QueryIntent {
	lexical := c.extractor.Extract(query)

	raw, err := c.generator.Generate(ctx, classifierSystemPrompt, query)
	if err != nil {
		logger.Warn("Intent classification call failed, using lexical extraction", zap.Error(err))
		return lexical
	}

	parsed, ok := parseClassification(raw)
	if !ok {
		logger.Warn("Intent classification returned malformed output, using lexical extraction")
		return lexical
	}

	if parsed.Confidence < c.threshold {
		logger.Debug("Intent classification below confidence threshold, using lexical extraction",
			zap.Float64("confidence", parsed.Confidence),
			zap.Float64("threshold", c.threshold),
		)
		return lexical
	}

	qi := lexical
	qi.Metric = Metric(parsed.Metric)
	qi.Dimension = Dimension(parsed.Dimension)
	qi.Confidence = parsed.Confidence
	if parsed.Chart != "" {
		qi.Chart = ChartType(parsed.Chart)
		qi.WantsChart = true
	}
	return qi
}

// parseClassification validates the model output against the closed enums.
func parseClassification(raw string) (classifierResponse, bool) {
	match := jsonObjectRe.FindString(raw)
	if match == "" {
		return classifierResponse{}, false
	}

	var resp classifierResponse
	if err := json.Unmarshal([]byte(match), &resp); err != nil {
		return classifierResponse{}, false
	}

	resp.Metric = strings.ToLower(strings.TrimSpace(resp.Metric))
	resp.Dimension = strings.ToUpper(strings.TrimSpace(resp.Dimension))
	resp.Chart = strings.ToUpper(strings.TrimSpace(resp.Chart))

	if resp.Metric != "" && !ValidMetric(resp.Metric) {
		return classifierResponse{}, false
	}
	if resp.Dimension != "" && !ValidDimension(resp.Dimension) {
		return classifierResponse{}, false
	}
	if resp.Chart != "" && !ValidChart(resp.Chart) {
		return classifierResponse{}, false
	}
	if resp.Confidence < 0 || resp.Confidence > 1 {
		return classifierResponse{}, false
	}

	return resp, true
}
