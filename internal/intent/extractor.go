package intent

import (
	"strings"
	"unicode"

	prose "github.com/jdkato/prose/v2"
)

// Synonym phrases per metric. Order of metricPriority decides which metric
// wins when several match.
var metricKeywords = map[Metric][]string{
	MetricHeadcount: {
		"headcount", "employee count", "workforce",
		"staff size", "total employees", "manpower",
	},
	MetricAttrition: {
		"attrition", "turnover", "churn",
		"resignation", "exit rate", "separation",
	},
	MetricSalary: {
		"salary", "ctc", "compensation",
		"pay", "package", "remuneration",
	},
	MetricEngagement: {
		"engagement", "satisfaction",
		"happiness", "sentiment",
	},
	MetricGender: {
		"gender", "gender mix", "male female",
		"diversity", "dei",
	},
	MetricPerformance: {
		"performance", "rating", "kpi", "okr",
	},
	MetricPromotion: {
		"promotion", "career growth", "progression",
	},
	MetricTenure: {
		"tenure", "experience", "years worked",
	},
	MetricForecast: {
		"forecast", "projection",
	},
}

var metricPriority = []Metric{
	MetricHeadcount,
	MetricAttrition,
	MetricSalary,
	MetricEngagement,
	MetricGender,
	MetricPerformance,
	MetricPromotion,
	MetricTenure,
	MetricForecast,
}

var dimensionKeywords = map[Dimension][]string{
	DimensionYear:       {"year", "yearly", "annual", "over time", "trend"},
	DimensionDepartment: {"department", "function", "team"},
	DimensionLocation:   {"location", "region", "country", "city"},
	DimensionGender:     {"gender", "male", "female"},
}

var dimensionPriority = []Dimension{
	DimensionYear,
	DimensionDepartment,
	DimensionLocation,
	DimensionGender,
}

// Chart phrase rules, applied in precedence order LINE > PIE > BAR.
var (
	lineWords = []string{"line", "trend", "over time", "timeline", "time series"}
	pieWords  = []string{"pie", "share", "proportion", "split", "mix"}
	barWords  = []string{"bar", "compare", "comparison", "versus"}

	chartWords      = []string{"chart", "plot", "graph", "bar", "pie", "line", "visualize", "visualise"}
	predictionWords = []string{
		"predict", "prediction", "risk",
		"who will leave", "likelihood of leaving", "flight risk",
	}
	modelMetricWords = []string{"auc", "precision", "recall", "model metrics", "model performance"}
	definitionWords  = []string{"what is", "definition", "define", "explain", "meaning"}
)

var greetings = map[string]bool{
	"hi":    true,
	"hello": true,
	"hey":   true,
	"hii":   true,
	"hola":  true,
	"hallo": true,
}

// Extractor maps free text to a QueryIntent using phrase-keyword tables.
// Matching is word-boundary: the query is tokenized and synonym phrases are
// matched as consecutive token runs, so "man" never fires inside
// "management".
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Extract(query string) QueryIntent {
	tokens := Tokenize(query)

	qi := QueryIntent{
		Chart:      ChartNone,
		Confidence: 1.0,
	}

	for _, metric := range metricPriority {
		if matchAny(tokens, metricKeywords[metric]) {
			qi.Metric = metric
			break
		}
	}

	for _, dim := range dimensionPriority {
		if matchAny(tokens, dimensionKeywords[dim]) {
			qi.Dimension = dim
			break
		}
	}
	// Plural "years" implies a yearly breakdown.
	if hasToken(tokens, "years") {
		qi.Dimension = DimensionYear
	}

	qi.WantsChart = matchAny(tokens, chartWords)
	qi.WantsPrediction = matchAny(tokens, predictionWords)
	qi.WantsModelMetrics = matchAny(tokens, modelMetricWords)
	qi.WantsDefinition = matchAny(tokens, definitionWords)

	if qi.WantsChart {
		switch {
		case matchAny(tokens, lineWords):
			qi.Chart = ChartLine
		case matchAny(tokens, pieWords):
			qi.Chart = ChartPie
		default:
			qi.Chart = ChartBar
		}
	}

	return qi
}

// IsGreeting reports an exact short-phrase greeting match.
func (e *Extractor) IsGreeting(query string) bool {
	return greetings[strings.ToLower(strings.TrimSpace(query))]
}

// Tokenize lowercases and splits query into word tokens. prose handles
// ordinary prose well; the rune splitter covers inputs it rejects.
func Tokenize(query string) []string {
	normalized := strings.ToLower(strings.Join(strings.Fields(query), " "))
	if normalized == "" {
		return nil
	}

	doc, err := prose.NewDocument(normalized,
		prose.WithSegmentation(false),
		prose.WithTagging(false),
		prose.WithExtraction(false),
	)
	if err == nil {
		tokens := make([]string, 0, len(doc.Tokens()))
		for _, tok := range doc.Tokens() {
			if word := strings.TrimFunc(tok.Text, isNonWord); word != "" {
				tokens = append(tokens, word)
			}
		}
		return tokens
	}

	return strings.FieldsFunc(normalized, isNonWord)
}

func isNonWord(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsNumber(r)
}

func matchAny(tokens []string, phrases []string) bool {
	for _, phrase := range phrases {
		if matchPhrase(tokens, strings.Fields(phrase)) {
			return true
		}
	}
	return false
}

// matchPhrase reports whether words occur as a consecutive token run.
func matchPhrase(tokens, words []string) bool {
	if len(words) == 0 || len(words) > len(tokens) {
		return false
	}
	for i := 0; i+len(words) <= len(tokens); i++ {
		matched := true
		for j, w := range words {
			if tokens[i+j] != w {
				matched = false
				break
			}
		}
		if matched {
			return true
		}
	}
	return false
}

func hasToken(tokens []string, word string) bool {
	for _, t := range tokens {
		if t == word {
			return true
		}
	}
	return false
}
