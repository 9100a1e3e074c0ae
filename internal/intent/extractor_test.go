package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtract_MetricKeywords(t *testing.T) {
	e := NewExtractor()

	cases := []struct {
		query  string
		metric Metric
	}{
		{"show me the headcount", MetricHeadcount},
		{"total employees right now", MetricHeadcount},
		{"what's our workforce looking like", MetricHeadcount},
		{"attrition by department", MetricAttrition},
		{"turnover last year", MetricAttrition},
		{"employee churn", MetricAttrition},
		{"average salary", MetricSalary},
		{"show compensation by location", MetricSalary},
		{"ctc by department", MetricSalary},
		{"engagement scores", MetricEngagement},
		{"employee satisfaction", MetricEngagement},
		{"gender mix", MetricGender},
		{"diversity numbers", MetricGender},
		{"performance rating by department", MetricPerformance},
		{"promotion trends", MetricPromotion},
		{"average tenure", MetricTenure},
		{"headcount forecast", MetricHeadcount}, // headcount wins by priority
		{"give me a projection", MetricForecast},
		{"tell me a joke", MetricNone},
	}

	for _, tc := range cases {
		t.Run(tc.query, func(t *testing.T) {
			qi := e.Extract(tc.query)
			assert.Equal(t, tc.metric, qi.Metric)
		})
	}
}

func TestExtract_WordBoundaries(t *testing.T) {
	e := NewExtractor()

	// Substrings inside longer words must not fire.
	qi := e.Extract("management restructuring update")
	assert.Equal(t, MetricNone, qi.Metric)
	assert.Equal(t, DimensionNone, qi.Dimension)

	// "female" inside a sentence still matches as its own word.
	qi = e.Extract("how many female employees do we have")
	assert.Equal(t, DimensionGender, qi.Dimension)

	// "pier" must not trigger a pie chart.
	qi = e.Extract("headcount at the pier office chart")
	assert.True(t, qi.WantsChart)
	assert.Equal(t, ChartBar, qi.Chart)
}

func TestExtract_Dimensions(t *testing.T) {
	e := NewExtractor()

	cases := []struct {
		query     string
		dimension Dimension
	}{
		{"headcount by department", DimensionDepartment},
		{"salary by team", DimensionDepartment},
		{"attrition by location", DimensionLocation},
		{"headcount per country", DimensionLocation},
		{"salary by gender", DimensionGender},
		{"headcount by year", DimensionYear},
		{"annual attrition", DimensionYear},
		{"headcount over the years", DimensionYear},
		{"just the headcount", DimensionNone},
	}

	for _, tc := range cases {
		t.Run(tc.query, func(t *testing.T) {
			qi := e.Extract(tc.query)
			assert.Equal(t, tc.dimension, qi.Dimension)
		})
	}
}

func TestExtract_ChartPrecedence(t *testing.T) {
	e := NewExtractor()

	// LINE beats PIE beats BAR when several cues are present.
	qi := e.Extract("plot a line chart of the share of headcount")
	assert.True(t, qi.WantsChart)
	assert.Equal(t, ChartLine, qi.Chart)

	qi = e.Extract("pie chart comparison of gender")
	assert.Equal(t, ChartPie, qi.Chart)

	qi = e.Extract("chart headcount by department")
	assert.Equal(t, ChartBar, qi.Chart)

	// No chart cue at all.
	qi = e.Extract("headcount by department")
	assert.False(t, qi.WantsChart)
	assert.Equal(t, ChartNone, qi.Chart)
}

func TestExtract_Modifiers(t *testing.T) {
	e := NewExtractor()

	qi := e.Extract("who will leave next quarter")
	assert.True(t, qi.WantsPrediction)

	qi = e.Extract("show me the flight risk list")
	assert.True(t, qi.WantsPrediction)

	qi = e.Extract("what is the model auc")
	assert.True(t, qi.WantsModelMetrics)

	qi = e.Extract("what is attrition")
	assert.True(t, qi.WantsDefinition)
	assert.Equal(t, MetricAttrition, qi.Metric)

	qi = e.Extract("explain engagement score")
	assert.True(t, qi.WantsDefinition)
}

func TestIsGreeting(t *testing.T) {
	e := NewExtractor()

	assert.True(t, e.IsGreeting("hi"))
	assert.True(t, e.IsGreeting("  Hello "))
	assert.True(t, e.IsGreeting("hola"))

	// Greetings embedded in a longer question are not greetings.
	assert.False(t, e.IsGreeting("hi, show me headcount"))
	assert.False(t, e.IsGreeting("hello there"))
}

func TestTokenize(t *testing.T) {
	tokens := Tokenize("Show attrition, by DEPARTMENT!")
	assert.Equal(t, []string{"show", "attrition", "by", "department"}, tokens)

	assert.Empty(t, Tokenize("   "))
}
