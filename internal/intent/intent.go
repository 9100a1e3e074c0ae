package intent

// Metric is a supported HR metric, empty when the query resolved to none.
type Metric string

const (
	MetricNone        Metric = ""
	MetricHeadcount   Metric = "headcount"
	MetricAttrition   Metric = "attrition"
	MetricSalary      Metric = "salary"
	MetricEngagement  Metric = "engagement"
	MetricGender      Metric = "gender"
	MetricPerformance Metric = "performance"
	MetricPromotion   Metric = "promotion"
	MetricTenure      Metric = "tenure"
	MetricForecast    Metric = "forecast"
)

// Dimension is a grouping key, empty when no breakdown was requested.
type Dimension string

const (
	DimensionNone       Dimension = ""
	DimensionYear       Dimension = "YEAR"
	DimensionDepartment Dimension = "DEPARTMENT"
	DimensionLocation   Dimension = "LOCATION"
	DimensionGender     Dimension = "GENDER"
)

type ChartType string

const (
	ChartNone ChartType = "NONE"
	ChartBar  ChartType = "BAR"
	ChartLine ChartType = "LINE"
	ChartPie  ChartType = "PIE"
)

// QueryIntent is the per-request value object produced by extraction and
// consumed once by the router.
type QueryIntent struct {
	Metric            Metric
	Dimension         Dimension
	Chart             ChartType
	WantsChart        bool
	WantsPrediction   bool
	WantsModelMetrics bool
	WantsDefinition   bool
	Confidence        float64
}

// ValidMetric reports whether name is one of the closed metric set.
// Used to validate untrusted classifier output.
func ValidMetric(name string) bool {
	switch Metric(name) {
	case MetricHeadcount, MetricAttrition, MetricSalary, MetricEngagement,
		MetricGender, MetricPerformance, MetricPromotion, MetricTenure, MetricForecast:
		return true
	}
	return false
}

func ValidDimension(name string) bool {
	switch Dimension(name) {
	case DimensionYear, DimensionDepartment, DimensionLocation, DimensionGender:
		return true
	}
	return false
}

func ValidChart(name string) bool {
	switch ChartType(name) {
	case ChartBar, ChartLine, ChartPie:
		return true
	}
	return false
}
