package analytics

import (
	"github.com/hr-agent/backend/internal/dataset"
	"github.com/hr-agent/backend/internal/intent"
)

// Kind is the aggregation shape of a metric.
type Kind string

const (
	KindCount        Kind = "count"
	KindAverage      Kind = "average"
	KindRatio        Kind = "ratio"
	KindDistribution Kind = "distribution"
)

// Definition declares one supported metric: its aggregation kind, source
// column, an optional row filter, and for ratios the positive-class
// predicate. A single evaluator applies these generically.
type Definition struct {
	Kind   Kind
	Column string
	Label  string
	// Filter restricts which rows participate (nil means all rows).
	Filter func(dataset.Record) bool
	// Positive marks numerator rows for ratio metrics.
	Positive func(dataset.Record) bool
}

func isActive(r dataset.Record) bool {
	return r.Status == dataset.StatusActive
}

func isDeparted(r dataset.Record) bool {
	return r.Status == dataset.StatusResigned || r.Status == dataset.StatusTerminated
}

// Registry is the static metric table, defined once at startup and looked up
// by name. Metrics absent here (promotion, forecast) fall through to the
// free-text path.
var Registry = map[intent.Metric]Definition{
	intent.MetricHeadcount: {
		Kind:   KindCount,
		Column: dataset.ColEmployeeID,
		Label:  "Active Headcount",
		Filter: isActive,
	},
	intent.MetricAttrition: {
		Kind:     KindRatio,
		Column:   dataset.ColStatus,
		Label:    "Attrition Rate (%)",
		Positive: isDeparted,
	},
	intent.MetricSalary: {
		Kind:   KindAverage,
		Column: dataset.ColSalary,
		Label:  "Average Salary",
	},
	intent.MetricEngagement: {
		Kind:   KindAverage,
		Column: dataset.ColEngagementScore,
		Label:  "Average Engagement Score",
	},
	intent.MetricTenure: {
		Kind:   KindAverage,
		Column: dataset.ColExperienceYears,
		Label:  "Average Tenure (Years)",
	},
	intent.MetricPerformance: {
		Kind:   KindAverage,
		Column: dataset.ColPerformanceRating,
		Label:  "Average Performance Rating",
	},
	intent.MetricGender: {
		Kind:   KindDistribution,
		Column: dataset.ColGender,
		Label:  "Gender Distribution",
		Filter: isActive,
	},
}

// Supported reports whether a metric has a registry entry.
func Supported(metric intent.Metric) bool {
	_, ok := Registry[metric]
	return ok
}

// dimensionColumns maps grouping keys to physical columns. YEAR is derived
// and handled specially by the aggregator.
var dimensionColumns = map[intent.Dimension]string{
	intent.DimensionDepartment: dataset.ColDepartment,
	intent.DimensionLocation:   dataset.ColLocation,
	intent.DimensionGender:     dataset.ColGender,
}
