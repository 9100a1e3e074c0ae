package analytics

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/hr-agent/backend/internal/dataset"
	"github.com/hr-agent/backend/internal/intent"
)

// ErrUnsupportedBreakdown reports that the requested dimension's column is
// not present in the loaded table.
var ErrUnsupportedBreakdown = errors.New("breakdown not available for this dataset")

// ErrUnknownMetric reports a metric with no registry entry.
var ErrUnknownMetric = errors.New("unknown metric")

// Group is one dimension-value / metric-value pair of a grouped result.
type Group struct {
	Key   string
	Value float64
}

// Result is either a scalar (Groups nil) or an ordered grouped series.
type Result struct {
	Metric    intent.Metric
	Dimension intent.Dimension
	Label     string
	Scalar    float64
	Groups    []Group
}

func (r *Result) IsScalar() bool {
	return r != nil && r.Groups == nil
}

func (r *Result) Empty() bool {
	return r == nil || (r.Groups != nil && len(r.Groups) == 0)
}

// Aggregate evaluates metric over table, optionally grouped by dimension.
// Grouped output is sorted descending by value, ties broken by key
// ascending, for display determinism.
func Aggregate(table *dataset.Table, metric intent.Metric, dimension intent.Dimension) (*Result, error) {
	def, ok := Registry[metric]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMetric, metric)
	}

	// Distribution metrics always group by their own source column.
	if def.Kind == KindDistribution {
		return AggregateDistribution(table, metric)
	}

	result := &Result{Metric: metric, Dimension: dimension, Label: def.Label}

	// Year breakdowns are derived from parsed dates, not a physical column.
	if dimension == intent.DimensionYear {
		switch metric {
		case intent.MetricHeadcount:
			result.Groups = headcountByYear(table)
		case intent.MetricAttrition:
			result.Label = "Departures"
			result.Groups = departuresByYear(table)
		default:
			return nil, fmt.Errorf("%w: %s by year", ErrUnsupportedBreakdown, metric)
		}
		sortGroups(result.Groups)
		return result, nil
	}

	if dimension == intent.DimensionNone {
		result.Scalar = scalarValue(table, def)
		return result, nil
	}

	column, ok := dimensionColumns[dimension]
	if !ok || !table.HasColumn(column) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedBreakdown, dimension)
	}

	result.Groups = groupedValues(table, def, column)
	sortGroups(result.Groups)
	return result, nil
}

func scalarValue(table *dataset.Table, def Definition) float64 {
	return evaluate(table.Rows, def)
}

func groupedValues(table *dataset.Table, def Definition, column string) []Group {
	buckets := make(map[string][]dataset.Record)
	for _, row := range table.Rows {
		key, ok := row.Categorical(column)
		if !ok {
			continue
		}
		buckets[key] = append(buckets[key], row)
	}

	groups := make([]Group, 0, len(buckets))
	for key, rows := range buckets {
		value := evaluate(rows, def)
		if def.Kind == KindCount && value == 0 {
			continue
		}
		groups = append(groups, Group{Key: key, Value: value})
	}
	return groups
}

// evaluate applies one registry entry to a row subset.
func evaluate(rows []dataset.Record, def Definition) float64 {
	switch def.Kind {
	case KindCount:
		seen := make(map[string]bool)
		for _, r := range rows {
			if def.Filter != nil && !def.Filter(r) {
				continue
			}
			if r.EmployeeID != "" {
				seen[r.EmployeeID] = true
			}
		}
		return float64(len(seen))

	case KindAverage:
		var sum float64
		var n int
		for _, r := range rows {
			if def.Filter != nil && !def.Filter(r) {
				continue
			}
			if v, ok := r.Numeric(def.Column); ok {
				sum += v
				n++
			}
		}
		if n == 0 {
			return 0
		}
		return round2(sum / float64(n))

	case KindRatio:
		// Denominator is every distinct identifier ever in the subset, which
		// keeps the rate inside [0,100]. A zero denominator yields 0.
		total := make(map[string]bool)
		positive := make(map[string]bool)
		for _, r := range rows {
			if r.EmployeeID == "" {
				continue
			}
			total[r.EmployeeID] = true
			if def.Positive != nil && def.Positive(r) {
				positive[r.EmployeeID] = true
			}
		}
		if len(total) == 0 {
			return 0
		}
		return round2(float64(len(positive)) / float64(len(total)) * 100)
	}

	return 0
}

// Distribution metrics group by their own source column.
func distributionValues(table *dataset.Table, def Definition) []Group {
	return groupedValues(table, Definition{
		Kind:   KindCount,
		Column: dataset.ColEmployeeID,
		Filter: def.Filter,
	}, def.Column)
}

// AggregateDistribution evaluates a distribution metric (value counts of its
// categorical column), independent of any requested dimension.
func AggregateDistribution(table *dataset.Table, metric intent.Metric) (*Result, error) {
	def, ok := Registry[metric]
	if !ok || def.Kind != KindDistribution {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMetric, metric)
	}
	if !table.HasColumn(def.Column) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedBreakdown, def.Column)
	}

	result := &Result{Metric: metric, Label: def.Label}
	result.Groups = distributionValues(table, def)
	sortGroups(result.Groups)
	return result, nil
}

// SnapshotHeadcount counts employees active as of year-end: hired in or
// before year, and either still employed or exiting after year. Open-ended
// employment (no exit date) counts.
func SnapshotHeadcount(table *dataset.Table, year int) int {
	seen := make(map[string]bool)
	for _, r := range table.Rows {
		if r.HireYear == 0 || r.HireYear > year {
			continue
		}
		if r.ExitYear != 0 && r.ExitYear <= year {
			continue
		}
		if r.EmployeeID != "" {
			seen[r.EmployeeID] = true
		}
	}
	return len(seen)
}

func headcountByYear(table *dataset.Table) []Group {
	minYear, maxYear := 0, 0
	for _, r := range table.Rows {
		if r.HireYear == 0 {
			continue
		}
		if minYear == 0 || r.HireYear < minYear {
			minYear = r.HireYear
		}
		if r.HireYear > maxYear {
			maxYear = r.HireYear
		}
	}
	if minYear == 0 {
		return nil
	}

	groups := make([]Group, 0, maxYear-minYear+1)
	for year := minYear; year <= maxYear; year++ {
		groups = append(groups, Group{
			Key:   strconv.Itoa(year),
			Value: float64(SnapshotHeadcount(table, year)),
		})
	}
	return groups
}

func departuresByYear(table *dataset.Table) []Group {
	counts := make(map[int]map[string]bool)
	for _, r := range table.Rows {
		if r.ExitYear == 0 || r.EmployeeID == "" {
			continue
		}
		if r.Status != dataset.StatusResigned && r.Status != dataset.StatusTerminated {
			continue
		}
		if counts[r.ExitYear] == nil {
			counts[r.ExitYear] = make(map[string]bool)
		}
		counts[r.ExitYear][r.EmployeeID] = true
	}

	groups := make([]Group, 0, len(counts))
	for year, ids := range counts {
		groups = append(groups, Group{Key: strconv.Itoa(year), Value: float64(len(ids))})
	}
	return groups
}

func sortGroups(groups []Group) {
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Value != groups[j].Value {
			return groups[i].Value > groups[j].Value
		}
		return groups[i].Key < groups[j].Key
	})
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
