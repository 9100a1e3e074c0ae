package render

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/hr-agent/backend/internal/analytics"
	"github.com/hr-agent/backend/internal/intent"
)

// TableView is a display-ready table.
type TableView struct {
	Title   string     `json:"title"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// ChartSpec describes one chart for the presentation layer to draw.
type ChartSpec struct {
	Type   intent.ChartType `json:"type"`
	Title  string           `json:"title"`
	Labels []string         `json:"labels"`
	Values []float64        `json:"values"`
}

// Table renders an aggregated result as a table: a scalar becomes a single
// label/value row, a grouped series a two-column (group, value) table.
func Table(result *analytics.Result) *TableView {
	if result.IsScalar() {
		return &TableView{
			Title:   result.Label,
			Columns: []string{"Metric", "Value"},
			Rows:    [][]string{{result.Label, formatValue(result.Scalar)}},
		}
	}

	rows := make([][]string, 0, len(result.Groups))
	for _, g := range result.Groups {
		rows = append(rows, []string{g.Key, formatValue(g.Value)})
	}

	groupName := string(result.Dimension)
	if groupName == "" {
		groupName = "Group"
	}

	return &TableView{
		Title:   result.Label,
		Columns: []string{titleCase(groupName), result.Label},
		Rows:    rows,
	}
}

// Chart renders a grouped result as a chart spec. LINE charts assume an
// ordinal group key and are re-sorted ascending, overriding the
// aggregator's descending display order. Returns nil for empty or scalar
// results; the caller surfaces a "no data" message instead.
func Chart(result *analytics.Result, chartType intent.ChartType) *ChartSpec {
	if result.Empty() || result.IsScalar() {
		return nil
	}
	if chartType == intent.ChartNone {
		chartType = intent.ChartBar
	}

	groups := make([]analytics.Group, len(result.Groups))
	copy(groups, result.Groups)

	if chartType == intent.ChartLine {
		sort.Slice(groups, func(i, j int) bool {
			return ordinalLess(groups[i].Key, groups[j].Key)
		})
	}

	spec := &ChartSpec{
		Type:   chartType,
		Title:  chartTitle(result, chartType),
		Labels: make([]string, 0, len(groups)),
		Values: make([]float64, 0, len(groups)),
	}
	for _, g := range groups {
		spec.Labels = append(spec.Labels, g.Key)
		spec.Values = append(spec.Values, g.Value)
	}
	return spec
}

func chartTitle(result *analytics.Result, chartType intent.ChartType) string {
	switch chartType {
	case intent.ChartLine:
		return fmt.Sprintf("%s Trend", result.Label)
	case intent.ChartPie:
		return fmt.Sprintf("%s Share", result.Label)
	default:
		if result.Dimension != intent.DimensionNone {
			return fmt.Sprintf("%s by %s", result.Label, titleCase(string(result.Dimension)))
		}
		return result.Label
	}
}

// ordinalLess compares numerically when both keys are numbers (years),
// lexically otherwise.
func ordinalLess(a, b string) bool {
	ai, aerr := strconv.Atoi(a)
	bi, berr := strconv.Atoi(b)
	if aerr == nil && berr == nil {
		return ai < bi
	}
	return a < b
}

func formatValue(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	lower := make([]rune, 0, len(s))
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			r += 'a' - 'A'
		}
		lower = append(lower, r)
	}
	return string(lower)
}
