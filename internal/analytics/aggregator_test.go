package analytics

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hr-agent/backend/internal/dataset"
	"github.com/hr-agent/backend/internal/intent"
)

func row(id, dept, status string, extra map[string]any) map[string]any {
	m := map[string]any{
		"Employee_ID": id,
		"Department":  dept,
		"Status":      status,
	}
	for k, v := range extra {
		m[k] = v
	}
	return m
}

func testTable() *dataset.Table {
	return dataset.Normalize([]map[string]any{
		row("E1", "Sales", "Active", map[string]any{"Salary": "50000", "Hire_Date": "2020-03-01"}),
		row("E2", "Sales", "Active", map[string]any{"Salary": "70000", "Hire_Date": "2021-06-15"}),
		row("E3", "Sales", "Resigned", map[string]any{"Salary": "60000", "Hire_Date": "2020-01-10", "Exit_Date": "2021-09-30"}),
		row("E4", "Engineering", "Active", map[string]any{"Salary": "90000", "Hire_Date": "2022-02-01"}),
		row("E5", "Engineering", "Terminated", map[string]any{"Salary": "", "Hire_Date": "2020-05-05", "Exit_Date": "2022-04-01"}),
		// Duplicate identifier must not double-count.
		row("E1", "Sales", "Active", map[string]any{"Salary": "50000", "Hire_Date": "2020-03-01"}),
	})
}

func TestAggregate_HeadcountScalar(t *testing.T) {
	result, err := Aggregate(testTable(), intent.MetricHeadcount, intent.DimensionNone)
	require.NoError(t, err)

	assert.True(t, result.IsScalar())
	// E1 (deduplicated), E2, E4 are active.
	assert.Equal(t, 3.0, result.Scalar)
	assert.Equal(t, "Active Headcount", result.Label)
}

func TestAggregate_HeadcountByDepartment(t *testing.T) {
	result, err := Aggregate(testTable(), intent.MetricHeadcount, intent.DimensionDepartment)
	require.NoError(t, err)
	require.Len(t, result.Groups, 2)

	assert.Equal(t, Group{Key: "Sales", Value: 2}, result.Groups[0])
	assert.Equal(t, Group{Key: "Engineering", Value: 1}, result.Groups[1])
}

func TestAggregate_AttritionRateBounded(t *testing.T) {
	result, err := Aggregate(testTable(), intent.MetricAttrition, intent.DimensionNone)
	require.NoError(t, err)

	// 2 departed of 5 distinct employees.
	assert.Equal(t, 40.0, result.Scalar)
	assert.GreaterOrEqual(t, result.Scalar, 0.0)
	assert.LessOrEqual(t, result.Scalar, 100.0)
}

func TestAggregate_AttritionZeroDenominator(t *testing.T) {
	table := dataset.Normalize([]map[string]any{
		{"Department": "Sales", "Status": "Active"},
	})

	result, err := Aggregate(table, intent.MetricAttrition, intent.DimensionNone)
	require.NoError(t, err)
	assert.Equal(t, 0.0, result.Scalar)
}

func TestAggregate_AverageSalaryIgnoresNulls(t *testing.T) {
	result, err := Aggregate(testTable(), intent.MetricSalary, intent.DimensionNone)
	require.NoError(t, err)

	// E5's blank salary is excluded, E1 counted once per distinct row set
	// (the duplicate row participates, same value).
	assert.InDelta(t, (50000+70000+60000+90000+50000)/5.0, result.Scalar, 0.01)
}

func TestAggregate_UnsupportedBreakdown(t *testing.T) {
	table := dataset.Normalize([]map[string]any{
		{"Employee_ID": "E1", "Status": "Active"},
	})

	_, err := Aggregate(table, intent.MetricHeadcount, intent.DimensionLocation)
	assert.ErrorIs(t, err, ErrUnsupportedBreakdown)
}

func TestAggregate_UnknownMetric(t *testing.T) {
	_, err := Aggregate(testTable(), intent.MetricPromotion, intent.DimensionNone)
	assert.ErrorIs(t, err, ErrUnknownMetric)
}

func TestAggregate_GenderDistributionIgnoresDimension(t *testing.T) {
	table := dataset.Normalize([]map[string]any{
		row("E1", "Sales", "Active", map[string]any{"Gender": "Female"}),
		row("E2", "Sales", "Active", map[string]any{"Gender": "Female"}),
		row("E3", "Sales", "Active", map[string]any{"Gender": "Male"}),
		row("E4", "Sales", "Resigned", map[string]any{"Gender": "Male"}),
	})

	for _, dim := range []intent.Dimension{intent.DimensionNone, intent.DimensionDepartment} {
		result, err := Aggregate(table, intent.MetricGender, dim)
		require.NoError(t, err)
		require.Len(t, result.Groups, 2)

		// Only active employees participate.
		assert.Equal(t, Group{Key: "Female", Value: 2}, result.Groups[0])
		assert.Equal(t, Group{Key: "Male", Value: 1}, result.Groups[1])
	}
}

func TestAggregate_GroupOrdering(t *testing.T) {
	table := dataset.Normalize([]map[string]any{
		row("E1", "Beta", "Active", nil),
		row("E2", "Alpha", "Active", nil),
		row("E3", "Gamma", "Active", nil),
		row("E4", "Gamma", "Active", nil),
	})

	result, err := Aggregate(table, intent.MetricHeadcount, intent.DimensionDepartment)
	require.NoError(t, err)
	require.Len(t, result.Groups, 3)

	// Descending by value, ties broken by key ascending.
	assert.Equal(t, "Gamma", result.Groups[0].Key)
	assert.Equal(t, "Alpha", result.Groups[1].Key)
	assert.Equal(t, "Beta", result.Groups[2].Key)
}

func TestAggregate_PermutationInvariant(t *testing.T) {
	raw := []map[string]any{
		row("E1", "Sales", "Active", map[string]any{"Salary": "50000"}),
		row("E2", "Sales", "Resigned", map[string]any{"Salary": "60000"}),
		row("E3", "Engineering", "Active", map[string]any{"Salary": "70000"}),
		row("E4", "Engineering", "Active", map[string]any{"Salary": "80000"}),
		row("E5", "Support", "Terminated", map[string]any{"Salary": "40000"}),
	}

	baseline, err := Aggregate(dataset.Normalize(raw), intent.MetricSalary, intent.DimensionDepartment)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 10; i++ {
		shuffled := make([]map[string]any, len(raw))
		copy(shuffled, raw)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})

		result, err := Aggregate(dataset.Normalize(shuffled), intent.MetricSalary, intent.DimensionDepartment)
		require.NoError(t, err)
		assert.Equal(t, baseline.Groups, result.Groups)
	}
}

func TestSnapshotHeadcount(t *testing.T) {
	table := dataset.Normalize([]map[string]any{
		row("E1", "Sales", "Active", map[string]any{"Hire_Date": "2020-03-01"}),
		row("E2", "Sales", "Active", map[string]any{"Hire_Date": "2021-06-15"}),
		row("E3", "Sales", "Resigned", map[string]any{"Hire_Date": "2020-01-10", "Exit_Date": "2021-09-30"}),
		row("E4", "Sales", "Active", map[string]any{"Hire_Date": "2022-02-01"}),
	})

	assert.Equal(t, 0, SnapshotHeadcount(table, 2019))
	assert.Equal(t, 2, SnapshotHeadcount(table, 2020))
	// E3 exits during 2021, so is gone by year-end.
	assert.Equal(t, 2, SnapshotHeadcount(table, 2021))
	assert.Equal(t, 3, SnapshotHeadcount(table, 2022))
}

func TestAggregate_HeadcountByYearCoversFullRange(t *testing.T) {
	table := dataset.Normalize([]map[string]any{
		row("E1", "Sales", "Active", map[string]any{"Hire_Date": "2019-03-01"}),
		row("E2", "Sales", "Active", map[string]any{"Hire_Date": "2022-06-15"}),
	})

	result, err := Aggregate(table, intent.MetricHeadcount, intent.DimensionYear)
	require.NoError(t, err)

	// Every year from min to max hire year appears, including gap years.
	keys := map[string]bool{}
	for _, g := range result.Groups {
		keys[g.Key] = true
	}
	for _, y := range []string{"2019", "2020", "2021", "2022"} {
		assert.True(t, keys[y], "missing year %s", y)
	}
}

func TestAggregate_DeparturesByYear(t *testing.T) {
	table := dataset.Normalize([]map[string]any{
		row("E1", "Sales", "Resigned", map[string]any{"Hire_Date": "2019-01-01", "Exit_Date": "2021-03-01"}),
		row("E2", "Sales", "Terminated", map[string]any{"Hire_Date": "2019-01-01", "Exit_Date": "2021-08-01"}),
		row("E3", "Sales", "Resigned", map[string]any{"Hire_Date": "2020-01-01", "Exit_Date": "2022-05-01"}),
		row("E4", "Sales", "Active", map[string]any{"Hire_Date": "2020-01-01"}),
	})

	result, err := Aggregate(table, intent.MetricAttrition, intent.DimensionYear)
	require.NoError(t, err)

	assert.Equal(t, "Departures", result.Label)
	require.Len(t, result.Groups, 2)
	assert.Equal(t, Group{Key: "2021", Value: 2}, result.Groups[0])
	assert.Equal(t, Group{Key: "2022", Value: 1}, result.Groups[1])
}
