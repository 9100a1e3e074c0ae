package dataset

import (
	"strings"
	"time"

	"github.com/spf13/cast"
)

// Canonical column names of the employee master table.
const (
	ColEmployeeID        = "Employee_ID"
	ColDepartment        = "Department"
	ColLocation          = "Location"
	ColGender            = "Gender"
	ColStatus            = "Status"
	ColJobLevel          = "Job_Level"
	ColHireDate          = "Hire_Date"
	ColExitDate          = "Exit_Date"
	ColAge               = "Age"
	ColSalary            = "Salary"
	ColExperienceYears   = "Experience_Years"
	ColEngagementScore   = "Engagement_Score"
	ColPerformanceRating = "Performance_Rating"
)

// Employment status values.
const (
	StatusActive     = "Active"
	StatusResigned   = "Resigned"
	StatusTerminated = "Terminated"
)

// Record is one employee row after normalization. Numeric fields are
// pointers so a missing or unparseable cell stays distinguishable from zero.
type Record struct {
	EmployeeID        string
	Department        string
	Location          string
	Gender            string
	Status            string
	JobLevel          string
	HireDate          *time.Time
	ExitDate          *time.Time
	HireYear          int
	ExitYear          int
	Age               *float64
	Salary            *float64
	ExperienceYears   *float64
	EngagementScore   *float64
	PerformanceRating *float64
}

// Numeric returns the value of a numeric column, false when null.
func (r Record) Numeric(column string) (float64, bool) {
	var v *float64
	switch column {
	case ColAge:
		v = r.Age
	case ColSalary:
		v = r.Salary
	case ColExperienceYears:
		v = r.ExperienceYears
	case ColEngagementScore:
		v = r.EngagementScore
	case ColPerformanceRating:
		v = r.PerformanceRating
	default:
		return 0, false
	}
	if v == nil {
		return 0, false
	}
	return *v, true
}

// Categorical returns the value of a string-valued column, false when blank.
func (r Record) Categorical(column string) (string, bool) {
	var v string
	switch column {
	case ColEmployeeID:
		v = r.EmployeeID
	case ColDepartment:
		v = r.Department
	case ColLocation:
		v = r.Location
	case ColGender:
		v = r.Gender
	case ColStatus:
		v = r.Status
	case ColJobLevel:
		v = r.JobLevel
	default:
		return "", false
	}
	if v == "" {
		return "", false
	}
	return v, true
}

// Table is the normalized in-memory employee dataset. columns records which
// source columns were present, independent of per-row nulls.
type Table struct {
	Rows    []Record
	columns map[string]bool
}

func (t *Table) Empty() bool {
	return t == nil || len(t.Rows) == 0
}

func (t *Table) HasColumn(name string) bool {
	if t == nil {
		return false
	}
	return t.columns[name]
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"02-01-2006",
	"01/02/2006",
}

// Normalize builds a Table from raw backend rows: trims column names, forces
// identifiers to strings, parses dates and derives calendar years, and
// parses numeric cells leniently.
func Normalize(raw []map[string]any) *Table {
	t := &Table{columns: make(map[string]bool)}

	for _, row := range raw {
		cleaned := make(map[string]any, len(row))
		for k, v := range row {
			name := strings.TrimSpace(k)
			cleaned[name] = v
			t.columns[name] = true
		}

		rec := Record{
			EmployeeID: strings.TrimSpace(cast.ToString(cleaned[ColEmployeeID])),
			Department: strings.TrimSpace(cast.ToString(cleaned[ColDepartment])),
			Location:   strings.TrimSpace(cast.ToString(cleaned[ColLocation])),
			Gender:     strings.TrimSpace(cast.ToString(cleaned[ColGender])),
			Status:     strings.TrimSpace(cast.ToString(cleaned[ColStatus])),
			JobLevel:   strings.TrimSpace(cast.ToString(cleaned[ColJobLevel])),
		}

		rec.HireDate = parseDate(cleaned[ColHireDate])
		rec.ExitDate = parseDate(cleaned[ColExitDate])
		if rec.HireDate != nil {
			rec.HireYear = rec.HireDate.Year()
		}
		if rec.ExitDate != nil {
			rec.ExitYear = rec.ExitDate.Year()
		}

		rec.Age = parseNumber(cleaned[ColAge])
		rec.Salary = parseNumber(cleaned[ColSalary])
		rec.ExperienceYears = parseNumber(cleaned[ColExperienceYears])
		rec.EngagementScore = parseNumber(cleaned[ColEngagementScore])
		rec.PerformanceRating = parseNumber(cleaned[ColPerformanceRating])

		t.Rows = append(t.Rows, rec)
	}

	return t
}

func parseDate(v any) *time.Time {
	if v == nil {
		return nil
	}
	if ts, ok := v.(time.Time); ok {
		return &ts
	}
	s := strings.TrimSpace(cast.ToString(v))
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return &ts
		}
	}
	return nil
}

func parseNumber(v any) *float64 {
	if v == nil {
		return nil
	}
	if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
		return nil
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return nil
	}
	return &f
}
