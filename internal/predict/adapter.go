package predict

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/hr-agent/backend/internal/dataset"
)

// RequiredFeatures is the fixed feature set the classifier was trained on.
var RequiredFeatures = []string{
	dataset.ColAge,
	dataset.ColSalary,
	dataset.ColExperienceYears,
	dataset.ColEngagementScore,
	dataset.ColPerformanceRating,
}

// Risk buckets, thresholded inclusive-lower / exclusive-upper.
const (
	BucketLow    = "Low"
	BucketMedium = "Medium"
	BucketHigh   = "High"
)

// MissingFeaturesError names the prediction input columns absent from the
// dataset so the user-facing message can be actionable.
type MissingFeaturesError struct {
	Columns []string
}

func (e *MissingFeaturesError) Error() string {
	return fmt.Sprintf("dataset is missing prediction features: %s", strings.Join(e.Columns, ", "))
}

// Prediction is one employee's attrition risk score.
type Prediction struct {
	EmployeeID string  `json:"employee_id"`
	Status     string  `json:"status"`
	Risk       float64 `json:"risk"`
	Bucket     string  `json:"bucket"`
}

// Adapter wraps the pre-trained classifier for per-record scoring.
type Adapter struct {
	model *Model
}

func NewAdapter(model *Model) *Adapter {
	return &Adapter{model: model}
}

// Predict scores attrition risk for every record, ordered by descending
// risk. Missing numeric values are imputed with the mean of that column
// within the same input batch, independently per feature. Batch-relative
// imputation means scores shift with batch composition; kept to match the
// training pipeline's preprocessing.
func (a *Adapter) Predict(table *dataset.Table) ([]Prediction, error) {
	var missing []string
	for _, col := range RequiredFeatures {
		if !table.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingFeaturesError{Columns: missing}
	}

	means := batchMeans(table)

	predictions := make([]Prediction, 0, len(table.Rows))
	for _, row := range table.Rows {
		features := make([]float64, len(a.model.Features))
		for i, col := range a.model.Features {
			if v, ok := row.Numeric(col); ok {
				features[i] = v
			} else {
				features[i] = means[col]
			}
		}

		risk := round4(a.model.Probability(features))
		predictions = append(predictions, Prediction{
			EmployeeID: row.EmployeeID,
			Status:     row.Status,
			Risk:       risk,
			Bucket:     Bucket(risk),
		})
	}

	sort.Slice(predictions, func(i, j int) bool {
		if predictions[i].Risk != predictions[j].Risk {
			return predictions[i].Risk > predictions[j].Risk
		}
		return predictions[i].EmployeeID < predictions[j].EmployeeID
	})

	return predictions, nil
}

// Bucket classifies a probability: Low <0.40, Medium [0.40,0.70), High >=0.70.
func Bucket(p float64) string {
	switch {
	case p >= 0.70:
		return BucketHigh
	case p >= 0.40:
		return BucketMedium
	default:
		return BucketLow
	}
}

// BucketCounts tallies predictions per risk bucket, ordered High, Medium,
// Low for chart display.
func BucketCounts(predictions []Prediction) ([]string, []float64) {
	counts := map[string]float64{}
	for _, p := range predictions {
		counts[p.Bucket]++
	}

	labels := []string{BucketHigh, BucketMedium, BucketLow}
	values := make([]float64, len(labels))
	for i, label := range labels {
		values[i] = counts[label]
	}
	return labels, values
}

func batchMeans(table *dataset.Table) map[string]float64 {
	means := make(map[string]float64, len(RequiredFeatures))
	for _, col := range RequiredFeatures {
		var sum float64
		var n int
		for _, row := range table.Rows {
			if v, ok := row.Numeric(col); ok {
				sum += v
				n++
			}
		}
		if n > 0 {
			means[col] = sum / float64(n)
		}
	}
	return means
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
