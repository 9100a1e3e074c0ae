package predict

import (
	"fmt"
	"sort"

	"github.com/hr-agent/backend/internal/dataset"
)

// EvaluationThreshold is the decision threshold used when recomputing
// precision/recall against labeled data. Matches the threshold the model
// was tuned at.
const EvaluationThreshold = 0.30

// MetricValue is one named model-quality figure.
type MetricValue struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// StoredMetrics returns the training-time evaluation figures carried inside
// the model artifact, in a fixed display order.
func (a *Adapter) StoredMetrics() []MetricValue {
	order := []string{"AUC", "Precision", "Recall"}

	out := make([]MetricValue, 0, len(a.model.Metrics))
	seen := make(map[string]bool)
	for _, name := range order {
		if v, ok := a.model.Metrics[name]; ok {
			out = append(out, MetricValue{Name: name, Value: v})
			seen[name] = true
		}
	}

	var rest []string
	for name := range a.model.Metrics {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	for _, name := range rest {
		out = append(out, MetricValue{Name: name, Value: a.model.Metrics[name]})
	}

	return out
}

// Evaluate rescores the labeled table and recomputes AUC plus
// precision/recall at the tuned threshold, for drift checks against the
// stored training metrics. A resigned status is the positive class, as in
// training.
func (a *Adapter) Evaluate(table *dataset.Table) ([]MetricValue, error) {
	predictions, err := a.Predict(table)
	if err != nil {
		return nil, err
	}

	labels := make(map[string]bool, len(table.Rows))
	for _, row := range table.Rows {
		labels[row.EmployeeID] = row.Status == dataset.StatusResigned
	}

	var scores []float64
	var truth []bool
	var tp, fp, fn float64
	for _, p := range predictions {
		positive := labels[p.EmployeeID]
		scores = append(scores, p.Risk)
		truth = append(truth, positive)

		predicted := p.Risk >= EvaluationThreshold
		switch {
		case predicted && positive:
			tp++
		case predicted && !positive:
			fp++
		case !predicted && positive:
			fn++
		}
	}

	auc, err := rocAUC(scores, truth)
	if err != nil {
		return nil, err
	}

	precision := 0.0
	if tp+fp > 0 {
		precision = tp / (tp + fp)
	}
	recall := 0.0
	if tp+fn > 0 {
		recall = tp / (tp + fn)
	}

	return []MetricValue{
		{Name: "AUC", Value: auc},
		{Name: "Precision", Value: precision},
		{Name: "Recall", Value: recall},
	}, nil
}

// rocAUC computes area under the ROC curve by the rank-sum method, with
// midranks for tied scores.
func rocAUC(scores []float64, truth []bool) (float64, error) {
	type pair struct {
		score    float64
		positive bool
	}

	pairs := make([]pair, len(scores))
	var positives, negatives float64
	for i := range scores {
		pairs[i] = pair{score: scores[i], positive: truth[i]}
		if truth[i] {
			positives++
		} else {
			negatives++
		}
	}
	if positives == 0 || negatives == 0 {
		return 0, fmt.Errorf("evaluation requires both classes present (positives=%d, negatives=%d)",
			int(positives), int(negatives))
	}

	sort.Slice(pairs, func(i, j int) bool { return pairs[i].score < pairs[j].score })

	var rankSum float64
	i := 0
	for i < len(pairs) {
		j := i
		for j < len(pairs) && pairs[j].score == pairs[i].score {
			j++
		}
		midrank := float64(i+j+1) / 2 // averaged 1-based rank over the tie run
		for k := i; k < j; k++ {
			if pairs[k].positive {
				rankSum += midrank
			}
		}
		i = j
	}

	return (rankSum - positives*(positives+1)/2) / (positives * negatives), nil
}
