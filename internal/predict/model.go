package predict

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"go.uber.org/zap"

	"github.com/hr-agent/backend/pkg/logger"
)

// Model is the pre-trained attrition classifier artifact: a standard scaler
// plus logistic weights, serialized as versioned JSON by the training
// pipeline. Training itself is out of scope; only this input/output
// contract is depended on.
type Model struct {
	Version  string             `json:"version"`
	Features []string           `json:"features"`
	Means    []float64          `json:"scaler_mean"`
	Stds     []float64          `json:"scaler_std"`
	Weights  []float64          `json:"weights"`
	Bias     float64            `json:"bias"`
	Metrics  map[string]float64 `json:"metrics"`
}

func LoadModel(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model artifact: %w", err)
	}

	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse model artifact: %w", err)
	}

	n := len(m.Features)
	if n == 0 || len(m.Means) != n || len(m.Stds) != n || len(m.Weights) != n {
		return nil, fmt.Errorf("model artifact %q has inconsistent feature shape", path)
	}

	logger.Info("Attrition model loaded",
		zap.String("path", path),
		zap.String("version", m.Version),
		zap.Strings("features", m.Features),
	)

	return &m, nil
}

// Probability scores one feature vector, ordered as m.Features.
func (m *Model) Probability(features []float64) float64 {
	z := m.Bias
	for i, x := range features {
		std := m.Stds[i]
		if std == 0 {
			std = 1
		}
		z += m.Weights[i] * (x - m.Means[i]) / std
	}
	return 1 / (1 + math.Exp(-z))
}
