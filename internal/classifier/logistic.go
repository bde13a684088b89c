package classifier

import (
	"fmt"
	"math"

	"github.com/gonum/floats"

	"github.com/kartoza/heart-risk/internal/features"
)

// KindLogisticRegression identifies logistic regression artifacts
const KindLogisticRegression = "logistic_regression"

// DefaultThreshold is the probability at or above which a logistic model predicts 1
const DefaultThreshold = 0.5

// LogisticRegression is a linear model with a sigmoid link.
// Coefficients are indexed in features.FieldNames order.
type LogisticRegression struct {
	Intercept    float64                       `json:"intercept"`
	Coefficients [features.NumFeatures]float64 `json:"coefficients"`
	Threshold    float64                       `json:"threshold,omitempty"`
}

// Probability returns P(disease | v)
func (m *LogisticRegression) Probability(v features.Vector) float64 {
	z := m.Intercept + floats.Dot(m.Coefficients[:], v[:])
	return 1 / (1 + math.Exp(-z))
}

// Predict returns 1 when the probability reaches the threshold, else 0
func (m *LogisticRegression) Predict(v features.Vector) (float64, error) {
	if m.Probability(v) >= m.threshold() {
		return 1, nil
	}
	return 0, nil
}

func (m *LogisticRegression) threshold() float64 {
	if m.Threshold == 0 {
		return DefaultThreshold
	}
	return m.Threshold
}

func (m *LogisticRegression) validate() error {
	if m.Threshold < 0 || m.Threshold >= 1 {
		return fmt.Errorf("threshold %v outside [0, 1)", m.Threshold)
	}
	if math.IsNaN(m.Intercept) || math.IsInf(m.Intercept, 0) {
		return fmt.Errorf("intercept is not finite")
	}
	for i, w := range m.Coefficients {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("coefficient for %s is not finite", features.FieldNames[i])
		}
	}
	return nil
}
