// Package classifier holds the trained heart-disease models and the code that
// loads them from artifacts on disk. A loaded Classifier is never mutated, so
// one instance can serve any number of concurrent requests.
package classifier

import (
	"github.com/kartoza/heart-risk/internal/features"
)

// Classifier maps a feature vector to a raw class output.
// Well-formed models return 0 or 1; callers normalise anything else.
type Classifier interface {
	Predict(v features.Vector) (float64, error)
}

// Func adapts a plain function to the Classifier interface
type Func func(v features.Vector) (float64, error)

// Predict calls f(v)
func (f Func) Predict(v features.Vector) (float64, error) {
	return f(v)
}

// Constant is a Classifier that always returns the same output.
// It stands in for a trained model in tests and smoke runs.
type Constant float64

// Predict returns c regardless of input
func (c Constant) Predict(_ features.Vector) (float64, error) {
	return float64(c), nil
}

// Describe returns a JSON-friendly summary of a classifier
func Describe(c Classifier) map[string]interface{} {
	switch m := c.(type) {
	case *LogisticRegression:
		return map[string]interface{}{
			"kind":      KindLogisticRegression,
			"threshold": m.threshold(),
		}
	case *DecisionTree:
		return map[string]interface{}{
			"kind":  KindDecisionTree,
			"nodes": len(m.Nodes),
			"depth": m.Depth(),
		}
	case *NeuralNetwork:
		units := make([]int, len(m.Layers))
		for i, layer := range m.Layers {
			units[i] = len(layer.Weights)
		}
		return map[string]interface{}{
			"kind":      KindNeuralNetwork,
			"units":     units,
			"threshold": m.threshold(),
		}
	case Constant:
		return map[string]interface{}{
			"kind":   "constant",
			"output": float64(m),
		}
	default:
		return map[string]interface{}{
			"kind": "custom",
		}
	}
}
