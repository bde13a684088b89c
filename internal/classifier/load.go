package classifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kartoza/heart-risk/internal/features"
)

// Load reads a classifier artifact. The file extension selects the format:
// .json for a JSON document, .db/.sqlite/.sqlite3 for a SQLite database and
// .gob for a neural network written by NeuralNetwork.Save.
func Load(path string) (Classifier, error) {
	var (
		c   Classifier
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		c, err = loadJSON(path)
	case ".db", ".sqlite", ".sqlite3":
		c, err = loadSQLite(path)
	case ".gob":
		c, err = loadGob(path)
	default:
		return nil, fmt.Errorf("unsupported model artifact %q: expected .json, .gob, .db, .sqlite or .sqlite3", path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load model %s: %w", path, err)
	}
	return c, nil
}

// jsonArtifact is the on-disk JSON form. Coefficients may be a 13-element
// array in feature order or an object keyed by feature name.
type jsonArtifact struct {
	Kind         string          `json:"kind"`
	Intercept    float64         `json:"intercept"`
	Coefficients json.RawMessage `json:"coefficients"`
	Threshold    float64         `json:"threshold"`
	Nodes        []TreeNode      `json:"nodes"`
	Layers       []Layer         `json:"layers"`
}

func loadJSON(path string) (Classifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var a jsonArtifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	switch a.Kind {
	case KindLogisticRegression:
		coef, err := decodeCoefficients(a.Coefficients)
		if err != nil {
			return nil, err
		}
		m := &LogisticRegression{Intercept: a.Intercept, Coefficients: coef, Threshold: a.Threshold}
		if err := m.validate(); err != nil {
			return nil, err
		}
		return m, nil
	case KindDecisionTree:
		t := &DecisionTree{Nodes: a.Nodes}
		if err := t.validate(); err != nil {
			return nil, err
		}
		return t, nil
	case KindNeuralNetwork:
		n := &NeuralNetwork{Layers: a.Layers, Threshold: a.Threshold}
		if err := n.validate(); err != nil {
			return nil, err
		}
		return n, nil
	case "":
		return nil, fmt.Errorf("artifact has no kind")
	default:
		return nil, fmt.Errorf("unknown model kind %q", a.Kind)
	}
}

func decodeCoefficients(raw json.RawMessage) ([features.NumFeatures]float64, error) {
	var coef [features.NumFeatures]float64

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return coef, fmt.Errorf("missing coefficients")
	}

	if raw[0] == '{' {
		var named map[string]float64
		if err := json.Unmarshal(raw, &named); err != nil {
			return coef, fmt.Errorf("invalid coefficients: %w", err)
		}
		return coefficientsByName(named)
	}

	var list []float64
	if err := json.Unmarshal(raw, &list); err != nil {
		return coef, fmt.Errorf("invalid coefficients: %w", err)
	}
	if len(list) != features.NumFeatures {
		return coef, fmt.Errorf("expected %d coefficients, got %d", features.NumFeatures, len(list))
	}
	copy(coef[:], list)
	return coef, nil
}

// coefficientsByName places named weights at their feature positions.
// Every feature needs exactly one weight and unknown names are rejected.
func coefficientsByName(named map[string]float64) ([features.NumFeatures]float64, error) {
	var coef [features.NumFeatures]float64
	for name, w := range named {
		idx := features.Index(name)
		if idx < 0 {
			return coef, fmt.Errorf("coefficient for unknown feature %q", name)
		}
		coef[idx] = w
	}
	for _, name := range features.FieldNames {
		if _, ok := named[name]; !ok {
			return coef, fmt.Errorf("missing coefficient for %s", name)
		}
	}
	return coef, nil
}
