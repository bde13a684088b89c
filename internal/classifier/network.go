package classifier

import (
	"encoding/gob"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/gonum/floats"

	"github.com/kartoza/heart-risk/internal/features"
)

// KindNeuralNetwork identifies feed-forward network artifacts
const KindNeuralNetwork = "neural_network"

// Layer is one fully connected layer. Weights has one row per output unit,
// each row as long as the previous layer's output.
type Layer struct {
	Weights [][]float64 `json:"weights"`
	Biases  []float64   `json:"biases"`
}

// NeuralNetwork is a feed-forward network with ReLU hidden layers.
// A single output unit is read through a sigmoid and compared with
// Threshold; two output units are read as class scores for 0 and 1.
type NeuralNetwork struct {
	Layers    []Layer `json:"layers"`
	Threshold float64 `json:"threshold,omitempty"`
}

// Forward performs a forward pass and returns the output layer
func (n *NeuralNetwork) Forward(v features.Vector) []float64 {
	act := v[:]
	for i, layer := range n.Layers {
		out := make([]float64, len(layer.Biases))
		copy(out, layer.Biases)
		for j, row := range layer.Weights {
			out[j] += floats.Dot(row, act)
		}

		// ReLU for hidden layers, none for output
		if i < len(n.Layers)-1 {
			for j := range out {
				out[j] = math.Max(out[j], 0)
			}
		}
		act = out
	}
	return act
}

// Predict runs inference and returns 0 or 1
func (n *NeuralNetwork) Predict(v features.Vector) (float64, error) {
	if len(n.Layers) == 0 {
		return 0, errors.New("neural network has no layers")
	}

	out := n.Forward(v)
	switch len(out) {
	case 1:
		if 1/(1+math.Exp(-out[0])) >= n.threshold() {
			return 1, nil
		}
		return 0, nil
	case 2:
		return float64(floats.MaxIdx(out)), nil
	default:
		return 0, fmt.Errorf("neural network has %d output units", len(out))
	}
}

func (n *NeuralNetwork) threshold() float64 {
	if n.Threshold == 0 {
		return DefaultThreshold
	}
	return n.Threshold
}

func (n *NeuralNetwork) validate() error {
	if len(n.Layers) == 0 {
		return errors.New("neural network has no layers")
	}
	if n.Threshold < 0 || n.Threshold >= 1 {
		return fmt.Errorf("threshold %v outside [0, 1)", n.Threshold)
	}

	inputs := features.NumFeatures
	for i, layer := range n.Layers {
		if len(layer.Weights) == 0 {
			return fmt.Errorf("layer %d has no units", i)
		}
		if len(layer.Biases) != len(layer.Weights) {
			return fmt.Errorf("layer %d has %d weight rows but %d biases", i, len(layer.Weights), len(layer.Biases))
		}
		for j, row := range layer.Weights {
			if len(row) != inputs {
				return fmt.Errorf("layer %d unit %d expects %d inputs, got %d", i, j, inputs, len(row))
			}
			if !allFinite(row) {
				return fmt.Errorf("layer %d unit %d has a non-finite weight", i, j)
			}
		}
		if !allFinite(layer.Biases) {
			return fmt.Errorf("layer %d has a non-finite bias", i)
		}
		inputs = len(layer.Weights)
	}

	if inputs != 1 && inputs != 2 {
		return fmt.Errorf("output layer must have 1 or 2 units, got %d", inputs)
	}
	return nil
}

// Save writes the network to path in gob encoding
func (n *NeuralNetwork) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return gob.NewEncoder(f).Encode(n)
}

func loadGob(path string) (Classifier, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	n := &NeuralNetwork{}
	if err := gob.NewDecoder(f).Decode(n); err != nil {
		return nil, fmt.Errorf("invalid gob: %w", err)
	}
	if err := n.validate(); err != nil {
		return nil, err
	}
	return n, nil
}

func allFinite(s []float64) bool {
	for _, x := range s {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
