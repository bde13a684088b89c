package features

import (
	"encoding/json"
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// NumFeatures is the length of every feature vector
const NumFeatures = 13

// FieldNames is the fixed order of the clinical measurements in a Vector.
// Trained models index their weights positionally, so this order must never change.
var FieldNames = [NumFeatures]string{
	"age",
	"sex",
	"cp",
	"trestbps",
	"chol",
	"fbs",
	"restecg",
	"thalach",
	"exang",
	"oldpeak",
	"slope",
	"ca",
	"thal",
}

// ErrInvalidInput is returned for any missing or non-numeric field.
// It deliberately carries no per-field detail.
var ErrInvalidInput = errors.New("Invalid or missing input values")

// Vector is the ordered numeric form of a clinical observation
type Vector [NumFeatures]float64

// Map returns the vector keyed by field name
func (v Vector) Map() map[string]float64 {
	m := make(map[string]float64, NumFeatures)
	for i, name := range FieldNames {
		m[name] = v[i]
	}
	return m
}

// Index returns the position of a field name in a Vector, or -1
func Index(name string) int {
	for i, n := range FieldNames {
		if n == name {
			return i
		}
	}
	return -1
}

// Extract builds a Vector from a loosely typed observation. Keys not in
// FieldNames are ignored.
func Extract(observation map[string]any) (Vector, error) {
	var v Vector
	if observation == nil {
		return v, ErrInvalidInput
	}
	for i, name := range FieldNames {
		raw, ok := observation[name]
		if !ok {
			return Vector{}, ErrInvalidInput
		}
		f, ok := toFloat(raw)
		if !ok {
			return Vector{}, ErrInvalidInput
		}
		v[i] = f
	}
	return v, nil
}

func toFloat(raw any) (float64, bool) {
	switch x := raw.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	case json.Number:
		return parseNumber(string(x))
	case string:
		return parseNumber(x)
	default:
		return 0, false
	}
}

// numberLiteral is the decimal float grammar accepted for string values:
// optional sign, digits with single underscores between them, optional
// fraction and exponent, or one of inf/infinity/nan.
var numberLiteral = regexp.MustCompile(
	`^[+-]?(?:(?i:inf|infinity|nan)|(?:\d(?:_?\d)*(?:\.(?:\d(?:_?\d)*)?)?|\.\d(?:_?\d)*)(?:[eE][+-]?\d(?:_?\d)*)?)$`,
)

func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if !numberLiteral.MatchString(s) {
		return 0, false
	}
	if strings.EqualFold(strings.TrimLeft(s, "+-"), "nan") {
		return math.NaN(), true
	}
	s = strings.ReplaceAll(s, "_", "")

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// Out-of-range literals saturate to ±Inf or 0, like any float conversion.
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && numErr.Err == strconv.ErrRange {
			return f, true
		}
		return 0, false
	}
	return f, true
}
