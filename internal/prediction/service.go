// Package prediction turns a clinical observation into a heart-disease verdict
// using a classifier that is loaded once and shared by every request.
package prediction

import (
	"errors"
	"fmt"
	"math"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/kartoza/heart-risk/internal/classifier"
	"github.com/kartoza/heart-risk/internal/features"
)

// ErrInvalidInput is the only error caused by the caller's input
var ErrInvalidInput = features.ErrInvalidInput

// Labels and their messages
const (
	LabelNoDisease = 0
	LabelDisease   = 1

	MessageNoDisease = "No Heart Disease"
	MessageDisease   = "Heart Disease Detected"
)

// Result is the outcome of one prediction
type Result struct {
	Label   int    `json:"prediction"`
	Message string `json:"result"`
}

// ClassifierError reports that the model itself failed on a valid vector.
// It is a server-side failure, never a validation error.
type ClassifierError struct {
	Err error
}

func (e *ClassifierError) Error() string {
	return fmt.Sprintf("classifier failed: %v", e.Err)
}

func (e *ClassifierError) Unwrap() error {
	return e.Err
}

// Service runs the extract → classify → label pipeline. It holds no mutable
// state apart from the optional cache, which is safe for concurrent use.
type Service struct {
	clf    classifier.Classifier
	cache  *lru.Cache[features.Vector, Result]
	logger *zap.Logger
}

// Option configures a Service
type Option func(*Service) error

// WithCache memoises up to size results keyed by feature vector.
// Predictions are deterministic, so a hit returns exactly what the model would.
func WithCache(size int) Option {
	return func(s *Service) error {
		if size <= 0 {
			return nil
		}
		cache, err := lru.New[features.Vector, Result](size)
		if err != nil {
			return err
		}
		s.cache = cache
		return nil
	}
}

// WithLogger sets the logger for per-prediction debug lines
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) error {
		if logger != nil {
			s.logger = logger
		}
		return nil
	}
}

// New creates a Service around an already loaded classifier
func New(clf classifier.Classifier, opts ...Option) (*Service, error) {
	if clf == nil {
		return nil, errors.New("prediction service requires a classifier")
	}
	s := &Service{clf: clf, logger: zap.NewNop()}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, fmt.Errorf("configuring prediction service: %w", err)
		}
	}
	return s, nil
}

// Predict validates the observation and classifies it. Validation failures
// return ErrInvalidInput unchanged; model failures return *ClassifierError.
func (s *Service) Predict(observation map[string]any) (Result, error) {
	vec, err := features.Extract(observation)
	if err != nil {
		return Result{}, err
	}

	cacheable := s.cache != nil && !hasNaN(vec)
	if cacheable {
		if r, ok := s.cache.Get(vec); ok {
			return r, nil
		}
	}

	raw, err := s.clf.Predict(vec)
	if err != nil {
		return Result{}, &ClassifierError{Err: err}
	}

	r := NewResult(raw)
	s.logger.Debug("prediction",
		zap.Any("features", vec.Map()),
		zap.Float64("raw", raw),
		zap.Int("label", r.Label))
	if cacheable {
		s.cache.Add(vec, r)
	}
	return r, nil
}

// NewResult maps a raw classifier output to a Result. Only an output equal
// to 1 counts as disease; every other value, including NaN, maps to label 0.
func NewResult(raw float64) Result {
	if raw == 1 {
		return Result{Label: LabelDisease, Message: MessageDisease}
	}
	return Result{Label: LabelNoDisease, Message: MessageNoDisease}
}

// Info describes the loaded model
func (s *Service) Info() map[string]interface{} {
	info := classifier.Describe(s.clf)
	info["features"] = features.FieldNames
	if s.cache != nil {
		info["cached_results"] = s.cache.Len()
	}
	return info
}

func hasNaN(v features.Vector) bool {
	for _, f := range v {
		if math.IsNaN(f) {
			return true
		}
	}
	return false
}
