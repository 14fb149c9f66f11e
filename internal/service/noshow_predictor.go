package service

import (
	"errors"
	"fmt"
	"math"
	"os"
	"sync"

	"doctor-scheduling/config"

	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
)

var (
	ErrNonFiniteFeature = errors.New("feature vector contains a non-finite value")
	ErrNonFiniteScore   = errors.New("model produced a non-finite score")
	ErrInvalidModel     = errors.New("invalid no-show model")
)

// NoShowPredictor scores the probability that a patient misses an appointment.
// Implementations are immutable and safe for concurrent use.
type NoShowPredictor interface {
	Score(features FeatureVector) (float64, error)
}

// LogisticModel is a logistic regression over FeatureVector
type LogisticModel struct {
	weights   FeatureVector
	intercept float64
}

// modelFile is the on-disk format of a trained model
type modelFile struct {
	Features  []string  `json:"features"`
	Weights   []float64 `json:"weights"`
	Intercept float64   `json:"intercept"`
}

// NewLogisticModel builds a model from weights in FeatureVector order
func NewLogisticModel(weights FeatureVector, intercept float64) (*LogisticModel, error) {
	for _, w := range weights {
		if !isFinite(w) {
			return nil, fmt.Errorf("%w: non-finite weight", ErrInvalidModel)
		}
	}
	if !isFinite(intercept) {
		return nil, fmt.Errorf("%w: non-finite intercept", ErrInvalidModel)
	}
	return &LogisticModel{weights: weights, intercept: intercept}, nil
}

// LoadLogisticModel reads a JSON model file of the form
// {"features": [...], "weights": [...], "intercept": 0.0}.
// When features is present it must match FeatureNames exactly.
func LoadLogisticModel(path string) (*LogisticModel, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model file: %w", err)
	}

	var file modelFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidModel, err)
	}

	if len(file.Weights) != FeatureCount {
		return nil, fmt.Errorf("%w: expected %d weights, got %d", ErrInvalidModel, FeatureCount, len(file.Weights))
	}
	if len(file.Features) > 0 {
		if len(file.Features) != FeatureCount {
			return nil, fmt.Errorf("%w: expected %d feature names, got %d", ErrInvalidModel, FeatureCount, len(file.Features))
		}
		for i, name := range file.Features {
			if name != FeatureNames[i] {
				return nil, fmt.Errorf("%w: feature %d is %q, want %q", ErrInvalidModel, i, name, FeatureNames[i])
			}
		}
	}

	var weights FeatureVector
	copy(weights[:], file.Weights)
	return NewLogisticModel(weights, file.Intercept)
}

// Score returns sigmoid(intercept + w·x), clamped to [0,1] and rounded to 4 decimals
func (m *LogisticModel) Score(features FeatureVector) (float64, error) {
	z := m.intercept
	for i, x := range features {
		if !isFinite(x) {
			return 0, fmt.Errorf("%w: %s", ErrNonFiniteFeature, FeatureNames[i])
		}
		z += m.weights[i] * x
	}

	p := 1 / (1 + math.Exp(-z))
	if math.IsNaN(p) {
		return 0, ErrNonFiniteScore
	}
	return roundProbability(p), nil
}

// FallbackPredictor is used whenever no trained model is available
type FallbackPredictor struct {
	probability float64
}

func NewFallbackPredictor(probability float64) *FallbackPredictor {
	return &FallbackPredictor{probability: roundProbability(probability)}
}

// Score always returns the configured probability
func (p *FallbackPredictor) Score(FeatureVector) (float64, error) {
	return p.probability, nil
}

// NewNoShowPredictor builds a predictor from cfg, falling back to a constant
// probability when no model path is set or the model cannot be loaded.
func NewNoShowPredictor(cfg config.PredictorConfig, log *logrus.Logger) NoShowPredictor {
	fallback := NewFallbackPredictor(cfg.DefaultProbability)
	if cfg.ModelPath == "" {
		log.Info("No no-show model configured, using fallback predictor")
		return fallback
	}

	model, err := LoadLogisticModel(cfg.ModelPath)
	if err != nil {
		log.Warnf("Failed to load no-show model from %s, using fallback predictor: %+v", cfg.ModelPath, err)
		return fallback
	}

	log.Infof("Loaded no-show model from %s", cfg.ModelPath)
	return model
}

var (
	predictorOnce     sync.Once
	predictorInstance NoShowPredictor
)

// LoadNoShowPredictor returns the process-wide predictor. It is built on the first
// call only; later calls return the same instance whatever cfg they pass.
func LoadNoShowPredictor(cfg config.PredictorConfig, log *logrus.Logger) NoShowPredictor {
	predictorOnce.Do(func() {
		predictorInstance = NewNoShowPredictor(cfg, log)
	})
	return predictorInstance
}

func roundProbability(p float64) float64 {
	if math.IsNaN(p) || p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	return math.Round(p*10000) / 10000
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
