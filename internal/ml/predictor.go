package ml

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog/log"

	"medexpenses/internal/apperr"
	"medexpenses/internal/models"
)

// ResultCache stores predictions keyed by the encoded feature vector.
type ResultCache interface {
	GetPrediction(ctx context.Context, features []float64) (float64, bool, error)
	StorePrediction(ctx context.Context, features []float64, charges float64) error
}

type Prediction struct {
	Charges float64
	Cached  bool
}

type Predictor interface {
	Predict(ctx context.Context, req models.PredictionRequest) (Prediction, error)
}

type predictor struct {
	loader *ModelLoader
	cache  ResultCache
}

// NewPredictor returns a predictor backed by loader. cache may be nil.
func NewPredictor(loader *ModelLoader, cache ResultCache) Predictor {
	return &predictor{loader: loader, cache: cache}
}

func (p *predictor) Predict(ctx context.Context, req models.PredictionRequest) (Prediction, error) {
	x, err := EncodeFeatures(req)
	if err != nil {
		return Prediction{}, err
	}

	if p.cache != nil {
		charges, ok, err := p.cache.GetPrediction(ctx, x)
		if err != nil {
			log.Warn().Err(err).Msg("Prediction cache read failed")
		} else if ok {
			return Prediction{Charges: charges, Cached: true}, nil
		}
	}

	model, err := p.loader.Load(ctx)
	if err != nil {
		return Prediction{}, err
	}
	charges := roundCents(model.Predict(x))
	if math.IsNaN(charges) || math.IsInf(charges, 0) {
		return Prediction{}, fmt.Errorf("prediction overflows for the given input: %w", apperr.ErrInvalidInput)
	}

	if p.cache != nil {
		if err := p.cache.StorePrediction(ctx, x, charges); err != nil {
			log.Warn().Err(err).Msg("Prediction cache write failed")
		}
	}
	return Prediction{Charges: charges}, nil
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
