package ml

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog/log"

	"medexpenses/internal/apperr"
)

// LinearModel is the serialized regression: y = intercept + sum(c_i * x_i).
type LinearModel struct {
	Intercept    float64   `json:"intercept"`
	Features     []string  `json:"features"`
	Coefficients []float64 `json:"coefficients"`
}

func (m *LinearModel) Validate() error {
	if len(m.Coefficients) != len(FeatureNames) {
		return fmt.Errorf("model has %d coefficients, want %d", len(m.Coefficients), len(FeatureNames))
	}
	if len(m.Features) == 0 {
		return nil
	}
	if len(m.Features) != len(FeatureNames) {
		return fmt.Errorf("model has %d features, want %d", len(m.Features), len(FeatureNames))
	}
	for i, name := range FeatureNames {
		if m.Features[i] != name {
			return fmt.Errorf("feature %d is %q, want %q", i, m.Features[i], name)
		}
	}
	return nil
}

func (m *LinearModel) Predict(x []float64) float64 {
	y := m.Intercept
	for i, c := range m.Coefficients {
		if i < len(x) {
			y += c * x[i]
		}
	}
	return y
}

// ModelLoader reads the model artifact on first use and keeps it. A failed
// load is not cached, so the next call tries the file again.
type ModelLoader struct {
	path  string
	mu    sync.Mutex
	model *LinearModel
}

func NewModelLoader(path string) *ModelLoader {
	return &ModelLoader{path: path}
}

func (l *ModelLoader) Load(ctx context.Context) (*LinearModel, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.model != nil {
		return l.model, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("read model %s: %v: %w", l.path, err, apperr.ErrModelUnavailable)
	}
	var m LinearModel
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode model %s: %v: %w", l.path, err, apperr.ErrModelUnavailable)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("model %s: %v: %w", l.path, err, apperr.ErrModelUnavailable)
	}

	log.Info().Str("path", l.path).Int("features", len(m.Coefficients)).Msg("Charges model loaded")
	l.model = &m
	return l.model, nil
}
