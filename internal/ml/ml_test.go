package ml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medexpenses/internal/apperr"
	"medexpenses/internal/models"
)

const shippedModel = "../../data/charges_model.json"

func scenarioRequest() models.PredictionRequest {
	return models.PredictionRequest{
		Age:      "35",
		Sex:      "female",
		BMI:      "18.2",
		Children: "0",
		Smoker:   "no",
		Region:   "southwest",
	}
}

func writeModel(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestEncodeFeatures(t *testing.T) {
	x, err := EncodeFeatures(scenarioRequest())
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.35, 1, 0.182, 0, 0, 0, 0, 0, 1}, x, 1e-12)
}

func TestEncodeFeatures_Categorical(t *testing.T) {
	req := scenarioRequest()
	req.Sex = " Male "
	req.Smoker = "YES"
	req.Region = "NorthEast"

	x, err := EncodeFeatures(req)
	require.NoError(t, err)
	assert.Equal(t, 0.0, x[1])
	assert.Equal(t, 1.0, x[4])
	assert.Equal(t, []float64{1, 0, 0, 0}, x[regionOffset:])
}

// Unknown regions are not rejected; every indicator stays 0.
func TestEncodeFeatures_UnknownRegion(t *testing.T) {
	req := scenarioRequest()
	req.Region = "atlantis"

	x, err := EncodeFeatures(req)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 0, 0}, x[regionOffset:])
}

func TestEncodeFeatures_UnknownSexAndSmoker(t *testing.T) {
	req := scenarioRequest()
	req.Sex = "other"
	req.Smoker = "sometimes"

	x, err := EncodeFeatures(req)
	require.NoError(t, err)
	assert.Equal(t, 0.0, x[1])
	assert.Equal(t, 0.0, x[4])
}

func TestEncodeFeatures_Malformed(t *testing.T) {
	tests := []struct {
		name string
		edit func(*models.PredictionRequest)
	}{
		{"age", func(r *models.PredictionRequest) { r.Age = "thirty" }},
		{"bmi", func(r *models.PredictionRequest) { r.BMI = "" }},
		{"children", func(r *models.PredictionRequest) { r.Children = "1,5" }},
		{"age", func(r *models.PredictionRequest) { r.Age = "NaN" }},
		{"bmi", func(r *models.PredictionRequest) { r.BMI = "Inf" }},
		{"children", func(r *models.PredictionRequest) { r.Children = "-Infinity" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := scenarioRequest()
			tt.edit(&req)
			_, err := EncodeFeatures(req)
			assert.ErrorIs(t, err, apperr.ErrInvalidInput)
			assert.Contains(t, err.Error(), tt.name)
		})
	}
}

func TestLinearModel_Validate(t *testing.T) {
	m := &LinearModel{Coefficients: make([]float64, 3)}
	assert.Error(t, m.Validate())

	m = &LinearModel{Coefficients: make([]float64, len(FeatureNames)), Features: []string{"age"}}
	assert.Error(t, m.Validate())

	names := append([]string(nil), FeatureNames...)
	names[0], names[1] = names[1], names[0]
	m = &LinearModel{Coefficients: make([]float64, len(FeatureNames)), Features: names}
	assert.Error(t, m.Validate())

	m = &LinearModel{Coefficients: make([]float64, len(FeatureNames))}
	assert.NoError(t, m.Validate())
}

func TestModelLoader_ShippedModel(t *testing.T) {
	p := NewPredictor(NewModelLoader(shippedModel), nil)

	got, err := p.Predict(context.Background(), scenarioRequest())
	require.NoError(t, err)
	assert.InDelta(t, 2397.83, got.Charges, 0.01)
	assert.False(t, got.Cached)

	again, err := p.Predict(context.Background(), scenarioRequest())
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestModelLoader_Unavailable(t *testing.T) {
	_, err := NewModelLoader(filepath.Join(t.TempDir(), "missing.json")).Load(context.Background())
	assert.ErrorIs(t, err, apperr.ErrModelUnavailable)

	_, err = NewModelLoader(writeModel(t, "{not json")).Load(context.Background())
	assert.ErrorIs(t, err, apperr.ErrModelUnavailable)

	_, err = NewModelLoader(writeModel(t, `{"intercept": 1, "coefficients": [1, 2]}`)).Load(context.Background())
	assert.ErrorIs(t, err, apperr.ErrModelUnavailable)
}

func TestModelLoader_RetriesAfterFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	loader := NewModelLoader(path)

	_, err := loader.Load(context.Background())
	require.ErrorIs(t, err, apperr.ErrModelUnavailable)

	require.NoError(t, os.WriteFile(path, []byte(`{"intercept": 10, "coefficients": [1,0,0,0,0,0,0,0,0]}`), 0o600))
	m, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10.0, m.Intercept)

	// cached: removing the file no longer matters
	require.NoError(t, os.Remove(path))
	again, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.Same(t, m, again)
}

func TestModelLoader_Concurrent(t *testing.T) {
	loader := NewModelLoader(shippedModel)

	var wg sync.WaitGroup
	results := make([]*LinearModel, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m, err := loader.Load(context.Background())
			if err == nil {
				results[i] = m
			}
		}(i)
	}
	wg.Wait()

	for _, m := range results {
		require.NotNil(t, m)
		assert.Same(t, results[0], m)
	}
}

type memoryCache struct {
	values   map[string]float64
	failRead bool
	stores   int
}

func key(x []float64) string { return fmt.Sprint(x) }

func (m *memoryCache) GetPrediction(_ context.Context, x []float64) (float64, bool, error) {
	if m.failRead {
		return 0, false, errors.New("connection refused")
	}
	v, ok := m.values[key(x)]
	return v, ok, nil
}

func (m *memoryCache) StorePrediction(_ context.Context, x []float64, charges float64) error {
	m.stores++
	m.values[key(x)] = charges
	return nil
}

func TestPredictor_UsesCache(t *testing.T) {
	cache := &memoryCache{values: map[string]float64{}}
	p := NewPredictor(NewModelLoader(shippedModel), cache)

	first, err := p.Predict(context.Background(), scenarioRequest())
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Equal(t, 1, cache.stores)

	second, err := p.Predict(context.Background(), scenarioRequest())
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Charges, second.Charges)
}

func TestPredictor_CacheFailureIgnored(t *testing.T) {
	cache := &memoryCache{values: map[string]float64{}, failRead: true}
	p := NewPredictor(NewModelLoader(shippedModel), cache)

	got, err := p.Predict(context.Background(), scenarioRequest())
	require.NoError(t, err)
	assert.InDelta(t, 2397.83, got.Charges, 0.01)
}

func TestPredictor_ModelUnavailable(t *testing.T) {
	p := NewPredictor(NewModelLoader(filepath.Join(t.TempDir(), "nope.json")), nil)
	_, err := p.Predict(context.Background(), scenarioRequest())
	assert.ErrorIs(t, err, apperr.ErrModelUnavailable)
}

func TestPredictor_RejectsOverflow(t *testing.T) {
	cache := &memoryCache{values: map[string]float64{}}
	p := NewPredictor(NewModelLoader(shippedModel), cache)

	req := scenarioRequest()
	req.Age = "1e308"
	_, err := p.Predict(context.Background(), req)
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
	assert.Zero(t, cache.stores)
}
