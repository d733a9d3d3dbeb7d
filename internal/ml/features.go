package ml

import (
	"fmt"
	"math"
	"strings"

	"medexpenses/internal/apperr"
	"medexpenses/internal/models"
)

// FeatureNames is the column order the model was trained with.
var FeatureNames = []string{
	"age",
	"sex",
	"bmi",
	"children",
	"smoker",
	"region_northeast",
	"region_northwest",
	"region_southeast",
	"region_southwest",
}

const regionOffset = 5

var regionColumns = map[string]int{
	"northeast": 0,
	"northwest": 1,
	"southeast": 2,
	"southwest": 3,
}

// numericScale brings age, bmi and children into the range the model saw.
const numericScale = 100.0

// EncodeFeatures turns a prediction request into the model's input vector.
// Categorical values are matched case-insensitively; anything unrecognised
// encodes as 0, and an unknown region leaves all four indicators at 0.
func EncodeFeatures(req models.PredictionRequest) ([]float64, error) {
	age, err := parseNumber("age", req.Age)
	if err != nil {
		return nil, err
	}
	bmi, err := parseNumber("bmi", req.BMI)
	if err != nil {
		return nil, err
	}
	children, err := parseNumber("children", req.Children)
	if err != nil {
		return nil, err
	}

	x := make([]float64, len(FeatureNames))
	x[0] = age / numericScale
	x[1] = indicator(req.Sex, "female")
	x[2] = bmi / numericScale
	x[3] = children / numericScale
	x[4] = indicator(req.Smoker, "yes")
	if col, ok := regionColumns[normalize(req.Region)]; ok {
		x[regionOffset+col] = 1
	}
	return x, nil
}

// parseNumber rejects NaN and infinities, which strconv accepts.
func parseNumber(name string, n models.FlexNumber) (float64, error) {
	v, err := n.Float64()
	if err != nil {
		return 0, fmt.Errorf("%s %q: %v: %w", name, n, err, apperr.ErrInvalidInput)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%s %q: not a finite number: %w", name, n, apperr.ErrInvalidInput)
	}
	return v, nil
}

func indicator(value, positive string) float64 {
	if normalize(value) == positive {
		return 1
	}
	return 0
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
