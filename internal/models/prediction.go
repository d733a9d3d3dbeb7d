package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FlexNumber accepts a JSON number or a numeric string ("35", "18.2").
// The raw text is kept so parsing errors surface with their cause.
type FlexNumber string

func (n *FlexNumber) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*n = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = FlexNumber(strings.TrimSpace(s))
		return nil
	}
	*n = FlexNumber(b)
	return nil
}

func (n FlexNumber) Float64() (float64, error) {
	if n == "" {
		return 0, fmt.Errorf("value is empty")
	}
	return strconv.ParseFloat(string(n), 64)
}

// PredictionRequest is the body of POST /ai/charges_prediction.
type PredictionRequest struct {
	Age      FlexNumber `json:"age" swaggertype:"string" example:"35"`
	Sex      string     `json:"sex" example:"female"`
	BMI      FlexNumber `json:"bmi" swaggertype:"string" example:"18.2"`
	Children FlexNumber `json:"children" swaggertype:"string" example:"0"`
	Smoker   string     `json:"smoker" example:"no"`
	Region   string     `json:"region" example:"southwest"`
}

type PredictionResponse struct {
	ResponseMessage string  `json:"response_message" example:"Charges prediction: 5123.45"`
	Charges         float64 `json:"charges" example:"5123.45"`
	Cached          bool    `json:"cached" example:"false"`
}
