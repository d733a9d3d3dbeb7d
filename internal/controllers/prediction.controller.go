package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"medexpenses/internal/ml"
	"medexpenses/internal/models"
)

type PredictionController struct {
	predictor ml.Predictor
}

func NewPredictionController(predictor ml.Predictor) *PredictionController {
	return &PredictionController{predictor: predictor}
}

// PredictCharges godoc
// @Summary Estimate yearly medical charges
// @Description Numeric fields may be sent as JSON numbers or numeric strings. Unknown regions are not rejected.
// @Tags prediction
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body models.PredictionRequest true "Patient profile"
// @Success 200 {object} models.PredictionResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse "Model artifact unavailable"
// @Router /ai/charges_prediction [post]
func (pc *PredictionController) PredictCharges(c *gin.Context) {
	var req models.PredictionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	prediction, err := pc.predictor.Predict(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Prediction failed")
		return
	}

	c.JSON(http.StatusOK, models.PredictionResponse{
		ResponseMessage: fmt.Sprintf("Charges prediction: %.2f", prediction.Charges),
		Charges:         prediction.Charges,
		Cached:          prediction.Cached,
	})
}
