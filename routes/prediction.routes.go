package routes

import (
	"github.com/gin-gonic/gin"

	"medexpenses/internal/controllers"
)

func RegisterPredictionRoutes(router gin.IRouter, predictionController *controllers.PredictionController) {
	router.Group("/ai").POST("/charges_prediction", predictionController.PredictCharges)
}
