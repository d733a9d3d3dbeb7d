package routes

import (
	"github.com/gin-gonic/gin"

	"medexpenses/internal/controllers"
	"medexpenses/internal/middleware"
)

// Controllers bundles the handlers mounted by SetupRouter.
type Controllers struct {
	Patients   *controllers.PatientController
	Users      *controllers.UserController
	Prediction *controllers.PredictionController
	Health     *controllers.HealthController
}

// PublicPaths stay reachable without a token when JWT auth is on.
var PublicPaths = []string{"/health", "/users/auth", "/swagger"}

// SetupRouter builds the API engine. An empty jwtSecret leaves every route open.
func SetupRouter(ctrl Controllers, jwtSecret string) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Logger(), middleware.Recovery(), middleware.NoStore())
	if jwtSecret != "" {
		router.Use(middleware.AuthMiddleware(jwtSecret, PublicPaths...))
	}

	router.GET("/health", ctrl.Health.Health)
	RegisterSwaggerRoutes(router)
	RegisterUserRoutes(router, ctrl.Users)
	RegisterPatientRoutes(router, ctrl.Patients)
	RegisterPredictionRoutes(router, ctrl.Prediction)
	return router
}
