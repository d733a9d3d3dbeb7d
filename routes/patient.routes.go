package routes

import (
	"github.com/gin-gonic/gin"

	"medexpenses/internal/controllers"
)

func RegisterPatientRoutes(router gin.IRouter, patientController *controllers.PatientController) {
	patientRoutes := router.Group("/patients")
	{
		patientRoutes.GET("", patientController.GetPatients)
		patientRoutes.POST("", patientController.CreatePatient)
		patientRoutes.GET("/regions", patientController.GetRegions)
		patientRoutes.GET("/smokers", patientController.GetSmokers)
		patientRoutes.GET("/sexes", patientController.GetSexes)
		patientRoutes.GET("/:id", patientController.GetPatientByID)
		patientRoutes.PUT("/:id", patientController.UpdatePatient)
		patientRoutes.DELETE("/:id", patientController.DeletePatient)
	}
}
