package routes

import (
	"github.com/gin-gonic/gin"

	"medexpenses/internal/controllers"
)

func RegisterUserRoutes(router gin.IRouter, userController *controllers.UserController) {
	userRoutes := router.Group("/users")
	{
		userRoutes.POST("/auth", userController.Authenticate)
		userRoutes.GET("", userController.GetUsers)
		userRoutes.POST("", userController.CreateUser)
		userRoutes.GET("/roles", userController.GetRoles)
		userRoutes.GET("/:id", userController.GetUserByID)
		userRoutes.PUT("/:id", userController.UpdateUser)
		userRoutes.DELETE("/:id", userController.DeleteUser)
	}
}
