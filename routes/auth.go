package routes

import (
	"github.com/gin-gonic/gin"

	"ibmentor/controllers"
)

// SetupAuthRoutes mounts the public identity endpoints.
func SetupAuthRoutes(router *gin.Engine, ctrl *controllers.AuthController) {
	auth := router.Group("/auth")
	{
		auth.POST("/signup", ctrl.SignUp)
		auth.POST("/verify-email", ctrl.VerifyEmail)
		auth.POST("/login", ctrl.Login)
		auth.POST("/forgot-password", ctrl.ForgotPassword)
		auth.POST("/verify-forgot-password", ctrl.VerifyForgotPassword)
		auth.GET("/verify-token", ctrl.VerifyToken)
	}
}
