package routes

import (
	"github.com/gin-gonic/gin"

	"ibmentor/controllers"
)

// SetupProfileRoutes mounts profile endpoints on the authenticated group.
func SetupProfileRoutes(rg *gin.RouterGroup, ctrl *controllers.ProfileController) {
	rg.GET("/profile", ctrl.GetProfile)
	rg.PUT("/profile", ctrl.UpdateProfile)
	rg.POST("/profile/avatar", ctrl.UploadAvatar)

	rg.GET("/users/:id/profile", ctrl.GetUserProfile)
}
