package routes

import (
	"github.com/gin-gonic/gin"

	"ibmentor/controllers"
)

// SetupEssayRoutes mounts essay marking endpoints on the authenticated group.
func SetupEssayRoutes(rg *gin.RouterGroup, ctrl *controllers.EssayController) {
	rg.POST("/essays/mark", ctrl.Mark)
	rg.GET("/essays", ctrl.ListEssays)
	rg.GET("/essays/:id", ctrl.GetEssay)
	rg.POST("/essays/:id/model-answer", ctrl.ModelAnswer)
}
