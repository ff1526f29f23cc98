package routes

import (
	"github.com/gin-gonic/gin"

	"ibmentor/controllers"
)

// SetupDashboardRoutes mounts the home snapshot and leaderboard on the
// authenticated group.
func SetupDashboardRoutes(rg *gin.RouterGroup, ctrl *controllers.DashboardController) {
	rg.GET("/dashboard", ctrl.Dashboard)
	rg.GET("/leaderboard", ctrl.Leaderboard)
}
