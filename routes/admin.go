package routes

import (
	"github.com/casbin/casbin/v2"
	"github.com/gin-gonic/gin"

	"ibmentor/controllers"
	"ibmentor/db"
	"ibmentor/middlewares"
)

// SetupAdminRoutes mounts staff login plus the protected admin surface.
// There is no admin signup; staff accounts come from the addadmin tool.
func SetupAdminRoutes(router *gin.Engine, ctrl *controllers.AdminController, store *db.Store, enforcer *casbin.Enforcer, jwtSecret string) {
	adminPublic := router.Group("/admin")
	{
		adminPublic.POST("/login", ctrl.Login)
	}

	admin := router.Group("/admin")
	admin.Use(middlewares.AdminAuth(jwtSecret, store))
	{
		admin.GET("/analytics", middlewares.RequirePermission(enforcer, "analytics", "read"), ctrl.GetAnalytics)
		admin.GET("/analytics/history", middlewares.RequirePermission(enforcer, "analytics", "read"), ctrl.GetAnalyticsHistory)
		admin.GET("/logs", middlewares.RequirePermission(enforcer, "analytics", "read"), ctrl.GetActionLogs)

		admin.GET("/users", middlewares.RequirePermission(enforcer, "user", "read"), ctrl.ListUsers)
		admin.PUT("/users/:id/tier", middlewares.RequirePermission(enforcer, "user", "update"), ctrl.UpdateUserTier)

		admin.DELETE("/posts/:id", middlewares.RequirePermission(enforcer, "post", "delete"), ctrl.DeletePost)
		admin.DELETE("/comments/:id", middlewares.RequirePermission(enforcer, "comment", "delete"), ctrl.DeleteComment)
	}
}
