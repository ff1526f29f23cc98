package routes

import (
	"github.com/gin-gonic/gin"

	"ibmentor/controllers"
)

// SetupCommunityRoutes mounts the feed endpoints on the authenticated group.
func SetupCommunityRoutes(rg *gin.RouterGroup, ctrl *controllers.SocialController) {
	rg.POST("/posts", ctrl.CreatePost)
	rg.GET("/posts", ctrl.GetFeed)
	rg.GET("/posts/:id", ctrl.GetPost)
	rg.DELETE("/posts/:id", ctrl.DeletePost)

	rg.POST("/posts/:id/like", ctrl.ToggleLike)
	rg.GET("/posts/:id/likes", ctrl.GetLikes)

	rg.POST("/posts/:id/comments", ctrl.CreateComment)
	rg.GET("/posts/:id/comments", ctrl.ListComments)
	rg.DELETE("/comments/:commentId", ctrl.DeleteComment)

	rg.POST("/users/:id/follow", ctrl.FollowUser)
	rg.DELETE("/users/:id/follow", ctrl.UnfollowUser)
	rg.GET("/users/:id/followers", ctrl.ListFollowers)
	rg.GET("/users/:id/following", ctrl.ListFollowing)

	rg.POST("/stories", ctrl.CreateStory)
	rg.GET("/stories", ctrl.ListStories)
	rg.DELETE("/stories/:id", ctrl.DeleteStory)
}
