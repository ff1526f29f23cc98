package routes

import (
	"github.com/gin-gonic/gin"

	"ibmentor/controllers"
)

// SetupTutorRoutes mounts chat, notes and the link helper on the
// authenticated group.
func SetupTutorRoutes(rg *gin.RouterGroup, ctrl *controllers.TutorController) {
	rg.POST("/chat", ctrl.Chat)
	rg.GET("/sessions", ctrl.ListSessions)
	rg.GET("/sessions/:id", ctrl.GetSession)
	rg.DELETE("/sessions/:id", ctrl.DeleteSession)

	rg.POST("/notes", ctrl.AddNote)
	rg.GET("/notes/sources", ctrl.ListNoteSources)
	rg.DELETE("/notes", ctrl.DeleteNotes)

	rg.POST("/api/answer-from-link", ctrl.AnswerFromLink)
}
