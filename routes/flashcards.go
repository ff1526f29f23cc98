package routes

import (
	"github.com/gin-gonic/gin"

	"ibmentor/controllers"
)

// SetupFlashcardRoutes mounts deck and card endpoints on the authenticated
// group.
func SetupFlashcardRoutes(rg *gin.RouterGroup, ctrl *controllers.FlashcardController) {
	rg.POST("/flashcards/generate", ctrl.Generate)

	rg.GET("/decks", ctrl.ListDecks)
	rg.GET("/decks/:id", ctrl.GetDeck)
	rg.DELETE("/decks/:id", ctrl.DeleteDeck)
	rg.POST("/decks/:id/cards", ctrl.AddCard)

	rg.POST("/cards/:cardId/review", ctrl.ReviewCard)
	rg.DELETE("/cards/:cardId", ctrl.DeleteCard)
}
