package routes

import (
	"github.com/gin-gonic/gin"

	"ibmentor/websocket"
)

// SetupStudyRoomRoutes mounts the study room websocket and its lobby listing.
// The websocket endpoint lives outside the auth group: browsers cannot attach
// an Authorization header to a websocket dial, so the handler checks the token
// it receives as a query parameter instead.
func SetupStudyRoomRoutes(router *gin.Engine, rg *gin.RouterGroup, hub *websocket.Hub) {
	router.GET("/ws/study-room", hub.StudyRoomHandler)

	rg.GET("/rooms", hub.RoomList)
}
