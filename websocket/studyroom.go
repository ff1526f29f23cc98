package websocket

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson"

	"ibmentor/db"
	"ibmentor/models"
	"ibmentor/services"
	"ibmentor/utils"
)

var upgrader = websocket.Upgrader{
	// In production, adjust the CheckOrigin function to allow only trusted origins.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const maxRoomMembers = 20

// Client is one connected room member.
type Client struct {
	Conn         *websocket.Conn
	UserID       string
	Username     string
	Email        string
	IsTyping     bool
	LastActivity time.Time
}

// Room is a live study room with its connected members.
type Room struct {
	Clients map[*websocket.Conn]*Client
	Subject string
	Mutex   sync.Mutex
}

// Message is the wire format both directions.
type Message struct {
	Type      string          `json:"type"`
	ID        string          `json:"id,omitempty"`
	Room      string          `json:"room,omitempty"`
	UserID    string          `json:"userId,omitempty"`
	Username  string          `json:"username,omitempty"`
	Content   string          `json:"content,omitempty"`
	Subject   string          `json:"subject,omitempty"`
	IsTyping  bool            `json:"isTyping,omitempty"`
	Timestamp int64           `json:"timestamp,omitempty"`
	Extra     json.RawMessage `json:"extra,omitempty"`
}

// Hub owns the live rooms. It is constructed once in main; there is no
// package-level registry.
type Hub struct {
	auth  *services.CognitoAuth
	store *db.Store

	rooms      map[string]*Room
	roomsMutex sync.Mutex
}

func NewHub(auth *services.CognitoAuth, store *db.Store) *Hub {
	return &Hub{
		auth:  auth,
		store: store,
		rooms: make(map[string]*Room),
	}
}

// StudyRoomHandler upgrades the connection and runs the client's read loop.
// Browsers cannot set headers on websocket dials, so the token rides a query
// parameter.
func (h *Hub) StudyRoomHandler(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		log.Println("WebSocket connection failed: missing token")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing token"})
		return
	}

	if err := utils.CheckTokenShape(token); err != nil {
		log.Printf("WebSocket connection failed: %v", err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}
	email, err := h.auth.UserEmail(c.Request.Context(), token)
	if err != nil {
		log.Printf("WebSocket connection failed: invalid token - %v", err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	roomID := c.Query("room")
	if roomID == "" {
		log.Println("WebSocket connection failed: missing room parameter")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing room parameter"})
		return
	}

	userID, username, err := h.userDetails(c, email)
	if err != nil {
		log.Printf("Failed to get user details: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get user details"})
		return
	}

	h.roomsMutex.Lock()
	room, exists := h.rooms[roomID]
	if !exists {
		room = &Room{Clients: make(map[*websocket.Conn]*Client), Subject: c.Query("subject")}
		h.rooms[roomID] = room
		log.Printf("Created new room: %s", roomID)
	}
	h.roomsMutex.Unlock()

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Println("WebSocket upgrade error:", err)
		return
	}

	room.Mutex.Lock()
	if len(room.Clients) >= maxRoomMembers {
		log.Printf("Room %s is full. Closing connection.", roomID)
		room.Mutex.Unlock()
		conn.Close()
		return
	}
	client := &Client{
		Conn:         conn,
		UserID:       userID,
		Username:     username,
		Email:        email,
		LastActivity: time.Now(),
	}
	room.Clients[conn] = client
	log.Printf("Client %s joined room %s (total clients: %d)", username, roomID, len(room.Clients))
	room.Mutex.Unlock()

	h.broadcastPresence(room, roomID)

	h.readLoop(room, roomID, conn, client)
}

// userDetails loads the member's profile for presence display.
func (h *Hub) userDetails(c *gin.Context, email string) (string, string, error) {
	var user models.User
	err := h.store.Collection(db.ColUsers).FindOne(c.Request.Context(), bson.M{"email": email}).Decode(&user)
	if err != nil {
		return "", "", err
	}
	name := user.DisplayName
	if name == "" {
		name = utils.ExtractNameFromEmail(email)
	}
	return user.ID.Hex(), name, nil
}

func (h *Hub) readLoop(room *Room, roomID string, conn *websocket.Conn, client *Client) {
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			log.Printf("WebSocket read error in room %s: %v", roomID, err)
			h.removeClient(room, roomID, conn)
			h.broadcastPresence(room, roomID)
			break
		}

		var message Message
		if err := json.Unmarshal(msg, &message); err != nil {
			log.Printf("Failed to parse message: %v", err)
			continue
		}

		room.Mutex.Lock()
		client.LastActivity = time.Now()
		room.Mutex.Unlock()

		switch message.Type {
		case "join":
			log.Printf("Client %s joined room %s", client.Username, roomID)
		case "message":
			h.handleChatMessage(room, conn, message, client)
		case "typing":
			h.handleTypingIndicator(room, conn, message, client)
		case "leave":
			log.Printf("Client %s left room %s", client.Username, roomID)
			h.removeClient(room, roomID, conn)
			h.broadcastPresence(room, roomID)
			conn.Close()
			return
		default:
			log.Printf("Unknown message type %q from %s in room %s", message.Type, client.Username, roomID)
		}
	}

	log.Printf("Connection closed in room %s", roomID)
}

// removeClient drops the connection from the room, deleting the room once
// empty.
func (h *Hub) removeClient(room *Room, roomID string, conn *websocket.Conn) {
	room.Mutex.Lock()
	delete(room.Clients, conn)
	remaining := len(room.Clients)
	room.Mutex.Unlock()
	log.Printf("Client removed from room %s (total clients: %d)", roomID, remaining)

	if remaining == 0 {
		h.roomsMutex.Lock()
		delete(h.rooms, roomID)
		h.roomsMutex.Unlock()
		log.Printf("Room %s deleted as it became empty", roomID)
	}
}

// handleChatMessage relays a chat message to everyone else in the room.
func (h *Hub) handleChatMessage(room *Room, conn *websocket.Conn, message Message, client *Client) {
	if message.Timestamp == 0 {
		message.Timestamp = time.Now().Unix()
	}

	room.Mutex.Lock()
	client.IsTyping = false
	for clientConn := range room.Clients {
		if clientConn == conn {
			continue
		}
		response := Message{
			Type:      "message",
			ID:        uuid.New().String(),
			UserID:    client.UserID,
			Username:  client.Username,
			Content:   message.Content,
			Timestamp: message.Timestamp,
		}
		if err := clientConn.WriteJSON(response); err != nil {
			log.Printf("WebSocket write error: %v", err)
		}
	}
	room.Mutex.Unlock()
}

// handleTypingIndicator relays typing state to everyone else in the room.
func (h *Hub) handleTypingIndicator(room *Room, conn *websocket.Conn, message Message, client *Client) {
	room.Mutex.Lock()
	client.IsTyping = message.IsTyping
	for clientConn := range room.Clients {
		if clientConn == conn {
			continue
		}
		response := Message{
			Type:     "typingIndicator",
			UserID:   client.UserID,
			Username: client.Username,
			IsTyping: message.IsTyping,
		}
		if err := clientConn.WriteJSON(response); err != nil {
			log.Printf("WebSocket write error: %v", err)
		}
	}
	room.Mutex.Unlock()
}

// broadcastPresence sends the current member list to everyone in the room.
func (h *Hub) broadcastPresence(room *Room, roomID string) {
	type member struct {
		UserID   string `json:"userId"`
		Username string `json:"username"`
	}

	room.Mutex.Lock()
	members := make([]member, 0, len(room.Clients))
	for _, cl := range room.Clients {
		members = append(members, member{UserID: cl.UserID, Username: cl.Username})
	}
	payload, err := json.Marshal(members)
	if err != nil {
		room.Mutex.Unlock()
		return
	}
	for clientConn := range room.Clients {
		response := Message{
			Type:  "presence",
			Room:  roomID,
			Extra: payload,
		}
		if err := clientConn.WriteJSON(response); err != nil {
			log.Printf("WebSocket write error in room %s: %v", roomID, err)
		}
	}
	room.Mutex.Unlock()
}

// RoomList returns currently open rooms for the lobby.
func (h *Hub) RoomList(c *gin.Context) {
	type roomInfo struct {
		ID      string `json:"id"`
		Subject string `json:"subject,omitempty"`
		Members int    `json:"members"`
	}

	h.roomsMutex.Lock()
	list := make([]roomInfo, 0, len(h.rooms))
	for id, room := range h.rooms {
		room.Mutex.Lock()
		list = append(list, roomInfo{ID: id, Subject: room.Subject, Members: len(room.Clients)})
		room.Mutex.Unlock()
	}
	h.roomsMutex.Unlock()

	c.JSON(http.StatusOK, gin.H{"rooms": list})
}
