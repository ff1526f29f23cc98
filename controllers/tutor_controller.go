package controllers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"ibmentor/db"
	"ibmentor/internal/metrics"
	"ibmentor/internal/usage"
	"ibmentor/models"
	"ibmentor/services"
	"ibmentor/structs"
)

// TutorController owns the chat endpoints: sessions, notes and the
// answer-from-link helper.
type TutorController struct {
	store     *db.Store
	tutor     *services.TutorService
	retrieval *services.RetrievalService
	links     *services.LinkAnswerService
	limiter   *usage.Limiter
	gamify    *services.GamifyService
}

func NewTutorController(store *db.Store, tutor *services.TutorService, retrieval *services.RetrievalService, links *services.LinkAnswerService, limiter *usage.Limiter, gamify *services.GamifyService) *TutorController {
	return &TutorController{store: store, tutor: tutor, retrieval: retrieval, links: links, limiter: limiter, gamify: gamify}
}

// Chat runs one tutoring exchange and persists it onto the session.
func (tc *TutorController) Chat(c *gin.Context) {
	var req structs.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	userID := c.GetString("userId")
	tier := c.GetString("userTier")

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	sessions := tc.store.Collection(db.ColSessions)
	var session models.ChatSession
	isNew := req.SessionID == ""
	if isNew {
		now := time.Now()
		session = models.ChatSession{
			ID:        primitive.NewObjectID(),
			UserID:    userID,
			Subject:   req.Subject,
			Mode:      req.Mode,
			Messages:  []models.ChatMessage{},
			CreatedAt: now,
			UpdatedAt: now,
		}
	} else {
		sid, err := primitive.ObjectIDFromHex(req.SessionID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid session ID"})
			return
		}
		if err := sessions.FindOne(ctx, bson.M{"_id": sid, "userId": userID}).Decode(&session); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
			return
		}
	}

	treq := services.TutorRequest{
		Tier:        tier,
		Subject:     session.Subject,
		Mode:        req.Mode,
		Language:    req.Language,
		Message:     req.Message,
		History:     session.Messages,
		ResourceURL: req.ResourceURL,
	}

	// Greetings never reach the gateway, so they are free.
	var quota usage.Quota
	charged := false
	if !tc.tutor.IsGreeting(treq) {
		q, allowed, err := tc.limiter.Charge(ctx, userID, tier)
		if err != nil {
			log.Printf("Failed to charge usage for %s: %v", userID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Usage check failed"})
			return
		}
		quota, charged = q, true
		if !allowed {
			metrics.CountQuotaRejection()
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":   "Daily AI limit reached",
				"used":    q.Used,
				"limit":   q.Limit,
				"resetAt": q.ResetAt,
			})
			return
		}
	}

	reply, err := tc.tutor.Chat(ctx, userID, treq)
	if err != nil {
		log.Printf("Chat failed for %s: %v", userID, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "AI request failed", "message": err.Error()})
		return
	}

	now := time.Now()
	session.Messages = append(session.Messages,
		models.ChatMessage{Role: "user", Content: req.Message},
		models.ChatMessage{Role: "assistant", Content: reply.Content},
	)
	session.UpdatedAt = now
	if reply.Model != "" {
		session.LastModel = reply.Model
	}

	if isNew {
		if _, err := sessions.InsertOne(ctx, session); err != nil {
			log.Printf("Failed to save session for %s: %v", userID, err)
		}
	} else {
		update := bson.M{"$set": bson.M{
			"messages":  session.Messages,
			"lastModel": session.LastModel,
			"updatedAt": now,
		}}
		if _, err := sessions.UpdateOne(ctx, bson.M{"_id": session.ID}, update); err != nil {
			log.Printf("Failed to update session %s: %v", session.ID.Hex(), err)
		}
	}

	if charged {
		tc.gamify.Award(ctx, userID, services.PointsChat)
	}

	resp := gin.H{
		"reply":     reply.Content,
		"sessionId": session.ID.Hex(),
		"greeting":  reply.Greeting,
	}
	if reply.Model != "" {
		resp["model"] = reply.Model
	}
	if reply.ContextUsed > 0 {
		resp["contextUsed"] = reply.ContextUsed
	}
	if charged {
		resp["usage"] = quota
	}
	c.JSON(http.StatusOK, resp)
}

// ListSessions returns the user's sessions, most recent first, with a one
// line preview each.
func (tc *TutorController) ListSessions(c *gin.Context) {
	userID := c.GetString("userId")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "updatedAt", Value: -1}}).
		SetLimit(50)
	cursor, err := tc.store.Collection(db.ColSessions).Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch sessions"})
		return
	}
	var sessions []models.ChatSession
	if err := cursor.All(ctx, &sessions); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch sessions"})
		return
	}

	type sessionSummary struct {
		ID        string    `json:"id"`
		Subject   string    `json:"subject"`
		Mode      string    `json:"mode,omitempty"`
		LastModel string    `json:"lastModel,omitempty"`
		Preview   string    `json:"preview"`
		Messages  int       `json:"messages"`
		UpdatedAt time.Time `json:"updatedAt"`
	}

	summaries := make([]sessionSummary, len(sessions))
	for i, s := range sessions {
		preview := ""
		if len(s.Messages) > 0 {
			preview = s.Messages[0].Content
			if len(preview) > 80 {
				preview = preview[:80]
			}
		}
		summaries[i] = sessionSummary{
			ID:        s.ID.Hex(),
			Subject:   s.Subject,
			Mode:      s.Mode,
			LastModel: s.LastModel,
			Preview:   preview,
			Messages:  len(s.Messages),
			UpdatedAt: s.UpdatedAt,
		}
	}
	c.JSON(http.StatusOK, gin.H{"sessions": summaries})
}

// GetSession returns one full session with its message history.
func (tc *TutorController) GetSession(c *gin.Context) {
	sid, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid session ID"})
		return
	}
	userID := c.GetString("userId")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var session models.ChatSession
	if err := tc.store.Collection(db.ColSessions).FindOne(ctx, bson.M{"_id": sid, "userId": userID}).Decode(&session); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

// DeleteSession removes one of the user's sessions.
func (tc *TutorController) DeleteSession(c *gin.Context) {
	sid, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid session ID"})
		return
	}
	userID := c.GetString("userId")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	res, err := tc.store.Collection(db.ColSessions).DeleteOne(ctx, bson.M{"_id": sid, "userId": userID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete session"})
		return
	}
	if res.DeletedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Session deleted"})
}

// AddNote ingests pasted notes for retrieval during chats.
func (tc *TutorController) AddNote(c *gin.Context) {
	var req structs.AddNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	userID := c.GetString("userId")

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	chunks, err := tc.retrieval.AddNote(ctx, userID, req.Subject, req.Source, req.Text)
	if err != nil {
		log.Printf("Failed to add notes for %s: %v", userID, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to store notes", "message": err.Error()})
		return
	}

	tc.gamify.Award(ctx, userID, services.PointsNoteUploaded)
	c.JSON(http.StatusOK, gin.H{"message": "Notes stored", "chunks": chunks})
}

// ListNoteSources lists the uploads the user has stored for a subject.
func (tc *TutorController) ListNoteSources(c *gin.Context) {
	subject := c.Query("subject")
	if subject == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "subject query parameter is required"})
		return
	}
	userID := c.GetString("userId")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sources, err := tc.retrieval.ListSources(ctx, userID, subject)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list notes"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"subject": subject, "sources": sources})
}

// DeleteNotes removes stored notes for a subject, optionally one source.
func (tc *TutorController) DeleteNotes(c *gin.Context) {
	var req structs.DeleteNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	userID := c.GetString("userId")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	deleted, err := tc.retrieval.DeleteNotes(ctx, userID, req.Subject, req.Source)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete notes"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

// AnswerFromLink answers a question from a fetched web page.
func (tc *TutorController) AnswerFromLink(c *gin.Context) {
	var req structs.AnswerFromLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	userID := c.GetString("userId")
	tier := c.GetString("userTier")

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	q, allowed, err := tc.limiter.Charge(ctx, userID, tier)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Usage check failed"})
		return
	}
	if !allowed {
		metrics.CountQuotaRejection()
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Daily AI limit reached", "used": q.Used, "limit": q.Limit, "resetAt": q.ResetAt})
		return
	}

	answer, err := tc.links.Answer(ctx, req.URL, req.Question, req.Subject)
	if err != nil {
		log.Printf("Answer from link failed for %s: %v", userID, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to answer from link", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"answer": answer, "usage": q})
}
