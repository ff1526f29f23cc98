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

// EssayController owns essay submission, marking and the model-answer step.
type EssayController struct {
	store   *db.Store
	marker  *services.MarkerService
	limiter *usage.Limiter
	gamify  *services.GamifyService
}

func NewEssayController(store *db.Store, marker *services.MarkerService, limiter *usage.Limiter, gamify *services.GamifyService) *EssayController {
	return &EssayController{store: store, marker: marker, limiter: limiter, gamify: gamify}
}

// Mark stores the submission, runs the examiner and stores the feedback. The
// essay row exists from the moment of submission so a failed marking run
// leaves it visible as submitted rather than losing the student's work.
func (ec *EssayController) Mark(c *gin.Context) {
	var req structs.MarkEssayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	userID := c.GetString("userId")
	tier := c.GetString("userTier")

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	q, allowed, err := ec.limiter.Charge(ctx, userID, tier)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Usage check failed"})
		return
	}
	if !allowed {
		metrics.CountQuotaRejection()
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Daily AI limit reached", "used": q.Used, "limit": q.Limit, "resetAt": q.ResetAt})
		return
	}

	essays := ec.store.Collection(db.ColEssays)
	essay := models.Essay{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Subject:   req.Subject,
		PaperType: req.PaperType,
		Prompt:    req.Prompt,
		Body:      req.Body,
		Status:    models.EssayStatusSubmitted,
		CreatedAt: time.Now(),
	}
	if _, err := essays.InsertOne(ctx, essay); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save essay"})
		return
	}

	feedback, degraded, err := ec.marker.MarkEssay(ctx, tier, req.Subject, req.PaperType, req.Prompt, req.Body)
	if err != nil {
		log.Printf("Essay marking failed for %s: %v", userID, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "AI request failed", "message": err.Error(), "essayId": essay.ID.Hex()})
		return
	}

	now := time.Now()
	essay.Status = models.EssayStatusMarked
	essay.Feedback = &feedback
	essay.Degraded = degraded
	essay.MarkedAt = now
	update := bson.M{"$set": bson.M{
		"status":   models.EssayStatusMarked,
		"feedback": feedback,
		"degraded": degraded,
		"markedAt": now,
	}}
	if _, err := essays.UpdateOne(ctx, bson.M{"_id": essay.ID}, update); err != nil {
		log.Printf("Failed to store feedback on essay %s: %v", essay.ID.Hex(), err)
	}

	ec.gamify.Award(ctx, userID, services.PointsEssayMarked)
	c.JSON(http.StatusOK, gin.H{"essay": essay, "usage": q})
}

// ModelAnswer generates an exemplar answer for an already marked essay and
// stores it on the row.
func (ec *EssayController) ModelAnswer(c *gin.Context) {
	eid, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid essay ID"})
		return
	}
	userID := c.GetString("userId")
	tier := c.GetString("userTier")

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	essays := ec.store.Collection(db.ColEssays)
	var essay models.Essay
	if err := essays.FindOne(ctx, bson.M{"_id": eid, "userId": userID}).Decode(&essay); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Essay not found"})
		return
	}

	q, allowed, err := ec.limiter.Charge(ctx, userID, tier)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Usage check failed"})
		return
	}
	if !allowed {
		metrics.CountQuotaRejection()
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Daily AI limit reached", "used": q.Used, "limit": q.Limit, "resetAt": q.ResetAt})
		return
	}

	answer, degraded, err := ec.marker.ModelAnswer(ctx, tier, essay.Subject, essay.PaperType, essay.Prompt)
	if err != nil {
		log.Printf("Model answer failed for %s: %v", userID, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "AI request failed", "message": err.Error()})
		return
	}

	if essay.Feedback == nil {
		essay.Feedback = &models.EssayFeedback{}
	}
	essay.Feedback.ModelAnswer = answer.ModelAnswer
	essay.Feedback.ModelPoints = answer.MarkingPoints
	essay.Feedback.ModelSummary = answer.Summary
	update := bson.M{"$set": bson.M{
		"feedback.model_answer":  answer.ModelAnswer,
		"feedback.model_points":  answer.MarkingPoints,
		"feedback.model_summary": answer.Summary,
	}}
	if _, err := essays.UpdateOne(ctx, bson.M{"_id": eid}, update); err != nil {
		log.Printf("Failed to store model answer on essay %s: %v", eid.Hex(), err)
	}

	c.JSON(http.StatusOK, gin.H{"modelAnswer": answer, "degraded": degraded, "usage": q})
}

// ListEssays returns the user's submissions, newest first, without bodies.
func (ec *EssayController) ListEssays(c *gin.Context) {
	userID := c.GetString("userId")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(100)
	cursor, err := ec.store.Collection(db.ColEssays).Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch essays"})
		return
	}
	var essays []models.Essay
	if err := cursor.All(ctx, &essays); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch essays"})
		return
	}

	type essaySummary struct {
		ID           string    `json:"id"`
		Subject      string    `json:"subject"`
		PaperType    string    `json:"paperType,omitempty"`
		Prompt       string    `json:"prompt"`
		Status       string    `json:"status"`
		OverallScore float64   `json:"overallScore"`
		Degraded     bool      `json:"degraded,omitempty"`
		CreatedAt    time.Time `json:"createdAt"`
	}
	summaries := make([]essaySummary, len(essays))
	for i, e := range essays {
		score := 0.0
		if e.Feedback != nil {
			score = e.Feedback.OverallScore
		}
		summaries[i] = essaySummary{
			ID:           e.ID.Hex(),
			Subject:      e.Subject,
			PaperType:    e.PaperType,
			Prompt:       e.Prompt,
			Status:       e.Status,
			OverallScore: score,
			Degraded:     e.Degraded,
			CreatedAt:    e.CreatedAt,
		}
	}
	c.JSON(http.StatusOK, gin.H{"essays": summaries})
}

// GetEssay returns one full essay with its feedback.
func (ec *EssayController) GetEssay(c *gin.Context) {
	eid, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid essay ID"})
		return
	}
	userID := c.GetString("userId")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var essay models.Essay
	if err := ec.store.Collection(db.ColEssays).FindOne(ctx, bson.M{"_id": eid, "userId": userID}).Decode(&essay); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Essay not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"essay": essay})
}
