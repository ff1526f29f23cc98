package controllers

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"ibmentor/db"
	"ibmentor/internal/usage"
	"ibmentor/models"
	"ibmentor/services"
)

// DashboardController assembles the home-screen snapshot and the leaderboard.
type DashboardController struct {
	store   *db.Store
	limiter *usage.Limiter
	gamify  *services.GamifyService
}

func NewDashboardController(store *db.Store, limiter *usage.Limiter, gamify *services.GamifyService) *DashboardController {
	return &DashboardController{store: store, limiter: limiter, gamify: gamify}
}

// Dashboard returns everything the home screen shows in one call: profile
// progress, today's AI usage, study totals and recent work.
func (dc *DashboardController) Dashboard(c *gin.Context) {
	userID := c.GetString("userId")
	tier := c.GetString("userTier")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	var user models.User
	if err := dc.store.Collection(db.ColUsers).FindOne(ctx, bson.M{"_id": oid}).Decode(&user); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	quota, err := dc.limiter.Peek(ctx, userID, tier)
	if err != nil {
		log.Printf("Failed to peek usage for %s: %v", userID, err)
	}

	owned := bson.M{"userId": userID}
	decks, _ := dc.store.Collection(db.ColDecks).CountDocuments(ctx, owned)
	cards, _ := dc.store.Collection(db.ColCards).CountDocuments(ctx, owned)
	essays, _ := dc.store.Collection(db.ColEssays).CountDocuments(ctx, owned)
	sessions, _ := dc.store.Collection(db.ColSessions).CountDocuments(ctx, owned)
	notes, _ := dc.store.Collection(db.ColNotes).CountDocuments(ctx, owned)

	todayStart := time.Now().UTC().Truncate(24 * time.Hour)
	reviewsToday, _ := dc.store.Collection(db.ColCards).CountDocuments(ctx, bson.M{
		"userId":         userID,
		"lastReviewedAt": bson.M{"$gte": todayStart},
	})

	recentEssays := dc.recentEssays(ctx, userID)
	recentSessions := dc.recentSessions(ctx, userID)

	c.JSON(http.StatusOK, gin.H{
		"profile": gin.H{
			"displayName": user.DisplayName,
			"tier":        user.Tier,
			"points":      user.Points,
			"streak":      user.Streak,
			"subjects":    user.Subjects,
		},
		"usage": quota,
		"totals": gin.H{
			"decks":        decks,
			"cards":        cards,
			"essays":       essays,
			"sessions":     sessions,
			"noteChunks":   notes,
			"reviewsToday": reviewsToday,
		},
		"recentEssays":   recentEssays,
		"recentSessions": recentSessions,
	})
}

func (dc *DashboardController) recentEssays(ctx context.Context, userID string) []gin.H {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(5)
	cursor, err := dc.store.Collection(db.ColEssays).Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		log.Printf("Failed to fetch recent essays: %v", err)
		return []gin.H{}
	}
	var essays []models.Essay
	if err := cursor.All(ctx, &essays); err != nil {
		log.Printf("Failed to decode recent essays: %v", err)
		return []gin.H{}
	}

	out := make([]gin.H, len(essays))
	for i, e := range essays {
		score := 0.0
		if e.Feedback != nil {
			score = e.Feedback.OverallScore
		}
		out[i] = gin.H{
			"id":           e.ID.Hex(),
			"subject":      e.Subject,
			"prompt":       e.Prompt,
			"status":       e.Status,
			"overallScore": score,
			"createdAt":    e.CreatedAt,
		}
	}
	return out
}

func (dc *DashboardController) recentSessions(ctx context.Context, userID string) []gin.H {
	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}}).SetLimit(5)
	cursor, err := dc.store.Collection(db.ColSessions).Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		log.Printf("Failed to fetch recent sessions: %v", err)
		return []gin.H{}
	}
	var sessions []models.ChatSession
	if err := cursor.All(ctx, &sessions); err != nil {
		log.Printf("Failed to decode recent sessions: %v", err)
		return []gin.H{}
	}

	out := make([]gin.H, len(sessions))
	for i, s := range sessions {
		out[i] = gin.H{
			"id":        s.ID.Hex(),
			"subject":   s.Subject,
			"messages":  len(s.Messages),
			"updatedAt": s.UpdatedAt,
		}
	}
	return out
}

// Leaderboard returns the points ranking with the caller's row marked.
func (dc *DashboardController) Leaderboard(c *gin.Context) {
	userID := c.GetString("userId")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	entries, err := dc.gamify.Leaderboard(ctx, userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch leaderboard data"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"leaderboard": entries})
}
