package controllers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"ibmentor/db"
	"ibmentor/models"
)

// GetAnalytics returns the current platform snapshot and stores it for the
// history chart.
func (ac *AdminController) GetAnalytics(c *gin.Context) {
	dbCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	now := time.Now()
	thirtyDaysAgo := now.AddDate(0, 0, -30)
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	users := ac.store.Collection(db.ColUsers)
	totalUsers, _ := users.CountDocuments(dbCtx, bson.M{})
	activeUsers, _ := users.CountDocuments(dbCtx, bson.M{
		"updatedAt": bson.M{"$gte": thirtyDaysAgo},
	})
	newUsersToday, _ := users.CountDocuments(dbCtx, bson.M{
		"createdAt": bson.M{"$gte": todayStart},
	})

	sessions := ac.store.Collection(db.ColSessions)
	totalSessions, _ := sessions.CountDocuments(dbCtx, bson.M{})
	sessionsToday, _ := sessions.CountDocuments(dbCtx, bson.M{
		"updatedAt": bson.M{"$gte": todayStart},
	})

	essays := ac.store.Collection(db.ColEssays)
	totalEssays, _ := essays.CountDocuments(dbCtx, bson.M{})
	essaysToday, _ := essays.CountDocuments(dbCtx, bson.M{
		"createdAt": bson.M{"$gte": todayStart},
	})

	totalDecks, _ := ac.store.Collection(db.ColDecks).CountDocuments(dbCtx, bson.M{})
	totalPosts, _ := ac.store.Collection(db.ColPosts).CountDocuments(dbCtx, bson.M{})
	totalComments, _ := ac.store.Collection(db.ColComments).CountDocuments(dbCtx, bson.M{})

	snapshot := models.AnalyticsSnapshot{
		ID:            primitive.NewObjectID(),
		Timestamp:     now,
		TotalUsers:    totalUsers,
		ActiveUsers:   activeUsers,
		NewUsersToday: newUsersToday,
		TotalSessions: totalSessions,
		SessionsToday: sessionsToday,
		TotalEssays:   totalEssays,
		EssaysToday:   essaysToday,
		TotalDecks:    totalDecks,
		TotalPosts:    totalPosts,
		TotalComments: totalComments,
	}

	// Historical tracking; a failed insert is not worth failing the read.
	ac.store.Collection(db.ColSnapshots).InsertOne(dbCtx, snapshot)

	c.JSON(http.StatusOK, gin.H{
		"totalUsers":    snapshot.TotalUsers,
		"activeUsers":   snapshot.ActiveUsers,
		"newUsersToday": snapshot.NewUsersToday,
		"totalSessions": snapshot.TotalSessions,
		"sessionsToday": snapshot.SessionsToday,
		"totalEssays":   snapshot.TotalEssays,
		"essaysToday":   snapshot.EssaysToday,
		"totalDecks":    snapshot.TotalDecks,
		"totalPosts":    snapshot.TotalPosts,
		"totalComments": snapshot.TotalComments,
		"timestamp":     snapshot.Timestamp.Format(time.RFC3339),
	})
}

// GetAnalyticsHistory returns stored snapshots over the requested window.
func (ac *AdminController) GetAnalyticsHistory(c *gin.Context) {
	days := 7
	if daysStr := c.Query("days"); daysStr != "" {
		if parsedDays, err := strconv.Atoi(daysStr); err == nil && parsedDays > 0 && parsedDays <= 90 {
			days = parsedDays
		}
	}

	dbCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	since := time.Now().AddDate(0, 0, -days)
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})
	cursor, err := ac.store.Collection(db.ColSnapshots).Find(dbCtx, bson.M{
		"timestamp": bson.M{"$gte": since},
	}, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch analytics history"})
		return
	}
	var snapshots []models.AnalyticsSnapshot
	if err := cursor.All(dbCtx, &snapshots); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode analytics history"})
		return
	}
	if snapshots == nil {
		snapshots = []models.AnalyticsSnapshot{}
	}
	c.JSON(http.StatusOK, gin.H{"snapshots": snapshots, "days": days})
}

// GetActionLogs returns the moderation audit trail, newest first.
func (ac *AdminController) GetActionLogs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if limit < 1 || limit > 200 {
		limit = 50
	}
	if page < 1 {
		page = 1
	}

	dbCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logs := ac.store.Collection(db.ColActionLogs)
	total, err := logs.CountDocuments(dbCtx, bson.M{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count action logs"})
		return
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64((page - 1) * limit))
	cursor, err := logs.Find(dbCtx, bson.M{}, findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch action logs"})
		return
	}
	var rows []models.AdminActionLog
	if err := cursor.All(dbCtx, &rows); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode action logs"})
		return
	}
	if rows == nil {
		rows = []models.AdminActionLog{}
	}

	c.JSON(http.StatusOK, gin.H{
		"logs":  rows,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}
