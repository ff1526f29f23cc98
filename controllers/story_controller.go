package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"ibmentor/db"
	"ibmentor/models"
	"ibmentor/utils"
)

const storyLifetime = 24 * time.Hour

// CreateStory uploads a story image that expires after a day.
func (sc *SocialController) CreateStory(c *gin.Context) {
	userID := c.GetString("userId")

	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing image file"})
		return
	}
	url, err := utils.SaveImageUpload(c, file, sc.uploadDir, utils.BucketStories)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	var user models.User
	if err := sc.store.Collection(db.ColUsers).FindOne(ctx, bson.M{"_id": oid}).Decode(&user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user"})
		return
	}

	now := time.Now()
	story := models.Story{
		ID:          primitive.NewObjectID(),
		UserID:      userID,
		DisplayName: user.DisplayName,
		AvatarURL:   user.AvatarURL,
		ImageURL:    url,
		CreatedAt:   now,
		ExpiresAt:   now.Add(storyLifetime),
	}
	if _, err := sc.store.Collection(db.ColStories).InsertOne(ctx, story); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create story"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"story": story, "message": "Story created successfully"})
}

// ListStories returns currently live stories grouped by author, the author
// with the freshest story first. The TTL index reaps expired rows eventually;
// the filter hides them in the gap.
func (sc *SocialController) ListStories(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(200)
	cursor, err := sc.store.Collection(db.ColStories).Find(ctx, bson.M{"expiresAt": bson.M{"$gt": time.Now()}}, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stories"})
		return
	}
	var stories []models.Story
	if err := cursor.All(ctx, &stories); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stories"})
		return
	}

	type authorStories struct {
		UserID      string         `json:"userId"`
		DisplayName string         `json:"displayName"`
		AvatarURL   string         `json:"avatarUrl,omitempty"`
		Stories     []models.Story `json:"stories"`
	}
	grouped := make([]*authorStories, 0)
	byAuthor := make(map[string]*authorStories)
	for _, s := range stories {
		group, ok := byAuthor[s.UserID]
		if !ok {
			group = &authorStories{UserID: s.UserID, DisplayName: s.DisplayName, AvatarURL: s.AvatarURL}
			byAuthor[s.UserID] = group
			grouped = append(grouped, group)
		}
		group.Stories = append(group.Stories, s)
	}
	c.JSON(http.StatusOK, gin.H{"stories": grouped})
}

// DeleteStory removes the user's own story before it expires.
func (sc *SocialController) DeleteStory(c *gin.Context) {
	sid, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid story ID"})
		return
	}
	userID := c.GetString("userId")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	res, err := sc.store.Collection(db.ColStories).DeleteOne(ctx, bson.M{"_id": sid, "userId": userID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete story"})
		return
	}
	if res.DeletedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Story not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Story deleted successfully"})
}
