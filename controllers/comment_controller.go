package controllers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"ibmentor/db"
	"ibmentor/models"
	"ibmentor/structs"
)

// CreateComment adds a comment to a post.
func (sc *SocialController) CreateComment(c *gin.Context) {
	postObjectID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return
	}
	var req structs.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	userID := c.GetString("userId")
	email := c.GetString("userEmail")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	posts := sc.store.Collection(db.ColPosts)
	n, err := posts.CountDocuments(ctx, bson.M{"_id": postObjectID})
	if err != nil || n == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

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

	comment := models.Comment{
		ID:          primitive.NewObjectID(),
		PostID:      postObjectID,
		UserID:      userID,
		Email:       email,
		DisplayName: user.DisplayName,
		AvatarURL:   user.AvatarURL,
		Body:        req.Content,
		CreatedAt:   time.Now(),
	}
	if _, err := sc.store.Collection(db.ColComments).InsertOne(ctx, comment); err != nil {
		log.Printf("Failed to create comment: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create comment"})
		return
	}
	if _, err := posts.UpdateOne(ctx, bson.M{"_id": postObjectID}, bson.M{"$inc": bson.M{"commentCount": 1}}); err != nil {
		log.Printf("Failed to bump comment count on post %s: %v", postObjectID.Hex(), err)
	}
	c.JSON(http.StatusCreated, gin.H{"comment": comment, "message": "Comment added successfully"})
}

// ListComments returns a post's comments, oldest first.
func (sc *SocialController) ListComments(c *gin.Context) {
	postObjectID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := sc.store.Collection(db.ColComments).Find(ctx, bson.M{"postId": postObjectID}, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch comments"})
		return
	}
	var comments []models.Comment
	if err := cursor.All(ctx, &comments); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch comments"})
		return
	}
	if comments == nil {
		comments = []models.Comment{}
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

// DeleteComment removes the user's own comment.
func (sc *SocialController) DeleteComment(c *gin.Context) {
	commentObjectID, err := primitive.ObjectIDFromHex(c.Param("commentId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid comment ID"})
		return
	}
	userID := c.GetString("userId")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var comment models.Comment
	err = sc.store.Collection(db.ColComments).
		FindOneAndDelete(ctx, bson.M{"_id": commentObjectID, "userId": userID}).
		Decode(&comment)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusForbidden, gin.H{"error": "Comment not found or you don't have permission"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete comment"})
		return
	}

	if _, err := sc.store.Collection(db.ColPosts).UpdateOne(ctx, bson.M{"_id": comment.PostID}, bson.M{"$inc": bson.M{"commentCount": -1}}); err != nil {
		log.Printf("Failed to bump comment count on post %s: %v", comment.PostID.Hex(), err)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted successfully"})
}
