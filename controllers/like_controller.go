package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"ibmentor/db"
	"ibmentor/models"
)

// ToggleLike likes a post, or removes the like when it already exists. The
// unique index on (postId, userId) makes concurrent double-likes collapse
// into one.
func (sc *SocialController) ToggleLike(c *gin.Context) {
	postObjectID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return
	}
	userID := c.GetString("userId")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	posts := sc.store.Collection(db.ColPosts)
	likes := sc.store.Collection(db.ColLikes)

	var post models.Post
	if err := posts.FindOne(ctx, bson.M{"_id": postObjectID}).Decode(&post); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	like := models.Like{
		ID:        primitive.NewObjectID(),
		PostID:    postObjectID,
		UserID:    userID,
		CreatedAt: time.Now(),
	}
	_, err = likes.InsertOne(ctx, like)
	if err == nil {
		posts.UpdateOne(ctx, bson.M{"_id": postObjectID}, bson.M{"$inc": bson.M{"likeCount": 1}})
		posts.FindOne(ctx, bson.M{"_id": postObjectID}).Decode(&post)
		c.JSON(http.StatusOK, gin.H{"liked": true, "count": post.LikeCount, "message": "Liked"})
		return
	}
	if !mongo.IsDuplicateKeyError(err) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to like post"})
		return
	}

	// Already liked; toggle off.
	res, err := likes.DeleteOne(ctx, bson.M{"postId": postObjectID, "userId": userID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unlike post"})
		return
	}
	if res.DeletedCount > 0 {
		posts.UpdateOne(ctx, bson.M{"_id": postObjectID}, bson.M{"$inc": bson.M{"likeCount": -1}})
	}
	posts.FindOne(ctx, bson.M{"_id": postObjectID}).Decode(&post)
	c.JSON(http.StatusOK, gin.H{"liked": false, "count": post.LikeCount, "message": "Unliked"})
}

// GetLikes returns the like count and whether the current user liked the post.
func (sc *SocialController) GetLikes(c *gin.Context) {
	postObjectID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return
	}
	userID := c.GetString("userId")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var post models.Post
	if err := sc.store.Collection(db.ColPosts).FindOne(ctx, bson.M{"_id": postObjectID}).Decode(&post); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	liked := false
	if userID != "" {
		n, _ := sc.store.Collection(db.ColLikes).CountDocuments(ctx, bson.M{"postId": postObjectID, "userId": userID})
		liked = n > 0
	}
	c.JSON(http.StatusOK, gin.H{"likes": post.LikeCount, "liked": liked})
}
