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

// FollowUser starts following another user.
func (sc *SocialController) FollowUser(c *gin.Context) {
	targetOID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}
	targetID := targetOID.Hex()
	userID := c.GetString("userId")
	if targetID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "You cannot follow yourself"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	n, err := sc.store.Collection(db.ColUsers).CountDocuments(ctx, bson.M{"_id": targetOID})
	if err != nil || n == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	edge := models.Follow{
		ID:          primitive.NewObjectID(),
		FollowerID:  userID,
		FollowingID: targetID,
		CreatedAt:   time.Now(),
	}
	if _, err := sc.store.Collection(db.ColFollows).InsertOne(ctx, edge); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			c.JSON(http.StatusOK, gin.H{"following": true, "message": "Already following"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to follow user"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"following": true, "message": "Followed"})
}

// UnfollowUser stops following another user.
func (sc *SocialController) UnfollowUser(c *gin.Context) {
	targetOID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}
	userID := c.GetString("userId")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	res, err := sc.store.Collection(db.ColFollows).DeleteOne(ctx, bson.M{
		"followerId":  userID,
		"followingId": targetOID.Hex(),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unfollow user"})
		return
	}
	if res.DeletedCount == 0 {
		c.JSON(http.StatusOK, gin.H{"following": false, "message": "Not following"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"following": false, "message": "Unfollowed"})
}

// followUserSummaries loads the public card for each user ID, keeping order.
func (sc *SocialController) followUserSummaries(ctx context.Context, ids []string) ([]gin.H, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			oids = append(oids, oid)
		}
	}
	cursor, err := sc.store.Collection(db.ColUsers).Find(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return nil, err
	}
	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	byID := make(map[string]models.User, len(users))
	for _, u := range users {
		byID[u.ID.Hex()] = u
	}

	summaries := make([]gin.H, 0, len(ids))
	for _, id := range ids {
		u, ok := byID[id]
		if !ok {
			continue
		}
		summaries = append(summaries, gin.H{
			"id":          id,
			"displayName": u.DisplayName,
			"avatarUrl":   avatarOrFallback(u),
			"points":      u.Points,
		})
	}
	return summaries, nil
}

// ListFollowers returns the users following the given user.
func (sc *SocialController) ListFollowers(c *gin.Context) {
	targetOID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := sc.store.Collection(db.ColFollows).Find(ctx, bson.M{"followingId": targetOID.Hex()})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch followers"})
		return
	}
	var edges []models.Follow
	if err := cursor.All(ctx, &edges); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch followers"})
		return
	}
	ids := make([]string, len(edges))
	for i, e := range edges {
		ids[i] = e.FollowerID
	}
	summaries, err := sc.followUserSummaries(ctx, ids)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch followers"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"followers": summaries})
}

// ListFollowing returns the users the given user follows.
func (sc *SocialController) ListFollowing(c *gin.Context) {
	targetOID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := sc.store.Collection(db.ColFollows).Find(ctx, bson.M{"followerId": targetOID.Hex()})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch following"})
		return
	}
	var edges []models.Follow
	if err := cursor.All(ctx, &edges); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch following"})
		return
	}
	ids := make([]string, len(edges))
	for i, e := range edges {
		ids[i] = e.FollowingID
	}
	summaries, err := sc.followUserSummaries(ctx, ids)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch following"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"following": summaries})
}
