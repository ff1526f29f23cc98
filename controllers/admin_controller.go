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
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"ibmentor/db"
	"ibmentor/models"
	"ibmentor/structs"
	"ibmentor/utils"
)

// AdminController owns staff login, user administration and moderation.
type AdminController struct {
	store     *db.Store
	jwtSecret string
	jwtTTL    time.Duration
}

func NewAdminController(store *db.Store, jwtSecret string, ttlHours int) *AdminController {
	return &AdminController{
		store:     store,
		jwtSecret: jwtSecret,
		jwtTTL:    time.Duration(ttlHours) * time.Hour,
	}
}

// Login authenticates an admin or moderator against the local table.
func (ac *AdminController) Login(c *gin.Context) {
	var request structs.AdminLoginRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "message": err.Error()})
		return
	}

	dbCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var admin models.Admin
	err := ac.store.Collection(db.ColAdmins).FindOne(dbCtx, bson.M{"email": request.Email}).Decode(&admin)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if !utils.CheckPasswordHash(request.Password, admin.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	token, err := utils.GenerateAdminToken(ac.jwtSecret, ac.jwtTTL, admin.ID.Hex(), admin.Email, admin.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Login successful",
		"accessToken": token,
		"admin": gin.H{
			"id":    admin.ID.Hex(),
			"email": admin.Email,
			"name":  admin.Name,
			"role":  admin.Role,
		},
	})
}

// logAction writes an audit row. Failures only log; moderation must not fail
// because the audit write did.
func (ac *AdminController) logAction(c *gin.Context, action, resourceType, resourceID string, details map[string]interface{}) {
	entry := models.AdminActionLog{
		ID:           primitive.NewObjectID(),
		AdminID:      c.GetString("adminId"),
		AdminEmail:   c.GetString("adminEmail"),
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		IPAddress:    c.ClientIP(),
		UserAgent:    c.Request.UserAgent(),
		Timestamp:    time.Now(),
		Details:      details,
	}

	dbCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := ac.store.Collection(db.ColActionLogs).InsertOne(dbCtx, entry); err != nil {
		log.Printf("Failed to write action log: %v", err)
	}
}

// ListUsers returns users with pagination and an optional search term.
func (ac *AdminController) ListUsers(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if limit < 1 || limit > 100 {
		limit = 20
	}
	if page < 1 {
		page = 1
	}

	filter := bson.M{}
	if search := c.Query("search"); search != "" {
		filter["$or"] = []bson.M{
			{"email": bson.M{"$regex": search, "$options": "i"}},
			{"displayName": bson.M{"$regex": search, "$options": "i"}},
		}
	}

	dbCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	users := ac.store.Collection(db.ColUsers)
	total, err := users.CountDocuments(dbCtx, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count users"})
		return
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64((page - 1) * limit))
	cursor, err := users.Find(dbCtx, filter, findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}
	var rows []models.User
	if err := cursor.All(dbCtx, &rows); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode users"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users": rows,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// UpdateUserTier sets a user's plan tier.
func (ac *AdminController) UpdateUserTier(c *gin.Context) {
	oid, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	var request struct {
		Tier string `json:"tier" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "message": err.Error()})
		return
	}
	switch request.Tier {
	case "free", "pro", "elite", "premium":
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tier. Must be 'free', 'pro', 'elite' or 'premium'"})
		return
	}

	dbCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := ac.store.Collection(db.ColUsers).UpdateOne(
		dbCtx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"tier": request.Tier, "updatedAt": time.Now()}},
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
		return
	}
	if res.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	ac.logAction(c, "update_tier", "user", oid.Hex(), map[string]interface{}{"tier": request.Tier})
	c.JSON(http.StatusOK, gin.H{"message": "Tier updated successfully"})
}

// DeletePost removes any post along with its likes and comments.
func (ac *AdminController) DeletePost(c *gin.Context) {
	postObjectID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return
	}

	dbCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var post models.Post
	err = ac.store.Collection(db.ColPosts).FindOneAndDelete(dbCtx, bson.M{"_id": postObjectID}).Decode(&post)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete post"})
		return
	}
	if _, err := ac.store.Collection(db.ColLikes).DeleteMany(dbCtx, bson.M{"postId": postObjectID}); err != nil {
		log.Printf("Failed to delete likes of post %s: %v", postObjectID.Hex(), err)
	}
	if _, err := ac.store.Collection(db.ColComments).DeleteMany(dbCtx, bson.M{"postId": postObjectID}); err != nil {
		log.Printf("Failed to delete comments of post %s: %v", postObjectID.Hex(), err)
	}

	ac.logAction(c, "delete_post", "post", postObjectID.Hex(), map[string]interface{}{
		"author": post.Email,
	})
	c.JSON(http.StatusOK, gin.H{"message": "Post deleted successfully"})
}

// DeleteComment removes any comment.
func (ac *AdminController) DeleteComment(c *gin.Context) {
	commentObjectID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid comment ID"})
		return
	}

	dbCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var comment models.Comment
	err = ac.store.Collection(db.ColComments).FindOneAndDelete(dbCtx, bson.M{"_id": commentObjectID}).Decode(&comment)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete comment"})
		return
	}
	if _, err := ac.store.Collection(db.ColPosts).UpdateOne(dbCtx, bson.M{"_id": comment.PostID}, bson.M{"$inc": bson.M{"commentCount": -1}}); err != nil {
		log.Printf("Failed to bump comment count on post %s: %v", comment.PostID.Hex(), err)
	}

	ac.logAction(c, "delete_comment", "comment", commentObjectID.Hex(), map[string]interface{}{
		"author": comment.Email,
	})
	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted successfully"})
}
