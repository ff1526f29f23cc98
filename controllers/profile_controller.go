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
	"ibmentor/structs"
	"ibmentor/utils"
)

// ProfileController owns profile reads, edits and avatar upload.
type ProfileController struct {
	store     *db.Store
	uploadDir string
}

func NewProfileController(store *db.Store, uploadDir string) *ProfileController {
	return &ProfileController{store: store, uploadDir: uploadDir}
}

// avatarOrFallback returns the stored avatar or a DiceBear one seeded from the
// display name.
func avatarOrFallback(user models.User) string {
	if user.AvatarURL != "" {
		return user.AvatarURL
	}
	name := user.DisplayName
	if name == "" {
		name = utils.ExtractNameFromEmail(user.Email)
	}
	return "https://api.dicebear.com/9.x/adventurer/svg?seed=" + name
}

// GetProfile returns the authenticated user's own profile with follow counts.
func (pc *ProfileController) GetProfile(c *gin.Context) {
	userID := c.GetString("userId")

	dbCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var user models.User
	err = pc.store.Collection(db.ColUsers).FindOne(dbCtx, bson.M{"_id": oid}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	follows := pc.store.Collection(db.ColFollows)
	followers, _ := follows.CountDocuments(dbCtx, bson.M{"followingId": userID})
	following, _ := follows.CountDocuments(dbCtx, bson.M{"followerId": userID})

	c.JSON(http.StatusOK, gin.H{
		"profile": gin.H{
			"id":          user.ID.Hex(),
			"displayName": user.DisplayName,
			"email":       user.Email,
			"bio":         user.Bio,
			"tier":        user.Tier,
			"subjects":    user.Subjects,
			"avatarUrl":   avatarOrFallback(user),
			"points":      user.Points,
			"streak":      user.Streak,
			"followers":   followers,
			"following":   following,
		},
	})
}

// GetUserProfile returns another user's public profile.
func (pc *ProfileController) GetUserProfile(c *gin.Context) {
	oid, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}
	viewerID := c.GetString("userId")

	dbCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var user models.User
	err = pc.store.Collection(db.ColUsers).FindOne(dbCtx, bson.M{"_id": oid}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	targetID := user.ID.Hex()
	follows := pc.store.Collection(db.ColFollows)
	followers, _ := follows.CountDocuments(dbCtx, bson.M{"followingId": targetID})
	following, _ := follows.CountDocuments(dbCtx, bson.M{"followerId": targetID})
	isFollowing := false
	if viewerID != "" && viewerID != targetID {
		n, _ := follows.CountDocuments(dbCtx, bson.M{"followerId": viewerID, "followingId": targetID})
		isFollowing = n > 0
	}

	c.JSON(http.StatusOK, gin.H{
		"profile": gin.H{
			"id":          targetID,
			"displayName": user.DisplayName,
			"bio":         user.Bio,
			"subjects":    user.Subjects,
			"avatarUrl":   avatarOrFallback(user),
			"points":      user.Points,
			"streak":      user.Streak,
			"followers":   followers,
			"following":   following,
			"isFollowing": isFollowing,
		},
	})
}

// UpdateProfile modifies display name, bio, subjects and plan tier.
func (pc *ProfileController) UpdateProfile(c *gin.Context) {
	userID := c.GetString("userId")

	var req structs.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "message": err.Error()})
		return
	}

	set := bson.M{"updatedAt": time.Now()}
	if req.DisplayName != "" {
		set["displayName"] = req.DisplayName
	}
	if req.Bio != "" {
		set["bio"] = req.Bio
	}
	if req.Subjects != nil {
		set["subjects"] = req.Subjects
	}
	if req.Tier != "" {
		validTiers := map[string]bool{
			"free":    true,
			"pro":     true,
			"elite":   true,
			"premium": true,
		}
		if !validTiers[req.Tier] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tier"})
			return
		}
		set["tier"] = req.Tier
	}

	dbCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	if _, err := pc.store.Collection(db.ColUsers).UpdateOne(dbCtx, bson.M{"_id": oid}, bson.M{"$set": set}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully"})
}

// UploadAvatar stores an avatar image and records its URL on the profile.
func (pc *ProfileController) UploadAvatar(c *gin.Context) {
	userID := c.GetString("userId")

	file, err := c.FormFile("avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing avatar file"})
		return
	}

	url, err := utils.SaveImageUpload(c, file, pc.uploadDir, utils.BucketAvatars)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dbCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	update := bson.M{"$set": bson.M{"avatarUrl": url, "updatedAt": time.Now()}}
	if _, err := pc.store.Collection(db.ColUsers).UpdateOne(dbCtx, bson.M{"_id": oid}, update); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"avatarUrl": url})
}
