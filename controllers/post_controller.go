package controllers

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"strings"
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

// SocialController owns the feed: posts, comments, likes, follows, stories.
// Handlers are spread over the *_controller.go files in this package.
type SocialController struct {
	store     *db.Store
	uploadDir string
}

func NewSocialController(store *db.Store, uploadDir string) *SocialController {
	return &SocialController{store: store, uploadDir: uploadDir}
}

type postResponse struct {
	models.Post `json:",inline"`
	IsLiked     bool `json:"isLiked"`
	IsOwnPost   bool `json:"isOwnPost,omitempty"`
}

// CreatePost publishes a feed post. Accepts JSON or, when an image is
// attached, multipart form data with content, subject and image fields.
func (sc *SocialController) CreatePost(c *gin.Context) {
	userID := c.GetString("userId")
	email := c.GetString("userEmail")

	var content, subject, imageURL string
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		content = c.PostForm("content")
		subject = c.PostForm("subject")
		if file, err := c.FormFile("image"); err == nil {
			url, err := utils.SaveImageUpload(c, file, sc.uploadDir, utils.BucketPosts)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			imageURL = url
		}
	} else {
		var req structs.CreatePostRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
			return
		}
		content, subject = req.Content, req.Subject
	}
	if content == "" || len(content) > 2000 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Post content must be between 1 and 2000 characters"})
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

	post := models.Post{
		ID:          primitive.NewObjectID(),
		UserID:      userID,
		Email:       email,
		DisplayName: user.DisplayName,
		AvatarURL:   user.AvatarURL,
		Body:        content,
		ImageURL:    imageURL,
		Subject:     subject,
		CreatedAt:   time.Now(),
	}
	if _, err := sc.store.Collection(db.ColPosts).InsertOne(ctx, post); err != nil {
		log.Printf("Failed to create post: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create post"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"post": post, "message": "Post created successfully"})
}

// GetFeed returns paginated posts, optionally restricted to followed users.
func (sc *SocialController) GetFeed(c *gin.Context) {
	userID := c.GetString("userId")

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if limit < 1 || limit > 100 {
		limit = 20
	}
	if page < 1 {
		page = 1
	}
	skip := (page - 1) * limit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	filter := bson.M{}
	if c.Query("filter") == "following" {
		cursor, err := sc.store.Collection(db.ColFollows).Find(ctx, bson.M{"followerId": userID})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch posts"})
			return
		}
		var edges []models.Follow
		if err := cursor.All(ctx, &edges); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch posts"})
			return
		}
		ids := make([]string, 0, len(edges)+1)
		ids = append(ids, userID) // own posts always show
		for _, e := range edges {
			ids = append(ids, e.FollowingID)
		}
		filter["userId"] = bson.M{"$in": ids}
	}

	posts := sc.store.Collection(db.ColPosts)
	total, err := posts.CountDocuments(ctx, filter)
	if err != nil {
		log.Printf("Failed to count posts: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch posts"})
		return
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(skip))
	cursor, err := posts.Find(ctx, filter, findOptions)
	if err != nil {
		log.Printf("Failed to fetch posts: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch posts"})
		return
	}
	var feed []models.Post
	if err := cursor.All(ctx, &feed); err != nil {
		log.Printf("Failed to decode posts: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode posts"})
		return
	}

	liked := sc.likedPostIDs(ctx, userID, feed)
	responses := make([]postResponse, len(feed))
	for i, p := range feed {
		responses[i] = postResponse{
			Post:      p,
			IsLiked:   liked[p.ID],
			IsOwnPost: p.UserID == userID,
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"posts": responses,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// likedPostIDs returns which of the given posts the user has liked.
func (sc *SocialController) likedPostIDs(ctx context.Context, userID string, posts []models.Post) map[primitive.ObjectID]bool {
	liked := make(map[primitive.ObjectID]bool)
	if userID == "" || len(posts) == 0 {
		return liked
	}
	ids := make([]primitive.ObjectID, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	cursor, err := sc.store.Collection(db.ColLikes).Find(ctx, bson.M{"userId": userID, "postId": bson.M{"$in": ids}})
	if err != nil {
		log.Printf("Failed to fetch likes: %v", err)
		return liked
	}
	var likes []models.Like
	if err := cursor.All(ctx, &likes); err != nil {
		log.Printf("Failed to decode likes: %v", err)
		return liked
	}
	for _, l := range likes {
		liked[l.PostID] = true
	}
	return liked
}

// GetPost retrieves a single post by ID.
func (sc *SocialController) GetPost(c *gin.Context) {
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

	liked := sc.likedPostIDs(ctx, userID, []models.Post{post})
	c.JSON(http.StatusOK, gin.H{"post": postResponse{
		Post:      post,
		IsLiked:   liked[post.ID],
		IsOwnPost: post.UserID == userID,
	}})
}

// DeletePost deletes a post along with its likes and comments.
func (sc *SocialController) DeletePost(c *gin.Context) {
	postObjectID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return
	}
	userID := c.GetString("userId")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	posts := sc.store.Collection(db.ColPosts)
	var post models.Post
	err = posts.FindOne(ctx, bson.M{"_id": postObjectID, "userId": userID}).Decode(&post)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusForbidden, gin.H{"error": "Post not found or you don't have permission"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch post"})
		return
	}

	if _, err := posts.DeleteOne(ctx, bson.M{"_id": postObjectID}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete post"})
		return
	}
	if _, err := sc.store.Collection(db.ColLikes).DeleteMany(ctx, bson.M{"postId": postObjectID}); err != nil {
		log.Printf("Failed to delete likes of post %s: %v", postObjectID.Hex(), err)
	}
	if _, err := sc.store.Collection(db.ColComments).DeleteMany(ctx, bson.M{"postId": postObjectID}); err != nil {
		log.Printf("Failed to delete comments of post %s: %v", postObjectID.Hex(), err)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Post deleted successfully"})
}
