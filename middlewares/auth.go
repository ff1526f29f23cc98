package middlewares

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"ibmentor/db"
	"ibmentor/models"
	"ibmentor/services"
	"ibmentor/utils"
)

// Auth verifies the bearer token and sets userEmail, userId and userTier in
// the context. Obviously bad tokens are rejected locally; Cognito is the
// authority for everything that passes. The Mongo user row is mirrored on
// first authenticated touch.
func Auth(auth *services.CognitoAuth, store *db.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing Authorization token"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Authorization token format"})
			c.Abort()
			return
		}
		token := parts[1]

		if err := utils.CheckTokenShape(token); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			c.Abort()
			return
		}

		email, err := auth.UserEmail(c.Request.Context(), token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": fmt.Sprintf("Token validation error: %v", err)})
			c.Abort()
			return
		}

		user, err := mirrorUser(c.Request.Context(), store, email)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user"})
			c.Abort()
			return
		}

		c.Set("userEmail", email)
		c.Set("userId", user.ID.Hex())
		c.Set("userTier", user.Tier)
		c.Next()
	}
}

// mirrorUser returns the Mongo row for the email, creating it on the user's
// first authenticated request.
func mirrorUser(ctx context.Context, store *db.Store, email string) (models.User, error) {
	users := store.Collection(db.ColUsers)

	var user models.User
	err := users.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err == nil {
		return user, nil
	}
	if err != mongo.ErrNoDocuments {
		return models.User{}, err
	}

	now := time.Now()
	user = models.User{
		ID:          primitive.NewObjectID(),
		Email:       email,
		DisplayName: utils.ExtractNameFromEmail(email),
		Tier:        "free",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := users.InsertOne(ctx, user); err != nil {
		// Lost the race with a concurrent first request; read the winner.
		if mongo.IsDuplicateKeyError(err) {
			if ferr := users.FindOne(ctx, bson.M{"email": email}).Decode(&user); ferr == nil {
				return user, nil
			}
		}
		return models.User{}, err
	}
	return user, nil
}
