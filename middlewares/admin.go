package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"

	"ibmentor/db"
	"ibmentor/models"
	"ibmentor/utils"
)

// AdminAuth verifies a locally issued admin token and confirms the admin
// still exists. Sets adminId, adminEmail and adminRole in the context.
func AdminAuth(jwtSecret string, store *db.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token format"})
			c.Abort()
			return
		}

		claims, err := utils.ParseAdminToken(jwtSecret, parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		var admin models.Admin
		err = store.Collection(db.ColAdmins).FindOne(c.Request.Context(), bson.M{"email": claims.Email}).Decode(&admin)
		if err != nil {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			c.Abort()
			return
		}

		c.Set("adminId", admin.ID.Hex())
		c.Set("adminEmail", admin.Email)
		c.Set("adminRole", admin.Role)
		c.Next()
	}
}
