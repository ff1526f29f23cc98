package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Admin is a staff account with locally-held credentials. Students never get
// one of these; they authenticate through the identity provider.
type Admin struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Email     string             `bson:"email" json:"email"`
	Name      string             `bson:"name" json:"name"`
	Password  string             `bson:"password" json:"-"` // bcrypt hash
	Role      string             `bson:"role" json:"role"`  // "admin" or "moderator"
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// AdminActionLog records one moderation action for the audit trail.
type AdminActionLog struct {
	ID           primitive.ObjectID     `bson:"_id,omitempty" json:"id,omitempty"`
	AdminID      string                 `bson:"adminId" json:"adminId"`
	AdminEmail   string                 `bson:"adminEmail" json:"adminEmail"`
	Action       string                 `bson:"action" json:"action"`             // "delete_post", "delete_comment", "update_tier"
	ResourceType string                 `bson:"resourceType" json:"resourceType"` // "post", "comment", "user"
	ResourceID   string                 `bson:"resourceId" json:"resourceId"`
	IPAddress    string                 `bson:"ipAddress" json:"ipAddress"`
	UserAgent    string                 `bson:"userAgent" json:"userAgent"`
	Timestamp    time.Time              `bson:"timestamp" json:"timestamp"`
	Details      map[string]interface{} `bson:"details,omitempty" json:"details,omitempty"`
}

// AnalyticsSnapshot captures platform totals at a point in time so the admin
// dashboard can chart growth.
type AnalyticsSnapshot struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Timestamp     time.Time          `bson:"timestamp" json:"timestamp"`
	TotalUsers    int64              `bson:"totalUsers" json:"totalUsers"`
	ActiveUsers   int64              `bson:"activeUsers" json:"activeUsers"` // active in last 30 days
	NewUsersToday int64              `bson:"newUsersToday" json:"newUsersToday"`
	TotalSessions int64              `bson:"totalSessions" json:"totalSessions"`
	SessionsToday int64              `bson:"sessionsToday" json:"sessionsToday"`
	TotalEssays   int64              `bson:"totalEssays" json:"totalEssays"`
	EssaysToday   int64              `bson:"essaysToday" json:"essaysToday"`
	TotalDecks    int64              `bson:"totalDecks" json:"totalDecks"`
	TotalPosts    int64              `bson:"totalPosts" json:"totalPosts"`
	TotalComments int64              `bson:"totalComments" json:"totalComments"`
}
