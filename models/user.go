package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User defines a student account mirrored from the identity provider. The
// provider owns credentials; this row only carries profile and progress state.
type User struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Email         string             `bson:"email" json:"email"`
	DisplayName   string             `bson:"displayName" json:"displayName"`
	Bio           string             `bson:"bio" json:"bio"`
	Tier          string             `bson:"tier" json:"tier"` // free, pro, elite, premium
	Subjects      []string           `bson:"subjects" json:"subjects"`
	AvatarURL     string             `bson:"avatarUrl,omitempty" json:"avatarUrl,omitempty"`
	Points        int                `bson:"points" json:"points"`
	Streak        int                `bson:"streak" json:"streak"`
	LastActiveDay string             `bson:"lastActiveDay,omitempty" json:"lastActiveDay,omitempty"` // YYYY-MM-DD, UTC
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}
