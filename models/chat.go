package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ChatMessage is a single turn in a tutoring conversation. The history is
// persisted verbatim as an opaque array; nothing downstream reinterprets it.
type ChatMessage struct {
	Role    string `bson:"role" json:"role"` // "user", "assistant", or "system"
	Content string `bson:"content" json:"content"`
}

// ChatSession groups the messages a student exchanged with the tutor for one
// subject. Mode records the last conversation mode the session ran under.
type ChatSession struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID    string             `bson:"userId" json:"userId"`
	Subject   string             `bson:"subject" json:"subject"`
	Mode      string             `bson:"mode,omitempty" json:"mode,omitempty"`
	Messages  []ChatMessage      `bson:"messages" json:"messages"`
	LastModel string             `bson:"lastModel,omitempty" json:"lastModel,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
