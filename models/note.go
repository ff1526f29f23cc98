package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NoteChunk is one embedded slice of a student's uploaded study notes, used
// for retrieval-augmented tutoring. Chunks are matched by cosine similarity
// against the embedded question.
type NoteChunk struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID    string             `bson:"userId" json:"userId"`
	Subject   string             `bson:"subject" json:"subject"`
	Source    string             `bson:"source,omitempty" json:"source,omitempty"`
	Text      string             `bson:"text" json:"text"`
	Embedding []float64          `bson:"embedding" json:"-"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
