package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CardContent is the question/answer pair the generator produces and the
// parser normalizes. It is the wire shape expected from the model.
type CardContent struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Deck groups flashcards per user and subject.
type Deck struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID    string             `bson:"userId" json:"userId"`
	Subject   string             `bson:"subject" json:"subject"`
	Title     string             `bson:"title" json:"title"`
	CardCount int                `bson:"cardCount" json:"cardCount"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Flashcard is a stored card with review bookkeeping.
type Flashcard struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	DeckID         primitive.ObjectID `bson:"deckId" json:"deckId"`
	UserID         string             `bson:"userId" json:"userId"`
	Question       string             `bson:"question" json:"question"`
	Answer         string             `bson:"answer" json:"answer"`
	Reviews        int                `bson:"reviews" json:"reviews"`
	LastReviewedAt time.Time          `bson:"lastReviewedAt,omitempty" json:"lastReviewedAt,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
}
