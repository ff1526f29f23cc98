package utils

import (
	"context"
	"log"
	"time"

	"ibmentor/db"
	"ibmentor/models"

	"go.mongodb.org/mongo-driver/bson"
)

// SeedDemoUsers inserts sample students on a fresh database so the
// leaderboard and feed are not empty on first boot. It is a no-op once any
// real user exists.
func SeedDemoUsers(ctx context.Context, store *db.Store) {
	collection := store.Collection(db.ColUsers)

	count, err := collection.CountDocuments(ctx, bson.M{})
	if err != nil || count > 0 {
		return
	}

	now := time.Now()
	demoUsers := []models.User{
		{
			Email:       "maya@example.com",
			DisplayName: "Maya Chen",
			Bio:         "HL Chemistry, aiming for a 7",
			Tier:        "free",
			Subjects:    []string{"chemistry", "mathematics"},
			Points:      120,
			Streak:      4,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			Email:       "daniel@example.com",
			DisplayName: "Daniel Okafor",
			Bio:         "Economics and History nerd",
			Tier:        "free",
			Subjects:    []string{"economics", "history"},
			Points:      95,
			Streak:      2,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			Email:       "sofia@example.com",
			DisplayName: "Sofia Lindqvist",
			Bio:         "English A and Biology",
			Tier:        "free",
			Subjects:    []string{"english", "biology"},
			Points:      80,
			Streak:      6,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	}

	documents := make([]interface{}, 0, len(demoUsers))
	for _, user := range demoUsers {
		documents = append(documents, user)
	}

	if _, err := collection.InsertMany(ctx, documents); err != nil {
		log.Printf("Failed to seed demo users: %v", err)
	}
}
