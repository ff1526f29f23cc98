package db

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names.
const (
	ColUsers      = "users"
	ColDecks      = "flashcard_decks"
	ColCards      = "flashcards"
	ColEssays     = "essays"
	ColSessions   = "chat_sessions"
	ColPosts      = "posts"
	ColComments   = "comments"
	ColLikes      = "likes"
	ColFollows    = "follows"
	ColStories    = "stories"
	ColNotes      = "note_chunks"
	ColAdmins     = "admins"
	ColActionLogs = "admin_action_logs"
	ColSnapshots  = "analytics_snapshots"
)

// Store wraps the Mongo connection. It is constructed once in main and handed
// to whoever needs it; there is no package-level client.
type Store struct {
	Client *mongo.Client
	DB     *mongo.Database
}

// extractDBName parses the database name from the URI, defaulting to "ibmentor"
func extractDBName(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return "ibmentor"
	}
	if u.Path != "" && u.Path != "/" {
		return u.Path[1:]
	}
	return "ibmentor"
}

// Connect establishes a connection to MongoDB using the provided URI, verifies
// it with a ping, and ensures the indexes the application relies on.
func Connect(ctx context.Context, uri string) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	dbName := extractDBName(uri)
	log.Printf("Using database: %s", dbName)

	s := &Store{
		Client: client,
		DB:     client.Database(dbName),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure indexes: %w", err)
	}
	return s, nil
}

// Collection returns a collection by name.
func (s *Store) Collection(name string) *mongo.Collection {
	return s.DB.Collection(name)
}

// Disconnect closes the underlying client.
func (s *Store) Disconnect(ctx context.Context) error {
	return s.Client.Disconnect(ctx)
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)

	indexes := []struct {
		col   string
		model mongo.IndexModel
	}{
		{ColUsers, mongo.IndexModel{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique}},
		{ColLikes, mongo.IndexModel{Keys: bson.D{{Key: "postId", Value: 1}, {Key: "userId", Value: 1}}, Options: unique}},
		{ColFollows, mongo.IndexModel{Keys: bson.D{{Key: "followerId", Value: 1}, {Key: "followingId", Value: 1}}, Options: unique}},
		{ColNotes, mongo.IndexModel{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "subject", Value: 1}}}},
		{ColEssays, mongo.IndexModel{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}}},
		{ColSessions, mongo.IndexModel{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "updatedAt", Value: -1}}}},
		{ColPosts, mongo.IndexModel{Keys: bson.D{{Key: "createdAt", Value: -1}}}},
		// Stories expire 24h after creation; Mongo reaps them via TTL.
		{ColStories, mongo.IndexModel{
			Keys:    bson.D{{Key: "expiresAt", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		}},
	}

	for _, idx := range indexes {
		if _, err := s.Collection(idx.col).Indexes().CreateOne(ctx, idx.model); err != nil {
			return fmt.Errorf("index on %s: %w", idx.col, err)
		}
	}
	return nil
}
