package services

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"ibmentor/db"
	"ibmentor/models"
)

// Point awards per activity.
const (
	PointsChat         = 2
	PointsCardReviewed = 1
	PointsDeckCreated  = 5
	PointsEssayMarked  = 10
	PointsNoteUploaded = 3
)

// GamifyService maintains points and the daily streak. Everything here is
// best effort; failures only log and never fail the request that earned the
// points.
type GamifyService struct {
	store *db.Store
}

func NewGamifyService(store *db.Store) *GamifyService {
	return &GamifyService{store: store}
}

// Award adds points and advances the streak on the first activity of a day.
func (s *GamifyService) Award(ctx context.Context, userID string, points int) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		log.Printf("gamify: bad user id %q: %v", userID, err)
		return
	}
	users := s.store.Collection(db.ColUsers)

	var user models.User
	if err := users.FindOne(ctx, bson.M{"_id": oid}).Decode(&user); err != nil {
		log.Printf("gamify: loading user %s: %v", userID, err)
		return
	}

	now := time.Now().UTC()
	today := now.Format("2006-01-02")
	yesterday := now.AddDate(0, 0, -1).Format("2006-01-02")

	set := bson.M{"updatedAt": time.Now()}
	switch user.LastActiveDay {
	case today:
		// streak already counted today
	case yesterday:
		set["streak"] = user.Streak + 1
		set["lastActiveDay"] = today
	default:
		set["streak"] = 1
		set["lastActiveDay"] = today
	}

	update := bson.M{"$inc": bson.M{"points": points}, "$set": set}
	if _, err := users.UpdateOne(ctx, bson.M{"_id": oid}, update); err != nil {
		log.Printf("gamify: awarding %d points to %s: %v", points, userID, err)
	}
}

// LeaderboardEntry is one ranked row of the points leaderboard.
type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
	Points      int    `json:"points"`
	Streak      int    `json:"streak"`
	IsCurrent   bool   `json:"isCurrentUser"`
}

// Leaderboard returns the top users by points, marking the requesting user's
// own row.
func (s *GamifyService) Leaderboard(ctx context.Context, currentUserID string, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "points", Value: -1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(limit))
	cursor, err := s.store.Collection(db.ColUsers).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, len(users))
	for i, u := range users {
		id := u.ID.Hex()
		entries[i] = LeaderboardEntry{
			Rank:        i + 1,
			UserID:      id,
			DisplayName: u.DisplayName,
			AvatarURL:   u.AvatarURL,
			Points:      u.Points,
			Streak:      u.Streak,
			IsCurrent:   id == currentUserID,
		}
	}
	return entries, nil
}
