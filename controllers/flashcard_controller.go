package controllers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"ibmentor/db"
	"ibmentor/internal/metrics"
	"ibmentor/internal/usage"
	"ibmentor/models"
	"ibmentor/services"
	"ibmentor/structs"
)

// FlashcardController owns deck and card endpoints, including AI generation.
type FlashcardController struct {
	store   *db.Store
	cards   *services.FlashcardService
	limiter *usage.Limiter
	gamify  *services.GamifyService
}

func NewFlashcardController(store *db.Store, cards *services.FlashcardService, limiter *usage.Limiter, gamify *services.GamifyService) *FlashcardController {
	return &FlashcardController{store: store, cards: cards, limiter: limiter, gamify: gamify}
}

// Generate creates cards with the AI and stores them, creating the deck when
// no deckId is given.
func (fc *FlashcardController) Generate(c *gin.Context) {
	var req structs.GenerateFlashcardsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	userID := c.GetString("userId")
	tier := c.GetString("userTier")

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	q, allowed, err := fc.limiter.Charge(ctx, userID, tier)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Usage check failed"})
		return
	}
	if !allowed {
		metrics.CountQuotaRejection()
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Daily AI limit reached", "used": q.Used, "limit": q.Limit, "resetAt": q.ResetAt})
		return
	}

	decks := fc.store.Collection(db.ColDecks)
	var deck models.Deck
	isNew := req.DeckID == ""
	if isNew {
		title := req.Title
		if title == "" {
			title = req.Topic
		}
		now := time.Now()
		deck = models.Deck{
			ID:        primitive.NewObjectID(),
			UserID:    userID,
			Subject:   req.Subject,
			Title:     title,
			CreatedAt: now,
			UpdatedAt: now,
		}
	} else {
		did, err := primitive.ObjectIDFromHex(req.DeckID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid deck ID"})
			return
		}
		if err := decks.FindOne(ctx, bson.M{"_id": did, "userId": userID}).Decode(&deck); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Deck not found"})
			return
		}
	}

	contents, degraded, err := fc.cards.Generate(ctx, tier, req.Subject, req.Topic, req.Count, req.SourceText)
	if err != nil {
		log.Printf("Flashcard generation failed for %s: %v", userID, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "AI request failed", "message": err.Error()})
		return
	}

	now := time.Now()
	docs := make([]interface{}, len(contents))
	stored := make([]models.Flashcard, len(contents))
	for i, cc := range contents {
		card := models.Flashcard{
			ID:        primitive.NewObjectID(),
			DeckID:    deck.ID,
			UserID:    userID,
			Question:  cc.Question,
			Answer:    cc.Answer,
			CreatedAt: now,
		}
		docs[i] = card
		stored[i] = card
	}

	if isNew {
		deck.CardCount = len(contents)
		if _, err := decks.InsertOne(ctx, deck); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save deck"})
			return
		}
	} else {
		deck.CardCount += len(contents)
		deck.UpdatedAt = now
		update := bson.M{"$inc": bson.M{"cardCount": len(contents)}, "$set": bson.M{"updatedAt": now}}
		if _, err := decks.UpdateOne(ctx, bson.M{"_id": deck.ID}, update); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update deck"})
			return
		}
	}
	if len(docs) > 0 {
		if _, err := fc.store.Collection(db.ColCards).InsertMany(ctx, docs); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save cards"})
			return
		}
	}

	if isNew {
		fc.gamify.Award(ctx, userID, services.PointsDeckCreated)
	}

	c.JSON(http.StatusOK, gin.H{
		"deck":     deck,
		"cards":    stored,
		"degraded": degraded,
		"usage":    q,
	})
}

// ListDecks returns the user's decks, most recently touched first.
func (fc *FlashcardController) ListDecks(c *gin.Context) {
	userID := c.GetString("userId")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	cursor, err := fc.store.Collection(db.ColDecks).Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch decks"})
		return
	}
	var decks []models.Deck
	if err := cursor.All(ctx, &decks); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch decks"})
		return
	}
	if decks == nil {
		decks = []models.Deck{}
	}
	c.JSON(http.StatusOK, gin.H{"decks": decks})
}

// GetDeck returns one deck with all its cards.
func (fc *FlashcardController) GetDeck(c *gin.Context) {
	did, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid deck ID"})
		return
	}
	userID := c.GetString("userId")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var deck models.Deck
	if err := fc.store.Collection(db.ColDecks).FindOne(ctx, bson.M{"_id": did, "userId": userID}).Decode(&deck); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Deck not found"})
		return
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := fc.store.Collection(db.ColCards).Find(ctx, bson.M{"deckId": did}, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cards"})
		return
	}
	var cards []models.Flashcard
	if err := cursor.All(ctx, &cards); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cards"})
		return
	}
	if cards == nil {
		cards = []models.Flashcard{}
	}
	c.JSON(http.StatusOK, gin.H{"deck": deck, "cards": cards})
}

// AddCard appends a hand-written card to a deck.
func (fc *FlashcardController) AddCard(c *gin.Context) {
	did, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid deck ID"})
		return
	}
	var req structs.AddCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	userID := c.GetString("userId")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	decks := fc.store.Collection(db.ColDecks)
	var deck models.Deck
	if err := decks.FindOne(ctx, bson.M{"_id": did, "userId": userID}).Decode(&deck); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Deck not found"})
		return
	}

	now := time.Now()
	card := models.Flashcard{
		ID:        primitive.NewObjectID(),
		DeckID:    did,
		UserID:    userID,
		Question:  req.Question,
		Answer:    req.Answer,
		CreatedAt: now,
	}
	if _, err := fc.store.Collection(db.ColCards).InsertOne(ctx, card); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save card"})
		return
	}
	update := bson.M{"$inc": bson.M{"cardCount": 1}, "$set": bson.M{"updatedAt": now}}
	if _, err := decks.UpdateOne(ctx, bson.M{"_id": did}, update); err != nil {
		log.Printf("Failed to bump card count on deck %s: %v", did.Hex(), err)
	}
	c.JSON(http.StatusOK, gin.H{"card": card})
}

// ReviewCard records one review pass over a card.
func (fc *FlashcardController) ReviewCard(c *gin.Context) {
	cid, err := primitive.ObjectIDFromHex(c.Param("cardId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid card ID"})
		return
	}
	userID := c.GetString("userId")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	update := bson.M{
		"$inc": bson.M{"reviews": 1},
		"$set": bson.M{"lastReviewedAt": time.Now()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var card models.Flashcard
	err = fc.store.Collection(db.ColCards).
		FindOneAndUpdate(ctx, bson.M{"_id": cid, "userId": userID}, update, opts).
		Decode(&card)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"error": "Card not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record review"})
		return
	}

	fc.gamify.Award(ctx, userID, services.PointsCardReviewed)
	c.JSON(http.StatusOK, gin.H{"card": card})
}

// DeleteCard removes one card and decrements its deck's count.
func (fc *FlashcardController) DeleteCard(c *gin.Context) {
	cid, err := primitive.ObjectIDFromHex(c.Param("cardId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid card ID"})
		return
	}
	userID := c.GetString("userId")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var card models.Flashcard
	err = fc.store.Collection(db.ColCards).
		FindOneAndDelete(ctx, bson.M{"_id": cid, "userId": userID}).
		Decode(&card)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"error": "Card not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete card"})
		return
	}

	update := bson.M{"$inc": bson.M{"cardCount": -1}, "$set": bson.M{"updatedAt": time.Now()}}
	if _, err := fc.store.Collection(db.ColDecks).UpdateOne(ctx, bson.M{"_id": card.DeckID}, update); err != nil {
		log.Printf("Failed to bump card count on deck %s: %v", card.DeckID.Hex(), err)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Card deleted"})
}

// DeleteDeck removes a deck and every card in it.
func (fc *FlashcardController) DeleteDeck(c *gin.Context) {
	did, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid deck ID"})
		return
	}
	userID := c.GetString("userId")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	res, err := fc.store.Collection(db.ColDecks).DeleteOne(ctx, bson.M{"_id": did, "userId": userID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete deck"})
		return
	}
	if res.DeletedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Deck not found"})
		return
	}
	if _, err := fc.store.Collection(db.ColCards).DeleteMany(ctx, bson.M{"deckId": did}); err != nil {
		log.Printf("Failed to delete cards of deck %s: %v", did.Hex(), err)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Deck deleted"})
}
