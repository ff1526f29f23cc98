package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"ibmentor/db"
	"ibmentor/models"
)

const (
	// RetrievalTopK and RetrievalThreshold are the defaults the tutor uses
	// when pulling note context into a chat.
	RetrievalTopK      = 3
	RetrievalThreshold = 0.25

	noteChunkSize = 900
	maxNoteChunks = 64
)

// RetrievalService stores a student's notes as embedded chunks and finds the
// ones relevant to a question.
type RetrievalService struct {
	store   *db.Store
	gateway *OpenRouter
}

func NewRetrievalService(store *db.Store, gateway *OpenRouter) *RetrievalService {
	return &RetrievalService{store: store, gateway: gateway}
}

// AddNote chunks text, embeds every chunk and stores them under the user and
// subject. source labels where the text came from ("Unit 4 notes", a filename).
// Returns the number of chunks stored.
func (s *RetrievalService) AddNote(ctx context.Context, userID, subject, source, text string) (int, error) {
	subject = normalizeSubject(subject)
	chunks := splitChunks(text, noteChunkSize)
	if len(chunks) == 0 {
		return 0, fmt.Errorf("notes text is empty")
	}
	if len(chunks) > maxNoteChunks {
		chunks = chunks[:maxNoteChunks]
	}

	docs := make([]interface{}, 0, len(chunks))
	now := time.Now()
	for _, chunk := range chunks {
		embedding, err := s.gateway.Embed(ctx, chunk)
		if err != nil {
			return 0, fmt.Errorf("embedding notes: %w", err)
		}
		docs = append(docs, models.NoteChunk{
			ID:        primitive.NewObjectID(),
			UserID:    userID,
			Subject:   subject,
			Source:    source,
			Text:      chunk,
			Embedding: embedding,
			CreatedAt: now,
		})
	}

	if _, err := s.store.Collection(db.ColNotes).InsertMany(ctx, docs); err != nil {
		return 0, fmt.Errorf("storing note chunks: %w", err)
	}
	return len(docs), nil
}

// Search returns the texts of the chunks most similar to the question, best
// first, keeping only scores at or above threshold.
func (s *RetrievalService) Search(ctx context.Context, userID, subject, question string, k int, threshold float64) ([]string, error) {
	subject = normalizeSubject(subject)
	queryEmbedding, err := s.gateway.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embedding question: %w", err)
	}

	cursor, err := s.store.Collection(db.ColNotes).Find(ctx, bson.M{"userId": userID, "subject": subject})
	if err != nil {
		return nil, fmt.Errorf("loading note chunks: %w", err)
	}
	var chunks []models.NoteChunk
	if err := cursor.All(ctx, &chunks); err != nil {
		return nil, fmt.Errorf("decoding note chunks: %w", err)
	}

	type scored struct {
		text  string
		score float64
	}
	matches := make([]scored, 0, len(chunks))
	for _, chunk := range chunks {
		if score := cosineSimilarity(queryEmbedding, chunk.Embedding); score >= threshold {
			matches = append(matches, scored{text: chunk.Text, score: score})
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].score > matches[j].score })

	if k > 0 && len(matches) > k {
		matches = matches[:k]
	}
	texts := make([]string, len(matches))
	for i, m := range matches {
		texts[i] = m.text
	}
	return texts, nil
}

// ListSources returns the distinct note sources the user has stored for a
// subject.
func (s *RetrievalService) ListSources(ctx context.Context, userID, subject string) ([]string, error) {
	subject = normalizeSubject(subject)
	values, err := s.store.Collection(db.ColNotes).Distinct(ctx, "source", bson.M{"userId": userID, "subject": subject})
	if err != nil {
		return nil, fmt.Errorf("listing note sources: %w", err)
	}
	sources := make([]string, 0, len(values))
	for _, v := range values {
		if str, ok := v.(string); ok {
			sources = append(sources, str)
		}
	}
	sort.Strings(sources)
	return sources, nil
}

// DeleteNotes removes a user's chunks for a subject; source narrows the
// delete to one upload when non-empty.
func (s *RetrievalService) DeleteNotes(ctx context.Context, userID, subject, source string) (int64, error) {
	filter := bson.M{"userId": userID, "subject": normalizeSubject(subject)}
	if source != "" {
		filter["source"] = source
	}
	res, err := s.store.Collection(db.ColNotes).DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("deleting note chunks: %w", err)
	}
	return res.DeletedCount, nil
}

// splitChunks packs paragraphs into chunks of at most size characters,
// hard-splitting any single paragraph that exceeds it.
func splitChunks(text string, size int) []string {
	var chunks []string
	var current strings.Builder

	flush := func() {
		if chunk := strings.TrimSpace(current.String()); chunk != "" {
			chunks = append(chunks, chunk)
		}
		current.Reset()
	}

	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		for len(para) > size {
			flush()
			chunks = append(chunks, strings.TrimSpace(para[:size]))
			para = strings.TrimSpace(para[size:])
		}
		if current.Len() > 0 && current.Len()+len(para)+2 > size {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(para)
	}
	flush()
	return chunks
}

func cosineSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
