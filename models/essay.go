package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Essay statuses.
const (
	EssayStatusSubmitted = "submitted"
	EssayStatusMarked    = "marked"
)

// EssayFeedback is the structured marking payload parsed from model output.
// OverallScore defaults to the sum of RubricScores when the model omits or
// zeroes it. The optional model-answer fields are filled by the exemplar
// generation step.
type EssayFeedback struct {
	RubricScores   map[string]float64 `bson:"rubric_scores" json:"rubric_scores"`
	OverallScore   float64            `bson:"overall_score" json:"overall_score"`
	Justifications map[string]string  `bson:"justifications" json:"justifications"`
	Improvements   []string           `bson:"improvements" json:"improvements"`
	Summary        string             `bson:"summary" json:"summary"`
	Strengths      []string           `bson:"strengths,omitempty" json:"strengths,omitempty"`
	ModelAnswer    string             `bson:"model_answer,omitempty" json:"model_answer,omitempty"`
	ModelPoints    []string           `bson:"model_points,omitempty" json:"model_points,omitempty"`
	ModelSummary   string             `bson:"model_summary,omitempty" json:"model_summary,omitempty"`
}

// ModelAnswer is the exemplar-answer payload parsed from model output.
type ModelAnswer struct {
	ModelAnswer   string   `json:"model_answer"`
	MarkingPoints []string `json:"marking_points"`
	Summary       string   `json:"summary"`
}

// Essay is a submitted piece of work and, once marked, its feedback.
// Degraded records that the stored feedback is a parse fallback rather than
// genuine examiner output.
type Essay struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID    string             `bson:"userId" json:"userId"`
	Subject   string             `bson:"subject" json:"subject"`
	PaperType string             `bson:"paperType,omitempty" json:"paperType,omitempty"`
	Prompt    string             `bson:"prompt" json:"prompt"`
	Body      string             `bson:"body" json:"body"`
	Status    string             `bson:"status" json:"status"`
	Feedback  *EssayFeedback     `bson:"feedback,omitempty" json:"feedback,omitempty"`
	Degraded  bool               `bson:"degraded,omitempty" json:"degraded,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	MarkedAt  time.Time          `bson:"markedAt,omitempty" json:"markedAt,omitempty"`
}
