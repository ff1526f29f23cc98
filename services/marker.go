package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"ibmentor/internal/metrics"
	"ibmentor/models"
)

// ErrUnparsable reports that model output could not be read as the expected
// JSON shape. The wrapped message carries a slice of the raw text.
var ErrUnparsable = errors.New("model output was not valid JSON for this task")

const (
	markingTemperature = 0.3
	markingMaxTokens   = 1600

	modelAnswerTemperature = 0.5
	modelAnswerMaxTokens   = 1200
)

var rubricKeys = []string{"criterion_a", "criterion_b", "criterion_c", "criterion_d"}

const markingPrompt = `You are a senior IB examiner marking a student essay for %s (%s).

Essay prompt: %s

Mark the essay against four criteria, each scored 0-5:
- criterion_a: focus and organization
- criterion_b: knowledge and understanding
- criterion_c: analysis and evaluation
- criterion_d: language and style

Respond with a JSON object in this format:
{
  "rubric_scores": {"criterion_a": 0, "criterion_b": 0, "criterion_c": 0, "criterion_d": 0},
  "overall_score": 0,
  "justifications": {"criterion_a": "...", "criterion_b": "...", "criterion_c": "...", "criterion_d": "..."},
  "improvements": ["..."],
  "strengths": ["..."],
  "summary": "..."
}

overall_score is the sum of the four criterion scores, out of 20. Quote the student's own words in every justification. Provide ONLY the JSON output without additional text or markdown formatting.

Student essay:
%s`

const modelAnswerPrompt = `You are a senior IB examiner writing a model answer for %s (%s).

Essay prompt: %s

Respond with a JSON object in this format:
{
  "model_answer": "the full exemplar response",
  "marking_points": ["each specific point an examiner would reward"],
  "summary": "one short paragraph on what makes this answer strong"
}

Provide ONLY the JSON output without additional text or markdown formatting.`

// MarkerService runs essay marking and model-answer generation against the
// gateway and normalizes the structured output.
type MarkerService struct {
	gateway *OpenRouter
}

func NewMarkerService(gateway *OpenRouter) *MarkerService {
	return &MarkerService{gateway: gateway}
}

// MarkEssay marks body against the four-criterion rubric. Gateway errors
// propagate; malformed model output never does. degraded reports that the
// fallback feedback was returned instead of a real reading.
func (s *MarkerService) MarkEssay(ctx context.Context, tier, subject, paperType, essayPrompt, body string) (models.EssayFeedback, bool, error) {
	prompt := fmt.Sprintf(markingPrompt, subject, paperType, essayPrompt, body)
	raw, err := s.gateway.Chat(ctx, PickModel(tier, ModeMark, body), []models.ChatMessage{
		{Role: "user", Content: prompt},
	}, markingTemperature, markingMaxTokens)
	if err != nil {
		return models.EssayFeedback{}, false, err
	}

	feedback, perr := ParseEssayFeedback(raw)
	if perr != nil {
		log.Printf("marker: returning fallback feedback: %v", perr)
		metrics.CountParseFallback("essay_feedback")
		return feedback, true, nil
	}
	return feedback, false, nil
}

// ModelAnswer writes an exemplar answer for the essay prompt.
func (s *MarkerService) ModelAnswer(ctx context.Context, tier, subject, paperType, essayPrompt string) (models.ModelAnswer, bool, error) {
	prompt := fmt.Sprintf(modelAnswerPrompt, subject, paperType, essayPrompt)
	raw, err := s.gateway.Chat(ctx, PickModel(tier, ModeMark, prompt), []models.ChatMessage{
		{Role: "user", Content: prompt},
	}, modelAnswerTemperature, modelAnswerMaxTokens)
	if err != nil {
		return models.ModelAnswer{}, false, err
	}

	answer, perr := ParseModelAnswer(raw)
	if perr != nil {
		log.Printf("marker: returning fallback model answer: %v", perr)
		metrics.CountParseFallback("model_answer")
		return answer, true, nil
	}
	return answer, false, nil
}

// ParseEssayFeedback normalizes marking output. On parse or shape failure it
// returns the fixed fallback feedback together with a non-nil error, so
// callers can tell a genuine zero from an unreadable response.
func ParseEssayFeedback(raw string) (models.EssayFeedback, error) {
	cleaned := cleanModelOutput(raw)

	var feedback models.EssayFeedback
	if err := json.Unmarshal([]byte(cleaned), &feedback); err != nil {
		return fallbackFeedback(), fmt.Errorf("%w: %.120s", ErrUnparsable, cleaned)
	}
	if len(feedback.RubricScores) == 0 {
		return fallbackFeedback(), fmt.Errorf("%w: missing rubric_scores", ErrUnparsable)
	}

	if feedback.OverallScore <= 0 {
		var sum float64
		for _, v := range feedback.RubricScores {
			sum += v
		}
		feedback.OverallScore = sum
	}
	return feedback, nil
}

// ParseModelAnswer normalizes model-answer output; all three fields must be
// non-empty. On failure it returns the generic exemplar and a non-nil error.
func ParseModelAnswer(raw string) (models.ModelAnswer, error) {
	cleaned := cleanModelOutput(raw)

	var answer models.ModelAnswer
	if err := json.Unmarshal([]byte(cleaned), &answer); err != nil {
		return fallbackModelAnswer(), fmt.Errorf("%w: %.120s", ErrUnparsable, cleaned)
	}
	if strings.TrimSpace(answer.ModelAnswer) == "" || len(answer.MarkingPoints) == 0 || strings.TrimSpace(answer.Summary) == "" {
		return fallbackModelAnswer(), fmt.Errorf("%w: incomplete model answer", ErrUnparsable)
	}
	return answer, nil
}

func fallbackFeedback() models.EssayFeedback {
	scores := make(map[string]float64, len(rubricKeys))
	justifications := make(map[string]string, len(rubricKeys))
	for _, k := range rubricKeys {
		scores[k] = 0
		justifications[k] = "Could not be assessed this time."
	}
	return models.EssayFeedback{
		RubricScores:   scores,
		OverallScore:   0,
		Justifications: justifications,
		Improvements:   []string{"Please resubmit your essay for marking."},
		Summary:        "We could not read the examiner response. Please try again.",
	}
}

func fallbackModelAnswer() models.ModelAnswer {
	return models.ModelAnswer{
		ModelAnswer: "A strong response opens with a direct thesis, develops one point per paragraph with specific evidence, weighs the strongest counterargument, and closes by returning to the thesis.",
		MarkingPoints: []string{
			"Clear thesis stated in the opening paragraph",
			"One point per paragraph, each backed by specific evidence",
			"Analysis links every piece of evidence back to the question",
			"A counterargument is addressed rather than ignored",
			"The conclusion follows from the argument instead of restating it",
		},
		Summary: "Generic exemplar structure. Generate again for an answer specific to this prompt.",
	}
}
