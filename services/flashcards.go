package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strings"

	"ibmentor/internal/metrics"
	"ibmentor/models"
)

const (
	flashcardTemperature  = 0.4
	flashcardMaxTokens    = 1400
	maxFlashcardCount     = 30
	defaultFlashcardCount = 10
)

const flashcardPrompt = `You are an IB tutor writing revision flashcards for %s.
Write exactly %d flashcards covering the most examinable points of: %s.

Respond with a JSON array in this format:
[
  {"question": "...", "answer": "..."}
]

Questions must be specific and answerable in one or two sentences. Provide ONLY the JSON output without additional text or markdown formatting.`

// FlashcardService turns a topic or pasted notes into question/answer cards.
type FlashcardService struct {
	gateway *OpenRouter
}

func NewFlashcardService(gateway *OpenRouter) *FlashcardService {
	return &FlashcardService{gateway: gateway}
}

// Generate asks the model for count cards and normalizes whatever comes back.
// sourceText, when present, is pasted student material the cards must be drawn
// from. degraded reports that the heuristic parser had to rescue the output.
func (s *FlashcardService) Generate(ctx context.Context, tier, subject, topic string, count int, sourceText string) (cards []models.CardContent, degraded bool, err error) {
	if count <= 0 {
		count = defaultFlashcardCount
	}
	if count > maxFlashcardCount {
		count = maxFlashcardCount
	}

	prompt := fmt.Sprintf(flashcardPrompt, subject, count, topic)
	if src := strings.TrimSpace(sourceText); src != "" {
		prompt += "\n\nBase every card on these notes:\n" + src
	}

	raw, err := s.gateway.Chat(ctx, PickModel(tier, ModeNone, prompt), []models.ChatMessage{
		{Role: "user", Content: prompt},
	}, flashcardTemperature, flashcardMaxTokens)
	if err != nil {
		return nil, false, err
	}

	cards, degraded = ParseCards(raw, count)
	if degraded {
		metrics.CountParseFallback("flashcards")
	}
	return cards, degraded, nil
}

// ParseCards normalizes model output into at most count cards. Well-formed
// JSON passes through untouched (truncated to count); anything else goes
// through a line-pairing heuristic. degraded is true when the heuristic ran.
func ParseCards(raw string, count int) (cards []models.CardContent, degraded bool) {
	cleaned := cleanModelOutput(raw)

	var parsed []models.CardContent
	if err := json.Unmarshal([]byte(cleaned), &parsed); err == nil {
		if len(parsed) > count {
			parsed = parsed[:count]
		}
		return parsed, false
	}

	log.Printf("flashcards: JSON parse failed, using line pairing. Raw: %.120s", cleaned)
	return pairLines(cleaned, count), true
}

var (
	reListPrefix  = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)])\s*`)
	reLabelPrefix = regexp.MustCompile(`(?i)^(?:q(?:uestion)?|a(?:nswer)?)\s*\d*\s*[:.)-]\s*`)
)

// pairLines treats the text as alternating question/answer lines, stripping
// list numbering and Q:/A: labels, and makes sure questions end with "?".
func pairLines(text string, count int) []models.CardContent {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = reLabelPrefix.ReplaceAllString(reListPrefix.ReplaceAllString(line, ""), "")
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}

	cards := make([]models.CardContent, 0, count)
	for i := 0; i+1 < len(lines) && len(cards) < count; i += 2 {
		question := lines[i]
		if !strings.HasSuffix(question, "?") {
			question += "?"
		}
		cards = append(cards, models.CardContent{Question: question, Answer: lines[i+1]})
	}
	return cards
}

func cleanModelOutput(text string) string {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```JSON")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	return strings.TrimSpace(cleaned)
}
