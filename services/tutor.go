package services

import (
	"context"
	"log"
	"strings"

	"ibmentor/models"
)

const (
	chatTemperature    = 0.7
	chatMaxTokens      = 1024
	maxHistoryMessages = 20
)

// Fixed greeting replies, one per language.
const (
	spanishGreeting = "¡Hola! ¿En qué puedo ayudarte hoy?"
	frenchGreeting  = "Salut ! Comment puis-je t'aider aujourd'hui ?"
	englishGreeting = "Hi! What would you like to work on today?"
)

// TutorService runs one tutoring exchange end to end: resolve the subject,
// short-circuit bare greetings, gather note context, compose the prompt, pick
// the model and call the gateway.
type TutorService struct {
	gateway   *OpenRouter
	retrieval *RetrievalService
	links     *LinkAnswerService
}

func NewTutorService(gateway *OpenRouter, retrieval *RetrievalService, links *LinkAnswerService) *TutorService {
	return &TutorService{gateway: gateway, retrieval: retrieval, links: links}
}

// TutorRequest carries one user turn plus the session history.
type TutorRequest struct {
	Tier        string
	Subject     string
	Mode        string
	Language    string
	Message     string
	History     []models.ChatMessage
	ResourceURL string
}

// TutorReply is the assistant turn. Model is empty when the greeting
// fast-path answered without touching the gateway.
type TutorReply struct {
	Content     string
	Model       string
	Greeting    bool
	ContextUsed int
}

// IsGreeting reports whether the message would take the greeting fast-path,
// so callers can decide not to charge quota for it.
func (s *TutorService) IsGreeting(req TutorRequest) bool {
	lang := ResolveSubject(req.Subject).Language
	if forced, ok := ParseLanguage(req.Language); ok {
		lang = forced
	}
	return isBareGreeting(lang, strings.TrimSpace(req.Message))
}

// Chat produces the assistant reply for one exchange.
func (s *TutorService) Chat(ctx context.Context, userID string, req TutorRequest) (TutorReply, error) {
	descriptor := ResolveSubject(req.Subject)
	lang := descriptor.Language
	if forced, ok := ParseLanguage(req.Language); ok {
		lang = forced
	}

	message := strings.TrimSpace(req.Message)
	if isBareGreeting(lang, message) {
		return TutorReply{Content: Greeting(lang), Greeting: true}, nil
	}

	mode := ParseMode(req.Mode)

	var contextChunks []string
	if s.retrieval != nil {
		chunks, err := s.retrieval.Search(ctx, userID, descriptor.Name, message, RetrievalTopK, RetrievalThreshold)
		if err != nil {
			log.Printf("tutor: retrieval skipped: %v", err)
		} else {
			contextChunks = chunks
		}
	}

	// Non-language subjects with no matching notes can still answer from a
	// linked resource; any failure there falls through to a plain chat.
	if len(contextChunks) == 0 && !descriptor.IsLanguage && req.ResourceURL != "" && s.links != nil {
		answer, err := s.links.Answer(ctx, req.ResourceURL, message, descriptor.Name)
		if err != nil {
			log.Printf("tutor: link fallback skipped: %v", err)
		} else {
			return TutorReply{Content: answer, Model: fastModel}, nil
		}
	}

	system := ComposeSystemPrompt(descriptor.Persona(), mode, lang, req.Language, contextChunks)
	model := PickModel(req.Tier, mode, message)

	history := req.History
	if len(history) > maxHistoryMessages {
		history = history[len(history)-maxHistoryMessages:]
	}

	messages := make([]models.ChatMessage, 0, len(history)+2)
	messages = append(messages, models.ChatMessage{Role: "system", Content: system})
	messages = append(messages, history...)
	messages = append(messages, models.ChatMessage{Role: "user", Content: message})

	content, err := s.gateway.Chat(ctx, model, messages, chatTemperature, chatMaxTokens)
	if err != nil {
		return TutorReply{}, err
	}
	return TutorReply{Content: content, Model: model, ContextUsed: len(contextChunks)}, nil
}

// ParseLanguage reads a forced-language request field. ok is false when the
// field names no supported language.
func ParseLanguage(s string) (Language, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "spanish", "español", "espanol", "es":
		return LangSpanish, true
	case "french", "français", "francais", "fr":
		return LangFrench, true
	case "english", "en":
		return LangEnglish, true
	default:
		return LangEnglish, false
	}
}

// Greeting returns the fixed greeting reply for a language.
func Greeting(lang Language) string {
	switch lang {
	case LangSpanish:
		return spanishGreeting
	case LangFrench:
		return frenchGreeting
	default:
		return englishGreeting
	}
}

// isBareGreeting reports whether the message is only a greeting, allowing
// surrounding punctuation.
func isBareGreeting(lang Language, message string) bool {
	m := strings.ToLower(strings.TrimSpace(message))
	m = strings.Trim(m, "!.,¡¿?~ ")
	if m == "" {
		return false
	}
	for _, w := range greetingWords(lang) {
		if m == w {
			return true
		}
	}
	return false
}

func greetingWords(lang Language) []string {
	switch lang {
	case LangSpanish:
		return []string{"hola", "buenas", "buenos dias", "buenos días", "buenas tardes", "buenas noches", "hey", "hi", "hello"}
	case LangFrench:
		return []string{"salut", "bonjour", "bonsoir", "coucou", "hey", "hi", "hello"}
	default:
		return []string{"hi", "hello", "hey", "yo", "hiya", "good morning", "good afternoon", "good evening"}
	}
}
