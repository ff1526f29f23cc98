package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"ibmentor/models"
)

// fakeGateway records chat-completion requests and answers each with reply.
func fakeGateway(t *testing.T, reply string, calls *atomic.Int32, lastReq *chatCompletionRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if lastReq != nil {
			if err := json.NewDecoder(r.Body).Decode(lastReq); err != nil {
				t.Errorf("decoding gateway request: %v", err)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"choices":[{"message":{"role":"assistant","content":%q}}]}`, reply)
	}))
}

func TestChatGreetingFastPathSpanish(t *testing.T) {
	var calls atomic.Int32
	srv := fakeGateway(t, "should never be reached", &calls, nil)
	defer srv.Close()

	tutor := NewTutorService(NewOpenRouter("k", srv.URL), nil, nil)
	for _, msg := range []string{"hola", "Hola!", " ¡HOLA! ", "buenas"} {
		reply, err := tutor.Chat(context.Background(), "u1", TutorRequest{
			Tier:    "free",
			Subject: "Spanish B HL",
			Message: msg,
		})
		if err != nil {
			t.Fatalf("Chat(%q) error: %v", msg, err)
		}
		if reply.Content != "¡Hola! ¿En qué puedo ayudarte hoy?" {
			t.Errorf("Chat(%q) = %q, want the fixed Spanish greeting", msg, reply.Content)
		}
		if !reply.Greeting || reply.Model != "" {
			t.Errorf("Chat(%q) greeting=%v model=%q, want greeting fast-path markers", msg, reply.Greeting, reply.Model)
		}
	}
	if calls.Load() != 0 {
		t.Errorf("greeting fast-path hit the gateway %d times", calls.Load())
	}
}

func TestChatGreetingFastPathFrench(t *testing.T) {
	var calls atomic.Int32
	srv := fakeGateway(t, "unused", &calls, nil)
	defer srv.Close()

	tutor := NewTutorService(NewOpenRouter("k", srv.URL), nil, nil)
	reply, err := tutor.Chat(context.Background(), "u1", TutorRequest{Tier: "pro", Subject: "FR B HL", Message: "salut"})
	if err != nil {
		t.Fatalf("Chat error: %v", err)
	}
	if reply.Content != "Salut ! Comment puis-je t'aider aujourd'hui ?" {
		t.Errorf("reply = %q, want the fixed French greeting", reply.Content)
	}
	if calls.Load() != 0 {
		t.Errorf("greeting fast-path hit the gateway")
	}
}

func TestChatGreetingWithRealQuestionIsNotShortCircuited(t *testing.T) {
	var calls atomic.Int32
	srv := fakeGateway(t, "claro, vamos", &calls, nil)
	defer srv.Close()

	tutor := NewTutorService(NewOpenRouter("k", srv.URL), nil, nil)
	reply, err := tutor.Chat(context.Background(), "u1", TutorRequest{
		Tier:    "free",
		Subject: "Spanish B",
		Message: "hola, me explicas el subjuntivo?",
	})
	if err != nil {
		t.Fatalf("Chat error: %v", err)
	}
	if reply.Greeting {
		t.Errorf("a real question was short-circuited as a greeting")
	}
	if calls.Load() != 1 {
		t.Errorf("gateway calls = %d, want 1", calls.Load())
	}
	if reply.Content != "claro, vamos" {
		t.Errorf("reply = %q", reply.Content)
	}
}

func TestChatComposesSystemPromptAndPicksModel(t *testing.T) {
	var calls atomic.Int32
	var got chatCompletionRequest
	srv := fakeGateway(t, "ok", &calls, &got)
	defer srv.Close()

	tutor := NewTutorService(NewOpenRouter("k", srv.URL), nil, nil)
	_, err := tutor.Chat(context.Background(), "u1", TutorRequest{
		Tier:    "premium",
		Subject: "Chemistry HL",
		Mode:    "mechanism",
		Message: "walk me through SN1 vs SN2",
		History: []models.ChatMessage{
			{Role: "user", Content: "earlier question"},
			{Role: "assistant", Content: "earlier answer"},
		},
	})
	if err != nil {
		t.Fatalf("Chat error: %v", err)
	}

	// Heavy mode must reach the tier model even for a short message.
	if got.Model != premiumModel {
		t.Errorf("model = %q, want %q", got.Model, premiumModel)
	}
	if len(got.Messages) != 4 {
		t.Fatalf("wire messages = %d, want system + 2 history + user", len(got.Messages))
	}
	if got.Messages[0].Role != "system" || !strings.Contains(got.Messages[0].Content, "Chemistry HL") {
		t.Errorf("system message missing subject persona: %.80q", got.Messages[0].Content)
	}
	if !strings.Contains(got.Messages[0].Content, ModeMechanism.Instruction()) {
		t.Errorf("system message missing mechanism instruction")
	}
	if last := got.Messages[3]; last.Role != "user" || last.Content != "walk me through SN1 vs SN2" {
		t.Errorf("last wire message = %+v", last)
	}
	if got.Temperature != chatTemperature || got.MaxTokens != chatMaxTokens {
		t.Errorf("sampling = (%v, %v), want (%v, %v)", got.Temperature, got.MaxTokens, chatTemperature, chatMaxTokens)
	}
}

func TestChatShortCasualMessageUsesFastModel(t *testing.T) {
	var got chatCompletionRequest
	var calls atomic.Int32
	srv := fakeGateway(t, "ok", &calls, &got)
	defer srv.Close()

	tutor := NewTutorService(NewOpenRouter("k", srv.URL), nil, nil)
	_, err := tutor.Chat(context.Background(), "u1", TutorRequest{
		Tier:    "premium",
		Subject: "Economics SL",
		Message: "what does elasticity mean",
	})
	if err != nil {
		t.Fatalf("Chat error: %v", err)
	}
	if got.Model != fastModel {
		t.Errorf("model = %q, want fast model for a short casual message", got.Model)
	}
}

func TestChatForcedLanguageOverridesSubject(t *testing.T) {
	var got chatCompletionRequest
	var calls atomic.Int32
	srv := fakeGateway(t, "ok", &calls, &got)
	defer srv.Close()

	tutor := NewTutorService(NewOpenRouter("k", srv.URL), nil, nil)
	_, err := tutor.Chat(context.Background(), "u1", TutorRequest{
		Tier:     "free",
		Subject:  "Biology HL",
		Language: "spanish",
		Message:  "explain osmosis with a diagram please and thanks a lot today",
	})
	if err != nil {
		t.Fatalf("Chat error: %v", err)
	}
	if !strings.Contains(got.Messages[0].Content, "Responde en español") {
		t.Errorf("forced Spanish directive missing from system prompt")
	}
}

func TestChatCapsHistory(t *testing.T) {
	var got chatCompletionRequest
	var calls atomic.Int32
	srv := fakeGateway(t, "ok", &calls, &got)
	defer srv.Close()

	history := make([]models.ChatMessage, 30)
	for i := range history {
		history[i] = models.ChatMessage{Role: "user", Content: fmt.Sprintf("m%d", i)}
	}

	tutor := NewTutorService(NewOpenRouter("k", srv.URL), nil, nil)
	_, err := tutor.Chat(context.Background(), "u1", TutorRequest{
		Tier:    "free",
		Subject: "History",
		Message: "one more question about the causes of the first world war",
		History: history,
	})
	if err != nil {
		t.Fatalf("Chat error: %v", err)
	}
	if want := 1 + maxHistoryMessages + 1; len(got.Messages) != want {
		t.Errorf("wire messages = %d, want %d", len(got.Messages), want)
	}
	// The oldest turns fall off, the newest stay.
	if got.Messages[1].Content != "m10" {
		t.Errorf("first history message = %q, want m10", got.Messages[1].Content)
	}
}

func TestChatGatewayErrorPropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	tutor := NewTutorService(NewOpenRouter("k", srv.URL), nil, nil)
	_, err := tutor.Chat(context.Background(), "u1", TutorRequest{
		Tier:    "free",
		Subject: "History",
		Message: "please write a twenty mark essay plan on the cold war for me",
	})
	if err == nil {
		t.Fatalf("expected the gateway error to propagate")
	}
	if !strings.Contains(err.Error(), "500") || !strings.Contains(err.Error(), "quota exceeded") {
		t.Errorf("error %q does not carry status and body", err)
	}
}
