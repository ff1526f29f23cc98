package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ibmentor/models"
)

func TestChatReturnsFirstChoice(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody chatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"choices":[{"message":{"role":"assistant","content":"bonjour"}},{"message":{"role":"assistant","content":"ignored"}}]}`)
	}))
	defer srv.Close()

	client := NewOpenRouter("sk-test", srv.URL)
	got, err := client.Chat(context.Background(), "openai/gpt-4o-mini", []models.ChatMessage{
		{Role: "system", Content: "be brief"},
		{Role: "user", Content: "say hi in french"},
	}, 0.7, 256)
	if err != nil {
		t.Fatalf("Chat error: %v", err)
	}
	if got != "bonjour" {
		t.Errorf("Chat = %q, want first choice content", got)
	}
	if gotPath != "/chat/completions" {
		t.Errorf("path = %q", gotPath)
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("auth header = %q", gotAuth)
	}
	if gotBody.Model != "openai/gpt-4o-mini" || gotBody.MaxTokens != 256 || gotBody.Temperature != 0.7 {
		t.Errorf("request body = %+v", gotBody)
	}
	if len(gotBody.Messages) != 2 || gotBody.Messages[1].Content != "say hi in french" {
		t.Errorf("messages not forwarded verbatim: %+v", gotBody.Messages)
	}
}

func TestChatErrorCarriesStatusAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewOpenRouter("sk-test", srv.URL)
	_, err := client.Chat(context.Background(), "m", []models.ChatMessage{{Role: "user", Content: "x"}}, 0.5, 10)
	if err == nil {
		t.Fatalf("want error on 500")
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("error %q missing status code", err)
	}
	if !strings.Contains(err.Error(), "quota exceeded") {
		t.Errorf("error %q missing response body", err)
	}
}

func TestChatEmptyContentIsErrNoContent(t *testing.T) {
	bodies := []string{
		`{"choices":[]}`,
		`{"choices":[{"message":{"role":"assistant","content":""}}]}`,
		`{}`,
	}
	for _, body := range bodies {
		body := body
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, body)
		}))

		client := NewOpenRouter("sk-test", srv.URL)
		_, err := client.Chat(context.Background(), "m", []models.ChatMessage{{Role: "user", Content: "x"}}, 0.5, 10)
		if !errors.Is(err, ErrNoContent) {
			t.Errorf("body %q: err = %v, want ErrNoContent", body, err)
		}
		srv.Close()
	}
}

func TestChatHonorsContextCancel(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewOpenRouter("sk-test", srv.URL)
	if _, err := client.Chat(ctx, "m", []models.ChatMessage{{Role: "user", Content: "x"}}, 0.5, 10); err == nil {
		t.Fatalf("want error for canceled context")
	}
}

func TestEmbedReturnsVector(t *testing.T) {
	var gotBody embeddingRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"data":[{"embedding":[0.1,0.2,0.3]}]}`)
	}))
	defer srv.Close()

	client := NewOpenRouter("sk-test", srv.URL)
	vec, err := client.Embed(context.Background(), "osmosis definition")
	if err != nil {
		t.Fatalf("Embed error: %v", err)
	}
	if len(vec) != 3 || vec[1] != 0.2 {
		t.Errorf("Embed = %v", vec)
	}
	if gotBody.Model != embeddingModel || gotBody.Input != "osmosis definition" {
		t.Errorf("request body = %+v", gotBody)
	}
}

func TestEmbedEmptyDataIsErrNoContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"data":[]}`)
	}))
	defer srv.Close()

	client := NewOpenRouter("sk-test", srv.URL)
	if _, err := client.Embed(context.Background(), "x"); !errors.Is(err, ErrNoContent) {
		t.Errorf("err = %v, want ErrNoContent", err)
	}
}

func TestNewOpenRouterTrimsBaseURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q, double slash not trimmed", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"choices":[{"message":{"content":"ok"}}]}`)
	}))
	defer srv.Close()

	client := NewOpenRouter("sk-test", srv.URL+"/")
	if _, err := client.Chat(context.Background(), "m", []models.ChatMessage{{Role: "user", Content: "x"}}, 0.5, 10); err != nil {
		t.Fatalf("Chat error: %v", err)
	}
}
