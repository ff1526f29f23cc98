package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"

	"ibmentor/models"
)

const (
	linkFetchTimeout = 15 * time.Second
	maxLinkBodyBytes = 2 << 20
	maxLinkTextChars = 6000

	linkAnswerTemperature = 0.4
	linkAnswerMaxTokens   = 900
)

const linkAnswerPrompt = `You are an IB %s tutor. Answer the student's question using the page content below. If the page does not cover the question, say so briefly, then answer from general knowledge.

Question: %s

Page content:
%s`

// LinkAnswerService answers a question from the text of a web page. It backs
// the answer-from-link endpoint and the tutor's no-context fallback.
type LinkAnswerService struct {
	gateway    *OpenRouter
	httpClient *http.Client
}

func NewLinkAnswerService(gateway *OpenRouter) *LinkAnswerService {
	return &LinkAnswerService{
		gateway:    gateway,
		httpClient: &http.Client{Timeout: linkFetchTimeout},
	}
}

// Answer fetches the page, strips it down to text and asks the fast model.
func (s *LinkAnswerService) Answer(ctx context.Context, rawURL, question, subject string) (string, error) {
	pageText, err := s.fetchText(ctx, rawURL)
	if err != nil {
		return "", err
	}

	prompt := fmt.Sprintf(linkAnswerPrompt, subject, question, pageText)
	return s.gateway.Chat(ctx, fastModel, []models.ChatMessage{
		{Role: "user", Content: prompt},
	}, linkAnswerTemperature, linkAnswerMaxTokens)
}

func (s *LinkAnswerService) fetchText(ctx context.Context, rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return "", fmt.Errorf("unsupported resource url %q", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "ibmentor/1.0")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("fetching %s: status %d", rawURL, resp.StatusCode)
	}

	doc, err := html.Parse(io.LimitReader(resp.Body, maxLinkBodyBytes))
	if err != nil {
		return "", fmt.Errorf("parsing %s: %w", rawURL, err)
	}

	text := collapseSpace(extractText(doc))
	if text == "" {
		return "", fmt.Errorf("no readable text at %s", rawURL)
	}
	if len(text) > maxLinkTextChars {
		text = text[:maxLinkTextChars]
	}
	return text, nil
}

// extractText walks the DOM collecting text nodes, skipping markup that never
// holds page copy.
func extractText(n *html.Node) string {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "script", "style", "noscript", "head", "template", "iframe":
			return ""
		}
	}

	var b strings.Builder
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
		b.WriteString(" ")
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		b.WriteString(extractText(child))
	}
	return b.String()
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
