package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"ibmentor/models"
)

func TestParseEssayFeedbackRecomputesOverall(t *testing.T) {
	for _, overall := range []string{``, `"overall_score": 0,`, `"overall_score": -3,`} {
		raw := fmt.Sprintf(`{
			%s
			"rubric_scores": {"criterion_a": 4, "criterion_b": 3, "criterion_c": 5, "criterion_d": 2},
			"justifications": {"criterion_a": "clear focus"},
			"improvements": ["expand analysis"],
			"summary": "solid work"
		}`, overall)

		feedback, err := ParseEssayFeedback(raw)
		if err != nil {
			t.Fatalf("unexpected parse error for %q: %v", overall, err)
		}
		if feedback.OverallScore != 14 {
			t.Errorf("overall_score = %v, want 14 (sum of rubric scores) for case %q", feedback.OverallScore, overall)
		}
	}
}

func TestParseEssayFeedbackKeepsExplicitOverall(t *testing.T) {
	raw := `{"rubric_scores": {"criterion_a": 2, "criterion_b": 2, "criterion_c": 2, "criterion_d": 2}, "overall_score": 9, "justifications": {}, "improvements": [], "summary": "s"}`
	feedback, err := ParseEssayFeedback(raw)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if feedback.OverallScore != 9 {
		t.Errorf("overall_score = %v, want the model's explicit 9", feedback.OverallScore)
	}
}

func TestParseEssayFeedbackRoundTripSum(t *testing.T) {
	scores := map[string]float64{"criterion_a": 5, "criterion_b": 4, "criterion_c": 4, "criterion_d": 5}
	raw, _ := json.Marshal(models.EssayFeedback{RubricScores: scores, Justifications: map[string]string{}, Improvements: []string{}, Summary: "s"})

	feedback, err := ParseEssayFeedback(string(raw))
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if feedback.OverallScore != 18 {
		t.Errorf("overall_score = %v, want 18", feedback.OverallScore)
	}
}

func TestParseEssayFeedbackMalformedFallsBack(t *testing.T) {
	cases := []string{
		"I'm sorry, I can't mark this essay.",
		`{"rubric_scores": "not a map"}`,
		`{"justifications": {}, "summary": "missing scores"}`,
		`{"rubric_scores": {}}`,
		"```json\n{broken\n```",
	}
	for _, raw := range cases {
		feedback, err := ParseEssayFeedback(raw)
		if !errors.Is(err, ErrUnparsable) {
			t.Errorf("ParseEssayFeedback(%.30q) err = %v, want ErrUnparsable", raw, err)
		}
		if feedback.OverallScore != 0 {
			t.Errorf("fallback overall_score = %v, want 0", feedback.OverallScore)
		}
		for _, k := range rubricKeys {
			if _, ok := feedback.RubricScores[k]; !ok {
				t.Errorf("fallback missing rubric key %q for input %.30q", k, raw)
			}
		}
		if feedback.Summary == "" {
			t.Errorf("fallback summary empty")
		}
	}
}

func TestMarkEssayNeverFailsOnMalformedOutput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"choices":[{"message":{"content":"Sorry, here are my thoughts instead of JSON."}}]}`)
	}))
	defer srv.Close()

	marker := NewMarkerService(NewOpenRouter("test-key", srv.URL))
	feedback, degraded, err := marker.MarkEssay(context.Background(), "pro", "History HL", "Paper 2", "Assess the causes of WW1.", "The war began because...")
	if err != nil {
		t.Fatalf("MarkEssay returned an error on malformed model output: %v", err)
	}
	if !degraded {
		t.Errorf("degraded = false, want true for malformed output")
	}
	if len(feedback.RubricScores) != len(rubricKeys) || feedback.OverallScore != 0 {
		t.Errorf("fallback feedback malformed: %+v", feedback)
	}
}

func TestMarkEssayPropagatesGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	marker := NewMarkerService(NewOpenRouter("test-key", srv.URL))
	_, _, err := marker.MarkEssay(context.Background(), "free", "History", "Paper 2", "Prompt", "Body")
	if err == nil {
		t.Fatalf("expected gateway error to propagate")
	}
}

func TestParseModelAnswerValid(t *testing.T) {
	raw := `{"model_answer": "The essay should...", "marking_points": ["thesis", "evidence"], "summary": "strong structure"}`
	answer, err := ParseModelAnswer(raw)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if answer.ModelAnswer != "The essay should..." || len(answer.MarkingPoints) != 2 {
		t.Errorf("parsed answer mutated: %+v", answer)
	}
}

func TestParseModelAnswerIncompleteFallsBack(t *testing.T) {
	cases := []string{
		"not json at all",
		`{"model_answer": "", "marking_points": ["p"], "summary": "s"}`,
		`{"model_answer": "a", "marking_points": [], "summary": "s"}`,
		`{"model_answer": "a", "marking_points": ["p"], "summary": "  "}`,
	}
	for _, raw := range cases {
		answer, err := ParseModelAnswer(raw)
		if !errors.Is(err, ErrUnparsable) {
			t.Errorf("ParseModelAnswer(%.40q) err = %v, want ErrUnparsable", raw, err)
		}
		if answer.ModelAnswer == "" || len(answer.MarkingPoints) == 0 || answer.Summary == "" {
			t.Errorf("fallback exemplar incomplete: %+v", answer)
		}
	}
}
