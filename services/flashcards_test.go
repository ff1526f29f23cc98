package services

import (
	"encoding/json"
	"testing"

	"ibmentor/models"
)

func TestParseCardsWellFormedPassesThrough(t *testing.T) {
	want := []models.CardContent{
		{Question: "What is osmosis?", Answer: "Movement of water across a partially permeable membrane."},
		{Question: "Define active transport.", Answer: "Movement against a concentration gradient using ATP."},
	}
	raw, _ := json.Marshal(want)

	got, degraded := ParseCards(string(raw), 10)
	if degraded {
		t.Fatalf("well-formed JSON reported degraded")
	}
	if len(got) != len(want) {
		t.Fatalf("got %d cards, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("card %d mutated: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestParseCardsTruncatesToCount(t *testing.T) {
	cards := make([]models.CardContent, 8)
	for i := range cards {
		cards[i] = models.CardContent{Question: "Q?", Answer: "A"}
	}
	raw, _ := json.Marshal(cards)

	got, degraded := ParseCards(string(raw), 5)
	if degraded {
		t.Fatalf("well-formed JSON reported degraded")
	}
	if len(got) != 5 {
		t.Errorf("got %d cards, want 5", len(got))
	}
}

func TestParseCardsStripsCodeFence(t *testing.T) {
	raw := "```json\n[{\"question\":\"What is pH?\",\"answer\":\"-log10 of hydrogen ion concentration.\"}]\n```"
	got, degraded := ParseCards(raw, 3)
	if degraded || len(got) != 1 {
		t.Fatalf("fenced JSON not parsed cleanly: degraded=%v cards=%d", degraded, len(got))
	}
	if got[0].Question != "What is pH?" {
		t.Errorf("question = %q", got[0].Question)
	}
}

func TestParseCardsLinePairingFallback(t *testing.T) {
	raw := `1. Q: What organelle performs photosynthesis
A: The chloroplast.
2) Question: State the function of ribosomes
Answer: Protein synthesis.`

	got, degraded := ParseCards(raw, 10)
	if !degraded {
		t.Fatalf("plain text did not report degraded")
	}
	if len(got) != 2 {
		t.Fatalf("got %d cards, want 2: %+v", len(got), got)
	}
	if got[0].Question != "What organelle performs photosynthesis?" {
		t.Errorf("numbering/label not stripped or ? not appended: %q", got[0].Question)
	}
	if got[0].Answer != "The chloroplast." {
		t.Errorf("answer label not stripped: %q", got[0].Answer)
	}
	if got[1].Question != "State the function of ribosomes?" {
		t.Errorf("second question = %q", got[1].Question)
	}
}

func TestParseCardsFallbackRespectsCount(t *testing.T) {
	raw := `What is A
first
What is B
second
What is C
third`
	got, degraded := ParseCards(raw, 2)
	if !degraded {
		t.Fatalf("plain text did not report degraded")
	}
	if len(got) != 2 {
		t.Errorf("got %d cards, want 2", len(got))
	}
}

func TestParseCardsGarbageYieldsEmpty(t *testing.T) {
	got, degraded := ParseCards("no pairs here", 5)
	if !degraded {
		t.Fatalf("garbage did not report degraded")
	}
	if len(got) != 0 {
		t.Errorf("got %d cards from a single line, want 0", len(got))
	}
}
