package services

import (
	"strings"
	"testing"
)

func TestPickModelShortMessageAlwaysFast(t *testing.T) {
	tiers := []string{"free", "pro", "elite", "premium", "PRO", "", "enterprise"}
	lightModes := []Mode{ModeNone, ModeExplain, ModePractice, ModeRevise}
	text := "can you explain oxidation numbers to me again please" // 9 words

	for _, tier := range tiers {
		for _, mode := range lightModes {
			if got := PickModel(tier, mode, text); got != fastModel {
				t.Errorf("PickModel(%q, %v, short text) = %q, want fast model", tier, mode, got)
			}
		}
	}
}

func TestPickModelHeavyModeIgnoresLength(t *testing.T) {
	if got := PickModel("premium", ModeMark, "mark this"); got != premiumModel {
		t.Errorf("PickModel(premium, mark, short) = %q, want premium model", got)
	}
	if got := PickModel("elite", ModeDerive, "derive it"); got != eliteModel {
		t.Errorf("PickModel(elite, derive, short) = %q, want elite model", got)
	}
}

func TestPickModelTierTable(t *testing.T) {
	long := strings.Repeat("word ", 20)
	cases := map[string]string{
		"free":    freeModel,
		"pro":     proModel,
		"elite":   eliteModel,
		"premium": premiumModel,
		"Elite":   eliteModel,
		"":        freeModel,
		"bogus":   freeModel,
	}
	for tier, want := range cases {
		if got := PickModel(tier, ModeNone, long); got != want {
			t.Errorf("PickModel(%q, none, long text) = %q, want %q", tier, got, want)
		}
	}
}

func TestPickModelBoundaryAtTwelveWords(t *testing.T) {
	twelve := strings.TrimSpace(strings.Repeat("w ", 12))
	thirteen := strings.TrimSpace(strings.Repeat("w ", 13))
	if got := PickModel("premium", ModeNone, twelve); got != fastModel {
		t.Errorf("12-word message got %q, want fast model", got)
	}
	if got := PickModel("premium", ModeNone, thirteen); got != premiumModel {
		t.Errorf("13-word message got %q, want premium model", got)
	}
}

func TestParseModeRoundTrip(t *testing.T) {
	modes := []Mode{
		ModeExplain, ModePractice, ModeRevise, ModeExamGen, ModeMark,
		ModeDerive, ModeMechanism, ModeCommentary, ModeEssayPlan, ModePathway,
	}
	for _, m := range modes {
		if got := ParseMode(m.String()); got != m {
			t.Errorf("ParseMode(%q) = %v, want %v", m.String(), got, m)
		}
	}
	if got := ParseMode("  EXAMGEN "); got != ModeExamGen {
		t.Errorf("ParseMode is not case/space tolerant, got %v", got)
	}
	if got := ParseMode("juggling"); got != ModeNone {
		t.Errorf("ParseMode(unknown) = %v, want ModeNone", got)
	}
}

func TestHeavyModeSet(t *testing.T) {
	heavy := []Mode{ModeExamGen, ModeMark, ModeDerive, ModeMechanism, ModeCommentary, ModeEssayPlan, ModePathway}
	for _, m := range heavy {
		if !m.Heavy() {
			t.Errorf("%v.Heavy() = false, want true", m)
		}
	}
	light := []Mode{ModeNone, ModeExplain, ModePractice, ModeRevise}
	for _, m := range light {
		if m.Heavy() {
			t.Errorf("%v.Heavy() = true, want false", m)
		}
	}
}

func TestComposeSystemPromptOrdering(t *testing.T) {
	persona := "You are a patient tutor."
	got := ComposeSystemPrompt(persona, ModeExplain, LangSpanish, "", []string{"osmosis moves water", "diffusion moves solutes"})

	idxPersona := strings.Index(got, persona)
	idxMode := strings.Index(got, ModeExplain.Instruction())
	idxTone := strings.Index(got, "Conversation rules:")
	idxLang := strings.Index(got, "Responde en español")
	idxCtx := strings.Index(got, "[1] osmosis moves water")

	if idxPersona != 0 {
		t.Fatalf("prompt does not start with the persona")
	}
	for name, idx := range map[string]int{"mode": idxMode, "tone": idxTone, "language": idxLang, "context": idxCtx} {
		if idx < 0 {
			t.Fatalf("prompt is missing the %s section:\n%s", name, got)
		}
	}
	if !(idxPersona < idxMode && idxMode < idxTone && idxTone < idxLang && idxLang < idxCtx) {
		t.Errorf("prompt sections out of order: persona=%d mode=%d tone=%d lang=%d ctx=%d",
			idxPersona, idxMode, idxTone, idxLang, idxCtx)
	}
	if !strings.Contains(got, "[2] diffusion moves solutes") {
		t.Errorf("second context chunk not numbered [2]")
	}
}

func TestComposeSystemPromptOmissions(t *testing.T) {
	got := ComposeSystemPrompt("Persona.", ModeNone, LangEnglish, "", nil)
	if strings.Contains(got, "Respond in") {
		t.Errorf("English must not add a language directive")
	}
	if strings.Contains(got, "[1]") {
		t.Errorf("empty context must not add a citation block")
	}
	if !strings.Contains(got, "Conversation rules:") {
		t.Errorf("tone rules must always be present")
	}
	// Deterministic for identical inputs.
	if again := ComposeSystemPrompt("Persona.", ModeNone, LangEnglish, "", nil); again != got {
		t.Errorf("ComposeSystemPrompt is not deterministic")
	}
}

func TestComposeSystemPromptFrenchDirective(t *testing.T) {
	got := ComposeSystemPrompt("Persona.", ModeNone, LangFrench, "", nil)
	if !strings.Contains(got, "Réponds en français") {
		t.Errorf("French directive missing:\n%s", got)
	}
}

func TestComposeSystemPromptUnmodeledForcedLanguage(t *testing.T) {
	got := ComposeSystemPrompt("Persona.", ModeNone, LangEnglish, "german", nil)
	if !strings.Contains(got, "Respond in German.") {
		t.Errorf("forced language directive missing:\n%s", got)
	}

	// A forced language the resolver models takes its own directive instead.
	got = ComposeSystemPrompt("Persona.", ModeNone, LangSpanish, "spanish", nil)
	if !strings.Contains(got, "Responde en español") {
		t.Errorf("Spanish directive missing:\n%s", got)
	}
	if strings.Contains(got, "Respond in") {
		t.Errorf("generic directive must not appear for a modeled language:\n%s", got)
	}
}
