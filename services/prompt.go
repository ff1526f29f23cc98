package services

import (
	"fmt"
	"strings"
	"unicode"
)

// Mode is the conversation mode the student picked for a tutoring exchange.
type Mode int

const (
	ModeNone Mode = iota
	ModeExplain
	ModePractice
	ModeRevise
	ModeExamGen
	ModeMark
	ModeDerive
	ModeMechanism
	ModeCommentary
	ModeEssayPlan
	ModePathway
)

// ParseMode maps a wire-level mode string to a Mode. Unknown strings map to
// ModeNone, which contributes no instruction to the prompt.
func ParseMode(s string) Mode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "explain":
		return ModeExplain
	case "practice":
		return ModePractice
	case "revise":
		return ModeRevise
	case "examgen":
		return ModeExamGen
	case "mark":
		return ModeMark
	case "derive":
		return ModeDerive
	case "mechanism":
		return ModeMechanism
	case "commentary":
		return ModeCommentary
	case "essayplan":
		return ModeEssayPlan
	case "pathway":
		return ModePathway
	default:
		return ModeNone
	}
}

func (m Mode) String() string {
	switch m {
	case ModeExplain:
		return "explain"
	case ModePractice:
		return "practice"
	case ModeRevise:
		return "revise"
	case ModeExamGen:
		return "examgen"
	case ModeMark:
		return "mark"
	case ModeDerive:
		return "derive"
	case ModeMechanism:
		return "mechanism"
	case ModeCommentary:
		return "commentary"
	case ModeEssayPlan:
		return "essayplan"
	case ModePathway:
		return "pathway"
	default:
		return ""
	}
}

// Heavy reports whether the mode always warrants the tier model, even for
// short messages.
func (m Mode) Heavy() bool {
	switch m {
	case ModeExamGen, ModeMark, ModeDerive, ModeMechanism, ModeCommentary, ModeEssayPlan, ModePathway:
		return true
	default:
		return false
	}
}

// Instruction returns the mode-specific prompt section. ModeNone and
// unrecognized modes contribute nothing.
func (m Mode) Instruction() string {
	switch m {
	case ModeExplain:
		return "The student wants a concept explained. Break it down step by step, check understanding with a short question before moving on, and finish with a one-line takeaway."
	case ModePractice:
		return "Run a practice session. Ask one exam-style question at a time, wait for the student's attempt, then give feedback against the markscheme before the next question."
	case ModeRevise:
		return "Run a rapid-fire revision session. Quiz key definitions and facts one at a time, keep score, and recap weak spots at the end."
	case ModeExamGen:
		return "Write a full exam-style question set for the requested topic: IB command terms, realistic mark allocations per part, and a markscheme at the end."
	case ModeMark:
		return "Mark the student's work strictly against the relevant IB criteria. Quote the exact words you are rewarding or penalizing, give a mark per criterion, and state what would lift it one band."
	case ModeDerive:
		return "Derive the requested result from first principles. Show every algebraic step on its own line, name the rule used at each step, and box the final result."
	case ModeMechanism:
		return "Explain the reaction mechanism step by step: electron movement, intermediates, and the rate-determining step, in the order they occur."
	case ModeCommentary:
		return "Guide a close textual commentary. Work through the extract line by line, naming techniques and linking each to its effect, building towards a thesis about the whole passage."
	case ModeEssayPlan:
		return "Build a comparative essay plan: thesis, three body paragraphs each with a point, evidence from both works, and a link back to the question, plus a conclusion strategy."
	case ModePathway:
		return "Map the biological pathway end to end: inputs, outputs, locations, and regulation points, then test the student with a prediction question about a perturbation."
	default:
		return ""
	}
}

const toneRules = `Conversation rules:
- If the student sends a short greeting or casual message, reply briefly and warmly; do not launch into a lesson.
- Match the length and tone of the student's message; stay concise.
- Prefer short bullet points over dense paragraphs when listing.
- Write all mathematics in LaTeX notation, inline as $...$ and display as $$...$$.`

const spanishDirective = `Responde en español. Si el estudiante te saluda, responde con un saludo breve como "¡Hola! ¿En qué puedo ayudarte hoy?".`

const frenchDirective = `Réponds en français. Si l'élève te salue, réponds par une salutation brève comme « Salut ! Comment puis-je t'aider aujourd'hui ? ».`

// ComposeSystemPrompt assembles the system prompt for one exchange: persona,
// mode instruction, tone rules, language directive and, when retrieval found
// anything, a numbered context block. Pure function. forced is the raw
// requested language, kept so languages the resolver does not model still get
// a directive.
func ComposeSystemPrompt(persona string, mode Mode, lang Language, forced string, contextChunks []string) string {
	var b strings.Builder
	b.WriteString(persona)

	if inst := mode.Instruction(); inst != "" {
		b.WriteString("\n\n")
		b.WriteString(inst)
	}

	b.WriteString("\n\n")
	b.WriteString(toneRules)

	if dir := languageDirective(lang, forced); dir != "" {
		b.WriteString("\n\n")
		b.WriteString(dir)
	}

	if len(contextChunks) > 0 {
		b.WriteString("\n\nBackground context from the student's own notes follows. Ground your answer in it where it is relevant and cite passages by number, like [1] or [2]. If the context does not cover the question, say so and answer from general knowledge.")
		for i, chunk := range contextChunks {
			fmt.Fprintf(&b, "\n\n[%d] %s", i+1, strings.TrimSpace(chunk))
		}
	}

	return b.String()
}

func languageDirective(lang Language, forced string) string {
	forced = strings.TrimSpace(forced)
	if _, known := ParseLanguage(forced); forced != "" && !known {
		return "Respond in " + titleLanguage(forced) + "."
	}
	switch lang {
	case LangSpanish:
		return spanishDirective
	case LangFrench:
		return frenchDirective
	default:
		return ""
	}
}

func titleLanguage(s string) string {
	runes := []rune(strings.ToLower(s))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// OpenRouter model ids per subscription tier.
const (
	fastModel    = "google/gemini-2.0-flash-001"
	freeModel    = "google/gemini-2.0-flash-001"
	proModel     = "openai/gpt-4o-mini"
	eliteModel   = "openai/gpt-4o"
	premiumModel = "anthropic/claude-3.5-sonnet"
)

// A message this short is casual conversation unless the mode says otherwise.
const shortMessageWords = 12

// PickModel returns the model id for one request. Short casual messages take
// the fast model regardless of tier; everything else is a tier lookup with
// free as the default.
func PickModel(tier string, mode Mode, userText string) string {
	if !mode.Heavy() && len(strings.Fields(userText)) <= shortMessageWords {
		return fastModel
	}
	switch strings.ToLower(strings.TrimSpace(tier)) {
	case "premium":
		return premiumModel
	case "elite":
		return eliteModel
	case "pro":
		return proModel
	default:
		return freeModel
	}
}
