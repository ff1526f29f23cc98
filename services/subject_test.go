package services

import (
	"strings"
	"testing"
)

func TestResolveSubjectSpanishVariants(t *testing.T) {
	labels := []string{
		"Spanish B",
		"SPANISH ab initio",
		"Español B (HL)",
		"espanol b sl",
		"IB Spanish A HL",
		"sp b hl",
	}
	for _, label := range labels {
		d := ResolveSubject(label)
		if d.Language != LangSpanish {
			t.Errorf("ResolveSubject(%q).Language = %v, want Spanish", label, d.Language)
		}
		if !d.IsLanguage {
			t.Errorf("ResolveSubject(%q).IsLanguage = false, want true", label)
		}
		if !strings.HasPrefix(d.Persona(), "Eres") {
			t.Errorf("ResolveSubject(%q) persona is not a Spanish template", label)
		}
	}
}

func TestResolveSubjectEnglishLangLitIsNotALanguageCourse(t *testing.T) {
	for _, label := range []string{"English Lang & Lit", "english   language and literature"} {
		d := ResolveSubject(label)
		if d.IsLanguage {
			t.Errorf("ResolveSubject(%q).IsLanguage = true, want false", label)
		}
		if d.Language != LangEnglish {
			t.Errorf("ResolveSubject(%q).Language = %v, want English", label, d.Language)
		}
	}
}

func TestResolveSubjectAbInitio(t *testing.T) {
	labels := []string{
		"Spanish Ab Initio",
		"spanish AB INITIO sl",
		"french ab  initio",
		"AB\tINITIO spanish",
	}
	for _, label := range labels {
		if d := ResolveSubject(label); d.Course != CourseAbInitio {
			t.Errorf("ResolveSubject(%q).Course = %v, want Ab Initio", label, d.Course)
		}
	}
}

func TestResolveSubjectFrenchBHL(t *testing.T) {
	d := ResolveSubject("FR B HL")
	if d.Language != LangFrench {
		t.Errorf("Language = %v, want French", d.Language)
	}
	if d.Course != CourseB {
		t.Errorf("Course = %v, want B", d.Course)
	}
	if d.Level != LevelHL {
		t.Errorf("Level = %v, want HL", d.Level)
	}
	if got := d.Persona(); got != frenchBHLPersona {
		t.Errorf("Persona() did not pick the French B HL template, got %q", got[:40])
	}
}

func TestResolveSubjectParenthesizedLevel(t *testing.T) {
	d := ResolveSubject("Spanish B (HL)")
	if d.Level != LevelHL {
		t.Errorf("Level = %v, want HL", d.Level)
	}
	if d.Course != CourseB {
		t.Errorf("Course = %v, want B", d.Course)
	}
	if got := d.Persona(); got != spanishBHLPersona {
		t.Errorf("Persona() did not pick the Spanish B HL template, got %q", got[:40])
	}
}

func TestResolveSubjectPersonaFallbackChain(t *testing.T) {
	// Language with course but no level falls to the course template.
	if got := ResolveSubject("French A").Persona(); got != frenchAPersona {
		t.Errorf("French A persona fell through to %q", got[:40])
	}
	// Language without course or level falls to the generic language template.
	if got := ResolveSubject("French").Persona(); got != frenchPersona {
		t.Errorf("bare French persona fell through to %q", got[:40])
	}
	// Non-language subjects get a subject-named tutor persona.
	if got := ResolveSubject("Chemistry HL").Persona(); !strings.Contains(got, "Chemistry HL") {
		t.Errorf("Chemistry persona does not name the subject: %q", got[:40])
	}
	// Empty input still resolves.
	if got := ResolveSubject("").Persona(); got != genericTutorPersona {
		t.Errorf("empty subject did not resolve to the generic tutor persona")
	}
}

func TestResolveSubjectUnknownNeverFails(t *testing.T) {
	for _, label := range []string{"", "   ", "Basket Weaving 101", "数学"} {
		d := ResolveSubject(label)
		if d.Persona() == "" {
			t.Errorf("ResolveSubject(%q) produced an empty persona", label)
		}
	}
}
