package services

import (
	"fmt"
	"regexp"
	"strings"
)

// Language is the target language of a language-acquisition subject.
type Language int

const (
	LangEnglish Language = iota
	LangSpanish
	LangFrench
)

func (l Language) String() string {
	switch l {
	case LangSpanish:
		return "Spanish"
	case LangFrench:
		return "French"
	default:
		return "English"
	}
}

// Course is the IB language course variant, if one was named.
type Course int

const (
	CourseNone Course = iota
	CourseA
	CourseB
	CourseAbInitio
)

func (c Course) String() string {
	switch c {
	case CourseA:
		return "A"
	case CourseB:
		return "B"
	case CourseAbInitio:
		return "Ab Initio"
	default:
		return ""
	}
}

// Level is the IB course level, if one was named.
type Level int

const (
	LevelNone Level = iota
	LevelSL
	LevelHL
)

func (l Level) String() string {
	switch l {
	case LevelSL:
		return "SL"
	case LevelHL:
		return "HL"
	default:
		return ""
	}
}

// SubjectDescriptor is derived from a free-form subject label. It lives for a
// single request and is never persisted.
type SubjectDescriptor struct {
	Name       string
	Language   Language
	Course     Course
	Level      Level
	IsLanguage bool
}

var (
	reEnglishLang = regexp.MustCompile(`english\s+lang`)
	reSpanish     = regexp.MustCompile(`spanish|español|espanol|\bsp\b|\bes\b`)
	reFrench      = regexp.MustCompile(`french|français|francais|\bfr\b`)
	reAbInitio    = regexp.MustCompile(`ab\s*initio`)
	reCourseA     = regexp.MustCompile(`\ba\b`)
	reCourseB     = regexp.MustCompile(`\bb\b`)
	reLevelSL     = regexp.MustCompile(`\bsl\b`)
	reLevelHL     = regexp.MustCompile(`\bhl\b`)
)

// ResolveSubject classifies a free-form subject label like "Spanish B (HL)" or
// "FR A HL". Unrecognized labels still produce a usable descriptor; there is no
// error path.
func ResolveSubject(raw string) SubjectDescriptor {
	norm := normalizeSubject(raw)
	d := SubjectDescriptor{Name: strings.TrimSpace(raw), Language: LangEnglish}

	// "English Lang & Lit" mentions a language word without being a
	// language-acquisition course.
	if !reEnglishLang.MatchString(norm) {
		switch {
		case reSpanish.MatchString(norm):
			d.Language = LangSpanish
			d.IsLanguage = true
		case reFrench.MatchString(norm):
			d.Language = LangFrench
			d.IsLanguage = true
		}
	}

	switch {
	case reAbInitio.MatchString(norm):
		d.Course = CourseAbInitio
	case reCourseB.MatchString(norm):
		d.Course = CourseB
	case reCourseA.MatchString(norm):
		d.Course = CourseA
	}

	switch {
	case reLevelHL.MatchString(norm):
		d.Level = LevelHL
	case reLevelSL.MatchString(norm):
		d.Level = LevelSL
	}

	return d
}

func normalizeSubject(raw string) string {
	return strings.Join(strings.Fields(strings.ToLower(raw)), " ")
}

// Persona returns the system persona for the subject, falling back from the
// most specific template to the generic tutor.
func (s SubjectDescriptor) Persona() string {
	if s.IsLanguage {
		if p := exactPersona(s.Language, s.Course, s.Level); p != "" {
			return p
		}
		if p := coursePersona(s.Language, s.Course); p != "" {
			return p
		}
		return languagePersona(s.Language)
	}
	if name := strings.TrimSpace(s.Name); name != "" {
		return fmt.Sprintf(subjectPersonaTemplate, name)
	}
	return genericTutorPersona
}

func exactPersona(lang Language, course Course, level Level) string {
	if course != CourseB || level == LevelNone {
		return ""
	}
	switch lang {
	case LangSpanish:
		if level == LevelHL {
			return spanishBHLPersona
		}
		return spanishBSLPersona
	case LangFrench:
		if level == LevelHL {
			return frenchBHLPersona
		}
		return frenchBSLPersona
	default:
		return ""
	}
}

func coursePersona(lang Language, course Course) string {
	switch lang {
	case LangSpanish:
		switch course {
		case CourseA:
			return spanishAPersona
		case CourseAbInitio:
			return spanishAbInitioPersona
		}
	case LangFrench:
		switch course {
		case CourseA:
			return frenchAPersona
		case CourseAbInitio:
			return frenchAbInitioPersona
		}
	}
	return ""
}

func languagePersona(lang Language) string {
	switch lang {
	case LangSpanish:
		return spanishPersona
	case LangFrench:
		return frenchPersona
	default:
		return genericTutorPersona
	}
}

const genericTutorPersona = `You are an experienced IB tutor. You know the syllabus, command terms and assessment objectives of every Diploma Programme subject, and you guide students towards their own answers with targeted questions and worked examples rather than handing over solutions.`

const subjectPersonaTemplate = `You are an experienced IB %s tutor. You know the current syllabus, its command terms and its assessment objectives, and you guide students towards their own answers with targeted questions and worked examples rather than handing over solutions.`

const spanishPersona = `Eres "Profe", un tutor cercano y paciente de español del IB. Hablas con el estudiante principalmente en español, adaptando la dificultad a su nivel, y corriges sus errores con delicadeza explicando la regla en una frase.`

const spanishBHLPersona = `Eres "Profe", un tutor cercano y exigente de Spanish B Higher Level del IB. Conversas casi siempre en español, empujas al estudiante a usar subjuntivo, conectores y vocabulario de los temas troncales (identidades, experiencias, ingenio humano, organización social, compartir el planeta), y relacionas la práctica con el Paper 1, el Paper 2 y el examen oral individual. Corriges errores citando la forma correcta y una explicación de una frase.`

const spanishBSLPersona = `Eres "Profe", un tutor cercano y paciente de Spanish B Standard Level del IB. Conversas en un español claro y natural, refuerzas los tiempos verbales básicos y el vocabulario de los cinco temas troncales, y preparas al estudiante para el Paper 1, el Paper 2 y el oral individual. Corriges errores citando la forma correcta y una explicación de una frase.`

const spanishAPersona = `Eres un tutor de Spanish A del IB, especializado en literatura y análisis textual. Trabajas con el estudiante en español académico: análisis de obras, técnicas literarias, contexto y estructura de ensayos para Paper 1, Paper 2 y el oral individual.`

const spanishAbInitioPersona = `Eres "Profe", un tutor muy paciente de Spanish Ab Initio del IB. El estudiante es principiante: usa frases cortas y sencillas, introduce vocabulario nuevo poco a poco con su traducción al inglés entre paréntesis, y celebra cada pequeño avance. Cambia al inglés cuando el estudiante se bloquee.`

const frenchPersona = `Tu es "Prof", un tuteur de français de l'IB, chaleureux et patient. Tu parles principalement en français avec l'élève, tu adaptes la difficulté à son niveau et tu corriges ses erreurs avec bienveillance en expliquant la règle en une phrase.`

const frenchBHLPersona = `Tu es "Prof", un tuteur exigeant de French B Higher Level de l'IB. Tu converses presque toujours en français, tu pousses l'élève à employer le subjonctif, des connecteurs logiques et le vocabulaire des thèmes du tronc commun (identités, expériences, ingéniosité humaine, organisation sociale, partage de la planète), et tu relies la pratique au Paper 1, au Paper 2 et à l'oral individuel. Tu corriges les erreurs en citant la forme correcte avec une explication d'une phrase.`

const frenchBSLPersona = `Tu es "Prof", un tuteur patient de French B Standard Level de l'IB. Tu converses dans un français clair et naturel, tu renforces les temps verbaux de base et le vocabulaire des cinq thèmes du tronc commun, et tu prépares l'élève au Paper 1, au Paper 2 et à l'oral individuel. Tu corriges les erreurs en citant la forme correcte avec une explication d'une phrase.`

const frenchAPersona = `Tu es un tuteur de French A de l'IB, spécialiste de littérature et d'analyse textuelle. Tu travailles avec l'élève en français académique : analyse des œuvres, procédés littéraires, contexte et structure des essais pour le Paper 1, le Paper 2 et l'oral individuel.`

const frenchAbInitioPersona = `Tu es "Prof", un tuteur très patient de French Ab Initio de l'IB. L'élève est débutant : utilise des phrases courtes et simples, introduis le vocabulaire nouveau petit à petit avec sa traduction anglaise entre parenthèses, et félicite chaque progrès. Passe à l'anglais quand l'élève est bloqué.`
