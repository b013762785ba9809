package gateway

import (
	"regexp"
	"strings"
)

// TemplateSource resolves the prompt template for a block type.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - A missing template is reported with ok=false, never an error.
type TemplateSource interface {
	Template(blockType string) (tmpl string, ok bool)
}

// TemplateMap is a static TemplateSource.
type TemplateMap map[string]string

// Template implements TemplateSource.
func (m TemplateMap) Template(blockType string) (string, bool) {
	t, ok := m[blockType]
	return t, ok
}

const templatePreamble = `You are an instructional designer writing for the course "{{courseTitle}}".
Module: {{moduleName}}
Lesson: {{lessonName}}
Learning objectives:
{{learningObjectives}}
Existing blocks in this lesson:
{{existingBlocks}}

Write in a {{tone}} tone at a {{readingLevel}} reading level. Aim for a {{length}} treatment.
{{examplesInstruction}}

`

// DefaultTemplates returns the built-in templates. Every template asks for a
// JSON response so the result can be stored as structured content.
func DefaultTemplates() TemplateMap {
	return TemplateMap{
		"text": templatePreamble + `Write a lesson text block about: {{prompt}}
Respond with JSON only: {"title": string, "body": string (markdown)}`,

		"quiz": templatePreamble + `Write a multiple-choice quiz about: {{prompt}}
Respond with JSON only: {"title": string, "questions": [{"question": string, "options": [string], "correctIndex": number, "explanation": string}]}`,

		"flashcards": templatePreamble + `Write a set of flashcards about: {{prompt}}
Respond with JSON only: {"title": string, "cards": [{"front": string, "back": string}]}`,

		"reflection": templatePreamble + `Write a reflection prompt about: {{prompt}}
Respond with JSON only: {"title": string, "prompt": string, "guidingQuestions": [string]}`,

		"discussion": templatePreamble + `Write a discussion activity about: {{prompt}}
Respond with JSON only: {"title": string, "question": string, "talkingPoints": [string]}`,

		"case-study": templatePreamble + `Write a case study about: {{prompt}}
Respond with JSON only: {"title": string, "scenario": string, "questions": [string], "takeaways": [string]}`,

		"checklist": templatePreamble + `Write a practical checklist about: {{prompt}}
Respond with JSON only: {"title": string, "items": [{"label": string, "detail": string}]}`,
	}
}

var placeholderPattern = regexp.MustCompile(`\{\{\s*([A-Za-z][A-Za-z0-9_]*)\s*\}\}`)

// Interpolate replaces every {{name}} in tmpl with vars[name]. Placeholders
// without a variable are replaced with the empty string.
func Interpolate(tmpl string, vars map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(tmpl, func(m string) string {
		name := placeholderPattern.FindStringSubmatch(m)[1]
		return vars[name]
	})
}

func bulletList(items []string) string {
	if len(items) == 0 {
		return "- (none)"
	}
	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("- ")
		b.WriteString(item)
	}
	return b.String()
}
