package providers

import (
	"strings"
)

// instruction to make all LLMs reply with one bare JSON question object.
const JSON_INSTRUCTION = `Return ONLY a single JSON object with keys:
"question": string,
"options": array of exactly 4 distinct strings,
"correctAnswer": string (must exactly match one of "options"),
"explanation": string (brief, justifies the correct answer).
No Markdown, no code fences, no extra text.`

// BuildQuestionPrompt: fixed instruction + subject domain for one
// multiple-choice question.
func BuildQuestionPrompt(topic string) string {
	var b strings.Builder
	b.WriteString(JSON_INSTRUCTION)
	b.WriteString("\n\nGenerate one multiple-choice quiz question about: ")
	b.WriteString(topic)
	b.WriteString("\n")
	return b.String()
}
