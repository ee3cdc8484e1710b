package openai

import (
	"fmt"
	"strings"

	"github.com/poiesic/minutes/ai"
)

const summaryResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "summary": {
      "type": "array",
      "items": {"type": "string", "minLength": 1},
      "maxItems": %d
    }
  },
  "required": ["summary"],
  "additionalProperties": false
}`

const summaryPromptTemplate = `Summarize the meeting transcript given by the user and return the summary as JSON.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Rules:
- Write at most %d sentences, one sentence per array element.
- Write the summary in %s.
- Prefer decisions, action items and open questions over small talk.
- Use only facts stated in the transcript. Do not hallucinate names, numbers or dates.
- The transcript was produced by speech recognition and may contain misheard words; do not quote obvious errors.
- If the transcript contains nothing worth summarizing, return "summary": [].

Example:
Input: "ok so uh we agreed the launch moves to march. dana will update the roadmap. lunch is at noon."
Output:
{
  "summary": [
    "The launch has been moved to March.",
    "Dana will update the roadmap."
  ]
}`

var profileLanguages = map[ai.Profile]string{
	ai.ProfileEnglish: "English",
	ai.ProfileFrench:  "French",
	ai.ProfileGerman:  "German",
	ai.ProfileSpanish: "Spanish",
}

// buildSystemPrompt creates the system prompt for a summary of n sentences.
func buildSystemPrompt(profile ai.Profile, n int) string {
	language, ok := profileLanguages[profile]
	if !ok {
		language = "the same language as the transcript"
	}
	return fmt.Sprintf(summaryPromptTemplate,
		fmt.Sprintf(summaryResponseSchema, n),
		n,
		language)
}

// buildUserPrompt wraps the transcript so instructions inside it are not
// mistaken for ours.
func buildUserPrompt(transcript string) string {
	var b strings.Builder
	b.WriteString("Transcript:\n<<<\n")
	b.WriteString(transcript)
	b.WriteString("\n>>>")
	return b.String()
}
