package classifier

import "strings"

// CharacterPlaceholder is replaced by the character name in prompt templates.
const CharacterPlaceholder = "{$characterName}"

// DefaultPromptTemplate asks for a single label from the default taxonomy.
const DefaultPromptTemplate = "Analyze the emotional state of {$characterName} in the following text. " +
	"Reply with exactly one of the following emotions: Happy, Sad, Angry, Surprised, Neutral. " +
	"Return only the single emotion word, with no explanation or extra text."

const labelListLead = "Reply with exactly one of the following emotions: "

// BuildPrompt substitutes the character name and, unless the template
// already names every label, appends the current label list.
func BuildPrompt(template, character string, labels []string) string {
	prompt := strings.ReplaceAll(template, CharacterPlaceholder, character)
	if len(labels) == 0 || mentionsAll(prompt, labels) {
		return prompt
	}
	return prompt + "\n" + labelListLead + strings.Join(labels, ", ") + "."
}

// ComposeInput joins the prompt and the text under analysis.
func ComposeInput(prompt, text string) string {
	return prompt + "\n\nText: " + text
}

func mentionsAll(prompt string, labels []string) bool {
	lp := strings.ToLower(prompt)
	for _, l := range labels {
		if !strings.Contains(lp, strings.ToLower(l)) {
			return false
		}
	}
	return true
}
