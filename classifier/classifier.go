// Package classifier turns a passage of text into one emotion label by
// asking a language model, then matching its answer against the taxonomy.
package classifier

import (
	"context"
	"log"
	"strings"

	"emotion-panel/emotion"
)

// Settings are the per-call inputs taken from the live configuration.
type Settings struct {
	CharacterName  string
	APIKey         string
	ModelName      string
	PromptTemplate string
	Labels         []string
}

// Outcome is the result of a classification. Label is always usable; Err
// is set when the label is a fallback caused by a failed call.
type Outcome struct {
	Label string `json:"label"`
	Raw   string `json:"raw"`
	Err   error  `json:"-"`
}

// Degraded reports whether the label is a fallback.
func (o Outcome) Degraded() bool { return o.Err != nil }

type Classifier struct {
	endpoint   Endpoint
	generation GenerationConfig
}

func New(endpoint Endpoint) *Classifier {
	return &Classifier{endpoint: endpoint, generation: DefaultGeneration}
}

// Classify makes exactly one endpoint call and never fails: any error
// yields Neutral with Err set.
func (c *Classifier) Classify(ctx context.Context, s Settings, text string) Outcome {
	if strings.TrimSpace(s.APIKey) == "" {
		return Outcome{Label: emotion.Neutral, Err: ErrMissingAPIKey}
	}

	prompt := BuildPrompt(s.PromptTemplate, s.CharacterName, s.Labels)
	raw, err := c.endpoint.Generate(ctx, Request{
		Model:      s.ModelName,
		APIKey:     s.APIKey,
		Input:      ComposeInput(prompt, text),
		Generation: c.generation,
	})
	if err != nil {
		log.Printf("classifier: %v", err)
		return Outcome{Label: emotion.Neutral, Err: err}
	}

	return Outcome{Label: emotion.Match(raw, s.Labels), Raw: raw}
}

// Probe checks that the configured key and model answer. Unlike Classify
// it reports failures; the prompt gets the character name but no label list.
func (c *Classifier) Probe(ctx context.Context, s Settings, text string) (Outcome, error) {
	if strings.TrimSpace(s.APIKey) == "" {
		return Outcome{Label: emotion.Neutral, Err: ErrMissingAPIKey}, ErrMissingAPIKey
	}
	prompt := strings.ReplaceAll(s.PromptTemplate, CharacterPlaceholder, s.CharacterName)
	raw, err := c.endpoint.Generate(ctx, Request{
		Model:      s.ModelName,
		APIKey:     s.APIKey,
		Input:      ComposeInput(prompt, text),
		Generation: c.generation,
	})
	if err != nil {
		return Outcome{Label: emotion.Neutral, Err: err}, err
	}
	return Outcome{Label: emotion.Match(raw, s.Labels), Raw: raw}, nil
}
