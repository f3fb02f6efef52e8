package panel

import (
	"errors"
	"fmt"
	"strings"

	"emotion-panel/classifier"
	"emotion-panel/emotion"
	"emotion-panel/preset"
)

const (
	DefaultCharacterName = "Protagonist"
	DefaultModel         = "gemini-2.0-flash"
)

var (
	ErrConfigInvalid = errors.New("configuration is invalid")
	ErrEmptyText     = errors.New("no text to analyze")
	ErrInvalidFormat = errors.New("settings file format is invalid")
)

// ValidationError names the offending field of a rejected configuration.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrConfigInvalid }

// Config is the live configuration of the panel.
type Config struct {
	CharacterName  string            `json:"characterName" jsonschema:"required"`
	APIKey         string            `json:"apiKey"`
	ModelName      string            `json:"modelName"`
	PromptTemplate string            `json:"promptTemplate"`
	Taxonomy       *emotion.Taxonomy `json:"taxonomy"`
	AutoAnalyze    bool              `json:"autoAnalyze"`
}

// DefaultConfig is the configuration of a fresh install.
func DefaultConfig() Config {
	return Config{
		CharacterName:  DefaultCharacterName,
		ModelName:      DefaultModel,
		PromptTemplate: classifier.DefaultPromptTemplate,
		Taxonomy:       emotion.DefaultTaxonomy(),
	}
}

// Clone returns a copy that shares no state with c.
func (c Config) Clone() Config {
	c.Taxonomy = c.Taxonomy.Clone()
	return c
}

// normalize trims fields, fills blanks that have defaults and restores
// any missing protected label.
func (c *Config) normalize() {
	c.CharacterName = strings.TrimSpace(c.CharacterName)
	c.APIKey = strings.TrimSpace(c.APIKey)
	c.ModelName = strings.TrimSpace(c.ModelName)
	if c.ModelName == "" {
		c.ModelName = DefaultModel
	}
	if strings.TrimSpace(c.PromptTemplate) == "" {
		c.PromptTemplate = classifier.DefaultPromptTemplate
	}
	if c.Taxonomy == nil || c.Taxonomy.Len() == 0 {
		c.Taxonomy = emotion.DefaultTaxonomy()
	}
	c.Taxonomy.EnsureProtected()
}

// normalizePreset applies the rules of normalize to p, so a stored
// preset loads back unchanged.
func normalizePreset(p *preset.Preset) {
	c := Config{
		CharacterName:  p.Name,
		APIKey:         p.APIKey,
		ModelName:      p.ModelName,
		PromptTemplate: p.PromptTemplate,
		Taxonomy:       p.Taxonomy,
		AutoAnalyze:    p.AutoAnalyze,
	}
	c.normalize()
	*p = c.snapshot(c.CharacterName)
}

// Validate checks the fields a saved configuration must carry.
func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return &ValidationError{Field: "apiKey", Message: "API key is required"}
	}
	if strings.TrimSpace(c.CharacterName) == "" {
		return &ValidationError{Field: "characterName", Message: "character name is required"}
	}
	return nil
}

func (c Config) classifierSettings() classifier.Settings {
	return classifier.Settings{
		CharacterName:  c.CharacterName,
		APIKey:         c.APIKey,
		ModelName:      c.ModelName,
		PromptTemplate: c.PromptTemplate,
		Labels:         c.Taxonomy.Labels(),
	}
}

// snapshot captures the character-specific fields as a preset.
func (c Config) snapshot(name string) preset.Preset {
	return preset.Preset{
		Name:           name,
		Taxonomy:       c.Taxonomy.Clone(),
		APIKey:         c.APIKey,
		ModelName:      c.ModelName,
		PromptTemplate: c.PromptTemplate,
		AutoAnalyze:    c.AutoAnalyze,
	}
}

// apply replaces the character-specific fields with those of p.
func (c *Config) apply(p preset.Preset) {
	c.CharacterName = p.Name
	c.Taxonomy = p.Taxonomy.Clone()
	c.APIKey = p.APIKey
	c.ModelName = p.ModelName
	c.PromptTemplate = p.PromptTemplate
	c.AutoAnalyze = p.AutoAnalyze
}
