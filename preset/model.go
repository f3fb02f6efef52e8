package preset

import (
	"errors"

	"emotion-panel/emotion"
)

// Preset is a named snapshot of the character-specific configuration.
type Preset struct {
	Name           string            `json:"name"`
	Taxonomy       *emotion.Taxonomy `json:"taxonomy"`
	APIKey         string            `json:"apiKey"`
	ModelName      string            `json:"modelName"`
	PromptTemplate string            `json:"promptTemplate"`
	AutoAnalyze    bool              `json:"autoAnalyze"`
}

// Clone returns a copy that shares no state with p.
func (p Preset) Clone() Preset {
	p.Taxonomy = p.Taxonomy.Clone()
	return p
}

var (
	ErrNotFound  = errors.New("preset not found")
	ErrEmptyName = errors.New("preset name must not be empty")
)
