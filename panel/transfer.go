package panel

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/invopop/jsonschema"

	"emotion-panel/emotion"
	"emotion-panel/history"
	"emotion-panel/preset"
	"emotion-panel/store"
)

// BlobVersion is written into every export.
const BlobVersion = 1

// Blob is the portable form of the whole persistent namespace.
type Blob struct {
	Version   int                      `json:"version"`
	Config    *Config                  `json:"config" jsonschema:"required"`
	History   []history.Entry          `json:"history"`
	Position  json.RawMessage          `json:"position"`
	Collapsed bool                     `json:"collapsed"`
	Presets   map[string]preset.Preset `json:"presets"`
}

// Export snapshots the persistent namespace.
func (p *Panel) Export(ctx context.Context) (Blob, error) {
	cfg := p.Config()
	hist, err := p.history.List(ctx)
	if err != nil {
		return Blob{}, err
	}
	presets, err := p.presets.All(ctx)
	if err != nil {
		return Blob{}, err
	}
	ui, err := p.UIState(ctx)
	if err != nil {
		return Blob{}, err
	}
	return Blob{
		Version:   BlobVersion,
		Config:    &cfg,
		History:   hist,
		Position:  ui.Position,
		Collapsed: ui.Collapsed,
		Presets:   presets,
	}, nil
}

// ExportJSON is Export encoded with two-space indentation.
func (p *Panel) ExportJSON(ctx context.Context) ([]byte, error) {
	b, err := p.Export(ctx)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(b, "", "  ")
}

// Import replaces the persistent namespace with data. The configuration is
// always replaced; presets, history and position only when present. The
// blob is fully decoded and validated before anything is written.
func (p *Panel) Import(ctx context.Context, data []byte) error {
	b, err := decodeBlob(data)
	if err != nil {
		p.notify(LevelError, "Could not import settings: %v", err)
		return err
	}

	cfg := b.Config.Clone()
	cfg.normalize()
	if cfg.CharacterName == "" {
		cfg.CharacterName = DefaultCharacterName
	}

	if _, err := p.updateConfig(ctx, func(c *Config) error {
		*c = cfg
		return nil
	}); err != nil {
		return err
	}
	if b.Presets != nil {
		for name, ps := range b.Presets {
			ps.Taxonomy = ps.Taxonomy.Clone()
			if ps.Name == "" {
				ps.Name = name
			}
			normalizePreset(&ps)
			b.Presets[name] = ps
		}
		if err := p.presets.ReplaceAll(ctx, b.Presets); err != nil {
			return err
		}
	}
	if b.History != nil {
		if err := p.history.Replace(ctx, b.History); err != nil {
			return err
		}
	}
	if !isNull(b.Position) {
		if err := p.store.Set(ctx, store.KeyPosition, b.Position); err != nil {
			return err
		}
	}
	if err := p.SetCollapsed(ctx, b.Collapsed); err != nil {
		return err
	}

	p.notify(LevelSuccess, "Settings imported.")
	return nil
}

// ResetAll restores the factory state of every persisted key.
func (p *Panel) ResetAll(ctx context.Context) error {
	if _, err := p.updateConfig(ctx, func(c *Config) error {
		*c = DefaultConfig()
		return nil
	}); err != nil {
		return err
	}
	if err := p.history.Clear(ctx); err != nil {
		return err
	}
	if err := p.store.Set(ctx, store.KeyPosition, nil); err != nil {
		return err
	}
	if err := p.SetCollapsed(ctx, false); err != nil {
		return err
	}
	if err := p.presets.ReplaceAll(ctx, nil); err != nil {
		return err
	}
	p.notify(LevelInfo, "All settings were reset.")
	return nil
}

// Schema returns the JSON Schema of an export blob.
func Schema() *jsonschema.Schema {
	r := jsonschema.Reflector{
		AllowAdditionalProperties:  true,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t == reflect.TypeOf(json.RawMessage{}) {
				return &jsonschema.Schema{Description: "Opaque overlay position."}
			}
			return nil
		},
	}
	s := r.Reflect(&Blob{})
	s.Title = "emotion-panel settings"
	return s
}

func decodeBlob(data []byte) (Blob, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return Blob{}, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if _, ok := top[legacyConfigKey]; ok {
		return decodeLegacy(top)
	}
	if isNull(top["config"]) {
		return Blob{}, fmt.Errorf("%w: missing config", ErrInvalidFormat)
	}

	var b Blob
	if err := json.Unmarshal(data, &b); err != nil {
		return Blob{}, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if b.Version > BlobVersion {
		return Blob{}, fmt.Errorf("%w: unsupported version %d", ErrInvalidFormat, b.Version)
	}
	return b, nil
}

// Keys and labels of blobs exported by the earlier userscript panel.
const (
	legacyConfigKey    = "emotionVisualizerConfig"
	legacyHistoryKey   = "emotionHistory"
	legacyPositionKey  = "emotionContainerPosition"
	legacyCollapsedKey = "emotionContainerCollapsed"
	legacyPresetsKey   = "characterPresets"
)

var legacyLabels = map[string]string{
	"행복": emotion.Happy,
	"슬픔": emotion.Sad,
	"분노": emotion.Angry,
	"놀람": emotion.Surprised,
	"중립": emotion.Neutral,
}

type legacyConfig struct {
	CharacterName string            `json:"characterName"`
	APIKey        string            `json:"apiKey"`
	ModelName     string            `json:"modelName"`
	EmotionImages *emotion.Taxonomy `json:"emotionImages"`
	CustomPrompt  string            `json:"customPrompt"`
	AutoAnalyze   bool              `json:"autoAnalyze"`
}

type legacyHistoryEntry struct {
	Emotion string `json:"emotion"`
	Time    string `json:"time"`
}

func (lc legacyConfig) config(name string) Config {
	return Config{
		CharacterName:  name,
		APIKey:         lc.APIKey,
		ModelName:      lc.ModelName,
		PromptTemplate: lc.CustomPrompt,
		Taxonomy:       translateTaxonomy(lc.EmotionImages),
		AutoAnalyze:    lc.AutoAnalyze,
	}
}

func translateTaxonomy(t *emotion.Taxonomy) *emotion.Taxonomy {
	out := emotion.NewTaxonomy()
	for _, l := range t.Labels() {
		url, _ := t.Image(l)
		if en, ok := legacyLabels[l]; ok {
			l = en
		}
		out.Add(l, url)
	}
	return out
}

func translateLabel(l string) string {
	if en, ok := legacyLabels[l]; ok {
		return en
	}
	return l
}

func decodeLegacy(top map[string]json.RawMessage) (Blob, error) {
	if isNull(top[legacyConfigKey]) {
		return Blob{}, fmt.Errorf("%w: missing %s", ErrInvalidFormat, legacyConfigKey)
	}
	var lc legacyConfig
	if err := json.Unmarshal(top[legacyConfigKey], &lc); err != nil {
		return Blob{}, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	cfg := lc.config(lc.CharacterName)
	b := Blob{Version: BlobVersion, Config: &cfg}

	if raw := top[legacyPresetsKey]; !isNull(raw) {
		var presets map[string]legacyConfig
		if err := json.Unmarshal(raw, &presets); err != nil {
			return Blob{}, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
		b.Presets = make(map[string]preset.Preset, len(presets))
		for name, lp := range presets {
			b.Presets[name] = lp.config(name).snapshot(name)
		}
	}
	if raw := top[legacyHistoryKey]; !isNull(raw) {
		var entries []legacyHistoryEntry
		if err := json.Unmarshal(raw, &entries); err != nil {
			return Blob{}, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
		b.History = make([]history.Entry, 0, len(entries))
		for _, e := range entries {
			b.History = append(b.History, history.Entry{Label: translateLabel(e.Emotion), Timestamp: e.Time})
		}
	}
	b.Position = top[legacyPositionKey]
	if raw := top[legacyCollapsedKey]; !isNull(raw) {
		if err := json.Unmarshal(raw, &b.Collapsed); err != nil {
			return Blob{}, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
	}
	return b, nil
}
