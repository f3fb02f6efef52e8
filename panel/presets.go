package panel

import (
	"context"
	"strings"

	"emotion-panel/preset"
)

// Presets lists stored presets sorted by name.
func (p *Panel) Presets(ctx context.Context) ([]preset.Preset, error) {
	return p.presets.List(ctx)
}

// Preset returns one stored preset.
func (p *Panel) Preset(ctx context.Context, name string) (preset.Preset, error) {
	return p.presets.Get(ctx, name)
}

// SavePreset creates or overwrites the preset named snap.Name. It reports
// whether an existing preset was updated.
func (p *Panel) SavePreset(ctx context.Context, snap preset.Preset) (bool, error) {
	snap.Name = strings.TrimSpace(snap.Name)
	if snap.Name == "" {
		return false, &ValidationError{Field: "name", Message: "preset name is required"}
	}
	snap = snap.Clone()
	if snap.Taxonomy.Len() == 0 {
		snap.Taxonomy = p.Taxonomy()
	}
	normalizePreset(&snap)

	updated, err := p.presets.Put(ctx, snap)
	if err != nil {
		return false, err
	}
	if updated {
		p.notify(LevelSuccess, "Preset %q updated.", snap.Name)
	} else {
		p.notify(LevelSuccess, "Preset %q saved.", snap.Name)
	}
	return updated, nil
}

// SaveCurrentAsPreset stores the live configuration under name.
func (p *Panel) SaveCurrentAsPreset(ctx context.Context, name string) (bool, error) {
	return p.SavePreset(ctx, p.Config().snapshot(name))
}

// LoadPreset replaces the character-specific configuration with the preset
// called name and makes it the current character.
func (p *Panel) LoadPreset(ctx context.Context, name string) (Config, error) {
	snap, err := p.presets.Get(ctx, name)
	if err != nil {
		p.notify(LevelError, "Preset %q not found.", name)
		return Config{}, err
	}
	cfg, err := p.updateConfig(ctx, func(c *Config) error {
		c.apply(snap)
		return nil
	})
	if err != nil {
		return Config{}, err
	}
	p.notify(LevelSuccess, "Loaded preset %q.", name)
	return cfg, nil
}

// DeletePreset removes the preset called name. Deleting the current
// character's preset leaves the live configuration untouched; orphaned
// reports that case.
func (p *Panel) DeletePreset(ctx context.Context, name string) (orphaned bool, err error) {
	if err := p.presets.Delete(ctx, name); err != nil {
		return false, err
	}
	orphaned = p.Config().CharacterName == name
	p.notify(LevelSuccess, "Preset %q deleted.", name)
	return orphaned, nil
}

// SyncCurrentToPreset overwrites the current character's preset with the
// live configuration. It does nothing when no such preset exists.
func (p *Panel) SyncCurrentToPreset(ctx context.Context) (bool, error) {
	cfg := p.Config()
	exists, err := p.presets.Exists(ctx, cfg.CharacterName)
	if err != nil || !exists {
		return false, err
	}
	if _, err := p.presets.Put(ctx, cfg.snapshot(cfg.CharacterName)); err != nil {
		return false, err
	}
	return true, nil
}
