// Package panel is the session state of the emotion panel: the live
// configuration and every operation that reads or changes it.
package panel

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"emotion-panel/classifier"
	"emotion-panel/emotion"
	"emotion-panel/history"
	"emotion-panel/preset"
	"emotion-panel/store"
)

// Level is the severity of a user-visible notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notifier surfaces messages to the user.
type Notifier interface {
	Notify(level Level, message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(level Level, message string)

func (f NotifierFunc) Notify(level Level, message string) { f(level, message) }

// LogNotifier writes notifications to the standard logger.
type LogNotifier struct{}

func (LogNotifier) Notify(level Level, message string) {
	log.Printf("[%s] %s", level, message)
}

// Result is what the display shows after a classification.
type Result struct {
	Label      string `json:"label"`
	ImageLabel string `json:"imageLabel"`
	Image      string `json:"image"`
	Timestamp  string `json:"timestamp"`
	Raw        string `json:"raw"`
	Degraded   bool   `json:"degraded"`
	Error      string `json:"error,omitempty"`
}

// SaveReport describes a successful configuration save.
type SaveReport struct {
	Config       Config   `json:"config"`
	EmptyImages  []string `json:"emptyImages"`
	PresetSynced bool     `json:"presetSynced"`
}

// TestResult is the outcome of a connection test.
type TestResult struct {
	Success bool   `json:"success"`
	Label   string `json:"label,omitempty"`
	Raw     string `json:"raw,omitempty"`
	Error   string `json:"error,omitempty"`
}

// UIState is the persisted state of the overlay itself.
type UIState struct {
	Position  json.RawMessage `json:"position"`
	Collapsed bool            `json:"collapsed"`
}

// TestSample is sent by TestConnection.
const TestSample = "Today was a truly happy day!"

type Options struct {
	Store      store.Store
	Classifier *classifier.Classifier
	Notifier   Notifier         // LogNotifier when nil
	Clock      func() time.Time // time.Now when nil
}

type Panel struct {
	mu  sync.RWMutex
	cfg Config

	store      store.Store
	presets    *preset.Manager
	history    *history.Ring
	classifier *classifier.Classifier

	hookMu   sync.RWMutex
	notifier Notifier
	onAuto   func(sourceID string, r Result)

	obsMu   sync.Mutex
	armed   bool
	sources map[string]TextSource
	cancels map[string]func()
}

// New loads the persisted configuration, falling back to DefaultConfig.
func New(ctx context.Context, opts Options) (*Panel, error) {
	notifier := opts.Notifier
	if notifier == nil {
		notifier = LogNotifier{}
	}
	p := &Panel{
		store:      opts.Store,
		presets:    preset.NewManager(opts.Store),
		history:    history.NewRing(opts.Store, opts.Clock),
		classifier: opts.Classifier,
		notifier:   notifier,
		sources:    map[string]TextSource{},
		cancels:    map[string]func(){},
	}

	cfg := DefaultConfig()
	found, err := store.GetJSON(ctx, opts.Store, store.KeyConfig, &cfg)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if !found {
		cfg = DefaultConfig()
	}
	if cfg.CharacterName == "" {
		cfg.CharacterName = DefaultCharacterName
	}
	cfg.normalize()
	p.cfg = cfg
	p.rearm(cfg.AutoAnalyze)
	return p, nil
}

// SetNotifier replaces the notification sink.
func (p *Panel) SetNotifier(n Notifier) {
	p.hookMu.Lock()
	defer p.hookMu.Unlock()
	p.notifier = n
}

// OnAutoResult registers fn to receive results of automatic analysis.
func (p *Panel) OnAutoResult(fn func(sourceID string, r Result)) {
	p.hookMu.Lock()
	defer p.hookMu.Unlock()
	p.onAuto = fn
}

func (p *Panel) notify(level Level, format string, args ...any) {
	p.hookMu.RLock()
	n := p.notifier
	p.hookMu.RUnlock()
	if n != nil {
		n.Notify(level, fmt.Sprintf(format, args...))
	}
}

// Config returns a copy of the live configuration.
func (p *Panel) Config() Config {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cfg.Clone()
}

// SaveConfig validates and persists cfg, re-arms the auto-analyze
// observer and syncs the current character's preset if one exists.
func (p *Panel) SaveConfig(ctx context.Context, cfg Config) (SaveReport, error) {
	cfg = cfg.Clone()
	if err := cfg.Validate(); err != nil {
		p.notify(LevelError, "%v", err)
		return SaveReport{}, err
	}
	cfg.normalize()

	p.mu.Lock()
	if err := store.SetJSON(ctx, p.store, store.KeyConfig, cfg); err != nil {
		p.mu.Unlock()
		return SaveReport{}, fmt.Errorf("save config: %w", err)
	}
	p.cfg = cfg
	p.mu.Unlock()

	p.rearm(cfg.AutoAnalyze)

	synced, err := p.SyncCurrentToPreset(ctx)
	if err != nil {
		return SaveReport{}, err
	}

	missing := cfg.Taxonomy.MissingImages()
	if len(missing) > 0 {
		p.notify(LevelWarning, "No image URL for: %s", strings.Join(missing, ", "))
	}
	p.notify(LevelSuccess, "Settings saved.")
	return SaveReport{Config: cfg.Clone(), EmptyImages: missing, PresetSynced: synced}, nil
}

// updateConfig applies fn to a copy of the live configuration and
// persists the result.
func (p *Panel) updateConfig(ctx context.Context, fn func(c *Config) error) (Config, error) {
	p.mu.Lock()
	cfg := p.cfg.Clone()
	if err := fn(&cfg); err != nil {
		p.mu.Unlock()
		return Config{}, err
	}
	cfg.normalize()
	if err := store.SetJSON(ctx, p.store, store.KeyConfig, cfg); err != nil {
		p.mu.Unlock()
		return Config{}, fmt.Errorf("save config: %w", err)
	}
	p.cfg = cfg
	p.mu.Unlock()

	p.rearm(cfg.AutoAnalyze)
	return cfg.Clone(), nil
}

// AddLabel adds or updates a label in the live taxonomy.
func (p *Panel) AddLabel(ctx context.Context, label, url string) (Config, error) {
	cfg, err := p.updateConfig(ctx, func(c *Config) error {
		return c.Taxonomy.Add(label, url)
	})
	if err != nil {
		return Config{}, err
	}
	if _, err := p.SyncCurrentToPreset(ctx); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// RemoveLabel removes a custom label. Protected labels are refused.
func (p *Panel) RemoveLabel(ctx context.Context, label string) (Config, error) {
	cfg, err := p.updateConfig(ctx, func(c *Config) error {
		return c.Taxonomy.Remove(label)
	})
	if err != nil {
		return Config{}, err
	}
	if _, err := p.SyncCurrentToPreset(ctx); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ResolveImage returns the image the display should show for label.
func (p *Panel) ResolveImage(label string) (resolved, url string, ok bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cfg.Taxonomy.ResolveImage(label)
}

// Analyze classifies text with the live configuration and records the
// label. Endpoint failures still produce a Neutral result.
func (p *Panel) Analyze(ctx context.Context, text string) (Result, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		p.notify(LevelWarning, "There is no text to analyze.")
		return Result{}, ErrEmptyText
	}
	cfg := p.Config()
	if err := cfg.Validate(); err != nil {
		p.notify(LevelError, "API key is not set. Enter it in the settings.")
		return Result{}, err
	}

	out := p.classifier.Classify(ctx, cfg.classifierSettings(), text)
	res := Result{Label: out.Label, Raw: out.Raw, Degraded: out.Degraded()}
	if out.Err != nil {
		res.Error = out.Err.Error()
		p.notify(LevelError, "Emotion analysis failed: %v", out.Err)
	}

	resolved, url, ok := cfg.Taxonomy.ResolveImage(out.Label)
	res.ImageLabel = resolved
	if ok {
		res.Image = url
	}

	entry, err := p.history.Record(ctx, out.Label)
	if err != nil {
		return res, fmt.Errorf("record history: %w", err)
	}
	res.Timestamp = entry.Timestamp
	return res, nil
}

// TestConnection sends a fixed sample using the live configuration, with
// apiKey and model overriding it when non-empty.
func (p *Panel) TestConnection(ctx context.Context, apiKey, model string) TestResult {
	cfg := p.Config()
	if apiKey = strings.TrimSpace(apiKey); apiKey != "" {
		cfg.APIKey = apiKey
	}
	if model = strings.TrimSpace(model); model != "" {
		cfg.ModelName = model
	}
	if cfg.APIKey == "" {
		return TestResult{Error: "API key is required"}
	}

	out, err := p.classifier.Probe(ctx, cfg.classifierSettings(), TestSample)
	if err != nil {
		return TestResult{Error: err.Error()}
	}
	return TestResult{Success: true, Label: out.Label, Raw: out.Raw}
}

// History returns recent labels, newest first.
func (p *Panel) History(ctx context.Context) ([]history.Entry, error) {
	return p.history.List(ctx)
}

// UIState returns the persisted overlay state.
func (p *Panel) UIState(ctx context.Context) (UIState, error) {
	var ui UIState
	pos, ok, err := p.store.Get(ctx, store.KeyPosition)
	if err != nil {
		return ui, err
	}
	if ok {
		ui.Position = pos
	}
	if _, err := store.GetJSON(ctx, p.store, store.KeyCollapsed, &ui.Collapsed); err != nil {
		return ui, err
	}
	return ui, nil
}

// SetPosition stores the overlay position. Empty or null clears it.
func (p *Panel) SetPosition(ctx context.Context, pos json.RawMessage) error {
	if isNull(pos) {
		return p.store.Set(ctx, store.KeyPosition, nil)
	}
	if !json.Valid(pos) {
		return ErrInvalidFormat
	}
	return p.store.Set(ctx, store.KeyPosition, pos)
}

// SetCollapsed stores the overlay collapsed flag.
func (p *Panel) SetCollapsed(ctx context.Context, collapsed bool) error {
	return store.SetJSON(ctx, p.store, store.KeyCollapsed, collapsed)
}

// Labels returns the live taxonomy labels in order.
func (p *Panel) Labels() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cfg.Taxonomy.Labels()
}

// Taxonomy returns a copy of the live taxonomy.
func (p *Panel) Taxonomy() *emotion.Taxonomy {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cfg.Taxonomy.Clone()
}

func isNull(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return s == "" || s == "null"
}
