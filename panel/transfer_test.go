package panel_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"emotion-panel/emotion"
	"emotion-panel/panel"
	"emotion-panel/store"
)

func TestExportImportRoundTrip(t *testing.T) {
	src := newFixture(t)
	ctx := context.Background()

	cfg := validConfig("Alice")
	cfg.Taxonomy.Add("Excited", "https://img/excited.png")
	src.panel.SaveConfig(ctx, cfg)
	src.panel.SaveCurrentAsPreset(ctx, "Alice")
	src.panel.SaveCurrentAsPreset(ctx, "Bob")
	src.panel.Analyze(ctx, "text")
	src.panel.SetPosition(ctx, json.RawMessage(`{"top":"5px"}`))
	src.panel.SetCollapsed(ctx, true)

	data, err := src.panel.ExportJSON(ctx)
	if err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}

	dst := newFixture(t)
	if err := dst.panel.Import(ctx, data); err != nil {
		t.Fatalf("Import: %v", err)
	}

	a, _ := src.panel.Export(ctx)
	b, _ := dst.panel.Export(ctx)
	if a.Config.CharacterName != b.Config.CharacterName || !a.Config.Taxonomy.Equal(b.Config.Taxonomy) {
		t.Fatalf("config differs after round trip: %+v vs %+v", a.Config, b.Config)
	}
	if len(b.Presets) != 2 || b.Presets["Bob"].APIKey != "key" {
		t.Fatalf("presets differ: %+v", b.Presets)
	}
	if len(b.History) != 1 || b.History[0] != a.History[0] {
		t.Fatalf("history differs: %+v vs %+v", b.History, a.History)
	}
	if !b.Collapsed {
		t.Fatal("collapsed flag lost")
	}
	var pos map[string]string
	json.Unmarshal(b.Position, &pos)
	if pos["top"] != "5px" {
		t.Fatalf("position lost: %s", b.Position)
	}
}

func TestImportMissingConfig(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.panel.SaveConfig(ctx, validConfig("Alice"))

	for _, data := range []string{`{"history":[]}`, `{"config":null}`, `not json`, `[]`} {
		err := f.panel.Import(ctx, []byte(data))
		if !errors.Is(err, panel.ErrInvalidFormat) {
			t.Fatalf("%s: expected ErrInvalidFormat, got %v", data, err)
		}
	}
	if f.panel.Config().CharacterName != "Alice" {
		t.Fatal("configuration changed by a rejected import")
	}
}

func TestImportKeepsAbsentSections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.panel.SaveConfig(ctx, validConfig("Alice"))
	f.panel.SaveCurrentAsPreset(ctx, "Alice")
	f.panel.Analyze(ctx, "text")
	f.panel.SetCollapsed(ctx, true)

	blob := `{"version":1,"config":{"characterName":"Carol","apiKey":"k2"}}`
	if err := f.panel.Import(ctx, []byte(blob)); err != nil {
		t.Fatalf("Import: %v", err)
	}

	cfg := f.panel.Config()
	if cfg.CharacterName != "Carol" || cfg.ModelName != panel.DefaultModel || cfg.Taxonomy.Len() != 5 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	presets, _ := f.panel.Presets(ctx)
	if len(presets) != 1 {
		t.Fatal("absent presets section replaced existing presets")
	}
	h, _ := f.panel.History(ctx)
	if len(h) != 1 {
		t.Fatal("absent history section replaced existing history")
	}
	ui, _ := f.panel.UIState(ctx)
	if ui.Collapsed {
		t.Fatal("absent collapsed flag should import as false")
	}
}

func TestImportEmptySectionsReplace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.panel.SaveConfig(ctx, validConfig("Alice"))
	f.panel.SaveCurrentAsPreset(ctx, "Alice")

	blob := `{"config":{"characterName":"Alice","apiKey":"k"},"presets":{},"history":[]}`
	if err := f.panel.Import(ctx, []byte(blob)); err != nil {
		t.Fatalf("Import: %v", err)
	}
	presets, _ := f.panel.Presets(ctx)
	if len(presets) != 0 {
		t.Fatalf("expected presets emptied, got %+v", presets)
	}
}

func TestImportRestoresProtectedLabels(t *testing.T) {
	f := newFixture(t)
	blob := `{"config":{"characterName":"A","apiKey":"k","taxonomy":{"Excited":"u","Happy":"h"}}}`
	if err := f.panel.Import(context.Background(), []byte(blob)); err != nil {
		t.Fatalf("Import: %v", err)
	}
	labels := f.panel.Labels()
	for _, l := range emotion.ProtectedLabels {
		if !f.panel.Taxonomy().Has(l) {
			t.Fatalf("protected label %s missing: %v", l, labels)
		}
	}
	if labels[0] != "Excited" {
		t.Fatalf("imported order lost: %v", labels)
	}
}

func TestImportLegacyBlob(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	legacy := `{
		"emotionVisualizerConfig": {
			"characterName": "주인공",
			"apiUrl": "",
			"apiKey": "legacy-key",
			"modelName": "gemini-2.0-flash",
			"emotionImages": {"행복":"h.png","슬픔":"s.png","분노":"a.png","놀람":"x.png","중립":"n.png","설렘":"e.png"},
			"customPrompt": "{$characterName}의 감정?",
			"autoAnalyze": false
		},
		"emotionHistory": [{"emotion":"행복","time":"10:00:00"}],
		"emotionContainerPosition": {"top":"1px"},
		"emotionContainerCollapsed": true,
		"characterPresets": {"철수": {"emotionImages":{"중립":"n2.png"},"apiKey":"k2","modelName":"gemini-pro","customPrompt":"p","autoAnalyze":true}}
	}`
	if err := f.panel.Import(ctx, []byte(legacy)); err != nil {
		t.Fatalf("Import legacy: %v", err)
	}

	cfg := f.panel.Config()
	if cfg.APIKey != "legacy-key" || cfg.PromptTemplate != "{$characterName}의 감정?" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	want := []string{"Happy", "Sad", "Angry", "Surprised", "Neutral", "설렘"}
	got := cfg.Taxonomy.Labels()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("expected labels %v, got %v", want, got)
	}
	if u, _ := cfg.Taxonomy.Image("Neutral"); u != "n.png" {
		t.Fatalf("unexpected Neutral image %q", u)
	}

	h, _ := f.panel.History(ctx)
	if len(h) != 1 || h[0].Label != "Happy" || h[0].Timestamp != "10:00:00" {
		t.Fatalf("unexpected history %+v", h)
	}
	p, err := f.panel.Preset(ctx, "철수")
	if err != nil {
		t.Fatalf("legacy preset missing: %v", err)
	}
	if !p.AutoAnalyze || p.Taxonomy.Len() != 5 {
		t.Fatalf("unexpected legacy preset %+v", p)
	}
	ui, _ := f.panel.UIState(ctx)
	if !ui.Collapsed {
		t.Fatal("legacy collapsed flag lost")
	}
}

func TestResetAll(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cfg := validConfig("Alice")
	cfg.AutoAnalyze = true
	f.panel.SaveConfig(ctx, cfg)
	f.panel.SaveCurrentAsPreset(ctx, "Alice")
	f.panel.Analyze(ctx, "text")
	f.panel.SetPosition(ctx, json.RawMessage(`{"top":"1px"}`))
	f.panel.SetCollapsed(ctx, true)

	if err := f.panel.ResetAll(ctx); err != nil {
		t.Fatalf("ResetAll: %v", err)
	}

	got := f.panel.Config()
	def := panel.DefaultConfig()
	if got.CharacterName != def.CharacterName || got.APIKey != "" || got.AutoAnalyze || !got.Taxonomy.Equal(def.Taxonomy) {
		t.Fatalf("config not reset: %+v", got)
	}
	h, _ := f.panel.History(ctx)
	presets, _ := f.panel.Presets(ctx)
	ui, _ := f.panel.UIState(ctx)
	if len(h) != 0 || len(presets) != 0 || ui.Position != nil || ui.Collapsed {
		t.Fatalf("state not reset: history=%v presets=%v ui=%+v", h, presets, ui)
	}
	if _, ok, _ := f.store.Get(ctx, store.KeyPosition); ok {
		t.Fatal("position key not cleared")
	}
}

func TestSchemaDescribesBlob(t *testing.T) {
	s := panel.Schema()
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal schema: %v", err)
	}
	for _, want := range []string{`"config"`, `"presets"`, `"history"`, `"taxonomy"`} {
		if !strings.Contains(string(data), want) {
			t.Fatalf("schema missing %s: %s", want, data)
		}
	}
}
